package template

import (
	"strings"

	"vuecore/internal/diag"
)

// structure lifts v-if chains and v-for out of elements, bottom-up.
func (p *parser) structure(parent NodeID) {
	children := append([]NodeID(nil), p.ast.Node(parent).Children...)
	out := make([]NodeID, 0, len(children))
	var chain NodeID    // If node still accepting branches
	var pending []NodeID // comments/whitespace after the last branch

	flush := func() {
		out = append(out, pending...)
		pending = nil
		chain = NoNodeID
	}

	for _, c := range children {
		n := p.ast.Node(c)
		if n.Kind == KindElement {
			p.structure(c)
			n = p.ast.Node(c)
		}
		switch {
		case n.Kind == KindText && chain.IsValid() && strings.TrimSpace(n.Content) == "":
			pending = append(pending, c)
		case n.Kind == KindComment && chain.IsValid():
			pending = append(pending, c)
		case n.Kind == KindElement && hasDirective(n, "if"):
			flush()
			d, _ := p.ast.Node(c).Directive("if")
			ifID := p.alloc(Node{Kind: KindIf, Loc: n.Loc, Parent: parent})
			p.addBranch(ifID, c, d, nil)
			out = append(out, ifID)
			chain = ifID
		case n.Kind == KindElement && (hasDirective(n, "else-if") || hasDirective(n, "else")):
			name := "else"
			if hasDirective(n, "else-if") {
				name = "else-if"
			}
			d, _ := p.ast.Node(c).Directive(name)
			if !chain.IsValid() {
				flush()
				p.error(diag.TplElseWithoutIf, d.NameLoc, "v-"+name+" has no adjacent v-if or v-else-if")
				p.ast.Node(c).removeProp(d)
				out = append(out, p.liftFor(c, parent))
				continue
			}
			comments := make([]NodeID, 0, len(pending))
			for _, id := range pending {
				if p.ast.Node(id).Kind == KindComment {
					comments = append(comments, id)
				}
			}
			pending = nil
			p.addBranch(chain, c, d, comments)
			if name == "else" {
				chain = NoNodeID
			}
		default:
			flush()
			if n.Kind == KindElement {
				out = append(out, p.liftFor(c, parent))
			} else {
				out = append(out, c)
			}
		}
	}
	flush()
	p.ast.Node(parent).Children = out
}

func hasDirective(n *Node, name string) bool {
	_, ok := n.Directive(name)
	return ok
}

// addBranch moves element elem (with leading comments) into a new branch of ifID.
func (p *parser) addBranch(ifID, elem NodeID, d *Prop, comments []NodeID) {
	dir := *d
	en := p.ast.Node(elem)
	en.removeProp(d)
	if dir.Name != "else" && strings.TrimSpace(dir.Value) == "" {
		p.error(diag.TplMissingExpression, dir.NameLoc, "v-"+dir.Name+" is missing expression")
	}
	branch := Node{Kind: KindIfBranch, Loc: en.Loc, Parent: ifID, Origin: &dir}
	if dir.Name != "else" {
		cond := dir
		branch.Cond = &cond
	}
	bid := p.alloc(branch)
	child := p.liftFor(elem, bid)
	kids := append(comments, child)
	for _, k := range kids {
		p.ast.Node(k).Parent = bid
	}
	b := p.ast.Node(bid)
	b.Children = kids
	ifn := p.ast.Node(ifID)
	ifn.Children = append(ifn.Children, bid)
	ifn.Loc.End = max(ifn.Loc.End, b.Loc.End)
}

// liftFor wraps an element carrying v-for in a For node.
func (p *parser) liftFor(elem, parent NodeID) NodeID {
	en := p.ast.Node(elem)
	d, ok := en.Directive("for")
	if !ok {
		en.Parent = parent
		return elem
	}
	dir := *d
	en.removeProp(d)
	loc := en.Loc
	fp, valid := ParseVFor(dir.Value, dir.ValueLoc.Start)
	if !valid {
		p.error(diag.TplInvalidVFor, dir.Loc, "v-for has invalid expression")
	}
	forID := p.alloc(Node{
		Kind:      KindFor,
		Loc:       loc,
		Parent:    parent,
		For:       fp,
		Origin:    &dir,
		Children:  []NodeID{elem},
	})
	p.ast.Node(elem).Parent = forID
	return forID
}
