// Package template parses component markup into an arena-backed tree.
//
// Structural directives are lifted out of elements while parsing: an element
// carrying v-if starts an If node whose branches own the element, and v-for
// wraps the element in a For node. Code generators switch on Node.Kind.
package template

import "fmt"

type NodeID uint32

const NoNodeID NodeID = 0

func (id NodeID) IsValid() bool { return id != NoNodeID }

type NodeKind uint8

const (
	KindRoot NodeKind = iota
	KindElement
	KindText
	KindComment
	KindInterpolation
	KindIf
	KindIfBranch
	KindFor
)

func (k NodeKind) String() string {
	switch k {
	case KindRoot:
		return "root"
	case KindElement:
		return "element"
	case KindText:
		return "text"
	case KindComment:
		return "comment"
	case KindInterpolation:
		return "interpolation"
	case KindIf:
		return "if"
	case KindIfBranch:
		return "if-branch"
	case KindFor:
		return "for"
	}
	return "unknown"
}

// TagType refines element nodes.
type TagType uint8

const (
	TagElement TagType = iota
	TagComponent
	TagSlot
	TagTemplate
)

// Loc is a half-open range relative to the start of the template content.
type Loc struct {
	Start, End int
}

func (l Loc) Len() int { return l.End - l.Start }

func (l Loc) String() string { return fmt.Sprintf("[%d,%d)", l.Start, l.End) }

type PropKind uint8

const (
	PropAttribute PropKind = iota
	PropDirective
)

// Prop is an attribute or a directive of an element.
//
// For directives Name is the directive name without prefix ("bind", "on",
// "model", "slot", "if", "custom-dir"), Value is the expression and Arg is the
// argument; a dynamic argument ("[expr]") has ArgStatic=false.
type Prop struct {
	Kind      PropKind
	Name      string
	RawName   string
	Loc       Loc
	NameLoc   Loc
	Value     string
	HasValue  bool
	ValueLoc  Loc
	Arg       string
	ArgLoc    Loc
	ArgStatic bool
	Modifiers []string
}

// Node is the tagged union of all template nodes.
type Node struct {
	Kind     NodeKind
	Loc      Loc
	Parent   NodeID
	Children []NodeID

	// element
	Tag         string
	TagType     TagType
	TagLoc      Loc
	EndTagLoc   Loc // Start<0 when the end tag is missing or implied
	Props       []Prop
	SelfClosing bool

	// text, comment, interpolation
	Content    string
	ContentLoc Loc

	// if-branch: Cond is nil for v-else
	Cond *Prop
	// for
	For *ForParse
	// Origin is the directive that created an if-branch or for node.
	Origin *Prop
}

// AST is a parsed template.
type AST struct {
	Nodes  *Arena[Node]
	Root   NodeID
	Source string
}

func (a *AST) Node(id NodeID) *Node {
	return a.Nodes.Get(uint32(id))
}

// Walk visits nodes depth-first in document order until fn returns false.
func (a *AST) Walk(fn func(id NodeID, n *Node) bool) {
	var visit func(id NodeID) bool
	visit = func(id NodeID) bool {
		n := a.Node(id)
		if n == nil {
			return true
		}
		if !fn(id, n) {
			return false
		}
		for _, c := range n.Children {
			if !visit(c) {
				return false
			}
		}
		return true
	}
	visit(a.Root)
}

// Directive finds a directive prop by name on element n.
func (n *Node) Directive(name string) (*Prop, bool) {
	for i := range n.Props {
		if n.Props[i].Kind == PropDirective && n.Props[i].Name == name {
			return &n.Props[i], true
		}
	}
	return nil, false
}

// Attribute finds a static attribute by name.
func (n *Node) Attribute(name string) (*Prop, bool) {
	for i := range n.Props {
		if n.Props[i].Kind == PropAttribute && n.Props[i].Name == name {
			return &n.Props[i], true
		}
	}
	return nil, false
}

func (n *Node) removeProp(p *Prop) {
	for i := range n.Props {
		if &n.Props[i] == p {
			n.Props = append(n.Props[:i:i], n.Props[i+1:]...)
			return
		}
	}
}
