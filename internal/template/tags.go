package template

import "strings"

var voidTags = set("area", "base", "br", "col", "embed", "hr", "img", "input", "link", "meta",
	"param", "source", "track", "wbr")

var rawTextTags = set("script", "style", "textarea", "title")

var htmlTags = set(
	"html", "body", "base", "head", "link", "meta", "style", "title", "address", "article", "aside",
	"footer", "header", "hgroup", "h1", "h2", "h3", "h4", "h5", "h6", "nav", "section", "div", "dd",
	"dl", "dt", "figcaption", "figure", "picture", "hr", "img", "li", "main", "ol", "p", "pre", "ul",
	"a", "b", "abbr", "bdi", "bdo", "br", "cite", "code", "data", "dfn", "em", "i", "kbd", "mark", "q",
	"rp", "rt", "ruby", "s", "samp", "small", "span", "strong", "sub", "sup", "time", "u", "var", "wbr",
	"area", "audio", "map", "track", "video", "embed", "object", "param", "source", "canvas", "script",
	"noscript", "del", "ins", "caption", "col", "colgroup", "table", "thead", "tbody", "td", "th", "tr",
	"button", "datalist", "fieldset", "form", "input", "label", "legend", "meter", "optgroup", "option",
	"output", "progress", "select", "textarea", "details", "dialog", "menu", "summary", "template",
	"blockquote", "iframe", "tfoot", "search",
)

var svgTags = set(
	"svg", "animate", "animateMotion", "animateTransform", "circle", "clipPath", "defs", "desc",
	"ellipse", "feBlend", "feColorMatrix", "feComposite", "feFlood", "feGaussianBlur", "feImage",
	"feMerge", "feOffset", "filter", "foreignObject", "g", "image", "line", "linearGradient", "marker",
	"mask", "metadata", "path", "pattern", "polygon", "polyline", "radialGradient", "rect", "set",
	"stop", "switch", "symbol", "text", "textPath", "tspan", "use", "view",
)

var mathTags = set("math", "mi", "mn", "mo", "ms", "mrow", "msub", "msup", "mfrac", "msqrt", "mtext")

// IsNativeTag reports whether tag is an HTML, SVG or MathML element.
func IsNativeTag(tag string) bool {
	_, html := htmlTags[tag]
	_, svg := svgTags[tag]
	_, mathml := mathTags[tag]
	return html || svg || mathml
}

// IsVoidTag reports whether tag never has children or an end tag.
func IsVoidTag(tag string) bool {
	_, ok := voidTags[strings.ToLower(tag)]
	return ok
}

// IsComponentTag applies the compiler's component detection.
func IsComponentTag(tag string) bool {
	if tag == "component" || tag == "Component" {
		return true
	}
	if strings.ContainsAny(tag, "-.:") {
		return true
	}
	return !IsNativeTag(tag)
}

func set(names ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(names))
	for _, n := range names {
		m[n] = struct{}{}
	}
	return m
}
