package tplgen

// identifiers templates may use without the component context
var globalsAllowed = map[string]struct{}{
	"Infinity": {}, "undefined": {}, "NaN": {}, "isFinite": {}, "isNaN": {},
	"parseFloat": {}, "parseInt": {}, "decodeURI": {}, "decodeURIComponent": {},
	"encodeURI": {}, "encodeURIComponent": {}, "Math": {}, "Number": {}, "Date": {},
	"Array": {}, "Object": {}, "Boolean": {}, "String": {}, "RegExp": {}, "Map": {},
	"Set": {}, "JSON": {}, "Intl": {}, "BigInt": {}, "console": {}, "Error": {},
	"Symbol": {},
}

// literal-like words that are never context accesses
var literalWords = map[string]struct{}{
	"true": {}, "false": {}, "null": {}, "this": {}, "arguments": {},
	"async": {}, "await": {}, "of": {}, "let": {}, "yield": {}, "static": {},
	"get": {}, "set": {}, "keyof": {}, "infer": {}, "is": {},
}

// directives with dedicated lowering
var builtinDirectives = map[string]struct{}{
	"bind": {}, "on": {}, "model": {}, "slot": {}, "if": {}, "else": {}, "else-if": {},
	"for": {}, "show": {}, "html": {}, "text": {}, "once": {}, "pre": {}, "cloak": {},
	"memo": {},
}

func isGlobal(name string) bool {
	_, ok := globalsAllowed[name]
	return ok
}
