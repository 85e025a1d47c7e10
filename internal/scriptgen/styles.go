package scriptgen

import "strings"

// styleClass is a ".name" selector of a style block; Offset is block-relative.
type styleClass struct {
	Name   string
	Offset int
}

// cssClasses scans selectors for class names. Comments, strings and url()
// arguments are skipped; a dot after a word or digit is not a selector.
// Each name is reported once at its first occurrence.
func cssClasses(css string) []styleClass {
	var out []styleClass
	seen := map[string]bool{}
	for i := 0; i < len(css); i++ {
		c := css[i]
		switch {
		case c == '/' && i+1 < len(css) && css[i+1] == '*':
			end := strings.Index(css[i+2:], "*/")
			if end < 0 {
				return out
			}
			i += end + 3
		case c == '"' || c == '\'':
			for i++; i < len(css) && css[i] != c && css[i] != '\n'; i++ {
				if css[i] == '\\' {
					i++
				}
			}
		case c == '(' && i >= 3 && strings.EqualFold(css[i-3:i], "url"):
			end := strings.IndexByte(css[i:], ')')
			if end < 0 {
				return out
			}
			i += end
		case c == '.' && i+1 < len(css) && isClassStart(css[i+1]) && (i == 0 || !isClassChar(css[i-1])):
			j := i + 1
			for j < len(css) && (isClassChar(css[j]) || css[j] == '\\' && j+1 < len(css)) {
				if css[j] == '\\' {
					j++
				}
				j++
			}
			name := css[i+1 : j]
			if !seen[name] {
				seen[name] = true
				out = append(out, styleClass{Name: name, Offset: i + 1})
			}
			i = j - 1
		}
	}
	return out
}

func isClassStart(b byte) bool {
	return b == '_' || b == '-' || b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z' || b >= 0x80
}

func isClassChar(b byte) bool {
	return isClassStart(b) || b >= '0' && b <= '9'
}
