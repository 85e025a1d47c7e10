package source

import (
	"path/filepath"
	"slices"
	"sort"

	"fortio.org/safecast"
)

// Normalize strips a UTF-8 BOM and folds CRLF into LF.
func Normalize(content []byte) ([]byte, FileFlags) {
	var flags FileFlags
	content, hadBOM := removeBOM(content)
	if hadBOM {
		flags |= FileHadBOM
	}
	content, hadCRLF := normalizeCRLF(content)
	if hadCRLF {
		flags |= FileNormalizedCRLF
	}
	return content, flags
}

// normalizeCRLF заменяет все \r\n на \n, не трогая одиночные \r.
func normalizeCRLF(content []byte) ([]byte, bool) {
	if !slices.Contains(content, '\r') {
		return content, false
	}
	out := make([]byte, 0, len(content))
	changed := false
	for i := 0; i < len(content); i++ {
		if content[i] == '\r' && i+1 < len(content) && content[i+1] == '\n' {
			changed = true
			continue
		}
		out = append(out, content[i])
	}
	return out, changed
}

func removeBOM(content []byte) ([]byte, bool) {
	if len(content) >= 3 && content[0] == 0xEF && content[1] == 0xBB && content[2] == 0xBF {
		return content[3:], true
	}
	return content, false
}

func buildLineIndex(content []byte) []uint32 {
	out := make([]uint32, 0, len(content)/32)
	for i, b := range content {
		if b == '\n' {
			out = append(out, Offset(i))
		}
	}
	return out
}

// BuildLineIndex returns the offsets of every '\n' in text.
func BuildLineIndex(text string) []uint32 {
	return buildLineIndex([]byte(text))
}

// lineBounds returns [start,end) of the zero-based line, without the newline.
func lineBounds(lineIdx []uint32, contentLen, line int) (start, end uint32, ok bool) {
	if line < 0 || line > len(lineIdx) {
		return 0, 0, false
	}
	if line > 0 {
		start = lineIdx[line-1] + 1
	}
	end = Offset(contentLen)
	if line < len(lineIdx) {
		end = lineIdx[line]
	}
	if start > end {
		return 0, 0, false
	}
	return start, end, true
}

func toLineCol(lineIdx []uint32, off uint32) LineCol {
	// первая '\n' с позицией >= off закрывает строку off
	line := sort.Search(len(lineIdx), func(i int) bool { return lineIdx[i] >= off })
	var lineStart uint32
	if line > 0 {
		lineStart = lineIdx[line-1] + 1
	}
	return LineCol{Line: Offset(line + 1), Col: off - lineStart + 1}
}

// LineColAt resolves an offset of text given its line index.
func LineColAt(lineIdx []uint32, off uint32) LineCol {
	return toLineCol(lineIdx, off)
}

// Offset converts a Go length or index to a uint32 offset, saturating on overflow.
func Offset(n int) uint32 {
	if n < 0 {
		return 0
	}
	v, err := safecast.Conv[uint32](n)
	if err != nil {
		return ^uint32(0)
	}
	return v
}

// NormalizePath gives every path one slash-separated, cleaned spelling.
func NormalizePath(p string) string {
	return filepath.ToSlash(filepath.Clean(p))
}
