package source

type (
	// FileID uniquely identifies a component file within a FileSet.
	FileID uint32 // просто ID источника
	// FileFlags encodes metadata about a loaded file.
	FileFlags uint8
)

const (
	// FileVirtual marks files added from memory (tests, stdin, editor buffers).
	FileVirtual FileFlags = 1 << iota
	FileHadBOM
	FileNormalizedCRLF
)

// Kind classifies a component file by how its blocks are discovered.
type Kind uint8

const (
	// KindSFC is a regular single-file component with explicit blocks.
	KindSFC Kind = iota
	// KindMarkdown is a VitePress-style page; untagged text is an implicit template.
	KindMarkdown
	// KindHTML is a petite-vue page; the whole document is an implicit template.
	KindHTML
)

func (k Kind) String() string {
	switch k {
	case KindMarkdown:
		return "markdown"
	case KindHTML:
		return "html"
	default:
		return "sfc"
	}
}

// File captures metadata and content for a single component file.
type File struct {
	ID      FileID
	Path    string
	Content []byte
	LineIdx []uint32 // offsets of '\n'
	Hash    [32]byte
	Flags   FileFlags
}

// LineCol represents a human-readable position.
type LineCol struct {
	Line uint32 // 1-based
	Col  uint32 // 1-based, in bytes
}

// Position is an editor position: zero-based line and UTF-16 code unit column.
type Position struct {
	Line      int `json:"line"`
	Character int `json:"character"`
}
