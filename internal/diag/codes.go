package diag

import (
	"fmt"
)

type Code uint16

const (
	UnknownCode Code = 0

	// Блоки компонента
	SfcInfo             Code = 1000
	SfcUnclosedBlock    Code = 1001
	SfcUnclosedStartTag Code = 1002
	SfcDuplicateBlock   Code = 1003
	SfcSrcWithContent   Code = 1004
	SfcStrayEndTag      Code = 1005

	// Шаблон
	TplInfo                  Code = 2000
	TplUnclosedElement       Code = 2001
	TplStrayEndTag           Code = 2002
	TplUnclosedInterpolation Code = 2003
	TplUnclosedComment       Code = 2004
	TplUnclosedAttrValue     Code = 2005
	TplInvalidVFor           Code = 2006
	TplElseWithoutIf         Code = 2007
	TplMisplacedVSlot        Code = 2008
	TplMissingExpression     Code = 2009
	TplUnclosedStartTag      Code = 2010

	// Скрипт
	ScrInfo                 Code = 3000
	ScrUnterminatedString   Code = 3001
	ScrUnterminatedTemplate Code = 3002
	ScrUnterminatedComment  Code = 3003
	ScrUnterminatedRegex    Code = 3004
	ScrUnknownChar          Code = 3005
	ScrMacroOutsideSetup    Code = 3006
	ScrDuplicateMacro       Code = 3007

	// Генерация кода
	GenInfo                    Code = 4000
	GenUnclosedToken           Code = 4001
	GenPluginFailed            Code = 4002
	GenUnusedExpectError       Code = 4003
	GenUnknownDirectiveComment Code = 4004

	IOInfo          Code = 5000
	IOLoadFileError Code = 5001
	IOCacheError    Code = 5002

	CfgInfo          Code = 6000
	CfgInvalid       Code = 6001
	CfgManifestParse Code = 6002

	ObsInfo    Code = 7000
	ObsTimings Code = 7001
)

var codeDescription = map[Code]string{
	UnknownCode: "Unknown error",

	SfcInfo:             "Component block information",
	SfcUnclosedBlock:    "Block has no closing tag",
	SfcUnclosedStartTag: "Block start tag is not terminated",
	SfcDuplicateBlock:   "Duplicate block is ignored",
	SfcSrcWithContent:   "Block with src attribute has inline content",
	SfcStrayEndTag:      "Closing tag without matching block",

	TplInfo:                  "Template information",
	TplUnclosedElement:       "Element is missing end tag",
	TplStrayEndTag:           "Invalid end tag",
	TplUnclosedInterpolation: "Interpolation end sign was not found",
	TplUnclosedComment:       "Unterminated comment",
	TplUnclosedAttrValue:     "Unterminated attribute value",
	TplInvalidVFor:           "v-for has invalid expression",
	TplElseWithoutIf:         "v-else/v-else-if has no adjacent v-if or v-else-if",
	TplMisplacedVSlot:        "v-slot can only be used on components or <template> tags",
	TplMissingExpression:     "Directive is missing expression",
	TplUnclosedStartTag:      "Start tag is not terminated",

	ScrInfo:                 "Script information",
	ScrUnterminatedString:   "Unterminated string literal",
	ScrUnterminatedTemplate: "Unterminated template literal",
	ScrUnterminatedComment:  "Unterminated block comment",
	ScrUnterminatedRegex:    "Unterminated regular expression",
	ScrUnknownChar:          "Unknown character",
	ScrMacroOutsideSetup:    "Compiler macro used outside <script setup>",
	ScrDuplicateMacro:       "Compiler macro is called more than once",

	GenInfo:                    "Code generation information",
	GenUnclosedToken:           "Mapping token left open",
	GenPluginFailed:            "Language plugin failed",
	GenUnusedExpectError:       "Unused '@vue-expect-error' directive",
	GenUnknownDirectiveComment: "Unknown directive comment",

	IOInfo:          "I/O information",
	IOLoadFileError: "Failed to load file",
	IOCacheError:    "Cache I/O failure",

	CfgInfo:          "Configuration information",
	CfgInvalid:       "Invalid configuration",
	CfgManifestParse: "Failed to parse vuecore.toml",

	ObsInfo:    "Observability information",
	ObsTimings: "Pipeline timings",
}

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("SFC%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("TPL%04d", ic)
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("SCR%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("GEN%04d", ic)
	case ic >= 5000 && ic < 6000:
		return fmt.Sprintf("IO%04d", ic)
	case ic >= 6000 && ic < 7000:
		return fmt.Sprintf("CFG%04d", ic)
	case ic >= 7000 && ic < 8000:
		return fmt.Sprintf("OBS%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[UnknownCode]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}

func (c Code) MarshalText() ([]byte, error) {
	return []byte(c.ID()), nil
}
