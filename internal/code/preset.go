package code

import "fmt"

// Preset is the closed set of capability combinations generators use.
type Preset uint8

const (
	PresetAll Preset = iota
	PresetNone
	PresetVerification
	PresetCompletion
	PresetAdditionalCompletion
	PresetWithoutCompletion
	PresetNavigation
	PresetNavigationWithoutRename
	PresetNavigationAndCompletion
	PresetNavigationAndVerification
	PresetWithoutNavigation
	PresetWithoutHighlight
	PresetWithoutHighlightAndCompletion
	PresetWithoutHighlightAndNavigation
	PresetWithoutHighlightAndCompletionAndNavigation
	PresetSemanticWithoutHighlight
	presetCount
)

const allFlags = Verification | Completion | Semantic | Highlight | Navigation | Rename | Structure | Format

var presetFlags = [presetCount]Flag{
	PresetAll:                                       allFlags,
	PresetNone:                                      0,
	PresetVerification:                              Verification,
	PresetCompletion:                                Completion,
	PresetAdditionalCompletion:                      Completion | CompletionAdditional,
	PresetWithoutCompletion:                         allFlags &^ Completion,
	PresetNavigation:                                Navigation | Rename,
	PresetNavigationWithoutRename:                   Navigation,
	PresetNavigationAndCompletion:                   Navigation | Rename | Completion,
	PresetNavigationAndVerification:                 Navigation | Rename | Verification,
	PresetWithoutNavigation:                         allFlags &^ (Navigation | Rename),
	PresetWithoutHighlight:                          allFlags &^ Highlight,
	PresetWithoutHighlightAndCompletion:             allFlags &^ (Highlight | Completion),
	PresetWithoutHighlightAndNavigation:             allFlags &^ (Highlight | Navigation | Rename),
	PresetWithoutHighlightAndCompletionAndNavigation: allFlags &^ (Highlight | Completion | Navigation | Rename),
	PresetSemanticWithoutHighlight:                  Semantic,
}

var presetNames = [presetCount]string{
	"all", "none", "verification", "completion", "additionalCompletion",
	"withoutCompletion", "navigation", "navigationWithoutRename",
	"navigationAndCompletion", "navigationAndVerification", "withoutNavigation",
	"withoutHighlight", "withoutHighlightAndCompletion",
	"withoutHighlightAndNavigation", "withoutHighlightAndCompletionAndNavigation",
	"semanticWithoutHighlight",
}

// Caps returns the capability set of the preset.
func (p Preset) Caps() Capabilities {
	if p >= presetCount {
		panic(fmt.Sprintf("code: unknown preset %d", p))
	}
	return Capabilities{Flags: presetFlags[p]}
}

func (p Preset) String() string {
	if p >= presetCount {
		return fmt.Sprintf("Preset(%d)", p)
	}
	return presetNames[p]
}

// ParsePreset looks a preset up by name.
func ParsePreset(name string) (Preset, bool) {
	for i, n := range presetNames {
		if n == name {
			return Preset(i), true
		}
	}
	return 0, false
}
