package config

import (
	"errors"
	"fmt"
	"path"
	"regexp"
	"sort"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"vuecore/internal/scriptranges"
)

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid configuration")

var (
	libRe       = regexp.MustCompile(`^(@[a-z0-9-~][a-z0-9-._~]*/)?[a-z0-9-~][a-z0-9-._~]*$`)
	extRe       = regexp.MustCompile(`^\.[A-Za-z0-9]+$`)
	selectorRe  = regexp.MustCompile(`^[a-z][a-z0-9-]*(\[type=[a-z]+\])?$`)
	typesHoleRe = regexp.MustCompile(`\{[^}]*\}`)
)

// Validate checks option ranges and patterns.
func (o *Options) Validate() error {
	return validation.ValidateStruct(o,
		validation.Field(&o.Target, validation.Required, validation.Min(2.0), validation.Max(99.0)),
		validation.Field(&o.Lib, validation.Required, validation.Match(libRe)),
		validation.Field(&o.DataAttributes, validation.Each(validation.By(glob))),
		validation.Field(&o.HTMLAttributes, validation.Each(validation.By(glob))),
		validation.Field(&o.ExperimentalModelPropName, validation.By(modelProps)),
		validation.Field(&o.Macros, validation.By(macroAliases)),
		validation.Field(&o.GlobalTypesPath, validation.By(typesPath)),
		validation.Field(&o.Extensions),
	)
}

// Validate checks that every extension is well formed and .vue files exist.
func (e Extensions) Validate() error {
	return validation.ValidateStruct(&e,
		validation.Field(&e.Vue, validation.Required, validation.Each(validation.Match(extRe))),
		validation.Field(&e.Markdown, validation.Each(validation.Match(extRe))),
		validation.Field(&e.HTML, validation.Each(validation.Match(extRe))),
	)
}

func glob(v any) error {
	s, _ := v.(string)
	if _, err := path.Match(s, ""); err != nil {
		return fmt.Errorf("bad pattern %q", s)
	}
	return nil
}

func modelProps(v any) error {
	m, _ := v.(map[string][]string)
	for prop, selectors := range m {
		if prop == "" {
			return errors.New("empty property name")
		}
		for _, s := range selectors {
			if !selectorRe.MatchString(s) {
				return fmt.Errorf("%s: bad selector %q", prop, s)
			}
		}
	}
	return nil
}

func macroAliases(v any) error {
	m, _ := v.(map[string][]string)
	known := scriptranges.DefaultNames()
	var unknown []string
	for name := range m {
		if _, ok := known[name]; !ok {
			unknown = append(unknown, name)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return fmt.Errorf("unknown macro %s", strings.Join(unknown, ", "))
	}
	return nil
}

func typesPath(v any) error {
	s, _ := v.(string)
	for _, hole := range typesHoleRe.FindAllString(s, -1) {
		switch hole {
		case "{lib}", "{target}", "{strict}":
		default:
			return fmt.Errorf("unknown placeholder %s", hole)
		}
	}
	return nil
}
