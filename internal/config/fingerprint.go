package config

import (
	"bytes"
	"fmt"

	"github.com/BurntSushi/toml"

	"vuecore/internal/project"
)

// Fingerprint identifies the effective options. Two option sets with the
// same fingerprint generate identical code; map keys are encoded sorted.
func (o Options) Fingerprint() (project.Digest, error) {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(o.Effective()); err != nil {
		return project.Digest{}, fmt.Errorf("encode options: %w", err)
	}
	return project.HashBytes(buf.Bytes()), nil
}

// Encode renders options as a [compiler] table; used by `vuecore init`.
func Encode(o Options) (string, error) {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(manifest{Compiler: o, Cache: CacheConfig{Dir: ".vuecore-cache"}}); err != nil {
		return "", fmt.Errorf("encode manifest: %w", err)
	}
	return buf.String(), nil
}
