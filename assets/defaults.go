package assets

import (
	_ "embed"
)

// DefaultConfigYAML contains the embedded default configuration.
//
//go:embed defaults/config.yaml
var DefaultConfigYAML []byte

// DefaultPatternsYAML contains the built-in pattern resolution rules.
//
//go:embed defaults/patterns.yaml
var DefaultPatternsYAML []byte

// DefaultValidatorYAML contains the built-in danger signatures.
//
//go:embed defaults/validator.yaml
var DefaultValidatorYAML []byte
