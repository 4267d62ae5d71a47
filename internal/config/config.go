// Package config loads the optional naux.yaml runtime-tunables file.
// Every field is implementation-defined by spec.md: absence of the file
// is not an error, and every field has a documented default.
package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds the tunables a naux.yaml may override.
type Config struct {
	// RecursionLimit bounds user-function call depth before the tree
	// interpreter and VM both raise a runtime/recursion-limit diagnostic.
	RecursionLimit int `yaml:"recursion_limit"`
	// JITHotnessThreshold is the per-function call count at which the
	// VM's ThresholdLogger reports a function as hot.
	JITHotnessThreshold uint64 `yaml:"jit_hotness_threshold"`
	// Engine selects the default execution engine for a bare `naux run`
	// invocation with no --engine flag: "tree" or "vm".
	Engine string `yaml:"engine"`
}

// Default returns the tunables used when no naux.yaml is present.
func Default() Config {
	return Config{
		RecursionLimit:      4096,
		JITHotnessThreshold: 1000,
		Engine:              "tree",
	}
}

// Load reads naux.yaml from path, overlaying it on Default(). A missing
// file is not an error; a present-but-invalid file is.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}
