package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"glfuzz/internal/ast"
)

type fileGeneration struct {
	ShaderKind       string `toml:"shader_kind"`
	InjectionSwitch  bool   `toml:"injection_switch"`
	MaxDonorsPerPass int    `toml:"max_donors_per_pass"`
	AvoidLongLoops   bool   `toml:"avoid_long_loops"`
	LoopLimitMin     int    `toml:"loop_limit_min"`
	LoopLimitMax     int    `toml:"loop_limit_max"`
	MaxDonationSize  int    `toml:"max_donation_size"`
	MaxExprDepth     int    `toml:"max_expr_depth"`
	MaxDonationTries int    `toml:"max_donation_tries"`
	RestrictIndexing bool   `toml:"restrict_array_indexing"`
}

type fileProbabilities struct {
	Preset                 string `toml:"preset"`
	SubstituteFreeVariable int    `toml:"substitute_free_variable"`
	DonateDeadCode         int    `toml:"donate_dead_code"`
	DonateLiveCode         int    `toml:"donate_live_code"`
	InjectJump             int    `toml:"inject_jump"`
	WrapStmt               int    `toml:"wrap_stmt"`
	AddDeadOutputWrites    int    `toml:"add_dead_output_writes"`
	AddLiveOutputWrites    int    `toml:"add_live_output_writes"`
	Switchify              int    `toml:"switchify"`
}

type fileConfig struct {
	Generation    fileGeneration    `toml:"generation"`
	Probabilities fileProbabilities `toml:"probabilities"`
}

// Load reads a glfuzz.toml. Keys that are absent keep their defaults for
// kind; a [generation].shader_kind key overrides kind itself.
func Load(path string, kind ast.ShaderKind) (Config, error) {
	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		return Config{}, fmt.Errorf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}

	cfg := Default(kind)
	gen := raw.Generation
	if meta.IsDefined("generation", "shader_kind") {
		k, err := ast.ParseShaderKind(strings.TrimSpace(gen.ShaderKind))
		if err != nil {
			return Config{}, fmt.Errorf("%s: %w", path, err)
		}
		cfg.Params.ShaderKind = k
	}
	setBool := func(dst *bool, key string, v bool) {
		if meta.IsDefined("generation", key) {
			*dst = v
		}
	}
	setInt := func(dst *int, section, key string, v int) {
		if meta.IsDefined(section, key) {
			*dst = v
		}
	}
	setBool(&cfg.Params.InjectionSwitchAvailable, "injection_switch", gen.InjectionSwitch)
	setBool(&cfg.Params.AvoidLongLoops, "avoid_long_loops", gen.AvoidLongLoops)
	setBool(&cfg.Params.RestrictArrayIndexing, "restrict_array_indexing", gen.RestrictIndexing)
	setInt(&cfg.Params.MaxDonorsPerPass, "generation", "max_donors_per_pass", gen.MaxDonorsPerPass)
	setInt(&cfg.Params.LoopLimitMin, "generation", "loop_limit_min", gen.LoopLimitMin)
	setInt(&cfg.Params.LoopLimitMax, "generation", "loop_limit_max", gen.LoopLimitMax)
	setInt(&cfg.Params.MaxDonationSize, "generation", "max_donation_size", gen.MaxDonationSize)
	setInt(&cfg.Params.MaxExprDepth, "generation", "max_expr_depth", gen.MaxExprDepth)
	setInt(&cfg.Params.MaxDonationTries, "generation", "max_donation_tries", gen.MaxDonationTries)

	prob := raw.Probabilities
	if meta.IsDefined("probabilities", "preset") {
		p, err := Preset(strings.TrimSpace(prob.Preset))
		if err != nil {
			return Config{}, fmt.Errorf("%s: %w", path, err)
		}
		cfg.Probabilities = p
	}
	setInt(&cfg.Probabilities.SubstituteFreeVariable, "probabilities", "substitute_free_variable", prob.SubstituteFreeVariable)
	setInt(&cfg.Probabilities.DonateDeadCode, "probabilities", "donate_dead_code", prob.DonateDeadCode)
	setInt(&cfg.Probabilities.DonateLiveCode, "probabilities", "donate_live_code", prob.DonateLiveCode)
	setInt(&cfg.Probabilities.InjectJump, "probabilities", "inject_jump", prob.InjectJump)
	setInt(&cfg.Probabilities.WrapStmt, "probabilities", "wrap_stmt", prob.WrapStmt)
	setInt(&cfg.Probabilities.AddDeadOutputWrites, "probabilities", "add_dead_output_writes", prob.AddDeadOutputWrites)
	setInt(&cfg.Probabilities.AddLiveOutputWrites, "probabilities", "add_live_output_writes", prob.AddLiveOutputWrites)
	setInt(&cfg.Probabilities.Switchify, "probabilities", "switchify", prob.Switchify)

	if err := cfg.Params.Validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	if err := cfg.Probabilities.Validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// FindConfig walks up from startDir to locate glfuzz.toml.
func FindConfig(startDir string) (path string, ok bool, err error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}
