// Package config holds the read-only knobs a generation run is driven by
// and loads them from glfuzz.toml.
package config

import (
	"errors"
	"fmt"

	"glfuzz/internal/ast"
)

// FileName is the configuration file looked up by FindConfig.
const FileName = "glfuzz.toml"

var (
	// ErrInvalidProbability reports a percentage outside [0, 100].
	ErrInvalidProbability = errors.New("probability must be within [0, 100]")
	// ErrInvalidLoopLimits reports an empty or negative loop limit range.
	ErrInvalidLoopLimits = errors.New("invalid loop limit range")
	// ErrUnknownPreset reports an unrecognised probabilities preset.
	ErrUnknownPreset = errors.New("unknown probabilities preset")
)

// GenerationParams configure every pass of one run.
type GenerationParams struct {
	ShaderKind ast.ShaderKind
	// InjectionSwitchAvailable lets opaque expressions read the
	// "uniform vec2 injectionSwitch" (x = 0.0, y = 1.0) provided by the harness.
	InjectionSwitchAvailable bool
	// MaxDonorsPerPass bounds the number of distinct donors one donation
	// pass may draw from.
	MaxDonorsPerPass int
	// AvoidLongLoops truncates loops of live donors.
	AvoidLongLoops bool
	LoopLimitMin   int
	LoopLimitMax   int
	// MaxDonationSize rejects donor fragments with more statements; zero
	// disables the check.
	MaxDonationSize int
	// MaxExprDepth caps the depth of fuzzed and opaque expressions.
	MaxExprDepth int
	// MaxDonationTries is how many fragments are drawn before a point is
	// given up.
	MaxDonationTries int
	// RestrictArrayIndexing rejects donor fragments that index arrays with
	// a free variable (WebGL only allows constant-index-expressions).
	RestrictArrayIndexing bool
}

// DefaultParams returns the parameters used when nothing is configured.
func DefaultParams(kind ast.ShaderKind) GenerationParams {
	return GenerationParams{
		ShaderKind:               kind,
		InjectionSwitchAvailable: true,
		MaxDonorsPerPass:         5,
		AvoidLongLoops:           true,
		LoopLimitMin:             3,
		LoopLimitMax:             7,
		MaxDonationSize:          60,
		MaxExprDepth:             3,
		MaxDonationTries:         10,
	}
}

// Validate checks the numeric ranges.
func (p GenerationParams) Validate() error {
	if p.LoopLimitMin < 0 || p.LoopLimitMax < p.LoopLimitMin {
		return fmt.Errorf("%w: [%d, %d]", ErrInvalidLoopLimits, p.LoopLimitMin, p.LoopLimitMax)
	}
	if p.MaxDonorsPerPass < 1 {
		return fmt.Errorf("max_donors_per_pass must be positive, got %d", p.MaxDonorsPerPass)
	}
	if p.MaxExprDepth < 0 || p.MaxDonationSize < 0 || p.MaxDonationTries < 1 {
		return errors.New("negative depth, size or tries")
	}
	return nil
}

// Probabilities are per-strategy percentages.
type Probabilities struct {
	SubstituteFreeVariable int
	DonateDeadCode         int
	DonateLiveCode         int
	InjectJump             int
	WrapStmt               int
	AddDeadOutputWrites    int
	AddLiveOutputWrites    int
	Switchify              int
}

// DefaultProbabilities substitutes free variables 80% of the time and
// fires every strategy at 20% of the candidate points.
func DefaultProbabilities() Probabilities {
	return Probabilities{
		SubstituteFreeVariable: 80,
		DonateDeadCode:         20,
		DonateLiveCode:         20,
		InjectJump:             20,
		WrapStmt:               20,
		AddDeadOutputWrites:    20,
		AddLiveOutputWrites:    20,
		Switchify:              20,
	}
}

// SmallProbabilities keeps variants close to the reference.
func SmallProbabilities() Probabilities {
	return Probabilities{
		SubstituteFreeVariable: 80,
		DonateDeadCode:         5,
		DonateLiveCode:         5,
		InjectJump:             5,
		WrapStmt:               5,
		AddDeadOutputWrites:    5,
		AddLiveOutputWrites:    5,
		Switchify:              5,
	}
}

// AggressiveControlFlow favours the guarded control-flow strategies.
func AggressiveControlFlow() Probabilities {
	p := DefaultProbabilities()
	p.InjectJump = 70
	p.WrapStmt = 70
	p.AddDeadOutputWrites = 70
	p.AddLiveOutputWrites = 70
	p.Switchify = 70
	return p
}

// Preset returns the named probabilities.
func Preset(name string) (Probabilities, error) {
	switch name {
	case "", "default":
		return DefaultProbabilities(), nil
	case "small":
		return SmallProbabilities(), nil
	case "aggressive":
		return AggressiveControlFlow(), nil
	}
	return Probabilities{}, fmt.Errorf("%w %q", ErrUnknownPreset, name)
}

// Validate checks that every percentage is within [0, 100].
func (p Probabilities) Validate() error {
	fields := []struct {
		name string
		v    int
	}{
		{"substitute_free_variable", p.SubstituteFreeVariable},
		{"donate_dead_code", p.DonateDeadCode},
		{"donate_live_code", p.DonateLiveCode},
		{"inject_jump", p.InjectJump},
		{"wrap_stmt", p.WrapStmt},
		{"add_dead_output_writes", p.AddDeadOutputWrites},
		{"add_live_output_writes", p.AddLiveOutputWrites},
		{"switchify", p.Switchify},
	}
	for _, f := range fields {
		if f.v < 0 || f.v > 100 {
			return fmt.Errorf("%s = %d: %w", f.name, f.v, ErrInvalidProbability)
		}
	}
	return nil
}

// Config is everything glfuzz.toml may set.
type Config struct {
	Params        GenerationParams
	Probabilities Probabilities
}

// Default returns the configuration used without a file.
func Default(kind ast.ShaderKind) Config {
	return Config{Params: DefaultParams(kind), Probabilities: DefaultProbabilities()}
}
