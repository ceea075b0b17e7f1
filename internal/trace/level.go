package trace

import (
	"fmt"
	"strings"
)

// Level is the verbosity of a tracer. Each level admits the scopes of the
// one before it.
type Level uint8

const (
	LevelOff    Level = iota
	LevelError        // phases, kept only by the ring for a dump on failure
	LevelPhase        // driver and pass spans
	LevelDetail       // plus variants and skipped points
	LevelDebug        // plus every injection point
)

var levelNames = [...]string{"off", "error", "phase", "detail", "debug"}

func (l Level) String() string {
	if int(l) < len(levelNames) {
		return levelNames[l]
	}
	return "unknown"
}

// ParseLevel parses a --trace-level value, ignoring case.
func ParseLevel(s string) (Level, error) {
	for i, name := range levelNames {
		if strings.EqualFold(s, name) {
			return Level(i), nil
		}
	}
	return LevelOff, fmt.Errorf("invalid trace level: %q (expected: off|error|phase|detail|debug)", s)
}

// ShouldEmit reports whether events of scope pass at level l.
func (l Level) ShouldEmit(scope Scope) bool {
	switch l {
	case LevelError, LevelPhase:
		return scope <= ScopePass
	case LevelDetail:
		return scope <= ScopeVariant
	case LevelDebug:
		return true
	}
	return false
}
