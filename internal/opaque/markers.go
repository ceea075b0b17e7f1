package opaque

import "strings"

// Marker macros. Each one documents why a piece of code is present and
// expands to an expression with no effect beyond its value.
const (
	MarkerDead           = "_GLF_DEAD"
	MarkerFuzzed         = "_GLF_FUZZED"
	MarkerFalse          = "_GLF_FALSE"
	MarkerTrue           = "_GLF_TRUE"
	MarkerZero           = "_GLF_ZERO"
	MarkerOne            = "_GLF_ONE"
	MarkerIdentity       = "_GLF_IDENTITY"
	MarkerWrappedIfTrue  = "_GLF_WRAPPED_IF_TRUE"
	MarkerWrappedIfFalse = "_GLF_WRAPPED_IF_FALSE"
	MarkerWrappedLoop    = "_GLF_WRAPPED_LOOP"
	MarkerSwitch         = "_GLF_SWITCH"
)

// InjectionSwitch is the uniform the harness sets to (0.0, 1.0).
const InjectionSwitch = "injectionSwitch"

// Prelude defines the markers so that a variant compiles on its own. It
// goes right after the #version line.
const Prelude = `#define _GLF_ZERO(X, Y)          (Y)
#define _GLF_ONE(X, Y)           (Y)
#define _GLF_FALSE(X, Y)         (Y)
#define _GLF_TRUE(X, Y)          (Y)
#define _GLF_IDENTITY(X, Y)      (Y)
#define _GLF_DEAD(X)             (X)
#define _GLF_FUZZED(X)           (X)
#define _GLF_WRAPPED_LOOP(X)     X
#define _GLF_WRAPPED_IF_TRUE(X)  X
#define _GLF_WRAPPED_IF_FALSE(X) X
#define _GLF_SWITCH(X)           X
`

// IsMarker reports whether name is one of the marker macros.
func IsMarker(name string) bool {
	return strings.HasPrefix(name, "_GLF_") && strings.Contains(Prelude, "#define "+name+"(")
}
