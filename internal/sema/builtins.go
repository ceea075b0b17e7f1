package sema

import "glfuzz/internal/types"

type builtinShape uint8

const (
	shapeSameAsFirst builtinShape = iota
	shapeFloat
	shapeBool
	shapeBoolVector
	shapeVec3
	shapeVec4
)

// builtinShapes covers the GLSL ES built-in functions that commonly occur
// in test shaders.
var builtinShapes = make(map[string]builtinShape)

func init() {
	groups := []struct {
		shape builtinShape
		names []string
	}{
		{shapeSameAsFirst, []string{
			"abs", "sign", "floor", "ceil", "fract", "trunc", "round", "roundEven",
			"mod", "min", "max", "clamp", "mix", "step", "smoothstep",
			"sin", "cos", "tan", "asin", "acos", "atan", "sinh", "cosh", "tanh",
			"pow", "exp", "log", "exp2", "log2", "sqrt", "inversesqrt",
			"normalize", "reflect", "refract", "faceforward", "radians", "degrees",
			"not", "transpose", "inverse", "matrixCompMult", "dFdx", "dFdy", "fwidth",
		}},
		{shapeFloat, []string{"length", "distance", "dot", "determinant"}},
		{shapeBool, []string{"any", "all"}},
		{shapeBoolVector, []string{
			"isnan", "isinf", "lessThan", "lessThanEqual", "greaterThan",
			"greaterThanEqual", "equal", "notEqual",
		}},
		{shapeVec3, []string{"cross"}},
		{shapeVec4, []string{"texture", "texture2D", "textureLod", "texelFetch"}},
	}
	for _, g := range groups {
		for _, n := range g.names {
			builtinShapes[n] = g.shape
		}
	}
}

func builtinResult(name string, args []types.Type) types.Type {
	shape, ok := builtinShapes[name]
	if !ok {
		return types.Invalid
	}
	var first types.Type
	if len(args) > 0 {
		first = args[0]
	}
	switch shape {
	case shapeSameAsFirst:
		return first
	case shapeFloat:
		return types.Float
	case shapeBool:
		return types.Bool
	case shapeBoolVector:
		if first.IsVector() {
			return types.Vector(types.KindBool, int(first.Size))
		}
		return types.Bool
	case shapeVec3:
		return types.Vector(types.KindFloat, 3)
	case shapeVec4:
		return types.Vector(types.KindFloat, 4)
	}
	return types.Invalid
}

// IsBuiltinFunction reports whether name is a known built-in function.
func IsBuiltinFunction(name string) bool {
	_, ok := builtinShapes[name]
	return ok
}
