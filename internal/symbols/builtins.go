package symbols

import (
	"glfuzz/internal/ast"
	"glfuzz/internal/types"
)

func builtinVar(name string, t types.Type, st types.Storage) Symbol {
	t.Quals.Storage = st
	return Symbol{Name: name, Type: t, Kind: SymbolBuiltin}
}

// Builtins returns the stage-specific built-in variables.
func Builtins(kind ast.ShaderKind) []Symbol {
	vec4 := types.Vector(types.KindFloat, 4)
	uvec3 := types.Vector(types.KindUint, 3)
	switch kind {
	case ast.ShaderFragment:
		return []Symbol{
			builtinVar("gl_FragCoord", vec4, types.StorageIn),
			builtinVar("gl_FrontFacing", types.Bool, types.StorageIn),
			builtinVar("gl_PointCoord", types.Vector(types.KindFloat, 2), types.StorageIn),
		}
	case ast.ShaderVertex:
		return []Symbol{
			builtinVar("gl_VertexID", types.Int, types.StorageIn),
			builtinVar("gl_InstanceID", types.Int, types.StorageIn),
			builtinVar("gl_Position", vec4, types.StorageOut),
			builtinVar("gl_PointSize", types.Float, types.StorageOut),
		}
	case ast.ShaderCompute:
		return []Symbol{
			builtinVar("gl_GlobalInvocationID", uvec3, types.StorageIn),
			builtinVar("gl_LocalInvocationID", uvec3, types.StorageIn),
			builtinVar("gl_WorkGroupID", uvec3, types.StorageIn),
			builtinVar("gl_NumWorkGroups", uvec3, types.StorageIn),
			builtinVar("gl_LocalInvocationIndex", types.Uint, types.StorageIn),
		}
	}
	return nil
}

// NewGlobalScope returns a root scope holding the built-ins of kind.
func NewGlobalScope(kind ast.ShaderKind) *Scope {
	s := New(ScopeGlobal, nil)
	for _, b := range Builtins(kind) {
		s.Declare(b)
	}
	return s
}
