// Package token defines lexical token kinds for the GLSL subset understood by glfuzz.
// Invariants:
//   - Token.Text is a slice of the original source (no copies).
//   - Token.Span matches Text exactly.
//   - Built-in type names (float, vec4, mat3, sampler2D, ...) are identifiers;
//     they are recognized by the parser through package types, not the lexer.
//   - Preprocessor lines come through as a single Directive token.
package token
