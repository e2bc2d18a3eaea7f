// Package glexpr implements a typed expression graph that generates GLSL.
//
// Each [Node] knows its result type and a unique name and can produce the
// top level declarations and the statements inside main needed to compute
// its value. Nodes are built with a [Builder] which rejects ill-typed
// operands at construction time.
package glexpr
