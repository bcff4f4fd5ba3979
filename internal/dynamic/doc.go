// Package dynamic compiles dynamic block definitions, blocks declared
// entirely as data, into blocks that satisfy the same manifest.Block
// contract as compiled-in ones.
//
// A definition's body is a set of expressions, one per declared output. They
// are decoded into expression trees once at compile time and evaluated by the
// expr interpreter on every Run, so no code is generated and a body can only
// reach the parameters the definition declares.
//
// Compiled blocks and the kinds their definitions introduce live only as
// long as the request-scoped kind registry they were compiled against.
package dynamic
