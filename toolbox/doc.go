// Package toolbox registers wrapped functions as named tools and describes them in
// function-calling form: a name, a description and a JSON-schema object of parameters built
// from each function's type hints. Call dispatches by tool name; arguments are translated by
// the function's definition before the original runs.
package toolbox
