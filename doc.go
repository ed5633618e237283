// Package argmask wraps Go functions so callers can pass human-readable string values
// (or sequences of them) that are translated into the internal values the function expects.
//
// A Definition declares, per parameter, which external keys are accepted and what each one
// stands for. Keys are matched case-insensitively for single strings. Adapt introspects the
// target function, and every Call binds positional and Named arguments to parameter names,
// translates them, and either calls the original by name or returns one *AdaptationError that
// lists every invalid argument. Wrapped functions also carry documentation, per-parameter type
// hints (JSON Schema) and a tool descriptor for registration consumers such as package toolbox.
package argmask
