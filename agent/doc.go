// Package agent contains the model-driven agent type and the registry used
// to dispatch agents by id.
//
// A ModelAgent couples a system instruction (static text or a Provider),
// a closed tool.Set and a step budget. Its Run method hands the turn to the
// flow step loop with a concrete model.Model resolved by the caller.
//
// Registry is built once at startup and never mutated afterwards, so it can
// be shared freely between goroutines.
package agent
