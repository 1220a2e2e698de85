// Package data defines the terminal value tree produced by resolving l20n
// entries and the bridge between that tree and ordinary Go values.
//
// Host values enter through [Encode] (or [Load] for JSON and YAML files) and
// leave through [Decode]:
//
//	in, _ := data.Encode(map[string]any{"number": 3})
//	var out struct{ Factorial string }
//	err := data.Decode(resolved, &out)
package data
