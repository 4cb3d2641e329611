package repl

// Engine is an opaque reference to a transactional storage engine,
// compared by identity. The core never inspects it beyond equality; a host
// server will back it with a pointer to its real engine handle.
type Engine any

// SameEngine reports whether a and b refer to the same engine.
func SameEngine(a, b Engine) bool {
	return a == b
}
