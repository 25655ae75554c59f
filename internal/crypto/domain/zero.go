package domain

// Zero wipes b in place. Derived keys and plaintext scratch buffers are zeroed as soon as
// an operation no longer needs them.
func Zero(b []byte) {
	clear(b)
}

// ZeroAll wipes every buffer in bufs.
func ZeroAll(bufs ...[]byte) {
	for _, b := range bufs {
		clear(b)
	}
}
