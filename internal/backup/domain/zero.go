package domain

// Zero overwrites key material once a seal or open is done with it.
func Zero(b []byte) {
	clear(b)
}
