package utils

const (
	// NODETOL is the tolerance below which two coordinates or weights are treated as equal
	NODETOL = 1.e-12
)
