package clock

// Timestamp is an opaque logical time. Values only ever grow.
type Timestamp uint64

// Clock supplies timestamps for commits and reveals.
type Clock interface {
	// Now returns the current time; successive calls never decrease.
	Now() Timestamp
}
