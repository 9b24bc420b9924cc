package participants

// RefreshPolicy decides what happens to a field on a tick.
type RefreshPolicy int

const (
	// Skip keeps the previous value without reading.
	Skip RefreshPolicy = iota
	// Refresh reads and keeps the previous value if the read failed.
	Refresh
	// Force reads regardless of timers and locks.
	Force
)

func (p RefreshPolicy) String() string {
	switch p {
	case Skip:
		return "skip"
	case Refresh:
		return "refresh"
	case Force:
		return "force"
	default:
		return "unknown"
	}
}

// Reads reports whether the policy requires a fresh reading.
func (p RefreshPolicy) Reads() bool { return p != Skip }

// ResolveField merges a field. A failed read (nil fresh) never replaces a
// known value.
func ResolveField[T any](prev, fresh *T, policy RefreshPolicy) *T {
	if policy == Skip || fresh == nil {
		return prev
	}
	return fresh
}
