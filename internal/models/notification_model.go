package models

// BadgeCounts holds the three notification badge counters for a user, plus the
// aggregation cycle that produced them. Cycles are monotonically increasing;
// a client comparing cycles can discard counts from a superseded fetch the
// same way the server does.
type BadgeCounts struct {
	Invites        int    `json:"invites"`        // pending invites that reference a circle
	RevealRequests int    `json:"revealRequests"` // pending reveals, always 0 for non-premium users
	Goals          int    `json:"goals"`          // pending goal suggestions directed at the user
	Cycle          uint64 `json:"cycle"`
}
