package id

import "github.com/oklog/ulid/v2"

// New generates a new ULID string for account ids. ulid.Make draws from a
// process-wide monotonic entropy source, so ids created within the same
// millisecond still sort in creation order.
func New() string {
	return ulid.Make().String()
}
