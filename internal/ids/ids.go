// Package ids generates log-correlation identifiers. These never appear on
// the HL7 wire; they exist purely to tie together the several log lines one
// message produces as it moves through a channel.
package ids

import "github.com/google/uuid"

// New returns a fresh correlation id for a single message's trip through a
// channel.
func New() string {
	return uuid.NewString()
}
