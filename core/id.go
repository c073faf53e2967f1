package core

import "github.com/google/uuid"

// NewID returns a unique identifier for correlating one exchange across log
// records.
func NewID() string {
	return uuid.NewString()
}
