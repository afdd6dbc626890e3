package template

import "github.com/google/uuid"

// IDGenerator produces collision-resistant unique ids for sections and
// elements. The parser and normalizer take one as an explicit dependency so
// tests can substitute deterministic sequences.
type IDGenerator func() string

// NewID is the default IDGenerator, backed by random UUIDs.
func NewID() string {
	return uuid.New().String()
}
