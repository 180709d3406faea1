package store

import (
	"fmt"

	"github.com/google/uuid"
)

// RunIDGenerator produces identifiers for saved runs.
// Tests inject a fixed generator so stored output is deterministic.
type RunIDGenerator interface {
	Generate() string
}

// UUIDv7Generator generates time-ordered UUIDv7 run ids, so runs listed by
// id sort in creation order.
type UUIDv7Generator struct{}

// Generate returns a new UUIDv7 string. It panics if the system random
// source fails, which uuid.NewV7 only reports when crypto/rand is broken.
func (UUIDv7Generator) Generate() string {
	id, err := uuid.NewV7()
	if err != nil {
		panic(fmt.Sprintf("generate run id: %v", err))
	}
	return id.String()
}
