package notes

import (
	"strconv"
	"sync/atomic"

	"github.com/google/uuid"
)

// IDGenerator produces note identifiers. Implementations must never repeat an id.
type IDGenerator interface {
	NewID() string
}

// UUIDGenerator issues random version 4 UUIDs.
type UUIDGenerator struct{}

func (UUIDGenerator) NewID() string { return uuid.NewString() }

// SequentialGenerator issues prefix1, prefix2, ... and is meant for tests
// and deterministic fixtures.
type SequentialGenerator struct {
	Prefix string
	n      atomic.Uint64
}

func (g *SequentialGenerator) NewID() string {
	return g.Prefix + strconv.FormatUint(g.n.Add(1), 10)
}
