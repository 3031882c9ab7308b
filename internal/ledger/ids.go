package ledger

import (
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"
)

// IDGenerator supplies unique identifiers for users and transactions.
type IDGenerator interface {
	NewID() string
}

// IDGeneratorFunc adapts a function to IDGenerator.
type IDGeneratorFunc func() string

func (f IDGeneratorFunc) NewID() string { return f() }

// UUIDGenerator returns random UUIDv4 identifiers.
func UUIDGenerator() IDGenerator {
	return IDGeneratorFunc(uuid.NewString)
}

// SequentialIDs returns prefix-1, prefix-2, ... Useful for deterministic tests.
func SequentialIDs(prefix string) IDGenerator {
	var n atomic.Int64
	return IDGeneratorFunc(func() string {
		return fmt.Sprintf("%s-%d", prefix, n.Add(1))
	})
}
