package types

import (
	"encoding/binary"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/zeebo/xxh3"
)

// Partition is one group of a partitioned parallel axis: the ordered
// list of global ranks that will form a single communication group.
//
// Partitions are pure values produced by the axis resolvers. Order is
// significant: position in Ranks defines each member's local rank, and
// every rank resolving the same topology produces identical partitions.
type Partition struct {
	// Mode is the parallel axis this partition belongs to.
	Mode ParallelMode `yaml:"mode" json:"mode"`

	// Ranks is the ordered list of member ranks. The slice is never
	// empty for a valid partition.
	Ranks []int `yaml:"ranks" json:"ranks"`
}

// Size returns the number of member ranks.
func (p Partition) Size() int {
	return len(p.Ranks)
}

// Contains reports whether rank is a member of the partition.
func (p Partition) Contains(rank int) bool {
	return slices.Contains(p.Ranks, rank)
}

// LocalRank returns the position of rank inside the partition.
//
// Parameters:
//   - rank: The global rank to locate
//
// Returns:
//   - int: Zero-based position of rank, or -1 when rank is not a member
func (p Partition) LocalRank(rank int) int {
	return slices.Index(p.Ranks, rank)
}

// Equal reports whether two partitions have the same mode and the same
// members in the same order.
func (p Partition) Equal(q Partition) bool {
	return p.Mode == q.Mode && slices.Equal(p.Ranks, q.Ranks)
}

// HashID returns a stable 64-bit fingerprint of the partition.
//
// The fingerprint covers the mode tag and the ordered membership, so two
// partitions agree on HashID exactly when they would form the same group.
// It is folded into group names to make membership disagreements between
// ranks fail fast instead of deadlocking a collective.
func (p Partition) HashID() uint64 {
	hash := xxh3.HashString(p.Mode.String())

	var buf [8]byte
	for _, rank := range p.Ranks {
		binary.LittleEndian.PutUint64(buf[:], uint64(rank))
		hash = xxh3.HashSeed(buf[:], hash)
	}

	return hash
}

// GroupName returns the globally agreed name for this partition.
//
// The name is deterministic: mode tag, the partition's index within its
// axis enumeration, and the membership fingerprint. Every member derives
// the same name independently, which is what lets group construction
// rendezvous without a coordinator.
//
// Parameters:
//   - index: The partition's position within its axis enumeration
//
// Returns:
//   - string: A name such as "data-0-9f3a6c21e5b80d47"
func (p Partition) GroupName(index int) string {
	return fmt.Sprintf("%s-%d-%016x", p.Mode, index, p.HashID())
}

// String returns a compact human-readable form for logs.
func (p Partition) String() string {
	ranks := make([]string, len(p.Ranks))
	for i, r := range p.Ranks {
		ranks[i] = strconv.Itoa(r)
	}

	return fmt.Sprintf("%s[%s]", p.Mode, strings.Join(ranks, " "))
}
