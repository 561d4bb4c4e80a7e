package transport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/groupmesh/groupmesh/internal/kvutil"
	"github.com/groupmesh/groupmesh/internal/logging"
	"github.com/groupmesh/groupmesh/internal/metrics"
	"github.com/groupmesh/groupmesh/types"
)

// NATSConfig configures a NATS rendezvous transport for one rank.
type NATSConfig struct {
	// Rank is the caller's global rank.
	Rank int

	// WorldSize is the total number of ranks in the job.
	WorldSize int

	// Bucket is the shared JetStream KV bucket name every rank of the
	// job rendezvouses in. Defaults to "groupmesh-rendezvous". Two
	// jobs sharing one NATS deployment must use distinct buckets.
	Bucket string

	// KeyTTL expires rendezvous keys so a crashed job's leftovers do
	// not confuse its replacement. Defaults to one hour.
	KeyTTL time.Duration

	// CPUCapable declares whether the job's data-plane backend can
	// serve CPU-side collectives. The value must be identical on every
	// rank: members decide whether to construct fallback groups from
	// it, and disagreement leaves some ranks waiting in a rendezvous
	// their peers skip.
	CPUCapable bool

	// Logger is optional; defaults to the nop logger.
	Logger types.Logger

	// Metrics is optional; defaults to the nop collector.
	Metrics types.MetricsCollector
}

// setDefaults fills optional fields.
func (cfg *NATSConfig) setDefaults() {
	if cfg.Bucket == "" {
		cfg.Bucket = "groupmesh-rendezvous"
	}
	if cfg.KeyTTL == 0 {
		cfg.KeyTTL = time.Hour
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.NewNop()
	}
	if cfg.Metrics == nil {
		cfg.Metrics = metrics.NewNop()
	}
}

// NATS is a Transport whose construction rendezvous runs over a NATS
// JetStream key-value bucket.
//
// Each member of a group writes an arrival key carrying its view of
// the membership, then watches the group's key space until every
// expected member has arrived with an identical view. There is no
// coordinator: agreement emerges from every rank deriving the same
// group name and membership from the same topology.
//
// The KV bucket is control plane only. Group handles returned by
// CreateGroup run their Barrier and Broadcast collectives through the
// same bucket, which suits startup-time object exchange, not bulk
// tensor traffic.
type NATS struct {
	cfg     NATSConfig
	kv      jetstream.KeyValue
	logger  types.Logger
	metrics types.MetricsCollector
}

// Compile-time assertion that NATS implements Transport.
var _ types.Transport = (*NATS)(nil)

// NewNATS creates the rank's rendezvous transport and ensures the
// shared KV bucket exists.
//
// Parameters:
//   - ctx: Context for bucket creation
//   - nc: NATS connection; the caller owns its lifecycle
//   - cfg: Transport configuration
//
// Returns:
//   - *NATS: Transport bound to cfg.Rank
//   - error: Invalid configuration or bucket creation failure
//
// Example:
//
//	tp, err := transport.NewNATS(ctx, nc, transport.NATSConfig{
//	    Rank:      rank,
//	    WorldSize: 8,
//	})
func NewNATS(ctx context.Context, nc *nats.Conn, cfg NATSConfig) (*NATS, error) {
	if nc == nil {
		return nil, errors.New("nats connection is required")
	}
	if cfg.WorldSize <= 0 {
		return nil, fmt.Errorf("%w: worldSize must be positive, got %d", types.ErrBadTopology, cfg.WorldSize)
	}
	if cfg.Rank < 0 || cfg.Rank >= cfg.WorldSize {
		return nil, fmt.Errorf("%w: rank %d out of range [0, %d)", types.ErrBadTopology, cfg.Rank, cfg.WorldSize)
	}

	cfg.setDefaults()

	js, err := jetstream.New(nc)
	if err != nil {
		return nil, fmt.Errorf("failed to create jetstream context: %w", err)
	}

	kv, err := kvutil.EnsureBucketWithRetry(ctx, js, jetstream.KeyValueConfig{
		Bucket:  cfg.Bucket,
		History: 1,
		TTL:     cfg.KeyTTL,
	}, 3)
	if err != nil {
		return nil, fmt.Errorf("failed to create rendezvous KV: %w", err)
	}

	return &NATS{
		cfg:     cfg,
		kv:      kv,
		logger:  cfg.Logger,
		metrics: cfg.Metrics,
	}, nil
}

// Rank returns the rank this transport was created for.
func (n *NATS) Rank() int {
	return n.cfg.Rank
}

// CPUCapable reports the configured data-plane capability.
func (n *NATS) CPUCapable() bool {
	return n.cfg.CPUCapable
}

// CreateGroup performs the KV rendezvous for one group.
//
// The arrival value is the member's serialized membership view, so a
// rank whose resolver diverged is detected as ErrMembershipMismatch by
// its peers instead of leaving them to time out.
func (n *NATS) CreateGroup(ctx context.Context, req types.GroupRequest) (types.Group, error) {
	if err := req.Validate(n.cfg.Rank, n.cfg.WorldSize); err != nil {
		return nil, err
	}

	if req.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, req.Timeout)
		defer cancel()
	}

	view, err := json.Marshal(req.Ranks)
	if err != nil {
		return nil, fmt.Errorf("failed to encode membership: %w", err)
	}

	started := time.Now()
	key := fmt.Sprintf("arrive.%s.%d", req.Name, n.cfg.Rank)
	if _, err := n.kv.Put(ctx, key, view); err != nil {
		return nil, fmt.Errorf("failed to announce arrival for group %q: %w", req.Name, err)
	}
	n.metrics.RecordKVOperationDuration("put", time.Since(started).Seconds())

	n.logger.Debug("awaiting group rendezvous",
		"group", req.Name,
		"rank", n.cfg.Rank,
		"size", len(req.Ranks),
	)

	waitStart := time.Now()
	err = n.awaitRanks(ctx, "arrive."+req.Name+".*", req.Ranks, func(rank int, value []byte) error {
		if !slices.Equal(value, view) {
			return fmt.Errorf("%w: group %q: rank %d announced %s, expected %s",
				types.ErrMembershipMismatch, req.Name, rank, value, view)
		}

		return nil
	})
	n.metrics.RecordRendezvousWait(time.Since(waitStart).Seconds())
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			n.metrics.RecordGroupTimeout()

			return nil, fmt.Errorf("%w: group %q after %v", types.ErrGroupTimeout, req.Name, req.Timeout)
		}

		return nil, err
	}

	n.logger.Debug("group rendezvous complete",
		"group", req.Name,
		"elapsed", time.Since(started),
	)

	return &natsGroup{
		transport: n,
		name:      req.Name,
		ranks:     slices.Clone(req.Ranks),
		localRank: slices.Index(req.Ranks, n.cfg.Rank),
		backend:   req.Backend,
	}, nil
}

// awaitRanks watches pattern until every rank of expect has written a
// key, passing each observed value through verify. Key layout is
// "<kind>.<scope>.<rank>": the rank is always the last token.
func (n *NATS) awaitRanks(ctx context.Context, pattern string, expect []int, verify func(rank int, value []byte) error) error {
	watcher, err := n.kv.Watch(ctx, pattern)
	if err != nil {
		return fmt.Errorf("failed to watch %q: %w", pattern, err)
	}
	defer func() {
		if stopErr := watcher.Stop(); stopErr != nil {
			n.logger.Warn("failed to stop rendezvous watcher", "pattern", pattern, "error", stopErr)
		}
	}()

	pending := make(map[int]struct{}, len(expect))
	for _, rank := range expect {
		pending[rank] = struct{}{}
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case entry, ok := <-watcher.Updates():
			// A closed channel means the watcher died underneath us
			// (server shutdown, connection loss); fail instead of
			// spinning against ctx.
			if !ok {
				return fmt.Errorf("rendezvous watcher for %q closed unexpectedly", pattern)
			}
			// A nil entry marks the end of the initial replay.
			if entry == nil || entry.Operation() != jetstream.KeyValuePut {
				continue
			}

			tokens := strings.Split(entry.Key(), ".")
			rank, err := strconv.Atoi(tokens[len(tokens)-1])
			if err != nil {
				return fmt.Errorf("malformed rendezvous key %q: %w", entry.Key(), err)
			}

			if _, want := pending[rank]; !want {
				continue
			}

			if err := verify(rank, entry.Value()); err != nil {
				return err
			}

			delete(pending, rank)
			if len(pending) == 0 {
				return nil
			}
		}
	}
}

// natsGroup is one member's handle to a group constructed over NATS.
type natsGroup struct {
	transport *NATS
	name      string
	ranks     []int
	localRank int
	backend   types.Backend

	// Collectives are ordered, so per-member call counts identify the
	// same operation across all members without negotiation.
	barrierSeq uint64
	bcastSeq   uint64
}

// Compile-time assertion that natsGroup implements Group.
var _ types.Group = (*natsGroup)(nil)

func (g *natsGroup) Name() string {
	return g.name
}

func (g *natsGroup) Ranks() []int {
	return slices.Clone(g.ranks)
}

func (g *natsGroup) Size() int {
	return len(g.ranks)
}

func (g *natsGroup) LocalRank() int {
	return g.localRank
}

func (g *natsGroup) Backend() types.Backend {
	return g.backend
}

// Barrier blocks until every member has entered the same barrier call.
func (g *natsGroup) Barrier(ctx context.Context) error {
	g.barrierSeq++

	n := g.transport
	scope := fmt.Sprintf("barrier.%s.%d", g.name, g.barrierSeq)
	key := fmt.Sprintf("%s.%d", scope, n.cfg.Rank)

	started := time.Now()
	if _, err := n.kv.Put(ctx, key, []byte{}); err != nil {
		return fmt.Errorf("failed to enter barrier for group %q: %w", g.name, err)
	}
	n.metrics.RecordKVOperationDuration("put", time.Since(started).Seconds())

	return n.awaitRanks(ctx, scope+".*", g.ranks, func(int, []byte) error { return nil })
}

// Broadcast distributes root's payload to every member.
func (g *natsGroup) Broadcast(ctx context.Context, root int, payload []byte) ([]byte, error) {
	if !slices.Contains(g.ranks, root) {
		return nil, fmt.Errorf("%w: broadcast root %d in group %q", types.ErrNotMember, root, g.name)
	}

	g.bcastSeq++

	n := g.transport
	key := fmt.Sprintf("bcast.%s.%d", g.name, g.bcastSeq)

	if g.ranks[g.localRank] == root {
		started := time.Now()
		if _, err := n.kv.Put(ctx, key, payload); err != nil {
			return nil, fmt.Errorf("failed to publish broadcast for group %q: %w", g.name, err)
		}
		n.metrics.RecordKVOperationDuration("put", time.Since(started).Seconds())

		return payload, nil
	}

	started := time.Now()
	defer func() {
		n.metrics.RecordKVOperationDuration("watch", time.Since(started).Seconds())
	}()

	watcher, err := n.kv.Watch(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to watch broadcast key %q: %w", key, err)
	}
	defer func() {
		if stopErr := watcher.Stop(); stopErr != nil {
			n.logger.Warn("failed to stop broadcast watcher", "key", key, "error", stopErr)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case entry, ok := <-watcher.Updates():
			if !ok {
				return nil, fmt.Errorf("broadcast watcher for %q closed unexpectedly", key)
			}
			if entry == nil || entry.Operation() != jetstream.KeyValuePut {
				continue
			}

			return entry.Value(), nil
		}
	}
}
