// Package transport provides Transport implementations for collective
// group construction.
//
// Two implementations are included:
//
//   - Loopback: an in-process fabric where every rank is a goroutine
//     sharing a LoopbackHub. It runs a whole multi-rank bootstrap
//     inside one process, which makes it the primary test harness for
//     code that is otherwise only exercisable on a real multi-process
//     job. The hub counts construction calls, so tests can also assert
//     that a failure path never reached the transport.
//
//   - NATS: a control-plane fabric where ranks rendezvous through a
//     NATS JetStream key-value bucket. Each member of a group writes
//     an arrival key carrying its membership fingerprint and watches
//     for its peers; construction completes when every expected member
//     has arrived with an identical fingerprint.
//
// Both implement the same contract: CreateGroup is collective, blocks
// until every member of the request has arrived, fails with
// types.ErrGroupTimeout when a member never does, and fails fast with
// types.ErrMembershipMismatch when members disagree on who belongs to
// the group. A returned group handle supports Barrier and Broadcast
// control-plane collectives over the same fabric.
package transport
