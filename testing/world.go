package testing

import (
	"sync"
	"testing"
)

// RunWorld runs fn once per rank, each in its own goroutine, and fails
// the test if any rank returns an error.
//
// This is the in-process stand-in for a multi-process job: collective
// calls made by the rank functions block until their peers arrive,
// exactly as they would across real processes. RunWorld returns only
// after every rank function has returned, so a rank that never reaches
// a collective its peers entered surfaces as that collective's timeout
// rather than as a hang.
//
// Parameters:
//   - t: Testing context
//   - worldSize: Number of ranks to run
//   - fn: Per-rank body; receives the rank's global rank
//
// Example:
//
//	hub := transport.NewLoopbackHub(4, true)
//	meshtest.RunWorld(t, 4, func(rank int) error {
//	    cfg := groupmesh.TestConfig()
//	    cfg.Topology = topo
//	    bs, err := groupmesh.NewBootstrapper(&cfg, hub.Transport(rank))
//	    if err != nil {
//	        return err
//	    }
//	    _, err = bs.Run(t.Context())
//	    return err
//	})
func RunWorld(t *testing.T, worldSize int, fn func(rank int) error) {
	t.Helper()

	var wg sync.WaitGroup
	errs := make([]error, worldSize)

	for rank := 0; rank < worldSize; rank++ {
		wg.Add(1)
		go func(rank int) {
			defer wg.Done()
			errs[rank] = fn(rank)
		}(rank)
	}

	wg.Wait()

	for rank, err := range errs {
		if err != nil {
			t.Errorf("rank %d failed: %v", rank, err)
		}
	}
}
