package types

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSentinelErrors(t *testing.T) {
	t.Run("errors.Is works correctly", func(t *testing.T) {
		require.True(t, errors.Is(ErrGroupTimeout, ErrGroupTimeout))
		require.False(t, errors.Is(ErrGroupTimeout, ErrBadTopology))

		// Wrapped errors keep their identity.
		wrapped := fmt.Errorf("constructing group %q: %w", "data-0", ErrGroupTimeout)
		require.True(t, errors.Is(wrapped, ErrGroupTimeout))
	})

	t.Run("all errors are distinct", func(t *testing.T) {
		allErrors := []error{
			// Topology and resolver errors
			ErrBadTopology,
			ErrUnknownMode,
			// Transport errors
			ErrGroupTimeout,
			ErrInvalidGroupRequest,
			ErrNotMember,
			ErrMembershipMismatch,
			ErrGroupClosed,
			// Registry errors
			ErrModeNotRegistered,
		}

		for i, err1 := range allErrors {
			for j, err2 := range allErrors {
				if i == j {
					require.True(t, errors.Is(err1, err2), "error should equal itself: %v", err1)
				} else {
					require.False(t, errors.Is(err1, err2), "errors should be distinct: %v vs %v", err1, err2)
				}
			}
		}
	})
}
