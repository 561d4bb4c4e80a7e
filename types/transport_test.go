package types

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGroupRequestValidate(t *testing.T) {
	t.Parallel()

	valid := GroupRequest{Name: "tensor-0-0011223344556677", Ranks: []int{0, 1, 2, 3}}

	t.Run("accepts a well formed request", func(t *testing.T) {
		require.NoError(t, valid.Validate(2, 8))
	})

	t.Run("rejects empty name", func(t *testing.T) {
		req := valid
		req.Name = ""
		require.ErrorIs(t, req.Validate(2, 8), ErrInvalidGroupRequest)
	})

	t.Run("rejects empty membership", func(t *testing.T) {
		req := valid
		req.Ranks = nil
		require.ErrorIs(t, req.Validate(2, 8), ErrInvalidGroupRequest)
	})

	t.Run("rejects out of range ranks", func(t *testing.T) {
		req := valid
		req.Ranks = []int{0, 1, 8}
		require.ErrorIs(t, req.Validate(0, 8), ErrInvalidGroupRequest)

		req.Ranks = []int{-1, 0}
		require.ErrorIs(t, req.Validate(0, 8), ErrInvalidGroupRequest)
	})

	t.Run("rejects duplicate ranks", func(t *testing.T) {
		req := valid
		req.Ranks = []int{0, 1, 1}
		require.ErrorIs(t, req.Validate(0, 8), ErrInvalidGroupRequest)
	})

	t.Run("rejects non member callers", func(t *testing.T) {
		require.ErrorIs(t, valid.Validate(7, 8), ErrNotMember)
	})
}
