package cli

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSilentError_UnwrapsToTheOriginalError(t *testing.T) {
	original := errors.New("boom")
	wrapped := NewSilentError(original)

	require.Equal(t, "boom", wrapped.Error())

	var target *SilentError
	require.True(t, errors.As(wrapped, &target))
	require.ErrorIs(t, wrapped, original)
}
