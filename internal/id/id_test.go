package id_test

import (
	"strings"
	"testing"

	"github.com/inkwellapp/inkwell-server/internal/id"
	"github.com/stretchr/testify/require"
)

func TestGenerate_HasPrefix(t *testing.T) {
	got, err := id.Generate("cart")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(got, "cart-"))
	// 21-character NanoID after the prefix and separator.
	require.Len(t, got, len("cart-")+21)
}

func TestGenerate_Unique(t *testing.T) {
	seen := make(map[string]bool)
	for range 100 {
		got, err := id.Generate("book")
		require.NoError(t, err)
		require.False(t, seen[got], "duplicate ID generated: %s", got)
		seen[got] = true
	}
}

func TestMustGenerate(t *testing.T) {
	require.NotPanics(t, func() {
		got := id.MustGenerate("user")
		require.True(t, strings.HasPrefix(got, "user-"))
	})
}
