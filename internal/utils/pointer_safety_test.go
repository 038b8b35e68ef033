package utils_test

import (
	"testing"

	"github.com/jrsteele09/planora-client/internal/utils"
	"github.com/stretchr/testify/require"
)

func TestValueAndPtr(t *testing.T) {
	var missing *bool
	require.False(t, utils.Value(missing))
	require.True(t, utils.Value(utils.Ptr(true)))
	require.Equal(t, "x", utils.Value(utils.Ptr("x")))
}

func TestBlank(t *testing.T) {
	require.True(t, utils.Blank(""))
	require.True(t, utils.Blank(" \t\n"))
	require.False(t, utils.Blank(" a "))
}
