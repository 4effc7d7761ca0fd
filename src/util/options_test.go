package util

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultOptionsValidate(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestValidateRejectsBadThreadCounts(t *testing.T) {
	o := Default()
	o.Threads = 0
	require.Error(t, o.Validate())
	o.Threads = maxThreads + 1
	require.Error(t, o.Validate())
	o.Threads = maxThreads
	require.NoError(t, o.Validate())
}

func TestValidateRejectsNonPositiveCallDepth(t *testing.T) {
	o := Default()
	o.MaxCallDepth = 0
	require.Error(t, o.Validate())
}
