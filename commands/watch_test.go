package commands

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCRLFWriter(t *testing.T) {
	var buf bytes.Buffer
	n, err := crlfWriter{w: &buf}.Write([]byte("a\nb\n"))
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.Equal(t, "a\r\nb\r\n", buf.String())
}

func TestWatchViewportHeight(t *testing.T) {
	defer func() { viewportRows = 0 }()

	viewportRows = 12
	assert.Equal(t, 120.0, watchViewportHeight(10))

	viewportRows = 0
	assert.GreaterOrEqual(t, watchViewportHeight(10), 50.0)
}

func TestWatchCommand(t *testing.T) {
	require.NotNil(t, rootCmd.Commands())
	cmd, _, err := rootCmd.Find([]string{"watch"})
	require.NoError(t, err)
	assert.Equal(t, watchCmd, cmd)

	flag := watchCmd.Flags().Lookup("refresh-delay")
	require.NotNil(t, flag)
	assert.Equal(t, "100ms", flag.DefValue)
}
