package chainreg

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet_KnownChain(t *testing.T) {
	c, err := Get(1)

	require.NoError(t, err)
	assert.Equal(t, "ethereum", c.Name)
}

func TestGet_UnknownChain(t *testing.T) {
	_, err := Get(999999)

	require.Error(t, err)
	assert.IsType(t, ErrUnknownChain{}, err)
}
