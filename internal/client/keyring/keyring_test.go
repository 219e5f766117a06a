package keyring

import (
	"testing"

	zkeyring "github.com/zalando/go-keyring"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSession_RoundTrip(t *testing.T) {
	zkeyring.MockInit()

	require.NoError(t, SaveSession("mary", "refresh-token-1"))

	got, err := GetSession("mary")
	require.NoError(t, err)
	assert.Equal(t, "refresh-token-1", got)
	assert.True(t, HasSession("mary"))

	require.NoError(t, DeleteSession("mary"))
	assert.False(t, HasSession("mary"))

	_, err = GetSession("mary")
	require.ErrorIs(t, err, zkeyring.ErrNotFound)
}
