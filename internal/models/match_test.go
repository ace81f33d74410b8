package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMatchStatus(t *testing.T) {
	s, err := ParseMatchStatus(" accepted ")
	require.NoError(t, err)
	assert.Equal(t, MatchStatusAccepted, s)

	_, err = ParseMatchStatus("PENDING")
	assert.Error(t, err)

	_, err = ParseMatchStatus("")
	assert.Error(t, err)
}

func TestMatchStatusTerminal(t *testing.T) {
	assert.False(t, MatchStatusWaiting.Terminal())
	assert.True(t, MatchStatusAccepted.Terminal())
	assert.True(t, MatchStatusRejected.Terminal())
}

func TestMatchInvolves(t *testing.T) {
	m := Match{UserA: "u1", UserB: "u3"}

	assert.True(t, m.Involves("u1"))
	assert.True(t, m.Involves("u3"))
	assert.False(t, m.Involves("u2"))
}
