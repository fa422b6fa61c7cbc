package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPasswordHash(t *testing.T) {
	hash, err := HashPassword("correct horse")
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse", hash)

	assert.True(t, IsPasswordHashCorrect(hash, "correct horse"))
	assert.False(t, IsPasswordHashCorrect(hash, "battery staple"))
	assert.False(t, IsPasswordHashCorrect("", "correct horse"))
}
