package crypto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("correct-horse-battery")
	require.NoError(t, err)
	assert.NotEmpty(t, hash)
	assert.NotEqual(t, "correct-horse-battery", hash)

	// bcrypt использует случайную соль: повторный хеш отличается
	hash2, err := HashPassword("correct-horse-battery")
	require.NoError(t, err)
	assert.NotEqual(t, hash, hash2)
}

func TestHashPassword_Empty(t *testing.T) {
	_, err := HashPassword("")
	assert.Error(t, err)
}

func TestVerifyPassword(t *testing.T) {
	hash, err := HashPassword("correct-horse-battery")
	require.NoError(t, err)

	assert.NoError(t, VerifyPassword(hash, "correct-horse-battery"))
	assert.Error(t, VerifyPassword(hash, "wrong-password-here"))
	assert.Error(t, VerifyPassword(hash, ""))
	assert.Error(t, VerifyPassword("", "correct-horse-battery"))
}

func TestVerifyPassword_ArgumentOrder(t *testing.T) {
	hash, err := HashPassword("correct-horse-battery")
	require.NoError(t, err)

	// Хеш на месте пароля никогда не проходит проверку
	assert.Error(t, VerifyPassword(hash, hash))
	assert.Error(t, VerifyPassword("correct-horse-battery", hash))
}
