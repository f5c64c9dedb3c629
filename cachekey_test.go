package sqlboost

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCacheKeyDeterminism(t *testing.T) {
	assert := require.New(t)

	query := "SELECT name FROM users WHERE age > ? AND active = ?"
	params := []interface{}{18, true}

	k1, err := cacheKey(query, params)
	assert.Nil(err)
	k2, err := cacheKey(query, []interface{}{18, true})
	assert.Nil(err)
	assert.Equal(k1, k2)
}

func TestCacheKeyParamSensitivity(t *testing.T) {
	assert := require.New(t)

	query := "SELECT name FROM users WHERE age > ?"

	k1, err := cacheKey(query, []interface{}{18})
	assert.Nil(err)
	k2, err := cacheKey(query, []interface{}{21})
	assert.Nil(err)
	assert.NotEqual(k1, k2)

	k3, err := cacheKey("SELECT name FROM accounts WHERE age > ?", []interface{}{18})
	assert.Nil(err)
	assert.NotEqual(k1, k3)
}

func TestCacheKeyWhitespaceNormalization(t *testing.T) {
	assert := require.New(t)

	k1, err := cacheKey("SELECT name\n\tFROM users", nil)
	assert.Nil(err)
	k2, err := cacheKey("SELECT name FROM users", nil)
	assert.Nil(err)

	// keys embed the raw query length, so compare the hash portion only
	assert.Equal(strings.SplitN(k1, "h", 2)[1], strings.SplitN(k2, "h", 2)[1])
}

func TestQuerySignature(t *testing.T) {
	assert := require.New(t)

	s1 := querySignature("SELECT 1")
	s2 := querySignature("SELECT 1")
	s3 := querySignature("SELECT 2")

	assert.Equal(s1, s2)
	assert.NotEqual(s1, s3)
	assert.NotZero(s1)
}
