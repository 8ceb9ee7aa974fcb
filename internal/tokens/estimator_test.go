package tokens

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetEstimator_Singleton(t *testing.T) {
	a, err := GetEstimator()
	require.NoError(t, err)
	b, err := GetEstimator()
	require.NoError(t, err)
	assert.Same(t, a, b)
}

func TestCountTokens(t *testing.T) {
	e, err := GetEstimator()
	require.NoError(t, err)

	assert.Equal(t, 0, e.CountTokens(""))
	assert.Equal(t, 2, e.CountTokens("hello world"))
	assert.Equal(t, 4, e.CountTokensBatch([]string{"hello world", "", "hello world"}))
}
