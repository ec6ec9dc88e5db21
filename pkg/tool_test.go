package pkg

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContains(t *testing.T) {
	assert.True(t, Contains([]int64{1, 2, 3}, 2))
	assert.False(t, Contains([]int64{1, 2, 3}, 4))
	assert.False(t, Contains(nil, 1))
}

func TestDedup(t *testing.T) {
	assert.Equal(t, []int64{1, 2, 3}, Dedup([]int64{1, 2, 1, 3, 2}))
	assert.Equal(t, []int64{5}, Dedup([]int64{5, 5, 5}))
	assert.Empty(t, Dedup(nil))
}
