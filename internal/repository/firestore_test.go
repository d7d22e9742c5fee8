package repository

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunkStringsSplitsAtInOperandLimit(t *testing.T) {
	ids := make([]string, 65)
	for i := range ids {
		ids[i] = fmt.Sprintf("site-%d", i)
	}

	chunks := chunkStrings(ids, maxInOperands)
	require.Len(t, chunks, 3)
	assert.Len(t, chunks[0], 30)
	assert.Len(t, chunks[1], 30)
	assert.Len(t, chunks[2], 5)
	assert.Equal(t, "site-0", chunks[0][0])
	assert.Equal(t, "site-64", chunks[2][4])

	assert.Len(t, chunkStrings(ids[:30], maxInOperands), 1)
	assert.Nil(t, chunkStrings(nil, maxInOperands))
}

func TestPageSlice(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}

	assert.Equal(t, []int{1, 2}, pageSlice(items, 1, 2))
	assert.Equal(t, []int{3, 4}, pageSlice(items, 2, 2))
	assert.Equal(t, []int{5}, pageSlice(items, 3, 2))
	assert.Nil(t, pageSlice(items, 4, 2))
	// Defaults applied for unset paging
	assert.Equal(t, items, pageSlice(items, 0, 0))
}
