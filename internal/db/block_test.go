package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildBulkInsertQuery_PlaceholdersAndArgs(t *testing.T) {
	query, args := buildBulkInsertQuery(7, []uint64{100, 101, 102})

	assert.Contains(t, query, "INSERT INTO block (block_number, chain_id) VALUES")
	assert.Contains(t, query, "($1, $2), ($3, $4), ($5, $6)")
	assert.Contains(t, query, "ON CONFLICT (chain_id, block_number) DO NOTHING")
	require.Len(t, args, 6)
	assert.Equal(t, []interface{}{uint64(100), uint32(7), uint64(101), uint32(7), uint64(102), uint32(7)}, args)
}

func TestBuildBulkInsertQuery_SingleRow(t *testing.T) {
	query, args := buildBulkInsertQuery(1, []uint64{5})

	assert.Contains(t, query, "($1, $2)")
	assert.NotContains(t, query, "($3")
	require.Len(t, args, 2)
}

func TestBuildBulkInsertQuery_FullChunkOfMaxBulkInsertRows(t *testing.T) {
	// A full chunk of maxBulkInsertRows rows renders one placeholder pair
	// per row. This calls buildBulkInsertQuery directly, which is what
	// InsertBlocksBulk delegates to per chunk; the splitting loop in
	// InsertBlocksBulk itself needs a live pool and is not exercised here.
	chunk := make([]uint64, maxBulkInsertRows)
	for i := range chunk {
		chunk[i] = uint64(i)
	}

	_, args := buildBulkInsertQuery(1, chunk)

	assert.Len(t, args, maxBulkInsertRows*2)
}
