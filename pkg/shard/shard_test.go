package shard

import (
	"hash/fnv"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIndexMatchesFNV1a(t *testing.T) {
	for _, key := range []string{"", "TSLA", "AAPL", "s0XCIa", "order-123456"} {
		h := fnv.New32a()
		h.Write([]byte(key))
		assert.Equal(t, int(h.Sum32()%16), Index(key, 16), key)
	}
}

func TestIndexSingleShard(t *testing.T) {
	assert.Equal(t, 0, Index("TSLA", 1))
	assert.Equal(t, 0, Index("TSLA", 0))
}

func TestCount(t *testing.T) {
	assert.Equal(t, 8, Count(8))
	assert.Positive(t, Count(0))
}
