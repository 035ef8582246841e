package bus

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShardIndexIsStableForTheSameKey(t *testing.T) {
	first := shardIndex("chat-1", 8)
	second := shardIndex("chat-1", 8)
	assert.Equal(t, first, second)
}

func TestShardIndexStaysWithinRange(t *testing.T) {
	for _, key := range []string{"chat-1", "chat-2", "chat-3", "", "another-chat"} {
		idx := shardIndex(key, 5)
		assert.GreaterOrEqual(t, idx, 0)
		assert.Less(t, idx, 5)
	}
}

func TestShardIndexEmptyKeyAlwaysGoesToShardZero(t *testing.T) {
	assert.Equal(t, 0, shardIndex("", 10))
}

func TestShardIndexDistributesDifferentKeysAcrossShards(t *testing.T) {
	seen := map[int]bool{}
	for i := 0; i < 50; i++ {
		key := "chat-" + string(rune('a'+i%26)) + string(rune('0'+i%10))
		seen[shardIndex(key, 4)] = true
	}
	assert.Greater(t, len(seen), 1, "keys should not all collide onto a single shard")
}
