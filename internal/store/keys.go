package store

import "sync"

// keyPool provides reusable byte slices for building database keys, keeping
// allocations off the hot path of store operations.
var keyPool = sync.Pool{
	New: func() any {
		// 256 bytes covers a prefix, an index name and a couple of
		// NanoID-sized components.
		return make([]byte, 0, 256)
	},
}

// buildKey constructs a primary key from prefix and id using a pooled buffer.
// Callers MUST call releaseKey once the key is no longer referenced, which
// for keys passed to txn.Set means after the transaction has committed.
func buildKey(prefix, id string) []byte {
	buf, _ := keyPool.Get().([]byte)
	buf = buf[:0]
	buf = append(buf, prefix...)
	buf = append(buf, id...)
	return buf
}

// buildIndexKey constructs a unique-index key: prefix + "idx:" + name + ":" + value.
// Callers MUST call releaseKey, same rules as buildKey.
func buildIndexKey(prefix, indexName, value string) []byte {
	buf, _ := keyPool.Get().([]byte)
	buf = buf[:0]
	buf = append(buf, prefix...)
	buf = append(buf, "idx:"...)
	buf = append(buf, indexName...)
	buf = append(buf, ':')
	buf = append(buf, value...)
	return buf
}

// releaseKey returns a key buffer to the pool for reuse.
func releaseKey(key []byte) {
	// Don't keep oversized buffers around.
	if cap(key) <= 512 {
		keyPool.Put(key[:0])
	}
}
