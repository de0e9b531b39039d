package pagestore

import "sync/atomic"

// byteCounter is a small atomic wrapper tracking PageStore.Bytes(), a
// running byte total that must stay monotone with completed Put/Delete
// calls.
type byteCounter struct {
	n atomic.Int64
}

func (c *byteCounter) add(delta int) {
	c.n.Add(int64(delta))
}

func (c *byteCounter) get() int64 {
	return c.n.Load()
}
