package internal

import (
	"bytes"
	"sync"
)

// BufferPool holds scratch buffers for encoding move data.
var BufferPool = sync.Pool{
	New: func() interface{} {
		return bytes.NewBuffer(make([]byte, 0, 16))
	},
}
