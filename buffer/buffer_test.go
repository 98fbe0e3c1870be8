package buffer_test

import (
	"testing"

	"github.com/mdheller/addrmap/buffer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSliceBufferReadWrite(t *testing.T) {
	b := buffer.NewSliceBuffer[uint32]([]byte("---------------")) // 15 bytes

	n := b.Write([]byte("bcdefghijklmn"), 1, 13)
	assert.Equal(t, uint32(13), n)
	assert.Equal(t, "-bcdefghijklmn-", string(b.Bytes()))

	dst := make([]byte, 13)
	n = b.Read(dst, 1, 13)
	assert.Equal(t, uint32(13), n)
	assert.Equal(t, "bcdefghijklmn", string(dst))
}

func TestSliceBufferAvailableClampsReadsAndWrites(t *testing.T) {
	b := buffer.NewSliceBuffer[uint32]([]byte("#####")) // 5 bytes, offset 0

	assert.Equal(t, uint32(5), b.Available(0))
	assert.Equal(t, uint32(2), b.Available(3))
	assert.Equal(t, uint32(0), b.Available(5))

	dst := make([]byte, 10)
	n := b.Read(dst, 3, 10)
	require.Equal(t, uint32(2), n)
}

func TestSliceBufferImmutableRejectsWrites(t *testing.T) {
	b := buffer.NewImmutableSliceBuffer[uint32]([]byte("abc"))
	n := b.Write([]byte("xyz"), 0, 3)
	assert.Equal(t, uint32(0), n)
	assert.Equal(t, "abc", string(b.Bytes()))
	assert.True(t, b.IsImmutable())
}

func TestSliceBufferCopyIsIndependent(t *testing.T) {
	orig := buffer.NewSliceBuffer[uint32]([]byte("hello"))
	cp := orig.Copy()

	orig.Write([]byte("X"), 0, 1)
	dst := make([]byte, 5)
	cp.Read(dst, 0, 5)
	assert.Equal(t, "hello", string(dst))
}

func TestSliceBufferRefcount(t *testing.T) {
	b := buffer.NewSliceBuffer[uint32]([]byte("x"))
	b.Retain()
	assert.Equal(t, int32(1), b.Release())
	assert.Equal(t, int32(0), b.Release())
}
