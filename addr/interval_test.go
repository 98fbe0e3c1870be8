package addr_test

import (
	"testing"

	"github.com/mdheller/addrmap/addr"
	"github.com/stretchr/testify/assert"
)

func TestIntervalBaseSize(t *testing.T) {
	i := addr.BaseSize[uint32](1000, 15)
	assert.False(t, i.IsEmpty())
	assert.Equal(t, uint32(1000), i.Least())
	assert.Equal(t, uint32(1014), i.Greatest())

	size, overflowed := i.Size()
	assert.False(t, overflowed)
	assert.Equal(t, uint32(15), size)
}

func TestIntervalBaseSizeZero(t *testing.T) {
	i := addr.BaseSize[uint32](1000, 0)
	assert.True(t, i.IsEmpty())
}

func TestIntervalBaseSizeOverflow(t *testing.T) {
	max := addr.Max[uint8]()
	i := addr.BaseSize(max-2, uint8(10)) // max-2+10-1 wraps
	assert.True(t, i.IsEmpty())
}

func TestIntervalWholeSizeIsSentinelZero(t *testing.T) {
	w := addr.Whole[uint8]()
	assert.False(t, w.IsEmpty())
	assert.Equal(t, uint8(0), w.Least())
	assert.Equal(t, addr.Max[uint8](), w.Greatest())

	size, overflowed := w.Size()
	assert.True(t, overflowed)
	assert.Equal(t, uint8(0), size)
}

func TestIntervalIntersect(t *testing.T) {
	a := addr.BaseSize[uint32](1000, 15) // [1000,1014]
	b := addr.BaseSize[uint32](1005, 5)  // [1005,1009]
	got := a.Intersect(b)
	assert.Equal(t, uint32(1005), got.Least())
	assert.Equal(t, uint32(1009), got.Greatest())

	c := addr.BaseSize[uint32](2000, 5)
	assert.True(t, a.Intersect(c).IsEmpty())
}

func TestIntervalContains(t *testing.T) {
	i := addr.Hull[uint32](10, 20)
	assert.True(t, i.Contains(10))
	assert.True(t, i.Contains(20))
	assert.False(t, i.Contains(9))
	assert.False(t, i.Contains(21))
	assert.False(t, addr.Empty[uint32]().Contains(0))
}

func TestIntervalContainsInterval(t *testing.T) {
	outer := addr.Hull[uint32](10, 20)
	inner := addr.Hull[uint32](12, 15)
	assert.True(t, outer.ContainsInterval(inner))
	assert.False(t, inner.ContainsInterval(outer))
	assert.True(t, outer.ContainsInterval(addr.Empty[uint32]()))
}

func TestIntervalHullInterval(t *testing.T) {
	a := addr.Hull[uint32](10, 20)
	b := addr.Hull[uint32](25, 30)
	got := addr.HullInterval(a, b)
	assert.Equal(t, uint32(10), got.Least())
	assert.Equal(t, uint32(30), got.Greatest())

	assert.Equal(t, a, addr.HullInterval(a, addr.Empty[uint32]()))
	assert.Equal(t, b, addr.HullInterval(addr.Empty[uint32](), b))
}

func TestIntervalString(t *testing.T) {
	assert.Equal(t, "[10,20]", addr.Hull[uint32](10, 20).String())
	assert.Equal(t, "{}", addr.Empty[uint32]().String())
}

func TestAlignUpDown(t *testing.T) {
	got, ok := addr.AlignUp[uint32](4097, 4096)
	assert.True(t, ok)
	assert.Equal(t, uint32(8192), got)

	got, ok = addr.AlignUp[uint32](4096, 4096)
	assert.True(t, ok)
	assert.Equal(t, uint32(4096), got)

	assert.Equal(t, uint32(4096), addr.AlignDown[uint32](4097, 4096))
	assert.Equal(t, uint32(4096), addr.AlignDown[uint32](4096, 4096))
}

func TestAlignUpOverflow(t *testing.T) {
	max := addr.Max[uint8]()
	_, ok := addr.AlignUp(max, uint8(16))
	assert.False(t, ok)
}
