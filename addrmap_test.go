package addrmap

import (
	"testing"

	"github.com/mdheller/addrmap/access"
	"github.com/mdheller/addrmap/addr"
	"github.com/mdheller/addrmap/buffer"
	"github.com/mdheller/addrmap/segment"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOcclusionThenOverwrite(t *testing.T) {
	buf1 := buffer.NewSliceBuffer[uint32]([]byte("---------------")) // 15 bytes
	buf2 := buffer.NewSliceBuffer[uint32]([]byte("##########"))      // 10 bytes, only 5 mapped

	m := New[uint32, byte]()
	m.Insert(addr.BaseSize[uint32](1000, 15), segment.Segment[uint32, byte]{Buffer: buf1, Access: access.Readable | access.Writable})
	m.Insert(addr.BaseSize[uint32](1005, 5), segment.Segment[uint32, byte]{Buffer: buf2, Access: access.Readable | access.Writable})

	written := m.At(1001).Limit(13).Write([]byte("bcdefghijklmn"), 0)
	require.False(t, written.IsEmpty())
	size, _ := written.Size()
	assert.Equal(t, uint32(13), size)

	assert.Equal(t, "-bcde-----klmn-", string(buf1.Bytes()))
	assert.Equal(t, "fghij#####", string(buf2.Bytes()))
}

func TestRecombinationMergesThreeWindows(t *testing.T) {
	buf1 := buffer.NewSliceBuffer[uint32]([]byte("---------------"))
	buf2 := buffer.NewSliceBuffer[uint32]([]byte("##########"))

	m := New[uint32, byte]()
	m.Insert(addr.BaseSize[uint32](1000, 15), segment.Segment[uint32, byte]{Buffer: buf1, Access: access.Readable | access.Writable})
	m.Insert(addr.BaseSize[uint32](1005, 5), segment.Segment[uint32, byte]{Buffer: buf2, Access: access.Readable | access.Writable})
	require.Equal(t, 3, m.NSegments())

	m.Insert(addr.BaseSize[uint32](1005, 5), segment.Segment[uint32, byte]{Buffer: buf1, Offset: 5, Access: access.Readable | access.Writable})

	assert.Equal(t, 1, m.NSegments())
}

func TestCOWFanOut(t *testing.T) {
	shared := buffer.NewSliceBuffer[uint32]([]byte("0123456789"))

	m := New[uint32, byte]()
	m.Insert(addr.BaseSize[uint32](0, 10), segment.Segment[uint32, byte]{Buffer: shared, Access: access.Readable | access.Writable, COW: true})
	m.Insert(addr.BaseSize[uint32](100, 10), segment.Segment[uint32, byte]{Buffer: shared, Access: access.Readable | access.Writable, COW: true})

	m.At(0).Limit(10).Write([]byte("XXXXXXXXXX"), 0)

	nodes := m.Nodes()
	require.Len(t, nodes, 2)
	assert.NotSame(t, shared, nodes[0].Value.Buffer)
	assert.NotSame(t, shared, nodes[1].Value.Buffer)
	assert.Same(t, nodes[0].Value.Buffer, nodes[1].Value.Buffer)
	assert.False(t, nodes[0].Value.COW)
	assert.False(t, nodes[1].Value.COW)

	// retargetBufferFrom repoints every segment still aliasing the original
	// buffer onto the clone that absorbed the write, so the second segment
	// observes the write too.
	dst := make([]byte, 10)
	read := m.At(100).Limit(10).Read(dst, 0)
	size, _ := read.Size()
	assert.Equal(t, uint32(10), size)
	assert.Equal(t, "XXXXXXXXXX", string(dst))
}

// TestCOWIsolatesOriginalBuffer verifies that the buffer a COW segment was
// cloned from is itself left untouched by the write: a second, unrelated map
// still pointing at the original still sees the pre-write bytes.
func TestCOWIsolatesOriginalBuffer(t *testing.T) {
	shared := buffer.NewSliceBuffer[uint32]([]byte("0123456789"))

	written := New[uint32, byte]()
	written.Insert(addr.BaseSize[uint32](0, 10), segment.Segment[uint32, byte]{Buffer: shared, Access: access.Readable | access.Writable, COW: true})
	written.At(0).Limit(10).Write([]byte("XXXXXXXXXX"), 0)

	untouched := New[uint32, byte]()
	untouched.Insert(addr.BaseSize[uint32](0, 10), segment.Segment[uint32, byte]{Buffer: shared, Access: access.Readable})

	dst := make([]byte, 10)
	untouched.At(0).Limit(10).Read(dst, 0)
	assert.Equal(t, "0123456789", string(dst))
}

func TestBackwardReadAnchor(t *testing.T) {
	buf := buffer.NewSliceBuffer[uint32](make([]byte, 34))
	for i := range buf.Bytes() {
		buf.Bytes()[i] = byte(990 + i)
	}

	m := New[uint32, byte]()
	m.Insert(addr.BaseSize[uint32](990, 34), segment.Segment[uint32, byte]{Buffer: buf, Access: access.Readable})

	dst := make([]byte, 1024)
	accessed := m.At(1023).Limit(1024).Read(dst, Backward)
	size, _ := accessed.Size()
	assert.Equal(t, uint32(34), size)
	assert.Equal(t, byte(990%256), dst[0])
}

func TestFindFreeSpaceNearTop(t *testing.T) {
	m := New[uint32, byte]()
	v, ok, err := m.FindFreeSpace(1_000_000_000, 4096, addr.Hull[uint32](0xFF000000, 0xFFFFFFFF), 0)
	require.NoError(t, err)
	if ok {
		assert.Equal(t, uint32(0), v%4096)
		assert.True(t, v+999_999_999 <= 0xFFFFFFFF)
	}
}

func TestAnchoredMiss(t *testing.T) {
	m := New[uint32, byte]()
	buf := buffer.NewSliceBuffer[uint32]([]byte("0123456789"))
	m.Insert(addr.BaseSize[uint32](0, 100), segment.Segment[uint32, byte]{Buffer: buf, Access: access.Readable})

	_, ok := m.At(100).Require(access.Readable).Next(0)
	assert.False(t, ok)

	next, ok := m.At(99).Require(access.Readable).Next(0)
	require.True(t, ok)
	assert.Equal(t, uint32(99), next)
}

func TestDisjointnessAndMergeIdempotence(t *testing.T) {
	buf := buffer.NewSliceBuffer[uint32]([]byte("0123456789"))
	m := New[uint32, byte]()
	seg := segment.Segment[uint32, byte]{Buffer: buf, Access: access.Readable}
	m.Insert(addr.BaseSize[uint32](0, 10), seg)
	require.NoError(t, m.CheckConsistency())

	m.Insert(addr.BaseSize[uint32](0, 10), seg)
	assert.Equal(t, 1, m.NSegments())
	require.NoError(t, m.CheckConsistency())
}

func TestPruneKeepDuality(t *testing.T) {
	buf := buffer.NewSliceBuffer[uint32]([]byte("0123456789"))
	fresh := func() *AddressMap[uint32, byte] {
		m := New[uint32, byte]()
		m.Insert(addr.BaseSize[uint32](0, 5), segment.Segment[uint32, byte]{Buffer: buf, Access: access.Readable, Name: "a"})
		m.Insert(addr.BaseSize[uint32](10, 5), segment.Segment[uint32, byte]{Buffer: buf, Access: access.Writable, Name: "b"})
		return m
	}

	pruned := fresh()
	pruned.Require(access.Readable).Prune(0)

	kept := fresh()
	kept.Constraints().Prohibit(access.Readable).Keep(0)

	assert.Equal(t, pruned.Segments(), kept.Segments())
}

func TestChangeAccess(t *testing.T) {
	buf := buffer.NewSliceBuffer[uint32]([]byte("0123456789"))
	m := New[uint32, byte]()
	m.Insert(addr.BaseSize[uint32](0, 10), segment.Segment[uint32, byte]{Buffer: buf, Access: access.Readable, Name: "text"})

	m.Within(addr.BaseSize[uint32](0, 5)).ChangeAccess(access.Executable, access.Writable, 0)

	nodes := m.Nodes()
	require.Len(t, nodes, 2)
	assert.True(t, nodes[0].Value.Access.Has(access.Readable|access.Executable))
	assert.False(t, nodes[1].Value.Access.Has(access.Executable))
}

func TestUnmappedAndWholeBoundary(t *testing.T) {
	m := New[uint32, byte]()
	gap := m.Unmapped(0, 0)
	assert.Equal(t, uint32(0), gap.Least())
	assert.Equal(t, addr.Max[uint32](), gap.Greatest())

	empty := addr.BaseSize[uint32](0xFFFFFFF0, 0x20) // overflows: empty
	assert.True(t, empty.IsEmpty())
}

func TestFindFreeSpaceRejectsZero(t *testing.T) {
	m := New[uint32, byte]()
	_, _, err := m.FindFreeSpace(0, 1, addr.Whole[uint32](), 0)
	assert.Error(t, err)
}
