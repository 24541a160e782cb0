package node

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLayout(t *testing.T, pageSize int) Layout {
	t.Helper()
	l, err := NewLayout(pageSize)
	require.NoError(t, err)
	return l
}

// makeLeaf builds a populated leaf on a fresh page image.
func makeLeaf(t *testing.T, l Layout, keys, values []uint64) Leaf {
	t.Helper()
	require.Equal(t, len(keys), len(values))
	leaf := InitLeaf(make([]byte, l.PageSize), l)
	for i := range keys {
		leaf.Insert(keys[i], values[i])
	}
	return leaf
}

func TestNewLayout(t *testing.T) {
	tests := []struct {
		name     string
		pageSize int
		wantErr  bool
		leafCap  int
		innerCap int
	}{
		{name: "default", pageSize: 4096, leafCap: 255, innerCap: 256},
		{name: "minimum", pageSize: 64, leafCap: 3, innerCap: 4},
		{name: "small", pageSize: 80, leafCap: 4, innerCap: 5},
		{name: "below_minimum", pageSize: 48, wantErr: true},
		{name: "unaligned", pageSize: 100, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := NewLayout(tt.pageSize)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.leafCap, l.LeafCapacity)
			assert.Equal(t, tt.innerCap, l.InnerCapacity)
		})
	}
}

func TestLeafLowerBound(t *testing.T) {
	l := testLayout(t, 4096)

	tests := []struct {
		name      string
		keys      []uint64
		key       uint64
		wantIndex int
		wantOK    bool
	}{
		{name: "empty_node", keys: nil, key: 5, wantIndex: 0, wantOK: false},
		{name: "exact_match", keys: []uint64{10, 20, 30}, key: 20, wantIndex: 1, wantOK: true},
		{name: "between_keys", keys: []uint64{10, 20, 30}, key: 15, wantIndex: 1, wantOK: true},
		{name: "before_first", keys: []uint64{10, 20, 30}, key: 5, wantIndex: 0, wantOK: true},
		{name: "after_last", keys: []uint64{10, 20, 30}, key: 35, wantIndex: 3, wantOK: false},
		{name: "first_key", keys: []uint64{10, 20, 30}, key: 10, wantIndex: 0, wantOK: true},
		{name: "last_key", keys: []uint64{10, 20, 30}, key: 30, wantIndex: 2, wantOK: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			leaf := makeLeaf(t, l, tt.keys, tt.keys)
			idx, ok := leaf.LowerBound(tt.key)
			assert.Equal(t, tt.wantIndex, idx)
			assert.Equal(t, tt.wantOK, ok)
		})
	}
}

func TestLeafLowerBoundBinarySearch(t *testing.T) {
	// Push the count past searchThreshold to exercise the sort.Search path.
	l := testLayout(t, 4096)
	leaf := InitLeaf(make([]byte, l.PageSize), l)
	for i := uint64(0); i < 100; i++ {
		leaf.Insert(i*2, i)
	}

	idx, ok := leaf.LowerBound(40)
	assert.True(t, ok)
	assert.Equal(t, 20, idx)

	idx, ok = leaf.LowerBound(41)
	assert.True(t, ok)
	assert.Equal(t, 21, idx)

	_, ok = leaf.LowerBound(199)
	assert.False(t, ok)
}

func TestLeafInsert(t *testing.T) {
	l := testLayout(t, 4096)

	t.Run("keeps_sort_order", func(t *testing.T) {
		leaf := makeLeaf(t, l, []uint64{30, 10, 20, 25}, []uint64{3, 1, 2, 4})
		assert.Equal(t, []uint64{10, 20, 25, 30}, leaf.Keys())
		assert.Equal(t, []uint64{1, 2, 4, 3}, leaf.Values())
	})

	t.Run("overwrite_keeps_count", func(t *testing.T) {
		leaf := makeLeaf(t, l, []uint64{10, 20}, []uint64{1, 2})
		leaf.Insert(20, 42)
		assert.Equal(t, 2, leaf.Count())
		assert.Equal(t, []uint64{1, 42}, leaf.Values())
	})

	t.Run("full_node_panics", func(t *testing.T) {
		small := testLayout(t, 80)
		leaf := makeLeaf(t, small, []uint64{1, 2, 3, 4}, []uint64{1, 2, 3, 4})
		require.True(t, leaf.IsFull())
		assert.Panics(t, func() { leaf.Insert(5, 5) })
	})

	t.Run("overwrite_in_full_node", func(t *testing.T) {
		small := testLayout(t, 80)
		leaf := makeLeaf(t, small, []uint64{1, 2, 3, 4}, []uint64{1, 2, 3, 4})
		leaf.Insert(3, 33)
		assert.Equal(t, 4, leaf.Count())
		assert.Equal(t, uint64(33), leaf.ValueAt(2))
	})
}

func TestLeafErase(t *testing.T) {
	l := testLayout(t, 4096)

	tests := []struct {
		name    string
		keys    []uint64
		erase   uint64
		want    []uint64
		removed bool
	}{
		{name: "middle", keys: []uint64{10, 20, 30}, erase: 20, want: []uint64{10, 30}, removed: true},
		{name: "first", keys: []uint64{10, 20, 30}, erase: 10, want: []uint64{20, 30}, removed: true},
		{name: "last", keys: []uint64{10, 20, 30}, erase: 30, want: []uint64{10, 20}, removed: true},
		{name: "absent", keys: []uint64{10, 20, 30}, erase: 15, want: []uint64{10, 20, 30}, removed: false},
		{name: "empty", keys: nil, erase: 1, want: []uint64{}, removed: false},
		{name: "to_empty", keys: []uint64{10}, erase: 10, want: []uint64{}, removed: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			leaf := makeLeaf(t, l, tt.keys, tt.keys)
			assert.Equal(t, tt.removed, leaf.Erase(tt.erase))
			assert.Equal(t, tt.want, leaf.Keys())
		})
	}
}

func TestLeafSplit(t *testing.T) {
	l := testLayout(t, 80) // capacity 4

	leaf := makeLeaf(t, l, []uint64{10, 20, 30, 40}, []uint64{1, 2, 3, 4})
	require.True(t, leaf.IsFull())

	right := InitLeaf(make([]byte, l.PageSize), l)
	sep := leaf.Split(right)

	assert.Equal(t, uint64(30), sep)
	assert.Equal(t, []uint64{10, 20}, leaf.Keys())
	assert.Equal(t, []uint64{30, 40}, right.Keys())
	assert.Equal(t, []uint64{1, 2}, leaf.Values())
	assert.Equal(t, []uint64{3, 4}, right.Values())

	// Total entries are preserved and both halves satisfy the separator
	// bounds: left strictly below, right at or above.
	assert.Equal(t, 4, leaf.Count()+right.Count())
	for _, k := range leaf.Keys() {
		assert.Less(t, k, sep)
	}
	for _, k := range right.Keys() {
		assert.GreaterOrEqual(t, k, sep)
	}
}

func TestLeafSplitOddCount(t *testing.T) {
	l := testLayout(t, 4096)

	leaf := makeLeaf(t, l, []uint64{1, 2, 3, 4, 5}, []uint64{1, 2, 3, 4, 5})
	right := InitLeaf(make([]byte, l.PageSize), l)
	sep := leaf.Split(right)

	// ceil(5/2) = 3 entries stay left.
	assert.Equal(t, uint64(4), sep)
	assert.Equal(t, []uint64{1, 2, 3}, leaf.Keys())
	assert.Equal(t, []uint64{4, 5}, right.Keys())
}
