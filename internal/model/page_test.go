package model

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewPageRequest(t *testing.T) {
	t.Parallel()

	p := NewPageRequest(-1, 0)
	assert.Zero(t, p.Number)
	assert.Equal(t, DefaultPageSize, p.Size)
	assert.Equal(t, SortAsc, p.Dir)

	p = NewPageRequest(3, 10)
	assert.Equal(t, uint64(30), p.Offset())
	assert.Equal(t, uint64(10), p.Limit())
}

func TestWithSort(t *testing.T) {
	t.Parallel()

	p := NewPageRequest(0, 20).WithSort("name", SortAsc)
	assert.Equal(t, "name", p.Sort)

	// an explicit sort wins over the default
	p.Sort = "price"
	p.Dir = SortDesc
	p = p.WithSort("name", SortAsc)
	assert.Equal(t, "price", p.Sort)
	assert.Equal(t, SortDesc, p.Dir)
}

func TestMapPage(t *testing.T) {
	t.Parallel()

	in := Page[int]{Items: []int{1, 2, 3}, PageNumber: 1, PageSize: 3, TotalElements: 9}
	out := MapPage(in, strconv.Itoa)

	assert.Equal(t, []string{"1", "2", "3"}, out.Items)
	assert.Equal(t, in.PageNumber, out.PageNumber)
	assert.Equal(t, in.PageSize, out.PageSize)
	assert.Equal(t, in.TotalElements, out.TotalElements)
}
