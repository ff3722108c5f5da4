package http

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yasserh/Gestiongarrage/internal/model"
)

func TestParsePageRequest(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name   string
		target string
		want   model.PageRequest
	}{
		{
			name:   "defaults",
			target: "/garages",
			want:   model.PageRequest{Number: 0, Size: model.DefaultPageSize, Dir: model.SortAsc},
		},
		{
			name:   "page and size",
			target: "/garages?page=2&size=5",
			want:   model.PageRequest{Number: 2, Size: 5, Dir: model.SortAsc},
		},
		{
			name:   "sort without direction is ascending",
			target: "/garages?sort=name",
			want:   model.PageRequest{Number: 0, Size: model.DefaultPageSize, Sort: "name", Dir: model.SortAsc},
		},
		{
			name:   "descending sort is case-insensitive",
			target: "/garages?sort=price,desc",
			want:   model.PageRequest{Number: 0, Size: model.DefaultPageSize, Sort: "price", Dir: model.SortDesc},
		},
		{
			name:   "malformed numbers fall back",
			target: "/garages?page=abc&size=-3",
			want:   model.PageRequest{Number: 0, Size: model.DefaultPageSize, Dir: model.SortAsc},
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			r := httptest.NewRequest("GET", tc.target, nil)
			assert.Equal(t, tc.want, parsePageRequest(r))
		})
	}
}
