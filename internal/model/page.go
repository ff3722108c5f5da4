package model

// DefaultPageSize applies when a list request carries no size parameter.
const DefaultPageSize = 20

type SortDirection string

const (
	SortAsc  SortDirection = "ASC"
	SortDesc SortDirection = "DESC"
)

// PageRequest is a zero-based page window with an optional sort column.
type PageRequest struct {
	Number int
	Size   int
	Sort   string
	Dir    SortDirection
}

func NewPageRequest(number, size int) PageRequest {
	if number < 0 {
		number = 0
	}
	if size <= 0 {
		size = DefaultPageSize
	}
	return PageRequest{Number: number, Size: size, Dir: SortAsc}
}

// WithSort returns a copy sorted by the given column when the request does
// not already carry a sort.
func (p PageRequest) WithSort(column string, dir SortDirection) PageRequest {
	if p.Sort == "" {
		p.Sort = column
		p.Dir = dir
	}
	return p
}

func (p PageRequest) Offset() uint64 {
	return uint64(p.Number) * uint64(p.Size)
}

func (p PageRequest) Limit() uint64 {
	return uint64(p.Size)
}

// Page is a windowed view over a larger result set.
type Page[T any] struct {
	Items         []T
	PageNumber    int
	PageSize      int
	TotalElements int64
}

// MapPage converts a page's items while preserving the window metadata.
func MapPage[T, U any](p Page[T], fn func(T) U) Page[U] {
	items := make([]U, 0, len(p.Items))
	for _, it := range p.Items {
		items = append(items, fn(it))
	}
	return Page[U]{
		Items:         items,
		PageNumber:    p.PageNumber,
		PageSize:      p.PageSize,
		TotalElements: p.TotalElements,
	}
}
