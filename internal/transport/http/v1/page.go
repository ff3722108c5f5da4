package http

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/yasserh/Gestiongarrage/internal/model"
)

// parsePageRequest reads page, size and sort query parameters. Sort takes
// the "column,DIR" form; an absent direction means ascending. Malformed
// numbers fall back to the defaults rather than failing the request.
func parsePageRequest(r *http.Request) model.PageRequest {
	q := r.URL.Query()

	number, err := strconv.Atoi(q.Get("page"))
	if err != nil {
		number = 0
	}
	size, err := strconv.Atoi(q.Get("size"))
	if err != nil {
		size = model.DefaultPageSize
	}

	page := model.NewPageRequest(number, size)

	if sort := q.Get("sort"); sort != "" {
		column, dir, _ := strings.Cut(sort, ",")
		page.Sort = strings.TrimSpace(column)
		if strings.EqualFold(strings.TrimSpace(dir), string(model.SortDesc)) {
			page.Dir = model.SortDesc
		}
	}

	return page
}
