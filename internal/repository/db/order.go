package db

import (
	"github.com/yasserh/Gestiongarrage/internal/model"
)

// OrderClause renders a whitelisted ORDER BY; unknown sort columns fall
// back to the default so callers cannot inject SQL through the sort param.
func OrderClause(allowed map[string]string, page model.PageRequest, fallback string) string {
	col, ok := allowed[page.Sort]
	if !ok {
		col = fallback
	}
	dir := "ASC"
	if page.Dir == model.SortDesc {
		dir = "DESC"
	}
	return col + " " + dir
}
