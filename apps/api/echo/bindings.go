package echoapi

import (
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/academia/core"
)

var orderingParam = "ordering"

type Ordering struct {
	Orderings []core.DBOrdering
}

// Bind reads `?ordering=field,-other` (a leading "-" sorts descending).
func (ord *Ordering) Bind(ctx echo.Context) {
	val := ctx.QueryParam(orderingParam)
	if val == "" {
		return
	}

	for _, field := range core.SplitList(val) {
		descending := strings.HasPrefix(field, "-")
		if descending {
			field = field[1:] // drop "-"
		}
		ord.Orderings = append(ord.Orderings, core.DBOrdering{Field: field, Ascending: !descending})
	}
}

// indexParam reads the `:index` path param of an installment.
func indexParam(ctx echo.Context) (int, error) {
	i, err := strconv.Atoi(ctx.Param("index"))
	if err != nil {
		return 0, errors.WithStack(errHttpNotFound)
	}
	return i, nil
}

// idsParam reads the repeated `?id=` param of bulk endpoints.
func idsParam(ctx echo.Context) []string {
	var ids []string
	for _, id := range ctx.QueryParams()["id"] {
		ids = append(ids, core.SplitList(id)...)
	}
	return ids
}
