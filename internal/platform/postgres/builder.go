package postgres

import (
	"github.com/Masterminds/squirrel"
	"github.com/phrazzld/tasker-api/internal/domain"
)

// psql builds statements with $n placeholders.
var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

// paginate applies a normalized page window to a select.
func paginate(q squirrel.SelectBuilder, page domain.Page) squirrel.SelectBuilder {
	page = page.Normalize()
	return q.Limit(uint64(page.Limit)).Offset(uint64(page.Skip))
}
