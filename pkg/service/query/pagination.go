package query

import (
	"strconv"

	"github.com/amirasaad/custodia/pkg/repository"
)

// DefaultPageSize is used when no limit is supplied.
const DefaultPageSize = 20

// accountSortFields and transactionSortFields whitelist the columns a
// client may order by. Raw client input never reaches an ORDER BY clause.
var accountSortFields = map[string]string{
	"id":        "id",
	"type":      "kind",
	"kind":      "kind",
	"currency":  "currency",
	"balance":   "balance",
	"createdAt": "created_at",
	"updatedAt": "updated_at",
}

var transactionSortFields = map[string]string{
	"id":        "id",
	"amount":    "amount",
	"currency":  "currency",
	"type":      "type",
	"status":    "status",
	"createdAt": "created_at",
}

// normalize sanitizes raw pagination and sorting input. Missing limit
// falls back to the default page size; malformed or negative limit/skip
// coerce to 0 rather than failing. Any order other than "asc" normalizes
// to "desc". Unknown sort fields fall back to created_at.
func normalize(limit, skip, sortBy, order string, sortFields map[string]string) repository.ListQuery {
	q := repository.ListQuery{
		Limit:  DefaultPageSize,
		SortBy: "created_at",
		Order:  repository.SortDesc,
	}
	if limit != "" {
		n, err := strconv.Atoi(limit)
		if err != nil || n < 0 {
			n = 0
		}
		q.Limit = n
	}
	if skip != "" {
		n, err := strconv.Atoi(skip)
		if err != nil || n < 0 {
			n = 0
		}
		q.Offset = n
	}
	if column, ok := sortFields[sortBy]; ok {
		q.SortBy = column
	}
	if order == "asc" {
		q.Order = repository.SortAsc
	}
	return q
}
