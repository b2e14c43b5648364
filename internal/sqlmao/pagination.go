package sqlmao

import (
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/wagnerlima/memory-cloud/metadatastore/internal/mao"
	"github.com/wagnerlima/memory-cloud/metadatastore/internal/mderr"
)

// cursor is the decoded form of a next_page_token: a keyset watermark on
// (order_by value, id), plus which column produced it, so resuming a scan
// after arbitrary concurrent inserts/updates never skips or repeats a row —
// the property OFFSET-based pagination cannot guarantee.
type cursor struct {
	OrderBy  string `json:"order_by"`
	LastVal  int64  `json:"last_val"`
	LastID   int64  `json:"last_id"`
}

func encodeCursor(c cursor) string {
	b, _ := json.Marshal(c)
	return base64.RawURLEncoding.EncodeToString(b)
}

func decodeCursor(token string) (cursor, error) {
	var c cursor
	if token == "" {
		return c, nil
	}
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return c, mderr.InvalidArgument("invalid page token")
	}
	if err := json.Unmarshal(raw, &c); err != nil {
		return c, mderr.InvalidArgument("invalid page token")
	}
	return c, nil
}

// orderColumn resolves the requested order_by to one of the two columns
// every typed entity table carries; unknown values fall back to id.
func orderColumn(orderBy string) string {
	switch orderBy {
	case "create_time_since_epoch", "last_update_time_since_epoch":
		return orderBy
	default:
		return "id"
	}
}

// pageClause builds the keyset AND-predicate/ORDER BY/LIMIT suffix and args
// that callers append after their own WHERE clause. Returns the suffix SQL,
// its args, the resolved order column, and the page size (0 means no
// limit); the LIMIT asks for one extra row so callers can tell whether a
// next page exists.
func pageClause(opts *mao.ListOptions) (suffix string, args []any, col string, limit int, err error) {
	col = "id"
	limit = 0
	if opts == nil {
		return "ORDER BY id", nil, col, 0, nil
	}
	col = orderColumn(opts.OrderBy)
	limit = int(opts.PageSize)

	c, err := decodeCursor(opts.PageToken)
	if err != nil {
		return "", nil, col, 0, err
	}

	dir := "ASC"
	cmp := ">"
	if opts.Desc {
		dir = "DESC"
		cmp = "<"
	}

	where := ""
	if opts.PageToken != "" {
		where = fmt.Sprintf("AND (%s %s ? OR (%s = ? AND id %s ?))", col, cmp, col, cmp)
		args = append(args, c.LastVal, c.LastVal, c.LastID)
	}
	orderBy := fmt.Sprintf("ORDER BY %s %s, id %s", col, dir, dir)

	limitClause := ""
	if limit > 0 {
		limitClause = fmt.Sprintf("LIMIT %d", limit+1)
	}
	suffix = fmt.Sprintf("%s %s %s", where, orderBy, limitClause)
	return suffix, args, col, limit, nil
}
