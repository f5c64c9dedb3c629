package sqlboost

import (
	"database/sql/driver"
	"io"

	"github.com/sqlboost/sqlboost/cache"
)

// rowsCached replays a stored cache.Item as driver.Rows.
type rowsCached struct {
	*cache.Item
	ptr int
}

func (r *rowsCached) Columns() []string {
	return r.Item.Cols
}

func (r *rowsCached) Next(dest []driver.Value) error {
	if r.ptr >= len(r.Item.Rows) {
		return io.EOF
	}

	for i, v := range r.Item.Rows[r.ptr] {
		if i < len(dest) {
			dest[i] = v
		}
	}
	r.ptr++

	return nil
}

func (r *rowsCached) Close() error {
	return nil
}
