package sqlboost

import (
	"database/sql/driver"
	"io"

	"github.com/sqlboost/sqlboost/cache"
)

func newRowsRecorder(setter func(item *cache.Item), rows driver.Rows, maxRows int) *rowsRecorder {
	return &rowsRecorder{
		item:    new(cache.Item),
		setter:  setter,
		maxRows: maxRows,
		dr:      rows,
	}
}

// rowsRecorder passes rows through to the consumer while accumulating a
// cache.Item on the side. The item is stored only when the consumer drains
// the result to EOF without errors and without hitting the row cap.
type rowsRecorder struct {
	item       *cache.Item
	setter     func(item *cache.Item)
	gotErr     bool
	gotEOF     bool
	maxRowsHit bool
	maxRows    int
	dr         driver.Rows
}

func (r *rowsRecorder) Columns() []string {
	r.item.Cols = r.dr.Columns()
	return r.item.Cols
}

func (r *rowsRecorder) Close() error {
	if err := r.dr.Close(); err != nil {
		r.gotErr = true
		return err
	}

	if r.gotEOF && !r.gotErr && !r.maxRowsHit {
		r.item.Kind = int(KindSelect)
		r.item.RowCount = len(r.item.Rows)
		r.item.OK = true
		r.setter(r.item)
	}

	return nil
}

func (r *rowsRecorder) Next(dest []driver.Value) error {
	err := r.dr.Next(dest)
	if err != nil {
		if err == io.EOF {
			r.gotEOF = true
		} else {
			r.gotErr = true
		}
	}

	if r.gotEOF || r.gotErr || r.maxRowsHit {
		return err
	}

	if len(r.item.Rows) == r.maxRows {
		r.maxRowsHit = true
		return err
	}

	cpy := make([]interface{}, len(dest))
	for i, v := range dest {
		cpy[i] = v
	}
	r.item.Rows = append(r.item.Rows, cpy)

	return err
}
