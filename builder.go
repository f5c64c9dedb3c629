package sqlboost

import (
	"context"
	"fmt"
)

// Row is a structured record: column names in statement order paired with
// the values of one result row.
type Row struct {
	Columns []string
	Values  []interface{}
}

// Map returns the row as an associative map keyed by column name.
func (r Row) Map() map[string]interface{} {
	m := make(map[string]interface{}, len(r.Columns))
	for i, c := range r.Columns {
		if i < len(r.Values) {
			m[c] = r.Values[i]
		}
	}
	return m
}

// Result is the normalized outcome of a statement. For row-producing
// statements Rows holds the data; Rows is nil, not an empty slice, when
// zero rows were produced. For write statements the counters are set
// according to the statement kind.
type Result struct {
	Kind         Kind
	Cols         []string
	Rows         [][]interface{}
	RowCount     int
	Affected     int64
	LastInsertID int64
	OK           bool

	// Single and AsMap record the requested cardinality and shape at
	// execution time; Value honors them.
	Single bool
	AsMap  bool
}

// Record returns the first row as a structured record, or nil when the
// result holds no rows.
func (r *Result) Record() *Row {
	if r == nil || len(r.Rows) == 0 {
		return nil
	}
	return &Row{Columns: r.Cols, Values: r.Rows[0]}
}

// Records returns all rows as structured records, nil when there are none.
func (r *Result) Records() []Row {
	if r == nil || r.Rows == nil {
		return nil
	}
	out := make([]Row, len(r.Rows))
	for i, vals := range r.Rows {
		out[i] = Row{Columns: r.Cols, Values: vals}
	}
	return out
}

// Maps returns all rows as associative maps, nil when there are none.
func (r *Result) Maps() []map[string]interface{} {
	recs := r.Records()
	if recs == nil {
		return nil
	}
	out := make([]map[string]interface{}, len(recs))
	for i, rec := range recs {
		out[i] = rec.Map()
	}
	return out
}

// Value returns the result in the shape requested at execution time: one
// record or a list, structured or associative. It returns nil when the
// statement produced no rows.
func (r *Result) Value() interface{} {
	if r == nil || r.Rows == nil {
		return nil
	}
	switch {
	case r.Single && r.AsMap:
		return r.Record().Map()
	case r.Single:
		return *r.Record()
	case r.AsMap:
		return r.Maps()
	default:
		return r.Records()
	}
}

// Builder is the fluent statement builder. Every mutating call returns the
// same instance. Builder state is owned by one logical request at a time;
// it is reset after every execution.
type Builder struct {
	conn   *Conn
	query  string
	params []interface{}
	single bool
	asMap  bool
}

// NewBuilder returns a builder bound to conn. The connection itself stays
// lazy; nothing is opened until the first execution.
func NewBuilder(conn *Conn) *Builder {
	return &Builder{conn: conn}
}

// Query stages SQL text and fully resets any previously bound parameters
// and fetch-mode flags.
func (b *Builder) Query(query string) *Builder {
	b.Reset()
	b.query = query
	return b
}

// Bind appends parameters positionally. A bare scalar is wrapped into a
// one-element list; a []interface{} is appended element-wise. There is no
// named-parameter support.
func (b *Builder) Bind(value interface{}) *Builder {
	if list, ok := value.([]interface{}); ok {
		b.params = append(b.params, list...)
		return b
	}
	b.params = append(b.params, value)
	return b
}

// Single requests one-record cardinality for the next fetch.
func (b *Builder) Single() *Builder {
	b.single = true
	return b
}

// Many requests list cardinality, the default.
func (b *Builder) Many() *Builder {
	b.single = false
	return b
}

// AsMap requests associative-map result shape.
func (b *Builder) AsMap() *Builder {
	b.asMap = true
	return b
}

// AsRecord requests structured-record result shape, the default.
func (b *Builder) AsRecord() *Builder {
	b.asMap = false
	return b
}

// Reset clears all builder state back to a freshly constructed instance:
// empty SQL, no parameters, many-record cardinality, record shape.
func (b *Builder) Reset() *Builder {
	b.query = ""
	b.params = nil
	b.single = false
	b.asMap = false
	return b
}

// coerceParam maps a bound value to its driver binding category by runtime
// type: boolean as boolean, integer as integer, nil as null, everything
// else as string. There is no schema awareness and no pattern sniffing.
func coerceParam(v interface{}) interface{} {
	switch t := v.(type) {
	case nil:
		return nil
	case bool:
		return t
	case int:
		return int64(t)
	case int8:
		return int64(t)
	case int16:
		return int64(t)
	case int32:
		return int64(t)
	case int64:
		return t
	case uint:
		return int64(t)
	case uint8:
		return int64(t)
	case uint16:
		return int64(t)
	case uint32:
		return int64(t)
	case uint64:
		return int64(t)
	default:
		return fmt.Sprintf("%v", t)
	}
}

func coerceParams(params []interface{}) []interface{} {
	if len(params) == 0 {
		return nil
	}
	out := make([]interface{}, len(params))
	for i, p := range params {
		out[i] = coerceParam(p)
	}
	return out
}

// Fetch executes the staged query and returns rows. A limit of 1 forces
// one-record cardinality for this call; a limit above 1 forces list
// cardinality. Zero produced rows yield a Result with nil Rows. Driver
// failures are wrapped in ExecError and propagated; builder state is reset
// either way.
func (b *Builder) Fetch(limit ...int) (*Result, error) {
	if b.query == "" {
		return nil, &UsageError{Op: "Fetch", Reason: "no query staged"}
	}

	single := b.single
	if len(limit) > 0 {
		switch {
		case limit[0] == 1:
			single = true
		case limit[0] > 1:
			single = false
		}
	}

	query, params, asMap := b.query, b.params, b.asMap
	b.Reset()

	res, err := b.fetchRows(query, params, single)
	if err != nil {
		return nil, err
	}
	res.Single = single
	res.AsMap = asMap
	return res, nil
}

// Execute runs the staged write statement. The return bundle depends on
// the leading keyword: INSERT carries the last-inserted id (OK alone when
// the driver has none), UPDATE and DELETE carry the affected-row count,
// anything else just the success flag. Builder state is reset either way.
func (b *Builder) Execute() (*Result, error) {
	if b.query == "" {
		return nil, &UsageError{Op: "Execute", Reason: "no query staged"}
	}

	query, params := b.query, b.params
	b.Reset()

	return b.execStatement(query, params)
}

// Raw prepares, binds and executes in one call, bypassing builder state
// entirely. The result is classified by leading keyword exactly like
// Fetch and Execute. Raw is the escape hatch for call sites that need a
// one-shot statement without mutating builder state, and it is exempt
// from duplicate suppression.
func (b *Builder) Raw(query string, params ...interface{}) (*Result, error) {
	if query == "" {
		return nil, &UsageError{Op: "Raw", Reason: "empty query"}
	}
	if classify(query) == KindSelect {
		return b.fetchRows(query, params, false)
	}
	return b.execStatement(query, params)
}

// LastID returns the identifier generated by the most recent INSERT on
// this connection. It is the sole fail-soft call: callers probe it
// speculatively, so absence reports ok=false instead of an error.
func (b *Builder) LastID() (int64, bool) {
	if b.conn == nil || !b.conn.hasLastID {
		return 0, false
	}
	return b.conn.lastInsertID, true
}

func (b *Builder) fetchRows(query string, params []interface{}, single bool) (*Result, error) {
	p, err := b.conn.preparer()
	if err != nil {
		return nil, err
	}

	stmt, err := p.PrepareContext(context.Background(), query)
	if err != nil {
		return nil, &ExecError{Query: query, Err: err}
	}
	defer stmt.Close()

	rows, err := stmt.QueryContext(context.Background(), coerceParams(params)...)
	if err != nil {
		return nil, &ExecError{Query: query, Err: err}
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, &ExecError{Query: query, Err: err}
	}

	res := &Result{Kind: KindSelect, Cols: cols}
	for rows.Next() {
		vals := make([]interface{}, len(cols))
		ptrs := make([]interface{}, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, &ExecError{Query: query, Err: err}
		}
		for i, v := range vals {
			if bs, ok := v.([]byte); ok {
				vals[i] = string(bs)
			}
		}
		res.Rows = append(res.Rows, vals)
		if single {
			break
		}
	}
	if err := rows.Err(); err != nil {
		return nil, &ExecError{Query: query, Err: err}
	}

	res.RowCount = len(res.Rows)
	res.OK = true
	return res, nil
}

func (b *Builder) execStatement(query string, params []interface{}) (*Result, error) {
	p, err := b.conn.preparer()
	if err != nil {
		return nil, err
	}

	stmt, err := p.PrepareContext(context.Background(), query)
	if err != nil {
		return nil, &ExecError{Query: query, Err: err}
	}
	defer stmt.Close()

	sr, err := stmt.ExecContext(context.Background(), coerceParams(params)...)
	if err != nil {
		return nil, &ExecError{Query: query, Err: err}
	}

	res := &Result{Kind: classify(query), OK: true}
	switch res.Kind {
	case KindInsert:
		if id, err := sr.LastInsertId(); err == nil && id != 0 {
			res.LastInsertID = id
			b.conn.lastInsertID = id
			b.conn.hasLastID = true
		}
		if n, err := sr.RowsAffected(); err == nil {
			res.Affected = n
		}
	case KindUpdate, KindDelete:
		n, err := sr.RowsAffected()
		if err != nil {
			return nil, &ExecError{Query: query, Err: err}
		}
		res.Affected = n
	}
	return res, nil
}
