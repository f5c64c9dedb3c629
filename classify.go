package sqlboost

import (
	"regexp"
	"strings"
)

// Kind is the closed set of statement classes the layer branches on.
// Classification looks at the first keyword of the trimmed SQL text only;
// anything beyond that is out of scope.
type Kind int

const (
	KindOther Kind = iota
	KindSelect
	KindInsert
	KindUpdate
	KindDelete
)

func (k Kind) String() string {
	switch k {
	case KindSelect:
		return "select"
	case KindInsert:
		return "insert"
	case KindUpdate:
		return "update"
	case KindDelete:
		return "delete"
	default:
		return "other"
	}
}

// classify sniffs the leading keyword, case-insensitively. Both the
// executor and the cache layer consume this single function so the
// keyword logic lives in exactly one place.
func classify(query string) Kind {
	q := strings.TrimSpace(query)
	if i := strings.IndexFunc(q, func(r rune) bool { return r == ' ' || r == '\t' || r == '\n' || r == '\r' || r == '(' }); i > 0 {
		q = q[:i]
	}
	switch strings.ToUpper(q) {
	case "SELECT":
		return KindSelect
	case "INSERT", "REPLACE":
		return KindInsert
	case "UPDATE":
		return KindUpdate
	case "DELETE":
		return KindDelete
	default:
		return KindOther
	}
}

// volatileRegexp matches constructs whose value changes between otherwise
// identical executions: random-value generation, current-timestamp
// functions and result-count bookkeeping.
var volatileRegexp = regexp.MustCompile(`(?i)\b(RAND|RANDOM|NOW|CURDATE|CURTIME|UNIX_TIMESTAMP|SYSDATE|FOUND_ROWS)\s*\(|(?i:\b(CURRENT_TIMESTAMP|CURRENT_DATE|CURRENT_TIME|SQL_CALC_FOUND_ROWS)\b)`)

// isVolatile reports whether the query references a time-volatile
// construct and must therefore never be served from cache.
func isVolatile(query string) bool {
	return volatileRegexp.MatchString(query)
}

// cacheable applies the three-part classification: the caller must be on a
// read-only surface, the statement must be a SELECT, and the text must be
// free of volatile constructs. The read-only flag is supplied by the host,
// never derived here.
func cacheable(query string, readOnly bool) bool {
	return readOnly && classify(query) == KindSelect && !isVolatile(query)
}

var whitespaceRegexp = regexp.MustCompile(`\s+`)

// normalizeSQL collapses whitespace runs so that formatting differences do
// not split cache keys.
func normalizeSQL(query string) string {
	return whitespaceRegexp.ReplaceAllString(strings.TrimSpace(query), " ")
}
