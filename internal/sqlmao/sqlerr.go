package sqlmao

import "strings"

// isUniqueViolation matches the SQLite "UNIQUE constraint failed" error text;
// the ncruces driver doesn't expose a typed sqlite3.Error consistently
// across builds, so callers that need to translate a UNIQUE violation into
// AlreadyExists check the message the way the teacher's storage layer does.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// isForeignKeyViolation matches SQLite's "FOREIGN KEY constraint failed"
// text, the same string-matching convention as isUniqueViolation above —
// raised when a row references a type/artifact/execution/context id that
// doesn't exist.
func isForeignKeyViolation(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "FOREIGN KEY constraint failed")
}

func joinAnd(clauses []string) string {
	return strings.Join(clauses, " AND ")
}

// splitColumns parses one of the *Columns constants (a comma-separated,
// possibly multi-line-indented column list) into individual column names.
func splitColumns(cols string) []string {
	raw := strings.Split(cols, ",")
	out := make([]string, len(raw))
	for i, c := range raw {
		out[i] = strings.Join(strings.Fields(c), " ")
	}
	return out
}

func joinComma(cols []string) string {
	return strings.Join(cols, ", ")
}
