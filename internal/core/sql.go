package core

import (
	"regexp"
	"strings"
)

// quoteIdent quotes an identifier for the engine's SQL dialect.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// quoteLiteral quotes a string literal for the engine's SQL dialect.
func quoteLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// qualify joins identifier parts into a quoted, dot-separated name.
func qualify(parts ...string) string {
	quoted := make([]string, 0, len(parts))
	for _, p := range parts {
		if p == "" {
			continue
		}
		quoted = append(quoted, quoteIdent(p))
	}
	return strings.Join(quoted, ".")
}

// typeNameRegex accepts engine type names such as DOUBLE, VARCHAR,
// DECIMAL(18, 2), TIMESTAMP WITH TIME ZONE and INTEGER[].
var typeNameRegex = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_ ]*(\(\s*\d+\s*(,\s*\d+\s*)?\))?(\[\])?$`)

// validTypeName reports whether s can be spliced into a CAST expression.
func validTypeName(s string) bool {
	s = strings.TrimSpace(s)
	return s != "" && len(s) <= 64 && typeNameRegex.MatchString(s)
}
