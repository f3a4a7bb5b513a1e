package repository

import "strings"

// qualify prefixes every column in a comma-separated list with the given
// table alias, for use in joined queries.
func qualify(columns, alias string) string {
	parts := strings.Split(columns, ",")
	for i, part := range parts {
		parts[i] = alias + "." + strings.TrimSpace(part)
	}
	return strings.Join(parts, ", ")
}
