package utils

import "strings"

// JoinWithAnd joins WHERE fragments with AND.
func JoinWithAnd(clauses []string) string {
	return strings.Join(clauses, " AND ")
}

// WhereClause prefixes the joined fragments with WHERE, or returns "" when there are none.
func WhereClause(clauses []string) string {
	if len(clauses) == 0 {
		return ""
	}
	return " WHERE " + JoinWithAnd(clauses)
}

// LikePattern escapes LIKE wildcards and wraps the term in %...%.
func LikePattern(term string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(strings.TrimSpace(term)) + "%"
}
