package db

import "strings"

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// ContainsLower is a case-insensitive substring match on col. The search
// text's % and _ match themselves.
func ContainsLower(col string) string {
	return "LOWER(" + col + `) LIKE ? ESCAPE '\'`
}

// ContainsPattern is the argument for ContainsLower.
func ContainsPattern(s string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(s)) + "%"
}
