package repository

import "strings"

// sqlxLowerLike prepares a user-supplied search term for a LIKE pattern:
// lowercased, with the escape character and the LIKE wildcards escaped so
// they match literally. The predicate must declare ESCAPE '\'.
func sqlxLowerLike(term string) string {
	lowered := strings.ToLower(strings.TrimSpace(term))
	replacer := strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)
	return replacer.Replace(lowered)
}
