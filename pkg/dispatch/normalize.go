// Package dispatch maps free-text requests onto a fixed menu of SQL templates.
// The matching is deliberately dumb: lowercase the request, then walk an ordered
// list of substring rules and return the first hit. Rule order is a contract,
// not an accident; several predicates overlap and declaration order is the
// tie-break.
package dispatch

import "strings"

// Normalize lowercases and trims a request before matching. Nothing else: the
// rules depend on exact phrase presence, so stemming or punctuation stripping
// would silently break working triggers. Pure and total.
func Normalize(text string) string {
	return strings.TrimSpace(strings.ToLower(text))
}
