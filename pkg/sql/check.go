// Package sql provides safety screens for user filter fragments and
// model-generated SQL.
package sql

import (
	"strings"

	libinjection "github.com/corazawaf/libinjection-go"
)

// FilterCheckResult describes whether a cohort filter fragment is safe to
// embed in a prompt, and why not.
type FilterCheckResult struct {
	Safe        bool
	Reason      string
	Fingerprint string // libinjection fingerprint when one matched
}

// CheckFilter screens a user-supplied WHERE fragment before it is embedded
// in the cohort prompt. Semicolons and libinjection SQLi fingerprints are
// flagged. A flagged filter produces a warning and an audit event, never a
// rejection: the fragment only ever travels inside natural-language prompt
// text, not into executed SQL.
func CheckFilter(fragment string) FilterCheckResult {
	trimmed := strings.TrimSpace(fragment)
	if trimmed == "" {
		return FilterCheckResult{Safe: true}
	}

	if strings.Contains(trimmed, ";") {
		return FilterCheckResult{
			Safe:   false,
			Reason: "filter contains a semicolon",
		}
	}

	if isSQLi, fingerprint := libinjection.IsSQLi(trimmed); isSQLi {
		return FilterCheckResult{
			Safe:        false,
			Reason:      "filter matches a SQL injection fingerprint",
			Fingerprint: string(fingerprint),
		}
	}

	return FilterCheckResult{Safe: true}
}

// StatementWarnings inspects SQL returned by the model and reports hygiene
// problems worth surfacing alongside the result. A single trailing semicolon
// is normal; any further semicolon outside string literals means the model
// packed multiple statements into one response.
func StatementWarnings(sqlText string) []string {
	trimmed := strings.TrimRight(strings.TrimSpace(sqlText), " \t\n\r")
	if trimmed == "" {
		return nil
	}

	body := strings.TrimRight(strings.TrimSuffix(trimmed, ";"), " \t\n\r")

	var warnings []string
	if hasSemicolonOutsideStrings(body) {
		warnings = append(warnings, "generated SQL contains multiple statements")
	}
	return warnings
}

// hasSemicolonOutsideStrings returns true if the SQL contains any semicolon
// outside of string literals. Handles backslash escapes and SQL-standard
// doubled quotes.
func hasSemicolonOutsideStrings(sqlQuery string) bool {
	const (
		stateNormal = iota
		stateSingleQuote
		stateDoubleQuote
	)

	state := stateNormal
	prevChar := rune(0)

	for _, char := range sqlQuery {
		switch state {
		case stateNormal:
			switch char {
			case ';':
				return true
			case '\'':
				state = stateSingleQuote
			case '"':
				state = stateDoubleQuote
			}
		case stateSingleQuote:
			// A doubled quote ('') exits and immediately re-enters on the
			// next quote, which correctly keeps us inside the string.
			if char == '\'' && prevChar != '\\' {
				state = stateNormal
			}
		case stateDoubleQuote:
			if char == '"' && prevChar != '\\' {
				state = stateNormal
			}
		}
		prevChar = char
	}

	return false
}
