package dispatch

import "github.com/cohortiq/cohort-engine/pkg/models"

// Dispatch maps a normalized request to exactly one ResultBundle. It is total:
// unmatched input yields the fallback bundle, never an error. Callers are
// expected to pass text through Normalize first.
func Dispatch(normalized string) models.ResultBundle {
	for _, r := range rules {
		if r.match(normalized) {
			return bundleFor(r)
		}
	}
	return Fallback()
}

// Fallback returns the sentinel "unrecognized request" bundle: a fixed SQL
// comment and no example tables.
func Fallback() models.ResultBundle {
	return models.ResultBundle{
		RuleID:      models.RuleFallback,
		Title:       "Unrecognized request",
		SQL:         fallbackSQL,
		OutputTable: models.ExampleTable{Name: "result"},
	}
}

func bundleFor(r rule) models.ResultBundle {
	inputs, output := ExamplesFor(r.id)
	return models.ResultBundle{
		RuleID:      r.id,
		Title:       r.title,
		SQL:         r.sql,
		InputTables: inputs,
		OutputTable: output,
	}
}

// RuleInfo is a catalog entry for the preset request menu.
type RuleInfo struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Example string `json:"example"`
}

// Rules returns the catalog in priority order. The slice is freshly allocated;
// the underlying rule table is immutable for the process lifetime.
func Rules() []RuleInfo {
	infos := make([]RuleInfo, 0, len(rules))
	for _, r := range rules {
		infos = append(infos, RuleInfo{ID: r.id, Title: r.title, Example: r.example})
	}
	return infos
}
