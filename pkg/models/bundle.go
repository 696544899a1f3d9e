package models

// Row is a single example-table row mapping column name to a scalar value
// (string, integer, or date-like string).
type Row map[string]any

// ExampleTable is a small fixed table used to illustrate what a SQL template
// consumes or produces. Columns carries the display order; Rows are keyed by
// column name.
type ExampleTable struct {
	Name    string   `json:"name"`
	Columns []string `json:"columns"`
	Rows    []Row    `json:"rows"`
}

// Empty reports whether the table carries no example rows.
func (t ExampleTable) Empty() bool {
	return len(t.Rows) == 0
}

// ResultBundle is the dispatcher's output unit: one SQL template plus fixed
// example tables. SQL may contain placeholder tokens (X, Y, YOUR_CONDITION,
// YOUR_RACE) that the user is expected to edit by hand; the system never
// resolves them.
type ResultBundle struct {
	RuleID      string         `json:"rule_id"`
	Title       string         `json:"title"`
	SQL         string         `json:"sql"`
	InputTables []ExampleTable `json:"input_tables,omitempty"`
	OutputTable ExampleTable   `json:"output_table"`
}

// Recognized reports whether the bundle came from a real rule rather than the
// fallback.
func (b ResultBundle) Recognized() bool {
	return b.RuleID != RuleFallback
}

// RuleFallback is the rule id of the sentinel "unrecognized request" bundle.
const RuleFallback = "fallback"
