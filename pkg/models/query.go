package models

// QueryResponse is the structured answer parsed out of a model completion.
// Only SQL is required; the remaining fields render when present.
type QueryResponse struct {
	SQL         string           `json:"sql"`
	InputTables map[string][]Row `json:"input_tables,omitempty"`
	OutputTable []Row            `json:"output_table,omitempty"`
	Explanation string           `json:"explanation,omitempty"`
	RQuery      string           `json:"r_query,omitempty"`
	Warnings    []string         `json:"warnings,omitempty"`
}

// CohortSelection is one table's worth of cohort-builder input: which columns
// the researcher wants and an optional free-text filter fragment. The filter is
// embedded in the natural-language prompt only, never in SQL.
type CohortSelection struct {
	Table   string   `json:"table"`
	Columns []string `json:"columns"`
	Filter  string   `json:"filter,omitempty"`
}
