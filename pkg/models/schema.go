package models

// SchemaDefinition is a fixed clinical data model (i2b2 or OMOP) described as an
// ordered list of tables. Definitions are built once at startup and never mutated.
type SchemaDefinition struct {
	ID     string            `json:"id"`
	Tables []TableDefinition `json:"tables"`
}

// TableDefinition is a table name plus its ordered column list. Column order is
// part of the contract: it feeds the schema description embedded in prompts.
type TableDefinition struct {
	Name    string   `json:"name"`
	Columns []string `json:"columns"`
}

// Table returns the table with the given name, or nil if the schema has no such
// table.
func (s *SchemaDefinition) Table(name string) *TableDefinition {
	for i := range s.Tables {
		if s.Tables[i].Name == name {
			return &s.Tables[i]
		}
	}
	return nil
}
