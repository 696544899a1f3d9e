// Package schema holds the two fixed clinical data models the assistant knows
// about. The registry is static: table and column inventories are part of the
// product contract, not discovered from a live database.
package schema

import (
	"fmt"
	"strings"

	"github.com/cohortiq/cohort-engine/pkg/apperrors"
	"github.com/cohortiq/cohort-engine/pkg/models"
)

// Canonical schema identifiers.
const (
	I2B2 = "i2b2"
	OMOP = "OMOP"
)

// Table order matters: Describe renders line-per-table in this order and the
// output is embedded verbatim in prompts, so reordering changes prompt bytes.
var i2b2 = &models.SchemaDefinition{
	ID: I2B2,
	Tables: []models.TableDefinition{
		{Name: "observation_fact", Columns: []string{"encounter_num", "patient_num", "concept_cd", "start_date"}},
		{Name: "patient_dimension", Columns: []string{"patient_num", "birth_date", "death_date", "sex_cd", "race_cd", "ethnicity_cd", "language_cd", "marital_status_cd", "zip_cd"}},
		{Name: "concept_dimension", Columns: []string{"concept_cd", "name_char"}},
		{Name: "visit_dimension", Columns: []string{"encounter_id", "patient_num", "start_date", "end_date"}},
	},
}

var omop = &models.SchemaDefinition{
	ID: OMOP,
	Tables: []models.TableDefinition{
		{Name: "person", Columns: []string{"person_id", "gender_concept_id", "year_of_birth", "race_concept_id", "ethnicity_concept_id"}},
		{Name: "visit_occurrence", Columns: []string{"visit_occurrence_id", "person_id", "visit_concept_id", "visit_start_date", "visit_end_date"}},
		{Name: "condition_occurrence", Columns: []string{"condition_occurrence_id", "person_id", "condition_concept_id", "condition_start_date"}},
		{Name: "measurement", Columns: []string{"measurement_id", "person_id", "measurement_concept_id", "measurement_date", "value_as_number", "unit_concept_id"}},
		{Name: "observation", Columns: []string{"observation_id", "person_id", "observation_concept_id", "observation_date", "value_as_string"}},
		{Name: "drug_exposure", Columns: []string{"drug_exposure_id", "person_id", "drug_concept_id", "drug_exposure_start_date", "drug_exposure_end_date"}},
	},
}

var registry = map[string]*models.SchemaDefinition{
	I2B2: i2b2,
	OMOP: omop,
}

// IDs returns the supported schema identifiers in stable order.
func IDs() []string {
	return []string{I2B2, OMOP}
}

// Get returns the schema definition for id. The returned definition is shared
// and must be treated as read-only.
func Get(id string) (*models.SchemaDefinition, error) {
	def, ok := registry[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", apperrors.ErrUnknownSchema, id)
	}
	return def, nil
}

// Describe renders a schema as one line per table: "- table: col1, col2, ...".
// The output is deterministic and byte-stable across calls; it is embedded
// verbatim in LLM prompts, so tests guard it against accidental drift.
func Describe(def *models.SchemaDefinition) string {
	var b strings.Builder
	for _, t := range def.Tables {
		b.WriteString("- ")
		b.WriteString(t.Name)
		b.WriteString(": ")
		b.WriteString(strings.Join(t.Columns, ", "))
		b.WriteString("\n")
	}
	return b.String()
}

// DescribeID is Describe for callers that only hold an identifier.
func DescribeID(id string) (string, error) {
	def, err := Get(id)
	if err != nil {
		return "", err
	}
	return Describe(def), nil
}
