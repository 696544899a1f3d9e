package dispatch

import "strings"

// Rule ids. Stable: they key the example fabricator and appear in API payloads.
const (
	RulePatientCount        = "patient_count"
	RuleFirstPatients       = "first_patients"
	RuleFirstObservations   = "first_observations"
	RuleAgeAtDiagnosisRange = "age_at_diagnosis_range"
	RuleDerivedTable        = "derived_table"
	RulePatientSubset       = "patient_subset"
	RuleMedications         = "medications"
	RuleDiagnoses           = "diagnoses"
	RuleLabs                = "labs"
	RuleConceptCounts       = "concept_patient_counts"
	RuleTempTableSave       = "temp_table_save"
	RuleTempTableDrop       = "temp_table_drop"
	RuleTopConcepts         = "top_concepts"
	RulePivot               = "pivot"
	RuleRandomPatients      = "random_patients"
	RulePrimaryKey          = "primary_key"
	RuleVisitCount          = "visit_count"
)

type predicate func(normalized string) bool

func contains(substr string) predicate {
	return func(s string) bool { return strings.Contains(s, substr) }
}

func allOf(preds ...predicate) predicate {
	return func(s string) bool {
		for _, p := range preds {
			if !p(s) {
				return false
			}
		}
		return true
	}
}

func anyOf(preds ...predicate) predicate {
	return func(s string) bool {
		for _, p := range preds {
			if p(s) {
				return true
			}
		}
		return false
	}
}

// rule couples a trigger predicate with its static SQL template. Templates may
// carry placeholder tokens (X, Y, YOUR_CONDITION, YOUR_RACE) that the user
// edits by hand; nothing here interpolates user input into SQL.
type rule struct {
	id      string
	title   string
	example string
	match   predicate
	sql     string
}

// rules is evaluated top to bottom; the first match wins. The relative order
// is part of the contract (a request mentioning both "medications" and
// "diagnosis" must resolve to medications). Do not reorder.
var rules = []rule{
	{
		id:      RulePatientCount,
		title:   "Patient count",
		example: "Determine the number of patients in the project",
		match:   contains("number of patients"),
		sql: `SELECT COUNT(DISTINCT patient_num) AS patient_count
FROM patient_dimension;`,
	},
	{
		id:      RuleFirstPatients,
		title:   "First 100 patients",
		example: "View the data on the first 100 patients",
		match:   contains("first 100 patients"),
		sql: `SELECT *
FROM patient_dimension
LIMIT 100;`,
	},
	{
		id:      RuleFirstObservations,
		title:   "First 100 observations",
		example: "View the first 100 observations about the patients",
		match:   contains("first 100 observations"),
		sql: `SELECT *
FROM observation_fact
LIMIT 100;`,
	},
	{
		id:      RuleAgeAtDiagnosisRange,
		title:   "Age at diagnosis range",
		example: "Select patients with age at diagnosis between X and Y",
		match:   allOf(contains("age at diagnosis"), contains("between")),
		sql: `SELECT p.patient_num, TIMESTAMPDIFF(YEAR, p.birth_date, o.start_date) AS age_at_diagnosis
FROM patient_dimension p
JOIN observation_fact o ON p.patient_num = o.patient_num
WHERE TIMESTAMPDIFF(YEAR, p.birth_date, o.start_date) BETWEEN X AND Y;`,
	},
	{
		id:      RuleDerivedTable,
		title:   "Patient diagnosis age table",
		example: "Given the birthdate and diagnosis date, create a new table with patient, diagnosis and age at diagnosis",
		match:   contains("create a new table with patient"),
		sql: `CREATE TABLE patient_diagnosis_age AS
SELECT p.patient_num, o.concept_cd, TIMESTAMPDIFF(YEAR, p.birth_date, o.start_date) AS age_at_diagnosis
FROM patient_dimension p
JOIN observation_fact o ON p.patient_num = o.patient_num;`,
	},
	{
		id:      RulePatientSubset,
		title:   "Patient dimension subset",
		example: "Create a subset of the patient_dimension table for patients with specific demographic characteristics and conditions",
		match:   anyOf(contains("subset of the patient_dimension"), contains("subset of patient_dimension")),
		sql: `SELECT p.*
FROM patient_dimension p
JOIN observation_fact o ON p.patient_num = o.patient_num
WHERE p.sex_cd = 'M' AND p.race_cd = 'WHITE' AND o.concept_cd = 'YOUR_CONDITION';`,
	},
	{
		id:      RuleMedications,
		title:   "Medications",
		example: "Select medications (concept_cd like RXNORM) for a subset of patients",
		match:   contains("medications"),
		sql: `SELECT *
FROM observation_fact
WHERE concept_cd LIKE 'RXNORM%';`,
	},
	{
		id:      RuleDiagnoses,
		title:   "Diagnoses",
		example: "Select diagnosis (concept_cd like ICD) for a subset of patients",
		match:   contains("diagnosis"),
		sql: `SELECT *
FROM observation_fact
WHERE concept_cd LIKE 'ICD%';`,
	},
	{
		id:      RuleLabs,
		title:   "Labs",
		example: "Select labs (concept_cd like LOINC) for a subset of patients",
		match:   contains("labs"),
		sql: `SELECT *
FROM observation_fact
WHERE concept_cd LIKE 'LOINC%';`,
	},
	{
		// Unreachable in practice: the patient_count rule already claims any
		// request containing "number of patients". Kept in position because
		// the order itself is the documented contract.
		id:      RuleConceptCounts,
		title:   "Concept patient counts",
		example: "Get a list of concepts and the number of patients with that code",
		match:   allOf(contains("list of concepts"), contains("number of patients")),
		sql: `SELECT concept_cd, COUNT(DISTINCT patient_num) AS patient_count
FROM observation_fact
GROUP BY concept_cd;`,
	},
	{
		id:      RuleTempTableSave,
		title:   "Save to temp table",
		example: "Save the results to a temp table",
		match:   anyOf(contains("save the results to a temp table"), contains("save results to a temp table")),
		sql: `SELECT *
INTO #temp_table
FROM patient_dimension
WHERE race_cd = 'YOUR_RACE';`,
	},
	{
		id:      RuleTempTableDrop,
		title:   "Drop temp table",
		example: "Drop the temp table since we no longer need it",
		match:   contains("drop the temp table"),
		sql:     `DROP TABLE #temp_table;`,
	},
	{
		id:      RuleTopConcepts,
		title:   "Top 100 concepts",
		example: "View the top 100 concepts by number of patients",
		match:   contains("top 100 concepts"),
		sql: `SELECT concept_cd, COUNT(DISTINCT patient_num) AS patient_count
FROM observation_fact
GROUP BY concept_cd
ORDER BY patient_count DESC
LIMIT 100;`,
	},
	{
		id:      RulePivot,
		title:   "Pivot by patient",
		example: "Create a pivot with one row per patient and features in columns",
		match:   contains("pivot"),
		sql: `-- Example: pivot diagnosis codes as columns
SELECT p.patient_num,
       MAX(CASE WHEN o.concept_cd = 'ICD1' THEN 1 ELSE 0 END) AS ICD1,
       MAX(CASE WHEN o.concept_cd = 'ICD2' THEN 1 ELSE 0 END) AS ICD2
FROM patient_dimension p
LEFT JOIN observation_fact o ON p.patient_num = o.patient_num
GROUP BY p.patient_num;`,
	},
	{
		id:      RuleRandomPatients,
		title:   "Random 1000 patients",
		example: "Select a random 1000 patients",
		match:   contains("random 1000 patients"),
		sql: `SELECT *
FROM patient_dimension
ORDER BY RAND()
LIMIT 1000;`,
	},
	{
		id:      RulePrimaryKey,
		title:   "Primary key",
		example: "Create a primary key to speed up queries",
		match:   contains("create a primary key"),
		sql: `ALTER TABLE patient_dimension
ADD PRIMARY KEY (patient_num);`,
	},
	{
		id:      RuleVisitCount,
		title:   "Total visits",
		example: "Determine the total number of visits for the sample",
		match:   contains("total number of visits"),
		sql: `SELECT COUNT(*) AS total_visits
FROM visit_dimension;`,
	},
}

// fallbackSQL is returned when no rule matches. The apostrophe is U+2019,
// matching the message users have seen since the first release.
const fallbackSQL = "-- Sorry, I don’t recognize this request yet. Please rephrase or contact admin to add this pattern."
