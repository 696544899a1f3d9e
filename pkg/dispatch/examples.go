package dispatch

import "github.com/cohortiq/cohort-engine/pkg/models"

// ExamplesFor returns the fixed example tables for a rule. The rows are hand
// authored to illustrate the SQL's shape; they are a function of the rule id
// alone, never of the user's request (the age-range rule shows the same ages
// whatever bounds the user typed), and the output rows are not computed by
// evaluating the template against the inputs.
func ExamplesFor(ruleID string) ([]models.ExampleTable, models.ExampleTable) {
	switch ruleID {
	case RulePatientCount:
		return []models.ExampleTable{patientSample()},
			result([]string{"patient_count"}, []models.Row{{"patient_count": 128}})

	case RuleFirstPatients:
		return []models.ExampleTable{patientSample()},
			result([]string{"patient_num", "birth_date", "sex_cd", "race_cd"}, []models.Row{
				{"patient_num": 1, "birth_date": "1978-02-11", "sex_cd": "F", "race_cd": "WHITE"},
				{"patient_num": 2, "birth_date": "1985-07-30", "sex_cd": "M", "race_cd": "BLACK"},
			})

	case RuleFirstObservations:
		return []models.ExampleTable{observationSample()},
			result([]string{"encounter_num", "patient_num", "concept_cd", "start_date"}, []models.Row{
				{"encounter_num": 5001, "patient_num": 1, "concept_cd": "ICD10:E11.9", "start_date": "2021-03-14"},
				{"encounter_num": 5002, "patient_num": 2, "concept_cd": "LOINC:4548-4", "start_date": "2021-04-02"},
			})

	case RuleAgeAtDiagnosisRange:
		return []models.ExampleTable{patientSample(), observationSample()},
			result([]string{"patient_num", "age_at_diagnosis"}, []models.Row{
				{"patient_num": 1, "age_at_diagnosis": 43},
				{"patient_num": 2, "age_at_diagnosis": 35},
			})

	case RuleDerivedTable:
		return []models.ExampleTable{patientSample(), observationSample()},
			models.ExampleTable{
				Name:    "patient_diagnosis_age",
				Columns: []string{"patient_num", "concept_cd", "age_at_diagnosis"},
				Rows: []models.Row{
					{"patient_num": 1, "concept_cd": "ICD10:E11.9", "age_at_diagnosis": 43},
					{"patient_num": 2, "concept_cd": "ICD10:I10", "age_at_diagnosis": 35},
				},
			}

	case RulePatientSubset:
		return []models.ExampleTable{patientSample(), observationSample()},
			result([]string{"patient_num", "birth_date", "sex_cd", "race_cd"}, []models.Row{
				{"patient_num": 2, "birth_date": "1985-07-30", "sex_cd": "M", "race_cd": "WHITE"},
			})

	case RuleMedications:
		input := observationTable("observation_fact", []models.Row{
			{"encounter_num": 5003, "patient_num": 1, "concept_cd": "RXNORM:1049221", "start_date": "2021-05-10"},
			{"encounter_num": 5004, "patient_num": 3, "concept_cd": "RXNORM:197361", "start_date": "2021-06-01"},
		})
		return []models.ExampleTable{input},
			result([]string{"encounter_num", "patient_num", "concept_cd", "start_date"}, []models.Row{
				{"encounter_num": 5003, "patient_num": 1, "concept_cd": "RXNORM:1049221", "start_date": "2021-05-10"},
			})

	case RuleDiagnoses:
		input := observationTable("observation_fact", []models.Row{
			{"encounter_num": 5001, "patient_num": 1, "concept_cd": "ICD10:E11.9", "start_date": "2021-03-14"},
			{"encounter_num": 5005, "patient_num": 2, "concept_cd": "ICD10:I10", "start_date": "2021-03-20"},
		})
		return []models.ExampleTable{input},
			result([]string{"encounter_num", "patient_num", "concept_cd", "start_date"}, []models.Row{
				{"encounter_num": 5001, "patient_num": 1, "concept_cd": "ICD10:E11.9", "start_date": "2021-03-14"},
			})

	case RuleLabs:
		input := observationTable("observation_fact", []models.Row{
			{"encounter_num": 5002, "patient_num": 2, "concept_cd": "LOINC:4548-4", "start_date": "2021-04-02"},
			{"encounter_num": 5006, "patient_num": 3, "concept_cd": "LOINC:2160-0", "start_date": "2021-04-18"},
		})
		return []models.ExampleTable{input},
			result([]string{"encounter_num", "patient_num", "concept_cd", "start_date"}, []models.Row{
				{"encounter_num": 5002, "patient_num": 2, "concept_cd": "LOINC:4548-4", "start_date": "2021-04-02"},
			})

	case RuleConceptCounts:
		return []models.ExampleTable{observationSample()},
			result([]string{"concept_cd", "patient_count"}, []models.Row{
				{"concept_cd": "ICD10:E11.9", "patient_count": 54},
				{"concept_cd": "LOINC:4548-4", "patient_count": 31},
			})

	case RuleTempTableSave:
		return []models.ExampleTable{patientSample()},
			models.ExampleTable{
				Name:    "#temp_table",
				Columns: []string{"patient_num", "birth_date", "sex_cd", "race_cd"},
				Rows: []models.Row{
					{"patient_num": 1, "birth_date": "1978-02-11", "sex_cd": "F", "race_cd": "WHITE"},
				},
			}

	case RuleTopConcepts:
		return []models.ExampleTable{observationSample()},
			result([]string{"concept_cd", "patient_count"}, []models.Row{
				{"concept_cd": "ICD10:E11.9", "patient_count": 54},
				{"concept_cd": "ICD10:I10", "patient_count": 47},
				{"concept_cd": "LOINC:4548-4", "patient_count": 31},
			})

	case RulePivot:
		return []models.ExampleTable{observationSample()},
			result([]string{"patient_num", "ICD1", "ICD2"}, []models.Row{
				{"patient_num": 1, "ICD1": 1, "ICD2": 0},
				{"patient_num": 2, "ICD1": 0, "ICD2": 1},
			})

	case RuleRandomPatients:
		return []models.ExampleTable{patientSample()},
			result([]string{"patient_num", "birth_date", "sex_cd", "race_cd"}, []models.Row{
				{"patient_num": 3, "birth_date": "1992-11-05", "sex_cd": "F", "race_cd": "ASIAN"},
				{"patient_num": 1, "birth_date": "1978-02-11", "sex_cd": "F", "race_cd": "WHITE"},
			})

	case RuleVisitCount:
		return []models.ExampleTable{visitSample()},
			result([]string{"total_visits"}, []models.Row{{"total_visits": 512}})

	case RuleTempTableDrop, RulePrimaryKey:
		// DDL only; nothing useful to illustrate.
		return nil, models.ExampleTable{Name: "result"}
	}

	return nil, models.ExampleTable{Name: "result"}
}

func result(columns []string, rows []models.Row) models.ExampleTable {
	return models.ExampleTable{Name: "result", Columns: columns, Rows: rows}
}

func patientSample() models.ExampleTable {
	return models.ExampleTable{
		Name:    "patient_dimension",
		Columns: []string{"patient_num", "birth_date", "sex_cd", "race_cd"},
		Rows: []models.Row{
			{"patient_num": 1, "birth_date": "1978-02-11", "sex_cd": "F", "race_cd": "WHITE"},
			{"patient_num": 2, "birth_date": "1985-07-30", "sex_cd": "M", "race_cd": "BLACK"},
			{"patient_num": 3, "birth_date": "1992-11-05", "sex_cd": "F", "race_cd": "ASIAN"},
		},
	}
}

func observationSample() models.ExampleTable {
	return observationTable("observation_fact", []models.Row{
		{"encounter_num": 5001, "patient_num": 1, "concept_cd": "ICD10:E11.9", "start_date": "2021-03-14"},
		{"encounter_num": 5002, "patient_num": 2, "concept_cd": "LOINC:4548-4", "start_date": "2021-04-02"},
		{"encounter_num": 5003, "patient_num": 1, "concept_cd": "RXNORM:1049221", "start_date": "2021-05-10"},
	})
}

func observationTable(name string, rows []models.Row) models.ExampleTable {
	return models.ExampleTable{
		Name:    name,
		Columns: []string{"encounter_num", "patient_num", "concept_cd", "start_date"},
		Rows:    rows,
	}
}

func visitSample() models.ExampleTable {
	return models.ExampleTable{
		Name:    "visit_dimension",
		Columns: []string{"encounter_id", "patient_num", "start_date", "end_date"},
		Rows: []models.Row{
			{"encounter_id": 9001, "patient_num": 1, "start_date": "2021-03-14", "end_date": "2021-03-16"},
			{"encounter_id": 9002, "patient_num": 2, "start_date": "2021-04-02", "end_date": "2021-04-02"},
		},
	}
}
