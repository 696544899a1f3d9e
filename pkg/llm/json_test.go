package llm

import (
	"errors"
	"testing"

	"github.com/cohortiq/cohort-engine/pkg/apperrors"
)

func TestExtractJSONBlock_FencedObject(t *testing.T) {
	input := "```json\n{\"sql\": \"SELECT 1\"}\n```"
	result, err := ExtractJSONBlock(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result != `{"sql": "SELECT 1"}` {
		t.Errorf("expected object body, got %q", result)
	}
}

func TestExtractJSONBlock_ProseAroundBlock(t *testing.T) {
	input := "Here is the query you asked for:\n\n```json\n{\"sql\": \"SELECT 1\"}\n```\n\nLet me know if you need anything else."
	result, err := ExtractJSONBlock(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result != `{"sql": "SELECT 1"}` {
		t.Errorf("expected object body, got %q", result)
	}
}

func TestExtractJSONBlock_NestedObjects(t *testing.T) {
	input := "```json\n{\"input_tables\": {\"patient_dimension\": [{\"patient_num\": 1}]}}\n```"
	expected := `{"input_tables": {"patient_dimension": [{"patient_num": 1}]}}`
	result, err := ExtractJSONBlock(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result != expected {
		t.Errorf("expected %q, got %q", expected, result)
	}
}

func TestExtractJSONBlock_FirstOfTwoBlocks(t *testing.T) {
	input := "```json\n{\"sql\": \"SELECT 1\"}\n```\nAnd an alternative:\n```json\n{\"sql\": \"SELECT 2\"}\n```"
	result, err := ExtractJSONBlock(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result != `{"sql": "SELECT 1"}` {
		t.Errorf("expected first block, got %q", result)
	}
}

func TestExtractJSONBlock_BareJSONRejected(t *testing.T) {
	// Valid JSON without the fence does not count as a block.
	input := `{"sql": "SELECT 1"}`
	_, err := ExtractJSONBlock(input)
	if !errors.Is(err, apperrors.ErrNoJSONBlock) {
		t.Errorf("expected ErrNoJSONBlock, got %v", err)
	}
}

func TestExtractJSONBlock_UnclosedObject(t *testing.T) {
	input := "```json\n{\"sql\": \"SELECT 1\"\n```"
	_, err := ExtractJSONBlock(input)
	if !errors.Is(err, apperrors.ErrNoJSONBlock) {
		t.Errorf("expected ErrNoJSONBlock, got %v", err)
	}
}

func TestExtractJSONBlock_NoJSON(t *testing.T) {
	input := `I cannot produce a query for that request.`
	_, err := ExtractJSONBlock(input)
	if !errors.Is(err, apperrors.ErrNoJSONBlock) {
		t.Errorf("expected ErrNoJSONBlock, got %v", err)
	}
}

func TestExtractJSONBlock_EmptyInput(t *testing.T) {
	_, err := ExtractJSONBlock("")
	if !errors.Is(err, apperrors.ErrNoJSONBlock) {
		t.Errorf("expected ErrNoJSONBlock, got %v", err)
	}
}

func TestParseQueryResponse_MinimalEnvelope(t *testing.T) {
	input := "```json\n{\"sql\": \"SELECT 1\"}\n```"
	result, err := ParseQueryResponse(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.SQL != "SELECT 1" {
		t.Errorf("expected sql 'SELECT 1', got %q", result.SQL)
	}
	if len(result.InputTables) != 0 {
		t.Errorf("expected no input tables, got %d", len(result.InputTables))
	}
	if result.Explanation != "" {
		t.Errorf("expected empty explanation, got %q", result.Explanation)
	}
}

func TestParseQueryResponse_FullEnvelope(t *testing.T) {
	input := "```json\n" + `{
  "sql": "SELECT COUNT(DISTINCT patient_num) FROM patient_dimension;",
  "input_tables": {
    "patient_dimension": [{"patient_num": 1, "sex_cd": "F"}]
  },
  "output_table": [{"count": 1}],
  "explanation": "Counts distinct patients.",
  "r_query": "dbGetQuery(con, \"SELECT COUNT(DISTINCT patient_num) FROM patient_dimension;\")"
}` + "\n```"

	result, err := ParseQueryResponse(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	rows, ok := result.InputTables["patient_dimension"]
	if !ok || len(rows) != 1 {
		t.Fatalf("expected one patient_dimension row, got %v", result.InputTables)
	}
	if rows[0]["sex_cd"] != "F" {
		t.Errorf("expected sex_cd 'F', got %v", rows[0]["sex_cd"])
	}
	if len(result.OutputTable) != 1 {
		t.Errorf("expected one output row, got %d", len(result.OutputTable))
	}
	if result.Explanation != "Counts distinct patients." {
		t.Errorf("unexpected explanation %q", result.Explanation)
	}
	if result.RQuery == "" {
		t.Error("expected r_query to be set")
	}
}

func TestParseQueryResponse_ExplanationAsSteps(t *testing.T) {
	// Some models return the explanation as an array of steps.
	input := "```json\n{\"sql\": \"SELECT 1\", \"explanation\": [\"step one\", \"step two\"]}\n```"
	result, err := ParseQueryResponse(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Explanation != "step one\nstep two" {
		t.Errorf("expected joined steps, got %q", result.Explanation)
	}
}

func TestParseQueryResponse_MalformedJSON(t *testing.T) {
	input := "```json\n{\"sql\": \"SELECT 1\",}\n```"
	_, err := ParseQueryResponse(input)
	if !errors.Is(err, apperrors.ErrMalformedJSON) {
		t.Errorf("expected ErrMalformedJSON, got %v", err)
	}
}

func TestParseQueryResponse_MissingSQL(t *testing.T) {
	input := "```json\n{\"explanation\": \"no query here\"}\n```"
	_, err := ParseQueryResponse(input)
	if !errors.Is(err, apperrors.ErrMissingSQLField) {
		t.Errorf("expected ErrMissingSQLField, got %v", err)
	}
}

func TestParseQueryResponse_BlankSQL(t *testing.T) {
	input := "```json\n{\"sql\": \"   \"}\n```"
	_, err := ParseQueryResponse(input)
	if !errors.Is(err, apperrors.ErrMissingSQLField) {
		t.Errorf("expected ErrMissingSQLField, got %v", err)
	}
}

func TestParseQueryResponse_NoBlock(t *testing.T) {
	_, err := ParseQueryResponse("The schema does not support that question.")
	if !errors.Is(err, apperrors.ErrNoJSONBlock) {
		t.Errorf("expected ErrNoJSONBlock, got %v", err)
	}
}
