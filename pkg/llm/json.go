package llm

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/cohortiq/cohort-engine/pkg/apperrors"
	"github.com/cohortiq/cohort-engine/pkg/jsonutil"
	"github.com/cohortiq/cohort-engine/pkg/models"
)

// jsonBlockPattern matches the first fenced ```json block in a model
// response. Dot matches newlines; the lazy body stops at the first closing
// brace that is immediately followed by the closing fence.
var jsonBlockPattern = regexp.MustCompile("(?s)```json\\s*(\\{.*?\\})\\s*```")

// ExtractJSONBlock returns the contents of the first fenced ```json block
// in a model response. Prose around the block is ignored; responses without
// a fenced block fail with apperrors.ErrNoJSONBlock even if they contain
// bare JSON.
func ExtractJSONBlock(response string) (string, error) {
	matches := jsonBlockPattern.FindStringSubmatch(response)
	if matches == nil {
		return "", apperrors.ErrNoJSONBlock
	}
	return matches[1], nil
}

// rawQueryResponse mirrors the JSON envelope the prompt instructs the model
// to emit. explanation and r_query are kept raw because models sometimes
// return them as arrays of steps rather than strings.
type rawQueryResponse struct {
	SQL         string                  `json:"sql"`
	InputTables map[string][]models.Row `json:"input_tables"`
	OutputTable []models.Row            `json:"output_table"`
	Explanation json.RawMessage         `json:"explanation"`
	RQuery      json.RawMessage         `json:"r_query"`
}

// ParseQueryResponse extracts the fenced JSON block from a raw model
// response and decodes it into a QueryResponse. The whole response is
// rejected when no block is present (apperrors.ErrNoJSONBlock), the block
// is not valid JSON (apperrors.ErrMalformedJSON), or the sql field is
// missing or blank (apperrors.ErrMissingSQLField). All other fields are
// optional.
func ParseQueryResponse(response string) (*models.QueryResponse, error) {
	block, err := ExtractJSONBlock(response)
	if err != nil {
		return nil, err
	}

	var parsed rawQueryResponse
	if err := json.Unmarshal([]byte(block), &parsed); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrMalformedJSON, err)
	}

	if strings.TrimSpace(parsed.SQL) == "" {
		return nil, apperrors.ErrMissingSQLField
	}

	return &models.QueryResponse{
		SQL:         parsed.SQL,
		InputTables: parsed.InputTables,
		OutputTable: parsed.OutputTable,
		Explanation: jsonutil.FlexibleStringValue(parsed.Explanation),
		RQuery:      jsonutil.FlexibleStringValue(parsed.RQuery),
	}, nil
}
