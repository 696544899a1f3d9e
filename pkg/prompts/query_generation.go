package prompts

import (
	"fmt"
	"strings"

	"github.com/cohortiq/cohort-engine/pkg/models"
)

// BuildOpenQuestionPrompt creates the prompt for the free-text SQL generator.
// It embeds the stable schema description and the user's question, and asks
// for the five-part teaching response inside a single fenced JSON block.
func BuildOpenQuestionPrompt(schemaID, schemaDescription, question string) string {
	var prompt strings.Builder

	writePersona(&prompt, schemaID)

	prompt.WriteString("Your task is to:\n")
	prompt.WriteString("1. Write the correct and optimized SQL query.\n")
	prompt.WriteString("2. Provide realistic example rows for each input table.\n")
	prompt.WriteString("3. Simulate the expected result table.\n")
	prompt.WriteString("4. Explain the SQL logic clearly and step-by-step.\n")
	prompt.WriteString("5. Generate the corresponding R DBI command:\n")
	prompt.WriteString("   - Use `dbGetQuery()` for SELECT queries.\n")
	prompt.WriteString("   - Use `dbSendUpdate()` (or dbExecute()) for queries that modify the DB (e.g. CREATE TABLE, INSERT).\n\n")

	writeSchema(&prompt, schemaDescription)

	prompt.WriteString("User request:\n")
	prompt.WriteString(fmt.Sprintf("%q\n\n", question))

	prompt.WriteString("Return only valid JSON inside a markdown ```json block in this format:\n")
	writeEnvelope(&prompt, "// or dbSendUpdate depending on SQL")

	return prompt.String()
}

// BuildCohortPrompt creates the prompt for the cohort builder. The cohort
// description comes from ComposeCohortDescription and is embedded unquoted.
func BuildCohortPrompt(schemaID, schemaDescription, cohortDescription string) string {
	var prompt strings.Builder

	writePersona(&prompt, schemaID)

	prompt.WriteString("Your task is to:\n")
	prompt.WriteString("1. Generate the correct and optimized SQL query.\n")
	prompt.WriteString("2. Provide realistic example rows for the input tables involved.\n")
	prompt.WriteString("3. Show the expected output table rows.\n")
	prompt.WriteString("4. Explain the SQL logic in simple, step-by-step terms.\n")
	prompt.WriteString("5. Convert the SQL into the appropriate R DBI function:\n")
	prompt.WriteString("   - Use `dbGetQuery()` for SELECT/read operations (e.g., counts, views).\n")
	prompt.WriteString("   - Use `dbSendUpdate()` (or dbExecute()) for CREATE, INSERT, DELETE, or UPDATE statements.\n\n")

	writeSchema(&prompt, schemaDescription)

	prompt.WriteString("User request:\n")
	prompt.WriteString(cohortDescription)
	prompt.WriteString("\n")

	prompt.WriteString("Return only valid JSON inside a markdown ```json block using the following format:\n")
	writeEnvelope(&prompt, "// or dbSendUpdate depending on query type")

	return prompt.String()
}

// ComposeCohortDescription renders table/column/filter selections as the
// natural-language request embedded in the cohort prompt. Filter text is
// quoted into the description only; it never reaches generated SQL directly.
func ComposeCohortDescription(selections []models.CohortSelection) string {
	var desc strings.Builder

	desc.WriteString("I want to build a dataset with:\n")
	for _, sel := range selections {
		desc.WriteString(fmt.Sprintf("- Table `%s`: columns [%s]", sel.Table, strings.Join(sel.Columns, ", ")))
		if sel.Filter != "" {
			desc.WriteString(fmt.Sprintf(", filtered by `%s`", sel.Filter))
		}
		desc.WriteString("\n")
	}

	return desc.String()
}

func writePersona(prompt *strings.Builder, schemaID string) {
	prompt.WriteString(fmt.Sprintf("You are a senior data engineer and educator with deep expertise in SQL, the %s data model, and clinical informatics.\n\n", schemaID))
}

func writeSchema(prompt *strings.Builder, schemaDescription string) {
	prompt.WriteString("The schema is:\n")
	prompt.WriteString(schemaDescription)
	prompt.WriteString("\n")
}

func writeEnvelope(prompt *strings.Builder, rQueryComment string) {
	prompt.WriteString("```json\n")
	prompt.WriteString("{\n")
	prompt.WriteString("  \"sql\": \"...\",\n")
	prompt.WriteString("  \"input_tables\": { \"table_name\": [{row_dict}, ...] },\n")
	prompt.WriteString("  \"output_table\": [{row_dict}, ...],\n")
	prompt.WriteString("  \"explanation\": \"explain the SQL logic here\",\n")
	prompt.WriteString(fmt.Sprintf("  \"r_query\": \"dbGetQuery(con, '...')\"  %s\n", rQueryComment))
	prompt.WriteString("}\n")
	prompt.WriteString("```\n")
}
