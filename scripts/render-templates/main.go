// render-templates prints the full preset template catalog: each rule's
// trigger phrase, generated SQL, and example input/output tables.
//
// The rendered bundles are exactly what the dispatcher hands to the API,
// so this is the quickest way to eyeball every template after editing the
// rule table. The fallback bundle is included at the end.
//
// Usage: go run ./scripts/render-templates [rule-id]
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/jinzhu/inflection"
	"github.com/joho/godotenv"
	"github.com/olekukonko/tablewriter"

	"github.com/cohortiq/cohort-engine/pkg/dispatch"
	"github.com/cohortiq/cohort-engine/pkg/models"
)

func main() {
	// .env is optional for this tool.
	_ = godotenv.Load()

	var only string
	if len(os.Args) > 1 {
		only = os.Args[1]
	}

	rendered, rows := 0, 0
	for _, info := range dispatch.Rules() {
		if only != "" && info.ID != only {
			continue
		}
		rows += renderBundle(info.Example, dispatch.Dispatch(dispatch.Normalize(info.Example)))
		rendered++
	}
	if only == "" || only == models.RuleFallback {
		rows += renderBundle("", dispatch.Fallback())
		rendered++
	}

	if rendered == 0 {
		color.Red("unknown rule id %q", only)
		fmt.Println("known ids:")
		for _, info := range dispatch.Rules() {
			fmt.Printf("  %s\n", info.ID)
		}
		os.Exit(1)
	}

	fmt.Println()
	color.Green("rendered %d %s, %d example %s",
		rendered, pluralize(rendered, "template"), rows, pluralize(rows, "row"))
}

// renderBundle prints one bundle and returns how many example rows it drew.
func renderBundle(trigger string, bundle models.ResultBundle) int {
	fmt.Println()
	color.Cyan("=== %s (%s)", bundle.Title, bundle.RuleID)
	if trigger != "" {
		fmt.Printf("trigger: %q\n", trigger)
	}
	fmt.Println()
	fmt.Println(strings.TrimRight(bundle.SQL, "\n"))

	rows := 0
	for _, in := range bundle.InputTables {
		fmt.Println()
		color.Yellow("input: %s", in.Name)
		rows += renderTable(in)
	}
	fmt.Println()
	color.Yellow("output: %s", bundle.OutputTable.Name)
	rows += renderTable(bundle.OutputTable)
	return rows
}

func renderTable(t models.ExampleTable) int {
	if t.Empty() {
		fmt.Println("(no example rows)")
		return 0
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader(t.Columns)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")
	table.SetNoWhiteSpace(true)

	for _, row := range t.Rows {
		cells := make([]string, 0, len(t.Columns))
		for _, col := range t.Columns {
			val, ok := row[col]
			if !ok || val == nil {
				cells = append(cells, "NULL")
				continue
			}
			cells = append(cells, fmt.Sprintf("%v", val))
		}
		table.Append(cells)
	}
	table.Render()
	return len(t.Rows)
}

func pluralize(n int, word string) string {
	if n == 1 {
		return word
	}
	return inflection.Plural(word)
}
