package main

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"student-insights/internal/model"
)

func printTable(w io.Writer, header []string, rows [][]string) {
	table := tablewriter.NewWriter(w)
	table.SetAutoFormatHeaders(false)
	table.SetHeader(header)
	table.SetAutoWrapText(false)
	table.AppendBulk(rows)
	table.Render()
}

func printResult(w io.Writer, result model.Result) {
	fmt.Fprintln(w, color.New(color.Bold).Sprint(result.Title))
	header, rows := result.Data.Tabulate()
	printTable(w, header, rows)
	fmt.Fprintf(w, "%d students, run %s\n", result.Rows, result.RunID)
}
