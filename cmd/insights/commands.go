package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/cobra"
	"github.com/volatiletech/null/v8"

	"student-insights/internal/model"
	"student-insights/internal/pipeline"
	"student-insights/internal/store"
	"student-insights/pkg/utils"
)

const formatTable = "table"

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the available analyses",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rows := make([][]string, 0, len(pipeline.Analyses()))
			for _, a := range pipeline.Analyses() {
				rows = append(rows, []string{a.Name, a.Title, strings.Join(a.Params, ", ")})
			}
			printTable(cmd.OutOrStdout(), []string{"Name", "Title", "Params"}, rows)
			return nil
		},
	}
}

// runOptions mirrors the dashboard sidebar.
type runOptions struct {
	Departments   []string
	Genders       []string
	IncomeLevels  []string
	Grades        []string
	StudyMin      float64 `validate:"gte=0"`
	StudyMax      float64 `validate:"gte=0"`
	AttendanceMin float64 `validate:"gte=0,lte=100"`
	SleepMin      float64 `validate:"gte=0,lte=24"`
	SleepMax      float64 `validate:"gte=0,lte=24"`

	Field     string
	Group     string
	Value     string
	Fill      string
	Fields    []string
	Method    string `validate:"omitempty,oneof=pearson spearman"`
	Normalize bool
	Rows      string
	Cols      string
	X         string
	Y         string
	Selected  []string

	Format string `validate:"oneof=table csv json xlsx"`
	Out    string
}

func (o *runOptions) bind(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringSliceVar(&o.Departments, "department", nil, "keep these departments")
	f.StringSliceVar(&o.Genders, "gender", nil, "keep these genders")
	f.StringSliceVar(&o.IncomeLevels, "income", nil, "keep these family income levels")
	f.StringSliceVar(&o.Grades, "grade", nil, "keep these grades")
	f.Float64Var(&o.StudyMin, "study-min", 0, "minimum weekly study hours")
	f.Float64Var(&o.StudyMax, "study-max", 0, "maximum weekly study hours")
	f.Float64Var(&o.AttendanceMin, "attendance-min", 0, "minimum attendance percentage")
	f.Float64Var(&o.SleepMin, "sleep-min", 0, "minimum nightly sleep hours")
	f.Float64Var(&o.SleepMax, "sleep-max", 0, "maximum nightly sleep hours")

	f.StringVar(&o.Field, "field", "", "categorical field (frequency)")
	f.StringVar(&o.Group, "group", "", "group field (grouped-mean)")
	f.StringVar(&o.Value, "value", "", "numeric field (grouped-mean)")
	f.StringVar(&o.Fill, "fill", "", "label for rows with no group (grouped-mean)")
	f.StringSliceVar(&o.Fields, "fields", nil, "numeric fields (correlation)")
	f.StringVar(&o.Method, "method", "", "pearson or spearman (correlation)")
	f.BoolVar(&o.Normalize, "normalize", false, "percentages instead of counts")
	f.StringVar(&o.Rows, "rows", "", "row field (independence)")
	f.StringVar(&o.Cols, "cols", "", "column field (independence)")
	f.StringVar(&o.X, "x", "", "explanatory numeric field (trend)")
	f.StringVar(&o.Y, "y", "", "response numeric field (trend)")
	f.StringSliceVar(&o.Selected, "grades", nil, "grades to plot (study-hours)")

	f.StringVarP(&o.Format, "format", "f", formatTable, "table, csv, json or xlsx")
	f.StringVarP(&o.Out, "out", "o", "", "write the export under this directory instead of stdout")
}

func (o *runOptions) validate() error {
	o.Format = strings.ToLower(o.Format)
	o.Method = strings.ToLower(o.Method)
	if err := validator.New().Struct(o); err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}
	return nil
}

// params builds analysis parameters. Numeric bounds only apply when their
// flag was given.
func (o *runOptions) params(cmd *cobra.Command) model.Params {
	bound := func(name string, v float64) null.Float64 {
		if !cmd.Flags().Changed(name) {
			return null.Float64{}
		}
		return null.Float64From(v)
	}

	p := model.Params{
		Filter: model.Filter{
			Departments:   o.Departments,
			Genders:       o.Genders,
			IncomeLevels:  o.IncomeLevels,
			Grades:        o.Grades,
			StudyHours:    model.Range{Min: bound("study-min", o.StudyMin), Max: bound("study-max", o.StudyMax)},
			MinAttendance: bound("attendance-min", o.AttendanceMin),
			SleepHours:    model.Range{Min: bound("sleep-min", o.SleepMin), Max: bound("sleep-max", o.SleepMax)},
		},
		Field:      model.ResolveField(o.Field),
		GroupField: model.ResolveField(o.Group),
		ValueField: model.ResolveField(o.Value),
		Fill:       o.Fill,
		Method:     model.CorrelationMethod(o.Method),
		Normalize:  o.Normalize,
		RowField:   model.ResolveField(o.Rows),
		ColField:   model.ResolveField(o.Cols),
		XField:     model.ResolveField(o.X),
		YField:     model.ResolveField(o.Y),
	}
	for _, name := range o.Fields {
		p.Fields = append(p.Fields, model.ResolveField(name))
	}
	if cmd.Flags().Changed("grades") {
		p.Grades = append([]string{}, o.Selected...)
	}
	return p
}

func newRunCmd(a *app) *cobra.Command {
	o := &runOptions{}
	cmd := &cobra.Command{
		Use:   "run <analysis>",
		Short: "Compute one analysis and print or export it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := o.validate(); err != nil {
				return err
			}
			if o.Format == pipeline.FormatXLSX && o.Out == "" {
				return errors.New("--format xlsx needs --out")
			}

			out := cmd.OutOrStdout()
			result, err := a.tracker.Run(cmd.Context(), a.dataset, args[0], o.params(cmd))
			if err != nil {
				if pipeline.IsPrecondition(err) {
					fmt.Fprintln(out, color.YellowString("%s: %v", args[0], err))
					return nil
				}
				return err
			}

			if o.Out != "" {
				format := o.Format
				if format == formatTable {
					format = pipeline.FormatCSV
				}
				exported, err := pipeline.ExportToFile(utils.NewOutputManager(o.Out), result, format)
				if err != nil {
					return err
				}
				fmt.Fprintln(out, color.GreenString("wrote %d rows to %s", exported.RecordCount, exported.Path))
				return nil
			}

			if o.Format != formatTable {
				return pipeline.Export(out, result, o.Format)
			}
			printResult(out, result)
			return nil
		},
	}
	o.bind(cmd)
	return cmd
}

func newReportCmd(a *app) *cobra.Command {
	o := &runOptions{}
	var workers int
	cmd := &cobra.Command{
		Use:   "report [analysis...]",
		Short: "Compute several analyses, the whole catalog by default, and export each one",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := o.validate(); err != nil {
				return err
			}
			format := o.Format
			if format == formatTable {
				format = pipeline.FormatCSV
			}

			entries, err := pipeline.Report(cmd.Context(), a.tracker, a.dataset, args, o.params(cmd), workers)
			if err != nil {
				return err
			}

			om := utils.NewOutputManager(o.Out)
			rows := make([][]string, 0, len(entries))
			for _, e := range entries {
				switch {
				case e.Err == nil:
					exported, err := pipeline.ExportToFile(om, e.Result, format)
					if err != nil {
						return err
					}
					rows = append(rows, []string{e.Analysis, color.GreenString("ok"), exported.Path})
				case pipeline.IsPrecondition(e.Err):
					rows = append(rows, []string{e.Analysis, color.YellowString("declined"), e.Err.Error()})
				default:
					rows = append(rows, []string{e.Analysis, color.RedString("failed"), e.Err.Error()})
				}
			}
			printTable(cmd.OutOrStdout(), []string{"Analysis", "Status", "Output"}, rows)
			return nil
		},
	}
	o.bind(cmd)
	cmd.Flags().IntVarP(&workers, "workers", "w", 4, "analyses computed in parallel")
	_ = cmd.MarkFlagRequired("out")
	return cmd
}

func newRunsCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Show recent analysis runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if !store.Enabled() {
				fmt.Fprintln(out, color.YellowString("run history is disabled"))
				return nil
			}
			runs, err := store.ListRuns(limit)
			if err != nil {
				return err
			}
			rows := make([][]string, 0, len(runs))
			for _, r := range runs {
				rows = append(rows, []string{
					r.ID,
					r.Analysis,
					string(r.Status),
					strconv.Itoa(r.RowCount),
					r.Duration.String(),
					r.CreatedAt.Local().Format("2006-01-02 15:04:05"),
					r.Message,
				})
			}
			printTable(out, []string{"ID", "Analysis", "Status", "Rows", "Duration", "Created", "Message"}, rows)
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of runs to show, 0 for all")
	return cmd
}
