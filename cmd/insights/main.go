package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"student-insights/internal/config"
	"student-insights/internal/infrastructure"
	"student-insights/internal/pipeline"
	"student-insights/internal/store"
)

func main() {
	err := newRootCmd().Execute()
	store.Close()
	infrastructure.CloseLogFile()
	if err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("Error: %v", err))
		os.Exit(1)
	}
}

// app is the state shared by the subcommands once configuration is loaded.
type app struct {
	cfg     *config.Config
	dataset *pipeline.Dataset
	tracker *pipeline.Tracker
}

func newRootCmd() *cobra.Command {
	var (
		dataPath string
		dbPath   string
		verbose  bool
	)
	a := &app{}

	root := &cobra.Command{
		Use:           "insights",
		Short:         "Descriptive statistics over a student grading dataset",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if dataPath != "" {
				cfg.Data.Path = dataPath
			}
			if cmd.Flags().Changed("db") {
				cfg.Store.DBPath = dbPath
			}
			if !verbose {
				cfg.Logging.Level = "warn"
			}

			if _, err := infrastructure.InitializeLoggerTo(cfg.Logging, cmd.ErrOrStderr()); err != nil {
				return err
			}
			if err := store.InitDB(cfg.Store.DBPath); err != nil {
				return err
			}

			a.cfg = cfg
			a.dataset = pipeline.NewDataset(cfg.Data.Path)
			a.tracker = pipeline.NewTracker(store.Recorder{})
			return nil
		},
	}

	root.PersistentFlags().StringVar(&dataPath, "data", "", "grading CSV file (overrides the configured path)")
	root.PersistentFlags().StringVar(&dbPath, "db", "", "run history database, empty disables history")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log at the configured level instead of warn")

	root.AddCommand(newListCmd(), newRunCmd(a), newReportCmd(a), newRunsCmd())
	return root
}
