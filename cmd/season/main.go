package main

import (
	"errors"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/derekprior/season/internal/config"
	"github.com/derekprior/season/internal/excel"
	"github.com/derekprior/season/internal/logger"
	"github.com/derekprior/season/internal/pipeline"
	"github.com/derekprior/season/internal/readiness"
	"github.com/derekprior/season/internal/schedule"
)

const defaultConfigFile = "config.yaml"

var errNotReady = errors.New("schedule has errors that need action")

func resolveConfigPath(configFlag string) (string, error) {
	if configFlag != "" {
		return configFlag, nil
	}
	if _, err := os.Stat(defaultConfigFile); err == nil {
		return defaultConfigFile, nil
	}
	return "", fmt.Errorf("no config file found. Either create %s in the current directory or pass --config", defaultConfigFile)
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var debug bool
	var logFile string

	rootCmd := &cobra.Command{
		Use:   "season",
		Short: "Youth league roster, practice and game scheduler",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return logger.Init(logger.Config{Debug: debug, File: logFile})
		},
	}
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Also write logs to this file (rotated)")

	var initOutputPath string
	initCmd := &cobra.Command{
		Use:          "init",
		Short:        "Create a starter config.yaml in the current directory",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(initOutputPath)
		},
	}
	initCmd.Flags().StringVarP(&initOutputPath, "output", "o", defaultConfigFile, "Output path for the config file")

	scheduleCmd := &cobra.Command{
		Use:   "schedule",
		Short: "Generate and evaluate schedules",
	}

	var configFile string
	scheduleCmd.PersistentFlags().StringVar(&configFile, "config", "", "Path to config file (default: config.yaml in current directory)")

	var outputFile string
	var seed int64
	generateCmd := &cobra.Command{
		Use:          "generate",
		Short:        "Build rosters, practice slots and games from a config file",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath, err := resolveConfigPath(configFile)
			if err != nil {
				return err
			}
			var seedOverride *int64
			if cmd.Flags().Changed("seed") {
				seedOverride = &seed
			}
			return runGenerate(configPath, outputFile, seedOverride)
		},
	}
	generateCmd.Flags().StringVarP(&outputFile, "output", "o", "schedule.xlsx", "Output Excel file path")
	generateCmd.Flags().Int64Var(&seed, "seed", 0, "Random seed for roster shuffling (overrides the config)")

	evaluateCmd := &cobra.Command{
		Use:          "evaluate <schedule.xlsx>",
		Short:        "Check an edited schedule workbook for conflicts and imbalance",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath, err := resolveConfigPath(configFile)
			if err != nil {
				return err
			}
			return runEvaluate(configPath, args[0])
		},
	}

	scheduleCmd.AddCommand(generateCmd, evaluateCmd)
	rootCmd.AddCommand(initCmd, scheduleCmd)
	return rootCmd
}

func runInit(outputPath string) error {
	if _, err := os.Stat(outputPath); err == nil {
		return fmt.Errorf("%s already exists; remove it first or use -o to write elsewhere", outputPath)
	}

	if err := os.WriteFile(outputPath, []byte(configTemplate), 0644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	fmt.Printf("✓ Created %s\n", outputPath)
	return nil
}

func runGenerate(configPath, outputPath string, seed *int64) error {
	cfg, err := config.LoadFromFile(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if seed != nil {
		cfg.Seed = *seed
	}
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}
	fmt.Printf("Scheduling %d players in %d divisions (seed %d)...\n", len(cfg.Players), len(cfg.Divisions), cfg.Seed)

	run, err := pipeline.Execute(cfg, rand.New(rand.NewSource(cfg.Seed)))
	if err != nil {
		return err
	}

	overflow := run.Roster.Overflow()
	fmt.Printf("\n✓ %d teams formed\n", len(run.Teams))
	for _, o := range overflow {
		fmt.Printf("  ⚠ %s: %v not placed (%s)\n", o.Division, o.PlayerIDs, o.Reason)
	}
	for _, d := range run.Roster.BuddyDiagnostics {
		fmt.Printf("  ⚠ %s: buddy request %s -> %s %s\n", d.Division, d.PlayerID, d.BuddyID, d.Reason)
	}

	fmt.Printf("✓ %d of %d teams have a practice slot\n", len(run.Practice.Assignments), len(run.Teams))
	for _, u := range run.Practice.Unassigned {
		fmt.Printf("  ⚠ %s: %s\n", u.TeamID, u.Reason)
	}
	for _, s := range run.Practice.Swaps {
		fmt.Printf("  ↺ moved %s from %s to %s to place %s\n", s.MovedTeamID, s.FromSlotID, s.ToSlotID, s.PlacedTeamID)
	}

	fmt.Printf("✓ %d games scheduled into %d available slots\n", len(run.Games.Games), len(run.GameSlots))
	for _, u := range run.Games.Unscheduled {
		fmt.Printf("  ⚠ week %d %s: %s vs %s (%s)\n", u.Week, u.Division, u.HomeTeamID, u.AwayTeamID, u.Reason)
	}

	printReport(run.Report)

	f, err := excel.Generate(run)
	if err != nil {
		return fmt.Errorf("generating Excel: %w", err)
	}
	if err := f.SaveAs(outputPath); err != nil {
		return fmt.Errorf("saving file: %w", err)
	}
	fmt.Printf("\n✓ Schedule saved to %s (run %s)\n", outputPath, run.ID)

	if run.Report.Status == readiness.StatusActionRequired {
		return errNotReady
	}
	return nil
}

func runEvaluate(configPath, schedulePath string) error {
	cfg, err := config.LoadFromFile(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	wb, err := excel.ReadWorkbook(schedulePath)
	if err != nil {
		return fmt.Errorf("reading schedule: %w", err)
	}
	logger.Debug("workbook loaded", "run", wb.RunID, "teams", len(wb.Teams),
		"practice", len(wb.Practice), "games", len(wb.Games))

	in := readiness.Input{
		Teams:         wb.Teams,
		PracticeSlots: schedule.ExpandPracticeSlots(cfg),
		Practice:      wb.Practice,
		GameSlots:     schedule.GenerateGameSlots(cfg),
		Games:         wb.Games,
	}
	if len(in.PracticeSlots) > 0 {
		in.Unassigned = wb.MissingPractice("no practice slot in workbook")
	}

	report := readiness.Evaluate(in, readiness.Options{
		DayConcentration:   cfg.Readiness.DayConcentration,
		UnderutilizedRatio: cfg.Readiness.UnderutilizedRatio,
		MinDaySample:       cfg.Readiness.MinDaySample,
	})
	printReport(report)

	if report.Status == readiness.StatusActionRequired {
		return errNotReady
	}
	return nil
}

func printReport(r readiness.Report) {
	fmt.Println()
	for _, f := range r.Findings {
		switch f.Severity {
		case readiness.SeverityError:
			fmt.Printf("✗ [%s] %s\n", f.Category, f.Message)
		default:
			fmt.Printf("⚠ [%s] %s\n", f.Category, f.Message)
		}
	}
	fmt.Printf("\nReadiness: %s (%d errors, %d warnings)\n", r.Status, r.Errors(), r.Warnings())
}
