package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/Amoeba115/newschedule/internal/config"
	"github.com/Amoeba115/newschedule/internal/logger"
	"github.com/Amoeba115/newschedule/internal/models"
	"github.com/Amoeba115/newschedule/internal/roster"
	"github.com/Amoeba115/newschedule/internal/rules"
	"github.com/Amoeba115/newschedule/internal/scheduling"
	"github.com/Amoeba115/newschedule/internal/timeutil"
)

var (
	rosterPath    string
	rulesPath     string
	overridesPath string
	storeOpen     string
	storeClose    string
	outputPath    string
	includeLobby  bool
	permCap       int
	timeoutSec    int
)

func main() {
	godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(cfg.LogLevel)

	root := &cobra.Command{
		Use:   "scheduler",
		Short: "Generate position schedules from an employee roster",
	}
	root.PersistentFlags().StringVar(&rosterPath, "roster", "employee_summary.txt", "employee summary file")
	root.PersistentFlags().StringVar(&rulesPath, "rules", cfg.RulesPath, "rules file")
	root.PersistentFlags().StringVar(&overridesPath, "overrides", cfg.OverridesPath, "overrides file")

	generate := &cobra.Command{
		Use:   "generate",
		Short: "Solve the roster into a schedule and write it as CSV",
		RunE: func(cmd *cobra.Command, args []string) error {
			records, ruleSet, overrides, err := loadInputs()
			if err != nil {
				return err
			}

			engine := scheduling.NewEngine(models.NewCatalog(includeLobby), ruleSet)
			engine.SetPermutationCap(permCap)

			ctx := cmd.Context()
			if timeoutSec > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, time.Duration(timeoutSec)*time.Second)
				defer cancel()
			}

			started := time.Now()
			table, err := engine.Solve(ctx, scheduling.Request{
				StoreOpen:  storeOpen,
				StoreClose: storeClose,
				Employees:  records,
				Overrides:  overrides,
			})
			if err != nil {
				return fmt.Errorf("solve: %w", err)
			}
			log.WithFields(map[string]interface{}{
				"employees": len(records),
				"elapsed":   time.Since(started).String(),
			}).Info("schedule generated")

			out := os.Stdout
			if outputPath != "" {
				f, err := os.Create(outputPath)
				if err != nil {
					return err
				}
				defer f.Close()
				out = f
			}
			return table.WriteCSV(out)
		},
	}
	generate.Flags().StringVar(&storeOpen, "open", cfg.StoreOpen, "store opening time")
	generate.Flags().StringVar(&storeClose, "close", cfg.StoreClose, "store closing time")
	generate.Flags().StringVarP(&outputPath, "output", "o", "", "CSV output path (default stdout)")
	generate.Flags().BoolVar(&includeLobby, "lobby", cfg.IncludeLobby, "include the Lobby position")
	generate.Flags().IntVar(&permCap, "cap", cfg.MaxPermutations, "per-slot candidate enumeration cap (0 = unbounded)")
	generate.Flags().IntVar(&timeoutSec, "timeout", cfg.SolveTimeoutSec, "solve timeout in seconds (0 = none)")

	validate := &cobra.Command{
		Use:   "validate",
		Short: "Check the roster, rules and overrides files without solving",
		RunE: func(cmd *cobra.Command, args []string) error {
			records, ruleSet, overrides, err := loadInputs()
			if err != nil {
				return err
			}

			catalog := models.NewCatalog(true)
			for _, ov := range overrides {
				if !catalog.Contains(ov.Position) {
					return fmt.Errorf("override for %s names unknown position %q", ov.Employee, ov.Position)
				}
				for _, field := range []string{ov.Start, ov.End} {
					if _, err := timeutil.ParseClock(field); err != nil {
						return fmt.Errorf("override for %s: %w", ov.Employee, err)
					}
				}
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%d employees, %d rules, %d overrides: OK\n",
				len(records), len(ruleSet.Rules), len(overrides))
			return nil
		},
	}

	root.AddCommand(generate, validate)

	if err := root.Execute(); err != nil {
		log.WithError(err).Error("command failed")
		os.Exit(1)
	}
}

func loadInputs() ([]models.ShiftRecord, *models.RuleSet, []models.Override, error) {
	f, err := os.Open(rosterPath)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("opening roster: %w", err)
	}
	defer f.Close()

	records, err := roster.ParseSummary(f)
	if err != nil {
		return nil, nil, nil, err
	}

	ruleSet, err := rules.Load(rulesPath)
	if err != nil {
		return nil, nil, nil, err
	}

	overrides, err := rules.LoadOverrides(overridesPath)
	if err != nil {
		return nil, nil, nil, err
	}
	return records, ruleSet, overrides, nil
}
