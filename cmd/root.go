package cmd

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	engine "github.com/tierflow/tierflow/engine"
)

var (
	// CLI flags for the run controller
	seed           int64   // Seed for signal/latency/source randomness
	logLevel       string  // Log verbosity level
	mode           string  // Tier-migration mode
	scoreThreshold float64 // Escalation threshold (standard mode only)
	prompt         string  // Prompt handed to the token source
	chunks         int     // Number of chunks the scripted source emits
	subUnitRunes   int     // Sub-unit size in runes (1-4)
	forceEscalate  bool    // Escalate to cloud on the first unit
	replay         bool    // Replay the run at fixed cadence afterwards
	profilePath    string  // Optional yaml tier cost/latency profile
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "tierflow",
	Short: "Instability-driven tier-migration controller for token streams",
}

// runCmd executes one run using parameters from CLI flags
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the tier-migration controller over a scripted token stream",
	Run: func(cmd *cobra.Command, args []string) {
		// Set up logging
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			logrus.Fatalf("Invalid log level: %s", logLevel)
		}
		logrus.SetLevel(level)

		cfg := engine.Config{
			Mode:           engine.Mode(mode),
			ScoreThreshold: scoreThreshold,
			ForceEscalate:  forceEscalate,
			Seed:           seed,
			SubUnitRunes:   subUnitRunes,
		}
		if profilePath != "" {
			cfg.Profiles = GetTierProfiles(profilePath)
		}
		if err := cfg.Validate(); err != nil {
			logrus.Fatalf("Invalid configuration: %v", err)
		}

		logrus.Infof("Starting run: mode=%s threshold=%.2f seed=%d chunks=%d",
			cfg.Mode, cfg.EffectiveThreshold(), seed, chunks)

		runner := engine.NewRunner(engine.DefaultSourceFactory(chunks))

		// Stream the generated units to stdout as they are published.
		updates, unsubscribe := runner.Subscribe(256)
		defer unsubscribe()
		var wg sync.WaitGroup
		wg.Add(1)
		go func() {
			defer wg.Done()
			for u := range updates {
				if u.Record != nil {
					fmt.Print(u.Record.UnitPayload)
				}
			}
		}()

		if err := runner.Start(context.Background(), prompt, cfg); err != nil {
			logrus.Fatalf("Could not start run: %v", err)
		}
		<-runner.Done()
		fmt.Println()
		if err := runner.Err(); err != nil {
			logrus.Errorf("Run failed: %v", err)
		}

		runner.Summary().Print()

		if replay {
			if err := runner.Replay(context.Background()); err != nil {
				logrus.Fatalf("Could not start replay: %v", err)
			}
			<-runner.Done()
			logrus.Infof("Replay finished: %d records republished", len(runner.Records()))
		}

		unsubscribe()
		wg.Wait()
	},
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// init sets up CLI flags and subcommands
func init() {
	runCmd.Flags().Int64Var(&seed, "seed", 42, "Seed for signal, latency and source randomness")
	runCmd.Flags().StringVar(&logLevel, "log", "error", "Log level (trace, debug, info, warn, error, fatal, panic)")

	// Controller configs
	runCmd.Flags().StringVar(&mode, "mode", "standard", "Mode (baseline, standard, aggressive, energy-saving)")
	runCmd.Flags().Float64Var(&scoreThreshold, "score-threshold", 1.5, "Escalation threshold in [0.5, 3.0] (standard mode)")
	runCmd.Flags().BoolVar(&forceEscalate, "force-escalate", false, "Escalate to cloud on the first unit")
	runCmd.Flags().IntVar(&subUnitRunes, "sub-unit-runes", 0, "Sub-unit size in runes, 1-4 (0 = default)")
	runCmd.Flags().StringVar(&profilePath, "profile", "", "Path to yaml tier cost/latency profile")

	// Token source configs
	runCmd.Flags().StringVar(&prompt, "prompt", "demo", "Prompt handed to the token source")
	runCmd.Flags().IntVar(&chunks, "chunks", 60, "Number of chunks the scripted source emits")

	// Replay config
	runCmd.Flags().BoolVar(&replay, "replay", false, "Replay the finished run at fixed cadence")

	// Attach `run` as a subcommand to `root`
	rootCmd.AddCommand(runCmd)
}
