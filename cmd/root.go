package cmd

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/swoopdelivery/swoopsim/internal/dispatch"
	"github.com/swoopdelivery/swoopsim/internal/models"
	"github.com/swoopdelivery/swoopsim/internal/simulator"
)

var (
	cfgFile string
	preset  string
)

var rootCmd = &cobra.Command{
	Use:   "swoopsim",
	Short: "Simulates on-course delivery dispatch for golf operations",
	Long: `swoopsim runs a discrete-event simulation of beverage carts and delivery
staff serving orders across a golf course, producing per-order and
per-asset performance data for dispatch strategy comparison.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := models.LoadConfig(cfgFile, preset)
		if err != nil {
			return fmt.Errorf("error loading config: %w", err)
		}
		applyFlags(cmd, cfg)

		sim, err := simulator.NewSimulator(cfg)
		if err != nil {
			return err
		}
		if cfg.Database.Enabled {
			return runWithDatabase(cmd.Context(), cfg, sim)
		}
		_, err = sim.Run()
		return err
	},
	SilenceUsage: true,
}

var strategiesCmd = &cobra.Command{
	Use:   "strategies",
	Short: "List the available dispatch strategies",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(strings.Join(dispatch.StrategyNames(), "\n"))
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is examples/config.json)")
	rootCmd.PersistentFlags().StringVar(&preset, "preset", "default", "scenario preset: default, high_volume, rush_hour, efficiency_test")

	rootCmd.Flags().Int64("seed", 0, "Random seed for the run")
	rootCmd.Flags().String("start-date", "", "Start of the simulation window (RFC3339)")
	rootCmd.Flags().Int("duration", 0, "Simulation duration in minutes")
	rootCmd.Flags().String("strategy", "", "Dispatch strategy to use")
	rootCmd.Flags().Int("carts", 0, "Number of beverage carts")
	rootCmd.Flags().Int("staff", 0, "Number of delivery staff")
	rootCmd.Flags().Int("course-holes", 0, "Number of holes on the course")
	rootCmd.Flags().Bool("kafka-enabled", false, "Enable Kafka output")
	rootCmd.Flags().String("kafka-broker-list", "", "Kafka broker list")
	rootCmd.Flags().String("output", "", "Output destination: console, json, parquet, postgres, kafka")
	rootCmd.Flags().String("output-path", "", "Base path for file outputs")
	rootCmd.Flags().Bool("progress", false, "Show a progress bar during the run")
	rootCmd.Flags().Bool("quiet", false, "Suppress per-event logging")

	rootCmd.AddCommand(strategiesCmd)
}

// applyFlags layers explicitly set flags over the loaded configuration, so
// presets and config files keep their values unless overridden.
func applyFlags(cmd *cobra.Command, cfg *models.Config) {
	flags := cmd.Flags()
	if flags.Changed("seed") {
		cfg.Seed, _ = flags.GetInt64("seed")
	}
	if flags.Changed("start-date") {
		raw, _ := flags.GetString("start-date")
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			cfg.StartDate = t
		}
	}
	if flags.Changed("duration") {
		cfg.SimulationDurationMinutes, _ = flags.GetInt("duration")
	}
	if flags.Changed("strategy") {
		cfg.DispatcherStrategy, _ = flags.GetString("strategy")
	}
	if flags.Changed("carts") {
		cfg.NumBeverageCarts, _ = flags.GetInt("carts")
	}
	if flags.Changed("staff") {
		cfg.NumDeliveryStaff, _ = flags.GetInt("staff")
	}
	if flags.Changed("course-holes") {
		cfg.CourseHoles, _ = flags.GetInt("course-holes")
	}
	if flags.Changed("kafka-enabled") {
		cfg.KafkaEnabled, _ = flags.GetBool("kafka-enabled")
	}
	if flags.Changed("kafka-broker-list") {
		cfg.KafkaBrokerList, _ = flags.GetString("kafka-broker-list")
	}
	if flags.Changed("output") {
		cfg.OutputDestination, _ = flags.GetString("output")
	}
	if flags.Changed("output-path") {
		cfg.OutputPath, _ = flags.GetString("output-path")
	}
	if flags.Changed("progress") {
		cfg.ShowProgress, _ = flags.GetBool("progress")
	}
	if flags.Changed("quiet") {
		quiet, _ := flags.GetBool("quiet")
		cfg.EnableDetailedLogging = !quiet
	}
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
