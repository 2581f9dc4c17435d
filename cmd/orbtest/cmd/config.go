package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"orbtest/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Generate or validate experiment configuration files",
	Long: `Manage experiment configuration files.

Subcommands:
  init     - Generate a default configuration file
  validate - Validate an existing configuration file

Examples:
  orbtest config init --output experiment.yaml
  orbtest config validate --file experiment.yaml`,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Generate a default configuration file",
	RunE:  runConfigInit,
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a configuration file",
	RunE:  runConfigValidate,
}

var (
	configInitOutput   string
	configValidatePath string
)

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configValidateCmd)

	configInitCmd.Flags().StringVarP(&configInitOutput, "output", "o", "experiment.yaml", "output config file path")
	configValidateCmd.Flags().StringVarP(&configValidatePath, "file", "f", "", "path to config file (required)")
	configValidateCmd.MarkFlagRequired("file")
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	cfg := config.Default()
	if err := cfg.SaveToFile(configInitOutput); err != nil {
		return fmt.Errorf("save config: %w", err)
	}

	fmt.Printf("✓ Created default configuration: %s\n", configInitOutput)
	fmt.Println("\nEdit the file and run with:")
	fmt.Printf("  orbtest run --config %s\n", configInitOutput)
	return nil
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadFromFile(configValidatePath)
	if err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	fmt.Printf("✓ Configuration valid: %s\n", configValidatePath)
	fmt.Printf("  Test: %s (%s, %s..%s)\n", cfg.TestName, cfg.Strategy, cfg.StartDate, cfg.EndDate)
	fmt.Printf("  ORB: %d x %dm candles, basis %s\n", cfg.OrbCandles(), cfg.Orb.CandleIntervalMinutes, cfg.Orb.BreakoutBasis)
	fmt.Printf("  Account: $%.2f, %.1f%% per trade\n", cfg.Account.StartingCash, cfg.Account.AllocationPctPerTrade*100)
	fmt.Printf("  Journal: %s\n", cfg.Journal.Type)
	return nil
}
