package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	configPath string
	verbose    bool
)

// NewRootCommand creates the root command for the CLI
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "citysim",
		Short: "citysim - run and inspect city simulation scenarios",
		Long: `citysim drives the city simulation engine from scenario files.

Each tick the engine links new streets, grows the population, matches
inhabitants with houses and offices along street paths, and spreads
power from plants to the buildings that need it.

Examples:
  citysim run --scenario scenarios/small-town.yaml --ticks 20
  citysim generate --seed 42 --size 32 --out town.yaml
  citysim path --scenario town.yaml --from 0,0 --to 12,1
  citysim desirability --scenario town.yaml --at 3,1
  citysim journal runs
  citysim config show`,
		SilenceUsage: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "",
		"Path to config file (default: ./citysim.yaml, ./configs, /etc/citysim)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"Enable debug logging")

	// Add command groups
	rootCmd.AddCommand(NewRunCommand())
	rootCmd.AddCommand(NewGenerateCommand())
	rootCmd.AddCommand(NewPathCommand())
	rootCmd.AddCommand(NewDesirabilityCommand())
	rootCmd.AddCommand(NewConfigCommand())
	rootCmd.AddCommand(NewJournalCommand())
	rootCmd.AddCommand(NewHealthCommand())

	return rootCmd
}

// Execute runs the root command
func Execute() {
	rootCmd := NewRootCommand()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
