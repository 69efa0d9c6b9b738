package cli

import (
	"fmt"
	"io"
	"net/url"

	"github.com/spf13/cobra"

	"github.com/andrescamacho/citysim-go/internal/infrastructure/config"
)

// NewConfigCommand creates the config command with subcommands
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect configuration settings",
		Long: `Inspect citysim configuration settings.

Configuration is loaded from multiple sources with priority:
1. Environment variables (CS_* prefix, DATABASE_URL)
2. Config file (citysim.yaml)
3. Default values

Examples:
  citysim config show
  citysim config show --config configs/citysim.yaml`,
	}

	cmd.AddCommand(newConfigShowCommand())

	return cmd
}

// newConfigShowCommand creates the config show subcommand
func newConfigShowCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Long: `Display the effective configuration, including the building catalog.

Example:
  citysim config show`,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			cfg, err := loadConfig()
			if err != nil {
				fmt.Fprintf(out, "Warning: Failed to load config: %v\n", err)
				fmt.Fprintln(out, "Using default configuration.")
				cfg = config.Default()
			}
			return printConfig(out, cfg)
		},
	}

	return cmd
}

func printConfig(out io.Writer, cfg *config.Config) error {
	fmt.Fprintln(out, "citysim Configuration")
	fmt.Fprintln(out, "=====================")

	fmt.Fprintln(out, "\nSimulation:")
	fmt.Fprintf(out, "  Entry:              %s\n", cfg.Simulation.Entry)
	fmt.Fprintf(out, "  Ticks/second:       %g\n", cfg.Simulation.TicksPerSecond)
	fmt.Fprintf(out, "  Newcomers/tick:     %d\n", cfg.Simulation.MaxInhabitantsPerTick)
	fmt.Fprintf(out, "  Matches/tick:       %d\n", cfg.Simulation.MaxMatchesPerTick)
	fmt.Fprintf(out, "  Newcomer education: %s\n", cfg.Simulation.DefaultEducation)
	fmt.Fprintf(out, "  Negative housing:   %t\n", cfg.Simulation.AllowNegativeDesirability)

	catalog, err := cfg.Buildings.Catalog()
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "\nBuildings (catalog %s):\n", catalog.Version())
	for _, kind := range catalog.Kinds() {
		spec, _ := catalog.Spec(kind)
		fmt.Fprintf(out, "  %-20s cap %-4d", kind, spec.Capacity)
		if spec.ConsumesPower() {
			fmt.Fprintf(out, " draws %s + %s/occupant", formatWh(uint64(spec.PowerBaseWh)), formatWh(uint64(spec.PowerPerOccupantWh)))
		}
		if spec.ProducesPower() {
			fmt.Fprintf(out, " produces %s", formatWh(uint64(spec.PowerCapacityWh)))
		}
		if spec.HousingSource != nil {
			fmt.Fprintf(out, " housing %+d r%d", spec.HousingSource.Value, spec.HousingSource.OuterRadius)
		}
		if spec.EmploymentSource != nil {
			fmt.Fprintf(out, " employment %+d r%d", spec.EmploymentSource.Value, spec.EmploymentSource.OuterRadius)
		}
		fmt.Fprintln(out)
	}

	fmt.Fprintln(out, "\nDatabase:")
	fmt.Fprintf(out, "  Type:               %s\n", cfg.Database.Type)
	switch {
	case cfg.Database.URL != "":
		fmt.Fprintf(out, "  URL:                %s\n", maskPassword(cfg.Database.URL))
	case cfg.Database.Type == "sqlite":
		fmt.Fprintf(out, "  Path:               %s\n", cfg.Database.Path)
	default:
		fmt.Fprintf(out, "  Host:               %s\n", cfg.Database.Host)
		fmt.Fprintf(out, "  Port:               %d\n", cfg.Database.Port)
		fmt.Fprintf(out, "  Database:           %s\n", cfg.Database.Name)
		fmt.Fprintf(out, "  User:               %s\n", cfg.Database.User)
	}
	fmt.Fprintf(out, "  Max Connections:    %d\n", cfg.Database.Pool.MaxOpen)

	fmt.Fprintln(out, "\nJournal:")
	fmt.Fprintf(out, "  Enabled:            %t\n", cfg.Journal.Enabled)
	fmt.Fprintf(out, "  Export path:        %s\n", valueOrNone(cfg.Journal.ExportPath))
	fmt.Fprintf(out, "  Compression:        %s\n", cfg.Journal.Compression)
	fmt.Fprintf(out, "  Dedup window:       %s\n", cfg.Journal.DedupWindow)

	fmt.Fprintln(out, "\nDaemon endpoints:")
	fmt.Fprintf(out, "  Metrics:            %t http://%s:%d%s\n", cfg.Metrics.Enabled, cfg.Metrics.Host, cfg.Metrics.Port, cfg.Metrics.Path)
	fmt.Fprintf(out, "  Stream:             %t %s (buffer %d)\n", cfg.Stream.Enabled, cfg.Stream.Path, cfg.Stream.BufferSize)
	fmt.Fprintf(out, "  Health:             %t %s\n", cfg.Health.Enabled, cfg.Health.Address)

	fmt.Fprintln(out, "\nLogging:")
	fmt.Fprintf(out, "  Level:              %s\n", cfg.Logging.Level)
	fmt.Fprintf(out, "  Format:             %s\n", cfg.Logging.Format)
	fmt.Fprintf(out, "  Output:             %s\n", cfg.Logging.Output)

	return nil
}

// maskPassword hides the password of a connection URL for display
func maskPassword(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.User == nil {
		return raw
	}
	if _, set := u.User.Password(); !set {
		return raw
	}
	u.User = url.UserPassword(u.User.Username(), "xxxxx")
	return u.String()
}

func valueOrNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}
