package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/andrescamacho/citysim-go/internal/adapters/scenario"
	"github.com/andrescamacho/citysim-go/internal/domain/shared"
	"github.com/andrescamacho/citysim-go/pkg/utils"
)

// settledSimulation loads the config and scenario and applies every event
func settledSimulation(cmd *cobra.Command, scenarioPath string) (*Simulation, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	sc, err := scenario.Load(scenarioPath)
	if err != nil {
		return nil, err
	}
	sim, err := BuildSimulation(cfg, sc, utils.GenerateRunID(sc.Name))
	if err != nil {
		return nil, err
	}
	for _, rejected := range sim.Settle() {
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %v\n", rejected)
	}
	return sim, nil
}

// NewPathCommand creates the path command
func NewPathCommand() *cobra.Command {
	var scenarioPath, from, to string

	cmd := &cobra.Command{
		Use:   "path",
		Short: "Find the street route between two cells",
		Long: `Find the street route between two cells of a scenario's final layout.

Every building of the scenario is placed first. When --from is not a street
the trip departs from the first street next to it. The route ends on --to.

Examples:
  citysim path --scenario town.yaml --to 12,1
  citysim path --scenario town.yaml --from 4,2 --to 12,1`,
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := parsePositionFlag("to", to)
			if err != nil {
				return err
			}
			sim, err := settledSimulation(cmd, scenarioPath)
			if err != nil {
				return err
			}

			streets := sim.Engine.Streets()
			origin := streets.Entry()
			if from != "" {
				if origin, err = parsePositionFlag("from", from); err != nil {
					return err
				}
			}

			if len(streets.AccessPoints(origin)) == 0 {
				return fmt.Errorf("no street reaches %s", origin)
			}
			path, start, ok := streets.Route(origin, target)
			if !ok {
				return fmt.Errorf("no route from %s to %s", origin, target)
			}

			steps := path.Steps()
			hops := make([]string, len(steps))
			for i, p := range steps {
				hops[i] = p.String()
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Route %s -> %s (%d steps, departing %s)\n", origin, target, len(steps)-1, start)
			fmt.Fprintf(out, "  %s\n", strings.Join(hops, " -> "))
			return nil
		},
	}

	cmd.Flags().StringVar(&scenarioPath, "scenario", "", "Scenario file (required)")
	cmd.Flags().StringVar(&from, "from", "", "Departure cell as x,y (default: the entry)")
	cmd.Flags().StringVar(&to, "to", "", "Destination cell as x,y (required)")
	cmd.MarkFlagRequired("scenario")
	cmd.MarkFlagRequired("to")

	return cmd
}

// NewDesirabilityCommand creates the desirability command
func NewDesirabilityCommand() *cobra.Command {
	var scenarioPath, at string
	var radius int

	cmd := &cobra.Command{
		Use:   "desirability",
		Short: "Query housing and employment desirability",
		Long: `Query the desirability fields of a scenario's final layout.

Prints the housing and employment scores at --at. With --radius a grid of
housing scores around the cell is printed as well.

Examples:
  citysim desirability --scenario town.yaml --at 3,1
  citysim desirability --scenario town.yaml --at 3,1 --radius 4`,
		RunE: func(cmd *cobra.Command, args []string) error {
			center, err := parsePositionFlag("at", at)
			if err != nil {
				return err
			}
			sim, err := settledSimulation(cmd, scenarioPath)
			if err != nil {
				return err
			}

			layers := sim.Engine.Desirability()
			reading := layers.Read(center)
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Desirability at %s\n", center)
			fmt.Fprintf(out, "  housing:    %d (%d sources)\n", reading.Housing, layers.Housing().Len())
			fmt.Fprintf(out, "  employment: %d (%d sources)\n", reading.Employment, layers.Employment().Len())

			if radius > 0 {
				fmt.Fprintln(out, "\nHousing grid (rows north to south):")
				for y := center.Y - int64(radius); y <= center.Y+int64(radius); y++ {
					var row strings.Builder
					for x := center.X - int64(radius); x <= center.X+int64(radius); x++ {
						fmt.Fprintf(&row, "%5d", layers.Housing().Query(shared.NewPosition(x, y)))
					}
					fmt.Fprintln(out, row.String())
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&scenarioPath, "scenario", "", "Scenario file (required)")
	cmd.Flags().StringVar(&at, "at", "", "Cell to query as x,y (required)")
	cmd.Flags().IntVar(&radius, "radius", 0, "Also print a housing grid of this radius")
	cmd.MarkFlagRequired("scenario")
	cmd.MarkFlagRequired("at")

	return cmd
}
