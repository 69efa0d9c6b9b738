package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/andrescamacho/citysim-go/internal/adapters/persistence"
	"github.com/andrescamacho/citysim-go/internal/application/simulation"
)

// formatWh renders a watt-hour amount with an SI prefix, e.g. "13.8 kWh"
func formatWh(wh uint64) string {
	return humanize.SIWithDigits(float64(wh), 1, "Wh")
}

// formatCount renders a count with thousands separators
func formatCount(n uint64) string {
	return humanize.Comma(int64(n))
}

// formatDuration renders a tick duration at millisecond precision
func formatDuration(d time.Duration) string {
	if d < time.Millisecond {
		return d.String()
	}
	return d.Round(time.Millisecond).String()
}

// FormatTickLine renders the one-line summary printed after every tick
func FormatTickLine(report *simulation.TickReport) string {
	line := fmt.Sprintf("tick %-5d pop %-8s employed %-8s +%d housed %d hired %d resigned %d",
		report.Tick,
		formatCount(report.Population),
		formatCount(report.Employed),
		report.Spawned,
		len(report.Housing.Confirmed),
		len(report.Employment.Confirmed),
		len(report.Housing.Resigned)+len(report.Employment.Resigned),
	)
	if report.Power.MissingWh > 0 {
		line += fmt.Sprintf(" missing %s", formatWh(uint64(report.Power.MissingWh)))
	}
	if report.EventsRejected > 0 {
		line += fmt.Sprintf(" rejected %d", report.EventsRejected)
	}
	return line
}

// PrintReport writes the detailed view of one tick report
func PrintReport(w io.Writer, report *simulation.TickReport) {
	fmt.Fprintf(w, "Run:          %s\n", report.RunID)
	fmt.Fprintf(w, "Tick:         %d\n", report.Tick)
	fmt.Fprintf(w, "Started:      %s (%s)\n", report.StartedAt.Format(time.RFC3339), formatDuration(report.Duration))
	fmt.Fprintf(w, "Events:       %d applied, %d rejected\n", report.EventsApplied, report.EventsRejected)
	for _, reason := range report.Rejections {
		fmt.Fprintf(w, "  - %s\n", reason)
	}
	fmt.Fprintf(w, "Streets:      %d nodes, %d pending, +%d links\n",
		report.StreetNodes, report.PendingStreets, report.LinksAdded)
	fmt.Fprintf(w, "Buildings:    %d\n", report.Buildings)
	fmt.Fprintf(w, "Population:   %s (+%d spawned)\n", formatCount(report.Population), report.Spawned)
	fmt.Fprintf(w, "Employed:     %s\n", formatCount(report.Employed))

	printPipeline(w, "Housing", report.Housing)
	printPipeline(w, "Employment", report.Employment)

	fmt.Fprintf(w, "Power:        %s drawn of %s\n", formatWh(report.Power.DrawnWh), formatWh(report.Power.CapacityWh))
	if report.Power.MissingWh > 0 {
		fmt.Fprintf(w, "  missing %s across %d consumers\n", formatWh(uint64(report.Power.MissingWh)), report.Power.Uncovered)
	}
}

func printPipeline(w io.Writer, name string, p simulation.PipelineReport) {
	fmt.Fprintf(w, "%-13s %d confirmed, %d resigned, %d pending, %s free\n",
		name+":",
		len(p.Confirmed),
		len(p.Resigned),
		p.Stats.Pending,
		formatCount(p.Stats.FreeCapacity),
	)
}

// PrintRunSummary writes the totals of a finished run
func PrintRunSummary(w io.Writer, runID string, last *simulation.TickReport, elapsed time.Duration) {
	fmt.Fprintf(w, "\nRun %s finished\n", runID)
	if last == nil {
		fmt.Fprintln(w, "  no ticks ran")
		return
	}
	fmt.Fprintf(w, "  ticks:      %d in %s\n", last.Tick, formatDuration(elapsed))
	fmt.Fprintf(w, "  population: %s\n", formatCount(last.Population))
	fmt.Fprintf(w, "  employed:   %s\n", formatCount(last.Employed))
	fmt.Fprintf(w, "  buildings:  %d\n", last.Buildings)
	fmt.Fprintf(w, "  power:      %s drawn of %s\n", formatWh(last.Power.DrawnWh), formatWh(last.Power.CapacityWh))
}

// PrintRuns writes the run table of the journal
func PrintRuns(w io.Writer, runs []persistence.RunModel, now time.Time) {
	if len(runs) == 0 {
		fmt.Fprintln(w, "No runs recorded")
		return
	}
	fmt.Fprintf(w, "%-36s %-10s %-8s %-16s %s\n", "RUN", "STATUS", "TICKS", "STARTED", "SCENARIO")
	fmt.Fprintln(w, strings.Repeat("-", 90))
	for _, run := range runs {
		fmt.Fprintf(w, "%-36s %-10s %-8s %-16s %s\n",
			run.ID,
			run.Status,
			formatCount(run.Ticks),
			humanize.RelTime(run.StartedAt, now, "ago", "from now"),
			run.Scenario,
		)
	}
}

// PrintTickSummaries writes one row per journaled tick
func PrintTickSummaries(w io.Writer, rows []persistence.TickReportModel) {
	if len(rows) == 0 {
		fmt.Fprintln(w, "No ticks recorded")
		return
	}
	fmt.Fprintf(w, "%-6s %-10s %-10s %-7s %-7s %-8s %s\n", "TICK", "POP", "EMPLOYED", "HOUSED", "HIRED", "RESIGNED", "MISSING")
	fmt.Fprintln(w, strings.Repeat("-", 64))
	for _, row := range rows {
		fmt.Fprintf(w, "%-6d %-10s %-10s %-7d %-7d %-8d %s\n",
			row.Tick,
			formatCount(row.Population),
			formatCount(row.Employed),
			row.Housed,
			row.Hired,
			row.Resigned,
			formatWh(uint64(row.MissingWh)),
		)
	}
}

// PrintLogs writes persisted log lines oldest first
func PrintLogs(w io.Writer, entries []persistence.TickLogEntry) {
	if len(entries) == 0 {
		fmt.Fprintln(w, "No logs recorded")
		return
	}
	for i := len(entries) - 1; i >= 0; i-- {
		e := entries[i]
		fmt.Fprintf(w, "%s [%-5s] %s", e.Timestamp.Format("15:04:05"), e.Level, e.Message)
		if len(e.Metadata) > 0 {
			fmt.Fprintf(w, " %v", e.Metadata)
		}
		fmt.Fprintln(w)
	}
}
