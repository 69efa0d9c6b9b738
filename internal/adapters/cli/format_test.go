package cli

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/andrescamacho/citysim-go/internal/adapters/persistence"
	"github.com/andrescamacho/citysim-go/test/helpers"
)

func TestFormatWh(t *testing.T) {
	assert.Equal(t, "0 Wh", formatWh(0))
	assert.Equal(t, "300 Wh", formatWh(300))
	assert.Equal(t, "13.8 kWh", formatWh(13800))
	assert.Equal(t, "7 MWh", formatWh(7_000_000))
}

func TestFormatCount(t *testing.T) {
	assert.Equal(t, "8", formatCount(8))
	assert.Equal(t, "1,234,567", formatCount(1234567))
}

func TestFormatTickLine(t *testing.T) {
	// Arrange
	report := helpers.SampleReport("run-1", 4)

	// Act
	line := FormatTickLine(report)

	// Assert
	assert.Contains(t, line, "tick 4")
	assert.Contains(t, line, "housed 1 hired 1 resigned 0")
	assert.Contains(t, line, "missing 300 Wh")
	assert.NotContains(t, line, "rejected")
}

func TestPrintReport(t *testing.T) {
	// Arrange
	report := helpers.SampleReport("run-1", 2)
	report.EventsRejected = 1
	report.Rejections = []string{"unknown building kind: CASTLE"}
	var out bytes.Buffer

	// Act
	PrintReport(&out, report)

	// Assert
	text := out.String()
	assert.Contains(t, text, "Run:          run-1")
	assert.Contains(t, text, "Tick:         2")
	assert.Contains(t, text, "  - unknown building kind: CASTLE")
	assert.Contains(t, text, "Housing:      1 confirmed")
	assert.Contains(t, text, "missing 300 Wh")
}

func TestPrintRuns(t *testing.T) {
	// Arrange
	now := helpers.FixtureTime
	runs := []persistence.RunModel{{
		ID:        "small-town-a3f8e2b1",
		Scenario:  "small-town",
		Status:    persistence.RunStatusCompleted,
		Ticks:     1200,
		StartedAt: now.Add(-3 * time.Hour),
	}}
	var out bytes.Buffer

	// Act
	PrintRuns(&out, runs, now)

	// Assert
	text := out.String()
	assert.Contains(t, text, "small-town-a3f8e2b1")
	assert.Contains(t, text, "1,200")
	assert.Contains(t, text, "3 hours ago")
}

func TestPrintRuns_Empty(t *testing.T) {
	var out bytes.Buffer
	PrintRuns(&out, nil, time.Now())
	assert.Equal(t, "No runs recorded\n", out.String())
}

func TestMaskPassword(t *testing.T) {
	assert.Equal(t, "postgresql://city:xxxxx@db:5432/citysim", maskPassword("postgresql://city:secret@db:5432/citysim"))
	assert.Equal(t, "postgresql://db:5432/citysim", maskPassword("postgresql://db:5432/citysim"))
	assert.Equal(t, "not a url %", maskPassword("not a url %"))
}
