package cli

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/citysim-go/internal/adapters/scenario"
)

const smallTownYAML = `
version: 1
name: small-town
entry: "0,0"
buildings:
  - {key: s1, kind: street, at: "1,0"}
  - {key: s2, kind: street, at: "2,0"}
  - {key: s3, kind: street, at: "3,0"}
  - {key: home, kind: house, at: "1,1"}
  - {key: park, kind: garden, at: "2,1"}
  - {key: desk, kind: office, at: "3,1"}
  - {key: plant, kind: biomass_power_plant, at: "-5,-5"}
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// execute runs the root command with args and returns its output
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func sqliteConfig(t *testing.T, dir string) string {
	t.Helper()
	return writeFile(t, dir, "citysim.yaml", fmt.Sprintf(`
logging:
  level: error
database:
  type: sqlite
  path: %s
`, filepath.Join(dir, "journal.db")))
}

func TestRunCommand_PrintsSummary(t *testing.T) {
	// Arrange
	dir := t.TempDir()
	scenarioPath := writeFile(t, dir, "small-town.yaml", smallTownYAML)

	// Act
	out, err := execute(t, "run", "--scenario", scenarioPath, "--ticks", "3")

	// Assert
	require.NoError(t, err)
	assert.Contains(t, out, "tick 1 ")
	assert.Contains(t, out, "tick 3 ")
	assert.Contains(t, out, "ticks:      3")
	assert.Contains(t, out, "population: 8")
	assert.Contains(t, out, "employed:   6")
}

func TestRunCommand_ExportThenRead(t *testing.T) {
	// Arrange
	dir := t.TempDir()
	scenarioPath := writeFile(t, dir, "small-town.yaml", smallTownYAML)
	exportPath := filepath.Join(dir, "run.jsonl.zst")

	// Act
	out, err := execute(t, "run", "--scenario", scenarioPath, "--ticks", "4", "--quiet", "--export", exportPath)
	require.NoError(t, err)
	read, readErr := execute(t, "journal", "read", "--file", exportPath)
	detail, detailErr := execute(t, "journal", "read", "--file", exportPath, "--tick", "2")
	_, missingErr := execute(t, "journal", "read", "--file", exportPath, "--tick", "9")

	// Assert
	assert.NotContains(t, out, "tick 1 ")
	assert.Contains(t, out, "exported:   4 reports")

	require.NoError(t, readErr)
	assert.Equal(t, 4, strings.Count(read, "\n"))
	assert.Contains(t, read, "tick 4 ")

	require.NoError(t, detailErr)
	assert.Contains(t, detail, "Tick:         2")
	assert.Contains(t, detail, "Population:   8 (+2 spawned)")

	assert.Error(t, missingErr)
}

func TestRunCommand_JournalToDatabase(t *testing.T) {
	// Arrange
	dir := t.TempDir()
	scenarioPath := writeFile(t, dir, "small-town.yaml", smallTownYAML)
	configFile := sqliteConfig(t, dir)

	// Act
	out, err := execute(t, "--config", configFile, "run", "--scenario", scenarioPath, "--ticks", "2", "--quiet", "--journal")
	require.NoError(t, err)
	runID := regexp.MustCompile(`Run (small-town-[0-9a-f]{8})`).FindStringSubmatch(out)
	require.Len(t, runID, 2, out)

	runs, runsErr := execute(t, "--config", configFile, "journal", "runs")
	ticks, ticksErr := execute(t, "--config", configFile, "journal", "ticks", "--run", runID[1])
	show, showErr := execute(t, "--config", configFile, "journal", "show", "--run", runID[1], "--tick", "1")
	_, unknownErr := execute(t, "--config", configFile, "journal", "ticks", "--run", "nope")

	// Assert
	require.NoError(t, runsErr)
	assert.Contains(t, runs, runID[1])
	assert.Contains(t, runs, "COMPLETED")

	require.NoError(t, ticksErr)
	assert.Contains(t, ticks, "2 ticks")
	assert.Regexp(t, `(?m)^1\s+6\s+6\s`, ticks)
	assert.Regexp(t, `(?m)^2\s+8\s+6\s`, ticks)

	require.NoError(t, showErr)
	assert.Contains(t, show, "Housing:      6 confirmed")

	assert.Error(t, unknownErr)
}

func TestRunCommand_RequiresScenario(t *testing.T) {
	_, err := execute(t, "run")
	assert.Error(t, err)
}

func TestRunCommand_RejectsInvalidScenario(t *testing.T) {
	// Arrange
	dir := t.TempDir()
	scenarioPath := writeFile(t, dir, "bad.yaml", "version: 1\nname: bad\nbuildings:\n  - {key: a, kind: castle, at: \"1,0\"}\n")

	// Act
	_, err := execute(t, "run", "--scenario", scenarioPath)

	// Assert
	assert.Error(t, err)
}

func TestPathCommand_RoutesAlongStreets(t *testing.T) {
	// Arrange
	dir := t.TempDir()
	scenarioPath := writeFile(t, dir, "small-town.yaml", smallTownYAML)

	// Act
	out, err := execute(t, "path", "--scenario", scenarioPath, "--to", "3,1")
	fromHouse, fromErr := execute(t, "path", "--scenario", scenarioPath, "--from", "1,1", "--to", "3,1")
	_, unreachableErr := execute(t, "path", "--scenario", scenarioPath, "--to", "20,20")

	// Assert
	require.NoError(t, err)
	assert.Contains(t, out, "Route 0,0 -> 3,1")
	assert.Contains(t, out, "2,0 -> 3,0 -> 3,1")

	require.NoError(t, fromErr)
	assert.Contains(t, fromHouse, "departing 1,0")

	assert.Error(t, unreachableErr)
}

func TestDesirabilityCommand_ReadsBothChannels(t *testing.T) {
	// Arrange
	dir := t.TempDir()
	scenarioPath := writeFile(t, dir, "small-town.yaml", smallTownYAML)

	// Act
	out, err := execute(t, "desirability", "--scenario", scenarioPath, "--at", "1,1", "--radius", "1")

	// Assert
	require.NoError(t, err)
	assert.Contains(t, out, "Desirability at 1,1")
	assert.Contains(t, out, "housing:")
	assert.Contains(t, out, "employment:")
	assert.Contains(t, out, "Housing grid")
}

func TestDesirabilityCommand_RejectsBadPosition(t *testing.T) {
	_, err := execute(t, "desirability", "--scenario", "unused.yaml", "--at", "north")
	assert.Error(t, err)
}

func TestGenerateCommand_IsDeterministic(t *testing.T) {
	// Act
	first, err := execute(t, "generate", "--seed", "11", "--size", "12")
	require.NoError(t, err)
	second, err := execute(t, "generate", "--seed", "11", "--size", "12")
	require.NoError(t, err)

	// Assert
	assert.Equal(t, first, second)
	sc, err := scenario.Parse([]byte(first))
	require.NoError(t, err)
	assert.Equal(t, "generated-11-12", sc.Name)
}

func TestGenerateCommand_WritesFileThatRuns(t *testing.T) {
	// Arrange
	dir := t.TempDir()
	outPath := filepath.Join(dir, "town.yaml")

	// Act
	out, err := execute(t, "generate", "--seed", "5", "--size", "10", "--out", outPath)
	require.NoError(t, err)
	run, runErr := execute(t, "run", "--scenario", outPath, "--ticks", "5", "--quiet")

	// Assert
	assert.Contains(t, out, "Wrote generated-5-10")
	require.NoError(t, runErr)
	assert.Contains(t, run, "ticks:      5")
}

func TestConfigShow_ListsCatalog(t *testing.T) {
	// Act
	out, err := execute(t, "config", "show")

	// Assert
	require.NoError(t, err)
	assert.Contains(t, out, "Buildings (catalog")
	assert.Contains(t, out, "BIOMASS_POWER_PLANT")
	assert.Contains(t, out, "Entry:              0,0")
}
