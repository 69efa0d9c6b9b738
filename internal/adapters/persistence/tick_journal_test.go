package persistence_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/citysim-go/internal/adapters/persistence"
	"github.com/andrescamacho/citysim-go/internal/domain/shared"
	"github.com/andrescamacho/citysim-go/test/helpers"
)

func TestRunRepository_StartFinishAndFind(t *testing.T) {
	// Arrange
	db := helpers.NewTestDB(t)
	repo := persistence.NewGormRunRepository(db)
	ctx := context.Background()

	// Act
	require.NoError(t, repo.Start(ctx, "run-1", "small.yaml", "v1", helpers.FixtureTime))
	require.NoError(t, repo.Finish(ctx, "run-1", persistence.RunStatusCompleted, 12, helpers.FixtureTime.Add(time.Minute)))

	// Assert
	run, err := repo.FindByID(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, persistence.RunStatusCompleted, run.Status)
	assert.Equal(t, uint64(12), run.Ticks)
	assert.Equal(t, "small.yaml", run.Scenario)
	require.NotNil(t, run.FinishedAt)

	_, err = repo.FindByID(ctx, "missing")
	assert.Error(t, err)
	assert.Error(t, repo.Finish(ctx, "missing", persistence.RunStatusFailed, 0, helpers.FixtureTime))
}

func TestRunRepository_ListNewestFirst(t *testing.T) {
	db := helpers.NewTestDB(t)
	repo := persistence.NewGormRunRepository(db)
	ctx := context.Background()
	require.NoError(t, repo.Start(ctx, "old", "", "v1", helpers.FixtureTime))
	require.NoError(t, repo.Start(ctx, "new", "", "v1", helpers.FixtureTime.Add(time.Hour)))

	runs, err := repo.List(ctx, 10)

	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "new", runs[0].ID)
}

func TestTickJournal_PublishAndRead(t *testing.T) {
	// Arrange
	repos := helpers.NewTestRepositories(t)
	require.NoError(t, repos.Runs.Start(context.Background(), "run-1", "", "v1", helpers.FixtureTime))
	journal := repos.Ticks
	ctx := context.Background()

	// Act
	for tick := uint64(1); tick <= 3; tick++ {
		require.NoError(t, journal.Publish(ctx, helpers.SampleReport("run-1", tick)))
	}

	// Assert
	rows, err := journal.ListSummaries(ctx, "run-1", 2, 1)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, uint64(2), rows[0].Tick)
	assert.Equal(t, 1, rows[0].Housed)
	assert.Equal(t, 1, rows[0].Hired)
	assert.Equal(t, uint32(300), rows[0].MissingWh)

	report, err := journal.FindReport(ctx, "run-1", 3)
	require.NoError(t, err)
	original := helpers.SampleReport("run-1", 3)
	assert.Equal(t, original.Tick, report.Tick)
	assert.Equal(t, original.Power, report.Power)
	require.Len(t, report.Housing.Confirmed, 1)
	assert.Equal(t, original.Housing.Confirmed[0].ToPosition, report.Housing.Confirmed[0].ToPosition)
	assert.False(t, report.Housing.Confirmed[0].To.IsNil())
}

func TestTickJournal_RejectsDuplicateTick(t *testing.T) {
	db := helpers.NewTestDB(t)
	journal := persistence.NewGormTickJournal(db)
	ctx := context.Background()
	require.NoError(t, journal.Publish(ctx, helpers.SampleReport("run-1", 1)))

	err := journal.Publish(ctx, helpers.SampleReport("run-1", 1))

	assert.Error(t, err)
}

func TestTickLogRepository_DeduplicatesWithinWindow(t *testing.T) {
	// Arrange
	db := helpers.NewTestDB(t)
	clock := shared.NewMockClock(helpers.FixtureTime)
	repo := persistence.NewGormTickLogRepository(db, clock, time.Minute, 100)
	ctx := context.Background()

	// Act
	require.NoError(t, repo.Log(ctx, "run-1", "power shortfall", "WARN", map[string]interface{}{"missing_wh": 300}))
	clock.Advance(10 * time.Second)
	require.NoError(t, repo.Log(ctx, "run-1", "power shortfall", "WARN", nil))
	require.NoError(t, repo.Log(ctx, "run-2", "power shortfall", "WARN", nil))
	clock.Advance(time.Minute)
	require.NoError(t, repo.Log(ctx, "run-1", "power shortfall", "WARN", nil))

	// Assert
	logs, err := repo.GetLogs(ctx, "run-1", 10, nil, nil)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Nil(t, logs[0].Metadata)
	assert.Equal(t, float64(300), logs[1].Metadata["missing_wh"])

	others, err := repo.GetLogs(ctx, "run-2", 10, nil, nil)
	require.NoError(t, err)
	assert.Len(t, others, 1)
}

func TestTickLogRepository_FiltersByLevelAndTime(t *testing.T) {
	db := helpers.NewTestDB(t)
	clock := shared.NewMockClock(helpers.FixtureTime)
	repo := persistence.NewGormTickLogRepository(db, clock, 0, 0)
	ctx := context.Background()
	require.NoError(t, repo.Log(ctx, "run-1", "started", "INFO", nil))
	clock.Advance(time.Second)
	require.NoError(t, repo.Log(ctx, "run-1", "event rejected", "WARN", nil))

	level := "WARN"
	warnings, err := repo.GetLogs(ctx, "run-1", 10, &level, nil)
	require.NoError(t, err)
	require.Len(t, warnings, 1)
	assert.Equal(t, "event rejected", warnings[0].Message)

	since := helpers.FixtureTime
	recent, err := repo.GetLogs(ctx, "run-1", 10, nil, &since)
	require.NoError(t, err)
	assert.Len(t, recent, 1)
}

func TestJournalLogger_PersistsThroughRepository(t *testing.T) {
	repo := helpers.NewTestRepositories(t).Logs
	var failures []error
	logger := persistence.NewJournalLogger(repo, "run-9", func(err error) { failures = append(failures, err) })

	logger.Log("INFO", "tick completed", map[string]interface{}{"tick": 1})

	logs, err := repo.GetLogs(context.Background(), "run-9", 10, nil, nil)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, "INFO", logs[0].Level)
	assert.Empty(t, failures)
}
