package helpers

import (
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/andrescamacho/citysim-go/internal/adapters/persistence"
	"github.com/andrescamacho/citysim-go/internal/domain/shared"
)

// TestRepositories bundles the journal repositories over one in-memory database
type TestRepositories struct {
	DB    *gorm.DB
	Clock *shared.MockClock
	Runs  *persistence.GormRunRepository
	Ticks *persistence.GormTickJournal
	Logs  *persistence.GormTickLogRepository
}

// NewTestRepositories creates every journal repository against a fresh test
// database, with the log repository deduplicating over one minute.
func NewTestRepositories(t *testing.T) *TestRepositories {
	t.Helper()

	db := NewTestDB(t)
	clock := shared.NewMockClock(FixtureTime)

	return &TestRepositories{
		DB:    db,
		Clock: clock,
		Runs:  persistence.NewGormRunRepository(db),
		Ticks: persistence.NewGormTickJournal(db),
		Logs:  persistence.NewGormTickLogRepository(db, clock, time.Minute, 10),
	}
}
