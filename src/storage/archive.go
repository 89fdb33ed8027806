package storage

import (
	"sync"
	"time"

	"spot-observer/src/interfaces"
	"spot-observer/src/logger"
	"spot-observer/src/models"
)

// DefaultCleanupEvery is how often the archive applies the retention policy.
const DefaultCleanupEvery = 24 * time.Hour

// Archive appends every published snapshot to the database. Subscribe its
// OnPublish to the cache registry.
type Archive struct {
	DB           interfaces.IDatabase
	Logger       *logger.Logger
	CleanupEvery time.Duration
	Now          func() time.Time

	mu          sync.Mutex
	lastCleanup time.Time
}

// -----------------------------------------------------------------------------

func NewArchive(db interfaces.IDatabase, log *logger.Logger) *Archive {
	if log == nil {
		log = logger.NewLogger(nil, "Archive")
	}
	return &Archive{
		DB:           db,
		Logger:       log,
		CleanupEvery: DefaultCleanupEvery,
		Now:          time.Now,
	}
}

// -----------------------------------------------------------------------------

// OnPublish runs on the refreshing goroutine. Failures are logged; the cached
// snapshot is already published and stays valid.
func (a *Archive) OnPublish(snap *models.MSnapshot) {
	if a.DB == nil || snap == nil {
		return
	}
	if err := a.DB.SaveSnapshot(snap); err != nil {
		a.Logger.Error("Failed to archive snapshot %s of %s: %v", snap.FetchID, snap.Source, err)
		return
	}
	a.Logger.Debug("Archived snapshot %s (%d rows)", snap.FetchID, snap.RowCount())

	if a.cleanupDue() {
		if err := a.DB.CleanupOldData(); err != nil {
			a.Logger.Error("Archive cleanup failed: %v", err)
		}
	}
}

func (a *Archive) cleanupDue() bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	now := a.Now()
	if !a.lastCleanup.IsZero() && now.Sub(a.lastCleanup) < a.CleanupEvery {
		return false
	}
	a.lastCleanup = now
	return true
}

// -----------------------------------------------------------------------------

func (a *Archive) Close() error {
	if a.DB == nil {
		return nil
	}
	return a.DB.Close()
}
