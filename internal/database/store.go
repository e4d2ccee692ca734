package database

import (
	"time"

	"github.com/openthreatiq/threatiq/internal/model"
)

// Store defines the interface for database operations. The aggregator and the
// HTTP layer depend on this interface rather than the SQLite implementation.
type Store interface {
	Close() error

	// Entry operations
	UpsertEntry(e model.Entry) error
	ListEntries() ([]model.Entry, error)
	MarkRead(id string) error

	// User-added source operations
	GetUserSources() ([]model.Source, error)
	AddUserSource(s model.Source) error

	// Refresh state operations
	GetRefreshState() (model.RefreshState, error)
	SetLastRefresh(t time.Time) error
	GetRefreshInterval() (int, error)
	SetRefreshInterval(minutes int) error

	// Settings operations
	GetSetting(key string) (string, error)
	SetSetting(key, value string) error
}
