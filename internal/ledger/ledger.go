// Package ledger stores attendance records. Stores are append-only: the
// recognition loop never reads records back.
package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/kozaktomas/face-attendance/internal/config"
	"github.com/kozaktomas/face-attendance/internal/constants"
)

// Record is one accepted sighting.
type Record struct {
	Name string
	Date string // YYYY-MM-DD, local wall clock
	Time string // HH:MM:SS, local wall clock
}

// NewRecord formats t in local time.
func NewRecord(name string, t time.Time) Record {
	local := t.Local()
	return Record{
		Name: name,
		Date: local.Format(constants.DateLayout),
		Time: local.Format(constants.TimeLayout),
	}
}

// Sink is an append-only attendance store.
type Sink interface {
	Append(ctx context.Context, rec Record) error
	Close() error
}

// Open creates the sink selected by cfg.Driver, initializing the store if needed.
func Open(ctx context.Context, cfg *config.LedgerConfig) (Sink, error) {
	switch cfg.Driver {
	case "", "csv":
		return OpenCSV(cfg.File)
	case "postgres", "mysql":
		return OpenSQL(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown ledger driver %q", cfg.Driver)
	}
}
