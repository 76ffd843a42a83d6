// Package devseed loads the demo accounts into a development database.
package devseed

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/smartbin/portal/internal/adapters/memdirectory"
	"github.com/smartbin/portal/internal/data"
	domainauth "github.com/smartbin/portal/internal/domain/auth"
)

// Seeder inserts accounts that are not present yet.
type Seeder interface {
	Seed(ctx context.Context, records []domainauth.UserRecord) (int, error)
}

// Services bundles the dependencies needed for development seeding.
type Services struct {
	Users   Seeder
	Records []domainauth.UserRecord
}

// NewServices seeds the in-memory directory's demo accounts into db, so both
// directories accept the same credentials.
func NewServices(db *sql.DB) Services {
	return Services{Users: data.NewUserRepo(db), Records: memdirectory.SeedRecords()}
}

// Run executes the seeding workflow. It is safe to run repeatedly.
func Run(ctx context.Context, svcs Services, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	if svcs.Users == nil {
		return errors.New("devseed: user seeder is required")
	}
	records := svcs.Records
	if len(records) == 0 {
		records = memdirectory.SeedRecords()
	}

	inserted, err := svcs.Users.Seed(ctx, records)
	if err != nil {
		return fmt.Errorf("seed users: %w", err)
	}
	logger.InfoContext(ctx, "dev seed complete",
		"accounts", len(records),
		"inserted", inserted,
		"skipped", len(records)-inserted,
	)
	return nil
}
