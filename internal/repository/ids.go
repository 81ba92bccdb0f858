package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shirokuma-dev/shirokuma/internal/storage/sqlite"
	"github.com/shirokuma-dev/shirokuma/internal/types"
)

const (
	sessionIDLayout = "2006-01-02-15.04.05.000"
	dailyIDLayout   = "2006-01-02"
)

// allocateID assigns an id for a newly created item of typ, following
// one of three policies: a sequence allocator for normal types,
// clock-derived ids for sessions, and a date string (checked
// for uniqueness) for dailies.
func allocateID(ctx context.Context, tx *sql.Tx, typ string, in CreateInput) (id string, numericID int64, err error) {
	switch typ {
	case types.TypeSessions:
		when := time.Now().UTC()
		if in.Datetime != "" {
			parsed, err := time.Parse(time.RFC3339, in.Datetime)
			if err != nil {
				return "", 0, types.Validationf("invalid datetime %q: %v", in.Datetime, err)
			}
			when = parsed.UTC()
		}
		return when.Format(sessionIDLayout), 0, nil

	case types.TypeDailies:
		day := in.Date
		if day == "" {
			day = time.Now().UTC().Format(dailyIDLayout)
		} else if _, err := time.Parse(dailyIDLayout, day); err != nil {
			return "", 0, types.Validationf("invalid date %q, want YYYY-MM-DD", day)
		}
		var exists int
		if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM items WHERE type = ? AND id = ?", typ, day).Scan(&exists); err != nil {
			return "", 0, fmt.Errorf("repository: checking daily uniqueness: %w", err)
		}
		if exists > 0 {
			return "", 0, types.Conflictf("a daily entry for %s already exists", day)
		}
		return day, 0, nil

	default:
		next, err := sqlite.NextID(ctx, tx, typ)
		if err != nil {
			return "", 0, err
		}
		return fmt.Sprintf("%d", next), next, nil
	}
}
