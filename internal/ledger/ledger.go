// Package ledger stores one row per group page view and answers the daily
// aggregates the stats pages need.
package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"wxhm/internal/models"
	"wxhm/internal/providers"
)

type LedgerInterface interface {
	Record(ctx context.Context, rec models.VisitRecord) error
	DailyCounts(ctx context.Context, group, day string) (models.DailyCount, error)
	ClassBreakdown(ctx context.Context, group, day string) (map[models.ClientClass]int, error)
	Trend(ctx context.Context, group string, days []string) ([]models.DailyCount, error)
	PruneOlderThan(ctx context.Context, cutoffDay string) (int64, error)
	RenameGroup(ctx context.Context, group, newName string) error
	DeleteGroup(ctx context.Context, group string) error
}

type SQLiteLedger struct {
	db     *sql.DB
	logger providers.Logger
}

func NewSQLiteLedger(db *sql.DB, logger providers.Logger) LedgerInterface {
	return &SQLiteLedger{db: db, logger: logger}
}

func ioErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", models.ErrTransientIO, op, err)
}

// withTx runs fn in a transaction and commits only if fn succeeds.
func (l *SQLiteLedger) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func (l *SQLiteLedger) Record(ctx context.Context, rec models.VisitRecord) error {
	if rec.Group == "" || rec.Day == "" {
		return fmt.Errorf("%w: visit record needs group and day", models.ErrValidation)
	}
	if rec.Class == "" {
		rec.Class = models.ClassOther
	}

	const query = `INSERT INTO visit_log (group_name, day, origin_id, client_class) VALUES (?, ?, ?, ?)`
	err := l.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, query, rec.Group, rec.Day, rec.OriginID, string(rec.Class))
		return err
	})
	if err != nil {
		return ioErr("record visit", err)
	}
	return nil
}

func (l *SQLiteLedger) DailyCounts(ctx context.Context, group, day string) (models.DailyCount, error) {
	const query = `SELECT COUNT(*), COUNT(DISTINCT origin_id) FROM visit_log WHERE group_name = ? AND day = ?`
	dc := models.DailyCount{Day: day}
	if err := l.db.QueryRowContext(ctx, query, group, day).Scan(&dc.Visits, &dc.UniqueOrigins); err != nil {
		return models.DailyCount{}, ioErr("daily counts", err)
	}
	return dc, nil
}

func (l *SQLiteLedger) ClassBreakdown(ctx context.Context, group, day string) (map[models.ClientClass]int, error) {
	const query = `SELECT client_class, COUNT(*) FROM visit_log WHERE group_name = ? AND day = ? GROUP BY client_class`
	rows, err := l.db.QueryContext(ctx, query, group, day)
	if err != nil {
		return nil, ioErr("class breakdown", err)
	}
	defer rows.Close()

	out := make(map[models.ClientClass]int)
	for rows.Next() {
		var class string
		var n int
		if err := rows.Scan(&class, &n); err != nil {
			return nil, ioErr("scan class breakdown", err)
		}
		out[models.NormalizeClientClass(class)] += n
	}
	if err := rows.Err(); err != nil {
		return nil, ioErr("class breakdown", err)
	}
	return out, nil
}

// Trend returns one entry per requested day, in the requested order.
func (l *SQLiteLedger) Trend(ctx context.Context, group string, days []string) ([]models.DailyCount, error) {
	out := make([]models.DailyCount, len(days))
	if len(days) == 0 {
		return out, nil
	}

	from, to := days[0], days[0]
	for _, d := range days[1:] {
		if d < from {
			from = d
		}
		if d > to {
			to = d
		}
	}

	const query = `SELECT day, COUNT(*), COUNT(DISTINCT origin_id) FROM visit_log
		WHERE group_name = ? AND day >= ? AND day <= ? GROUP BY day`
	rows, err := l.db.QueryContext(ctx, query, group, from, to)
	if err != nil {
		return nil, ioErr("trend", err)
	}
	defer rows.Close()

	byDay := make(map[string]models.DailyCount)
	for rows.Next() {
		var dc models.DailyCount
		if err := rows.Scan(&dc.Day, &dc.Visits, &dc.UniqueOrigins); err != nil {
			return nil, ioErr("scan trend", err)
		}
		byDay[dc.Day] = dc
	}
	if err := rows.Err(); err != nil {
		return nil, ioErr("trend", err)
	}

	for i, d := range days {
		dc, ok := byDay[d]
		if !ok {
			dc = models.DailyCount{Day: d}
		}
		out[i] = dc
	}
	return out, nil
}

func (l *SQLiteLedger) PruneOlderThan(ctx context.Context, cutoffDay string) (int64, error) {
	var removed int64
	err := l.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM visit_log WHERE day < ?`, cutoffDay)
		if err != nil {
			return err
		}
		removed, err = res.RowsAffected()
		return err
	})
	if err != nil {
		return 0, ioErr("prune visits", err)
	}
	if removed > 0 {
		l.logger.Debugf(providers.TypeStorage, "Pruned %d visit records before %s", removed, cutoffDay)
	}
	return removed, nil
}

func (l *SQLiteLedger) RenameGroup(ctx context.Context, group, newName string) error {
	err := l.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `UPDATE visit_log SET group_name = ? WHERE group_name = ?`, newName, group)
		return err
	})
	if err != nil {
		return ioErr("rename group visits", err)
	}
	return nil
}

func (l *SQLiteLedger) DeleteGroup(ctx context.Context, group string) error {
	err := l.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `DELETE FROM visit_log WHERE group_name = ?`, group)
		return err
	})
	if err != nil {
		return ioErr("delete group visits", err)
	}
	return nil
}
