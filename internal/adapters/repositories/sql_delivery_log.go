package repositories

import (
	"context"
	"database/sql"
	"delivery-fleet-sim/internal/platform/obs"
	"delivery-fleet-sim/internal/ports"
	"errors"
	"fmt"
	"strings"
)

// SQLDeliveryLog stores finished runs and their delivered stops.
type SQLDeliveryLog struct {
	DB      *sql.DB
	Dialect Dialect
}

func NewSQLDeliveryLog(db *sql.DB, d Dialect) *SQLDeliveryLog {
	return &SQLDeliveryLog{DB: db, Dialect: d}
}

// SaveRun writes the summary and every delivery row in one transaction.
// Saving the same run id twice replaces the earlier rows.
func (s *SQLDeliveryLog) SaveRun(ctx context.Context, summary ports.RunSummary, rows []ports.DeliveryRow) (err error) {
	defer obs.Time(ctx, "deliverylog.SaveRun")(&err)

	if s.DB == nil {
		return errors.New("delivery log: db is nil")
	}
	if strings.TrimSpace(summary.RunID) == "" {
		return errors.New("save run: run id must not be empty")
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("save run: db begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, s.Dialect.Rebind(`DELETE FROM deliveries WHERE run_id = ?;`), summary.RunID); err != nil {
		return fmt.Errorf("save run %s: clear deliveries: %w", summary.RunID, err)
	}

	failed := 0
	if summary.Failed {
		failed = 1
	}
	_, err = tx.ExecContext(ctx, s.Dialect.Rebind(`
	INSERT INTO runs (run_id, finished_at, total_miles, delivered, extra_routes, failed, fail_reason)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT (run_id) DO UPDATE
	SET finished_at = excluded.finished_at,
		total_miles = excluded.total_miles,
		delivered = excluded.delivered,
		extra_routes = excluded.extra_routes,
		failed = excluded.failed,
		fail_reason = excluded.fail_reason;
	`), summary.RunID, summary.FinishedAt, summary.TotalMiles, summary.Delivered, summary.ExtraRoutes, failed, summary.FailReason)
	if err != nil {
		return fmt.Errorf("save run %s: insert run: %w", summary.RunID, err)
	}

	stmt, err := tx.PrepareContext(ctx, s.Dialect.Rebind(`
	INSERT INTO deliveries (run_id, seq, package_id, truck_id, destination, delivered_at, deadline, annotation)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?);
	`))
	if err != nil {
		return fmt.Errorf("save run %s: db prepare: %w", summary.RunID, err)
	}
	defer stmt.Close()

	for i, r := range rows {
		if _, err := stmt.ExecContext(ctx, summary.RunID, i+1, r.PackageID, r.TruckID, r.Destination, r.DeliveredAt, r.Deadline, r.Annotation); err != nil {
			return fmt.Errorf("save run %s: insert delivery package_id=%d: %w", summary.RunID, r.PackageID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("save run %s: commit: %w", summary.RunID, err)
	}
	return nil
}

// ListDeliveries returns a run's rows in delivery order.
func (s *SQLDeliveryLog) ListDeliveries(ctx context.Context, runID string) (_ []ports.DeliveryRow, err error) {
	defer obs.Time(ctx, "deliverylog.ListDeliveries")(&err)

	if s.DB == nil {
		return nil, errors.New("delivery log: db is nil")
	}

	rows, err := s.DB.QueryContext(ctx, s.Dialect.Rebind(`
	SELECT package_id, truck_id, destination, delivered_at, deadline, annotation
	FROM deliveries
	WHERE run_id = ?
	ORDER BY seq;
	`), runID)
	if err != nil {
		return nil, fmt.Errorf("list deliveries: query deliveries table: %w", err)
	}
	defer rows.Close()

	var out []ports.DeliveryRow
	for rows.Next() {
		var r ports.DeliveryRow
		if err := rows.Scan(&r.PackageID, &r.TruckID, &r.Destination, &r.DeliveredAt, &r.Deadline, &r.Annotation); err != nil {
			return nil, fmt.Errorf("list deliveries: scan row: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list deliveries: row iteration: %w", err)
	}
	return out, nil
}

// ListRuns returns every stored run summary ordered by run id.
func (s *SQLDeliveryLog) ListRuns(ctx context.Context) (_ []ports.RunSummary, err error) {
	defer obs.Time(ctx, "deliverylog.ListRuns")(&err)

	if s.DB == nil {
		return nil, errors.New("delivery log: db is nil")
	}

	rows, err := s.DB.QueryContext(ctx, `
	SELECT run_id, finished_at, total_miles, delivered, extra_routes, failed, fail_reason
	FROM runs
	ORDER BY run_id;
	`)
	if err != nil {
		return nil, fmt.Errorf("list runs: query runs table: %w", err)
	}
	defer rows.Close()

	var out []ports.RunSummary
	for rows.Next() {
		var r ports.RunSummary
		var failed int
		if err := rows.Scan(&r.RunID, &r.FinishedAt, &r.TotalMiles, &r.Delivered, &r.ExtraRoutes, &failed, &r.FailReason); err != nil {
			return nil, fmt.Errorf("list runs: scan row: %w", err)
		}
		r.Failed = failed != 0
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list runs: row iteration: %w", err)
	}
	return out, nil
}
