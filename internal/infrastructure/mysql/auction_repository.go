package mysql

import (
	"context"
	"database/sql"
	"errors"

	"vehicle-auctions/internal/domain"

	_ "github.com/go-sql-driver/mysql"
)

type MySQLAuctionRepository struct {
	db *sql.DB
}

func NewMySQLAuctionRepository(db *sql.DB) *MySQLAuctionRepository {
	return &MySQLAuctionRepository{db: db}
}

// GetAuctionWindow returns the auction's time window as epoch milliseconds,
// or (nil, nil) when the auction does not exist.
func (r *MySQLAuctionRepository) GetAuctionWindow(ctx context.Context, auctionID int64) (*domain.AuctionWindow, error) {
	query := `
        SELECT id, name, start_time, end_time, status
        FROM auctions WHERE id = ?
    `

	var (
		window     domain.AuctionWindow
		start, end sql.NullTime
		status     int
	)

	err := r.db.QueryRowContext(ctx, query, auctionID).Scan(
		&window.AuctionID, &window.Name, &start, &end, &status)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if start.Valid {
		window.StartMs = start.Time.UTC().UnixMilli()
	}
	if end.Valid {
		window.EndMs = end.Time.UTC().UnixMilli()
	}
	window.Status = domain.AuctionStatus(status)
	return &window, nil
}

// RecalculateStatuses advances non-draft auctions through
// scheduled -> live -> ended against the wall clock in one statement.
// Ended auctions are excluded so a status never regresses, and rows whose
// status already matches are not touched, which keeps the changed-rows
// count meaningful.
func (r *MySQLAuctionRepository) RecalculateStatuses(ctx context.Context) (int64, error) {
	query := `
        UPDATE auctions
        SET status = CASE
            WHEN UTC_TIMESTAMP(3) >= end_time THEN ?
            WHEN UTC_TIMESTAMP(3) >= start_time THEN ?
            ELSE ?
        END
        WHERE status NOT IN (?, ?)
    `

	res, err := r.db.ExecContext(ctx, query,
		int(domain.AuctionEnded), int(domain.AuctionLive), int(domain.AuctionScheduled),
		int(domain.AuctionDraft), int(domain.AuctionEnded))
	if err != nil {
		return 0, err
	}

	return res.RowsAffected()
}
