package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"vehicle-auctions/internal/domain"

	"github.com/shopspring/decimal"
)

// MySQLBidRepository is the bid ledger. SubmitBid is the single authority
// for bid statuses: it decides whether the new bid wins and transitions the
// previous winner inside one transaction.
type MySQLBidRepository struct {
	db *sql.DB
}

func NewMySQLBidRepository(db *sql.DB) *MySQLBidRepository {
	return &MySQLBidRepository{db: db}
}

func (r *MySQLBidRepository) GetLotBidHistory(ctx context.Context, lotID int64) ([]*domain.Bid, error) {
	query := `
        SELECT id, lot_id, created_by, amount, status, active, created_at
        FROM bids
        WHERE lot_id = ?
        ORDER BY created_at DESC, id DESC
    `

	rows, err := r.db.QueryContext(ctx, query, lotID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bids []*domain.Bid
	for rows.Next() {
		var bid domain.Bid
		err := rows.Scan(&bid.ID, &bid.LotID, &bid.CreatedBy, &bid.Amount,
			&bid.Status, &bid.Active, &bid.CreatedAt)
		if err != nil {
			return nil, err
		}
		bids = append(bids, &bid)
	}

	return bids, rows.Err()
}

func (r *MySQLBidRepository) SubmitBid(ctx context.Context, bid *domain.Bid) (*domain.Bid, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	// Lock the current winner for the lot so concurrent submissions for the
	// same lot serialize here.
	var prevID int64
	var prevAmount decimal.Decimal
	hasPrev := true
	err = tx.QueryRowContext(ctx, `
        SELECT id, amount FROM bids
        WHERE lot_id = ? AND active = 1 AND LOWER(status) = 'winning'
        ORDER BY created_at DESC, id DESC
        LIMIT 1
        FOR UPDATE
    `, bid.LotID).Scan(&prevID, &prevAmount)
	if errors.Is(err, sql.ErrNoRows) {
		hasPrev = false
	} else if err != nil {
		return nil, err
	}

	var increment decimal.Decimal
	err = tx.QueryRowContext(ctx, `
        SELECT a.bid_increment
        FROM lots l
        JOIN auctions a ON a.id = l.auction_id
        WHERE l.id = ?
    `, bid.LotID).Scan(&increment)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("submit bid: lot %d not found", bid.LotID)
	} else if err != nil {
		return nil, err
	}

	status := domain.BidStatusOutbid
	if !hasPrev {
		if bid.Amount.IsPositive() {
			status = domain.BidStatusWinning
		}
	} else if bid.Amount.GreaterThanOrEqual(prevAmount.Add(increment)) {
		status = domain.BidStatusWinning
	}

	if status == domain.BidStatusWinning && hasPrev {
		if _, err := tx.ExecContext(ctx,
			`UPDATE bids SET status = ? WHERE id = ?`,
			domain.BidStatusOutbid, prevID); err != nil {
			return nil, err
		}
	}

	res, err := tx.ExecContext(ctx, `
        INSERT INTO bids (lot_id, created_by, amount, status, active, created_at)
        VALUES (?, ?, ?, ?, 1, ?)
    `, bid.LotID, bid.CreatedBy, bid.Amount, status, bid.CreatedAt)
	if err != nil {
		return nil, err
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	placed := *bid
	placed.ID = id
	placed.Status = status
	placed.Active = true
	return &placed, nil
}
