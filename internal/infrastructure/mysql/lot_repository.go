package mysql

import (
	"context"
	"database/sql"
	"errors"

	"vehicle-auctions/internal/domain"
)

type MySQLLotRepository struct {
	db *sql.DB
}

func NewMySQLLotRepository(db *sql.DB) *MySQLLotRepository {
	return &MySQLLotRepository{db: db}
}

// GetLot returns the lot with its status derived from the parent auction,
// or (nil, nil) when the lot does not exist.
func (r *MySQLLotRepository) GetLot(ctx context.Context, lotID int64) (*domain.Lot, error) {
	query := `
        SELECT l.id, l.auction_id, l.inventory_id, a.status,
               l.buy_now_price, l.reserve_price, l.created_at
        FROM lots l
        JOIN auctions a ON a.id = l.auction_id
        WHERE l.id = ?
    `

	var lot domain.Lot
	var status int

	err := r.db.QueryRowContext(ctx, query, lotID).Scan(
		&lot.ID, &lot.AuctionID, &lot.InventoryID, &status,
		&lot.BuyNowPrice, &lot.ReservePrice, &lot.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	lot.Status = domain.AuctionStatus(status)
	return &lot, nil
}
