package mysql

import (
	"context"
	"database/sql"
	"errors"

	"vehicle-auctions/internal/domain"
)

type MySQLFavouriteRepository struct {
	db *sql.DB
}

func NewMySQLFavouriteRepository(db *sql.DB) *MySQLFavouriteRepository {
	return &MySQLFavouriteRepository{db: db}
}

// ListActive returns every active favourite ordered by owning user, so the
// alerts loop can group per user with one pass.
func (r *MySQLFavouriteRepository) ListActive(ctx context.Context) ([]*domain.Favourite, error) {
	query := `
        SELECT id, user_id, lot_id, active, created_at
        FROM favourites
        WHERE active = 1
        ORDER BY user_id ASC, id ASC
    `

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var favourites []*domain.Favourite
	for rows.Next() {
		var f domain.Favourite
		err := rows.Scan(&f.ID, &f.UserID, &f.LotID, &f.Active, &f.CreatedAt)
		if err != nil {
			return nil, err
		}
		favourites = append(favourites, &f)
	}

	return favourites, rows.Err()
}

func (r *MySQLFavouriteRepository) GetFavourite(ctx context.Context, favouriteID int64) (*domain.Favourite, error) {
	query := `
        SELECT id, user_id, lot_id, active, created_at
        FROM favourites WHERE id = ?
    `

	var f domain.Favourite
	err := r.db.QueryRowContext(ctx, query, favouriteID).Scan(
		&f.ID, &f.UserID, &f.LotID, &f.Active, &f.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &f, nil
}

func (r *MySQLFavouriteRepository) SetActive(ctx context.Context, favouriteID int64, active bool) error {
	query := `UPDATE favourites SET active = ? WHERE id = ?`
	_, err := r.db.ExecContext(ctx, query, active, favouriteID)
	return err
}
