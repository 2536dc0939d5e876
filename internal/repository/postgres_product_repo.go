package repository

import (
	"context"
	"database/sql"
	"fmt"
)

// PostgresProductRepo はPostgreSQLを使用した商品リポジトリ。
type PostgresProductRepo struct {
	db *sql.DB
}

// NewPostgresProductRepo はPostgresProductRepoを生成する。
func NewPostgresProductRepo(db *sql.DB) *PostgresProductRepo {
	return &PostgresProductRepo{db: db}
}

// InsertIgnore は商品が存在しない場合のみ作成する。
// ON CONFLICT DO NOTHINGにより、既存の商品名に対しては何もせずfalseを返す。
func (r *PostgresProductRepo) InsertIgnore(ctx context.Context, name, description string) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`INSERT INTO products (name, description) VALUES ($1, $2)
		 ON CONFLICT (name) DO NOTHING`,
		name, description,
	)
	if err != nil {
		return false, fmt.Errorf("failed to insert product: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected > 0, nil
}

// compile-time interface check
var _ ProductRepository = (*PostgresProductRepo)(nil)
