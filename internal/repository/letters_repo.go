package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// LettersRepository stores the symbol vocabulary in the letters table.
type LettersRepository struct {
	db *pgxpool.Pool
}

func NewLettersRepository(db *pgxpool.Pool) *LettersRepository {
	return &LettersRepository{db: db}
}

// List returns the letters in their stored order. An empty table yields a non-nil empty slice.
func (r *LettersRepository) List(ctx context.Context) ([]string, error) {
	rows, err := r.db.Query(ctx, `SELECT letter FROM letters ORDER BY position, letter`)
	if err != nil {
		return nil, err
	}

	letters, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, err
	}
	if letters == nil {
		letters = []string{}
	}
	return letters, nil
}

// Replace swaps the whole vocabulary in one transaction.
func (r *LettersRepository) Replace(ctx context.Context, letters []string) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `DELETE FROM letters`); err != nil {
		return err
	}

	batch := &pgx.Batch{}
	for i, l := range letters {
		batch.Queue(`INSERT INTO letters (position, letter) VALUES ($1, $2)`, i, l)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return err
	}

	return tx.Commit(ctx)
}
