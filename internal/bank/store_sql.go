package bank

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

type SQLStore struct {
	db     *sql.DB
	driver string // "sqlite" or "postgres"
}

func NewSQLStore(db *sql.DB, driver string) *SQLStore {
	return &SQLStore{db: db, driver: driver}
}

func (s *SQLStore) PutBank(ctx context.Context, b Bank, payload []byte) error {
	ij, err := json.Marshal(b.Items)
	if err != nil {
		return fmt.Errorf("bank: encode items: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO banks (mode,title,version,items_json,payload,created_at)
		VALUES ($1,$2,$3,$4,$5,$6)
		ON CONFLICT (mode) DO UPDATE SET title=EXCLUDED.title, version=EXCLUDED.version, items_json=EXCLUDED.items_json, payload=EXCLUDED.payload`,
		b.Mode, b.Title, b.Version, string(ij), payload, time.Now().Unix())
	return err
}

func (s *SQLStore) GetBank(ctx context.Context, mode string) (Bank, error) {
	row := s.db.QueryRowContext(ctx, `SELECT mode,title,version,items_json FROM banks WHERE mode=$1`, mode)
	var b Bank
	var ijson string
	if err := row.Scan(&b.Mode, &b.Title, &b.Version, &ijson); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Bank{}, ErrNotFound
		}
		return Bank{}, err
	}
	if err := json.Unmarshal([]byte(ijson), &b.Items); err != nil {
		return Bank{}, fmt.Errorf("bank: decode items: %w", err)
	}
	return b, nil
}

func (s *SQLStore) ListModes(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT mode FROM banks ORDER BY mode`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var modes []string
	for rows.Next() {
		var mode string
		if err := rows.Scan(&mode); err != nil {
			return nil, err
		}
		modes = append(modes, mode)
	}
	return modes, rows.Err()
}

func (s *SQLStore) PayloadBytes(ctx context.Context, mode string) ([]byte, error) {
	row := s.db.QueryRowContext(ctx, `SELECT payload FROM banks WHERE mode=$1`, mode)
	var blob []byte
	if err := row.Scan(&blob); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return blob, nil
}
