package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/target/carecircle/internal/data/pgxutil"
	"github.com/target/carecircle/internal/domain/carecircle"
	apperrors "github.com/target/carecircle/internal/errors"
	"github.com/target/carecircle/internal/ports"
)

var _ ports.ProviderDirectory = (*ProviderRepo)(nil)

const (
	providerListQuery = `
		SELECT type, name, icon_ref
		FROM care_providers
		ORDER BY position, id`

	providerInsertQuery = `
		INSERT INTO care_providers (position, type, name, icon_ref)
		VALUES (COALESCE((SELECT MAX(position) + 1 FROM care_providers), 0), $1, $2, $3)
		RETURNING type, name, icon_ref`

	providerSeedQuery = `
		INSERT INTO care_providers (position, type, name, icon_ref)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (name) DO NOTHING`
)

// ProviderRepo stores the care circle in Postgres.
type ProviderRepo struct {
	DB *sql.DB
}

// NewProviderRepo creates a new ProviderRepo.
func NewProviderRepo(db *sql.DB) *ProviderRepo {
	return &ProviderRepo{DB: db}
}

// List returns providers in display order.
func (r *ProviderRepo) List(ctx context.Context) ([]carecircle.CareProvider, error) {
	var out []carecircle.CareProvider
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, providerListQuery)
		if err != nil {
			return err
		}
		out, err = pgx.CollectRows(rows, pgx.RowToStructByName[carecircle.CareProvider])
		return err
	}); err != nil {
		return nil, fmt.Errorf("list care providers: %w", apperrors.MapDBError(err))
	}
	if out == nil {
		out = []carecircle.CareProvider{}
	}
	return out, nil
}

// Create appends a provider to the end of the circle.
// A duplicate name yields an AppError with ErrCodeConflict.
func (r *ProviderRepo) Create(ctx context.Context, p carecircle.CareProvider) (carecircle.CareProvider, error) {
	p = normalizeProvider(p)
	if err := p.Validate(); err != nil {
		return carecircle.CareProvider{}, apperrors.ValidationField("name", err.Error())
	}

	var out carecircle.CareProvider
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, providerInsertQuery, p.Type, p.Name, p.IconRef)
		if err != nil {
			return err
		}
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[carecircle.CareProvider])
		return err
	})
	if err != nil {
		return carecircle.CareProvider{}, apperrors.MapDBError(err)
	}
	return out, nil
}

// Seed inserts providers at positions 0..n-1, skipping names that already exist.
// It returns the number of rows inserted.
func (r *ProviderRepo) Seed(ctx context.Context, providers []carecircle.CareProvider) (int, error) {
	if err := carecircle.ValidateSequence(providers); err != nil {
		return 0, apperrors.Wrap(err, apperrors.ErrCodeValidation, "invalid provider sequence")
	}

	inserted := 0
	err := pgxutil.WithPgxTx(ctx, r.DB, pgxutil.TxConfig{Fn: func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		for i, p := range providers {
			p = normalizeProvider(p)
			batch.Queue(providerSeedQuery, i, p.Type, p.Name, p.IconRef)
		}
		results := tx.SendBatch(ctx, batch)
		for range providers {
			tag, err := results.Exec()
			if err != nil {
				return errors.Join(err, results.Close())
			}
			inserted += int(tag.RowsAffected())
		}
		return results.Close()
	}})
	if err != nil {
		return 0, fmt.Errorf("seed care providers: %w", apperrors.MapDBError(err))
	}
	return inserted, nil
}

func normalizeProvider(p carecircle.CareProvider) carecircle.CareProvider {
	p.Type = strings.TrimSpace(p.Type)
	p.Name = strings.TrimSpace(p.Name)
	p.IconRef = strings.TrimSpace(p.IconRef)
	return p
}
