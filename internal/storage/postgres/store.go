package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"vaultScope/internal/model"
)

// Store provides Postgres persistence for the oracle.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("pg dsn is required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

func (s *Store) LoadVault(ctx context.Context, address string) (model.Vault, bool, error) {
	var vault model.Vault
	row := s.pool.QueryRow(ctx, `
		SELECT address, underlying, tvl FROM vaults WHERE address = lower($1)
	`, address)
	if err := row.Scan(&vault.Address, &vault.Underlying, &vault.Tvl); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Vault{}, false, nil
		}
		return model.Vault{}, false, err
	}
	return vault, true, nil
}

func (s *Store) SaveVault(ctx context.Context, vault model.Vault) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO vaults (address, underlying, tvl, created_at, updated_at)
		VALUES (lower($1), lower($2), $3, now(), now())
		ON CONFLICT (address) DO UPDATE SET
			underlying = EXCLUDED.underlying,
			tvl = EXCLUDED.tvl,
			updated_at = now()
	`, vault.Address, vault.Underlying, vault.Tvl)
	return err
}

func (s *Store) LoadToken(ctx context.Context, address string) (model.Token, bool, error) {
	var token model.Token
	row := s.pool.QueryRow(ctx, `
		SELECT address, name, decimals FROM tokens WHERE address = lower($1)
	`, address)
	if err := row.Scan(&token.Address, &token.Name, &token.Decimals); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Token{}, false, nil
		}
		return model.Token{}, false, err
	}
	return token, true, nil
}

func (s *Store) SaveToken(ctx context.Context, token model.Token) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO tokens (address, name, decimals, created_at, updated_at)
		VALUES (lower($1), $2, $3, now(), now())
		ON CONFLICT (address) DO UPDATE SET
			name = EXCLUDED.name,
			decimals = EXCLUDED.decimals,
			updated_at = now()
	`, token.Address, token.Name, token.Decimals)
	return err
}

func (s *Store) LoadTotalTvlState(ctx context.Context, id string) (model.TotalTvlState, bool, error) {
	state := model.TotalTvlState{ID: id}
	row := s.pool.QueryRow(ctx, `
		SELECT vaults, last_update, block_timestamp, created_at_block
		FROM total_tvl_state WHERE id = $1
	`, id)
	if err := row.Scan(&state.Vaults, &state.LastUpdate, &state.Timestamp, &state.CreatedAtBlock); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.TotalTvlState{}, false, nil
		}
		return model.TotalTvlState{}, false, err
	}
	return state, true, nil
}

func (s *Store) SaveTotalTvlState(ctx context.Context, state model.TotalTvlState) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO total_tvl_state (id, vaults, last_update, block_timestamp, created_at_block, updated_at)
		VALUES ($1, $2, $3, $4, $5, now())
		ON CONFLICT (id) DO UPDATE SET
			vaults = EXCLUDED.vaults,
			last_update = EXCLUDED.last_update,
			block_timestamp = EXCLUDED.block_timestamp,
			updated_at = now()
	`, state.ID, state.Vaults, state.LastUpdate, state.Timestamp, state.CreatedAtBlock)
	return err
}

func (s *Store) BumpTvlCounter(ctx context.Context) (uint64, error) {
	var count uint64
	row := s.pool.QueryRow(ctx, `
		INSERT INTO tvl_counter (id, length, updated_at)
		VALUES ('1', 1, now())
		ON CONFLICT (id) DO UPDATE SET
			length = tvl_counter.length + 1,
			updated_at = now()
		RETURNING length
	`)
	if err := row.Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (s *Store) AppendPriceFeed(ctx context.Context, feed model.PriceFeed) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO price_feeds (vault_address, price, block_number, block_timestamp, created_at)
		VALUES (lower($1), $2, $3, $4, now())
	`, feed.VaultAddress, feed.Price, int64(feed.BlockNumber), int64(feed.BlockTimestamp))
	return err
}

func (s *Store) AppendTvlSnapshot(ctx context.Context, snapshot model.TvlSnapshot) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO tvl_snapshots (total_tvl, block_number, block_timestamp, created_at)
		VALUES ($1, $2, $3, now())
	`, snapshot.TotalTvl, int64(snapshot.BlockNumber), int64(snapshot.BlockTimestamp))
	return err
}
