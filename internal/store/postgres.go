package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/expdeck/expdeck/internal/variantset"
)

// PostgresStore is a PostgreSQL implementation of the Store interface.
// Variant pairs and override maps are stored as jsonb.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgreSQL-backed store.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const experimentColumns = `key, description, owner, enabled, variants, num_buckets, bucket_by, expression, overrides, starts_at, ends_at, env, updated_at`

// GetAllExperiments retrieves all experiments for the given environment.
func (p *PostgresStore) GetAllExperiments(ctx context.Context, env string) ([]Experiment, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT `+experimentColumns+` FROM experiments WHERE env = $1 ORDER BY key`, env)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	experiments := make([]Experiment, 0)
	for rows.Next() {
		exp, err := scanExperiment(rows)
		if err != nil {
			return nil, err
		}
		experiments = append(experiments, exp)
	}
	return experiments, rows.Err()
}

// GetExperimentByKey retrieves a single experiment by its key.
func (p *PostgresStore) GetExperimentByKey(ctx context.Context, key string) (*Experiment, error) {
	row := p.pool.QueryRow(ctx,
		`SELECT `+experimentColumns+` FROM experiments WHERE key = $1`, key)

	exp, err := scanExperiment(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &exp, nil
}

// UpsertExperiment creates or updates an experiment.
func (p *PostgresStore) UpsertExperiment(ctx context.Context, params UpsertParams) error {
	variantsJSON, err := json.Marshal(params.Variants)
	if err != nil {
		return err
	}
	overridesJSON, err := json.Marshal(params.Overrides)
	if err != nil {
		return err
	}

	_, err = p.pool.Exec(ctx, `
		INSERT INTO experiments (key, description, owner, enabled, variants, num_buckets, bucket_by, expression, overrides, starts_at, ends_at, env, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, now())
		ON CONFLICT (key, env) DO UPDATE SET
			description = EXCLUDED.description,
			owner       = EXCLUDED.owner,
			enabled     = EXCLUDED.enabled,
			variants    = EXCLUDED.variants,
			num_buckets = EXCLUDED.num_buckets,
			bucket_by   = EXCLUDED.bucket_by,
			expression  = EXCLUDED.expression,
			overrides   = EXCLUDED.overrides,
			starts_at   = EXCLUDED.starts_at,
			ends_at     = EXCLUDED.ends_at,
			updated_at  = now()`,
		params.Key,
		params.Description,
		params.Owner,
		params.Enabled,
		variantsJSON,
		params.NumBuckets,
		params.BucketBy,
		params.Expression,
		overridesJSON,
		toTimestamptz(params.StartsAt),
		toTimestamptz(params.EndsAt),
		params.Env,
	)
	return err
}

// DeleteExperiment removes an experiment by key and environment.
func (p *PostgresStore) DeleteExperiment(ctx context.Context, key, env string) error {
	_, err := p.pool.Exec(ctx,
		`DELETE FROM experiments WHERE key = $1 AND env = $2`, key, env)
	return err
}

// Close closes the database connection pool.
func (p *PostgresStore) Close() error {
	p.pool.Close()
	return nil
}

func toTimestamptz(t *time.Time) pgtype.Timestamptz {
	if t == nil {
		return pgtype.Timestamptz{}
	}
	return pgtype.Timestamptz{Time: *t, Valid: true}
}

func fromTimestamptz(t pgtype.Timestamptz) *time.Time {
	if !t.Valid {
		return nil
	}
	ts := t.Time
	return &ts
}

func scanExperiment(row pgx.Row) (Experiment, error) {
	var (
		exp           Experiment
		description   pgtype.Text
		owner         pgtype.Text
		variantsJSON  []byte
		overridesJSON []byte
		startsAt      pgtype.Timestamptz
		endsAt        pgtype.Timestamptz
		updatedAt     pgtype.Timestamptz
	)

	err := row.Scan(
		&exp.Key,
		&description,
		&owner,
		&exp.Enabled,
		&variantsJSON,
		&exp.NumBuckets,
		&exp.BucketBy,
		&exp.Expression,
		&overridesJSON,
		&startsAt,
		&endsAt,
		&exp.Env,
		&updatedAt,
	)
	if err != nil {
		return Experiment{}, err
	}

	exp.Description = description.String
	exp.Owner = owner.String
	if len(variantsJSON) > 0 {
		var variants []variantset.Variant
		if err := json.Unmarshal(variantsJSON, &variants); err != nil {
			return Experiment{}, err
		}
		exp.Variants = variants
	}
	if len(overridesJSON) > 0 {
		var overrides map[string]string
		if err := json.Unmarshal(overridesJSON, &overrides); err != nil {
			return Experiment{}, err
		}
		exp.Overrides = overrides
	}
	exp.StartsAt = fromTimestamptz(startsAt)
	exp.EndsAt = fromTimestamptz(endsAt)
	exp.UpdatedAt = updatedAt.Time
	return exp, nil
}
