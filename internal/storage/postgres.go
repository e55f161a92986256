package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/devsec-labs/cloudsentry/internal/models"
)

const schema = `
CREATE TABLE IF NOT EXISTS alerts (
	id             BIGSERIAL PRIMARY KEY,
	resource_id    TEXT NOT NULL,
	resource_type  TEXT NOT NULL,
	provider       TEXT NOT NULL,
	policy_id      TEXT NOT NULL,
	account_id     TEXT NOT NULL DEFAULT '',
	region         TEXT NOT NULL DEFAULT '',
	severity       TEXT NOT NULL,
	title          TEXT NOT NULL,
	description    TEXT NOT NULL DEFAULT '',
	status         TEXT NOT NULL DEFAULT 'OPEN',
	details        JSONB,
	recommendation TEXT NOT NULL DEFAULT '',
	created_at     TIMESTAMPTZ NOT NULL,
	updated_at     TIMESTAMPTZ NOT NULL,
	first_seen_at  TIMESTAMPTZ NOT NULL,
	last_seen_at   TIMESTAMPTZ NOT NULL
);

CREATE UNIQUE INDEX IF NOT EXISTS alerts_open_dedup_idx
	ON alerts (provider, resource_id, policy_id) WHERE status = 'OPEN';

CREATE INDEX IF NOT EXISTS alerts_created_at_idx ON alerts (created_at);

CREATE TABLE IF NOT EXISTS assets (
	asset_id      TEXT PRIMARY KEY,
	asset_type    TEXT NOT NULL,
	provider      TEXT NOT NULL,
	account_id    TEXT NOT NULL DEFAULT '',
	region        TEXT NOT NULL DEFAULT '',
	configuration JSONB,
	updated_at    TIMESTAMPTZ NOT NULL
);
`

const alertColumns = `id, resource_id, resource_type, provider, policy_id, account_id, region,
	severity, title, description, status, details, recommendation,
	created_at, updated_at, first_seen_at, last_seen_at`

// PostgresStore implements AlertStore and AssetStore on a pgx pool.
// The OPEN-dedup invariant is enforced twice: by the row lock taken inside
// the upsert transaction and by the partial unique index above, so two
// concurrent upserts for the same key can never both insert.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore connects to dsn and verifies the connection.
func NewPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

// Init creates the alert and asset tables and indexes.
func (s *PostgresStore) Init(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// Close releases the connection pool.
func (s *PostgresStore) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// UpsertAlert implements AlertStore. A unique-violation race (another upsert
// inserted the OPEN row between our check and insert) is retried once as an
// update against the winner's row.
func (s *PostgresStore) UpsertAlert(ctx context.Context, draft models.AlertDraft) (models.Alert, error) {
	alert, err := s.tryUpsert(ctx, draft)
	if isUniqueViolation(err) {
		return s.tryUpsert(ctx, draft)
	}
	return alert, err
}

func (s *PostgresStore) tryUpsert(ctx context.Context, draft models.AlertDraft) (models.Alert, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return models.Alert{}, fmt.Errorf("begin upsert: %w", err)
	}
	defer tx.Rollback(ctx)

	details, err := detailsJSON(draft.Details)
	if err != nil {
		return models.Alert{}, fmt.Errorf("encode details: %w", err)
	}

	existing, err := scanAlert(tx.QueryRow(ctx, `
		SELECT `+alertColumns+`
		FROM alerts
		WHERE provider = $1 AND resource_id = $2 AND policy_id = $3 AND status = 'OPEN'
		FOR UPDATE`,
		draft.Provider, draft.ResourceID, draft.PolicyID,
	))

	var alert models.Alert
	switch {
	case err == nil:
		// Repeat detection: refresh mutable fields to the latest observed
		// state, advance last_seen_at, leave status and creation times alone.
		alert, err = scanAlert(tx.QueryRow(ctx, `
			UPDATE alerts
			SET severity = $1, title = $2, description = $3, details = $4,
			    recommendation = $5, updated_at = now(), last_seen_at = now()
			WHERE id = $6
			RETURNING `+alertColumns,
			draft.Severity, draft.Title, draft.Description, details,
			draft.Recommendation, existing.ID,
		))
		if err != nil {
			return models.Alert{}, fmt.Errorf("refresh alert %d: %w", existing.ID, err)
		}
	case errors.Is(err, pgx.ErrNoRows):
		alert, err = scanAlert(tx.QueryRow(ctx, `
			INSERT INTO alerts (resource_id, resource_type, provider, policy_id,
				account_id, region, severity, title, description, status,
				details, recommendation, created_at, updated_at, first_seen_at, last_seen_at)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,'OPEN',$10,$11,now(),now(),now(),now())
			RETURNING `+alertColumns,
			draft.ResourceID, draft.ResourceType, draft.Provider, draft.PolicyID,
			draft.AccountID, draft.Region, draft.Severity, draft.Title,
			draft.Description, details, draft.Recommendation,
		))
		if err != nil {
			return models.Alert{}, fmt.Errorf("insert alert: %w", err)
		}
	default:
		return models.Alert{}, fmt.Errorf("query open alert: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return models.Alert{}, fmt.Errorf("commit upsert: %w", err)
	}
	return alert, nil
}

// GetAlert implements AlertStore.
func (s *PostgresStore) GetAlert(ctx context.Context, id int64) (models.Alert, error) {
	alert, err := scanAlert(s.pool.QueryRow(ctx,
		`SELECT `+alertColumns+` FROM alerts WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Alert{}, ErrNotFound
	}
	return alert, err
}

// ListAlerts implements AlertStore.
func (s *PostgresStore) ListAlerts(ctx context.Context, filter AlertFilter) ([]models.Alert, error) {
	filter.Normalize()
	query, args := buildListQuery(filter)

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list alerts: %w", err)
	}
	defer rows.Close()

	alerts := []models.Alert{}
	for rows.Next() {
		alert, err := scanAlert(rows)
		if err != nil {
			return nil, fmt.Errorf("scan alert: %w", err)
		}
		alerts = append(alerts, alert)
	}
	return alerts, rows.Err()
}

// UpdateAlertStatus implements AlertStore. Any known status may transition to
// any other.
func (s *PostgresStore) UpdateAlertStatus(ctx context.Context, id int64, status models.AlertStatus) (models.Alert, error) {
	alert, err := scanAlert(s.pool.QueryRow(ctx, `
		UPDATE alerts SET status = $1, updated_at = now()
		WHERE id = $2
		RETURNING `+alertColumns,
		status, id,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Alert{}, ErrNotFound
	}
	return alert, err
}

// UpdateAlertDetails implements AlertStore. Nil patch fields keep the stored
// value.
func (s *PostgresStore) UpdateAlertDetails(ctx context.Context, id int64, patch AlertPatch) (models.Alert, error) {
	details, err := detailsJSON(patch.Details)
	if err != nil {
		return models.Alert{}, fmt.Errorf("encode details: %w", err)
	}
	alert, err := scanAlert(s.pool.QueryRow(ctx, `
		UPDATE alerts SET
			severity       = COALESCE($1, severity),
			title          = COALESCE($2, title),
			description    = COALESCE($3, description),
			details        = COALESCE($4, details),
			recommendation = COALESCE($5, recommendation),
			updated_at     = now()
		WHERE id = $6
		RETURNING `+alertColumns,
		patch.Severity, patch.Title, patch.Description, details, patch.Recommendation, id,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Alert{}, ErrNotFound
	}
	return alert, err
}

// DeleteAlert implements AlertStore and returns the deleted row.
func (s *PostgresStore) DeleteAlert(ctx context.Context, id int64) (models.Alert, error) {
	alert, err := scanAlert(s.pool.QueryRow(ctx,
		`DELETE FROM alerts WHERE id = $1 RETURNING `+alertColumns, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Alert{}, ErrNotFound
	}
	return alert, err
}

// UpsertAsset implements AssetStore, last-write-wins by asset_id.
func (s *PostgresStore) UpsertAsset(ctx context.Context, asset models.Asset) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO assets (asset_id, asset_type, provider, account_id, region, configuration, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,now())
		ON CONFLICT (asset_id) DO UPDATE SET
			asset_type = EXCLUDED.asset_type,
			provider = EXCLUDED.provider,
			account_id = EXCLUDED.account_id,
			region = EXCLUDED.region,
			configuration = EXCLUDED.configuration,
			updated_at = now()`,
		asset.AssetID, asset.AssetType, asset.Provider, asset.AccountID, asset.Region, asset.Configuration,
	)
	if err != nil {
		return fmt.Errorf("upsert asset %q: %w", asset.AssetID, err)
	}
	return nil
}

// buildListQuery renders the filtered, sorted, paginated SELECT for a
// normalized filter. Sort columns are whitelisted by Normalize, so the
// ORDER BY interpolation is safe.
func buildListQuery(f AlertFilter) (string, []any) {
	var (
		sb    strings.Builder
		conds []string
		args  []any
	)
	sb.WriteString(`SELECT ` + alertColumns + ` FROM alerts`)

	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if f.Provider != "" {
		add("provider = $%d", f.Provider)
	}
	if f.Severity != "" {
		add("severity = $%d", string(f.Severity))
	}
	if f.Status != "" {
		add("status = $%d", string(f.Status))
	}
	if f.ResourceID != "" {
		add("resource_id ILIKE $%d", "%"+f.ResourceID+"%")
	}
	if f.PolicyID != "" {
		add("policy_id = $%d", f.PolicyID)
	}
	if f.AccountID != "" {
		add("account_id = $%d", f.AccountID)
	}
	if f.Region != "" {
		add("region = $%d", f.Region)
	}
	if f.CreatedFrom != nil {
		add("created_at >= $%d", *f.CreatedFrom)
	}
	if f.CreatedTo != nil {
		add("created_at <= $%d", *f.CreatedTo)
	}
	if len(conds) > 0 {
		sb.WriteString(" WHERE " + strings.Join(conds, " AND "))
	}

	dir := "ASC"
	if f.SortDesc {
		dir = "DESC"
	}
	sb.WriteString(fmt.Sprintf(" ORDER BY %s %s, id %s", f.SortBy, dir, dir))

	args = append(args, f.Limit)
	sb.WriteString(fmt.Sprintf(" LIMIT $%d", len(args)))
	args = append(args, f.Skip)
	sb.WriteString(fmt.Sprintf(" OFFSET $%d", len(args)))

	return sb.String(), args
}

// scanAlert reads one alert row; details round-trips through raw JSON so a
// NULL column becomes a nil map.
func scanAlert(row pgx.Row) (models.Alert, error) {
	var (
		a       models.Alert
		details []byte
	)
	err := row.Scan(
		&a.ID, &a.ResourceID, &a.ResourceType, &a.Provider, &a.PolicyID,
		&a.AccountID, &a.Region, &a.Severity, &a.Title, &a.Description,
		&a.Status, &details, &a.Recommendation,
		&a.CreatedAt, &a.UpdatedAt, &a.FirstSeenAt, &a.LastSeenAt,
	)
	if err != nil {
		return models.Alert{}, err
	}
	if len(details) > 0 {
		if err := json.Unmarshal(details, &a.Details); err != nil {
			return models.Alert{}, fmt.Errorf("decode details for alert %d: %w", a.ID, err)
		}
	}
	return a, nil
}

func detailsJSON(details map[string]any) ([]byte, error) {
	if details == nil {
		return nil, nil
	}
	return json.Marshal(details)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
