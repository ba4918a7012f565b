package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/draymottishaw/college-assisted-explorer/internal/metrics"
	"github.com/draymottishaw/college-assisted-explorer/internal/store"
)

// ErrNotFound is returned when no persisted row matches.
var ErrNotFound = errors.New("not found")

// careerColumns is the column order used for COPY and SELECT.
var careerColumns = []string{
	"dataset", "player_lower", "player", "team", "first_season", "last_season",
	"rim_made", "rim_miss", "rim_ast",
	"mid_made", "mid_miss", "mid_ast",
	"three_made", "three_miss", "three_ast",
	"dunk_made", "dunk_miss", "dunk_ast",
	"role", "class_year", "height", "position", "derived", "run_id",
}

// CareerRepository persists derived career rows
type CareerRepository struct {
	db *store.Database
}

// NewCareerRepository creates a new career repository
func NewCareerRepository(db *store.Database) *CareerRepository {
	return &CareerRepository{db: db}
}

// ReplaceDataset swaps every stored row of a dataset for rows and records
// the run, in one transaction.
func (r *CareerRepository) ReplaceDataset(ctx context.Context, run store.DeriveRun, rows []metrics.CareerRow) error {
	tx, err := r.db.DB().BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM career_rows WHERE dataset = $1`, run.Dataset); err != nil {
		return fmt.Errorf("clearing dataset %s: %w", run.Dataset, err)
	}

	stmt, err := tx.PrepareContext(ctx, pq.CopyIn("career_rows", careerColumns...))
	if err != nil {
		return fmt.Errorf("preparing copy: %w", err)
	}

	for i := range rows {
		row := &rows[i]
		derived, err := json.Marshal(row.Derived)
		if err != nil {
			stmt.Close()
			return fmt.Errorf("encoding derived columns for %s: %w", row.Key, err)
		}

		_, err = stmt.ExecContext(ctx,
			run.Dataset, row.Key.String(), row.Player, row.Team,
			nullSeason(row.FirstSeason), nullSeason(row.LastSeason),
			row.RimMade, row.RimMiss, row.RimAst,
			row.MidMade, row.MidMiss, row.MidAst,
			row.ThreeMade, row.ThreeMiss, row.ThreeAst,
			row.DunkMade, row.DunkMiss, row.DunkAst,
			row.Role, row.Year, row.Height, row.Position,
			string(derived), run.RunID,
		)
		if err != nil {
			stmt.Close()
			return fmt.Errorf("copying %s: %w", row.Key, err)
		}
	}

	// An empty Exec flushes the COPY buffer.
	if _, err := stmt.ExecContext(ctx); err != nil {
		stmt.Close()
		return fmt.Errorf("flushing copy: %w", err)
	}
	if err := stmt.Close(); err != nil {
		return fmt.Errorf("closing copy: %w", err)
	}

	gaps := run.Gaps
	if len(gaps) == 0 {
		gaps = json.RawMessage("[]")
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO derive_runs (run_id, dataset, first_season, last_season, seasons_loaded,
			season_records, players, gaps, started_at, finished_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, run.RunID, run.Dataset, run.FirstSeason, run.LastSeason, run.SeasonsLoaded,
		run.SeasonRecords, run.Players, string(gaps), run.StartedAt, run.FinishedAt)
	if err != nil {
		return fmt.Errorf("recording run: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing dataset %s: %w", run.Dataset, err)
	}
	return nil
}

// ListDataset returns every stored row of a dataset, ordered by key.
// Derived columns are recomputed from the stored counts.
func (r *CareerRepository) ListDataset(ctx context.Context, dataset string) ([]metrics.CareerRow, error) {
	query := `
		SELECT player_lower, player, team, first_season, last_season,
			rim_made, rim_miss, rim_ast, mid_made, mid_miss, mid_ast,
			three_made, three_miss, three_ast, dunk_made, dunk_miss, dunk_ast,
			role, class_year, height, position
		FROM career_rows
		WHERE dataset = $1
		ORDER BY player_lower
	`

	rows, err := r.db.DB().QueryContext(ctx, query, dataset)
	if err != nil {
		return nil, fmt.Errorf("querying dataset %s: %w", dataset, err)
	}
	defer rows.Close()

	return r.scanCareerRows(rows)
}

// GetByKey finds one player's stored row
func (r *CareerRepository) GetByKey(ctx context.Context, dataset string, key metrics.PlayerKey) (*metrics.CareerRow, error) {
	query := `
		SELECT player_lower, player, team, first_season, last_season,
			rim_made, rim_miss, rim_ast, mid_made, mid_miss, mid_ast,
			three_made, three_miss, three_ast, dunk_made, dunk_miss, dunk_ast,
			role, class_year, height, position
		FROM career_rows
		WHERE dataset = $1 AND player_lower = $2
	`

	rows, err := r.db.DB().QueryContext(ctx, query, dataset, key.String())
	if err != nil {
		return nil, fmt.Errorf("querying player: %w", err)
	}
	defer rows.Close()

	found, err := r.scanCareerRows(rows)
	if err != nil {
		return nil, err
	}
	if len(found) == 0 {
		return nil, fmt.Errorf("player %q in %s: %w", key, dataset, ErrNotFound)
	}
	return &found[0], nil
}

// LatestRun returns the most recent persisted run of a dataset
func (r *CareerRepository) LatestRun(ctx context.Context, dataset string) (*store.DeriveRun, error) {
	query := `
		SELECT run_id, dataset, first_season, last_season, seasons_loaded,
			season_records, players, gaps, started_at, finished_at
		FROM derive_runs
		WHERE dataset = $1
		ORDER BY finished_at DESC
		LIMIT 1
	`

	run := &store.DeriveRun{}
	var gaps []byte
	err := r.db.DB().QueryRowContext(ctx, query, dataset).Scan(
		&run.RunID, &run.Dataset, &run.FirstSeason, &run.LastSeason, &run.SeasonsLoaded,
		&run.SeasonRecords, &run.Players, &gaps, &run.StartedAt, &run.FinishedAt,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("run for %s: %w", dataset, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("querying latest run: %w", err)
	}
	run.Gaps = json.RawMessage(gaps)

	return run, nil
}

// scanCareerRows is a helper to scan multiple career rows
func (r *CareerRepository) scanCareerRows(rows *sql.Rows) ([]metrics.CareerRow, error) {
	var out []metrics.CareerRow
	for rows.Next() {
		var (
			row         metrics.CareerRow
			key         string
			first, last sql.NullInt32
		)
		err := rows.Scan(
			&key, &row.Player, &row.Team, &first, &last,
			&row.RimMade, &row.RimMiss, &row.RimAst,
			&row.MidMade, &row.MidMiss, &row.MidAst,
			&row.ThreeMade, &row.ThreeMiss, &row.ThreeAst,
			&row.DunkMade, &row.DunkMiss, &row.DunkAst,
			&row.Role, &row.Year, &row.Height, &row.Position,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning career row: %w", err)
		}
		row.Key = metrics.PlayerKey(key)
		row.FirstSeason = int(first.Int32)
		row.LastSeason = int(last.Int32)
		row.Recompute()
		out = append(out, row)
	}

	return out, rows.Err()
}

func nullSeason(season int) sql.NullInt32 {
	return sql.NullInt32{Int32: int32(season), Valid: season != 0}
}
