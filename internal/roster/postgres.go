package roster

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

// PostgresService implements Service against pool and roster tables. The
// roster insert is keyed on (team_id, player_id), so replays of the same
// commit are no-ops rather than duplicates.
type PostgresService struct {
	pool *pgxpool.Pool
}

var _ Service = (*PostgresService)(nil)

// NewPostgresService creates a roster service over a pgx pool.
func NewPostgresService(pool *pgxpool.Pool) *PostgresService {
	return &PostgresService{pool: pool}
}

// Schema is the DDL this service expects.
const Schema = `
CREATE TABLE IF NOT EXISTS pool_players (
    pool_ref  TEXT NOT NULL,
    player_id UUID NOT NULL,
    status    TEXT NOT NULL DEFAULT 'AVAILABLE',
    PRIMARY KEY (pool_ref, player_id)
);
CREATE TABLE IF NOT EXISTS team_rosters (
    team_id     UUID NOT NULL,
    player_id   UUID NOT NULL,
    added_by    UUID NOT NULL,
    acquired_at TIMESTAMPTZ NOT NULL DEFAULT now(),
    PRIMARY KEY (team_id, player_id)
);
`

// CommitDraftedPlayer marks the player rostered in the pool and inserts the
// roster row in one transaction. Domain failures (player not in the pool)
// come back inside CommitResult; only infrastructure failures return error.
func (s *PostgresService) CommitDraftedPlayer(ctx context.Context, sourcePoolRef string, playerID, destinationTeamID, performedBy uuid.UUID) (CommitResult, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return CommitResult{}, fmt.Errorf("failed to begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	// Already rostered on the destination team: idempotent success.
	var alreadyRostered bool
	if err := tx.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM team_rosters WHERE team_id = $1 AND player_id = $2)`,
		destinationTeamID, playerID,
	).Scan(&alreadyRostered); err != nil {
		return CommitResult{}, fmt.Errorf("failed to check roster: %w", err)
	}
	if alreadyRostered {
		return CommitResult{Success: true}, nil
	}

	tag, err := tx.Exec(ctx,
		`UPDATE pool_players SET status = 'ROSTERED'
		 WHERE pool_ref = $1 AND player_id = $2 AND status = 'AVAILABLE'`,
		sourcePoolRef, playerID)
	if err != nil {
		return CommitResult{}, fmt.Errorf("failed to update pool player: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return CommitResult{
			Error: fmt.Sprintf("player %s not available in pool %s", playerID, sourcePoolRef),
		}, nil
	}

	if _, err := tx.Exec(ctx,
		`INSERT INTO team_rosters (team_id, player_id, added_by) VALUES ($1, $2, $3)
		 ON CONFLICT (team_id, player_id) DO NOTHING`,
		destinationTeamID, playerID, performedBy); err != nil {
		return CommitResult{}, fmt.Errorf("failed to insert roster row: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return CommitResult{}, fmt.Errorf("failed to commit: %w", err)
	}

	log.Info().
		Str("pool_ref", sourcePoolRef).
		Str("player_id", playerID.String()).
		Str("team_id", destinationTeamID.String()).
		Msg("committed drafted player to roster")
	return CommitResult{Success: true}, nil
}
