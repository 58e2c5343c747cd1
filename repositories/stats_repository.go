package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/gaming-portal/models"
)

var (
	ErrStatsNotFound      = errors.New("player stats not found")
	ErrStatsPlayerInvalid = errors.New("player stats conflict or invalid player")
)

type StatsRepository interface {
	Create(ctx context.Context, exec SQLExecutor, playerID int) error
	Get(ctx context.Context, exec SQLExecutor, playerID int) (*models.PlayerStats, error)
	// Adjust applies delta relative to the stored counters.
	Adjust(ctx context.Context, exec SQLExecutor, playerID int, delta models.StatsDelta) error
	Delete(ctx context.Context, exec SQLExecutor, playerID int) error
	RestoreForPlayer(ctx context.Context, exec SQLExecutor, playerID int) error
	Leaderboard(ctx context.Context, exec SQLExecutor) ([]models.LeaderboardEntry, error)
	Profile(ctx context.Context, exec SQLExecutor, playerID int) (*models.PlayerProfile, error)
}

type postgresStatsRepository struct {
	executorHolder
}

func NewPostgresStatsRepository(db *sql.DB) StatsRepository {
	return &postgresStatsRepository{executorHolder{db: db}}
}

func (r *postgresStatsRepository) Create(ctx context.Context, exec SQLExecutor, playerID int) error {
	query := `INSERT INTO player_stats (player_id, tournaments_won, matches_won, total_matches) VALUES ($1, 0, 0, 0)`
	_, err := r.getExecutor(exec).ExecContext(ctx, query, playerID)
	if err != nil {
		if isUniqueViolation(err) || isForeignKeyViolation(err) {
			return ErrStatsPlayerInvalid
		}
		return fmt.Errorf("failed to create stats for player %d: %w", playerID, err)
	}
	return nil
}

func (r *postgresStatsRepository) Get(ctx context.Context, exec SQLExecutor, playerID int) (*models.PlayerStats, error) {
	query := `SELECT player_id, tournaments_won, matches_won, total_matches FROM player_stats WHERE player_id = $1`
	var s models.PlayerStats
	err := r.getExecutor(exec).QueryRowContext(ctx, query, playerID).Scan(
		&s.PlayerID, &s.TournamentsWon, &s.MatchesWon, &s.TotalMatches,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrStatsNotFound
		}
		return nil, fmt.Errorf("failed to get stats for player %d: %w", playerID, err)
	}
	return &s, nil
}

func (r *postgresStatsRepository) Adjust(ctx context.Context, exec SQLExecutor, playerID int, delta models.StatsDelta) error {
	if delta.IsZero() {
		return nil
	}
	query := `
		UPDATE player_stats SET
			tournaments_won = tournaments_won + $1,
			matches_won = matches_won + $2,
			total_matches = total_matches + $3
		WHERE player_id = $4`

	result, err := r.getExecutor(exec).ExecContext(ctx, query,
		delta.TournamentsWon, delta.MatchesWon, delta.TotalMatches, playerID,
	)
	if err != nil {
		return fmt.Errorf("failed to adjust stats for player %d: %w", playerID, err)
	}
	return checkAffectedRows(result, ErrStatsNotFound)
}

func (r *postgresStatsRepository) Delete(ctx context.Context, exec SQLExecutor, playerID int) error {
	query := `
		WITH moved AS (
			DELETE FROM player_stats WHERE player_id = $1
			RETURNING player_id, tournaments_won, matches_won, total_matches
		)
		INSERT INTO player_stats_backup (player_id, tournaments_won, matches_won, total_matches)
		SELECT player_id, tournaments_won, matches_won, total_matches FROM moved`

	if _, err := r.getExecutor(exec).ExecContext(ctx, query, playerID); err != nil {
		return fmt.Errorf("failed to delete stats for player %d: %w", playerID, err)
	}
	return nil
}

func (r *postgresStatsRepository) RestoreForPlayer(ctx context.Context, exec SQLExecutor, playerID int) error {
	query := `
		WITH popped AS (
			DELETE FROM player_stats_backup
			WHERE player_id = $1
			RETURNING backup_id, player_id, tournaments_won, matches_won, total_matches
		)
		INSERT INTO player_stats (player_id, tournaments_won, matches_won, total_matches)
		SELECT DISTINCT ON (player_id) player_id, tournaments_won, matches_won, total_matches
		FROM popped
		ORDER BY player_id, backup_id DESC
		ON CONFLICT (player_id) DO NOTHING`

	if _, err := r.getExecutor(exec).ExecContext(ctx, query, playerID); err != nil {
		return fmt.Errorf("failed to restore stats for player %d: %w", playerID, err)
	}
	return nil
}

func (r *postgresStatsRepository) Leaderboard(ctx context.Context, exec SQLExecutor) ([]models.LeaderboardEntry, error) {
	query := `
		SELECT u.username, ps.tournaments_won, ps.matches_won, ps.total_matches
		FROM users u
		JOIN player_stats ps ON u.id = ps.player_id
		WHERE u.role = $1
		ORDER BY ps.tournaments_won DESC, ps.matches_won DESC, u.username ASC`

	rows, err := r.getExecutor(exec).QueryContext(ctx, query, models.RolePlayer)
	if err != nil {
		return nil, fmt.Errorf("failed to query leaderboard: %w", err)
	}
	defer rows.Close()

	entries := make([]models.LeaderboardEntry, 0)
	for rows.Next() {
		var e models.LeaderboardEntry
		if err := rows.Scan(&e.Username, &e.TournamentsWon, &e.MatchesWon, &e.TotalMatches); err != nil {
			return nil, fmt.Errorf("failed to scan leaderboard row: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating leaderboard rows: %w", err)
	}
	return entries, nil
}

func (r *postgresStatsRepository) Profile(ctx context.Context, exec SQLExecutor, playerID int) (*models.PlayerProfile, error) {
	query := `
		SELECT u.id, u.username, ps.tournaments_won, ps.matches_won, ps.total_matches
		FROM users u
		JOIN player_stats ps ON u.id = ps.player_id
		WHERE u.id = $1`

	var p models.PlayerProfile
	err := r.getExecutor(exec).QueryRowContext(ctx, query, playerID).Scan(
		&p.PlayerID, &p.Username, &p.TournamentsWon, &p.MatchesWon, &p.TotalMatches,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrStatsNotFound
		}
		return nil, fmt.Errorf("failed to get profile for player %d: %w", playerID, err)
	}
	return &p, nil
}
