package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

var ErrPlayerGameInvalid = errors.New("player game affinity conflict or invalid reference")

// PlayerGameRepository stores the player_games affinity set.
type PlayerGameRepository interface {
	ListByPlayer(ctx context.Context, exec SQLExecutor, playerID int) ([]string, error)
	Add(ctx context.Context, exec SQLExecutor, playerID, gameID int) error
	DeleteByPlayer(ctx context.Context, exec SQLExecutor, playerID int, policy TrashPolicy) error
	RestoreForPlayer(ctx context.Context, exec SQLExecutor, playerID int) error
}

type postgresPlayerGameRepository struct {
	executorHolder
}

func NewPostgresPlayerGameRepository(db *sql.DB) PlayerGameRepository {
	return &postgresPlayerGameRepository{executorHolder{db: db}}
}

func (r *postgresPlayerGameRepository) ListByPlayer(ctx context.Context, exec SQLExecutor, playerID int) ([]string, error) {
	query := `
		SELECT g.name
		FROM player_games pg
		JOIN games g ON pg.game_id = g.id
		WHERE pg.player_id = $1
		ORDER BY g.name ASC`

	rows, err := r.getExecutor(exec).QueryContext(ctx, query, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list games of player %d: %w", playerID, err)
	}
	defer rows.Close()

	names := make([]string, 0)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan player game row: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating player game rows: %w", err)
	}
	return names, nil
}

func (r *postgresPlayerGameRepository) Add(ctx context.Context, exec SQLExecutor, playerID, gameID int) error {
	query := `INSERT INTO player_games (player_id, game_id) VALUES ($1, $2)`
	if _, err := r.getExecutor(exec).ExecContext(ctx, query, playerID, gameID); err != nil {
		if isUniqueViolation(err) || isForeignKeyViolation(err) {
			return ErrPlayerGameInvalid
		}
		return fmt.Errorf("failed to add game %d to player %d: %w", gameID, playerID, err)
	}
	return nil
}

func (r *postgresPlayerGameRepository) DeleteByPlayer(ctx context.Context, exec SQLExecutor, playerID int, policy TrashPolicy) error {
	query := `DELETE FROM player_games WHERE player_id = $1`
	if policy == MoveToTrash {
		query = `
			WITH moved AS (
				DELETE FROM player_games WHERE player_id = $1
				RETURNING player_id, game_id
			)
			INSERT INTO player_games_backup (player_id, game_id)
			SELECT player_id, game_id FROM moved`
	}
	if _, err := r.getExecutor(exec).ExecContext(ctx, query, playerID); err != nil {
		return fmt.Errorf("failed to delete games of player %d: %w", playerID, err)
	}
	return nil
}

func (r *postgresPlayerGameRepository) RestoreForPlayer(ctx context.Context, exec SQLExecutor, playerID int) error {
	query := `
		WITH popped AS (
			DELETE FROM player_games_backup b
			WHERE b.player_id = $1
			  AND EXISTS (SELECT 1 FROM games g WHERE g.id = b.game_id)
			RETURNING b.player_id, b.game_id
		)
		INSERT INTO player_games (player_id, game_id)
		SELECT DISTINCT player_id, game_id FROM popped
		ON CONFLICT DO NOTHING`

	if _, err := r.getExecutor(exec).ExecContext(ctx, query, playerID); err != nil {
		return fmt.Errorf("failed to restore games of player %d: %w", playerID, err)
	}
	return nil
}
