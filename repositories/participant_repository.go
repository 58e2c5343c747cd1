package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

var (
	ErrAlreadyRegistered     = errors.New("player is already registered for this tournament")
	ErrParticipantInvalidRef = errors.New("participation references an unknown tournament or player")
)

// ParticipantRepository stores tournament_participants rows.
type ParticipantRepository interface {
	Register(ctx context.Context, exec SQLExecutor, tournamentID, playerID int) error
	Exists(ctx context.Context, exec SQLExecutor, tournamentID, playerID int) (bool, error)
	DeleteByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) error
	DeleteByPlayer(ctx context.Context, exec SQLExecutor, playerID int) error
	// RestoreForTournament brings back trashed participants whose player still exists.
	RestoreForTournament(ctx context.Context, exec SQLExecutor, tournamentID int) error
	// RestoreForPlayer brings back trashed participations whose tournament still exists.
	RestoreForPlayer(ctx context.Context, exec SQLExecutor, playerID int) error
}

type postgresParticipantRepository struct {
	executorHolder
}

func NewPostgresParticipantRepository(db *sql.DB) ParticipantRepository {
	return &postgresParticipantRepository{executorHolder{db: db}}
}

func (r *postgresParticipantRepository) Register(ctx context.Context, exec SQLExecutor, tournamentID, playerID int) error {
	query := `INSERT INTO tournament_participants (tournament_id, player_id) VALUES ($1, $2)`
	if _, err := r.getExecutor(exec).ExecContext(ctx, query, tournamentID, playerID); err != nil {
		switch {
		case isUniqueViolation(err):
			return ErrAlreadyRegistered
		case isForeignKeyViolation(err):
			return ErrParticipantInvalidRef
		}
		return fmt.Errorf("failed to register player %d for tournament %d: %w", playerID, tournamentID, err)
	}
	return nil
}

func (r *postgresParticipantRepository) Exists(ctx context.Context, exec SQLExecutor, tournamentID, playerID int) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM tournament_participants WHERE tournament_id = $1 AND player_id = $2)`
	var exists bool
	if err := r.getExecutor(exec).QueryRowContext(ctx, query, tournamentID, playerID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check participation: %w", err)
	}
	return exists, nil
}

func (r *postgresParticipantRepository) DeleteByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) error {
	return r.moveToTrash(ctx, exec, "tournament_id", tournamentID)
}

func (r *postgresParticipantRepository) DeleteByPlayer(ctx context.Context, exec SQLExecutor, playerID int) error {
	return r.moveToTrash(ctx, exec, "player_id", playerID)
}

func (r *postgresParticipantRepository) moveToTrash(ctx context.Context, exec SQLExecutor, column string, id int) error {
	query := `
		WITH moved AS (
			DELETE FROM tournament_participants WHERE ` + column + ` = $1
			RETURNING tournament_id, player_id, registered_at
		)
		INSERT INTO tournament_participants_backup (tournament_id, player_id, registered_at)
		SELECT tournament_id, player_id, registered_at FROM moved`

	if _, err := r.getExecutor(exec).ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("failed to delete participants by %s %d: %w", column, id, err)
	}
	return nil
}

func (r *postgresParticipantRepository) RestoreForTournament(ctx context.Context, exec SQLExecutor, tournamentID int) error {
	query := `
		WITH popped AS (
			DELETE FROM tournament_participants_backup b
			WHERE b.tournament_id = $1
			  AND EXISTS (SELECT 1 FROM users u WHERE u.id = b.player_id)
			RETURNING b.tournament_id, b.player_id, b.registered_at
		)
		INSERT INTO tournament_participants (tournament_id, player_id, registered_at)
		SELECT tournament_id, player_id, registered_at FROM popped
		ON CONFLICT DO NOTHING`

	if _, err := r.getExecutor(exec).ExecContext(ctx, query, tournamentID); err != nil {
		return fmt.Errorf("failed to restore participants of tournament %d: %w", tournamentID, err)
	}
	return nil
}

func (r *postgresParticipantRepository) RestoreForPlayer(ctx context.Context, exec SQLExecutor, playerID int) error {
	query := `
		WITH popped AS (
			DELETE FROM tournament_participants_backup b
			WHERE b.player_id = $1
			  AND EXISTS (SELECT 1 FROM tournaments t WHERE t.id = b.tournament_id)
			RETURNING b.tournament_id, b.player_id, b.registered_at
		)
		INSERT INTO tournament_participants (tournament_id, player_id, registered_at)
		SELECT tournament_id, player_id, registered_at FROM popped
		ON CONFLICT DO NOTHING`

	if _, err := r.getExecutor(exec).ExecContext(ctx, query, playerID); err != nil {
		return fmt.Errorf("failed to restore participations of player %d: %w", playerID, err)
	}
	return nil
}
