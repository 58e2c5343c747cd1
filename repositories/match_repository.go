package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/gaming-portal/models"
)

var (
	ErrMatchNotFound   = errors.New("match not found")
	ErrMatchInvalidRef = errors.New("match references an unknown game or player")
	ErrMatchConstraint = errors.New("match violates a table constraint")
)

type MatchRepository interface {
	Create(ctx context.Context, exec SQLExecutor, match *models.Match) error
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Match, error)
	Update(ctx context.Context, exec SQLExecutor, match *models.Match) error
	Delete(ctx context.Context, exec SQLExecutor, id int) error
	RestoreLatest(ctx context.Context, exec SQLExecutor) (*models.Match, error)
	// PeekLatest returns the match RestoreLatest would pop without moving it.
	PeekLatest(ctx context.Context, exec SQLExecutor) (*models.Match, error)
	List(ctx context.Context, exec SQLExecutor) ([]models.MatchView, error)
}

type postgresMatchRepository struct {
	executorHolder
}

func NewPostgresMatchRepository(db *sql.DB) MatchRepository {
	return &postgresMatchRepository{executorHolder{db: db}}
}

const matchColumns = `id, game_id, player1_id, player2_id, winner_id, match_type, created_at`

func (r *postgresMatchRepository) Create(ctx context.Context, exec SQLExecutor, m *models.Match) error {
	query := `
		INSERT INTO matches (game_id, player1_id, player2_id, winner_id, match_type)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`

	err := r.getExecutor(exec).QueryRowContext(ctx, query,
		m.GameID, m.Player1ID, m.Player2ID, m.WinnerID, m.MatchType,
	).Scan(&m.ID, &m.CreatedAt)
	if err != nil {
		return translateMatchError(err, "create match")
	}
	return nil
}

func (r *postgresMatchRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches WHERE id = $1`
	return scanMatch(r.getExecutor(exec).QueryRowContext(ctx, query, id))
}

func (r *postgresMatchRepository) Update(ctx context.Context, exec SQLExecutor, m *models.Match) error {
	query := `
		UPDATE matches
		SET game_id = $1, player1_id = $2, player2_id = $3, winner_id = $4, match_type = $5
		WHERE id = $6`

	result, err := r.getExecutor(exec).ExecContext(ctx, query,
		m.GameID, m.Player1ID, m.Player2ID, m.WinnerID, m.MatchType, m.ID,
	)
	if err != nil {
		return translateMatchError(err, fmt.Sprintf("update match %d", m.ID))
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) Delete(ctx context.Context, exec SQLExecutor, id int) error {
	query := `
		WITH moved AS (
			DELETE FROM matches WHERE id = $1
			RETURNING ` + matchColumns + `
		)
		INSERT INTO matches_backup (` + matchColumns + `)
		SELECT ` + matchColumns + ` FROM moved`

	result, err := r.getExecutor(exec).ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete match %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

// RestoreLatest pops the most recently trashed match and reinserts it with
// its original id and timestamp.
func (r *postgresMatchRepository) RestoreLatest(ctx context.Context, exec SQLExecutor) (*models.Match, error) {
	query := `
		WITH popped AS (
			DELETE FROM matches_backup
			WHERE backup_id = (
				SELECT backup_id FROM matches_backup
				ORDER BY backup_id DESC
				LIMIT 1
			)
			RETURNING ` + matchColumns + `
		)
		INSERT INTO matches (` + matchColumns + `)
		SELECT ` + matchColumns + ` FROM popped
		RETURNING ` + matchColumns

	m, err := scanMatch(r.getExecutor(exec).QueryRowContext(ctx, query))
	if err != nil {
		if errors.Is(err, ErrMatchNotFound) {
			return nil, ErrNothingToRestore
		}
		return nil, translateMatchError(err, "restore match")
	}
	return m, nil
}

func (r *postgresMatchRepository) PeekLatest(ctx context.Context, exec SQLExecutor) (*models.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches_backup ORDER BY backup_id DESC LIMIT 1`

	m, err := scanMatch(r.getExecutor(exec).QueryRowContext(ctx, query))
	if err != nil {
		if errors.Is(err, ErrMatchNotFound) {
			return nil, ErrNothingToRestore
		}
		return nil, fmt.Errorf("failed to peek match trash: %w", err)
	}
	return m, nil
}

func (r *postgresMatchRepository) List(ctx context.Context, exec SQLExecutor) ([]models.MatchView, error) {
	query := `
		SELECT m.id, g.name, p1.username, p2.username, w.username, m.match_type
		FROM matches m
		JOIN games g ON m.game_id = g.id
		JOIN users p1 ON m.player1_id = p1.id
		JOIN users p2 ON m.player2_id = p2.id
		JOIN users w ON m.winner_id = w.id
		ORDER BY m.created_at DESC, m.id DESC`

	rows, err := r.getExecutor(exec).QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches: %w", err)
	}
	defer rows.Close()

	views := make([]models.MatchView, 0)
	for rows.Next() {
		var v models.MatchView
		if err := rows.Scan(&v.ID, &v.Game, &v.Player1, &v.Player2, &v.Winner, &v.MatchType); err != nil {
			return nil, fmt.Errorf("failed to scan match row: %w", err)
		}
		views = append(views, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating match rows: %w", err)
	}
	return views, nil
}

func scanMatch(row *sql.Row) (*models.Match, error) {
	m := &models.Match{}
	err := row.Scan(&m.ID, &m.GameID, &m.Player1ID, &m.Player2ID, &m.WinnerID, &m.MatchType, &m.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, err
	}
	return m, nil
}

func translateMatchError(err error, action string) error {
	switch {
	case isForeignKeyViolation(err):
		return ErrMatchInvalidRef
	case isCheckViolation(err):
		return ErrMatchConstraint
	}
	return fmt.Errorf("failed to %s: %w", action, err)
}
