package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/gaming-portal/models"
)

var (
	ErrTournamentNotFound     = errors.New("tournament not found")
	ErrTournamentNameConflict = errors.New("tournament name conflict")
	ErrTournamentInvalidRef   = errors.New("tournament references an unknown game or user")
)

type TournamentRepository interface {
	Create(ctx context.Context, exec SQLExecutor, tournament *models.Tournament) error
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Tournament, error)
	// Update rewrites name and game of an existing tournament.
	Update(ctx context.Context, exec SQLExecutor, tournament *models.Tournament) error
	SetWinner(ctx context.Context, exec SQLExecutor, id int, winnerID *int) error
	Delete(ctx context.Context, exec SQLExecutor, id int) error
	RestoreLatest(ctx context.Context, exec SQLExecutor) (*models.Tournament, error)
	PeekLatest(ctx context.Context, exec SQLExecutor) (*models.Tournament, error)
	List(ctx context.Context, exec SQLExecutor) ([]models.TournamentView, error)
	ListForPlayer(ctx context.Context, exec SQLExecutor, playerID int) ([]models.PlayerTournament, error)
}

type postgresTournamentRepository struct {
	executorHolder
}

func NewPostgresTournamentRepository(db *sql.DB) TournamentRepository {
	return &postgresTournamentRepository{executorHolder{db: db}}
}

const tournamentColumns = `id, name, game_id, created_by, created_at, winner_id`

func (r *postgresTournamentRepository) Create(ctx context.Context, exec SQLExecutor, t *models.Tournament) error {
	query := `
		INSERT INTO tournaments (name, game_id, created_by)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`

	err := r.getExecutor(exec).QueryRowContext(ctx, query, t.Name, t.GameID, t.CreatedBy).Scan(&t.ID, &t.CreatedAt)
	if err != nil {
		return translateTournamentError(err, "create tournament")
	}
	return nil
}

func (r *postgresTournamentRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Tournament, error) {
	query := `SELECT ` + tournamentColumns + ` FROM tournaments WHERE id = $1`
	return scanTournament(r.getExecutor(exec).QueryRowContext(ctx, query, id))
}

func (r *postgresTournamentRepository) Update(ctx context.Context, exec SQLExecutor, t *models.Tournament) error {
	query := `UPDATE tournaments SET name = $1, game_id = $2 WHERE id = $3`
	result, err := r.getExecutor(exec).ExecContext(ctx, query, t.Name, t.GameID, t.ID)
	if err != nil {
		return translateTournamentError(err, fmt.Sprintf("update tournament %d", t.ID))
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *postgresTournamentRepository) SetWinner(ctx context.Context, exec SQLExecutor, id int, winnerID *int) error {
	query := `UPDATE tournaments SET winner_id = $1 WHERE id = $2`
	result, err := r.getExecutor(exec).ExecContext(ctx, query, winnerID, id)
	if err != nil {
		return translateTournamentError(err, fmt.Sprintf("set winner of tournament %d", id))
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

// Delete moves the tournament row into tournaments_backup. Participants
// must be moved first.
func (r *postgresTournamentRepository) Delete(ctx context.Context, exec SQLExecutor, id int) error {
	query := `
		WITH moved AS (
			DELETE FROM tournaments WHERE id = $1
			RETURNING ` + tournamentColumns + `
		)
		INSERT INTO tournaments_backup (` + tournamentColumns + `)
		SELECT ` + tournamentColumns + ` FROM moved`

	result, err := r.getExecutor(exec).ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete tournament %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *postgresTournamentRepository) RestoreLatest(ctx context.Context, exec SQLExecutor) (*models.Tournament, error) {
	query := `
		WITH popped AS (
			DELETE FROM tournaments_backup
			WHERE backup_id = (
				SELECT backup_id FROM tournaments_backup
				ORDER BY backup_id DESC
				LIMIT 1
			)
			RETURNING ` + tournamentColumns + `
		)
		INSERT INTO tournaments (` + tournamentColumns + `)
		SELECT ` + tournamentColumns + ` FROM popped
		RETURNING ` + tournamentColumns

	t, err := scanTournament(r.getExecutor(exec).QueryRowContext(ctx, query))
	if err != nil {
		if errors.Is(err, ErrTournamentNotFound) {
			return nil, ErrNothingToRestore
		}
		return nil, translateTournamentError(err, "restore tournament")
	}
	return t, nil
}

func (r *postgresTournamentRepository) PeekLatest(ctx context.Context, exec SQLExecutor) (*models.Tournament, error) {
	query := `SELECT ` + tournamentColumns + ` FROM tournaments_backup ORDER BY backup_id DESC LIMIT 1`

	t, err := scanTournament(r.getExecutor(exec).QueryRowContext(ctx, query))
	if err != nil {
		if errors.Is(err, ErrTournamentNotFound) {
			return nil, ErrNothingToRestore
		}
		return nil, fmt.Errorf("failed to peek tournament trash: %w", err)
	}
	return t, nil
}

func (r *postgresTournamentRepository) List(ctx context.Context, exec SQLExecutor) ([]models.TournamentView, error) {
	query := `
		SELECT t.id, t.name, g.name, u.username, w.username
		FROM tournaments t
		JOIN games g ON t.game_id = g.id
		JOIN users u ON t.created_by = u.id
		LEFT JOIN users w ON t.winner_id = w.id
		ORDER BY t.created_at DESC, t.id DESC`

	rows, err := r.getExecutor(exec).QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list tournaments: %w", err)
	}
	defer rows.Close()

	views := make([]models.TournamentView, 0)
	for rows.Next() {
		var v models.TournamentView
		var winner sql.NullString
		if err := rows.Scan(&v.ID, &v.Name, &v.Game, &v.CreatedBy, &winner); err != nil {
			return nil, fmt.Errorf("failed to scan tournament row: %w", err)
		}
		if winner.Valid {
			v.Winner = &winner.String
		}
		views = append(views, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tournament rows: %w", err)
	}
	return views, nil
}

func (r *postgresTournamentRepository) ListForPlayer(ctx context.Context, exec SQLExecutor, playerID int) ([]models.PlayerTournament, error) {
	query := `
		SELECT t.id, t.name, g.name,
			CASE WHEN tp.player_id IS NULL THEN $2::text ELSE $3::text END
		FROM tournaments t
		JOIN games g ON t.game_id = g.id
		JOIN player_games pg ON pg.game_id = t.game_id AND pg.player_id = $1
		LEFT JOIN tournament_participants tp ON tp.tournament_id = t.id AND tp.player_id = $1
		ORDER BY t.name ASC`

	rows, err := r.getExecutor(exec).QueryContext(ctx, query, playerID, models.StatusAvailable, models.StatusRegistered)
	if err != nil {
		return nil, fmt.Errorf("failed to list tournaments for player %d: %w", playerID, err)
	}
	defer rows.Close()

	items := make([]models.PlayerTournament, 0)
	for rows.Next() {
		var it models.PlayerTournament
		if err := rows.Scan(&it.TournamentID, &it.Name, &it.Game, &it.Status); err != nil {
			return nil, fmt.Errorf("failed to scan player tournament row: %w", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating player tournament rows: %w", err)
	}
	return items, nil
}

func scanTournament(row *sql.Row) (*models.Tournament, error) {
	t := &models.Tournament{}
	var winner sql.NullInt64
	err := row.Scan(&t.ID, &t.Name, &t.GameID, &t.CreatedBy, &t.CreatedAt, &winner)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}
	if winner.Valid {
		id := int(winner.Int64)
		t.WinnerID = &id
	}
	return t, nil
}

func translateTournamentError(err error, action string) error {
	switch {
	case isUniqueViolation(err):
		return ErrTournamentNameConflict
	case isForeignKeyViolation(err):
		return ErrTournamentInvalidRef
	}
	return fmt.Errorf("failed to %s: %w", action, err)
}
