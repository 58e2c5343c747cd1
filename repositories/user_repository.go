package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/gaming-portal/models"
	"github.com/lib/pq"
)

var (
	ErrUserNotFound         = errors.New("user not found")
	ErrUserUsernameConflict = errors.New("user username conflict")
	ErrUserInUse            = errors.New("user is still referenced by matches or tournaments")
)

type UserRepository interface {
	Create(ctx context.Context, exec SQLExecutor, user *models.User) error
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.User, error)
	GetByUsername(ctx context.Context, exec SQLExecutor, username string) (*models.User, error)
	// FindPlayerID resolves a username to the id of a user with the player role.
	FindPlayerID(ctx context.Context, exec SQLExecutor, username string) (int, error)
	ListPlayers(ctx context.Context, exec SQLExecutor) ([]models.PlayerOverview, error)
	Delete(ctx context.Context, exec SQLExecutor, id int) error
	RestoreLatest(ctx context.Context, exec SQLExecutor) (*models.User, error)
}

type postgresUserRepository struct {
	executorHolder
}

func NewPostgresUserRepository(db *sql.DB) UserRepository {
	return &postgresUserRepository{executorHolder{db: db}}
}

// Create inserts a new user. A username still held by a trashed user is
// reported as a conflict so the trashed row stays restorable.
func (r *postgresUserRepository) Create(ctx context.Context, exec SQLExecutor, user *models.User) error {
	query := `
		INSERT INTO users (username, password, role)
		SELECT $1::VARCHAR, $2::TEXT, $3::VARCHAR
		WHERE NOT EXISTS (SELECT 1 FROM users_backup WHERE username = $1::VARCHAR)
		RETURNING id, created_at`

	err := r.getExecutor(exec).QueryRowContext(ctx, query,
		user.Username,
		user.Password,
		user.Role,
	).Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) || errors.Is(err, sql.ErrNoRows) {
			return ErrUserUsernameConflict
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (r *postgresUserRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.User, error) {
	query := `SELECT id, username, password, role, created_at FROM users WHERE id = $1`
	return r.scanUser(r.getExecutor(exec).QueryRowContext(ctx, query, id))
}

func (r *postgresUserRepository) GetByUsername(ctx context.Context, exec SQLExecutor, username string) (*models.User, error) {
	query := `SELECT id, username, password, role, created_at FROM users WHERE username = $1`
	return r.scanUser(r.getExecutor(exec).QueryRowContext(ctx, query, username))
}

func (r *postgresUserRepository) FindPlayerID(ctx context.Context, exec SQLExecutor, username string) (int, error) {
	query := `SELECT id FROM users WHERE username = $1 AND role = $2`
	var id int
	err := r.getExecutor(exec).QueryRowContext(ctx, query, username, models.RolePlayer).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrUserNotFound
		}
		return 0, fmt.Errorf("failed to resolve player %q: %w", username, err)
	}
	return id, nil
}

func (r *postgresUserRepository) ListPlayers(ctx context.Context, exec SQLExecutor) ([]models.PlayerOverview, error) {
	query := `
		SELECT
			u.id, u.username,
			ARRAY_REMOVE(ARRAY_AGG(DISTINCT g.name), NULL) AS games,
			ARRAY_REMOVE(ARRAY_AGG(DISTINCT t.name), NULL) AS teams,
			COALESCE(ps.tournaments_won, 0),
			COALESCE(ps.matches_won, 0),
			COALESCE(ps.total_matches, 0)
		FROM users u
		LEFT JOIN player_games pg ON u.id = pg.player_id
		LEFT JOIN games g ON pg.game_id = g.id
		LEFT JOIN team_members tm ON u.id = tm.player_id
		LEFT JOIN teams t ON tm.team_id = t.id
		LEFT JOIN player_stats ps ON u.id = ps.player_id
		WHERE u.role = $1
		GROUP BY u.id, u.username, ps.tournaments_won, ps.matches_won, ps.total_matches
		ORDER BY u.id`

	rows, err := r.getExecutor(exec).QueryContext(ctx, query, models.RolePlayer)
	if err != nil {
		return nil, fmt.Errorf("failed to list players: %w", err)
	}
	defer rows.Close()

	players := make([]models.PlayerOverview, 0)
	for rows.Next() {
		var p models.PlayerOverview
		var games, teams pq.StringArray
		if err := rows.Scan(&p.ID, &p.Username, &games, &teams, &p.TournamentsWon, &p.MatchesWon, &p.TotalMatches); err != nil {
			return nil, fmt.Errorf("failed to scan player row: %w", err)
		}
		p.Games = append([]string{}, games...)
		p.Teams = append([]string{}, teams...)
		players = append(players, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating player rows: %w", err)
	}
	return players, nil
}

// Delete moves the user row into users_backup. Dependent rows must already
// be gone; a remaining reference surfaces as ErrUserInUse.
func (r *postgresUserRepository) Delete(ctx context.Context, exec SQLExecutor, id int) error {
	query := `
		WITH moved AS (
			DELETE FROM users WHERE id = $1
			RETURNING id, username, password, role, created_at
		)
		INSERT INTO users_backup (id, username, password, role, created_at)
		SELECT id, username, password, role, created_at FROM moved`

	result, err := r.getExecutor(exec).ExecContext(ctx, query, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return ErrUserInUse
		}
		return fmt.Errorf("failed to delete user %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrUserNotFound)
}

func (r *postgresUserRepository) RestoreLatest(ctx context.Context, exec SQLExecutor) (*models.User, error) {
	query := `
		WITH popped AS (
			DELETE FROM users_backup
			WHERE backup_id = (
				SELECT backup_id FROM users_backup
				ORDER BY backup_id DESC
				LIMIT 1
			)
			RETURNING id, username, password, role, created_at
		)
		INSERT INTO users (id, username, password, role, created_at)
		SELECT id, username, password, role, created_at FROM popped
		RETURNING id, username, password, role, created_at`

	user, err := r.scanUser(r.getExecutor(exec).QueryRowContext(ctx, query))
	if err != nil {
		switch {
		case errors.Is(err, ErrUserNotFound):
			return nil, ErrNothingToRestore
		case isUniqueViolation(err):
			return nil, ErrUserUsernameConflict
		}
		return nil, err
	}
	return user, nil
}

func (r *postgresUserRepository) scanUser(row *sql.Row) (*models.User, error) {
	user := &models.User{}
	err := row.Scan(&user.ID, &user.Username, &user.Password, &user.Role, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}
