package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/gaming-portal/models"
)

var (
	ErrTeamNotFound       = errors.New("team not found")
	ErrTeamNameConflict   = errors.New("team name conflict")
	ErrTeamMemberConflict = errors.New("player is already a member of this team")
	ErrTeamMemberInvalid  = errors.New("team member references an unknown team or player")
)

type TeamRepository interface {
	Create(ctx context.Context, exec SQLExecutor, team *models.Team) error
	FindIDByName(ctx context.Context, exec SQLExecutor, name string) (int, error)
	List(ctx context.Context, exec SQLExecutor) ([]models.Team, error)
	AddMember(ctx context.Context, exec SQLExecutor, teamID, playerID int) error
	DeleteMembershipsByPlayer(ctx context.Context, exec SQLExecutor, playerID int) error
	RestoreMembershipsForPlayer(ctx context.Context, exec SQLExecutor, playerID int) error
}

type postgresTeamRepository struct {
	executorHolder
}

func NewPostgresTeamRepository(db *sql.DB) TeamRepository {
	return &postgresTeamRepository{executorHolder{db: db}}
}

func (r *postgresTeamRepository) Create(ctx context.Context, exec SQLExecutor, team *models.Team) error {
	query := `INSERT INTO teams (name) VALUES ($1) RETURNING id, created_at`
	err := r.getExecutor(exec).QueryRowContext(ctx, query, team.Name).Scan(&team.ID, &team.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrTeamNameConflict
		}
		return fmt.Errorf("failed to create team: %w", err)
	}
	return nil
}

func (r *postgresTeamRepository) FindIDByName(ctx context.Context, exec SQLExecutor, name string) (int, error) {
	var id int
	err := r.getExecutor(exec).QueryRowContext(ctx, `SELECT id FROM teams WHERE name = $1`, name).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrTeamNotFound
		}
		return 0, fmt.Errorf("failed to resolve team %q: %w", name, err)
	}
	return id, nil
}

func (r *postgresTeamRepository) List(ctx context.Context, exec SQLExecutor) ([]models.Team, error) {
	query := `
		SELECT t.id, t.name, t.created_at, COUNT(tm.player_id)
		FROM teams t
		LEFT JOIN team_members tm ON t.id = tm.team_id
		GROUP BY t.id, t.name, t.created_at
		ORDER BY t.name ASC`

	rows, err := r.getExecutor(exec).QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}
	defer rows.Close()

	teams := make([]models.Team, 0)
	for rows.Next() {
		var t models.Team
		if err := rows.Scan(&t.ID, &t.Name, &t.CreatedAt, &t.MemberCount); err != nil {
			return nil, fmt.Errorf("failed to scan team row: %w", err)
		}
		teams = append(teams, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating team rows: %w", err)
	}
	return teams, nil
}

func (r *postgresTeamRepository) AddMember(ctx context.Context, exec SQLExecutor, teamID, playerID int) error {
	query := `INSERT INTO team_members (team_id, player_id) VALUES ($1, $2)`
	if _, err := r.getExecutor(exec).ExecContext(ctx, query, teamID, playerID); err != nil {
		switch {
		case isUniqueViolation(err):
			return ErrTeamMemberConflict
		case isForeignKeyViolation(err):
			return ErrTeamMemberInvalid
		}
		return fmt.Errorf("failed to add player %d to team %d: %w", playerID, teamID, err)
	}
	return nil
}

func (r *postgresTeamRepository) DeleteMembershipsByPlayer(ctx context.Context, exec SQLExecutor, playerID int) error {
	query := `
		WITH moved AS (
			DELETE FROM team_members WHERE player_id = $1
			RETURNING team_id, player_id, joined_at
		)
		INSERT INTO team_members_backup (team_id, player_id, joined_at)
		SELECT team_id, player_id, joined_at FROM moved`

	if _, err := r.getExecutor(exec).ExecContext(ctx, query, playerID); err != nil {
		return fmt.Errorf("failed to delete team memberships of player %d: %w", playerID, err)
	}
	return nil
}

// RestoreMembershipsForPlayer brings back trashed memberships whose team
// still exists; the rest stay in team_members_backup.
func (r *postgresTeamRepository) RestoreMembershipsForPlayer(ctx context.Context, exec SQLExecutor, playerID int) error {
	query := `
		WITH popped AS (
			DELETE FROM team_members_backup b
			WHERE b.player_id = $1
			  AND EXISTS (SELECT 1 FROM teams t WHERE t.id = b.team_id)
			RETURNING b.team_id, b.player_id, b.joined_at
		)
		INSERT INTO team_members (team_id, player_id, joined_at)
		SELECT team_id, player_id, joined_at FROM popped
		ON CONFLICT DO NOTHING`

	if _, err := r.getExecutor(exec).ExecContext(ctx, query, playerID); err != nil {
		return fmt.Errorf("failed to restore team memberships of player %d: %w", playerID, err)
	}
	return nil
}
