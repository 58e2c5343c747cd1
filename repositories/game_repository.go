package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/gaming-portal/models"
)

var (
	ErrGameNotFound     = errors.New("game not found")
	ErrGameNameConflict = errors.New("game name conflict")
)

type GameRepository interface {
	Create(ctx context.Context, exec SQLExecutor, game *models.Game) error
	FindIDByName(ctx context.Context, exec SQLExecutor, name string) (int, error)
	List(ctx context.Context, exec SQLExecutor) ([]models.Game, error)
}

type postgresGameRepository struct {
	executorHolder
}

func NewPostgresGameRepository(db *sql.DB) GameRepository {
	return &postgresGameRepository{executorHolder{db: db}}
}

func (r *postgresGameRepository) Create(ctx context.Context, exec SQLExecutor, game *models.Game) error {
	query := `INSERT INTO games (name) VALUES ($1) RETURNING id`
	err := r.getExecutor(exec).QueryRowContext(ctx, query, game.Name).Scan(&game.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrGameNameConflict
		}
		return fmt.Errorf("failed to create game: %w", err)
	}
	return nil
}

func (r *postgresGameRepository) FindIDByName(ctx context.Context, exec SQLExecutor, name string) (int, error) {
	var id int
	err := r.getExecutor(exec).QueryRowContext(ctx, `SELECT id FROM games WHERE name = $1`, name).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrGameNotFound
		}
		return 0, fmt.Errorf("failed to resolve game %q: %w", name, err)
	}
	return id, nil
}

func (r *postgresGameRepository) List(ctx context.Context, exec SQLExecutor) ([]models.Game, error) {
	return queryGames(ctx, r.getExecutor(exec), `SELECT id, name FROM games ORDER BY name ASC`)
}

func queryGames(ctx context.Context, exec SQLExecutor, query string, args ...interface{}) ([]models.Game, error) {
	rows, err := exec.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list games: %w", err)
	}
	defer rows.Close()

	games := make([]models.Game, 0)
	for rows.Next() {
		var g models.Game
		if err := rows.Scan(&g.ID, &g.Name); err != nil {
			return nil, fmt.Errorf("failed to scan game row: %w", err)
		}
		games = append(games, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating game rows: %w", err)
	}
	return games, nil
}
