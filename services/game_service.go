package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Dosada05/gaming-portal/models"
	"github.com/Dosada05/gaming-portal/repositories"
)

type GameService interface {
	// ReplacePlayerGames swaps the caller's affinity set for names. The old
	// set is dropped without going through the trash.
	ReplacePlayerGames(ctx context.Context, session models.Session, names []string) ([]string, error)
	ListPlayerGames(ctx context.Context, session models.Session) ([]string, error)
	ListGames(ctx context.Context) ([]models.Game, error)
	CreateGame(ctx context.Context, session models.Session, name string) (*models.Game, error)
}

type gameService struct {
	tx             repositories.Transactor
	gameRepo       repositories.GameRepository
	playerGameRepo repositories.PlayerGameRepository
	notifier       ChangeNotifier
	logger         *slog.Logger
}

func NewGameService(
	tx repositories.Transactor,
	gameRepo repositories.GameRepository,
	playerGameRepo repositories.PlayerGameRepository,
	notifier ChangeNotifier,
	logger *slog.Logger,
) GameService {
	return &gameService{
		tx:             tx,
		gameRepo:       gameRepo,
		playerGameRepo: playerGameRepo,
		notifier:       notifier,
		logger:         orDiscard(logger),
	}
}

func (s *gameService) ReplacePlayerGames(ctx context.Context, session models.Session, names []string) ([]string, error) {
	if err := requirePlayer(session); err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(names))
	distinct := make([]string, 0, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		distinct = append(distinct, n)
	}

	var current []string
	err := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		if err := s.playerGameRepo.DeleteByPlayer(ctx, exec, session.UserID, repositories.SkipTrash); err != nil {
			return err
		}
		for _, name := range distinct {
			gameID, err := s.gameRepo.FindIDByName(ctx, exec, name)
			if err != nil {
				if errors.Is(err, repositories.ErrGameNotFound) {
					return fmt.Errorf("%w: %q", ErrGameNotFound, name)
				}
				return err
			}
			if err := s.playerGameRepo.Add(ctx, exec, session.UserID, gameID); err != nil {
				return err
			}
		}
		var err error
		current, err = s.playerGameRepo.ListByPlayer(ctx, exec, session.UserID)
		return err
	})
	if err != nil {
		if errors.Is(err, ErrGameNotFound) {
			return nil, err
		}
		return nil, handleRepositoryError(err)
	}

	s.logger.InfoContext(ctx, "player games replaced", slog.Int("user_id", session.UserID), slog.Any("games", current))
	notify(s.notifier, models.TopicPlayers, models.ActionUpdated, session.UserID)
	return current, nil
}

func (s *gameService) ListPlayerGames(ctx context.Context, session models.Session) ([]string, error) {
	if err := requirePlayer(session); err != nil {
		return nil, err
	}
	return s.playerGameRepo.ListByPlayer(ctx, nil, session.UserID)
}

func (s *gameService) ListGames(ctx context.Context) ([]models.Game, error) {
	return s.gameRepo.List(ctx, nil)
}

func (s *gameService) CreateGame(ctx context.Context, session models.Session, name string) (*models.Game, error) {
	if err := requireAdmin(session); err != nil {
		return nil, err
	}
	name, err := required("name", name)
	if err != nil {
		return nil, err
	}

	game := &models.Game{Name: name}
	if err := s.gameRepo.Create(ctx, nil, game); err != nil {
		return nil, handleRepositoryError(err)
	}

	s.logger.InfoContext(ctx, "game created", slog.Int("game_id", game.ID), slog.String("name", game.Name))
	notify(s.notifier, models.TopicGames, models.ActionCreated, game.ID)
	return game, nil
}
