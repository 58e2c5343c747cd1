package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Dosada05/gaming-portal/models"
	"github.com/Dosada05/gaming-portal/repositories"
	"github.com/Dosada05/gaming-portal/utils"
)

type PlayerService interface {
	Register(ctx context.Context, input RegisterInput) (*models.User, error)
	Delete(ctx context.Context, session models.Session, ids []int) error
	Restore(ctx context.Context, session models.Session) (*models.User, error)
	List(ctx context.Context, session models.Session) ([]models.PlayerOverview, error)
	Leaderboard(ctx context.Context) ([]models.LeaderboardEntry, error)
	Profile(ctx context.Context, session models.Session) (*models.PlayerProfile, error)
}

type RegisterInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type playerService struct {
	tx              repositories.Transactor
	userRepo        repositories.UserRepository
	statsRepo       repositories.StatsRepository
	playerGameRepo  repositories.PlayerGameRepository
	teamRepo        repositories.TeamRepository
	participantRepo repositories.ParticipantRepository
	notifier        ChangeNotifier
	logger          *slog.Logger
}

func NewPlayerService(
	tx repositories.Transactor,
	userRepo repositories.UserRepository,
	statsRepo repositories.StatsRepository,
	playerGameRepo repositories.PlayerGameRepository,
	teamRepo repositories.TeamRepository,
	participantRepo repositories.ParticipantRepository,
	notifier ChangeNotifier,
	logger *slog.Logger,
) PlayerService {
	return &playerService{
		tx:              tx,
		userRepo:        userRepo,
		statsRepo:       statsRepo,
		playerGameRepo:  playerGameRepo,
		teamRepo:        teamRepo,
		participantRepo: participantRepo,
		notifier:        notifier,
		logger:          orDiscard(logger),
	}
}

func (s *playerService) Register(ctx context.Context, input RegisterInput) (*models.User, error) {
	username, err := required("username", input.Username)
	if err != nil {
		return nil, err
	}
	if input.Password == "" {
		return nil, fmt.Errorf("%w: password is required", ErrValidationFailed)
	}

	if _, err := s.userRepo.GetByUsername(ctx, nil, username); err == nil {
		return nil, ErrUsernameTaken
	} else if !errors.Is(err, repositories.ErrUserNotFound) {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}

	hash, err := utils.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{Username: username, Password: hash, Role: models.RolePlayer}
	err = s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		if err := s.userRepo.Create(ctx, exec, user); err != nil {
			return err
		}
		return s.statsRepo.Create(ctx, exec, user.ID)
	})
	if err != nil {
		return nil, handleRepositoryError(err)
	}

	s.logger.InfoContext(ctx, "player registered", slog.Int("user_id", user.ID), slog.String("username", user.Username))
	notify(s.notifier, models.TopicPlayers, models.ActionCreated, user.ID)
	notify(s.notifier, models.TopicLeaderboard, models.ActionUpdated)
	return user, nil
}

// Delete moves each player and all rows that depend on it to the trash.
// Either every id is deleted or none is.
func (s *playerService) Delete(ctx context.Context, session models.Session, ids []int) error {
	if err := requireAdmin(session); err != nil {
		return err
	}
	if err := requireIDs(ids); err != nil {
		return err
	}

	err := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		for _, id := range ids {
			if err := s.deleteOne(ctx, exec, id); err != nil {
				return fmt.Errorf("player %d: %w", id, err)
			}
		}
		return nil
	})
	if err != nil {
		return handleRepositoryError(err)
	}

	s.logger.InfoContext(ctx, "players deleted", slog.Any("ids", ids), slog.Int("admin_id", session.UserID))
	notify(s.notifier, models.TopicPlayers, models.ActionDeleted, ids...)
	notify(s.notifier, models.TopicLeaderboard, models.ActionUpdated)
	return nil
}

func (s *playerService) deleteOne(ctx context.Context, exec repositories.SQLExecutor, id int) error {
	user, err := s.userRepo.GetByID(ctx, exec, id)
	if err != nil {
		return err
	}
	if user.Role != models.RolePlayer {
		return ErrPlayerNotFound
	}
	if err := s.statsRepo.Delete(ctx, exec, id); err != nil {
		return err
	}
	if err := s.playerGameRepo.DeleteByPlayer(ctx, exec, id, repositories.MoveToTrash); err != nil {
		return err
	}
	if err := s.teamRepo.DeleteMembershipsByPlayer(ctx, exec, id); err != nil {
		return err
	}
	if err := s.participantRepo.DeleteByPlayer(ctx, exec, id); err != nil {
		return err
	}
	return s.userRepo.Delete(ctx, exec, id)
}

// Restore brings back the most recently deleted player together with its
// trashed stats, game affinities, team memberships and participations.
func (s *playerService) Restore(ctx context.Context, session models.Session) (*models.User, error) {
	if err := requireAdmin(session); err != nil {
		return nil, err
	}

	var restored *models.User
	err := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		user, err := s.userRepo.RestoreLatest(ctx, exec)
		if err != nil {
			return err
		}
		restored = user

		if err := s.statsRepo.RestoreForPlayer(ctx, exec, user.ID); err != nil {
			return err
		}
		if user.Role == models.RolePlayer {
			if _, err := s.statsRepo.Get(ctx, exec, user.ID); errors.Is(err, repositories.ErrStatsNotFound) {
				if err := s.statsRepo.Create(ctx, exec, user.ID); err != nil {
					return err
				}
			} else if err != nil {
				return err
			}
		}
		if err := s.playerGameRepo.RestoreForPlayer(ctx, exec, user.ID); err != nil {
			return err
		}
		if err := s.teamRepo.RestoreMembershipsForPlayer(ctx, exec, user.ID); err != nil {
			return err
		}
		return s.participantRepo.RestoreForPlayer(ctx, exec, user.ID)
	})
	if err != nil {
		return nil, handleRepositoryError(err)
	}

	s.logger.InfoContext(ctx, "player restored", slog.Int("user_id", restored.ID), slog.String("username", restored.Username))
	notify(s.notifier, models.TopicPlayers, models.ActionRestored, restored.ID)
	notify(s.notifier, models.TopicLeaderboard, models.ActionUpdated)
	return restored, nil
}

func (s *playerService) List(ctx context.Context, session models.Session) ([]models.PlayerOverview, error) {
	if err := requireAdmin(session); err != nil {
		return nil, err
	}
	return s.userRepo.ListPlayers(ctx, nil)
}

func (s *playerService) Leaderboard(ctx context.Context) ([]models.LeaderboardEntry, error) {
	return s.statsRepo.Leaderboard(ctx, nil)
}

func (s *playerService) Profile(ctx context.Context, session models.Session) (*models.PlayerProfile, error) {
	if err := requirePlayer(session); err != nil {
		return nil, err
	}
	profile, err := s.statsRepo.Profile(ctx, nil, session.UserID)
	if err != nil {
		if errors.Is(err, repositories.ErrStatsNotFound) {
			return nil, ErrPlayerNotFound
		}
		return nil, err
	}
	return profile, nil
}
