package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Dosada05/gaming-portal/models"
	"github.com/Dosada05/gaming-portal/repositories"
)

type TournamentService interface {
	Create(ctx context.Context, session models.Session, input TournamentInput) (*models.Tournament, error)
	Edit(ctx context.Context, session models.Session, id int, input TournamentInput) (*models.Tournament, error)
	Delete(ctx context.Context, session models.Session, ids []int) error
	Restore(ctx context.Context, session models.Session) (*models.Tournament, error)
	List(ctx context.Context, session models.Session) ([]models.TournamentView, error)
	Register(ctx context.Context, session models.Session, tournamentID int) error
	ListForPlayer(ctx context.Context, session models.Session) ([]models.PlayerTournament, error)
	DeclareWinner(ctx context.Context, session models.Session, tournamentID int, username string) (*models.Tournament, error)
}

type TournamentInput struct {
	Name string `json:"name"`
	Game string `json:"game"`
}

type tournamentService struct {
	tx              repositories.Transactor
	tournamentRepo  repositories.TournamentRepository
	participantRepo repositories.ParticipantRepository
	gameRepo        repositories.GameRepository
	userRepo        repositories.UserRepository
	statsRepo       repositories.StatsRepository
	notifier        ChangeNotifier
	logger          *slog.Logger
}

func NewTournamentService(
	tx repositories.Transactor,
	tournamentRepo repositories.TournamentRepository,
	participantRepo repositories.ParticipantRepository,
	gameRepo repositories.GameRepository,
	userRepo repositories.UserRepository,
	statsRepo repositories.StatsRepository,
	notifier ChangeNotifier,
	logger *slog.Logger,
) TournamentService {
	return &tournamentService{
		tx:              tx,
		tournamentRepo:  tournamentRepo,
		participantRepo: participantRepo,
		gameRepo:        gameRepo,
		userRepo:        userRepo,
		statsRepo:       statsRepo,
		notifier:        notifier,
		logger:          orDiscard(logger),
	}
}

// resolve validates input and maps the game name to its id.
func (s *tournamentService) resolve(ctx context.Context, input TournamentInput) (string, int, error) {
	name, err := required("tournament name", input.Name)
	if err != nil {
		return "", 0, err
	}
	game, err := required("game", input.Game)
	if err != nil {
		return "", 0, err
	}
	gameID, err := s.gameRepo.FindIDByName(ctx, nil, game)
	if err != nil {
		if errors.Is(err, repositories.ErrGameNotFound) {
			return "", 0, fmt.Errorf("%w: %q", ErrGameNotFound, game)
		}
		return "", 0, err
	}
	return name, gameID, nil
}

func (s *tournamentService) Create(ctx context.Context, session models.Session, input TournamentInput) (*models.Tournament, error) {
	if err := requireAdmin(session); err != nil {
		return nil, err
	}
	name, gameID, err := s.resolve(ctx, input)
	if err != nil {
		return nil, err
	}

	t := &models.Tournament{Name: name, GameID: gameID, CreatedBy: session.UserID}
	if err := s.tournamentRepo.Create(ctx, nil, t); err != nil {
		return nil, handleRepositoryError(err)
	}

	s.logger.InfoContext(ctx, "tournament created", slog.Int("tournament_id", t.ID), slog.String("name", t.Name), slog.Int("admin_id", session.UserID))
	notify(s.notifier, models.TopicTournaments, models.ActionCreated, t.ID)
	return t, nil
}

func (s *tournamentService) Edit(ctx context.Context, session models.Session, id int, input TournamentInput) (*models.Tournament, error) {
	if err := requireAdmin(session); err != nil {
		return nil, err
	}
	if err := requireIDs([]int{id}); err != nil {
		return nil, err
	}
	name, gameID, err := s.resolve(ctx, input)
	if err != nil {
		return nil, err
	}

	var updated *models.Tournament
	err = s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		if err := s.tournamentRepo.Update(ctx, exec, &models.Tournament{ID: id, Name: name, GameID: gameID}); err != nil {
			return err
		}
		var err error
		updated, err = s.tournamentRepo.GetByID(ctx, exec, id)
		return err
	})
	if err != nil {
		return nil, handleRepositoryError(err)
	}

	s.logger.InfoContext(ctx, "tournament updated", slog.Int("tournament_id", id), slog.String("name", name))
	notify(s.notifier, models.TopicTournaments, models.ActionUpdated, id)
	return updated, nil
}

// Delete trashes each tournament with its participants. A declared winner
// loses the tournaments_won credit.
func (s *tournamentService) Delete(ctx context.Context, session models.Session, ids []int) error {
	if err := requireAdmin(session); err != nil {
		return err
	}
	if err := requireIDs(ids); err != nil {
		return err
	}

	err := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		for _, id := range ids {
			t, err := s.tournamentRepo.GetByID(ctx, exec, id)
			if err != nil {
				return fmt.Errorf("tournament %d: %w", id, err)
			}
			if err := s.participantRepo.DeleteByTournament(ctx, exec, id); err != nil {
				return err
			}
			if err := s.tournamentRepo.Delete(ctx, exec, id); err != nil {
				return err
			}
			if t.WinnerID != nil {
				if err := s.statsRepo.Adjust(ctx, exec, *t.WinnerID, models.StatsDelta{TournamentsWon: -1}); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return handleRepositoryError(err)
	}

	s.logger.InfoContext(ctx, "tournaments deleted", slog.Any("ids", ids), slog.Int("admin_id", session.UserID))
	notify(s.notifier, models.TopicTournaments, models.ActionDeleted, ids...)
	notify(s.notifier, models.TopicLeaderboard, models.ActionUpdated)
	return nil
}

func (s *tournamentService) Restore(ctx context.Context, session models.Session) (*models.Tournament, error) {
	if err := requireAdmin(session); err != nil {
		return nil, err
	}

	var restored *models.Tournament
	err := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		t, err := s.tournamentRepo.RestoreLatest(ctx, exec)
		if err != nil {
			return err
		}
		restored = t
		if err := s.participantRepo.RestoreForTournament(ctx, exec, t.ID); err != nil {
			return err
		}
		if t.WinnerID != nil {
			return s.statsRepo.Adjust(ctx, exec, *t.WinnerID, models.StatsDelta{TournamentsWon: 1})
		}
		return nil
	})
	if err != nil {
		err = handleRepositoryError(err)
		if errors.Is(err, ErrRestoreBlocked) {
			return nil, s.blocker(ctx)
		}
		return nil, err
	}

	s.logger.InfoContext(ctx, "tournament restored", slog.Int("tournament_id", restored.ID), slog.String("name", restored.Name))
	notify(s.notifier, models.TopicTournaments, models.ActionRestored, restored.ID)
	if restored.WinnerID != nil {
		notify(s.notifier, models.TopicLeaderboard, models.ActionUpdated)
	}
	return restored, nil
}

func (s *tournamentService) blocker(ctx context.Context) error {
	t, err := s.tournamentRepo.PeekLatest(ctx, nil)
	if err != nil {
		return ErrRestoreBlocked
	}
	refs := []int{t.CreatedBy}
	if t.WinnerID != nil {
		refs = append(refs, *t.WinnerID)
	}
	return restoreBlockedBy("tournament", t.ID, missingUsers(ctx, s.userRepo, refs...))
}

func (s *tournamentService) List(ctx context.Context, session models.Session) ([]models.TournamentView, error) {
	if err := requireAdmin(session); err != nil {
		return nil, err
	}
	return s.tournamentRepo.List(ctx, nil)
}

func (s *tournamentService) Register(ctx context.Context, session models.Session, tournamentID int) error {
	if err := requirePlayer(session); err != nil {
		return err
	}
	if err := requireIDs([]int{tournamentID}); err != nil {
		return err
	}

	if err := s.participantRepo.Register(ctx, nil, tournamentID, session.UserID); err != nil {
		if errors.Is(err, repositories.ErrParticipantInvalidRef) {
			return ErrTournamentNotFound
		}
		return handleRepositoryError(err)
	}

	s.logger.InfoContext(ctx, "player registered for tournament", slog.Int("tournament_id", tournamentID), slog.Int("user_id", session.UserID))
	notify(s.notifier, models.TopicTournaments, models.ActionUpdated, tournamentID)
	return nil
}

func (s *tournamentService) ListForPlayer(ctx context.Context, session models.Session) ([]models.PlayerTournament, error) {
	if err := requirePlayer(session); err != nil {
		return nil, err
	}
	return s.tournamentRepo.ListForPlayer(ctx, nil, session.UserID)
}

// DeclareWinner records the winner of a tournament and moves the
// tournaments_won credit from any previously declared winner.
func (s *tournamentService) DeclareWinner(ctx context.Context, session models.Session, tournamentID int, username string) (*models.Tournament, error) {
	if err := requireAdmin(session); err != nil {
		return nil, err
	}
	username, err := required("winner", username)
	if err != nil {
		return nil, err
	}

	winnerID, err := s.userRepo.FindPlayerID(ctx, nil, username)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, fmt.Errorf("%w: %q", ErrPlayerNotFound, username)
		}
		return nil, err
	}

	var updated *models.Tournament
	err = s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		t, err := s.tournamentRepo.GetByID(ctx, exec, tournamentID)
		if err != nil {
			return err
		}
		registered, err := s.participantRepo.Exists(ctx, exec, tournamentID, winnerID)
		if err != nil {
			return err
		}
		if !registered {
			return ErrWinnerNotRegistered
		}
		updated = t
		if t.WinnerID != nil && *t.WinnerID == winnerID {
			return nil
		}
		if t.WinnerID != nil {
			if err := s.statsRepo.Adjust(ctx, exec, *t.WinnerID, models.StatsDelta{TournamentsWon: -1}); err != nil {
				return err
			}
		}
		if err := s.tournamentRepo.SetWinner(ctx, exec, tournamentID, &winnerID); err != nil {
			return err
		}
		if err := s.statsRepo.Adjust(ctx, exec, winnerID, models.StatsDelta{TournamentsWon: 1}); err != nil {
			return err
		}
		updated.WinnerID = &winnerID
		return nil
	})
	if err != nil {
		return nil, handleRepositoryError(err)
	}

	s.logger.InfoContext(ctx, "tournament winner declared", slog.Int("tournament_id", tournamentID), slog.Int("winner_id", winnerID))
	notify(s.notifier, models.TopicTournaments, models.ActionUpdated, tournamentID)
	notify(s.notifier, models.TopicLeaderboard, models.ActionUpdated)
	return updated, nil
}
