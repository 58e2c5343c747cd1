package services

import (
	"context"
	"log/slog"

	"github.com/Dosada05/gaming-portal/models"
	"github.com/Dosada05/gaming-portal/repositories"
)

type TeamService interface {
	// Create makes the caller the first member of a new team.
	Create(ctx context.Context, session models.Session, name string) (*models.Team, error)
	Join(ctx context.Context, session models.Session, name string) (*models.Team, error)
	List(ctx context.Context) ([]models.Team, error)
}

type teamService struct {
	tx       repositories.Transactor
	teamRepo repositories.TeamRepository
	notifier ChangeNotifier
	logger   *slog.Logger
}

func NewTeamService(tx repositories.Transactor, teamRepo repositories.TeamRepository, notifier ChangeNotifier, logger *slog.Logger) TeamService {
	return &teamService{
		tx:       tx,
		teamRepo: teamRepo,
		notifier: notifier,
		logger:   orDiscard(logger),
	}
}

func (s *teamService) Create(ctx context.Context, session models.Session, name string) (*models.Team, error) {
	if err := requirePlayer(session); err != nil {
		return nil, err
	}
	name, err := required("team name", name)
	if err != nil {
		return nil, err
	}

	team := &models.Team{Name: name}
	err = s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		if err := s.teamRepo.Create(ctx, exec, team); err != nil {
			return err
		}
		return s.teamRepo.AddMember(ctx, exec, team.ID, session.UserID)
	})
	if err != nil {
		return nil, handleRepositoryError(err)
	}
	team.MemberCount = 1

	s.logger.InfoContext(ctx, "team created", slog.Int("team_id", team.ID), slog.String("name", team.Name), slog.Int("user_id", session.UserID))
	notify(s.notifier, models.TopicTeams, models.ActionCreated, team.ID)
	return team, nil
}

func (s *teamService) Join(ctx context.Context, session models.Session, name string) (*models.Team, error) {
	if err := requirePlayer(session); err != nil {
		return nil, err
	}
	name, err := required("team name", name)
	if err != nil {
		return nil, err
	}

	teamID, err := s.teamRepo.FindIDByName(ctx, nil, name)
	if err != nil {
		return nil, handleRepositoryError(err)
	}
	if err := s.teamRepo.AddMember(ctx, nil, teamID, session.UserID); err != nil {
		return nil, handleRepositoryError(err)
	}

	s.logger.InfoContext(ctx, "player joined team", slog.Int("team_id", teamID), slog.Int("user_id", session.UserID))
	notify(s.notifier, models.TopicTeams, models.ActionUpdated, teamID)
	return &models.Team{ID: teamID, Name: name}, nil
}

func (s *teamService) List(ctx context.Context) ([]models.Team, error) {
	return s.teamRepo.List(ctx, nil)
}
