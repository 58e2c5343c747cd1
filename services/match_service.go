package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/Dosada05/gaming-portal/models"
	"github.com/Dosada05/gaming-portal/repositories"
)

type MatchService interface {
	Create(ctx context.Context, session models.Session, input MatchInput) (*models.Match, error)
	Edit(ctx context.Context, session models.Session, id int, input MatchInput) (*models.Match, error)
	Delete(ctx context.Context, session models.Session, ids []int) error
	Restore(ctx context.Context, session models.Session) (*models.Match, error)
	List(ctx context.Context, session models.Session) ([]models.MatchView, error)
}

// MatchInput names players and game by their display names. MatchType is
// matched case-insensitively.
type MatchInput struct {
	Player1   string `json:"player1"`
	Player2   string `json:"player2"`
	Game      string `json:"game"`
	Winner    string `json:"winner"`
	MatchType string `json:"match_type"`
}

type matchService struct {
	tx        repositories.Transactor
	matchRepo repositories.MatchRepository
	userRepo  repositories.UserRepository
	gameRepo  repositories.GameRepository
	statsRepo repositories.StatsRepository
	notifier  ChangeNotifier
	logger    *slog.Logger
}

func NewMatchService(
	tx repositories.Transactor,
	matchRepo repositories.MatchRepository,
	userRepo repositories.UserRepository,
	gameRepo repositories.GameRepository,
	statsRepo repositories.StatsRepository,
	notifier ChangeNotifier,
	logger *slog.Logger,
) MatchService {
	return &matchService{
		tx:        tx,
		matchRepo: matchRepo,
		userRepo:  userRepo,
		gameRepo:  gameRepo,
		statsRepo: statsRepo,
		notifier:  notifier,
		logger:    orDiscard(logger),
	}
}

func (s *matchService) Create(ctx context.Context, session models.Session, input MatchInput) (*models.Match, error) {
	if err := requireAdmin(session); err != nil {
		return nil, err
	}

	var match models.Match
	err := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		var err error
		match, err = s.resolve(ctx, exec, input)
		if err != nil {
			return err
		}
		if err := s.matchRepo.Create(ctx, exec, &match); err != nil {
			return err
		}
		return s.applyDeltas(ctx, exec, matchDeltas(match, 1))
	})
	if err != nil {
		return nil, s.translate(err)
	}

	s.logger.InfoContext(ctx, "match created",
		slog.Int("match_id", match.ID),
		slog.Int("winner_id", match.WinnerID),
		slog.Int("loser_id", match.LoserID()),
	)
	s.notifyMatches(models.ActionCreated, match.ID)
	return &match, nil
}

// Edit rewrites a match and moves statistics from the old outcome to the
// new one. Won credit moves only when the winner changes; played credit
// moves only for players who left or joined the pairing.
func (s *matchService) Edit(ctx context.Context, session models.Session, id int, input MatchInput) (*models.Match, error) {
	if err := requireAdmin(session); err != nil {
		return nil, err
	}
	if err := requireIDs([]int{id}); err != nil {
		return nil, err
	}

	var updated models.Match
	err := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		next, err := s.resolve(ctx, exec, input)
		if err != nil {
			return err
		}
		previous, err := s.matchRepo.GetByID(ctx, exec, id)
		if err != nil {
			return err
		}
		next.ID = id
		if err := s.matchRepo.Update(ctx, exec, &next); err != nil {
			return err
		}
		next.CreatedAt = previous.CreatedAt
		updated = next
		return s.applyDeltas(ctx, exec, rebalanceDeltas(*previous, next))
	})
	if err != nil {
		return nil, s.translate(err)
	}

	s.logger.InfoContext(ctx, "match updated", slog.Int("match_id", id), slog.Int("winner_id", updated.WinnerID))
	s.notifyMatches(models.ActionUpdated, id)
	return &updated, nil
}

func (s *matchService) Delete(ctx context.Context, session models.Session, ids []int) error {
	if err := requireAdmin(session); err != nil {
		return err
	}
	if err := requireIDs(ids); err != nil {
		return err
	}

	err := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		for _, id := range ids {
			m, err := s.matchRepo.GetByID(ctx, exec, id)
			if err != nil {
				return fmt.Errorf("match %d: %w", id, err)
			}
			if err := s.applyDeltas(ctx, exec, matchDeltas(*m, -1)); err != nil {
				return err
			}
			if err := s.matchRepo.Delete(ctx, exec, id); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return s.translate(err)
	}

	s.logger.InfoContext(ctx, "matches deleted", slog.Any("ids", ids), slog.Int("admin_id", session.UserID))
	s.notifyMatches(models.ActionDeleted, ids...)
	return nil
}

// Restore reinserts the most recently deleted match and credits its
// players again.
func (s *matchService) Restore(ctx context.Context, session models.Session) (*models.Match, error) {
	if err := requireAdmin(session); err != nil {
		return nil, err
	}

	var restored *models.Match
	err := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		m, err := s.matchRepo.RestoreLatest(ctx, exec)
		if err != nil {
			return err
		}
		restored = m
		return s.applyDeltas(ctx, exec, matchDeltas(*m, 1))
	})
	if err != nil {
		err = s.translate(err)
		if errors.Is(err, ErrRestoreBlocked) {
			return nil, s.blocker(ctx)
		}
		return nil, err
	}

	s.logger.InfoContext(ctx, "match restored", slog.Int("match_id", restored.ID))
	s.notifyMatches(models.ActionRestored, restored.ID)
	return restored, nil
}

// blocker names the players missing for the match at the top of the trash.
func (s *matchService) blocker(ctx context.Context) error {
	m, err := s.matchRepo.PeekLatest(ctx, nil)
	if err != nil {
		return ErrRestoreBlocked
	}
	return restoreBlockedBy("match", m.ID, missingUsers(ctx, s.userRepo, m.Player1ID, m.Player2ID, m.WinnerID))
}

func (s *matchService) List(ctx context.Context, session models.Session) ([]models.MatchView, error) {
	if err := requireAdmin(session); err != nil {
		return nil, err
	}
	return s.matchRepo.List(ctx, nil)
}

func (s *matchService) resolve(ctx context.Context, exec repositories.SQLExecutor, input MatchInput) (models.Match, error) {
	var m models.Match

	p1, err := required("player1", input.Player1)
	if err != nil {
		return m, err
	}
	p2, err := required("player2", input.Player2)
	if err != nil {
		return m, err
	}
	game, err := required("game", input.Game)
	if err != nil {
		return m, err
	}
	winner, err := required("winner", input.Winner)
	if err != nil {
		return m, err
	}
	rawType, err := required("match type", input.MatchType)
	if err != nil {
		return m, err
	}
	matchType, ok := models.ParseMatchType(rawType)
	if !ok {
		return m, fmt.Errorf("%w: match type must be %q or %q", ErrValidationFailed, models.MatchFriendly, models.MatchTournament)
	}
	if p1 == p2 {
		return m, fmt.Errorf("%w: a player cannot play against themselves", ErrInvalidMatch)
	}
	if winner != p1 && winner != p2 {
		return m, fmt.Errorf("%w: winner %q did not play", ErrInvalidMatch, winner)
	}

	if m.Player1ID, err = s.playerID(ctx, exec, p1); err != nil {
		return m, err
	}
	if m.Player2ID, err = s.playerID(ctx, exec, p2); err != nil {
		return m, err
	}
	m.WinnerID = m.Player1ID
	if winner == p2 {
		m.WinnerID = m.Player2ID
	}
	if m.GameID, err = s.gameRepo.FindIDByName(ctx, exec, game); err != nil {
		if errors.Is(err, repositories.ErrGameNotFound) {
			return m, fmt.Errorf("%w: %q", ErrGameNotFound, game)
		}
		return m, err
	}
	m.MatchType = matchType
	return m, nil
}

func (s *matchService) playerID(ctx context.Context, exec repositories.SQLExecutor, username string) (int, error) {
	id, err := s.userRepo.FindPlayerID(ctx, exec, username)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return 0, fmt.Errorf("%w: %q", ErrPlayerNotFound, username)
		}
		return 0, err
	}
	return id, nil
}

// applyDeltas adjusts players in ascending id order so concurrent
// transactions lock stats rows in the same order.
func (s *matchService) applyDeltas(ctx context.Context, exec repositories.SQLExecutor, deltas map[int]models.StatsDelta) error {
	ids := make([]int, 0, len(deltas))
	for id := range deltas {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	for _, id := range ids {
		if err := s.statsRepo.Adjust(ctx, exec, id, deltas[id]); err != nil {
			if errors.Is(err, repositories.ErrStatsNotFound) {
				return fmt.Errorf("%w: player %d", ErrStatsMissing, id)
			}
			return err
		}
	}
	return nil
}

// translate keeps service errors that already carry context and maps the
// rest through handleRepositoryError.
func (s *matchService) translate(err error) error {
	for _, known := range []error{ErrValidationFailed, ErrInvalidMatch, ErrPlayerNotFound, ErrGameNotFound, ErrStatsMissing} {
		if errors.Is(err, known) {
			return err
		}
	}
	return handleRepositoryError(err)
}

func (s *matchService) notifyMatches(action models.ChangeAction, ids ...int) {
	notify(s.notifier, models.TopicMatches, action, ids...)
	notify(s.notifier, models.TopicLeaderboard, models.ActionUpdated)
}

// matchDeltas returns the statistics contribution of m multiplied by sign.
func matchDeltas(m models.Match, sign int) map[int]models.StatsDelta {
	return map[int]models.StatsDelta{
		m.WinnerID:  {MatchesWon: sign, TotalMatches: sign},
		m.LoserID(): {TotalMatches: sign},
	}
}

// rebalanceDeltas computes the statistics change of editing previous into next.
func rebalanceDeltas(previous, next models.Match) map[int]models.StatsDelta {
	deltas := make(map[int]models.StatsDelta)
	add := func(id int, d models.StatsDelta) {
		cur := deltas[id]
		cur.MatchesWon += d.MatchesWon
		cur.TotalMatches += d.TotalMatches
		deltas[id] = cur
	}

	if previous.WinnerID != next.WinnerID {
		add(previous.WinnerID, models.StatsDelta{MatchesWon: -1})
		add(next.WinnerID, models.StatsDelta{MatchesWon: 1})
	}

	oldPair, newPair := previous.Participants(), next.Participants()
	for _, id := range oldPair {
		if !containsID(newPair, id) {
			add(id, models.StatsDelta{TotalMatches: -1})
		}
	}
	for _, id := range newPair {
		if !containsID(oldPair, id) {
			add(id, models.StatsDelta{TotalMatches: 1})
		}
	}

	for id, d := range deltas {
		if d.IsZero() {
			delete(deltas, id)
		}
	}
	return deltas
}

func containsID(pair [2]int, id int) bool {
	return pair[0] == id || pair[1] == id
}
