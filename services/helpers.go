package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/Dosada05/gaming-portal/models"
	"github.com/Dosada05/gaming-portal/repositories"
)

// ChangeNotifier receives table changes after they are committed.
type ChangeNotifier interface {
	NotifyChange(change models.TableChange)
}

func notify(n ChangeNotifier, topic string, action models.ChangeAction, ids ...int) {
	if n == nil {
		return
	}
	n.NotifyChange(models.TableChange{Topic: topic, Action: action, IDs: ids})
}

func orDiscard(logger *slog.Logger) *slog.Logger {
	if logger != nil {
		return logger
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func requireAdmin(session models.Session) error {
	if !session.IsAdmin() {
		return fmt.Errorf("%w: admin role required", ErrForbiddenOperation)
	}
	return nil
}

func requirePlayer(session models.Session) error {
	if !session.IsPlayer() || session.UserID <= 0 {
		return fmt.Errorf("%w: player role required", ErrForbiddenOperation)
	}
	return nil
}

// required trims value and rejects it when nothing is left.
func required(field, value string) (string, error) {
	v := strings.TrimSpace(value)
	if v == "" {
		return "", fmt.Errorf("%w: %s is required", ErrValidationFailed, field)
	}
	return v, nil
}

func requireIDs(ids []int) error {
	if len(ids) == 0 {
		return fmt.Errorf("%w: at least one id is required", ErrValidationFailed)
	}
	for _, id := range ids {
		if id <= 0 {
			return fmt.Errorf("%w: invalid id %d", ErrValidationFailed, id)
		}
	}
	return nil
}

var repoErrorMap = []struct {
	repo error
	svc  error
}{
	{repositories.ErrUserNotFound, ErrPlayerNotFound},
	{repositories.ErrUserUsernameConflict, ErrUsernameTaken},
	{repositories.ErrUserInUse, ErrPlayerInUse},
	{repositories.ErrStatsNotFound, ErrStatsMissing},
	{repositories.ErrGameNotFound, ErrGameNotFound},
	{repositories.ErrGameNameConflict, ErrGameNameConflict},
	{repositories.ErrTeamNotFound, ErrTeamNotFound},
	{repositories.ErrTeamNameConflict, ErrTeamNameConflict},
	{repositories.ErrTeamMemberConflict, ErrAlreadyTeamMember},
	{repositories.ErrTournamentNotFound, ErrTournamentNotFound},
	{repositories.ErrTournamentNameConflict, ErrTournamentNameConflict},
	{repositories.ErrAlreadyRegistered, ErrAlreadyRegistered},
	{repositories.ErrMatchNotFound, ErrMatchNotFound},
	{repositories.ErrMatchConstraint, ErrInvalidMatch},
	{repositories.ErrNothingToRestore, ErrNothingToRestore},
	{repositories.ErrTournamentInvalidRef, ErrRestoreBlocked},
	{repositories.ErrMatchInvalidRef, ErrRestoreBlocked},
	{repositories.ErrParticipantInvalidRef, ErrRestoreBlocked},
	{repositories.ErrTeamMemberInvalid, ErrRestoreBlocked},
	{repositories.ErrPlayerGameInvalid, ErrRestoreBlocked},
	{repositories.ErrStatsPlayerInvalid, ErrRestoreBlocked},
}

// handleRepositoryError translates repository sentinels into service
// errors. Unknown errors are returned unchanged.
func handleRepositoryError(err error) error {
	if err == nil {
		return nil
	}
	for _, m := range repoErrorMap {
		if errors.Is(err, m.repo) {
			return m.svc
		}
	}
	return err
}

// missingUsers returns the ids, in order and without repeats, that no
// longer resolve to a live user.
func missingUsers(ctx context.Context, users repositories.UserRepository, ids ...int) []int {
	seen := make(map[int]bool, len(ids))
	var missing []int
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		if _, err := users.GetByID(ctx, nil, id); errors.Is(err, repositories.ErrUserNotFound) {
			missing = append(missing, id)
		}
	}
	return missing
}

// restoreBlockedBy wraps ErrRestoreBlocked with the trashed row and the
// players that have to be restored before it.
func restoreBlockedBy(kind string, id int, missing []int) error {
	if len(missing) == 0 {
		return fmt.Errorf("%w: %s %d", ErrRestoreBlocked, kind, id)
	}
	names := make([]string, len(missing))
	for i, m := range missing {
		names[i] = strconv.Itoa(m)
	}
	noun := "player"
	if len(missing) > 1 {
		noun = "players"
	}
	return fmt.Errorf("%w: %s %d needs %s %s restored first", ErrRestoreBlocked, kind, id, noun, strings.Join(names, ", "))
}
