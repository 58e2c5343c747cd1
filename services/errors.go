package services

import "errors"

// Общие ошибки, используемые в разных сервисах и маппинге HTTP.
var (
	// Ошибки валидации и бизнес-правил
	ErrValidationFailed    = errors.New("validation failed")
	ErrInvalidMatch        = errors.New("match players must differ and the winner must be one of them")
	ErrWinnerNotRegistered = errors.New("winner is not registered for this tournament")
	ErrNothingToRestore    = errors.New("nothing to restore")
	ErrRestoreBlocked      = errors.New("trashed row references data that no longer exists")

	// Ошибки конфликтов
	ErrUsernameTaken          = errors.New("username is already taken")
	ErrGameNameConflict       = errors.New("game name already exists")
	ErrTeamNameConflict       = errors.New("team name is already in use")
	ErrAlreadyTeamMember      = errors.New("player is already a member of this team")
	ErrTournamentNameConflict = errors.New("tournament name already exists")
	ErrAlreadyRegistered      = errors.New("player is already registered for this tournament")
	ErrPlayerInUse            = errors.New("player is still referenced by matches or tournaments")

	// Ошибки аутентификации и авторизации
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrForbiddenOperation = errors.New("operation not allowed for the current user")

	// Ошибки, специфичные для сущностей
	ErrPlayerNotFound     = errors.New("player not found")
	ErrGameNotFound       = errors.New("game not found")
	ErrTeamNotFound       = errors.New("team not found")
	ErrTournamentNotFound = errors.New("tournament not found")
	ErrMatchNotFound      = errors.New("match not found")
	ErrStatsMissing       = errors.New("player has no statistics row")

	ErrBackupUnavailable = errors.New("backup destination is not configured")
)
