package models

// Tables whose changes are published to live dashboards.
const (
	TopicPlayers     = "players"
	TopicGames       = "games"
	TopicTeams       = "teams"
	TopicTournaments = "tournaments"
	TopicMatches     = "matches"
	TopicLeaderboard = "leaderboard"
)

var Topics = []string{TopicPlayers, TopicGames, TopicTeams, TopicTournaments, TopicMatches, TopicLeaderboard}

func IsTopic(s string) bool {
	for _, t := range Topics {
		if t == s {
			return true
		}
	}
	return false
}

type ChangeAction string

const (
	ActionCreated  ChangeAction = "created"
	ActionUpdated  ChangeAction = "updated"
	ActionDeleted  ChangeAction = "deleted"
	ActionRestored ChangeAction = "restored"
)

// TableChange tells subscribers that rows of a table changed and views
// built on it should be reloaded.
type TableChange struct {
	Topic  string       `json:"topic"`
	Action ChangeAction `json:"action"`
	IDs    []int        `json:"ids,omitempty"`
}
