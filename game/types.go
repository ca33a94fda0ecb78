package game

// DefaultTimeLimit is the per-round countdown, in seconds, used when the
// server omits one.
const DefaultTimeLimit = 15

// Inbound events pushed by the game server.
const (
	EventConnected       = "connected"
	EventQueueJoined     = "queueJoined"
	EventQueueLeft       = "queueLeft"
	EventGameStarted     = "gameStarted"
	EventNextRound       = "nextRound"
	EventGameFinished    = "gameFinished"
	EventAnswerSubmitted = "answerSubmitted"
)

// Outbound events sent to the game server.
const (
	EventJoinQueue    = "joinQueue"
	EventLeaveQueue   = "leaveQueue"
	EventSubmitAnswer = "submitAnswer"
)

// Player is one of the two participants in a match. Score only ever changes
// through server pushes.
type Player struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
	Score    int    `json:"score"`
}

// Round is a single flag question.
type Round struct {
	RoundNumber int      `json:"roundNumber"`
	Flag        string   `json:"flag"`
	Country     string   `json:"country"`
	Options     []string `json:"options"`
	// CorrectAnswer arrives with the round, before anyone has answered.
	// That is how the current server behaves; the client never consults it
	// for scoring, only for post-answer display.
	CorrectAnswer string `json:"correctAnswer"`
	TimeLimit     int    `json:"timeLimit"`
}

// Limit returns the round's countdown in seconds, falling back to
// DefaultTimeLimit when the server sent none.
func (r Round) Limit() int {
	if r.TimeLimit > 0 {
		return r.TimeLimit
	}
	return DefaultTimeLimit
}

// Data is a match as pushed on gameStarted and nextRound.
type Data struct {
	GameID       string   `json:"gameId"`
	Players      []Player `json:"players"`
	CurrentRound int      `json:"currentRound"`
	Round        Round    `json:"round"`
}

// PlayerResult is one player's line in the final summary.
type PlayerResult struct {
	UserID         string `json:"userId"`
	Username       string `json:"username"`
	Score          int    `json:"score"`
	CorrectAnswers int    `json:"correctAnswers"`
	TotalAnswers   int    `json:"totalAnswers"`
}

// Results is the terminal summary of a finished match.
type Results struct {
	GameID          string         `json:"gameId"`
	Results         []PlayerResult `json:"results"`
	TotalRounds     int            `json:"totalRounds"`
	CompletedRounds int            `json:"completedRounds"`
}

// Status carries the human-readable text of queue, ack, and error events.
type Status struct {
	Message string `json:"message"`
}

// Answer is the outbound submitAnswer payload. TimeToAnswer is wall-clock
// seconds since the round began, with sub-second precision.
type Answer struct {
	GameID         string  `json:"gameId"`
	SelectedOption string  `json:"selectedOption"`
	TimeToAnswer   float64 `json:"timeToAnswer"`
}
