// Package session holds the client-side state of one player's connection to
// the flag trivia server: connection status, matchmaking queue, the round in
// progress with its countdown, and the final results. All mutation happens
// under one lock, because server events and timer ticks arrive on different
// goroutines.
package session

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/nprole/flagmatch/events"
	"github.com/nprole/flagmatch/game"
)

// ErrNoToken is returned by Connect when no access token is available; the
// caller is expected to send the user through the login flow.
var ErrNoToken = errors.New("no access token; log in first")

// ConnState is the transport axis, independent of game or queue state.
type ConnState int

const (
	Disconnected ConnState = iota
	Connected
)

// Phase is the session axis. Finished is terminal for a single match but
// the machine re-enters Queued on play-again.
type Phase int

const (
	Idle Phase = iota
	Queued
	InRound
	BetweenRounds
	Finished
)

func (p Phase) String() string {
	switch p {
	case Queued:
		return "queued"
	case InRound:
		return "in-round"
	case BetweenRounds:
		return "between-rounds"
	case Finished:
		return "finished"
	default:
		return "idle"
	}
}

// queueSearchingText is the fragment of the server's queue status prose
// that marks the client as waiting for a match. The server offers no
// discrete queue-state code, so membership is inferred from wording; if the
// server ever rephrases its status messages this breaks with it.
const queueSearchingText = "Looking for opponent"

// errDisplayWindow is how long a server-reported error stays on screen.
const errDisplayWindow = 5 * time.Second

// Machine is the game session state machine. Create with New, tear down
// with Close.
type Machine struct {
	feed    *game.Feed
	refresh *events.Signal

	mu     sync.Mutex
	conn   ConnState
	phase  Phase
	game   *game.Data
	result *game.Results

	queueStatus string
	inQueue     bool

	selected    string
	hasSelected bool
	canAnswer   bool
	remaining   int
	roundStart  time.Time

	errMessage string
	errGen     int

	timer    *ticker
	subs     []*events.Subscription
	onChange func()
	closed   bool

	// test seams; real sessions keep the defaults
	now        func() time.Time
	tickEvery  time.Duration
	errVisible time.Duration
}

// New wires a Machine to the feed's topics. The refresh signal is notified
// once per finished game so unrelated displays can re-fetch their data.
func New(feed *game.Feed, refresh *events.Signal) *Machine {
	m := &Machine{
		feed:       feed,
		refresh:    refresh,
		now:        time.Now,
		tickEvery:  time.Second,
		errVisible: errDisplayWindow,
	}

	m.subs = []*events.Subscription{
		feed.Connected.Subscribe(m.handleConnected),
		feed.Queue.Subscribe(m.handleQueue),
		feed.Started.Subscribe(m.handleStarted),
		feed.NextRound.Subscribe(m.handleNextRound),
		feed.Finished.Subscribe(m.handleFinished),
		feed.Errors.Subscribe(m.handleError),
	}

	return m
}

// SetOnChange registers a hook invoked after every state change, for the
// presentation loop to repaint from a fresh Snapshot.
func (m *Machine) SetOnChange(fn func()) {
	m.mu.Lock()
	m.onChange = fn
	m.mu.Unlock()
}

// Connect opens the connection with the given access token.
func (m *Machine) Connect(token string) error {
	if token == "" {
		return ErrNoToken
	}
	m.feed.Connect(token)
	return nil
}

// Close stops the round timer, cancels every subscription, and disconnects,
// in that order. Required from every state before discarding the machine;
// skipping it leaks the timer goroutine or the socket. Idempotent.
func (m *Machine) Close() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.closed = true
	m.timer.halt()
	m.timer = nil
	subs := m.subs
	m.subs = nil
	m.mu.Unlock()

	for _, sub := range subs {
		sub.Unsubscribe()
	}
	m.feed.Disconnect()
}

// JoinQueue asks for a match. No local state changes until the server
// confirms with a queue status.
func (m *Machine) JoinQueue() {
	m.mu.Lock()
	connected := m.conn == Connected
	m.mu.Unlock()
	if !connected {
		return
	}
	m.feed.JoinQueue()
}

// LeaveQueue withdraws from matchmaking, optimistically clearing the local
// queue state before the server acknowledges.
func (m *Machine) LeaveQueue() {
	m.feed.LeaveQueue()

	m.mu.Lock()
	m.inQueue = false
	m.queueStatus = ""
	if m.phase == Queued {
		m.phase = Idle
	}
	m.mu.Unlock()
	m.changed()
}

// SelectOption submits the player's answer. Exactly one submission happens
// per round: calls after a selection, or after the countdown expired, are
// no-ops rather than errors.
func (m *Machine) SelectOption(option string) {
	m.mu.Lock()
	if !m.canAnswer || m.hasSelected {
		m.mu.Unlock()
		return
	}
	m.selected = option
	m.hasSelected = true
	m.canAnswer = false
	elapsed := m.now().Sub(m.roundStart).Seconds()
	m.mu.Unlock()

	m.feed.SubmitAnswer(option, elapsed)
	m.changed()
}

// PlayAgain discards the finished game and its results, then rejoins the
// queue. Only valid once a match has finished.
func (m *Machine) PlayAgain() {
	m.mu.Lock()
	if m.phase != Finished {
		m.mu.Unlock()
		return
	}
	m.result = nil
	m.game = nil
	m.phase = Idle
	m.mu.Unlock()

	m.changed()
	m.JoinQueue()
}

func (m *Machine) handleConnected(up bool) {
	m.mu.Lock()
	if up {
		m.conn = Connected
	} else {
		// Session and queue state survive a drop; a reconnect may resume.
		m.conn = Disconnected
	}
	m.mu.Unlock()
	m.changed()
}

func (m *Machine) handleQueue(status game.Status) {
	m.mu.Lock()
	m.queueStatus = status.Message
	m.inQueue = strings.Contains(status.Message, queueSearchingText)
	if m.inQueue && m.phase == Idle {
		m.phase = Queued
	}
	if !m.inQueue && m.phase == Queued {
		m.phase = Idle
	}
	m.mu.Unlock()
	m.changed()
}

func (m *Machine) handleStarted(data game.Data) {
	m.mu.Lock()
	m.game = &data
	m.result = nil
	m.phase = InRound
	m.inQueue = false
	m.queueStatus = ""
	m.startRoundLocked(data.Round)
	m.mu.Unlock()
	m.changed()
}

func (m *Machine) handleNextRound(data game.Data) {
	m.mu.Lock()
	if m.phase != InRound && m.phase != BetweenRounds {
		m.mu.Unlock()
		return
	}
	// Round numbers never go backwards within a match.
	if m.game != nil && data.Round.RoundNumber < m.game.Round.RoundNumber {
		m.mu.Unlock()
		return
	}
	m.game = &data
	m.phase = InRound
	m.startRoundLocked(data.Round)
	m.mu.Unlock()
	m.changed()
}

func (m *Machine) handleFinished(results game.Results) {
	m.mu.Lock()
	m.result = &results
	m.phase = Finished
	m.timer.halt()
	m.timer = nil
	// The last game's data stays around for the results view; it is no
	// longer mutated.
	m.mu.Unlock()

	m.refresh.Notify()
	m.changed()
}

func (m *Machine) handleError(status game.Status) {
	m.mu.Lock()
	m.errMessage = status.Message
	m.errGen++
	gen := m.errGen
	m.mu.Unlock()
	m.changed()

	time.AfterFunc(m.errVisible, func() {
		m.mu.Lock()
		// A newer error owns the banner now; leave it alone.
		if m.errGen != gen {
			m.mu.Unlock()
			return
		}
		m.errMessage = ""
		m.mu.Unlock()
		m.changed()
	})
}

// startRoundLocked resets the per-round selection state and restarts the
// countdown. Callers hold m.mu.
func (m *Machine) startRoundLocked(round game.Round) {
	m.selected = ""
	m.hasSelected = false
	m.canAnswer = true
	m.remaining = round.Limit()
	m.roundStart = m.now()

	m.timer.halt()
	m.timer = nil
	if m.tickEvery > 0 {
		m.timer = startTicker(m.tickEvery, m.tick)
	}
}

// tick advances the countdown by one second. Returning false halts the
// ticker. Expiry fires at most once per round: the canAnswer flag is the
// guard, so re-invocation after zero stays silent.
func (m *Machine) tick() bool {
	m.mu.Lock()
	if m.closed || m.phase != InRound {
		m.mu.Unlock()
		return false
	}

	if m.remaining > 0 {
		m.remaining--
	}
	if m.remaining > 0 {
		m.mu.Unlock()
		m.changed()
		return true
	}

	autoSubmit := m.canAnswer
	m.canAnswer = false
	m.phase = BetweenRounds
	m.timer = nil
	elapsed := m.now().Sub(m.roundStart).Seconds()
	m.mu.Unlock()

	if autoSubmit {
		// Time ran out without a pick; an empty answer keeps the
		// one-submission-per-round contract.
		m.feed.SubmitAnswer("", elapsed)
	}
	m.changed()
	return false
}

func (m *Machine) changed() {
	m.mu.Lock()
	fn := m.onChange
	m.mu.Unlock()
	if fn != nil {
		fn()
	}
}
