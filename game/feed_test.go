package game

import (
	"encoding/json"
	"testing"

	"github.com/nprole/flagmatch/socket"
)

type recorder struct {
	connects []string
	closes   int
	emits    []struct {
		event   string
		payload any
	}
}

func (r *recorder) Connect(token string) { r.connects = append(r.connects, token) }
func (r *recorder) Close()               { r.closes++ }
func (r *recorder) Emit(event string, payload any) {
	r.emits = append(r.emits, struct {
		event   string
		payload any
	}{event, payload})
}

func envelope(t *testing.T, event string, payload any) socket.Envelope {
	t.Helper()
	if payload == nil {
		return socket.Envelope{Event: event}
	}
	data, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("encoding %s payload: %v", event, err)
	}
	return socket.Envelope{Event: event, Data: data}
}

func TestDispatchRoutesToTopics(t *testing.T) {
	feed := NewWithChannel(&recorder{})

	var (
		started   []Data
		rounds    []Data
		finished  []Results
		queue     []Status
		acks      []Status
		errs      []Status
		connected []bool
	)
	feed.Started.Subscribe(func(d Data) { started = append(started, d) })
	feed.NextRound.Subscribe(func(d Data) { rounds = append(rounds, d) })
	feed.Finished.Subscribe(func(r Results) { finished = append(finished, r) })
	feed.Queue.Subscribe(func(s Status) { queue = append(queue, s) })
	feed.Acks.Subscribe(func(s Status) { acks = append(acks, s) })
	feed.Errors.Subscribe(func(s Status) { errs = append(errs, s) })
	feed.Connected.Subscribe(func(up bool) { connected = append(connected, up) })

	feed.Dispatch(envelope(t, socket.EventConnect, nil))
	feed.Dispatch(envelope(t, EventConnected, Status{Message: "Welcome"}))
	feed.Dispatch(envelope(t, EventQueueJoined, Status{Message: "Looking for opponent..."}))
	feed.Dispatch(envelope(t, EventGameStarted, Data{GameID: "G1", Round: Round{RoundNumber: 1}}))
	feed.Dispatch(envelope(t, EventNextRound, Data{GameID: "G1", Round: Round{RoundNumber: 2}}))
	feed.Dispatch(envelope(t, EventAnswerSubmitted, Status{Message: "Answer received"}))
	feed.Dispatch(envelope(t, EventGameFinished, Results{GameID: "G1", TotalRounds: 5}))
	feed.Dispatch(envelope(t, EventQueueLeft, Status{Message: "Left queue"}))
	feed.Dispatch(envelope(t, socket.EventError, Status{Message: "boom"}))
	feed.Dispatch(envelope(t, socket.EventDisconnect, nil))

	if len(started) != 1 || started[0].GameID != "G1" {
		t.Fatalf("started: %+v", started)
	}
	if len(rounds) != 1 || rounds[0].Round.RoundNumber != 2 {
		t.Fatalf("rounds: %+v", rounds)
	}
	if len(finished) != 1 || finished[0].TotalRounds != 5 {
		t.Fatalf("finished: %+v", finished)
	}
	if len(queue) != 2 || queue[0].Message != "Looking for opponent..." || queue[1].Message != "Left queue" {
		t.Fatalf("queue: %+v", queue)
	}
	if len(acks) != 1 || acks[0].Message != "Answer received" {
		t.Fatalf("acks: %+v", acks)
	}
	if len(errs) != 1 || errs[0].Message != "boom" {
		t.Fatalf("errors: %+v", errs)
	}
	if len(connected) != 2 || !connected[0] || connected[1] {
		t.Fatalf("connected: %+v", connected)
	}
}

func TestSubmitAnswerNeedsRunningGame(t *testing.T) {
	ch := &recorder{}
	feed := NewWithChannel(ch)

	feed.SubmitAnswer("France", 1.5)
	if len(ch.emits) != 0 {
		t.Fatal("no submission may leave the client outside a match")
	}

	feed.Dispatch(envelope(t, EventGameStarted, Data{GameID: "G1", Round: Round{RoundNumber: 1}}))
	feed.SubmitAnswer("France", 1.5)

	if len(ch.emits) != 1 || ch.emits[0].event != EventSubmitAnswer {
		t.Fatalf("emits: %+v", ch.emits)
	}
	answer := ch.emits[0].payload.(Answer)
	if answer.GameID != "G1" || answer.SelectedOption != "France" || answer.TimeToAnswer != 1.5 {
		t.Fatalf("answer: %+v", answer)
	}

	feed.Dispatch(envelope(t, EventGameFinished, Results{GameID: "G1"}))
	feed.SubmitAnswer("Italy", 2.0)
	if len(ch.emits) != 1 {
		t.Fatal("submission after gameFinished must be dropped")
	}
}

func TestGameIDLifecycle(t *testing.T) {
	feed := NewWithChannel(&recorder{})

	if _, ok := feed.GameID(); ok {
		t.Fatal("no game id before a match")
	}

	feed.Dispatch(envelope(t, EventGameStarted, Data{GameID: "G1"}))
	if id, ok := feed.GameID(); !ok || id != "G1" {
		t.Fatalf("game id = %q, %v", id, ok)
	}

	feed.Dispatch(envelope(t, EventGameFinished, Results{GameID: "G1"}))
	if _, ok := feed.GameID(); ok {
		t.Fatal("game id must clear when the match finishes")
	}
}

func TestIntentsReachChannel(t *testing.T) {
	ch := &recorder{}
	feed := NewWithChannel(ch)

	feed.Connect("T1")
	feed.JoinQueue()
	feed.LeaveQueue()
	feed.Disconnect()

	if len(ch.connects) != 1 || ch.connects[0] != "T1" {
		t.Fatalf("connects: %v", ch.connects)
	}
	if ch.closes != 1 {
		t.Fatalf("closes: %d", ch.closes)
	}
	if len(ch.emits) != 2 || ch.emits[0].event != EventJoinQueue || ch.emits[1].event != EventLeaveQueue {
		t.Fatalf("emits: %+v", ch.emits)
	}
}

func TestMalformedPayloadBecomesError(t *testing.T) {
	feed := NewWithChannel(&recorder{})

	var errs []Status
	feed.Errors.Subscribe(func(s Status) { errs = append(errs, s) })

	var started int
	feed.Started.Subscribe(func(Data) { started++ })

	feed.Dispatch(socket.Envelope{Event: EventGameStarted, Data: json.RawMessage(`"not an object"`)})

	if started != 0 {
		t.Fatal("malformed gameStarted must not reach the topic")
	}
	if len(errs) != 1 {
		t.Fatalf("expected one decode error, got %+v", errs)
	}
}

func TestRoundLimitFallback(t *testing.T) {
	if got := (Round{TimeLimit: 20}).Limit(); got != 20 {
		t.Fatalf("explicit limit: %d", got)
	}
	if got := (Round{}).Limit(); got != DefaultTimeLimit {
		t.Fatalf("fallback limit: %d", got)
	}
}
