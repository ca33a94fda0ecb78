// Package game defines the wire protocol of the flag trivia server and the
// Feed, a set of typed broadcast topics layered over one socket connection.
package game

import (
	"encoding/json"
	"sync"

	"github.com/nprole/flagmatch/events"
	"github.com/nprole/flagmatch/socket"
)

// Channel is the duplex connection the Feed drives. *socket.Client satisfies
// it; tests substitute a recorder.
type Channel interface {
	Connect(token string)
	Close()
	Emit(event string, payload any)
}

// Feed decodes inbound envelopes into one topic per event kind. Each topic
// delivers every emission to each of its subscribers exactly once, in
// emission order; nothing is guaranteed across different topics.
type Feed struct {
	Started   events.Topic[Data]
	NextRound events.Topic[Data]
	Finished  events.Topic[Results]
	Queue     events.Topic[Status]
	Acks      events.Topic[Status]
	Errors    events.Topic[Status]
	Connected events.Topic[bool]

	channel Channel

	mu     sync.Mutex
	gameID string
}

// New builds a Feed over a websocket connection to url.
func New(url string) *Feed {
	f := &Feed{}
	f.channel = socket.New(url, f.Dispatch)
	return f
}

// NewWithChannel builds a Feed over an existing channel. The caller is
// responsible for routing the channel's inbound envelopes to Dispatch.
func NewWithChannel(ch Channel) *Feed {
	return &Feed{channel: ch}
}

// Connect opens the channel, authenticating with token. Any prior
// connection is closed first.
func (f *Feed) Connect(token string) {
	f.channel.Connect(token)
}

// Disconnect closes the channel. Idempotent.
func (f *Feed) Disconnect() {
	f.channel.Close()
}

// JoinQueue asks the server for a match. Queue membership is only reflected
// once the server pushes a queue status.
func (f *Feed) JoinQueue() {
	f.channel.Emit(EventJoinQueue, nil)
}

// LeaveQueue withdraws from matchmaking.
func (f *Feed) LeaveQueue() {
	f.channel.Emit(EventLeaveQueue, nil)
}

// SubmitAnswer reports the picked option and how long the pick took. It is
// a no-op outside a running match.
func (f *Feed) SubmitAnswer(selected string, timeToAnswer float64) {
	f.mu.Lock()
	gameID := f.gameID
	f.mu.Unlock()
	if gameID == "" {
		return
	}

	f.channel.Emit(EventSubmitAnswer, Answer{
		GameID:         gameID,
		SelectedOption: selected,
		TimeToAnswer:   timeToAnswer,
	})
}

// GameID returns the identifier of the match in progress, if any.
func (f *Feed) GameID() (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.gameID, f.gameID != ""
}

// Dispatch routes one inbound envelope to its topic. Envelopes arrive in
// connection order and each handler runs to completion before the next
// envelope is processed.
func (f *Feed) Dispatch(env socket.Envelope) {
	switch env.Event {
	case socket.EventConnect:
		f.Connected.Publish(true)

	case socket.EventDisconnect:
		f.Connected.Publish(false)

	case EventConnected:
		// Server-side connection confirmation; the transport-level connect
		// already drove the topic, so there is nothing left to deliver.

	case EventQueueJoined, EventQueueLeft:
		if status, ok := decode[Status](f, env); ok {
			f.Queue.Publish(status)
		}

	case EventGameStarted:
		if data, ok := decode[Data](f, env); ok {
			f.mu.Lock()
			f.gameID = data.GameID
			f.mu.Unlock()
			f.Started.Publish(data)
		}

	case EventNextRound:
		if data, ok := decode[Data](f, env); ok {
			f.NextRound.Publish(data)
		}

	case EventGameFinished:
		if results, ok := decode[Results](f, env); ok {
			f.mu.Lock()
			f.gameID = ""
			f.mu.Unlock()
			f.Finished.Publish(results)
		}

	case EventAnswerSubmitted:
		if status, ok := decode[Status](f, env); ok {
			f.Acks.Publish(status)
		}

	case socket.EventError:
		if status, ok := decode[Status](f, env); ok {
			f.Errors.Publish(status)
		}
	}
}

func decode[T any](f *Feed, env socket.Envelope) (T, bool) {
	var v T
	if len(env.Data) == 0 {
		return v, true
	}
	if err := json.Unmarshal(env.Data, &v); err != nil {
		f.Errors.Publish(Status{Message: "malformed " + env.Event + " event from server"})
		return v, false
	}
	return v, true
}
