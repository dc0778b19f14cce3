// Package collab merges remote activity — presence, chat, AI-companion
// commands and remote edits — into the local editor session. Remote
// structural edits go through the same mutation API as local ones; the
// channel never writes into the document directly.
package collab

import (
	"context"
	"encoding/json"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/arkiform/go-plan-backend/internal/editor/service"
	"github.com/arkiform/go-plan-backend/internal/notify"
)

const (
	eventChannelPrefix = "plan:events:" // pub/sub channel per project

	// CommandMarker prefixes chat messages addressed to the AI companion.
	CommandMarker = "@aura"

	// DefaultCommandTimeout bounds how long the UI shows "thinking" before
	// reverting to idle.
	DefaultCommandTimeout = 15 * time.Second
)

// Event types on the wire.
const (
	EventChat            = "chat"
	EventPresenceJoin    = "presence_join"
	EventPresenceLeave   = "presence_leave"
	EventCommandResponse = "command_response"
	EventRemoteEdit      = "remote_edit"
)

// Event is the realtime transport envelope.
type Event struct {
	ProjectID string          `json:"project_id"`
	Type      string          `json:"type"`
	Origin    string          `json:"origin"` // connection id of the sender
	Payload   json.RawMessage `json:"payload"`
}

type Collaborator struct {
	UserID   string    `json:"user_id"`
	ConnID   string    `json:"conn_id"`
	JoinedAt time.Time `json:"joined_at"`
}

type ChatMessage struct {
	Author    string    `json:"author"`
	Text      string    `json:"text"`
	RequestID string    `json:"request_id,omitempty"`
	At        time.Time `json:"at"`
}

type commandResponse struct {
	RequestID string `json:"request_id"`
	Text      string `json:"text"`
}

// Channel is the sync channel for one open project.
type Channel struct {
	projectID string
	connID    string
	rdb       *redis.Client
	sess      *service.Session
	notes     *notify.Stream
	timeout   time.Duration

	mu         sync.Mutex
	roster     map[string]Collaborator
	transcript []ChatMessage
	pending    map[string]*time.Timer
	rev        uint64

	sub    *redis.PubSub
	cancel context.CancelFunc
}

func NewChannel(rdb *redis.Client, sess *service.Session, timeout time.Duration) *Channel {
	if timeout <= 0 {
		timeout = DefaultCommandTimeout
	}
	return &Channel{
		projectID: sess.ProjectID,
		connID:    uuid.New().String(),
		rdb:       rdb,
		sess:      sess,
		notes:     sess.Notes,
		timeout:   timeout,
		roster:    make(map[string]Collaborator),
		pending:   make(map[string]*time.Timer),
	}
}

// Start subscribes to the project's event channel and dispatches remote
// events until Close.
func (ch *Channel) Start(ctx context.Context) {
	ctx, ch.cancel = context.WithCancel(ctx)
	ch.sub = ch.rdb.Subscribe(ctx, eventChannelPrefix+ch.projectID)

	go func() {
		for msg := range ch.sub.Channel() {
			var ev Event
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				log.Printf("collab: drop malformed event: %v", err)
				continue
			}
			if ev.Origin == ch.connID {
				continue // our own publish echoed back
			}
			ch.handleEvent(ev)
		}
	}()
}

// Close stops pending command timers and the subscription.
func (ch *Channel) Close() {
	ch.mu.Lock()
	for id, t := range ch.pending {
		t.Stop()
		delete(ch.pending, id)
	}
	ch.mu.Unlock()

	if ch.sub != nil {
		_ = ch.sub.Close()
	}
	if ch.cancel != nil {
		ch.cancel()
	}
}

// Join announces a collaborator and adds them to the local roster.
func (ch *Channel) Join(ctx context.Context, userID string) {
	c := Collaborator{UserID: userID, ConnID: ch.connID, JoinedAt: time.Now()}
	ch.mu.Lock()
	ch.roster[userID] = c
	ch.rev++
	ch.mu.Unlock()
	ch.publish(ctx, EventPresenceJoin, c)
}

// Leave removes a collaborator and announces it.
func (ch *Channel) Leave(ctx context.Context, userID string) {
	ch.mu.Lock()
	delete(ch.roster, userID)
	ch.rev++
	ch.mu.Unlock()
	ch.publish(ctx, EventPresenceLeave, Collaborator{UserID: userID, ConnID: ch.connID})
}

// SendChat appends a message to the transcript and broadcasts it. Messages
// prefixed with the command marker additionally open a pending companion
// wait; if no response arrives within the timeout, the UI reverts to idle
// and the user is notified.
func (ch *Channel) SendChat(ctx context.Context, author, text string) (requestID string) {
	msg := ChatMessage{Author: author, Text: text, At: time.Now()}

	if strings.HasPrefix(strings.TrimSpace(text), CommandMarker) {
		requestID = uuid.New().String()
		msg.RequestID = requestID

		ch.mu.Lock()
		ch.pending[requestID] = time.AfterFunc(ch.timeout, func() {
			ch.expireCommand(requestID)
		})
		ch.mu.Unlock()
	}

	ch.mu.Lock()
	ch.transcript = append(ch.transcript, msg)
	ch.rev++
	ch.mu.Unlock()

	ch.publish(ctx, EventChat, msg)
	return requestID
}

// AwaitingResponse reports whether a companion command is still pending.
func (ch *Channel) AwaitingResponse(requestID string) bool {
	ch.mu.Lock()
	defer ch.mu.Unlock()
	_, ok := ch.pending[requestID]
	return ok
}

func (ch *Channel) expireCommand(requestID string) {
	ch.mu.Lock()
	_, ok := ch.pending[requestID]
	delete(ch.pending, requestID)
	ch.rev++
	ch.mu.Unlock()
	if ok {
		ch.notes.Info("Aura did not respond, please try again")
	}
}

func (ch *Channel) handleEvent(ev Event) {
	switch ev.Type {
	case EventPresenceJoin:
		var c Collaborator
		if err := json.Unmarshal(ev.Payload, &c); err != nil {
			return
		}
		ch.mu.Lock()
		ch.roster[c.UserID] = c
		ch.rev++
		ch.mu.Unlock()

	case EventPresenceLeave:
		var c Collaborator
		if err := json.Unmarshal(ev.Payload, &c); err != nil {
			return
		}
		ch.mu.Lock()
		delete(ch.roster, c.UserID)
		ch.rev++
		ch.mu.Unlock()

	case EventChat:
		var msg ChatMessage
		if err := json.Unmarshal(ev.Payload, &msg); err != nil {
			return
		}
		ch.mu.Lock()
		ch.transcript = append(ch.transcript, msg)
		ch.rev++
		ch.mu.Unlock()

	case EventCommandResponse:
		ch.handleCommandResponse(ev.Payload)

	case EventRemoteEdit:
		ch.handleRemoteEdit(ev.Payload)

	default:
		log.Printf("collab: unknown event type %q", ev.Type)
	}
}

// handleCommandResponse resolves a pending companion wait. A response to a
// request that already timed out is discarded so it cannot corrupt a newer
// pending state.
func (ch *Channel) handleCommandResponse(payload json.RawMessage) {
	var resp commandResponse
	if err := json.Unmarshal(payload, &resp); err != nil {
		return
	}

	ch.mu.Lock()
	timer, ok := ch.pending[resp.RequestID]
	if !ok {
		ch.mu.Unlock()
		return // late response, already timed out
	}
	timer.Stop()
	delete(ch.pending, resp.RequestID)
	ch.transcript = append(ch.transcript, ChatMessage{
		Author:    "aura",
		Text:      resp.Text,
		RequestID: resp.RequestID,
		At:        time.Now(),
	})
	ch.rev++
	ch.mu.Unlock()
}

// Roster returns the current collaborator list.
func (ch *Channel) Roster() []Collaborator {
	ch.mu.Lock()
	defer ch.mu.Unlock()
	out := make([]Collaborator, 0, len(ch.roster))
	for _, c := range ch.roster {
		out = append(out, c)
	}
	return out
}

// Transcript returns a copy of the chat transcript.
func (ch *Channel) Transcript() []ChatMessage {
	ch.mu.Lock()
	defer ch.mu.Unlock()
	return append([]ChatMessage(nil), ch.transcript...)
}

// Rev increments whenever roster, transcript or pending state changes. The
// SSE handler polls it to decide when to push an update.
func (ch *Channel) Rev() uint64 {
	ch.mu.Lock()
	defer ch.mu.Unlock()
	return ch.rev
}

func (ch *Channel) publish(ctx context.Context, eventType string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	ev := Event{
		ProjectID: ch.projectID,
		Type:      eventType,
		Origin:    ch.connID,
		Payload:   data,
	}
	evData, err := json.Marshal(ev)
	if err != nil {
		return
	}
	if err := ch.rdb.Publish(ctx, eventChannelPrefix+ch.projectID, evData).Err(); err != nil {
		log.Printf("collab: publish %s: %v", eventType, err)
	}
}
