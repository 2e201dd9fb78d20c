package server

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	broker "github.com/hanpama/snapgraph/internal/broker"
	executor "github.com/hanpama/snapgraph/internal/executor"
	language "github.com/hanpama/snapgraph/internal/language"
)

// SubscribeFunc opens the event stream behind one subscription root field.
// The args are the field's coerced argument values.
type SubscribeFunc func(ctx context.Context, field string, args map[string]any) (*broker.Subscription, error)

// graphql-transport-ws message types.
const (
	wsSubprotocol = "graphql-transport-ws"

	msgConnectionInit = "connection_init"
	msgConnectionAck  = "connection_ack"
	msgPing           = "ping"
	msgPong           = "pong"
	msgSubscribe      = "subscribe"
	msgNext           = "next"
	msgError          = "error"
	msgComplete       = "complete"
)

type wsMessage struct {
	ID      string          `json:"id,omitempty"`
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// wsSession is one WebSocket connection and the subscriptions it carries.
// Writes are serialized through mu; every subscription goroutine shares it.
type wsSession struct {
	conn *websocket.Conn
	h    *Handler

	mu          sync.Mutex
	initialized bool
	subs        map[string]*broker.Subscription
	closed      bool
}

func (h *Handler) serveWS(w http.ResponseWriter, r *http.Request) {
	if h.opt.Subscribe == nil {
		http.Error(w, "subscriptions are not enabled", http.StatusBadRequest)
		return
	}
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	sess := &wsSession{conn: conn, h: h, subs: make(map[string]*broker.Subscription)}
	defer sess.close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	for {
		var msg wsMessage
		if err := conn.ReadJSON(&msg); err != nil {
			return
		}
		switch msg.Type {
		case msgConnectionInit:
			sess.mu.Lock()
			sess.initialized = true
			sess.mu.Unlock()
			sess.write(wsMessage{Type: msgConnectionAck})
		case msgPing:
			sess.write(wsMessage{Type: msgPong})
		case msgSubscribe:
			sess.handleSubscribe(ctx, msg)
		case msgComplete:
			sess.stop(msg.ID)
		}
	}
}

func (s *wsSession) handleSubscribe(ctx context.Context, msg wsMessage) {
	s.mu.Lock()
	ready := s.initialized
	_, duplicate := s.subs[msg.ID]
	s.mu.Unlock()

	if !ready {
		s.closeWith(4401, "connection not initialized")
		return
	}
	if msg.ID == "" || duplicate {
		s.closeWith(4409, "subscriber id already exists: "+msg.ID)
		return
	}

	var req GraphQLRequest
	if err := json.Unmarshal(msg.Payload, &req); err != nil {
		s.writeError(msg.ID, "invalid subscribe payload")
		return
	}
	doc, err := language.ParseQuery(req.Query)
	if err != nil {
		s.writeError(msg.ID, err.Error())
		return
	}
	field, err := s.h.exec.SubscriptionSourceField(doc, req.OperationName, req.Variables)
	if err != nil {
		s.writeError(msg.ID, err.Error())
		return
	}
	sub, err := s.h.opt.Subscribe(ctx, field.Name, field.Args)
	if err != nil {
		s.writeError(msg.ID, err.Error())
		return
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		sub.Close()
		return
	}
	s.subs[msg.ID] = sub
	s.mu.Unlock()

	s.h.log.Debug().Str("field", field.Name).Str("subscriber", msg.ID).Msg("subscription started")

	go func() {
		defer s.stop(msg.ID)
		for ev := range sub.Events() {
			result := s.h.exec.ExecuteRequest(ctx, doc, req.OperationName, req.Variables, ev.Payload)
			s.writeResult(msg.ID, result)
		}
		s.write(wsMessage{ID: msg.ID, Type: msgComplete})
	}()
}

// stop closes one subscription. The broker closes its event channel, which
// ends the delivery goroutine.
func (s *wsSession) stop(id string) {
	s.mu.Lock()
	sub := s.subs[id]
	delete(s.subs, id)
	s.mu.Unlock()
	if sub != nil {
		sub.Close()
	}
}

func (s *wsSession) close() {
	s.mu.Lock()
	s.closed = true
	subs := s.subs
	s.subs = make(map[string]*broker.Subscription)
	s.mu.Unlock()
	for _, sub := range subs {
		sub.Close()
	}
	_ = s.conn.Close()
}

func (s *wsSession) write(msg wsMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	_ = s.conn.WriteJSON(msg)
}

func (s *wsSession) writeResult(id string, result *executor.ExecutionResult) {
	payload, err := json.Marshal(toSpecResult(result))
	if err != nil {
		return
	}
	s.write(wsMessage{ID: id, Type: msgNext, Payload: payload})
}

func (s *wsSession) writeError(id, message string) {
	payload, _ := json.Marshal([]specError{{Message: message}})
	s.write(wsMessage{ID: id, Type: msgError, Payload: payload})
}

func (s *wsSession) closeWith(code int, reason string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	deadline := time.Now().Add(time.Second)
	_ = s.conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, reason), deadline)
	_ = s.conn.Close()
	s.closed = true
}
