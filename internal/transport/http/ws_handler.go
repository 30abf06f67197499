package http

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"lingo-trainer/internal/app"
	"lingo-trainer/internal/domain"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// SessionStarter creates quiz sessions.
type SessionStarter interface {
	StartSession(ctx context.Context, quizID string, onExpire func(app.Snapshot)) (*app.Controller, error)
}

// SessionRegistry tracks the sessions of open connections.
type SessionRegistry interface {
	Put(id string, session *app.Controller)
	// Touch marks the session as still in use.
	Touch(id string)
	Delete(id string)
}

type WSHandler struct {
	sessions SessionStarter
	registry SessionRegistry
	log      *zap.Logger
	upgrader websocket.Upgrader
}

func NewWSHandler(sessions SessionStarter, registry SessionRegistry, log *zap.Logger) *WSHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &WSHandler{
		sessions: sessions,
		registry: registry,
		log:      log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type outboundMessage struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// questionView never carries the expected answer.
type questionView struct {
	Index       int                 `json:"index"`
	Total       int                 `json:"total"`
	QuestionID  string              `json:"questionId"`
	Type        domain.QuestionKind `json:"type"`
	Prompt      string              `json:"prompt"`
	Options     []domain.Option     `json:"options,omitempty"`
	AudioURL    string              `json:"audioUrl,omitempty"`
	Words       []string            `json:"words,omitempty"`
	RemainingMs int64               `json:"remainingMs"`
	Score       int                 `json:"score"`
}

func newQuestionView(s app.Snapshot) questionView {
	v := questionView{
		Index:       s.Index,
		Total:       s.Total,
		QuestionID:  s.Question.ID,
		Type:        s.Question.Kind(),
		Prompt:      s.Question.Prompt,
		RemainingMs: s.Remaining.Milliseconds(),
		Score:       s.Score,
	}
	switch body := s.Question.Body.(type) {
	case domain.MultipleChoice:
		v.Options = body.Options
	case domain.Listening:
		v.AudioURL = body.AudioURL
	case domain.Ordering:
		v.Words = s.Presentation
	}
	return v
}

type feedbackView struct {
	QuestionID string                `json:"questionId"`
	Correct    bool                  `json:"correct"`
	TimedOut   bool                  `json:"timedOut"`
	Score      int                   `json:"score"`
	Last       bool                  `json:"last"`
	Result     domain.QuestionResult `json:"result"`
}

func newFeedbackView(s app.Snapshot, timedOut bool) feedbackView {
	v := feedbackView{
		QuestionID: s.Question.ID,
		Correct:    s.Feedback == app.FeedbackCorrect,
		TimedOut:   timedOut,
		Score:      s.Score,
		Last:       s.Index == s.Total-1,
	}
	if n := len(s.Results); n > 0 {
		v.Result = s.Results[n-1]
	}
	return v
}

// outbox serialises writes to the connection. Pushes after close are dropped.
type outbox struct {
	mu     sync.Mutex
	closed bool
	send   chan outboundMessage
	done   chan struct{}
}

func newOutbox() *outbox {
	return &outbox{
		send: make(chan outboundMessage, 16),
		done: make(chan struct{}),
	}
}

func (o *outbox) push(typ string, payload any) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		return
	}
	select {
	case o.send <- outboundMessage{Type: typ, Payload: payload}:
	case <-o.done:
	}
}

func (o *outbox) close() {
	close(o.done)
	o.mu.Lock()
	o.closed = true
	close(o.send)
	o.mu.Unlock()
}

// ServeWS upgrades the request and runs one quiz session over the connection.
// Leaving before the last question abandons the session without recording it.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	quizID := r.URL.Query().Get("quizId")
	if quizID == "" {
		http.Error(w, "missing quizId", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("ws upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	out := newOutbox()
	session, err := h.sessions.StartSession(r.Context(), quizID, func(s app.Snapshot) {
		out.push("feedback", newFeedbackView(s, true))
	})
	if err != nil {
		_ = conn.WriteJSON(outboundMessage{Type: "error", Payload: errorPayload{Message: err.Error()}})
		return
	}

	connID := uuid.NewString()
	log := h.log.With(zap.String("conn_id", connID), zap.String("quiz_id", quizID))
	if h.registry != nil {
		h.registry.Put(connID, session)
	}

	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		for msg := range out.send {
			if err := conn.WriteJSON(msg); err != nil {
				log.Debug("ws write error", zap.Error(err))
				// keep draining so pushers never block on a dead connection
				for range out.send {
				}
				return
			}
		}
	}()

	out.push("question", newQuestionView(session.Snapshot()))

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		if h.registry != nil {
			h.registry.Touch(connID)
		}
		h.handle(r.Context(), session, inbound, out)
	}

	if h.registry != nil {
		h.registry.Delete(connID)
	} else {
		session.Close()
	}
	out.close()
	<-writerDone
	log.Debug("ws connection closed", zap.String("state", string(session.State())))
}

func (h *WSHandler) handle(ctx context.Context, session *app.Controller, inbound inboundMessage, out *outbox) {
	switch inbound.Type {
	case "input":
		var answer domain.Answer
		if err := json.Unmarshal(inbound.Payload, &answer); err != nil {
			out.push("error", errorPayload{Message: "invalid input payload"})
			return
		}
		session.SetAnswer(answer)
	case "answer":
		submitted := false
		if hasPayload(inbound.Payload) {
			var answer domain.Answer
			if err := json.Unmarshal(inbound.Payload, &answer); err != nil {
				out.push("error", errorPayload{Message: "invalid answer payload"})
				return
			}
			submitted = session.Submit(answer)
		} else {
			submitted = session.SubmitCurrent()
		}
		if !submitted {
			out.push("error", errorPayload{Message: "question already submitted"})
			return
		}
		out.push("feedback", newFeedbackView(session.Snapshot(), false))
	case "next":
		attempt, err := session.Advance(ctx)
		if err != nil {
			out.push("error", errorPayload{Message: err.Error()})
			return
		}
		if attempt != nil {
			out.push("completed", attempt)
			return
		}
		out.push("question", newQuestionView(session.Snapshot()))
	default:
		out.push("error", errorPayload{Message: "unsupported message type"})
	}
}

func hasPayload(raw json.RawMessage) bool {
	return len(raw) > 0 && string(raw) != "null"
}
