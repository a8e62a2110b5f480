package ws

import (
	"sync"

	"go.uber.org/zap"

	"github.com/DoyleJ11/duel-backend/internal/duel"
	"github.com/DoyleJ11/duel-backend/internal/metrics"
	"github.com/DoyleJ11/duel-backend/internal/notify"
	"github.com/DoyleJ11/duel-backend/pkg/types"
)

// Registry maps live connections to their outboxes and implements
// notify.Notifier on top of them. Sends never block: a full outbox drops
// the frame.
type Registry struct {
	mu    sync.RWMutex
	conns map[duel.ConnectionID]chan types.ServerMessage
	log   *zap.Logger
}

var _ notify.Notifier = (*Registry)(nil)

func NewRegistry(log *zap.Logger) *Registry {
	return &Registry{
		conns: make(map[duel.ConnectionID]chan types.ServerMessage),
		log:   log.Named("registry"),
	}
}

func (r *Registry) Register(id duel.ConnectionID, size int) <-chan types.ServerMessage {
	ch := make(chan types.ServerMessage, size)
	r.mu.Lock()
	r.conns[id] = ch
	r.mu.Unlock()
	return ch
}

// Unregister closes the outbox; the connection's writer drains and exits.
func (r *Registry) Unregister(id duel.ConnectionID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if ch, ok := r.conns[id]; ok {
		close(ch)
		delete(r.conns, id)
	}
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}

func (r *Registry) SendTo(conn duel.ConnectionID, msg notify.Message) {
	r.Send(conn, Encode(msg))
}

func (r *Registry) SendToMany(conns []duel.ConnectionID, msg notify.Message) {
	frame := Encode(msg)
	for _, c := range conns {
		r.Send(c, frame)
	}
}

// Send queues a raw frame for conn.
func (r *Registry) Send(conn duel.ConnectionID, frame types.ServerMessage) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ch, ok := r.conns[conn]
	if !ok {
		metrics.NotificationsTotal.WithLabelValues(frame.Type, "gone").Inc()
		return false
	}
	select {
	case ch <- frame:
		metrics.NotificationsTotal.WithLabelValues(frame.Type, "queued").Inc()
		return true
	default:
		// Client is slow/full - drop the frame.
		metrics.NotificationsTotal.WithLabelValues(frame.Type, "dropped").Inc()
		r.log.Warn("outbox full, notification dropped",
			zap.String("conn", string(conn)), zap.String("type", frame.Type))
		return false
	}
}

func Encode(msg notify.Message) types.ServerMessage {
	out := types.ServerMessage{Type: msg.Type()}
	switch m := msg.(type) {
	case notify.DuelCreated:
		out.DuelCode = m.DuelCode
	case notify.DuelReady:
		out.DuelCode = m.DuelCode
		out.Scramble = m.Scramble
		out.CubeSize = m.CubeSize
		out.InspectionTime = types.Ptr(m.InspectionTime)
	case notify.DuelEnded:
		out.IsWinner = types.Ptr(m.IsWinner)
		out.OpponentSolveTimeMillis = types.Ptr(m.OpponentSolveTimeMillis)
	}
	return out
}
