package hub

import (
	"context"
	"fmt"

	"github.com/DoyleJ11/duel-backend/internal/duel"
)

// The methods below are what a connected client can call. They return only
// ingress errors (malformed input, stopped hub); the outcome of the action
// itself reaches clients as notifications.

// CreateDuel issues a fresh code for conn. The code is announced with
// DuelCreated once the duel exists.
func (h *Hub) CreateDuel(conn duel.ConnectionID, inspectionTime, cubeSize int, scrambleLength *int) error {
	code, err := h.newCode()
	if err != nil {
		return fmt.Errorf("generate duel code: %w", err)
	}
	ev, err := NewCreated(conn, code, cubeSize, inspectionTime, scrambleLength)
	if err != nil {
		return err
	}
	return h.enqueue(ev)
}

// JoinDuel waits for the join to be applied and reports whether conn got the
// challenger seat. A refused caller is sent DuelCancelled.
func (h *Hub) JoinDuel(ctx context.Context, conn duel.ConnectionID, code string) (bool, error) {
	ev, err := NewJoined(conn, code)
	if err != nil {
		return false, err
	}
	reply := make(chan bool, 1)
	ev.reply = reply
	if err := h.enqueue(ev); err != nil {
		return false, err
	}
	select {
	case ok := <-reply:
		return ok, nil
	case <-ctx.Done():
		return false, ctx.Err()
	}
}

func (h *Hub) ReadyForDuel(conn duel.ConnectionID, code string) error {
	ev, err := NewPlayerReady(conn, code)
	if err != nil {
		return err
	}
	return h.enqueue(ev)
}

func (h *Hub) ExitDuel(conn duel.ConnectionID, code string) error {
	ev, err := NewExited(conn, code)
	if err != nil {
		return err
	}
	return h.enqueue(ev)
}

func (h *Hub) FinishSolve(conn duel.ConnectionID, code string, solveTimeMillis int64) error {
	ev, err := NewSolveFinished(conn, code, solveTimeMillis)
	if err != nil {
		return err
	}
	return h.enqueue(ev)
}

// Disconnect is called by the transport when conn goes away.
func (h *Hub) Disconnect(conn duel.ConnectionID) error {
	if conn == "" {
		return invalid("missing connection id")
	}
	return h.enqueue(Disconnected{Conn: conn})
}

// Duel returns a copy of the duel as the consumer loop currently sees it.
func (h *Hub) Duel(ctx context.Context, code string) (duel.Duel, bool, error) {
	reply := make(chan lookupResult, 1)
	if err := h.enqueue(lookup{DuelCode: code, reply: reply}); err != nil {
		return duel.Duel{}, false, err
	}
	select {
	case res := <-reply:
		return res.duel, res.found, nil
	case <-ctx.Done():
		return duel.Duel{}, false, ctx.Err()
	}
}
