// Package notify defines the outbound side of the duel engine: the messages
// pushed to clients and the port the transport implements to deliver them.
package notify

import "github.com/DoyleJ11/duel-backend/internal/duel"

type Message interface {
	// Type is the wire name of the notification.
	Type() string
	isNotification()
}

type DuelCreated struct {
	DuelCode string
}

type DuelReady struct {
	DuelCode       string
	Scramble       string
	CubeSize       int
	InspectionTime int
}

type DuelStarted struct{}

type DuelEnded struct {
	IsWinner                bool
	OpponentSolveTimeMillis int64
}

type DuelCancelled struct{}

func (DuelCreated) Type() string   { return "DuelCreated" }
func (DuelReady) Type() string     { return "DuelReady" }
func (DuelStarted) Type() string   { return "DuelStarted" }
func (DuelEnded) Type() string     { return "DuelEnded" }
func (DuelCancelled) Type() string { return "DuelCancelled" }

func (DuelCreated) isNotification()   {}
func (DuelReady) isNotification()     {}
func (DuelStarted) isNotification()   {}
func (DuelEnded) isNotification()     {}
func (DuelCancelled) isNotification() {}

// Notifier pushes messages to connections. Implementations must not block
// the caller for long: delivery is best effort.
type Notifier interface {
	SendTo(conn duel.ConnectionID, msg Message)
	SendToMany(conns []duel.ConnectionID, msg Message)
}
