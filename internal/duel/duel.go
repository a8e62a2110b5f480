package duel

import (
	"errors"
	"time"
)

var ErrNotFound = errors.New("duel not found")
var ErrDuelExists = errors.New("duel code already taken")
var ErrSlotTaken = errors.New("challenger slot already occupied")
var ErrNotParticipant = errors.New("connection is not a participant")

// ConnectionID is the transport's stable identifier for one client session.
type ConnectionID string

type Phase string

const (
	PhaseAwaitingChallenger Phase = "awaiting_challenger"
	PhaseAwaitingReady      Phase = "awaiting_ready"
	PhaseInProgress         Phase = "in_progress"
)

type Duel struct {
	Code           string
	Host           ConnectionID
	Challenger     ConnectionID // empty while nobody has joined
	Scramble       string
	CubeSize       int
	InspectionTime int // seconds

	HostReady       bool
	ChallengerReady bool

	HostSolve       *time.Duration
	ChallengerSolve *time.Duration

	CreatedAt time.Time
	// EverJoined stays true after a challenger leaves; the sweeper uses it.
	EverJoined bool
}

func (d Duel) HasChallenger() bool { return d.Challenger != "" }

func (d Duel) BothReady() bool {
	return d.HasChallenger() && d.HostReady && d.ChallengerReady
}

func (d Duel) BothSolved() bool {
	return d.HasChallenger() && d.HostSolve != nil && d.ChallengerSolve != nil
}

func (d Duel) Phase() Phase {
	switch {
	case !d.HasChallenger():
		return PhaseAwaitingChallenger
	case d.BothReady():
		return PhaseInProgress
	default:
		return PhaseAwaitingReady
	}
}

// Participants returns host first, then the challenger if present.
func (d Duel) Participants() []ConnectionID {
	if !d.HasChallenger() {
		return []ConnectionID{d.Host}
	}
	return []ConnectionID{d.Host, d.Challenger}
}

type Result struct {
	Host       ConnectionID
	Challenger ConnectionID
	HostWon    bool
	WinnerTime time.Duration
	LoserTime  time.Duration
}

// OpponentTime is the time of whoever is not conn.
func (r Result) OpponentTime(conn ConnectionID) time.Duration {
	hostTime, challengerTime := r.LoserTime, r.WinnerTime
	if r.HostWon {
		hostTime, challengerTime = r.WinnerTime, r.LoserTime
	}
	if conn == r.Host {
		return challengerTime
	}
	return hostTime
}

func (r Result) IsWinner(conn ConnectionID) bool {
	if conn == r.Host {
		return r.HostWon
	}
	return !r.HostWon
}

// Departure describes what RemoveParticipant did.
type Departure struct {
	HostLeft bool
	// Other is the remaining participant, empty when there is none.
	Other ConnectionID
}
