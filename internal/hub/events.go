package hub

import (
	"errors"
	"fmt"
	"time"

	"github.com/DoyleJ11/duel-backend/internal/duel"
)

var ErrInvalidEvent = errors.New("invalid duel event")

const (
	MinCubeSize          = 2
	MaxCubeSize          = 17
	MaxInspectionSeconds = 60
	MaxScrambleLength    = 1000
)

// Event is one client action (or internal housekeeping) waiting for the
// consumer loop. Construct client events with the New* functions so that
// malformed input is rejected before it is queued.
type Event interface {
	Kind() string
	Code() string
	isEvent()
}

type Created struct {
	Conn           duel.ConnectionID
	DuelCode       string
	CubeSize       int
	InspectionTime int
	ScrambleLength *int
}

type Joined struct {
	Conn     duel.ConnectionID
	DuelCode string

	reply chan<- bool
}

type PlayerReady struct {
	Conn     duel.ConnectionID
	DuelCode string
}

type Exited struct {
	Conn     duel.ConnectionID
	DuelCode string
}

type SolveFinished struct {
	Conn      duel.ConnectionID
	DuelCode  string
	SolveTime time.Duration
}

// Disconnected exits every duel the connection takes part in.
type Disconnected struct {
	Conn duel.ConnectionID
}

// Sweep evicts never-joined duels created before Cutoff.
type Sweep struct {
	Cutoff time.Time
}

type lookup struct {
	DuelCode string
	reply    chan<- lookupResult
}

type lookupResult struct {
	duel  duel.Duel
	found bool
}

func (Created) Kind() string       { return "created" }
func (Joined) Kind() string        { return "joined" }
func (PlayerReady) Kind() string   { return "player_ready" }
func (Exited) Kind() string        { return "exited" }
func (SolveFinished) Kind() string { return "solve_finished" }
func (Disconnected) Kind() string  { return "disconnected" }
func (Sweep) Kind() string         { return "sweep" }
func (lookup) Kind() string        { return "lookup" }

func (e Created) Code() string       { return e.DuelCode }
func (e Joined) Code() string        { return e.DuelCode }
func (e PlayerReady) Code() string   { return e.DuelCode }
func (e Exited) Code() string        { return e.DuelCode }
func (e SolveFinished) Code() string { return e.DuelCode }
func (Disconnected) Code() string    { return "" }
func (Sweep) Code() string           { return "" }
func (e lookup) Code() string        { return e.DuelCode }

func (Created) isEvent()       {}
func (Joined) isEvent()        {}
func (PlayerReady) isEvent()   {}
func (Exited) isEvent()        {}
func (SolveFinished) isEvent() {}
func (Disconnected) isEvent()  {}
func (Sweep) isEvent()         {}
func (lookup) isEvent()        {}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidEvent, fmt.Sprintf(format, args...))
}

func checkTarget(conn duel.ConnectionID, code string) error {
	if conn == "" {
		return invalid("missing connection id")
	}
	if !duel.ValidCode(code) {
		return invalid("malformed duel code %q", code)
	}
	return nil
}

func NewCreated(conn duel.ConnectionID, code string, cubeSize, inspectionTime int, scrambleLength *int) (Created, error) {
	if err := checkTarget(conn, code); err != nil {
		return Created{}, err
	}
	if cubeSize < MinCubeSize || cubeSize > MaxCubeSize {
		return Created{}, invalid("cube size %d outside [%d, %d]", cubeSize, MinCubeSize, MaxCubeSize)
	}
	if inspectionTime < 0 || inspectionTime > MaxInspectionSeconds {
		return Created{}, invalid("inspection time %ds outside [0, %d]", inspectionTime, MaxInspectionSeconds)
	}
	var length *int
	if scrambleLength != nil {
		n := *scrambleLength
		if n < 0 || n > MaxScrambleLength {
			return Created{}, invalid("scramble length %d outside [0, %d]", n, MaxScrambleLength)
		}
		length = &n
	}
	return Created{
		Conn:           conn,
		DuelCode:       code,
		CubeSize:       cubeSize,
		InspectionTime: inspectionTime,
		ScrambleLength: length,
	}, nil
}

func NewJoined(conn duel.ConnectionID, code string) (Joined, error) {
	if err := checkTarget(conn, code); err != nil {
		return Joined{}, err
	}
	return Joined{Conn: conn, DuelCode: code}, nil
}

func NewPlayerReady(conn duel.ConnectionID, code string) (PlayerReady, error) {
	if err := checkTarget(conn, code); err != nil {
		return PlayerReady{}, err
	}
	return PlayerReady{Conn: conn, DuelCode: code}, nil
}

func NewExited(conn duel.ConnectionID, code string) (Exited, error) {
	if err := checkTarget(conn, code); err != nil {
		return Exited{}, err
	}
	return Exited{Conn: conn, DuelCode: code}, nil
}

func NewSolveFinished(conn duel.ConnectionID, code string, solveTimeMillis int64) (SolveFinished, error) {
	if err := checkTarget(conn, code); err != nil {
		return SolveFinished{}, err
	}
	if solveTimeMillis < 0 {
		return SolveFinished{}, invalid("negative solve time %dms", solveTimeMillis)
	}
	return SolveFinished{
		Conn:      conn,
		DuelCode:  code,
		SolveTime: time.Duration(solveTimeMillis) * time.Millisecond,
	}, nil
}
