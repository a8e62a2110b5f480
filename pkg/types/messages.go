package types

import "time"

// Client -> Server
// CreateDuel:
//   inspectionTime: number (seconds)
//   cubeSize: number
//   scrambleLength: number | null
//
// JoinDuel:
//   duelCode: string
//   -> answered with Result { ok }
//
// ReadyForDuel, ExitDuel:
//   duelCode: string
//
// FinishSolve:
//   duelCode: string
//   solveTimeMillis: number
//
// Every frame may carry an "id" that is echoed on its Result or Error.

const (
	CmdCreateDuel   = "CreateDuel"
	CmdJoinDuel     = "JoinDuel"
	CmdReadyForDuel = "ReadyForDuel"
	CmdExitDuel     = "ExitDuel"
	CmdFinishSolve  = "FinishSolve"
)

type ClientMessage struct {
	Type            string `json:"type"`
	ID              string `json:"id,omitempty"`
	DuelCode        string `json:"duelCode,omitempty"`
	InspectionTime  int    `json:"inspectionTime,omitempty"`
	CubeSize        int    `json:"cubeSize,omitempty"`
	ScrambleLength  *int   `json:"scrambleLength,omitempty"`
	SolveTimeMillis int64  `json:"solveTimeMillis,omitempty"`
}

// Server -> Client
// DuelCreated:   duelCode
// DuelReady:     duelCode, scramble, cubeSize, inspectionTime
// DuelStarted:   {}
// DuelEnded:     isWinner, opponentSolveTimeMillis
// DuelCancelled: {}
// Result:        id, ok
// Error:         id, error

const (
	MsgResult = "Result"
	MsgError  = "Error"
)

type ServerMessage struct {
	Type string `json:"type"`
	ID   string `json:"id,omitempty"`

	DuelCode                string `json:"duelCode,omitempty"`
	Scramble                string `json:"scramble,omitempty"`
	CubeSize                int    `json:"cubeSize,omitempty"`
	InspectionTime          *int   `json:"inspectionTime,omitempty"`
	IsWinner                *bool  `json:"isWinner,omitempty"`
	OpponentSolveTimeMillis *int64 `json:"opponentSolveTimeMillis,omitempty"`

	OK    *bool  `json:"ok,omitempty"`
	Error string `json:"error,omitempty"`
}

// DuelView is the read-only shape served by GET /duels/{code}.
type DuelView struct {
	Code            string    `json:"code"`
	Phase           string    `json:"phase"`
	CubeSize        int       `json:"cubeSize"`
	InspectionTime  int       `json:"inspectionTime"`
	Scramble        string    `json:"scramble"`
	HasChallenger   bool      `json:"hasChallenger"`
	HostReady       bool      `json:"hostReady"`
	ChallengerReady bool      `json:"challengerReady"`
	CreatedAt       time.Time `json:"createdAt"`
}

func Ptr[T any](v T) *T { return &v }
