package duel

import (
	"sort"
	"time"
)

// Store maps duel codes to live duels. It does no locking: exactly one
// goroutine (the hub's consumer loop) may call it.
type Store struct {
	duels map[string]*Duel
}

func NewStore() *Store {
	return &Store{duels: make(map[string]*Duel)}
}

func (s *Store) Create(code string, host ConnectionID, cubeSize, inspectionTime int, scramble string, now time.Time) error {
	if _, ok := s.duels[code]; ok {
		return ErrDuelExists
	}
	s.duels[code] = &Duel{
		Code:           code,
		Host:           host,
		Scramble:       scramble,
		CubeSize:       cubeSize,
		InspectionTime: inspectionTime,
		CreatedAt:      now,
	}
	return nil
}

// Join seats challenger and returns a copy of the joined duel.
func (s *Store) Join(code string, challenger ConnectionID) (Duel, error) {
	d, ok := s.duels[code]
	if !ok {
		return Duel{}, ErrNotFound
	}
	if d.HasChallenger() {
		return Duel{}, ErrSlotTaken
	}
	d.Challenger = challenger
	d.EverJoined = true
	return *d, nil
}

// SetReady marks conn ready. It reports true only for the call that makes
// both sides ready, so a repeated ready cannot start the duel twice.
func (s *Store) SetReady(code string, conn ConnectionID) (bool, error) {
	d, ok := s.duels[code]
	if !ok {
		return false, ErrNotFound
	}
	wasReady := d.BothReady()
	switch {
	case conn == d.Host:
		d.HostReady = true
	case d.HasChallenger() && conn == d.Challenger:
		d.ChallengerReady = true
	default:
		return false, ErrNotParticipant
	}
	return !wasReady && d.BothReady(), nil
}

func (s *Store) SetSolveTime(code string, conn ConnectionID, t time.Duration) error {
	d, ok := s.duels[code]
	if !ok {
		return ErrNotFound
	}
	switch {
	case conn == d.Host:
		d.HostSolve = &t
	case d.HasChallenger() && conn == d.Challenger:
		d.ChallengerSolve = &t
	default:
		return ErrNotParticipant
	}
	return nil
}

// RemoveParticipant deletes the duel when the host leaves. When the
// challenger leaves only the challenger's fields are cleared; the host's
// ready flag and solve time are kept.
func (s *Store) RemoveParticipant(code string, conn ConnectionID) (Departure, error) {
	d, ok := s.duels[code]
	if !ok {
		return Departure{}, ErrNotFound
	}
	switch {
	case conn == d.Host:
		delete(s.duels, code)
		return Departure{HostLeft: true, Other: d.Challenger}, nil
	case d.HasChallenger() && conn == d.Challenger:
		d.Challenger = ""
		d.ChallengerReady = false
		d.ChallengerSolve = nil
		return Departure{Other: d.Host}, nil
	default:
		return Departure{}, ErrNotParticipant
	}
}

// ComputeResult is ok only once both participants have a solve time.
// The challenger wins ties.
func (s *Store) ComputeResult(code string) (Result, bool) {
	d, ok := s.duels[code]
	if !ok || !d.BothSolved() {
		return Result{}, false
	}
	host, challenger := *d.HostSolve, *d.ChallengerSolve
	hostWon := host < challenger
	r := Result{Host: d.Host, Challenger: d.Challenger, HostWon: hostWon}
	if hostWon {
		r.WinnerTime, r.LoserTime = host, challenger
	} else {
		r.WinnerTime, r.LoserTime = challenger, host
	}
	return r, true
}

func (s *Store) Remove(code string) {
	delete(s.duels, code)
}

func (s *Store) Get(code string) (Duel, bool) {
	d, ok := s.duels[code]
	if !ok {
		return Duel{}, false
	}
	return *d, true
}

// Snapshot returns copies of every duel, ordered by code.
func (s *Store) Snapshot() []Duel {
	out := make([]Duel, 0, len(s.duels))
	for _, d := range s.duels {
		out = append(out, *d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

// CodesFor lists the codes of every duel conn takes part in.
func (s *Store) CodesFor(conn ConnectionID) []string {
	var codes []string
	for code, d := range s.duels {
		if d.Host == conn || (d.HasChallenger() && d.Challenger == conn) {
			codes = append(codes, code)
		}
	}
	sort.Strings(codes)
	return codes
}

func (s *Store) Len() int { return len(s.duels) }
