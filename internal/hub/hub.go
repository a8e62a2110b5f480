package hub

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/DoyleJ11/duel-backend/internal/duel"
	"github.com/DoyleJ11/duel-backend/internal/metrics"
	"github.com/DoyleJ11/duel-backend/internal/notify"
	"github.com/DoyleJ11/duel-backend/internal/queue"
	"github.com/DoyleJ11/duel-backend/internal/scramble"
)

var ErrStopped = errors.New("hub stopped")
var ErrHandlerPanic = errors.New("handler panicked")

type Scrambler interface {
	Generate(size int, length *int) (string, error)
}

type Option func(*Hub)

func WithClock(now func() time.Time) Option {
	return func(h *Hub) { h.now = now }
}

func WithCodeGenerator(gen func() (string, error)) Option {
	return func(h *Hub) { h.newCode = gen }
}

func WithScrambler(s Scrambler) Option {
	return func(h *Hub) { h.scrambler = s }
}

// Hub owns the duel store. Every mutation happens on the goroutine running
// Run; the public methods only validate input and enqueue events.
type Hub struct {
	events    *queue.Queue[Event]
	store     *duel.Store
	notifier  notify.Notifier
	scrambler Scrambler
	newCode   func() (string, error)
	now       func() time.Time
	log       *zap.Logger
}

func NewHub(n notify.Notifier, log *zap.Logger, opts ...Option) *Hub {
	h := &Hub{
		events:    queue.New[Event](),
		store:     duel.NewStore(),
		notifier:  n,
		scrambler: scramble.New(),
		newCode:   duel.GenerateCode,
		now:       time.Now,
		log:       log.Named("hub"),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Run consumes events until ctx is cancelled. Events still queued at that
// point are abandoned.
func (h *Hub) Run(ctx context.Context) error {
	h.log.Info("duel hub started")
	defer h.events.Close()

	for {
		ev, err := h.events.Pop(ctx)
		if err != nil {
			h.log.Info("duel hub stopped", zap.Int("abandoned", h.events.Len()))
			return nil
		}
		h.process(ev)
		metrics.ActiveDuels.Set(float64(h.store.Len()))
		metrics.QueueDepth.Set(float64(h.events.Len()))
	}
}

func (h *Hub) enqueue(ev Event) error {
	if err := h.events.Push(ev); err != nil {
		return ErrStopped
	}
	return nil
}

func (h *Hub) process(ev Event) {
	err := h.dispatch(ev)
	switch {
	case err == nil:
		metrics.EventsTotal.WithLabelValues(ev.Kind(), metrics.OutcomeApplied).Inc()
	case errors.Is(err, duel.ErrNotFound), errors.Is(err, duel.ErrNotParticipant), errors.Is(err, duel.ErrSlotTaken):
		metrics.EventsTotal.WithLabelValues(ev.Kind(), metrics.OutcomeRejected).Inc()
		h.log.Debug("duel event rejected",
			zap.String("kind", ev.Kind()), zap.String("duel_code", ev.Code()), zap.Error(err))
	case errors.Is(err, duel.ErrDuelExists):
		// The creator gets no DuelCreated and has to retry.
		metrics.EventsTotal.WithLabelValues(ev.Kind(), metrics.OutcomeRejected).Inc()
		h.log.Warn("duel code collision, creation dropped",
			zap.String("kind", ev.Kind()), zap.String("duel_code", ev.Code()))
	default:
		metrics.EventsTotal.WithLabelValues(ev.Kind(), metrics.OutcomeFailed).Inc()
		h.log.Error("duel event dropped",
			zap.String("kind", ev.Kind()), zap.String("duel_code", ev.Code()), zap.Error(err))
	}
}

func (h *Hub) dispatch(ev Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			metrics.HandlerPanicsTotal.WithLabelValues(ev.Kind()).Inc()
			err = fmt.Errorf("%w: %v", ErrHandlerPanic, r)
		}
	}()

	switch e := ev.(type) {
	case Created:
		return h.handleCreated(e)
	case Joined:
		return h.handleJoined(e)
	case PlayerReady:
		return h.handlePlayerReady(e)
	case Exited:
		return h.exit(e.DuelCode, e.Conn)
	case SolveFinished:
		return h.handleSolveFinished(e)
	case Disconnected:
		return h.handleDisconnected(e)
	case Sweep:
		h.handleSweep(e)
		return nil
	case lookup:
		d, ok := h.store.Get(e.DuelCode)
		e.reply <- lookupResult{duel: d, found: ok}
		return nil
	default:
		return fmt.Errorf("unsupported event %T", ev)
	}
}

func (h *Hub) handleCreated(e Created) error {
	scr, err := h.scrambler.Generate(e.CubeSize, e.ScrambleLength)
	if err != nil {
		return fmt.Errorf("generate scramble: %w", err)
	}
	if err := h.store.Create(e.DuelCode, e.Conn, e.CubeSize, e.InspectionTime, scr, h.now()); err != nil {
		return err
	}
	h.log.Info("duel created",
		zap.String("duel_code", e.DuelCode), zap.String("conn", string(e.Conn)), zap.Int("cube_size", e.CubeSize))
	h.notifier.SendTo(e.Conn, notify.DuelCreated{DuelCode: e.DuelCode})
	return nil
}

func (h *Hub) handleJoined(e Joined) error {
	joined := false
	defer func() {
		if e.reply != nil {
			e.reply <- joined
		}
	}()

	d, err := h.store.Join(e.DuelCode, e.Conn)
	if err != nil {
		h.notifier.SendTo(e.Conn, notify.DuelCancelled{})
		return err
	}
	joined = true
	h.notifier.SendToMany(d.Participants(), notify.DuelReady{
		DuelCode:       d.Code,
		Scramble:       d.Scramble,
		CubeSize:       d.CubeSize,
		InspectionTime: d.InspectionTime,
	})
	return nil
}

func (h *Hub) handlePlayerReady(e PlayerReady) error {
	started, err := h.store.SetReady(e.DuelCode, e.Conn)
	if err != nil || !started {
		return err
	}
	d, _ := h.store.Get(e.DuelCode)
	h.log.Info("duel started", zap.String("duel_code", e.DuelCode))
	h.notifier.SendToMany(d.Participants(), notify.DuelStarted{})
	return nil
}

// exit removes conn from the duel. Only a departing host cancels the duel
// for the other side; a departing challenger leaves the host waiting.
func (h *Hub) exit(code string, conn duel.ConnectionID) error {
	dep, err := h.store.RemoveParticipant(code, conn)
	if err != nil {
		return err
	}
	if dep.HostLeft {
		h.log.Info("duel cancelled by host", zap.String("duel_code", code))
		if dep.Other != "" {
			h.notifier.SendTo(dep.Other, notify.DuelCancelled{})
		}
	}
	return nil
}

func (h *Hub) handleSolveFinished(e SolveFinished) error {
	if err := h.store.SetSolveTime(e.DuelCode, e.Conn, e.SolveTime); err != nil {
		return err
	}
	r, ok := h.store.ComputeResult(e.DuelCode)
	if !ok {
		return nil
	}
	for _, conn := range []duel.ConnectionID{r.Host, r.Challenger} {
		h.notifier.SendTo(conn, notify.DuelEnded{
			IsWinner:                r.IsWinner(conn),
			OpponentSolveTimeMillis: r.OpponentTime(conn).Milliseconds(),
		})
	}
	h.store.Remove(e.DuelCode)
	metrics.DuelsCompletedTotal.Inc()
	h.log.Info("duel completed",
		zap.String("duel_code", e.DuelCode), zap.Bool("host_won", r.HostWon), zap.Duration("winner_time", r.WinnerTime))
	return nil
}

func (h *Hub) handleDisconnected(e Disconnected) error {
	var err error
	for _, code := range h.store.CodesFor(e.Conn) {
		if exitErr := h.exit(code, e.Conn); exitErr != nil {
			err = multierr.Append(err, fmt.Errorf("exit %s: %w", code, exitErr))
		}
	}
	return err
}

func (h *Hub) handleSweep(e Sweep) {
	swept := 0
	for _, d := range h.store.Snapshot() {
		if d.HasChallenger() || d.EverJoined || !d.CreatedAt.Before(e.Cutoff) {
			continue
		}
		h.store.Remove(d.Code)
		swept++
	}
	if swept > 0 {
		metrics.DuelsSweptTotal.Add(float64(swept))
		h.log.Info("swept unmatched duels", zap.Int("count", swept), zap.Time("cutoff", e.Cutoff))
	}
}
