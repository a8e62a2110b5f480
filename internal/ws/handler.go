package ws

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/DoyleJ11/duel-backend/internal/duel"
	"github.com/DoyleJ11/duel-backend/internal/hub"
	"github.com/DoyleJ11/duel-backend/internal/metrics"
	"github.com/DoyleJ11/duel-backend/pkg/types"
)

var errUnknownType = errors.New("unknown type")

type Options struct {
	OutboxSize     int
	WriteTimeout   time.Duration
	PingInterval   time.Duration
	OriginPatterns []string
}

func (o Options) withDefaults() Options {
	if o.OutboxSize <= 0 {
		o.OutboxSize = 16
	}
	if o.WriteTimeout <= 0 {
		o.WriteTimeout = 3 * time.Second
	}
	if o.PingInterval <= 0 {
		o.PingInterval = 30 * time.Second
	}
	return o
}

// Handler upgrades the request and serves one client session: a reader loop
// turning frames into hub calls and a writer draining the outbox.
func Handler(h *hub.Hub, reg *Registry, opts Options, log *zap.Logger) http.HandlerFunc {
	opts = opts.withDefaults()
	log = log.Named("ws")

	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			OriginPatterns: opts.OriginPatterns,
		})
		if err != nil {
			log.Debug("websocket accept failed", zap.Error(err))
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "bye")

		id := duel.ConnectionID(uuid.NewString())
		clog := log.With(zap.String("conn", string(id)))
		out := reg.Register(id, opts.OutboxSize)
		metrics.Connections.Inc()
		clog.Debug("connection opened")

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()
		defer func() {
			if err := h.Disconnect(id); err != nil {
				clog.Warn("disconnect not queued", zap.Error(err))
			}
			reg.Unregister(id)
			metrics.Connections.Dec()
			clog.Debug("connection closed")
		}()

		go writeLoop(ctx, cancel, conn, out, opts, clog)

		// Reader loop
		for {
			_, data, err := conn.Read(ctx)
			if err != nil {
				switch websocket.CloseStatus(err) {
				case websocket.StatusNormalClosure, websocket.StatusGoingAway:
				default:
					if ctx.Err() == nil {
						clog.Debug("read failed", zap.Error(err))
					}
				}
				return
			}

			var cm types.ClientMessage
			if err := json.Unmarshal(data, &cm); err != nil {
				reg.Send(id, types.ServerMessage{Type: types.MsgError, Error: "bad json"})
				continue
			}
			if reply, ok := serve(ctx, h, id, cm); ok {
				reg.Send(id, reply)
			}
		}
	}
}

// serve applies one client frame. It returns a frame to send back when the
// call has a result or failed at ingress.
func serve(ctx context.Context, h *hub.Hub, id duel.ConnectionID, cm types.ClientMessage) (types.ServerMessage, bool) {
	var err error
	switch cm.Type {
	case types.CmdCreateDuel:
		err = h.CreateDuel(id, cm.InspectionTime, cm.CubeSize, cm.ScrambleLength)
	case types.CmdJoinDuel:
		var joined bool
		joined, err = h.JoinDuel(ctx, id, cm.DuelCode)
		if err == nil {
			return types.ServerMessage{Type: types.MsgResult, ID: cm.ID, OK: types.Ptr(joined)}, true
		}
	case types.CmdReadyForDuel:
		err = h.ReadyForDuel(id, cm.DuelCode)
	case types.CmdExitDuel:
		err = h.ExitDuel(id, cm.DuelCode)
	case types.CmdFinishSolve:
		err = h.FinishSolve(id, cm.DuelCode, cm.SolveTimeMillis)
	default:
		err = fmt.Errorf("%w %q", errUnknownType, cm.Type)
	}
	if err != nil {
		return types.ServerMessage{Type: types.MsgError, ID: cm.ID, Error: err.Error()}, true
	}
	return types.ServerMessage{}, false
}

func writeLoop(ctx context.Context, cancel context.CancelFunc, conn *websocket.Conn, out <-chan types.ServerMessage, opts Options, log *zap.Logger) {
	defer cancel()
	ping := time.NewTicker(opts.PingInterval)
	defer ping.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case frame, ok := <-out:
			if !ok {
				return
			}
			wctx, wcancel := context.WithTimeout(ctx, opts.WriteTimeout)
			err := wsjson.Write(wctx, conn, frame)
			wcancel()
			if err != nil {
				log.Debug("write failed", zap.String("type", frame.Type), zap.Error(err))
				return
			}
		case <-ping.C:
			pctx, pcancel := context.WithTimeout(ctx, opts.WriteTimeout)
			err := conn.Ping(pctx)
			pcancel()
			if err != nil {
				log.Debug("ping failed", zap.Error(err))
				return
			}
		}
	}
}
