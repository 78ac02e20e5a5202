// Package webstat serves a point-in-time JSON view of the running tournament
// over HTTP, for dashboards polling long runs.
package webstat

import (
	"encoding/json"
	"fmt"
	"net"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"gauntlet/internal/obslog"
	"gauntlet/internal/stats"
)

type Snapshot struct {
	Completed int64                `json:"completed"`
	Total     int64                `json:"total"`
	Pairs     []stats.PairSnapshot `json:"pairs"`
}

// Source is the scheduler-side view the server reads from.
type Source interface {
	Progress() (completed, total int64)
	Pairs() []stats.PairSnapshot
}

type Server struct {
	srv *fasthttp.Server
	ln  net.Listener
}

// Start listens on addr and serves GET /stats until Close.
func Start(addr string, src Source) (*Server, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("webstat listen %s: %w", addr, err)
	}

	srv := &fasthttp.Server{
		Name: "gauntlet",
		Handler: func(ctx *fasthttp.RequestCtx) {
			if string(ctx.Path()) != "/stats" || !ctx.IsGet() {
				ctx.SetStatusCode(fasthttp.StatusNotFound)
				return
			}
			completed, total := src.Progress()
			body, err := json.Marshal(Snapshot{
				Completed: completed,
				Total:     total,
				Pairs:     src.Pairs(),
			})
			if err != nil {
				ctx.SetStatusCode(fasthttp.StatusInternalServerError)
				return
			}
			ctx.SetContentType("application/json")
			ctx.SetBody(body)
		},
	}

	go func() {
		if err := srv.Serve(ln); err != nil {
			obslog.L().Warn("webstat server stopped", zap.Error(err))
		}
	}()

	obslog.L().Info("webstat listening", zap.String("addr", ln.Addr().String()))
	return &Server{srv: srv, ln: ln}, nil
}

func (s *Server) Addr() string { return s.ln.Addr().String() }

func (s *Server) Close() error { return s.srv.Shutdown() }
