package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"energychart/internal/charts"
	"energychart/internal/metrics"
	"energychart/internal/models"
)

const (
	writeWait = 10 * time.Second
	pongWait  = 60 * time.Second
	pingEvery = pongWait * 9 / 10
)

// LiveRequest asks a live view to show another range
type LiveRequest struct {
	From     string `json:"from"`
	To       string `json:"to"`
	Channels string `json:"channels"`
}

// LiveMessage is pushed to live view clients. Type is "state" or "error".
type LiveMessage struct {
	Type  string            `json:"type"`
	State *models.ViewState `json:"state,omitempty"`
	Error string            `json:"error,omitempty"`
}

// HandleLiveEnergyChart serves a websocket live view. Every published view
// state is pushed to the client; range requests from the client replace
// each other so only the latest one is shown.
func (s *Server) HandleLiveEnergyChart(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("Websocket upgrade failed", map[string]interface{}{"error": err.Error()})
		return
	}
	defer conn.Close()

	metrics.LiveViewers.Inc()
	defer metrics.LiveViewers.Dec()

	viewer := uuid.NewString()
	opened := time.Now()
	s.log.Info("Live view opened", map[string]interface{}{"viewer": viewer, "remote": r.RemoteAddr})
	defer func() {
		s.log.Info("Live view closed", map[string]interface{}{"viewer": viewer, "duration": time.Since(opened).String()})
	}()

	tr := s.translator(r)
	chart := charts.NewEnergyChart(s.Fetcher, s.EdgeConfig, tr, charts.WithQueryTimeout(s.Config.EdgeTimeout))
	defer chart.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	states, unsubscribe := chart.Subscribe()
	defer unsubscribe()
	failures := make(chan string, 1)

	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		s.writeLive(ctx, conn, states, failures)
		cancel()
	}()

	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var req LiveRequest
		if err := conn.ReadJSON(&req); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.log.Debug("Live view read failed", map[string]interface{}{"viewer": viewer, "error": err.Error()})
			}
			break
		}

		rng, err := models.ParseTimeRange(req.From, req.To, s.Location, time.Now())
		if err == nil {
			var channels models.ChannelAddresses
			if channels, err = s.channelsOrDefault(req.Channels); err == nil {
				go s.updateLive(ctx, chart, rng, channels, failures)
				continue
			}
		}
		report(ctx, failures, err.Error())
	}

	cancel()
	unsubscribe()
	<-writerDone
}

// updateLive runs one range query; superseded queries stay silent
func (s *Server) updateLive(ctx context.Context, chart *charts.EnergyChart, rng models.TimeRange, channels models.ChannelAddresses, failures chan<- string) {
	err := chart.Update(ctx, rng, channels)
	if err == nil || errors.Is(err, charts.ErrSuperseded) || errors.Is(err, charts.ErrClosed) || ctx.Err() != nil {
		return
	}
	report(ctx, failures, err.Error())
}

func report(ctx context.Context, failures chan<- string, message string) {
	select {
	case failures <- message:
	case <-ctx.Done():
	}
}

// writeLive is the only writer of conn
func (s *Server) writeLive(ctx context.Context, conn *websocket.Conn, states <-chan models.ViewState, failures <-chan string) {
	ping := time.NewTicker(pingEvery)
	defer ping.Stop()

	write := func(msg LiveMessage) bool {
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteJSON(msg); err != nil {
			s.log.Debug("Live view write failed", map[string]interface{}{"error": err.Error()})
			return false
		}
		return true
	}

	for {
		select {
		case <-ctx.Done():
			conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
			return
		case state, ok := <-states:
			if !ok {
				return
			}
			if !write(LiveMessage{Type: "state", State: &state}) {
				return
			}
		case message := <-failures:
			if !write(LiveMessage{Type: "error", Error: message}) {
				return
			}
		case <-ping.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
