package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/vmorsell/gesture-control/internal/hub"
	"github.com/vmorsell/gesture-control/internal/keymap"
	"github.com/vmorsell/gesture-control/internal/mediakey"
	"github.com/vmorsell/gesture-control/internal/ratelimit"
	"github.com/vmorsell/gesture-control/internal/volume"
	"github.com/vmorsell/gesture-control/pkg/model"
	"go.uber.org/zap"
)

const (
	RouteControl = "/control"
	RouteHealth  = "/health"
	RouteVolume  = "/volume"
	RouteStream  = "/ws"

	HealthMessage = "Gesture Controller Backend is Running"

	DefaultMaxBodyBytes = 4096

	volumeReadTimeout = 2 * time.Second

	ErrInvalidAction    = "Invalid action"
	ErrRateLimited      = "rate limit exceeded"
	ErrVolumeReadFailed = "failed to read volume"
)

type Handler struct {
	logger       *zap.Logger
	keys         keymap.Table
	dispatcher   mediakey.Dispatcher
	limiter      *ratelimit.Limiter
	volume       volume.Reader
	stream       *hub.Hub
	maxBodyBytes int64
}

type Option func(*Handler)

// WithRateLimiter throttles valid actions per client.
func WithRateLimiter(l *ratelimit.Limiter) Option {
	return func(h *Handler) { h.limiter = l }
}

// WithVolume exposes GET /volume backed by r.
func WithVolume(r volume.Reader) Option {
	return func(h *Handler) { h.volume = r }
}

// WithStream exposes GET /ws and broadcasts events to its clients.
func WithStream(cfg hub.Config) Option {
	return func(h *Handler) {
		h.stream = hub.New(h.logger.Named("hub"), cfg, h.handleStreamMessage)
	}
}

func WithMaxBodyBytes(n int64) Option {
	return func(h *Handler) {
		if n > 0 {
			h.maxBodyBytes = n
		}
	}
}

func WithKeymap(t keymap.Table) Option {
	return func(h *Handler) { h.keys = t }
}

func NewHandler(logger *zap.Logger, dispatcher mediakey.Dispatcher, opts ...Option) *Handler {
	h := &Handler{
		logger:       logger,
		keys:         keymap.Default(),
		dispatcher:   dispatcher,
		maxBodyBytes: DefaultMaxBodyBytes,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Stream returns the WebSocket hub, or nil when streaming is off. The caller
// runs it.
func (h *Handler) Stream() *hub.Hub {
	return h.stream
}

// Routes returns the HTTP surface with request IDs and panic recovery applied.
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST "+RouteControl, h.HandleControl)
	mux.HandleFunc("GET "+RouteHealth, h.HandleHealth)
	if h.volume != nil {
		mux.HandleFunc("GET "+RouteVolume, h.HandleVolume)
	}
	if h.stream != nil {
		mux.Handle("GET "+RouteStream, h.stream)
	}
	return h.withRequestID(h.recoverPanics(mux))
}

func (h *Handler) HandleControl(w http.ResponseWriter, r *http.Request) {
	logger := h.requestLogger(r)

	var action *string
	var req model.ControlRequest
	body := http.MaxBytesReader(w, r.Body, h.maxBodyBytes)
	if err := json.NewDecoder(body).Decode(&req); err == nil {
		action = req.Action
	} else {
		logger.Debug("undecodable control request", zap.Error(err))
	}

	status, resp := h.control(r.Context(), logger, clientIP(r), action)
	if status == http.StatusTooManyRequests {
		retry := h.limiter.RetryAfter(clientIP(r))
		w.Header().Set("Retry-After", formatRetryAfter(retry))
	}
	writeJSON(w, status, resp)
}

func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, model.HealthResponse{
		Status:  model.StatusOnline,
		Message: HealthMessage,
	})
}

func (h *Handler) HandleVolume(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), volumeReadTimeout)
	defer cancel()

	vol, err := h.volume.Current(ctx)
	if err != nil {
		h.requestLogger(r).Error("failed to read volume", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, model.VolumeResponse{
			Status:  model.StatusError,
			Message: ErrVolumeReadFailed,
		})
		return
	}

	writeJSON(w, http.StatusOK, model.VolumeResponse{
		Status: model.StatusSuccess,
		Volume: &vol,
	})
}

// PublishVolume pushes a host volume change to stream clients.
func (h *Handler) PublishVolume(vol int) {
	h.publish(model.Event{Type: model.EventTypeVolume, Volume: &vol})
}

// control validates action, presses the mapped key and reports the outcome.
// Every call resolves to success, invalid action, rate limited or dispatch failure.
func (h *Handler) control(ctx context.Context, logger *zap.Logger, client string, action *string) (int, model.ControlResponse) {
	if action == nil {
		return http.StatusBadRequest, h.errorResponse(ErrInvalidAction)
	}
	key, ok := h.keys.Lookup(*action)
	if !ok {
		return http.StatusBadRequest, h.errorResponse(ErrInvalidAction)
	}

	if !h.limiter.Allow(client) {
		logger.Warn("rate limited", zap.String("client", client), zap.String("action", *action))
		return http.StatusTooManyRequests, h.errorResponse(ErrRateLimited)
	}

	logger.Info("executing action", zap.String("action", *action), zap.String("key", string(key)))

	if err := h.dispatcher.Dispatch(ctx, key); err != nil {
		de := mediakey.AsDispatchError(key, err)
		logger.Error("failed to press key",
			zap.String("action", *action),
			zap.String("key", string(key)),
			zap.String("reason", string(de.Reason)),
			zap.Error(errors.Unwrap(de)))
		resp := h.errorResponse(de.Error())
		resp.Reason = string(de.Reason)
		return http.StatusInternalServerError, resp
	}

	h.publish(model.Event{
		Type:   model.EventTypeDispatch,
		Status: model.StatusSuccess,
		Action: model.Action(*action),
		Key:    key,
	})

	return http.StatusOK, model.ControlResponse{
		Status: model.StatusSuccess,
		Action: model.Action(*action),
		Key:    key,
	}
}

func (h *Handler) handleStreamMessage(ctx context.Context, c *hub.Client, msg []byte) {
	logger := h.logger.With(zap.String("clientID", c.ID()))

	var action *string
	var req model.ControlRequest
	if err := json.Unmarshal(msg, &req); err == nil {
		action = req.Action
	}

	status, resp := h.control(ctx, logger, "ws:"+c.ID(), action)

	evt := model.Event{
		Type:    model.EventTypeResult,
		Status:  resp.Status,
		Action:  resp.Action,
		Key:     resp.Key,
		Message: resp.Message,
		Reason:  resp.Reason,
	}
	if status != http.StatusOK {
		evt.Type = model.EventTypeError
	}
	if err := c.Send(evt); err != nil {
		logger.Warn("failed to reply to stream client", zap.Error(err))
	}
}

func (h *Handler) publish(evt model.Event) {
	if h.stream == nil {
		return
	}
	if err := h.stream.Broadcast(evt); err != nil {
		h.logger.Warn("failed to broadcast event", zap.String("type", evt.Type), zap.Error(err))
	}
}

func (h *Handler) errorResponse(message string) model.ControlResponse {
	return model.ControlResponse{
		Status:  model.StatusError,
		Message: message,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func formatRetryAfter(d time.Duration) string {
	secs := int(math.Ceil(d.Seconds()))
	if secs < 1 {
		secs = 1
	}
	return strconv.Itoa(secs)
}
