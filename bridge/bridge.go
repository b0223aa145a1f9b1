// Package bridge exposes a controller session over HTTP so that tools and
// scripts can drive it without speaking the wire protocol.
package bridge

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/segmentio/encoding/json"
	log "github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"uc/common/packets"
	"uc/common/types"
)

// Controller is the part of a client session the bridge drives.
type Controller interface {
	Connect(ctx context.Context, addr string, port int) error
	Disconnect()
	Register(name string) error
	Deregister() error
	KeyDown(key string, extra ...string) error
	Joystick(x, y float32) error
	Gyro(x, y, z float32) error
	Status() types.SessionStatus
}

type Options struct {
	// Rate and Burst bound the input routes. Rate <= 0 disables limiting.
	Rate     float64
	Burst    int
	Gatherer prometheus.Gatherer
}

type Bridge struct {
	srv     *http.Server
	ctl     Controller
	limiter *rate.Limiter
	logger  *log.Entry
}

const maxBodyBytes = 4096

func NewBridge(ctl Controller, serverAddress string, opts Options) *Bridge {
	b := &Bridge{
		ctl:    ctl,
		logger: log.WithFields(log.Fields{"package": "bridge"}),
	}
	if opts.Rate > 0 {
		burst := opts.Burst
		if burst < 1 {
			burst = 1
		}
		b.limiter = rate.NewLimiter(rate.Limit(opts.Rate), burst)
	}

	m := mux.NewRouter()
	b.HandleRouting(m, opts.Gatherer)
	b.srv = &http.Server{
		Addr:              serverAddress,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       120 * time.Second,
		Handler:           m,
	}
	return b
}

func (b *Bridge) Handler() http.Handler {
	return b.srv.Handler
}

func (b *Bridge) HandleRouting(m *mux.Router, gatherer prometheus.Gatherer) {
	m.HandleFunc("/session", b.handleSession).Methods("GET")
	m.HandleFunc("/healthz", b.handleHealth).Methods("GET")
	if gatherer != nil {
		m.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})).Methods("GET")
	}
	m.HandleFunc("/connect", b.limit(b.handleConnect)).Methods("POST")
	m.HandleFunc("/disconnect", b.limit(b.handleDisconnect)).Methods("POST")
	m.HandleFunc("/register", b.limit(b.handleRegister)).Methods("POST")
	m.HandleFunc("/deregister", b.limit(b.handleDeregister)).Methods("POST")
	m.HandleFunc("/key/{key}", b.limit(b.handleKeyDown)).Methods("POST")
	m.HandleFunc("/joystick", b.limit(b.handleJoystick)).Methods("POST")
	m.HandleFunc("/gyro", b.limit(b.handleGyro)).Methods("POST")
}

// Serve blocks until the server stops. It returns nil after Shutdown.
func (b *Bridge) Serve() error {
	b.logger.Infof("listening on %s", b.srv.Addr)
	if err := b.srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (b *Bridge) Shutdown(ctx context.Context) error {
	return b.srv.Shutdown(ctx)
}

func (b *Bridge) handleSession(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, b.ctl.Status())
}

func (b *Bridge) handleHealth(w http.ResponseWriter, r *http.Request) {
	st := b.ctl.Status()
	code := http.StatusOK
	if !st.Running {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, packets.Health{Running: st.Running, State: st.State})
}

func (b *Bridge) handleConnect(w http.ResponseWriter, r *http.Request) {
	var req packets.Connect
	if !b.decode(w, r, &req) {
		return
	}
	if req.Addr == "" || req.Port <= 0 {
		writeError(w, http.StatusBadRequest, "bad_request", "addr and port are required")
		return
	}
	if err := b.ctl.Connect(r.Context(), req.Addr, req.Port); err != nil {
		b.fail(w, "handleConnect", err)
		return
	}
	writeJSON(w, http.StatusOK, b.ctl.Status())
}

func (b *Bridge) handleDisconnect(w http.ResponseWriter, r *http.Request) {
	b.ctl.Disconnect()
	w.WriteHeader(http.StatusNoContent)
}

func (b *Bridge) handleRegister(w http.ResponseWriter, r *http.Request) {
	b.logger.Debugf("handleRegister start")
	defer b.logger.Debugf("handleRegister end")
	var req packets.Register
	if !b.decode(w, r, &req) {
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "bad_request", "name is required")
		return
	}
	if err := b.ctl.Register(req.Name); err != nil {
		b.fail(w, "handleRegister", err)
		return
	}
	// the player id arrives asynchronously; poll /session for it
	st := b.ctl.Status()
	writeJSON(w, http.StatusAccepted, packets.RegisterAck{Name: req.Name, PlayerID: st.PlayerID, State: st.State})
}

func (b *Bridge) handleDeregister(w http.ResponseWriter, r *http.Request) {
	if err := b.ctl.Deregister(); err != nil {
		b.fail(w, "handleDeregister", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (b *Bridge) handleKeyDown(w http.ResponseWriter, r *http.Request) {
	key := mux.Vars(r)["key"]
	var req packets.KeyDown
	if !b.decodeOptional(w, r, &req) {
		return
	}
	if err := b.ctl.KeyDown(key, req.Extra...); err != nil {
		b.fail(w, "handleKeyDown", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (b *Bridge) handleJoystick(w http.ResponseWriter, r *http.Request) {
	var req packets.Joystick
	if !b.decode(w, r, &req) {
		return
	}
	if err := b.ctl.Joystick(req.X, req.Y); err != nil {
		b.fail(w, "handleJoystick", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (b *Bridge) handleGyro(w http.ResponseWriter, r *http.Request) {
	var req packets.Gyro
	if !b.decode(w, r, &req) {
		return
	}
	if err := b.ctl.Gyro(req.X, req.Y, req.Z); err != nil {
		b.fail(w, "handleGyro", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (b *Bridge) decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	body, ok := b.readBody(w, r)
	if !ok {
		return false
	}
	return b.unmarshal(w, body, v)
}

// decodeOptional accepts an empty body and leaves v untouched.
func (b *Bridge) decodeOptional(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	body, ok := b.readBody(w, r)
	if !ok {
		return false
	}
	if len(body) == 0 {
		return true
	}
	return b.unmarshal(w, body, v)
}

func (b *Bridge) readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	if r.Body == nil {
		return nil, true
	}
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		b.logger.Errorf("decode: read body: %v", err)
		writeError(w, http.StatusBadRequest, "bad_request", err.Error())
		return nil, false
	}
	return body, true
}

func (b *Bridge) unmarshal(w http.ResponseWriter, body []byte, v interface{}) bool {
	if err := json.Unmarshal(body, v); err != nil {
		b.logger.Warnf("decode: json: %v", err)
		writeError(w, http.StatusBadRequest, "bad_request", err.Error())
		return false
	}
	return true
}

func (b *Bridge) fail(w http.ResponseWriter, handler string, err error) {
	code, kind := statusFor(err)
	b.logger.Warnf("%s: %v", handler, err)
	writeError(w, code, kind, err.Error())
}

// limit rejects input requests with 429 once the token bucket is empty.
func (b *Bridge) limit(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if b.limiter != nil && !b.limiter.Allow() {
			writeError(w, http.StatusTooManyRequests, "rate_limited", "too many requests")
			return
		}
		next(w, r)
	}
}

func statusFor(err error) (int, string) {
	var e *types.Error
	if !errors.As(err, &e) {
		return http.StatusInternalServerError, "internal"
	}
	switch e.Kind {
	case types.ErrKindNotConnected, types.ErrKindTransportFailure, types.ErrKindProtocolViolation:
		return http.StatusBadGateway, e.Kind.String()
	case types.ErrKindPlayerAlreadyRegistered, types.ErrKindPlayerNotRegistered:
		return http.StatusConflict, e.Kind.String()
	case types.ErrKindInvalidJoystickValue, types.ErrKindInvalidGyroValue:
		return http.StatusBadRequest, e.Kind.String()
	}
	return http.StatusInternalServerError, e.Kind.String()
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Errorf("writeJSON: %v", err)
	}
}

func writeError(w http.ResponseWriter, code int, kind, message string) {
	writeJSON(w, code, packets.Error{Kind: kind, Message: message})
}
