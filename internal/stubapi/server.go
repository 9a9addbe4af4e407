// Package stubapi serves a local back-office API over internal/sqlite for
// development and integration tests. Every route takes a JSON POST body and
// answers with the {success, message, data} envelope.
package stubapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/billyloki/module-shop-admin/internal/sqlite"
	"github.com/billyloki/module-shop-admin/pkg/editor"
	"github.com/billyloki/module-shop-admin/pkg/gateway"
	"github.com/billyloki/module-shop-admin/pkg/shopadmin"
	"github.com/billyloki/module-shop-admin/pkg/types"
)

// DefaultPrefix is the path prefix routes are mounted under.
const DefaultPrefix = "/api"

const maxRequestBytes = 1 << 20

// Server holds the routes and their dependencies.
type Server struct {
	backend      *sqlite.Backend
	logger       zerolog.Logger
	validate     *validator.Validate
	prefix       string
	doubleEncode bool
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithPrefix mounts the routes under prefix instead of DefaultPrefix.
func WithPrefix(prefix string) Option {
	return func(s *Server) { s.prefix = strings.TrimRight(prefix, "/") }
}

// DoubleEncode makes the category delete route answer with the envelope
// encoded a second time as a JSON string, as some upstream deployments do.
func DoubleEncode(on bool) Option {
	return func(s *Server) { s.doubleEncode = on }
}

// New returns the API handler over an attached backend.
func New(backend *sqlite.Backend, opts ...Option) http.Handler {
	s := &Server{
		backend:  backend,
		logger:   zerolog.Nop(),
		validate: editor.NewValidator(),
		prefix:   DefaultPrefix,
	}
	for _, opt := range opts {
		opt(s)
	}

	r := mux.NewRouter()
	api := r.PathPrefix(s.prefix).Subrouter()
	api.Use(s.requestID, s.logRequests)
	s.Register(api)
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusNotFound, types.Envelope{Message: "no such route"}, false)
	})
	return r
}

// Register adds the API routes to r.
func (s *Server) Register(r *mux.Router) {
	r.HandleFunc(shopadmin.PathCategoryGrid, s.categoryGrid).Methods(http.MethodPost)
	r.HandleFunc(shopadmin.PathCategorySwitch, s.categorySwitch).Methods(http.MethodPost)
	r.HandleFunc(shopadmin.PathCategoryDelete, s.categoryDelete).Methods(http.MethodPost)

	r.HandleFunc(shopadmin.PathCountries, s.countries).Methods(http.MethodPost)
	r.HandleFunc(shopadmin.PathProvinces, s.provinces).Methods(http.MethodPost)

	r.HandleFunc(shopadmin.PathDestinationGrid, s.destinationGrid).Methods(http.MethodPost)
	r.HandleFunc(shopadmin.PathDestinationAdd, s.destinationAdd).Methods(http.MethodPost)
	r.HandleFunc(shopadmin.PathDestinationEdit, s.destinationEdit).Methods(http.MethodPost)
	r.HandleFunc(shopadmin.PathDestinationDelete, s.destinationDelete).Methods(http.MethodPost)
}

// requestID echoes the caller's request id or assigns one.
func (s *Server) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(gateway.RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
			r.Header.Set(gateway.RequestIDHeader, id)
		}
		w.Header().Set(gateway.RequestIDHeader, id)
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.status = code
	sr.ResponseWriter.WriteHeader(code)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Str("request_id", r.Header.Get(gateway.RequestIDHeader)).
			Int("status", rec.status).
			Dur("elapsed", time.Since(start)).
			Msg("request")
	})
}

// writeData answers with a success envelope carrying data.
func (s *Server) writeData(w http.ResponseWriter, data any, double bool) {
	var raw json.RawMessage
	if data != nil {
		b, err := json.Marshal(data)
		if err != nil {
			s.logger.Error().Err(err).Msg("encoding response data")
			writeEnvelope(w, http.StatusInternalServerError, types.Envelope{Message: "internal error"}, false)
			return
		}
		raw = b
	}
	writeEnvelope(w, http.StatusOK, types.Envelope{Success: true, Data: raw}, double)
}

// writeError maps err to a failure envelope. Record and validation errors
// are reported with status 200 and their message; anything else is a 500.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	var ve *types.ValidationError
	switch {
	case errors.As(err, &ve), errors.Is(err, types.ErrNotFound), isRecordError(err):
		writeEnvelope(w, http.StatusOK, types.Envelope{Message: err.Error()}, false)
	case errors.Is(err, errBadRequest):
		writeEnvelope(w, http.StatusBadRequest, types.Envelope{Message: err.Error()}, false)
	case errors.Is(err, sqlite.ErrDetached):
		writeEnvelope(w, http.StatusServiceUnavailable, types.Envelope{Message: err.Error()}, false)
	default:
		s.logger.Error().Err(err).Msg("request failed")
		writeEnvelope(w, http.StatusInternalServerError, types.Envelope{Message: "internal error"}, false)
	}
}

func isRecordError(err error) bool {
	for _, target := range []error{
		sqlite.ErrNameRequired,
		sqlite.ErrCountryNotFound,
		sqlite.ErrProvinceMismatch,
		sqlite.ErrDuplicateRegion,
		sqlite.ErrNegativePrice,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func writeEnvelope(w http.ResponseWriter, status int, env types.Envelope, double bool) {
	body, err := json.Marshal(env)
	if err == nil && double {
		body, err = json.Marshal(string(body))
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(body)
}
