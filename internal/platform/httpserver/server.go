package httpserver

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	pollprogram "agora/contexts/governance/poll-program"
	"agora/contexts/governance/poll-program/domain/address"
	domainerrors "agora/contexts/governance/poll-program/domain/errors"
	pollhttp "agora/contexts/governance/poll-program/transport/http"

	"github.com/google/uuid"
	httpSwagger "github.com/swaggo/http-swagger"
	_ "agora/internal/platform/httpserver/docs"
)

const (
	signerHeader    = "X-Signer"
	requestIDHeader = "X-Request-Id"
)

type Server struct {
	mux     *http.ServeMux
	handler http.Handler
	logger  *slog.Logger
	addr    string
	polls   pollprogram.Module
	swagger bool
}

type Options struct {
	Addr          string
	EnableSwagger bool
}

func New(polls pollprogram.Module, logger *slog.Logger, opts Options) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Addr == "" {
		opts.Addr = ":8080"
	}

	s := &Server{
		mux:     http.NewServeMux(),
		logger:  logger,
		addr:    opts.Addr,
		polls:   polls,
		swagger: opts.EnableSwagger,
	}
	s.registerRoutes()
	s.handler = s.withRequestID(s.mux)
	return s
}

func (s *Server) Handler() http.Handler {
	return s.handler
}

func (s *Server) Start() error {
	s.logger.Info("http server starting",
		"event", "http_server_starting",
		"module", "internal/platform/httpserver",
		"layer", "platform",
		"addr", s.addr,
	)
	return http.ListenAndServe(s.addr, s.handler)
}

func (s *Server) registerRoutes() {
	if s.swagger {
		s.mux.Handle("/swagger/", httpSwagger.Handler(
			httpSwagger.URL("/swagger/doc.json"),
		))
	}

	s.mux.HandleFunc("POST /v1/polls", s.handleCreatePoll)
	s.mux.HandleFunc("GET /v1/polls/{poll_id}", s.handleGetPoll)
	s.mux.HandleFunc("POST /v1/polls/{poll_id}/candidates", s.handleRegisterCandidate)
	s.mux.HandleFunc("GET /v1/polls/{poll_id}/candidates/{candidate_name}", s.handleGetCandidate)
	s.mux.HandleFunc("POST /v1/polls/{poll_id}/votes", s.handleCastVote)
	s.mux.HandleFunc("GET /v1/polls/{poll_id}/voters/{voter}", s.handleGetVoter)
	s.mux.HandleFunc("GET /v1/polls/{poll_id}/addresses", s.handleDeriveAddresses)
}

func (s *Server) handleCreatePoll(w http.ResponseWriter, r *http.Request) {
	signer, ok := requireSigner(w, r)
	if !ok {
		return
	}
	var req pollhttp.CreatePollRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writePollError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.polls.Handler.CreatePollHandler(r.Context(), signer, req)
	if err != nil {
		writePollDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleGetPoll(w http.ResponseWriter, r *http.Request) {
	pollID, ok := pathPollID(w, r)
	if !ok {
		return
	}
	resp, err := s.polls.Handler.GetPollHandler(r.Context(), pollID)
	if err != nil {
		writePollDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRegisterCandidate(w http.ResponseWriter, r *http.Request) {
	signer, ok := requireSigner(w, r)
	if !ok {
		return
	}
	pollID, ok := pathPollID(w, r)
	if !ok {
		return
	}
	var req pollhttp.RegisterCandidateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writePollError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.polls.Handler.RegisterCandidateHandler(r.Context(), signer, pollID, req)
	if err != nil {
		writePollDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleGetCandidate(w http.ResponseWriter, r *http.Request) {
	pollID, ok := pathPollID(w, r)
	if !ok {
		return
	}
	resp, err := s.polls.Handler.GetCandidateHandler(r.Context(), pollID, r.PathValue("candidate_name"))
	if err != nil {
		writePollDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCastVote(w http.ResponseWriter, r *http.Request) {
	signer, ok := requireSigner(w, r)
	if !ok {
		return
	}
	pollID, ok := pathPollID(w, r)
	if !ok {
		return
	}
	var req pollhttp.CastVoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writePollError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.polls.Handler.CastVoteHandler(r.Context(), signer, pollID, req)
	if err != nil {
		writePollDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleGetVoter(w http.ResponseWriter, r *http.Request) {
	pollID, ok := pathPollID(w, r)
	if !ok {
		return
	}
	resp, err := s.polls.Handler.GetVoterHandler(r.Context(), pollID, r.PathValue("voter"))
	if err != nil {
		writePollDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDeriveAddresses(w http.ResponseWriter, r *http.Request) {
	pollID, ok := pathPollID(w, r)
	if !ok {
		return
	}
	query := r.URL.Query()
	resp, err := s.polls.Handler.AddressesHandler(pollID, query.Get("candidate_name"), query.Get("voter"))
	if err != nil {
		writePollDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// withRequestID tags every request with an id, echoes it back and logs the
// outcome once the handler returns.
func (s *Server) withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := strings.TrimSpace(r.Header.Get(requestIDHeader))
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, requestID)

		started := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(recorder, r)

		level := slog.LevelInfo
		if recorder.status >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		s.logger.Log(r.Context(), level, "http request completed",
			"event", "http_request_completed",
			"module", "internal/platform/httpserver",
			"layer", "platform",
			"request_id", requestID,
			"method", r.Method,
			"path", r.URL.Path,
			"status", recorder.status,
			"duration_ms", time.Since(started).Milliseconds(),
		)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func requireSigner(w http.ResponseWriter, r *http.Request) (string, bool) {
	signer := strings.TrimSpace(r.Header.Get(signerHeader))
	if signer == "" {
		writePollError(w, http.StatusUnauthorized, "missing_signer", "X-Signer header is required")
		return "", false
	}
	return signer, true
}

func pathPollID(w http.ResponseWriter, r *http.Request) (uint64, bool) {
	pollID, err := strconv.ParseUint(r.PathValue("poll_id"), 10, 64)
	if err != nil {
		writePollError(w, http.StatusBadRequest, "invalid_poll_id", "poll_id must be an unsigned 64-bit integer")
		return 0, false
	}
	return pollID, true
}

func writePollDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, address.ErrInvalidAddress):
		writePollError(w, http.StatusBadRequest, "invalid_address", err.Error())
	case errors.Is(err, domainerrors.ErrInvalidSigner):
		writePollError(w, http.StatusUnauthorized, "missing_signer", err.Error())
	case errors.Is(err, domainerrors.ErrAlreadyVoted):
		writePollError(w, http.StatusConflict, "already_voted", err.Error())
	case errors.Is(err, domainerrors.ErrAddressInUse):
		writePollError(w, http.StatusConflict, "address_in_use", err.Error())
	case errors.Is(err, domainerrors.ErrUnauthorized):
		writePollError(w, http.StatusForbidden, "unauthorized", err.Error())
	case errors.Is(err, domainerrors.ErrAccountNotFound):
		writePollError(w, http.StatusNotFound, "account_not_found", err.Error())
	case errors.Is(err, domainerrors.ErrPollNotActive):
		writePollError(w, http.StatusUnprocessableEntity, "poll_not_active", err.Error())
	case errors.Is(err, domainerrors.ErrPollMismatch):
		writePollError(w, http.StatusUnprocessableEntity, "poll_mismatch", err.Error())
	case errors.Is(err, domainerrors.ErrArithmeticOverflow):
		writePollError(w, http.StatusUnprocessableEntity, "arithmetic_overflow", err.Error())
	case errors.Is(err, domainerrors.ErrConstraintSeeds):
		writePollError(w, http.StatusBadRequest, "constraint_seeds", err.Error())
	case errors.Is(err, domainerrors.ErrDescriptionTooLong),
		errors.Is(err, domainerrors.ErrCandidateNameTooLong):
		writePollError(w, http.StatusBadRequest, "value_too_long", err.Error())
	case errors.Is(err, domainerrors.ErrAccountDiscriminatorMismatch),
		errors.Is(err, domainerrors.ErrAccountDidNotDeserialize):
		writePollError(w, http.StatusUnprocessableEntity, "invalid_account_data", err.Error())
	default:
		writePollError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writePollError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, pollhttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
