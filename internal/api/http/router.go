package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"ab-eam-backend/internal/domain"
	"ab-eam-backend/internal/service"
)

// Server wires the REST surface over the service layer. Handlers stay
// thin: decode, delegate, encode.
type Server struct {
	registration service.RegistrationService
	users        service.UserService
	programs     service.ProgramService
	enrollment   service.EnrollmentService

	allowedOrigin string
}

func NewServer(registration service.RegistrationService, users service.UserService, programs service.ProgramService, enrollment service.EnrollmentService, allowedOrigin string) *Server {
	return &Server{
		registration:  registration,
		users:         users,
		programs:      programs,
		enrollment:    enrollment,
		allowedOrigin: allowedOrigin,
	}
}

// Router builds the route table.
func (s *Server) Router() http.Handler {
	r := mux.NewRouter()
	r.Use(s.corsMiddleware)

	r.HandleFunc("/", s.handleRoot).Methods(http.MethodGet)
	r.HandleFunc("/api", s.handleAPIInfo).Methods(http.MethodGet)
	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)

	api := r.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/registration-requests", s.handleSubmitRegistration).Methods(http.MethodPost)
	api.HandleFunc("/registration-requests", s.handleListRegistrations).Methods(http.MethodGet)
	api.HandleFunc("/registration-requests/{id}", s.handleGetRegistration).Methods(http.MethodGet)
	api.HandleFunc("/registration-requests/{id}/approve", s.handleApproveRegistration).Methods(http.MethodPost)
	api.HandleFunc("/registration-requests/{id}/reject", s.handleRejectRegistration).Methods(http.MethodPost)

	api.HandleFunc("/users", s.handleListUsers).Methods(http.MethodGet)
	api.HandleFunc("/users/{id}", s.handleGetUser).Methods(http.MethodGet)
	api.HandleFunc("/users/{id}/status", s.handleChangeUserStatus).Methods(http.MethodPut)
	api.HandleFunc("/users/{id}/role", s.handleChangeUserRole).Methods(http.MethodPut)

	api.HandleFunc("/programs", s.handleCreateProgram).Methods(http.MethodPost)
	api.HandleFunc("/programs", s.handleListPrograms).Methods(http.MethodGet)
	api.HandleFunc("/programs/{id}", s.handleGetProgram).Methods(http.MethodGet)
	api.HandleFunc("/programs/{id}", s.handleDeleteProgram).Methods(http.MethodDelete)
	api.HandleFunc("/programs/{id}/launch", s.handleProgramTransition(s.programs.Launch)).Methods(http.MethodPost)
	api.HandleFunc("/programs/{id}/stop", s.handleProgramTransition(s.programs.Stop)).Methods(http.MethodPost)
	api.HandleFunc("/programs/{id}/archive", s.handleProgramTransition(s.programs.Archive)).Methods(http.MethodPost)

	api.HandleFunc("/programs/{id}/enrollment-requests", s.handleSubmitEnrollment).Methods(http.MethodPost)
	api.HandleFunc("/programs/{id}/enrollment-requests", s.handleListEnrollments).Methods(http.MethodGet)
	api.HandleFunc("/programs/{id}/clients", s.handleListClients).Methods(http.MethodGet)
	api.HandleFunc("/enrollment-requests/{id}", s.handleGetEnrollment).Methods(http.MethodGet)
	api.HandleFunc("/enrollment-requests/{id}/approve", s.handleApproveEnrollment).Methods(http.MethodPost)
	api.HandleFunc("/enrollment-requests/{id}/reject", s.handleRejectEnrollment).Methods(http.MethodPost)
	api.HandleFunc("/clients/{id}/activity", s.handleSetClientActivity).Methods(http.MethodPut)

	// Preflight requests match none of the method-restricted routes, and
	// mux only runs middleware on a matched route. The catch-all gives
	// them a match; the middleware answers before the handler runs.
	r.Methods(http.MethodOptions).HandlerFunc(func(http.ResponseWriter, *http.Request) {})

	return r
}

func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", s.allowedOrigin)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		_ = json.NewEncoder(w).Encode(payload)
	}
}

// respondError maps service and domain errors onto HTTP status codes.
func respondError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, service.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, service.ErrConflict):
		status = http.StatusConflict
	case domain.IsValidationError(err):
		status = http.StatusBadRequest
	}
	respondJSON(w, status, map[string]string{"error": err.Error()})
}
