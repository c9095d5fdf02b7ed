package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"ab-eam-backend/internal/domain"
	"ab-eam-backend/internal/repository"
)

func pageFromQuery(r *http.Request) repository.PageRequest {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	return repository.PageRequest{Page: page, Limit: limit}
}

func pathID(r *http.Request) string {
	return mux.Vars(r)["id"]
}

type listResponse[E any] struct {
	Data       []E                    `json:"data"`
	Pagination *repository.Pagination `json:"pagination"`
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"name":    "AB-EAM API",
		"status":  "ok",
		"version": "v1",
	})
}

func (s *Server) handleAPIInfo(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"api":     "ab-eam",
		"version": "v1",
		"base":    "/api/v1",
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *Server) handleSubmitRegistration(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email     string `json:"email"`
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
		Role      string `json:"role"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	req, err := s.registration.Submit(r.Context(), body.Email, body.FirstName, body.LastName, domain.UserRole(body.Role))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, req)
}

func (s *Server) handleListRegistrations(w http.ResponseWriter, r *http.Request) {
	status := domain.RegistrationStatus(r.URL.Query().Get("status"))
	requests, pagination, err := s.registration.List(r.Context(), status, pageFromQuery(r))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, listResponse[domain.RegistrationRequest]{Data: requests, Pagination: pagination})
}

func (s *Server) handleGetRegistration(w http.ResponseWriter, r *http.Request) {
	req, err := s.registration.Get(r.Context(), pathID(r))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, req)
}

func (s *Server) handleApproveRegistration(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ApproverID string `json:"approver_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	user, err := s.registration.Approve(r.Context(), pathID(r), body.ApproverID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, user)
}

func (s *Server) handleRejectRegistration(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ApproverID string `json:"approver_id"`
		Reason     string `json:"reason"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	req, err := s.registration.Reject(r.Context(), pathID(r), body.ApproverID, body.Reason)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, req)
}

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	page := pageFromQuery(r)
	if query := r.URL.Query().Get("q"); query != "" {
		users, pagination, err := s.users.Search(r.Context(), query, page)
		if err != nil {
			respondError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, listResponse[domain.User]{Data: users, Pagination: pagination})
		return
	}
	users, pagination, err := s.users.List(r.Context(), page)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, listResponse[domain.User]{Data: users, Pagination: pagination})
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	user, err := s.users.Get(r.Context(), pathID(r))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, user)
}

func (s *Server) handleChangeUserStatus(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	user, err := s.users.ChangeStatus(r.Context(), pathID(r), domain.UserStatus(body.Status))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, user)
}

func (s *Server) handleChangeUserRole(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Role string `json:"role"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	user, err := s.users.ChangeRole(r.Context(), pathID(r), domain.UserRole(body.Role))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, user)
}

func (s *Server) handleCreateProgram(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Title        string   `json:"title"`
		Description  string   `json:"description"`
		CreatorID    string   `json:"creator_id"`
		Stakeholders []string `json:"stakeholders"`
		StartDate    string   `json:"start_date"`
		EndDate      string   `json:"end_date"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	program, err := s.programs.Create(r.Context(), body.Title, body.Description, body.CreatorID, body.Stakeholders, body.StartDate, body.EndDate)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, program)
}

func (s *Server) handleListPrograms(w http.ResponseWriter, r *http.Request) {
	programs, pagination, err := s.programs.List(r.Context(), pageFromQuery(r))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, listResponse[domain.Program]{Data: programs, Pagination: pagination})
}

func (s *Server) handleGetProgram(w http.ResponseWriter, r *http.Request) {
	program, err := s.programs.Get(r.Context(), pathID(r))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, program)
}

func (s *Server) handleDeleteProgram(w http.ResponseWriter, r *http.Request) {
	if err := s.programs.Delete(r.Context(), pathID(r)); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleProgramTransition(transition func(ctx context.Context, id string) (*domain.Program, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		program, err := transition(r.Context(), pathID(r))
		if err != nil {
			respondError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, program)
	}
}

func (s *Server) handleSubmitEnrollment(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ClientName  string               `json:"client_name"`
		AccountIDs  []string             `json:"account_ids"`
		Motivation  string               `json:"motivation"`
		RequesterID string               `json:"requester_id"`
		Contacts    []domain.ContactUser `json:"contacts"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	req, err := s.enrollment.Submit(r.Context(), pathID(r), body.ClientName, body.AccountIDs, body.Motivation, body.RequesterID, body.Contacts)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, req)
}

func (s *Server) handleListEnrollments(w http.ResponseWriter, r *http.Request) {
	requests, pagination, err := s.enrollment.ListByProgram(r.Context(), pathID(r), pageFromQuery(r))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, listResponse[domain.EnrollmentRequest]{Data: requests, Pagination: pagination})
}

func (s *Server) handleListClients(w http.ResponseWriter, r *http.Request) {
	clients, pagination, err := s.enrollment.ListClients(r.Context(), pathID(r), pageFromQuery(r))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, listResponse[domain.Client]{Data: clients, Pagination: pagination})
}

func (s *Server) handleGetEnrollment(w http.ResponseWriter, r *http.Request) {
	req, err := s.enrollment.Get(r.Context(), pathID(r))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, req)
}

func (s *Server) handleApproveEnrollment(w http.ResponseWriter, r *http.Request) {
	client, err := s.enrollment.Approve(r.Context(), pathID(r))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, client)
}

func (s *Server) handleRejectEnrollment(w http.ResponseWriter, r *http.Request) {
	req, err := s.enrollment.Reject(r.Context(), pathID(r))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, req)
}

func (s *Server) handleSetClientActivity(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Active bool `json:"active"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	client, err := s.enrollment.SetClientActivity(r.Context(), pathID(r), body.Active)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, client)
}
