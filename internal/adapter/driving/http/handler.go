// Package httphandler is the HTTP driving adapter that serves the REST API.
package httphandler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/dgrier/commitcast/internal/application"
	"github.com/dgrier/commitcast/internal/domain/model"
	"github.com/dgrier/commitcast/internal/domain/port/driven"
)

// userIDHeader carries the caller's identity. Authentication is handled by
// the fronting proxy; this service trusts the header it injects.
const userIDHeader = "X-User-ID"

// Handler serves the REST API.
type Handler struct {
	syncSvc       *application.SyncService
	pipelineSvc   *application.PipelineService
	suggestionSvc *application.SuggestionService
	publishSvc    *application.PublishService
	userSvc       *application.UserService
	logger        *slog.Logger
}

// NewHandler creates a Handler with all required dependencies.
func NewHandler(
	syncSvc *application.SyncService,
	pipelineSvc *application.PipelineService,
	suggestionSvc *application.SuggestionService,
	publishSvc *application.PublishService,
	userSvc *application.UserService,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		syncSvc:       syncSvc,
		pipelineSvc:   pipelineSvc,
		suggestionSvc: suggestionSvc,
		publishSvc:    publishSvc,
		userSvc:       userSvc,
		logger:        logger,
	}
}

// NewServeMux creates an http.Handler with all routes registered and wrapped
// with logging and recovery middleware.
func NewServeMux(h *Handler, logger *slog.Logger) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/v1/health", h.Health)
	mux.HandleFunc("GET /api/v1/github/repos", h.ListGitHubRepos)
	mux.HandleFunc("GET /api/v1/repos", h.ListRepos)
	mux.HandleFunc("POST /api/v1/repos", h.ConnectRepo)
	mux.HandleFunc("DELETE /api/v1/repos/{id}", h.DisconnectRepo)
	mux.HandleFunc("POST /api/v1/repos/{id}/sync", h.SyncRepo)
	mux.HandleFunc("GET /api/v1/repos/{id}/commits", h.ListCommits)
	mux.HandleFunc("POST /api/v1/commits/{id}/process", h.ProcessCommit)
	mux.HandleFunc("POST /api/v1/commits/process", h.ProcessCommits)
	mux.HandleFunc("GET /api/v1/suggestions", h.ListSuggestions)
	mux.HandleFunc("PATCH /api/v1/suggestions/{id}/status", h.UpdateSuggestionStatus)
	mux.HandleFunc("PATCH /api/v1/suggestions/{id}/content", h.UpdateSuggestionContent)
	mux.HandleFunc("POST /api/v1/suggestions/{id}/schedule", h.ScheduleSuggestion)
	mux.HandleFunc("POST /api/v1/suggestions/{id}/publish", h.PublishSuggestion)
	mux.HandleFunc("DELETE /api/v1/suggestions/{id}", h.DeleteSuggestion)
	mux.HandleFunc("PUT /api/v1/settings/voice", h.UpdateVoiceSettings)

	// Recovery innermost so panics are caught before logging.
	wrapped := recoveryMiddleware(logger, mux)
	wrapped = loggingMiddleware(logger, wrapped)

	return wrapped
}

// Health returns a simple health check response.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status: "ok",
		Time:   time.Now().UTC().Format(time.RFC3339),
	})
}

// ListGitHubRepos returns the caller's repositories on GitHub, most
// recently pushed first.
func (h *Handler) ListGitHubRepos(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	repos, err := h.syncSvc.ListGitHubRepositories(r.Context(), userID)
	if err != nil {
		h.writeServiceError(w, "failed to list github repos", err)
		return
	}

	resp := make([]RemoteRepoResponse, 0, len(repos))
	for _, repo := range repos {
		resp = append(resp, toRemoteRepoResponse(repo))
	}
	writeJSON(w, http.StatusOK, resp)
}

// ListRepos returns the caller's connected repositories.
func (h *Handler) ListRepos(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	repos, err := h.syncSvc.ListRepositories(r.Context(), userID)
	if err != nil {
		h.writeServiceError(w, "failed to list repos", err)
		return
	}

	resp := make([]RepoResponse, 0, len(repos))
	for _, repo := range repos {
		resp = append(resp, toRepoResponse(repo))
	}
	writeJSON(w, http.StatusOK, resp)
}

// ConnectRepo connects a GitHub repository for commit tracking.
func (h *Handler) ConnectRepo(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	var req ConnectRepoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.GitHubRepoID == 0 || req.FullName == "" {
		writeError(w, http.StatusBadRequest, "github_repo_id and full_name are required")
		return
	}

	repo, err := h.syncSvc.ConnectRepository(r.Context(), userID, model.RemoteRepository{
		ID:            req.GitHubRepoID,
		Name:          req.Name,
		FullName:      req.FullName,
		Description:   req.Description,
		DefaultBranch: req.DefaultBranch,
		IsPrivate:     req.IsPrivate,
	})
	if err != nil {
		h.writeServiceError(w, "failed to connect repo", err)
		return
	}

	writeJSON(w, http.StatusCreated, toRepoResponse(*repo))
}

// DisconnectRepo deactivates a connected repository.
func (h *Handler) DisconnectRepo(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	if err := h.syncSvc.DisconnectRepository(r.Context(), userID, r.PathValue("id")); err != nil {
		h.writeServiceError(w, "failed to disconnect repo", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// SyncRepo fetches new commits for a repository. The optional since and
// until query parameters bound the fetch window as RFC 3339 timestamps.
func (h *Handler) SyncRepo(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	since, err := parseTimeParam(r, "since")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid since parameter: expected RFC 3339 timestamp")
		return
	}
	until, err := parseTimeParam(r, "until")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid until parameter: expected RFC 3339 timestamp")
		return
	}

	count, err := h.syncSvc.Sync(r.Context(), userID, r.PathValue("id"), since, until)
	if err != nil {
		h.writeServiceError(w, "failed to sync repo", err)
		return
	}

	writeJSON(w, http.StatusOK, SyncResponse{NewCommits: count})
}

// ListCommits returns a repository's stored commits, newest first.
func (h *Handler) ListCommits(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			writeError(w, http.StatusBadRequest, "invalid limit parameter")
			return
		}
		limit = parsed
	}

	commits, err := h.syncSvc.ListCommits(r.Context(), userID, r.PathValue("id"), limit)
	if err != nil {
		h.writeServiceError(w, "failed to list commits", err)
		return
	}

	resp := make([]CommitResponse, 0, len(commits))
	for _, commit := range commits {
		resp = append(resp, toCommitResponse(commit))
	}
	writeJSON(w, http.StatusOK, resp)
}

// ProcessCommit analyzes one commit and generates tweet suggestions for it.
func (h *Handler) ProcessCommit(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	count, err := h.pipelineSvc.ProcessCommit(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		h.writeServiceError(w, "failed to process commit", err)
		return
	}

	writeJSON(w, http.StatusOK, ProcessResponse{Suggestions: count})
}

// ProcessCommits processes a batch of commits, either individually or as a
// single combined draft.
func (h *Handler) ProcessCommits(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	var req ProcessBatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.CommitIDs) == 0 {
		writeError(w, http.StatusBadRequest, "commit_ids is required")
		return
	}

	if req.Combined {
		count, err := h.pipelineSvc.ProcessCombined(r.Context(), userID, req.CommitIDs)
		if err != nil {
			h.writeServiceError(w, "failed to create combined draft", err)
			return
		}
		writeJSON(w, http.StatusOK, application.ProcessResult{Processed: len(req.CommitIDs), Suggestions: count})
		return
	}

	result, err := h.pipelineSvc.ProcessCommits(r.Context(), userID, req.CommitIDs)
	if err != nil {
		h.writeServiceError(w, "failed to process commits", err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// ListSuggestions returns the caller's tweet suggestions, optionally
// filtered by status and commit.
func (h *Handler) ListSuggestions(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	filter := driven.SuggestionFilter{
		CommitID: r.URL.Query().Get("commit_id"),
	}
	if raw := r.URL.Query().Get("status"); raw != "" {
		status, ok := model.ParseSuggestionStatus(raw)
		if !ok {
			writeError(w, http.StatusBadRequest, "invalid status parameter")
			return
		}
		filter.Status = status
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			writeError(w, http.StatusBadRequest, "invalid limit parameter")
			return
		}
		filter.Limit = parsed
	}

	suggestions, err := h.suggestionSvc.List(r.Context(), userID, filter)
	if err != nil {
		h.writeServiceError(w, "failed to list suggestions", err)
		return
	}

	resp := make([]SuggestionResponse, 0, len(suggestions))
	for _, s := range suggestions {
		resp = append(resp, toSuggestionResponse(s))
	}
	writeJSON(w, http.StatusOK, resp)
}

// UpdateSuggestionStatus moves a suggestion through the review lifecycle.
func (h *Handler) UpdateSuggestionStatus(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	var req UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	status, ok := model.ParseSuggestionStatus(req.Status)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid status")
		return
	}

	suggestion, err := h.suggestionSvc.UpdateStatus(r.Context(), userID, r.PathValue("id"), status)
	if err != nil {
		h.writeServiceError(w, "failed to update suggestion status", err)
		return
	}

	writeJSON(w, http.StatusOK, toSuggestionResponse(*suggestion))
}

// UpdateSuggestionContent rewrites a suggestion's text.
func (h *Handler) UpdateSuggestionContent(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	var req UpdateContentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Content == "" {
		writeError(w, http.StatusBadRequest, "content is required")
		return
	}

	suggestion, err := h.suggestionSvc.UpdateContent(r.Context(), userID, r.PathValue("id"), req.Content)
	if err != nil {
		h.writeServiceError(w, "failed to update suggestion content", err)
		return
	}

	writeJSON(w, http.StatusOK, toSuggestionResponse(*suggestion))
}

// ScheduleSuggestion marks an accepted suggestion for later posting.
func (h *Handler) ScheduleSuggestion(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	var req ScheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.ScheduledFor.IsZero() {
		writeError(w, http.StatusBadRequest, "scheduled_for is required")
		return
	}

	suggestion, err := h.suggestionSvc.Schedule(r.Context(), userID, r.PathValue("id"), req.ScheduledFor.UTC())
	if err != nil {
		h.writeServiceError(w, "failed to schedule suggestion", err)
		return
	}

	writeJSON(w, http.StatusOK, toSuggestionResponse(*suggestion))
}

// PublishSuggestion posts a suggestion to the caller's Twitter account.
func (h *Handler) PublishSuggestion(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	suggestion, err := h.publishSvc.Publish(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		h.writeServiceError(w, "failed to publish suggestion", err)
		return
	}

	writeJSON(w, http.StatusOK, toSuggestionResponse(*suggestion))
}

// DeleteSuggestion removes a non-posted suggestion.
func (h *Handler) DeleteSuggestion(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	if err := h.suggestionSvc.Delete(r.Context(), userID, r.PathValue("id")); err != nil {
		h.writeServiceError(w, "failed to delete suggestion", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// UpdateVoiceSettings replaces the caller's tweet voice configuration.
func (h *Handler) UpdateVoiceSettings(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	var voice model.VoiceSettings
	if err := json.NewDecoder(r.Body).Decode(&voice); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.userSvc.UpdateVoiceSettings(r.Context(), userID, &voice); err != nil {
		h.writeServiceError(w, "failed to update voice settings", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// userID extracts the caller's identity from the request. A missing header
// writes a 401 and returns ok=false.
func (h *Handler) userID(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID := r.Header.Get(userIDHeader)
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "missing "+userIDHeader+" header")
		return "", false
	}
	return userID, true
}

// writeServiceError maps service-layer errors to HTTP status codes. Errors
// without a mapping are logged and reported as 500s.
func (h *Handler) writeServiceError(w http.ResponseWriter, msg string, err error) {
	var publishErr *application.PublishError

	switch {
	case errors.Is(err, driven.ErrUserNotFound),
		errors.Is(err, driven.ErrRepoNotFound),
		errors.Is(err, driven.ErrCommitNotFound),
		errors.Is(err, driven.ErrSuggestionNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, application.ErrNotAuthorized):
		writeError(w, http.StatusForbidden, "not authorized")
	case errors.Is(err, driven.ErrGitHubNotConnected),
		errors.Is(err, driven.ErrTwitterNotConnected):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, application.ErrContentTooLong):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, application.ErrInvalidTransition),
		errors.Is(err, application.ErrNotEditable),
		errors.Is(err, application.ErrSuggestionPosted):
		writeError(w, http.StatusConflict, err.Error())
	case errors.As(err, &publishErr):
		h.logger.Error(msg, "error", err)
		writeError(w, http.StatusBadGateway, publishErr.Error())
	default:
		h.logger.Error(msg, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

// parseTimeParam reads an optional RFC 3339 query parameter.
func parseTimeParam(r *http.Request, name string) (*time.Time, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, err
	}
	t = t.UTC()
	return &t, nil
}
