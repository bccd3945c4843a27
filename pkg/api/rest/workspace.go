package rest

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kevinelliott/agentcore/pkg/coreerrors"
	"github.com/kevinelliott/agentcore/pkg/permission"
)

// setupWorkspaceRoutes registers the workspace/agent/chat/plugin/
// permission/terminal command set under /api/v1, backed by s.core.
func (s *Server) setupWorkspaceRoutes(r chi.Router) {
	r.Route("/workspaces", func(r chi.Router) {
		r.Get("/", s.handleWorkspaceList)
		r.Post("/", s.handleWorkspaceCreate)
		r.Get("/focus", s.handleWorkspaceGetFocus)
		r.Post("/focus", s.handleWorkspaceSetFocus)
		r.Delete("/{workspaceID}", s.handleWorkspaceDelete)

		r.Route("/{workspaceID}/agents", func(r chi.Router) {
			r.Get("/", s.handleAgentList)
			r.Post("/", s.handleAgentCreate)
			r.Post("/{agentID}/prompt", s.handleChatSendPrompt)
			r.Post("/{agentID}/stop", s.handleStopTurn)
		})

		r.Post("/{workspaceID}/terminals/{terminalID}/kill", s.handleTerminalKill)
	})

	r.Route("/plugins", func(r chi.Router) {
		r.Get("/{pluginID}/status", s.handlePluginGetStatus)
		r.Post("/{pluginID}/install", s.handlePluginInstall)
	})

	r.Post("/permissions/{operationID}/respond", s.handlePermissionRespond)
}

func (s *Server) handleWorkspaceList(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"workspaces": s.core.WorkspaceList(),
	})
}

func (s *Server) handleWorkspaceCreate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RootDir string `json:"root_dir"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	ws, err := s.core.WorkspaceCreate(req.RootDir)
	if err != nil {
		s.respondCoreError(w, err)
		return
	}
	s.respondJSON(w, http.StatusCreated, ws)
}

func (s *Server) handleWorkspaceDelete(w http.ResponseWriter, r *http.Request) {
	workspaceID := chi.URLParam(r, "workspaceID")
	if err := s.core.WorkspaceDelete(workspaceID); err != nil {
		s.respondCoreError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

func (s *Server) handleWorkspaceSetFocus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		WorkspaceID string `json:"workspace_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if err := s.core.WorkspaceSetFocus(req.WorkspaceID); err != nil {
		s.respondCoreError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

func (s *Server) handleWorkspaceGetFocus(w http.ResponseWriter, r *http.Request) {
	workspaceID, ok := s.core.WorkspaceGetFocus()
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"workspace_id": workspaceID,
		"focused":      ok,
	})
}

func (s *Server) handleAgentList(w http.ResponseWriter, r *http.Request) {
	workspaceID := chi.URLParam(r, "workspaceID")
	agents, err := s.core.AgentList(workspaceID)
	if err != nil {
		s.respondCoreError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{"agents": agents})
}

func (s *Server) handleAgentCreate(w http.ResponseWriter, r *http.Request) {
	workspaceID := chi.URLParam(r, "workspaceID")

	var req struct {
		PluginID    string `json:"plugin_id"`
		DisplayName string `json:"display_name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	ag, err := s.core.AgentCreate(workspaceID, req.PluginID, req.DisplayName)
	if err != nil {
		s.respondCoreError(w, err)
		return
	}
	s.respondJSON(w, http.StatusCreated, ag)
}

func (s *Server) handleChatSendPrompt(w http.ResponseWriter, r *http.Request) {
	workspaceID := chi.URLParam(r, "workspaceID")
	agentID := chi.URLParam(r, "agentID")

	var req struct {
		Prompt string `json:"prompt"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	result, err := s.core.ChatSendPrompt(r.Context(), workspaceID, agentID, req.Prompt)
	if err != nil {
		s.respondCoreError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleStopTurn(w http.ResponseWriter, r *http.Request) {
	workspaceID := chi.URLParam(r, "workspaceID")
	agentID := chi.URLParam(r, "agentID")

	var req struct {
		SessionID string `json:"session_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	if err := s.core.StopTurn(workspaceID, agentID, req.SessionID); err != nil {
		s.respondCoreError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

func (s *Server) handleTerminalKill(w http.ResponseWriter, r *http.Request) {
	workspaceID := chi.URLParam(r, "workspaceID")
	terminalID := chi.URLParam(r, "terminalID")

	if err := s.core.TerminalKill(workspaceID, terminalID); err != nil {
		s.respondCoreError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

func (s *Server) handlePluginGetStatus(w http.ResponseWriter, r *http.Request) {
	pluginID := chi.URLParam(r, "pluginID")
	checkUpdates := r.URL.Query().Get("check_updates") == "true"

	status, err := s.core.PluginGetStatus(r.Context(), pluginID, checkUpdates)
	if err != nil {
		s.respondCoreError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, status)
}

func (s *Server) handlePluginInstall(w http.ResponseWriter, r *http.Request) {
	pluginID := chi.URLParam(r, "pluginID")

	var req struct {
		Version string `json:"version"`
	}
	_ = json.NewDecoder(r.Body).Decode(&req)

	result, err := s.core.PluginInstall(r.Context(), pluginID, req.Version, nil)
	if err != nil {
		s.respondCoreError(w, err)
		return
	}
	s.respondJSON(w, http.StatusAccepted, result)
}

func (s *Server) handlePermissionRespond(w http.ResponseWriter, r *http.Request) {
	operationID := chi.URLParam(r, "operationID")

	var req struct {
		Decision permission.Decision `json:"decision"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	if err := s.core.PermissionRespond(operationID, req.Decision); err != nil {
		s.respondCoreError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

// respondCoreError maps a coreerrors.Kind to an HTTP status and writes
// the error body.
func (s *Server) respondCoreError(w http.ResponseWriter, err error) {
	kind, ok := coreerrors.KindOf(err)
	if !ok {
		s.respondError(w, http.StatusInternalServerError, "Internal error", err)
		return
	}

	status := http.StatusInternalServerError
	switch kind {
	case coreerrors.KindInvalidInput, coreerrors.KindPathNotDirectory, coreerrors.KindProtocolError:
		status = http.StatusBadRequest
	case coreerrors.KindPathNotFound, coreerrors.KindWorkspaceNotFound, coreerrors.KindAgentNotFound, coreerrors.KindOperationNotFound, coreerrors.KindPluginNotInstalled:
		status = http.StatusNotFound
	case coreerrors.KindPermissionDenied:
		status = http.StatusForbidden
	case coreerrors.KindPluginInstallInProgress:
		status = http.StatusConflict
	case coreerrors.KindIoError, coreerrors.KindPluginMissingBinPath:
		status = http.StatusInternalServerError
	}

	var coreErr *coreerrors.Error
	if errors.As(err, &coreErr) {
		s.respondJSON(w, status, map[string]interface{}{
			"error":   string(coreErr.Kind),
			"message": coreErr.Message,
			"fields":  coreErr.Fields,
			"success": false,
		})
		return
	}
	s.respondError(w, status, err.Error(), nil)
}
