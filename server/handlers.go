package server

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/HackingHobbit/Brilliant-Interface-Task-Coordinator-and-Helper/core"
	"github.com/HackingHobbit/Brilliant-Interface-Task-Coordinator-and-Helper/engine"
)

type chatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"sessionId"`
	PersonID  string `json:"aiPersonId"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	out, err := s.engine.Turn(r.Context(), engine.TurnInput{
		SessionID: req.SessionID,
		PersonID:  req.PersonID,
		Message:   req.Message,
	})
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		log.Printf("[SERVER] Chat turn failed: %v", err)
		writeError(w, http.StatusInternalServerError, "An error occurred while processing your request. Please try again.")
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleClearSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SessionID string `json:"sessionId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.SessionID == "" {
		writeError(w, http.StatusBadRequest, "sessionId is required")
		return
	}
	if err := s.sessions.Clear(r.Context(), req.SessionID); err != nil {
		log.Printf("[SERVER] Session clear failed: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to clear session")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":   "ok",
		"sessions": s.sessions.ActiveCount(),
		"persons":  s.persons.Len(),
	})
}

func (s *Server) handleVoices(w http.ResponseWriter, r *http.Request) {
	if s.piper == nil {
		writeError(w, http.StatusServiceUnavailable, "speech synthesis is not configured")
		return
	}
	voices, err := s.piper.Voices()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list voices")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"voices": voices})
}

func (s *Server) handleListRoles(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{"roles": s.catalog.Roles()})
}

func (s *Server) handleListPersonalities(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{"personalities": s.catalog.Presentations()})
}

func (s *Server) handleListPersons(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{"persons": s.persons.All()})
}

type personRequest struct {
	RoleID        string `json:"roleId"`
	PersonalityID string `json:"personalityId"`
	Name          string `json:"name"`
}

func (s *Server) handleCreatePerson(w http.ResponseWriter, r *http.Request) {
	var req personRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	p, res, err := s.composer.Compose(req.RoleID, req.PersonalityID, "", req.Name)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if err := s.persons.Set(p.Metadata.PersonID, p); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"person":              p,
		"roleFellBack":        res.RoleFellBack,
		"personalityFellBack": res.PresentationFellBack,
	})
}

func (s *Server) handleGetPerson(w http.ResponseWriter, r *http.Request) {
	p, err := s.persons.Get(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "person not found")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleUpdatePerson(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if !s.persons.Has(id) {
		writeError(w, http.StatusNotFound, "person not found")
		return
	}

	var req personRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	p, res, err := s.composer.Update(id, req.RoleID, req.PersonalityID, req.Name)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if err := s.persons.Set(id, p); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"person":              p,
		"roleFellBack":        res.RoleFellBack,
		"personalityFellBack": res.PresentationFellBack,
	})
}

func (s *Server) handleDeletePerson(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := s.persons.CanDelete(id); err != nil {
		writeDeleteError(w, err)
		return
	}

	// Memory goes first so a removed Person never leaves orphaned
	// long-term records or facts behind. keepMemory=true opts out.
	if r.URL.Query().Get("keepMemory") != "true" {
		if err := s.memory.DeleteAll(r.Context(), id); err != nil {
			log.Printf("[SERVER] Memory deletion for %s failed: %v", id, err)
			writeError(w, http.StatusInternalServerError, "failed to delete person memory")
			return
		}
	}

	if err := s.persons.Delete(id); err != nil {
		writeDeleteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func writeDeleteError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, core.ErrNotFound):
		writeError(w, http.StatusNotFound, "person not found")
	case core.IsValidation(err):
		writeError(w, http.StatusConflict, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func (s *Server) handleSearchFacts(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	query := r.URL.Query().Get("q")
	category := r.URL.Query().Get("category")

	if r.URL.Query().Get("semantic") == "true" && query != "" {
		facts, err := s.memory.SearchFactsSemantic(r.Context(), id, query, 10)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"facts": facts})
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"facts": s.memory.SearchFacts(id, query, category),
	})
}

func (s *Server) handleAddFact(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	var req struct {
		Fact     string `json:"fact"`
		Category string `json:"category"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Fact == "" {
		writeError(w, http.StatusBadRequest, "fact is required")
		return
	}

	added, err := s.memory.AddFact(r.Context(), id, req.Fact, req.Category)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"added": added})
}

func (s *Server) handleMemoryContext(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	writeJSON(w, http.StatusOK, s.memory.Enhanced(id, r.URL.Query().Get("q")))
}

func (s *Server) handleDeleteMemory(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := s.memory.DeleteAll(r.Context(), id); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.sessions.Unbind(id)
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
