package web

import (
	"encoding/json"
	"net/http"

	"statecraft/internal/deck"
)

// The authoring API applies tree edits to the scenario draft. Boundary
// violations (duplicate follow-up, reorder past an edge, unknown ids) are
// expected UI outcomes: they come back as ok=false with the draft
// unchanged, not as HTTP errors.

type editResponse struct {
	OK     bool   `json:"ok"`
	CardID string `json:"cardId,omitempty"`
	Error  string `json:"error,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, editResponse{Error: "malformed request body"})
		return false
	}
	return true
}

// GET /api/draft
func (s *Server) handleDraftGet(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.Draft.Scenario())
}

// GET /api/draft/validate
func (s *Server) handleDraftValidate(w http.ResponseWriter, _ *http.Request) {
	issues := s.Draft.Scenario().Validate()
	out := make([]string, 0, len(issues))
	for _, i := range issues {
		out = append(out, i.String())
	}
	writeJSON(w, http.StatusOK, map[string]any{"issues": out})
}

// POST /api/draft/card
func (s *Server) handleDraftAddCard(w http.ResponseWriter, r *http.Request) {
	var req struct {
		StageID   string `json:"stageId"`
		NPC       string `json:"npc"`
		Text      string `json:"text"`
		LeftText  string `json:"leftText"`
		RightText string `json:"rightText"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	id, ok := s.Draft.AddCard(req.StageID, deck.CardOverrides{
		NPCID: req.NPC, Text: req.Text,
		LeftText: req.LeftText, RightText: req.RightText,
	})
	writeJSON(w, http.StatusOK, editResponse{OK: ok, CardID: id})
}

// POST /api/draft/followup
func (s *Server) handleDraftFollowUp(w http.ResponseWriter, r *http.Request) {
	var req struct {
		StageID   string `json:"stageId"`
		ParentID  string `json:"parentId"`
		Side      string `json:"side"`
		NPC       string `json:"npc"`
		Text      string `json:"text"`
		LeftText  string `json:"leftText"`
		RightText string `json:"rightText"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	id, ok := s.Draft.InsertFollowUp(req.StageID, req.ParentID, deck.Side(req.Side), deck.CardOverrides{
		NPCID: req.NPC, Text: req.Text,
		LeftText: req.LeftText, RightText: req.RightText,
	})
	writeJSON(w, http.StatusOK, editResponse{OK: ok, CardID: id})
}

// POST /api/draft/delete
func (s *Server) handleDraftDelete(w http.ResponseWriter, r *http.Request) {
	var req struct {
		StageID string `json:"stageId"`
		CardID  string `json:"cardId"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	ok := s.Draft.DeleteCard(req.StageID, req.CardID)
	writeJSON(w, http.StatusOK, editResponse{OK: ok})
}

// POST /api/draft/reorder
func (s *Server) handleDraftReorder(w http.ResponseWriter, r *http.Request) {
	var req struct {
		StageID string `json:"stageId"`
		ItemID  string `json:"itemId"`
		Dir     int    `json:"dir"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	ok := s.Draft.Reorder(req.StageID, req.ItemID, req.Dir)
	writeJSON(w, http.StatusOK, editResponse{OK: ok})
}

// POST /api/draft/pool
func (s *Server) handleDraftAddPool(w http.ResponseWriter, r *http.Request) {
	var req struct {
		StageID string   `json:"stageId"`
		Count   int      `json:"count"`
		Entries []string `json:"entries"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	id, ok := s.Draft.AddPool(req.StageID, req.Count, req.Entries)
	writeJSON(w, http.StatusOK, editResponse{OK: ok, CardID: id})
}

// POST /api/draft/save
func (s *Server) handleDraftSave(w http.ResponseWriter, r *http.Request) {
	if err := s.Draft.Flush(r.Context()); err != nil {
		s.log().Warn("draft save failed", "err", err)
		writeJSON(w, http.StatusOK, editResponse{OK: false, Error: "save failed"})
		return
	}
	writeJSON(w, http.StatusOK, editResponse{OK: true})
}
