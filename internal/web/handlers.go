package web

import (
	"context"
	"html/template"
	"log/slog"
	"net/http"

	"statecraft/internal/deck"
	"statecraft/internal/draft"
	"statecraft/internal/game"
	"statecraft/internal/session"
)

// Server serves the play surface and the authoring API.
type Server struct {
	Engine *game.Engine
	Store  session.Store[game.State]
	Locks  *session.Locker
	// Draft enables the authoring API when set.
	Draft *draft.Service
	Tmpl  *template.Template
	Log   *slog.Logger
}

const cookieName = "statecraft_sid"

func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)

	mux.HandleFunc("/start", s.handleStart)
	mux.HandleFunc("/begin", s.handleBegin)
	mux.HandleFunc("/play", s.handlePlay)
	mux.HandleFunc("/crisis", s.handleCrisis)
	mux.HandleFunc("/report", s.handleReport)

	if s.Draft != nil {
		mux.HandleFunc("GET /api/draft", s.handleDraftGet)
		mux.HandleFunc("GET /api/draft/validate", s.handleDraftValidate)
		mux.HandleFunc("POST /api/draft/card", s.handleDraftAddCard)
		mux.HandleFunc("POST /api/draft/followup", s.handleDraftFollowUp)
		mux.HandleFunc("POST /api/draft/delete", s.handleDraftDelete)
		mux.HandleFunc("POST /api/draft/reorder", s.handleDraftReorder)
		mux.HandleFunc("POST /api/draft/pool", s.handleDraftAddPool)
		mux.HandleFunc("POST /api/draft/save", s.handleDraftSave)
	}
	mux.Handle("/static/", http.StripPrefix("/static/", http.FileServer(http.Dir("static"))))
	return mux
}

func (s *Server) log() *slog.Logger {
	if s.Log == nil {
		return slog.Default()
	}
	return s.Log
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/start", http.StatusFound)
}

// GET /start
func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "no-store, no-cache, must-revalidate")
	vm := StartViewModel{
		Title:   s.Engine.Scenario.Title,
		Stages:  len(s.Engine.Scenario.Stages),
		Chances: game.DailyChances,
	}
	if err := s.Tmpl.ExecuteTemplate(w, "layout.html", map[string]any{"Start": vm}); err != nil {
		http.Error(w, "failed to render template", 500)
	}
}

// POST /begin starts a fresh run, replacing any previous session state.
func (s *Server) handleBegin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := s.sessionID(r)
	if id == "" {
		id = s.Store.NewID()
		http.SetCookie(w, &http.Cookie{
			Name:     cookieName,
			Value:    id,
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}

	st, err := s.Engine.NewGame()
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	if err := s.Store.Put(ctx, id, st); err != nil {
		http.Error(w, "failed to save state", 500)
		return
	}
	s.render(w, st, "")
}

// POST /play applies one choice. Input is rejected while another
// transition for the same session is in flight. The slot is claimed
// before the state read so a competing request can never commit against
// a snapshot taken mid-transition.
func (s *Server) handlePlay(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := s.sessionID(r)
	if id == "" {
		http.Redirect(w, r, "/start", http.StatusFound)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", 400)
		return
	}
	if !s.Locks.TryAcquire(id) {
		http.Error(w, "another move is still resolving", http.StatusConflict)
		return
	}
	defer s.Locks.Release(id)

	st, ok, err := s.Store.Get(ctx, id)
	if err != nil || !ok {
		http.Redirect(w, r, "/start", http.StatusFound)
		return
	}

	res, err := s.Engine.ApplyChoice(st, deck.Side(r.FormValue("choice")))
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	if err := s.Store.Put(ctx, id, res.State); err != nil {
		http.Error(w, "failed to save state", 500)
		return
	}
	s.render(w, res.State, res.Message)
}

// POST /crisis forwards a plea to the judge. The session slot is held for
// the whole call, so a second submission while one is pending is rejected
// rather than interleaved.
func (s *Server) handleCrisis(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := s.sessionID(r)
	if id == "" {
		http.Redirect(w, r, "/start", http.StatusFound)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", 400)
		return
	}
	if !s.Locks.TryAcquire(id) {
		http.Error(w, "negotiation already in progress", http.StatusConflict)
		return
	}
	defer s.Locks.Release(id)

	st, ok, err := s.Store.Get(ctx, id)
	if err != nil || !ok {
		http.Redirect(w, r, "/start", http.StatusFound)
		return
	}

	res, err := s.Engine.SubmitPlea(ctx, st, r.FormValue("plea"))
	if err != nil {
		// Recoverable: the machine stays in its pre-call state.
		s.log().Warn("judge call failed", "err", err)
		s.render(w, st, "The negotiation channel failed. Try again.")
		return
	}
	if err := s.Store.Put(ctx, id, res.State); err != nil {
		http.Error(w, "failed to save state", 500)
		return
	}
	s.render(w, res.State, res.Message)
}

// GET /report serves the end-of-run PDF.
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	st, _, found := s.state(r.Context(), r)
	if !found || !st.Terminated() || len(st.Report) == 0 {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="statecraft-report.pdf"`)
	_, _ = w.Write(st.Report)
}

func (s *Server) render(w http.ResponseWriter, st game.State, msg string) {
	vm := s.makeViewModel(st, msg)
	if err := s.Tmpl.ExecuteTemplate(w, "game.html", vm); err != nil {
		http.Error(w, "failed to render template", 500)
	}
}

func (s *Server) state(ctx context.Context, r *http.Request) (game.State, string, bool) {
	id := s.sessionID(r)
	if id == "" {
		return game.State{}, "", false
	}
	st, ok, err := s.Store.Get(ctx, id)
	if err != nil || !ok {
		return game.State{}, id, false
	}
	return st, id, true
}

func (s *Server) sessionID(r *http.Request) string {
	c, err := r.Cookie(cookieName)
	if err != nil {
		return ""
	}
	return c.Value
}
