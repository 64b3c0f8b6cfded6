package server

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/jonathan/commuter-advisor/internal/crowding"
	"github.com/jonathan/commuter-advisor/internal/profile"
	"github.com/jonathan/commuter-advisor/internal/survey"
	"github.com/jonathan/commuter-advisor/internal/types"
)

// profileView is the API shape of a profile
type profileView struct {
	ID string `json:"id"`
	profile.Metadata
}

func newProfileView(id profile.ID) (profileView, bool) {
	meta, ok := profile.Describe(id)
	if !ok {
		return profileView{}, false
	}
	return profileView{ID: string(id), Metadata: meta}, true
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"sessions": s.sessions.Len(),
	})
}

// handleQuestions returns the greeting and the questionnaire in order
func (s *Server) handleQuestions(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"greeting":  survey.Greeting,
		"questions": survey.Questions(),
	})
}

// handleListProfiles returns every known profile in display order
func (s *Server) handleListProfiles(w http.ResponseWriter, _ *http.Request) {
	ids := profile.All()
	views := make([]profileView, 0, len(ids))
	for _, id := range ids {
		if v, ok := newProfileView(id); ok {
			views = append(views, v)
		}
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"profiles": views})
}

// handleGetProfile returns one profile. The id may be the identifier or the
// display name ("Flexible Avoider").
func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	id, ok := profile.ParseID(r.PathValue("id"))
	if !ok {
		s.errorResponse(w, http.StatusNotFound, "unknown profile: "+r.PathValue("id"))
		return
	}
	view, _ := newProfileView(id)
	s.jsonResponse(w, http.StatusOK, view)
}

// handleCrowding returns the crowding of every line for an hour of the day.
// Without ?hour= the server's current hour is used.
func (s *Server) handleCrowding(w http.ResponseWriter, r *http.Request) {
	hour := s.now().Hour()
	if raw := r.URL.Query().Get("hour"); raw != "" {
		h, err := strconv.Atoi(raw)
		if err != nil || h < 0 || h > 23 {
			s.handleError(w, &ErrValidation{Field: "hour", Message: "must be an integer between 0 and 23"})
			return
		}
		hour = h
	}

	slot := crowding.SlotForHour(hour)
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"hour":  hour,
		"slot":  slot,
		"lines": s.crowding.Snapshot(slot),
	})
}

// handleClassify classifies a set of answers without creating a session
func (s *Server) handleClassify(w http.ResponseWriter, r *http.Request) {
	var req types.ClassifyRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.handleError(w, err)
		return
	}
	if err := req.Validate(); err != nil {
		s.handleError(w, translateError(uuid.Nil, "", err))
		return
	}

	raw := map[string]string{
		profile.KeyDepartureTime:      req.DepartureTime,
		profile.KeyCommuteFrequency:   req.CommuteFrequency,
		profile.KeyCrowdingExperience: req.CrowdingExperience,
		profile.KeyFullBusResponse:    req.FullBusResponse,
	}
	if req.ChangeWillingness != 0 {
		raw[profile.KeyChangeWillingness] = strconv.Itoa(req.ChangeWillingness)
	}
	for key, value := range raw {
		if value == "" {
			delete(raw, key)
		}
	}

	answers, errs := survey.Collect(raw)
	if len(errs) > 0 {
		s.handleError(w, translateError(uuid.Nil, "", errs[0]))
		return
	}

	id, rule := profile.Explain(answers)
	view, _ := newProfileView(id)
	resp := types.ClassifyResponse{
		Profile:     view.ID,
		Name:        view.Name,
		Description: view.Description,
		Traits:      view.Traits,
	}
	if req.Explain {
		resp.Rule = rule
	}
	s.jsonResponse(w, http.StatusOK, resp)
}

// handleProfileStats returns how many stored sessions ended in each profile
func (s *Server) handleProfileStats(w http.ResponseWriter, r *http.Request) {
	if s.stats == nil {
		s.handleError(w, &ErrUnavailable{Feature: "profile statistics"})
		return
	}

	counts, err := s.stats.ProfileCounts(r.Context())
	if err != nil {
		s.handleError(w, err)
		return
	}

	stats := make([]types.ProfileStat, 0, len(counts))
	for _, c := range counts {
		stat := types.ProfileStat{Profile: c.Profile, Name: c.Profile, Sessions: c.Sessions}
		if meta, ok := profile.Describe(profile.ID(c.Profile)); ok {
			stat.Name = meta.Name
		}
		stats = append(stats, stat)
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"profiles": stats})
}
