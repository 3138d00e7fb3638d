package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/harrison/assessment/internal/models"
	"github.com/harrison/assessment/internal/registry"
	"github.com/harrison/assessment/internal/response"
	"github.com/harrison/assessment/internal/service"
	"github.com/harrison/assessment/internal/theme"
)

// maxBodyBytes caps submission bodies
const maxBodyBytes = 1 << 20

// SubmitRequest is the JSON body of POST /v1/assessments/{slug}/responses
type SubmitRequest struct {
	Answers map[string]interface{} `json:"answers"`
	Lead    *models.Lead           `json:"lead,omitempty"`
}

// AssessmentSummary is one entry of GET /v1/assessments
type AssessmentSummary struct {
	Slug          string `json:"slug"`
	Title         string `json:"title"`
	Hook          string `json:"hook,omitempty"`
	EstimatedTime string `json:"estimated_time,omitempty"`
	Questions     int    `json:"questions"`
}

// ResultView is the outcome block of submission and result responses
type ResultView struct {
	ID       string                 `json:"id"`
	Text     string                 `json:"text"`
	Payload  map[string]interface{} `json:"payload,omitempty"`
	Fallback bool                   `json:"fallback"`
}

// SubmissionView is the body returned for a stored response
type SubmissionView struct {
	UUID      string         `json:"uuid"`
	Slug      string         `json:"assessment_slug"`
	Score     float64        `json:"score"`
	Tags      []string       `json:"tags"`
	Answers   models.Answers `json:"answers"`
	Result    *ResultView    `json:"result"`
	ResultURL string         `json:"result_url"`
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":      "ok",
		"assessments": s.registry.Len(),
	})
}

func (s *Server) listAssessments(w http.ResponseWriter, r *http.Request) {
	summaries := []AssessmentSummary{}
	for _, def := range s.registry.All() {
		summaries = append(summaries, AssessmentSummary{
			Slug:          def.Slug,
			Title:         def.Title,
			Hook:          def.Hook,
			EstimatedTime: def.EstimatedTime,
			Questions:     len(def.Questions),
		})
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"assessments": summaries})
}

func (s *Server) getAssessment(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	def, err := s.registry.Find(vars["slug"])
	if err != nil {
		writeServiceError(w, err)
		return
	}

	tree := s.resolveTheme(r, vars, def)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"assessment": def.Document(),
		"theme":      tree,
		"css":        theme.CSSVariables(tree, s.cssPrefix),
		"dark_mode": map[string]interface{}{
			"enabled": theme.DarkModeEnabled(tree),
			"default": theme.DarkModeDefault(tree),
		},
	})
}

func (s *Server) createResponse(w http.ResponseWriter, r *http.Request) {
	slug := mux.Vars(r)["slug"]

	input, lead, err := decodeSubmission(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	sub, err := s.service.Submit(r.Context(), slug, input, lead)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, submissionView(sub))
}

func (s *Server) getResult(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	sub, err := s.service.Result(r.Context(), vars["slug"], vars["uuid"])
	if err != nil && !errors.Is(err, service.ErrNoOutcome) {
		writeServiceError(w, err)
		return
	}

	tree := s.resolveTheme(r, vars, sub.Definition)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"response": submissionView(sub),
		"theme":    tree,
		"css":      theme.CSSVariables(tree, s.cssPrefix),
	})
}

func (s *Server) reload(w http.ResponseWriter, r *http.Request) {
	if s.loader == nil {
		writeError(w, http.StatusNotImplemented, "reload is not configured")
		return
	}

	report, err := s.loader.Reload()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	failures := []map[string]string{}
	for _, f := range report.Failures {
		failures = append(failures, map[string]string{"source": f.Path, "error": f.Err.Error()})
	}
	loaded := report.Loaded
	if loaded == nil {
		loaded = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"loaded":   loaded,
		"failures": failures,
	})
}

// resolveTheme resolves the theme for one request. The "mode" parameter selects
// dark or light rendering; without it the theme's configured default applies.
func (s *Server) resolveTheme(r *http.Request, vars map[string]string, def *models.Definition) theme.Tree {
	req := theme.FromHTTP(r, vars)
	cache := theme.NewCache(s.themes, req)

	tree := cache.Resolve(theme.Normalize(def.Theme), nil)
	mode, ok := req.Param("mode")
	if !ok {
		mode = theme.DarkModeDefault(tree)
	}
	return theme.ForMode(tree, mode)
}

// decodeSubmission reads a JSON body or a URL-encoded form. Form lead fields are
// "lead[name]" and "lead[email]"; every other form key is an answer.
func decodeSubmission(r *http.Request) (response.Input, *models.Lead, error) {
	r.Body = http.MaxBytesReader(nil, r.Body, maxBodyBytes)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/x-www-form-urlencoded" || mediaType == "multipart/form-data" {
		if err := r.ParseForm(); err != nil {
			return nil, nil, fmt.Errorf("invalid form body: %w", err)
		}
		lead := &models.Lead{Name: r.PostForm.Get("lead[name]"), Email: r.PostForm.Get("lead[email]")}
		values := make(map[string][]string, len(r.PostForm))
		for key, vals := range r.PostForm {
			if strings.HasPrefix(key, "lead[") {
				continue
			}
			values[key] = vals
		}
		return response.InputFromValues(values), lead, nil
	}

	var req SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, nil, fmt.Errorf("invalid request body: %w", err)
	}
	if req.Answers == nil {
		req.Answers = map[string]interface{}{}
	}
	return response.Input(req.Answers), req.Lead, nil
}

func submissionView(sub *service.Submission) SubmissionView {
	resp := sub.Response
	view := SubmissionView{
		UUID:      resp.UUID,
		Slug:      resp.AssessmentSlug,
		Score:     resp.Score(),
		Tags:      resp.Tags(),
		Answers:   resp.Answers,
		ResultURL: fmt.Sprintf("/v1/assessments/%s/results/%s", resp.AssessmentSlug, resp.UUID),
	}
	if sub.Rule != nil {
		view.Result = &ResultView{
			ID:       sub.Rule.ID,
			Text:     sub.Rule.Text,
			Payload:  sub.Rule.Payload,
			Fallback: sub.Rule.Fallback,
		}
	}
	return view
}

func writeServiceError(w http.ResponseWriter, err error) {
	var missing *service.MissingRequiredError
	switch {
	case errors.As(err, &missing):
		writeJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{
			"error":   err.Error(),
			"missing": missing.QuestionIDs,
		})
	case errors.Is(err, registry.ErrNotFound), errors.Is(err, service.ErrResponseNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
