package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harrison/assessment/internal/builtin"
	"github.com/harrison/assessment/internal/registry"
	"github.com/harrison/assessment/internal/service"
	"github.com/harrison/assessment/internal/store"
	"github.com/harrison/assessment/internal/theme"
)

type fixture struct {
	server *httptest.Server
	root   string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	root := t.TempDir()
	reg := registry.New()
	loader := registry.NewLoader(reg, []string{root}, builtin.Sources(), nil)
	_, err := loader.Reload()
	require.NoError(t, err)

	st, err := store.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	svc := service.New(service.Options{
		Definitions:  reg,
		Responses:    st,
		FallbackText: "Thanks for completing the assessment.",
	})

	resolver := theme.NewResolver(theme.Config{
		Strategy: theme.StrategyParam,
		Variants: map[string]theme.Tree{
			"forest": {
				"colors":     theme.Tree{"primary": "#14532D"},
				"typography": theme.Tree{"heading": "serif"},
			},
		},
		ParamKeys: []string{"theme"},
	})

	srv := New(Options{
		Registry: reg,
		Loader:   loader,
		Service:  svc,
		Themes:   resolver,
	})

	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)
	return &fixture{server: ts, root: root}
}

func (f *fixture) get(t *testing.T, path string) (int, map[string]interface{}) {
	t.Helper()
	res, err := http.Get(f.server.URL + path)
	require.NoError(t, err)
	return decode(t, res)
}

func (f *fixture) post(t *testing.T, path, contentType, body string) (int, map[string]interface{}) {
	t.Helper()
	res, err := http.Post(f.server.URL+path, contentType, strings.NewReader(body))
	require.NoError(t, err)
	return decode(t, res)
}

func decode(t *testing.T, res *http.Response) (int, map[string]interface{}) {
	t.Helper()
	defer res.Body.Close()
	assert.Equal(t, "application/json", res.Header.Get("Content-Type"))
	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(res.Body).Decode(&body))
	return res.StatusCode, body
}

func TestHealth(t *testing.T) {
	f := newFixture(t)
	status, body := f.get(t, "/health")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, 1.0, body["assessments"])
}

func TestListAssessments(t *testing.T) {
	f := newFixture(t)
	status, body := f.get(t, "/v1/assessments")
	require.Equal(t, http.StatusOK, status)

	list := body["assessments"].([]interface{})
	require.Len(t, list, 1)
	first := list[0].(map[string]interface{})
	assert.Equal(t, builtin.DemoSlug, first["slug"])
	assert.Equal(t, 3.0, first["questions"])
}

func TestGetAssessmentThemeLayers(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name        string
		query       string
		wantPrimary string
		wantHeading string
	}{
		{name: "definition override beats base", query: "", wantPrimary: "#0F766E", wantHeading: "sans"},
		{name: "definition override beats variant", query: "?theme=forest", wantPrimary: "#0F766E", wantHeading: "serif"},
		{name: "unknown variant uses base", query: "?theme=nope", wantPrimary: "#0F766E", wantHeading: "sans"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := f.get(t, "/v1/assessments/"+builtin.DemoSlug+tt.query)
			require.Equal(t, http.StatusOK, status)

			tree := body["theme"].(map[string]interface{})
			colors := tree["colors"].(map[string]interface{})
			assert.Equal(t, tt.wantPrimary, colors["primary"])
			typography := tree["typography"].(map[string]interface{})
			assert.Equal(t, tt.wantHeading, typography["heading"])
			assert.Contains(t, body["css"], "--assessment-colors-primary: "+tt.wantPrimary+";")

			doc := body["assessment"].(map[string]interface{})
			assert.Equal(t, "Digital Readiness Check", doc["title"])
		})
	}
}

func TestGetAssessmentNotFound(t *testing.T) {
	f := newFixture(t)
	status, body := f.get(t, "/v1/assessments/missing")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Contains(t, body["error"], "missing")
}

func TestSubmitJSONAndFetchResult(t *testing.T) {
	f := newFixture(t)

	status, body := f.post(t, "/v1/assessments/"+builtin.DemoSlug+"/responses", "application/json", `{
  "answers": {"release": "weekly", "practices": ["tests", "ci", "iac"], "ownership": "team"},
  "lead": {"name": "Ada", "email": "ada@example.com"}
}`)
	require.Equal(t, http.StatusCreated, status, "%v", body)

	result := body["result"].(map[string]interface{})
	assert.Equal(t, "leader", result["id"])
	assert.Equal(t, 10.0, body["score"])
	uuid := body["uuid"].(string)
	require.NotEmpty(t, uuid)
	assert.Equal(t, "/v1/assessments/"+builtin.DemoSlug+"/results/"+uuid, body["result_url"])

	status, body = f.get(t, body["result_url"].(string))
	require.Equal(t, http.StatusOK, status)
	resp := body["response"].(map[string]interface{})
	assert.Equal(t, uuid, resp["uuid"])
	assert.Equal(t, "leader", resp["result"].(map[string]interface{})["id"])
}

func TestSubmitForm(t *testing.T) {
	f := newFixture(t)

	form := url.Values{}
	form.Set("release", "rarely")
	form.Add("practices[]", "tests")
	form.Set("ownership", "ops")
	form.Set("lead[email]", "ada@example.com")

	status, body := f.post(t, "/v1/assessments/"+builtin.DemoSlug+"/responses", "application/x-www-form-urlencoded", form.Encode())
	require.Equal(t, http.StatusCreated, status, "%v", body)
	assert.Equal(t, "starter", body["result"].(map[string]interface{})["id"])
	assert.NotContains(t, body["answers"], "lead[email]")
}

func TestSubmitErrors(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name       string
		path       string
		body       string
		wantStatus int
		wantKey    string
	}{
		{name: "missing required", path: "/v1/assessments/" + builtin.DemoSlug + "/responses", body: `{"answers": {"release": "weekly"}}`, wantStatus: http.StatusUnprocessableEntity, wantKey: "missing"},
		{name: "unknown assessment", path: "/v1/assessments/nope/responses", body: `{"answers": {}}`, wantStatus: http.StatusNotFound, wantKey: "error"},
		{name: "malformed body", path: "/v1/assessments/" + builtin.DemoSlug + "/responses", body: `{"answers":`, wantStatus: http.StatusBadRequest, wantKey: "error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := f.post(t, tt.path, "application/json", tt.body)
			assert.Equal(t, tt.wantStatus, status)
			assert.Contains(t, body, tt.wantKey)
		})
	}

	_, body := f.post(t, tests[0].path, "application/json", tests[0].body)
	assert.ElementsMatch(t, []interface{}{"ownership"}, body["missing"])
}

func TestResultNotFound(t *testing.T) {
	f := newFixture(t)
	status, _ := f.get(t, "/v1/assessments/"+builtin.DemoSlug+"/results/nope")
	assert.Equal(t, http.StatusNotFound, status)
}

func TestReload(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, os.WriteFile(filepath.Join(f.root, "quick.yml"), []byte(`title: Quick
questions:
  - id: q
    text: Ready?
    options:
      - text: "Yes"
        tag: ready
`), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(f.root, "broken.yml"), []byte("questions: {"), 0644))

	status, body := f.post(t, "/v1/admin/reload", "application/json", "")
	require.Equal(t, http.StatusOK, status)
	assert.ElementsMatch(t, []interface{}{"quick", builtin.DemoSlug}, body["loaded"])
	assert.Len(t, body["failures"], 1)

	status, _ = f.get(t, "/v1/assessments/quick")
	assert.Equal(t, http.StatusOK, status)
}

func TestUnknownRoute(t *testing.T) {
	f := newFixture(t)
	status, body := f.get(t, "/v2/nothing")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "not found", body["error"])
}

func TestListenAndServeShutsDownOnCancel(t *testing.T) {
	srv := New(Options{Registry: registry.New()})
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- srv.ListenAndServe(ctx, "127.0.0.1:0") }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * ShutdownTimeout):
		t.Fatal("server did not shut down")
	}
}
