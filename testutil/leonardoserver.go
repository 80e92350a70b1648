package testutil

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

// ScriptedResponse is one canned HTTP response served by FakeLeonardo.
type ScriptedResponse struct {
	Status int
	Body   string
}

// SubmitOK is a successful submission response carrying the given job id.
func SubmitOK(generationID string) ScriptedResponse {
	return ScriptedResponse{
		Status: http.StatusOK,
		Body:   fmt.Sprintf(`{"sdGenerationJob":{"generationId":"%s"}}`, generationID),
	}
}

// StatusPending is a PENDING status response.
func StatusPending() ScriptedResponse {
	return ScriptedResponse{
		Status: http.StatusOK,
		Body:   `{"generations_by_pk":{"status":"PENDING"}}`,
	}
}

// StatusFailed is a FAILED status response.
func StatusFailed() ScriptedResponse {
	return ScriptedResponse{
		Status: http.StatusOK,
		Body:   `{"generations_by_pk":{"status":"FAILED"}}`,
	}
}

// StatusWith is a status response with an arbitrary status label and no
// images.
func StatusWith(status string) ScriptedResponse {
	return ScriptedResponse{
		Status: http.StatusOK,
		Body:   fmt.Sprintf(`{"generations_by_pk":{"status":"%s"}}`, status),
	}
}

// StatusComplete is a COMPLETE status response carrying one generated image
// per URL, in order. Empty strings produce images with empty URLs.
func StatusComplete(urls ...string) ScriptedResponse {
	images := make([]string, 0, len(urls))
	for i, u := range urls {
		images = append(images, fmt.Sprintf(`{"id":"img-%d","url":"%s"}`, i, u))
	}
	return ScriptedResponse{
		Status: http.StatusOK,
		Body:   fmt.Sprintf(`{"generations_by_pk":{"status":"COMPLETE","generated_images":[%s]}}`, strings.Join(images, ",")),
	}
}

// FakeLeonardo is a scripted stand-in for the Leonardo generation endpoints.
// Submission responses and status responses are consumed in script order; the
// last entry repeats once a script runs out, and an empty script falls back to
// a successful submission / PENDING status. All methods are safe for
// concurrent use.
type FakeLeonardo struct {
	Server *httptest.Server

	mu           sync.Mutex
	submitScript []ScriptedResponse
	statusScript []ScriptedResponse
	submitIdx    int
	statusIdx    int
	submitCalls  int
	statusCalls  int
	lastSubmit   []byte
	lastAuth     string
}

// NewFakeLeonardo starts the fake server and shuts it down when the test
// finishes.
func NewFakeLeonardo(t *testing.T) *FakeLeonardo {
	t.Helper()
	f := &FakeLeonardo{}
	f.Server = httptest.NewServer(http.HandlerFunc(f.handle))
	t.Cleanup(f.Server.Close)
	return f
}

// URL returns the fake endpoint base URL.
func (f *FakeLeonardo) URL() string { return f.Server.URL }

// ScriptSubmit sets the submission responses, replacing any previous script.
func (f *FakeLeonardo) ScriptSubmit(responses ...ScriptedResponse) *FakeLeonardo {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.submitScript = responses
	f.submitIdx = 0
	return f
}

// ScriptStatus sets the status responses, replacing any previous script.
func (f *FakeLeonardo) ScriptStatus(responses ...ScriptedResponse) *FakeLeonardo {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statusScript = responses
	f.statusIdx = 0
	return f
}

// SubmitCalls reports how many submissions the fake has served.
func (f *FakeLeonardo) SubmitCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.submitCalls
}

// StatusCalls reports how many status queries the fake has served.
func (f *FakeLeonardo) StatusCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.statusCalls
}

// LastSubmitBody returns the body of the most recent submission.
func (f *FakeLeonardo) LastSubmitBody() []byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastSubmit
}

// LastAuthorization returns the Authorization header of the most recent call.
func (f *FakeLeonardo) LastAuthorization() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastAuth
}

func (f *FakeLeonardo) handle(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.lastAuth = r.Header.Get("Authorization")

	switch {
	case r.Method == http.MethodPost && r.URL.Path == "/generations":
		f.submitCalls++
		f.lastSubmit, _ = io.ReadAll(r.Body)
		reply(w, next(f.submitScript, &f.submitIdx, SubmitOK("gen-test-1")))
	case r.Method == http.MethodGet && strings.HasPrefix(r.URL.Path, "/generations/"):
		f.statusCalls++
		reply(w, next(f.statusScript, &f.statusIdx, StatusPending()))
	default:
		http.NotFound(w, r)
	}
}

func next(script []ScriptedResponse, idx *int, fallback ScriptedResponse) ScriptedResponse {
	if len(script) == 0 {
		return fallback
	}
	i := *idx
	if i >= len(script) {
		i = len(script) - 1
	}
	*idx++
	return script[i]
}

func reply(w http.ResponseWriter, resp ScriptedResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(resp.Status)
	io.WriteString(w, resp.Body)
}
