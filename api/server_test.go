package api

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	_ "github.com/mattn/go-sqlite3"

	"github.com/sturner103/letter-to-you/auth"
	"github.com/sturner103/letter-to-you/email"
	"github.com/sturner103/letter-to-you/interview"
	"github.com/sturner103/letter-to-you/letters"
	"github.com/sturner103/letter-to-you/llm"
	"github.com/sturner103/letter-to-you/payments"
	"github.com/sturner103/letter-to-you/store"
)

type stubGenerator struct{ reply string }

func (g *stubGenerator) Generate(ctx context.Context, prompt, systemInstructions string, maxTokens int) (string, error) {
	return g.reply, nil
}

// blockingGenerator parks every Generate call until released, so tests can
// observe a session mid-generation.
type blockingGenerator struct {
	started chan struct{}
	release chan struct{}
}

func (g *blockingGenerator) Generate(ctx context.Context, prompt, systemInstructions string, maxTokens int) (string, error) {
	g.started <- struct{}{}
	<-g.release
	return "Dear you,\n\nStill here.", nil
}

func newTestRouter(t *testing.T) *gin.Engine {
	return newTestRouterWith(t, &stubGenerator{reply: "Dear you,\n\nKeep going."})
}

func newTestRouterWith(t *testing.T, gen llm.Generator) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	conn, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open in-memory database: %v", err)
	}
	conn.SetMaxOpenConns(1)
	t.Cleanup(func() { conn.Close() })
	st, err := store.Open(conn)
	if err != nil {
		t.Fatalf("failed to bootstrap schema: %v", err)
	}

	authSvc := auth.NewService(st, "test-secret", time.Hour, 24*time.Hour, time.Second)
	// Payments disabled: the gate mints purchases so interview routes work
	// without Stripe.
	gate := payments.NewGate(st, "", "", "", "http://localhost:5173", true, 1, time.Millisecond)
	orch := letters.NewOrchestrator(st, gen)
	cache := letters.NewListCache(st, time.Hour)
	sessions := interview.NewRegistry(time.Hour)
	var emailClient *email.Client

	server := NewServer(st, authSvc, gate, orch, cache, sessions, emailClient, nil)

	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, gin.H{"error": "Method not allowed"})
	})
	server.Routes(r)
	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path, token string, body any) (*httptest.ResponseRecorder, map[string]json.RawMessage) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	fields := map[string]json.RawMessage{}
	if w.Body.Len() > 0 {
		if err := json.Unmarshal(w.Body.Bytes(), &fields); err != nil {
			t.Fatalf("response is not a JSON object: %s", w.Body.String())
		}
	}
	return w, fields
}

func signUp(t *testing.T, r *gin.Engine) string {
	t.Helper()
	w, fields := doJSON(t, r, http.MethodPost, "/api/v1/auth/signup", "", gin.H{
		"email": "user@example.com", "password": "correct horse", "displayName": "Jo",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("signup returned %d: %s", w.Code, w.Body.String())
	}
	var tokens struct {
		AccessToken string `json:"accessToken"`
	}
	if err := json.Unmarshal(fields["tokens"], &tokens); err != nil || tokens.AccessToken == "" {
		t.Fatalf("signup response missing tokens: %s", w.Body.String())
	}
	return tokens.AccessToken
}

func TestMethodMismatchIs405(t *testing.T) {
	r := newTestRouter(t)
	w, fields := doJSON(t, r, http.MethodGet, "/api/v1/auth/signup", "", nil)
	if w.Code != http.StatusMethodNotAllowed {
		t.Fatalf("GET on POST route returned %d", w.Code)
	}
	if _, ok := fields["error"]; !ok {
		t.Fatalf("405 body missing error field: %s", w.Body.String())
	}
}

func TestMissingFieldsAre400(t *testing.T) {
	r := newTestRouter(t)
	token := signUp(t, r)

	cases := []struct{ method, path string }{
		{http.MethodPost, "/api/v1/auth/signin"},
		{http.MethodPost, "/api/v1/interviews"},
		{http.MethodPost, "/api/v1/checkout/verify"},
		{http.MethodPost, "/api/v1/letters/generate"},
		{http.MethodPost, "/api/v1/letters/compare"},
		{http.MethodPost, "/api/v1/checkins"},
	}
	for _, tc := range cases {
		w, fields := doJSON(t, r, tc.method, tc.path, token, gin.H{})
		if w.Code != http.StatusBadRequest {
			t.Errorf("%s %s with empty body returned %d", tc.method, tc.path, w.Code)
		}
		if _, ok := fields["error"]; !ok {
			t.Errorf("%s %s 400 body missing error field", tc.method, tc.path)
		}
	}
}

func TestUnauthenticatedRequestsAre401(t *testing.T) {
	r := newTestRouter(t)
	for _, path := range []string{"/api/v1/letters", "/api/v1/purchases", "/api/v1/checkins"} {
		w, _ := doJSON(t, r, http.MethodGet, path, "", nil)
		if w.Code != http.StatusUnauthorized {
			t.Errorf("GET %s without token returned %d", path, w.Code)
		}
	}
}

func TestCheckoutCookieScopedToReturnPaths(t *testing.T) {
	r := newTestRouter(t)
	cookie := &http.Cookie{Name: checkoutCookieName, Value: "user-from-cookie"}

	// The continuity cookie alone cannot read the archive.
	req := httptest.NewRequest(http.MethodGet, "/api/v1/letters", nil)
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("cookie-only archive read returned %d, want 401", rec.Code)
	}

	// It does re-associate the interview start on the checkout return.
	req = httptest.NewRequest(http.MethodPost, "/api/v1/interviews",
		bytes.NewBufferString(`{"mode":"breakup"}`))
	req.Header.Set("Content-Type", "application/json")
	req.AddCookie(cookie)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code == http.StatusUnauthorized {
		t.Fatalf("cookie did not authenticate the interview start: %d", rec.Code)
	}
}

func TestInterviewFlowEndToEnd(t *testing.T) {
	r := newTestRouter(t)
	token := signUp(t, r)

	w, fields := doJSON(t, r, http.MethodPost, "/api/v1/interviews", token, gin.H{"mode": "breakup"})
	if w.Code != http.StatusOK {
		t.Fatalf("start interview returned %d: %s", w.Code, w.Body.String())
	}
	var sess struct {
		ID        string `json:"id"`
		Questions []struct {
			ID string `json:"id"`
		} `json:"questions"`
	}
	if err := json.Unmarshal(fields["session"], &sess); err != nil {
		t.Fatalf("bad session payload: %v", err)
	}
	if sess.ID == "" || len(sess.Questions) == 0 {
		t.Fatalf("session payload incomplete: %s", w.Body.String())
	}

	base := "/api/v1/interviews/" + sess.ID
	w, _ = doJSON(t, r, http.MethodPost, base+"/answer", token, gin.H{
		"questionId": sess.Questions[0].ID, "text": "It ended and I'm finding my feet.",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("answer returned %d: %s", w.Code, w.Body.String())
	}

	// Walk every question, then the final next triggers generation.
	var last map[string]json.RawMessage
	for i := 0; i < len(sess.Questions); i++ {
		w, last = doJSON(t, r, http.MethodPost, base+"/next", token, nil)
		if w.Code != http.StatusOK {
			t.Fatalf("next %d returned %d: %s", i, w.Code, w.Body.String())
		}
	}
	if _, ok := last["letter"]; !ok {
		t.Fatalf("final next did not produce a letter: %v", keys(last))
	}

	// The session is gone once the letter is delivered.
	w, _ = doJSON(t, r, http.MethodGet, base, token, nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("completed session still retrievable: %d", w.Code)
	}

	// And the letter landed in the archive.
	w, fields = doJSON(t, r, http.MethodGet, "/api/v1/letters", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list letters returned %d", w.Code)
	}
	var list []json.RawMessage
	if err := json.Unmarshal(fields["letters"], &list); err != nil || len(list) != 1 {
		t.Fatalf("archive has %d letters: %s", len(list), w.Body.String())
	}
}

func TestDuplicateSubmitConflicts(t *testing.T) {
	gen := &blockingGenerator{started: make(chan struct{}), release: make(chan struct{})}
	r := newTestRouterWith(t, gen)
	token := signUp(t, r)

	w, fields := doJSON(t, r, http.MethodPost, "/api/v1/interviews", token, gin.H{"mode": "breakup"})
	if w.Code != http.StatusOK {
		t.Fatalf("start interview returned %d", w.Code)
	}
	var sess struct {
		ID        string `json:"id"`
		Questions []struct {
			ID string `json:"id"`
		} `json:"questions"`
	}
	if err := json.Unmarshal(fields["session"], &sess); err != nil {
		t.Fatalf("bad session payload: %v", err)
	}

	base := "/api/v1/interviews/" + sess.ID
	w, _ = doJSON(t, r, http.MethodPost, base+"/answer", token, gin.H{
		"questionId": sess.Questions[0].ID, "text": "It ended and I'm taking stock.",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("answer returned %d", w.Code)
	}
	for i := 0; i < len(sess.Questions)-1; i++ {
		w, _ = doJSON(t, r, http.MethodPost, base+"/next", token, nil)
		if w.Code != http.StatusOK {
			t.Fatalf("next %d returned %d", i, w.Code)
		}
	}

	// The final next parks inside the generator.
	first := make(chan *httptest.ResponseRecorder, 1)
	go func() {
		req := httptest.NewRequest(http.MethodPost, base+"/next", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		first <- rec
	}()
	<-gen.started

	// A duplicate submit while the first is generating is a conflict, never
	// a crisis redirect, and must not tear the session down.
	w, fields = doJSON(t, r, http.MethodPost, base+"/next", token, nil)
	if w.Code != http.StatusConflict {
		t.Fatalf("duplicate submit returned %d, want 409: %s", w.Code, w.Body.String())
	}
	if _, ok := fields["crisisResources"]; ok {
		t.Fatalf("duplicate submit served crisis resources")
	}
	w, _ = doJSON(t, r, http.MethodGet, base, token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("session gone after duplicate submit: %d", w.Code)
	}

	close(gen.release)
	rec := <-first
	if rec.Code != http.StatusOK {
		t.Fatalf("original submit returned %d: %s", rec.Code, rec.Body.String())
	}
	var out map[string]json.RawMessage
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("bad submit body: %v", err)
	}
	if _, ok := out["letter"]; !ok {
		t.Fatalf("original submit did not deliver a letter: %v", keys(out))
	}
}

func TestCrisisAnswerRedirects(t *testing.T) {
	r := newTestRouter(t)
	token := signUp(t, r)

	w, fields := doJSON(t, r, http.MethodPost, "/api/v1/interviews", token, gin.H{"mode": "breakup"})
	if w.Code != http.StatusOK {
		t.Fatalf("start interview returned %d", w.Code)
	}
	var sess struct {
		ID        string `json:"id"`
		Questions []struct {
			ID string `json:"id"`
		} `json:"questions"`
	}
	if err := json.Unmarshal(fields["session"], &sess); err != nil {
		t.Fatalf("bad session payload: %v", err)
	}

	base := "/api/v1/interviews/" + sess.ID
	w, _ = doJSON(t, r, http.MethodPost, base+"/answer", token, gin.H{
		"questionId": sess.Questions[0].ID, "text": "most days I want to die",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("answer returned %d", w.Code)
	}

	w, fields = doJSON(t, r, http.MethodPost, base+"/skip", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("skip returned %d", w.Code)
	}
	if _, ok := fields["crisisResources"]; !ok {
		t.Fatalf("crisis answer did not surface resources: %v", keys(fields))
	}
	if _, ok := fields["letter"]; ok {
		t.Fatalf("letter generated despite crisis interrupt")
	}
}

func TestQuickGenerateScansTranscript(t *testing.T) {
	r := newTestRouter(t)
	token := signUp(t, r)

	w, fields := doJSON(t, r, http.MethodPost, "/api/v1/letters/generate", token, gin.H{
		"qaPairs": "Q1: How are you?\nA1: thinking about self-harm a lot",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("generate returned %d", w.Code)
	}
	if _, ok := fields["crisisResources"]; !ok {
		t.Fatalf("quick path bypassed the safety scan: %v", keys(fields))
	}
	if _, ok := fields["letter"]; ok {
		t.Fatalf("letter generated despite crisis content")
	}
}

func TestSessionStoreAndRestore(t *testing.T) {
	r := newTestRouter(t)
	token := signUp(t, r)

	w, _ := doJSON(t, r, http.MethodPost, "/api/v1/session/store", token, gin.H{
		"accessToken": "acc", "refreshToken": "ref",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("session store returned %d: %s", w.Code, w.Body.String())
	}
	cookies := w.Result().Cookies()
	var restore *http.Cookie
	for _, c := range cookies {
		if c.Name == restoreCookieName {
			restore = c
		}
	}
	if restore == nil || restore.Value == "" {
		t.Fatalf("restore cookie not set")
	}
	if !restore.HttpOnly {
		t.Fatalf("restore cookie not HttpOnly")
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/session/restore", nil)
	req.AddCookie(restore)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("restore returned %d", rec.Code)
	}
	var body struct {
		Restored bool `json:"restored"`
		Tokens   struct {
			AccessToken  string `json:"accessToken"`
			RefreshToken string `json:"refreshToken"`
		} `json:"tokens"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("bad restore body: %v", err)
	}
	if !body.Restored || body.Tokens.AccessToken != "acc" || body.Tokens.RefreshToken != "ref" {
		t.Fatalf("restore payload wrong: %+v", body)
	}

	// Single use: the same cookie restores nothing the second time.
	req = httptest.NewRequest(http.MethodGet, "/api/v1/session/restore", nil)
	req.AddCookie(restore)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("second restore returned %d", rec.Code)
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("bad restore body: %v", err)
	}
	if body.Restored {
		t.Fatalf("restore token worked twice")
	}
}

func keys(m map[string]json.RawMessage) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
