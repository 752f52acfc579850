//go:build e2e

package e2e_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"

	"github.com/marcosklein04/alquileres-ai/internal/adapter/postgres"
	contractrepo "github.com/marcosklein04/alquileres-ai/internal/adapter/postgres/contract"
	"github.com/marcosklein04/alquileres-ai/internal/adapter/postgres/testhelper"
	"github.com/marcosklein04/alquileres-ai/internal/adapter/provider/resend"
	"github.com/marcosklein04/alquileres-ai/internal/config"
	"github.com/marcosklein04/alquileres-ai/internal/extraction"
	contractsvc "github.com/marcosklein04/alquileres-ai/internal/service/contract"
	"github.com/marcosklein04/alquileres-ai/internal/service/notifier"
	"github.com/marcosklein04/alquileres-ai/internal/transport/rest"
)

// ---------------------------------------------------------------------------
// Stub extractor: replaces the language-model adapter in E2E tests.
// ---------------------------------------------------------------------------

type stubExtractor struct {
	mu     sync.Mutex
	fields extraction.Fields
	err    error
}

func (s *stubExtractor) Extract(_ context.Context, _ string) (extraction.Fields, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fields, s.err
}

func (s *stubExtractor) set(fields extraction.Fields, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fields = fields
	s.err = err
}

// ---------------------------------------------------------------------------
// Mail sink: a fake Resend API that records every send request.
// ---------------------------------------------------------------------------

type sentMail struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	Text    string   `json:"text"`
}

type mailSink struct {
	mu    sync.Mutex
	mails []sentMail
	fail  bool
}

func (m *mailSink) handler(w http.ResponseWriter, r *http.Request) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.fail {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	var mail sentMail
	if err := json.NewDecoder(r.Body).Decode(&mail); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	m.mails = append(m.mails, mail)

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"id":"test-mail-id"}`))
}

func (m *mailSink) setFail(fail bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fail = fail
}

func (m *mailSink) sent() []sentMail {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]sentMail, len(m.mails))
	copy(out, m.mails)
	return out
}

// mailsTo returns every recorded mail addressed to the given recipient.
func (m *mailSink) mailsTo(addr string) []sentMail {
	var out []sentMail
	for _, mail := range m.sent() {
		for _, to := range mail.To {
			if to == addr {
				out = append(out, mail)
			}
		}
	}
	return out
}

// ---------------------------------------------------------------------------
// testServer wraps the full-stack HTTP server for E2E tests.
// ---------------------------------------------------------------------------

type testServer struct {
	URL       string
	Client    *http.Client
	Pool      *pgxpool.Pool
	Extractor *stubExtractor
	Mail      *mailSink
}

// testLogWriter adapts testing.T to io.Writer for slog.
type testLogWriter struct{ t *testing.T }

func (w testLogWriter) Write(p []byte) (int, error) {
	w.t.Helper()
	w.t.Log(string(p))
	return len(p), nil
}

// setupTestServer bootstraps the full application stack backed by a real
// PostgreSQL container (shared via testhelper). The language-model
// extractor and the Resend API are replaced with local fakes.
func setupTestServer(t *testing.T) *testServer {
	t.Helper()

	pool := testhelper.SetupTestDB(t)

	logger := slog.New(slog.NewTextHandler(testLogWriter{t}, nil))

	sink := &mailSink{}
	mailSrv := httptest.NewServer(http.HandlerFunc(sink.handler))
	t.Cleanup(mailSrv.Close)

	txm := postgres.NewTxManager(pool)
	contracts := contractrepo.New(pool)
	extractor := &stubExtractor{}
	mailer := resend.NewWithURL(mailSrv.URL, config.MailerConfig{
		APIKey:   "test-key",
		From:     "tracker@example.com",
		FromName: "Contract Tracker",
	}, logger)

	contractService := contractsvc.NewService(logger, contracts, extractor, txm)
	notifierService := notifier.NewService(logger, contracts, mailer, config.NotifierConfig{
		NoticeWindowDays: 60,
	})

	router, limiter := rest.NewRouter(rest.RouterDeps{
		Contracts:     rest.NewContractsHandler(contractService, logger),
		Notifications: rest.NewNotificationsHandler(notifierService, logger),
		Health:        rest.NewHealthHandler(pool, "test-version"),
		Logger:        logger,
		ServerCfg:     config.ServerConfig{RateLimitPerMin: 10_000},
		CORSCfg: config.CORSConfig{
			AllowedOrigins:   "*",
			AllowedMethods:   "GET,POST,PATCH,OPTIONS",
			AllowedHeaders:   "Authorization,Content-Type",
			AllowCredentials: true,
			MaxAge:           86400,
		},
	})
	t.Cleanup(limiter.Stop)

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	return &testServer{
		URL:       srv.URL,
		Client:    srv.Client(),
		Pool:      pool,
		Extractor: extractor,
		Mail:      sink,
	}
}

// ---------------------------------------------------------------------------
// HTTP helpers
// ---------------------------------------------------------------------------

// doJSON sends a request with an optional JSON body and returns the
// status code plus the decoded response body.
func (ts *testServer) doJSON(t *testing.T, method, path string, body any) (int, map[string]any) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequest(method, ts.URL+path, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := ts.Client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var result map[string]any
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &result), "body: %s", raw)
	}
	return resp.StatusCode, result
}

// doJSONList is doJSON for endpoints that return a top-level array.
func (ts *testServer) doJSONList(t *testing.T, method, path string) (int, []map[string]any) {
	t.Helper()

	req, err := http.NewRequest(method, ts.URL+path, nil)
	require.NoError(t, err)

	resp, err := ts.Client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var result []map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	return resp.StatusCode, result
}
