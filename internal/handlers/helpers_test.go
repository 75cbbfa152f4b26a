package handlers_test

import (
	"Chest/internal/config"
	"Chest/internal/handlers"
	"Chest/internal/middleware"
	"Chest/internal/model"
	"Chest/internal/repo"
	"Chest/internal/service"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const testSecret = "test-secret"

// Local light mocks
type hMockStatsRepo struct{ mock.Mock }

func (m *hMockStatsRepo) Global(ctx context.Context) (*model.GlobalStats, error) {
	args := m.Called(ctx)
	if v, ok := args.Get(0).(*model.GlobalStats); ok {
		return v, args.Error(1)
	}
	return nil, args.Error(1)
}

var _ repo.StatsRepository = (*hMockStatsRepo)(nil)

type testEnv struct {
	router http.Handler
	cfg    *config.Config
	db     *gorm.DB
}

type envOption func(*config.Config, *handlers.Services)

func withRateLimit(n int) envOption {
	return func(c *config.Config, _ *handlers.Services) { c.ShareRateLimit = n }
}

func withStats(r repo.StatsRepository) envOption {
	return func(_ *config.Config, s *handlers.Services) {
		s.Stats = service.NewStatsService(r, 0, zap.NewNop().Sugar())
	}
}

func withPing(fn func(ctx context.Context) error) envOption {
	return func(_ *config.Config, s *handlers.Services) { s.Ping = fn }
}

// newTestEnv поднимает роутер поверх настоящей SQLite во временном каталоге
func newTestEnv(t *testing.T, opts ...envOption) *testEnv {
	t.Helper()
	log := zap.NewNop().Sugar()
	db, err := repo.InitDB(filepath.Join(t.TempDir(), "test.db"), log)
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close(db) })

	tx := repo.NewTxManager(db)
	partnerRepo := repo.NewPartnerRepository(db)
	profileRepo := repo.NewProfileRepository(db)
	eventRepo := repo.NewEventRepository(db)
	partners := service.NewPartnerService(partnerRepo, profileRepo, tx, log)
	profiles := service.NewProfileService(profileRepo, partners, tx, log)

	svc := handlers.Services{
		Partners: partners,
		Profiles: profiles,
		Events:   service.NewEventService(eventRepo, partnerRepo, profiles, tx, log),
		Shares:   service.NewShareService(repo.NewShareLinkRepository(db), eventRepo, tx, log),
		Accounts: service.NewAccountService(repo.NewAccountRepository(db), tx, log),
		Stats:    service.NewStatsService(repo.NewStatsRepository(db), 0, log),
		Ping:     func(ctx context.Context) error { return repo.Ping(ctx, db) },
	}
	cfg := &config.Config{AuthSecret: testSecret, ShareRateLimit: 0}
	for _, o := range opts {
		o(cfg, &svc)
	}

	h := handlers.NewHandler(svc, log, cfg)
	return &testEnv{router: h.Router, cfg: cfg, db: db}
}

// do выполняет запрос; при owner == "" запрос идёт без токена
func (e *testEnv) do(t *testing.T, method, path, owner, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if owner != "" {
		tok, err := middleware.IssueToken(owner, testSecret, time.Hour)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	rr := httptest.NewRecorder()
	e.router.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v), rr.Body.String())
	return v
}

func errorMessage(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	return decode[map[string]string](t, rr)["error"]
}

// createPartner создаёт партнёра через API и возвращает его id
func (e *testEnv) createPartner(t *testing.T, owner, body string) handlers.PartnerDTO {
	t.Helper()
	rr := e.do(t, http.MethodPost, "/api/partners", owner, body)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	return decode[handlers.PartnerDTO](t, rr)
}

func (e *testEnv) createEvent(t *testing.T, owner, body string) handlers.EventDTO {
	t.Helper()
	rr := e.do(t, http.MethodPost, "/api/events", owner, body)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	return decode[handlers.EventDTO](t, rr)
}

func eventIDs(events []handlers.EventDTO) []string {
	out := make([]string, 0, len(events))
	for _, e := range events {
		out = append(out, e.ID)
	}
	return out
}
