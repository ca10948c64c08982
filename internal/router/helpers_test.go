package router

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/makeasinger/scales/internal/config"
	"github.com/makeasinger/scales/internal/handler"
	"github.com/makeasinger/scales/internal/middleware"
	"github.com/makeasinger/scales/internal/repository"
	"github.com/makeasinger/scales/internal/service"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

const testJWTSecret = "test-secret-for-router"

type testApp struct {
	app    *fiber.App
	auth   *middleware.AuthMiddleware
	scales *service.ScaleService
	jobs   *service.JobService
}

func testConfig() *config.Config {
	return &config.Config{
		Storage:   config.StorageConfig{Provider: "memory"},
		RateLimit: config.RateLimitConfig{WritePerMin: 10000, JobsPerHour: 10000},
	}
}

// setupApp builds the routes over the in-memory repository with jobs disabled
func setupApp(t *testing.T) *testApp {
	t.Helper()
	return setup(t, nil, nil)
}

// setupJobsApp enables pitch-table jobs on Redis DB 11, skipping without Redis
func setupJobsApp(t *testing.T, enq service.Enqueuer) *testApp {
	t.Helper()
	client := redis.NewClient(&redis.Options{Addr: "localhost:6379", DB: 11})
	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("redis not available: %v", err)
	}
	t.Cleanup(func() {
		client.FlushDB(ctx)
		client.Close()
	})
	return setup(t, client, enq)
}

func setup(t *testing.T, client *redis.Client, enq service.Enqueuer) *testApp {
	t.Helper()
	validate := validator.New()
	scales := service.NewScaleService(repository.NewMemoryRepository())
	auth := middleware.NewAuthMiddleware(testJWTSecret, 1)

	deps := Deps{
		Config:      testConfig(),
		Scales:      handler.NewScaleHandler(scales, validate),
		Theory:      handler.NewTheoryHandler(validate),
		Auth:        auth,
		RateLimiter: middleware.NewRateLimiter(client),
	}

	var jobs *service.JobService
	if client != nil {
		jobs = service.NewJobService(client, enq, scales)
		deps.Jobs = handler.NewJobHandler(jobs)
	}

	app := fiber.New()
	Setup(app, deps)

	return &testApp{app: app, auth: auth, scales: scales, jobs: jobs}
}

func (ta *testApp) token(t *testing.T) string {
	t.Helper()
	token, err := ta.auth.GenerateToken("test-user-123", "test@example.com")
	require.NoError(t, err)
	return token
}

func doRequest(t *testing.T, app *fiber.App, method, path, body string, headers map[string]string) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func (ta *testApp) doAuthRequest(t *testing.T, method, path, body string) *http.Response {
	t.Helper()
	return doRequest(t, ta.app, method, path, body, map[string]string{
		"Authorization": "Bearer " + ta.token(t),
	})
}

func parseJSON(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	defer resp.Body.Close()
	var result map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	return result
}

func assertStatus(t *testing.T, resp *http.Response, expected int) {
	t.Helper()
	if resp.StatusCode != expected {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("expected status %d, got %d: %s", expected, resp.StatusCode, string(body))
	}
}

func errorCode(t *testing.T, resp *http.Response) string {
	t.Helper()
	body := parseJSON(t, resp)
	errObj, ok := body["error"].(map[string]interface{})
	require.True(t, ok, "expected error envelope, got %v", body)
	return errObj["code"].(string)
}
