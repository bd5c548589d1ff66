package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"sapp/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// setupMockDB creates a GORM *gorm.DB backed by sqlmock with ping monitoring enabled.
func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), &gorm.Config{
		DisableAutomaticPing: true,
	})
	require.NoError(t, err)
	return gormDB, mock
}

func decodeBody(t *testing.T, resp *http.Response, dst interface{}) {
	t.Helper()
	defer func() { _ = resp.Body.Close() }()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(dst))
}

// --- humanizeParam (pure function, no HTTP) ---

func TestHumanizeParam(t *testing.T) {
	tests := []struct {
		param    string
		expected string
	}{
		{"id", "ID"},
		{"userId", "user ID"},
		{"commentId", "comment ID"},
		{"contentId", "content ID"},
		{"learningPathId", "learning path ID"},
		{"something", "something"},
	}
	for _, tt := range tests {
		t.Run(tt.param, func(t *testing.T) {
			assert.Equal(t, tt.expected, humanizeParam(tt.param))
		})
	}
}

// --- parsePagination ---

func paginationApp() *fiber.App {
	app := fiber.New()
	app.Get("/items", func(c *fiber.Ctx) error {
		p := parsePagination(c, 25)
		return c.JSON(fiber.Map{"limit": p.Limit, "offset": p.Offset})
	})
	return app
}

func TestParsePagination(t *testing.T) {
	tests := []struct {
		name   string
		query  string
		limit  float64
		offset float64
	}{
		{"defaults", "", 25, 0},
		{"custom", "?limit=10&offset=30", 10, 30},
		{"clamped", "?limit=500", maxPaginationLimit, 0},
		{"non-positive limit", "?limit=0&offset=-5", 25, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := paginationApp().Test(httptest.NewRequest(http.MethodGet, "/items"+tt.query, nil))
			require.NoError(t, err)

			var body map[string]float64
			decodeBody(t, resp, &body)
			assert.Equal(t, tt.limit, body["limit"])
			assert.Equal(t, tt.offset, body["offset"])
		})
	}
}

// --- parseID ---

func TestParseID_ValidID(t *testing.T) {
	app := fiber.New()
	app.Get("/items/:id", func(c *fiber.Ctx) error {
		id, err := parseID(c, "id")
		if err != nil {
			return nil
		}
		return c.JSON(fiber.Map{"id": id})
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/items/42", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]float64
	decodeBody(t, resp, &body)
	assert.Equal(t, float64(42), body["id"])
}

func TestParseID_Rejected(t *testing.T) {
	tests := []struct {
		param       string
		value       string
		expectedMsg string
	}{
		{"id", "abc", "Invalid ID"},
		{"id", "0", "Invalid ID"},
		{"id", "-3", "Invalid ID"},
		{"commentId", "abc", "Invalid comment ID"},
		{"contentId", "x1", "Invalid content ID"},
	}
	for _, tt := range tests {
		t.Run(tt.param+"="+tt.value, func(t *testing.T) {
			app := fiber.New()
			app.Get("/items/:"+tt.param, func(c *fiber.Ctx) error {
				_, _ = parseID(c, tt.param)
				return nil
			})

			resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/items/"+tt.value, nil))
			require.NoError(t, err)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

			var body models.ErrorResponse
			decodeBody(t, resp, &body)
			assert.Equal(t, tt.expectedMsg, body.Error)
			assert.Equal(t, models.CodeValidation, body.Code)
		})
	}
}

// --- respondError ---

func TestRespondError_StatusMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"not found", models.NewNotFoundError("Post", 9), http.StatusNotFound, models.CodeNotFound},
		{"unauthorized", models.NewUnauthorizedError("nope"), http.StatusForbidden, models.CodeUnauthorized},
		{"validation", models.NewValidationError("bad"), http.StatusBadRequest, models.CodeValidation},
		{"plain error", errors.New(`pq: relation "comments" does not exist`), http.StatusInternalServerError, models.CodeInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New()
			app.Get("/", func(c *fiber.Ctx) error { return respondError(c, tt.err) })

			resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)

			var body models.ErrorResponse
			decodeBody(t, resp, &body)
			assert.Equal(t, tt.code, body.Code)
			if tt.status == http.StatusInternalServerError {
				assert.Equal(t, "Internal server error", body.Error)
				assert.Empty(t, body.Details, "store errors must not reach the client")
			}
		})
	}
}

// --- ReadinessCheck ---

func readinessStatus(t *testing.T, s *Server) (int, map[string]interface{}) {
	t.Helper()
	app := fiber.New()
	app.Get("/health/ready", s.ReadinessCheck)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/health/ready", nil), -1)
	require.NoError(t, err)
	var body map[string]interface{}
	decodeBody(t, resp, &body)
	return resp.StatusCode, body
}

func TestReadinessCheck_WithoutRedis(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	mock.ExpectPing()

	status, body := readinessStatus(t, &Server{db: gormDB})
	assert.Equal(t, http.StatusOK, status)
	checks := body["checks"].(map[string]interface{})
	assert.Equal(t, "healthy", checks["database"])
	assert.Equal(t, "unavailable", checks["redis"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReadinessCheck_WithRedis(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	mock.ExpectPing()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	status, body := readinessStatus(t, &Server{db: gormDB, redis: rdb})
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "healthy", body["checks"].(map[string]interface{})["redis"])
}

func TestReadinessCheck_DatabaseDown(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	mock.ExpectPing().WillReturnError(errors.New("connection refused"))

	status, body := readinessStatus(t, &Server{db: gormDB})
	assert.Equal(t, http.StatusServiceUnavailable, status)
	assert.Equal(t, "unhealthy", body["status"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReadinessCheck_RedisDown(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	mock.ExpectPing()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr(), DialTimeout: 100 * time.Millisecond, MaxRetries: -1})
	t.Cleanup(func() { _ = rdb.Close() })
	mr.Close()

	status, body := readinessStatus(t, &Server{db: gormDB, redis: rdb})
	assert.Equal(t, http.StatusServiceUnavailable, status)
	assert.Equal(t, "unhealthy", body["checks"].(map[string]interface{})["redis"])
}
