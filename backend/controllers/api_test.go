package controllers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/coder7564-glitch/Learning-Hub/backend/config"
	"github.com/coder7564-glitch/Learning-Hub/backend/models"
	"github.com/coder7564-glitch/Learning-Hub/backend/routes"
	"github.com/coder7564-glitch/Learning-Hub/backend/utils"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	app        *fiber.App
	db         *gorm.DB
	cfg        *config.Config
	adminToken string
)

func TestMain(m *testing.M) {
	setup()
	os.Exit(m.Run())
}

func setup() {
	cfg = &config.Config{
		JWTSecret:  "testsecret",
		ServerPort: "8080",
	}

	var err error
	db, err = gorm.Open(sqlite.Open("file:api_test?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		panic(err)
	}
	if err := utils.MigrateAll(db); err != nil {
		panic(err)
	}

	app = fiber.New()
	routes.SetupRoutes(app, db, cfg)

	hash, _ := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.MinCost)
	admin := models.User{
		Email:        "admin@example.com",
		PasswordHash: string(hash),
		FirstName:    "Admin",
		Role:         models.RoleAdmin,
	}
	if err := db.Create(&admin).Error; err != nil {
		panic(err)
	}
	token, err := utils.GenerateJWTToken(admin.ID, cfg)
	if err != nil {
		panic(err)
	}
	adminToken = token
}

func doRequest(t *testing.T, method, path, token string, body interface{}) (*http.Response, map[string]interface{}) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	var decoded map[string]interface{}
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		// Listing endpoints answer with an array, callers decode those themselves.
		_ = json.Unmarshal(raw, &decoded)
	}
	return resp, decoded
}

func registerStudent(t *testing.T, email string) string {
	t.Helper()

	resp, body := doRequest(t, "POST", "/api/auth/register", "", fiber.Map{
		"email":      email,
		"password":   "password123",
		"first_name": "Student",
		"last_name":  "One",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	token, _ := body["token"].(string)
	require.NotEmpty(t, token)
	return token
}

func TestRegisterAndLogin(t *testing.T) {
	resp, body := doRequest(t, "POST", "/api/auth/register", "", fiber.Map{
		"email":      "alice@example.com",
		"password":   "password123",
		"first_name": "Alice",
		"last_name":  "Doe",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, body["token"])

	resp, body = doRequest(t, "POST", "/api/auth/login", "", fiber.Map{
		"email":    "alice@example.com",
		"password": "password123",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, body["token"])

	resp, _ = doRequest(t, "POST", "/api/auth/login", "", fiber.Map{
		"email":    "alice@example.com",
		"password": "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestRegisterValidation(t *testing.T) {
	resp, _ := doRequest(t, "POST", "/api/auth/register", "", fiber.Map{
		"email":      "not-an-email",
		"password":   "short",
		"first_name": "",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	resp, _ := doRequest(t, "GET", "/api/user/profile", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = doRequest(t, "GET", "/api/user/profile", "garbage-token", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAdminRoutesForbiddenForStudents(t *testing.T) {
	studentToken := registerStudent(t, "bob@example.com")

	resp, _ := doRequest(t, "POST", "/api/admin/courses/", adminToken, fiber.Map{
		"title": "Visible to admins",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = doRequest(t, "POST", "/api/admin/courses/", studentToken, fiber.Map{
		"title": "Blocked for students",
	})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

// courseID digs the course id out of a create/update response.
func courseID(t *testing.T, body map[string]interface{}) uint {
	t.Helper()

	course, ok := body["course"].(map[string]interface{})
	require.True(t, ok, "response carries no course: %v", body)
	id, ok := course["ID"].(float64)
	require.True(t, ok)
	return uint(id)
}

func TestQuizFlowOverHTTP(t *testing.T) {
	studentToken := registerStudent(t, "carol@example.com")

	// Admin builds a one-video course with a required quiz.
	resp, body := doRequest(t, "POST", "/api/admin/courses/", adminToken, fiber.Map{
		"title": "HTTP flow course",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	course := courseID(t, body)

	resp, _ = doRequest(t, "PUT", fmt.Sprintf("/api/admin/courses/%d", course), adminToken, fiber.Map{
		"status": "published",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body = doRequest(t, "POST", fmt.Sprintf("/api/admin/courses/%d/modules", course), adminToken, fiber.Map{
		"title": "Module one",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	module := uint(body["data"].(map[string]interface{})["ID"].(float64))

	resp, body = doRequest(t, "POST", fmt.Sprintf("/api/admin/modules/%d/videos", module), adminToken, fiber.Map{
		"title":            "Intro",
		"drive_file_id":    "drive-abc",
		"duration_minutes": 10,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	video := uint(body["data"].(map[string]interface{})["ID"].(float64))

	resp, body = doRequest(t, "POST", "/api/admin/quizzes/", adminToken, fiber.Map{
		"title":         "Final check",
		"course_id":     course,
		"passing_score": 70,
		"is_required":   true,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	quiz := uint(body["quiz"].(map[string]interface{})["ID"].(float64))

	resp, body = doRequest(t, "POST", fmt.Sprintf("/api/admin/quizzes/%d/questions", quiz), adminToken, fiber.Map{
		"question_text": "Does Go have classes?",
		"type":          "true_false",
		"answers": []fiber.Map{
			{"text": "No", "is_correct": true},
			{"text": "Yes"},
		},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	question := body["question"].(map[string]interface{})
	questionIDValue := uint(question["ID"].(float64))
	answers := question["Answers"].([]interface{})
	correctAnswer := uint(answers[0].(map[string]interface{})["ID"].(float64))

	// Student enrolls and works through the course.
	resp, _ = doRequest(t, "POST", fmt.Sprintf("/api/courses/%d/enroll", course), studentToken, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, body = doRequest(t, "POST", fmt.Sprintf("/api/videos/%d/progress", video), studentToken, fiber.Map{
		"watched_seconds": 600,
		"is_completed":    true,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(100), body["progress_percentage"])

	resp, body = doRequest(t, "POST", "/api/attempts/", studentToken, fiber.Map{
		"quiz_id": quiz,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	attempt := uint(body["ID"].(float64))

	resp, body = doRequest(t, "POST", fmt.Sprintf("/api/attempts/%d/submit", attempt), studentToken, fiber.Map{
		"responses": []fiber.Map{
			{"question_id": questionIDValue, "selected_answer_ids": []uint{correctAnswer}},
		},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "completed", body["Status"])
	assert.Equal(t, float64(100), body["Score"])
	assert.Equal(t, true, body["Passed"])

	// The cascade marked the course complete.
	resp, body = doRequest(t, "GET", fmt.Sprintf("/api/courses/%d/progress", course), studentToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["is_completed"])

	// Certificate issuance is explicit, idempotent and publicly verifiable.
	resp, body = doRequest(t, "POST", fmt.Sprintf("/api/courses/%d/certificate", course), studentToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	cert := body["certificate"].(map[string]interface{})
	number := cert["CertificateNumber"].(string)
	require.NotEmpty(t, number)

	resp, body = doRequest(t, "POST", fmt.Sprintf("/api/courses/%d/certificate", course), studentToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Certificate already issued", body["message"])

	resp, body = doRequest(t, "GET", "/api/certificates/verify/"+number, "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["valid"])

	resp, _ = doRequest(t, "GET", "/api/certificates/verify/CERT-DOESNOTX", "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAttemptLimitOverHTTP(t *testing.T) {
	studentToken := registerStudent(t, "dave@example.com")

	resp, body := doRequest(t, "POST", "/api/admin/quizzes/", adminToken, fiber.Map{
		"title":        "Single shot",
		"max_attempts": 1,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	quiz := uint(body["quiz"].(map[string]interface{})["ID"].(float64))

	resp, body = doRequest(t, "POST", "/api/attempts/", studentToken, fiber.Map{"quiz_id": quiz})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	attempt := uint(body["ID"].(float64))

	resp, _ = doRequest(t, "POST", fmt.Sprintf("/api/attempts/%d/submit", attempt), studentToken, fiber.Map{})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body = doRequest(t, "POST", "/api/attempts/", studentToken, fiber.Map{"quiz_id": quiz})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "attempt_limit_exceeded", body["code"])
}

func TestAttemptOwnership(t *testing.T) {
	ownerToken := registerStudent(t, "erin@example.com")
	strangerToken := registerStudent(t, "frank@example.com")

	resp, body := doRequest(t, "POST", "/api/admin/quizzes/", adminToken, fiber.Map{
		"title": "Private attempt",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	quiz := uint(body["quiz"].(map[string]interface{})["ID"].(float64))

	resp, body = doRequest(t, "POST", "/api/attempts/", ownerToken, fiber.Map{"quiz_id": quiz})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	attempt := uint(body["ID"].(float64))

	resp, _ = doRequest(t, "GET", fmt.Sprintf("/api/attempts/%d", attempt), strangerToken, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, _ = doRequest(t, "POST", fmt.Sprintf("/api/attempts/%d/submit", attempt), strangerToken, fiber.Map{})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	// Admins may inspect any attempt.
	resp, _ = doRequest(t, "GET", fmt.Sprintf("/api/attempts/%d", attempt), adminToken, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestUnpublishedCourseHiddenFromStudents(t *testing.T) {
	studentToken := registerStudent(t, "grace@example.com")

	resp, body := doRequest(t, "POST", "/api/admin/courses/", adminToken, fiber.Map{
		"title": "Still a draft",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	course := courseID(t, body)

	resp, _ = doRequest(t, "GET", fmt.Sprintf("/api/courses/%d", course), studentToken, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = doRequest(t, "GET", fmt.Sprintf("/api/courses/%d", course), adminToken, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = doRequest(t, "POST", fmt.Sprintf("/api/courses/%d/enroll", course), studentToken, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
