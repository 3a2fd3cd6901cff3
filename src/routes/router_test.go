package routes_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"Backend-Feedback/src/blobstore"
	"Backend-Feedback/src/jobs"
	"Backend-Feedback/src/repository"
	"Backend-Feedback/src/routes"
	"Backend-Feedback/src/services/academicyears"
	"Backend-Feedback/src/services/feedbacks"
	"Backend-Feedback/src/services/forms"
	"Backend-Feedback/src/services/imagefeedbacks"
	"Backend-Feedback/src/services/questions"
	"Backend-Feedback/src/services/users"
	"Backend-Feedback/src/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type envelope struct {
	StatusCode int             `json:"statusCode"`
	Message    string          `json:"message"`
	Data       json.RawMessage `json:"data"`
	Errors     []string        `json:"errors"`
}

type client struct {
	t   *testing.T
	app *fiber.App
}

func (c client) do(method, path, token string, body interface{}) (int, envelope) {
	c.t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(c.t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := c.app.Test(req, -1)
	require.NoError(c.t, err)
	defer resp.Body.Close()

	var env envelope
	raw, err := io.ReadAll(resp.Body)
	require.NoError(c.t, err)
	require.NoError(c.t, json.Unmarshal(raw, &env), string(raw))
	return resp.StatusCode, env
}

func decode(t *testing.T, env envelope, out interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(env.Data, out))
}

func newApp(t *testing.T) client {
	t.Helper()
	store := repository.NewMemoryStore()
	tokens := utils.NewTokenManager("access", "refresh", 15*time.Minute, time.Hour)
	sessions := utils.NewSessionStore(nil, 5, time.Minute)
	blobs, err := blobstore.NewLocalStore(t.TempDir(), "http://localhost/uploads")
	require.NoError(t, err)

	purger := forms.NewPurger(store)
	enqueuer := jobs.NewInlineEnqueuer(jobs.NewHandlers(purger, blobs).Mux())

	app := routes.NewApp(routes.Dependencies{
		Tokens:         tokens,
		Sessions:       sessions,
		Users:          users.NewService(store, tokens, sessions).WithHashCost(bcrypt.MinCost),
		AcademicYears:  academicyears.NewService(store),
		Forms:          forms.NewService(store, purger, enqueuer),
		Questions:      questions.NewService(store),
		Feedbacks:      feedbacks.NewService(store),
		ImageFeedbacks: imagefeedbacks.NewService(store, blobs, enqueuer, 1600),
	})
	return client{t: t, app: app}
}

func (c client) registerAndLogin(body map[string]string) string {
	c.t.Helper()
	status, env := c.do(http.MethodPost, "/api/v1/users/register", "", body)
	require.Equal(c.t, http.StatusCreated, status, env.Message)

	status, env = c.do(http.MethodPost, "/api/v1/users/login", "", map[string]string{
		"email": body["email"], "password": body["password"],
	})
	require.Equal(c.t, http.StatusOK, status, env.Message)
	var login struct {
		AccessToken string `json:"accessToken"`
	}
	decode(c.t, env, &login)
	return login.AccessToken
}

func TestFeedbackFlowOverHTTP(t *testing.T) {
	c := newApp(t)

	adminToken := c.registerAndLogin(map[string]string{
		"fullName": "Admin", "email": "admin@example.com", "password": "admin-pass",
		"collegeId": "JCER001", "accountType": "admin", "department": "ALL",
	})

	status, env := c.do(http.MethodPost, "/api/v1/academic-years", adminToken, map[string]string{"year": "2024-25"})
	require.Equal(t, http.StatusCreated, status, env.Message)
	var year struct {
		ID string `json:"id"`
	}
	decode(t, env, &year)

	instructorToken := c.registerAndLogin(map[string]string{
		"fullName": "Dr. Iyer", "email": "iyer@example.com", "password": "instructor-pass",
		"collegeId": "INSTCS001", "accountType": "instructor", "department": "CSE",
	})
	studentToken := c.registerAndLogin(map[string]string{
		"fullName": "Asha", "email": "asha@example.com", "password": "student-pass",
		"collegeId": "2JR21CS001", "accountType": "student", "department": "CSE",
		"academicYear": year.ID,
	})

	// students cannot create forms
	status, env = c.do(http.MethodPost, "/api/v1/forms", studentToken, map[string]interface{}{})
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, http.StatusForbidden, env.StatusCode)

	status, env = c.do(http.MethodPost, "/api/v1/forms", instructorToken, map[string]interface{}{
		"title":        "Data Structures mid-term",
		"description":  "Week 1-8",
		"department":   "CSE",
		"academicYear": year.ID,
		"questions": []map[string]interface{}{
			{"question": "Rate the course", "options": []string{"Good", "Average", "Poor"}},
			{"question": "Anything else?"},
		},
	})
	require.Equal(t, http.StatusCreated, status, env.Message)
	var form struct {
		ID        string `json:"id"`
		Questions []struct {
			ID string `json:"id"`
		} `json:"questions"`
	}
	decode(t, env, &form)
	require.Len(t, form.Questions, 2)

	status, _ = c.do(http.MethodPatch, "/api/v1/forms/publish", instructorToken, map[string]string{"formId": form.ID})
	require.Equal(t, http.StatusOK, status)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/forms/"+form.ID+"/qrcode?size=128", nil)
	req.Header.Set("Authorization", "Bearer "+studentToken)
	resp, err := c.app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))
	resp.Body.Close()

	status, env = c.do(http.MethodGet, "/api/v1/forms/department?page=1&limit=5", studentToken, nil)
	require.Equal(t, http.StatusOK, status)
	var listed struct {
		Total int64 `json:"total"`
		Data  []struct {
			ID        string `json:"id"`
			Submitted bool   `json:"submitted"`
		} `json:"data"`
	}
	decode(t, env, &listed)
	require.Equal(t, int64(1), listed.Total)
	assert.False(t, listed.Data[0].Submitted)

	answers := map[string]interface{}{"responses": []map[string]string{
		{"questionId": form.Questions[0].ID, "responseText": "Good"},
		{"questionId": form.Questions[1].ID, "responseText": "More labs"},
	}}
	status, env = c.do(http.MethodPost, "/api/v1/feedbacks/response/"+form.ID, studentToken, answers)
	require.Equal(t, http.StatusCreated, status, env.Message)

	status, env = c.do(http.MethodPost, "/api/v1/feedbacks/response/"+form.ID, studentToken, answers)
	assert.Equal(t, http.StatusConflict, status)
	assert.NotEmpty(t, env.Message)

	status, env = c.do(http.MethodGet, "/api/v1/feedbacks/exists/"+form.ID, studentToken, nil)
	require.Equal(t, http.StatusOK, status)
	var state struct {
		Submitted bool `json:"submitted"`
	}
	decode(t, env, &state)
	assert.True(t, state.Submitted)

	status, _ = c.do(http.MethodGet, "/api/v1/feedbacks/all/response/"+form.ID, studentToken, nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, env = c.do(http.MethodGet, "/api/v1/feedbacks/all/response/"+form.ID, instructorToken, nil)
	require.Equal(t, http.StatusOK, status)
	var result struct {
		TotalResponses int                               `json:"totalResponses"`
		PerQuestion    map[string]map[string]interface{} `json:"perQuestion"`
	}
	decode(t, env, &result)
	assert.Equal(t, 1, result.TotalResponses)
	assert.Equal(t, float64(1), result.PerQuestion["Rate the course"]["Good"])
	assert.Equal(t, []interface{}{"More labs"}, result.PerQuestion["Anything else?"]["freeText"])

	// answered questions stay
	status, _ = c.do(http.MethodDelete, "/api/v1/forms/question/"+form.Questions[0].ID, instructorToken, nil)
	assert.Equal(t, http.StatusConflict, status)

	status, _ = c.do(http.MethodDelete, "/api/v1/forms/"+form.ID, adminToken, nil)
	require.Equal(t, http.StatusOK, status)
	status, _ = c.do(http.MethodGet, "/api/v1/forms/"+form.ID, instructorToken, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestAuthErrorsUseEnvelope(t *testing.T) {
	c := newApp(t)

	status, env := c.do(http.MethodGet, "/api/v1/forms/user", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, http.StatusUnauthorized, env.StatusCode)
	assert.NotNil(t, env.Errors)

	status, _ = c.do(http.MethodGet, "/api/v1/forms/user", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, env = c.do(http.MethodPost, "/api/v1/users/register", "", map[string]string{"email": "nope"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.NotEmpty(t, env.Errors)

	status, env = c.do(http.MethodGet, "/api/v1/does-not-exist", "", nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, http.StatusNotFound, env.StatusCode)
}

func TestLogoutRevokesRefreshToken(t *testing.T) {
	c := newApp(t)
	body := map[string]string{
		"fullName": "Dr. Rao", "email": "rao@example.com", "password": "instructor-pass",
		"collegeId": "INSTEC002", "accountType": "instructor", "department": "ECE",
	}
	status, _ := c.do(http.MethodPost, "/api/v1/users/register", "", body)
	require.Equal(t, http.StatusCreated, status)

	status, env := c.do(http.MethodPost, "/api/v1/users/login", "", map[string]string{
		"email": body["email"], "password": body["password"],
	})
	require.Equal(t, http.StatusOK, status)
	var tokens struct {
		AccessToken  string `json:"accessToken"`
		RefreshToken string `json:"refreshToken"`
	}
	decode(t, env, &tokens)

	status, env = c.do(http.MethodGet, "/api/v1/users/current-user", tokens.AccessToken, nil)
	require.Equal(t, http.StatusOK, status)
	var me struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	decode(t, env, &me)
	assert.Equal(t, "rao@example.com", me.Email)
	assert.Empty(t, me.Password)

	status, _ = c.do(http.MethodPost, "/api/v1/users/logout", tokens.AccessToken, nil)
	require.Equal(t, http.StatusOK, status)

	status, _ = c.do(http.MethodPost, "/api/v1/users/refresh-token", "", map[string]string{"refreshToken": tokens.RefreshToken})
	assert.Equal(t, http.StatusUnauthorized, status)
}
