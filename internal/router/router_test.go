package router

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/oksasatya/project-management-api/internal/application"
	"github.com/oksasatya/project-management-api/internal/domain/entity"
	"github.com/oksasatya/project-management-api/internal/infrastructure/redisstore"
	handlers "github.com/oksasatya/project-management-api/internal/interface/http"
	"github.com/oksasatya/project-management-api/internal/testutil"
	"github.com/oksasatya/project-management-api/pkg/helpers"
	"github.com/oksasatya/project-management-api/pkg/validation"
)

var linkRe = regexp.MustCompile(`http://client\.test/(verify-email|reset-password)/([0-9a-f]{64})`)

type apiEnv struct {
	engine *gin.Engine
	users  *testutil.UserRepo
	mail   *testutil.Mailer
	mr     *miniredis.Miniredis
}

func newAPIEnv(t *testing.T) *apiEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	validation.Init()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	jwtm, err := helpers.NewJWTManager("access-secret", "refresh-secret", time.Hour, 2*time.Hour)
	require.NoError(t, err)

	logger := helpers.NewDiscardLogger()
	users := testutil.NewUserRepo()
	mail := &testutil.Mailer{}
	auth := application.NewAuthService(users, redisstore.NewTokenCache(rdb), helpers.NewPasswordHasher(bcrypt.MinCost), jwtm, mail, logger, application.AuthConfig{
		ClientURL:      "http://client.test",
		VerifyTokenTTL: time.Hour,
		ResetTokenTTL:  30 * time.Minute,
	})

	engine := New(Deps{
		Auth:          handlers.NewAuthHandler(auth, logger),
		Users:         handlers.NewUserHandler(application.NewUserService(users, nil, logger), logger),
		Projects:      handlers.NewProjectHandler(application.NewProjectService(testutil.NewProjectRepo(), testutil.NewTaskRepo(), nil, nil, logger), logger),
		Teams:         handlers.NewTeamHandler(application.NewTeamService(testutil.NewTeamRepo(), logger), logger),
		Authenticator: auth,
		Logger:        logger,
		DebugMetrics:  true,
	})
	return &apiEnv{engine: engine, users: users, mail: mail, mr: mr}
}

type envelope struct {
	Status  int             `json:"status"`
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   json.RawMessage `json:"error"`
}

func (e *apiEnv) do(t *testing.T, method, path, token string, body any) (int, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.engine.ServeHTTP(w, req)

	var env envelope
	if w.Header().Get("Content-Type") == "application/json; charset=utf-8" {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
		assert.Equal(t, w.Code, env.Status)
	}
	return w.Code, env
}

func (e *apiEnv) lastLink(t *testing.T, kind string) string {
	t.Helper()
	msg, ok := e.mail.Last()
	require.True(t, ok)
	m := linkRe.FindStringSubmatch(msg.Text)
	require.Len(t, m, 3)
	require.Equal(t, kind, m[1])
	return m[2]
}

type authData struct {
	User  entity.UserProfile `json:"user"`
	Token helpers.TokenPair  `json:"token"`
}

func (e *apiEnv) register(t *testing.T, email, role string) authData {
	t.Helper()
	code, env := e.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"firstName": "Alice", "lastName": "Liddell", "email": email, "password": "wonderland", "role": role,
	})
	require.Equal(t, http.StatusCreated, code, string(env.Error))
	var data authData
	require.NoError(t, json.Unmarshal(env.Data, &data))
	return data
}

func TestAuthFlow_RegisterVerifyReplay(t *testing.T) {
	e := newAPIEnv(t)

	data := e.register(t, "alice@x.com", "")
	assert.Equal(t, "alice@x.com", data.User.Email)
	assert.Equal(t, entity.RoleDeveloper, data.User.Role)
	assert.NotEmpty(t, data.Token.AccessToken)

	token := e.lastLink(t, "verify-email")
	assert.True(t, e.mr.Exists("email_verification_"+token))

	code, _ := e.do(t, http.MethodPost, "/api/auth/verify-email/"+token, "", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.False(t, e.mr.Exists("email_verification_"+token))
	u, err := e.users.GetByEmail(context.Background(), "alice@x.com")
	require.NoError(t, err)
	assert.True(t, u.IsEmailVerified)

	code, env := e.do(t, http.MethodPost, "/api/auth/verify-email/"+token, "", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.False(t, env.Success)

	code, _ = e.do(t, http.MethodPost, "/api/auth/reverify-email", "", map[string]string{"email": "alice@x.com"})
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestAuthFlow_RegisterRejects(t *testing.T) {
	e := newAPIEnv(t)
	e.register(t, "alice@x.com", "")

	code, env := e.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"firstName": "A", "lastName": "B", "email": "ALICE@x.com", "password": "another1",
	})
	assert.Equal(t, http.StatusConflict, code)
	assert.JSONEq(t, `"email_taken"`, string(env.Error))
	assert.Equal(t, 1, e.users.Count())

	code, env = e.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"firstName": "A", "lastName": "B", "email": "not-an-email", "password": "123",
	})
	assert.Equal(t, http.StatusBadRequest, code)
	var details map[string]string
	require.NoError(t, json.Unmarshal(env.Error, &details))
	assert.Contains(t, details, "email")
	assert.Contains(t, details, "password")
}

func TestAuthFlow_MultibytePasswordLimit(t *testing.T) {
	e := newAPIEnv(t)

	code, env := e.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"firstName": "A", "lastName": "B", "email": "long@x.com", "password": strings.Repeat("é", 40),
	})
	assert.Equal(t, http.StatusBadRequest, code)
	var details map[string]string
	require.NoError(t, json.Unmarshal(env.Error, &details))
	assert.Contains(t, details, "password")
	assert.Equal(t, 0, e.users.Count())

	code, env = e.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"firstName": "A", "lastName": "B", "email": "fits@x.com", "password": strings.Repeat("é", 36),
	})
	assert.Equal(t, http.StatusCreated, code, string(env.Error))
}

func TestAuthFlow_LoginForgotReset(t *testing.T) {
	e := newAPIEnv(t)
	e.register(t, "alice@x.com", "")

	code, env := e.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"email": "alice@x.com", "password": "wonderland"})
	require.Equal(t, http.StatusOK, code)
	assert.NotContains(t, string(env.Data), "password")
	assert.NotContains(t, string(env.Data), "$2a$")

	code, _ = e.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"email": "alice@x.com", "password": "wrong-one"})
	assert.Equal(t, http.StatusUnauthorized, code)
	code, _ = e.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"email": "bob@x.com", "password": "wonderland"})
	assert.Equal(t, http.StatusUnauthorized, code)

	code, _ = e.do(t, http.MethodPost, "/api/auth/forgot-password", "", map[string]string{"email": "bob@x.com"})
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = e.do(t, http.MethodPost, "/api/auth/forgot-password", "", map[string]string{"email": "alice@x.com"})
	require.Equal(t, http.StatusOK, code)
	token := e.lastLink(t, "reset-password")
	assert.Equal(t, 30*time.Minute, e.mr.TTL("password_reset_"+token))

	code, _ = e.do(t, http.MethodPost, "/api/auth/reset-password/"+token, "", map[string]string{"password": "looking-glass"})
	require.Equal(t, http.StatusOK, code)
	code, _ = e.do(t, http.MethodPost, "/api/auth/reset-password/"+token, "", map[string]string{"password": "again-again"})
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = e.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"email": "alice@x.com", "password": "looking-glass"})
	assert.Equal(t, http.StatusOK, code)
	code, _ = e.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"email": "alice@x.com", "password": "wonderland"})
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestAuthFlow_ProtectedRoutes(t *testing.T) {
	e := newAPIEnv(t)
	data := e.register(t, "alice@x.com", "")
	tok := data.Token.AccessToken

	code, _ := e.do(t, http.MethodPut, "/api/auth/change-password", "", map[string]string{"currentPassword": "wonderland", "newPassword": "new-secret"})
	assert.Equal(t, http.StatusUnauthorized, code)

	code, _ = e.do(t, http.MethodPut, "/api/auth/change-password", tok, map[string]string{"currentPassword": "nope-nope", "newPassword": "new-secret"})
	assert.Equal(t, http.StatusBadRequest, code)
	code, _ = e.do(t, http.MethodPut, "/api/auth/change-password", tok, map[string]string{"currentPassword": "wonderland", "newPassword": "new-secret"})
	assert.Equal(t, http.StatusOK, code)

	code, _ = e.do(t, http.MethodPost, "/api/auth/logout", tok, nil)
	assert.Equal(t, http.StatusOK, code)

	code, env := e.do(t, http.MethodGet, "/api/users/me", tok, nil)
	require.Equal(t, http.StatusOK, code)
	var prof entity.UserProfile
	require.NoError(t, json.Unmarshal(env.Data, &prof))
	assert.Equal(t, "alice@x.com", prof.Email)
	assert.NotNil(t, prof.LastLogin)

	code, _ = e.do(t, http.MethodGet, "/api/users", tok, nil)
	assert.Equal(t, http.StatusForbidden, code)
	manager := e.register(t, "mgr@x.com", "manager")
	code, env = e.do(t, http.MethodGet, "/api/users", manager.Token.AccessToken, nil)
	require.Equal(t, http.StatusOK, code)
	var list []entity.UserProfile
	require.NoError(t, json.Unmarshal(env.Data, &list))
	assert.Len(t, list, 2)

	code, _ = e.do(t, http.MethodPost, "/api/users/me/avatar", tok, nil)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestProjectsAndTeams(t *testing.T) {
	e := newAPIEnv(t)
	owner := e.register(t, "owner@x.com", "manager")
	dev := e.register(t, "dev@x.com", "")

	code, env := e.do(t, http.MethodPost, "/api/projects", owner.Token.AccessToken, map[string]any{
		"name": "Apollo", "isPublic": true, "tags": []string{"space"},
	})
	require.Equal(t, http.StatusCreated, code, string(env.Error))
	var public entity.Project
	require.NoError(t, json.Unmarshal(env.Data, &public))

	code, env = e.do(t, http.MethodPost, "/api/projects", owner.Token.AccessToken, map[string]any{"name": "Hidden"})
	require.Equal(t, http.StatusCreated, code)
	var hidden entity.Project
	require.NoError(t, json.Unmarshal(env.Data, &hidden))

	code, _ = e.do(t, http.MethodPost, "/api/projects", owner.Token.AccessToken, map[string]any{"name": "Apollo"})
	assert.Equal(t, http.StatusConflict, code)

	code, _ = e.do(t, http.MethodGet, "/api/projects/"+public.ID, "", nil)
	assert.Equal(t, http.StatusOK, code)
	code, _ = e.do(t, http.MethodGet, "/api/projects/"+hidden.ID, "", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	code, _ = e.do(t, http.MethodGet, "/api/projects/"+hidden.ID, dev.Token.AccessToken, nil)
	assert.Equal(t, http.StatusForbidden, code)
	code, _ = e.do(t, http.MethodGet, "/api/projects/missing", owner.Token.AccessToken, nil)
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = e.do(t, http.MethodGet, "/api/projects", "", nil)
	assert.Equal(t, http.StatusUnauthorized, code)

	code, env = e.do(t, http.MethodGet, "/api/projects/search?q=space", dev.Token.AccessToken, nil)
	require.Equal(t, http.StatusOK, code)
	var found []entity.Project
	require.NoError(t, json.Unmarshal(env.Data, &found))
	require.Len(t, found, 1)
	assert.Equal(t, public.ID, found[0].ID)

	code, _ = e.do(t, http.MethodPost, "/api/projects/"+hidden.ID+"/tasks", owner.Token.AccessToken, map[string]any{"title": "Launch"})
	assert.Equal(t, http.StatusCreated, code)
	code, env = e.do(t, http.MethodGet, "/api/projects/"+hidden.ID+"/summary", owner.Token.AccessToken, nil)
	require.Equal(t, http.StatusOK, code)
	var sum application.ProjectSummary
	require.NoError(t, json.Unmarshal(env.Data, &sum))
	assert.Equal(t, 1, sum.TotalTasks)
	assert.False(t, sum.Generated)

	code, _ = e.do(t, http.MethodPost, "/api/teams", dev.Token.AccessToken, map[string]any{"name": "Core"})
	assert.Equal(t, http.StatusForbidden, code)
	code, _ = e.do(t, http.MethodPost, "/api/teams", owner.Token.AccessToken, map[string]any{"name": "Core", "members": []string{dev.User.ID}})
	assert.Equal(t, http.StatusCreated, code)
	code, env = e.do(t, http.MethodGet, "/api/teams", dev.Token.AccessToken, nil)
	require.Equal(t, http.StatusOK, code)
	var teams []entity.Team
	require.NoError(t, json.Unmarshal(env.Data, &teams))
	assert.Len(t, teams, 1)
}

func TestHealthAndDebug(t *testing.T) {
	e := newAPIEnv(t)

	w := httptest.NewRecorder()
	e.engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	w = httptest.NewRecorder()
	e.engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/debug/vars", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "memstats")
}
