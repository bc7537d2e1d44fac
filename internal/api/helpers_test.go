package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/taskflow-api/internal/api/middleware"
	"github.com/phrazzld/taskflow-api/internal/api/shared"
	"github.com/phrazzld/taskflow-api/internal/domain"
	"github.com/phrazzld/taskflow-api/internal/mocks"
	"github.com/phrazzld/taskflow-api/internal/platform/logger"
	"github.com/phrazzld/taskflow-api/internal/service"
	"github.com/phrazzld/taskflow-api/internal/service/auth"
	"github.com/stretchr/testify/require"
)

// testAPI wires the handlers to in-memory stores behind the real
// authentication middleware.
type testAPI struct {
	router http.Handler
	users  *mocks.MockUserStore
	tasks  *mocks.MockTaskStore
	tokens *mocks.MockTokenService
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	log, _ := logger.NewTestLogger(t)
	ta := &testAPI{
		users:  mocks.NewMockUserStore(),
		tasks:  mocks.NewMockTaskStore(),
		tokens: mocks.NewMockTokenService(),
	}

	userSvc := service.NewUserService(ta.users, &mocks.MockPasswordHasher{}, log)
	taskSvc := service.NewTaskService(ta.tasks, log)
	authMW := middleware.NewAuthMiddleware(auth.NewAuthorizer(ta.tokens, ta.users))

	authHandler := NewAuthHandler(userSvc, ta.tokens, log)
	taskHandler := NewTaskHandler(taskSvc, log)

	r := chi.NewRouter()
	r.Use(middleware.NewTraceMiddleware(log))
	r.Post("/auth/register", authHandler.Register)
	r.Post("/auth/login", authHandler.Login)
	r.Group(func(r chi.Router) {
		r.Use(authMW.Authenticate)
		r.Get("/user/profile", NewUserHandler().Profile)
		r.Post("/tasks", taskHandler.CreateTask)
		r.Get("/tasks", taskHandler.ListTasks)
		r.Get("/tasks/{id}", taskHandler.GetTask)
		r.Put("/tasks/{id}", taskHandler.UpdateTask)
		r.Delete("/tasks/{id}", taskHandler.DeleteTask)
	})
	ta.router = r
	return ta
}

// addUser stores a user directly and returns a token for it.
func (a *testAPI) addUser(t *testing.T, name, email string) (*domain.User, string) {
	t.Helper()
	user := &domain.User{
		ID:             uuid.New(),
		Name:           name,
		Email:          email,
		HashedPassword: "hashed:secret1",
	}
	a.users.Add(user)
	return user, mocks.TokenFor(user.ID)
}

func (a *testAPI) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if raw, ok := body.(string); ok {
			buf.WriteString(raw)
		} else {
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	a.router.ServeHTTP(rr, req)
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
	return decode[shared.ErrorResponse](t, rr).Message
}
