package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"pdfchat/internal/config"
	"pdfchat/internal/http/middleware"
	"pdfchat/internal/model"
	"pdfchat/internal/service"
	serviceMocks "pdfchat/internal/service/mocks"
	appsession "pdfchat/internal/session"
)

const testUserID = "6f1c2b1e-3c7a-4d1e-9a51-2b7f0c9d8e11"

type testEnv struct {
	app   *fiber.App
	store *session.Store
	auth  *serviceMocks.MockAuthService
	pdf   *serviceMocks.MockPDFService
	chat  *serviceMocks.MockChatService
	admin *serviceMocks.MockAdminService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	storage, err := appsession.NewBadgerStorage("", nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = storage.Close() })

	env := &testEnv{
		store: appsession.NewStore(config.SessionConfig{CookieName: "pdfchat_session", ExpirationMin: 60}, storage),
		auth:  new(serviceMocks.MockAuthService),
		pdf:   new(serviceMocks.MockPDFService),
		chat:  new(serviceMocks.MockChatService),
		admin: new(serviceMocks.MockAdminService),
	}

	env.app = fiber.New(fiber.Config{ErrorHandler: ErrorHandler()})
	env.app.Use(middleware.RequestID())

	// test-only shortcuts that seed a session
	env.app.Post("/test/session/user", func(c *fiber.Ctx) error {
		return startUserSession(c, env.store, testUserID, "alice")
	})
	env.app.Post("/test/session/admin", func(c *fiber.Ctx) error {
		sess, err := env.store.Get(c)
		if err != nil {
			return err
		}
		sess.Set(appsession.KeyAdmin, true)
		sess.Set(appsession.KeyAdminUsername, "admin")
		return sess.Save()
	})

	RegisterRoutes(env.app, Dependencies{
		Sessions: env.store,
		Auth:     env.auth,
		PDF:      env.pdf,
		Chat:     env.chat,
		Admin:    env.admin,
	})
	return env
}

func (e *testEnv) do(t *testing.T, req *http.Request, cookies ...*http.Cookie) *http.Response {
	t.Helper()
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func (e *testEnv) sessionCookie(t *testing.T, kind string) *http.Cookie {
	t.Helper()
	resp := e.do(t, httptest.NewRequest(http.MethodPost, "/test/session/"+kind, nil))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	for _, ck := range resp.Cookies() {
		if ck.Name == "pdfchat_session" {
			return ck
		}
	}
	t.Fatal("no session cookie")
	return nil
}

func jsonRequest(method, path string, body any) *http.Request {
	b, _ := json.Marshal(body)
	req := httptest.NewRequest(method, path, bytes.NewReader(b))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return req
}

func decodeError(t *testing.T, resp *http.Response) errorPayload {
	t.Helper()
	var body errorPayload
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

func TestHealthCheck(t *testing.T) {
	db, dbMock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()

	app := fiber.New()
	app.Get("/health", HealthCheck(db))

	t.Run("healthy", func(t *testing.T) {
		dbMock.ExpectPing()

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var body map[string]string
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, "healthy", body["status"])
	})

	t.Run("unhealthy", func(t *testing.T) {
		dbMock.ExpectPing().WillReturnError(errors.New("db error"))

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
		assert.Equal(t, "SERVICE_UNAVAILABLE", decodeError(t, resp).Error.Code)
	})
}

func TestLivenessProbe(t *testing.T) {
	app := fiber.New()
	app.Get("/healthz", LivenessProbe())

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestSignup(t *testing.T) {
	t.Run("creates account and session", func(t *testing.T) {
		env := newTestEnv(t)
		env.auth.On("Signup", mock.Anything, service.SignupInput{Username: "alice", Email: "a@example.com", Password: "secret1"}).
			Return(&model.User{ID: testUserID, Username: "alice"}, nil)

		resp := env.do(t, jsonRequest(http.MethodPost, "/api/auth/signup",
			map[string]string{"username": "alice", "email": "a@example.com", "password": "secret1"}))
		require.Equal(t, http.StatusCreated, resp.StatusCode)

		var body authResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, testUserID, body.User.ID)

		var cookie *http.Cookie
		for _, ck := range resp.Cookies() {
			if ck.Name == "pdfchat_session" {
				cookie = ck
			}
		}
		require.NotNil(t, cookie)

		status := env.do(t, httptest.NewRequest(http.MethodGet, "/api/auth/status", nil), cookie)
		var st authStatusResponse
		require.NoError(t, json.NewDecoder(status.Body).Decode(&st))
		assert.True(t, st.Authenticated)
		assert.Equal(t, "alice", st.User.Username)
	})

	t.Run("duplicate", func(t *testing.T) {
		env := newTestEnv(t)
		env.auth.On("Signup", mock.Anything, mock.Anything).Return(nil, service.ErrUserExists)

		resp := env.do(t, jsonRequest(http.MethodPost, "/api/auth/signup",
			map[string]string{"username": "alice", "email": "a@example.com", "password": "secret1"}))
		assert.Equal(t, http.StatusConflict, resp.StatusCode)
		body := decodeError(t, resp)
		assert.Equal(t, "USER_EXISTS", body.Error.Code)
		assert.NotEmpty(t, body.RequestID)
	})

	t.Run("validation", func(t *testing.T) {
		env := newTestEnv(t)
		env.auth.On("Signup", mock.Anything, mock.Anything).
			Return(nil, &service.ValidationError{Message: "password must be at least 6 characters"})

		resp := env.do(t, jsonRequest(http.MethodPost, "/api/auth/signup", map[string]string{"username": "a"}))
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		body := decodeError(t, resp)
		assert.Equal(t, "VALIDATION_ERROR", body.Error.Code)
		assert.Equal(t, "password must be at least 6 characters", body.Error.Message)
	})

	t.Run("malformed body", func(t *testing.T) {
		env := newTestEnv(t)
		req := httptest.NewRequest(http.MethodPost, "/api/auth/signup", bytes.NewReader([]byte("{")))
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)

		resp := env.do(t, req)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "INVALID_BODY", decodeError(t, resp).Error.Code)
	})
}

func TestLogin(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		env := newTestEnv(t)
		env.auth.On("Login", mock.Anything, "alice", "secret1").Return(&model.User{ID: testUserID, Username: "alice"}, nil)

		resp := env.do(t, jsonRequest(http.MethodPost, "/api/auth/login", map[string]string{"username": "alice", "password": "secret1"}))
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("wrong password", func(t *testing.T) {
		env := newTestEnv(t)
		env.auth.On("Login", mock.Anything, "alice", "nope").Return(nil, service.ErrInvalidCredentials)

		resp := env.do(t, jsonRequest(http.MethodPost, "/api/auth/login", map[string]string{"username": "alice", "password": "nope"}))
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		assert.Equal(t, "INVALID_CREDENTIALS", decodeError(t, resp).Error.Code)
	})
}

func TestLogout(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.sessionCookie(t, "user")
	env.pdf.On("Release", testUserID).Return()

	resp := env.do(t, httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil), cookie)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	env.pdf.AssertExpectations(t)

	status := env.do(t, httptest.NewRequest(http.MethodGet, "/api/auth/status", nil), cookie)
	var st authStatusResponse
	require.NoError(t, json.NewDecoder(status.Body).Decode(&st))
	assert.False(t, st.Authenticated)
	assert.Nil(t, st.User)
}

func TestRequireAuth(t *testing.T) {
	env := newTestEnv(t)

	for _, r := range []*http.Request{
		httptest.NewRequest(http.MethodGet, "/api/pdf/current", nil),
		jsonRequest(http.MethodPost, "/api/pdf/chat", map[string]string{"message": "hi"}),
		jsonRequest(http.MethodPost, "/api/websearch/chat", map[string]string{"message": "hi"}),
		httptest.NewRequest(http.MethodGet, "/api/chats/history", nil),
	} {
		resp := env.do(t, r)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, r.URL.Path)
		assert.Equal(t, "AUTH_REQUIRED", decodeError(t, resp).Error.Code)
	}
}

func multipartPDF(t *testing.T, field, filename string, content []byte) *http.Request {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	if field != "" {
		part, err := w.CreateFormFile(field, filename)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/pdf/upload", body)
	req.Header.Set(fiber.HeaderContentType, w.FormDataContentType())
	return req
}

func TestUploadPDF(t *testing.T) {
	content := []byte("%PDF-1.4 ...")

	t.Run("success", func(t *testing.T) {
		env := newTestEnv(t)
		cookie := env.sessionCookie(t, "user")
		env.pdf.On("Upload", mock.Anything, testUserID, "report.pdf", content).
			Return(&model.PDFDocument{ID: "p1", Filename: "report.pdf", ChunksCount: 7}, nil)

		resp := env.do(t, multipartPDF(t, "pdf", "report.pdf", content), cookie)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var body uploadResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, 7, body.Chunks)
		assert.Equal(t, "p1", body.Document.ID)
		env.pdf.AssertExpectations(t)
	})

	t.Run("missing file", func(t *testing.T) {
		env := newTestEnv(t)
		cookie := env.sessionCookie(t, "user")

		resp := env.do(t, multipartPDF(t, "", "", nil), cookie)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "PDF_REQUIRED", decodeError(t, resp).Error.Code)
	})

	t.Run("wrong extension", func(t *testing.T) {
		env := newTestEnv(t)
		cookie := env.sessionCookie(t, "user")

		resp := env.do(t, multipartPDF(t, "pdf", "notes.txt", []byte("hello")), cookie)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "INVALID_PDF", decodeError(t, resp).Error.Code)
	})

	errCases := []struct {
		err    error
		status int
		code   string
	}{
		{service.ErrInvalidPDF, http.StatusBadRequest, "INVALID_PDF"},
		{service.ErrNoText, http.StatusBadRequest, "NO_TEXT_EXTRACTED"},
		{service.ErrEmbeddingFailed, http.StatusInternalServerError, "EMBEDDING_FAILED"},
		{errors.New("unexpected"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}
	for _, tc := range errCases {
		t.Run(tc.code, func(t *testing.T) {
			env := newTestEnv(t)
			cookie := env.sessionCookie(t, "user")
			env.pdf.On("Upload", mock.Anything, testUserID, "report.pdf", content).Return(nil, tc.err)

			resp := env.do(t, multipartPDF(t, "pdf", "report.pdf", content), cookie)
			assert.Equal(t, tc.status, resp.StatusCode)
			assert.Equal(t, tc.code, decodeError(t, resp).Error.Code)
		})
	}
}

func TestCurrentPDF(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.sessionCookie(t, "user")

	env.pdf.On("Current", testUserID).Return(nil, service.ErrNoDocument).Once()
	resp := env.do(t, httptest.NewRequest(http.MethodGet, "/api/pdf/current", nil), cookie)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "NO_PDF_LOADED", decodeError(t, resp).Error.Code)

	env.pdf.On("Current", testUserID).Return(&service.CurrentPDF{Filename: "a.pdf", Chunks: 3}, nil).Once()
	resp = env.do(t, httptest.NewRequest(http.MethodGet, "/api/pdf/current", nil), cookie)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var cur service.CurrentPDF
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&cur))
	assert.Equal(t, "a.pdf", cur.Filename)
	assert.Equal(t, 3, cur.Chunks)
}

func TestChatPDF(t *testing.T) {
	tests := []struct {
		name    string
		answer  string
		err     error
		status  int
		errCode string
	}{
		{name: "answer", answer: "42", status: http.StatusOK},
		{name: "no pdf", err: service.ErrNoDocument, status: http.StatusBadRequest, errCode: "NO_PDF_LOADED"},
		{name: "no message", err: service.ErrMessageRequired, status: http.StatusBadRequest, errCode: "MESSAGE_REQUIRED"},
		{name: "retrieval", err: service.ErrRetrievalFailed, status: http.StatusInternalServerError, errCode: "RETRIEVAL_FAILED"},
		{name: "completion", err: service.ErrCompletionFailed, status: http.StatusInternalServerError, errCode: "COMPLETION_FAILED"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			cookie := env.sessionCookie(t, "user")
			env.chat.On("AskPDF", mock.Anything, testUserID, "what?").Return(tt.answer, tt.err)

			resp := env.do(t, jsonRequest(http.MethodPost, "/api/pdf/chat", map[string]string{"message": "what?"}), cookie)
			assert.Equal(t, tt.status, resp.StatusCode)
			if tt.errCode != "" {
				assert.Equal(t, tt.errCode, decodeError(t, resp).Error.Code)
				return
			}
			var body chatResponse
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.Equal(t, "42", body.Response)
		})
	}
}

func TestWebSearchChat(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.sessionCookie(t, "user")
	env.chat.On("AskWeb", mock.Anything, testUserID, "news?").Return("today", nil)

	resp := env.do(t, jsonRequest(http.MethodPost, "/api/websearch/chat", map[string]string{"message": "news?"}), cookie)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body chatResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "today", body.Response)
}

func TestChatHistory(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.sessionCookie(t, "user")

	env.chat.On("History", mock.Anything, testUserID, "all").Return(nil, nil).Once()
	resp := env.do(t, httptest.NewRequest(http.MethodGet, "/api/chats/history", nil), cookie)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	raw, _ := io.ReadAll(resp.Body)
	assert.JSONEq(t, `{"chats":[]}`, string(raw))

	env.chat.On("History", mock.Anything, testUserID, "pdf_rag").
		Return([]model.ChatRecord{{ID: "c1", Type: model.ChatTypePDF}}, nil).Once()
	resp = env.do(t, httptest.NewRequest(http.MethodGet, "/api/chats/history?type=pdf_rag", nil), cookie)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var body chatsResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Len(t, body.Chats, 1)

	env.chat.On("History", mock.Anything, testUserID, "bogus").Return(nil, service.ErrInvalidChatType).Once()
	resp = env.do(t, httptest.NewRequest(http.MethodGet, "/api/chats/history?type=bogus", nil), cookie)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "INVALID_CHAT_TYPE", decodeError(t, resp).Error.Code)
}

func TestAdminSession(t *testing.T) {
	env := newTestEnv(t)
	env.auth.On("AdminLogin", "admin", "s3cret").Return(nil)
	env.auth.On("AdminLogin", "admin", "wrong").Return(service.ErrInvalidCredentials)

	resp := env.do(t, jsonRequest(http.MethodPost, "/api/admin/login", map[string]string{"username": "admin", "password": "wrong"}))
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = env.do(t, jsonRequest(http.MethodPost, "/api/admin/login", map[string]string{"username": "admin", "password": "s3cret"}))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var cookie *http.Cookie
	for _, ck := range resp.Cookies() {
		if ck.Name == "pdfchat_session" {
			cookie = ck
		}
	}
	require.NotNil(t, cookie)

	resp = env.do(t, httptest.NewRequest(http.MethodGet, "/api/admin/status", nil), cookie)
	var st adminStatusResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&st))
	assert.True(t, st.Authenticated)
	assert.Equal(t, "admin", st.Username)

	resp = env.do(t, httptest.NewRequest(http.MethodPost, "/api/admin/logout", nil), cookie)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = env.do(t, httptest.NewRequest(http.MethodGet, "/api/admin/status", nil), cookie)
	st = adminStatusResponse{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&st))
	assert.False(t, st.Authenticated)
}

func TestRequireAdmin(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, httptest.NewRequest(http.MethodGet, "/api/admin/users", nil))
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "ADMIN_REQUIRED", decodeError(t, resp).Error.Code)

	userCookie := env.sessionCookie(t, "user")
	resp = env.do(t, httptest.NewRequest(http.MethodGet, "/api/admin/users", nil), userCookie)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestAdminEndpoints(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.sessionCookie(t, "admin")

	env.admin.On("ListUsers", mock.Anything).Return([]model.User{{ID: testUserID, Username: "alice", PasswordHash: "x"}}, nil)
	env.admin.On("UserPDFs", mock.Anything, testUserID).Return([]service.AdminPDF{
		{PDFDocument: model.PDFDocument{ID: "p1"}, DownloadURL: "https://minio/p1"},
	}, nil)
	env.admin.On("UserChats", mock.Anything, testUserID).Return([]model.ChatRecord{{ID: "c1"}}, nil)

	resp := env.do(t, httptest.NewRequest(http.MethodGet, "/api/admin/users", nil), cookie)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	raw, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(raw), `"username":"alice"`)
	assert.NotContains(t, string(raw), "password")

	resp = env.do(t, httptest.NewRequest(http.MethodGet, "/api/admin/users/"+testUserID+"/pdfs", nil), cookie)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var pdfs pdfsResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&pdfs))
	require.Len(t, pdfs.PDFs, 1)
	assert.Equal(t, "https://minio/p1", pdfs.PDFs[0].DownloadURL)

	resp = env.do(t, httptest.NewRequest(http.MethodGet, "/api/admin/users/"+testUserID+"/chats", nil), cookie)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = env.do(t, httptest.NewRequest(http.MethodGet, "/api/admin/users/not-a-uuid/chats", nil), cookie)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "INVALID_ID", decodeError(t, resp).Error.Code)

	env.admin.AssertExpectations(t)
}

func TestErrorHandler(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler()})
	app.Use(middleware.RequestID())
	app.Get("/boom", func(c *fiber.Ctx) error { return errors.New("kaboom") })
	app.Get("/bad", func(c *fiber.Ctx) error { return fiber.ErrBadRequest })

	tests := []struct {
		req    *http.Request
		status int
		code   string
	}{
		{httptest.NewRequest(http.MethodGet, "/missing", nil), http.StatusNotFound, "NOT_FOUND"},
		{httptest.NewRequest(http.MethodPost, "/boom", nil), http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED"},
		{httptest.NewRequest(http.MethodGet, "/boom", nil), http.StatusInternalServerError, "INTERNAL_ERROR"},
		{httptest.NewRequest(http.MethodGet, "/bad", nil), http.StatusBadRequest, "BAD_REQUEST"},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			resp, err := app.Test(tt.req)
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)
			body := decodeError(t, resp)
			assert.Equal(t, tt.code, body.Error.Code)
			assert.Equal(t, resp.Header.Get(middleware.RequestIDHeader), body.RequestID)
		})
	}
}
