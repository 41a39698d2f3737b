package v1_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"go-contact-backend/config"
	v1 "go-contact-backend/internal/delivery/http/v1"
	"go-contact-backend/internal/domain"
	"go-contact-backend/internal/usecase"
	"go-contact-backend/pkg/upload"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const allowedOrigin = "https://empirepharmacyplc.com"

func init() {
	gin.SetMode(gin.TestMode)
}

// stubMailer records every message and checks attachments are readable at send time.
type stubMailer struct {
	mu         sync.Mutex
	err        error
	sent       []*domain.OutboundMessage
	readable   []bool
	attachSeen [][]byte
}

func (m *stubMailer) Send(_ context.Context, msg *domain.OutboundMessage) (*domain.DeliveryReceipt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sent = append(m.sent, msg)
	for _, att := range msg.Attachments {
		data, err := os.ReadFile(att.StoredPath)
		m.readable = append(m.readable, err == nil)
		m.attachSeen = append(m.attachSeen, data)
	}
	if m.err != nil {
		return nil, m.err
	}
	return &domain.DeliveryReceipt{
		MessageID: "<test@example.com>",
		Envelope:  domain.Envelope{From: msg.Sender.Address, To: []string{msg.Recipient.Address}},
		Accepted:  []string{msg.Recipient.Address},
		Rejected:  []string{},
		Response:  "250 2.0.0 OK",
	}, nil
}

func (m *stubMailer) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

type testServer struct {
	router    *gin.Engine
	mailer    *stubMailer
	uploadDir string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	dir := t.TempDir()
	cfg := &config.Config{
		SMTPUsername:      "relay@example.com",
		MailSenderName:    "Front Desk",
		MailReceiver:      "owner@example.com",
		MailSubject:       config.DefaultMailSubject,
		UploadDir:         dir,
		UploadMaxBytes:    config.DefaultUploadMaxBytes,
		CORSAllowedOrigin: allowedOrigin,
	}
	mailer := &stubMailer{}
	uploads := upload.NewStore(cfg.UploadDir, cfg.UploadMaxBytes)
	contactUC := usecase.NewContactUsecase(mailer, uploads, validator.New(), usecase.ContactSettings{
		SenderName:    cfg.MailSenderName,
		SenderAddress: cfg.SMTPUsername,
		Recipient:     cfg.MailReceiver,
		Subject:       cfg.MailSubject,
	})

	return &testServer{
		router: v1.NewRouter(v1.RouterDeps{
			ContactUC: contactUC,
			HealthUC:  usecase.NewHealthUsecase(dir, true),
			Uploads:   uploads,
			Config:    cfg,
		}),
		mailer:    mailer,
		uploadDir: dir,
	}
}

func (s *testServer) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) uploadedFiles(t *testing.T) []os.DirEntry {
	t.Helper()
	entries, err := os.ReadDir(s.uploadDir)
	require.NoError(t, err)
	return entries
}

type apiResponse struct {
	Success   bool                    `json:"success"`
	Message   string                  `json:"message"`
	Resp      *domain.DeliveryReceipt `json:"resp"`
	Error     string                  `json:"error"`
	RequestID string                  `json:"request_id"`
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) apiResponse {
	t.Helper()
	var body apiResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return body
}

func multipartRequest(t *testing.T, fields map[string]string, filename string, content []byte) *http.Request {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, writer.WriteField(k, v))
	}
	if filename != "" {
		part, err := writer.CreateFormFile("image", filename)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/send", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

var validFields = map[string]string{
	"name":    "Alice",
	"email":   "alice@example.com",
	"message": "Please call me back",
}

func TestSendRejectsMissingFields(t *testing.T) {
	cases := map[string]map[string]string{
		"missing name":    {"email": "a@example.com", "message": "hi"},
		"missing email":   {"name": "Alice", "message": "hi"},
		"missing message": {"name": "Alice", "email": "a@example.com"},
		"empty name":      {"name": "", "email": "a@example.com", "message": "hi"},
		"nothing":         {},
	}

	for name, fields := range cases {
		t.Run(name, func(t *testing.T) {
			srv := newTestServer(t)

			rec := srv.do(multipartRequest(t, fields, "", nil))

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, "All fields are required.", decode(t, rec).Message)
			assert.Zero(t, srv.mailer.calls())
		})
	}
}

func TestSendWithoutAttachment(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(multipartRequest(t, validFields, "", nil))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decode(t, rec)
	assert.True(t, body.Success)
	assert.Equal(t, "Email sent successfully!", body.Message)
	require.NotNil(t, body.Resp)
	assert.Equal(t, "<test@example.com>", body.Resp.MessageID)
	assert.Equal(t, []string{"owner@example.com"}, body.Resp.Accepted)
	assert.NotEmpty(t, body.RequestID)

	require.Equal(t, 1, srv.mailer.calls())
	msg := srv.mailer.sent[0]
	assert.Empty(t, msg.Attachments)
	assert.Equal(t, "owner@example.com", msg.Recipient.Address)
	assert.Equal(t, "relay@example.com", msg.Sender.Address)
	assert.Contains(t, msg.BodyHTML, "Please call me back")
}

func TestSendAcceptsURLEncodedAndJSON(t *testing.T) {
	t.Run("urlencoded", func(t *testing.T) {
		srv := newTestServer(t)
		form := url.Values{}
		for k, v := range validFields {
			form.Set(k, v)
		}
		req := httptest.NewRequest(http.MethodPost, "/send", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

		rec := srv.do(req)
		assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Equal(t, 1, srv.mailer.calls())
	})

	t.Run("json", func(t *testing.T) {
		srv := newTestServer(t)
		payload, err := json.Marshal(validFields)
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodPost, "/send", bytes.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")

		rec := srv.do(req)
		assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Equal(t, 1, srv.mailer.calls())
	})
}

func TestSendWithAttachmentDeletesFile(t *testing.T) {
	srv := newTestServer(t)
	content := []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 'J', 'F', 'I', 'F'}

	rec := srv.do(multipartRequest(t, validFields, "photo.jpg", content))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.Equal(t, 1, srv.mailer.calls())

	msg := srv.mailer.sent[0]
	require.Len(t, msg.Attachments, 1)
	att := msg.Attachments[0]
	assert.Equal(t, ".jpg", filepath.Ext(att.Filename))
	assert.Equal(t, "photo.jpg", att.OriginalName)
	assert.Equal(t, srv.uploadDir, filepath.Dir(att.StoredPath))
	assert.Equal(t, []bool{true}, srv.mailer.readable, "file must exist while sending")
	assert.Equal(t, content, srv.mailer.attachSeen[0])

	_, err := os.Stat(att.StoredPath)
	assert.True(t, os.IsNotExist(err), "uploaded file must be gone after the response")
	assert.Empty(t, srv.uploadedFiles(t))
}

func TestSendTransportFailure(t *testing.T) {
	srv := newTestServer(t)
	srv.mailer.err = errors.New("Invalid login: 535-5.7.8 Username and Password not accepted")

	rec := srv.do(multipartRequest(t, validFields, "doc.pdf", []byte("%PDF-1.4 test")))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decode(t, rec)
	assert.False(t, body.Success)
	assert.Equal(t, "Error sending email", body.Message)
	assert.Equal(t, "Invalid login: 535-5.7.8 Username and Password not accepted", body.Error)
	assert.Equal(t, 1, srv.mailer.calls(), "no retries")
	assert.Empty(t, srv.uploadedFiles(t), "attachment is removed on failure too")
}

func TestSendValidationFailureRemovesUpload(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(multipartRequest(t, map[string]string{"name": "Alice"}, "photo.png", []byte("not really a png")))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Zero(t, srv.mailer.calls())
	assert.Empty(t, srv.uploadedFiles(t))
}

func TestSendRejectsOversizedFile(t *testing.T) {
	sizes := map[string]int{
		"just over the limit": config.DefaultUploadMaxBytes + 1,
		"far over the limit":  config.DefaultUploadMaxBytes + 2<<20,
	}

	for name, size := range sizes {
		t.Run(name, func(t *testing.T) {
			srv := newTestServer(t)

			rec := srv.do(multipartRequest(t, validFields, "huge.png", bytes.Repeat([]byte{0x42}, size)))

			assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
			assert.Equal(t, "File too large", decode(t, rec).Message)
			assert.Zero(t, srv.mailer.calls(), "handler must not run")
			assert.Empty(t, srv.uploadedFiles(t))
		})
	}
}

func TestSendAcceptsFileAtLimit(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(multipartRequest(t, validFields, "max.bin", bytes.Repeat([]byte{0x01}, config.DefaultUploadMaxBytes)))

	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, 1, srv.mailer.calls())
}

func TestSendRejectsMultipleFiles(t *testing.T) {
	srv := newTestServer(t)

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	for k, v := range validFields {
		require.NoError(t, writer.WriteField(k, v))
	}
	for _, name := range []string{"a.png", "b.png"} {
		part, err := writer.CreateFormFile("image", name)
		require.NoError(t, err)
		_, err = part.Write([]byte("data"))
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())
	req := httptest.NewRequest(http.MethodPost, "/send", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	rec := srv.do(req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Zero(t, srv.mailer.calls())
	assert.Empty(t, srv.uploadedFiles(t))
}

func TestCORS(t *testing.T) {
	t.Run("preflight from allowed origin", func(t *testing.T) {
		srv := newTestServer(t)
		req := httptest.NewRequest(http.MethodOptions, "/send", nil)
		req.Header.Set("Origin", allowedOrigin)
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)

		rec := srv.do(req)

		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, allowedOrigin, rec.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
		assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), http.MethodPost)
	})

	t.Run("simple request from allowed origin", func(t *testing.T) {
		srv := newTestServer(t)
		req := multipartRequest(t, validFields, "", nil)
		req.Header.Set("Origin", allowedOrigin)

		rec := srv.do(req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, allowedOrigin, rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("other origin refused", func(t *testing.T) {
		srv := newTestServer(t)
		req := multipartRequest(t, validFields, "", nil)
		req.Header.Set("Origin", "https://attacker.example")

		rec := srv.do(req)

		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
		assert.Zero(t, srv.mailer.calls())
	})
}

func TestStaticUploadsAreServed(t *testing.T) {
	srv := newTestServer(t)
	require.NoError(t, os.WriteFile(filepath.Join(srv.uploadDir, "1700000000000.txt"), []byte("kept file"), 0o644))

	rec := srv.do(httptest.NewRequest(http.MethodGet, "/1700000000000.txt", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "kept file", rec.Body.String())
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))

	rec = srv.do(httptest.NewRequest(http.MethodGet, "/missing.png", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = srv.do(httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code, "no directory listing")
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Message string            `json:"message"`
		Resp    map[string]string `json:"resp"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "System operational", body.Message)
	assert.Equal(t, "ok", body.Resp["uploads"])
	assert.Equal(t, "configured", body.Resp["mail"])
}

func TestSendEmptyJSONBody(t *testing.T) {
	srv := newTestServer(t)
	req := httptest.NewRequest(http.MethodPost, "/send", strings.NewReader(""))
	req.Header.Set("Content-Type", "application/json")

	rec := srv.do(req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "All fields are required.", decode(t, rec).Message)
	assert.Zero(t, srv.mailer.calls())
}

func TestContentSecurityPolicy(t *testing.T) {
	srv := newTestServer(t)
	require.NoError(t, os.WriteFile(filepath.Join(srv.uploadDir, "1700000000000.html"), []byte("<script>alert(1)</script>"), 0o644))

	rec := srv.do(httptest.NewRequest(http.MethodGet, "/swagger/index.html", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	docsPolicy := rec.Header().Get("Content-Security-Policy")
	assert.Contains(t, docsPolicy, "script-src 'self'")
	assert.Contains(t, docsPolicy, "style-src 'self' 'unsafe-inline'")
	assert.NotContains(t, docsPolicy, "default-src 'none'")

	rec = srv.do(httptest.NewRequest(http.MethodGet, "/health", nil))
	apiPolicy := rec.Header().Get("Content-Security-Policy")
	assert.Contains(t, apiPolicy, "default-src 'self'")
	assert.Contains(t, apiPolicy, "frame-ancestors 'none'")

	rec = srv.do(httptest.NewRequest(http.MethodGet, "/1700000000000.html", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Header().Get("Content-Security-Policy"), "default-src 'none'"),
		"uploaded files get the locked-down policy")
}
