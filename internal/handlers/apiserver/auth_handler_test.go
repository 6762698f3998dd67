package apiserver

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"friendly/internal/config"
	"friendly/internal/models"
	"friendly/internal/services"
)

type fakeAuthService struct {
	signupInput services.SignupInput
	signupPhoto *services.PhotoUpload
	user        *models.User
	token       string
	csrfToken   string
	err         error
}

func (f *fakeAuthService) Signup(ctx context.Context, input services.SignupInput, photo *services.PhotoUpload) (*models.User, error) {
	f.signupInput = input
	f.signupPhoto = photo
	return f.user, f.err
}

func (f *fakeAuthService) Login(ctx context.Context, username, password string) (string, string, *models.User, error) {
	if f.err != nil {
		return "", "", nil, f.err
	}
	return f.token, f.csrfToken, f.user, nil
}

func (f *fakeAuthService) Logout(ctx context.Context, jti string, expiresAt time.Time) error {
	return f.err
}

func signupForm(t *testing.T, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	for key, value := range fields {
		require.NoError(t, writer.WriteField(key, value))
	}
	require.NoError(t, writer.Close())
	return &body, writer.FormDataContentType()
}

func validSignupFields() map[string]string {
	return map[string]string{
		"username":     "alice",
		"email":        "alice@example.com",
		"password":     "hunter22",
		"firstName":    "Alice",
		"lastName":     "Smith",
		"hobbies":      "hiking",
		"interests":    "maps",
		"zipcode":      "10001",
		"friendRadius": "10",
	}
}

func TestRegisterHandler(t *testing.T) {
	svc := &fakeAuthService{user: &models.User{Username: "alice"}}
	h := NewAuthHandler(svc, config.StorageConfig{MaxFileSizeMB: 10})

	body, contentType := signupForm(t, validSignupFields())
	req := httptest.NewRequest(http.MethodPost, "/auth/register", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	h.Register(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "alice", svc.signupInput.Username)
	assert.Equal(t, 10, svc.signupInput.FriendRadius)
	assert.Nil(t, svc.signupPhoto, "no photo part was sent")
}

func TestRegisterHandlerWithImage(t *testing.T) {
	svc := &fakeAuthService{user: &models.User{Username: "alice"}}
	h := NewAuthHandler(svc, config.StorageConfig{MaxFileSizeMB: 10})

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	for key, value := range validSignupFields() {
		require.NoError(t, writer.WriteField(key, value))
	}
	part, err := writer.CreateFormFile("image", "me.png")
	require.NoError(t, err)
	_, err = part.Write([]byte("fake png bytes"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/auth/register", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	rec := httptest.NewRecorder()
	h.Register(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	require.NotNil(t, svc.signupPhoto)
	assert.Equal(t, "me.png", svc.signupPhoto.FileName)
	assert.Equal(t, int64(len("fake png bytes")), svc.signupPhoto.Size)
}

func TestRegisterHandlerRejectsBadRadius(t *testing.T) {
	h := NewAuthHandler(&fakeAuthService{}, config.StorageConfig{})

	fields := validSignupFields()
	fields["friendRadius"] = "ten"
	body, contentType := signupForm(t, fields)
	req := httptest.NewRequest(http.MethodPost, "/auth/register", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	h.Register(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRegisterHandlerMapsServiceErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation failure", services.ErrInvalidInput, http.StatusBadRequest},
		{"duplicate user", services.ErrUserAlreadyExists, http.StatusConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewAuthHandler(&fakeAuthService{err: tt.err}, config.StorageConfig{})
			body, contentType := signupForm(t, validSignupFields())
			req := httptest.NewRequest(http.MethodPost, "/auth/register", body)
			req.Header.Set("Content-Type", contentType)
			rec := httptest.NewRecorder()
			h.Register(rec, req)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestLoginHandler(t *testing.T) {
	svc := &fakeAuthService{
		user:      &models.User{Username: "alice"},
		token:     "jwt-token",
		csrfToken: "csrf-token",
	}
	h := NewAuthHandler(svc, config.StorageConfig{})

	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"username":"alice","password":"hunter22"}`))
	rec := httptest.NewRecorder()
	h.Login(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp LoginResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "jwt-token", resp.Token)
	assert.Equal(t, "csrf-token", resp.CSRFToken)
	assert.Equal(t, "alice", resp.User.Username)
}

func TestLoginHandlerBadCredentials(t *testing.T) {
	h := NewAuthHandler(&fakeAuthService{err: services.ErrInvalidCredentials}, config.StorageConfig{})

	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"username":"alice","password":"wrong"}`))
	rec := httptest.NewRecorder()
	h.Login(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLoginHandlerRequiresFields(t *testing.T) {
	h := NewAuthHandler(&fakeAuthService{}, config.StorageConfig{})

	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"username":"alice"}`))
	rec := httptest.NewRecorder()
	h.Login(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
