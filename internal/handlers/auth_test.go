package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidEmail(t *testing.T) {
	valid := []string{"a@b.co", "user.name+tag@example.com", "x@sub.domain.org"}
	for _, email := range valid {
		assert.True(t, ValidEmail(email), email)
	}

	invalid := []string{"", "plain", "missing@tld", "@nouser.com", "spaces in@mail.com", "two@@at.com"}
	for _, email := range invalid {
		assert.False(t, ValidEmail(email), email)
	}
}

func TestAuthErrorMessages(t *testing.T) {
	tests := map[string]string{
		AuthCodeEmailInUse:      "already registered",
		AuthCodeInvalidEmail:    "Invalid email",
		AuthCodeWeakPassword:    "at least 6 characters",
		AuthCodeUserNotFound:    "sign up first",
		AuthCodeWrongPassword:   "Incorrect password",
		AuthCodeTooManyRequests: "Too many failed attempts",
		AuthCodeNetworkFailed:   "Network error",
		AuthCodeUserDisabled:    "disabled",
	}
	for code, fragment := range tests {
		assert.Contains(t, AuthErrorMessage(code), fragment, code)
	}
	assert.Equal(t, "An unexpected error occurred.", AuthErrorMessage("something-else"))
}

func TestExtractBearerToken(t *testing.T) {
	assert.Equal(t, "abc123", extractBearerToken("Bearer abc123"))
	assert.Equal(t, "abc123", extractBearerToken("bearer abc123"))
	assert.Equal(t, "", extractBearerToken(""))
	assert.Equal(t, "", extractBearerToken("Basic abc123"))
	assert.Equal(t, "", extractBearerToken("Bearer"))
}

func postJSON(t *testing.T, handler http.HandlerFunc, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	handler(w, req)
	return w
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestSignupRejectsInvalidEmail(t *testing.T) {
	w := postJSON(t, Signup, "/api/auth/signup", `{"email":"not-an-email","password":"longenough"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	body := decodeEnvelope(t, w)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, AuthErrorMessage(AuthCodeInvalidEmail), body["message"])
}

func TestSignupRejectsWeakPassword(t *testing.T) {
	w := postJSON(t, Signup, "/api/auth/signup", `{"email":"a@b.co","password":"12345"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	body := decodeEnvelope(t, w)
	assert.Equal(t, AuthErrorMessage(AuthCodeWeakPassword), body["message"])
}

func TestSignupRejectsMalformedBody(t *testing.T) {
	w := postJSON(t, Signup, "/api/auth/signup", `{not json`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSigninRequiresCredentials(t *testing.T) {
	for _, body := range []string{`{}`, `{"email":"a@b.co"}`, `{"password":"secret123"}`} {
		w := postJSON(t, Signin, "/api/auth/signin", body)
		assert.Equal(t, http.StatusBadRequest, w.Code, body)
	}
}
