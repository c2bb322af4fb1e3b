package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/gul251/nutrimate-backend/internal/models"
	"github.com/gul251/nutrimate-backend/internal/services"
	"github.com/gul251/nutrimate-backend/pkg/utils"
)

// Auth error codes, one human-readable message each. No automatic retry.
const (
	AuthCodeEmailInUse      = "email-already-in-use"
	AuthCodeInvalidEmail    = "invalid-email"
	AuthCodeWeakPassword    = "weak-password"
	AuthCodeUserNotFound    = "user-not-found"
	AuthCodeWrongPassword   = "wrong-password"
	AuthCodeTooManyRequests = "too-many-requests"
	AuthCodeNetworkFailed   = "network-request-failed"
	AuthCodeUserDisabled    = "user-disabled"
)

// AuthErrorMessage maps an auth error code to the message shown to users.
func AuthErrorMessage(code string) string {
	switch code {
	case AuthCodeEmailInUse:
		return "This email is already registered. Please login instead."
	case AuthCodeInvalidEmail:
		return "Invalid email address format."
	case AuthCodeWeakPassword:
		return "Password is too weak. Use at least 6 characters."
	case AuthCodeUserNotFound:
		return "No account found with this email. Please sign up first."
	case AuthCodeWrongPassword:
		return "Incorrect password. Please try again."
	case AuthCodeTooManyRequests:
		return "Too many failed attempts. Please try again later."
	case AuthCodeNetworkFailed:
		return "Network error. Please check your internet connection."
	case AuthCodeUserDisabled:
		return "This account has been disabled. Contact support."
	default:
		return "An unexpected error occurred."
	}
}

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// ValidEmail reports whether the address has a plausible shape.
func ValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

const minPasswordLength = 6

type SignupRequest struct {
	Name      string   `json:"name"`
	Email     string   `json:"email"`
	Password  string   `json:"password"`
	Weight    float64  `json:"weight"`
	Goal      string   `json:"goal"`
	FoodTypes []string `json:"foodTypes"`
}

type SigninRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthResponse struct {
	Success bool                `json:"success"`
	Message string              `json:"message"`
	User    *models.UserProfile `json:"user,omitempty"`
	Token   string              `json:"token,omitempty"`
}

// Signup creates an identity and seeds its profile document. The profile
// write follows identity creation; if it fails the identity still exists.
func Signup(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if !ValidEmail(req.Email) {
		writeError(w, http.StatusBadRequest, AuthErrorMessage(AuthCodeInvalidEmail))
		return
	}
	if len(req.Password) < minPasswordLength {
		writeError(w, http.StatusBadRequest, AuthErrorMessage(AuthCodeWeakPassword))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// Check if email already exists
	_, err := services.FindUserByEmail(ctx, req.Email)
	if err == nil {
		writeError(w, http.StatusConflict, AuthErrorMessage(AuthCodeEmailInUse))
		return
	} else if !errors.Is(err, services.ErrProfileNotFound) {
		writeError(w, http.StatusInternalServerError, AuthErrorMessage(AuthCodeNetworkFailed))
		return
	}

	hashedPassword, err := utils.HashPassword(req.Password)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to hash password")
		return
	}

	uid := uuid.New().String()
	if err := services.CreateIdentity(ctx, uid, req.Email, hashedPassword); err != nil {
		// The unique email index catches signups that raced past the
		// lookup above.
		if errors.Is(err, services.ErrEmailTaken) {
			writeError(w, http.StatusConflict, AuthErrorMessage(AuthCodeEmailInUse))
			return
		}
		log.Printf("ERROR: failed to create identity: %v", err)
		writeError(w, http.StatusInternalServerError, AuthErrorMessage(AuthCodeNetworkFailed))
		return
	}

	if err := services.SeedProfile(ctx, uid, services.ProfileSeed{
		Name:      req.Name,
		Weight:    req.Weight,
		Goal:      req.Goal,
		FoodTypes: req.FoodTypes,
	}); err != nil {
		// Identity exists but the profile seed failed; two-step by contract.
		log.Printf("ERROR: identity %s created but profile seed failed: %v", uid, err)
		writeError(w, http.StatusInternalServerError, "Account created but profile could not be saved. Please try logging in.")
		return
	}

	token, err := services.CreateSession(uid)
	if err != nil {
		log.Printf("ERROR: failed to create session: %v", err)
		writeError(w, http.StatusInternalServerError, AuthErrorMessage(AuthCodeNetworkFailed))
		return
	}

	profile, err := services.GetUserProfile(ctx, uid)
	if err != nil {
		writeError(w, http.StatusInternalServerError, AuthErrorMessage(AuthCodeNetworkFailed))
		return
	}

	writeJSON(w, http.StatusCreated, AuthResponse{
		Success: true,
		Message: "Account created successfully",
		User:    profile,
		Token:   token,
	})
}

// Signin resolves the identity, stamps lastLogin, and issues a session.
func Signin(w http.ResponseWriter, r *http.Request) {
	var req SigninRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	if services.IsLoginThrottled(req.Email) {
		writeError(w, http.StatusTooManyRequests, AuthErrorMessage(AuthCodeTooManyRequests))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	profile, err := services.FindUserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, services.ErrProfileNotFound) {
			services.RecordFailedLogin(req.Email)
			writeError(w, http.StatusUnauthorized, AuthErrorMessage(AuthCodeUserNotFound))
			return
		}
		writeError(w, http.StatusInternalServerError, AuthErrorMessage(AuthCodeNetworkFailed))
		return
	}

	valid, err := utils.VerifyPassword(req.Password, profile.PasswordHash)
	if err != nil || !valid {
		services.RecordFailedLogin(req.Email)
		writeError(w, http.StatusUnauthorized, AuthErrorMessage(AuthCodeWrongPassword))
		return
	}

	if profile.Disabled {
		writeError(w, http.StatusForbidden, AuthErrorMessage(AuthCodeUserDisabled))
		return
	}

	services.ClearFailedLogins(req.Email)

	if err := services.UpdateLastLogin(ctx, profile.UID); err != nil {
		log.Printf("WARNING: failed to update last login for %s: %v", profile.UID, err)
	}

	token, err := services.CreateSession(profile.UID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, AuthErrorMessage(AuthCodeNetworkFailed))
		return
	}

	writeJSON(w, http.StatusOK, AuthResponse{
		Success: true,
		Message: "Login successful",
		User:    profile,
		Token:   token,
	})
}

// Signout clears the session.
func Signout(w http.ResponseWriter, r *http.Request) {
	token := extractBearerToken(r.Header.Get("Authorization"))
	if token != "" {
		if err := services.InvalidateSession(token); err != nil {
			log.Printf("WARNING: failed to invalidate session: %v", err)
		}
	}

	writeJSON(w, http.StatusOK, AuthResponse{
		Success: true,
		Message: "Logged out successfully",
	})
}

// Me returns the current identity's profile, or 401 when no session is
// present. This is the session-check used by pages on load.
func Me(w http.ResponseWriter, r *http.Request) {
	uid, ok := requireAuth(r)
	if !ok {
		writeUnauthenticated(w)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	profile, err := services.GetUserProfile(ctx, uid)
	if err != nil {
		if errors.Is(err, services.ErrProfileNotFound) {
			writeError(w, http.StatusNotFound, "No profile found")
			return
		}
		writeError(w, http.StatusInternalServerError, AuthErrorMessage(AuthCodeNetworkFailed))
		return
	}

	writeJSON(w, http.StatusOK, AuthResponse{
		Success: true,
		Message: "Authenticated",
		User:    profile,
	})
}
