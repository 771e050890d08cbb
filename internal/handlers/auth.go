package handlers

import (
	"context"
	"encoding/base64"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/pquerna/otp/totp"
	qrcode "github.com/skip2/go-qrcode"

	"pressroom/internal/middleware"
	"pressroom/internal/models"
)

// totpIssuer is the name shown in authenticator apps.
const totpIssuer = "Pressroom"

// UserStore is the subset of the user store used by handlers.
type UserStore interface {
	FindByEmail(email string) (*models.User, error)
	FindByID(id uuid.UUID) (*models.User, error)
	Create(name, email, password string, role models.Role) (*models.User, error)
	SetTOTPSecret(userID uuid.UUID, secret string) error
	EnableTOTP(userID uuid.UUID) error
	CheckPassword(user *models.User, password string) bool
}

// TokenService issues and revokes bearer tokens.
type TokenService interface {
	Issue(user *models.User) (string, error)
	Revoke(ctx context.Context, raw string) error
}

// Auth groups the registration, login, logout, and 2FA handlers.
type Auth struct {
	users  UserStore
	tokens TokenService
}

// NewAuth creates a new Auth handler group.
func NewAuth(users UserStore, tokens TokenService) *Auth {
	return &Auth{users: users, tokens: tokens}
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register handles POST /users/register. Self-service accounts are always
// readers; admins are provisioned by the seed or by operators.
func (a *Auth) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	if req.Name == "" || req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Name, email and password are required")
		return
	}

	existing, err := a.users.FindByEmail(req.Email)
	if err != nil {
		slog.Error("register lookup failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to register user")
		return
	}
	if existing != nil {
		writeError(w, http.StatusConflict, "Email already registered")
		return
	}

	user, err := a.users.Create(req.Name, req.Email, req.Password, models.RoleReader)
	if err != nil {
		slog.Error("register failed", "error", err, "email", req.Email)
		writeError(w, http.StatusInternalServerError, "Failed to register user")
		return
	}

	writeJSON(w, http.StatusCreated, user)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Code     string `json:"code"`
}

type loginResponse struct {
	AccessToken string      `json:"access_token"`
	UserID      uuid.UUID   `json:"user_id"`
	Name        string      `json:"name"`
	Role        models.Role `json:"role"`
}

// Login handles POST /users/login. When the account has two-factor enabled
// the one-time code travels in the same request.
func (a *Auth) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := a.users.FindByEmail(req.Email)
	if err != nil {
		slog.Error("login lookup failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to log in")
		return
	}
	if user == nil || !a.users.CheckPassword(user, req.Password) {
		writeError(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	if user.TOTPEnabled {
		if user.TOTPSecret == nil || !totp.Validate(req.Code, *user.TOTPSecret) {
			writeError(w, http.StatusUnauthorized, "Invalid two-factor code")
			return
		}
	}

	accessToken, err := a.tokens.Issue(user)
	if err != nil {
		slog.Error("token issue failed", "error", err, "user_id", user.ID)
		writeError(w, http.StatusInternalServerError, "Failed to log in")
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{
		AccessToken: accessToken,
		UserID:      user.ID,
		Name:        user.Name,
		Role:        user.Role,
	})
}

// Logout handles POST /users/logout. The presented token goes on the
// revocation list for the rest of its lifetime.
func (a *Auth) Logout(w http.ResponseWriter, r *http.Request) {
	raw := rawBearerToken(r)
	if raw == "" {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	if err := a.tokens.Revoke(r.Context(), raw); err != nil {
		slog.Error("token revoke failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to log out")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Logged out successfully"})
}

type twoFASetupResponse struct {
	Secret     string `json:"secret"`
	OTPAuthURL string `json:"otpauth_url"`
	QRPNG      string `json:"qr_png"`
}

// TwoFASetup handles POST /users/2fa/setup. Generates and stores a fresh
// TOTP secret and returns it with a QR code for authenticator apps. The
// secret stays pending until the first valid code arrives at TwoFAVerify.
func (a *Auth) TwoFASetup(w http.ResponseWriter, r *http.Request) {
	identity := middleware.IdentityFromCtx(r.Context())
	if identity == nil {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	user, err := a.users.FindByID(identity.UserID)
	if err != nil || user == nil {
		slog.Error("user lookup for 2fa failed", "error", err, "user_id", identity.UserID)
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      totpIssuer,
		AccountName: user.Email,
	})
	if err != nil {
		slog.Error("totp generate failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to set up two-factor authentication")
		return
	}

	if err := a.users.SetTOTPSecret(user.ID, key.Secret()); err != nil {
		slog.Error("save totp secret failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to set up two-factor authentication")
		return
	}

	qrPNG, err := qrcode.Encode(key.URL(), qrcode.Medium, 256)
	if err != nil {
		slog.Error("qr code generation failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to set up two-factor authentication")
		return
	}

	writeJSON(w, http.StatusOK, twoFASetupResponse{
		Secret:     key.Secret(),
		OTPAuthURL: key.URL(),
		QRPNG:      base64.StdEncoding.EncodeToString(qrPNG),
	})
}

type twoFAVerifyRequest struct {
	Code string `json:"code"`
}

// TwoFAVerify handles POST /users/2fa/verify. The first valid code turns
// two-factor on for the account.
func (a *Auth) TwoFAVerify(w http.ResponseWriter, r *http.Request) {
	identity := middleware.IdentityFromCtx(r.Context())
	if identity == nil {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req twoFAVerifyRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := a.users.FindByID(identity.UserID)
	if err != nil || user == nil {
		slog.Error("user lookup for 2fa failed", "error", err, "user_id", identity.UserID)
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	if user.TOTPSecret == nil {
		writeError(w, http.StatusBadRequest, "Two-factor setup has not been started")
		return
	}

	if !totp.Validate(req.Code, *user.TOTPSecret) {
		writeError(w, http.StatusUnauthorized, "Invalid two-factor code")
		return
	}

	if err := a.users.EnableTOTP(user.ID); err != nil {
		slog.Error("enable totp failed", "error", err, "user_id", user.ID)
		writeError(w, http.StatusInternalServerError, "Failed to enable two-factor authentication")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Two-factor authentication enabled"})
}

// rawBearerToken extracts the raw credential from the Authorization header.
func rawBearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if len(header) > 7 && strings.EqualFold(header[:7], "Bearer ") {
		return header[7:]
	}
	return ""
}
