package controllers

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Kariqs/storefront-api/logging"
	"github.com/Kariqs/storefront-api/middlewares"
	"github.com/Kariqs/storefront-api/models"
	"github.com/Kariqs/storefront-api/store"
	"github.com/Kariqs/storefront-api/utils"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const (
	bcryptCost = 10

	activationCodeBytes = 16
	resetCodeBytes      = 16
	defaultResetTTL     = time.Hour

	msgUserAlreadyExists     = "user already exists"
	msgFailedToHashPassword  = "failed to hash password"
	msgInvalidCredentials    = "invalid email or password"
	msgAccountNotActivated   = "Account not activated, check your email to activate your account."
	msgFailedToGenerateToken = "failed to generate token"
	msgUserCreated           = "User created successfully."
	msgUserCreatedVerify     = "User created successfully. Check your email to activate your account."
	msgInvalidActivationLink = "Invalid or expired activation link"
	msgActivationSuccess     = "Account has been activated successfully."
	msgResetLinkSent         = "If an account exists for this email, a password reset link is on its way."
	msgResetUnavailable      = "Password reset by email is not available."
	msgInvalidResetLink      = "Invalid or expired password reset link"
	msgPasswordReset         = "Password reset successful"
)

type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
	EmailTaken(ctx context.Context, email string) (bool, error)
	ActivateUser(ctx context.Context, tokenHash string) error
	SetPasswordResetToken(ctx context.Context, userID uint, tokenHash string, expiresAt time.Time) error
	ResetPassword(ctx context.Context, tokenHash, passwordHash string, now time.Time) error
}

// AccountMailer delivers verification and password reset links. *utils.Mailer
// implements it.
type AccountMailer interface {
	Enabled() bool
	SendEmail(ctx context.Context, emailTo, emailSubject, templateName string, data any) error
}

type AuthConfig struct {
	JWTSecret   string
	FrontendURL string
	StoreName   string
	ResetTTL    time.Duration
}

type AuthController struct {
	users  UserStore
	mailer AccountMailer
	cfg    AuthConfig
	now    func() time.Time
}

func NewAuthController(users UserStore, mailer AccountMailer, cfg AuthConfig) *AuthController {
	if cfg.ResetTTL <= 0 {
		cfg.ResetTTL = defaultResetTTL
	}
	cfg.FrontendURL = strings.TrimRight(cfg.FrontendURL, "/")
	return &AuthController{users: users, mailer: mailer, cfg: cfg, now: time.Now}
}

func (c *AuthController) mailEnabled() bool {
	return c.mailer != nil && c.mailer.Enabled()
}

func (c *AuthController) actionURL(path, token string) string {
	return c.cfg.FrontendURL + path + "?token=" + url.QueryEscape(token)
}

func (c *AuthController) sendAccountVerificationEmail(ctx context.Context, user *models.User, activationToken string) error {
	return c.mailer.SendEmail(ctx, user.Email, "Account Verification", utils.VerifyEmailTemplate, utils.AccountEmailData{
		StoreName:   c.cfg.StoreName,
		Name:        user.FullName,
		Message:     "Thank you for signing up! Click the button below to verify your account.",
		ActionURL:   c.actionURL("/auth/verify-email", activationToken),
		ActionLabel: "Verify account",
	})
}

func (c *AuthController) sendPasswordResetEmail(ctx context.Context, user *models.User, resetToken string) error {
	return c.mailer.SendEmail(ctx, user.Email, c.cfg.StoreName+" Password Reset", utils.ResetPasswordTemplate, utils.AccountEmailData{
		StoreName:   c.cfg.StoreName,
		Name:        user.FullName,
		Message:     "You requested a password reset. Click the button below to choose a new password.",
		ActionURL:   c.actionURL("/auth/reset-password", resetToken),
		ActionLabel: "Reset password",
	})
}

func hashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

func comparePasswords(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}

// Signup registers a customer account. Admins are promoted out of band.
func (c *AuthController) Signup(ctx *gin.Context) {
	var signUpData models.SignupData
	if err := ctx.ShouldBindJSON(&signUpData); err != nil {
		respondWithError(ctx, http.StatusBadRequest, msgInvalidInput, err)
		return
	}
	logger := logging.FromContext(ctx.Request.Context())

	exists, err := c.users.EmailTaken(ctx.Request.Context(), signUpData.Email)
	if err != nil {
		logger.Error("check user exists", zap.Error(err))
		sendErrorResponse(ctx, http.StatusInternalServerError, msgInternalServerError)
		return
	}
	if exists {
		sendErrorResponse(ctx, http.StatusConflict, msgUserAlreadyExists)
		return
	}

	hashedPassword, err := hashPassword(signUpData.Password)
	if err != nil {
		logger.Error("hash password", zap.Error(err))
		sendErrorResponse(ctx, http.StatusInternalServerError, msgFailedToHashPassword)
		return
	}

	user := models.User{
		FullName: signUpData.FullName,
		Email:    signUpData.Email,
		Phone:    signUpData.Phone,
		Password: hashedPassword,
		Role:     models.RoleUser,
	}

	// Without a mail transport no link could ever arrive, so the account starts
	// verified.
	var activationToken string
	if c.mailEnabled() {
		activationToken, err = utils.GenerateCode(activationCodeBytes)
		if err != nil {
			logger.Error("generate activation token", zap.Error(err))
			sendErrorResponse(ctx, http.StatusInternalServerError, msgInternalServerError)
			return
		}
		user.ActivationTokenHash = utils.HashToken(activationToken)
	} else {
		user.Verified = true
	}

	if err := c.users.CreateUser(ctx.Request.Context(), &user); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			sendErrorResponse(ctx, http.StatusConflict, msgUserAlreadyExists)
			return
		}
		logger.Error("create user", zap.Error(err))
		sendErrorResponse(ctx, http.StatusInternalServerError, msgInternalServerError)
		return
	}

	if !user.Verified {
		if err := c.sendAccountVerificationEmail(ctx.Request.Context(), &user, activationToken); err != nil {
			logger.Warn("send verification email", zap.Uint("user_id", user.ID), zap.Error(err))
		}
		sendJSONResponse(ctx, http.StatusCreated, gin.H{"message": msgUserCreatedVerify, "user": user})
		return
	}
	sendJSONResponse(ctx, http.StatusCreated, gin.H{"message": msgUserCreated, "user": user})
}

func (c *AuthController) Login(ctx *gin.Context) {
	var loginData models.LoginData
	if err := ctx.ShouldBindJSON(&loginData); err != nil {
		respondWithError(ctx, http.StatusBadRequest, msgInvalidInput, err)
		return
	}

	user, err := c.users.FindUserByEmail(ctx.Request.Context(), loginData.Email)
	if errors.Is(err, store.ErrNotFound) {
		sendErrorResponse(ctx, http.StatusUnauthorized, msgInvalidCredentials)
		return
	}
	if err != nil {
		logging.FromContext(ctx.Request.Context()).Error("find user", zap.Error(err))
		sendErrorResponse(ctx, http.StatusInternalServerError, msgInternalServerError)
		return
	}
	if err := comparePasswords(user.Password, loginData.Password); err != nil {
		sendErrorResponse(ctx, http.StatusUnauthorized, msgInvalidCredentials)
		return
	}

	if !user.Verified {
		sendErrorResponse(ctx, http.StatusForbidden, msgAccountNotActivated)
		return
	}

	token, err := middlewares.IssueToken(c.cfg.JWTSecret, user.ID, user.Email, user.Role, c.now())
	if err != nil {
		sendErrorResponse(ctx, http.StatusInternalServerError, msgFailedToGenerateToken)
		return
	}

	sendJSONResponse(ctx, http.StatusOK, gin.H{"token": token, "user": user})
}

// ActivateAccount consumes the emailed activation token.
func (c *AuthController) ActivateAccount(ctx *gin.Context) {
	activationToken := ctx.Param("activationToken")
	err := c.users.ActivateUser(ctx.Request.Context(), utils.HashToken(activationToken))
	if errors.Is(err, store.ErrNotFound) {
		sendErrorResponse(ctx, http.StatusBadRequest, msgInvalidActivationLink)
		return
	}
	if err != nil {
		logging.FromContext(ctx.Request.Context()).Error("activate account", zap.Error(err))
		sendErrorResponse(ctx, http.StatusInternalServerError, msgInternalServerError)
		return
	}
	sendJSONResponse(ctx, http.StatusOK, gin.H{"message": msgActivationSuccess})
}

// SendPasswordResetLink emails a single-use reset link. The reply is the same
// whether or not the address belongs to an account.
func (c *AuthController) SendPasswordResetLink(ctx *gin.Context) {
	var forgotPasswordData models.ForgotPasswordData
	if err := ctx.ShouldBindJSON(&forgotPasswordData); err != nil {
		respondWithError(ctx, http.StatusBadRequest, msgInvalidInput, err)
		return
	}
	if !c.mailEnabled() {
		sendErrorResponse(ctx, http.StatusServiceUnavailable, msgResetUnavailable)
		return
	}
	logger := logging.FromContext(ctx.Request.Context())

	user, err := c.users.FindUserByEmail(ctx.Request.Context(), forgotPasswordData.Email)
	if errors.Is(err, store.ErrNotFound) {
		sendJSONResponse(ctx, http.StatusOK, gin.H{"message": msgResetLinkSent})
		return
	}
	if err != nil {
		logger.Error("find user", zap.Error(err))
		sendErrorResponse(ctx, http.StatusInternalServerError, msgInternalServerError)
		return
	}

	resetToken, err := utils.GenerateCode(resetCodeBytes)
	if err != nil {
		logger.Error("generate reset token", zap.Error(err))
		sendErrorResponse(ctx, http.StatusInternalServerError, msgInternalServerError)
		return
	}
	expiresAt := c.now().UTC().Add(c.cfg.ResetTTL)
	if err := c.users.SetPasswordResetToken(ctx.Request.Context(), user.ID, utils.HashToken(resetToken), expiresAt); err != nil {
		logger.Error("save reset token", zap.Error(err))
		sendErrorResponse(ctx, http.StatusInternalServerError, msgInternalServerError)
		return
	}

	if err := c.sendPasswordResetEmail(ctx.Request.Context(), user, resetToken); err != nil {
		logger.Warn("send password reset email", zap.Uint("user_id", user.ID), zap.Error(err))
	}
	sendJSONResponse(ctx, http.StatusOK, gin.H{"message": msgResetLinkSent})
}

func (c *AuthController) ResetPassword(ctx *gin.Context) {
	var resetPasswordData models.ResetPasswordData
	if err := ctx.ShouldBindJSON(&resetPasswordData); err != nil {
		respondWithError(ctx, http.StatusBadRequest, msgInvalidInput, err)
		return
	}
	logger := logging.FromContext(ctx.Request.Context())

	hashedPassword, err := hashPassword(resetPasswordData.Password)
	if err != nil {
		logger.Error("hash password", zap.Error(err))
		sendErrorResponse(ctx, http.StatusInternalServerError, msgFailedToHashPassword)
		return
	}

	resetToken := ctx.Param("resetToken")
	err = c.users.ResetPassword(ctx.Request.Context(), utils.HashToken(resetToken), hashedPassword, c.now().UTC())
	if errors.Is(err, store.ErrNotFound) {
		sendErrorResponse(ctx, http.StatusBadRequest, msgInvalidResetLink)
		return
	}
	if err != nil {
		logger.Error("reset password", zap.Error(err))
		sendErrorResponse(ctx, http.StatusInternalServerError, msgInternalServerError)
		return
	}
	sendJSONResponse(ctx, http.StatusOK, gin.H{"message": msgPasswordReset})
}
