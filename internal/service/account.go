package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mohitgusain8671/VoiceNote/internal/apperr"
	"github.com/mohitgusain8671/VoiceNote/internal/model"
	"github.com/mohitgusain8671/VoiceNote/internal/store"
	"github.com/mohitgusain8671/VoiceNote/pkg/security"
	"github.com/mohitgusain8671/VoiceNote/pkg/validators"

	"go.uber.org/zap"
)

const (
	VerificationTTL = 12 * time.Hour
	SessionTTL      = 7 * 24 * time.Hour
	OTPTTL          = 10 * time.Minute
)

type Mailer interface {
	SendVerification(ctx context.Context, to, link string) error
	SendOTP(ctx context.Context, to, code string) error
}

type AccountService struct {
	store     store.Store
	mailer    Mailer
	signer    *security.Signer
	passwords *security.PasswordHasher
	publicURL string
	log       *zap.Logger
	now       func() time.Time
}

func NewAccountService(s store.Store, m Mailer, signer *security.Signer, passwords *security.PasswordHasher, publicURL string, log *zap.Logger) *AccountService {
	return &AccountService{
		store:     s,
		mailer:    m,
		signer:    signer,
		passwords: passwords,
		publicURL: strings.TrimRight(publicURL, "/"),
		log:       log,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

type RegisterInput struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
}

type LoginResult struct {
	Token string
	User  model.Profile
}

// Register creates an unverified account and mails the verification link.
// An unverified account with the same email is replaced. The cleanup, the
// inserts and the mail all succeed together or leave nothing behind.
func (a *AccountService) Register(ctx context.Context, in RegisterInput) (*model.Profile, error) {
	if strings.TrimSpace(in.FirstName) == "" || strings.TrimSpace(in.Email) == "" || in.Password == "" {
		return nil, apperr.Validation("First name, email and password are required")
	}

	firstName, err := validators.FirstNameValidator(in.FirstName)
	if err != nil {
		return nil, apperr.Validation(err.Error())
	}

	lastName, err := validators.LastNameValidator(in.LastName)
	if err != nil {
		return nil, apperr.Validation(err.Error())
	}

	email := validators.NormalizeEmail(in.Email)
	if err := validators.EmailValidator(email); err != nil {
		return nil, apperr.Validation(err.Error())
	}

	if err := validators.PasswordValidator(in.Password); err != nil {
		return nil, apperr.Validation(err.Error())
	}

	hash, err := a.passwords.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	userID, err := security.NewID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate user ID: %w", err)
	}

	tokenID, err := security.NewID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate token ID: %w", err)
	}

	user := &model.User{
		ID:           userID,
		Email:        email,
		PasswordHash: hash,
		FirstName:    firstName,
		LastName:     lastName,
	}

	err = a.store.Tx(ctx, func(ctx context.Context, tx store.Store) error {
		existing, err := tx.UserByEmail(ctx, email)
		switch {
		case err == nil && existing.Verified:
			return apperr.Conflict("User already exists and is verified")
		case err == nil:
			if err := tx.DeleteUserTokens(ctx, existing.ID); err != nil {
				return fmt.Errorf("failed to delete stale tokens: %w", err)
			}

			if err := tx.DeleteUser(ctx, existing.ID); err != nil {
				return fmt.Errorf("failed to delete unverified user: %w", err)
			}

			a.log.Debug("Replacing unverified account", zap.String("userID", existing.ID))
		case !errors.Is(err, store.ErrNotFound):
			return fmt.Errorf("failed to check if user is registered: %w", err)
		}

		if err := tx.CreateUser(ctx, user); err != nil {
			if errors.Is(err, store.ErrDuplicate) {
				return apperr.Conflict("User already exists")
			}

			return fmt.Errorf("failed to create user: %w", err)
		}

		now := a.now()

		value, err := a.signer.Issue(security.PurposeVerifyEmail, userID, email, VerificationTTL)
		if err != nil {
			return fmt.Errorf("failed to sign verification token: %w", err)
		}

		if err := tx.CreateToken(ctx, &model.Token{
			ID:        tokenID,
			UserID:    userID,
			Value:     value,
			Kind:      model.EmailVerification,
			ExpiresAt: now.Add(VerificationTTL),
		}); err != nil {
			return fmt.Errorf("failed to store verification token: %w", err)
		}

		link := a.publicURL + "/api/auth/verify-email/" + value
		if err := a.mailer.SendVerification(ctx, email, link); err != nil {
			return fmt.Errorf("failed to send verification email: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	a.log.Info("User registered", zap.String("userID", userID))

	p := user.Profile()
	return &p, nil
}

// VerifyEmail consumes a verification token and marks its owner verified
func (a *AccountService) VerifyEmail(ctx context.Context, value string) error {
	if value == "" {
		return apperr.InvalidToken("Verification token is required")
	}

	invalid := apperr.InvalidToken("Invalid or expired verification token")

	tok, err := a.store.UsableToken(ctx, model.EmailVerification, "", value, a.now())
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return invalid
		}

		return fmt.Errorf("failed to look up verification token: %w", err)
	}

	claims, err := a.signer.Parse(security.PurposeVerifyEmail, value)
	if err != nil || claims.UserID != tok.UserID {
		return invalid
	}

	err = a.store.Tx(ctx, func(ctx context.Context, tx store.Store) error {
		if err := tx.MarkUserVerified(ctx, tok.UserID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return invalid
			}

			return fmt.Errorf("failed to verify user: %w", err)
		}

		if err := tx.DeleteToken(ctx, tok.ID); err != nil && !errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("failed to delete verification token: %w", err)
		}

		return nil
	})
	if err != nil {
		return err
	}

	a.log.Info("User verified", zap.String("userID", tok.UserID))
	return nil
}

// Login checks the credentials of a verified user and issues a session token.
// Unknown users, unverified users and wrong passwords are indistinguishable.
func (a *AccountService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = validators.NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, apperr.Validation("Email and password are required")
	}

	user, err := a.store.UserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.InvalidCredentials()
		}

		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if !user.Verified {
		return nil, apperr.InvalidCredentials()
	}

	ok, err := a.passwords.Verify(password, user.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("failed to verify password: %w", err)
	}

	if !ok {
		return nil, apperr.InvalidCredentials()
	}

	token, err := a.signer.Issue(security.PurposeSession, user.ID, user.Email, SessionTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to sign session token: %w", err)
	}

	return &LoginResult{Token: token, User: user.Profile()}, nil
}

// ForgotPassword replaces any pending reset code of the user with a new one
// and mails it
func (a *AccountService) ForgotPassword(ctx context.Context, email string) error {
	email = validators.NormalizeEmail(email)
	if email == "" {
		return apperr.Validation("Email is required")
	}

	user, err := a.userByEmail(ctx, email)
	if err != nil {
		return err
	}

	code, err := security.GenerateOTP()
	if err != nil {
		return fmt.Errorf("failed to generate OTP: %w", err)
	}

	tokenID, err := security.NewID()
	if err != nil {
		return fmt.Errorf("failed to generate token ID: %w", err)
	}

	return a.store.Tx(ctx, func(ctx context.Context, tx store.Store) error {
		if err := tx.DeleteUserTokensOfKind(ctx, user.ID, model.ForgotPassword); err != nil {
			return fmt.Errorf("failed to delete previous reset codes: %w", err)
		}

		if err := tx.CreateToken(ctx, &model.Token{
			ID:        tokenID,
			UserID:    user.ID,
			Value:     code,
			Kind:      model.ForgotPassword,
			ExpiresAt: a.now().Add(OTPTTL),
		}); err != nil {
			return fmt.Errorf("failed to store reset code: %w", err)
		}

		if err := a.mailer.SendOTP(ctx, user.Email, code); err != nil {
			return fmt.Errorf("failed to send OTP email: %w", err)
		}

		return nil
	})
}

// VerifyOTP checks a reset code and returns the handle ResetPassword expects.
// The code stays usable for another 10 minutes.
func (a *AccountService) VerifyOTP(ctx context.Context, email, code string) (string, error) {
	email = validators.NormalizeEmail(email)
	code = strings.TrimSpace(code)
	if email == "" || code == "" {
		return "", apperr.Validation("Email and OTP are required")
	}

	user, err := a.userByEmail(ctx, email)
	if err != nil {
		return "", err
	}

	now := a.now()

	tok, err := a.store.UsableToken(ctx, model.ForgotPassword, user.ID, code, now)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", apperr.InvalidToken("Invalid or expired OTP")
		}

		return "", fmt.Errorf("failed to look up OTP: %w", err)
	}

	if err := a.store.ExtendToken(ctx, tok.ID, now.Add(OTPTTL)); err != nil {
		return "", fmt.Errorf("failed to extend OTP: %w", err)
	}

	return tok.ID, nil
}

// ResetPassword sets a new password using the handle from VerifyOTP and
// consumes it
func (a *AccountService) ResetPassword(ctx context.Context, handle, password string) error {
	if handle == "" || password == "" {
		return apperr.Validation("Reset token and new password are required")
	}

	if err := validators.PasswordValidator(password); err != nil {
		return apperr.Validation(err.Error())
	}

	invalid := apperr.InvalidToken("Invalid or expired reset token")

	tok, err := a.store.TokenByID(ctx, handle)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return invalid
		}

		return fmt.Errorf("failed to look up reset token: %w", err)
	}

	if tok.Kind != model.ForgotPassword || !tok.Usable(a.now()) {
		return invalid
	}

	hash, err := a.passwords.Hash(password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	err = a.store.Tx(ctx, func(ctx context.Context, tx store.Store) error {
		if err := tx.UpdatePassword(ctx, tok.UserID, hash); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return invalid
			}

			return fmt.Errorf("failed to update password: %w", err)
		}

		if err := tx.DeleteToken(ctx, tok.ID); err != nil {
			return fmt.Errorf("failed to delete reset token: %w", err)
		}

		return nil
	})
	if err != nil {
		return err
	}

	a.log.Info("Password reset", zap.String("userID", tok.UserID))
	return nil
}

func (a *AccountService) Profile(ctx context.Context, userID string) (*model.Profile, error) {
	user, err := a.store.UserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.NotFound("User not found")
		}

		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	p := user.Profile()
	return &p, nil
}

// Authorize resolves a session credential to the ID of a verified user
func (a *AccountService) Authorize(ctx context.Context, credential string) (string, error) {
	if credential == "" {
		return "", apperr.Unauthorized("Unauthorized, no token provided")
	}

	claims, err := a.signer.Parse(security.PurposeSession, credential)
	if err != nil {
		return "", apperr.Unauthorized("Unauthorized, invalid or expired token")
	}

	user, err := a.store.UserByID(ctx, claims.UserID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return "", fmt.Errorf("failed to check if user exists: %w", err)
	}

	if err != nil || !user.Verified {
		return "", apperr.Unauthorized("Unauthorized, user not found or not verified")
	}

	return user.ID, nil
}

func (a *AccountService) userByEmail(ctx context.Context, email string) (*model.User, error) {
	user, err := a.store.UserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.NotFound("User not found")
		}

		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	return user, nil
}
