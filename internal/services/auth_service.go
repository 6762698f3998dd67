package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"regexp"
	"time"

	"gorm.io/gorm"

	"friendly/internal/apptypes"
	"friendly/internal/auth"
	"friendly/internal/config"
	"friendly/internal/models"
	appRedis "friendly/internal/redis"
	"friendly/internal/storage"
)

var (
	zipcodePattern = regexp.MustCompile(`^[0-9]{5}$`)
	emailPattern   = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
)

// SignupInput carries the profile fields collected at registration.
type SignupInput struct {
	Username     string
	Email        string
	Password     string
	FirstName    string
	LastName     string
	Hobbies      string
	Interests    string
	Zipcode      string
	FriendRadius int
}

// PhotoUpload carries an optional profile photo from the signup form.
type PhotoUpload struct {
	Reader   io.Reader
	Size     int64
	FileName string
	MimeType string
}

// AuthService defines the interface for signup and session handling.
type AuthService interface {
	// Signup validates the input, stores the new user, and uploads the
	// optional profile photo. A failed photo upload does not fail the
	// signup; the account falls back to the placeholder image.
	Signup(ctx context.Context, input SignupInput, photo *PhotoUpload) (*models.User, error)
	// Login verifies credentials and returns a session token plus the
	// CSRF token bound to the session.
	Login(ctx context.Context, username, password string) (token, csrfToken string, user *models.User, err error)
	// Logout revokes the session token by blacklisting its JTI until the
	// token would have expired anyway.
	Logout(ctx context.Context, jti string, expiresAt time.Time) error
}

type authService struct {
	userRepo  storage.UserRepository
	fileStore apptypes.StorageService
	blacklist auth.TokenBlacklist
	csrfStore appRedis.CSRFStore
	cfg       config.AuthConfig
}

// NewAuthService creates a new AuthService instance.
func NewAuthService(userRepo storage.UserRepository, fileStore apptypes.StorageService, blacklist auth.TokenBlacklist, csrfStore appRedis.CSRFStore, cfg config.AuthConfig) AuthService {
	return &authService{
		userRepo:  userRepo,
		fileStore: fileStore,
		blacklist: blacklist,
		csrfStore: csrfStore,
		cfg:       cfg,
	}
}

func validateSignup(input SignupInput) error {
	if l := len(input.Username); l < 1 || l > 30 {
		return fmt.Errorf("%w: username must be 1-30 characters", ErrInvalidInput)
	}
	if l := len(input.Email); l < 3 || l > 50 || !emailPattern.MatchString(input.Email) {
		return fmt.Errorf("%w: email is not valid", ErrInvalidInput)
	}
	if l := len(input.Password); l < 6 || l > 50 {
		return fmt.Errorf("%w: password must be 6-50 characters", ErrInvalidInput)
	}
	if l := len(input.FirstName); l < 1 || l > 50 {
		return fmt.Errorf("%w: first name must be 1-50 characters", ErrInvalidInput)
	}
	if l := len(input.LastName); l < 1 || l > 30 {
		return fmt.Errorf("%w: last name must be 1-30 characters", ErrInvalidInput)
	}
	if !zipcodePattern.MatchString(input.Zipcode) {
		return fmt.Errorf("%w: zipcode must be exactly 5 digits", ErrInvalidInput)
	}
	if input.FriendRadius < 1 || input.FriendRadius > 50 {
		return fmt.Errorf("%w: friend radius must be between 1 and 50", ErrInvalidInput)
	}
	return nil
}

// Signup handles new-user registration.
func (s *authService) Signup(ctx context.Context, input SignupInput, photo *PhotoUpload) (*models.User, error) {
	if err := validateSignup(input); err != nil {
		return nil, err
	}

	// Username and email must both be free.
	if _, err := s.userRepo.GetByUsername(ctx, input.Username); err == nil {
		return nil, ErrUserAlreadyExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}
	if _, err := s.userRepo.GetByEmail(ctx, input.Email); err == nil {
		return nil, ErrUserAlreadyExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	hashedPassword, err := auth.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	imageURL := models.DefaultImageURL
	if photo != nil {
		info, err := s.fileStore.UploadFile(ctx, photo.Reader, photo.Size, input.Username, photo.FileName, photo.MimeType)
		if err != nil {
			// The account is still created; the photo can be re-uploaded.
			log.Printf("Profile photo upload failed for %s, using placeholder: %v", input.Username, err)
		} else {
			imageURL = info.URL
		}
	}

	newUser := &models.User{
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: hashedPassword,
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		Hobbies:      input.Hobbies,
		Interests:    input.Interests,
		Zipcode:      input.Zipcode,
		FriendRadius: input.FriendRadius,
		ImageURL:     imageURL,
	}

	if err := s.userRepo.Create(ctx, newUser); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return newUser, nil
}

// Login handles credential verification and session issuance.
func (s *authService) Login(ctx context.Context, username, password string) (string, string, *models.User, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", "", nil, ErrInvalidCredentials
	} else if err != nil {
		return "", "", nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if !auth.CheckPasswordHash(password, user.PasswordHash) {
		return "", "", nil, ErrInvalidCredentials
	}

	token, err := auth.GenerateToken(user.Username, s.cfg)
	if err != nil {
		return "", "", nil, fmt.Errorf("failed to generate token: %w", err)
	}

	csrfToken, err := s.csrfStore.Issue(ctx, user.Username, s.cfg.JWTExpiry)
	if err != nil {
		return "", "", nil, fmt.Errorf("failed to issue CSRF token: %w", err)
	}

	return token, csrfToken, user, nil
}

// Logout blacklists the session token's JTI.
func (s *authService) Logout(ctx context.Context, jti string, expiresAt time.Time) error {
	if jti == "" {
		return fmt.Errorf("%w: token has no ID", ErrInvalidInput)
	}
	return s.blacklist.Add(ctx, jti, expiresAt)
}
