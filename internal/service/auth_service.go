package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"vyam/fitness-app/internal/domain"
	"vyam/fitness-app/internal/repository"
)

// MinPasswordLength is the shortest password accepted at sign-up.
const MinPasswordLength = 6

var (
	ErrUserAlreadyExists    = errors.New("user with this email already exists")
	ErrAuthenticationFailed = errors.New("authentication failed: invalid email or password")
	ErrInvalidCredentials   = errors.New("invalid email or password format")
	ErrHashingFailed        = errors.New("failed to hash password")
	ErrTokenGeneration      = errors.New("failed to generate authentication token")
	ErrInvalidToken         = errors.New("invalid or expired token")
	ErrUserNotFound         = errors.New("user not found")
)

// AuthEventType tells listeners whether a user signed in or out.
type AuthEventType string

const (
	AuthSignedIn  AuthEventType = "signed_in"
	AuthSignedOut AuthEventType = "signed_out"
)

// AuthEvent is delivered to OnAuthStateChanged listeners.
type AuthEvent struct {
	Type   AuthEventType
	UserID string
}

// Claims is the JWT payload issued at sign-in.
type Claims struct {
	UserID string `json:"uid"`
	jwt.RegisteredClaims
}

type AuthService interface {
	SignUp(ctx context.Context, email, password string) (*domain.User, error)
	SignIn(ctx context.Context, email, password string) (token string, user *domain.User, err error)
	SignOut(ctx context.Context, token string) error
	CurrentUser(ctx context.Context, userID string) (*domain.User, error)
	ValidateToken(token string) (*Claims, error)
	// OnAuthStateChanged registers listener and returns a function removing it.
	OnAuthStateChanged(listener func(AuthEvent)) func()
}

// authService implements the AuthService interface.
type authService struct {
	userRepo      repository.UserRepository
	jwtSecret     string
	jwtExpiration time.Duration
	logger        *zap.Logger
	now           func() time.Time

	mu         sync.Mutex
	revoked    map[string]time.Time // jti -> token expiry
	listeners  map[int]func(AuthEvent)
	nextListen int
}

// NewAuthService creates a new instance of authService.
func NewAuthService(userRepo repository.UserRepository, jwtSecret string, jwtExpiration time.Duration, logger *zap.Logger) AuthService {
	if jwtSecret == "" {
		panic("JWT secret cannot be empty")
	}
	if jwtExpiration <= 0 {
		jwtExpiration = time.Hour
	}
	return &authService{
		userRepo:      userRepo,
		jwtSecret:     jwtSecret,
		jwtExpiration: jwtExpiration,
		logger:        logger,
		now:           time.Now,
		revoked:       make(map[string]time.Time),
		listeners:     make(map[int]func(AuthEvent)),
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// SignUp registers a new account. The returned user carries no password hash.
func (s *authService) SignUp(ctx context.Context, email, password string) (*domain.User, error) {
	email = normalizeEmail(email)
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, fmt.Errorf("%w: malformed email", ErrInvalidCredentials)
	}
	if len(password) < MinPasswordLength {
		return nil, fmt.Errorf("%w: password must be at least %d characters", ErrInvalidCredentials, MinPasswordLength)
	}

	_, err := s.userRepo.GetByEmail(ctx, email)
	if err == nil {
		return nil, ErrUserAlreadyExists
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, ErrHashingFailed
	}

	user := &domain.User{
		Email:        email,
		PasswordHash: string(hashedPassword),
		Favorites:    []string{},
	}
	userID, err := s.userRepo.Create(ctx, user)
	if err != nil {
		// Lost a race with a concurrent sign-up; the unique index caught it.
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrUserAlreadyExists
		}
		return nil, err
	}
	user.ID = userID
	user.PasswordHash = ""

	s.logger.Info("user signed up", zap.String("userId", userID.Hex()))
	return user, nil
}

// SignIn checks the credentials and issues a signed token.
func (s *authService) SignIn(ctx context.Context, email, password string) (string, *domain.User, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return "", nil, ErrInvalidCredentials
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", nil, ErrAuthenticationFailed
		}
		return "", nil, err
	}

	if err = bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", nil, ErrAuthenticationFailed
	}

	token, err := s.generateJWT(user)
	if err != nil {
		s.logger.Error("failed to sign token", zap.Error(err))
		return "", nil, ErrTokenGeneration
	}

	user.PasswordHash = ""
	s.emit(AuthEvent{Type: AuthSignedIn, UserID: user.ID.Hex()})
	return token, user, nil
}

// SignOut revokes the token until it would have expired anyway.
func (s *authService) SignOut(_ context.Context, token string) error {
	claims, err := s.ValidateToken(token)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.pruneRevokedLocked()
	s.revoked[claims.ID] = claims.ExpiresAt.Time
	s.mu.Unlock()

	s.logger.Info("user signed out", zap.String("userId", claims.UserID))
	s.emit(AuthEvent{Type: AuthSignedOut, UserID: claims.UserID})
	return nil
}

func (s *authService) CurrentUser(ctx context.Context, userID string) (*domain.User, error) {
	id, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, ErrUserNotFound
	}
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	user.PasswordHash = ""
	return user, nil
}

// ValidateToken verifies signature, expiry and revocation.
func (s *authService) ValidateToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid || claims.UserID == "" || claims.ID == "" || claims.ExpiresAt == nil {
		return nil, ErrInvalidToken
	}

	s.mu.Lock()
	_, revoked := s.revoked[claims.ID]
	s.mu.Unlock()
	if revoked {
		return nil, fmt.Errorf("%w: token revoked", ErrInvalidToken)
	}
	return claims, nil
}

func (s *authService) OnAuthStateChanged(listener func(AuthEvent)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextListen
	s.nextListen++
	s.listeners[id] = listener
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, id)
	}
}

// emit calls listeners outside the lock so they may call back into the service.
func (s *authService) emit(ev AuthEvent) {
	s.mu.Lock()
	listeners := make([]func(AuthEvent), 0, len(s.listeners))
	for _, l := range s.listeners {
		listeners = append(listeners, l)
	}
	s.mu.Unlock()

	for _, l := range listeners {
		l(ev)
	}
}

func (s *authService) pruneRevokedLocked() {
	now := s.now()
	for jti, exp := range s.revoked {
		if exp.Before(now) {
			delete(s.revoked, jti)
		}
	}
}

func (s *authService) generateJWT(user *domain.User) (string, error) {
	now := s.now()
	claims := &Claims{
		UserID: user.ID.Hex(),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   user.ID.Hex(),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.jwtExpiration)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    "vyam",
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtSecret))
}
