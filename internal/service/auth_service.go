package service

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"pagecraft-backend/internal/authorization"
	"pagecraft-backend/internal/models"
	"pagecraft-backend/internal/repository"
	"pagecraft-backend/internal/session"
	"pagecraft-backend/pkg/logger"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountExists      = errors.New("user with this email or username already exists")
	ErrInvalidTenantToken = errors.New("invalid tenant token")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrWeakPassword       = errors.New("password is too weak")
	ErrUserNotFound       = errors.New("user not found")
)

const minPasswordLength = 8

type AuthService struct {
	userRepo   repository.UserRepository
	tenantRepo repository.TenantRepository
	jwtSecret  []byte
	tokenTTL   time.Duration
	now        func() time.Time
}

type tokenClaims struct {
	UserID   uint   `json:"user_id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	Tenant   string `json:"tenant,omitempty"`
	jwt.RegisteredClaims
}

func NewAuthService(userRepo repository.UserRepository, tenantRepo repository.TenantRepository, jwtSecret string, tokenTTL time.Duration) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = 72 * time.Hour
	}
	return &AuthService{
		userRepo:   userRepo,
		tenantRepo: tenantRepo,
		jwtSecret:  []byte(jwtSecret),
		tokenTTL:   tokenTTL,
		now:        time.Now,
	}
}

// Register creates a plain user. A tenant token, when given, attaches the
// user to that tenant.
func (s *AuthService) Register(req models.RegisterRequest) (*models.User, error) {
	if err := validatePasswordStrength(req.Password); err != nil {
		return nil, err
	}

	tenantName := ""
	if token := strings.TrimSpace(req.TenantToken); token != "" {
		tenant, err := s.tenantRepo.GetByToken(token)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, ErrInvalidTenantToken
			}
			return nil, err
		}
		tenantName = tenant.Name
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if existing, err := s.userRepo.GetByEmail(email); err == nil && existing != nil {
		return nil, ErrAccountExists
	} else if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username:   strings.TrimSpace(req.Username),
		Email:      email,
		Password:   string(hashed),
		Role:       authorization.RoleUser,
		TenantName: tenantName,
		Status:     "active",
	}
	if err := s.userRepo.Create(user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrAccountExists
		}
		return nil, err
	}

	logger.Info("User registered", map[string]interface{}{"user_id": user.ID, "tenant": tenantName})
	return user, nil
}

func (s *AuthService) Login(req models.LoginRequest) (string, *models.User, error) {
	user, err := s.userRepo.GetByEmail(strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.GenerateToken(user)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

func (s *AuthService) GenerateToken(user *models.User) (string, error) {
	now := s.now()
	claims := tokenClaims{
		UserID:   user.ID,
		Username: user.Username,
		Email:    user.Email,
		Role:     user.Role.String(),
		Tenant:   user.TenantName,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   fmt.Sprint(user.ID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}

// ValidateToken verifies the signature and expiry and returns the caller's session.
func (s *AuthService) ValidateToken(tokenString string) (session.Session, error) {
	claims := &tokenClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil || !token.Valid {
		return session.Session{}, ErrInvalidToken
	}

	role, ok := authorization.ParseUserRole(claims.Role)
	if !ok || claims.UserID == 0 {
		return session.Session{}, ErrInvalidToken
	}

	return session.Session{
		UserID:     claims.UserID,
		Username:   claims.Username,
		Email:      claims.Email,
		Role:       role,
		TenantName: claims.Tenant,
	}, nil
}

func (s *AuthService) GetUserByID(id uint) (*models.User, error) {
	user, err := s.userRepo.GetByID(id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	return user, err
}

func (s *AuthService) UpdateProfile(userID uint, req models.UpdateProfileRequest) (*models.User, error) {
	user, err := s.GetUserByID(userID)
	if err != nil {
		return nil, err
	}

	if username := strings.TrimSpace(req.Username); username != "" {
		user.Username = username
	}
	if email := strings.ToLower(strings.TrimSpace(req.Email)); email != "" && email != user.Email {
		if existing, err := s.userRepo.GetByEmail(email); err == nil && existing != nil {
			return nil, ErrAccountExists
		}
		user.Email = email
	}

	if err := s.userRepo.Update(user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrAccountExists
		}
		return nil, err
	}
	return user, nil
}

func (s *AuthService) ChangePassword(userID uint, oldPassword, newPassword string) error {
	user, err := s.GetUserByID(userID)
	if err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(oldPassword)); err != nil {
		return ErrInvalidCredentials
	}
	if err := validatePasswordStrength(newPassword); err != nil {
		return err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	user.Password = string(hashed)
	return s.userRepo.Update(user)
}

// EnsureSuperadmin creates the bootstrap superadmin when none exists yet.
func (s *AuthService) EnsureSuperadmin(email, password string) (bool, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return false, nil
	}

	count, err := s.userRepo.CountByRole(authorization.RoleSuperadmin)
	if err != nil {
		return false, err
	}
	if count > 0 {
		return false, nil
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return false, err
	}

	username := email
	if at := strings.Index(email, "@"); at > 0 {
		username = email[:at]
	}

	user := &models.User{
		Username: username,
		Email:    email,
		Password: string(hashed),
		Role:     authorization.RoleSuperadmin,
		Status:   "active",
	}
	if err := s.userRepo.Create(user); err != nil {
		return false, err
	}

	logger.Info("Superadmin account created", map[string]interface{}{"email": email})
	return true, nil
}

func validatePasswordStrength(password string) error {
	var requirements []string

	if len([]rune(password)) < minPasswordLength {
		requirements = append(requirements, fmt.Sprintf("be at least %d characters long", minPasswordLength))
	}

	var hasUpper, hasLower, hasNumber bool
	for _, char := range password {
		switch {
		case unicode.IsUpper(char):
			hasUpper = true
		case unicode.IsLower(char):
			hasLower = true
		case unicode.IsDigit(char):
			hasNumber = true
		}
	}

	if !hasUpper {
		requirements = append(requirements, "contain at least one uppercase letter")
	}
	if !hasLower {
		requirements = append(requirements, "contain at least one lowercase letter")
	}
	if !hasNumber {
		requirements = append(requirements, "include at least one digit")
	}

	if len(requirements) > 0 {
		return fmt.Errorf("%w: password must %s", ErrWeakPassword, strings.Join(requirements, ", "))
	}
	return nil
}
