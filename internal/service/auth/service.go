// Package auth signs in users and turns bearer tokens back into policy actors.
package auth

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/Additional-Code/procura/internal/config"
	"github.com/Additional-Code/procura/internal/entity"
	"github.com/Additional-Code/procura/internal/policy"
	repouser "github.com/Additional-Code/procura/internal/repository/user"
	"github.com/Additional-Code/procura/pkg/errorbank"
)

// Users is the account lookup the service needs.
type Users interface {
	GetByUsername(ctx context.Context, username string) (*entity.User, error)
	GetByID(ctx context.Context, id int64) (*entity.User, error)
}

// Claims is the JWT payload carried by every access token.
type Claims struct {
	Name      string      `json:"name"`
	Role      entity.Role `json:"role"`
	VenueName string      `json:"venue,omitempty"`
	jwt.RegisteredClaims
}

// Token is a freshly issued access token.
type Token struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	ExpiresAt   time.Time    `json:"expires_at"`
	User        *entity.User `json:"user"`
}

// Service issues and verifies access tokens.
type Service struct {
	users  Users
	secret []byte
	issuer string
	ttl    time.Duration
	logger *zap.Logger
	now    func() time.Time
}

// Params defines dependencies for constructing Service.
type Params struct {
	fx.In

	Users  Users
	Config config.Config
	Logger *zap.Logger
}

// NewService wires a new auth Service.
func NewService(p Params) *Service {
	logger := p.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	ttl := p.Config.Auth.TokenTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Service{
		users:  p.Users,
		secret: []byte(p.Config.Auth.JWTSecret),
		issuer: p.Config.Auth.Issuer,
		ttl:    ttl,
		logger: logger,
		now:    time.Now,
	}
}

// HashPassword returns the bcrypt hash stored for a password.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Login checks the credentials and issues a token for the account.
func (s *Service) Login(ctx context.Context, username, password string) (*Token, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, errorbank.Invalid(missingCredentials(username, password))
	}

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repouser.ErrNotFound) {
			return nil, errorbank.Unauthorized("invalid username or password")
		}
		return nil, errorbank.Internal("failed to load user", errorbank.WithCause(err))
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.logger.Info("rejected sign-in", zap.String("username", username))
		return nil, errorbank.Unauthorized("invalid username or password")
	}

	signed, expires, err := s.Issue(user)
	if err != nil {
		return nil, errorbank.Internal("failed to sign token", errorbank.WithCause(err))
	}
	return &Token{AccessToken: signed, TokenType: "Bearer", ExpiresAt: expires, User: user}, nil
}

// Issue signs an HS256 token for user.
func (s *Service) Issue(user *entity.User) (string, time.Time, error) {
	now := s.now()
	expires := now.Add(s.ttl)
	claims := Claims{
		Name:      user.Name,
		Role:      user.Role,
		VenueName: user.VenueName,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(user.ID, 10),
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expires, nil
}

// Authenticate parses a bearer token into the actor it was issued for.
func (s *Service) Authenticate(token string) (policy.Actor, error) {
	var claims Claims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !parsed.Valid {
		return policy.Actor{}, errorbank.Unauthorized("invalid or expired token", errorbank.WithCause(err))
	}

	id, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || id <= 0 {
		return policy.Actor{}, errorbank.Unauthorized("invalid token subject")
	}
	return policy.Actor{
		UserID:    id,
		Name:      claims.Name,
		Role:      claims.Role,
		VenueName: claims.VenueName,
	}, nil
}

// Me returns the stored account behind actor.
func (s *Service) Me(ctx context.Context, actor policy.Actor) (*entity.User, error) {
	user, err := s.users.GetByID(ctx, actor.UserID)
	if err != nil {
		if errors.Is(err, repouser.ErrNotFound) {
			return nil, errorbank.Unauthorized("account no longer exists")
		}
		return nil, errorbank.Internal("failed to load user", errorbank.WithCause(err))
	}
	return user, nil
}

func missingCredentials(username, password string) map[string]string {
	fields := map[string]string{}
	if username == "" {
		fields["username"] = "username is required"
	}
	if password == "" {
		fields["password"] = "password is required"
	}
	return fields
}
