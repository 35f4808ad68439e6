package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/Additional-Code/procura/internal/config"
	"github.com/Additional-Code/procura/internal/entity"
	repouser "github.com/Additional-Code/procura/internal/repository/user"
	"github.com/Additional-Code/procura/pkg/errorbank"
)

type memoryUsers map[string]*entity.User

func (m memoryUsers) GetByUsername(_ context.Context, username string) (*entity.User, error) {
	if u, ok := m[username]; ok {
		return u, nil
	}
	return nil, repouser.ErrNotFound
}

func (m memoryUsers) GetByID(_ context.Context, id int64) (*entity.User, error) {
	for _, u := range m {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, repouser.ErrNotFound
}

func newTestService(t *testing.T) *Service {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("slipi1234"), bcrypt.MinCost)
	require.NoError(t, err)

	users := memoryUsers{
		"slipi": {ID: 2, Name: "Slipi", Username: "slipi", PasswordHash: string(hash), Role: entity.RoleVenueUser, VenueName: "Slipi"},
	}
	var cfg config.Config
	cfg.Auth = config.Auth{JWTSecret: "test-secret", Issuer: "procura", TokenTTL: time.Hour}
	return NewService(Params{Users: users, Config: cfg})
}

func TestLoginAndAuthenticate(t *testing.T) {
	svc := newTestService(t)

	token, err := svc.Login(context.Background(), " slipi ", "slipi1234")
	require.NoError(t, err)
	assert.Equal(t, "Bearer", token.TokenType)
	assert.Equal(t, "slipi", token.User.Username)

	actor, err := svc.Authenticate(token.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, int64(2), actor.UserID)
	assert.Equal(t, entity.RoleVenueUser, actor.Role)
	assert.Equal(t, "Slipi", actor.VenueName)
	assert.Equal(t, "Slipi", actor.Name)

	me, err := svc.Me(context.Background(), actor)
	require.NoError(t, err)
	assert.Equal(t, "slipi", me.Username)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc := newTestService(t)

	tests := []struct {
		name     string
		username string
		password string
		kind     errorbank.Kind
	}{
		{"wrong password", "slipi", "lippo1234", errorbank.KindUnauthorized},
		{"unknown user", "gudang", "gudang1234", errorbank.KindUnauthorized},
		{"missing password", "slipi", "", errorbank.KindUnprocessableEntity},
		{"missing username", "", "x", errorbank.KindUnprocessableEntity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Login(context.Background(), tt.username, tt.password)
			require.Error(t, err)
			assert.True(t, errorbank.Is(err, tt.kind), "got %v", err)
		})
	}
}

func TestAuthenticateRejectsExpiredToken(t *testing.T) {
	svc := newTestService(t)
	user := &entity.User{ID: 2, Name: "Slipi", Role: entity.RoleVenueUser}

	issuedAt := time.Now().Add(-2 * time.Hour)
	svc.now = func() time.Time { return issuedAt }
	signed, _, err := svc.Issue(user)
	require.NoError(t, err)

	svc.now = time.Now
	_, err = svc.Authenticate(signed)
	require.Error(t, err)
	assert.True(t, errorbank.Is(err, errorbank.KindUnauthorized))
}

func TestAuthenticateRejectsForeignSignature(t *testing.T) {
	svc := newTestService(t)

	claims := Claims{
		Role: entity.RoleSuperAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "11",
			Issuer:    "procura",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("other-secret"))
	require.NoError(t, err)

	_, err = svc.Authenticate(forged)
	require.Error(t, err)
	assert.True(t, errorbank.Is(err, errorbank.KindUnauthorized))

	_, err = svc.Authenticate("not-a-token")
	assert.True(t, errorbank.Is(err, errorbank.KindUnauthorized))
}

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("moonbeam1234")
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("moonbeam1234")))
}
