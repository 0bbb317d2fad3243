package services

import (
	"context"
	"testing"
	"time"

	"github.com/Eldesouky97/home-craft/internal/domain"
	"github.com/Eldesouky97/home-craft/internal/mocks"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "test-secret"

func newTestAuthService(users *mocks.MockUserRepository) *AuthService {
	svc := NewAuthService(users, testSecret, time.Hour, zap.NewNop())
	svc.SetHashCost(bcrypt.MinCost)
	return svc
}

func hashed(t *testing.T, password string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(h)
}

func TestAuthService_Register(t *testing.T) {
	t.Run("defaults to buyer", func(t *testing.T) {
		users := new(mocks.MockUserRepository)
		users.On("FindByEmail", mock.Anything, "maya@example.com").Return(nil, nil)
		users.On("Create", mock.Anything, mock.AnythingOfType("*domain.User")).Return(nil).Run(func(args mock.Arguments) {
			args.Get(1).(*domain.User).ID = 7
		})
		svc := newTestAuthService(users)

		u, token, err := svc.Register(context.Background(), RegisterInput{Name: "Maya", Email: "Maya@Example.com", Password: "secret1"})

		require.NoError(t, err)
		assert.Equal(t, domain.RoleBuyer, u.Role)
		assert.Equal(t, "maya@example.com", u.Email)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("secret1")))
		assert.NotEmpty(t, token)
		users.AssertExpectations(t)
	})

	t.Run("admin self-registration", func(t *testing.T) {
		svc := newTestAuthService(new(mocks.MockUserRepository))
		_, _, err := svc.Register(context.Background(), RegisterInput{Name: "Root", Email: "root@example.com", Password: "secret1", Role: domain.RoleAdmin})
		assertKey(t, err, "auth.admin_self_register")
	})

	t.Run("email taken", func(t *testing.T) {
		users := new(mocks.MockUserRepository)
		users.On("FindByEmail", mock.Anything, "maya@example.com").Return(&domain.User{ID: 1}, nil)
		svc := newTestAuthService(users)

		_, _, err := svc.Register(context.Background(), RegisterInput{Name: "Maya", Email: "maya@example.com", Password: "secret1"})
		assert.ErrorIs(t, err, domain.ErrConflict)
	})

	t.Run("short password", func(t *testing.T) {
		svc := newTestAuthService(new(mocks.MockUserRepository))
		_, _, err := svc.Register(context.Background(), RegisterInput{Name: "Maya", Email: "maya@example.com", Password: "123"})
		assert.ErrorIs(t, err, domain.ErrValidation)
	})
}

func TestAuthService_LoginAndAuthenticate(t *testing.T) {
	users := new(mocks.MockUserRepository)
	user := &domain.User{ID: 7, Email: "maya@example.com", PasswordHash: hashed(t, "secret1"), Role: domain.RoleSeller, IsActive: true}
	users.On("FindByEmail", mock.Anything, "maya@example.com").Return(user, nil)
	users.On("FindByID", mock.Anything, uint64(7)).Return(user, nil)
	svc := newTestAuthService(users)
	ctx := context.Background()

	_, _, err := svc.Login(ctx, LoginInput{Email: "maya@example.com", Password: "wrong"})
	assertKey(t, err, "auth.invalid_credentials")

	_, token, err := svc.Login(ctx, LoginInput{Email: "MAYA@example.com", Password: "secret1"})
	require.NoError(t, err)

	actor, err := svc.Authenticate(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, &domain.Actor{UserID: 7, Role: domain.RoleSeller}, actor)

	_, err = svc.Authenticate(ctx, token+"x")
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
}

func TestAuthService_AuthenticateRejects(t *testing.T) {
	users := new(mocks.MockUserRepository)
	svc := newTestAuthService(users)
	ctx := context.Background()

	t.Run("expired", func(t *testing.T) {
		svc.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
		token, err := svc.IssueToken(&domain.User{ID: 7, Role: domain.RoleBuyer})
		svc.now = time.Now
		require.NoError(t, err)

		_, err = svc.Authenticate(ctx, token)
		assertKey(t, err, "auth.token_invalid")
	})

	t.Run("foreign issuer", func(t *testing.T) {
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
			Issuer:    "elsewhere",
			Subject:   "7",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		}).SignedString([]byte(testSecret))
		require.NoError(t, err)

		_, err = svc.Authenticate(ctx, token)
		assert.ErrorIs(t, err, domain.ErrUnauthenticated)
	})

	t.Run("deactivated user", func(t *testing.T) {
		users.On("FindByID", mock.Anything, uint64(8)).Return(&domain.User{ID: 8, Role: domain.RoleBuyer, IsActive: false}, nil)
		token, err := svc.IssueToken(&domain.User{ID: 8, Role: domain.RoleBuyer})
		require.NoError(t, err)

		_, err = svc.Authenticate(ctx, token)
		assertKey(t, err, "auth.inactive")
	})

	t.Run("stored role wins", func(t *testing.T) {
		users.On("FindByID", mock.Anything, uint64(9)).Return(&domain.User{ID: 9, Role: domain.RoleBuyer, IsActive: true}, nil)
		token, err := svc.IssueToken(&domain.User{ID: 9, Role: domain.RoleAdmin})
		require.NoError(t, err)

		actor, err := svc.Authenticate(ctx, token)
		require.NoError(t, err)
		assert.False(t, actor.IsAdmin())
	})
}

func TestAuthService_UpdateProfile(t *testing.T) {
	users := new(mocks.MockUserRepository)
	users.On("FindByID", mock.Anything, TestBuyerID).Return(&domain.User{ID: TestBuyerID, Name: "Maya", Role: domain.RoleBuyer, IsActive: true}, nil)
	users.On("UpdateProfile", mock.Anything, mock.MatchedBy(func(u *domain.User) bool {
		return u.Name == "Maya N." && u.Avatar != nil && *u.Avatar == "/uploads/images/a.png"
	})).Return(nil)
	svc := newTestAuthService(users)

	name, avatar := "  Maya N. ", "/uploads/images/a.png"
	u, err := svc.UpdateProfile(context.Background(), buyer, ProfileInput{Name: &name, Avatar: &avatar})
	require.NoError(t, err)
	assert.Equal(t, "Maya N.", u.Name)
	users.AssertExpectations(t)

	short := "M"
	_, err = svc.UpdateProfile(context.Background(), buyer, ProfileInput{Name: &short})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = svc.UpdateProfile(context.Background(), nil, ProfileInput{Name: &name})
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
}

func TestAuthService_ChangePassword(t *testing.T) {
	stored := func(t *testing.T) *domain.User {
		return &domain.User{ID: TestBuyerID, PasswordHash: hashed(t, "secret1"), Role: domain.RoleBuyer, IsActive: true}
	}

	t.Run("replaces hash", func(t *testing.T) {
		users := new(mocks.MockUserRepository)
		users.On("FindByID", mock.Anything, TestBuyerID).Return(stored(t), nil)
		users.On("UpdatePassword", mock.Anything, TestBuyerID, mock.MatchedBy(func(h string) bool {
			return bcrypt.CompareHashAndPassword([]byte(h), []byte("secret2")) == nil
		})).Return(nil)
		svc := newTestAuthService(users)

		err := svc.ChangePassword(context.Background(), buyer, ChangePasswordInput{CurrentPassword: "secret1", NewPassword: "secret2"})
		require.NoError(t, err)
		users.AssertExpectations(t)
	})

	t.Run("wrong current password", func(t *testing.T) {
		users := new(mocks.MockUserRepository)
		users.On("FindByID", mock.Anything, TestBuyerID).Return(stored(t), nil)
		svc := newTestAuthService(users)

		err := svc.ChangePassword(context.Background(), buyer, ChangePasswordInput{CurrentPassword: "nope", NewPassword: "secret2"})
		assertKey(t, err, "auth.wrong_password")
		assert.ErrorIs(t, err, domain.ErrValidation)
		users.AssertNotCalled(t, "UpdatePassword", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("new password too short", func(t *testing.T) {
		svc := newTestAuthService(new(mocks.MockUserRepository))
		err := svc.ChangePassword(context.Background(), buyer, ChangePasswordInput{CurrentPassword: "secret1", NewPassword: "abc"})
		assert.ErrorIs(t, err, domain.ErrValidation)
	})
}
