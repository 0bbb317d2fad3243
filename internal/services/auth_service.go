package services

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/Eldesouky97/home-craft/internal/domain"
	"github.com/Eldesouky97/home-craft/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const tokenIssuer = "home-craft"

type RegisterInput struct {
	Name     string      `json:"name" validate:"required,min=2,max=120"`
	Email    string      `json:"email" validate:"required,email,max=255"`
	Password string      `json:"password" validate:"required,min=6,max=72"`
	Role     domain.Role `json:"role" validate:"omitempty,oneof=BUYER SELLER ADMIN"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type ProfileInput struct {
	Name   *string `json:"name" validate:"omitempty,min=2,max=120"`
	Avatar *string `json:"avatar" validate:"omitempty,max=255"`
}

type ChangePasswordInput struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=6,max=72"`
}

// Claims is the JWT payload issued at login.
type Claims struct {
	Role domain.Role `json:"role"`
	jwt.RegisteredClaims
}

type AuthService struct {
	users    repository.UserRepository
	secret   []byte
	tokenTTL time.Duration
	cost     int
	log      *zap.Logger
	now      func() time.Time
}

func NewAuthService(users repository.UserRepository, secret string, tokenTTL time.Duration, log *zap.Logger) *AuthService {
	return &AuthService{
		users:    users,
		secret:   []byte(secret),
		tokenTTL: tokenTTL,
		cost:     bcrypt.DefaultCost,
		log:      log,
		now:      time.Now,
	}
}

// SetHashCost overrides the bcrypt cost.
func (s *AuthService) SetHashCost(cost int) {
	s.cost = cost
}

// Register creates a buyer or seller account and returns it with a token.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*domain.User, string, error) {
	if err := checkStruct(in); err != nil {
		return nil, "", err
	}
	if in.Role == domain.RoleAdmin {
		return nil, "", domain.ValidationError("auth.admin_self_register",
			domain.Violation{Field: "role", Rule: "oneof"})
	}
	if in.Role == "" {
		in.Role = domain.RoleBuyer
	}
	email := strings.ToLower(strings.TrimSpace(in.Email))

	existing, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, "", s.fail(err)
	}
	if existing != nil {
		return nil, "", domain.Conflict("auth.email_taken")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cost)
	if err != nil {
		return nil, "", s.fail(err)
	}
	u := &domain.User{
		Name:         in.Name,
		Email:        email,
		PasswordHash: string(hash),
		Role:         in.Role,
		IsActive:     true,
	}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, "", domain.Conflict("auth.email_taken")
		}
		return nil, "", s.fail(err)
	}

	token, err := s.IssueToken(u)
	if err != nil {
		return nil, "", s.fail(err)
	}
	return u, token, nil
}

func (s *AuthService) Login(ctx context.Context, in LoginInput) (*domain.User, string, error) {
	if err := checkStruct(in); err != nil {
		return nil, "", err
	}
	u, err := s.users.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(in.Email)))
	if err != nil {
		return nil, "", s.fail(err)
	}
	if u == nil || bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(in.Password)) != nil {
		return nil, "", domain.Unauthenticated("auth.invalid_credentials")
	}
	if !u.IsActive {
		return nil, "", domain.Unauthenticated("auth.inactive")
	}

	token, err := s.IssueToken(u)
	if err != nil {
		return nil, "", s.fail(err)
	}
	return u, token, nil
}

func (s *AuthService) IssueToken(u *domain.User) (string, error) {
	now := s.now()
	claims := Claims{
		Role: u.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Subject:   strconv.FormatUint(u.ID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// Authenticate verifies token and resolves it to an active user. The role
// is taken from the stored user, not from the token.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*domain.Actor, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, domain.Unauthenticated("auth.token_invalid")
	}
	id, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil {
		return nil, domain.Unauthenticated("auth.token_invalid")
	}

	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, s.fail(err)
	}
	if u == nil {
		return nil, domain.Unauthenticated("auth.token_invalid")
	}
	if !u.IsActive {
		return nil, domain.Unauthenticated("auth.inactive")
	}
	return &domain.Actor{UserID: u.ID, Role: u.Role}, nil
}

func (s *AuthService) Me(ctx context.Context, actor *domain.Actor) (*domain.User, error) {
	if actor == nil {
		return nil, domain.Unauthenticated("auth.token_missing")
	}
	u, err := s.users.FindByID(ctx, actor.UserID)
	if err != nil {
		return nil, s.fail(err)
	}
	if u == nil {
		return nil, domain.NotFound("auth.token_invalid")
	}
	return u, nil
}

// UpdateProfile applies the non-nil fields of in to the caller's account.
func (s *AuthService) UpdateProfile(ctx context.Context, actor *domain.Actor, in ProfileInput) (*domain.User, error) {
	if err := checkStruct(in); err != nil {
		return nil, err
	}
	u, err := s.Me(ctx, actor)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		u.Name = strings.TrimSpace(*in.Name)
	}
	if in.Avatar != nil {
		u.Avatar = in.Avatar
		if *in.Avatar == "" {
			u.Avatar = nil
		}
	}
	if err := s.users.UpdateProfile(ctx, u); err != nil {
		return nil, s.fail(err)
	}
	return u, nil
}

// ChangePassword replaces the caller's password after checking the current one.
// Tokens issued before the change stay valid until they expire.
func (s *AuthService) ChangePassword(ctx context.Context, actor *domain.Actor, in ChangePasswordInput) error {
	if err := checkStruct(in); err != nil {
		return err
	}
	u, err := s.Me(ctx, actor)
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(in.CurrentPassword)) != nil {
		return domain.ValidationError("auth.wrong_password",
			domain.Violation{Field: "currentPassword", Rule: "match"})
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.NewPassword), s.cost)
	if err != nil {
		return s.fail(err)
	}
	if err := s.users.UpdatePassword(ctx, u.ID, string(hash)); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.NotFound("auth.token_invalid")
		}
		return s.fail(err)
	}
	s.log.Info("password changed", zap.Uint64("user_id", u.ID))
	return nil
}

func (s *AuthService) fail(err error) error {
	if de, ok := domain.AsError(err); ok {
		return de
	}
	s.log.Error("auth.failed", zap.Error(err))
	return domain.Persistence("auth.failed", err)
}
