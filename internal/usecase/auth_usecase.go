package usecase

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"bookmarket/internal/domain/model"
	repo "bookmarket/internal/repository"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// アクセストークン発行の約束（infra/token が実装）
type TokenIssuer interface {
	Issue(user model.User) (token string, expiresIn int, err error)
}

type UserDTO struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	FullName string `json:"full_name"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
	//注文に必要な配送先が揃っているか
	ProfileComplete bool `json:"profile_complete"`
}

type JwtAccessTokenDTO struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

type LoginInput struct {
	Email    string
	Password string
}

type LoginOutput struct {
	User  UserDTO           `json:"user"`
	Token JwtAccessTokenDTO `json:"token"`
}

type ProfileInput struct {
	FullName string
	Phone    string
	Address  string
}

type AuthUsecase struct {
	users  repo.UserRepository
	issuer TokenIssuer
	log    *zap.Logger
}

func NewAuthUsecase(users repo.UserRepository, issuer TokenIssuer, log *zap.Logger) *AuthUsecase {
	return &AuthUsecase{users: users, issuer: issuer, log: log}
}

// 新規登録は常に customer
func (u *AuthUsecase) Register(ctx context.Context, in RegisterInput) (UserDTO, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	name := strings.TrimSpace(in.Name)
	if email == "" || name == "" {
		return UserDTO{}, NewHTTPError(http.StatusBadRequest, "name and email are required")
	}
	if len(in.Password) < 8 {
		return UserDTO{}, NewHTTPError(http.StatusBadRequest, "password must be at least 8 characters")
	}

	_, err := u.users.FindByEmail(ctx, email)
	if err == nil {
		return UserDTO{}, NewHTTPError(http.StatusConflict, "email already registered")
	}
	if !errors.Is(err, repo.ErrNotFound) {
		return UserDTO{}, internalError(u.log, err, "db error")
	}

	//パスワードは必ずハッシュ化して保存（平文保存しない）
	pwHash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return UserDTO{}, internalError(u.log, err, "internal error")
	}

	user, err := u.users.Create(ctx, model.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(pwHash),
		Role:         model.RoleCustomer,
		IsActive:     true,
	})
	//同時登録で先を越された
	if errors.Is(err, repo.ErrDuplicate) {
		return UserDTO{}, NewHTTPError(http.StatusConflict, "email already registered")
	}
	if err != nil {
		return UserDTO{}, internalError(u.log, err, "db error")
	}

	u.log.Info("user registered", zap.Int64("user_id", user.ID))
	return toUserDTO(user), nil
}

func (u *AuthUsecase) Login(ctx context.Context, in LoginInput) (LoginOutput, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" || in.Password == "" {
		return LoginOutput{}, NewHTTPError(http.StatusBadRequest, "email and password are required")
	}

	user, err := u.users.FindByEmail(ctx, email)
	if errors.Is(err, repo.ErrNotFound) {
		return LoginOutput{}, NewHTTPError(http.StatusUnauthorized, "invalid credentials")
	}
	if err != nil {
		return LoginOutput{}, internalError(u.log, err, "db error")
	}

	//停止ユーザーはログイン不可
	if !user.IsActive {
		return LoginOutput{}, NewHTTPError(http.StatusForbidden, "account disabled")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		return LoginOutput{}, NewHTTPError(http.StatusUnauthorized, "invalid credentials")
	}

	token, expiresIn, err := u.issuer.Issue(user)
	if err != nil {
		return LoginOutput{}, internalError(u.log, err, "internal error", zap.Int64("user_id", user.ID))
	}

	return LoginOutput{
		User:  toUserDTO(user),
		Token: JwtAccessTokenDTO{AccessToken: token, ExpiresIn: expiresIn},
	}, nil
}

func (u *AuthUsecase) Me(ctx context.Context, userID int64) (UserDTO, error) {
	if userID <= 0 {
		return UserDTO{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	user, err := u.users.FindByID(ctx, userID)
	if errors.Is(err, repo.ErrNotFound) {
		return UserDTO{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if err != nil {
		return UserDTO{}, internalError(u.log, err, "db error")
	}
	return toUserDTO(user), nil
}

// 配送先プロフィールの更新
func (u *AuthUsecase) UpdateProfile(ctx context.Context, userID int64, in ProfileInput) (UserDTO, error) {
	if userID <= 0 {
		return UserDTO{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	fullName := strings.TrimSpace(in.FullName)
	phone := strings.TrimSpace(in.Phone)
	address := strings.TrimSpace(in.Address)
	if fullName == "" || phone == "" || address == "" {
		return UserDTO{}, NewHTTPError(http.StatusBadRequest, "full_name, phone and address are required")
	}
	if len(phone) > 20 {
		return UserDTO{}, NewHTTPError(http.StatusBadRequest, "phone too long")
	}

	err := u.users.UpdateProfile(ctx, userID, fullName, phone, address)
	if errors.Is(err, repo.ErrNotFound) {
		return UserDTO{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if err != nil {
		return UserDTO{}, internalError(u.log, err, "db error")
	}
	return u.Me(ctx, userID)
}

func toUserDTO(u model.User) UserDTO {
	return UserDTO{
		ID:              u.ID,
		Name:            u.Name,
		Email:           u.Email,
		Role:            string(u.Role),
		FullName:        u.FullName,
		Phone:           u.Phone,
		Address:         u.Address,
		ProfileComplete: u.HasCompleteProfile(),
	}
}
