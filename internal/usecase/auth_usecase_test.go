package usecase_test

import (
	"context"
	"testing"

	"bookmarket/internal/domain/model"
	repo "bookmarket/internal/repository"
	"bookmarket/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type issuerStub struct{}

func (issuerStub) Issue(u model.User) (string, int, error) { return "token-for-" + string(u.Role), 900, nil }

func TestAuthUsecase_Register_DuplicateEmail(t *testing.T) {
	users := new(UserRepoMock)
	uc := usecase.NewAuthUsecase(users, issuerStub{}, zap.NewNop())

	users.On("FindByEmail", mock.Anything, "a@example.com").Return(model.User{ID: 1}, nil)

	_, err := uc.Register(context.Background(), usecase.RegisterInput{Name: "A", Email: " A@example.com ", Password: "password123"})
	assertErrContains(t, err, "email already registered")
	users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestAuthUsecase_Register_DuplicateOnInsert(t *testing.T) {
	users := new(UserRepoMock)
	uc := usecase.NewAuthUsecase(users, issuerStub{}, zap.NewNop())

	users.On("FindByEmail", mock.Anything, "a@example.com").Return(model.User{}, repo.ErrNotFound)
	users.On("Create", mock.Anything, mock.Anything).Return(model.User{}, repo.ErrDuplicate)

	_, err := uc.Register(context.Background(), usecase.RegisterInput{Name: "A", Email: "a@example.com", Password: "password123"})
	he, ok := usecase.AsHTTPError(err)
	require.True(t, ok)
	assert.Equal(t, 409, he.Status)
}

func TestAuthUsecase_Register_ShortPassword(t *testing.T) {
	uc := usecase.NewAuthUsecase(new(UserRepoMock), issuerStub{}, zap.NewNop())

	_, err := uc.Register(context.Background(), usecase.RegisterInput{Name: "A", Email: "a@example.com", Password: "short"})
	assertErrContains(t, err, "password")
}

func TestAuthUsecase_Register_OK(t *testing.T) {
	users := new(UserRepoMock)
	uc := usecase.NewAuthUsecase(users, issuerStub{}, zap.NewNop())

	users.On("FindByEmail", mock.Anything, "a@example.com").Return(model.User{}, repo.ErrNotFound)
	users.On("Create", mock.Anything, mock.MatchedBy(func(u model.User) bool {
		//平文は保存しない
		return u.Role == model.RoleCustomer && u.PasswordHash != "" && u.PasswordHash != "password123"
	})).Return(model.User{ID: 3, Name: "A", Email: "a@example.com", Role: model.RoleCustomer}, nil)

	out, err := uc.Register(context.Background(), usecase.RegisterInput{Name: "A", Email: "a@example.com", Password: "password123"})
	require.NoError(t, err)
	assert.Equal(t, int64(3), out.ID)
	assert.False(t, out.ProfileComplete)
}

func TestAuthUsecase_Login(t *testing.T) {
	users := new(UserRepoMock)
	uc := usecase.NewAuthUsecase(users, issuerStub{}, zap.NewNop())

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)
	users.On("FindByEmail", mock.Anything, "a@example.com").Return(model.User{
		ID: 3, Email: "a@example.com", PasswordHash: string(hash), Role: model.RoleAdmin, IsActive: true,
	}, nil)

	out, err := uc.Login(context.Background(), usecase.LoginInput{Email: "a@example.com", Password: "password123"})
	require.NoError(t, err)
	assert.Equal(t, "token-for-admin", out.Token.AccessToken)
	assert.Equal(t, 900, out.Token.ExpiresIn)

	_, err = uc.Login(context.Background(), usecase.LoginInput{Email: "a@example.com", Password: "wrong-password"})
	assertErrContains(t, err, "invalid credentials")
}

func TestAuthUsecase_UpdateProfile(t *testing.T) {
	users := new(UserRepoMock)
	uc := usecase.NewAuthUsecase(users, issuerStub{}, zap.NewNop())

	_, err := uc.UpdateProfile(context.Background(), 3, usecase.ProfileInput{FullName: "Taro"})
	assertErrContains(t, err, "full_name, phone and address are required")

	users.On("UpdateProfile", mock.Anything, int64(3), "Taro", "0800", "Tokyo").Return(nil)
	users.On("FindByID", mock.Anything, int64(3)).Return(completeCustomer(3), nil)

	out, err := uc.UpdateProfile(context.Background(), 3, usecase.ProfileInput{FullName: " Taro ", Phone: "0800", Address: "Tokyo"})
	require.NoError(t, err)
	assert.True(t, out.ProfileComplete)
}
