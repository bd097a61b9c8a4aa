package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"bookmarket/internal/domain/model"
	repo "bookmarket/internal/repository"
	"bookmarket/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestAuditLogUsecase_List_InvalidInput(t *testing.T) {
	uc := usecase.NewAuditLogUsecase(new(AuditRepoMock), zap.NewNop())
	ctx := context.Background()

	_, err := uc.List(ctx, usecase.AuditLogListInput{Page: 0, Limit: 10})
	assertErrContains(t, err, "invalid page")

	_, err = uc.List(ctx, usecase.AuditLogListInput{Page: 1, Limit: 0})
	assertErrContains(t, err, "invalid limit")

	_, err = uc.List(ctx, usecase.AuditLogListInput{Page: 1, Limit: 10, Action: "DELETE_ALL"})
	assertErrContains(t, err, "invalid action")

	_, err = uc.List(ctx, usecase.AuditLogListInput{Page: 1, Limit: 10, ResourceType: "user"})
	assertErrContains(t, err, "invalid resource_type")

	from := testNow
	to := testNow.Add(-time.Hour)
	_, err = uc.List(ctx, usecase.AuditLogListInput{Page: 1, Limit: 10, From: &from, To: &to})
	assertErrContains(t, err, "from must be before to")
}

func TestAuditLogUsecase_List_OK(t *testing.T) {
	logs := new(AuditRepoMock)
	uc := usecase.NewAuditLogUsecase(logs, zap.NewNop())

	orderID := int64(7)
	logs.On("List", mock.Anything, mock.MatchedBy(func(f repo.AuditLogFilter) bool {
		return f.Page == 2 && f.Limit == 5 &&
			f.Action == model.AuditActionShipOrder &&
			f.ResourceType == model.AuditResourceOrder &&
			f.ResourceID != nil && *f.ResourceID == orderID
	})).Return([]model.AuditLog{{
		ID:           11,
		ActorUserID:  1,
		Action:       model.AuditActionShipOrder,
		ResourceType: model.AuditResourceOrder,
		ResourceID:   orderID,
		BeforeJSON:   `{"status":"paid"}`,
		AfterJSON:    `not json`,
		CreatedAt:    testNow,
	}}, int64(6), nil).Once()

	out, err := uc.List(context.Background(), usecase.AuditLogListInput{
		Page: 2, Limit: 5, Action: "SHIP_ORDER", ResourceType: "order", ResourceID: &orderID,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(6), out.Total)
	require.Len(t, out.Items, 1)
	assert.Equal(t, "SHIP_ORDER", out.Items[0].Action)
	assert.JSONEq(t, `{"status":"paid"}`, string(out.Items[0].Before))
	assert.Equal(t, "null", string(out.Items[0].After))
	logs.AssertExpectations(t)
}

func TestAuditLogUsecase_List_DBError(t *testing.T) {
	logs := new(AuditRepoMock)
	uc := usecase.NewAuditLogUsecase(logs, zap.NewNop())

	logs.On("List", mock.Anything, mock.Anything).Return(nil, int64(0), errors.New("down")).Once()

	_, err := uc.List(context.Background(), usecase.AuditLogListInput{Page: 1, Limit: 10})
	assertErrContains(t, err, "db error")
}
