package usecase

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"bookmarket/internal/domain/model"
	repo "bookmarket/internal/repository"

	"go.uber.org/zap"
)

var auditActions = map[model.AuditAction]bool{
	model.AuditActionUpdateOrderStatus: true,
	model.AuditActionVerifyPayment:     true,
	model.AuditActionShipOrder:         true,
	model.AuditActionCompleteOrder:     true,
	model.AuditActionUpdateBookStatus:  true,
}

// 管理者操作ログの閲覧
type AuditLogUsecase struct {
	logs repo.AuditLogRepository
	log  *zap.Logger
}

func NewAuditLogUsecase(logs repo.AuditLogRepository, log *zap.Logger) *AuditLogUsecase {
	return &AuditLogUsecase{logs: logs, log: log}
}

type AuditLogListInput struct {
	Page         int
	Limit        int
	ActorUserID  *int64
	Action       string
	ResourceType string
	ResourceID   *int64
	From         *time.Time
	To           *time.Time
}

type AuditLogOutput struct {
	ID           int64           `json:"id"`
	ActorUserID  int64           `json:"actor_user_id"`
	Action       string          `json:"action"`
	ResourceType string          `json:"resource_type"`
	ResourceID   int64           `json:"resource_id"`
	Before       json.RawMessage `json:"before"`
	After        json.RawMessage `json:"after"`
	CreatedAt    time.Time       `json:"created_at"`
}

type AuditLogListOutput struct {
	Items []AuditLogOutput `json:"items"`
	Total int64            `json:"total"`
	Page  int              `json:"page"`
	Limit int              `json:"limit"`
}

func (u *AuditLogUsecase) List(ctx context.Context, in AuditLogListInput) (AuditLogListOutput, error) {
	if in.Page < 1 {
		return AuditLogListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid page")
	}
	if in.Limit < 1 || in.Limit > 200 {
		return AuditLogListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid limit")
	}
	if in.Action != "" && !auditActions[model.AuditAction(in.Action)] {
		return AuditLogListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid action")
	}
	rt := model.AuditResourceType(in.ResourceType)
	if rt != "" && rt != model.AuditResourceOrder && rt != model.AuditResourceBook {
		return AuditLogListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid resource_type")
	}
	if in.From != nil && in.To != nil && in.From.After(*in.To) {
		return AuditLogListOutput{}, NewHTTPError(http.StatusBadRequest, "from must be before to")
	}

	logs, total, err := u.logs.List(ctx, repo.AuditLogFilter{
		Page:         in.Page,
		Limit:        in.Limit,
		ActorUserID:  in.ActorUserID,
		Action:       model.AuditAction(in.Action),
		ResourceType: rt,
		ResourceID:   in.ResourceID,
		From:         in.From,
		To:           in.To,
	})
	if err != nil {
		return AuditLogListOutput{}, internalError(u.log, err, "db error")
	}

	items := make([]AuditLogOutput, 0, len(logs))
	for _, l := range logs {
		items = append(items, AuditLogOutput{
			ID:           l.ID,
			ActorUserID:  l.ActorUserID,
			Action:       string(l.Action),
			ResourceType: string(l.ResourceType),
			ResourceID:   l.ResourceID,
			Before:       rawJSON(l.BeforeJSON),
			After:        rawJSON(l.AfterJSON),
			CreatedAt:    l.CreatedAt,
		})
	}
	return AuditLogListOutput{Items: items, Total: total, Page: in.Page, Limit: in.Limit}, nil
}

// 保存済みのJSON文字列をそのまま埋め込む（壊れていたら null）
func rawJSON(s string) json.RawMessage {
	if s == "" || !json.Valid([]byte(s)) {
		return json.RawMessage("null")
	}
	return json.RawMessage(s)
}
