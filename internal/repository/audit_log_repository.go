package repository

import (
	"context"
	"time"

	"bookmarket/internal/domain/model"
)

// 管理画面の監査ログ一覧の条件。nil/空は絞り込まない。
type AuditLogFilter struct {
	Page         int
	Limit        int
	ActorUserID  *int64
	Action       model.AuditAction
	ResourceType model.AuditResourceType
	ResourceID   *int64
	From         *time.Time
	To           *time.Time
}

// 管理者操作の記録。書き込みは注文・本の更新と同じTxで行う。
type AuditLogRepository interface {
	Create(ctx context.Context, log model.AuditLog) error

	//新しい順。totalは絞り込み後の件数
	List(ctx context.Context, filter AuditLogFilter) ([]model.AuditLog, int64, error)
}
