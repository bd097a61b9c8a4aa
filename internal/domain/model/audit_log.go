package model

import "time"

// 注文ステータス更新、支払い確認など。
type AuditAction string

const (
	//注文ステータスを直接上書きした操作。
	AuditActionUpdateOrderStatus AuditAction = "UPDATE_ORDER_STATUS"
	//振込の承認・却下。
	AuditActionVerifyPayment AuditAction = "VERIFY_PAYMENT"
	//発送登録。
	AuditActionShipOrder AuditAction = "SHIP_ORDER"
	//配達完了。
	AuditActionCompleteOrder AuditAction = "COMPLETE_ORDER"
	//本のステータスを直接上書きした操作。
	AuditActionUpdateBookStatus AuditAction = "UPDATE_BOOK_STATUS"
)

// 何に対する操作か
type AuditResourceType string

const (
	AuditResourceOrder AuditResourceType = "order"
	AuditResourceBook  AuditResourceType = "book"
)

// 監査ログ（管理者操作ログ）。
// 「誰が」「何を」「どの対象に」「どう変えたか」を残す。
type AuditLog struct {
	ID int64 `gorm:"primaryKey;autoIncrement" json:"id"`

	//操作した管理者のID。
	ActorUserID int64 `gorm:"not null;index" json:"actor_user_id"`

	Action AuditAction `gorm:"type:varchar(50);not null;index" json:"action"`

	ResourceType AuditResourceType `gorm:"type:varchar(50);not null;index" json:"resource_type"`
	ResourceID   int64             `gorm:"not null;index" json:"resource_id"`

	//JSON文字列で保存する。
	BeforeJSON string `gorm:"type:text" json:"before_json"`
	AfterJSON  string `gorm:"type:text" json:"after_json"`

	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
}
