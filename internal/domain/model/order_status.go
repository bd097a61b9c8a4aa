package model

// 管理者が上書きできる全ステータス
var AllOrderStatuses = []OrderStatus{
	OrderStatusPendingPayment,
	OrderStatusWaitingConfirmation,
	OrderStatusPaid,
	OrderStatusPaymentRejected,
	OrderStatusProcessing,
	OrderStatusShipped,
	OrderStatusCompleted,
	OrderStatusCancelled,
}

func (s OrderStatus) Valid() bool {
	for _, v := range AllOrderStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// 購入者がキャンセルできるか（発送済・完了・キャンセル済は不可）
func (s OrderStatus) CustomerCancellable() bool {
	switch s {
	case OrderStatusShipped, OrderStatusCompleted, OrderStatusCancelled:
		return false
	}
	return true
}

func (s OrderStatus) CanUploadProof() bool {
	return s == OrderStatusPendingPayment
}

func (s OrderStatus) CanShip() bool {
	return s == OrderStatusPaid || s == OrderStatusProcessing
}

func (s OrderStatus) CanComplete() bool {
	return s == OrderStatusShipped
}

// 最新注文のステータスから本のステータスを決める。
// 知らない値なら current のまま。
func BookStatusForOrder(s OrderStatus, current BookStatus) BookStatus {
	switch s {
	case OrderStatusPendingPayment, OrderStatusWaitingConfirmation:
		return BookStatusBooked
	case OrderStatusProcessing, OrderStatusShipped, OrderStatusCompleted:
		return BookStatusSold
	case OrderStatusCancelled, OrderStatusPaymentRejected:
		return BookStatusAvailable
	default:
		return current
	}
}
