package usecase

import (
	"context"
	"fmt"

	"bookmarket/internal/domain/model"
	repo "bookmarket/internal/repository"
)

// 本を含む最新の注文から本のステータスを決め直す。
// 注文が無ければ available。変化が無ければ書き込まない。
func syncBookStatus(ctx context.Context, r repo.TxRepos, bookID int64) (status model.BookStatus, changed bool, err error) {
	book, err := r.Books().FindByIDForUpdate(ctx, bookID)
	if err != nil {
		return "", false, fmt.Errorf("lock book %d: %w", bookID, err)
	}

	latest, found, err := r.Orders().FindLatestByBookID(ctx, bookID)
	if err != nil {
		return "", false, fmt.Errorf("latest order for book %d: %w", bookID, err)
	}

	target := model.BookStatusAvailable
	if found {
		target = model.BookStatusForOrder(latest.Status, book.Status)
	}
	if target == book.Status {
		return target, false, nil
	}

	if err := r.Books().UpdateStatus(ctx, bookID, target); err != nil {
		return "", false, fmt.Errorf("update book %d status: %w", bookID, err)
	}
	return target, true, nil
}

// 注文明細の本をまとめて決め直す
func syncOrderBooks(ctx context.Context, r repo.TxRepos, items []model.OrderItem, obs OrderObserver) error {
	for _, bookID := range uniqueBookIDs(items) {
		status, changed, err := syncBookStatus(ctx, r, bookID)
		if err != nil {
			return err
		}
		if changed {
			obs.ObserveBookStatus(string(status))
		}
	}
	return nil
}

// 承認時は最新注文を見ずに sold にする
func markOrderBooksSold(ctx context.Context, r repo.TxRepos, items []model.OrderItem, obs OrderObserver) error {
	for _, bookID := range uniqueBookIDs(items) {
		if err := r.Books().UpdateStatus(ctx, bookID, model.BookStatusSold); err != nil {
			return fmt.Errorf("mark book %d sold: %w", bookID, err)
		}
		obs.ObserveBookStatus(string(model.BookStatusSold))
	}
	return nil
}

func uniqueBookIDs(items []model.OrderItem) []int64 {
	seen := make(map[int64]bool, len(items))
	ids := make([]int64, 0, len(items))
	for _, it := range items {
		if seen[it.BookID] {
			continue
		}
		seen[it.BookID] = true
		ids = append(ids, it.BookID)
	}
	return ids
}
