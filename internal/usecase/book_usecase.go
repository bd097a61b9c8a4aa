package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"bookmarket/internal/domain/model"
	repo "bookmarket/internal/repository"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type BookUsecase struct {
	books repo.BookRepository
	tx    repo.TransactionManager
	clock Clock
	obs   OrderObserver
	log   *zap.Logger
}

// DI
func NewBookUsecase(
	books repo.BookRepository,
	tx repo.TransactionManager,
	clock Clock,
	obs OrderObserver,
	log *zap.Logger,
) *BookUsecase {
	return &BookUsecase{
		books: books,
		tx:    tx,
		clock: clock,
		obs:   observerOrNoop(obs),
		log:   log,
	}
}

type BookListInput struct {
	Page      int
	Limit     int
	Q         string
	Status    string
	Condition string
	SellerID  *int64
}

type BookInput struct {
	Title       string
	Description string
	Price       decimal.Decimal
	Condition   string
}

func (in BookInput) validate() error {
	if strings.TrimSpace(in.Title) == "" {
		return NewHTTPError(http.StatusBadRequest, "title required")
	}
	if len(strings.TrimSpace(in.Title)) > 255 {
		return NewHTTPError(http.StatusBadRequest, "title too long")
	}
	if strings.TrimSpace(in.Description) == "" {
		return NewHTTPError(http.StatusBadRequest, "description required")
	}
	if in.Price.IsNegative() {
		return NewHTTPError(http.StatusBadRequest, "price must be >= 0")
	}
	if !model.BookCondition(in.Condition).Valid() {
		return NewHTTPError(http.StatusBadRequest, "invalid condition")
	}
	return nil
}

// 公開一覧
func (u *BookUsecase) List(ctx context.Context, in BookListInput) (BookListOutput, error) {
	if in.Page < 1 {
		return BookListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid page")
	}
	if in.Limit < 1 || in.Limit > 100 {
		return BookListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid limit")
	}
	if len(in.Q) > 100 {
		return BookListOutput{}, NewHTTPError(http.StatusBadRequest, "q too long")
	}
	if in.Status != "" && !model.BookStatus(in.Status).Valid() {
		return BookListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid status")
	}
	if in.Condition != "" && !model.BookCondition(in.Condition).Valid() {
		return BookListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid condition")
	}

	books, total, err := u.books.List(ctx, repo.BookListQuery{
		Page:      in.Page,
		Limit:     in.Limit,
		Q:         strings.TrimSpace(in.Q),
		Status:    model.BookStatus(in.Status),
		Condition: model.BookCondition(in.Condition),
		SellerID:  in.SellerID,
	})
	if err != nil {
		return BookListOutput{}, internalError(u.log, err, "db error")
	}

	items := make([]BookOutput, 0, len(books))
	for _, b := range books {
		items = append(items, toBookOutput(b))
	}
	return BookListOutput{Items: items, Total: total, Page: in.Page, Limit: in.Limit}, nil
}

func (u *BookUsecase) Get(ctx context.Context, bookID int64) (BookOutput, error) {
	if bookID <= 0 {
		return BookOutput{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	b, err := u.books.FindByID(ctx, bookID)
	if errors.Is(err, repo.ErrNotFound) {
		return BookOutput{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return BookOutput{}, internalError(u.log, err, "db error", zap.Int64("book_id", bookID))
	}
	return toBookOutput(b), nil
}

// 出品。ステータスは必ず available から始まる。
func (u *BookUsecase) Create(ctx context.Context, sellerID int64, in BookInput) (BookOutput, error) {
	if sellerID <= 0 {
		return BookOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if err := in.validate(); err != nil {
		return BookOutput{}, err
	}

	b, err := u.books.Create(ctx, model.Book{
		SellerID:    sellerID,
		Title:       strings.TrimSpace(in.Title),
		Description: strings.TrimSpace(in.Description),
		Price:       in.Price,
		Condition:   model.BookCondition(in.Condition),
		Status:      model.BookStatusAvailable,
	})
	if err != nil {
		return BookOutput{}, internalError(u.log, err, "db error", zap.Int64("seller_id", sellerID))
	}
	return toBookOutput(b), nil
}

func (u *BookUsecase) Update(ctx context.Context, bookID int64, in BookInput) (BookOutput, error) {
	if bookID <= 0 {
		return BookOutput{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := in.validate(); err != nil {
		return BookOutput{}, err
	}

	err := u.books.Update(ctx, model.Book{
		ID:          bookID,
		Title:       strings.TrimSpace(in.Title),
		Description: strings.TrimSpace(in.Description),
		Price:       in.Price,
		Condition:   model.BookCondition(in.Condition),
	})
	if errors.Is(err, repo.ErrNotFound) {
		return BookOutput{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return BookOutput{}, internalError(u.log, err, "db error", zap.Int64("book_id", bookID))
	}
	return u.Get(ctx, bookID)
}

// 注文に使われた本は消せない
func (u *BookUsecase) Delete(ctx context.Context, bookID int64) error {
	if bookID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	referenced, err := u.books.IsReferenced(ctx, bookID)
	if err != nil {
		return internalError(u.log, err, "db error", zap.Int64("book_id", bookID))
	}
	if referenced {
		return NewHTTPError(http.StatusConflict, "book has orders")
	}

	err = u.books.Delete(ctx, bookID)
	if errors.Is(err, repo.ErrNotFound) {
		return NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return internalError(u.log, err, "db error", zap.Int64("book_id", bookID))
	}
	return nil
}

// まとめて削除。1冊でも無い/注文済みなら何も消さない。
func (u *BookUsecase) BulkDelete(ctx context.Context, ids []int64) (int, error) {
	if len(ids) == 0 {
		return 0, NewHTTPError(http.StatusBadRequest, "ids required")
	}
	seen := make(map[int64]struct{}, len(ids))
	uniq := make([]int64, 0, len(ids))
	for _, id := range ids {
		if id <= 0 {
			return 0, NewHTTPError(http.StatusBadRequest, "invalid id")
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		uniq = append(uniq, id)
	}

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		for _, id := range uniq {
			//注文との競合を避けるため先にロック
			if _, err := r.Books().FindByIDForUpdate(ctx, id); errors.Is(err, repo.ErrNotFound) {
				return NewHTTPError(http.StatusNotFound, fmt.Sprintf("book %d not found", id))
			} else if err != nil {
				return err
			}
			referenced, err := r.Books().IsReferenced(ctx, id)
			if err != nil {
				return err
			}
			if referenced {
				return NewHTTPError(http.StatusConflict, fmt.Sprintf("book %d has orders", id))
			}
		}
		for _, id := range uniq {
			if err := r.Books().Delete(ctx, id); err != nil {
				return fmt.Errorf("delete book %d: %w", id, err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, internalError(u.log, err, "db error", zap.Int64s("book_ids", uniq))
	}

	u.log.Info("books deleted", zap.Int64s("book_ids", uniq))
	return len(uniq), nil
}

// 管理者による上書き（available / sold のみ）。注文は見ない。
func (u *BookUsecase) OverrideStatus(ctx context.Context, adminID int64, bookID int64, status string) (BookOutput, error) {
	if adminID <= 0 {
		return BookOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if bookID <= 0 {
		return BookOutput{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	newStatus := model.BookStatus(strings.TrimSpace(status))
	if newStatus != model.BookStatusAvailable && newStatus != model.BookStatusSold {
		return BookOutput{}, NewHTTPError(http.StatusBadRequest, "status must be available or sold")
	}

	var out BookOutput
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		b, err := r.Books().FindByIDForUpdate(ctx, bookID)
		if errors.Is(err, repo.ErrNotFound) {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		if err != nil {
			return err
		}

		if err := r.Books().UpdateStatus(ctx, bookID, newStatus); err != nil {
			return err
		}
		if err := writeAudit(ctx, r, adminID, model.AuditActionUpdateBookStatus, model.AuditResourceBook, bookID,
			map[string]any{"status": b.Status},
			map[string]any{"status": newStatus},
			u.clock.Now(),
		); err != nil {
			return err
		}

		b.Status = newStatus
		out = toBookOutput(b)
		return nil
	})
	if err != nil {
		return BookOutput{}, internalError(u.log, err, "db error", zap.Int64("book_id", bookID))
	}

	u.obs.ObserveBookStatus(string(newStatus))
	u.log.Info("book status overridden", zap.Int64("book_id", bookID), zap.String("status", string(newStatus)))
	return out, nil
}

// 最新注文からステータスを決め直す（ずれた時の修復用）
func (u *BookUsecase) Recompute(ctx context.Context, bookID int64) (BookOutput, error) {
	if bookID <= 0 {
		return BookOutput{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var out BookOutput
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		status, changed, err := syncBookStatus(ctx, r, bookID)
		if errors.Is(err, repo.ErrNotFound) {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		if err != nil {
			return err
		}
		if changed {
			u.obs.ObserveBookStatus(string(status))
		}

		b, err := r.Books().FindByID(ctx, bookID)
		if err != nil {
			return err
		}
		out = toBookOutput(b)
		return nil
	})
	if err != nil {
		return BookOutput{}, internalError(u.log, err, "db error", zap.Int64("book_id", bookID))
	}
	return out, nil
}
