package memory

import (
	"context"
	"slices"
	"strings"
	"time"

	"bookmarket/internal/domain/model"
	repo "bookmarket/internal/repository"
)

type bookRepo struct {
	s    *Store
	inTx bool
}

func (r *bookRepo) List(_ context.Context, q repo.BookListQuery) ([]model.Book, int64, error) {
	needle := strings.ToLower(strings.TrimSpace(q.Q))

	var all []model.Book
	r.s.read(r.inTx, func(st *state) {
		for _, b := range st.books {
			if needle != "" &&
				!strings.Contains(strings.ToLower(b.Title), needle) &&
				!strings.Contains(strings.ToLower(b.Description), needle) {
				continue
			}
			if q.Status != "" && b.Status != q.Status {
				continue
			}
			if q.Condition != "" && b.Condition != q.Condition {
				continue
			}
			if q.SellerID != nil && b.SellerID != *q.SellerID {
				continue
			}
			all = append(all, b)
		}
	})

	// 新しい順
	slices.SortFunc(all, func(a, b model.Book) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return int(b.ID - a.ID)
	})

	return paginate(all, q.Page, q.Limit), int64(len(all)), nil
}

func (r *bookRepo) FindByID(_ context.Context, id int64) (model.Book, error) {
	var (
		b  model.Book
		ok bool
	)
	r.s.read(r.inTx, func(st *state) { b, ok = st.books[id] })
	if !ok {
		return model.Book{}, repo.ErrNotFound
	}
	return b, nil
}

// Tx自体が直列なので通常の取得と同じ
func (r *bookRepo) FindByIDForUpdate(ctx context.Context, id int64) (model.Book, error) {
	return r.FindByID(ctx, id)
}

func (r *bookRepo) Create(_ context.Context, b model.Book) (model.Book, error) {
	err := r.s.write(r.inTx, func(st *state, now time.Time) error {
		st.bookSeq++
		b.ID = st.bookSeq
		if b.Status == "" {
			b.Status = model.BookStatusAvailable
		}
		b.CreatedAt = now
		b.UpdatedAt = now
		st.books[b.ID] = b
		return nil
	})
	if err != nil {
		return model.Book{}, err
	}
	return b, nil
}

func (r *bookRepo) Update(_ context.Context, b model.Book) error {
	return r.s.write(r.inTx, func(st *state, now time.Time) error {
		cur, ok := st.books[b.ID]
		if !ok {
			return repo.ErrNotFound
		}
		cur.Title = b.Title
		cur.Description = b.Description
		cur.Price = b.Price
		cur.Condition = b.Condition
		cur.UpdatedAt = now
		st.books[b.ID] = cur
		return nil
	})
}

func (r *bookRepo) UpdateStatus(_ context.Context, id int64, status model.BookStatus) error {
	return r.s.write(r.inTx, func(st *state, now time.Time) error {
		cur, ok := st.books[id]
		if !ok {
			return repo.ErrNotFound
		}
		cur.Status = status
		cur.UpdatedAt = now
		st.books[id] = cur
		return nil
	})
}

func (r *bookRepo) Delete(_ context.Context, id int64) error {
	return r.s.write(r.inTx, func(st *state, _ time.Time) error {
		if _, ok := st.books[id]; !ok {
			return repo.ErrNotFound
		}
		delete(st.books, id)
		return nil
	})
}

func (r *bookRepo) IsReferenced(_ context.Context, id int64) (bool, error) {
	var found bool
	r.s.read(r.inTx, func(st *state) {
		for _, it := range st.items {
			if it.BookID == id {
				found = true
				return
			}
		}
	})
	return found, nil
}

func (r *bookRepo) Count(_ context.Context, status model.BookStatus) (int64, error) {
	var n int64
	r.s.read(r.inTx, func(st *state) {
		for _, b := range st.books {
			if status == "" || b.Status == status {
				n++
			}
		}
	})
	return n, nil
}
