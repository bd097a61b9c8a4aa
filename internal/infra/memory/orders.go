package memory

import (
	"context"
	"slices"
	"time"

	"bookmarket/internal/domain/model"
	repo "bookmarket/internal/repository"

	"github.com/shopspring/decimal"
)

type orderRepo struct {
	s    *Store
	inTx bool
}

// 新しい順（created_at desc, id desc）
func newestFirst(a, b model.Order) int {
	if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
		return c
	}
	return int(b.ID - a.ID)
}

func (r *orderRepo) FindByID(_ context.Context, orderID int64) (model.Order, error) {
	var (
		o  model.Order
		ok bool
	)
	r.s.read(r.inTx, func(st *state) { o, ok = st.orders[orderID] })
	if !ok {
		return model.Order{}, repo.ErrNotFound
	}
	return o, nil
}

// Tx は txMu で直列化済みなので FindByID と同じ
func (r *orderRepo) FindByIDForUpdate(ctx context.Context, orderID int64) (model.Order, error) {
	return r.FindByID(ctx, orderID)
}

func (r *orderRepo) ListByCustomerID(_ context.Context, customerID int64, page int, limit int) ([]model.Order, int64, error) {
	var all []model.Order
	r.s.read(r.inTx, func(st *state) {
		for _, o := range st.orders {
			if o.CustomerID == customerID {
				all = append(all, o)
			}
		}
	})
	slices.SortFunc(all, func(a, b model.Order) int { return int(b.ID - a.ID) })
	return paginate(all, page, limit), int64(len(all)), nil
}

func (r *orderRepo) Create(_ context.Context, order model.Order) (int64, error) {
	var id int64
	err := r.s.write(r.inTx, func(st *state, now time.Time) error {
		st.orderSeq++
		order.ID = st.orderSeq
		order.CreatedAt = now
		order.UpdatedAt = now
		st.orders[order.ID] = order
		id = order.ID
		return nil
	})
	return id, err
}

func (r *orderRepo) UpdateStatus(_ context.Context, orderID int64, status model.OrderStatus) error {
	return r.s.write(r.inTx, func(st *state, now time.Time) error {
		o, ok := st.orders[orderID]
		if !ok {
			return repo.ErrNotFound
		}
		o.Status = status
		o.UpdatedAt = now
		st.orders[orderID] = o
		return nil
	})
}

func (r *orderRepo) MarkShipped(_ context.Context, orderID int64, trackingNumber string, shippingMethod string) error {
	return r.s.write(r.inTx, func(st *state, now time.Time) error {
		o, ok := st.orders[orderID]
		if !ok {
			return repo.ErrNotFound
		}
		o.Status = model.OrderStatusShipped
		o.TrackingNumber = trackingNumber
		o.ShippingMethod = shippingMethod
		o.UpdatedAt = now
		st.orders[orderID] = o
		return nil
	})
}

func (r *orderRepo) FindLatestByBookID(_ context.Context, bookID int64) (model.Order, bool, error) {
	var candidates []model.Order
	r.s.read(r.inTx, func(st *state) {
		seen := map[int64]bool{}
		for _, it := range st.items {
			if it.BookID != bookID || seen[it.OrderID] {
				continue
			}
			if o, ok := st.orders[it.OrderID]; ok {
				seen[it.OrderID] = true
				candidates = append(candidates, o)
			}
		}
	})
	if len(candidates) == 0 {
		return model.Order{}, false, nil
	}
	slices.SortFunc(candidates, newestFirst)
	return candidates[0], true, nil
}

func (r *orderRepo) ListAdmin(_ context.Context, f repo.AdminOrderListFilter) ([]model.Order, int64, error) {
	if f.Page <= 0 {
		f.Page = 1
	}
	if f.Limit <= 0 || f.Limit > 100 {
		f.Limit = 50
	}

	var all []model.Order
	r.s.read(r.inTx, func(st *state) {
		for _, o := range st.orders {
			if f.Status != "" && string(o.Status) != f.Status {
				continue
			}
			if f.CustomerID != nil && o.CustomerID != *f.CustomerID {
				continue
			}
			if f.From != nil && o.CreatedAt.Before(*f.From) {
				continue
			}
			if f.To != nil && o.CreatedAt.After(*f.To) {
				continue
			}
			all = append(all, o)
		}
	})
	slices.SortFunc(all, func(a, b model.Order) int { return int(b.ID - a.ID) })
	return paginate(all, f.Page, f.Limit), int64(len(all)), nil
}

func (r *orderRepo) Count(_ context.Context, status model.OrderStatus) (int64, error) {
	var n int64
	r.s.read(r.inTx, func(st *state) {
		for _, o := range st.orders {
			if status == "" || o.Status == status {
				n++
			}
		}
	})
	return n, nil
}

func (r *orderRepo) SumTotal(_ context.Context, status model.OrderStatus) (decimal.Decimal, error) {
	sum := decimal.Zero
	r.s.read(r.inTx, func(st *state) {
		for _, o := range st.orders {
			if status == "" || o.Status == status {
				sum = sum.Add(o.Total)
			}
		}
	})
	return sum, nil
}
