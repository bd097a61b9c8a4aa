package memory

import (
	"context"
	"slices"
	"time"

	"bookmarket/internal/domain/model"
	repo "bookmarket/internal/repository"
)

type orderItemRepo struct {
	s    *Store
	inTx bool
}

func (r *orderItemRepo) CreateBulk(_ context.Context, orderID int64, items []model.OrderItem) error {
	if len(items) == 0 {
		return nil
	}
	return r.s.write(r.inTx, func(st *state, now time.Time) error {
		if _, ok := st.orders[orderID]; !ok {
			return repo.ErrNotFound
		}
		for i := range items {
			st.itemSeq++
			items[i].ID = st.itemSeq
			items[i].OrderID = orderID
			items[i].CreatedAt = now
			st.items[items[i].ID] = items[i]
		}
		return nil
	})
}

func (r *orderItemRepo) ListByOrderID(_ context.Context, orderID int64) ([]model.OrderItem, error) {
	out := []model.OrderItem{}
	r.s.read(r.inTx, func(st *state) {
		for _, it := range st.items {
			if it.OrderID == orderID {
				out = append(out, it)
			}
		}
	})
	slices.SortFunc(out, func(a, b model.OrderItem) int { return int(a.ID - b.ID) })
	return out, nil
}

func (r *orderItemRepo) ListByOrderIDs(_ context.Context, orderIDs []int64) (map[int64][]model.OrderItem, error) {
	want := make(map[int64]bool, len(orderIDs))
	for _, id := range orderIDs {
		want[id] = true
	}

	byOrder := make(map[int64][]model.OrderItem, len(orderIDs))
	r.s.read(r.inTx, func(st *state) {
		for _, it := range st.items {
			if want[it.OrderID] {
				byOrder[it.OrderID] = append(byOrder[it.OrderID], it)
			}
		}
	})
	for _, items := range byOrder {
		slices.SortFunc(items, func(a, b model.OrderItem) int { return int(a.ID - b.ID) })
	}
	return byOrder, nil
}
