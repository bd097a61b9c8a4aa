package memory

import (
	"context"
	"maps"
	"slices"
	"sync"
	"time"

	"bookmarket/internal/domain/model"
	repo "bookmarket/internal/repository"
)

// Store はDB無しで動くリポジトリ一式。
// 書き込みTxは txMu で1本ずつ実行されるので、行ロックより粗いが直列化の性質は同じ。
// fn がエラーを返したらTx開始時点のスナップショットに戻す。
type Store struct {
	txMu sync.Mutex

	mu sync.RWMutex
	st state

	now func() time.Time
}

type state struct {
	users  map[int64]model.User
	books  map[int64]model.Book
	orders map[int64]model.Order
	items  map[int64]model.OrderItem
	proofs map[int64]model.PaymentProof // key: order_id
	audits []model.AuditLog

	userSeq, bookSeq, orderSeq, itemSeq, proofSeq, auditSeq int64
}

func (s state) clone() state {
	c := s
	c.users = maps.Clone(s.users)
	c.books = maps.Clone(s.books)
	c.orders = maps.Clone(s.orders)
	c.items = maps.Clone(s.items)
	c.proofs = maps.Clone(s.proofs)
	c.audits = slices.Clone(s.audits)
	return c
}

func NewStore() *Store {
	return &Store{
		st: state{
			users:  map[int64]model.User{},
			books:  map[int64]model.Book{},
			orders: map[int64]model.Order{},
			items:  map[int64]model.OrderItem{},
			proofs: map[int64]model.PaymentProof{},
		},
		now: time.Now,
	}
}

// テスト用に時計を差し替える
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

func (s *Store) Users() repo.UserRepository                 { return &userRepo{s: s} }
func (s *Store) Books() repo.BookRepository                 { return &bookRepo{s: s} }
func (s *Store) Orders() repo.OrderRepository               { return &orderRepo{s: s} }
func (s *Store) OrderItems() repo.OrderItemRepository       { return &orderItemRepo{s: s} }
func (s *Store) PaymentProofs() repo.PaymentProofRepository { return &paymentProofRepo{s: s} }
func (s *Store) AuditLogs() repo.AuditLogRepository         { return &auditLogRepo{s: s} }

type txRepos struct {
	s *Store
}

func (r txRepos) Books() repo.BookRepository           { return &bookRepo{s: r.s, inTx: true} }
func (r txRepos) Orders() repo.OrderRepository         { return &orderRepo{s: r.s, inTx: true} }
func (r txRepos) OrderItems() repo.OrderItemRepository { return &orderItemRepo{s: r.s, inTx: true} }
func (r txRepos) PaymentProofs() repo.PaymentProofRepository {
	return &paymentProofRepo{s: r.s, inTx: true}
}
func (r txRepos) AuditLogs() repo.AuditLogRepository { return &auditLogRepo{s: r.s, inTx: true} }

func (s *Store) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.RLock()
	snapshot := s.st.clone()
	s.mu.RUnlock()

	if err := fn(txRepos{s: s}); err != nil {
		s.mu.Lock()
		s.st = snapshot
		s.mu.Unlock()
		return err
	}
	return nil
}

// Tx外の書き込みも他のTxと直列化する
func (s *Store) write(inTx bool, fn func(st *state, now time.Time) error) error {
	if !inTx {
		s.txMu.Lock()
		defer s.txMu.Unlock()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(&s.st, s.now())
}

// Tx外の読み込みは実行中のTxが終わるまで待つ（未コミットの状態を見せない）
func (s *Store) read(inTx bool, fn func(st *state)) {
	if !inTx {
		s.txMu.Lock()
		defer s.txMu.Unlock()
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn(&s.st)
}

// 1始まりのページ切り出し
func paginate[T any](all []T, page, limit int) []T {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		return all
	}
	start := (page - 1) * limit
	if start >= len(all) {
		return []T{}
	}
	end := min(start+limit, len(all))
	return all[start:end]
}
