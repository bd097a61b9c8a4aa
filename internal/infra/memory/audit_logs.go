package memory

import (
	"context"
	"slices"
	"time"

	"bookmarket/internal/domain/model"
	repo "bookmarket/internal/repository"
)

type auditLogRepo struct {
	s    *Store
	inTx bool
}

func (r *auditLogRepo) Create(_ context.Context, log model.AuditLog) error {
	return r.s.write(r.inTx, func(st *state, now time.Time) error {
		st.auditSeq++
		log.ID = st.auditSeq
		if log.CreatedAt.IsZero() {
			log.CreatedAt = now
		}
		st.audits = append(st.audits, log)
		return nil
	})
}

func (r *auditLogRepo) List(_ context.Context, f repo.AuditLogFilter) ([]model.AuditLog, int64, error) {
	var out []model.AuditLog
	r.s.read(r.inTx, func(st *state) {
		for _, l := range st.audits {
			if f.ActorUserID != nil && l.ActorUserID != *f.ActorUserID {
				continue
			}
			if f.Action != "" && l.Action != f.Action {
				continue
			}
			if f.ResourceType != "" && l.ResourceType != f.ResourceType {
				continue
			}
			if f.ResourceID != nil && l.ResourceID != *f.ResourceID {
				continue
			}
			if f.From != nil && l.CreatedAt.Before(*f.From) {
				continue
			}
			if f.To != nil && l.CreatedAt.After(*f.To) {
				continue
			}
			out = append(out, l)
		}
	})

	slices.SortFunc(out, func(a, b model.AuditLog) int { return int(b.ID - a.ID) })
	return paginate(out, f.Page, f.Limit), int64(len(out)), nil
}
