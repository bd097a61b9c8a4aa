package memory

import (
	"context"
	"time"

	"bookmarket/internal/domain/model"
	repo "bookmarket/internal/repository"
)

type paymentProofRepo struct {
	s    *Store
	inTx bool
}

func (r *paymentProofRepo) FindByOrderID(_ context.Context, orderID int64) (model.PaymentProof, bool, error) {
	var (
		p  model.PaymentProof
		ok bool
	)
	r.s.read(r.inTx, func(st *state) { p, ok = st.proofs[orderID] })
	return p, ok, nil
}

func (r *paymentProofRepo) Create(_ context.Context, proof model.PaymentProof) (model.PaymentProof, error) {
	err := r.s.write(r.inTx, func(st *state, _ time.Time) error {
		if _, exists := st.proofs[proof.OrderID]; exists {
			return repo.ErrDuplicate
		}
		st.proofSeq++
		proof.ID = st.proofSeq
		st.proofs[proof.OrderID] = proof
		return nil
	})
	if err != nil {
		return model.PaymentProof{}, err
	}
	return proof, nil
}

func (r *paymentProofRepo) MarkVerified(_ context.Context, orderID int64, verifiedBy int64, verifiedAt time.Time, notes *string) error {
	return r.s.write(r.inTx, func(st *state, _ time.Time) error {
		p, ok := st.proofs[orderID]
		if !ok {
			return repo.ErrNotFound
		}
		at := verifiedAt
		by := verifiedBy
		p.VerifiedAt = &at
		p.VerifiedBy = &by
		if notes != nil {
			p.Notes = *notes
		}
		st.proofs[orderID] = p
		return nil
	})
}
