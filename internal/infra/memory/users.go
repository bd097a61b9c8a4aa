package memory

import (
	"context"
	"strings"
	"time"

	"bookmarket/internal/domain/model"
	repo "bookmarket/internal/repository"
)

type userRepo struct {
	s *Store
}

func (r *userRepo) Create(_ context.Context, user model.User) (model.User, error) {
	err := r.s.write(false, func(st *state, now time.Time) error {
		for _, u := range st.users {
			if strings.EqualFold(u.Email, user.Email) {
				return repo.ErrDuplicate
			}
		}
		st.userSeq++
		user.ID = st.userSeq
		user.CreatedAt = now
		user.UpdatedAt = now
		st.users[user.ID] = user
		return nil
	})
	if err != nil {
		return model.User{}, err
	}
	return user, nil
}

func (r *userRepo) FindByID(_ context.Context, userID int64) (model.User, error) {
	var (
		u  model.User
		ok bool
	)
	r.s.read(false, func(st *state) { u, ok = st.users[userID] })
	if !ok {
		return model.User{}, repo.ErrNotFound
	}
	return u, nil
}

func (r *userRepo) FindByEmail(_ context.Context, email string) (model.User, error) {
	var (
		found model.User
		ok    bool
	)
	r.s.read(false, func(st *state) {
		for _, u := range st.users {
			if strings.EqualFold(u.Email, email) {
				found, ok = u, true
				return
			}
		}
	})
	if !ok {
		return model.User{}, repo.ErrNotFound
	}
	return found, nil
}

func (r *userRepo) UpdateProfile(_ context.Context, userID int64, fullName, phone, address string) error {
	return r.s.write(false, func(st *state, now time.Time) error {
		u, ok := st.users[userID]
		if !ok {
			return repo.ErrNotFound
		}
		u.FullName = fullName
		u.Phone = phone
		u.Address = address
		u.UpdatedAt = now
		st.users[userID] = u
		return nil
	})
}

func (r *userRepo) Count(_ context.Context, role model.Role) (int64, error) {
	var n int64
	r.s.read(false, func(st *state) {
		for _, u := range st.users {
			if role == "" || u.Role == role {
				n++
			}
		}
	})
	return n, nil
}
