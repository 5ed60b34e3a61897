package service

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/callbook-service/internal/domain"
	"github.com/spec-kit/callbook-service/internal/repository"
	"github.com/spec-kit/callbook-service/internal/telephony"
)

type fakeUserRepo struct {
	createFn        func(ctx context.Context, user *domain.User) error
	getByUsernameFn func(ctx context.Context, username string) (*domain.User, error)
	existsFn        func(ctx context.Context, username, email string) (bool, error)
}

func (f *fakeUserRepo) Create(ctx context.Context, user *domain.User) error {
	if f.createFn == nil {
		user.ID = "u-new"
		return nil
	}
	return f.createFn(ctx, user)
}

func (f *fakeUserRepo) GetByID(context.Context, string) (*domain.User, error) {
	return nil, pgx.ErrNoRows
}

func (f *fakeUserRepo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	if f.getByUsernameFn == nil {
		return nil, pgx.ErrNoRows
	}
	return f.getByUsernameFn(ctx, username)
}

func (f *fakeUserRepo) ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error) {
	if f.existsFn == nil {
		return false, nil
	}
	return f.existsFn(ctx, username, email)
}

type fakeContactRepo struct {
	createFn      func(ctx context.Context, contact *domain.Contact) error
	updateFn      func(ctx context.Context, contact *domain.Contact) error
	deleteFn      func(ctx context.Context, userID, id string) error
	getByIDFn     func(ctx context.Context, userID, id string) (*domain.Contact, error)
	findByPhoneFn func(ctx context.Context, userID, phone string) (*domain.Contact, error)
	listFn        func(ctx context.Context, filter repository.ContactFilter) ([]domain.Contact, int, error)
}

func (f *fakeContactRepo) Create(ctx context.Context, contact *domain.Contact) error {
	if f.createFn == nil {
		contact.ID = "c-new"
		return nil
	}
	return f.createFn(ctx, contact)
}

func (f *fakeContactRepo) Update(ctx context.Context, contact *domain.Contact) error {
	if f.updateFn == nil {
		return nil
	}
	return f.updateFn(ctx, contact)
}

func (f *fakeContactRepo) Delete(ctx context.Context, userID, id string) error {
	if f.deleteFn == nil {
		return nil
	}
	return f.deleteFn(ctx, userID, id)
}

func (f *fakeContactRepo) GetByID(ctx context.Context, userID, id string) (*domain.Contact, error) {
	if f.getByIDFn == nil {
		return nil, pgx.ErrNoRows
	}
	return f.getByIDFn(ctx, userID, id)
}

func (f *fakeContactRepo) FindByPhone(ctx context.Context, userID, phone string) (*domain.Contact, error) {
	if f.findByPhoneFn == nil {
		return nil, pgx.ErrNoRows
	}
	return f.findByPhoneFn(ctx, userID, phone)
}

func (f *fakeContactRepo) List(ctx context.Context, filter repository.ContactFilter) ([]domain.Contact, int, error) {
	if f.listFn == nil {
		return []domain.Contact{}, 0, nil
	}
	return f.listFn(ctx, filter)
}

type fakeCallRepo struct {
	createFn       func(ctx context.Context, call *domain.Call) error
	updateFn       func(ctx context.Context, call *domain.Call) error
	getByCallSIDFn func(ctx context.Context, sid string) (*domain.Call, error)
	listFn         func(ctx context.Context, filter repository.CallFilter) ([]domain.Call, int, error)
}

func (f *fakeCallRepo) Create(ctx context.Context, call *domain.Call) error {
	if f.createFn == nil {
		return nil
	}
	return f.createFn(ctx, call)
}

func (f *fakeCallRepo) Update(ctx context.Context, call *domain.Call) error {
	if f.updateFn == nil {
		return nil
	}
	return f.updateFn(ctx, call)
}

func (f *fakeCallRepo) GetByCallSID(ctx context.Context, sid string) (*domain.Call, error) {
	if f.getByCallSIDFn == nil {
		return nil, pgx.ErrNoRows
	}
	return f.getByCallSIDFn(ctx, sid)
}

func (f *fakeCallRepo) List(ctx context.Context, filter repository.CallFilter) ([]domain.Call, int, error) {
	if f.listFn == nil {
		return []domain.Call{}, 0, nil
	}
	return f.listFn(ctx, filter)
}

type fakeProvider struct {
	initiateFn func(ctx context.Context, to string) (*telephony.CallResult, error)
	endFn      func(ctx context.Context, sid string) (*telephony.CallResult, error)
	calls      int
}

func (f *fakeProvider) InitiateCall(ctx context.Context, to string) (*telephony.CallResult, error) {
	f.calls++
	return f.initiateFn(ctx, to)
}

func (f *fakeProvider) EndCall(ctx context.Context, sid string) (*telephony.CallResult, error) {
	f.calls++
	return f.endFn(ctx, sid)
}
