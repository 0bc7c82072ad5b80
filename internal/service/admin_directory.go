package service

import (
	"context"
	"time"

	"bookreview-be/internal/entity"
	"bookreview-be/internal/repository/unitofwork"

	"github.com/patrickmn/go-cache"
)

const activeAdminsKey = "active-admins"

// AdminDirectory lists the active administrators who receive refund request emails.
// The list is cached briefly since every refund request needs it.
type AdminDirectory struct {
	uowFactory unitofwork.RepositoryFactory
	cache      *cache.Cache
}

func NewAdminDirectory(uowFactory unitofwork.RepositoryFactory, ttl time.Duration) *AdminDirectory {
	return &AdminDirectory{
		uowFactory: uowFactory,
		cache:      cache.New(ttl, 2*ttl),
	}
}

func (d *AdminDirectory) ActiveAdmins(ctx context.Context) ([]*entity.User, error) {
	if x, found := d.cache.Get(activeAdminsKey); found {
		return x.([]*entity.User), nil
	}

	uow := d.uowFactory.NewUnitOfWork(ctx)
	admins, err := uow.UserRepository().FindActiveByRole(ctx, entity.UserRoleAdmin)
	if err != nil {
		return nil, err
	}
	d.cache.Set(activeAdminsKey, admins, cache.DefaultExpiration)
	return admins, nil
}

// Invalidate drops the cached list, e.g. after an admin is suspended.
func (d *AdminDirectory) Invalidate() {
	d.cache.Delete(activeAdminsKey)
}
