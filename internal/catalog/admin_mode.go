package catalog

import (
	"context"

	"github.com/pawonsalam/restosuite/internal/kvstore"
)

const adminModeOn = "true"

// AdminMode is the persisted flag that unlocks the admin panel.
type AdminMode struct {
	store kvstore.Store
}

func NewAdminMode(store kvstore.Store) *AdminMode {
	return &AdminMode{store: store}
}

func (a *AdminMode) Enabled(ctx context.Context) (bool, error) {
	v, ok, err := a.store.Get(ctx, kvstore.KeyAdminMode)
	if err != nil || !ok {
		return false, err
	}
	return string(v) == adminModeOn, nil
}

func (a *AdminMode) Enable(ctx context.Context) error {
	return a.store.Set(ctx, kvstore.KeyAdminMode, []byte(adminModeOn))
}

func (a *AdminMode) Disable(ctx context.Context) error {
	return a.store.Delete(ctx, kvstore.KeyAdminMode)
}
