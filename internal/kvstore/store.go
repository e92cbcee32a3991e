// Package kvstore is the durable key-value store behind the menu app. It holds
// named JSON records and named binary assets.
package kvstore

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"
)

const (
	KeyMenuItems     = "menu_items_data"
	KeyCategories    = "pawon_categories_custom"
	KeyAdminMode     = "pawon_admin_mode"
	KeyOrders        = "orders_data"
	CartNamespace    = "pawon-salam-cart-storage"
	AssetHeaderImage = "headerImage"
	menuImagePrefix  = "menu_image_"
)

// MenuImageKey names the asset holding the uploaded image of a menu item.
func MenuImageKey(itemID string) string {
	return menuImagePrefix + itemID
}

// CartKey names the record holding the cart identified by cartID.
func CartKey(cartID string) string {
	return CartNamespace + ":" + cartID
}

type Blob struct {
	MimeType string
	Data     []byte
}

// Tx stages writes inside Store.Update. Nothing is visible to readers until
// the update function returns nil. Get sees the transaction's own writes.
type Tx interface {
	Get(key string) ([]byte, bool, error)
	Set(key string, value []byte) error
	Delete(key string) error
	SetAsset(key string, blob *Blob) error
	DeleteAsset(key string) error
}

// Store is implemented by the memory and sqlite backends. A missing key is
// reported through the bool result, never as an error. Deletes are idempotent.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	GetAsset(ctx context.Context, key string) (*Blob, bool, error)
	SetAsset(ctx context.Context, key string, blob *Blob) error
	DeleteAsset(ctx context.Context, key string) error
	Update(ctx context.Context, fn func(tx Tx) error) error
	Close() error
}

// GetJSON decodes the record at key into v.
func GetJSON(ctx context.Context, s Store, key string, v interface{}) (bool, error) {
	raw, ok, err := s.Get(ctx, key)
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return false, errors.Wrapf(err, "decoding record %s", key)
	}
	return true, nil
}

func SetJSON(ctx context.Context, s Store, key string, v interface{}) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return errors.Wrapf(err, "encoding record %s", key)
	}
	return s.Set(ctx, key, raw)
}

// GetJSONTx is GetJSON inside an Update.
func GetJSONTx(tx Tx, key string, v interface{}) (bool, error) {
	raw, ok, err := tx.Get(key)
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return false, errors.Wrapf(err, "decoding record %s", key)
	}
	return true, nil
}

// SetJSONTx is SetJSON inside an Update.
func SetJSONTx(tx Tx, key string, v interface{}) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return errors.Wrapf(err, "encoding record %s", key)
	}
	return tx.Set(key, raw)
}

// Open returns the backend named by driver.
func Open(driver, sqlitePath string) (Store, error) {
	switch driver {
	case "", "memory":
		return NewMemoryStore(), nil
	case "sqlite":
		return NewSQLiteStore(sqlitePath)
	default:
		return nil, errors.Errorf("unknown storage driver %q", driver)
	}
}
