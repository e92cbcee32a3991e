// Package catalog owns the menu: seeding, hydration of stored images, admin
// commits, categories and the header image.
package catalog

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/juju/clock"
	"github.com/pawonsalam/restosuite/internal/dataurl"
	"github.com/pawonsalam/restosuite/internal/events"
	"github.com/pawonsalam/restosuite/internal/kvstore"
	"github.com/pawonsalam/restosuite/internal/logger"
	"github.com/pawonsalam/restosuite/internal/models"
	"github.com/pkg/errors"
)

const assetPathPrefix = "/assets/"

var (
	ErrSuperseded        = errors.New("save superseded by a newer save")
	ErrInvalidImage      = errors.New("invalid image")
	ErrEmptyCategory     = errors.New("category name is empty")
	ErrDuplicateCategory = errors.New("category already exists")
	ErrItemNotFound      = errors.New("menu item not found")
)

// Version identifies one save operation. Later BeginSave calls return larger
// versions.
type Version uint64

type Service struct {
	store  kvstore.Store
	clock  clock.Clock
	output events.OutputDestination
	topic  string

	mu        sync.Mutex
	issued    Version
	committed Version
}

func NewService(store kvstore.Store, clk clock.Clock, output events.OutputDestination, topic string) *Service {
	if clk == nil {
		clk = clock.WallClock
	}
	if output == nil {
		output = events.Discard{}
	}
	return &Service{store: store, clock: clk, output: output, topic: topic}
}

// AssetURL is the path under which the menu server exposes a stored asset.
func AssetURL(key string) string {
	return assetPathPrefix + key
}

// Load returns the stored catalog, seeding it from the defaults on first run.
// When the store fails the defaults are returned together with the error.
func (s *Service) Load(ctx context.Context) ([]models.MenuItem, error) {
	var items []models.MenuItem
	ok, err := kvstore.GetJSON(ctx, s.store, kvstore.KeyMenuItems, &items)
	if err != nil {
		return DefaultMenuItems(), errors.Wrap(err, "loading menu")
	}
	if !ok {
		if items, err = s.seed(ctx); err != nil {
			return DefaultMenuItems(), errors.Wrap(err, "seeding menu")
		}
	}
	return s.hydrate(ctx, items)
}

// seed writes the defaults unless a commit landed after Load saw the record
// missing, in which case the committed catalog is returned instead.
func (s *Service) seed(ctx context.Context) ([]models.MenuItem, error) {
	var items []models.MenuItem
	seeded := false
	err := s.store.Update(ctx, func(tx kvstore.Tx) error {
		items, seeded = nil, false
		ok, err := kvstore.GetJSONTx(tx, kvstore.KeyMenuItems, &items)
		if err != nil || ok {
			return err
		}
		items, seeded = DefaultMenuItems(), true
		return kvstore.SetJSONTx(tx, kvstore.KeyMenuItems, items)
	})
	if err != nil {
		return nil, err
	}
	if seeded {
		logger.GetLogger().Infow("seeded default menu", "items", len(items))
	}
	return items, nil
}

func (s *Service) hydrate(ctx context.Context, items []models.MenuItem) ([]models.MenuItem, error) {
	for i := range items {
		key := kvstore.MenuImageKey(items[i].ID)
		_, ok, err := s.store.GetAsset(ctx, key)
		if err != nil {
			return DefaultMenuItems(), errors.Wrapf(err, "loading image for item %s", items[i].ID)
		}
		if ok {
			items[i].ImageURL = AssetURL(key)
		}
	}
	return items, nil
}

// Item returns a single hydrated menu item.
func (s *Service) Item(ctx context.Context, id string) (models.MenuItem, error) {
	items, err := s.Load(ctx)
	if err != nil {
		return models.MenuItem{}, err
	}
	for _, item := range items {
		if item.ID == id {
			return item, nil
		}
	}
	return models.MenuItem{}, ErrItemNotFound
}

// Asset returns a stored image by key.
func (s *Service) Asset(ctx context.Context, key string) (*kvstore.Blob, bool, error) {
	return s.store.GetAsset(ctx, key)
}

// NewDraftItem builds the placeholder entry added from the admin panel.
func NewDraftItem(category string, now time.Time) models.MenuItem {
	if category == "" || category == models.CategoryBestseller {
		category = models.CategoryMainCourse
	}
	return models.MenuItem{
		ID:          strconv.FormatInt(now.UnixMilli(), 10),
		Name:        "Menu Baru",
		Description: "Deskripsi menu baru",
		Price:       0,
		ImageURL:    PlaceholderImageURL,
		Category:    category,
	}
}

func (s *Service) NewDraftItem(category string) models.MenuItem {
	return NewDraftItem(category, s.clock.Now())
}

// BeginSave issues the version a subsequent Commit must present.
func (s *Service) BeginSave() Version {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.issued++
	return s.issued
}

type stagedAsset struct {
	key  string
	blob *kvstore.Blob
}

// Commit replaces the whole catalog. Inline images are validated first, then
// every new asset and the catalog record are written in a single store
// update. A commit older than the last successful one returns ErrSuperseded
// and changes nothing.
func (s *Service) Commit(ctx context.Context, version Version, items []models.MenuItem) ([]models.MenuItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if version < s.committed {
		return nil, ErrSuperseded
	}

	now := s.clock.Now().UTC()
	next := make([]models.MenuItem, len(items))
	var staged []stagedAsset
	for i, item := range items {
		switch {
		case dataurl.IsDataURL(item.ImageURL):
			blob, err := dataurl.Parse(item.ImageURL)
			if err != nil {
				return nil, errors.Wrapf(ErrInvalidImage, "item %s: %v", item.ID, err)
			}
			staged = append(staged, stagedAsset{
				key:  kvstore.MenuImageKey(item.ID),
				blob: &kvstore.Blob{MimeType: blob.MimeType, Data: blob.Data},
			})
			item.ImageURL = seedImageURL(item.ID)
		case strings.HasPrefix(item.ImageURL, assetPathPrefix):
			item.ImageURL = seedImageURL(item.ID)
		}
		stamp := now
		item.UpdatedAt = &stamp
		next[i] = item
	}

	err := s.store.Update(ctx, func(tx kvstore.Tx) error {
		for _, a := range staged {
			if err := tx.SetAsset(a.key, a.blob); err != nil {
				return err
			}
		}
		return kvstore.SetJSONTx(tx, kvstore.KeyMenuItems, next)
	})
	if err != nil {
		return nil, errors.Wrap(err, "committing menu")
	}
	s.committed = version

	s.publish(models.MenuEvent{
		Type:      models.EventMenuCommitted,
		Version:   uint64(version),
		ItemCount: len(next),
		Timestamp: now.UnixMilli(),
	})

	hydrated, err := s.hydrate(ctx, next)
	if err != nil {
		// the commit is durable; callers get the stored items without image URLs
		logger.GetLogger().Warnw("failed to hydrate committed menu", "version", version, "error", err)
		return next, nil
	}
	return hydrated, nil
}

func (s *Service) publish(event models.MenuEvent) {
	raw, err := json.Marshal(event)
	if err == nil {
		err = s.output.WriteMessage(s.topic, raw)
	}
	if err != nil {
		logger.GetLogger().Warnw("failed to publish menu event", "version", event.Version, "error", err)
	}
}

// Categories returns the stored category list or the defaults.
func (s *Service) Categories(ctx context.Context) ([]string, error) {
	var categories []string
	ok, err := kvstore.GetJSON(ctx, s.store, kvstore.KeyCategories, &categories)
	if err != nil {
		return DefaultCategories(), errors.Wrap(err, "loading categories")
	}
	if !ok {
		return DefaultCategories(), nil
	}
	return categories, nil
}

func (s *Service) AddCategory(ctx context.Context, name string) ([]string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyCategory
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	categories, err := s.Categories(ctx)
	if err != nil {
		return nil, err
	}
	for _, c := range categories {
		if c == name {
			return nil, ErrDuplicateCategory
		}
	}
	categories = append(categories, name)
	if err := kvstore.SetJSON(ctx, s.store, kvstore.KeyCategories, categories); err != nil {
		return nil, errors.Wrap(err, "saving categories")
	}
	return categories, nil
}

// SetHeaderImage stores a new header image given as a data URL.
func (s *Service) SetHeaderImage(ctx context.Context, image string) (string, error) {
	blob, err := dataurl.Parse(image)
	if err != nil {
		return "", errors.Wrap(ErrInvalidImage, err.Error())
	}
	err = s.store.SetAsset(ctx, kvstore.AssetHeaderImage, &kvstore.Blob{MimeType: blob.MimeType, Data: blob.Data})
	if err != nil {
		return "", errors.Wrap(err, "saving header image")
	}
	return AssetURL(kvstore.AssetHeaderImage), nil
}

func (s *Service) HeaderImage(ctx context.Context) (string, error) {
	_, ok, err := s.store.GetAsset(ctx, kvstore.AssetHeaderImage)
	if err != nil {
		return DefaultHeaderImageURL, errors.Wrap(err, "loading header image")
	}
	if !ok {
		return DefaultHeaderImageURL, nil
	}
	return AssetURL(kvstore.AssetHeaderImage), nil
}

// Reset drops every local change: categories, uploaded images, the header
// image and the catalog itself. The next Load reseeds.
func (s *Service) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var stored []models.MenuItem
	if _, err := kvstore.GetJSON(ctx, s.store, kvstore.KeyMenuItems, &stored); err != nil {
		logger.GetLogger().Warnw("resetting without readable catalog", "error", err)
	}
	ids := make(map[string]struct{})
	for _, item := range append(stored, DefaultMenuItems()...) {
		ids[item.ID] = struct{}{}
	}

	err := s.store.Update(ctx, func(tx kvstore.Tx) error {
		if err := tx.Delete(kvstore.KeyCategories); err != nil {
			return err
		}
		for id := range ids {
			if err := tx.DeleteAsset(kvstore.MenuImageKey(id)); err != nil {
				return err
			}
		}
		if err := tx.DeleteAsset(kvstore.AssetHeaderImage); err != nil {
			return err
		}
		return tx.Delete(kvstore.KeyMenuItems)
	})
	if err != nil {
		return errors.Wrap(err, "resetting catalog")
	}
	// outstanding saves started before the reset must not resurrect old data
	s.issued++
	s.committed = s.issued
	return nil
}
