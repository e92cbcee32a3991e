package catalog

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/juju/clock/testclock"
	"github.com/pawonsalam/restosuite/internal/kvstore"
	"github.com/pawonsalam/restosuite/internal/models"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const pngDataURL = "data:image/png;base64,iVBORw0KGgo="

var epoch = time.Date(2024, 5, 17, 10, 0, 0, 0, time.UTC)

type recordingOutput struct {
	topics []string
}

func (r *recordingOutput) WriteMessage(topic string, _ []byte) error {
	r.topics = append(r.topics, topic)
	return nil
}

func (r *recordingOutput) Close() error { return nil }

// failingStore stages every write and then aborts the update.
type failingStore struct {
	*kvstore.MemoryStore
	fail bool
}

func (f *failingStore) Update(ctx context.Context, fn func(tx kvstore.Tx) error) error {
	return f.MemoryStore.Update(ctx, func(tx kvstore.Tx) error {
		if err := fn(tx); err != nil {
			return err
		}
		if f.fail {
			return errors.New("disk full")
		}
		return nil
	})
}

func newTestService(store kvstore.Store) (*Service, *recordingOutput) {
	out := &recordingOutput{}
	return NewService(store, testclock.NewClock(epoch), out, "menu.committed"), out
}

func TestFilterDefaults(t *testing.T) {
	items := DefaultMenuItems()

	favs := Filter(items, models.CategoryBestseller)
	require.Len(t, favs, 3)
	for _, item := range favs {
		assert.True(t, item.IsFavorite)
	}
	assert.Equal(t, []string{"1", "2", "6"}, ids(favs))

	drinks := Filter(items, models.CategoryDrinks)
	assert.Equal(t, []string{"5", "6"}, ids(drinks))

	assert.Len(t, Filter(items, models.CategoryMainCourse), 4)

	none := Filter(items, "minuman")
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func ids(items []models.MenuItem) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, item.ID)
	}
	return out
}

func TestCatalogJSONRoundTrip(t *testing.T) {
	stamp := epoch
	items := append(DefaultMenuItems(), models.MenuItem{
		ID:          "99",
		Name:        "Kerupuk",
		Description: "Renyah",
		Price:       5000,
		ImageURL:    PlaceholderImageURL,
		Category:    models.CategorySnack,
	}, models.MenuItem{
		ID:        "100",
		Name:      "Bakso",
		Price:     20000,
		Category:  models.CategoryMainCourse,
		UpdatedAt: &stamp,
	})

	ctx := context.Background()
	store := kvstore.NewMemoryStore()
	require.NoError(t, kvstore.SetJSON(ctx, store, kvstore.KeyMenuItems, items))

	var got []models.MenuItem
	ok, err := kvstore.GetJSON(ctx, store, kvstore.KeyMenuItems, &got)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, items, got)

	raw, err := json.Marshal(got[6])
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "rating")
	assert.NotContains(t, string(raw), "updatedAt")
}

func TestLoadSeedsOnce(t *testing.T) {
	ctx := context.Background()
	store := kvstore.NewMemoryStore()
	svc, _ := newTestService(store)

	items, err := svc.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, DefaultMenuItems(), items)

	_, ok, err := store.Get(ctx, kvstore.KeyMenuItems)
	require.NoError(t, err)
	assert.True(t, ok)

	changed := items[:2]
	changed[0].Name = "Nasi Goreng Kampung"
	_, err = svc.Commit(ctx, svc.BeginSave(), changed)
	require.NoError(t, err)

	items, err = svc.Load(ctx)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "Nasi Goreng Kampung", items[0].Name)
}

// pausingStore blocks the first catalog read after it has reported the record
// missing, until release is closed.
type pausingStore struct {
	*kvstore.MemoryStore
	once    sync.Once
	paused  chan struct{}
	release chan struct{}
}

func (p *pausingStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	v, ok, err := p.MemoryStore.Get(ctx, key)
	if key == kvstore.KeyMenuItems && !ok {
		p.once.Do(func() {
			close(p.paused)
			<-p.release
		})
	}
	return v, ok, err
}

func TestFirstLoadDoesNotOverwriteConcurrentCommit(t *testing.T) {
	ctx := context.Background()
	store := &pausingStore{
		MemoryStore: kvstore.NewMemoryStore(),
		paused:      make(chan struct{}),
		release:     make(chan struct{}),
	}
	svc, _ := newTestService(store)

	type loadResult struct {
		items []models.MenuItem
		err   error
	}
	done := make(chan loadResult, 1)
	go func() {
		items, err := svc.Load(ctx)
		done <- loadResult{items, err}
	}()
	<-store.paused

	edited := DefaultMenuItems()[:1]
	edited[0].Name = "Nasi Goreng Kampung"
	_, err := svc.Commit(ctx, svc.BeginSave(), edited)
	require.NoError(t, err)
	close(store.release)

	res := <-done
	require.NoError(t, res.err)
	require.Len(t, res.items, 1)
	assert.Equal(t, "Nasi Goreng Kampung", res.items[0].Name)

	got, err := svc.Load(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Nasi Goreng Kampung", got[0].Name)
}

// brokenAssetStore fails asset reads once broken is set.
type brokenAssetStore struct {
	*kvstore.MemoryStore
	broken bool
}

func (b *brokenAssetStore) GetAsset(ctx context.Context, key string) (*kvstore.Blob, bool, error) {
	if b.broken {
		return nil, false, errors.New("asset table unreadable")
	}
	return b.MemoryStore.GetAsset(ctx, key)
}

func TestCommitSucceedsWhenHydrationFails(t *testing.T) {
	ctx := context.Background()
	store := &brokenAssetStore{MemoryStore: kvstore.NewMemoryStore()}
	svc, out := newTestService(store)
	items, err := svc.Load(ctx)
	require.NoError(t, err)

	store.broken = true
	items[0].Price = 30000
	items[0].ImageURL = pngDataURL
	committed, err := svc.Commit(ctx, svc.BeginSave(), items)
	require.NoError(t, err)
	require.Len(t, committed, 6)
	assert.Equal(t, int64(30000), committed[0].Price)
	assert.Equal(t, DefaultMenuItems()[0].ImageURL, committed[0].ImageURL)
	assert.Len(t, out.topics, 1)

	var stored []models.MenuItem
	_, err = kvstore.GetJSON(ctx, store, kvstore.KeyMenuItems, &stored)
	require.NoError(t, err)
	assert.Equal(t, int64(30000), stored[0].Price)

	// the service keeps accepting commits afterwards
	store.broken = false
	_, err = svc.Commit(ctx, svc.BeginSave(), committed)
	require.NoError(t, err)
}

func TestCommitStoresInlineImages(t *testing.T) {
	ctx := context.Background()
	store := kvstore.NewMemoryStore()
	svc, out := newTestService(store)

	items, err := svc.Load(ctx)
	require.NoError(t, err)
	items[0].ImageURL = pngDataURL
	draft := NewDraftItem(models.CategoryBestseller, epoch)
	draft.ImageURL = pngDataURL
	items = append(items, draft)

	committed, err := svc.Commit(ctx, svc.BeginSave(), items)
	require.NoError(t, err)
	assert.Equal(t, "/assets/menu_image_1", committed[0].ImageURL)
	assert.Equal(t, "/assets/menu_image_"+draft.ID, committed[6].ImageURL)
	for _, item := range committed {
		require.NotNil(t, item.UpdatedAt)
		assert.True(t, epoch.Equal(*item.UpdatedAt))
	}

	// the record keeps remote URLs; images live in the asset store
	var stored []models.MenuItem
	_, err = kvstore.GetJSON(ctx, store, kvstore.KeyMenuItems, &stored)
	require.NoError(t, err)
	assert.Equal(t, DefaultMenuItems()[0].ImageURL, stored[0].ImageURL)
	assert.Equal(t, PlaceholderImageURL, stored[6].ImageURL)

	blob, ok, err := svc.Asset(ctx, "menu_image_1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "image/png", blob.MimeType)

	reloaded, err := svc.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "/assets/menu_image_1", reloaded[0].ImageURL)

	// committing the hydrated list again keeps the asset
	_, err = svc.Commit(ctx, svc.BeginSave(), reloaded)
	require.NoError(t, err)
	_, ok, err = svc.Asset(ctx, "menu_image_1")
	require.NoError(t, err)
	assert.True(t, ok)

	assert.Equal(t, []string{"menu.committed", "menu.committed"}, out.topics)
}

func TestSupersededCommitIsDiscarded(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(kvstore.NewMemoryStore())
	items, err := svc.Load(ctx)
	require.NoError(t, err)

	older := svc.BeginSave()
	newer := svc.BeginSave()

	_, err = svc.Commit(ctx, newer, items[:1])
	require.NoError(t, err)

	_, err = svc.Commit(ctx, older, items)
	assert.Equal(t, ErrSuperseded, err)

	got, err := svc.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestInvalidImageRejectsWholeCommit(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(kvstore.NewMemoryStore())
	items, err := svc.Load(ctx)
	require.NoError(t, err)

	items[0].ImageURL = pngDataURL
	items[1].ImageURL = "data:image/png;base64"
	_, err = svc.Commit(ctx, svc.BeginSave(), items)
	assert.True(t, errors.Is(err, ErrInvalidImage))

	_, ok, err := svc.Asset(ctx, "menu_image_1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFailedCommitKeepsPreviousState(t *testing.T) {
	ctx := context.Background()
	store := &failingStore{MemoryStore: kvstore.NewMemoryStore()}
	svc, out := newTestService(store)
	items, err := svc.Load(ctx)
	require.NoError(t, err)

	store.fail = true
	edited := DefaultMenuItems()
	edited[0].ImageURL = pngDataURL
	edited[0].Price = 1
	_, err = svc.Commit(ctx, svc.BeginSave(), edited)
	require.Error(t, err)
	assert.Empty(t, out.topics)

	store.fail = false
	got, err := svc.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, items, got)
	_, ok, err := svc.Asset(ctx, "menu_image_1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCategories(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(kvstore.NewMemoryStore())

	cats, err := svc.Categories(ctx)
	require.NoError(t, err)
	assert.Equal(t, DefaultCategories(), cats)

	_, err = svc.AddCategory(ctx, "   ")
	assert.Equal(t, ErrEmptyCategory, err)

	_, err = svc.AddCategory(ctx, "Minuman")
	assert.Equal(t, ErrDuplicateCategory, err)

	cats, err = svc.AddCategory(ctx, "  Dessert ")
	require.NoError(t, err)
	assert.Equal(t, "Dessert", cats[len(cats)-1])

	cats, err = svc.Categories(ctx)
	require.NoError(t, err)
	assert.Len(t, cats, len(DefaultCategories())+1)
}

func TestNewDraftItem(t *testing.T) {
	item := NewDraftItem(models.CategoryBestseller, epoch)
	assert.Equal(t, "1715940000000", item.ID)
	assert.Equal(t, "Menu Baru", item.Name)
	assert.Equal(t, "Deskripsi menu baru", item.Description)
	assert.Equal(t, int64(0), item.Price)
	assert.Equal(t, models.CategoryMainCourse, item.Category)
	assert.False(t, item.IsFavorite)

	assert.Equal(t, models.CategoryDrinks, NewDraftItem(models.CategoryDrinks, epoch).Category)
}

func TestHeaderImageAndReset(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(kvstore.NewMemoryStore())

	url, err := svc.HeaderImage(ctx)
	require.NoError(t, err)
	assert.Equal(t, DefaultHeaderImageURL, url)

	_, err = svc.SetHeaderImage(ctx, "not an image")
	assert.True(t, errors.Is(err, ErrInvalidImage))

	url, err = svc.SetHeaderImage(ctx, pngDataURL)
	require.NoError(t, err)
	assert.Equal(t, "/assets/headerImage", url)

	items, err := svc.Load(ctx)
	require.NoError(t, err)
	items[2].ImageURL = pngDataURL
	items[2].Name = "Burger Keju"
	pending := svc.BeginSave()
	_, err = svc.Commit(ctx, svc.BeginSave(), items)
	require.NoError(t, err)
	_, err = svc.AddCategory(ctx, "Dessert")
	require.NoError(t, err)

	require.NoError(t, svc.Reset(ctx))

	url, err = svc.HeaderImage(ctx)
	require.NoError(t, err)
	assert.Equal(t, DefaultHeaderImageURL, url)
	cats, err := svc.Categories(ctx)
	require.NoError(t, err)
	assert.Equal(t, DefaultCategories(), cats)
	got, err := svc.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, DefaultMenuItems(), got)

	_, err = svc.Commit(ctx, pending, items)
	assert.Equal(t, ErrSuperseded, err)
	_, err = svc.Commit(ctx, svc.BeginSave(), got)
	assert.NoError(t, err)
}

func TestAdminMode(t *testing.T) {
	ctx := context.Background()
	store := kvstore.NewMemoryStore()
	mode := NewAdminMode(store)

	on, err := mode.Enabled(ctx)
	require.NoError(t, err)
	assert.False(t, on)

	require.NoError(t, mode.Enable(ctx))
	raw, _, err := store.Get(ctx, kvstore.KeyAdminMode)
	require.NoError(t, err)
	assert.Equal(t, "true", string(raw))
	on, err = mode.Enabled(ctx)
	require.NoError(t, err)
	assert.True(t, on)

	require.NoError(t, mode.Disable(ctx))
	require.NoError(t, mode.Disable(ctx))
	on, err = mode.Enabled(ctx)
	require.NoError(t, err)
	assert.False(t, on)
}
