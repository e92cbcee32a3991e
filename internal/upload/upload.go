// Package upload stores images posted by the admin panel and returns the
// public URL they are served from.
package upload

import (
	"context"
	"fmt"
	"math/rand"
	"strings"

	"github.com/juju/clock"
	"github.com/pawonsalam/restosuite/internal/dataurl"
	"github.com/pkg/errors"
)

var (
	ErrNoImage     = errors.New("no image provided")
	ErrUnsupported = errors.New("unsupported image type")
)

// ImageStore persists an uploaded file under name and returns its URL.
type ImageStore interface {
	Save(ctx context.Context, name, mimeType string, data []byte) (string, error)
}

type Service struct {
	store ImageStore
	clock clock.Clock
	rand  func(n int64) int64
}

func NewService(store ImageStore, clk clock.Clock) *Service {
	if clk == nil {
		clk = clock.WallClock
	}
	return &Service{store: store, clock: clk, rand: rand.Int63n}
}

// Upload validates a data URL image and stores it. Validation errors are
// ErrNoImage, dataurl.ErrMalformed or ErrUnsupported; anything else is a
// storage failure.
func (s *Service) Upload(ctx context.Context, image string) (string, error) {
	if strings.TrimSpace(image) == "" {
		return "", ErrNoImage
	}
	blob, err := dataurl.Parse(image)
	if err != nil {
		return "", err
	}
	ext, ok := dataurl.Extension(blob.MimeType)
	if !ok {
		return "", ErrUnsupported
	}

	name := fmt.Sprintf("%d-%d.%s", s.clock.Now().UnixMilli(), s.rand(1e9), ext)
	url, err := s.store.Save(ctx, name, blob.MimeType, blob.Data)
	if err != nil {
		return "", errors.Wrapf(err, "saving %s", name)
	}
	return url, nil
}
