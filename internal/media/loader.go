package media

import (
	"context"
	"fmt"
	"image"
	"os"

	// Codecs the asset library accepts.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/kikiluvv/reelforge/internal/timeline"
)

// loadConcurrency bounds parallel asset decoding.
const loadConcurrency = 4

// Loader resolves asset descriptors into playable handles and publishes
// them to the shared cache. Loading is an explicit asynchronous operation:
// until Load returns for an asset, the renderer sees a cache miss and skips
// frames that need it.
type Loader struct {
	logger    zerolog.Logger
	extractor FrameExtractor
	cache     *Cache
}

// NewLoader creates a loader publishing into cache.
func NewLoader(logger zerolog.Logger, extractor FrameExtractor, cache *Cache) *Loader {
	return &Loader{
		logger:    logger.With().Str("component", "media").Logger(),
		extractor: extractor,
		cache:     cache,
	}
}

// Load decodes one asset and publishes its handle.
func (l *Loader) Load(ctx context.Context, asset timeline.MediaAsset) error {
	switch asset.Kind {
	case timeline.MediaImage:
		img, err := decodeImage(asset.Path)
		if err != nil {
			return fmt.Errorf("failed to load image asset %q: %w", asset.Name, err)
		}
		l.cache.Put(asset.ID, NewImageHandle(img))

	case timeline.MediaVideo:
		handle, err := NewVideoHandle(asset.Path, asset.Duration, l.extractor)
		if err != nil {
			return fmt.Errorf("failed to load video asset %q: %w", asset.Name, err)
		}
		l.cache.Put(asset.ID, handle)

	default:
		return fmt.Errorf("unknown media kind %q", asset.Kind)
	}

	l.logger.Debug().
		Str("asset", asset.Name).
		Str("kind", string(asset.Kind)).
		Msg("asset loaded")
	return nil
}

// LoadAll decodes every asset concurrently. The first failure cancels the
// remaining loads and is returned.
func (l *Loader) LoadAll(ctx context.Context, assets []timeline.MediaAsset) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(loadConcurrency)

	for _, asset := range assets {
		g.Go(func() error {
			return l.Load(ctx, asset)
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	l.logger.Info().Int("assets", len(assets)).Msg("asset library loaded")
	return nil
}

func decodeImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return img, nil
}
