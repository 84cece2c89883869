package texture

import (
	"context"
	"image"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/midgard-globe/internal/logger"
)

// Result is a finished decode, delivered by Loader.Poll.
type Result struct {
	Layer  Layer
	Source string
	Image  *image.RGBA
	Err    error
	Took   time.Duration
}

// Loader decodes texture files on background goroutines. Results are
// collected by the render thread with Poll, which is where GPU uploads
// must happen.
type Loader struct {
	results chan Result
	sem     chan struct{}
	wg      sync.WaitGroup
	decode  func(path string) (*image.RGBA, error)
	log     *zap.Logger
}

// NewLoader creates a loader running at most workers decodes at once.
func NewLoader(workers int) *Loader {
	if workers < 1 {
		workers = 1
	}
	return &Loader{
		results: make(chan Result, 4*int(NumLayers)),
		sem:     make(chan struct{}, workers),
		decode:  DecodeFile,
		log:     logger.Named("texture"),
	}
}

// Load starts decoding path for layer. The result arrives through Poll.
func (l *Loader) Load(ctx context.Context, layer Layer, path string) {
	l.wg.Add(1)
	go func() {
		defer l.wg.Done()

		select {
		case l.sem <- struct{}{}:
		case <-ctx.Done():
			return
		}
		start := time.Now()
		img, err := l.decode(path)
		<-l.sem

		res := Result{Layer: layer, Source: path, Image: img, Err: err, Took: time.Since(start)}
		if err != nil {
			l.log.Warn("texture decode failed", zap.Stringer("layer", layer), zap.String("path", path), zap.Error(err))
		} else {
			l.log.Debug("texture decoded",
				zap.Stringer("layer", layer),
				zap.String("path", path),
				zap.Int("width", img.Rect.Dx()),
				zap.Int("height", img.Rect.Dy()),
				zap.Duration("took", res.Took))
		}

		select {
		case l.results <- res:
		case <-ctx.Done():
		}
	}()
}

// Poll returns every result that has arrived since the last call without
// blocking.
func (l *Loader) Poll() []Result {
	var out []Result
	for {
		select {
		case r := <-l.results:
			out = append(out, r)
		default:
			return out
		}
	}
}

// Wait blocks until every started load has delivered or been cancelled.
func (l *Loader) Wait() {
	l.wg.Wait()
}
