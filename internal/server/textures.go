package server

import (
	"context"
	"image"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/midgard-globe/internal/app"
	"github.com/Faultbox/midgard-globe/internal/engine/texture"
)

// publisher is the server's texture backend: an "upload" keeps the image
// until the layer is reported ready, then it is encoded and published.
type publisher struct {
	srv    *Server
	slots  *texture.Slots
	images map[texture.Handle]*image.RGBA
	next   texture.Handle
}

func (p *publisher) UploadTexture(img *image.RGBA) (texture.Handle, error) {
	p.next++
	p.images[p.next] = img
	return p.next, nil
}

func (p *publisher) DeleteTexture(h texture.Handle) {
	delete(p.images, h)
}

func (p *publisher) TextureReady(l texture.Layer, h texture.Handle, width, height int) {
	if err := p.srv.SetTexture(l, p.images[h]); err != nil {
		p.TextureFailed(l, err)
		return
	}
	p.slots.MarkReady(l, h, width, height)
}

func (p *publisher) TextureFailed(l texture.Layer, err error) {
	p.slots.MarkFailed(l, err)
	p.srv.log.Warn("texture not published", zap.Stringer("layer", l), zap.Error(err))
}

// PublishTextures loads the configured layers and publishes each one as
// it finishes, including hot reloads, until ctx is cancelled.
func (s *Server) PublishTextures(ctx context.Context, poll time.Duration) {
	slots := texture.NewSlots()
	tex := app.StartTextures(ctx, s.globe.Config, slots)
	defer tex.Close()

	p := &publisher{srv: s, slots: slots, images: make(map[texture.Handle]*image.RGBA)}
	ticker := time.NewTicker(poll)
	defer ticker.Stop()
	for {
		tex.Pump(ctx, p, p)
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
