package orchestrator

import (
	"context"
	"errors"
	"maps"
	"strings"

	"github.com/abhisek/notepilot/internal/gateway"
	"github.com/abhisek/notepilot/internal/studypack"
)

func (o *Orchestrator) gateway() *gateway.Gateway {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.gw
}

// GenerateImage draws an illustration for the open pack. A blank prompt
// uses the pack's default illustration prompt. One request runs at a time.
// Without an image credential the panel moves to needs_key and nothing is
// requested; other failures move it to failed. Existing images are never
// removed.
func (o *Orchestrator) GenerateImage(ctx context.Context, prompt string, size studypack.ImageSize) (Snapshot, error) {
	ident, ok := o.session.Identity()
	if !ok {
		return o.Snapshot(), ErrNotSignedIn
	}
	if !o.drawing.TryAcquire(1) {
		return o.Snapshot(), ErrBusy
	}
	defer o.drawing.Release(1)

	o.mu.Lock()
	if o.view != ViewPack || o.active == nil {
		o.mu.Unlock()
		return o.Snapshot(), ErrNoActivePack
	}
	packID := o.active.ID
	if strings.TrimSpace(prompt) == "" {
		prompt = studypack.VisualsPrompt(o.active.Meta)
	}
	gw := o.gw
	if !gw.CanGenerateImages() {
		o.visuals = VisualsNeedsKey
		o.visualsErr = ""
		o.mu.Unlock()
		return o.Snapshot(), nil
	}
	epoch := o.epoch
	o.visuals = VisualsGenerating
	o.visualsErr = ""
	o.mu.Unlock()

	url, err := gw.GenerateImage(ctx, prompt, size)
	if err != nil {
		o.mu.Lock()
		defer o.mu.Unlock()
		if o.epoch != epoch {
			return o.snapshotLocked(), ErrSessionChanged
		}
		if gateway.IsMissingCredentialForImages(err) {
			o.visuals = VisualsNeedsKey
			o.visualsErr = ""
		} else {
			o.visuals = VisualsFailed
			o.visualsErr = VisualsFailedMessage
		}
		return o.snapshotLocked(), err
	}

	img := studypack.GeneratedImage{
		ID:        o.newID(),
		URL:       url,
		Prompt:    prompt,
		Size:      size,
		CreatedAt: o.now().UnixMilli(),
	}

	o.mu.Lock()
	if o.epoch != epoch {
		o.mu.Unlock()
		return o.Snapshot(), ErrSessionChanged
	}
	o.images[packID] = append([]studypack.GeneratedImage{img}, o.images[packID]...)
	o.visuals = VisualsIdle
	images := maps.Clone(o.images)
	snap := o.snapshotLocked()
	o.mu.Unlock()

	if err := o.packs.SaveImages(ctx, ident.Email, images); err != nil {
		o.log.Warn("image not persisted", "email", ident.Email, "pack_id", packID, "error", err)
	}
	return snap, nil
}

// ProvideImageCredential installs an image provider built from apiKey and
// leaves the needs_key state.
func (o *Orchestrator) ProvideImageCredential(ctx context.Context, apiKey string) (Snapshot, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return o.Snapshot(), errors.New("API key is empty")
	}
	if o.imageFactory == nil {
		return o.Snapshot(), &gateway.ConfigError{Service: "image"}
	}

	p, err := o.imageFactory(ctx, apiKey)
	if err != nil {
		return o.Snapshot(), err
	}

	o.mu.Lock()
	o.gw = o.gw.WithImages(p)
	o.visuals = VisualsIdle
	o.visualsErr = ""
	o.mu.Unlock()

	o.log.Info("image credential provided")
	return o.Snapshot(), nil
}
