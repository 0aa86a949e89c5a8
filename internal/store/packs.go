package store

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/abhisek/notepilot/internal/logger"
	"github.com/abhisek/notepilot/internal/studypack"
)

// PackRepo persists each identity's pack list and image map.
type PackRepo struct {
	backend Backend
	log     *logger.Logger
}

// NewPackRepo creates a PackRepo on top of b.
func NewPackRepo(b Backend, log *logger.Logger) *PackRepo {
	return &PackRepo{backend: b, log: log}
}

// Load returns the packs saved for email, newest first. A missing or
// unreadable partition yields an empty list.
func (r *PackRepo) Load(ctx context.Context, email string) []studypack.Pack {
	key := PacksKey(email)
	b, ok, err := r.backend.Get(ctx, key)
	if err != nil {
		r.log.Warn("read partition failed", "kind", "packs", "email", email, "error", err)
		return []studypack.Pack{}
	}
	return r.decodePacks(b, ok, email)
}

// Save replaces the list stored for email with packs. Callers pass their
// full in-memory list, newest first.
func (r *PackRepo) Save(ctx context.Context, email string, packs []studypack.Pack) error {
	if packs == nil {
		packs = []studypack.Pack{}
	}
	b, err := json.Marshal(packs)
	if err != nil {
		return writeError("packs", err)
	}
	return writeError("packs", r.backend.Put(ctx, PacksKey(email), b))
}

// Prepend adds pack to the front of the stored list in one
// read-modify-write and returns the new list. It is for callers that hold
// no list of their own, such as one-shot commands.
func (r *PackRepo) Prepend(ctx context.Context, email string, pack studypack.Pack) ([]studypack.Pack, error) {
	var list []studypack.Pack
	err := r.backend.Update(ctx, PacksKey(email), func(old []byte, ok bool) ([]byte, error) {
		list = append([]studypack.Pack{pack}, r.decodePacks(old, ok, email)...)
		return json.Marshal(list)
	})
	return list, writeError("packs", err)
}

// LoadImages returns the images saved for email keyed by pack id, newest
// first per pack. A missing or unreadable partition yields an empty map.
func (r *PackRepo) LoadImages(ctx context.Context, email string) map[string][]studypack.GeneratedImage {
	b, ok, err := r.backend.Get(ctx, ImagesKey(email))
	if err != nil {
		r.log.Warn("read partition failed", "kind", "images", "email", email, "error", err)
		return map[string][]studypack.GeneratedImage{}
	}
	return r.decodeImages(b, ok, email)
}

// SaveImages replaces the image map stored for email with images.
func (r *PackRepo) SaveImages(ctx context.Context, email string, images map[string][]studypack.GeneratedImage) error {
	if images == nil {
		images = map[string][]studypack.GeneratedImage{}
	}
	b, err := json.Marshal(images)
	if err != nil {
		return writeError("images", err)
	}
	return writeError("images", r.backend.Put(ctx, ImagesKey(email), b))
}

// Clear drops every partition that belongs to email.
func (r *PackRepo) Clear(ctx context.Context, email string) error {
	return errors.Join(
		r.backend.Delete(ctx, PacksKey(email)),
		r.backend.Delete(ctx, ImagesKey(email)),
	)
}

func (r *PackRepo) decodePacks(b []byte, ok bool, email string) []studypack.Pack {
	var packs []studypack.Pack
	if err := decodeJSON(b, ok, &packs); err != nil {
		r.log.Warn("corrupt partition ignored", "kind", "packs", "email", email, "error", err)
		return []studypack.Pack{}
	}
	if packs == nil {
		packs = []studypack.Pack{}
	}
	return packs
}

func (r *PackRepo) decodeImages(b []byte, ok bool, email string) map[string][]studypack.GeneratedImage {
	var images map[string][]studypack.GeneratedImage
	if err := decodeJSON(b, ok, &images); err != nil {
		r.log.Warn("corrupt partition ignored", "kind", "images", "email", email, "error", err)
		return map[string][]studypack.GeneratedImage{}
	}
	if images == nil {
		images = map[string][]studypack.GeneratedImage{}
	}
	return images
}
