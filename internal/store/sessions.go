package store

import (
	"context"
	"encoding/json"

	"github.com/abhisek/notepilot/internal/logger"
	"github.com/abhisek/notepilot/internal/studypack"
)

// SessionRepo persists the signed-in identity and the global theme mode.
// Both are single slots: the last write wins.
type SessionRepo struct {
	backend Backend
	log     *logger.Logger
}

// NewSessionRepo creates a SessionRepo on top of b.
func NewSessionRepo(b Backend, log *logger.Logger) *SessionRepo {
	return &SessionRepo{backend: b, log: log}
}

// Identity returns the stored identity. A missing or corrupt slot reports
// ok=false.
func (r *SessionRepo) Identity(ctx context.Context) (studypack.Identity, bool) {
	b, ok, err := r.backend.Get(ctx, identityKey)
	if err != nil {
		r.log.Warn("read partition failed", "kind", "identity", "error", err)
		return studypack.Identity{}, false
	}
	if !ok {
		return studypack.Identity{}, false
	}

	var id studypack.Identity
	if err := json.Unmarshal(b, &id); err != nil || id.Email == "" {
		r.log.Warn("corrupt partition ignored", "kind", "identity", "error", err)
		return studypack.Identity{}, false
	}
	return id, true
}

// SetIdentity overwrites the identity slot.
func (r *SessionRepo) SetIdentity(ctx context.Context, id studypack.Identity) error {
	b, err := json.Marshal(id)
	if err != nil {
		return writeError("identity", err)
	}
	return writeError("identity", r.backend.Put(ctx, identityKey, b))
}

// ClearIdentity empties the identity slot.
func (r *SessionRepo) ClearIdentity(ctx context.Context) error {
	return writeError("identity", r.backend.Delete(ctx, identityKey))
}

// ThemeMode returns the stored mode, light when unset or unreadable.
func (r *SessionRepo) ThemeMode(ctx context.Context) studypack.ThemeMode {
	b, ok, err := r.backend.Get(ctx, themeModeKey)
	if err != nil {
		r.log.Warn("read partition failed", "kind", "theme", "error", err)
		return studypack.ThemeModeLight
	}
	if !ok {
		return studypack.ThemeModeLight
	}
	mode, err := studypack.ParseThemeMode(string(b))
	if err != nil {
		return studypack.ThemeModeLight
	}
	return mode
}

// SetThemeMode overwrites the theme slot.
func (r *SessionRepo) SetThemeMode(ctx context.Context, mode studypack.ThemeMode) error {
	return writeError("theme", r.backend.Put(ctx, themeModeKey, []byte(mode)))
}
