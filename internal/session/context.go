// Package session holds the signed-in identity, its visual preferences and
// the global light/dark mode. A Context is created once and passed to the
// code that needs it.
package session

import (
	"context"
	"sync"

	"github.com/abhisek/notepilot/internal/logger"
	"github.com/abhisek/notepilot/internal/store"
	"github.com/abhisek/notepilot/internal/studypack"
)

// LoginResult tells the caller which path a login took.
type LoginResult interface {
	Identity() studypack.Identity
	isLoginResult()
}

// NewIdentity is a first login for the email: preferences must be picked.
type NewIdentity struct {
	ID studypack.Identity
}

// ReturningIdentity is a login for the email stored in the session slot
// with preferences already chosen. Those preferences are now in effect.
type ReturningIdentity struct {
	ID studypack.Identity
}

func (r NewIdentity) Identity() studypack.Identity       { return r.ID }
func (r ReturningIdentity) Identity() studypack.Identity { return r.ID }
func (NewIdentity) isLoginResult()                       {}
func (ReturningIdentity) isLoginResult()                 {}

// PreferenceUpdate changes the non-nil fields.
type PreferenceUpdate struct {
	Theme *studypack.Theme
	Font  *studypack.Font
	Shape *studypack.Shape
}

// Context is the live session. It is safe for concurrent use.
type Context struct {
	repo *store.SessionRepo
	log  *logger.Logger

	mu       sync.RWMutex
	identity *studypack.Identity
	prefs    studypack.Preferences
	mode     studypack.ThemeMode
}

// New creates a signed-out Context with default preferences.
func New(repo *store.SessionRepo, log *logger.Logger) *Context {
	return &Context{
		repo:  repo,
		log:   log,
		prefs: studypack.DefaultPreferences(),
		mode:  studypack.ThemeModeLight,
	}
}

// Restore loads the stored identity and theme mode. It reports whether a
// returning user was found.
func (c *Context) Restore(ctx context.Context) (studypack.Identity, bool) {
	mode := c.repo.ThemeMode(ctx)
	id, ok := c.repo.Identity(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()

	c.mode = mode
	if !ok {
		c.identity = nil
		c.prefs = studypack.DefaultPreferences()
		return studypack.Identity{}, false
	}
	c.identity = &id
	c.prefs = id.Preferences()
	c.log.Debug("session restored", "email", id.Email)
	return id, true
}

// Login captures name and email. A stored identity for the same email that
// already carries preferences makes this a ReturningIdentity and overwrites
// the slot. A NewIdentity is persisted by the first UpdatePreferences.
func (c *Context) Login(ctx context.Context, name, email string) (LoginResult, error) {
	id, err := studypack.NewIdentity(name, email)
	if err != nil {
		return nil, err
	}

	var result LoginResult = NewIdentity{ID: id}
	if stored, ok := c.repo.Identity(ctx); ok && stored.Email == id.Email && stored.HasPreferences() {
		id = id.WithPreferences(stored.Preferences())
		result = ReturningIdentity{ID: id}

		// The slot is best effort; the in-memory session still applies.
		if err := c.repo.SetIdentity(ctx, id); err != nil {
			c.log.Warn("persist identity failed", "email", id.Email, "error", err)
		}
	}

	c.mu.Lock()
	c.identity = &id
	c.prefs = id.Preferences()
	c.mu.Unlock()

	c.log.Info("login", "email", id.Email, "returning", isReturning(result))
	return result, nil
}

func isReturning(r LoginResult) bool {
	_, ok := r.(ReturningIdentity)
	return ok
}

// UpdatePreferences merges u into the effective preferences and, when
// signed in, persists them on the identity.
func (c *Context) UpdatePreferences(ctx context.Context, u PreferenceUpdate) (studypack.Preferences, error) {
	c.mu.Lock()
	if u.Theme != nil {
		c.prefs.Theme = *u.Theme
	}
	if u.Font != nil {
		c.prefs.Font = *u.Font
	}
	if u.Shape != nil {
		c.prefs.Shape = *u.Shape
	}
	prefs := c.prefs

	var id *studypack.Identity
	if c.identity != nil {
		updated := c.identity.WithPreferences(prefs)
		c.identity = &updated
		id = &updated
	}
	c.mu.Unlock()

	if id == nil {
		return prefs, nil
	}
	if err := c.repo.SetIdentity(ctx, *id); err != nil {
		c.log.Warn("persist preferences failed", "email", id.Email, "error", err)
		return prefs, err
	}
	return prefs, nil
}

// Logout clears the identity slot and reverts preferences. The theme mode
// is global and survives.
func (c *Context) Logout(ctx context.Context) error {
	c.mu.Lock()
	c.identity = nil
	c.prefs = studypack.DefaultPreferences()
	c.mu.Unlock()

	if err := c.repo.ClearIdentity(ctx); err != nil {
		c.log.Warn("clear identity failed", "error", err)
		return err
	}
	return nil
}

// ToggleThemeMode flips light and dark and persists the result.
func (c *Context) ToggleThemeMode(ctx context.Context) (studypack.ThemeMode, error) {
	c.mu.Lock()
	if c.mode == studypack.ThemeModeDark {
		c.mode = studypack.ThemeModeLight
	} else {
		c.mode = studypack.ThemeModeDark
	}
	mode := c.mode
	c.mu.Unlock()

	return mode, c.repo.SetThemeMode(ctx, mode)
}

// SetThemeMode sets the mode explicitly and persists it.
func (c *Context) SetThemeMode(ctx context.Context, mode studypack.ThemeMode) error {
	c.mu.Lock()
	c.mode = mode
	c.mu.Unlock()
	return c.repo.SetThemeMode(ctx, mode)
}

// Identity returns the signed-in identity.
func (c *Context) Identity() (studypack.Identity, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.identity == nil {
		return studypack.Identity{}, false
	}
	return *c.identity, true
}

// Preferences returns the effective preferences.
func (c *Context) Preferences() studypack.Preferences {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.prefs
}

// ThemeMode returns the current mode.
func (c *Context) ThemeMode() studypack.ThemeMode {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.mode
}
