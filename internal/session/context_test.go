package session

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/notepilot/internal/logger"
	"github.com/abhisek/notepilot/internal/store"
	"github.com/abhisek/notepilot/internal/studypack"
)

func newTestRepo(t *testing.T) *store.SessionRepo {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "session.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return store.NewSessionRepo(s.Partitions(), logger.Nop())
}

func ptr[T any](v T) *T { return &v }

func TestLogin_FirstTimeIsNewIdentity(t *testing.T) {
	ctx := context.Background()
	sc := New(newTestRepo(t), logger.Nop())

	res, err := sc.Login(ctx, "  ", " Asha@Example.com ")
	require.NoError(t, err)

	require.IsType(t, NewIdentity{}, res)
	id := res.Identity()
	assert.Equal(t, studypack.DefaultName, id.Name)
	assert.Equal(t, "asha@example.com", id.Email)
	assert.False(t, id.HasPreferences())
	assert.Equal(t, studypack.DefaultPreferences(), sc.Preferences())
}

func TestLogin_ReturningAppliesStoredPreferences(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	first := New(repo, logger.Nop())
	_, err := first.Login(ctx, "Asha", "asha@example.com")
	require.NoError(t, err)
	_, err = first.UpdatePreferences(ctx, PreferenceUpdate{
		Theme: ptr(studypack.ThemeViolet),
		Font:  ptr(studypack.FontQuicksand),
	})
	require.NoError(t, err)

	second := New(repo, logger.Nop())
	res, err := second.Login(ctx, "Asha K", "ASHA@example.com")
	require.NoError(t, err)

	require.IsType(t, ReturningIdentity{}, res)
	assert.Equal(t, "Asha K", res.Identity().Name)
	want := studypack.Preferences{Theme: studypack.ThemeViolet, Font: studypack.FontQuicksand, Shape: studypack.ShapeDefault}
	assert.Equal(t, want, second.Preferences())
}

func TestLogin_DifferentEmailIsNew(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	sc := New(repo, logger.Nop())
	_, err := sc.Login(ctx, "Asha", "asha@example.com")
	require.NoError(t, err)
	_, err = sc.UpdatePreferences(ctx, PreferenceUpdate{Theme: ptr(studypack.ThemeRose)})
	require.NoError(t, err)

	res, err := sc.Login(ctx, "Ravi", "ravi@example.com")
	require.NoError(t, err)
	assert.IsType(t, NewIdentity{}, res)
	assert.Equal(t, studypack.DefaultPreferences(), sc.Preferences())
}

func TestLogin_InvalidEmail(t *testing.T) {
	sc := New(newTestRepo(t), logger.Nop())
	_, err := sc.Login(context.Background(), "Asha", "not-an-email")
	assert.Error(t, err)
	_, ok := sc.Identity()
	assert.False(t, ok)
}

func TestRestore(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	empty := New(repo, logger.Nop())
	_, ok := empty.Restore(ctx)
	assert.False(t, ok)

	sc := New(repo, logger.Nop())
	_, err := sc.Login(ctx, "Asha", "asha@example.com")
	require.NoError(t, err)
	_, err = sc.UpdatePreferences(ctx, PreferenceUpdate{Shape: ptr(studypack.ShapeRounded)})
	require.NoError(t, err)
	_, err = sc.ToggleThemeMode(ctx)
	require.NoError(t, err)

	restored := New(repo, logger.Nop())
	id, ok := restored.Restore(ctx)
	require.True(t, ok)
	assert.Equal(t, "asha@example.com", id.Email)
	assert.Equal(t, studypack.ShapeRounded, restored.Preferences().Shape)
	assert.Equal(t, studypack.ThemeModeDark, restored.ThemeMode())
}

func TestUpdatePreferences_SignedOutIsInMemoryOnly(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	sc := New(repo, logger.Nop())

	prefs, err := sc.UpdatePreferences(ctx, PreferenceUpdate{Theme: ptr(studypack.ThemeAmber)})
	require.NoError(t, err)
	assert.Equal(t, studypack.ThemeAmber, prefs.Theme)

	_, ok := repo.Identity(ctx)
	assert.False(t, ok)
}

func TestLogout(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	sc := New(repo, logger.Nop())

	_, err := sc.Login(ctx, "Asha", "asha@example.com")
	require.NoError(t, err)
	_, err = sc.UpdatePreferences(ctx, PreferenceUpdate{Theme: ptr(studypack.ThemeEmerald)})
	require.NoError(t, err)
	_, err = sc.ToggleThemeMode(ctx)
	require.NoError(t, err)

	require.NoError(t, sc.Logout(ctx))

	_, ok := sc.Identity()
	assert.False(t, ok)
	assert.Equal(t, studypack.DefaultPreferences(), sc.Preferences())
	assert.Equal(t, studypack.ThemeModeDark, sc.ThemeMode())

	_, ok = repo.Identity(ctx)
	assert.False(t, ok)
}

func TestToggleThemeMode(t *testing.T) {
	ctx := context.Background()
	sc := New(newTestRepo(t), logger.Nop())

	assert.Equal(t, studypack.ThemeModeLight, sc.ThemeMode())
	mode, err := sc.ToggleThemeMode(ctx)
	require.NoError(t, err)
	assert.Equal(t, studypack.ThemeModeDark, mode)
	mode, err = sc.ToggleThemeMode(ctx)
	require.NoError(t, err)
	assert.Equal(t, studypack.ThemeModeLight, mode)
}

func TestLogin_NewIdentityNotPersistedUntilPreferences(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	sc := New(repo, logger.Nop())

	_, err := sc.Login(ctx, "Asha", "asha@example.com")
	require.NoError(t, err)
	_, ok := repo.Identity(ctx)
	assert.False(t, ok)

	_, err = sc.UpdatePreferences(ctx, PreferenceUpdate{Theme: ptr(studypack.ThemeDefault)})
	require.NoError(t, err)
	stored, ok := repo.Identity(ctx)
	require.True(t, ok)
	assert.True(t, stored.HasPreferences())
}
