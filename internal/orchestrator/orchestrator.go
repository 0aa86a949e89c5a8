// Package orchestrator is the application state machine. It moves between
// views, runs generation and image requests through the gateway, keeps the
// in-memory pack list in step with the store and exposes the result as
// immutable snapshots.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/abhisek/notepilot/internal/chat"
	"github.com/abhisek/notepilot/internal/gateway"
	"github.com/abhisek/notepilot/internal/llm"
	"github.com/abhisek/notepilot/internal/logger"
	"github.com/abhisek/notepilot/internal/session"
	"github.com/abhisek/notepilot/internal/store"
	"github.com/abhisek/notepilot/internal/studypack"
)

var (
	// ErrBusy is returned when a request of the same kind is in flight.
	ErrBusy = errors.New("a request is already in progress")

	// ErrNotSignedIn is returned by operations that need an identity.
	ErrNotSignedIn = errors.New("not signed in")

	// ErrNoActivePack is returned by viewer operations outside VIEW_PACK.
	ErrNoActivePack = errors.New("no study pack is open")

	// ErrSessionChanged means the identity changed while a request was in
	// flight and its result was discarded.
	ErrSessionChanged = errors.New("session changed during request")
)

// TransitionError reports an operation that is not valid in the current view.
type TransitionError struct {
	Op   string
	From View
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("%s is not allowed from %s", e.Op, e.From)
}

// PackNotFoundError reports an unknown pack id.
type PackNotFoundError struct {
	ID string
}

func (e *PackNotFoundError) Error() string {
	return fmt.Sprintf("study pack %q not found", e.ID)
}

// ImageProviderFactory builds an image provider from a user-supplied key.
type ImageProviderFactory func(ctx context.Context, apiKey string) (llm.ImageProvider, error)

// Deps are the collaborators of an Orchestrator.
type Deps struct {
	Gateway      *gateway.Gateway
	Packs        *store.PackRepo
	Session      *session.Context
	ImageFactory ImageProviderFactory
	Log          *logger.Logger

	// Now and NewID default to the wall clock and random UUIDs.
	Now   func() time.Time
	NewID func() string
}

// Orchestrator owns the application state. All mutation happens under one
// mutex; gateway calls run outside it.
type Orchestrator struct {
	packs        *store.PackRepo
	session      *session.Context
	imageFactory ImageProviderFactory
	log          *logger.Logger
	now          func() time.Time
	newID        func() string
	chat         *chat.Conversation

	generating *semaphore.Weighted
	drawing    *semaphore.Weighted

	mu     sync.Mutex
	gw     *gateway.Gateway
	epoch  uint64
	view   View
	status Status
	tab    Tab

	packList   []studypack.Pack
	images     map[string][]studypack.GeneratedImage
	active     *studypack.Pack
	lastError  string
	draft      studypack.Input
	visuals    VisualsState
	visualsErr string

	expandedNotes map[int]bool
	expandedTerms map[int]bool
	flashcard     int
	flipped       bool
	quiz          *studypack.QuizAttempt
	chatOpen      bool
}

// New creates an Orchestrator on the landing view.
func New(d Deps) *Orchestrator {
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.NewID == nil {
		d.NewID = uuid.NewString
	}
	if d.Log == nil {
		d.Log = logger.Nop()
	}
	o := &Orchestrator{
		packs:        d.Packs,
		session:      d.Session,
		imageFactory: d.ImageFactory,
		log:          d.Log,
		now:          d.Now,
		newID:        d.NewID,
		chat:         chat.New(d.Gateway, d.Log),
		generating:   semaphore.NewWeighted(1),
		drawing:      semaphore.NewWeighted(1),
		gw:           d.Gateway,
		view:         ViewLanding,
		status:       StatusIdle,
		tab:          TabSummary,
		images:       map[string][]studypack.GeneratedImage{},
		visuals:      VisualsIdle,
	}
	o.resetViewer()
	return o
}

// Start restores a stored identity. A returning user lands on CREATE with
// preferences applied and partitions loaded; otherwise LANDING.
func (o *Orchestrator) Start(ctx context.Context) Snapshot {
	id, ok := o.session.Restore(ctx)
	if !ok {
		o.mu.Lock()
		o.view = ViewLanding
		o.mu.Unlock()
		return o.Snapshot()
	}

	packs, images := o.loadPartitions(ctx, id.Email)

	o.mu.Lock()
	o.packList = packs
	o.images = images
	o.view = ViewCreate
	o.status = StatusIdle
	o.mu.Unlock()

	o.log.Info("session restored", "email", id.Email, "packs", len(packs))
	return o.Snapshot()
}

// GetStarted moves from LANDING to AUTH.
func (o *Orchestrator) GetStarted() (Snapshot, error) {
	o.mu.Lock()
	if o.view != ViewLanding {
		from := o.view
		o.mu.Unlock()
		return o.Snapshot(), &TransitionError{Op: "get started", From: from}
	}
	o.view = ViewAuth
	o.mu.Unlock()
	return o.Snapshot(), nil
}

// Login signs in from AUTH. A first login goes to THEME_PICKER; a returning
// identity goes straight to CREATE.
func (o *Orchestrator) Login(ctx context.Context, name, email string) (Snapshot, error) {
	o.mu.Lock()
	if o.view != ViewAuth && o.view != ViewLanding {
		from := o.view
		o.mu.Unlock()
		return o.Snapshot(), &TransitionError{Op: "login", From: from}
	}
	o.mu.Unlock()

	res, err := o.session.Login(ctx, name, email)
	if err != nil {
		return o.Snapshot(), err
	}
	id := res.Identity()
	packs, images := o.loadPartitions(ctx, id.Email)

	o.mu.Lock()
	o.epoch++
	o.packList = packs
	o.images = images
	o.active = nil
	o.status = StatusIdle
	o.lastError = ""
	switch res.(type) {
	case session.ReturningIdentity:
		o.view = ViewCreate
	default:
		o.view = ViewThemePicker
	}
	o.mu.Unlock()

	return o.Snapshot(), nil
}

// loadPartitions reads the pack list and the image map concurrently. Both
// reads degrade to empty values on failure.
func (o *Orchestrator) loadPartitions(ctx context.Context, email string) ([]studypack.Pack, map[string][]studypack.GeneratedImage) {
	var (
		packs  []studypack.Pack
		images map[string][]studypack.GeneratedImage
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		packs = o.packs.Load(gctx, email)
		return nil
	})
	g.Go(func() error {
		images = o.packs.LoadImages(gctx, email)
		return nil
	})
	_ = g.Wait()
	return packs, images
}

// ChoosePreferences applies and persists a preference change. From
// THEME_PICKER it completes onboarding and moves to CREATE; elsewhere the
// view is unchanged.
func (o *Orchestrator) ChoosePreferences(ctx context.Context, u session.PreferenceUpdate) (Snapshot, error) {
	if _, ok := o.session.Identity(); !ok {
		return o.Snapshot(), ErrNotSignedIn
	}
	if _, err := o.session.UpdatePreferences(ctx, u); err != nil {
		// Preferences are in effect for this run even if the write failed.
		o.log.Warn("preferences not persisted", "error", err)
	}

	o.mu.Lock()
	if o.view == ViewThemePicker {
		o.view = ViewCreate
		o.status = StatusIdle
	}
	o.mu.Unlock()
	return o.Snapshot(), nil
}

// ToggleThemeMode flips light and dark.
func (o *Orchestrator) ToggleThemeMode(ctx context.Context) Snapshot {
	if _, err := o.session.ToggleThemeMode(ctx); err != nil {
		o.log.Warn("theme mode not persisted", "error", err)
	}
	return o.Snapshot()
}

// CreateNew leaves the viewer for an empty input form.
func (o *Orchestrator) CreateNew() (Snapshot, error) {
	o.mu.Lock()
	if o.view != ViewPack && o.view != ViewCreate {
		from := o.view
		o.mu.Unlock()
		return o.Snapshot(), &TransitionError{Op: "create new", From: from}
	}
	o.view = ViewCreate
	if o.status != StatusGenerating {
		o.status = StatusIdle
	}
	o.active = nil
	o.lastError = ""
	o.mu.Unlock()
	return o.Snapshot(), nil
}

// OpenPack shows a pack from the in-memory list.
func (o *Orchestrator) OpenPack(id string) (Snapshot, error) {
	o.mu.Lock()
	if o.view != ViewCreate && o.view != ViewPack {
		from := o.view
		o.mu.Unlock()
		return o.Snapshot(), &TransitionError{Op: "open pack", From: from}
	}
	p, ok := o.findPack(id)
	if !ok {
		o.mu.Unlock()
		return o.Snapshot(), &PackNotFoundError{ID: id}
	}
	o.showPack(p)
	o.mu.Unlock()
	return o.Snapshot(), nil
}

// Logout returns to LANDING and drops every piece of per-identity state.
// Requests in flight complete but their results are discarded.
func (o *Orchestrator) Logout(ctx context.Context) Snapshot {
	if err := o.session.Logout(ctx); err != nil {
		o.log.Warn("logout not persisted", "error", err)
	}

	o.mu.Lock()
	o.epoch++
	o.view = ViewLanding
	o.status = StatusIdle
	o.tab = TabSummary
	o.packList = nil
	o.images = map[string][]studypack.GeneratedImage{}
	o.active = nil
	o.lastError = ""
	o.draft = studypack.Input{}
	o.visuals = VisualsIdle
	o.visualsErr = ""
	o.chatOpen = false
	o.resetViewer()
	o.mu.Unlock()

	o.chat.Reset()
	return o.Snapshot()
}

func (o *Orchestrator) findPack(id string) (studypack.Pack, bool) {
	for _, p := range o.packList {
		if p.ID == id {
			return p, true
		}
	}
	return studypack.Pack{}, false
}

// showPack makes p active and resets the viewer. Caller holds o.mu.
func (o *Orchestrator) showPack(p studypack.Pack) {
	cp := p.Clone()
	o.active = &cp
	o.view = ViewPack
	o.status = StatusSuccess
	o.tab = TabSummary
	if o.visuals != VisualsNeedsKey {
		o.visuals = VisualsIdle
	}
	o.visualsErr = ""
	o.resetViewer()
}

// resetViewer clears per-pack view state. Caller holds o.mu.
func (o *Orchestrator) resetViewer() {
	o.expandedNotes = map[int]bool{}
	o.expandedTerms = map[int]bool{}
	o.flashcard = 0
	o.flipped = false
	if o.active != nil {
		o.quiz = studypack.NewQuizAttempt(o.active.Quiz)
	} else {
		o.quiz = nil
	}
}

// Snapshot returns a copy of the current state.
func (o *Orchestrator) Snapshot() Snapshot {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.snapshotLocked()
}

func (o *Orchestrator) snapshotLocked() Snapshot {
	s := Snapshot{
		View:             o.view,
		Status:           o.status,
		Tab:              o.tab,
		Preferences:      o.session.Preferences(),
		ThemeMode:        o.session.ThemeMode(),
		Packs:            clonePacks(o.packList),
		Visuals:          o.visuals,
		VisualsError:     o.visualsErr,
		Error:            o.lastError,
		Draft:            o.draft,
		ExpandedNotes:    cloneFlags(o.expandedNotes),
		ExpandedTerms:    cloneFlags(o.expandedTerms),
		FlashcardIndex:   o.flashcard,
		FlashcardFlipped: o.flipped,
		ChatOpen:         o.chatOpen,
		ChatPinned:       o.chat.Pinned(),
		ChatMessages:     o.chat.Messages(),
		ChatPending:      o.chat.Pending(),
	}
	if id, ok := o.session.Identity(); ok {
		s.Identity = &id
	}
	if o.active != nil {
		cp := o.active.Clone()
		s.ActivePack = &cp
		s.Images = slices.Clone(o.images[o.active.ID])
	}
	if o.quiz != nil {
		q := QuizView{
			Selected: o.quiz.Selected(),
			Answered: o.quiz.Answered(),
			Finished: o.quiz.Finished(),
			Result:   o.quiz.Result(),
		}
		_, q.Index, _ = o.quiz.Current()
		s.Quiz = q
	}
	return s
}
