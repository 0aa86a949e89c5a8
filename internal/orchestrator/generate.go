package orchestrator

import (
	"context"
	"slices"

	"github.com/abhisek/notepilot/internal/studypack"
)

// SubmitInput generates a pack from in. Only one generation runs at a time:
// a submission while GENERATING returns ErrBusy without calling the
// gateway. On success the pack is persisted, prepended to the list and
// opened. On failure the view stays on CREATE with the error recorded and
// the draft kept for a retry.
func (o *Orchestrator) SubmitInput(ctx context.Context, in studypack.Input) (Snapshot, error) {
	ident, ok := o.session.Identity()
	if !ok {
		return o.Snapshot(), ErrNotSignedIn
	}

	if !o.generating.TryAcquire(1) {
		return o.Snapshot(), ErrBusy
	}
	defer o.generating.Release(1)

	o.mu.Lock()
	if o.view != ViewCreate {
		from := o.view
		o.mu.Unlock()
		return o.Snapshot(), &TransitionError{Op: "submit input", From: from}
	}
	o.draft = in
	if err := in.Normalized().Validate(); err != nil {
		o.mu.Unlock()
		return o.Snapshot(), err
	}
	epoch := o.epoch
	o.status = StatusGenerating
	o.lastError = ""
	o.mu.Unlock()

	log := o.log.With("email", ident.Email)
	log.Info("generating study pack", "subject", in.Subject, "chapter", in.ChapterTitle, "has_pdf", in.HasPDF())

	data, err := o.gateway().GeneratePack(ctx, in)

	if err != nil {
		o.mu.Lock()
		defer o.mu.Unlock()
		if o.epoch != epoch {
			return o.snapshotLocked(), ErrSessionChanged
		}
		o.view = ViewCreate
		o.status = StatusError
		o.lastError = err.Error()
		return o.snapshotLocked(), err
	}

	pack := studypack.Pack{
		StudyPackData: *data,
		ID:            o.newID(),
		CreatedAt:     o.now().UnixMilli(),
	}

	o.mu.Lock()
	if o.epoch != epoch {
		o.mu.Unlock()
		log.Info("study pack discarded after logout", "pack_id", pack.ID)
		return o.Snapshot(), ErrSessionChanged
	}
	o.packList = append([]studypack.Pack{pack}, o.packList...)
	o.lastError = ""
	o.showPack(pack)
	list := slices.Clone(o.packList)
	snap := o.snapshotLocked()
	o.mu.Unlock()

	// The in-memory list is the base of every write, so a pack whose
	// earlier write failed is persisted again here.
	if err := o.packs.Save(ctx, ident.Email, list); err != nil {
		log.Warn("study pack not persisted", "pack_id", pack.ID, "error", err)
	}

	log.Info("study pack ready", "pack_id", pack.ID, "packs", len(list))
	return snap, nil
}

// Generating reports whether a generation is in flight.
func (o *Orchestrator) Generating() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.status == StatusGenerating
}
