package orchestrator_test

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/abhisek/notepilot/internal/gateway"
	"github.com/abhisek/notepilot/internal/llm"
	"github.com/abhisek/notepilot/internal/logger"
	"github.com/abhisek/notepilot/internal/orchestrator"
	"github.com/abhisek/notepilot/internal/session"
	"github.com/abhisek/notepilot/internal/store"
	"github.com/abhisek/notepilot/internal/studypack"
	"github.com/abhisek/notepilot/internal/studypack/studypacktest"
)

// failingWrites wraps a backend and rejects writes to keys starting with
// prefix. A negative failures count rejects every such write; otherwise
// only the first failures writes are rejected.
type failingWrites struct {
	store.Backend
	prefix   string
	failures int
}

func (f *failingWrites) reject(key string) bool {
	if !strings.HasPrefix(key, f.prefix) || f.failures == 0 {
		return false
	}
	if f.failures > 0 {
		f.failures--
	}
	return true
}

func (f *failingWrites) Put(ctx context.Context, key string, value []byte) error {
	if f.reject(key) {
		return errors.New("quota exceeded for local storage")
	}
	return f.Backend.Put(ctx, key, value)
}

func (f *failingWrites) Update(ctx context.Context, key string, fn store.UpdateFunc) error {
	if f.reject(key) {
		return errors.New("quota exceeded for local storage")
	}
	return f.Backend.Update(ctx, key, fn)
}

type harness struct {
	ctx     context.Context
	st      *store.Store
	backend store.Backend
	text    *llm.MockProvider
	images  *llm.MockProvider
	packs   *store.PackRepo
	ids     int
	orch    *orchestrator.Orchestrator
}

func newHarness(dir string, withImages bool) *harness {
	st, err := store.Open(filepath.Join(dir, "notepilot.db"))
	Expect(err).NotTo(HaveOccurred())
	DeferCleanup(st.Close)

	h := &harness{ctx: context.Background(), st: st, backend: st.Partitions(), text: llm.NewMockProvider(), images: llm.NewMockProvider()}
	h.build(withImages)
	return h
}

func (h *harness) build(withImages bool) {
	log := logger.Nop()
	var images llm.ImageProvider
	if withImages {
		images = h.images
	}
	gw := gateway.New(h.text, images, gateway.Config{ImageModel: "img-1k", ImageHDModel: "img-hd"}, log)
	h.packs = store.NewPackRepo(h.backend, log)
	h.orch = orchestrator.New(orchestrator.Deps{
		Gateway: gw,
		Packs:   h.packs,
		Session: session.New(store.NewSessionRepo(h.backend, log), log),
		ImageFactory: func(_ context.Context, key string) (llm.ImageProvider, error) {
			if key == "bad" {
				return nil, errors.New("invalid key")
			}
			return h.images, nil
		},
		Log: log,
		Now: func() time.Time { return time.UnixMilli(1_700_000_000_000) },
		NewID: func() string {
			h.ids++
			return fmt.Sprintf("id-%d", h.ids)
		},
	})
}

func (h *harness) onboard() {
	_, err := h.orch.GetStarted()
	Expect(err).NotTo(HaveOccurred())
	snap, err := h.orch.Login(h.ctx, "Asha", "asha@example.com")
	Expect(err).NotTo(HaveOccurred())
	Expect(snap.View).To(Equal(orchestrator.ViewThemePicker))
	theme := studypack.ThemeEmerald
	snap, err = h.orch.ChoosePreferences(h.ctx, session.PreferenceUpdate{Theme: &theme})
	Expect(err).NotTo(HaveOccurred())
	Expect(snap.View).To(Equal(orchestrator.ViewCreate))
}

func (h *harness) queuePack() {
	h.text.AddResponse(llm.MockResponse{Content: studypacktest.JSON(studypacktest.Photosynthesis())})
}

func (h *harness) generate() orchestrator.Snapshot {
	h.queuePack()
	snap, err := h.orch.SubmitInput(h.ctx, studypacktest.Input())
	Expect(err).NotTo(HaveOccurred())
	return snap
}

var _ = Describe("Orchestrator", func() {
	var h *harness

	BeforeEach(func() {
		h = newHarness(GinkgoT().TempDir(), false)
	})

	Describe("start-up", func() {
		It("lands on LANDING without a stored identity", func() {
			snap := h.orch.Start(h.ctx)
			Expect(snap.View).To(Equal(orchestrator.ViewLanding))
			Expect(snap.SignedIn()).To(BeFalse())
		})

		It("restores a returning identity with its packs", func() {
			h.onboard()
			h.generate()

			h.build(false)
			snap := h.orch.Start(h.ctx)
			Expect(snap.View).To(Equal(orchestrator.ViewCreate))
			Expect(snap.Identity.Email).To(Equal("asha@example.com"))
			Expect(snap.Preferences.Theme).To(Equal(studypack.ThemeEmerald))
			Expect(snap.Packs).To(HaveLen(1))
		})
	})

	Describe("login", func() {
		It("rejects login from CREATE", func() {
			h.onboard()
			_, err := h.orch.Login(h.ctx, "Asha", "asha@example.com")
			var te *orchestrator.TransitionError
			Expect(errors.As(err, &te)).To(BeTrue())
		})

		It("sends a returning identity straight to CREATE", func() {
			h.onboard()
			h.orch.Logout(h.ctx)
			_, err := h.orch.GetStarted()
			Expect(err).NotTo(HaveOccurred())

			snap, err := h.orch.Login(h.ctx, "Asha", "ASHA@example.com")
			Expect(err).NotTo(HaveOccurred())
			Expect(snap.View).To(Equal(orchestrator.ViewCreate))
			Expect(snap.Preferences.Theme).To(Equal(studypack.ThemeEmerald))
		})

		It("changes preferences in place outside the picker", func() {
			h.onboard()
			h.generate()
			font := studypack.FontJetBrains
			snap, err := h.orch.ChoosePreferences(h.ctx, session.PreferenceUpdate{Font: &font})
			Expect(err).NotTo(HaveOccurred())
			Expect(snap.View).To(Equal(orchestrator.ViewPack))
			Expect(snap.Preferences.Font).To(Equal(studypack.FontJetBrains))
			Expect(snap.Preferences.Theme).To(Equal(studypack.ThemeEmerald))
		})
	})

	Describe("generation", func() {
		BeforeEach(func() { h.onboard() })

		It("opens and persists a generated Photosynthesis pack", func() {
			snap := h.generate()

			Expect(snap.View).To(Equal(orchestrator.ViewPack))
			Expect(snap.Status).To(Equal(orchestrator.StatusSuccess))
			Expect(snap.Tab).To(Equal(orchestrator.TabSummary))
			Expect(snap.ActivePack).NotTo(BeNil())
			Expect(snap.ActivePack.ID).To(Equal("id-1"))
			Expect(snap.ActivePack.CreatedAt).To(Equal(int64(1_700_000_000_000)))
			Expect(snap.ActivePack.Meta.ChapterTitle).To(Equal("Photosynthesis"))
			Expect(snap.Packs).To(HaveLen(1))

			stored := h.packs.Load(h.ctx, "asha@example.com")
			Expect(stored).To(HaveLen(1))
			Expect(stored[0].ID).To(Equal("id-1"))
		})

		It("puts the newest pack first", func() {
			h.generate()
			_, err := h.orch.CreateNew()
			Expect(err).NotTo(HaveOccurred())
			snap := h.generate()

			Expect(snap.Packs).To(HaveLen(2))
			Expect(snap.Packs[0].ID).To(Equal("id-2"))
			Expect(snap.Packs[1].ID).To(Equal("id-1"))
		})

		It("keeps the draft and reports the error when the quota is exceeded", func() {
			h.text.AddResponse(llm.MockResponse{Err: &llm.ErrRateLimit{Err: errors.New("RESOURCE_EXHAUSTED: quota exceeded")}})
			in := studypacktest.Input()

			snap, err := h.orch.SubmitInput(h.ctx, in)
			Expect(err).To(HaveOccurred())
			Expect(snap.View).To(Equal(orchestrator.ViewCreate))
			Expect(snap.Status).To(Equal(orchestrator.StatusError))
			Expect(snap.Error).To(ContainSubstring("quota exceeded"))
			Expect(snap.Draft).To(Equal(in))
			Expect(snap.Packs).To(BeEmpty())
			Expect(h.packs.Load(h.ctx, "asha@example.com")).To(BeEmpty())

			snap = h.generate()
			Expect(snap.Status).To(Equal(orchestrator.StatusSuccess))
			Expect(snap.Error).To(BeEmpty())
		})

		It("rejects an incomplete submission without calling the model", func() {
			in := studypacktest.Input()
			in.Subject = " "

			_, err := h.orch.SubmitInput(h.ctx, in)
			var ie *studypack.InputError
			Expect(errors.As(err, &ie)).To(BeTrue())
			Expect(h.text.CallCount()).To(BeZero())
		})

		It("runs a single generation at a time", func() {
			h.text.Gate = make(chan struct{})
			h.queuePack()

			done := make(chan error, 1)
			go func() {
				defer GinkgoRecover()
				_, err := h.orch.SubmitInput(h.ctx, studypacktest.Input())
				done <- err
			}()
			Eventually(h.orch.Generating).Should(BeTrue())

			_, err := h.orch.SubmitInput(h.ctx, studypacktest.Input())
			Expect(err).To(MatchError(orchestrator.ErrBusy))

			close(h.text.Gate)
			Eventually(done).Should(Receive(BeNil()))
			Expect(h.text.CallCount()).To(Equal(1))
			Expect(h.orch.Snapshot().Packs).To(HaveLen(1))
		})

		It("discards a result that arrives after logout", func() {
			h.text.Gate = make(chan struct{})
			h.queuePack()

			done := make(chan error, 1)
			go func() {
				defer GinkgoRecover()
				_, err := h.orch.SubmitInput(h.ctx, studypacktest.Input())
				done <- err
			}()
			Eventually(h.orch.Generating).Should(BeTrue())

			h.orch.Logout(h.ctx)
			close(h.text.Gate)

			Eventually(done).Should(Receive(MatchError(orchestrator.ErrSessionChanged)))
			snap := h.orch.Snapshot()
			Expect(snap.View).To(Equal(orchestrator.ViewLanding))
			Expect(snap.Packs).To(BeEmpty())
			Expect(h.packs.Load(h.ctx, "asha@example.com")).To(BeEmpty())
		})

		It("keeps the pack in memory when the store write fails", func() {
			h.backend = &failingWrites{Backend: h.st.Partitions(), prefix: "ssp_packs_", failures: -1}
			h.build(false)
			h.orch.Start(h.ctx)
			// The identity was persisted by onboard, so this is a restore.
			Expect(h.orch.Snapshot().View).To(Equal(orchestrator.ViewCreate))

			snap := h.generate()
			Expect(snap.View).To(Equal(orchestrator.ViewPack))
			Expect(snap.Packs).To(HaveLen(1))
			Expect(h.packs.Load(h.ctx, "asha@example.com")).To(BeEmpty())
		})

		It("writes an unsaved pack again with the next one", func() {
			h.backend = &failingWrites{Backend: h.st.Partitions(), prefix: "ssp_packs_", failures: 1}
			h.build(false)
			h.orch.Start(h.ctx)

			snap := h.generate()
			Expect(snap.Packs).To(HaveLen(1))
			Expect(h.packs.Load(h.ctx, "asha@example.com")).To(BeEmpty())

			_, err := h.orch.CreateNew()
			Expect(err).NotTo(HaveOccurred())
			snap = h.generate()

			ids := func(packs []studypack.Pack) []string {
				out := make([]string, len(packs))
				for i, p := range packs {
					out[i] = p.ID
				}
				return out
			}
			Expect(ids(snap.Packs)).To(Equal([]string{"id-2", "id-1"}))
			Expect(ids(h.packs.Load(h.ctx, "asha@example.com"))).To(Equal([]string{"id-2", "id-1"}))
		})
	})

	Describe("viewer", func() {
		BeforeEach(func() {
			h.onboard()
			h.generate()
		})

		It("switches tabs and toggles expansion", func() {
			snap, err := h.orch.SelectTab(orchestrator.TabNotes)
			Expect(err).NotTo(HaveOccurred())
			Expect(snap.Tab).To(Equal(orchestrator.TabNotes))

			snap, err = h.orch.ToggleNote(0)
			Expect(err).NotTo(HaveOccurred())
			Expect(snap.ExpandedNotes[0]).To(BeTrue())
			snap, _ = h.orch.ToggleNote(0)
			Expect(snap.ExpandedNotes[0]).To(BeFalse())

			snap, err = h.orch.ToggleTerm(1)
			Expect(err).NotTo(HaveOccurred())
			Expect(snap.ExpandedTerms[1]).To(BeTrue())

			_, err = h.orch.ToggleNote(999)
			Expect(err).To(HaveOccurred())
			_, err = h.orch.SelectTab("bogus")
			Expect(err).To(HaveOccurred())
		})

		It("clamps the flashcard index and resets on reopen", func() {
			snap, err := h.orch.SetFlashcard(999)
			Expect(err).NotTo(HaveOccurred())
			Expect(snap.FlashcardIndex).To(Equal(len(snap.ActivePack.Flashcards) - 1))
			snap, _ = h.orch.FlipFlashcard()
			Expect(snap.FlashcardFlipped).To(BeTrue())

			snap, err = h.orch.OpenPack(snap.ActivePack.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(snap.FlashcardIndex).To(BeZero())
			Expect(snap.FlashcardFlipped).To(BeFalse())
			Expect(snap.Tab).To(Equal(orchestrator.TabSummary))
		})

		It("scores the quiz", func() {
			q := h.orch.Snapshot().ActivePack.Quiz.Questions[0]
			snap, err := h.orch.AnswerQuiz(q.CorrectIndex)
			Expect(err).NotTo(HaveOccurred())
			Expect(snap.Quiz.Answered).To(BeTrue())
			Expect(snap.Quiz.Result.Correct).To(Equal(1))

			snap, _ = h.orch.AnswerQuiz((q.CorrectIndex + 1) % len(q.Options))
			Expect(snap.Quiz.Result.Correct).To(Equal(1))

			snap, _ = h.orch.RestartQuiz()
			Expect(snap.Quiz.Result.Correct).To(BeZero())
			Expect(snap.Quiz.Answered).To(BeFalse())
		})

		It("returns to an empty form on create new", func() {
			snap, err := h.orch.CreateNew()
			Expect(err).NotTo(HaveOccurred())
			Expect(snap.View).To(Equal(orchestrator.ViewCreate))
			Expect(snap.Status).To(Equal(orchestrator.StatusIdle))
			Expect(snap.ActivePack).To(BeNil())
			Expect(snap.Packs).To(HaveLen(1))

			_, err = h.orch.SelectTab(orchestrator.TabQuiz)
			Expect(err).To(MatchError(orchestrator.ErrNoActivePack))
		})

		It("reports unknown packs", func() {
			_, err := h.orch.OpenPack("missing")
			var nf *orchestrator.PackNotFoundError
			Expect(errors.As(err, &nf)).To(BeTrue())
		})
	})

	Describe("chat", func() {
		BeforeEach(func() {
			h.onboard()
			h.generate()
		})

		It("pins a fragment and answers about it", func() {
			tldr := h.orch.Snapshot().ActivePack.Summary.TLDR
			snap := h.orch.AskAI(studypack.SummaryContext(tldr))
			Expect(snap.ChatOpen).To(BeTrue())
			Expect(snap.ChatPinned).To(HavePrefix("Summary: "))
			Expect(snap.ChatMessages).To(HaveLen(1))

			h.text.AddResponse(llm.MockResponse{Content: []byte("Plants turn light into sugar.")})
			snap, err := h.orch.SendChat(h.ctx, "Explain simply")
			Expect(err).NotTo(HaveOccurred())
			Expect(snap.ChatMessages).To(HaveLen(3))
			Expect(snap.ChatMessages[2].Text).To(Equal("Plants turn light into sugar."))

			call, ok := h.text.LastCall()
			Expect(ok).To(BeTrue())
			Expect(call.Messages[0].Content).To(ContainSubstring("Context for the doubt:"))
		})

		It("apologizes when the assistant is unreachable", func() {
			h.text.AddResponse(llm.MockResponse{Err: errors.New("network down")})
			snap, err := h.orch.SendChat(h.ctx, "hello")
			Expect(err).NotTo(HaveOccurred())
			Expect(snap.ChatMessages[len(snap.ChatMessages)-1].Text).To(Equal("Sorry, I'm having trouble connecting right now."))
		})
	})

	Describe("visuals", func() {
		It("asks for a key when no image credential is configured", func() {
			h.onboard()
			h.generate()

			snap, err := h.orch.GenerateImage(h.ctx, "", studypack.ImageSize1K)
			Expect(err).NotTo(HaveOccurred())
			Expect(snap.Visuals).To(Equal(orchestrator.VisualsNeedsKey))
			Expect(snap.Images).To(BeEmpty())
			Expect(h.images.ImageCallCount()).To(BeZero())

			_, err = h.orch.ProvideImageCredential(h.ctx, "bad")
			Expect(err).To(HaveOccurred())

			snap, err = h.orch.ProvideImageCredential(h.ctx, "user-key")
			Expect(err).NotTo(HaveOccurred())
			Expect(snap.Visuals).To(Equal(orchestrator.VisualsIdle))

			h.images.AddImage(llm.MockImageResponse{Data: []byte("png"), MIMEType: "image/png"})
			snap, err = h.orch.GenerateImage(h.ctx, "", studypack.ImageSize2K)
			Expect(err).NotTo(HaveOccurred())
			Expect(snap.Images).To(HaveLen(1))
			Expect(snap.Images[0].Prompt).To(Equal("Educational illustration about Photosynthesis"))
			Expect(snap.Images[0].Size).To(Equal(studypack.ImageSize2K))
			Expect(strings.HasPrefix(snap.Images[0].URL, "data:image/png;base64,")).To(BeTrue())
			Expect(h.images.ImageCalls[0].Model).To(Equal("img-hd"))
		})

		Context("with an image credential", func() {
			BeforeEach(func() {
				h.build(true)
				h.onboard()
				h.generate()
			})

			It("prepends images and persists them", func() {
				h.images.AddImage(llm.MockImageResponse{Data: []byte("one")})
				h.images.AddImage(llm.MockImageResponse{Data: []byte("two")})

				_, err := h.orch.GenerateImage(h.ctx, "leaf cross-section", studypack.ImageSize1K)
				Expect(err).NotTo(HaveOccurred())
				snap, err := h.orch.GenerateImage(h.ctx, "chloroplast", studypack.ImageSize1K)
				Expect(err).NotTo(HaveOccurred())

				Expect(snap.Images).To(HaveLen(2))
				Expect(snap.Images[0].Prompt).To(Equal("chloroplast"))
				Expect(snap.Images[1].Prompt).To(Equal("leaf cross-section"))

				stored := h.packs.LoadImages(h.ctx, "asha@example.com")
				Expect(stored[snap.ActivePack.ID]).To(HaveLen(2))
			})

			It("keeps an image whose write failed and saves it with the next", func() {
				h.backend = &failingWrites{Backend: h.st.Partitions(), prefix: "ssp_images_", failures: 1}
				h.build(true)
				h.orch.Start(h.ctx)
				_, err := h.orch.OpenPack("id-1")
				Expect(err).NotTo(HaveOccurred())

				h.images.AddImage(llm.MockImageResponse{Data: []byte("one")})
				h.images.AddImage(llm.MockImageResponse{Data: []byte("two")})

				snap, err := h.orch.GenerateImage(h.ctx, "leaf", studypack.ImageSize1K)
				Expect(err).NotTo(HaveOccurred())
				Expect(snap.Images).To(HaveLen(1))
				Expect(h.packs.LoadImages(h.ctx, "asha@example.com")["id-1"]).To(BeEmpty())

				snap, err = h.orch.GenerateImage(h.ctx, "root", studypack.ImageSize1K)
				Expect(err).NotTo(HaveOccurred())
				Expect(snap.Images).To(HaveLen(2))
				Expect(h.packs.LoadImages(h.ctx, "asha@example.com")["id-1"]).To(HaveLen(2))
			})

			It("moves to failed and keeps existing images on error", func() {
				h.images.AddImage(llm.MockImageResponse{Data: []byte("one")})
				_, err := h.orch.GenerateImage(h.ctx, "leaf", studypack.ImageSize1K)
				Expect(err).NotTo(HaveOccurred())

				h.images.AddImage(llm.MockImageResponse{Err: errors.New("safety filter")})
				snap, err := h.orch.GenerateImage(h.ctx, "leaf", studypack.ImageSize1K)
				Expect(err).To(HaveOccurred())
				Expect(snap.Visuals).To(Equal(orchestrator.VisualsFailed))
				Expect(snap.VisualsError).To(Equal(orchestrator.VisualsFailedMessage))
				Expect(snap.Images).To(HaveLen(1))
			})

			It("asks for a key when the provider reports not found", func() {
				h.images.AddImage(llm.MockImageResponse{Err: &llm.ErrNotFound{Err: errors.New("model")}})
				snap, err := h.orch.GenerateImage(h.ctx, "leaf", studypack.ImageSize4K)
				Expect(err).To(HaveOccurred())
				Expect(snap.Visuals).To(Equal(orchestrator.VisualsNeedsKey))
			})

			It("runs a single image request at a time", func() {
				h.images.Gate = make(chan struct{})
				h.images.AddImage(llm.MockImageResponse{Data: []byte("one")})

				done := make(chan error, 1)
				go func() {
					defer GinkgoRecover()
					_, err := h.orch.GenerateImage(h.ctx, "leaf", studypack.ImageSize1K)
					done <- err
				}()
				Eventually(func() orchestrator.VisualsState {
					return h.orch.Snapshot().Visuals
				}).Should(Equal(orchestrator.VisualsGenerating))

				_, err := h.orch.GenerateImage(h.ctx, "leaf", studypack.ImageSize1K)
				Expect(err).To(MatchError(orchestrator.ErrBusy))

				close(h.images.Gate)
				Eventually(done).Should(Receive(BeNil()))
				Expect(h.images.ImageCallCount()).To(Equal(1))
			})
		})

		It("requires an open pack", func() {
			h.onboard()
			_, err := h.orch.GenerateImage(h.ctx, "leaf", studypack.ImageSize1K)
			Expect(err).To(MatchError(orchestrator.ErrNoActivePack))
		})
	})

	Describe("logout", func() {
		It("clears per-identity state and reverts preferences", func() {
			h.onboard()
			h.generate()
			h.orch.AskAI("Study Point: light")

			snap := h.orch.Logout(h.ctx)
			Expect(snap.View).To(Equal(orchestrator.ViewLanding))
			Expect(snap.SignedIn()).To(BeFalse())
			Expect(snap.ActivePack).To(BeNil())
			Expect(snap.Packs).To(BeEmpty())
			Expect(snap.ChatMessages).To(BeEmpty())
			Expect(snap.Status).To(Equal(orchestrator.StatusIdle))
			Expect(snap.Preferences).To(Equal(studypack.DefaultPreferences()))

			// Packs stay in the identity's partition.
			Expect(h.packs.Load(h.ctx, "asha@example.com")).To(HaveLen(1))
		})
	})
})
