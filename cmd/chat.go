package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/notepilot/internal/studypack"
	"github.com/abhisek/notepilot/internal/ui/markdown"
)

var chatCmd = &cobra.Command{
	Use:   "chat <message>",
	Short: "Ask the study assistant a question",
	Long: `Ask the study assistant a question, optionally about one part of a pack.

--about selects the fragment: summary, point:N, note:N, term:N,
flashcard:N or quiz:N (N counts from 1).

Examples:
  notepilot chat "What is osmosis?"
  notepilot chat --pack 3f2a --about term:4 "Can you explain this like I'm 5 years old?"`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		d, err := buildDeps(cmd)
		if err != nil {
			return err
		}
		defer d.Close()

		o := d.orchestrator()
		snap := o.Start(ctx)

		if id, _ := cmd.Flags().GetString("pack"); id != "" {
			if !snap.SignedIn() {
				return fmt.Errorf("not signed in: run 'notepilot login' first")
			}
			p, err := findPack(snap.Packs, id)
			if err != nil {
				return err
			}
			about, _ := cmd.Flags().GetString("about")
			fragment, err := fragmentFor(p, about)
			if err != nil {
				return err
			}
			o.AskAI(fragment)
		}

		snap, err = o.SendChat(ctx, strings.Join(args, " "))
		if err != nil {
			return err
		}
		reply := snap.ChatMessages[len(snap.ChatMessages)-1]
		fmt.Println(markdown.Render(reply.Text, 100, snap.ThemeMode))
		return nil
	},
}

// fragmentFor resolves an --about selector to the pinned chat context.
func fragmentFor(p studypack.Pack, about string) (string, error) {
	kind, idx, _ := strings.Cut(about, ":")
	if kind == "" || kind == "summary" {
		return studypack.SummaryContext(p.Summary.TLDR), nil
	}

	n, err := strconv.Atoi(idx)
	if err != nil || n < 1 {
		return "", fmt.Errorf("invalid --about %q: want %s:N with N >= 1", about, kind)
	}
	i := n - 1

	outOfRange := func(have int) error {
		return fmt.Errorf("--about %s: pack has %d", about, have)
	}
	switch kind {
	case "point":
		if i >= len(p.Summary.ImportantPoints) {
			return "", outOfRange(len(p.Summary.ImportantPoints))
		}
		return studypack.PointContext(p.Summary.ImportantPoints[i]), nil
	case "note":
		if i >= len(p.Notes) {
			return "", outOfRange(len(p.Notes))
		}
		return studypack.NoteContext(p.Notes[i]), nil
	case "term":
		if i >= len(p.KeyTerms) {
			return "", outOfRange(len(p.KeyTerms))
		}
		return studypack.TermContext(p.KeyTerms[i]), nil
	case "flashcard":
		if i >= len(p.Flashcards) {
			return "", outOfRange(len(p.Flashcards))
		}
		return studypack.FlashcardContext(p.Flashcards[i]), nil
	case "quiz":
		if i >= len(p.Quiz.Questions) {
			return "", outOfRange(len(p.Quiz.Questions))
		}
		return studypack.QuizContext(p.Quiz.Questions[i]), nil
	}
	return "", fmt.Errorf("unknown --about kind %q", kind)
}

func init() {
	chatCmd.Flags().String("pack", "", "Pack id (or unique prefix) to ask about")
	chatCmd.Flags().String("about", "summary", "Fragment of the pack to pin")
}
