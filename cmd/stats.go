package cmd

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/notepilot/internal/studypack"
)

// subjectStats aggregates the packs saved under one subject.
type subjectStats struct {
	Subject    string
	Packs      int
	Flashcards int
	Questions  int
	Images     int
	Latest     int64
}

// librarySubjects groups packs by subject, busiest subject first.
func librarySubjects(packs []studypack.Pack, images map[string][]studypack.GeneratedImage) []subjectStats {
	bySubject := make(map[string]*subjectStats)
	for _, p := range packs {
		key := strings.TrimSpace(p.Meta.Subject)
		if key == "" {
			key = "(none)"
		}
		s, ok := bySubject[key]
		if !ok {
			s = &subjectStats{Subject: key}
			bySubject[key] = s
		}
		s.Packs++
		s.Flashcards += len(p.Flashcards)
		s.Questions += len(p.Quiz.Questions)
		s.Images += len(images[p.ID])
		s.Latest = max(s.Latest, p.CreatedAt)
	}

	out := make([]subjectStats, 0, len(bySubject))
	for _, s := range bySubject {
		out = append(out, *s)
	}
	slices.SortFunc(out, func(a, b subjectStats) int {
		if c := cmp.Compare(b.Packs, a.Packs); c != 0 {
			return c
		}
		return cmp.Compare(a.Subject, b.Subject)
	})
	return out
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show study library statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		d, err := buildDeps(cmd)
		if err != nil {
			return err
		}
		defer d.Close()

		email, err := d.identity(ctx, cmd)
		if err != nil {
			return err
		}
		packs := d.packs.Load(ctx, email)
		if len(packs) == 0 {
			fmt.Println("No study packs yet.")
			return nil
		}
		subjects := librarySubjects(packs, d.packs.LoadImages(ctx, email))

		fmt.Printf("Study library for %s\n\n", email)
		fmt.Printf("%-20s  %5s  %10s  %9s  %6s  %s\n", "Subject", "Packs", "Flashcards", "Questions", "Images", "Latest")
		fmt.Println(strings.Repeat("─", 72))
		var total subjectStats
		for _, s := range subjects {
			fmt.Printf("%-20s  %5d  %10d  %9d  %6d  %s\n",
				truncate(s.Subject, 20), s.Packs, s.Flashcards, s.Questions, s.Images,
				time.UnixMilli(s.Latest).Local().Format("Jan 02, 2006"))
			total.Packs += s.Packs
			total.Flashcards += s.Flashcards
			total.Questions += s.Questions
			total.Images += s.Images
		}
		fmt.Println(strings.Repeat("─", 72))
		fmt.Printf("%-20s  %5d  %10d  %9d  %6d\n", "TOTAL", total.Packs, total.Flashcards, total.Questions, total.Images)
		return nil
	},
}

func init() {
	statsCmd.Flags().String("email", "", "Identity to read (default: signed-in identity)")
}
