package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/abhisek/notepilot/internal/pdfinput"
	"github.com/abhisek/notepilot/internal/studypack"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a study pack without the TUI",
	Long: `Generate a study pack from chapter text or a PDF and save it for the
signed-in identity (or --email).

Examples:
  notepilot generate --grade "Grade 8" --subject Biology --title Photosynthesis --text-file ch4.txt
  notepilot generate --grade "Grade 10" --subject Physics --title Optics --pdf optics.pdf --json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		in, err := inputFromFlags(cmd)
		if err != nil {
			return err
		}

		d, err := buildDeps(cmd)
		if err != nil {
			return err
		}
		defer d.Close()

		email, err := d.identity(ctx, cmd)
		if err != nil {
			return err
		}

		if in.ShortText() {
			fmt.Fprintf(os.Stderr, "Note: chapter text is shorter than the recommended %d characters.\n", studypack.MinChapterChars)
		}
		fmt.Fprintln(os.Stderr, "Generating study pack...")

		data, err := d.gateway.GeneratePack(ctx, in)
		if err != nil {
			return err
		}

		pack := studypack.Pack{StudyPackData: *data, ID: uuid.NewString(), CreatedAt: time.Now().UnixMilli()}
		if _, err := d.packs.Prepend(ctx, email, pack); err != nil {
			fmt.Fprintln(os.Stderr, "Warning: pack was generated but could not be saved:", err)
		}

		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(pack)
		}

		fmt.Printf("Saved %s (%s)\n\n", pack.ID, pack.Meta.ChapterTitle)
		fmt.Println(pack.Summary.TLDR)
		fmt.Printf("\n%d notes · %d terms · %d flashcards · %d quiz questions\n",
			len(pack.Notes), len(pack.KeyTerms), len(pack.Flashcards), len(pack.Quiz.Questions))
		fmt.Printf("\nView it with: notepilot packs show %s\n", pack.ID)
		return nil
	},
}

func inputFromFlags(cmd *cobra.Command) (studypack.Input, error) {
	f := cmd.Flags()
	var in studypack.Input
	in.Grade, _ = f.GetString("grade")
	in.Subject, _ = f.GetString("subject")
	in.ChapterTitle, _ = f.GetString("title")
	in.Language, _ = f.GetString("language")
	in.ChapterText, _ = f.GetString("text")

	if path, _ := f.GetString("text-file"); path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return in, fmt.Errorf("read chapter text: %w", err)
		}
		in.ChapterText = string(b)
	}
	if path, _ := f.GetString("pdf"); path != "" {
		doc, err := pdfinput.Load(path)
		if err != nil {
			return in, err
		}
		in.PDFData = doc.Data
		fmt.Fprintf(os.Stderr, "Attached %s (%d pages)\n", doc.Name, doc.Pages)
	}

	in = in.Normalized()
	return in, in.Validate()
}

func init() {
	f := generateCmd.Flags()
	f.String("grade", "", "Grade level, e.g. \"Grade 8\"")
	f.String("subject", "", "Subject, e.g. Biology")
	f.String("title", "", "Chapter title")
	f.String("language", studypack.DefaultLanguage, "Output language")
	f.String("text", "", "Chapter text")
	f.String("text-file", "", "Read chapter text from a file")
	f.String("pdf", "", "Attach a PDF instead of text")
	f.String("email", "", "Save for this identity instead of the signed-in one")
	f.Bool("json", false, "Print the saved pack as JSON")
	generateCmd.MarkFlagsMutuallyExclusive("text", "text-file", "pdf")
}
