package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/notepilot/internal/orchestrator"
	"github.com/abhisek/notepilot/internal/studypack"
)

var imageCmd = &cobra.Command{
	Use:   "image",
	Short: "Generate an illustration for a study pack",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		f := cmd.Flags()

		size := studypack.ImageSize(strings.ToUpper(mustString(f.GetString("size"))))
		if !size.Valid() {
			return fmt.Errorf("invalid --size %q (want 1K, 2K or 4K)", size)
		}

		d, err := buildDeps(cmd)
		if err != nil {
			return err
		}
		defer d.Close()

		o := d.orchestrator()
		snap := o.Start(ctx)
		if !snap.SignedIn() {
			return fmt.Errorf("not signed in: run 'notepilot login' first")
		}
		p, err := findPack(snap.Packs, mustString(f.GetString("pack")))
		if err != nil {
			return err
		}
		if _, err := o.OpenPack(p.ID); err != nil {
			return err
		}

		if key := mustString(f.GetString("key")); key != "" {
			if _, err := o.ProvideImageCredential(ctx, key); err != nil {
				return err
			}
		}

		fmt.Fprintln(os.Stderr, "Generating illustration...")
		snap, err = o.GenerateImage(ctx, mustString(f.GetString("prompt")), size)
		if snap.Visuals == orchestrator.VisualsNeedsKey {
			return fmt.Errorf("image generation needs a Gemini API key: set NOTEPILOT_GEMINI_API_KEY or pass --key")
		}
		if err != nil {
			return err
		}

		img := snap.Images[0]
		path := mustString(f.GetString("out"))
		if path == "" {
			path = img.FileName(p.ID)
		}
		b, err := img.Bytes()
		if err != nil {
			return err
		}
		if err := os.WriteFile(path, b, 0o644); err != nil {
			return err
		}
		fmt.Printf("Saved %s (%s, %q)\n", path, img.Size, img.Prompt)
		return nil
	},
}

func mustString(s string, _ error) string { return s }

func init() {
	f := imageCmd.Flags()
	f.String("pack", "", "Pack id (or unique prefix)")
	f.String("size", "1K", "Image size: 1K, 2K or 4K")
	f.String("prompt", "", "Illustration prompt (default: about the chapter)")
	f.String("key", "", "Gemini API key to use for this request")
	f.StringP("out", "o", "", "Output PNG path")
	_ = imageCmd.MarkFlagRequired("pack")
}
