package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/notepilot/internal/studypack"
	"github.com/abhisek/notepilot/internal/ui/markdown"
)

var packsCmd = &cobra.Command{
	Use:   "packs",
	Short: "List, show and export saved study packs",
}

var packsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved study packs, newest first",
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
			fmt.Println("No study packs yet. Create one with 'notepilot generate' or the app.")
			return nil
		}
		images := d.packs.LoadImages(ctx, email)

		fmt.Printf("%-36s  %-12s  %-14s  %-28s  %s\n", "ID", "Created", "Subject", "Chapter", "Images")
		fmt.Println(strings.Repeat("─", 104))
		for _, p := range packs {
			fmt.Printf("%-36s  %-12s  %-14s  %-28s  %d\n",
				p.ID,
				time.UnixMilli(p.CreatedAt).Local().Format("Jan 02, 2006"),
				truncate(p.Meta.Subject, 14),
				truncate(p.Meta.ChapterTitle, 28),
				len(images[p.ID]),
			)
		}
		return nil
	},
}

var packsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Render a study pack in the terminal",
	Args:  cobra.ExactArgs(1),
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
		p, err := findPack(d.packs.Load(ctx, email), args[0])
		if err != nil {
			return err
		}

		width, _ := cmd.Flags().GetInt("width")
		fmt.Println(markdown.Render(markdown.Pack(p), width, d.session.ThemeMode()))
		return nil
	},
}

var packsExportCmd = &cobra.Command{
	Use:   "export <id>",
	Short: "Export a study pack as JSON or Markdown",
	Args:  cobra.ExactArgs(1),
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
		p, err := findPack(d.packs.Load(ctx, email), args[0])
		if err != nil {
			return err
		}

		out := os.Stdout
		if path, _ := cmd.Flags().GetString("out"); path != "" {
			f, err := os.Create(path)
			if err != nil {
				return fmt.Errorf("create %s: %w", path, err)
			}
			defer f.Close()
			out = f
		}

		switch format, _ := cmd.Flags().GetString("format"); format {
		case "json":
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(p)
		case "md", "markdown":
			_, err := fmt.Fprint(out, markdown.Pack(p))
			return err
		default:
			return fmt.Errorf("unknown format %q (want json or md)", format)
		}
	},
}

// findPack matches a full id or a unique prefix.
func findPack(packs []studypack.Pack, id string) (studypack.Pack, error) {
	var match []studypack.Pack
	for _, p := range packs {
		if p.ID == id {
			return p, nil
		}
		if strings.HasPrefix(p.ID, id) {
			match = append(match, p)
		}
	}
	switch len(match) {
	case 0:
		return studypack.Pack{}, fmt.Errorf("study pack %q not found", id)
	case 1:
		return match[0], nil
	}
	return studypack.Pack{}, fmt.Errorf("id prefix %q is ambiguous (%d packs)", id, len(match))
}

func truncate(s string, max int) string {
	if len([]rune(s)) <= max {
		return s
	}
	return string([]rune(s)[:max-1]) + "…"
}

func init() {
	for _, c := range []*cobra.Command{packsListCmd, packsShowCmd, packsExportCmd} {
		c.Flags().String("email", "", "Identity to read (default: signed-in identity)")
		packsCmd.AddCommand(c)
	}
	packsShowCmd.Flags().Int("width", 100, "Word wrap width")
	packsExportCmd.Flags().StringP("format", "f", "json", "Output format: json or md")
	packsExportCmd.Flags().StringP("out", "o", "", "Write to file instead of stdout")
}
