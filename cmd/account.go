package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/notepilot/internal/session"
	"github.com/abhisek/notepilot/internal/studypack"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in with a name and email (no password)",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		d, err := buildDeps(cmd)
		if err != nil {
			return err
		}
		defer d.Close()

		name, _ := cmd.Flags().GetString("name")
		email, _ := cmd.Flags().GetString("email")
		res, err := d.session.Login(ctx, name, email)
		if err != nil {
			return err
		}

		id := res.Identity()
		switch res.(type) {
		case session.ReturningIdentity:
			fmt.Printf("Welcome back, %s.\n", id.Name)
		case session.NewIdentity:
			// Headless sign-in skips the picker and saves the defaults.
			if _, err := d.session.UpdatePreferences(ctx, session.PreferenceUpdate{}); err != nil {
				return err
			}
			fmt.Printf("Signed in as %s <%s>. Change the look with 'notepilot prefs'.\n", id.Name, id.Email)
		}
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out; saved packs are kept",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		d, err := buildDeps(cmd)
		if err != nil {
			return err
		}
		defer d.Close()

		if _, ok := d.session.Restore(ctx); !ok {
			fmt.Println("Not signed in.")
			return nil
		}
		if err := d.session.Logout(ctx); err != nil {
			return err
		}
		fmt.Println("Signed out.")
		return nil
	},
}

var prefsCmd = &cobra.Command{
	Use:   "prefs",
	Short: "Show or change theme, font, shape and light/dark mode",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		d, err := buildDeps(cmd)
		if err != nil {
			return err
		}
		defer d.Close()

		id, ok := d.session.Restore(ctx)
		f := cmd.Flags()

		var u session.PreferenceUpdate
		changed := false
		if v, _ := f.GetString("theme"); v != "" {
			t, err := studypack.ParseTheme(v)
			if err != nil {
				return err
			}
			u.Theme, changed = &t, true
		}
		if v, _ := f.GetString("font"); v != "" {
			ft, err := studypack.ParseFont(v)
			if err != nil {
				return err
			}
			u.Font, changed = &ft, true
		}
		if v, _ := f.GetString("shape"); v != "" {
			s, err := studypack.ParseShape(v)
			if err != nil {
				return err
			}
			u.Shape, changed = &s, true
		}
		if changed {
			if !ok {
				return fmt.Errorf("not signed in: preferences belong to an identity")
			}
			if _, err := d.session.UpdatePreferences(ctx, u); err != nil {
				return err
			}
		}
		if v, _ := f.GetString("mode"); v != "" {
			m, err := studypack.ParseThemeMode(v)
			if err != nil {
				return err
			}
			if err := d.session.SetThemeMode(ctx, m); err != nil {
				return err
			}
		}

		p := d.session.Preferences()
		if ok {
			fmt.Printf("Identity: %s <%s>\n", id.Name, id.Email)
		}
		fmt.Printf("Theme:    %s\nFont:     %s\nShape:    %s\nMode:     %s\n", p.Theme, p.Font, p.Shape, d.session.ThemeMode())
		return nil
	},
}

func init() {
	loginCmd.Flags().String("name", "", "Display name (default \"Student\")")
	loginCmd.Flags().String("email", "", "Email; packs are saved per email")
	_ = loginCmd.MarkFlagRequired("email")

	prefsCmd.Flags().String("theme", "", "default, emerald, violet, rose, amber or original")
	prefsCmd.Flags().String("font", "", "Inter, Playfair Display, JetBrains Mono or Quicksand")
	prefsCmd.Flags().String("shape", "", "sharp, default or rounded")
	prefsCmd.Flags().String("mode", "", "light or dark")
}
