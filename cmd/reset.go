package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete every study pack and image saved for an identity",
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

		if yes, _ := cmd.Flags().GetBool("yes"); !yes {
			n := len(d.packs.Load(ctx, email))
			fmt.Printf("This deletes %d study pack(s) for %s. Re-run with --yes to confirm.\n", n, email)
			return nil
		}

		if err := d.packs.Clear(ctx, email); err != nil {
			return fmt.Errorf("reset %s: %w", email, err)
		}
		d.log.Info("partitions cleared", "email", email)
		fmt.Printf("Cleared study packs and images for %s.\n", email)
		return nil
	},
}

func init() {
	resetCmd.Flags().String("email", "", "Identity to reset (default: signed-in identity)")
	resetCmd.Flags().BoolP("yes", "y", false, "Confirm deletion")
}
