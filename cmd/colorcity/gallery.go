package main

import (
	"github.com/colorcity-labs/colorcity-sdk-go/pkg/gallery"
	"github.com/spf13/cobra"
)

var galleryCmd = &cobra.Command{
	Use:   "gallery [owner]",
	Short: "Show the tokens held by an account",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := newApp(cmd.Context(), options)
		if err != nil {
			return err
		}
		defer rt.Close()

		owner, err := rt.owner(args)
		if err != nil {
			return err
		}
		result, err := rt.resolver.Resolve(cmd.Context(), owner)
		if err != nil {
			return err
		}
		return gallery.Render(cmd.OutOrStdout(), result)
	},
}
