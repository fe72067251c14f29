package main

import (
	"github.com/colorcity-labs/colorcity-sdk-go/pkg/gallery"
	"github.com/colorcity-labs/colorcity-sdk-go/pkg/ledger"
	"github.com/colorcity-labs/colorcity-sdk-go/pkg/shared"
	"github.com/spf13/cobra"
)

var mintValue string

var mintCmd = &cobra.Command{
	Use:   "mint",
	Short: "Mint a new ColorCity token",
	Long:  "Pays the mint price (0.05 ETH unless --value is given) and prints the minted token.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := newApp(cmd.Context(), options)
		if err != nil {
			return err
		}
		defer rt.Close()

		mintOptions := ledger.MintOptions{Caller: rt.caller}
		if mintValue != "" {
			mintOptions.Value, err = shared.ParseEther(mintValue)
			if err != nil {
				return err
			}
		}

		response, err := rt.ledger.MintItem(cmd.Context(), mintOptions)
		if err != nil {
			return err
		}
		return gallery.RenderMint(cmd.OutOrStdout(), response)
	},
}

func init() {
	mintCmd.Flags().StringVar(&mintValue, "value", "", "ether sent with the mint, e.g. 0.05")
}
