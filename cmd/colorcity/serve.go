package main

import (
	"github.com/colorcity-labs/colorcity-sdk-go/pkg/gallery"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

var (
	serveAddress    string
	serveEnableMint bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the gallery API over HTTP",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := newApp(cmd.Context(), options)
		if err != nil {
			return err
		}
		defer rt.Close()

		if options.logLevel != "debug" {
			gin.SetMode(gin.ReleaseMode)
		}

		config := gallery.ServerConfig{
			Resolver: rt.resolver,
			Network:  rt.operator.Network,
			Logger:   rt.logger,
		}
		if serveEnableMint {
			config.Minter = rt.ledger
		}
		server, err := gallery.NewServer(config)
		if err != nil {
			return err
		}
		return server.Run(cmd.Context(), serveAddress)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddress, "listen", "127.0.0.1:8080", "HTTP listen address")
	serveCmd.Flags().BoolVar(&serveEnableMint, "enable-mint", false, "serve POST /api/v1/mint, paid by the configured signer")
}
