package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

const (
	ledgerEVM   = "evm"
	ledgerLocal = "local"
)

type globalOptions struct {
	network    string
	rpcURL     string
	contract   string
	ledger     string
	dbPath     string
	gatewayURL string
	caller     string
	logLevel   string
	logFormat  string
	logFile    string
}

var options globalOptions

var rootCmd = &cobra.Command{
	Use:           "colorcity",
	Short:         "Mint and browse ColorCity NFTs",
	Long:          "colorcity mints ColorCityNFT tokens and shows the collection held by an account.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&options.network, "network", "", "network name or chain ID (default from COLORCITY_NETWORK, then hardhat)")
	flags.StringVar(&options.rpcURL, "rpc-url", "", "JSON-RPC endpoint (default from COLORCITY_RPC_URL, then the network default)")
	flags.StringVar(&options.contract, "contract", "", "ColorCityNFT contract address (default from COLORCITY_CONTRACT_ADDRESS)")
	flags.StringVar(&options.ledger, "ledger", ledgerEVM, "ledger backend: evm or local")
	flags.StringVar(&options.dbPath, "db", "", "badger directory for the local ledger (empty keeps it in memory)")
	flags.StringVar(&options.gatewayURL, "gateway", "", "IPFS gateway for ipfs:// token URIs")
	flags.StringVar(&options.caller, "caller", "", "account minting on the local ledger (default: the configured signer)")
	flags.StringVar(&options.logLevel, "log-level", "info", "log level: debug, info, warn, error")
	flags.StringVar(&options.logFormat, "log-format", "console", "log format: console or json")
	flags.StringVar(&options.logFile, "log-file", "", "also write JSON logs to this file, rotated")

	rootCmd.AddCommand(mintCmd, galleryCmd, watchCmd, serveCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "colorcity: %v\n", err)
		stop()
		os.Exit(1)
	}
}
