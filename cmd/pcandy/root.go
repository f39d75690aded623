package main

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pushchain/candy-machine-client/candyClient/constant"
)

const (
	flagHome      = "home"
	flagRPCURL    = "rpc-url"
	flagLogLevel  = "log-level"
	flagLogFormat = "log-format"
	flagAwait     = "await-confirmation"
	flagWallet    = "wallet"
	flagNoJournal = "no-journal"

	envPrefix = "PCANDY"
)

func NewRootCmd() *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	rootCmd := &cobra.Command{
		Use:          "pcandy",
		Short:        "Candy machine NFT distribution client",
		SilenceUsage: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.String(flagHome, constant.DefaultNodeHome, "client home directory")
	flags.StringSlice(flagRPCURL, nil, "JSON-RPC endpoints, overrides rpc_urls")
	flags.Int(flagLogLevel, 1, "log level (0 debug, 1 info, 2 warn, 3 error)")
	flags.String(flagLogFormat, "console", "log format: console or json")
	flags.Bool(flagAwait, true, "wait for each transaction to reach the configured commitment")
	flags.String(flagWallet, "", "operator wallet keypair file (default: $"+constant.EnvWallet+")")
	flags.Bool(flagNoJournal, false, "do not record workflows in the local journal")
	_ = v.BindPFlags(flags)

	InitRootCmd(rootCmd, v)
	return rootCmd
}
