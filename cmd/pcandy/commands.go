package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pushchain/candy-machine-client/candyClient/config"
	"github.com/pushchain/candy-machine-client/candyClient/constant"
	"github.com/pushchain/candy-machine-client/candyClient/idl"
	"github.com/pushchain/candy-machine-client/candyClient/keys"
)

// Set at build time with -ldflags "-X main.Version=... -X main.Commit=...".
var (
	Version = "dev"
	Commit  = ""
)

func InitRootCmd(rootCmd *cobra.Command, v *viper.Viper) {
	rootCmd.AddCommand(initCmd(v))
	rootCmd.AddCommand(addLinesCmd(v))
	rootCmd.AddCommand(mintCmd(v))
	rootCmd.AddCommand(goLiveCmd(v))
	rootCmd.AddCommand(showCmd(v))
	rootCmd.AddCommand(serveCmd(v))
	rootCmd.AddCommand(configCmd(v))
	rootCmd.AddCommand(keygenCmd())
	rootCmd.AddCommand(idlCmd())
	rootCmd.AddCommand(versionCmd())
}

func keygenCmd() *cobra.Command {
	var uuid bool
	cmd := &cobra.Command{
		Use:   "keygen",
		Short: "Generate a keypair and print its secret in the form read from the environment",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if uuid {
				id, err := keys.NewUUID()
				if err != nil {
					return err
				}
				fmt.Fprintln(out, id)
				return nil
			}
			key, err := keys.Generate()
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "PUBKEY=%s\n", key.PublicKey())
			fmt.Fprintf(out, "SECRET=%s\n", keys.FormatSecret(key))
			fmt.Fprintf(out, "SECRET_BASE58=%s\n", keys.FormatBase58(key))
			return nil
		},
	}
	cmd.Flags().BoolVar(&uuid, "uuid", false, "print a fresh 6 character uuid instead")
	return cmd
}

func idlCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "idl [instruction]",
		Short: "Print the account contract of the pinned program",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := idl.Load()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(args) == 0 {
				fmt.Fprintf(out, "%s %s\n", doc.Name, doc.Version)
				for _, ix := range doc.Instructions {
					fmt.Fprintf(out, "  %s (%d accounts, %d args)\n", ix.SnakeName(), len(ix.Accounts), len(ix.Args))
				}
				return nil
			}

			ix, err := doc.Instruction(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "%s\n", ix.SnakeName())
			for i, acc := range ix.Accounts {
				flags := ""
				if acc.IsMut {
					flags += "w"
				}
				if acc.IsSigner {
					flags += "s"
				}
				fmt.Fprintf(out, "  %2d %-22s %s\n", i, acc.Name, flags)
			}
			for _, arg := range ix.Args {
				fmt.Fprintf(out, "  arg %s %s\n", arg.Name, string(arg.Type))
			}
			return nil
		},
	}
}

func configCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the client configuration file",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Write the default configuration under the home directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			home := v.GetString(flagHome)
			path := filepath.Join(home, constant.ConfigSubdir, constant.ConfigFileName)
			if _, err := os.Stat(path); err == nil {
				return fmt.Errorf("config file already exists: %s", path)
			}
			cfg, err := config.LoadDefaultConfig()
			if err != nil {
				return err
			}
			cfg.NodeHome = home
			if err := config.Save(cfg, home); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
			return nil
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(v)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(a.cfg)
		},
	})
	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print pcandy version info",
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Name:       %s\n", "pcandy")
			fmt.Fprintf(out, "Version:    %s\n", Version)
			fmt.Fprintf(out, "Commit:     %s\n", Commit)
		},
	}
}
