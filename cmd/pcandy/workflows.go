package main

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/spf13/cast"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pushchain/candy-machine-client/candyClient/catalog"
	"github.com/pushchain/candy-machine-client/candyClient/constant"
	"github.com/pushchain/candy-machine-client/candyClient/keys"
	"github.com/pushchain/candy-machine-client/candyClient/layout"
	"github.com/pushchain/candy-machine-client/candyClient/orchestrator"
)

func initCmd(v *viper.Viper) *cobra.Command {
	var (
		catalogPath   string
		capacity      uint32
		price         uint64
		goLive        string
		payInToken    bool
		tokenDecimals uint8
	)
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a config account, upload the catalog and create the distributor",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(v)
			if err != nil {
				return err
			}
			wallet, err := a.wallet()
			if err != nil {
				return err
			}
			lines, err := initialCatalog(catalogPath, capacity, a.calc)
			if err != nil {
				return err
			}

			params := orchestrator.InitializeParams{
				Wallet:               wallet,
				Catalog:              lines,
				Capacity:             capacity,
				Symbol:               a.cfg.Symbol,
				SellerFeeBasisPoints: a.cfg.SellerFeeBasisPoints,
				MaxSupply:            a.cfg.MaxSupply,
				IsMutable:            a.cfg.IsMutable,
				RetainAuthority:      a.cfg.RetainAuthority,
				Price:                a.cfg.PriceLamports,
			}
			if cmd.Flags().Changed("price") {
				params.Price = price
			}
			if goLive != "" {
				ts, err := parseGoLive(goLive, time.Now())
				if err != nil {
					return err
				}
				params.GoLiveDate = &ts
			}
			if payInToken {
				params.Payment = orchestrator.PaymentCustomMint{Decimals: tokenDecimals}
			}

			o, closeFn, err := a.orchestrator()
			if err != nil {
				return err
			}
			defer closeFn()

			// The keypairs are printed even when confirmation failed, since
			// the transaction may still land.
			result, err := o.InitializeDistributor(cmd.Context(), params)
			if result != nil {
				printInitResult(cmd.OutOrStdout(), result, err)
			}
			return err
		},
	}
	cmd.Flags().StringVar(&catalogPath, "catalog", "", "JSON file with the ordered list of {name, uri} items (optional with --capacity)")
	cmd.Flags().Uint32Var(&capacity, "capacity", 0, "catalog lines the config account can hold (default: catalog length)")
	cmd.Flags().Uint64Var(&price, "price", 0, "price per item in lamports (default: price_lamports)")
	cmd.Flags().StringVar(&goLive, "go-live", "", "go-live time: now, unix seconds or RFC3339 (default: not live)")
	cmd.Flags().BoolVar(&payInToken, "pay-in-token", false, "create a payment token mint and charge in it")
	cmd.Flags().Uint8Var(&tokenDecimals, "token-decimals", 0, "decimals of the payment token mint")
	return cmd
}

// initialCatalog loads the lines written by init. Without a catalog file the
// config account is only sized by capacity and filled later with add-lines.
func initialCatalog(path string, capacity uint32, calc *layout.Calculator) ([]layout.CatalogLine, error) {
	if path != "" {
		return catalog.Load(path, calc)
	}
	if capacity == 0 {
		return nil, fmt.Errorf("either --catalog or --capacity is required")
	}
	return nil, nil
}

// resultLabel marks output whose transaction was accepted but not confirmed.
func resultLabel(done string, err error) string {
	if err != nil {
		return "submitted, unconfirmed"
	}
	return done
}

func printMintResult(out io.Writer, r *orchestrator.MintResult, err error) {
	fmt.Fprintf(out, "mint %s - %s mint=%s token=%s\n",
		resultLabel("complete", err), r.Signature, r.Mint, r.TokenAccount)
}

func printInitResult(out io.Writer, r *orchestrator.InitializeResult, err error) {
	fmt.Fprintf(out, "%s - %s\n", resultLabel("initialized", err), r.Signature)
	fmt.Fprintf(out, "distributor: %s (bump %d)\n", r.Distributor.Key, r.Distributor.Bump)
	fmt.Fprintf(out, "config storage: %d bytes\n", r.StorageSize)
	if r.PaymentMint != nil {
		fmt.Fprintf(out, "payment mint: %s, payments to %s\n", r.PaymentMint, r.PaymentAccount)
	}
	fmt.Fprintf(out, "%s=%s\n", constant.EnvConfig, keys.FormatSecret(r.Config))
	fmt.Fprintf(out, "%s=%s\n", constant.EnvAuthority, keys.FormatSecret(r.Authority))
	fmt.Fprintf(out, "%s=%s\n", constant.EnvCandyMachineUUID, r.DistributorUUID)
}

func addLinesCmd(v *viper.Viper) *cobra.Command {
	var (
		catalogPath string
		configFlag  string
		offset      uint32
		batch       int
	)
	cmd := &cobra.Command{
		Use:   "add-lines",
		Short: "Append catalog lines to an existing config account",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(v)
			if err != nil {
				return err
			}
			wallet, err := a.wallet()
			if err != nil {
				return err
			}
			authority, err := keys.LoadFromEnv(constant.EnvAuthority)
			if err != nil {
				return err
			}
			configKey, err := configAddress(configFlag)
			if err != nil {
				return err
			}
			lines, err := catalog.Load(catalogPath, a.calc)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("batch") {
				batch = a.cfg.LinesPerTransaction
			}

			o, closeFn, err := a.orchestrator()
			if err != nil {
				return err
			}
			defer closeFn()

			sigs, err := o.AppendCatalog(cmd.Context(), orchestrator.AppendParams{
				Wallet:    wallet,
				Authority: authority,
				Config:    configKey,
				Offset:    offset,
				Lines:     lines,
			}, batch)
			for _, sig := range sigs {
				fmt.Fprintf(cmd.OutOrStdout(), "appended - %s\n", sig)
			}
			return err
		},
	}
	cmd.Flags().StringVar(&catalogPath, "catalog", "", "JSON file with the lines to append")
	cmd.Flags().StringVar(&configFlag, "config", "", "config account address (default: public key of $"+constant.EnvConfig+")")
	cmd.Flags().Uint32Var(&offset, "offset", 0, "index of the first appended line")
	cmd.Flags().IntVar(&batch, "batch", 0, "lines per transaction (default: lines_per_transaction)")
	_ = cmd.MarkFlagRequired("catalog")
	_ = cmd.MarkFlagRequired("offset")
	return cmd
}

func mintCmd(v *viper.Viper) *cobra.Command {
	var (
		configFlag string
		uuidFlag   string
		recipient  string
		price      uint64
		count      int
	)
	cmd := &cobra.Command{
		Use:   "mint",
		Short: "Mint items from a distributor, one transaction each",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(v)
			if err != nil {
				return err
			}
			wallet, err := a.wallet()
			if err != nil {
				return err
			}
			authority, err := keys.LoadFromEnv(constant.EnvAuthority)
			if err != nil {
				return err
			}
			configKey, err := configAddress(configFlag)
			if err != nil {
				return err
			}
			uuid, err := distributorUUID(uuidFlag)
			if err != nil {
				return err
			}

			params := orchestrator.MintParams{
				Wallet:          wallet,
				Authority:       authority,
				Config:          configKey,
				DistributorUUID: uuid,
			}
			if recipient != "" {
				params.Recipient, err = solana.PublicKeyFromBase58(recipient)
				if err != nil {
					return fmt.Errorf("invalid recipient %q: %w", recipient, err)
				}
			}
			if cmd.Flags().Changed("price") {
				params.Price = &price
			}

			o, closeFn, err := a.orchestrator()
			if err != nil {
				return err
			}
			defer closeFn()

			for i := 0; i < count; i++ {
				result, err := o.MintOne(cmd.Context(), params)
				if result != nil {
					printMintResult(cmd.OutOrStdout(), result, err)
				}
				if err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&configFlag, "config", "", "config account address (default: public key of $"+constant.EnvConfig+")")
	cmd.Flags().StringVar(&uuidFlag, "uuid", "", "distributor uuid (default: $"+constant.EnvCandyMachineUUID+")")
	cmd.Flags().StringVar(&recipient, "recipient", "", "owner of the minted item (default: the wallet)")
	cmd.Flags().Uint64Var(&price, "price", 0, "lamports forwarded for the price (default: read from the distributor)")
	cmd.Flags().IntVar(&count, "count", 1, "number of items to mint")
	return cmd
}

func goLiveCmd(v *viper.Viper) *cobra.Command {
	var (
		configFlag string
		uuidFlag   string
		at         string
		price      uint64
	)
	cmd := &cobra.Command{
		Use:   "go-live",
		Short: "Set the go-live date and/or price of a distributor",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(v)
			if err != nil {
				return err
			}
			wallet, err := a.wallet()
			if err != nil {
				return err
			}
			authority, err := keys.LoadFromEnv(constant.EnvAuthority)
			if err != nil {
				return err
			}
			configKey, err := configAddress(configFlag)
			if err != nil {
				return err
			}
			uuid, err := distributorUUID(uuidFlag)
			if err != nil {
				return err
			}

			params := orchestrator.UpdateParams{
				Wallet:          wallet,
				Authority:       authority,
				Config:          configKey,
				DistributorUUID: uuid,
			}
			if at != "" {
				ts, err := parseGoLive(at, time.Now())
				if err != nil {
					return err
				}
				params.GoLiveDate = &ts
			}
			if cmd.Flags().Changed("price") {
				params.Price = &price
			}

			o, closeFn, err := a.orchestrator()
			if err != nil {
				return err
			}
			defer closeFn()

			result, err := o.UpdateDistributor(cmd.Context(), params)
			if result != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s - %s\n", resultLabel("updated", err), result.Distributor.Key, result.Signature)
			}
			return err
		},
	}
	cmd.Flags().StringVar(&configFlag, "config", "", "config account address (default: public key of $"+constant.EnvConfig+")")
	cmd.Flags().StringVar(&uuidFlag, "uuid", "", "distributor uuid (default: $"+constant.EnvCandyMachineUUID+")")
	cmd.Flags().StringVar(&at, "at", "now", "go-live time: now, unix seconds or RFC3339; empty keeps the current date")
	cmd.Flags().Uint64Var(&price, "price", 0, "new price in lamports")
	return cmd
}

func showCmd(v *viper.Viper) *cobra.Command {
	var configFlag, uuidFlag string
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the on-chain state of a distributor",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(v)
			if err != nil {
				return err
			}
			configKey, err := configAddress(configFlag)
			if err != nil {
				return err
			}
			uuid, err := distributorUUID(uuidFlag)
			if err != nil {
				return err
			}

			o, closeFn, err := a.orchestrator()
			if err != nil {
				return err
			}
			defer closeFn()

			d, address, err := o.FetchDistributor(cmd.Context(), configKey, uuid)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "distributor:     %s (bump %d)\n", address.Key, d.Bump)
			fmt.Fprintf(out, "authority:       %s\n", d.Authority)
			fmt.Fprintf(out, "wallet:          %s\n", d.Wallet)
			if d.PaysInToken() {
				fmt.Fprintf(out, "token mint:      %s\n", d.TokenMint)
			}
			fmt.Fprintf(out, "price:           %d\n", d.Data.Price)
			fmt.Fprintf(out, "items:           %d redeemed of %d\n", d.ItemsRedeemed, d.Data.ItemsAvailable)
			if d.Data.GoLiveDate == nil {
				fmt.Fprintln(out, "go-live:         not set")
			} else {
				fmt.Fprintf(out, "go-live:         %s\n", d.GoLiveTime().UTC().Format(time.RFC3339))
			}
			fmt.Fprintf(out, "live:            %t\n", d.IsLive(time.Now()))
			return nil
		},
	}
	cmd.Flags().StringVar(&configFlag, "config", "", "config account address (default: public key of $"+constant.EnvConfig+")")
	cmd.Flags().StringVar(&uuidFlag, "uuid", "", "distributor uuid (default: $"+constant.EnvCandyMachineUUID+")")
	return cmd
}

// parseGoLive accepts "now", decimal unix seconds or any date format cast
// understands.
func parseGoLive(value string, now time.Time) (int64, error) {
	if value == "now" {
		return now.Unix(), nil
	}
	if ts, err := strconv.ParseInt(value, 10, 64); err == nil {
		return ts, nil
	}
	t, err := cast.ToTimeE(value)
	if err != nil {
		return 0, fmt.Errorf("invalid go-live time %q: use now, unix seconds or RFC3339", value)
	}
	return t.Unix(), nil
}
