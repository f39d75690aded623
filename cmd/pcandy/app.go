package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gagliardetto/solana-go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/pushchain/candy-machine-client/candyClient/config"
	"github.com/pushchain/candy-machine-client/candyClient/constant"
	"github.com/pushchain/candy-machine-client/candyClient/db"
	"github.com/pushchain/candy-machine-client/candyClient/journal"
	"github.com/pushchain/candy-machine-client/candyClient/keys"
	"github.com/pushchain/candy-machine-client/candyClient/layout"
	"github.com/pushchain/candy-machine-client/candyClient/ledger"
	"github.com/pushchain/candy-machine-client/candyClient/logger"
	"github.com/pushchain/candy-machine-client/candyClient/metrics"
	"github.com/pushchain/candy-machine-client/candyClient/orchestrator"
)

// app is the per-invocation runtime built from config file, flags and environment.
type app struct {
	v        *viper.Viper
	cfg      config.Config
	log      zerolog.Logger
	calc     *layout.Calculator
	registry *prometheus.Registry
}

func loadApp(v *viper.Viper) (*app, error) {
	home := v.GetString(flagHome)
	cfg, err := config.LoadOrDefault(home)
	if err != nil {
		return nil, err
	}
	cfg.NodeHome = home

	if v.IsSet(flagRPCURL) {
		cfg.RPCURLs = splitList(v.GetStringSlice(flagRPCURL))
	}
	if v.IsSet(flagLogLevel) {
		cfg.LogLevel = v.GetInt(flagLogLevel)
	}
	if v.IsSet(flagLogFormat) {
		cfg.LogFormat = v.GetString(flagLogFormat)
	}
	if v.IsSet(flagAwait) {
		cfg.AwaitConfirmation = v.GetBool(flagAwait)
	}

	entry, err := cfg.EntryLayout()
	if err != nil {
		return nil, err
	}
	calc, err := layout.NewCalculator(entry)
	if err != nil {
		return nil, err
	}

	return &app{
		v:        v,
		cfg:      cfg,
		log:      logger.Init(cfg),
		calc:     calc,
		registry: prometheus.NewRegistry(),
	}, nil
}

// splitList accepts both repeated flags and a comma separated environment value.
func splitList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func (a *app) openJournal() (*db.DB, *journal.Journal, error) {
	dir := filepath.Join(a.cfg.NodeHome, constant.DatabasesSubdir)
	database, err := db.OpenFileDB(dir, a.cfg.DatabaseFile, true)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open journal: %w", err)
	}
	return database, journal.New(database, a.log), nil
}

// orchestrator wires the ledger, metrics and journal. The returned func
// releases them.
func (a *app) orchestrator() (*orchestrator.Orchestrator, func(), error) {
	ids, err := a.cfg.ProgramIDs()
	if err != nil {
		return nil, nil, err
	}
	rpcLedger, err := ledger.New(&a.cfg, a.log)
	if err != nil {
		return nil, nil, err
	}
	closers := []func(){rpcLedger.Close}

	opts := []orchestrator.Option{orchestrator.WithMetrics(metrics.New(a.registry))}
	if !a.v.GetBool(flagNoJournal) {
		database, j, err := a.openJournal()
		if err != nil {
			rpcLedger.Close()
			return nil, nil, err
		}
		closers = append(closers, func() {
			if err := database.Close(); err != nil {
				a.log.Warn().Err(err).Msg("failed to close journal")
			}
		})
		opts = append(opts, orchestrator.WithRecorder(j))
	}

	o := orchestrator.New(rpcLedger, ids, a.calc, orchestrator.SettingsFromConfig(&a.cfg), a.log, opts...)
	return o, func() {
		for _, c := range closers {
			c()
		}
	}, nil
}

// wallet loads the operator wallet from --wallet or the environment.
func (a *app) wallet() (solana.PrivateKey, error) {
	if path := a.v.GetString(flagWallet); path != "" {
		return keys.LoadFromFile(path)
	}
	return keys.LoadFromEnv(constant.EnvWallet)
}

// configAddress resolves the config account from --config or the CONFIG keypair.
func configAddress(flag string) (solana.PublicKey, error) {
	if flag != "" {
		key, err := solana.PublicKeyFromBase58(flag)
		if err != nil {
			return solana.PublicKey{}, fmt.Errorf("invalid config address %q: %w", flag, err)
		}
		return key, nil
	}
	key, err := keys.LoadFromEnv(constant.EnvConfig)
	if err != nil {
		return solana.PublicKey{}, err
	}
	return key.PublicKey(), nil
}

func distributorUUID(flag string) (string, error) {
	if flag != "" {
		return flag, layout.ValidateUUID(flag)
	}
	uuid := strings.TrimSpace(os.Getenv(constant.EnvCandyMachineUUID))
	if uuid == "" {
		return "", fmt.Errorf("environment variable %s is not set", constant.EnvCandyMachineUUID)
	}
	return uuid, layout.ValidateUUID(uuid)
}
