package config

import (
	"flag"
	"io"
	"time"

	"github.com/dmitrijs2005/storageorder/internal/flagx"
)

// Flags lists every flag the CLI understands, so callers can separate them
// from the command and its operands with flagx.Positional.
var Flags = flagx.Set{
	Values: []string{
		"-c", "-config", "-n", "-app", "-algod", "-algod-token", "-kmd", "-kmd-token",
		"-w", "-k", "-pass", "-g", "-d", "-timeout", "-rounds", "-log", "-log-format",
	},
	Bools: []string{"-p"},
}

// parseFlags overlays cfg with the flags found in args.
func parseFlags(cfg *Config, args []string) error {
	fs := flag.NewFlagSet("main", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var configPath string
	fs.StringVar(&configPath, "c", "", "path to config file")
	fs.StringVar(&configPath, "config", "", "path to config file")

	network := fs.String("n", string(cfg.Network), "network (testnet|mainnet)")
	fs.Uint64Var(&cfg.AppID, "app", cfg.AppID, "storage order application id")
	fs.StringVar(&cfg.AlgodAddr, "algod", cfg.AlgodAddr, "algod address")
	fs.StringVar(&cfg.AlgodToken, "algod-token", cfg.AlgodToken, "algod API token")
	fs.StringVar(&cfg.KMDAddr, "kmd", cfg.KMDAddr, "kmd address")
	fs.StringVar(&cfg.KMDToken, "kmd-token", cfg.KMDToken, "kmd API token")
	fs.StringVar(&cfg.WalletName, "w", cfg.WalletName, "wallet / key name")
	fs.StringVar(&cfg.Keystore, "k", cfg.Keystore, "keystore (kmd|local)")
	fs.StringVar(&cfg.KeystorePassphrase, "pass", cfg.KeystorePassphrase, "local keystore passphrase")
	fs.StringVar(&cfg.GatewayURL, "g", cfg.GatewayURL, "content gateway add endpoint")
	fs.BoolVar(&cfg.Permanent, "p", cfg.Permanent, "order permanent storage")
	fs.StringVar(&cfg.DBPath, "d", cfg.DBPath, "local database path")
	timeout := fs.Int("timeout", int(cfg.RequestTimeout.Seconds()), "per-request timeout (in seconds)")
	fs.Uint64Var(&cfg.WaitRounds, "rounds", cfg.WaitRounds, "rounds to wait for confirmation")
	fs.StringVar(&cfg.LogLevel, "log", cfg.LogLevel, "log level")
	fs.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "log format (text|json)")

	if err := fs.Parse(flagx.FilterArgs(args, Flags)); err != nil {
		return err
	}

	cfg.Network = Network(*network)
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "timeout" {
			cfg.RequestTimeout = time.Duration(*timeout) * time.Second
		}
	})
	return nil
}
