package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/storageorder/internal/flagx"
	"github.com/dmitrijs2005/storageorder/internal/timex"
)

// JsonConfig is the on-disk shape of the config file. Pointer fields
// distinguish "absent" from a zero value, so a file only overrides what it
// names.
type JsonConfig struct {
	Network        *string         `json:"network"`
	AppID          *uint64         `json:"app_id"`
	AlgodAddr      *string         `json:"algod_addr"`
	AlgodToken     *string         `json:"algod_token"`
	KMDAddr        *string         `json:"kmd_addr"`
	KMDToken       *string         `json:"kmd_token"`
	WalletName     *string         `json:"wallet_name"`
	Keystore       *string         `json:"keystore"`
	GatewayURL     *string         `json:"gateway_url"`
	Permanent      *bool           `json:"permanent"`
	DBPath         *string         `json:"db_path"`
	RequestTimeout *timex.Duration `json:"request_timeout"`
	WaitRounds     *uint64         `json:"wait_rounds"`
	LogLevel       *string         `json:"log_level"`
	LogFormat      *string         `json:"log_format"`
}

// parseJson overlays cfg with the JSON file named by -c/-config in args.
// No flag means no change. The keystore passphrase is deliberately not
// readable from the file.
func parseJson(cfg *Config, args []string) error {
	path := flagx.ConfigPath(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	if jc.Network != nil {
		cfg.Network = Network(*jc.Network)
	}
	setIf(&cfg.AppID, jc.AppID)
	setIf(&cfg.AlgodAddr, jc.AlgodAddr)
	setIf(&cfg.AlgodToken, jc.AlgodToken)
	setIf(&cfg.KMDAddr, jc.KMDAddr)
	setIf(&cfg.KMDToken, jc.KMDToken)
	setIf(&cfg.WalletName, jc.WalletName)
	setIf(&cfg.Keystore, jc.Keystore)
	setIf(&cfg.GatewayURL, jc.GatewayURL)
	setIf(&cfg.Permanent, jc.Permanent)
	setIf(&cfg.DBPath, jc.DBPath)
	if jc.RequestTimeout != nil {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	setIf(&cfg.WaitRounds, jc.WaitRounds)
	setIf(&cfg.LogLevel, jc.LogLevel)
	setIf(&cfg.LogFormat, jc.LogFormat)

	return nil
}

func setIf[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}
