package config

import (
	"fmt"
	"net/url"
	"time"

	"github.com/dmitrijs2005/storageorder/internal/common"
)

// Network names the Algorand environment an order is placed on.
type Network string

const (
	Testnet Network = "testnet"
	Mainnet Network = "mainnet"
)

// Storage order application ids per network.
var appIDs = map[Network]uint64{
	Testnet: 507867511,
	Mainnet: 1275319623,
}

var algodAddrs = map[Network]string{
	Testnet: "https://testnet-api.algonode.cloud",
	Mainnet: "https://mainnet-api.algonode.cloud",
}

// Keystore kinds.
const (
	KeystoreKMD   = "kmd"
	KeystoreLocal = "local"
)

// Config holds runtime settings for the storageorder CLI.
//
// AppID and AlgodAddr are derived from Network when left zero/empty.
type Config struct {
	Network            Network
	AppID              uint64
	AlgodAddr          string
	AlgodToken         string
	KMDAddr            string
	KMDToken           string
	WalletName         string
	Keystore           string
	KeystorePassphrase string
	GatewayURL         string
	Permanent          bool
	DBPath             string
	RequestTimeout     time.Duration
	WaitRounds         uint64
	LogLevel           string
	LogFormat          string
}

// LoadDefaults populates c with testnet settings and a local KMD.
func (c *Config) LoadDefaults() {
	c.Network = Testnet
	c.KMDAddr = "http://localhost:4002"
	c.KMDToken = "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
	c.WalletName = "uploader"
	c.Keystore = KeystoreKMD
	c.GatewayURL = "https://gw-seattle.crustcloud.io:443/api/v0/add"
	c.Permanent = false
	c.DBPath = "storageorder.db"
	c.RequestTimeout = 30 * time.Second
	c.WaitRounds = 4
	c.LogLevel = "info"
	c.LogFormat = "text"
}

// LoadConfig constructs a Config from defaults, then overlays the JSON file
// named by -c/-config (if any) and finally the command-line flags in args.
// Derived fields are filled in and the result is validated.
func LoadConfig(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if err := parseJson(cfg, args); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}

	cfg.resolveNetwork()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) resolveNetwork() {
	if c.AppID == 0 {
		c.AppID = appIDs[c.Network]
	}
	if c.AlgodAddr == "" {
		c.AlgodAddr = algodAddrs[c.Network]
	}
}

// Validate reports the first problem found, wrapped in common.ErrInvalidConfig.
func (c *Config) Validate() error {
	if _, ok := appIDs[c.Network]; !ok {
		return fmt.Errorf("%w: unknown network %q (want testnet or mainnet)", common.ErrInvalidConfig, c.Network)
	}
	if c.AppID == 0 {
		return fmt.Errorf("%w: app id is required", common.ErrInvalidConfig)
	}
	if c.AlgodAddr == "" {
		return fmt.Errorf("%w: algod address is required", common.ErrInvalidConfig)
	}
	if c.Keystore != KeystoreKMD && c.Keystore != KeystoreLocal {
		return fmt.Errorf("%w: unknown keystore %q (want kmd or local)", common.ErrInvalidConfig, c.Keystore)
	}
	if c.Keystore == KeystoreKMD && c.KMDAddr == "" {
		return fmt.Errorf("%w: kmd address is required", common.ErrInvalidConfig)
	}
	if c.WalletName == "" {
		return fmt.Errorf("%w: wallet name is required", common.ErrInvalidConfig)
	}
	u, err := url.Parse(c.GatewayURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%w: invalid gateway url %q", common.ErrInvalidConfig, c.GatewayURL)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("%w: request timeout must be positive", common.ErrInvalidConfig)
	}
	return nil
}
