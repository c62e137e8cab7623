// Package config loads runtime configuration for the storageorder CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected with -c or -config.
//  3. Command-line flags, which override earlier values.
//
// Supported flags
//
//	-n string        network: testnet or mainnet
//	-app uint        application id (default: the network's storage order app)
//	-algod string    algod address (default: the network's public node)
//	-algod-token     algod API token
//	-kmd string      kmd address
//	-kmd-token       kmd API token
//	-w string        wallet / key name
//	-k string        keystore: kmd or local
//	-pass string     passphrase of the local keystore (prompted when empty)
//	-g string        content gateway add endpoint
//	-p               order permanent storage
//	-d string        path of the local SQLite database
//	-timeout int     per-request timeout (seconds)
//	-rounds uint     rounds to wait for order confirmation
//	-log string      log level: debug, info, warn, error
//	-log-format      text or json
//
// # JSON schema
//
// Durations use timex.Duration, so "30s" and integer nanoseconds both work:
//
//	{
//	  "network": "testnet",
//	  "gateway_url": "https://gw-seattle.crustcloud.io:443/api/v0/add",
//	  "request_timeout": "30s"
//	}
package config
