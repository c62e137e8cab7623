// Package cli implements the storageorder command line.
//
// Commands:
//
//	order <file>     publish file and place a storage order for it
//	quote <size>     price of storing size bytes ("1024", "4 KiB", "2MB")
//	node             ask the contract for a storage node
//	address          show the paying account and its balance
//	history          list confirmed orders recorded locally
//
// Flags may appear anywhere on the line; see package config.
package cli
