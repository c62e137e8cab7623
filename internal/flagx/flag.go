// Package flagx splits a mixed command line into the flags a component
// understands and the positional arguments (command and its operands).
//
// The standard flag package stops at the first positional argument, so
// "storageorder order README.md -n mainnet" would silently ignore -n. The
// helpers here let flags appear anywhere on the line.
package flagx

import (
	"flag"
	"strings"
)

// Set describes the flags of one component: flags that take a value
// ("-n mainnet", "-n=mainnet") and boolean switches ("-p", "-p=false").
type Set struct {
	Values []string
	Bools  []string
}

func (s Set) kind(name string) (isValue, isBool bool) {
	for _, f := range s.Values {
		if f == name {
			return true, false
		}
	}
	for _, f := range s.Bools {
		if f == name {
			return false, true
		}
	}
	return false, false
}

// FilterArgs returns the arguments belonging to flags in s, in their
// command-line order. A value flag consumes the following argument unless that
// argument itself starts with '-'. Everything after "--" is ignored.
func FilterArgs(args []string, s Set) []string {
	filtered := make([]string, 0, len(args))

	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--" {
			break
		}
		if !strings.HasPrefix(arg, "-") {
			continue
		}

		name, _, hasValue := strings.Cut(arg, "=")
		isValue, isBool := s.kind(name)
		if !isValue && !isBool {
			continue
		}

		filtered = append(filtered, arg)
		if isValue && !hasValue && i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
			filtered = append(filtered, args[i+1])
			i++
		}
	}

	return filtered
}

// Positional returns the arguments that are neither flags nor flag values.
// Unknown flags are dropped on their own; s decides which flags swallow the
// next argument. Everything after "--" is positional.
func Positional(args []string, s Set) []string {
	positional := make([]string, 0, len(args))

	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--" {
			return append(positional, args[i+1:]...)
		}
		if !strings.HasPrefix(arg, "-") || arg == "-" {
			positional = append(positional, arg)
			continue
		}

		name, _, hasValue := strings.Cut(arg, "=")
		if isValue, _ := s.kind(name); isValue && !hasValue && i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
			i++
		}
	}

	return positional
}

// ConfigPath extracts the JSON config path passed with -c or -config.
// It returns "" when neither is present.
func ConfigPath(args []string) string {
	var path string

	fs := flag.NewFlagSet("json", flag.ContinueOnError)
	fs.SetOutput(discard{})
	fs.StringVar(&path, "config", "", "Path to config file")
	fs.StringVar(&path, "c", "", "Path to config file (short)")
	_ = fs.Parse(FilterArgs(args, Set{Values: []string{"-c", "-config", "--config"}}))

	return path
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }
