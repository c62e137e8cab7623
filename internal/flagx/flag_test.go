package flagx

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

var testSet = Set{
	Values: []string{"-n", "-g", "-c", "-config"},
	Bools:  []string{"-p"},
}

func TestFilterArgs(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want []string
	}{
		{
			name: "value flag with separate value",
			args: []string{"-n", "mainnet", "order", "a.txt"},
			want: []string{"-n", "mainnet"},
		},
		{
			name: "value flag with equals",
			args: []string{"order", "-n=mainnet", "a.txt"},
			want: []string{"-n=mainnet"},
		},
		{
			name: "bool flag does not swallow positional",
			args: []string{"-p", "order", "a.txt"},
			want: []string{"-p"},
		},
		{
			name: "bool flag with explicit value",
			args: []string{"-p=false", "order"},
			want: []string{"-p=false"},
		},
		{
			name: "unknown flags ignored",
			args: []string{"-x", "1", "--y=2", "positional"},
			want: []string{},
		},
		{
			name: "value flag followed by another flag",
			args: []string{"-n", "-p"},
			want: []string{"-n", "-p"},
		},
		{
			name: "stops at double dash",
			args: []string{"-n", "testnet", "--", "-g", "x"},
			want: []string{"-n", "testnet"},
		},
		{
			name: "empty",
			args: []string{},
			want: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FilterArgs(tt.args, testSet))
		})
	}
}

func TestPositional(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want []string
	}{
		{
			name: "flags before command",
			args: []string{"-n", "mainnet", "-p", "order", "a.txt"},
			want: []string{"order", "a.txt"},
		},
		{
			name: "flags after operands",
			args: []string{"order", "a.txt", "-g", "https://gw"},
			want: []string{"order", "a.txt"},
		},
		{
			name: "unknown flag consumes nothing",
			args: []string{"-x", "quote", "1024"},
			want: []string{"quote", "1024"},
		},
		{
			name: "double dash keeps dash-prefixed operand",
			args: []string{"order", "--", "-weird.txt"},
			want: []string{"order", "-weird.txt"},
		},
		{
			name: "lone dash is positional (stdin)",
			args: []string{"order", "-"},
			want: []string{"order", "-"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Positional(tt.args, testSet))
		})
	}
}

func TestConfigPath(t *testing.T) {
	assert.Equal(t, "conf.json", ConfigPath([]string{"-c", "conf.json", "order"}))
	assert.Equal(t, "alt.json", ConfigPath([]string{"order", "-config=alt.json"}))
	assert.Equal(t, "", ConfigPath([]string{"order", "a.txt"}))
}
