package cli

import (
	"fmt"

	"github.com/dustin/go-humanize"
)

const microAlgosPerAlgo = 1_000_000

// formatAmount renders microalgos, e.g. "1,500 µALGO (0.0015 ALGO)".
func formatAmount(micro uint64) string {
	return fmt.Sprintf("%s µALGO (%s ALGO)",
		humanize.Comma(int64(micro)),
		humanize.FtoaWithDigits(float64(micro)/microAlgosPerAlgo, 6),
	)
}

// formatSize renders a byte count, e.g. "1.0 KiB (1,024 bytes)".
func formatSize(size uint64) string {
	return fmt.Sprintf("%s (%s bytes)", humanize.IBytes(size), humanize.Comma(int64(size)))
}

// parseSize accepts plain byte counts and humanized sizes.
func parseSize(s string) (uint64, error) {
	n, err := humanize.ParseBytes(s)
	if err != nil {
		return 0, fmt.Errorf("invalid size %q: %w", s, err)
	}
	if n == 0 {
		return 0, fmt.Errorf("invalid size %q: must be positive", s)
	}
	return n, nil
}
