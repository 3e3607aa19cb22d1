// Command taulags prints the lag-channel structure of a multi-tau
// correlation hierarchy.
//
// Usage:
//
//	taulags [flags]
//
// Examples:
//
//	taulags
//	taulags -levels 4 -bufs 8
//	taulags -levels 8 -bufs 16 -dt 0.00134
package main

import (
	"flag"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/ke-zhang-rd/scikit-beam/core"
)

func main() {
	levels := flag.Int("levels", 8, "number of multi-tau hierarchy levels")
	bufs := flag.Int("bufs", 16, "buffers per level (must be even)")
	dt := flag.Float64("dt", 0, "frame period in seconds; 0 omits the time column")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: taulags [flags]\n\n")
		fmt.Fprintf(os.Stderr, "Prints the lag channels of a multi-tau correlation hierarchy.\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	total, steps, err := core.MultiTauLags(*levels, *bufs)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("%d levels x %d buffers: %d channels, max lag %d frames\n\n",
		*levels, *bufs, total, steps[len(steps)-1])

	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	if *dt > 0 {
		fmt.Fprintln(tw, "Channel\tLevel\tLag [frames]\tLag [s]")
	} else {
		fmt.Fprintln(tw, "Channel\tLevel\tLag [frames]")
	}

	half := *bufs / 2
	for ch, step := range steps {
		level := 0
		if ch >= *bufs {
			level = ch/half - 1
		}

		if *dt > 0 {
			fmt.Fprintf(tw, "%d\t%d\t%d\t%.6g\n", ch, level, step, float64(step)**dt)
		} else {
			fmt.Fprintf(tw, "%d\t%d\t%d\n", ch, level, step)
		}
	}

	if err := tw.Flush(); err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to flush output: %v\n", err)
		os.Exit(1)
	}
}
