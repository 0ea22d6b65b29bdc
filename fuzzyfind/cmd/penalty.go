// Copyright © 2024 Wei Shen <shenwei356@gmail.com>
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.

package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/shenwei356/fuzzyfind/fuzzyfind/align"
	"github.com/shenwei356/fuzzyfind/fuzzyfind/util"
	"github.com/spf13/cobra"
)

var penaltyCmd = &cobra.Command{
	Use:   "penalty",
	Short: "Print gap penalties of all stringencies",
	Long: `Print gap penalties of all stringencies

For every pair of a target gap size (-t/--target-gaps) and a query gap size
(-q/--query-gaps), the penalty under each stringency is printed.
Gap sizes are deduplicated and sorted.

Output format:
  Tab-delimited format with a header line:
    tgap, qgap, exact, cdna, tight, loose

`,
	Run: func(cmd *cobra.Command, args []string) {
		opt := getOptions(cmd)

		hGaps := getFlagIntSlice(cmd, "target-gaps")
		nGaps := getFlagIntSlice(cmd, "query-gaps")
		for _, gaps := range [][]int{hGaps, nGaps} {
			for _, g := range gaps {
				if g < 0 {
					checkError(fmt.Errorf("gap sizes should not be negative: %d", g))
				}
			}
		}
		util.UniqInts(&hGaps)
		util.UniqInts(&nGaps)

		outFile := getFlagString(cmd, "out-file")
		outfh, gw, w, err := outStream(outFile, strings.HasSuffix(outFile, ".gz"), opt.CompressionLevel)
		checkError(err)
		defer func() {
			outfh.Flush()
			if gw != nil {
				gw.Close()
			}
			w.Close()
		}()

		writePenalties(outfh, hGaps, nGaps)
	},
}

func writePenalties(outfh io.Writer, hGaps, nGaps []int) {
	fmt.Fprintf(outfh, "tgap\tqgap")
	for _, s := range align.Stringencies {
		fmt.Fprintf(outfh, "\t%s", s)
	}
	fmt.Fprintln(outfh)

	for _, h := range hGaps {
		for _, n := range nGaps {
			fmt.Fprintf(outfh, "%d\t%d", h, n)
			for _, s := range align.Stringencies {
				fmt.Fprintf(outfh, "\t%d", align.GapPenalty(h, n, s))
			}
			fmt.Fprintln(outfh)
		}
	}
}

func init() {
	RootCmd.AddCommand(penaltyCmd)

	penaltyCmd.Flags().IntSliceP("target-gaps", "t", []int{0, 1, 10, 100, 1000, 10000, 100000},
		formatFlagUsage(`Target gap sizes, comma-separated.`))

	penaltyCmd.Flags().IntSliceP("query-gaps", "q", []int{0, 1, 2, 3},
		formatFlagUsage(`Query gap sizes, comma-separated.`))

	penaltyCmd.Flags().StringP("out-file", "o", "-",
		formatFlagUsage(`Out file, supports a ".gz" suffix ("-" for stdout).`))

	penaltyCmd.SetUsageTemplate(usageTemplate(""))
}
