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
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"github.com/shenwei356/bio/seq"
	"github.com/shenwei356/bio/seqio/fastx"
	"github.com/shenwei356/fuzzyfind/fuzzyfind/align"
	"github.com/shenwei356/util/pathutil"
	"github.com/spf13/cobra"
	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
	"gonum.org/v1/gonum/stat"
)

var alignCmd = &cobra.Command{
	Use:   "align",
	Short: "Align query sequences against target sequences",
	Long: `Align query sequences against target sequences

Every query (needle) is aligned against every target (haystack) sequence,
and the best alignment, a chain of gapless blocks, is reported per pair.

Input:
  1. Query sequences, plain or gzipped FASTA/Q, can be given via positional
     arguments, stdin, the flag -X/--infile-list with a list of input files,
     or a directory containing sequence files via the flag -I/--in-dir,
     with multiple-level sub-directories allowed. A regular expression
     for matching sequence files is available via the flag -r/--file-regexp.
  2. Target sequences are read from the file given by -t/--target,
     all sequences are loaded into memory.

Stringencies:
  exact,  only a perfect, ungapped match.
  cdna,   long gaps in the target (introns) are cheap.
  tight,  gaps are expensive.
  loose,  gaps are cheap.

Attention:
  1. Sequences are converted to lower case before aligning.
  2. For multiple queries, the order of queries in output might be different from the input.
  3. Identical query sequences with hits are aligned only once, for the
     latest --cache-size distinct ones.
  4. Flags of this command not given in the command line can be set in a
     TOML file via --config, e.g.,
       stringency = "cdna"
       both-strands = true
       min-score = 20

Output format:
  Tab-delimited format with 20+ columns, with 1-based positions.

    1.  query,     Query sequence ID.
    2.  qlen,      Query sequence length.
    3.  target,    Target sequence ID.
    4.  tlen,      Target sequence length.
    5.  strand,    Query strand.
    6.  score,     Alignment score under the given stringency.
    7.  blocks,    Number of gapless blocks.
    8.  qstart,    Start of alignment in query sequence (forward strand).
    9.  qend,      End of alignment in query sequence (forward strand).
    10. tstart,    Start of alignment in target sequence.
    11. tend,      End of alignment in target sequence.
    12. matches,   Number of matched bases.
    13. mismatches,Number of mismatched bases.
    14. ncount,    Number of aligned positions with N in either sequence.
    15. qgaps,     Number of gaps in query sequence.
    16. qgapbases, Number of bases in query gaps.
    17. tgaps,     Number of gaps in target sequence.
    18. tgapbases, Number of bases in target gaps.
    19. pident,    Percentage of identical matches among aligned positions.
    20. cigar,     CIGAR string of the alignment, "N" for introns with cdna stringency.
    21. qseq,      Aligned part of query sequence.                     (optional with -a/--all)
    22. tseq,      Aligned part of target sequence.                    (optional with -a/--all)
    23. align,     Alignment text ("|" and " ") between qseq and tseq. (optional with -a/--all)

  For the "-" strand, qseq is the reverse complement of the query.

`,
	Run: func(cmd *cobra.Command, args []string) {
		opt := getOptions(cmd)
		seq.ValidateSeq = false

		outFile := getFlagString(cmd, "out-file")

		var fhLog *os.File
		if opt.Log2File {
			ro, err := filepath.Abs(outFile)
			if err != nil {
				checkError(fmt.Errorf("failed to check output file: %s", err))
			}
			rl, err := filepath.Abs(opt.LogFile)
			if err != nil {
				checkError(fmt.Errorf("failed to check log file: %s", err))
			}
			if ro == rl {
				checkError(fmt.Errorf("output file and log file should not be the same: %s", outFile))
			}
			fhLog = addLog(opt.LogFile, opt.Verbose)
		}

		outputLog := opt.Verbose || opt.Log2File
		verbose := opt.Verbose

		timeStart := time.Now()
		defer func() {
			if outputLog {
				log.Info()
				log.Infof("elapsed time: %s", time.Since(timeStart))
				log.Info()
			}
			if opt.Log2File {
				fhLog.Close()
			}
		}()

		var err error

		// ---------------------------------------------------------------
		// config file

		var nConfig int
		if opt.ConfigFile != "" {
			nConfig, err = applyConfig(cmd, opt.ConfigFile)
			checkError(err)
		}

		// ---------------------------------------------------------------
		// basic flags

		targetFile := getFlagString(cmd, "target")
		if targetFile == "" {
			checkError(fmt.Errorf("flag -t/--target is needed"))
		}
		if !isStdin(targetFile) {
			ok, err := pathutil.Exists(targetFile)
			checkError(errors.Wrapf(err, "checking -t/--target"))
			if !ok {
				checkError(fmt.Errorf("target file not found: %s", targetFile))
			}
		}

		stringency, err := align.ParseStringency(getFlagString(cmd, "stringency"))
		checkError(err)

		aopt := &AlignerOptions{
			Stringency:     stringency,
			BothStrands:    getFlagBool(cmd, "both-strands"),
			MinScore:       getFlagInt(cmd, "min-score"),
			ExtendThroughN: getFlagBool(cmd, "extend-through-n"),
			MaxBlocks:      getFlagNonNegativeInt(cmd, "max-blocks"),
			MoreColumns:    getFlagBool(cmd, "all"),
			IntronMinLen:   getFlagPositiveInt(cmd, "intron-min-len"),
			CacheSize:      getFlagNonNegativeInt(cmd, "cache-size"),
		}

		progress := getFlagBool(cmd, "progress") && verbose

		inDir := getFlagString(cmd, "in-dir")
		readFromDir := inDir != ""
		if readFromDir {
			var isDir bool
			isDir, err = pathutil.IsDir(inDir)
			if err != nil {
				checkError(errors.Wrapf(err, "checking -I/--in-dir"))
			}
			if !isDir {
				checkError(fmt.Errorf("value of -I/--in-dir should be a directory: %s", inDir))
			}
		}

		reFileStr := getFlagString(cmd, "file-regexp")
		var reFile *regexp.Regexp
		if reFileStr != "" {
			if !reIgnoreCase.MatchString(reFileStr) {
				reFileStr = reIgnoreCaseStr + reFileStr
			}
			reFile, err = regexp.Compile(reFileStr)
			checkError(errors.Wrapf(err, "failed to parse regular expression for matching file: %s", reFileStr))
		}

		// ---------------------------------------------------------------

		if outputLog {
			log.Infof("FuzzyFind v%s", VERSION)
			log.Info("  https://github.com/shenwei356/fuzzyfind")
			log.Info()
			if nConfig > 0 {
				log.Infof("%d flag value(s) loaded from config file: %s", nConfig, opt.ConfigFile)
			}
		}

		// ---------------------------------------------------------------
		// input files

		if outputLog {
			log.Info("checking input files ...")
		}

		var files []string
		if readFromDir {
			files, err = getFileListFromDir(inDir, reFile, opt.NumCPUs)
			if err != nil {
				checkError(errors.Wrapf(err, "walking dir: %s", inDir))
			}
			if len(files) == 0 {
				log.Warningf("  no files matching regular expression: %s", reFileStr)
			}
		} else {
			files = getFileListFromArgsAndFile(cmd, args, true, "infile-list", true)
		}

		if outputLog {
			if len(files) == 1 {
				if isStdin(files[0]) {
					log.Info("  no files given, reading from stdin")
				} else {
					log.Infof("  %d input file given: %s", len(files), files[0])
				}
			} else {
				log.Infof("  %d input file(s) given", len(files))
			}
		}

		outFileClean := filepath.Clean(outFile)
		for _, file := range files {
			if !isStdin(file) && filepath.Clean(file) == outFileClean {
				checkError(fmt.Errorf("out file should not be one of the input file"))
			}
			if isStdin(file) && isStdin(targetFile) {
				checkError(fmt.Errorf("queries and targets can not be both read from stdin"))
			}
		}

		// ---------------------------------------------------------------
		// targets

		if outputLog {
			log.Info()
			log.Infof("loading target sequences: %s", targetFile)
		}

		targets, err := readTargets(targetFile)
		checkError(err)
		if len(targets) == 0 {
			checkError(fmt.Errorf("no sequences found in target file: %s", targetFile))
		}

		aligner, err := NewAligner(targets, aopt)
		checkError(err)

		if outputLog {
			var bases int
			for _, t := range targets {
				bases += len(t.Seq)
			}
			log.Infof("  %s sequences with %s bases loaded", humanize.Comma(int64(len(targets))), humanize.Comma(int64(bases)))
			log.Info()
			log.Infof("aligning with %d threads, stringency: %s, both strands: %v, minimum score: %d",
				opt.NumCPUs, aopt.Stringency, aopt.BothStrands, aopt.MinScore)
		}

		// ---------------------------------------------------------------
		// aligning

		timeStart1 := time.Now()

		outfh, gw, w, err := outStream(outFile, strings.HasSuffix(outFile, ".gz"), opt.CompressionLevel)
		checkError(err)
		defer func() {
			outfh.Flush()
			if gw != nil {
				gw.Close()
			}
			w.Close()
		}()

		fmt.Fprintf(outfh, "query\tqlen\ttarget\ttlen\tstrand\tscore\tblocks\tqstart\tqend\ttstart\ttend\tmatches\tmismatches\tncount\tqgaps\tqgapbases\ttgaps\ttgapbases\tpident\tcigar")
		if aopt.MoreColumns {
			fmt.Fprintf(outfh, "\tqseq\ttseq\talign")
		}
		fmt.Fprintln(outfh)

		var total, matched, failed, cached, nHits uint64
		bestScores := make([]float64, 0, 1024)

		printResult := func(q *Query) {
			total++
			if q.err != nil {
				failed++
				log.Warningf("failed to align query %s: %s", q.ID, q.err)
				poolQuery.Put(q)
				return
			}
			if q.cached {
				cached++
			}
			if len(q.hits) == 0 {
				poolQuery.Put(q)
				return
			}
			matched++
			nHits += uint64(len(q.hits))
			bestScores = append(bestScores, float64(q.hits[0].Score))

			writeHits(outfh, q, aopt.MoreColumns)

			poolQuery.Put(q)
		}

		// outputter
		ch := make(chan *Query, opt.NumCPUs)
		done := make(chan int)
		go func() {
			for q := range ch {
				printResult(q)
			}
			done <- 1
		}()

		// process bar
		var pbs *mpb.Progress
		var bar *mpb.Bar
		if progress {
			pbs = mpb.New(mpb.WithWidth(40), mpb.WithOutput(os.Stderr))
			bar = pbs.AddBar(int64(len(files)),
				mpb.PrependDecorators(
					decor.Name("processed files: ", decor.WC{W: len("processed files: "), C: decor.DindentRight}),
					decor.Name("", decor.WCSyncSpaceR),
					decor.CountersNoUnit("%d / %d", decor.WCSyncWidth),
				),
				mpb.AppendDecorators(
					decor.Name("ETA: ", decor.WC{W: len("ETA: ")}),
					decor.EwmaETA(decor.ET_STYLE_GO, 3),
					decor.OnComplete(decor.Name(""), ". done"),
				),
			)
		}

		var wg sync.WaitGroup
		tokens := make(chan int, opt.NumCPUs)

		var record *fastx.Record
		var timeFile time.Time

		for _, file := range files {
			timeFile = time.Now()

			fastxReader, err := fastx.NewReader(nil, file, "")
			checkError(err)

			for {
				record, err = fastxReader.Read()
				if err != nil {
					if err == io.EOF {
						break
					}
					checkError(err)
					break
				}

				query := poolQuery.Get().(*Query)
				query.Reset()

				query.ID = append(query.ID, record.ID...)
				query.Seq = append(query.Seq, record.Seq.Seq...)
				lowerInplace(query.Seq)

				tokens <- 1
				wg.Add(1)

				go func(query *Query) {
					defer func() {
						<-tokens
						wg.Done()
					}()

					query.hits, query.cached, query.err = aligner.Align(query.Seq)

					ch <- query
				}(query)
			}
			fastxReader.Close()

			if progress {
				bar.EwmaIncrBy(1, time.Since(timeFile))
			}
		}
		wg.Wait()
		close(ch)
		<-done

		if progress {
			pbs.Wait()
		}

		if outputLog {
			log.Info()
			speed := float64(total) / time.Since(timeStart1).Minutes()
			log.Infof("processed queries: %s, speed: %.3f queries per minute", humanize.Comma(int64(total)), speed)
			if total > 0 {
				log.Infof("%.4f%% (%s/%s) queries matched, %s hits in total",
					float64(matched)/float64(total)*100,
					humanize.Comma(int64(matched)), humanize.Comma(int64(total)), humanize.Comma(int64(nHits)))
			}
			if cached > 0 {
				log.Infof("%s duplicated queries aligned once", humanize.Comma(int64(cached)))
			}
			if failed > 0 {
				log.Warningf("%s queries failed to align", humanize.Comma(int64(failed)))
			}
			if len(bestScores) > 0 {
				mean, std := stat.MeanStdDev(bestScores, nil)
				log.Infof("score of best hits: mean %.2f, standard deviation %.2f", mean, std)
			}
			log.Infof("done aligning")
			if outFile != "-" {
				log.Infof("alignment results saved to: %s", outFile)
			}
		}
	},
}

// Query is a needle sequence and its alignment result.
type Query struct {
	ID  []byte
	Seq []byte

	hits   []*Hit
	cached bool
	err    error
}

// Reset clears the data.
func (q *Query) Reset() {
	q.ID = q.ID[:0]
	q.Seq = q.Seq[:0]
	q.hits = nil
	q.cached = false
	q.err = nil
}

var poolQuery = &sync.Pool{New: func() interface{} {
	return &Query{
		ID:  make([]byte, 0, 128),
		Seq: make([]byte, 0, 1<<10),
	}
}}

func lowerInplace(s []byte) {
	for i, b := range s {
		if b >= 'A' && b <= 'Z' {
			s[i] = b + 32
		}
	}
}

// writeHits writes one line per hit.
func writeHits(outfh io.Writer, q *Query, moreColumns bool) {
	qlen := len(q.Seq)
	var strand byte
	var qstart, qend int
	var st *align.AliStats
	for _, h := range q.hits {
		st = h.Stats
		if h.RC {
			strand = '-'
		} else {
			strand = '+'
		}
		qstart, qend = h.QueryRange(qlen)

		fmt.Fprintf(outfh, "%s\t%d\t%s\t%d\t%c\t%d\t%d\t%d\t%d\t%d\t%d\t%d\t%d\t%d\t%d\t%d\t%d\t%d\t%.3f\t%s",
			q.ID, qlen, h.Target.ID, len(h.Target.Seq),
			strand, h.Score, st.Blocks,
			qstart, qend,
			st.TStart+1, st.TEnd,
			st.Matches, st.Mismatches, st.NCount,
			st.QGaps, st.QGapBases, st.TGaps, st.TGapBases,
			st.PIdent, h.CIGAR,
		)
		if moreColumns && h.Text != nil {
			fmt.Fprintf(outfh, "\t%s\t%s\t%s", h.Text.Query, h.Text.Target, h.Text.Match)
		}
		fmt.Fprintln(outfh)
	}
}

func init() {
	RootCmd.AddCommand(alignCmd)

	alignCmd.Flags().StringP("target", "t", "",
		formatFlagUsage(`Target (haystack) sequence file in (gzipped) FASTA/Q format.`))

	alignCmd.Flags().StringP("out-file", "o", "-",
		formatFlagUsage(`Out file, supports a ".gz" suffix ("-" for stdout).`))

	alignCmd.Flags().StringP("infile-list", "X", "",
		formatFlagUsage(`File of query file list (one file per line). If given, they are appended to files from CLI arguments.`))

	alignCmd.Flags().StringP("in-dir", "I", "",
		formatFlagUsage(`Directory containing query FASTA/Q files. Directory symlinks are followed.`))

	alignCmd.Flags().StringP("file-regexp", "r", `\.(f[aq](st[aq])?|fna)(\.gz|\.xz|\.zst|\.bz2)?$`,
		formatFlagUsage(`Regular expression for matching query files in -I/--in-dir, case ignored.`))

	alignCmd.Flags().StringP("stringency", "s", "cdna",
		formatFlagUsage(`Alignment stringency. Available values: exact, cdna, tight, loose.`))

	alignCmd.Flags().BoolP("both-strands", "b", true,
		formatFlagUsage(`Also align the reverse complement of queries, and keep the better strand.`))

	alignCmd.Flags().IntP("min-score", "m", 20,
		formatFlagUsage(`Minimum alignment score.`))

	alignCmd.Flags().BoolP("extend-through-n", "N", false,
		formatFlagUsage(`Extend alignment blocks through runs of four or more N's.`))

	alignCmd.Flags().IntP("max-blocks", "B", 0,
		formatFlagUsage(`Maximum number of alignment blocks created when aligning a pair of sequences (0 for no limit). Pairs exceeding it are reported as failed.`))

	alignCmd.Flags().IntP("intron-min-len", "", 32,
		formatFlagUsage(`Minimum target gap reported as an intron ("N") in CIGAR, for the cdna stringency.`))

	alignCmd.Flags().IntP("cache-size", "", 100000,
		formatFlagUsage(`Maximum number of distinct queries whose hits are kept for aligning duplicated queries once (0 for no caching). Queries without hits are not kept.`))

	alignCmd.Flags().BoolP("all", "a", false,
		formatFlagUsage(`Output more columns, e.g., aligned sequences.`))

	alignCmd.Flags().BoolP("progress", "", false,
		formatFlagUsage(`Show a progress bar of processed files.`))

	alignCmd.SetUsageTemplate(usageTemplate("-t <target.fasta> [query.fasta.gz ...] [-o result.tsv.gz]"))
}
