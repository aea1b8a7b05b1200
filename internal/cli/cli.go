package cli

import (
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/goccy/go-json"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/zeebo/xxh3"
	"k8s.io/klog/v2"

	"github.com/oleg578/swiftline"
	"github.com/oleg578/swiftline/internal/config"
)

// globalFlags holds the reader flags shared by every subcommand.
type globalFlags struct {
	configPath string
	bufferSize int
	encoding   string
	trim       bool
	skipEmpty  bool
	skipBOM    bool
}

// Stats is the summary printed by the stats command.
type Stats struct {
	Lines         int    `json:"lines"`
	PhysicalLines int    `json:"physicalLines"`
	Bytes         int64  `json:"bytes"`
	Encoding      string `json:"encoding"`
	Digest        string `json:"xxh3"`
}

// NewRootCommand builds the swiftline command tree. "-" or a missing FILE
// argument reads from stdin.
func NewRootCommand(stdin io.Reader, stdout io.Writer) *cobra.Command {
	var gf globalFlags

	rootCmd := &cobra.Command{
		Use:           "swiftline",
		Short:         "Read large text and CSV streams line by line",
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	rootCmd.SetIn(stdin)
	rootCmd.SetOut(stdout)

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&gf.configPath, "config", "", "Path to a YAML config file")
	pf.IntVar(&gf.bufferSize, "buffer-size", 0, "Chunk size in bytes")
	pf.StringVar(&gf.encoding, "encoding", "", "Text encoding of the input")
	pf.BoolVar(&gf.trim, "trim", false, "Trim white space around each line")
	pf.BoolVar(&gf.skipEmpty, "skip-empty", false, "Skip lines that are empty after trimming")
	pf.BoolVar(&gf.skipBOM, "skip-bom", false, "Drop a leading UTF-8 byte order mark")
	addKlogFlags(pf)

	rootCmd.AddCommand(
		newLinesCommand(&gf),
		newRecordsCommand(&gf),
		newStatsCommand(&gf),
	)
	return rootCmd
}

func addKlogFlags(fs *pflag.FlagSet) {
	gofs := flag.NewFlagSet("klog", flag.ContinueOnError)
	klog.InitFlags(gofs)
	gofs.VisitAll(func(f *flag.Flag) {
		if f.Name == "v" || f.Name == "vmodule" {
			fs.AddGoFlag(f)
		}
	})
}

func newLinesCommand(gf *globalFlags) *cobra.Command {
	var number bool

	cmd := &cobra.Command{
		Use:   "lines [FILE]",
		Short: "Print decoded lines",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := gf.options(cmd)
			if err != nil {
				return err
			}
			lr, err := opts.NewLineReader(source(cmd, args))
			if err != nil {
				return errors.Wrap(err, "failed to create line reader")
			}
			lr.Logger = klog.NewKlogr().WithName("lines")
			defer lr.Close()

			out := cmd.OutOrStdout()
			for {
				line, err := lr.ReadLine()
				if err == io.EOF {
					break
				}
				if err != nil {
					return errors.Wrap(err, "failed to read line")
				}
				if number {
					fmt.Fprintf(out, "%d\t%s\n", lr.Line(), line)
				} else {
					fmt.Fprintln(out, line)
				}
			}
			klog.V(2).InfoS("finished reading lines", "lines", lr.Line(), "bytes", lr.BytesProcessed())
			return nil
		},
	}
	cmd.Flags().BoolVarP(&number, "number", "n", false, "Prefix each line with its physical line number")
	return cmd
}

func newRecordsCommand(gf *globalFlags) *cobra.Command {
	var (
		quote      string
		separator  string
		strict     bool
		header     string
		headerOnly bool
	)

	cmd := &cobra.Command{
		Use:   "records [FILE]",
		Short: "Print CSV records as JSON lines",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := gf.options(cmd)
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			if flags.Changed("quote") {
				opts.Quote = quote
			}
			if flags.Changed("separator") {
				opts.Separator = separator
			}
			if flags.Changed("strict") {
				opts.Strict = strict
			}

			cr, err := opts.NewCSVReader(source(cmd, args))
			if err != nil {
				return errors.Wrap(err, "failed to create csv reader")
			}
			cr.LineReader().Logger = klog.NewKlogr().WithName("records")
			defer cr.Close()

			enc := json.NewEncoder(cmd.OutOrStdout())
			if header != "" {
				cr.SetHeader(strings.Split(header, opts.Separator))
			} else if _, err := cr.ReadHeader(); err != nil {
				return errors.Wrap(err, "failed to read header")
			}
			if headerOnly {
				return enc.Encode(cr.Header())
			}

			count := 0
			for {
				record, err := cr.ReadRecord()
				if err == io.EOF {
					break
				}
				if err != nil {
					return errors.Wrapf(err, "failed to read record %d", count+1)
				}
				if err := enc.Encode(record); err != nil {
					return errors.Wrap(err, "failed to write record")
				}
				count++
			}
			klog.V(2).InfoS("finished reading records", "records", count, "bytes", cr.LineReader().BytesProcessed())
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&quote, "quote", "\"", "Quote character")
	flags.StringVar(&separator, "separator", ",", "Field separator")
	flags.BoolVar(&strict, "strict", false, "Reject malformed quoting and rows whose width differs from the header")
	flags.StringVar(&header, "header", "", "Separator-joined field names; the first line is then treated as data")
	flags.BoolVar(&headerOnly, "header-only", false, "Print the header as a JSON array and stop")
	return cmd
}

func newStatsCommand(gf *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "stats [FILE]",
		Short: "Count lines and bytes and print an xxh3 digest of the decoded text",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := gf.options(cmd)
			if err != nil {
				return err
			}
			lr, err := opts.NewLineReader(source(cmd, args))
			if err != nil {
				return errors.Wrap(err, "failed to create line reader")
			}
			lr.Logger = klog.NewKlogr().WithName("stats")
			defer lr.Close()

			stats, err := collectStats(lr)
			if err != nil {
				return err
			}
			return json.NewEncoder(cmd.OutOrStdout()).Encode(stats)
		},
	}
}

// collectStats drains lr, hashing every returned line followed by "\n".
func collectStats(lr *swiftline.LineReader) (Stats, error) {
	h := xxh3.New()
	lines := 0
	for {
		line, err := lr.ReadLine()
		if err == io.EOF {
			break
		}
		if err != nil {
			return Stats{}, errors.Wrap(err, "failed to read line")
		}
		io.WriteString(h, line)
		h.Write([]byte{'\n'})
		lines++
	}
	return Stats{
		Lines:         lines,
		PhysicalLines: lr.Line(),
		Bytes:         lr.BytesProcessed(),
		Encoding:      lr.Encoding(),
		Digest:        fmt.Sprintf("%016x", h.Sum64()),
	}, nil
}

// options loads the config file and applies explicitly set flags on top.
func (gf *globalFlags) options(cmd *cobra.Command) (swiftline.Options, error) {
	cfg, err := config.Load(gf.configPath)
	if err != nil {
		return swiftline.Options{}, err
	}
	opts := cfg.Reader

	flags := cmd.Flags()
	if flags.Changed("buffer-size") {
		opts.BufferSize = gf.bufferSize
	}
	if flags.Changed("encoding") {
		opts.Encoding = gf.encoding
	}
	if flags.Changed("trim") {
		opts.TrimLines = gf.trim
	}
	if flags.Changed("skip-empty") {
		opts.EmitEmptyLines = !gf.skipEmpty
	}
	if flags.Changed("skip-bom") {
		opts.SkipBOM = gf.skipBOM
	}
	return opts, nil
}

func source(cmd *cobra.Command, args []string) swiftline.Source {
	if len(args) == 0 || args[0] == "-" {
		return swiftline.NewReaderSource(cmd.InOrStdin())
	}
	return swiftline.NewFileSource(args[0])
}
