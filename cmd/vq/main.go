package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jacoelho/vq/internal/decode"
	"github.com/jacoelho/vq/internal/encode"
	"github.com/jacoelho/vq/internal/exit"
	"github.com/jacoelho/vq/query"
	"github.com/jacoelho/vq/value"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cmd := newRootCommand()
	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "vq: %v\n", err)
		os.Exit(exit.Code(err))
	}
}

type options struct {
	inputFormat  string
	outputFormat string
	compact      bool
	indent       int
	nullInput    bool
	slurp        bool
}

func newRootCommand() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:           "vq 'EXPRESSION' [FILE...]",
		Short:         "Evaluate jq-style queries against JSON or YAML documents",
		Long:          "vq compiles the query expression once and evaluates it against every\ninput document, printing each output value on its own line.",
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.OutOrStdout(), cmd.InOrStdin(), args, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.inputFormat, "input", "i", "json", "input format: json or yaml")
	flags.StringVarP(&opts.outputFormat, "output", "o", "json", "output format: json, yaml, table or raw")
	flags.BoolVarP(&opts.compact, "compact", "c", false, "compact JSON output")
	flags.IntVar(&opts.indent, "indent", 2, "spaces per indentation level for JSON output")
	flags.BoolVarP(&opts.nullInput, "null-input", "n", false, "run the query once with null input")
	flags.BoolVarP(&opts.slurp, "slurp", "s", false, "collect all input documents into one array")

	return cmd
}

func run(w io.Writer, stdin io.Reader, args []string, opts *options) error {
	q, err := query.Parse(args[0])
	if err != nil {
		return err
	}

	docs, err := readDocuments(stdin, args[1:], opts)
	if err != nil {
		return err
	}

	if opts.slurp {
		docs = []value.Value{value.Array(docs)}
	}

	for _, doc := range docs {
		outputs, err := q.Evaluate(doc)
		if err != nil {
			return err
		}
		for _, out := range outputs {
			if err := writeValue(w, out, opts); err != nil {
				return err
			}
		}
	}
	return nil
}

func readDocuments(stdin io.Reader, files []string, opts *options) ([]value.Value, error) {
	if opts.nullInput {
		return []value.Value{value.Null{}}, nil
	}

	if len(files) == 0 {
		return decodeStream(stdin, opts.inputFormat)
	}

	var docs []value.Value
	for _, name := range files {
		f, err := os.Open(name)
		if err != nil {
			return nil, err
		}
		fileDocs, err := decodeStream(f, opts.inputFormat)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		docs = append(docs, fileDocs...)
	}
	return docs, nil
}

// decodeStream reads every document from r: concatenated values for JSON,
// `---`-separated documents for YAML.
func decodeStream(r io.Reader, format string) ([]value.Value, error) {
	type decoder interface {
		Decode() (value.Value, error)
	}

	var dec decoder
	switch strings.ToLower(format) {
	case "json":
		dec = decode.NewJSONDecoder(r)
	case "yaml":
		dec = decode.NewYAMLDecoder(r)
	default:
		return nil, fmt.Errorf("unsupported input format %q", format)
	}

	var docs []value.Value
	for {
		doc, err := dec.Decode()
		if errors.Is(err, io.EOF) {
			return docs, nil
		}
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
}

func writeValue(w io.Writer, v value.Value, opts *options) error {
	switch strings.ToLower(opts.outputFormat) {
	case "json":
		indent := strings.Repeat(" ", opts.indent)
		if opts.compact {
			indent = ""
		}
		return encode.JSON(w, v, indent)
	case "yaml":
		return encode.YAML(w, v)
	case "table":
		return encode.Table(w, v)
	case "raw":
		return encode.Raw(w, v)
	default:
		return fmt.Errorf("unsupported output format %q", opts.outputFormat)
	}
}
