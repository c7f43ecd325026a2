package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	ierrors "github.com/Aman-CERP/indexify/internal/errors"
	"github.com/Aman-CERP/indexify/internal/output"
	"github.com/Aman-CERP/indexify/internal/pipeline"
	"github.com/Aman-CERP/indexify/internal/watcher"
	"github.com/Aman-CERP/indexify/pkg/compose"
	"github.com/Aman-CERP/indexify/pkg/document"
)

type composeOptions struct {
	out      string
	plan     bool
	validate bool
	indent   int
	watch    bool
}

func newComposeCmd(a *app) *cobra.Command {
	var opts composeOptions

	cmd := &cobra.Command{
		Use:   "compose <manifest>...",
		Short: "Compose create-index requests from manifests",
		Long: `Compose the create-index request of every manifest.

With one manifest and no --out, the request is written to stdout. With
several manifests, --out must name a directory; each request is written
to <index>.json inside it.`,
		Example: `  # Print the request for one manifest
  indexify compose products.yaml

  # Show which contributors apply, without composing
  indexify compose --plan products.yaml

  # Compose several manifests and check them with bleve
  indexify compose --validate --out build/ products.yaml users.yaml

  # Recompose whenever a manifest changes
  indexify compose --watch --out build/ products.yaml`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := a.config()
			if !cmd.Flags().Changed("validate") {
				opts.validate = cfg.Output.Validate
			}
			if !cmd.Flags().Changed("indent") {
				opts.indent = cfg.Output.Indent
			}
			return runCompose(cmd, args, opts, a)
		},
	}

	cmd.Flags().StringVarP(&opts.out, "out", "o", "", "Write requests to this file (one manifest) or directory")
	cmd.Flags().BoolVar(&opts.plan, "plan", false, "Report what each contributor would do, without writing requests")
	cmd.Flags().BoolVar(&opts.validate, "validate", false, "Check every request by building a bleve index mapping")
	cmd.Flags().IntVar(&opts.indent, "indent", 2, "Spaces per JSON nesting level (0 for compact output)")
	cmd.Flags().BoolVar(&opts.watch, "watch", false, "Recompose when a manifest changes")

	return cmd
}

func runCompose(cmd *cobra.Command, paths []string, opts composeOptions, a *app) error {
	if len(paths) > 1 && opts.out == "" && !opts.plan {
		return ierrors.ValidationError("--out is required when composing several manifests", nil).
			WithSuggestion("Pass --out <dir> to write one <index>.json per manifest")
	}
	if opts.indent < 0 || opts.indent > 8 {
		return ierrors.New(ierrors.ErrCodeInvalidParameter, fmt.Sprintf("--indent must be between 0 and 8, got %d", opts.indent), nil)
	}

	runner := pipeline.NewRunner(pipeline.RunnerConfig{Validate: opts.validate})
	mode := pipeline.ModeCompose
	if opts.plan {
		mode = pipeline.ModePlan
	}
	status := output.NewAuto(cmd.ErrOrStderr())

	// A batch of changed manifests may hold just one; the output layout
	// follows the full argument list.
	many := len(paths) > 1
	runOnce := func(ctx context.Context, batch []string) error {
		results, err := runner.RunAll(ctx, batch, mode)
		if err != nil {
			return err
		}
		for _, res := range results {
			if opts.plan {
				writePlan(output.New(cmd.OutOrStdout()), res)
				continue
			}
			if err := writeRequest(cmd.OutOrStdout(), res, opts, many); err != nil {
				return err
			}
			status.Successf("%s: composed %d keys in %s", res.Manifest.Index, countKeys(res.Document), res.Duration.Round(time.Microsecond))
		}
		return nil
	}

	if !opts.watch {
		return runOnce(contextOf(cmd), paths)
	}

	ctx, stop := signal.NotifyContext(contextOf(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	report := func(ctx context.Context, err error) {
		slog.Default().LogAttrs(ctx, slog.LevelDebug, "compose_failed", ierrors.LogAttrs(err)...)
		status.Error(strings.TrimSpace(formatError(err, a.debug)))
	}
	if err := runOnce(ctx, paths); err != nil {
		report(ctx, err)
	}

	w, err := watcher.New(paths, a.config().DebounceDuration(), nil)
	if err != nil {
		return ierrors.IOError("failed to watch manifests", err)
	}
	status.Statusf("…", "watching %d manifest(s), Ctrl-C to stop", len(paths))
	return w.Run(ctx, func(ctx context.Context, changed []string) {
		if err := runOnce(ctx, changed); err != nil {
			report(ctx, err)
		}
	})
}

// writeRequest writes one composed request to stdout, a file, or
// <out>/<index>.json when out is a directory.
func writeRequest(stdout io.Writer, res *pipeline.Result, opts composeOptions, many bool) error {
	data, err := marshalRequest(res.Document, opts.indent)
	if err != nil {
		return ierrors.InternalError("failed to encode request", err)
	}

	if opts.out == "" {
		_, err := stdout.Write(data)
		return err
	}

	target := opts.out
	if many || isDir(opts.out) {
		if err := os.MkdirAll(opts.out, 0o755); err != nil {
			return ierrors.New(ierrors.ErrCodeWriteFailed, fmt.Sprintf("failed to create %s", opts.out), err)
		}
		target = filepath.Join(opts.out, res.Manifest.Index+".json")
	}
	if err := os.WriteFile(target, data, 0o644); err != nil {
		return ierrors.New(ierrors.ErrCodeWriteFailed, fmt.Sprintf("failed to write %s", target), err).
			WithDetail("path", target)
	}
	return nil
}

func marshalRequest(doc *document.Document, indent int) ([]byte, error) {
	var (
		data []byte
		err  error
	)
	if indent == 0 {
		data, err = json.Marshal(doc)
	} else {
		data, err = json.MarshalIndent(doc, "", strings.Repeat(" ", indent))
	}
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

func writePlan(out *output.Writer, res *pipeline.Result) {
	out.Header(fmt.Sprintf("%s (%s)", res.Manifest.Index, res.Manifest.Path()))
	rows := make([][]string, 0, len(res.Steps))
	for _, s := range res.Steps {
		rows = append(rows, []string{
			strconv.Itoa(s.Position),
			strconv.Itoa(s.Order),
			contributorName(s.Contributor),
			planStatus(s),
			strings.Join(s.Keys(), ", "),
		})
	}
	out.Table([]string{"#", "ORDER", "CONTRIBUTOR", "STATUS", "KEYS"}, rows)
	out.Newline()
}

func planStatus(s compose.Step) string {
	if s.Applied {
		return "applied"
	}
	return "skipped"
}

// contributorName strips the package path from the dynamic type.
func contributorName(c compose.Contributor) string {
	name := fmt.Sprintf("%T", c)
	if i := strings.LastIndex(name, "."); i >= 0 {
		name = name[i+1:]
	}
	return name
}

func countKeys(doc *document.Document) int {
	n := 0
	for _, ns := range document.Namespaces {
		n += doc.Len(ns)
	}
	return n
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func contextOf(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
