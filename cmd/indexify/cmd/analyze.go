package cmd

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/indexify/internal/bleveindex"
	ierrors "github.com/Aman-CERP/indexify/internal/errors"
	"github.com/Aman-CERP/indexify/internal/output"
	"github.com/Aman-CERP/indexify/internal/pipeline"
)

func newAnalyzeCmd() *cobra.Command {
	var (
		analyzer   string
		probe      string
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "analyze <manifest> <text>",
		Short: "Run text through an analyzer of a composed request",
		Long: `Compose the manifest, build the request with bleve, and print the
tokens the named analyzer produces for text.

With --probe, text is also indexed into every text field of an in-memory
index and the probe query is matched against each field.`,
		Example: `  # Show autocomplete tokens
  indexify analyze products.yaml --analyzer autocomplete "Crème Brûlée"

  # Check that a prefix finds the text
  indexify analyze products.yaml --analyzer autocomplete --probe cre "Crème Brûlée"`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			err := runAnalyze(cmd, args[0], args[1], analyzer, probe, jsonOutput)
			if err != nil && jsonOutput {
				writeJSONError(cmd.OutOrStdout(), err)
			}
			return err
		},
	}

	cmd.Flags().StringVarP(&analyzer, "analyzer", "a", "", "Analyzer to run (required)")
	cmd.Flags().StringVar(&probe, "probe", "", "Match query to run against the indexed text")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	_ = cmd.MarkFlagRequired("analyzer")

	return cmd
}

type analyzeReport struct {
	Analyzer string                   `json:"analyzer"`
	Text     string                   `json:"text"`
	Tokens   []bleveindex.Token       `json:"tokens"`
	Probe    []bleveindex.ProbeResult `json:"probe,omitempty"`
}

func runAnalyze(cmd *cobra.Command, manifest, text, analyzer, probe string, jsonOutput bool) error {
	runner := pipeline.NewRunner(pipeline.RunnerConfig{})
	res, err := runner.Run(contextOf(cmd), manifest, pipeline.ModeCompose)
	if err != nil {
		return err
	}

	mapping, err := pipeline.Validate(res.Document)
	if err != nil {
		return err
	}

	tokens, err := mapping.Analyze(analyzer, text)
	if err != nil {
		return ierrors.New(ierrors.ErrCodeAnalyzeFailed, err.Error(), err).
			WithDetail("analyzer", analyzer).
			WithSuggestion(fmt.Sprintf("Analyzers in %s: %v", res.Manifest.Index, mapping.Analyzers()))
	}

	report := analyzeReport{Analyzer: analyzer, Text: text, Tokens: tokens}
	if probe != "" {
		report.Probe, err = mapping.Probe(text, probe)
		if err != nil {
			return ierrors.New(ierrors.ErrCodeAnalyzeFailed, err.Error(), err)
		}
	}

	if jsonOutput {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}

	out := output.New(cmd.OutOrStdout())
	rows := make([][]string, 0, len(tokens))
	for _, t := range tokens {
		rows = append(rows, []string{strconv.Itoa(t.Position), t.Term, strconv.Itoa(t.Start), strconv.Itoa(t.End)})
	}
	out.Table([]string{"POS", "TERM", "START", "END"}, rows)

	for _, p := range report.Probe {
		if p.Hits > 0 {
			out.Successf("%s: %q matches (%d hit)", p.Field, probe, p.Hits)
		} else {
			out.Warningf("%s: %q does not match", p.Field, probe)
		}
	}
	return nil
}
