package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/citetrail/internal/factcheck"
	"github.com/ppiankov/citetrail/internal/model"
	"github.com/ppiankov/citetrail/internal/render"
	"github.com/ppiankov/citetrail/internal/stream"
	"github.com/ppiankov/citetrail/internal/worker"
)

var (
	concurrency  int
	outputDir    string
	batchTimeout time.Duration
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <file>",
	Short: "Ask multiple questions from a file in parallel",
	Long: `Batch asks multiple questions concurrently:
- Read questions from input file (one per line, # comments skipped)
- Each question runs as its own conversation with configurable parallelism
- Claim verification is shared, so repeated claims are checked once
- Transcripts print in input order, or save one file per question

Example:
  citetrail batch questions.txt
  citetrail batch questions.txt --concurrency 8
  citetrail batch questions.txt --output-dir ./answers`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().IntVar(&concurrency, "concurrency", 4, "number of questions asked in parallel")
	batchCmd.Flags().StringVar(&outputDir, "output-dir", "", "write one transcript file per question instead of stdout")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 10*time.Minute, "total timeout for the batch")
}

func runBatch(cmd *cobra.Command, args []string) error {
	file := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), batchTimeout)
	defer cancel()

	cfg := model.DefaultConfig()
	cfg.Concurrency.Workers = concurrency
	cfg.FactCheck.Enabled = !noFactCheck

	source := stream.NewClient(cfg.Backend)

	var checks *factcheck.Cache
	if cfg.FactCheck.Enabled {
		client := factcheck.NewClient(
			cfg.FactCheck.BaseURL,
			cfg.FactCheck.Timeout,
			cfg.Backend.UserAgent,
			cfg.FactCheck.RequestsPerSecond,
			cfg.FactCheck.Burst,
		)
		checks = factcheck.NewCache(client)
	}

	processor := worker.NewBatchProcessor(source, checks, cfg.Concurrency.Workers)

	fmt.Fprintf(os.Stderr, "Reading questions from %s\n", file)
	results, err := processor.ProcessFile(ctx, file)
	if err != nil {
		return fmt.Errorf("process file: %w", err)
	}
	fmt.Fprintf(os.Stderr, "Asked %d questions with %d workers\n\n", len(results), cfg.Concurrency.Workers)

	if outputDir != "" {
		if err := os.MkdirAll(outputDir, 0755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}

	failures := 0
	for _, result := range results {
		if result.Error != nil {
			failures++
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", result.Question, result.Error)
			continue
		}

		if outputDir == "" {
			render.NewRenderer(os.Stdout, checks).RenderTranscript(ctx, result.Transcript)
			continue
		}

		path := filepath.Join(outputDir, sanitizeFilename(result.Question)+".txt")
		if err := writeTranscript(ctx, path, result.Transcript, checks); err != nil {
			failures++
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", result.Question, err)
			continue
		}
		fmt.Fprintf(os.Stderr, "✓ %s\n", path)
	}

	if failures > 0 {
		return fmt.Errorf("%d of %d questions failed", failures, len(results))
	}
	return nil
}

func writeTranscript(ctx context.Context, path string, t *model.Transcript, checks *factcheck.Cache) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create transcript file: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close transcript file: %w", closeErr)
		}
	}()

	render.NewRenderer(f, checks).RenderTranscript(ctx, t)
	return nil
}

// sanitizeFilename turns a question into a safe file name.
func sanitizeFilename(s string) string {
	replacer := strings.NewReplacer(
		"/", "_",
		"\\", "_",
		":", "_",
		"*", "_",
		"?", "",
		"\"", "",
		"<", "_",
		">", "_",
		"|", "_",
		" ", "-",
	)
	s = replacer.Replace(strings.TrimSpace(s))

	if len(s) > 100 {
		s = s[:100]
	}
	if s == "" {
		s = "question"
	}
	return s
}
