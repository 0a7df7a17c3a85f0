package worker

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/ppiankov/citetrail/internal/factcheck"
	"github.com/ppiankov/citetrail/internal/model"
	"github.com/ppiankov/citetrail/internal/session"
	"github.com/ppiankov/citetrail/internal/stream"
)

// AskResult is the outcome of one batch question.
type AskResult struct {
	Question   string
	Transcript *model.Transcript
	Error      error
}

// Err returns the error from the ask, if any.
func (r *AskResult) Err() error {
	return r.Error
}

// askJob runs one question in its own session.
type askJob struct {
	question string
	source   stream.Source
	checks   *factcheck.Cache
}

func (j *askJob) Execute(ctx context.Context) Result {
	sess := session.New(j.source, j.checks)
	if err := sess.Ask(ctx, j.question, nil); err != nil {
		return &AskResult{Question: j.question, Error: err}
	}
	return &AskResult{Question: j.question, Transcript: sess.Transcript()}
}

// BatchProcessor answers many questions concurrently, one session each.
// The fact-check cache is shared: identical claims across questions are
// verified once.
type BatchProcessor struct {
	source      stream.Source
	checks      *factcheck.Cache
	concurrency int
}

// NewBatchProcessor creates a batch processor. checks may be nil.
func NewBatchProcessor(source stream.Source, checks *factcheck.Cache, concurrency int) *BatchProcessor {
	return &BatchProcessor{
		source:      source,
		checks:      checks,
		concurrency: concurrency,
	}
}

// ProcessQuestions asks every question and returns results in input order.
func (b *BatchProcessor) ProcessQuestions(ctx context.Context, questions []string) []*AskResult {
	if len(questions) == 0 {
		return []*AskResult{}
	}

	jobs := make([]Job, len(questions))
	for i, q := range questions {
		jobs[i] = &askJob{question: q, source: b.source, checks: b.checks}
	}

	results := NewPool(b.concurrency).Run(ctx, jobs)

	askResults := make([]*AskResult, len(results))
	for i, result := range results {
		askResults[i] = result.(*AskResult)
	}
	return askResults
}

// ProcessFile reads questions from a file and asks them concurrently.
func (b *BatchProcessor) ProcessFile(ctx context.Context, filePath string) ([]*AskResult, error) {
	questions, err := ReadQuestionsFromFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("read questions: %w", err)
	}
	return b.ProcessQuestions(ctx, questions), nil
}

// ReadQuestionsFromFile reads questions from a file, one per line.
// Blank lines and # comments are skipped; duplicates are dropped.
func ReadQuestionsFromFile(filePath string) ([]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var questions []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if !seen[line] {
			seen[line] = true
			questions = append(questions, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return questions, nil
}
