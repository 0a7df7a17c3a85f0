package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/citetrail/internal/factcheck"
	"github.com/ppiankov/citetrail/internal/model"
	"github.com/ppiankov/citetrail/internal/render"
	"github.com/ppiankov/citetrail/internal/session"
	"github.com/ppiankov/citetrail/internal/stream"
)

var (
	backendURL   string
	factCheckURL string
	noFactCheck  bool
	timeout      time.Duration
	userAgent    string
	live         bool
	httpProxy    string
	httpsProxy   string
	llmEnabled   bool
	llmModel     string
	llmBaseURL   string
)

// askCmd represents the ask command
var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Ask a question and stream a citation-annotated answer",
	Long: `Ask streams an answer from a citation-grounded answer service:
- Answer text arrives as deltas and is folded into a stable transcript
- Inline [query N source M] markers become numbered citations
- Distinct sources get stable first-seen numbering per answer
- Each displayed claim is fact-checked against its cited evidence

Example:
  citetrail ask "where can I rent a car"
  citetrail ask "where can I rent a car" --backend http://localhost:3000/beta/api/alice
  citetrail ask "explain goroutines" --llm --llm-model gpt-4o-mini`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

func init() {
	rootCmd.AddCommand(askCmd)

	// Backend flags
	askCmd.Flags().StringVar(&backendURL, "backend", "", "answer service base URL (default from config)")
	askCmd.Flags().DurationVar(&timeout, "timeout", 2*time.Minute, "overall answer timeout")
	askCmd.Flags().StringVar(&userAgent, "ua", "citetrail/0.1 (+https://github.com/ppiankov/citetrail)", "HTTP User-Agent")
	askCmd.Flags().BoolVar(&live, "live", false, "redraw the transcript after every event")
	askCmd.Flags().StringVar(&httpProxy, "http-proxy", "", "HTTP proxy URL (overrides HTTP_PROXY env var)")
	askCmd.Flags().StringVar(&httpsProxy, "https-proxy", "", "HTTPS proxy URL (overrides HTTPS_PROXY env var)")

	// Fact-check flags
	askCmd.Flags().StringVar(&factCheckURL, "factcheck", "", "fact-check service base URL (default from config)")
	askCmd.Flags().BoolVar(&noFactCheck, "no-factcheck", false, "disable claim verification")

	// LLM fallback flags
	askCmd.Flags().BoolVar(&llmEnabled, "llm", false, "answer via an OpenAI-compatible endpoint instead (no citations)")
	askCmd.Flags().StringVar(&llmModel, "llm-model", "gpt-4o-mini", "model name for --llm")
	askCmd.Flags().StringVar(&llmBaseURL, "llm-base-url", "", "base URL for --llm (e.g. a local Ollama)")
}

func runAsk(cmd *cobra.Command, args []string) error {
	question := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// Build configuration from defaults and flags
	cfg := model.DefaultConfig()
	cfg.Backend.Timeout = timeout
	cfg.Backend.UserAgent = userAgent
	cfg.Backend.HTTPProxy = httpProxy
	cfg.Backend.HTTPSProxy = httpsProxy
	cfg.Output.Verbose = verbose
	cfg.Output.Live = live
	if backendURL != "" {
		cfg.Backend.BaseURL = backendURL
	}
	if factCheckURL != "" {
		cfg.FactCheck.BaseURL = factCheckURL
	}
	cfg.FactCheck.Enabled = !noFactCheck

	// Pick the answer source
	var source stream.Source
	if llmEnabled {
		apiKey := os.Getenv("OPENAI_API_KEY")
		if apiKey == "" && llmBaseURL == "" {
			return fmt.Errorf("OPENAI_API_KEY environment variable not set")
		}
		llm, err := stream.NewOpenAI(apiKey, llmBaseURL, llmModel)
		if err != nil {
			return fmt.Errorf("llm source: %w", err)
		}
		source = llm
	} else {
		source = stream.NewClient(cfg.Backend)
	}

	// Fact-check cache, session-scoped
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

	sess := session.New(source, checks)
	renderer := render.NewRenderer(os.Stdout, checks)

	if verbose {
		fmt.Fprintf(os.Stderr, "Asking: %s\n", question)
		fmt.Fprintf(os.Stderr, "Backend: %s\n", cfg.Backend.BaseURL)
		fmt.Fprintf(os.Stderr, "Fact-check: %v\n", cfg.FactCheck.Enabled)
		fmt.Fprintln(os.Stderr)
	}

	var onUpdate func(*model.Transcript)
	if cfg.Output.Live {
		onUpdate = func(t *model.Transcript) {
			fmt.Print("\033[H\033[2J") // clear screen between redraws
			renderer.RenderTranscript(ctx, t)
		}
	}

	if err := sess.Ask(ctx, question, onUpdate); err != nil {
		return fmt.Errorf("ask failed: %w", err)
	}

	if !cfg.Output.Live {
		renderer.RenderTranscript(ctx, sess.Transcript())
	}

	return nil
}
