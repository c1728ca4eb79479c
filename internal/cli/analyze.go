package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/spf13/cobra"

	"greencode-backend/internal/analyses/engine"
	"greencode-backend/internal/analyses/report"
)

type analyzeOptions struct {
	language string
	output   string
	fixes    bool
	server   string
	token    string
	guestID  string
	timeout  time.Duration
}

// NewAnalyzeCmd returns the analyze subcommand.
func NewAnalyzeCmd() *cobra.Command {
	opts := &analyzeOptions{}
	cmd := &cobra.Command{
		Use:   "analyze FILE",
		Short: "Analyze a source file for energy-wasteful patterns",
		Long: `Analyze a source file and print its energy score, estimated CO2, detected
patterns and greener rewrites. Use "-" to read code from stdin.

Examples:
  # Analyze a Python file locally
  greencode analyze slow.py

  # Pipe code in and pick the language explicitly
  cat main.js | greencode analyze - --language javascript

  # Analyze against a running server and print JSON
  greencode analyze app.go --server http://localhost:8080 --token $TOKEN -o json

  # Print only the optimized snippets
  greencode analyze slow.py --fixes`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd, opts, args[0])
		},
	}

	cmd.Flags().StringVarP(&opts.language, "language", "l", "", "Source language (inferred from the file extension when empty)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "human", "Output format (human, json, yaml, text)")
	cmd.Flags().BoolVar(&opts.fixes, "fixes", false, "Print only the optimized code of every suggestion")
	cmd.Flags().StringVar(&opts.server, "server", os.Getenv("GREENCODE_SERVER"), "API base URL for remote analysis")
	cmd.Flags().StringVar(&opts.token, "token", os.Getenv("GREENCODE_TOKEN"), "Bearer token for the API server")
	cmd.Flags().StringVar(&opts.guestID, "guest-id", "", "Guest identity used when no token is given")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 30*time.Second, "Remote request timeout")

	return cmd
}

func runAnalyze(cmd *cobra.Command, opts *analyzeOptions, source string) error {
	if !validOutput(opts.output) {
		return fmt.Errorf("unknown output format %q", opts.output)
	}

	code, err := readSource(cmd.InOrStdin(), source)
	if err != nil {
		return err
	}
	if strings.TrimSpace(code) == "" {
		return errors.New("no code to analyze")
	}

	language := opts.language
	if language == "" {
		language = inferLanguage(source)
	}

	var (
		res       engine.Result
		createdAt = time.Now()
	)
	if opts.server != "" {
		s := spinner.New(spinner.CharSets[11], 100*time.Millisecond, spinner.WithWriter(cmd.ErrOrStderr()))
		s.Suffix = " Analyzing on " + opts.server + "..."
		s.Start()

		client := NewClient(opts.server, opts.token, opts.guestID, opts.timeout)
		remote, err := client.Analyze(cmd.Context(), code, language)
		s.Stop()
		if err != nil {
			return fmt.Errorf("remote analysis failed: %w", err)
		}
		res = remote.Result
		if !remote.CreatedAt.IsZero() {
			createdAt = remote.CreatedAt
		}
	} else {
		analyzer, err := engine.NewDefaultAnalyzer()
		if err != nil {
			return fmt.Errorf("load pattern library: %w", err)
		}
		res, err = analyzer.Analyze(code, language)
		if err != nil {
			return err
		}
	}

	out := cmd.OutOrStdout()
	if opts.fixes {
		fixed := report.ApplyAllFixes(res.Suggestions)
		if fixed == "" {
			printSuccess(out, "No fixes needed")
			return nil
		}
		fmt.Fprintln(out, fixed)
		return nil
	}
	return DisplayResult(out, res, createdAt, opts.output)
}

func readSource(stdin io.Reader, source string) (string, error) {
	if source == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(source)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", source, err)
	}
	return string(data), nil
}

var extensionLanguages = map[string]string{
	".js":    "javascript",
	".mjs":   "javascript",
	".cjs":   "javascript",
	".jsx":   "javascript",
	".ts":    "typescript",
	".tsx":   "typescript",
	".py":    "python",
	".java":  "java",
	".go":    "go",
	".rs":    "rust",
	".c":     "c",
	".h":     "c",
	".cpp":   "cpp",
	".cc":    "cpp",
	".hpp":   "cpp",
	".cs":    "csharp",
	".rb":    "ruby",
	".php":   "php",
	".kt":    "kotlin",
	".swift": "swift",
}

// inferLanguage maps a file extension to a language name. Unknown extensions
// and stdin yield "" so the analyzer falls back to its default.
func inferLanguage(source string) string {
	if source == "-" {
		return ""
	}
	return extensionLanguages[strings.ToLower(filepath.Ext(source))]
}
