package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/briandowns/spinner"
	"github.com/spf13/cobra"

	appanalysis "github.com/bryanwahyu/codelens/internal/application/analysis"
	domain "github.com/bryanwahyu/codelens/internal/domain/analysis"
	"github.com/bryanwahyu/codelens/internal/domain/language"
)

func newAnalyzeCmd(root *rootOptions) *cobra.Command {
	var (
		lang       string
		output     string
		category   string
		writeFixed string
	)

	cmd := &cobra.Command{
		Use:   "analyze FILE",
		Short: "Analyze a source file",
		Long:  "Analyze a source file (or - for stdin). The language is detected from the file extension unless --language is given.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch output {
			case "human", "json", "yaml":
			default:
				return fmt.Errorf("unknown output format %q (human, json, yaml)", output)
			}
			if !domain.ValidCategoryFilter(category) {
				return fmt.Errorf("%w: unknown category %q (security, performance, quality, style, lint)", domain.ErrInvalidInput, category)
			}

			code, err := readSource(cmd.InOrStdin(), args[0])
			if err != nil {
				return err
			}

			cfg, err := root.load()
			if err != nil {
				return fmt.Errorf("config load error: %w", err)
			}
			app, err := buildApp(cmd.Context(), cfg, false)
			if err != nil {
				return err
			}

			if lang == "" {
				lang = detectLanguage(app.Languages, args[0])
			}

			s := newSpinner(cmd.ErrOrStderr())
			s.Suffix = fmt.Sprintf(" Analyzing %s with %s...", lang, cfg.Provider.Model)
			s.Start()
			out, err := app.Service.Analyze(cmd.Context(), code, lang)
			s.Stop()
			if err != nil {
				return fmt.Errorf("analysis failed: %w", err)
			}

			if writeFixed != "" {
				if err := os.WriteFile(writeFixed, []byte(out.Result.CorrectedCode), 0o644); err != nil {
					return fmt.Errorf("write corrected code: %w", err)
				}
			}

			return render(cmd.OutOrStdout(), output, out, category)
		},
	}

	cmd.Flags().StringVarP(&lang, "language", "l", "", "Language id (default: detect from extension)")
	cmd.Flags().StringVarP(&output, "output", "o", "human", "Output format: human, json, yaml")
	cmd.Flags().StringVar(&category, "category", "", "Only show issues of one category (security, performance, quality, style, lint)")
	cmd.Flags().StringVar(&writeFixed, "write-fixed", "", "Write the corrected code to this path")
	return cmd
}

func readSource(stdin io.Reader, path string) (string, error) {
	if path == "-" {
		b, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(b), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return string(b), nil
}

func detectLanguage(langs *language.Catalog, path string) string {
	if path == "-" {
		return language.DefaultID
	}
	return langs.DetectFromFilename(filepath.Base(path)).ID
}

// sourceNote is printed under human output when the model did not answer.
func sourceNote(out *appanalysis.Outcome) string {
	if out.Source != appanalysis.SourceFallback {
		return ""
	}
	return fmt.Sprintf("model output unavailable (%v), showing local fallback scan", out.Cause)
}

// newSpinner draws on w only when w is a terminal file.
func newSpinner(w io.Writer) *spinner.Spinner {
	opt := spinner.WithWriter(w)
	if f, ok := w.(*os.File); ok {
		opt = spinner.WithWriterFile(f)
	}
	return spinner.New(spinner.CharSets[11], 100*time.Millisecond, opt)
}
