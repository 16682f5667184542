// Package cli is the codelens command line: analyze files locally against the
// configured provider, browse the language catalog, or run the HTTP API.
package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/bryanwahyu/codelens/internal/bootstrap"
	"github.com/bryanwahyu/codelens/internal/config"
)

var version = "dev"

// buildApp is swapped in tests to inject a fake completer.
var buildApp = func(ctx context.Context, cfg *config.Config, withStorage bool) (*bootstrap.App, error) {
	return bootstrap.Build(ctx, cfg, withStorage)
}

type rootOptions struct {
	configPath string
}

func (o *rootOptions) load() (*config.Config, error) {
	return config.Load(o.configPath)
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "codelens",
		Short:         "AI code analysis with a local fallback",
		Long:          "codelens sends source code to a completion model and reports security, performance, quality and style issues together with a corrected copy.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&opts.configPath, "config", config.Path(), "Path to config.yaml")

	cmd.AddCommand(newAnalyzeCmd(opts))
	cmd.AddCommand(newLanguagesCmd())
	cmd.AddCommand(newExampleCmd())
	cmd.AddCommand(newServeCmd(opts))
	return cmd
}

// NewRootCmdForTest returns the root command for testing.
func NewRootCmdForTest() *cobra.Command {
	return newRootCmd()
}

func Execute() error {
	return newRootCmd().Execute()
}
