package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/bryanwahyu/codelens/internal/domain/language"
)

func newLanguagesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "languages",
		Short: "List supported languages and their file extensions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tEXTENSIONS")
			for _, l := range language.Default().All() {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", l.ID, l.Name, strings.Join(l.Extensions, ", "))
			}
			return tw.Flush()
		},
	}
}

func newExampleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "example LANGUAGE",
		Short: "Print a built-in example snippet with known issues",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			langs := language.Default()
			l, code, ok := langs.Example(args[0])
			if !ok {
				return fmt.Errorf("no example for %q (try javascript, python or java)", args[0])
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "# %s\n", langs.ExampleFilename(l.ID))
			fmt.Fprintln(cmd.OutOrStdout(), code)
			return nil
		},
	}
}
