package root

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/muesli/reflow/wordwrap"
	"github.com/spf13/cobra"
	"github.com/tmeckel/az-cli/internal/iostreams"
)

// longPager shows the Long text of a command through the pager.
func longPager(ios *iostreams.IOStreams) func(*cobra.Command, []string) {
	return func(cmd *cobra.Command, _ []string) {
		if !ios.IsStdoutTTY() {
			fmt.Fprint(ios.Out, cmd.Long)
			return
		}

		_ = ios.StartPager()
		defer ios.StopPager()
		fmt.Fprint(ios.Out, wordwrap.String(cmd.Long, ios.TerminalWidth()))
	}
}

func stringifyReference(cmd *cobra.Command) string {
	buf := bytes.NewBufferString("# az reference\n\n")
	for _, c := range cmd.Commands() {
		if c.Hidden {
			continue
		}
		cmdRef(buf, c, 2)
	}
	return buf.String()
}

func cmdRef(w io.Writer, cmd *cobra.Command, depth int) {
	fmt.Fprintf(w, "%s `%s`\n\n", strings.Repeat("#", depth), cmd.UseLine())
	fmt.Fprintf(w, "%s\n\n", cmd.Short)

	if flagUsages := cmd.Flags().FlagUsages(); flagUsages != "" {
		fmt.Fprintf(w, "```\n%s\n```\n\n", dedent(flagUsages))
	}

	for _, c := range cmd.Commands() {
		if c.Hidden {
			continue
		}
		cmdRef(w, c, depth+1)
	}
}
