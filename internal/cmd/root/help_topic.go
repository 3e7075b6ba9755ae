package root

import (
	"fmt"
	"io"

	"github.com/MakeNowJust/heredoc"
	"github.com/spf13/cobra"
	"github.com/tmeckel/az-cli/internal/iostreams"
	"github.com/tmeckel/az-cli/internal/text"
)

type helpTopic struct {
	name    string
	short   string
	long    string
	example string
}

var HelpTopics = []helpTopic{
	{
		name:  "environment",
		short: "Environment variables that can be used with az",
		long: heredoc.Doc(`
			AZURE_CONFIG_DIR: the directory where az stores its configuration, the profile
			and the token cache. Defaults to "$HOME/.azure".

			AZURE_<SECTION>_<KEY>: overrides the configuration value section.key, e.g.
			AZURE_CORE_OUTPUT=table or AZURE_DEFAULTS_GROUP=my-group.

			AZURE_STORAGE_ACCOUNT, AZURE_STORAGE_KEY, AZURE_STORAGE_SAS_TOKEN,
			AZURE_STORAGE_AUTH_MODE: defaults for the storage account flags of the storage
			commands.

			AZ_DEBUG: set to a truthy value to enable debug output on standard error, including
			the HTTP traffic.

			AZ_PAGER, PAGER (in order of precedence): a terminal paging program to send standard
			output to, e.g. "less".

			AZ_PROMPT_DISABLED: set to any value to disable interactive prompting in the terminal.

			NO_COLOR: set to any value to avoid printing ANSI escape sequences for color output.

			CLICOLOR: set to "0" to disable printing ANSI colors in output.

			CLICOLOR_FORCE: set to a value other than "0" to keep ANSI colors in output
			even when the output is piped.

			AZ_FORCE_TTY: set to any value to force terminal-style output even when the output is
			redirected. When the value is a number, it is interpreted as the number of columns
			available in the viewport. When the value is a percentage, it will be applied against
			the number of columns available in the current viewport.
		`),
	},
	{
		name:  "formatting",
		short: "Formatting options for command output",
		long: heredoc.Docf(`
			Commands that return data accept %[1]s--output%[1]s (%[1]s-o%[1]s) and %[1]s--query%[1]s.

			The output format is one of:

			- json: indented JSON, the default
			- jsonc: colored JSON
			- yaml, yamlc: YAML, plain or colored
			- table: aligned columns with a header, for humans
			- tsv: tab separated values without a header, for scripts
			- none: no output

			The default format can be changed with %[1]saz config set core.output=table%[1]s.

			%[1]s--query%[1]s takes a JMESPath expression that is applied to the result before it is
			rendered. See <https://jmespath.org> for the syntax.

			For table output, commands show a curated set of columns. When a query is given, or
			the command has no curated columns, the columns are the scalar properties of the
			result objects in alphabetical order.
		`, "`"),
		example: heredoc.Doc(`
			$ az group list --query "[?location=='westeurope'].name" -o tsv
			$ az account show --query "{name:name, id:id}" -o table
			$ az group show -n my-group -o yaml
		`),
	},
	{
		name:  "reference",
		short: "A comprehensive reference of all az commands",
	},
	{
		name:  "exit-codes",
		short: "Exit codes used by az",
		long: heredoc.Doc(`
			az follows normal conventions regarding exit codes.

			- If a command completes successfully, the exit code will be 0

			- If a command fails because of an error of the service, the network or the
			  authentication, the exit code will be 1

			- If a command is invoked with invalid arguments, or gets cancelled, the exit code
			  will be 2

			- If the resource a command addresses does not exist, the exit code will be 3
		`),
	},
}

func NewCmdHelpTopic(ios *iostreams.IOStreams, ht helpTopic) *cobra.Command {
	cmd := &cobra.Command{
		Use:     ht.name,
		Short:   ht.short,
		Long:    ht.long,
		Example: ht.example,
		Hidden:  true,
		Annotations: map[string]string{
			"markdown:generate": "true",
			"markdown:basename": "az_help_" + ht.name,
		},
	}

	cmd.SetUsageFunc(func(c *cobra.Command) error {
		return helpTopicUsageFunc(ios.ErrOut, c)
	})

	cmd.SetHelpFunc(func(c *cobra.Command, _ []string) {
		helpTopicHelpFunc(ios.Out, c)
	})

	return cmd
}

func helpTopicHelpFunc(w io.Writer, command *cobra.Command) {
	fmt.Fprint(w, command.Long)
	if command.Example != "" {
		fmt.Fprintf(w, "\n\nEXAMPLES\n")
		fmt.Fprint(w, text.Indent(command.Example, "  "))
	}
}

func helpTopicUsageFunc(w io.Writer, command *cobra.Command) error {
	fmt.Fprintf(w, "Usage: az help %s", command.Use)
	return nil
}
