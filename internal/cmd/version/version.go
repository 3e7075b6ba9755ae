package version

import (
	"fmt"
	"regexp"
	"runtime"
	"strings"

	"github.com/MakeNowJust/heredoc"
	"github.com/spf13/cobra"
	"github.com/tmeckel/az-cli/internal/cmd/util"
)

type versionOptions struct {
	version   string
	buildDate string
	exporter  util.Exporter
}

type versionInfo struct {
	AzureCLI     string            `json:"azure-cli"`
	AzureCLICore string            `json:"azure-cli-core"`
	BuildDate    string            `json:"buildDate,omitempty"`
	Platform     string            `json:"platform"`
	Extensions   map[string]string `json:"extensions"`
}

func NewCmdVersion(ctx util.CmdContext, version, buildDate string) *cobra.Command {
	opts := &versionOptions{
		version:   strings.TrimPrefix(version, "v"),
		buildDate: buildDate,
	}
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show the versions of az and its components",
		Example: heredoc.Doc(`
			$ az version
			$ az version --query '"azure-cli"' -o tsv
		`),
		Args:    cobra.NoArgs,
		GroupID: "core",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVersion(ctx, opts)
		},
	}

	util.AddOutputFlags(ctx, cmd, &opts.exporter)
	util.DisableAuthCheck(cmd)

	return cmd
}

func runVersion(ctx util.CmdContext, opts *versionOptions) error {
	ios, err := ctx.IOStreams()
	if err != nil {
		return err
	}
	return opts.exporter.Write(ios, versionInfo{
		AzureCLI:     opts.version,
		AzureCLICore: opts.version,
		BuildDate:    opts.buildDate,
		Platform:     runtime.GOOS + "/" + runtime.GOARCH,
		Extensions:   map[string]string{},
	})
}

func Format(version, buildDate string) string {
	version = strings.TrimPrefix(version, "v")

	var dateStr string
	if buildDate != "" {
		dateStr = fmt.Sprintf(" (%s)", buildDate)
	}

	return fmt.Sprintf("azure-cli %s%s\n%s\n", version, dateStr, changelogURL(version))
}

func changelogURL(version string) string {
	path := "https://github.com/tmeckel/az-cli"
	r := regexp.MustCompile(`^v?\d+\.\d+\.\d+(-[\w.]+)?$`)
	if !r.MatchString(version) {
		return fmt.Sprintf("%s/releases/latest", path)
	}

	url := fmt.Sprintf("%s/releases/tag/v%s", path, strings.TrimPrefix(version, "v"))
	return url
}
