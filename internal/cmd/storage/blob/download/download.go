package download

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"

	"github.com/MakeNowJust/heredoc"
	"github.com/spf13/cobra"
	"github.com/tmeckel/az-cli/internal/azure"
	"github.com/tmeckel/az-cli/internal/cmd/util"
	"github.com/tmeckel/az-cli/internal/download"
	"github.com/tmeckel/az-cli/internal/retry"
	"github.com/tmeckel/az-cli/internal/text"
	"go.uber.org/zap"
)

type downloadOptions struct {
	accountName    string
	container      string
	name           string
	blobURL        string
	file           string
	startRange     int64
	endRange       int64
	maxConnections int
	authMode       string
	accountKey     string
	sasToken       string
	noProgress     bool
	overwrite      bool
	subscription   string
	exporter       util.Exporter
}

type downloadResult struct {
	Container     string `json:"container"`
	ContentLength int64  `json:"contentLength"`
	Name          string `json:"name"`
	Path          string `json:"path"`
	URL           string `json:"url"`
}

// blobServiceVersion is sent with requests against --blob-url so that range reads behave the same
// as through the storage SDK.
const blobServiceVersion = "2023-11-03"

var tableColumns = []util.TableColumn{
	util.Column("Name", "name"),
	util.Column("Container", "container"),
	util.Column("ContentLength", "contentLength"),
	util.Column("Path", "path"),
}

func NewCmdDownload(ctx util.CmdContext) *cobra.Command {
	opts := &downloadOptions{}

	cmd := &cobra.Command{
		Use:   "download",
		Short: "Download a blob to a file path",
		Long: heredoc.Docf(`
			Download a blob to a file.

			The blob is fetched in chunks of 4 MiB over up to %[1]s--max-connections%[1]s parallel
			connections, which defaults to the %[1]sstorage.max_connections%[1]s setting. A part of
			the blob is selected with %[1]s--start-range%[1]s and %[1]s--end-range%[1]s, both are
			inclusive byte offsets.
		`, "`"),
		Example: heredoc.Doc(`
			$ az storage blob download --account-name mystorage -c backups -n db.bak -f ./db.bak
			$ az storage blob download --account-name mystorage -c logs -n app.log -f head.log --end-range 1023 --auth-mode login
			$ az storage blob download --blob-url "https://mystorage.blob.core.windows.net/data/report.csv?<sas>" -f report.csv
		`),
		Args: cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("max-connections") {
				return nil
			}
			cfg, err := ctx.Config()
			if err != nil {
				return err
			}
			opts.maxConnections = cfg.Defaults().MaxConnections()
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := util.MutuallyExclusive(
				"specify only one of --account-key or --sas-token",
				opts.accountKey != "",
				opts.sasToken != "",
			); err != nil {
				return err
			}
			if opts.blobURL != "" {
				if opts.accountName != "" || opts.container != "" || opts.name != "" {
					return util.FlagErrorf("--blob-url cannot be combined with --account-name, --container-name or --name")
				}
			} else if opts.container == "" || opts.name == "" {
				return util.FlagErrorf("--container-name and --name are required unless --blob-url is given")
			}
			if !cmd.Flags().Changed("end-range") {
				opts.endRange = -1
			}
			return downloadRun(ctx, opts)
		},
	}

	cmd.Flags().StringVar(&opts.accountName, "account-name", "", "Storage account name")
	cmd.Flags().StringVarP(&opts.container, "container-name", "c", "", "The container name")
	cmd.Flags().StringVarP(&opts.name, "name", "n", "", "The blob name")
	cmd.Flags().StringVar(&opts.blobURL, "blob-url", "", "The full endpoint URL to the blob, including the SAS token if used")
	cmd.Flags().StringVarP(&opts.file, "file", "f", "", "Path of file to write out to")
	cmd.Flags().Int64Var(&opts.startRange, "start-range", 0, "Start of byte range to use for downloading a section of the blob")
	cmd.Flags().Int64Var(&opts.endRange, "end-range", -1, "End of byte range to use for downloading a section of the blob, inclusive")
	cmd.Flags().IntVar(&opts.maxConnections, "max-connections", download.DefaultMaxConnections, "The number of parallel connections with which to download")
	util.StringEnumFlag(cmd, &opts.authMode, "auth-mode", "", "", []string{azure.AuthModeKey, azure.AuthModeLogin}, "The mode in which to run the command")
	cmd.Flags().StringVar(&opts.accountKey, "account-key", "", "Storage account key")
	cmd.Flags().StringVar(&opts.sasToken, "sas-token", "", "A Shared Access Signature (SAS)")
	cmd.Flags().BoolVar(&opts.noProgress, "no-progress", false, "Disable progress reporting")
	cmd.Flags().BoolVar(&opts.overwrite, "overwrite", true, "Overwrite an existing file")
	util.AddSubscriptionFlag(cmd, &opts.subscription)
	util.AddOutputFlags(ctx, cmd, &opts.exporter, tableColumns...)

	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func downloadRun(ctx util.CmdContext, opts *downloadOptions) (err error) {
	iostreams, err := ctx.IOStreams()
	if err != nil {
		return util.FlagErrorf("error getting io streams: %w", err)
	}
	if opts.maxConnections < 1 {
		return util.ValidationErrorf("--max-connections must be a positive number")
	}
	if opts.startRange < 0 {
		return util.ValidationErrorf("--start-range must not be negative")
	}
	if opts.endRange >= 0 && opts.endRange < opts.startRange {
		return util.ValidationErrorf("--end-range %d is before --start-range %d", opts.endRange, opts.startRange)
	}
	if !opts.overwrite {
		if _, err := os.Stat(opts.file); err == nil {
			return util.ValidationErrorf("file %q already exists, use --overwrite to replace it", opts.file)
		}
	}

	src, err := newSource(ctx, opts)
	if err != nil {
		return err
	}

	f, err := os.OpenFile(opts.file, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			zap.L().Sugar().Debugf("removing incomplete file %s", opts.file)
			_ = os.Remove(opts.file)
		}
	}()

	dlOpts := download.Options{
		MaxConnections: opts.maxConnections,
		Start:          opts.startRange,
		End:            opts.endRange,
	}
	if !opts.noProgress {
		bar := iostreams.NewProgressBar("Downloading ")
		defer bar.Done()
		dlOpts.Progress = bar.Update
	}

	n, err := download.Download(ctx.Context(), src, f, dlOpts)
	if err != nil {
		if errors.Is(err, download.ErrInvalidRange) {
			return util.ValidationErrorf("%w", err)
		}
		return util.TranslateError(err)
	}
	zap.L().Sugar().Debugf("downloaded %s from %s", text.FormatBytes(n), src.URL())

	container, name := opts.container, opts.name
	if opts.blobURL != "" {
		container, name = splitBlobPath(src.URL())
	}
	return opts.exporter.Write(iostreams, downloadResult{
		Container:     container,
		ContentLength: n,
		Name:          name,
		Path:          opts.file,
		URL:           src.URL(),
	})
}

func newSource(ctx util.CmdContext, opts *downloadOptions) (azure.BlobSource, error) {
	if opts.blobURL != "" {
		u, err := url.Parse(opts.blobURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return nil, util.FlagErrorf("invalid value for --blob-url: %q", opts.blobURL)
		}
		src := download.NewHTTPSource(&http.Client{Transport: retry.NewTransport(nil, retry.NewExponentialPolicy())}, opts.blobURL)
		src.Header = http.Header{"X-Ms-Version": []string{blobServiceVersion}}
		return &urlSource{src: src}, nil
	}

	factory, err := ctx.ClientFactory()
	if err != nil {
		return nil, err
	}
	src, err := factory.Blob(ctx.Context(), azure.BlobOptions{
		AccountName:  opts.accountName,
		Container:    opts.container,
		Name:         opts.name,
		AuthMode:     opts.authMode,
		AccountKey:   opts.accountKey,
		SASToken:     opts.sasToken,
		Subscription: opts.subscription,
	})
	if err != nil {
		if errors.Is(err, azure.ErrNoStorageAccount) {
			return nil, util.ValidationErrorf("%w", err)
		}
		return nil, util.TranslateError(err)
	}
	return src, nil
}

// urlSource reads a blob addressed by its URL. URL omits the query, which may carry a SAS token.
type urlSource struct {
	src *download.HTTPSource
}

func (s *urlSource) Size(ctx context.Context) (int64, error) {
	return s.src.Size(ctx)
}

func (s *urlSource) ReadRange(ctx context.Context, offset, count int64) (io.ReadCloser, error) {
	return s.src.ReadRange(ctx, offset, count)
}

func (s *urlSource) URL() string {
	u, err := url.Parse(s.src.URL)
	if err != nil {
		return s.src.URL
	}
	u.RawQuery = ""
	return u.String()
}

// splitBlobPath returns the container and the blob name of a blob URL.
func splitBlobPath(blobURL string) (string, string) {
	u, err := url.Parse(blobURL)
	if err != nil {
		return "", ""
	}
	container, name, _ := strings.Cut(strings.TrimPrefix(u.Path, "/"), "/")
	return container, name
}
