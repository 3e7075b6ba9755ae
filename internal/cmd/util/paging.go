package util

import (
	"context"

	"github.com/spf13/cobra"
	"github.com/tmeckel/az-cli/internal/iostreams"
	"github.com/tmeckel/az-cli/internal/paging"
	"github.com/tmeckel/az-cli/internal/text"
	"go.uber.org/zap"
)

// AddPagingFlags adds --max-items and --next-token, which window a list operation on the client.
func AddPagingFlags(cmd *cobra.Command, opts *paging.Options) {
	cmd.Flags().IntVar(&opts.Limit, "max-items", 0, "Total number of items to return in the command's output. If more items are available, a token to resume the listing is shown")
	cmd.Flags().StringVar(&opts.Token, "next-token", "", "Token to specify where to start paginating. This is the token value from a previously truncated response")
}

// CollectPages drains pager. When the listing was cut by --max-items, the token to resume it is
// written to stderr.
func CollectPages[T any](ctx context.Context, ios *iostreams.IOStreams, pager *paging.Pager[T]) ([]T, error) {
	items, err := pager.All(ctx)
	if err != nil {
		return nil, TranslateError(err)
	}
	zap.L().Sugar().Debugf("collected %s items", text.FormatCount(int64(len(items))))
	if tok := pager.NextToken(); tok != "" {
		ios.Warnf("Next token: %s", tok)
	}
	return items, nil
}

// PagingError converts a malformed --next-token into a usage error.
func PagingError(err error) error {
	return FlagErrorf("invalid value for --next-token: %w", err)
}
