package rest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"

	"github.com/MakeNowJust/heredoc"
	"github.com/spf13/cobra"
	"github.com/tmeckel/az-cli/internal/azure"
	"github.com/tmeckel/az-cli/internal/azure/arm"
	"github.com/tmeckel/az-cli/internal/cmd/util"
	"github.com/tmeckel/az-cli/internal/iostreams"
	"github.com/tmeckel/az-cli/internal/jq"
	internalutil "github.com/tmeckel/az-cli/internal/util"
	"go.uber.org/zap"
)

var methods = []string{"get", "put", "post", "delete", "patch", "head", "options"}

type restOptions struct {
	method                  string
	url                     string
	body                    string
	headers                 []string
	uriParameters           []string
	resource                string
	skipAuthorizationHeader bool
	outputFile              string
	subscription            string
	jqExpr                  string
	exporter                util.Exporter
}

func NewCmdRest(ctx util.CmdContext) *cobra.Command {
	opts := &restOptions{}

	cmd := &cobra.Command{
		Use:   "rest",
		Short: "Invoke a custom request",
		Long: heredoc.Docf(`
			Invoke a custom request against an Azure service.

			A URL starting with / is relative to the Azure Resource Manager endpoint of the active
			cloud. The placeholder %[1]s{subscriptionId}%[1]s is replaced with the id of the
			subscription selected with --subscription, or of the default subscription.

			An access token is added to the Authorization header. Its resource is derived from the URL
			for Azure Resource Manager, other services need --resource.

			JSON responses are printed with the selected output format. Use --jq to filter them with
			a jq expression instead.
		`, "`"),
		Example: heredoc.Doc(`
			# list the resource groups of the default subscription
			$ az rest --url /subscriptions/{subscriptionId}/resourcegroups?api-version=2022-09-01

			# update a resource group
			$ az rest -m patch --url /subscriptions/{subscriptionId}/resourcegroups/rg1?api-version=2022-09-01 \
			    --body '{"tags":{"env":"dev"}}'

			# call Microsoft Graph
			$ az rest --url https://graph.microsoft.com/v1.0/me --resource https://graph.microsoft.com --jq .displayName
		`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := util.MutuallyExclusive(
				"specify only one of --jq or --query",
				opts.jqExpr != "",
				opts.exporter != nil && opts.exporter.Query() != "",
			); err != nil {
				return err
			}
			if opts.skipAuthorizationHeader && opts.resource != "" {
				return util.FlagErrorf("--resource cannot be used with --skip-authorization-header")
			}
			return restRun(ctx, opts)
		},
	}

	util.StringEnumFlag(cmd, &opts.method, "method", "m", "get", methods, "HTTP request method")
	cmd.Flags().StringVarP(&opts.url, "url", "u", "", "Request URL. A URL starting with / is relative to the Azure Resource Manager endpoint")
	cmd.Flags().StringVar(&opts.url, "uri", "", "Request URL")
	_ = cmd.Flags().MarkHidden("uri")
	cmd.Flags().StringVarP(&opts.body, "body", "b", "", "Request body. Use @{file} to load from a file, @- to read standard input")
	cmd.Flags().StringArrayVar(&opts.headers, "headers", nil, "Headers in 'key=value' format or as a JSON object")
	cmd.Flags().StringArrayVar(&opts.uriParameters, "uri-parameters", nil, "Query parameters in 'key=value' format or as a JSON object")
	cmd.Flags().StringArrayVar(&opts.uriParameters, "url-parameters", nil, "Query parameters")
	_ = cmd.Flags().MarkHidden("url-parameters")
	cmd.Flags().StringVar(&opts.resource, "resource", "", "Resource url for which the access token is acquired")
	cmd.Flags().BoolVar(&opts.skipAuthorizationHeader, "skip-authorization-header", false, "Do not add the Authorization header")
	cmd.Flags().StringVar(&opts.outputFile, "output-file", "", "Save the response body to a file")
	cmd.Flags().StringVar(&opts.jqExpr, "jq", "", "Filter the JSON response with a jq expression")
	util.AddSubscriptionFlag(cmd, &opts.subscription)
	util.AddOutputFlags(ctx, cmd, &opts.exporter)

	return cmd
}

// parsePairs accepts key=value pairs and JSON objects with string values.
func parsePairs(flag string, values []string) (map[string]string, error) {
	out := map[string]string{}
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if strings.HasPrefix(v, "{") {
			var obj map[string]string
			if err := json.Unmarshal([]byte(v), &obj); err != nil {
				return nil, util.FlagErrorf("invalid JSON for %s: %w", flag, err)
			}
			for k, val := range obj {
				out[k] = val
			}
			continue
		}
		k, val, ok := strings.Cut(v, "=")
		if !ok || k == "" {
			return nil, util.FlagErrorf("invalid value %q for %s, expected key=value", v, flag)
		}
		out[k] = val
	}
	return out, nil
}

func readBody(ios *iostreams.IOStreams, body string) ([]byte, error) {
	if body == "" {
		return nil, nil
	}
	if fn, ok := strings.CutPrefix(body, "@"); ok {
		data, err := ios.ReadUserFile(fn)
		if err != nil {
			return nil, util.FlagErrorf("failed to read body from %s: %w", fn, err)
		}
		return data, nil
	}
	return []byte(body), nil
}

// scopeFor derives the token scope of the request. The second result is false when no token
// should be sent.
func (opts *restOptions) scopeFor(ios *iostreams.IOStreams, c azure.Cloud) (string, bool) {
	switch {
	case opts.skipAuthorizationHeader:
		return "", false
	case opts.resource != "":
		return azure.ScopeForResource(opts.resource), true
	case strings.HasPrefix(opts.url, "/"):
		return c.ARMScope(), true
	}
	target, err := url.Parse(opts.url)
	if err == nil {
		endpoint, _ := url.Parse(c.ResourceManager)
		if internalutil.NewURLComparer().SameOrigin(target, endpoint) {
			return c.ARMScope(), true
		}
	}
	ios.Warnf("can't derive the resource of the access token from --url, use --resource if the request needs one")
	return "", false
}

func restRun(ctx util.CmdContext, opts *restOptions) error {
	iostreams, err := ctx.IOStreams()
	if err != nil {
		return util.FlagErrorf("error getting io streams: %w", err)
	}
	if opts.url == "" {
		return util.FlagErrorf("--url is required")
	}
	if opts.jqExpr != "" {
		if _, err := jq.Compile(opts.jqExpr); err != nil {
			return util.FlagErrorWrap(err)
		}
	}
	headers, err := parsePairs("--headers", opts.headers)
	if err != nil {
		return err
	}
	params, err := parsePairs("--uri-parameters", opts.uriParameters)
	if err != nil {
		return err
	}
	body, err := readBody(iostreams, opts.body)
	if err != nil {
		return err
	}

	factory, err := ctx.ClientFactory()
	if err != nil {
		return err
	}
	c, err := factory.Cloud()
	if err != nil {
		return util.TranslateError(err)
	}
	scope, authorize := opts.scopeFor(iostreams, c)
	client, err := factory.REST(ctx.Context(), opts.subscription, scope)
	if err != nil {
		return util.TranslateError(err)
	}

	req := arm.Request{
		Method:            strings.ToUpper(opts.method),
		Path:              opts.url,
		SkipAuthorization: !authorize,
		AllowAnyHost:      authorize,
	}
	if len(headers) > 0 {
		req.Header = http.Header{}
		for k, v := range headers {
			req.Header.Set(k, v)
		}
	}
	if len(params) > 0 {
		req.Query = url.Values{}
		for k, v := range params {
			req.Query.Set(k, v)
		}
	}
	if body != nil {
		req.Body = body
	}

	resp, err := client.Do(ctx.Context(), req)
	if err != nil {
		return util.TranslateError(err)
	}
	zap.L().Sugar().Debugf("response status %d, %d bytes", resp.StatusCode, len(resp.Body))

	if opts.outputFile != "" {
		if err := os.WriteFile(opts.outputFile, resp.Body, 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", opts.outputFile, err)
		}
		return nil
	}
	if len(bytes.TrimSpace(resp.Body)) == 0 {
		return nil
	}
	if opts.jqExpr != "" {
		indent := ""
		if iostreams.IsStdoutTTY() {
			indent = "  "
		}
		return jq.Evaluate(bytes.NewReader(resp.Body), iostreams.Out, opts.jqExpr, indent, iostreams.ColorEnabled())
	}

	var doc any
	if err := json.Unmarshal(resp.Body, &doc); err != nil {
		// not JSON, print as is
		_, err := iostreams.Out.Write(resp.Body)
		return err
	}
	return opts.exporter.Write(iostreams, doc)
}
