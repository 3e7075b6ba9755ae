package list

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmeckel/az-cli/internal/azure/arm"
	"github.com/tmeckel/az-cli/internal/cmd/util"
	"github.com/tmeckel/az-cli/internal/test"
	"go.uber.org/mock/gomock"
)

const resources = `{"value":[
	{"id":"/subscriptions/sub-1/resourceGroups/rg1/providers/Microsoft.Storage/storageAccounts/sa1","name":"sa1","type":"Microsoft.Storage/storageAccounts","location":"westeurope","tags":{}},
	{"id":"/subscriptions/sub-1/resourceGroups/rg2/providers/Microsoft.Web/sites/web","name":"web","type":"Microsoft.Web/sites","location":"eastus","tags":{}}
]}`

func TestListSubscription(t *testing.T) {
	f := test.NewCmdFixture(t, "")
	f.ExpectARM("")
	f.ARM.EXPECT().Do(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, req arm.Request) (*arm.Response, error) {
		assert.Equal(t, "/subscriptions/{subscriptionId}/resources", req.Path)
		assert.False(t, req.Query.Has("$filter"))
		return &arm.Response{StatusCode: http.StatusOK, Body: []byte(resources)}, nil
	})

	cmd := NewCmdList(f.Ctx)
	cmd.SetArgs([]string{"-o", "table"})
	require.NoError(t, cmd.Execute())
	assert.Equal(t, "Name  ResourceGroup  Location    Type\n"+
		"----  -------------  ----------  ---------------------------------\n"+
		"sa1   rg1            westeurope  Microsoft.Storage/storageAccounts\n"+
		"web   rg2            eastus      Microsoft.Web/sites\n", f.Out.String())
}

func TestListResourceGroup(t *testing.T) {
	tests := []struct {
		name string
		cfg  string
		args []string
		path string
	}{
		{
			name: "flag",
			args: []string{"-g", "rg1"},
			path: "/subscriptions/{subscriptionId}/resourceGroups/rg1/resources",
		},
		{
			name: "configured default",
			cfg:  "defaults:\n  group: rg2\n",
			path: "/subscriptions/{subscriptionId}/resourceGroups/rg2/resources",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := test.NewCmdFixture(t, tt.cfg)
			f.ExpectARM("")
			f.ARM.EXPECT().Do(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, req arm.Request) (*arm.Response, error) {
				assert.Equal(t, tt.path, req.Path)
				return &arm.Response{StatusCode: http.StatusOK, Body: []byte(`{"value":[]}`)}, nil
			})

			cmd := NewCmdList(f.Ctx)
			cmd.SetArgs(append(tt.args, "-o", "json"))
			require.NoError(t, cmd.Execute())
			assert.Equal(t, "[]\n", f.Out.String())
		})
	}
}

func TestListResourceGroupColumn(t *testing.T) {
	f := test.NewCmdFixture(t, "")
	f.ExpectARM("")
	f.ARM.EXPECT().Do(gomock.Any(), gomock.Any()).Return(&arm.Response{StatusCode: http.StatusOK, Body: []byte(resources)}, nil)

	cmd := NewCmdList(f.Ctx)
	cmd.SetArgs([]string{"-o", "tsv", "--query", "[].resourceGroup"})
	require.NoError(t, cmd.Execute())
	assert.Equal(t, "rg1\nrg2\n", f.Out.String())
}

func TestListFilter(t *testing.T) {
	tests := []struct {
		name string
		opts listOptions
		want string
	}{
		{name: "none", opts: listOptions{}, want: ""},
		{name: "type", opts: listOptions{resourceType: "Microsoft.Web/sites"}, want: "resourceType eq 'Microsoft.Web/sites'"},
		{
			name: "type name location",
			opts: listOptions{resourceType: "Microsoft.Web/sites", name: "web", location: "eastus"},
			want: "resourceType eq 'Microsoft.Web/sites' and name eq 'web' and location eq 'eastus'",
		},
		{name: "tag", opts: listOptions{tag: "env=prod"}, want: "tagName eq 'env' and tagValue eq 'prod'"},
		{name: "tag name only", opts: listOptions{tag: "env"}, want: "tagName eq 'env'"},
		{name: "quotes", opts: listOptions{name: "it's"}, want: "name eq 'it''s'"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.opts.filter()
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestListTagWithOtherFilters(t *testing.T) {
	f := test.NewCmdFixture(t, "")

	err := listRun(f.Ctx, &listOptions{tag: "env=prod", name: "web"})
	var validation *util.ValidationError
	require.ErrorAs(t, err, &validation)
}
