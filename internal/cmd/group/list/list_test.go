package list

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmeckel/az-cli/internal/azure/arm"
	"github.com/tmeckel/az-cli/internal/cmd/util"
	"github.com/tmeckel/az-cli/internal/paging"
	"github.com/tmeckel/az-cli/internal/test"
	"go.uber.org/mock/gomock"
)

const secondPage = "https://management.azure.com/subscriptions/sub-1/resourcegroups?api-version=2022-09-01&$skiptoken=abc"

func page(t *testing.T, next string, names ...string) *arm.Response {
	t.Helper()
	groups := make([]arm.ResourceGroup, 0, len(names))
	for _, n := range names {
		groups = append(groups, arm.ResourceGroup{Name: n, Location: "westeurope", Properties: &arm.ResourceGroupProperties{ProvisioningState: "Succeeded"}})
	}
	body, err := json.Marshal(paging.Page[arm.ResourceGroup]{Value: groups, NextLink: next})
	require.NoError(t, err)
	return &arm.Response{StatusCode: http.StatusOK, Body: body}
}

func TestListAllPages(t *testing.T) {
	f := test.NewCmdFixture(t, "")
	f.ExpectARM("")
	gomock.InOrder(
		f.ARM.EXPECT().Do(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, req arm.Request) (*arm.Response, error) {
			assert.Equal(t, "/subscriptions/{subscriptionId}/resourcegroups", req.Path)
			assert.Equal(t, arm.ResourcesAPIVersion, req.APIVersion)
			assert.Empty(t, req.Query.Get("$filter"))
			return page(t, secondPage, "rg1", "rg2"), nil
		}),
		f.ARM.EXPECT().Do(gomock.Any(), arm.Request{Method: http.MethodGet, Path: secondPage}).Return(page(t, "", "rg3"), nil),
	)

	cmd := NewCmdList(f.Ctx)
	cmd.SetArgs([]string{"-o", "tsv", "--query", "[].name"})
	require.NoError(t, cmd.Execute())
	assert.Equal(t, "rg1\nrg2\nrg3\n", f.Out.String())
	assert.Empty(t, f.ErrOut.String())
}

func TestListTable(t *testing.T) {
	f := test.NewCmdFixture(t, "core:\n  output: table\n")
	f.ExpectARM("sub-2")
	f.ARM.EXPECT().Do(gomock.Any(), gomock.Any()).Return(page(t, "", "rg1", "web"), nil)

	cmd := NewCmdList(f.Ctx)
	cmd.SetArgs([]string{"--subscription", "sub-2"})
	require.NoError(t, cmd.Execute())
	assert.Equal(t, "Name  Location    Status\n"+
		"----  ----------  ---------\n"+
		"rg1   westeurope  Succeeded\n"+
		"web   westeurope  Succeeded\n", f.Out.String())
}

func TestListMaxItems(t *testing.T) {
	f := test.NewCmdFixture(t, "")
	f.ExpectARM("")
	gomock.InOrder(
		f.ARM.EXPECT().Do(gomock.Any(), gomock.Any()).Return(page(t, secondPage, "rg1", "rg2"), nil),
		f.ARM.EXPECT().Do(gomock.Any(), gomock.Any()).Return(page(t, "", "rg3", "rg4"), nil),
	)

	cmd := NewCmdList(f.Ctx)
	cmd.SetArgs([]string{"-o", "tsv", "--query", "[].name", "--max-items", "3"})
	require.NoError(t, cmd.Execute())
	assert.Equal(t, "rg1\nrg2\nrg3\n", f.Out.String())

	want := paging.Token{NextLink: secondPage, Offset: 1}.Encode()
	assert.Equal(t, "! Next token: "+want+"\n", f.ErrOut.String())
}

func TestListNextToken(t *testing.T) {
	f := test.NewCmdFixture(t, "")
	f.ExpectARM("")
	f.ARM.EXPECT().Do(gomock.Any(), arm.Request{Method: http.MethodGet, Path: secondPage}).Return(page(t, "", "rg3", "rg4"), nil)

	cmd := NewCmdList(f.Ctx)
	cmd.SetArgs([]string{"-o", "tsv", "--query", "[].name", "--next-token", paging.Token{NextLink: secondPage, Offset: 1}.Encode()})
	require.NoError(t, cmd.Execute())
	assert.Equal(t, "rg4\n", f.Out.String())
}

func TestListInvalidNextToken(t *testing.T) {
	f := test.NewCmdFixture(t, "")
	f.ExpectARM("")

	err := listRun(f.Ctx, &listOptions{paging: paging.Options{Token: "%%%"}})
	var flagErr *util.ErrFlag
	require.ErrorAs(t, err, &flagErr)
	assert.ErrorIs(t, err, paging.ErrInvalidToken)
}

func TestListNextTokenForOtherHost(t *testing.T) {
	f := test.NewCmdFixture(t, "")
	f.ExpectARM("")

	token := paging.Token{NextLink: "https://collector.example.com/subscriptions/sub-1/resourcegroups"}.Encode()
	err := listRun(f.Ctx, &listOptions{paging: paging.Options{Token: token}})
	var flagErr *util.ErrFlag
	require.ErrorAs(t, err, &flagErr)
	assert.ErrorIs(t, err, paging.ErrInvalidToken)
}

func TestListTagFilter(t *testing.T) {
	tests := []struct {
		tag  string
		want string
	}{
		{tag: "env=prod", want: "tagName eq 'env' and tagValue eq 'prod'"},
		{tag: "env", want: "tagName eq 'env'"},
		{tag: "env=", want: "tagName eq 'env' and tagValue eq ''"},
		{tag: "owner=o'brien", want: "tagName eq 'owner' and tagValue eq 'o''brien'"},
	}
	for _, tt := range tests {
		t.Run(tt.tag, func(t *testing.T) {
			f := test.NewCmdFixture(t, "core:\n  output: json\n")
			f.ExpectARM("")
			f.ARM.EXPECT().Do(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, req arm.Request) (*arm.Response, error) {
				assert.Equal(t, tt.want, req.Query.Get("$filter"))
				return page(t, ""), nil
			})

			cmd := NewCmdList(f.Ctx)
			cmd.SetArgs([]string{"--tag", tt.tag})
			require.NoError(t, cmd.Execute())
			assert.JSONEq(t, "[]", f.Out.String())
		})
	}
}

func TestListError(t *testing.T) {
	f := test.NewCmdFixture(t, "")
	f.ExpectARM("")
	f.ARM.EXPECT().Do(gomock.Any(), gomock.Any()).Return(nil, &arm.ResponseError{StatusCode: http.StatusForbidden, Code: "AuthorizationFailed", Message: "denied"})

	err := listRun(f.Ctx, &listOptions{})
	var cloudErr *util.CloudError
	require.ErrorAs(t, err, &cloudErr)
	assert.Equal(t, http.StatusForbidden, cloudErr.StatusCode)
}
