package show

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmeckel/az-cli/internal/azure/arm"
	"github.com/tmeckel/az-cli/internal/cmd/util"
	"github.com/tmeckel/az-cli/internal/test"
	"go.uber.org/mock/gomock"
)

func TestShow(t *testing.T) {
	f := test.NewCmdFixture(t, "")
	f.ExpectARM("")
	f.ARM.EXPECT().
		Do(gomock.Any(), arm.Request{Method: http.MethodGet, Path: "/subscriptions/{subscriptionId}/resourcegroups/rg1", APIVersion: arm.ResourcesAPIVersion}).
		Return(&arm.Response{StatusCode: http.StatusOK, Body: []byte(`{"id":"/subscriptions/sub-1/resourceGroups/rg1","name":"rg1","location":"westeurope","tags":{"env":"dev"}}`)}, nil)

	cmd := NewCmdShow(f.Ctx)
	cmd.SetArgs([]string{"-n", "rg1", "-o", "json"})
	require.NoError(t, cmd.Execute())

	var got arm.ResourceGroup
	require.NoError(t, json.Unmarshal(f.Out.Bytes(), &got))
	assert.Equal(t, "rg1", got.Name)
	assert.Equal(t, map[string]string{"env": "dev"}, got.Tags)
}

func TestShowDefaultGroup(t *testing.T) {
	f := test.NewCmdFixture(t, "defaults:\n  group: configured\n")
	f.ExpectARM("")
	f.ARM.EXPECT().Do(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ any, req arm.Request) (*arm.Response, error) {
			assert.Equal(t, "/subscriptions/{subscriptionId}/resourcegroups/configured", req.Path)
			return &arm.Response{StatusCode: http.StatusOK, Body: []byte(`{"name":"configured"}`)}, nil
		})

	cmd := NewCmdShow(f.Ctx)
	cmd.SetArgs([]string{"-o", "tsv", "--query", "name"})
	require.NoError(t, cmd.Execute())
	assert.Equal(t, "configured\n", f.Out.String())
}

func TestShowResourceGroupSynonym(t *testing.T) {
	f := test.NewCmdFixture(t, "")
	f.ExpectARM("")
	f.ARM.EXPECT().Do(gomock.Any(), gomock.Any()).
		Return(&arm.Response{StatusCode: http.StatusOK, Body: []byte(`{"name":"rg2"}`)}, nil)

	cmd := NewCmdShow(f.Ctx)
	cmd.SetArgs([]string{"-g", "rg2", "-o", "none"})
	require.NoError(t, cmd.Execute())
	assert.Empty(t, f.Out.String())
}

func TestShowNotFound(t *testing.T) {
	f := test.NewCmdFixture(t, "")
	f.ExpectARM("")
	f.ARM.EXPECT().Do(gomock.Any(), gomock.Any()).
		Return(nil, &arm.ResponseError{StatusCode: http.StatusNotFound, Code: "ResourceGroupNotFound", Message: "Resource group 'rg9' could not be found."})

	err := showRun(f.Ctx, &showOptions{name: "rg9"})
	var notFound *util.ResourceNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Contains(t, err.Error(), "(ResourceGroupNotFound) Resource group 'rg9' could not be found.")
}

func TestShowRequiresName(t *testing.T) {
	f := test.NewCmdFixture(t, "")

	err := showRun(f.Ctx, &showOptions{})
	var validation *util.ValidationError
	require.ErrorAs(t, err, &validation)
}
