package client

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	api "github.com/nexus-weaver/weaver-go/api/controlplane"
	mock "github.com/nexus-weaver/weaver-go/internal/controlplane"
	"github.com/nexus-weaver/weaver-go/pkg/controlplane"
	"github.com/nexus-weaver/weaver-go/pkg/credentials"
	"github.com/nexus-weaver/weaver-go/pkg/pipeline"
)

// capture records every request hitting the mock control plane.
type capture struct {
	lock     sync.Mutex
	requests []capturedRequest
}

type capturedRequest struct {
	method   string
	path     string
	rawQuery string
	body     []byte
}

func (c *capture) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		r.Body = io.NopCloser(bytes.NewReader(body))

		c.lock.Lock()
		c.requests = append(c.requests, capturedRequest{
			method:   r.Method,
			path:     r.URL.Path,
			rawQuery: r.URL.RawQuery,
			body:     body,
		})
		c.lock.Unlock()

		next.ServeHTTP(w, r)
	})
}

func (c *capture) last() capturedRequest {
	c.lock.Lock()
	defer c.lock.Unlock()

	return c.requests[len(c.requests)-1]
}

func newTestClient(t *testing.T) (*Client, *mock.Server, *capture) {
	t.Helper()

	mockServer := mock.NewServer("admin", "admin")

	captured := &capture{}
	router := mockServer.Router()
	router.Use(captured.middleware)

	httpServer := httptest.NewServer(router)
	t.Cleanup(httpServer.Close)

	serverURL, err := url.Parse(httpServer.URL)
	require.NoError(t, err)

	store := credentials.NewMemoryStore()
	require.NoError(t, store.Set(credentials.NewBasic("admin", "admin")))

	pipe := pipeline.New(serverURL.Host, store, pipeline.NopNotifier{})

	return NewControlPlaneClient(pipe), mockServer, captured
}

func checkoutRequest() *api.CreateDeploymentRequestBody {
	return &api.CreateDeploymentRequestBody{
		ApplicationName: "checkout",
		Version:         "1.0.0",
		Services: []*api.ServiceDefinition{
			{
				Name:     "api",
				Language: "python",
				Source:   "./",
				Limits: &api.ResourceLimits{
					Memory:    536870912,
					CpuShares: 1024,
					PidsLimit: 100,
				},
			},
		},
	}
}

func TestCreateThenGetDeployment(t *testing.T) {
	cpClient, _, captured := newTestClient(t)

	created, err := cpClient.CreateDeployment(checkoutRequest())
	require.NoError(t, err)
	require.NotEmpty(t, created.Id)

	request := captured.last()
	assert.Equal(t, http.MethodPost, request.method)
	assert.Equal(t, api.GetDeploymentsPath(), request.path)

	// The wire body is exactly the typed request, nothing added or dropped.
	expectedBody, err := json.Marshal(checkoutRequest())
	require.NoError(t, err)
	assert.JSONEq(t, string(expectedBody), string(request.body))

	assert.Equal(t, "checkout", created.ApplicationName)
	assert.Equal(t, api.DeploymentPending, created.Status)
	require.Len(t, created.Services, 1)
	assert.Equal(t, api.ServiceInit, created.Services[0].Status)
	assert.Empty(t, created.Services[0].ProcessId)

	fetched, err := cpClient.GetDeployment(created.Id)
	require.NoError(t, err)

	request = captured.last()
	assert.Equal(t, http.MethodGet, request.method)
	assert.Equal(t, api.GetDeploymentPath(created.Id), request.path)
	assert.Equal(t, created.Id, fetched.Id)
}

func TestListDeploymentsOmitsAbsentFilters(t *testing.T) {
	cpClient, _, captured := newTestClient(t)

	_, err := cpClient.ListDeployments(nil)
	require.NoError(t, err)

	// No filters means no parameters at all, not empty strings.
	assert.Empty(t, captured.last().rawQuery)

	_, err = cpClient.ListDeployments(&controlplane.DeploymentFilters{})
	require.NoError(t, err)
	assert.Empty(t, captured.last().rawQuery)
}

func TestListDeploymentsAppliesFilters(t *testing.T) {
	cpClient, mockServer, captured := newTestClient(t)

	created, err := cpClient.CreateDeployment(checkoutRequest())
	require.NoError(t, err)

	// PENDING -> DEPLOYING -> DEPLOYED
	mockServer.Advance()
	mockServer.Advance()

	deployments, err := cpClient.ListDeployments(&controlplane.DeploymentFilters{
		ApplicationId: created.ApplicationId,
		Status:        api.DeploymentDeployed,
	})
	require.NoError(t, err)

	query, err := url.ParseQuery(captured.last().rawQuery)
	require.NoError(t, err)
	assert.Equal(t, created.ApplicationId, query.Get("applicationId"))
	assert.Equal(t, "DEPLOYED", query.Get("status"))

	require.Len(t, deployments, 1)
	assert.Equal(t, created.Id, deployments[0].Id)

	none, err := cpClient.ListDeployments(&controlplane.DeploymentFilters{
		Status: api.DeploymentFailed,
	})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestStopDeployment(t *testing.T) {
	cpClient, mockServer, captured := newTestClient(t)

	created, err := cpClient.CreateDeployment(checkoutRequest())
	require.NoError(t, err)

	mockServer.Advance()
	mockServer.Advance()

	stopped, err := cpClient.StopDeployment(created.Id)
	require.NoError(t, err)

	request := captured.last()
	assert.Equal(t, http.MethodPost, request.method)
	assert.Equal(t, api.GetStopDeploymentPath(created.Id), request.path)

	// The post-stop status is whatever the server reports.
	assert.Equal(t, api.DeploymentTerminating, stopped.Status)
}

func TestStartDeployment(t *testing.T) {
	cpClient, mockServer, _ := newTestClient(t)

	created, err := cpClient.CreateDeployment(checkoutRequest())
	require.NoError(t, err)

	mockServer.Advance()
	mockServer.Advance()

	_, err = cpClient.StopDeployment(created.Id)
	require.NoError(t, err)
	mockServer.Advance()

	started, err := cpClient.StartDeployment(created.Id)
	require.NoError(t, err)

	assert.Equal(t, api.DeploymentDeploying, started.Status)

	for _, service := range started.Services {
		assert.Equal(t, api.ServiceStarting, service.Status)
		assert.NotEmpty(t, service.ProcessId)
		assert.NotEmpty(t, service.NodeId)
	}
}

func TestDeleteDeployment(t *testing.T) {
	cpClient, _, _ := newTestClient(t)

	created, err := cpClient.CreateDeployment(checkoutRequest())
	require.NoError(t, err)

	require.NoError(t, cpClient.DeleteDeployment(created.Id))

	_, err = cpClient.GetDeployment(created.Id)
	require.Error(t, err)
	assert.True(t, pipeline.IsValidation(err))
}

func TestErrorsPassThroughUnchanged(t *testing.T) {
	cpClient, _, _ := newTestClient(t)

	_, err := cpClient.GetDeployment("no-such-id")
	require.Error(t, err)

	var typed *pipeline.Error
	require.ErrorAs(t, err, &typed)
	assert.Equal(t, http.StatusNotFound, typed.Status)
	assert.Equal(t, "Deployment not found: no-such-id", typed.Message)
}

func TestApplications(t *testing.T) {
	cpClient, _, _ := newTestClient(t)

	created, err := cpClient.CreateDeployment(checkoutRequest())
	require.NoError(t, err)

	applications, err := cpClient.ListApplications()
	require.NoError(t, err)
	require.Len(t, applications, 1)
	assert.Equal(t, "checkout", applications[0].Name)
	assert.Equal(t, 1, applications[0].DeploymentCount)

	application, err := cpClient.GetApplication(created.ApplicationId)
	require.NoError(t, err)
	assert.Equal(t, created.ApplicationId, application.Id)

	require.NoError(t, cpClient.DeleteApplication(created.ApplicationId))

	// Deleting the application takes its deployments with it.
	deployments, err := cpClient.ListDeployments(nil)
	require.NoError(t, err)
	assert.Empty(t, deployments)
}
