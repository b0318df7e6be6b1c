package dashboard

import (
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	api "github.com/nexus-weaver/weaver-go/api/controlplane"
	mock "github.com/nexus-weaver/weaver-go/internal/controlplane"
	"github.com/nexus-weaver/weaver-go/pkg/controlplane"
	cpclient "github.com/nexus-weaver/weaver-go/pkg/controlplane/client"
	"github.com/nexus-weaver/weaver-go/pkg/credentials"
	"github.com/nexus-weaver/weaver-go/pkg/pipeline"
)

type recordingNotifier struct {
	lock      sync.Mutex
	successes []string
	errors    []string
}

func (n *recordingNotifier) Success(message string) {
	n.lock.Lock()
	n.successes = append(n.successes, message)
	n.lock.Unlock()
}

func (n *recordingNotifier) Error(message string) {
	n.lock.Lock()
	n.errors = append(n.errors, message)
	n.lock.Unlock()
}

func newMutationFixture(t *testing.T) (controlplane.Client, *mock.Server, *SnapshotCache, *recordingNotifier, *Coordinator) {
	t.Helper()

	mockServer := mock.NewServer("admin", "admin")

	httpServer := httptest.NewServer(mockServer.Router())
	t.Cleanup(httpServer.Close)

	serverURL, err := url.Parse(httpServer.URL)
	require.NoError(t, err)

	store := credentials.NewMemoryStore()
	require.NoError(t, store.Set(credentials.NewBasic("admin", "admin")))

	pipe := pipeline.New(serverURL.Host, store, pipeline.NopNotifier{})
	client := cpclient.NewControlPlaneClient(pipe)

	cache := NewSnapshotCache()
	notifier := &recordingNotifier{}

	return client, mockServer, cache, notifier, NewCoordinator(cache, notifier)
}

func createCheckout(t *testing.T, client controlplane.Client) *api.DeploymentDTO {
	t.Helper()

	created, err := client.CreateDeployment(&api.CreateDeploymentRequestBody{
		ApplicationName: "checkout",
		Version:         "1.0.0",
		Services: []*api.ServiceDefinition{
			{Name: "api", Language: "python", Source: "./"},
		},
	})
	require.NoError(t, err)

	return created
}

func TestCreateMutationReturnsNewIdentity(t *testing.T) {
	client, _, _, notifier, coordinator := newMutationFixture(t)

	result, err := coordinator.Run(CreateDeploymentMutation(client, &api.CreateDeploymentRequestBody{
		ApplicationName: "checkout",
		Version:         "1.0.0",
		Services: []*api.ServiceDefinition{
			{Name: "api", Language: "python", Source: "./"},
		},
	}))
	require.NoError(t, err)

	created, ok := result.(*api.DeploymentDTO)
	require.True(t, ok)
	assert.NotEmpty(t, created.Id)

	assert.Equal(t, []string{"Deployment created successfully"}, notifier.successes)
	assert.Empty(t, notifier.errors)
}

func TestSuccessfulMutationForcesNextRead(t *testing.T) {
	client, mockServer, cache, _, coordinator := newMutationFixture(t)

	deployment := createCheckout(t, client)
	mockServer.Advance()
	mockServer.Advance()

	key := DeploymentKey(deployment.Id)

	fetches := 0
	fetch := func() (interface{}, error) {
		fetches++

		return client.GetDeployment(deployment.Id)
	}

	// Prime the cache with the DEPLOYED view.
	_, err := cache.ReadThrough(key, fetch)
	require.NoError(t, err)
	require.Equal(t, 1, fetches)

	_, err = coordinator.Run(StopDeploymentMutation(client, deployment.Id))
	require.NoError(t, err)

	// The cached status is invalidated, not locally assumed TERMINATED.
	_, ok := cache.Get(key)
	assert.False(t, ok)

	payload, err := cache.ReadThrough(key, fetch)
	require.NoError(t, err)
	assert.Equal(t, 2, fetches)

	fetched := payload.(*api.DeploymentDTO)
	assert.Equal(t, api.DeploymentTerminating, fetched.Status)
}

func TestFailedMutationLeavesCacheUntouched(t *testing.T) {
	client, mockServer, cache, notifier, coordinator := newMutationFixture(t)

	deployment := createCheckout(t, client)
	mockServer.Advance()
	mockServer.Advance()

	key := DeploymentKey(deployment.Id)

	before, err := cache.ReadThrough(key, func() (interface{}, error) {
		return client.GetDeployment(deployment.Id)
	})
	require.NoError(t, err)

	// Target an id the server does not know.
	_, err = coordinator.Run(StopDeploymentMutation(client, "no-such-id"))
	require.Error(t, err)
	assert.True(t, pipeline.IsValidation(err))

	after, ok := cache.Get(key)
	require.True(t, ok)
	assert.Equal(t, before, after)

	assert.Equal(t, []string{"Failed to stop deployment"}, notifier.errors)
	assert.Empty(t, notifier.successes)
	assert.False(t, coordinator.Pending())
}

func TestMutationSweepsListViews(t *testing.T) {
	client, _, cache, _, coordinator := newMutationFixture(t)

	deployment := createCheckout(t, client)

	listKey := DeploymentListKey(nil)

	_, err := cache.ReadThrough(listKey, func() (interface{}, error) {
		return client.ListDeployments(nil)
	})
	require.NoError(t, err)

	_, err = coordinator.Run(DeleteDeploymentMutation(client, deployment.Id))
	require.NoError(t, err)

	_, ok := cache.Get(listKey)
	assert.False(t, ok)
}

func TestPendingFlagDuringMutation(t *testing.T) {
	cache := NewSnapshotCache()
	coordinator := NewCoordinator(cache, nil)

	release := make(chan struct{})
	observed := make(chan bool, 1)

	go func() {
		_, _ = coordinator.Run(Mutation{
			Action: func() (interface{}, error) {
				observed <- coordinator.Pending()
				<-release

				return nil, errors.New("boom")
			},
		})
	}()

	assert.True(t, <-observed)

	close(release)

	waitFor(t, func() bool { return !coordinator.Pending() })
}
