package docker

import (
	"context"
	"errors"
	"testing"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/network"
	"github.com/docker/docker/api/types/volume"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imamik/erpdeploy/internal/render"
	testutil "github.com/imamik/erpdeploy/internal/testing"
)

const descriptorPath = "/opt/odoo/docker-compose.yml"

type notFoundError struct{ what string }

func (e notFoundError) Error() string { return "Error: No such " + e.what }
func (notFoundError) NotFound()       {}

// fakeEngine keeps networks, volumes and containers in memory.
type fakeEngine struct {
	networks   map[string]bool
	volumes    map[string]bool
	containers []container.Summary
	listOpts   container.ListOptions
	err        error
	closed     bool
}

func newFakeEngine() *fakeEngine {
	return &fakeEngine{networks: map[string]bool{}, volumes: map[string]bool{}}
}

func (f *fakeEngine) NetworkInspect(_ context.Context, id string, _ network.InspectOptions) (network.Inspect, error) {
	if f.err != nil {
		return network.Inspect{}, f.err
	}
	if !f.networks[id] {
		return network.Inspect{}, notFoundError{"network"}
	}
	return network.Inspect{Name: id}, nil
}

func (f *fakeEngine) NetworkCreate(_ context.Context, name string, _ network.CreateOptions) (network.CreateResponse, error) {
	if f.err != nil {
		return network.CreateResponse{}, f.err
	}
	if f.networks[name] {
		return network.CreateResponse{}, errors.New("network with name " + name + " already exists")
	}
	f.networks[name] = true
	return network.CreateResponse{ID: name}, nil
}

func (f *fakeEngine) VolumeInspect(_ context.Context, id string) (volume.Volume, error) {
	if f.err != nil {
		return volume.Volume{}, f.err
	}
	if !f.volumes[id] {
		return volume.Volume{}, notFoundError{"volume"}
	}
	return volume.Volume{Name: id}, nil
}

func (f *fakeEngine) VolumeCreate(_ context.Context, opts volume.CreateOptions) (volume.Volume, error) {
	if f.err != nil {
		return volume.Volume{}, f.err
	}
	f.volumes[opts.Name] = true
	return volume.Volume{Name: opts.Name}, nil
}

func (f *fakeEngine) ContainerList(_ context.Context, opts container.ListOptions) ([]container.Summary, error) {
	f.listOpts = opts
	if f.err != nil {
		return nil, f.err
	}
	return f.containers, nil
}

func (f *fakeEngine) Close() error {
	f.closed = true
	return nil
}

func runningContainer(service string) container.Summary {
	return container.Summary{
		State: "running",
		Labels: map[string]string{
			projectLabel: "odoo",
			serviceLabel: service,
		},
	}
}

// runnerWithDescriptor returns a fake runner holding a rendered descriptor.
func runnerWithDescriptor(t *testing.T) *testutil.FakeRunner {
	t.Helper()
	content, err := render.StackDescriptor(render.StackParams{
		Project:         "odoo",
		AppImage:        "odoo:17.0",
		DBImage:         "postgres:16",
		AppPort:         8069,
		LongpollingPort: 8072,
		DBName:          "postgres",
		DBUser:          "odoo",
		DBPassword:      "q",
		Network:         "odoo-net",
		WebVolume:       "odoo-web-data",
		DBVolume:        "odoo-db-data",
		ConfigDir:       "/opt/odoo/config",
		AddonsDir:       "/opt/odoo/addons",
	})
	require.NoError(t, err)
	r := testutil.NewFakeRunner()
	r.Files[descriptorPath] = content
	return r
}

func TestSDKOrchestrator_Network(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	engine := newFakeEngine()
	o := NewSDKOrchestrator(engine, testutil.NewFakeRunner())

	ok, err := o.NetworkExists(ctx, "odoo-net")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, o.CreateNetwork(ctx, "odoo-net"))
	ok, err = o.NetworkExists(ctx, "odoo-net")
	require.NoError(t, err)
	assert.True(t, ok)

	// second create is tolerated
	require.NoError(t, o.CreateNetwork(ctx, "odoo-net"))
}

func TestSDKOrchestrator_Volume(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	engine := newFakeEngine()
	o := NewSDKOrchestrator(engine, testutil.NewFakeRunner())

	ok, err := o.VolumeExists(ctx, "odoo-db-data")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, o.CreateVolume(ctx, "odoo-db-data"))
	ok, err = o.VolumeExists(ctx, "odoo-db-data")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestSDKOrchestrator_EngineErrors(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	engine := newFakeEngine()
	engine.err = errors.New("permission denied while trying to connect to the Docker daemon socket")
	o := NewSDKOrchestrator(engine, runnerWithDescriptor(t))

	_, err := o.NetworkExists(ctx, "odoo-net")
	var dockerErr *DockerError
	require.ErrorAs(t, err, &dockerErr)
	assert.Equal(t, "network", dockerErr.Entity)

	_, err = o.VolumeExists(ctx, "odoo-db-data")
	require.Error(t, err)
	require.Error(t, o.CreateNetwork(ctx, "odoo-net"))
	require.Error(t, o.CreateVolume(ctx, "odoo-db-data"))

	_, err = o.StackRunning(ctx, "odoo", descriptorPath)
	require.Error(t, err)
}

func TestSDKOrchestrator_StackRunning(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		containers []container.Summary
		want       bool
	}{
		{"nothing running", nil, false},
		{"db only", []container.Summary{runningContainer("db")}, false},
		{"all running", []container.Summary{runningContainer("db"), runningContainer("web")}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			engine := newFakeEngine()
			engine.containers = tt.containers
			o := NewSDKOrchestrator(engine, runnerWithDescriptor(t))

			got, err := o.StackRunning(context.Background(), "odoo", descriptorPath)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, []string{"com.docker.compose.project=odoo"}, engine.listOpts.Filters.Get("label"))
		})
	}
}

func TestSDKOrchestrator_StackRunning_MissingDescriptor(t *testing.T) {
	t.Parallel()
	o := NewSDKOrchestrator(newFakeEngine(), testutil.NewFakeRunner())

	_, err := o.StackRunning(context.Background(), "odoo", descriptorPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read descriptor")
}

func TestSDKOrchestrator_ApplyStack(t *testing.T) {
	t.Parallel()
	r := testutil.NewFakeRunner()
	engine := newFakeEngine()
	o := NewSDKOrchestrator(engine, r)

	require.NoError(t, o.ApplyStack(context.Background(), "odoo", descriptorPath))
	assert.Equal(t, []string{"docker compose -f /opt/odoo/docker-compose.yml -p odoo up -d --remove-orphans"}, r.Calls())

	require.NoError(t, o.Close())
	assert.True(t, engine.closed)
}

func TestCLIOrchestrator_Inspect(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	r := testutil.NewFakeRunner()
	ok, err := NewCLIOrchestrator(r).NetworkExists(ctx, "odoo-net")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []string{"docker network inspect --format '{{.Name}}' odoo-net"}, r.Calls())

	r = testutil.NewFakeRunner().Fail("docker volume inspect", 1, "Error response from daemon: get odoo-db-data: no such volume")
	ok, err = NewCLIOrchestrator(r).VolumeExists(ctx, "odoo-db-data")
	require.NoError(t, err)
	assert.False(t, ok)

	r = testutil.NewFakeRunner().Fail("docker network inspect", 1, "Cannot connect to the Docker daemon at unix:///var/run/docker.sock")
	_, err = NewCLIOrchestrator(r).NetworkExists(ctx, "odoo-net")
	require.Error(t, err)
}

func TestCLIOrchestrator_Create(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	r := testutil.NewFakeRunner()
	o := NewCLIOrchestrator(r)
	require.NoError(t, o.CreateNetwork(ctx, "odoo-net"))
	require.NoError(t, o.CreateVolume(ctx, "odoo-web-data"))
	assert.Equal(t, []string{
		"docker network create --driver bridge --label io.erpdeploy.managed=true odoo-net",
		"docker volume create --label io.erpdeploy.managed=true odoo-web-data",
	}, r.Calls())

	r = testutil.NewFakeRunner().Fail("docker network create", 1, "Error response from daemon: network with name odoo-net already exists")
	require.NoError(t, NewCLIOrchestrator(r).CreateNetwork(ctx, "odoo-net"))

	r = testutil.NewFakeRunner().Fail("docker volume create", 1, "permission denied")
	require.Error(t, NewCLIOrchestrator(r).CreateVolume(ctx, "odoo-web-data"))
}

func TestCLIOrchestrator_StackRunning(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	r := runnerWithDescriptor(t).On("docker compose", "db\nweb\n", nil)
	ok, err := NewCLIOrchestrator(r).StackRunning(ctx, "odoo", descriptorPath)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, r.Ran("docker compose -f /opt/odoo/docker-compose.yml -p odoo ps --services --status running"))

	r = runnerWithDescriptor(t).On("docker compose", "db\n", nil)
	ok, err = NewCLIOrchestrator(r).StackRunning(ctx, "odoo", descriptorPath)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCLIOrchestrator_ApplyStackFailure(t *testing.T) {
	t.Parallel()
	r := testutil.NewFakeRunner().Fail("docker compose", 1, "pull access denied for odoo")

	err := NewCLIOrchestrator(r).ApplyStack(context.Background(), "odoo", descriptorPath)
	var dockerErr *DockerError
	require.ErrorAs(t, err, &dockerErr)
	assert.Equal(t, "odoo", dockerErr.ID)
	assert.Contains(t, err.Error(), "compose up failed")
}

func TestAllRunning(t *testing.T) {
	t.Parallel()
	assert.False(t, allRunning(nil, map[string]bool{"db": true}))
	assert.True(t, allRunning([]string{"db"}, map[string]bool{"db": true, "other": true}))
	assert.False(t, allRunning([]string{"db", "web"}, map[string]bool{"db": true}))
}

func TestRestartStack(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	r := testutil.NewFakeRunner()
	require.NoError(t, NewCLIOrchestrator(r).RestartStack(ctx, "odoo", descriptorPath))
	require.NoError(t, NewSDKOrchestrator(newFakeEngine(), r).RestartStack(ctx, "odoo", descriptorPath))
	assert.Equal(t, []string{
		"docker compose -f /opt/odoo/docker-compose.yml -p odoo restart",
		"docker compose -f /opt/odoo/docker-compose.yml -p odoo restart",
	}, r.Calls())
}
