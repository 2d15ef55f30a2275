package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hydrosim/hydronet/series"
	"github.com/hydrosim/hydronet/sim"
)

const basinYAML = `
horizon: 3
storage:
  default_mode: resident
routers:
  - name: Spring
    kind: discharge
    observed: true
    observations: [2.0, 4.0, 6.0]
  - name: Mouth
    kind: discharge
producers:
  - name: Lake
    model: linear_reservoir
    parameters:
      k: 0.5
    inlets: [Spring]
    outlets: [Mouth]
`

func TestParseBuildsGraph(t *testing.T) {
	network, err := NewLoader().Parse([]byte(basinYAML))
	require.NoError(t, err)

	assert.Equal(t, 3, network.RunConfig.Horizon)
	assert.Equal(t, series.Resident, network.RunConfig.DefaultMode)

	spring := network.Graph.RouterByName("Spring")
	require.NotNil(t, spring)
	assert.True(t, spring.IsObserved())
	assert.Equal(t, sim.QuantityKind("discharge"), spring.Kind())

	lake := network.Graph.ProducerByName("Lake")
	require.NotNil(t, lake)
	assert.Equal(t, []*sim.Router{spring}, lake.Peers(sim.RoleInlet))
	assert.Len(t, lake.Peers(sim.RoleOutlet), 1)
}

func TestParsedNetworkRuns(t *testing.T) {
	network, err := NewLoader().Parse([]byte(basinYAML))
	require.NoError(t, err)

	runner := sim.NewStepRunner(network.Graph)
	require.NoError(t, runner.Start(network.RunConfig))
	require.NoError(t, network.WriteObservations())

	for i := 0; i < 3; i++ {
		require.NoError(t, runner.Step(i))
	}

	// Spring carries the observed series, untouched by the reservoir.
	spring := network.Graph.RouterByName("Spring")
	got, err := spring.Sim().Read(1)
	require.NoError(t, err)
	assert.Equal(t, 4.0, got[0])

	// Mouth carries the reservoir outflow: k=0.5, inflow 2, 4, 6.
	mouth := network.Graph.RouterByName("Mouth")
	got, err = mouth.Sim().Read(2)
	require.NoError(t, err)
	assert.InDelta(t, 4.25, got[0], 1e-12)

	require.NoError(t, runner.Finish())
}

func TestLoadReadsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "basin.yaml")
	require.NoError(t, os.WriteFile(path, []byte(basinYAML), 0644))

	network, err := NewLoader().Load(path)
	require.NoError(t, err)
	assert.NotNil(t, network.Graph.RouterByName("Mouth"))
}

func TestObservationsFileSetsPagedPath(t *testing.T) {
	yaml := `
horizon: 2
routers:
  - name: Gauge
    kind: discharge
    observed: true
    observations_file: gauge.bin
`
	network, err := NewLoader().Parse([]byte(yaml))
	require.NoError(t, err)

	gauge := network.Graph.RouterByName("Gauge")
	mode, ok := gauge.Obs().PreferredMode()
	require.True(t, ok)
	assert.Equal(t, series.Paged, mode)
}

func TestRejectsBadInput(t *testing.T) {
	cases := map[string]string{
		"zero horizon": `
horizon: 0
`,
		"unknown mode": `
horizon: 2
storage:
  default_mode: spinning_rust
`,
		"unknown model": `
horizon: 2
producers:
  - name: P
    model: warp_drive
`,
		"unknown router": `
horizon: 2
producers:
  - name: P
    model: channel
    inlets: [Nowhere]
`,
		"observed without source": `
horizon: 2
routers:
  - name: R
    kind: discharge
    observed: true
`,
		"observations on unobserved router": `
horizon: 2
routers:
  - name: R
    kind: discharge
    observations: [1.0, 2.0]
`,
		"too few observations": `
horizon: 3
routers:
  - name: R
    kind: discharge
    observed: true
    observations: [1.0]
`,
		"too many observations": `
horizon: 2
routers:
  - name: R
    kind: discharge
    observed: true
    observations: [1.0, 2.0, 3.0]
`,
		"reservoir without k": `
horizon: 2
producers:
  - name: P
    model: linear_reservoir
`,
		"second inlet on channel": `
horizon: 2
routers:
  - name: A
    kind: discharge
  - name: B
    kind: discharge
  - name: C
    kind: discharge
producers:
  - name: P
    model: channel
    inlets: [A, B]
    outlets: [C]
`,
	}

	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := NewLoader().Parse([]byte(content))
			assert.Error(t, err)
		})
	}
}

func TestEnvDefaultsFillGaps(t *testing.T) {
	t.Setenv(EnvStorageDir, t.TempDir())
	t.Setenv(EnvDefaultMode, "paged")

	yaml := `
horizon: 2
routers:
  - name: R
    kind: discharge
`
	network, err := NewLoader().Parse([]byte(yaml))
	require.NoError(t, err)

	assert.Equal(t, series.Paged, network.RunConfig.DefaultMode)
	assert.NotEmpty(t, network.RunConfig.StorageDir)
}

func TestCustomModelFactory(t *testing.T) {
	loader := NewLoader()
	loader.RegisterModel("passthrough",
		func(name string, params map[string]float64) (sim.ProcessModel, error) {
			return nil, os.ErrInvalid
		})

	yaml := `
horizon: 2
producers:
  - name: P
    model: passthrough
`
	_, err := loader.Parse([]byte(yaml))
	assert.ErrorIs(t, err, os.ErrInvalid)
}
