// Package config builds device graphs from YAML network descriptions. It
// is the configuration-loader collaborator of the engine: the engine never
// parses files itself, and everything the loader produces is handed over as
// explicit structs.
//
// Run-wide defaults that are not in the file can come from the process
// environment (HYDRONET_STORAGE_DIR, HYDRONET_DEFAULT_MODE), optionally
// populated from a .env file via LoadDotEnv.
package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/hydrosim/hydronet/models"
	"github.com/hydrosim/hydronet/series"
	"github.com/hydrosim/hydronet/sim"
)

// Environment variables consulted for defaults the network file leaves out.
const (
	EnvStorageDir  = "HYDRONET_STORAGE_DIR"
	EnvDefaultMode = "HYDRONET_DEFAULT_MODE"
)

// LoadDotEnv populates the process environment from a .env file in the
// working directory, if one exists.
func LoadDotEnv() {
	_ = godotenv.Load()
}

// A NetworkFile mirrors the YAML layout of a network description. Routers
// and producers are sequences, so declaration order is the file order and
// graph assembly is deterministic for identical files.
type NetworkFile struct {
	Horizon   int               `yaml:"horizon"`
	Storage   StorageSection    `yaml:"storage"`
	Routers   []RouterSection   `yaml:"routers"`
	Producers []ProducerSection `yaml:"producers"`
}

// StorageSection selects run-wide storage defaults.
type StorageSection struct {
	DefaultMode string `yaml:"default_mode"`
	Dir         string `yaml:"dir"`
}

// RouterSection declares one router.
type RouterSection struct {
	Name     string `yaml:"name"`
	Kind     string `yaml:"kind"`
	Observed bool   `yaml:"observed"`

	// Observations holds an inline external series for an observed router.
	Observations []float64 `yaml:"observations"`

	// ObservationsFile points at a paged series file holding the external
	// series of an observed router.
	ObservationsFile string `yaml:"observations_file"`
}

// ProducerSection declares one producer with its process model.
type ProducerSection struct {
	Name       string             `yaml:"name"`
	Model      string             `yaml:"model"`
	Parameters map[string]float64 `yaml:"parameters"`

	Inlets    []string `yaml:"inlets"`
	Outlets   []string `yaml:"outlets"`
	Receivers []string `yaml:"receivers"`
	Senders   []string `yaml:"senders"`
}

// A Network is a loaded, fully wired graph plus the run configuration the
// file and environment requested.
type Network struct {
	Graph     *sim.DeviceGraph
	RunConfig sim.RunConfig

	observations map[*sim.Router][]float64
}

// WriteObservations writes the inline observation series of the file into
// the observed routers' series. Call it after the runner's Start has
// activated storage and before the first step.
func (n *Network) WriteObservations() error {
	for r, values := range n.observations {
		for step, value := range values {
			if err := r.Obs().Write(step, []float64{value}); err != nil {
				return fmt.Errorf("writing observations of router %s: %w",
					r.Name(), err)
			}
		}
	}

	return nil
}

// A ModelFactory builds a process model from its parameter map.
type ModelFactory func(name string, params map[string]float64) (
	sim.ProcessModel, error)

// A Loader parses network files. Model kinds are resolved through an
// explicit factory registry preloaded with the built-in models.
type Loader struct {
	factories map[string]ModelFactory
}

// NewLoader creates a Loader knowing the built-in model kinds.
func NewLoader() *Loader {
	l := &Loader{factories: make(map[string]ModelFactory)}

	l.RegisterModel("constant_inflow",
		func(name string, params map[string]float64) (sim.ProcessModel, error) {
			return models.NewConstantInflow(name, params["rate"]), nil
		})
	l.RegisterModel("linear_reservoir",
		func(name string, params map[string]float64) (sim.ProcessModel, error) {
			k, ok := params["k"]
			if !ok {
				return nil, fmt.Errorf("linear_reservoir requires parameter k")
			}
			return models.NewLinearReservoir(name, k), nil
		})
	l.RegisterModel("channel",
		func(name string, params map[string]float64) (sim.ProcessModel, error) {
			return models.NewChannel(name), nil
		})
	l.RegisterModel("diversion",
		func(name string, params map[string]float64) (sim.ProcessModel, error) {
			return models.NewDiversion(name, params["fraction"]), nil
		})

	return l
}

// RegisterModel adds a model kind to the loader.
func (l *Loader) RegisterModel(kind string, factory ModelFactory) {
	l.factories[kind] = factory
}

// Load reads and parses a network file.
func (l *Loader) Load(path string) (*Network, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading network file: %w", err)
	}

	return l.Parse(data)
}

// Parse builds a Network from YAML content.
func (l *Loader) Parse(data []byte) (*Network, error) {
	var file NetworkFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing network file: %w", err)
	}

	runConfig, err := buildRunConfig(file)
	if err != nil {
		return nil, err
	}

	network := &Network{
		Graph:        sim.NewDeviceGraph(),
		RunConfig:    runConfig,
		observations: make(map[*sim.Router][]float64),
	}

	if err := l.buildRouters(network, file); err != nil {
		return nil, err
	}
	if err := l.buildProducers(network, file); err != nil {
		return nil, err
	}

	return network, nil
}

func buildRunConfig(file NetworkFile) (sim.RunConfig, error) {
	cfg := sim.RunConfig{Horizon: file.Horizon}

	if file.Horizon <= 0 {
		return cfg, fmt.Errorf("horizon must be positive, got %d", file.Horizon)
	}

	modeName := file.Storage.DefaultMode
	if modeName == "" {
		modeName = os.Getenv(EnvDefaultMode)
	}

	switch modeName {
	case "", "resident":
		cfg.DefaultMode = series.Resident
	case "paged":
		cfg.DefaultMode = series.Paged
	default:
		return cfg, fmt.Errorf("unknown storage mode %q", modeName)
	}

	cfg.StorageDir = file.Storage.Dir
	if cfg.StorageDir == "" {
		cfg.StorageDir = os.Getenv(EnvStorageDir)
	}

	return cfg, nil
}

func (l *Loader) buildRouters(network *Network, file NetworkFile) error {
	for _, section := range file.Routers {
		r := network.Graph.AddRouter(
			section.Name, sim.QuantityKind(section.Kind))

		if !section.Observed {
			if len(section.Observations) > 0 || section.ObservationsFile != "" {
				return fmt.Errorf(
					"router %s declares observations but is not observed",
					section.Name)
			}
			continue
		}

		r.SetObserved(true)

		switch {
		case len(section.Observations) > 0:
			if len(section.Observations) != file.Horizon {
				return fmt.Errorf(
					"router %s: %d observations for horizon %d",
					section.Name, len(section.Observations), file.Horizon)
			}
			network.observations[r] = section.Observations
		case section.ObservationsFile != "":
			r.Obs().SetPath(section.ObservationsFile)
			r.Obs().SetPreferredMode(series.Paged)
		default:
			return fmt.Errorf("observed router %s has no observation source",
				section.Name)
		}
	}

	return nil
}

func (l *Loader) buildProducers(network *Network, file NetworkFile) error {
	for _, section := range file.Producers {
		factory, known := l.factories[section.Model]
		if !known {
			return fmt.Errorf("producer %s: unknown model kind %q",
				section.Name, section.Model)
		}

		model, err := factory(section.Name, section.Parameters)
		if err != nil {
			return fmt.Errorf("producer %s: %w", section.Name, err)
		}

		p := network.Graph.AddProducer(section.Name, model)

		roles := []struct {
			role  sim.Role
			names []string
		}{
			{sim.RoleInlet, section.Inlets},
			{sim.RoleOutlet, section.Outlets},
			{sim.RoleReceiver, section.Receivers},
			{sim.RoleSender, section.Senders},
		}

		for _, binding := range roles {
			for _, routerName := range binding.names {
				r := network.Graph.RouterByName(routerName)
				if r == nil {
					return fmt.Errorf("producer %s: unknown router %q on %s",
						section.Name, routerName, binding.role)
				}

				if err := network.Graph.Connect(p, r, binding.role); err != nil {
					return fmt.Errorf("connecting producer %s: %w",
						section.Name, err)
				}
			}
		}
	}

	return nil
}
