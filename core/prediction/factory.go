package prediction

import "github.com/kilianp07/fleetpool/core/factory"

var registry = factory.NewRegistry[Predictor]()

func init() {
	registry.MustRegister("none", func(map[string]any) (Predictor, error) { return Unavailable{}, nil })
	registry.MustRegister("mock", func(conf map[string]any) (Predictor, error) {
		var m Mock
		if err := factory.Decode(conf, &m); err != nil {
			return nil, err
		}
		return m, nil
	})
	registry.MustRegister("linear", func(conf map[string]any) (Predictor, error) {
		var c struct {
			Path string `json:"path"`
		}
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		return LoadLinear(c.Path)
	})
}

// RegisterPredictor adds a predictor factory identified by name.
func RegisterPredictor(name string, f factory.Factory[Predictor]) error {
	return registry.Register(name, f)
}

// NewPredictor creates the configured predictor. An empty type yields
// Unavailable.
func NewPredictor(cfg factory.ModuleConfig) (Predictor, error) {
	if cfg.Type == "" {
		return Unavailable{}, nil
	}
	return registry.Create(cfg)
}
