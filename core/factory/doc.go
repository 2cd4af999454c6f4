// Package factory instantiates pluggable modules (predictors, report sinks)
// from configuration. A module is declared by a type name and a map of raw
// settings; the registered factory decodes the settings into its own typed
// struct using json tags.
//
//	reg := factory.NewRegistry[prediction.Predictor]()
//	reg.Register("linear", func(conf map[string]any) (prediction.Predictor, error) {
//	    var c struct{ Path string `json:"path"` }
//	    if err := factory.Decode(conf, &c); err != nil {
//	        return nil, err
//	    }
//	    return prediction.LoadLinear(c.Path)
//	})
package factory
