// Package factory provides a small generic registry used to instantiate
// pluggable modules (fare models, metrics sinks) from configuration. Modules
// are defined by a type string and a map of raw settings. Factories decode
// the settings into typed structs and return the concrete implementation.
//
// Example usage:
//
//	reg := factory.NewRegistry[prediction.FareModel]()
//	reg.Register("constant", func(conf map[string]any) (prediction.FareModel, error) {
//	    var c struct{ Fare float64 `json:"fare"` }
//	    if err := factory.Decode(conf, &c); err != nil {
//	        return nil, err
//	    }
//	    return prediction.ConstantModel{Fare: c.Fare}, nil
//	})
//	m, err := reg.Create(factory.ModuleConfig{Type: "constant", Conf: map[string]any{"fare": 12.5}})
package factory
