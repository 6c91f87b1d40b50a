package prediction

import (
	"sync"

	"github.com/kilianp07/taxifare/core/factory"
	"github.com/kilianp07/taxifare/core/features"
)

// ConstantModel returns the same fare for every row.
type ConstantModel struct {
	Fare float64 `json:"fare"`
}

// Predict returns Fare once per row.
func (m ConstantModel) Predict(rows []features.Record) ([]float64, error) {
	out := make([]float64, len(rows))
	for i := range out {
		out[i] = m.Fare
	}
	return out, nil
}

// MockModel returns a configured fare or error and records its inputs.
type MockModel struct {
	Fare float64
	Err  error

	mu   sync.Mutex
	rows [][]features.Record
}

// Predict records the rows and returns Fare for each of them, or Err.
func (m *MockModel) Predict(rows []features.Record) ([]float64, error) {
	m.mu.Lock()
	cp := make([]features.Record, len(rows))
	copy(cp, rows)
	m.rows = append(m.rows, cp)
	m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	return ConstantModel{Fare: m.Fare}.Predict(rows)
}

// Calls returns the number of Predict invocations.
func (m *MockModel) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rows)
}

// LastRows returns the rows passed to the latest Predict call.
func (m *MockModel) LastRows() []features.Record {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.rows) == 0 {
		return nil
	}
	return m.rows[len(m.rows)-1]
}

func init() {
	models.MustRegister("constant", func(conf map[string]any) (FareModel, error) {
		var c ConstantModel
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		return c, nil
	})
}
