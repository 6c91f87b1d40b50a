package prediction

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/kilianp07/taxifare/core/factory"
	"github.com/kilianp07/taxifare/core/features"
)

// LinearModel is an ordinary least squares regression over the feature
// vector: fare = intercept + coefficients · features.
type LinearModel struct {
	intercept float64
	coef      *mat.VecDense
}

// LinearConfig is the artifact configuration of a linear model.
type LinearConfig struct {
	Intercept    float64   `json:"intercept"`
	Coefficients []float64 `json:"coefficients"`
}

// NewLinearModel builds a model with one coefficient per schema column.
func NewLinearModel(intercept float64, coefficients []float64) (*LinearModel, error) {
	if len(coefficients) != features.Width {
		return nil, fmt.Errorf("%w: %d coefficients for %d columns", features.ErrSchemaMismatch, len(coefficients), features.Width)
	}
	cp := make([]float64, len(coefficients))
	copy(cp, coefficients)
	return &LinearModel{intercept: intercept, coef: mat.NewVecDense(len(cp), cp)}, nil
}

// Predict evaluates the regression for every row.
func (m *LinearModel) Predict(rows []features.Record) ([]float64, error) {
	if len(rows) == 0 {
		return nil, &InferenceError{Model: "linear", Err: errors.New("no input rows")}
	}
	data := make([]float64, 0, len(rows)*features.Width)
	for i, r := range rows {
		vals := r.Values()
		for j, v := range vals {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, &InferenceError{Model: "linear", Err: fmt.Errorf("row %d: %s is not a finite number", i, features.Names[j])}
			}
		}
		data = append(data, vals...)
	}
	x := mat.NewDense(len(rows), features.Width, data)
	var y mat.VecDense
	y.MulVec(x, m.coef)
	out := make([]float64, len(rows))
	for i := range out {
		out[i] = y.AtVec(i) + m.intercept
	}
	return out, nil
}

func init() {
	models.MustRegister("linear", func(conf map[string]any) (FareModel, error) {
		var c LinearConfig
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		return NewLinearModel(c.Intercept, c.Coefficients)
	})
}
