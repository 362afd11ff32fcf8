package prediction

import (
	"encoding/json"
	"fmt"
)

// Regressor is a ready-to-use regression model. Implementations must be
// safe for unlimited concurrent use after construction.
type Regressor interface {
	// Predict evaluates the model on one feature vector
	Predict(features []float64) (float64, error)
}

// LinearRegressor is a linear model deserialized from a JSON artifact.
type LinearRegressor struct {
	ModelType    string    `json:"model_type"`
	Intercept    float64   `json:"intercept"`
	Coefficients []float64 `json:"coefficients"`
}

// Predict returns intercept + coefficients · features
func (m *LinearRegressor) Predict(features []float64) (float64, error) {
	if len(features) != len(m.Coefficients) {
		return 0, fmt.Errorf("feature vector has %d values, model expects %d", len(features), len(m.Coefficients))
	}

	out := m.Intercept
	for i, f := range features {
		out += m.Coefficients[i] * f
	}
	return out, nil
}

// DecodeRegressor deserializes a model artifact into a Regressor.
// Artifacts are JSON documents carrying a model_type discriminator;
// only linear models are supported.
func DecodeRegressor(data []byte) (Regressor, error) {
	var model LinearRegressor
	if err := json.Unmarshal(data, &model); err != nil {
		return nil, fmt.Errorf("malformed model artifact: %w", err)
	}

	if model.ModelType != "" && model.ModelType != "linear" {
		return nil, fmt.Errorf("unsupported model type %q", model.ModelType)
	}
	if len(model.Coefficients) == 0 {
		return nil, fmt.Errorf("model artifact has no coefficients")
	}

	return &model, nil
}
