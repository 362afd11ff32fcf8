// Package prediction implements the two-stage dynamic pricing and
// turnaround-time pipeline: cyclical time-feature encoding, regression
// artifact decoding, and a process-lifetime model registry.
package prediction

import (
	"math"
	"strconv"
	"time"

	"github.com/SooYeonAhn1/gcp-smart-dental-v2-lab/internal/domain/entities"
	apperrors "github.com/SooYeonAhn1/gcp-smart-dental-v2-lab/pkg/errors"
)

const (
	hoursPerDay = 24
	daysPerWeek = 7
)

// PricingFeatures encodes a (lab, service, time) triple into the fixed
// feature order the pricing model was trained on:
//
//	lab_type, service_id, base_price, hour, day_of_week,
//	hour_sin, hour_cos, dow_sin, dow_cos
//
// Hour and weekday are additionally sin/cos encoded so the model sees
// hour 23 and hour 0 as neighbours rather than opposite extremes.
func PricingFeatures(labType int, serviceID string, offering entities.ServiceOffering, at time.Time) ([]float64, error) {
	if offering.Price == nil {
		return nil, apperrors.NewValidationError("service " + serviceID + " has no usable base price")
	}

	hour := float64(at.Hour())
	dow := float64(at.Weekday())
	hourSin, hourCos := cyclical(hour, hoursPerDay)
	dowSin, dowCos := cyclical(dow, daysPerWeek)

	return []float64{
		float64(labType),
		numericServiceID(serviceID),
		*offering.Price,
		hour,
		dow,
		hourSin,
		hourCos,
		dowSin,
		dowCos,
	}, nil
}

// TimelineFeatures encodes the second-stage feature vector. It consumes
// the dynamic price already computed by the pricing stage; callers must
// run pricing for a service before asking for its timeline.
func TimelineFeatures(labType int, serviceID string, offering entities.ServiceOffering, dynamicPrice float64, at time.Time) ([]float64, error) {
	if offering.Price == nil {
		return nil, apperrors.NewValidationError("service " + serviceID + " has no usable base price")
	}

	procedureType := numericServiceID(serviceID)
	if offering.ProcedureType != nil {
		procedureType = *offering.ProcedureType
	}

	hourSin, hourCos := cyclical(float64(at.Hour()), hoursPerDay)
	dowSin, dowCos := cyclical(float64(at.Weekday()), daysPerWeek)

	return []float64{
		float64(labType),
		procedureType,
		*offering.Price,
		dynamicPrice,
		hourSin,
		hourCos,
		dowSin,
		dowCos,
	}, nil
}

// cyclical maps a value on a cycle of the given period onto the unit
// circle.
func cyclical(value, period float64) (sin, cos float64) {
	angle := 2 * math.Pi * value / period
	return math.Sin(angle), math.Cos(angle)
}

// numericServiceID parses the string service key used by the catalog
// into the numeric identifier the models expect. Non-numeric keys fall
// back to zero.
func numericServiceID(serviceID string) float64 {
	n, err := strconv.ParseFloat(serviceID, 64)
	if err != nil {
		return 0
	}
	return n
}
