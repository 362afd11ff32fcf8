package entities

// ServiceQuote is the request-scoped, dynamically priced view of one
// service offering. Quotes are recomputed on every search request and
// are never written back to the lab record.
type ServiceQuote struct {
	ServiceID      string   `json:"service_id"`
	BasePrice      float64  `json:"price"`
	PredMultiplier float64  `json:"pred_multiplier"`
	DynamicPrice   float64  `json:"dynamic_price"`
	TimelineTAT    *float64 `json:"timeline_tat,omitempty"`
}

// LabQuote pairs a matched lab with quotes for every service it offers,
// not only the one searched for. The breadth is intentional: a caller
// comparing labs sees each lab's full dynamically priced catalog.
type LabQuote struct {
	ID           string         `json:"id"`
	LabType      int            `json:"type"`
	Capacity     int            `json:"capacity"`
	Availability float64        `json:"availability"`
	QueueSize    int            `json:"queue_size"`
	Services     []ServiceQuote `json:"services"`
}
