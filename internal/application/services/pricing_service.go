package services

import (
	"context"
	"sort"
	"time"

	"github.com/SooYeonAhn1/gcp-smart-dental-v2-lab/internal/domain/entities"
	"github.com/SooYeonAhn1/gcp-smart-dental-v2-lab/internal/infrastructure/observability"
	"github.com/SooYeonAhn1/gcp-smart-dental-v2-lab/internal/prediction"
)

// PricingService attaches model-predicted dynamic prices to matched labs
type PricingService struct {
	matcher  *MatchingService
	registry *prediction.Registry
	now      func() time.Time
}

// NewPricingService creates a new pricing service
func NewPricingService(matcher *MatchingService, registry *prediction.Registry) *PricingService {
	return &PricingService{
		matcher:  matcher,
		registry: registry,
		now:      time.Now,
	}
}

// SearchPriced matches labs for (labType, serviceID) and returns each
// matched lab with a dynamic price quote for every service it offers,
// not only the one searched for. Services without a usable base price
// are skipped, never failing the batch. Quotes are request-scoped and
// never persisted.
func (s *PricingService) SearchPriced(ctx context.Context, labType int, serviceID string) ([]*entities.LabQuote, error) {
	labs, err := s.matcher.Match(ctx, labType, serviceID)
	if err != nil {
		return nil, err
	}
	if len(labs) == 0 {
		return []*entities.LabQuote{}, nil
	}

	priceModel, err := s.registry.PriceModel(ctx)
	if err != nil {
		return nil, err
	}

	at := s.now()
	quotes := make([]*entities.LabQuote, 0, len(labs))
	for _, lab := range labs {
		quotes = append(quotes, s.quoteLab(ctx, priceModel, lab, at))
	}

	return quotes, nil
}

// quoteLab prices every service of one lab
func (s *PricingService) quoteLab(ctx context.Context, priceModel prediction.Regressor, lab *entities.Lab, at time.Time) *entities.LabQuote {
	quote := &entities.LabQuote{
		ID:           lab.ID,
		LabType:      lab.LabType,
		Capacity:     lab.EffectiveCapacity(),
		Availability: lab.Availability,
		QueueSize:    len(lab.CaseQueue),
		Services:     []entities.ServiceQuote{},
	}

	for id, offering := range lab.ServicesAvailable {
		sq, err := s.quoteService(priceModel, lab.LabType, id, offering, at)
		if err != nil {
			observability.LoggerFromContext(ctx).Debug().
				Str("lab_id", lab.ID).
				Str("service_id", id).
				Err(err).
				Msg("skipping service from pricing")
			continue
		}
		quote.Services = append(quote.Services, sq)
	}

	// Map iteration order is random; keep responses stable.
	sort.Slice(quote.Services, func(i, j int) bool {
		return quote.Services[i].ServiceID < quote.Services[j].ServiceID
	})

	return quote
}

// quoteService runs the price stage for a single service. The returned
// quote's DynamicPrice is what the timeline stage feeds on, so this
// always runs first.
func (s *PricingService) quoteService(priceModel prediction.Regressor, labType int, serviceID string, offering entities.ServiceOffering, at time.Time) (entities.ServiceQuote, error) {
	features, err := prediction.PricingFeatures(labType, serviceID, offering, at)
	if err != nil {
		return entities.ServiceQuote{}, err
	}

	multiplier, err := priceModel.Predict(features)
	if err != nil {
		return entities.ServiceQuote{}, err
	}

	basePrice := *offering.Price
	return entities.ServiceQuote{
		ServiceID:      serviceID,
		BasePrice:      basePrice,
		PredMultiplier: multiplier,
		DynamicPrice:   basePrice * multiplier,
	}, nil
}
