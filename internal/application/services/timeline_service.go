package services

import (
	"context"
	"sort"
	"time"

	"github.com/SooYeonAhn1/gcp-smart-dental-v2-lab/internal/domain/entities"
	"github.com/SooYeonAhn1/gcp-smart-dental-v2-lab/internal/infrastructure/observability"
	"github.com/SooYeonAhn1/gcp-smart-dental-v2-lab/internal/prediction"
)

// TimelineService extends pricing with turnaround-time prediction.
// The timeline model consumes the dynamic price the pricing stage just
// computed, so for every service the price prediction strictly precedes
// the timeline prediction.
type TimelineService struct {
	matcher  *MatchingService
	pricing  *PricingService
	registry *prediction.Registry
	now      func() time.Time
}

// NewTimelineService creates a new timeline service
func NewTimelineService(matcher *MatchingService, pricing *PricingService, registry *prediction.Registry) *TimelineService {
	return &TimelineService{
		matcher:  matcher,
		pricing:  pricing,
		registry: registry,
		now:      time.Now,
	}
}

// SearchWithTimeline matches labs and returns quotes carrying both a
// dynamic price and a predicted turnaround time for every service of
// every matched lab. Services without a usable base price are skipped.
func (s *TimelineService) SearchWithTimeline(ctx context.Context, labType int, serviceID string) ([]*entities.LabQuote, error) {
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
	timelineModel, err := s.registry.TimelineModel(ctx)
	if err != nil {
		return nil, err
	}

	at := s.now()
	logger := observability.LoggerFromContext(ctx)

	quotes := make([]*entities.LabQuote, 0, len(labs))
	for _, lab := range labs {
		quote := &entities.LabQuote{
			ID:           lab.ID,
			LabType:      lab.LabType,
			Capacity:     lab.EffectiveCapacity(),
			Availability: lab.Availability,
			QueueSize:    len(lab.CaseQueue),
			Services:     []entities.ServiceQuote{},
		}

		for id, offering := range lab.ServicesAvailable {
			// Stage one: price.
			sq, err := s.pricing.quoteService(priceModel, lab.LabType, id, offering, at)
			if err != nil {
				logger.Debug().
					Str("lab_id", lab.ID).
					Str("service_id", id).
					Err(err).
					Msg("skipping service from timeline prediction")
				continue
			}

			// Stage two: turnaround time from the priced quote.
			features, err := prediction.TimelineFeatures(lab.LabType, id, offering, sq.DynamicPrice, at)
			if err != nil {
				logger.Debug().
					Str("lab_id", lab.ID).
					Str("service_id", id).
					Err(err).
					Msg("skipping service from timeline prediction")
				continue
			}

			tat, err := timelineModel.Predict(features)
			if err != nil {
				logger.Debug().
					Str("lab_id", lab.ID).
					Str("service_id", id).
					Err(err).
					Msg("skipping service from timeline prediction")
				continue
			}

			sq.TimelineTAT = &tat
			quote.Services = append(quote.Services, sq)
		}

		sort.Slice(quote.Services, func(i, j int) bool {
			return quote.Services[i].ServiceID < quote.Services[j].ServiceID
		})

		quotes = append(quotes, quote)
	}

	return quotes, nil
}
