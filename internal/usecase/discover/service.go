// Package discover orchestrates one guest search: personalize, map,
// rank, describe, then hand the results back synchronously while
// publishing and tracking in the background.
package discover

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spotive-cloud/discovery/internal/domain"
	"github.com/spotive-cloud/discovery/internal/domain/catalog"
	domdisc "github.com/spotive-cloud/discovery/internal/domain/discover"
	"github.com/spotive-cloud/discovery/internal/domain/guest"
	"github.com/spotive-cloud/discovery/internal/metrics"
	"github.com/spotive-cloud/discovery/internal/usecase/mapper"
)

// backgroundTimeout bounds publish and track work after the response
// has been sent.
const backgroundTimeout = 10 * time.Second

// Request is one discovery query.
type Request struct {
	Identity string
	Interest string
	VenueID  string
}

// Service runs the discovery flow.
type Service struct {
	mapper    Mapper
	ranker    Ranker
	prefs     Preferences
	publisher Publisher
	describer Describer
	logger    *zap.Logger

	// background runs deferred work. Swapped for an inline runner in tests.
	background func(fn func())
}

// New creates a discovery service. describer may be nil, in which case
// every item gets the plain fallback line.
func New(m Mapper, r Ranker, p Preferences, pub Publisher, d Describer, logger *zap.Logger) *Service {
	return &Service{
		mapper:     m,
		ranker:     r,
		prefs:      p,
		publisher:  pub,
		describer:  d,
		logger:     logger,
		background: func(fn func()) { go fn() },
	}
}

// Discover resolves the interest, ranks results and returns them. The
// same result set is published to the guest's channel and the search is
// recorded, both off the request path so neither can delay or fail the
// response.
func (s *Service) Discover(ctx context.Context, req Request) (*domdisc.Response, error) {
	if err := guest.ValidateIdentity(req.Identity); err != nil {
		return nil, err
	}

	// An empty interest is allowed when history can stand in for it:
	// the blend turns it into the guest's learned categories.
	blended := s.blend(ctx, req.Identity, req.Interest)
	if strings.TrimSpace(blended) == "" {
		return nil, fmt.Errorf("interest text is required for first-time guests: %w", domain.ErrValidation)
	}

	resolution, err := s.mapper.Resolve(ctx, blended)
	if err != nil {
		return nil, &domdisc.SearchError{Interest: req.Interest, Err: fmt.Errorf("discover: %w", err)}
	}

	results, prof, err := s.ranker.Rank(ctx, resolution.Tags, req.VenueID)
	if err != nil {
		return nil, &domdisc.SearchError{
			Interest:   req.Interest,
			Categories: resolution.Tags,
			Err:        fmt.Errorf("discover: %w", err),
		}
	}

	s.describeAll(ctx, results)

	resp := &domdisc.Response{
		Identity:     req.Identity,
		Interest:     req.Interest,
		Categories:   resolution.Tags,
		Method:       resolution.Method,
		MatchedCount: len(results),
		Results:      results,
	}
	if prof != nil {
		resp.Venue = &domdisc.VenueContext{
			VenueID:         prof.ID,
			Name:            prof.Name,
			DistanceBasisKm: prof.SearchRadiusKm,
		}
	}

	// The background work gets a detached context so client disconnects
	// cannot cancel it mid-write.
	bgCtx := context.WithoutCancel(ctx)
	s.background(func() { s.publish(bgCtx, resp) })
	s.background(func() { s.track(bgCtx, req, resolution, len(results)) })

	return resp, nil
}

// blend folds the guest's history into the query. A failing preference
// store degrades to the raw query instead of failing the search.
func (s *Service) blend(ctx context.Context, identity, interest string) string {
	blended, err := s.prefs.Blend(ctx, identity, interest)
	if err != nil {
		s.logger.Warn("preference blend unavailable",
			zap.String("identity", identity),
			zap.Error(err))
		return interest
	}
	return blended
}

// describeAll fills in a description for every result, falling back to
// a plain line when the model is unavailable.
func (s *Service) describeAll(ctx context.Context, results []domdisc.RankedResult) {
	for i := range results {
		if results[i].Item.Description != "" && results[i].Item.Origin == catalog.OriginLocalService {
			// Venue services ship their own copy.
			results[i].Description = results[i].Item.Description
			continue
		}
		if s.describer != nil {
			desc, err := s.describer.Describe(ctx, results[i].Item)
			if err == nil && desc != "" {
				results[i].Description = desc
				metrics.DescriptionsTotal.WithLabelValues("model").Inc()
				continue
			}
			if err != nil {
				s.logger.Debug("describer unavailable",
					zap.String("item", results[i].Item.ID),
					zap.Error(err))
			}
		}
		results[i].Description = FallbackDescription(results[i].Item)
		metrics.DescriptionsTotal.WithLabelValues("fallback").Inc()
	}
}

// FallbackDescription is the line used when no generated description is
// available.
func FallbackDescription(item catalog.Item) string {
	if item.LocationText != "" {
		return fmt.Sprintf("Check out %s at %s!", item.Name, item.LocationText)
	}
	return fmt.Sprintf("Check out %s!", item.Name)
}

// publish stores and announces the result envelope, retrying once.
func (s *Service) publish(ctx context.Context, resp *domdisc.Response) {
	ctx, cancel := context.WithTimeout(ctx, backgroundTimeout)
	defer cancel()

	env := &domdisc.Envelope{
		Identity: resp.Identity,
		Payload:  resp.Results,
	}
	if resp.Venue != nil {
		env.VenueID = resp.Venue.VenueID
	}

	err := s.publisher.Publish(ctx, env)
	if err != nil {
		err = s.publisher.Publish(ctx, env)
	}
	if err != nil {
		metrics.ResultPublicationsTotal.WithLabelValues("error").Inc()
		s.logger.Warn("result publication failed",
			zap.String("identity", resp.Identity),
			zap.Error(err))
		return
	}
	metrics.ResultPublicationsTotal.WithLabelValues("success").Inc()
}

// track records the completed search, best effort.
func (s *Service) track(ctx context.Context, req Request, res mapper.Resolution, resultCount int) {
	ctx, cancel := context.WithTimeout(ctx, backgroundTimeout)
	defer cancel()

	if err := s.prefs.Track(ctx, req.Identity, req.Interest, res.Tags, resultCount); err != nil {
		s.logger.Warn("search tracking failed",
			zap.String("identity", req.Identity),
			zap.Error(err))
	}
}
