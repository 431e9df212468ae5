// Package mapper resolves free-text guest interests into category tags,
// preferring the language model and falling back to keyword matching.
package mapper

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/spotive-cloud/discovery/internal/domain"
	"github.com/spotive-cloud/discovery/internal/domain/category"
	"github.com/spotive-cloud/discovery/internal/domain/discover"
	"github.com/spotive-cloud/discovery/internal/metrics"
)

// maxCategories caps how many tags a resolution may carry.
const maxCategories = 3

// maxClassifierTags is the most valid tags a classifier reply may
// contain before it is treated as noise and discarded.
const maxClassifierTags = 4

// Resolution is the outcome of mapping one interest text.
type Resolution struct {
	Tags   []category.Tag
	Method discover.ResolutionMethod
}

// Service maps interest text to categories.
type Service struct {
	classifier Classifier
	vocab      category.Vocabulary
	timeout    time.Duration
	logger     *zap.Logger
}

// New creates a mapper service. classifier may be nil, in which case
// only keyword matching is used.
func New(classifier Classifier, vocab category.Vocabulary, timeout time.Duration, logger *zap.Logger) *Service {
	return &Service{
		classifier: classifier,
		vocab:      vocab,
		timeout:    timeout,
		logger:     logger,
	}
}

// Resolve maps interest text to one to three category tags. The
// classifier gets a single bounded attempt; anything it returns outside
// the vocabulary is discarded, and a reply with no valid tags or with
// suspiciously many falls through to keyword matching. Returns
// domain.ErrNoCategoryMatch when neither path yields a tag.
func (s *Service) Resolve(ctx context.Context, interest string) (Resolution, error) {
	if interest == "" {
		return Resolution{}, fmt.Errorf("interest text is required: %w", domain.ErrValidation)
	}

	if tags, ok := s.classify(ctx, interest); ok {
		metrics.CategoryResolutionsTotal.WithLabelValues(string(discover.ResolvedByClassifier)).Inc()
		return Resolution{Tags: tags, Method: discover.ResolvedByClassifier}, nil
	}

	if tags := s.vocab.KeywordMatch(interest, maxCategories); len(tags) > 0 {
		metrics.CategoryResolutionsTotal.WithLabelValues(string(discover.ResolvedByKeywords)).Inc()
		return Resolution{Tags: tags, Method: discover.ResolvedByKeywords}, nil
	}

	metrics.CategoryResolutionsTotal.WithLabelValues("none").Inc()
	return Resolution{}, fmt.Errorf("no category for %q: %w", interest, domain.ErrNoCategoryMatch)
}

// classify runs the single classifier attempt and validates its reply.
func (s *Service) classify(ctx context.Context, interest string) ([]category.Tag, bool) {
	if s.classifier == nil {
		return nil, false
	}

	cctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	candidates, err := s.classifier.Classify(cctx, interest)
	if err != nil {
		s.logger.Warn("classifier unavailable, using keyword fallback",
			zap.String("interest", interest),
			zap.Error(err))
		return nil, false
	}

	tags := s.validTags(candidates)
	if len(tags) == 0 || len(tags) > maxClassifierTags {
		s.logger.Debug("classifier reply rejected",
			zap.Strings("candidates", candidates),
			zap.Int("valid", len(tags)))
		return nil, false
	}

	if len(tags) > maxCategories {
		tags = tags[:maxCategories]
	}
	return tags, true
}

// validTags filters candidates against the vocabulary, deduplicated,
// in reply order.
func (s *Service) validTags(candidates []string) []category.Tag {
	seen := make(map[category.Tag]bool, len(candidates))
	tags := make([]category.Tag, 0, len(candidates))
	for _, c := range candidates {
		tag, ok := s.vocab.Parse(c)
		if !ok || seen[tag] {
			continue
		}
		seen[tag] = true
		tags = append(tags, tag)
	}
	return tags
}
