package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/noah-isme/course-reg-api/internal/models"
	appErrors "github.com/noah-isme/course-reg-api/pkg/errors"
)

type curriculumLister interface {
	ListByFilter(ctx context.Context, filter models.CurriculumFilter) ([]models.CurriculumStructure, error)
}

type catalogLister interface {
	ListAll(ctx context.Context) ([]models.SubjectDetail, error)
}

type registeredSubjectLister interface {
	ListSubjectIDsByStudent(ctx context.Context, studentID string) ([]string, error)
}

type prerequisiteChecker interface {
	PrerequisiteSatisfied(ctx context.Context, studentID string, subject *models.Subject) (bool, error)
}

type cacheMetricsRecorder interface {
	RecordCacheOperation(hit bool, duration time.Duration)
}

// AvailabilityService resolves the subjects a student can browse for
// registration. It is read-only: the eligible flag is advisory and the
// registration service re-validates with the same prerequisite logic at
// commit time.
type AvailabilityService struct {
	curriculum curriculumLister
	catalog    catalogLister
	ledger     registeredSubjectLister
	prereqs    prerequisiteChecker
	cache      *redis.Client
	cacheTTL   time.Duration
	metrics    cacheMetricsRecorder
	logger     *zap.Logger
}

// NewAvailabilityService constructs AvailabilityService. A nil cache client
// disables caching.
func NewAvailabilityService(curriculum curriculumLister, catalog catalogLister, ledger registeredSubjectLister, prereqs prerequisiteChecker, cache *redis.Client, cacheTTL time.Duration, metrics cacheMetricsRecorder, logger *zap.Logger) *AvailabilityService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AvailabilityService{
		curriculum: curriculum,
		catalog:    catalog,
		ledger:     ledger,
		prereqs:    prereqs,
		cache:      cache,
		cacheTTL:   cacheTTL,
		metrics:    metrics,
		logger:     logger,
	}
}

// Catalog returns the full subject catalog with prerequisite names
// resolved.
func (s *AvailabilityService) Catalog(ctx context.Context) ([]models.SubjectDetail, error) {
	catalog, err := s.catalog.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load subject catalog")
	}
	return catalog, nil
}

func availabilityCacheKey(studentID string, filter models.CurriculumFilter) string {
	return fmt.Sprintf("availability:%s:%s:%s:%s", studentID, filter.Course, filter.Major, filter.Term)
}

// AvailableSubjects returns the candidate subjects for the student under the
// optional curriculum filter, minus anything already registered, each tagged
// with the advisory eligible flag.
func (s *AvailabilityService) AvailableSubjects(ctx context.Context, studentID string, filter models.CurriculumFilter) ([]models.AvailableSubject, error) {
	if filter.Term != "" && !filter.Term.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "term must be S1 or S2")
	}

	if cached, ok := s.fromCache(ctx, studentID, filter); ok {
		return cached, nil
	}

	catalog, err := s.catalog.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load subject catalog")
	}

	// Candidate set: curriculum members under the filter, or the whole
	// catalog when no filter is given.
	var members map[string]bool
	if !filter.Empty() {
		structures, err := s.curriculum.ListByFilter(ctx, filter)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load curriculum structures")
		}
		members = make(map[string]bool, len(structures))
		for _, structure := range structures {
			members[structure.SubjectID] = true
		}
	}

	registeredIDs, err := s.ledger.ListSubjectIDsByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load registration history")
	}
	registered := make(map[string]bool, len(registeredIDs))
	for _, id := range registeredIDs {
		registered[id] = true
	}

	available := make([]models.AvailableSubject, 0, len(catalog))
	for i := range catalog {
		subject := &catalog[i]
		if members != nil && !members[subject.ID] {
			continue
		}
		if registered[subject.ID] {
			continue
		}
		eligible, err := s.prereqs.PrerequisiteSatisfied(ctx, studentID, &subject.Subject)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check prerequisite")
		}
		available = append(available, models.AvailableSubject{
			ID:               subject.ID,
			Name:             subject.Name,
			Credit:           subject.Credit,
			Teacher:          subject.Teacher,
			PrerequisiteID:   subject.RequiredBeforeID,
			PrerequisiteName: subject.RequiredBeforeName,
			Eligible:         eligible,
		})
	}

	s.toCache(ctx, studentID, filter, available)

	return available, nil
}

// Invalidate drops every cached availability view of the student. Called
// after a successful registration or a grade change.
func (s *AvailabilityService) Invalidate(ctx context.Context, studentID string) error {
	if s.cache == nil {
		return nil
	}
	pattern := fmt.Sprintf("availability:%s:*", studentID)
	iter := s.cache.Scan(ctx, 0, pattern, 0).Iterator()
	for iter.Next(ctx) {
		if err := s.cache.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}

func (s *AvailabilityService) fromCache(ctx context.Context, studentID string, filter models.CurriculumFilter) ([]models.AvailableSubject, bool) {
	if s.cache == nil {
		return nil, false
	}
	start := time.Now()
	raw, err := s.cache.Get(ctx, availabilityCacheKey(studentID, filter)).Bytes()
	hit := err == nil
	if s.metrics != nil {
		s.metrics.RecordCacheOperation(hit, time.Since(start))
	}
	if err != nil {
		if err != redis.Nil {
			s.logger.Warn("availability cache read failed", zap.Error(err))
		}
		return nil, false
	}
	var available []models.AvailableSubject
	if err := json.Unmarshal(raw, &available); err != nil {
		s.logger.Warn("availability cache payload corrupt", zap.Error(err))
		return nil, false
	}
	return available, true
}

func (s *AvailabilityService) toCache(ctx context.Context, studentID string, filter models.CurriculumFilter, available []models.AvailableSubject) {
	if s.cache == nil {
		return
	}
	raw, err := json.Marshal(available)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, availabilityCacheKey(studentID, filter), raw, s.cacheTTL).Err(); err != nil {
		s.logger.Warn("availability cache write failed", zap.Error(err))
	}
}
