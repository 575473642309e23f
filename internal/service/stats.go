package service

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"toeic-web/internal/apierr"
	"toeic-web/internal/logger"
	"toeic-web/internal/store"
)

type ContentCounts struct {
	TotalLessons     int64     `json:"totalLessons"`
	ListeningLessons int64     `json:"listeningLessons"`
	ReadingLessons   int64     `json:"readingLessons"`
	WritingLessons   int64     `json:"writingLessons"`
	LastUpdated      time.Time `json:"lastUpdated"`
}

type AdminOverview struct {
	TotalUsers int64 `json:"totalUsers"`
	ContentCounts
}

type UserCount struct {
	Count int64 `json:"count"`
	Today int64 `json:"today"`
}

type StatsService interface {
	AdminOverview(ctx context.Context) (*AdminOverview, error)
	UserCount(ctx context.Context) (*UserCount, error)
	LessonCount(ctx context.Context) (*ContentCounts, error)
}

type statsService struct {
	store *store.Store
	log   *logger.Logger
	now   func() time.Time
}

func NewStatsService(st *store.Store, log *logger.Logger) StatsService {
	return &statsService{store: st, log: log.With("service", "StatsService"), now: utcNow}
}

// coreMetrics runs the four dashboard counts concurrently.
func (s *statsService) coreMetrics(ctx context.Context) (users int64, counts ContentCounts, err error) {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := s.store.Users.Count(gctx, nil)
		users = n
		return err
	})
	g.Go(func() error {
		n, err := s.store.Content.CountListening(gctx, nil)
		counts.ListeningLessons = n
		return err
	})
	g.Go(func() error {
		n, err := s.store.Content.CountReading(gctx, nil)
		counts.ReadingLessons = n
		return err
	})
	g.Go(func() error {
		n, err := s.store.Content.CountWriting(gctx, nil)
		counts.WritingLessons = n
		return err
	})
	if err = g.Wait(); err != nil {
		return 0, ContentCounts{}, err
	}
	counts.TotalLessons = counts.ListeningLessons + counts.ReadingLessons + counts.WritingLessons
	counts.LastUpdated = s.now()
	return users, counts, nil
}

func (s *statsService) AdminOverview(ctx context.Context) (*AdminOverview, error) {
	users, counts, err := s.coreMetrics(ctx)
	if err != nil {
		return nil, apierr.Internal("failed to load dashboard metrics", err)
	}
	return &AdminOverview{TotalUsers: users, ContentCounts: counts}, nil
}

func (s *statsService) LessonCount(ctx context.Context) (*ContentCounts, error) {
	_, counts, err := s.coreMetrics(ctx)
	if err != nil {
		return nil, apierr.Internal("failed to load lesson counts", err)
	}
	return &counts, nil
}

// UserCount reports the total and the registrations of the current UTC day.
func (s *statsService) UserCount(ctx context.Context) (*UserCount, error) {
	total, err := s.store.Users.Count(ctx, nil)
	if err != nil {
		return nil, apierr.Internal("failed to count users", err)
	}
	now := s.now().UTC()
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	today, err := s.store.Users.CountRegisteredBetween(ctx, nil, start, start.Add(24*time.Hour))
	if err != nil {
		return nil, apierr.Internal("failed to count users", err)
	}
	return &UserCount{Count: total, Today: today}, nil
}
