package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"pqrssi-portal/config"
	"pqrssi-portal/models"

	"gorm.io/gorm"
)

const defaultCatalogTTL = 5 * time.Minute

// CatalogService serves the category and status reference lists from an
// in-memory cache that refreshes after ttl.
type CatalogService struct {
	db  *gorm.DB
	ttl time.Duration
	now func() time.Time

	mu    sync.RWMutex
	cache *catalogCacheEntry
}

type catalogCacheEntry struct {
	categories   []models.Category
	statuses     []models.Status
	categoryByID map[int]models.Category
	statusByID   map[int]models.Status
	fetchedAt    time.Time
}

func NewCatalogService(db *gorm.DB) *CatalogService {
	if db == nil {
		db = config.DB
	}
	return &CatalogService{db: db, ttl: defaultCatalogTTL, now: time.Now}
}

func (s *CatalogService) load(ctx context.Context, force bool) (*catalogCacheEntry, error) {
	s.mu.RLock()
	cached := s.cache
	s.mu.RUnlock()

	if cached != nil && !force && s.now().Sub(cached.fetchedAt) < s.ttl {
		return cached, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cache != nil && !force && s.now().Sub(s.cache.fetchedAt) < s.ttl {
		return s.cache, nil
	}

	var categories []models.Category
	if err := s.db.WithContext(ctx).Order("id ASC").Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("failed to load categories: %w", err)
	}

	var statuses []models.Status
	if err := s.db.WithContext(ctx).Order("id ASC").Find(&statuses).Error; err != nil {
		return nil, fmt.Errorf("failed to load statuses: %w", err)
	}

	entry := &catalogCacheEntry{
		categories:   categories,
		statuses:     statuses,
		categoryByID: make(map[int]models.Category, len(categories)),
		statusByID:   make(map[int]models.Status, len(statuses)),
		fetchedAt:    s.now(),
	}
	for _, c := range categories {
		entry.categoryByID[c.CategoryID] = c
	}
	for _, st := range statuses {
		entry.statusByID[st.StatusID] = st
	}

	s.cache = entry
	return entry, nil
}

// Clear invalidates the in-memory catalog cache.
func (s *CatalogService) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache = nil
}

// Categories returns all categories ordered by id.
func (s *CatalogService) Categories(ctx context.Context) ([]models.Category, error) {
	entry, err := s.load(ctx, false)
	if err != nil {
		return nil, err
	}
	return entry.categories, nil
}

// Statuses returns all statuses ordered by id.
func (s *CatalogService) Statuses(ctx context.Context) ([]models.Status, error) {
	entry, err := s.load(ctx, false)
	if err != nil {
		return nil, err
	}
	return entry.statuses, nil
}

// CategoryExists reports whether id names a category. An unknown id forces
// one refresh before answering false.
func (s *CatalogService) CategoryExists(ctx context.Context, id int) (bool, error) {
	entry, err := s.load(ctx, false)
	if err != nil {
		return false, err
	}
	if _, ok := entry.categoryByID[id]; ok {
		return true, nil
	}

	entry, err = s.load(ctx, true)
	if err != nil {
		return false, err
	}
	_, ok := entry.categoryByID[id]
	return ok, nil
}

// StatusByID resolves a status, refreshing once on a miss.
func (s *CatalogService) StatusByID(ctx context.Context, id int) (*models.Status, error) {
	entry, err := s.load(ctx, false)
	if err != nil {
		return nil, err
	}
	if st, ok := entry.statusByID[id]; ok {
		return &st, nil
	}

	entry, err = s.load(ctx, true)
	if err != nil {
		return nil, err
	}
	if st, ok := entry.statusByID[id]; ok {
		return &st, nil
	}
	return nil, fmt.Errorf("status %d: %w", id, ErrUnknownStatus)
}
