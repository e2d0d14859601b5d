package services

import (
	"context"
	"errors"
	"os"
	"sort"
	"sync"
	"time"
	"wxhm/internal/assets"
	"wxhm/internal/models"
)

var errDisk = errors.New("disk full")

// memStore is an in-memory assets.StoreInterface. Evicted is handed out by
// the next Active call.
type memStore struct {
	mu       sync.Mutex
	groups   map[string]*models.GroupAsset
	evicted  map[string][]models.GroupAsset
	storeErr error
	listErr  error
}

func newMemStore() *memStore {
	return &memStore{groups: make(map[string]*models.GroupAsset), evicted: make(map[string][]models.GroupAsset)}
}

func (m *memStore) Active(group string) (assets.ActiveResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	res := assets.ActiveResult{Asset: m.groups[group], Evicted: m.evicted[group]}
	delete(m.evicted, group)
	return res, nil
}

func (m *memStore) Store(group string, raw []byte) (*models.GroupAsset, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.storeErr != nil {
		return nil, m.storeErr
	}
	a := &models.GroupAsset{Group: group, Filename: "qr_" + string(raw) + ".png", StoredAt: time.Now()}
	m.groups[group] = a
	return a, nil
}

func (m *memStore) Rename(group, newName string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.groups[group]
	if !ok {
		return models.ErrNotFound
	}
	if _, taken := m.groups[newName]; taken {
		return models.ErrConflict
	}
	delete(m.groups, group)
	m.groups[newName] = a
	return nil
}

func (m *memStore) Delete(group string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.groups, group)
	return nil
}

func (m *memStore) Groups() ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	out := make([]string, 0, len(m.groups))
	for g := range m.groups {
		out = append(out, g)
	}
	sort.Strings(out)
	return out, nil
}

func (m *memStore) Open(_, _ string) (*os.File, error) { return nil, models.ErrNotFound }
func (m *memStore) Retention() time.Duration          { return 7 * 24 * time.Hour }

// memLedger records calls and answers nothing interesting.
type memLedger struct {
	mu        sync.Mutex
	records   []models.VisitRecord
	renamed   [][2]string
	deleted   []string
	recordErr error
	renameErr error
	deleteErr error
}

func (l *memLedger) Record(_ context.Context, rec models.VisitRecord) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.recordErr != nil {
		return l.recordErr
	}
	l.records = append(l.records, rec)
	return nil
}
func (l *memLedger) DailyCounts(_ context.Context, _, day string) (models.DailyCount, error) {
	return models.DailyCount{Day: day}, nil
}
func (l *memLedger) ClassBreakdown(_ context.Context, _, _ string) (map[models.ClientClass]int, error) {
	return map[models.ClientClass]int{}, nil
}
func (l *memLedger) Trend(_ context.Context, _ string, days []string) ([]models.DailyCount, error) {
	return make([]models.DailyCount, len(days)), nil
}
func (l *memLedger) PruneOlderThan(_ context.Context, _ string) (int64, error) { return 0, nil }
func (l *memLedger) RenameGroup(_ context.Context, group, newName string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.renamed = append(l.renamed, [2]string{group, newName})
	return l.renameErr
}
func (l *memLedger) DeleteGroup(_ context.Context, group string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.deleted = append(l.deleted, group)
	return l.deleteErr
}
