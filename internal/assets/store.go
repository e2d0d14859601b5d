// Package assets keeps one directory of timestamped QR images per group and
// decides which of them is currently active.
package assets

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
	"wxhm/internal/models"
	"wxhm/internal/providers"
	"wxhm/internal/structures"
)

type StoreInterface interface {
	Active(group string) (ActiveResult, error)
	Store(group string, raw []byte) (*models.GroupAsset, error)
	Rename(group, newName string) error
	Delete(group string) error
	Groups() ([]string, error)
	Open(group, filename string) (*os.File, error)
	Retention() time.Duration
}

// ActiveResult is the outcome of a read: the active asset, if any, and the
// expired assets the read removed from disk.
type ActiveResult struct {
	Asset   *models.GroupAsset
	Evicted []models.GroupAsset
}

type Store struct {
	root       string
	reserved   string
	retention  time.Duration
	normalizer NormalizerInterface
	logger     providers.Logger
	metrics    providers.MetricsProviderInterface
	locks      *keyedMutex
	names      *nameGenerator
	now        func() time.Time
	remove     func(string) error
}

func NewStore(conf *structures.Config, normalizer NormalizerInterface, logger providers.Logger, metrics providers.MetricsProviderInterface) (StoreInterface, error) {
	return newStore(conf, normalizer, logger, metrics)
}

func newStore(conf *structures.Config, normalizer NormalizerInterface, logger providers.Logger, metrics providers.MetricsProviderInterface) (*Store, error) {
	root, err := filepath.Abs(conf.Storage.UploadDir)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}

	// The custom file shelf may live inside the upload root; its directory
	// is never a group.
	var reserved string
	if filesDir, err := filepath.Abs(conf.Storage.FilesDir); err == nil && filepath.Dir(filesDir) == root {
		reserved = filepath.Base(filesDir)
	}

	return &Store{
		root:       root,
		reserved:   reserved,
		retention:  conf.RetentionWindow(),
		normalizer: normalizer,
		logger:     logger,
		metrics:    metrics,
		locks:      newKeyedMutex(),
		names:      &nameGenerator{},
		now:        time.Now,
		remove:     os.Remove,
	}, nil
}

func (s *Store) Retention() time.Duration {
	return s.retention
}

// ValidateGroupName rejects names that would escape or alias the upload root.
func (s *Store) ValidateGroupName(name string) error {
	switch {
	case name == "", name == ".", name == "..":
		return fmt.Errorf("%w: invalid group name %q", models.ErrValidation, name)
	case strings.HasPrefix(name, "."):
		return fmt.Errorf("%w: group name %q starts with a dot", models.ErrValidation, name)
	case strings.ContainsAny(name, `/\`) || strings.ContainsRune(name, 0):
		return fmt.Errorf("%w: group name %q contains a path separator", models.ErrValidation, name)
	case s.reserved != "" && name == s.reserved:
		return fmt.Errorf("%w: group name %q is reserved", models.ErrValidation, name)
	}
	return nil
}

func (s *Store) groupDir(group string) string {
	return filepath.Join(s.root, group)
}

// list reads the group's assets. A missing directory is an empty group.
func (s *Store) list(group string) ([]models.GroupAsset, error) {
	entries, err := os.ReadDir(s.groupDir(group))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	out := make([]models.GroupAsset, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.HasPrefix(name, ".") || !isImageFile(name) {
			continue
		}
		at, seq, ok := parseAssetName(name)
		if !ok {
			info, err := e.Info()
			if err != nil {
				continue
			}
			at = info.ModTime()
		}
		out = append(out, models.GroupAsset{Group: group, Filename: name, StoredAt: at, Seq: seq})
	}
	return out, nil
}

func (s *Store) Active(group string) (ActiveResult, error) {
	if err := s.ValidateGroupName(group); err != nil {
		return ActiveResult{}, err
	}

	unlock := s.locks.Lock(group)
	defer unlock()

	all, err := s.list(group)
	if err != nil {
		return ActiveResult{}, fmt.Errorf("%w: list group %s: %w", models.ErrTransientIO, group, err)
	}

	active, expired := models.SelectActive(all, s.now(), s.retention)

	var evicted []models.GroupAsset
	for _, a := range expired {
		path := filepath.Join(s.groupDir(group), a.Filename)
		if err := s.remove(path); err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				s.logger.Warnf(providers.TypeStorage, "Evicting %s failed, left for a later read: %s", path, err)
			}
			continue
		}
		s.logger.Infof(providers.TypeStorage, "Evicted expired asset %s/%s", group, a.Filename)
		evicted = append(evicted, a)
	}
	if len(evicted) > 0 {
		s.metrics.AddEvictions(len(evicted))
	}

	return ActiveResult{Asset: active, Evicted: evicted}, nil
}

func (s *Store) Store(group string, raw []byte) (*models.GroupAsset, error) {
	if err := s.ValidateGroupName(group); err != nil {
		return nil, err
	}

	data, ext, err := s.normalizer.Normalize(raw)
	if err != nil {
		return nil, err
	}

	unlock := s.locks.Lock(group)
	defer unlock()

	dir := s.groupDir(group)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("%w: create group dir: %w", models.ErrTransientIO, err)
	}

	for {
		at, seq := s.names.Next(s.now())
		name := assetName(at, seq, ext)
		path := filepath.Join(dir, name)
		if _, err := os.Lstat(path); err == nil {
			continue
		}
		if err := writeFileAtomic(path, data); err != nil {
			return nil, fmt.Errorf("%w: write asset: %w", models.ErrTransientIO, err)
		}
		s.logger.Infof(providers.TypeStorage, "Stored asset %s/%s (%d bytes)", group, name, len(data))
		return &models.GroupAsset{Group: group, Filename: name, StoredAt: at, Seq: seq}, nil
	}
}

func (s *Store) Rename(group, newName string) error {
	if err := s.ValidateGroupName(group); err != nil {
		return err
	}
	if err := s.ValidateGroupName(newName); err != nil {
		return err
	}

	unlock := s.locks.LockPair(group, newName)
	defer unlock()

	info, err := os.Stat(s.groupDir(group))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("group %q: %w", group, models.ErrNotFound)
		}
		return fmt.Errorf("%w: stat group: %w", models.ErrTransientIO, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("group %q: %w", group, models.ErrNotFound)
	}

	if _, err := os.Lstat(s.groupDir(newName)); err == nil {
		return fmt.Errorf("group %q already exists: %w", newName, models.ErrConflict)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: stat target: %w", models.ErrTransientIO, err)
	}

	if err := os.Rename(s.groupDir(group), s.groupDir(newName)); err != nil {
		return fmt.Errorf("%w: rename group: %w", models.ErrTransientIO, err)
	}
	s.logger.Infof(providers.TypeStorage, "Renamed group %s to %s", group, newName)
	return nil
}

func (s *Store) Delete(group string) error {
	if err := s.ValidateGroupName(group); err != nil {
		return err
	}

	unlock := s.locks.Lock(group)
	defer unlock()

	if err := os.RemoveAll(s.groupDir(group)); err != nil {
		return fmt.Errorf("%w: delete group: %w", models.ErrTransientIO, err)
	}
	s.logger.Infof(providers.TypeStorage, "Deleted group %s", group)
	return nil
}

func (s *Store) Groups() ([]string, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, fmt.Errorf("%w: list groups: %w", models.ErrTransientIO, err)
	}
	groups := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() || s.ValidateGroupName(e.Name()) != nil {
			continue
		}
		groups = append(groups, e.Name())
	}
	sort.Strings(groups)
	return groups, nil
}

// Open returns the named asset file of a group for serving. Only the base
// name of filename is used.
func (s *Store) Open(group, filename string) (*os.File, error) {
	if err := s.ValidateGroupName(group); err != nil {
		return nil, err
	}
	name := filepath.Base(filename)
	if name == "." || name == "/" || strings.HasPrefix(name, ".") || !isImageFile(name) {
		return nil, fmt.Errorf("asset %q: %w", filename, models.ErrNotFound)
	}

	f, err := os.Open(filepath.Join(s.groupDir(group), name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("asset %s/%s: %w", group, name, models.ErrNotFound)
		}
		return nil, fmt.Errorf("%w: open asset: %w", models.ErrTransientIO, err)
	}
	return f, nil
}
