// Package store persists shipment records as one JSON file per voucher under
// a flat data directory, mirroring the layout external dashboards already
// consume. All filesystem access goes through afero so tests run in memory.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"hash/fnv"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"github.com/eltatrack/courier-webhooks/internal/core/domain"
	"github.com/eltatrack/courier-webhooks/internal/core/ports"
)

const (
	recordExt = ".json"
	tmpExt    = ".tmp"
	dirPerm   = 0o755
	filePerm  = 0o644
)

// FileStore implements ports.EventStore and ports.RecentIndex on a local
// directory. Appends to the same voucher are serialized by a per-key mutex,
// closing the lost-update race of a naive load-append-save. Records are
// published by write-to-temp-then-rename, so readers see either the pre- or
// post-append file, never a torn one, and need no lock at all.
type FileStore struct {
	fs  afero.Afero
	dir string
	log zerolog.Logger
	now func() time.Time

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewFileStore creates the data directory if needed and returns a store
// rooted there.
func NewFileStore(fsys afero.Fs, dir string, log zerolog.Logger) (*FileStore, error) {
	af := afero.Afero{Fs: fsys}
	if err := af.MkdirAll(dir, dirPerm); err != nil {
		return nil, fmt.Errorf("%w: create data dir %s: %v", domain.ErrStoreUnavailable, dir, err)
	}
	return &FileStore{
		fs:    af,
		dir:   dir,
		log:   log,
		now:   time.Now,
		locks: make(map[string]*sync.Mutex),
	}, nil
}

// Append implements ports.EventStore. A record whose existing file fails to
// parse rejects the append with domain.ErrCorruptRecord: history is never
// silently overwritten.
func (s *FileStore) Append(_ context.Context, voucher string, event domain.StatusEvent) (string, error) {
	key := sanitizeVoucher(voucher)

	lock := s.lockFor(key)
	lock.Lock()
	defer lock.Unlock()

	rec, err := s.load(key)
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrVoucherNotFound):
		rec = &domain.ShipmentRecord{Voucher: voucher}
	default:
		return "", err
	}

	rec.StatusHistory = append(rec.StatusHistory, event)
	rec.UpdatedAt = s.now().UTC()

	if err := s.save(key, rec); err != nil {
		return "", err
	}
	return key + recordExt, nil
}

// History implements ports.EventStore.
func (s *FileStore) History(_ context.Context, voucher string) (*domain.ShipmentRecord, error) {
	return s.load(sanitizeVoucher(voucher))
}

// ListRecent implements ports.RecentIndex. It scans the data directory and
// orders records by the updatedAt timestamp the store maintains on every
// append. Unreadable or empty-history records are skipped with a warning.
func (s *FileStore) ListRecent(_ context.Context, limit int) ([]ports.RecentSummary, error) {
	summaries := []ports.RecentSummary{}
	if limit <= 0 {
		return summaries, nil
	}

	infos, err := s.fs.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("%w: scan %s: %v", domain.ErrStoreUnavailable, s.dir, err)
	}

	type entry struct {
		summary   ports.RecentSummary
		updatedAt time.Time
	}
	entries := make([]entry, 0, len(infos))

	for _, info := range infos {
		if info.IsDir() || !strings.HasSuffix(info.Name(), recordExt) {
			continue
		}
		key := strings.TrimSuffix(info.Name(), recordExt)

		rec, err := s.load(key)
		if err != nil {
			s.log.Warn().Err(err).Str("file", info.Name()).Msg("skipping unreadable record")
			continue
		}
		latest, ok := rec.Latest()
		if !ok {
			s.log.Warn().Str("voucher", rec.Voucher).Msg("skipping record with empty history")
			continue
		}

		updatedAt := rec.UpdatedAt
		if updatedAt.IsZero() {
			// Records written before updatedAt existed: fall back to mtime.
			updatedAt = info.ModTime()
		}
		entries = append(entries, entry{
			summary:   ports.RecentSummary{Voucher: rec.Voucher, Latest: latest},
			updatedAt: updatedAt,
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		if !entries[i].updatedAt.Equal(entries[j].updatedAt) {
			return entries[i].updatedAt.After(entries[j].updatedAt)
		}
		return entries[i].summary.Voucher < entries[j].summary.Voucher
	})

	if len(entries) > limit {
		entries = entries[:limit]
	}
	for _, e := range entries {
		summaries = append(summaries, e.summary)
	}
	return summaries, nil
}

// Ping verifies the data directory is writable. Used by the readiness probe.
func (s *FileStore) Ping(_ context.Context) error {
	probe := filepath.Join(s.dir, ".probe")
	if err := s.fs.WriteFile(probe, []byte("ok"), filePerm); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	if err := s.fs.Remove(probe); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	return nil
}

func (s *FileStore) lockFor(key string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.locks[key]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[key] = lock
	}
	return lock
}

func (s *FileStore) load(key string) (*domain.ShipmentRecord, error) {
	name := filepath.Join(s.dir, key+recordExt)

	data, err := s.fs.ReadFile(name)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, domain.ErrVoucherNotFound
		}
		return nil, fmt.Errorf("%w: read %s: %v", domain.ErrStoreUnavailable, name, err)
	}

	var rec domain.ShipmentRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrCorruptRecord, name, err)
	}
	return &rec, nil
}

func (s *FileStore) save(key string, rec *domain.ShipmentRecord) error {
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: encode %s: %v", domain.ErrStoreUnavailable, key, err)
	}

	name := filepath.Join(s.dir, key+recordExt)
	tmp := name + tmpExt
	if err := s.fs.WriteFile(tmp, data, filePerm); err != nil {
		return fmt.Errorf("%w: write %s: %v", domain.ErrStoreUnavailable, tmp, err)
	}
	if err := s.fs.Rename(tmp, name); err != nil {
		_ = s.fs.Remove(tmp)
		return fmt.Errorf("%w: publish %s: %v", domain.ErrStoreUnavailable, name, err)
	}
	return nil
}

// sanitizeVoucher maps an arbitrary voucher string onto a safe filename stem.
// Anything outside [A-Za-z0-9._-] becomes '_', so a hostile voucher cannot
// escape the data directory. A rewritten stem additionally carries a short
// hash of the raw voucher: without it, vouchers like "A/B" and "A_B" would
// share a file and merge their histories. An empty voucher falls back to the
// sentinel key.
func sanitizeVoucher(voucher string) string {
	if voucher == "" {
		return domain.UnknownVoucher
	}
	var b strings.Builder
	b.Grow(len(voucher))
	clean := true
	for _, r := range voucher {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9',
			r == '.', r == '_', r == '-':
			b.WriteRune(r)
		default:
			clean = false
			b.WriteRune('_')
		}
	}
	if clean {
		return b.String()
	}
	h := fnv.New32a()
	h.Write([]byte(voucher))
	return fmt.Sprintf("%s-%08x", b.String(), h.Sum32())
}
