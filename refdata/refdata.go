// Package refdata loads the catalogue of real dungeons the editor can pull
// encounters from. The catalogue is fetched once in the background; lookups
// block until it is ready.
package refdata

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"
	"golang.org/x/text/cases"

	"github.com/nathoo/dungeoncore/engine/dungeon"
)

// Entry is one searchable sub-dungeon.
type Entry struct {
	Title string
	ID    int
}

// Store holds decoded reference dungeons keyed by sub-dungeon id.
type Store struct {
	fetchers []Fetcher
	log      *slog.Logger

	once sync.Once
	done chan struct{}

	mu      sync.RWMutex
	loaded  bool
	err     error
	snaps   map[int]dungeon.Snapshot
	entries []Entry
}

// New creates a store over fetchers. Nothing is fetched until Start.
func New(log *slog.Logger, fetchers ...Fetcher) *Store {
	if log == nil {
		log = slog.Default()
	}
	return &Store{
		fetchers: fetchers,
		log:      log,
		done:     make(chan struct{}),
		snaps:    make(map[int]dungeon.Snapshot),
	}
}

// Start begins fetching in the background. Only the first call does
// anything.
func (s *Store) Start(ctx context.Context) {
	s.once.Do(func() {
		go s.run(ctx)
	})
}

func (s *Store) run(ctx context.Context) {
	defer close(s.done)

	raws := make([][]byte, len(s.fetchers))
	g, gctx := errgroup.WithContext(ctx)
	for i, f := range s.fetchers {
		i, f := i, f
		g.Go(func() error {
			data, err := f.Fetch(gctx)
			if err != nil {
				return err
			}
			raws[i] = data
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.log.Error("reference data fetch failed", "error", err)
		s.finish(nil, err)
		return
	}

	var recs []record
	for _, raw := range raws {
		rs, err := decode(raw, s.log)
		if err != nil {
			s.log.Error("reference data decode failed", "error", err)
			s.finish(nil, err)
			return
		}
		recs = append(recs, rs...)
	}
	s.finish(recs, nil)
	s.log.Info("loaded reference dungeons", "count", len(recs))
}

func (s *Store) finish(recs []record, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loaded = true
	s.err = err
	for _, r := range recs {
		s.snaps[r.id] = r.snap
		s.entries = append(s.entries, Entry{Title: r.snap.Title, ID: r.id})
	}
}

// Loaded reports whether fetching has finished, successfully or not.
func (s *Store) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

// Err returns the fetch error, if any.
func (s *Store) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.err
}

// Wait blocks until fetching finishes or ctx ends. It starts the fetch if
// nobody has yet.
func (s *Store) Wait(ctx context.Context) error {
	s.Start(context.WithoutCancel(ctx))
	select {
	case <-s.done:
		return s.Err()
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Lookup returns the snapshot for a sub-dungeon id, waiting for the
// catalogue if necessary.
func (s *Store) Lookup(ctx context.Context, id int) (dungeon.Snapshot, bool, error) {
	if err := s.Wait(ctx); err != nil {
		return dungeon.Snapshot{}, false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap, ok := s.snaps[id]
	return snap, ok, nil
}

// Search returns entries whose title contains query, ignoring case. It
// does not wait: before the catalogue is loaded it finds nothing.
func (s *Store) Search(query string) []Entry {
	fold := cases.Fold()
	q := fold.String(strings.TrimSpace(query))

	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Entry
	for _, e := range s.entries {
		if strings.Contains(fold.String(e.Title), q) {
			out = append(out, e)
		}
	}
	return out
}

// Entries returns every sub-dungeon in load order.
func (s *Store) Entries() []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Entry(nil), s.entries...)
}
