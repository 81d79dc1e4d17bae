package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"
	"sync"
	"time"

	"attendance-service/internal/model"
	"attendance-service/internal/storage"
)

// documentsKey is the namespace key all attendance documents live under.
const documentsKey = "attendance-documents"

const (
	// maxDocumentAge is how long an untouched document survives age-based
	// cleanup once the medium runs out of space.
	maxDocumentAge = 30 * 24 * time.Hour
	// maxDocuments caps how many documents age-based cleanup keeps.
	maxDocuments = 50
)

// ErrStorageFull is returned by Upsert when the medium is out of space and
// recovery found nothing left to evict. The caller should ask the user to
// clear storage manually.
var ErrStorageFull = errors.New("storage quota exceeded: no document is eligible for eviction")

// AttendanceStore is bounded persistence for attendance documents over an
// injected storage medium. Writes that hit the medium's quota trigger a
// two-phase recovery: age-based cleanup first, then single-document
// eviction ordered by status priority.
type AttendanceStore struct {
	mu     sync.Mutex
	medium storage.Medium
	now    func() time.Time

	resetLegacyData bool

	subMu   sync.Mutex
	subs    map[int]func()
	nextSub int
}

type Option func(*AttendanceStore)

// WithResetLegacyData enables the debug-only migration hook: documents
// persisted under the old ID naming scheme are wiped and replaced with the
// fixture set instead of being kept.
func WithResetLegacyData(enabled bool) Option {
	return func(s *AttendanceStore) { s.resetLegacyData = enabled }
}

// WithClock overrides the store's clock. Tests use this to age documents.
func WithClock(now func() time.Time) Option {
	return func(s *AttendanceStore) { s.now = now }
}

// NewAttendanceStore opens the store over the given medium. Seeding is an
// explicit constructor step: if no documents were ever persisted, the
// built-in fixture set is written before the store is returned.
func NewAttendanceStore(medium storage.Medium, opts ...Option) (*AttendanceStore, error) {
	s := &AttendanceStore{
		medium: medium,
		now:    time.Now,
		subs:   map[int]func(){},
	}
	for _, opt := range opts {
		opt(s)
	}

	docs, found, err := s.load()
	if err != nil {
		return nil, fmt.Errorf("open attendance store: %w", err)
	}

	switch {
	case !found:
		docs = FixtureDocuments(s.now())
		if err := s.persist(docs); err != nil {
			return nil, fmt.Errorf("seed attendance store: %w", err)
		}
		log.Printf("attendance store: seeded %d fixture documents", len(docs))
	case hasLegacyIDs(docs):
		if s.resetLegacyData {
			docs = FixtureDocuments(s.now())
			if err := s.persist(docs); err != nil {
				return nil, fmt.Errorf("reseed attendance store: %w", err)
			}
			log.Printf("WARN attendance store: legacy document IDs detected, data wiped and reseeded (%d documents)", len(docs))
		} else {
			log.Printf("WARN attendance store: legacy document IDs detected, keeping data (set RESET_LEGACY_DATA to reseed)")
		}
	}

	return s, nil
}

// GetAll returns every stored document.
func (s *AttendanceStore) GetAll() ([]model.AttendanceDocument, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	docs, _, err := s.load()
	return docs, err
}

// GetByID returns the document with the given ID, or nil if absent.
// Absence is a valid state, not an error.
func (s *AttendanceStore) GetByID(id string) (*model.AttendanceDocument, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	docs, _, err := s.load()
	if err != nil {
		return nil, err
	}
	for i := range docs {
		if docs[i].ID == id {
			return &docs[i], nil
		}
	}
	return nil, nil
}

// GetByEducationID returns the first document for the education, or nil.
// Education IDs are only unique among active documents, so first match in
// stored order is the contract.
func (s *AttendanceStore) GetByEducationID(educationID string) (*model.AttendanceDocument, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	docs, _, err := s.load()
	if err != nil {
		return nil, err
	}
	for i := range docs {
		if docs[i].EducationID == educationID {
			return &docs[i], nil
		}
	}
	return nil, nil
}

// Upsert inserts or replaces doc by ID, stamping UpdatedAt regardless of
// what the caller supplied. On quota failure it runs the two-phase recovery
// until the write fits or nothing evictable remains, in which case it
// returns ErrStorageFull and persists nothing.
func (s *AttendanceStore) Upsert(doc model.AttendanceDocument) error {
	s.mu.Lock()
	err := s.upsertLocked(doc)
	s.mu.Unlock()
	if err != nil {
		return err
	}
	s.notify()
	return nil
}

func (s *AttendanceStore) upsertLocked(doc model.AttendanceDocument) error {
	docs, _, err := s.load()
	if err != nil {
		return err
	}

	doc.UpdatedAt = s.now()
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = doc.UpdatedAt
	}

	replaced := false
	for i := range docs {
		if docs[i].ID == doc.ID {
			docs[i] = doc
			replaced = true
			break
		}
	}
	if !replaced {
		docs = append(docs, doc)
	}

	for {
		err := s.persist(docs)
		if err == nil {
			return nil
		}
		if !storage.IsQuotaExceeded(err) {
			return fmt.Errorf("persist attendance documents: %w", err)
		}

		// Phase 1: drop stale documents and cap the total count.
		pruned := cleanupAged(docs, s.now())
		if len(pruned) < len(docs) {
			log.Printf("WARN attendance store: quota exceeded, age cleanup dropped %d of %d documents", len(docs)-len(pruned), len(docs))
			docs = pruned
			continue
		}

		// Phase 2: everything is recent and within the cap, so evict the
		// single lowest-priority document. The document being written is
		// never a candidate.
		victim := evictionCandidate(docs, doc.ID)
		if victim < 0 {
			log.Printf("WARN attendance store: quota exceeded and no eviction candidate, write of %s failed", doc.ID)
			return ErrStorageFull
		}
		log.Printf("WARN attendance store: quota exceeded, evicting %s (status=%s, updated=%s)",
			docs[victim].ID, docs[victim].Status, docs[victim].UpdatedAt.Format(time.RFC3339))
		docs = append(docs[:victim], docs[victim+1:]...)
	}
}

// Delete removes the document unconditionally. Deleting an absent ID is a
// no-op.
func (s *AttendanceStore) Delete(id string) error {
	s.mu.Lock()
	docs, _, err := s.load()
	if err != nil {
		s.mu.Unlock()
		return err
	}
	kept := docs[:0]
	for _, d := range docs {
		if d.ID != id {
			kept = append(kept, d)
		}
	}
	if len(kept) == len(docs) {
		s.mu.Unlock()
		return nil
	}
	if err := s.persist(kept); err != nil {
		s.mu.Unlock()
		return fmt.Errorf("persist attendance documents: %w", err)
	}
	s.mu.Unlock()
	s.notify()
	return nil
}

// Subscribe registers a callback fired after every successful write.
// Listeners re-read the store instead of receiving a payload. The returned
// function unsubscribes.
func (s *AttendanceStore) Subscribe(fn func()) func() {
	s.subMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.subMu.Unlock()

	return func() {
		s.subMu.Lock()
		delete(s.subs, id)
		s.subMu.Unlock()
	}
}

func (s *AttendanceStore) notify() {
	s.subMu.Lock()
	fns := make([]func(), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

func (s *AttendanceStore) load() ([]model.AttendanceDocument, bool, error) {
	data, found, err := s.medium.Get(documentsKey)
	if err != nil {
		return nil, false, fmt.Errorf("read attendance documents: %w", err)
	}
	if !found {
		return nil, false, nil
	}
	var docs []model.AttendanceDocument
	if err := json.Unmarshal(data, &docs); err != nil {
		return nil, true, fmt.Errorf("decode attendance documents: %w", err)
	}
	return docs, true, nil
}

func (s *AttendanceStore) persist(docs []model.AttendanceDocument) error {
	data, err := json.Marshal(docs)
	if err != nil {
		return fmt.Errorf("encode attendance documents: %w", err)
	}
	return s.medium.Set(documentsKey, data)
}

// cleanupAged drops documents untouched for maxDocumentAge and caps the
// remainder to the maxDocuments most recently updated. Idempotent: a second
// run with nothing aged out changes nothing.
func cleanupAged(docs []model.AttendanceDocument, now time.Time) []model.AttendanceDocument {
	cutoff := now.Add(-maxDocumentAge)
	kept := make([]model.AttendanceDocument, 0, len(docs))
	for _, d := range docs {
		if !d.UpdatedAt.Before(cutoff) {
			kept = append(kept, d)
		}
	}
	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].UpdatedAt.After(kept[j].UpdatedAt)
	})
	if len(kept) > maxDocuments {
		kept = kept[:maxDocuments]
	}
	return kept
}

// evictionCandidate picks the index of the document to evict: DRAFT before
// SUBMITTED before REJECTED before APPROVED, oldest UpdatedAt breaking ties
// within a status. The in-flight document is never eligible. Returns -1
// when nothing can be evicted.
func evictionCandidate(docs []model.AttendanceDocument, inFlightID string) int {
	best := -1
	for i := range docs {
		if docs[i].ID == inFlightID {
			continue
		}
		if best < 0 {
			best = i
			continue
		}
		pi, pb := docs[i].Status.EvictionPriority(), docs[best].Status.EvictionPriority()
		if pi > pb || (pi == pb && docs[i].UpdatedAt.Before(docs[best].UpdatedAt)) {
			best = i
		}
	}
	return best
}

func hasLegacyIDs(docs []model.AttendanceDocument) bool {
	for _, d := range docs {
		if !strings.HasPrefix(d.ID, model.DocumentIDPrefix) {
			return true
		}
	}
	return false
}
