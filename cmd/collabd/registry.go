package main

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"collabotp/pkg/logging"
	"collabotp/pkg/otext"
	"collabotp/pkg/session"
	"collabotp/pkg/store"
	"collabotp/pkg/transport"
)

// document is one in-memory session plus the bookkeeping the registry's
// cleaner needs, the same pairing as the teacher's Document
// (LastAccessed + *Rustpad).
type document struct {
	lastAccessed time.Time
	sess         *session.Session
	transport    *transport.Transport
	cancelRun    context.CancelFunc
}

// registry maps document ids to live sessions, creating and persisting
// them on demand — the demo server's directory service (spec.md §1 lists
// directory services as an external collaborator the core module never
// depends on; this is that collaborator, not part of the session layer).
type registry struct {
	mu   sync.Mutex
	docs map[string]*document

	store *store.Store
	log   *logging.Logger
	cfg   Config
}

func newRegistry(cfg Config, st *store.Store, log *logging.Logger) *registry {
	return &registry{
		docs:  make(map[string]*document),
		store: st,
		log:   log,
		cfg:   cfg,
	}
}

// getOrCreate returns id's session, creating it (and loading any
// persisted snapshot) on first access — the teacher's getOrCreateDocument.
func (r *registry) getOrCreate(ctx context.Context, id string) (*document, error) {
	r.mu.Lock()
	if doc, ok := r.docs[id]; ok {
		doc.lastAccessed = time.Now()
		r.mu.Unlock()
		return doc, nil
	}
	r.mu.Unlock()

	buf := otext.NewBuffer()
	if r.store != nil {
		snap, err := r.store.Load(ctx, id)
		if err != nil {
			r.log.Error("load document", "id", id, "err", err)
		} else if snap != nil {
			buf = snap.Buffer()
			r.log.Info("loaded document from store", "id", id)
		}
	}

	sess := session.New(buf, r.cfg.MaxTotalLogSize, r.cfg.NoopInterval, r.cfg.CleanupInterval)
	tr := transport.New(sess, r.cfg.WSReadTimeout, r.cfg.WSWriteTimeout)

	runCtx, cancel := context.WithCancel(context.Background())
	go func() {
		if err := sess.Run(runCtx); err != nil && runCtx.Err() == nil {
			r.log.Error("session run exited", "id", id, "err", err)
		}
	}()
	if r.store != nil {
		go r.persist(runCtx, id, sess)
	}

	doc := &document{lastAccessed: time.Now(), sess: sess, transport: tr, cancelRun: cancel}

	r.mu.Lock()
	if existing, ok := r.docs[id]; ok {
		r.mu.Unlock()
		cancel()
		return existing, nil
	}
	r.docs[id] = doc
	r.mu.Unlock()

	return doc, nil
}

// text returns id's current text, preferring the live in-memory session
// and falling back to a persisted snapshot (the teacher's handleText).
func (r *registry) text(ctx context.Context, id string) (string, error) {
	r.mu.Lock()
	doc, ok := r.docs[id]
	r.mu.Unlock()
	if ok {
		return doc.sess.Text(ctx)
	}
	if r.store == nil {
		return "", nil
	}
	snap, err := r.store.Load(ctx, id)
	if err != nil {
		return "", err
	}
	if snap == nil {
		return "", nil
	}
	return snap.Text, nil
}

func (r *registry) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.docs)
}

// persist periodically snapshots sess's text to r.store, jittered to
// avoid many documents saving in lockstep (the teacher's persister).
func (r *registry) persist(ctx context.Context, id string, sess *session.Session) {
	const interval = 3 * time.Second
	const jitter = 1 * time.Second

	last := ""
	for {
		sleep := interval + time.Duration(rand.Int63n(int64(jitter)))
		select {
		case <-ctx.Done():
			return
		case <-time.After(sleep):
		}

		text, err := sess.Text(ctx)
		if err != nil {
			return // session closed
		}
		if text == last {
			continue
		}
		if err := r.store.Save(ctx, id, text, time.Now().Unix()); err != nil {
			r.log.Error("persist document", "id", id, "err", err)
			continue
		}
		last = text
	}
}

// cleanupExpired stops and drops documents untouched for longer than
// expiry, the teacher's cleanupExpiredDocuments.
func (r *registry) cleanupExpired(expiry time.Duration) {
	now := time.Now()
	var stale []string

	r.mu.Lock()
	for id, doc := range r.docs {
		if now.Sub(doc.lastAccessed) > expiry {
			stale = append(stale, id)
		}
	}
	for _, id := range stale {
		r.docs[id].cancelRun()
		delete(r.docs, id)
	}
	r.mu.Unlock()

	if len(stale) > 0 {
		r.log.Info("cleaner removing documents", "ids", stale)
	}
}

// runCleaner ticks cleanupExpired every cfg.CleanupInterval until ctx is done, the teacher's
// StartCleaner.
func (r *registry) runCleaner(ctx context.Context) {
	ticker := time.NewTicker(r.cfg.CleanupInterval)
	defer ticker.Stop()

	expiry := time.Duration(r.cfg.ExpiryHours) * time.Hour
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.cleanupExpired(expiry)
		}
	}
}

// shutdown stops every live session's Run goroutine.
func (r *registry) shutdown() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, doc := range r.docs {
		doc.cancelRun()
	}
}
