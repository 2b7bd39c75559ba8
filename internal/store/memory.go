package store

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// Memory is an in-process Store used by tests and local development. It
// honors the same compare-and-swap contract as the Postgres store.
type Memory struct {
	mu   sync.Mutex
	docs map[string]*memDoc
	subs []*memSub
	seq  int64
}

type memDoc struct {
	data    []byte
	version int64
	parent  string
	order   int64
}

type memSub struct {
	prefix string
	ch     chan Document
	done   <-chan struct{}
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{docs: make(map[string]*memDoc)}
}

func (m *Memory) Get(ctx context.Context, key string) (Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	doc, ok := m.docs[key]
	if !ok {
		return Document{}, ErrNotFound
	}
	return Document{Key: key, Data: cloneBytes(doc.data), Version: doc.version}, nil
}

func (m *Memory) Put(ctx context.Context, key string, data []byte, expectedVersion int64) (int64, error) {
	m.mu.Lock()
	doc, ok := m.docs[key]
	if expectedVersion == 0 {
		if ok {
			m.mu.Unlock()
			return 0, ErrVersionConflict
		}
		m.seq++
		doc = &memDoc{data: cloneBytes(data), version: 1, order: m.seq}
		m.docs[key] = doc
	} else {
		if !ok {
			m.mu.Unlock()
			return 0, ErrNotFound
		}
		if doc.version != expectedVersion {
			m.mu.Unlock()
			return 0, ErrVersionConflict
		}
		doc.data = cloneBytes(data)
		doc.version++
	}
	version := doc.version
	m.notifyLocked(Document{Key: key, Data: cloneBytes(doc.data), Version: version})
	m.mu.Unlock()
	return version, nil
}

func (m *Memory) Append(ctx context.Context, parentKey string, data []byte) (string, error) {
	key := parentKey + "/" + uuid.NewString()

	m.mu.Lock()
	m.seq++
	doc := &memDoc{data: cloneBytes(data), version: 1, parent: parentKey, order: m.seq}
	m.docs[key] = doc
	m.notifyLocked(Document{Key: key, Data: cloneBytes(doc.data), Version: 1})
	m.mu.Unlock()
	return key, nil
}

func (m *Memory) List(ctx context.Context, parentKey string) ([]Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	type entry struct {
		doc   Document
		order int64
	}
	var entries []entry
	for key, doc := range m.docs {
		if doc.parent == parentKey {
			entries = append(entries, entry{
				doc:   Document{Key: key, Data: cloneBytes(doc.data), Version: doc.version},
				order: doc.order,
			})
		}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].order < entries[j].order })

	docs := make([]Document, len(entries))
	for i, e := range entries {
		docs[i] = e.doc
	}
	return docs, nil
}

func (m *Memory) Subscribe(ctx context.Context, keyPrefix string) (<-chan Document, error) {
	sub := &memSub{prefix: keyPrefix, ch: make(chan Document, 64), done: ctx.Done()}

	m.mu.Lock()
	m.subs = append(m.subs, sub)
	m.mu.Unlock()

	go func() {
		<-ctx.Done()
		m.mu.Lock()
		for i, s := range m.subs {
			if s == sub {
				m.subs = append(m.subs[:i], m.subs[i+1:]...)
				break
			}
		}
		m.mu.Unlock()
		close(sub.ch)
	}()

	return sub.ch, nil
}

// notifyLocked fans a write out to matching subscribers. Deliveries to a
// full subscriber buffer are dropped; subscribers re-read on the next write.
func (m *Memory) notifyLocked(doc Document) {
	for _, sub := range m.subs {
		if !strings.HasPrefix(doc.Key, sub.prefix) {
			continue
		}
		select {
		case <-sub.done:
		case sub.ch <- doc:
		default:
		}
	}
}

func cloneBytes(b []byte) []byte {
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
