package memory

import (
	"sync"

	"bookreview-be/internal/entity"
	"bookreview-be/internal/model"

	"github.com/google/uuid"
)

type tables struct {
	users         map[uuid.UUID]entity.User
	readers       map[uuid.UUID]entity.ReaderProfile
	authors       map[uuid.UUID]entity.AuthorProfile
	books         map[uuid.UUID]entity.Book
	assignments   map[uuid.UUID]entity.ReaderAssignment
	purchases     map[uuid.UUID]entity.CreditPurchase
	refunds       map[uuid.UUID]entity.RefundRequest
	auditLogs     []entity.AuditLog
	notifications []model.Notification
	notifTypes    map[string]model.NotificationType
}

func newTables() *tables {
	return &tables{
		users:       make(map[uuid.UUID]entity.User),
		readers:     make(map[uuid.UUID]entity.ReaderProfile),
		authors:     make(map[uuid.UUID]entity.AuthorProfile),
		books:       make(map[uuid.UUID]entity.Book),
		assignments: make(map[uuid.UUID]entity.ReaderAssignment),
		purchases:   make(map[uuid.UUID]entity.CreditPurchase),
		refunds:     make(map[uuid.UUID]entity.RefundRequest),
		notifTypes:  make(map[string]model.NotificationType),
	}
}

func cloneMap[K comparable, V any](src map[K]V) map[K]V {
	dst := make(map[K]V, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

// clone copies every table. Stored values never share mutable state, pointer
// fields are replaced rather than written through.
func (t *tables) clone() *tables {
	return &tables{
		users:         cloneMap(t.users),
		readers:       cloneMap(t.readers),
		authors:       cloneMap(t.authors),
		books:         cloneMap(t.books),
		assignments:   cloneMap(t.assignments),
		purchases:     cloneMap(t.purchases),
		refunds:       cloneMap(t.refunds),
		auditLogs:     append([]entity.AuditLog(nil), t.auditLogs...),
		notifications: append([]model.Notification(nil), t.notifications...),
		notifTypes:    cloneMap(t.notifTypes),
	}
}

// Store is a process-local database used by tests and STORAGE_DRIVER=memory.
// Transactions are serialized against each other and roll back by restoring
// the snapshot taken on Begin. Writes outside a transaction wait for the open
// transaction to finish, so a rollback never discards them.
type Store struct {
	mu   sync.RWMutex
	txMu sync.Mutex
	data *tables
}

func NewStore() *Store {
	return &Store{data: newTables()}
}

func (s *Store) snapshot() *tables {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.clone()
}

func (s *Store) restore(t *tables) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = t
}

// lockWrite takes the table lock for a write and returns the release func.
// Callers outside a transaction also hold txMu; txMu is always taken before mu.
func (s *Store) lockWrite(inTx bool) func() {
	if !inTx {
		s.txMu.Lock()
	}
	s.mu.Lock()
	return func() {
		s.mu.Unlock()
		if !inTx {
			s.txMu.Unlock()
		}
	}
}
