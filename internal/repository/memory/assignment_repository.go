package memory

import (
	"context"
	"sort"
	"time"

	"bookreview-be/internal/entity"
	"bookreview-be/internal/repository/contract"

	"github.com/google/uuid"
)

type assignmentRepository struct {
	store *Store
	uow   *UnitOfWork
}

func (r *assignmentRepository) Create(ctx context.Context, assignment *entity.ReaderAssignment) error {
	defer r.store.lockWrite(r.uow.inTx())()

	if assignment.Id == uuid.Nil {
		assignment.Id = uuid.New()
	}
	if assignment.Version == 0 {
		assignment.Version = 1
	}
	now := time.Now()
	if assignment.CreatedAt.IsZero() {
		assignment.CreatedAt = now
	}
	if assignment.UpdatedAt.IsZero() {
		assignment.UpdatedAt = now
	}

	row := *assignment
	row.Book, row.ReaderProfile = nil, nil
	r.store.data.assignments[row.Id] = row
	return nil
}

func (r *assignmentRepository) FindById(ctx context.Context, id uuid.UUID) (*entity.ReaderAssignment, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	row, ok := r.store.data.assignments[id]
	if !ok {
		return nil, nil
	}
	return &row, nil
}

func (r *assignmentRepository) FindByIdWithDetails(ctx context.Context, id uuid.UUID) (*entity.ReaderAssignment, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	row, ok := r.store.data.assignments[id]
	if !ok {
		return nil, nil
	}
	return r.store.data.assignmentDetails(row), nil
}

func (r *assignmentRepository) Update(ctx context.Context, assignment *entity.ReaderAssignment) error {
	defer r.store.lockWrite(r.uow.inTx())()

	current, ok := r.store.data.assignments[assignment.Id]
	if !ok || current.Version != assignment.Version {
		return entity.ErrVersionConflict
	}

	assignment.Version++
	assignment.UpdatedAt = time.Now()
	row := *assignment
	row.CreatedAt = current.CreatedAt
	row.Book, row.ReaderProfile = nil, nil
	r.store.data.assignments[row.Id] = row
	return nil
}

func (r *assignmentRepository) FindExceptions(ctx context.Context, filter contract.AssignmentExceptionFilter) ([]*entity.ReaderAssignment, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var matched []*entity.ReaderAssignment
	for _, row := range r.store.data.assignments {
		if !row.HasException() {
			continue
		}
		if filter.BookId != nil && row.BookId != *filter.BookId {
			continue
		}
		if filter.ReaderProfileId != nil && row.ReaderProfileId != *filter.ReaderProfileId {
			continue
		}
		matched = append(matched, r.store.data.assignmentDetails(row))
	}

	sort.SliceStable(matched, func(i, j int) bool {
		if matched[i].UpdatedAt.Equal(matched[j].UpdatedAt) {
			return matched[i].Id.String() < matched[j].Id.String()
		}
		return matched[i].UpdatedAt.After(matched[j].UpdatedAt)
	})

	if filter.Limit > 0 && len(matched) > filter.Limit {
		matched = matched[:filter.Limit]
	}
	return matched, nil
}

// assignmentDetails joins the book, its author and the reader. Callers hold the read lock.
func (t *tables) assignmentDetails(row entity.ReaderAssignment) *entity.ReaderAssignment {
	out := row
	if book, ok := t.books[row.BookId]; ok {
		out.Book = t.bookDetails(book)
	}
	if reader, ok := t.readers[row.ReaderProfileId]; ok {
		out.ReaderProfile = t.readerDetails(reader)
	}
	return &out
}

func (t *tables) bookDetails(book entity.Book) *entity.Book {
	out := book
	if book.AuthorProfileId != nil {
		if author, ok := t.authors[*book.AuthorProfileId]; ok {
			out.AuthorProfile = t.authorDetails(author)
		}
	}
	return &out
}

func (t *tables) readerDetails(reader entity.ReaderProfile) *entity.ReaderProfile {
	out := reader
	if user, ok := t.users[reader.UserId]; ok {
		out.User = &user
	}
	return &out
}

func (t *tables) authorDetails(author entity.AuthorProfile) *entity.AuthorProfile {
	out := author
	if user, ok := t.users[author.UserId]; ok {
		out.User = &user
	}
	return &out
}
