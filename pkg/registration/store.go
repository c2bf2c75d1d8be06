package registration

import (
	"fmt"
	"sync"
)

// Store holds the current form state. Every mutation replaces the affected
// slice instead of writing into it, then publishes the new snapshot to all
// subscribers.
//
// writeMu serialises a mutation together with its delivery, so subscribers
// observe snapshots in write order. Subscribers may read the store but must
// not mutate it.
type Store struct {
	writeMu     sync.Mutex
	mu          sync.Mutex
	form        Form
	subscribers []*subscription
}

type subscription struct {
	fn func(Form)
}

// NewStore creates a store seeded with NewForm.
func NewStore() *Store {
	return &Store{form: NewForm()}
}

// Snapshot returns a copy of the current form. Writes to it never reach the
// store or other snapshots.
func (s *Store) Snapshot() Form {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.form.Clone()
}

// Len reports the current number of rows.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.form.Rows)
}

// SetScalarField replaces name or email. No validation happens here.
func (s *Store) SetScalarField(field ScalarField, value string) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	next := s.form
	switch field {
	case FieldName:
		next.Name = value
	case FieldEmail:
		next.Email = value
	default:
		s.mu.Unlock()
		panic(fmt.Sprintf("registration: unknown scalar field %v", field))
	}
	s.form = next
	s.mu.Unlock()

	s.publish(next)
}

// SetRowField replaces a single attribute of one row. row must be in
// [0, Len()); anything else is a caller bug and panics.
func (s *Store) SetRowField(row int, field RowField, value string) {
	if !field.valid() {
		panic(fmt.Sprintf("registration: unknown row field %v", field))
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	if row < 0 || row >= len(s.form.Rows) {
		n := len(s.form.Rows)
		s.mu.Unlock()
		panic(fmt.Sprintf("registration: row index %d out of range [0,%d)", row, n))
	}
	rows := make([]CourseRow, len(s.form.Rows))
	copy(rows, s.form.Rows)
	rows[row] = rows[row].with(field, value)

	next := s.form
	next.Rows = rows
	s.form = next
	s.mu.Unlock()

	s.publish(next)
}

// AppendRow adds one blank row at the end.
func (s *Store) AppendRow() {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	rows := make([]CourseRow, len(s.form.Rows), len(s.form.Rows)+1)
	copy(rows, s.form.Rows)
	rows = append(rows, CourseRow{})

	next := s.form
	next.Rows = rows
	s.form = next
	s.mu.Unlock()

	s.publish(next)
}

// Subscribe registers fn to receive every snapshot produced by a mutation.
// Subscribers run synchronously, in registration order, after the write is
// applied. The returned func removes the subscription.
func (s *Store) Subscribe(fn func(Form)) (cancel func()) {
	if fn == nil {
		return func() {}
	}
	sub := &subscription{fn: fn}

	s.mu.Lock()
	s.subscribers = append(s.subscribers, sub)
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			kept := make([]*subscription, 0, len(s.subscribers))
			for _, existing := range s.subscribers {
				if existing != sub {
					kept = append(kept, existing)
				}
			}
			s.subscribers = kept
		})
	}
}

func (s *Store) publish(form Form) {
	s.mu.Lock()
	subs := append([]*subscription(nil), s.subscribers...)
	s.mu.Unlock()

	for _, sub := range subs {
		sub.fn(form.Clone())
	}
}
