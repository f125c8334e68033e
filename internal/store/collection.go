package store

import (
	"github.com/google/uuid"

	"github.com/spec-kit/slot-swap-service/pkg/util"
)

// Entity is implemented by records the store can hold. SetID is only called
// by Insert; Clone must return a deep copy.
type Entity[T any] interface {
	GetID() string
	SetID(id string)
	Clone() T
}

// Collection is an ordered, id-keyed set of records scoped to one
// transaction. Enumeration order is insertion order and is stable across
// reads absent mutation.
type Collection[T Entity[T]] struct {
	name string
	recs []T
	mark func()
}

func newCollection[T Entity[T]](name string, recs []T) *Collection[T] {
	return &Collection[T]{name: name, recs: recs}
}

func (c *Collection[T]) clone(mark func()) *Collection[T] {
	recs := make([]T, len(c.recs))
	for i, r := range c.recs {
		recs[i] = r.Clone()
	}
	return &Collection[T]{name: c.name, recs: recs, mark: mark}
}

func (c *Collection[T]) indexOf(id string) int {
	for i, r := range c.recs {
		if r.GetID() == id {
			return i
		}
	}
	return -1
}

func (c *Collection[T]) touch() {
	if c.mark != nil {
		c.mark()
	}
}

// Len returns the number of records.
func (c *Collection[T]) Len() int {
	return len(c.recs)
}

// Insert assigns rec a freshly generated unique id and appends it. The id
// space is collision-checked even though generated ids should never collide.
func (c *Collection[T]) Insert(rec T) (T, error) {
	rec.SetID(uuid.NewString())
	if c.indexOf(rec.GetID()) >= 0 {
		var zero T
		return zero, util.NewDuplicateID(c.name, rec.GetID())
	}
	c.recs = append(c.recs, rec)
	c.touch()
	return rec, nil
}

// Find returns all records matching pred, in insertion order. A nil pred
// matches everything.
func (c *Collection[T]) Find(pred func(T) bool) []T {
	out := make([]T, 0, len(c.recs))
	for _, r := range c.recs {
		if pred == nil || pred(r) {
			out = append(out, r)
		}
	}
	return out
}

// FindOne returns the first record matching pred.
func (c *Collection[T]) FindOne(pred func(T) bool) (T, bool) {
	for _, r := range c.recs {
		if pred == nil || pred(r) {
			return r, true
		}
	}
	var zero T
	return zero, false
}

// Get returns the record with the given id.
func (c *Collection[T]) Get(id string) (T, bool) {
	if i := c.indexOf(id); i >= 0 {
		return c.recs[i], true
	}
	var zero T
	return zero, false
}

// Update applies mutate to the record with the given id.
func (c *Collection[T]) Update(id string, mutate func(T)) (T, error) {
	i := c.indexOf(id)
	if i < 0 {
		var zero T
		return zero, util.NewNotFound(c.name+" record", map[string]any{"id": id})
	}
	mutate(c.recs[i])
	c.touch()
	return c.recs[i], nil
}

// Remove deletes the record with the given id.
func (c *Collection[T]) Remove(id string) error {
	i := c.indexOf(id)
	if i < 0 {
		return util.NewNotFound(c.name+" record", map[string]any{"id": id})
	}
	c.recs = append(c.recs[:i], c.recs[i+1:]...)
	c.touch()
	return nil
}
