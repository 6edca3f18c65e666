package client

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"talentdesk/models"
	"talentdesk/utils"
)

var (
	ErrDialogClosed = errors.New("dialog is not open")
	ErrSubmitting   = errors.New("submit already in progress")
)

type entity[T any] interface {
	*T
	models.Entity
}

// Validator checks a draft before anything is sent.
type Validator[T any] func(draft *T) error

// ValidateTags applies the validate struct tags of the models package,
// the same rules the server enforces.
func ValidateTags[T any](draft *T) error {
	return utils.ValidateStruct(draft)
}

// Dialog is a create/edit form over a Store. Opened without an entity it
// creates; opened with one it sends the whole draft as a PUT.
type Dialog[T any, P entity[T]] struct {
	store    *Store[T]
	validate Validator[T]

	mu         sync.Mutex
	session    uint64
	open       bool
	editing    *T
	draft      T
	submitting bool
	err        error
}

func NewDialog[T any, P entity[T]](store *Store[T], validate Validator[T]) *Dialog[T, P] {
	if validate == nil {
		validate = ValidateTags[T]
	}
	return &Dialog[T, P]{store: store, validate: validate}
}

// Open starts a fresh draft, from the entity when editing. It always
// resets, including when the dialog is already open for another entity.
func (d *Dialog[T, P]) Open(e *T) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.reset()
	d.open = true
	if e != nil {
		original := clone(e)
		d.editing = &original
		d.draft = clone(e)
	}
}

func (d *Dialog[T, P]) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.reset()
}

func (d *Dialog[T, P]) reset() {
	var zero T
	d.session++
	d.open = false
	d.editing = nil
	d.draft = zero
	d.submitting = false
	d.err = nil
}

// Edit changes the draft in place.
func (d *Dialog[T, P]) Edit(fn func(draft *T)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	fn(&d.draft)
}

// Draft returns a copy of the current draft.
func (d *Dialog[T, P]) Draft() T {
	d.mu.Lock()
	defer d.mu.Unlock()
	return clone(&d.draft)
}

func (d *Dialog[T, P]) IsOpen() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.open
}

func (d *Dialog[T, P]) Editing() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.editing != nil
}

func (d *Dialog[T, P]) Submitting() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.submitting
}

// Err is the last validation or request error of this session.
func (d *Dialog[T, P]) Err() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.err
}

// Submit validates the draft and sends it. On success the dialog closes;
// on failure it stays open with the draft intact.
func (d *Dialog[T, P]) Submit(ctx context.Context) (*T, error) {
	d.mu.Lock()
	if !d.open {
		d.mu.Unlock()
		return nil, ErrDialogClosed
	}
	if d.submitting {
		d.mu.Unlock()
		return nil, ErrSubmitting
	}
	draft := clone(&d.draft)
	if err := d.validate(&draft); err != nil {
		d.err = err
		d.mu.Unlock()
		return nil, err
	}
	session := d.session
	editing := d.editing
	d.submitting = true
	d.err = nil
	d.mu.Unlock()

	var saved *T
	var err error
	if editing == nil {
		saved, err = d.store.Create(ctx, &draft)
	} else {
		saved, err = d.store.Update(ctx, P(editing).Header().PublicID, &draft)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if session != d.session {
		// reopened or closed while the request was in flight
		return saved, err
	}
	d.submitting = false
	if err != nil {
		d.err = err
		return nil, err
	}
	d.reset()
	return saved, nil
}

// clone deep-copies through JSON so drafts never share maps or slices
// with the records they came from.
func clone[T any](v *T) T {
	var out T
	b, err := json.Marshal(v)
	if err != nil {
		return *v
	}
	if err := json.Unmarshal(b, &out); err != nil {
		return *v
	}
	return out
}
