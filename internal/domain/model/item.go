// Package model contains domain models passed between layers.
package model

import "time"

// MaxTextLength caps the length, in characters, of name and description.
const MaxTextLength = 4096

// Item is the single persisted entity.
//
// ID is the hex form of the store-assigned ObjectID. Name and Description are
// nil when the caller never supplied them, which keeps them out of the JSON
// representation.
type Item struct {
	ID          string    `json:"_id"`
	Name        *string   `json:"name,omitempty"`
	Description *string   `json:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Clone returns a deep copy of the item.
func (i Item) Clone() Item {
	i.Name = cloneText(i.Name)
	i.Description = cloneText(i.Description)
	return i
}

// NewItem holds the caller-supplied fields of an item to create.
type NewItem struct {
	Name        *string `json:"name,omitempty" validate:"omitempty,max=4096"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=4096"`
}

// Build turns the input into an Item with the given identity.
func (n NewItem) Build(id string, createdAt time.Time) Item {
	return Item{
		ID:          id,
		Name:        cloneText(n.Name),
		Description: cloneText(n.Description),
		CreatedAt:   Timestamp(createdAt),
	}
}

// Timestamp normalizes t to UTC with millisecond precision, the resolution
// the document store keeps.
func Timestamp(t time.Time) time.Time {
	return t.UTC().Truncate(time.Millisecond)
}

// Text returns a pointer to s.
func Text(s string) *string { return &s }

func cloneText(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
