package smoke

import (
	"context"
	"errors"
	"fmt"

	"github.com/okian/items/internal/domain/model"
	"github.com/okian/items/pkg/logger"
)

// Verification errors.
var (
	ErrMissingItem   = errors.New("created item missing from list")
	ErrFieldMismatch = errors.New("item field mismatch")
	ErrOrdering      = errors.New("list not ordered by createdAt descending")
	ErrStillPresent  = errors.New("deleted item still listed")
)

// verifyCreated checks that every created item is listed with the fields it
// was created with, and that the list is newest first.
func verifyCreated(ctx context.Context, config *Config, inputs []model.NewItem, created, listed []model.Item) error {
	if err := verifyOrdering(listed); err != nil {
		return err
	}

	byID := make(map[string]model.Item, len(listed))
	for _, item := range listed {
		byID[item.ID] = item
	}

	for i, c := range created {
		if c.ID == "" {
			continue
		}
		got, ok := byID[c.ID]
		if !ok {
			return fmt.Errorf("%w: %s", ErrMissingItem, c.ID)
		}
		if !sameText(got.Name, inputs[i].Name) || !sameText(got.Description, inputs[i].Description) {
			return fmt.Errorf("%w: %s", ErrFieldMismatch, c.ID)
		}
		if !got.CreatedAt.Equal(c.CreatedAt) {
			return fmt.Errorf("%w: %s createdAt %s != %s", ErrFieldMismatch, c.ID, got.CreatedAt, c.CreatedAt)
		}
	}

	config.log().Info(ctx, "listed items verified", logger.Int("listed", len(listed)))
	return nil
}

// verifyOrdering checks that adjacent items never increase in createdAt.
func verifyOrdering(items []model.Item) error {
	for i := 1; i < len(items); i++ {
		if items[i].CreatedAt.After(items[i-1].CreatedAt) {
			return fmt.Errorf("%w: index %d (%s) after index %d (%s)", ErrOrdering,
				i, items[i].CreatedAt, i-1, items[i-1].CreatedAt)
		}
	}
	return nil
}

// verifyDeleted checks that none of the deleted ids is listed.
func verifyDeleted(created, listed []model.Item) error {
	gone := make(map[string]struct{}, len(created))
	for _, c := range created {
		if c.ID != "" {
			gone[c.ID] = struct{}{}
		}
	}
	for _, item := range listed {
		if _, ok := gone[item.ID]; ok {
			return fmt.Errorf("%w: %s", ErrStillPresent, item.ID)
		}
	}
	return nil
}

func sameText(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
