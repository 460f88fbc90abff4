package smoke

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/okian/items/internal/domain/model"
)

// namePrefix marks items created by a smoke run.
const namePrefix = "smoke-"

// generateItems creates n inputs with unique names. Every third item has no
// description so absent fields are exercised too.
func generateItems(n int, stats *Stats) []model.NewItem {
	runID := uuid.NewString()
	items := make([]model.NewItem, n)
	for i := range items {
		items[i].Name = model.Text(namePrefix + uuid.NewString())
		if i%3 != 2 {
			items[i].Description = model.Text(fmt.Sprintf("run %s item %d", runID, i))
		}
	}
	stats.ItemsGenerated = n
	return items
}
