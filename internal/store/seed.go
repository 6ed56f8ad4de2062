package store

import (
	"context"
	"log/slog"

	"github.com/jamesprial/coffee-shop/internal/model"
)

// SampleDrink is inserted by Seed into an empty table.
var SampleDrink = model.Drink{
	Title:  "water",
	Recipe: model.Recipe{{Name: "water", Color: "blue", Parts: 1}},
}

// Seed inserts SampleDrink when the table is empty. It reports whether a
// row was written.
func Seed(ctx context.Context, repo *DrinkRepository) (bool, error) {
	var seeded bool
	err := repo.WithinTx(ctx, func(ctx context.Context) error {
		n, err := repo.Count(ctx)
		if err != nil {
			return err
		}
		if n > 0 {
			return nil
		}
		d, err := repo.Create(ctx, SampleDrink.Title, SampleDrink.Recipe)
		if err != nil {
			return err
		}
		seeded = true
		slog.Info("seeded drinks table", "id", d.ID, "title", d.Title)
		return nil
	})
	return seeded, err
}
