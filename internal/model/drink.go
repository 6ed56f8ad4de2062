// Package model defines the Drink entity and its public projections.
package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"
)

// MaxTitleLength is the longest title the store accepts.
const MaxTitleLength = 80

// Ingredient is one line of a recipe.
type Ingredient struct {
	Name  string  `json:"name"`
	Color string  `json:"color"`
	Parts float64 `json:"parts"`
}

// Recipe is an ordered list of ingredients.
type Recipe []Ingredient

// UnmarshalJSON accepts either an array of ingredients or a single
// ingredient object, which becomes a one-element recipe.
func (r *Recipe) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var single Ingredient
		if err := json.Unmarshal(trimmed, &single); err != nil {
			return err
		}
		*r = Recipe{single}
		return nil
	}

	var list []Ingredient
	if err := json.Unmarshal(trimmed, &list); err != nil {
		return err
	}
	*r = Recipe(list)
	return nil
}

// Validate checks every ingredient carries a name, a color and positive parts.
func (r Recipe) Validate() error {
	if len(r) == 0 {
		return fmt.Errorf("recipe must contain at least one ingredient")
	}
	for i, ing := range r {
		if strings.TrimSpace(ing.Name) == "" {
			return fmt.Errorf("recipe[%d]: name is required", i)
		}
		if strings.TrimSpace(ing.Color) == "" {
			return fmt.Errorf("recipe[%d]: color is required", i)
		}
		if !(ing.Parts > 0) {
			return fmt.Errorf("recipe[%d]: parts must be a positive number", i)
		}
	}
	return nil
}

// Clone returns a deep copy.
func (r Recipe) Clone() Recipe {
	if r == nil {
		return nil
	}
	out := make(Recipe, len(r))
	copy(out, r)
	return out
}

// Drink is the only persistent entity.
type Drink struct {
	ID     int64
	Title  string
	Recipe Recipe
}

// Validate checks the title and recipe.
func (d *Drink) Validate() error {
	if err := ValidateTitle(d.Title); err != nil {
		return err
	}
	return d.Recipe.Validate()
}

// Clone returns a deep copy.
func (d *Drink) Clone() *Drink {
	if d == nil {
		return nil
	}
	return &Drink{ID: d.ID, Title: d.Title, Recipe: d.Recipe.Clone()}
}

// ValidateTitle checks a title is present and fits the column.
func ValidateTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return fmt.Errorf("title is required")
	}
	if utf8.RuneCountInString(title) > MaxTitleLength {
		return fmt.Errorf("title must be at most %d characters", MaxTitleLength)
	}
	return nil
}

// ShortIngredient omits the ingredient name.
type ShortIngredient struct {
	Color string  `json:"color"`
	Parts float64 `json:"parts"`
}

// ShortDrink is the public projection used by the unauthenticated list.
type ShortDrink struct {
	ID     int64             `json:"id"`
	Title  string            `json:"title"`
	Recipe []ShortIngredient `json:"recipe"`
}

// LongDrink is the full projection returned to authorized callers.
type LongDrink struct {
	ID     int64        `json:"id"`
	Title  string       `json:"title"`
	Recipe []Ingredient `json:"recipe"`
}

// Short projects the drink without ingredient names.
func (d *Drink) Short() ShortDrink {
	recipe := make([]ShortIngredient, 0, len(d.Recipe))
	for _, ing := range d.Recipe {
		recipe = append(recipe, ShortIngredient{Color: ing.Color, Parts: ing.Parts})
	}
	return ShortDrink{ID: d.ID, Title: d.Title, Recipe: recipe}
}

// Long projects the full drink.
func (d *Drink) Long() LongDrink {
	recipe := make([]Ingredient, len(d.Recipe))
	copy(recipe, d.Recipe)
	return LongDrink{ID: d.ID, Title: d.Title, Recipe: recipe}
}
