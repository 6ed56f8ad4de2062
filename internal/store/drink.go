package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"gorm.io/gorm"

	ierrors "github.com/jamesprial/coffee-shop/internal/errors"
	"github.com/jamesprial/coffee-shop/internal/model"
)

// drinkRecord is the row layout of the drinks table. The recipe is stored
// as a JSON array in a text column.
type drinkRecord struct {
	ID     int64  `gorm:"primaryKey;autoIncrement"`
	Title  string `gorm:"size:80;not null;uniqueIndex"`
	Recipe string `gorm:"type:text;not null"`
}

func (drinkRecord) TableName() string {
	return "drinks"
}

func toRecord(d *model.Drink) (*drinkRecord, error) {
	recipe := d.Recipe
	if recipe == nil {
		recipe = model.Recipe{}
	}
	data, err := json.Marshal(recipe)
	if err != nil {
		return nil, fmt.Errorf("encode recipe: %w", err)
	}
	return &drinkRecord{ID: d.ID, Title: d.Title, Recipe: string(data)}, nil
}

func (r *drinkRecord) toModel() (*model.Drink, error) {
	var recipe model.Recipe
	if err := json.Unmarshal([]byte(r.Recipe), &recipe); err != nil {
		return nil, fmt.Errorf("decode recipe of drink %d: %w", r.ID, err)
	}
	return &model.Drink{ID: r.ID, Title: r.Title, Recipe: recipe}, nil
}

type txKey struct{}

// DrinkRepository is the gorm-backed store for drinks. It holds the pool,
// never a session: each call uses the transaction bound to ctx by WithinTx,
// or a fresh one.
type DrinkRepository struct {
	db *gorm.DB
}

// NewDrinkRepository creates a repository over db.
func NewDrinkRepository(db *gorm.DB) *DrinkRepository {
	if db == nil {
		panic("store: database cannot be nil")
	}
	return &DrinkRepository{db: db}
}

// conn returns the transaction bound to ctx, or the pool.
func (r *DrinkRepository) conn(ctx context.Context) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx.WithContext(ctx)
	}
	return r.db.WithContext(ctx)
}

// WithinTx runs fn in one transaction. Repository calls made with the
// context passed to fn join it; nested calls use savepoints. The
// transaction commits when fn returns nil and rolls back otherwise.
func (r *DrinkRepository) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.conn(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
}

// ListAll returns every drink ordered by id.
func (r *DrinkRepository) ListAll(ctx context.Context) ([]*model.Drink, error) {
	var records []drinkRecord
	if err := r.conn(ctx).Order("id").Find(&records).Error; err != nil {
		return nil, translate("ListAll", err)
	}

	drinks := make([]*model.Drink, 0, len(records))
	for i := range records {
		d, err := records[i].toModel()
		if err != nil {
			return nil, ierrors.NewStorageError("ListAll", err)
		}
		drinks = append(drinks, d)
	}
	return drinks, nil
}

// FindByID loads a drink. Absence is reported as (nil, false, nil).
func (r *DrinkRepository) FindByID(ctx context.Context, id int64) (*model.Drink, bool, error) {
	var rec drinkRecord
	err := r.conn(ctx).Where("id = ?", id).Take(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, translate("FindByID", err)
	}

	d, err := rec.toModel()
	if err != nil {
		return nil, false, ierrors.NewStorageError("FindByID", err)
	}
	return d, true, nil
}

// Count returns the number of stored drinks.
func (r *DrinkRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.conn(ctx).Model(&drinkRecord{}).Count(&n).Error; err != nil {
		return 0, translate("Count", err)
	}
	return n, nil
}

// Create inserts a drink and returns it with its assigned id.
// A duplicate title is an ErrConflict storage error.
func (r *DrinkRepository) Create(ctx context.Context, title string, recipe model.Recipe) (*model.Drink, error) {
	rec, err := toRecord(&model.Drink{Title: title, Recipe: recipe})
	if err != nil {
		return nil, ierrors.NewStorageError("Create", err)
	}

	err = r.conn(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(rec).Error
	})
	if err != nil {
		return nil, translate("Create", err)
	}

	return &model.Drink{ID: rec.ID, Title: title, Recipe: recipe.Clone()}, nil
}

// Update writes the drink's title and recipe over its row. A row that
// vanished since it was loaded is a NotFoundError.
func (r *DrinkRepository) Update(ctx context.Context, d *model.Drink) error {
	rec, err := toRecord(d)
	if err != nil {
		return ierrors.NewStorageError("Update", err)
	}

	var affected int64
	err = r.conn(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&drinkRecord{}).Where("id = ?", rec.ID).
			Updates(map[string]any{"title": rec.Title, "recipe": rec.Recipe})
		affected = res.RowsAffected
		return res.Error
	})
	if err != nil {
		return translate("Update", err)
	}
	if affected == 0 {
		return ierrors.NewNotFoundError("drink", d.ID)
	}
	return nil
}

// Delete removes the drink's row. Ids are never reused.
func (r *DrinkRepository) Delete(ctx context.Context, d *model.Drink) error {
	var affected int64
	err := r.conn(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ?", d.ID).Delete(&drinkRecord{})
		affected = res.RowsAffected
		return res.Error
	})
	if err != nil {
		return translate("Delete", err)
	}
	if affected == 0 {
		return ierrors.NewNotFoundError("drink", d.ID)
	}
	return nil
}

// translate wraps a gorm error as a storage DomainError.
func translate(op string, err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ierrors.NewConflictError(op, err).WithContext("table", "drinks")
	}
	return ierrors.NewStorageError(op, err).WithContext("table", "drinks")
}
