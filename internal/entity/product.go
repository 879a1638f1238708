package entity

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
	"time"
)

type Category string

const (
	CategoryBudgetMeals Category = "Budget Meals"
	CategorySilogMeals  Category = "Silog Meals"
	CategoryAlaCarte    Category = "Ala Carte"
	CategoryBeverages   Category = "Beverages"
)

// CategoryAll is accepted by the menu listing and means no category filter.
const CategoryAll Category = "All"

func (c Category) Valid() bool {
	switch c {
	case CategoryBudgetMeals, CategorySilogMeals, CategoryAlaCarte, CategoryBeverages:
		return true
	}
	return false
}

type Product struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Slug        string             `bson:"productId" json:"productId" validate:"required"`
	Name        string             `bson:"name" json:"name" validate:"required"`
	Description string             `bson:"description" json:"description" validate:"required"`
	Price       float64            `bson:"price" json:"price" validate:"gt=0"`
	Category    Category           `bson:"category" json:"category" validate:"required"`
	Image       string             `bson:"image,omitempty" json:"image,omitempty"`
	Addons      []Addon            `bson:"addons,omitempty" json:"addons,omitempty" validate:"dive"`
	IsAvailable bool               `bson:"isAvailable" json:"isAvailable"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Addon looks up one of the product's addons by name.
func (p *Product) Addon(name string) (Addon, bool) {
	for _, a := range p.Addons {
		if a.Name == name {
			return a, true
		}
	}
	return Addon{}, false
}
