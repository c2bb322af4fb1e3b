package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MealPlan is one logged meal under a user's plan for a calendar day.
type MealPlan struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    string             `bson:"user_id" json:"-"`
	Name      string             `bson:"name" json:"name"`
	Calories  float64            `bson:"calories" json:"calories"`
	Protein   float64            `bson:"protein" json:"protein"` // grams
	Date      string             `bson:"date" json:"date"`       // YYYY-MM-DD
	MealType  string             `bson:"mealType,omitempty" json:"mealType,omitempty"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
}

// WeightLog is one append-only weight measurement.
type WeightLog struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    string             `bson:"user_id" json:"-"`
	Weight    float64            `bson:"weight" json:"weight"` // kg
	Date      string             `bson:"date" json:"date"`     // YYYY-MM-DD
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
}

// Favorite is a saved meal. Fields mirror MealPlan but nothing beyond the
// name is required; whatever the user saved comes back as-is.
type Favorite struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID   string             `bson:"user_id" json:"-"`
	Name     string             `bson:"name" json:"name"`
	Calories float64            `bson:"calories" json:"calories"`
	Protein  float64            `bson:"protein" json:"protein"`
	MealType string             `bson:"mealType,omitempty" json:"mealType,omitempty"`
	AddedAt  time.Time          `bson:"added_at" json:"added_at"`
}

// PublicMeal lives in the shared meals collection; it is not owned by any
// user and requires no identity to read.
type PublicMeal struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name     string             `bson:"name" json:"name"`
	Calories float64            `bson:"calories" json:"calories"`
	Protein  float64            `bson:"protein" json:"protein"`
	Image    string             `bson:"img,omitempty" json:"img,omitempty"`
}

// CatalogMeal is a row in the alternate SQL backend's global meals table.
type CatalogMeal struct {
	ID       int     `json:"id"`
	Name     string  `json:"name"`
	Calories int     `json:"cal"`
	Protein  float64 `json:"protein"`
	Price    float64 `json:"price"`
	Image    string  `json:"img"`
}

// CatalogProfile is a row in the alternate SQL backend's users table.
// No relation to the document-store identity model.
type CatalogProfile struct {
	ID       int     `json:"id"`
	Name     string  `json:"name"`
	Age      int     `json:"age"`
	Height   int     `json:"height"`
	Weight   float64 `json:"weight"`
	Activity string  `json:"activity"`
	Diet     string  `json:"diet"`
	Gender   string  `json:"gender"`
}

// Nutrition is the structured estimate extracted from an AI reply.
type Nutrition struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fats     float64 `json:"fats"`
}
