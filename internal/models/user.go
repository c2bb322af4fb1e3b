package models

import "time"

// Goals holds the user's daily nutrition targets.
type Goals struct {
	CalorieTarget float64 `bson:"calorieTarget" json:"calorieTarget"`
	ProteinTarget float64 `bson:"proteinTarget" json:"proteinTarget"`
}

// UserProfile is the per-identity profile document. The document id is the
// identity's uid, so ownership is implicit in the key; there is no separate
// foreign key. Numeric fields default to zero so downstream arithmetic
// (calorie totals, targets) stays well-defined.
type UserProfile struct {
	UID          string    `bson:"_id" json:"id"`
	Name         string    `bson:"name" json:"name"`
	Email        string    `bson:"email" json:"email"`
	PasswordHash string    `bson:"password_hash" json:"-"` // Don't return password hash in JSON
	Age          int       `bson:"age" json:"age"`
	Height       float64   `bson:"height" json:"height"` // cm
	Weight       float64   `bson:"weight" json:"weight"` // kg
	Activity     string    `bson:"activity,omitempty" json:"activity,omitempty"`
	Diet         string    `bson:"diet,omitempty" json:"diet,omitempty"`
	Goal         string    `bson:"goal" json:"goal"`
	FoodTypes    []string  `bson:"foodTypes" json:"foodTypes"`
	Goals        Goals     `bson:"goals,omitempty" json:"goals"`
	Disabled     bool      `bson:"disabled,omitempty" json:"-"`
	CreatedAt    time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time `bson:"updated_at" json:"updated_at"`
	LastLogin    time.Time `bson:"last_login" json:"last_login"`
}

// DefaultGoal is seeded at signup when the user picked nothing.
const DefaultGoal = "Maintain Weight"
