package services

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/gul251/nutrimate-backend/internal/database"
	"github.com/gul251/nutrimate-backend/internal/models"
)

// ErrUnauthenticated is returned before any network access when an
// operation that needs an identity is called without one.
var ErrUnauthenticated = errors.New("no authenticated user")

// ErrProfileNotFound distinguishes a missing profile document from a
// request failure.
var ErrProfileNotFound = errors.New("profile not found")

// ErrEmailTaken is returned when an identity insert loses the race against
// the unique email index.
var ErrEmailTaken = errors.New("email already registered")

const (
	usersCollection      = "users"
	mealPlansCollection  = "mealPlans"
	weightLogsCollection = "weightLogs"
	favoritesCollection  = "favorites"
	mealsCollection      = "meals"

	// DefaultWeightLogLimit bounds GetWeightLogs when the caller passes 0.
	DefaultWeightLogLimit = 30
)

// ProfileSeed carries the signup form fields used to initialize a profile.
type ProfileSeed struct {
	Name      string
	Weight    float64
	Goal      string
	FoodTypes []string
}

// ProfileUpdate is a partial profile edit. Nil fields are left untouched
// (merge semantics, not replace semantics).
type ProfileUpdate struct {
	Name      *string   `json:"name,omitempty"`
	Age       *int      `json:"age,omitempty"`
	Height    *float64  `json:"height,omitempty"`
	Weight    *float64  `json:"weight,omitempty"`
	Activity  *string   `json:"activity,omitempty"`
	Diet      *string   `json:"diet,omitempty"`
	Goal      *string   `json:"goal,omitempty"`
	FoodTypes *[]string `json:"foodTypes,omitempty"`
}

// CreateIdentity inserts the identity document at signup. The profile seed
// is written in a second step (SeedProfile); if that write fails the
// identity still exists. That two-step is accepted, not a transaction.
func CreateIdentity(ctx context.Context, uid, email, passwordHash string) error {
	now := time.Now()
	doc := models.UserProfile{
		UID:          uid,
		Email:        email,
		PasswordHash: passwordHash,
		Goal:         models.DefaultGoal,
		FoodTypes:    []string{},
		CreatedAt:    now,
		UpdatedAt:    now,
		LastLogin:    now,
	}
	_, err := database.DB.Collection(usersCollection).InsertOne(ctx, doc)
	if mongo.IsDuplicateKeyError(err) {
		return ErrEmailTaken
	}
	return err
}

// EnsureUserIndexes creates the unique email index so two concurrent
// signups for the same address cannot both insert. Run once at startup.
func EnsureUserIndexes(ctx context.Context) error {
	_, err := database.DB.Collection(usersCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

// SeedProfile fills in the signup form fields on a fresh identity document.
func SeedProfile(ctx context.Context, uid string, seed ProfileSeed) error {
	if uid == "" {
		return ErrUnauthenticated
	}

	goal := seed.Goal
	if goal == "" {
		goal = models.DefaultGoal
	}
	foodTypes := seed.FoodTypes
	if foodTypes == nil {
		foodTypes = []string{}
	}

	_, err := database.DB.Collection(usersCollection).UpdateOne(ctx,
		bson.M{"_id": uid},
		bson.M{"$set": bson.M{
			"name":       seed.Name,
			"weight":     seed.Weight,
			"goal":       goal,
			"foodTypes":  foodTypes,
			"updated_at": time.Now(),
		}})
	return err
}

// FindUserByEmail looks up an identity for sign-in. Returns
// ErrProfileNotFound when no account matches.
func FindUserByEmail(ctx context.Context, email string) (*models.UserProfile, error) {
	var profile models.UserProfile
	err := database.DB.Collection(usersCollection).FindOne(ctx, bson.M{"email": email}).Decode(&profile)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}
	return &profile, nil
}

// UpdateLastLogin stamps the last access time on sign-in.
func UpdateLastLogin(ctx context.Context, uid string) error {
	if uid == "" {
		return ErrUnauthenticated
	}
	_, err := database.DB.Collection(usersCollection).UpdateOne(ctx,
		bson.M{"_id": uid},
		bson.M{"$set": bson.M{"last_login": time.Now()}})
	return err
}

// GetUserProfile returns the profile for the current identity.
func GetUserProfile(ctx context.Context, uid string) (*models.UserProfile, error) {
	if uid == "" {
		return nil, ErrUnauthenticated
	}

	var profile models.UserProfile
	err := database.DB.Collection(usersCollection).FindOne(ctx, bson.M{"_id": uid}).Decode(&profile)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}
	return &profile, nil
}

// buildProfileUpdate converts a partial edit into a $set document. Only
// fields the caller actually provided are included, so previously-set
// fields survive the update.
func buildProfileUpdate(update ProfileUpdate) bson.M {
	set := bson.M{}
	if update.Name != nil {
		set["name"] = *update.Name
	}
	if update.Age != nil {
		set["age"] = *update.Age
	}
	if update.Height != nil {
		set["height"] = *update.Height
	}
	if update.Weight != nil {
		set["weight"] = *update.Weight
	}
	if update.Activity != nil {
		set["activity"] = *update.Activity
	}
	if update.Diet != nil {
		set["diet"] = *update.Diet
	}
	if update.Goal != nil {
		set["goal"] = *update.Goal
	}
	if update.FoodTypes != nil {
		set["foodTypes"] = *update.FoodTypes
	}
	set["updated_at"] = time.Now()
	return set
}

// UpdateUserProfile merges the given fields into the existing profile and
// stamps an update time. It never creates a profile: updating a missing
// document surfaces ErrProfileNotFound.
func UpdateUserProfile(ctx context.Context, uid string, update ProfileUpdate) error {
	if uid == "" {
		return ErrUnauthenticated
	}

	res, err := database.DB.Collection(usersCollection).UpdateOne(ctx,
		bson.M{"_id": uid},
		bson.M{"$set": buildProfileUpdate(update)})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrProfileNotFound
	}
	return nil
}

// SaveGoals merges the goals sub-object into the profile.
func SaveGoals(ctx context.Context, uid string, goals models.Goals) error {
	if uid == "" {
		return ErrUnauthenticated
	}

	res, err := database.DB.Collection(usersCollection).UpdateOne(ctx,
		bson.M{"_id": uid},
		bson.M{"$set": bson.M{
			"goals":      goals,
			"updated_at": time.Now(),
		}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrProfileNotFound
	}
	return nil
}

// AddMealPlan appends an entry to the user's meal plan and returns the
// generated id.
func AddMealPlan(ctx context.Context, uid string, entry models.MealPlan) (string, error) {
	if uid == "" {
		return "", ErrUnauthenticated
	}

	entry.ID = primitive.NewObjectID()
	entry.UserID = uid
	entry.CreatedAt = time.Now()

	if _, err := database.DB.Collection(mealPlansCollection).InsertOne(ctx, entry); err != nil {
		return "", err
	}
	return entry.ID.Hex(), nil
}

// GetMealPlans returns the user's entries, optionally filtered to one
// calendar day, newest first.
func GetMealPlans(ctx context.Context, uid, date string) ([]models.MealPlan, error) {
	if uid == "" {
		return nil, ErrUnauthenticated
	}

	filter := bson.M{"user_id": uid}
	if date != "" {
		filter["date"] = date
	}

	findOptions := options.Find().SetSort(bson.M{"created_at": -1})

	cursor, err := database.DB.Collection(mealPlansCollection).Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	plans := []models.MealPlan{}
	if err = cursor.All(ctx, &plans); err != nil {
		return nil, err
	}
	return plans, nil
}

// DeleteMealPlan removes one entry. Deleting a nonexistent id is not an
// error; a malformed id cannot match anything and is treated the same way.
func DeleteMealPlan(ctx context.Context, uid, id string) error {
	if uid == "" {
		return ErrUnauthenticated
	}

	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil
	}

	_, err = database.DB.Collection(mealPlansCollection).DeleteOne(ctx,
		bson.M{"_id": objID, "user_id": uid})
	return err
}

// AddWeightLog appends a weight measurement and returns the generated id.
func AddWeightLog(ctx context.Context, uid string, weight float64, date string) (string, error) {
	if uid == "" {
		return "", ErrUnauthenticated
	}

	entry := models.WeightLog{
		ID:        primitive.NewObjectID(),
		UserID:    uid,
		Weight:    weight,
		Date:      date,
		CreatedAt: time.Now(),
	}

	if _, err := database.DB.Collection(weightLogsCollection).InsertOne(ctx, entry); err != nil {
		return "", err
	}
	return entry.ID.Hex(), nil
}

// GetWeightLogs returns recent logs ordered by date descending.
func GetWeightLogs(ctx context.Context, uid string, limit int) ([]models.WeightLog, error) {
	if uid == "" {
		return nil, ErrUnauthenticated
	}
	if limit <= 0 {
		limit = DefaultWeightLogLimit
	}

	findOptions := options.Find().
		SetSort(bson.M{"date": -1}).
		SetLimit(int64(limit))

	cursor, err := database.DB.Collection(weightLogsCollection).Find(ctx,
		bson.M{"user_id": uid}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	logs := []models.WeightLog{}
	if err = cursor.All(ctx, &logs); err != nil {
		return nil, err
	}
	return logs, nil
}

// AddFavorite saves a meal to the user's favorites and returns the id.
func AddFavorite(ctx context.Context, uid string, fav models.Favorite) (string, error) {
	if uid == "" {
		return "", ErrUnauthenticated
	}

	fav.ID = primitive.NewObjectID()
	fav.UserID = uid
	fav.AddedAt = time.Now()

	if _, err := database.DB.Collection(favoritesCollection).InsertOne(ctx, fav); err != nil {
		return "", err
	}
	return fav.ID.Hex(), nil
}

// GetFavorites returns the user's favorites, newest first.
func GetFavorites(ctx context.Context, uid string) ([]models.Favorite, error) {
	if uid == "" {
		return nil, ErrUnauthenticated
	}

	findOptions := options.Find().SetSort(bson.M{"added_at": -1})

	cursor, err := database.DB.Collection(favoritesCollection).Find(ctx,
		bson.M{"user_id": uid}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	favorites := []models.Favorite{}
	if err = cursor.All(ctx, &favorites); err != nil {
		return nil, err
	}
	return favorites, nil
}

// RemoveFavorite removes one favorite; idempotent like DeleteMealPlan.
func RemoveFavorite(ctx context.Context, uid, id string) error {
	if uid == "" {
		return ErrUnauthenticated
	}

	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil
	}

	_, err = database.DB.Collection(favoritesCollection).DeleteOne(ctx,
		bson.M{"_id": objID, "user_id": uid})
	return err
}

// GetPublicMeals reads from the shared meals library. No identity needed.
func GetPublicMeals(ctx context.Context, limit int) ([]models.PublicMeal, error) {
	if limit <= 0 {
		limit = 50
	}

	findOptions := options.Find().SetLimit(int64(limit))

	cursor, err := database.DB.Collection(mealsCollection).Find(ctx, bson.M{}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	meals := []models.PublicMeal{}
	if err = cursor.All(ctx, &meals); err != nil {
		return nil, err
	}
	return meals, nil
}
