package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/gul251/nutrimate-backend/internal/database"
)

// runWithMockStore points the package store at a command-monitoring mock
// deployment so tests can assert the exact queries issued.
func runWithMockStore(t *testing.T, name string, fn func(mt *mtest.T)) {
	t.Helper()
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	mt.Run(name, func(mt *mtest.T) {
		orig := database.DB
		database.DB = mt.DB
		defer func() { database.DB = orig }()
		fn(mt)
	})
}

func TestGetMealPlansQueryNewestFirstWithDateFilter(t *testing.T) {
	runWithMockStore(t, "date filter", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, mt.DB.Name()+".mealPlans", mtest.FirstBatch))

		_, err := GetMealPlans(context.Background(), "user-1", "2024-05-01")
		require.NoError(mt, err)

		evt := mt.GetStartedEvent()
		require.NotNil(mt, evt)
		require.Equal(mt, "find", evt.CommandName)

		filter := evt.Command.Lookup("filter").Document()
		assert.Equal(mt, "user-1", filter.Lookup("user_id").StringValue())
		assert.Equal(mt, "2024-05-01", filter.Lookup("date").StringValue())

		sort := evt.Command.Lookup("sort").Document()
		assert.EqualValues(mt, -1, sort.Lookup("created_at").Int32())
	})
}

func TestGetMealPlansQueryOmitsDateWhenUnfiltered(t *testing.T) {
	runWithMockStore(t, "no date", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, mt.DB.Name()+".mealPlans", mtest.FirstBatch))

		_, err := GetMealPlans(context.Background(), "user-1", "")
		require.NoError(mt, err)

		evt := mt.GetStartedEvent()
		require.NotNil(mt, evt)

		filter := evt.Command.Lookup("filter").Document()
		assert.Equal(mt, "user-1", filter.Lookup("user_id").StringValue())
		_, lookupErr := filter.LookupErr("date")
		assert.Error(mt, lookupErr, "unfiltered read must not constrain the date")
	})
}

func TestGetWeightLogsQueryDateDescWithDefaultLimit(t *testing.T) {
	runWithMockStore(t, "weight logs", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, mt.DB.Name()+".weightLogs", mtest.FirstBatch))

		_, err := GetWeightLogs(context.Background(), "user-1", 0)
		require.NoError(mt, err)

		evt := mt.GetStartedEvent()
		require.NotNil(mt, evt)
		require.Equal(mt, "find", evt.CommandName)

		sort := evt.Command.Lookup("sort").Document()
		assert.EqualValues(mt, -1, sort.Lookup("date").Int32())

		limit, ok := evt.Command.Lookup("limit").AsInt64OK()
		require.True(mt, ok)
		assert.EqualValues(mt, DefaultWeightLogLimit, limit)
	})
}

func TestGetFavoritesQueryNewestFirst(t *testing.T) {
	runWithMockStore(t, "favorites", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, mt.DB.Name()+".favorites", mtest.FirstBatch))

		_, err := GetFavorites(context.Background(), "user-1")
		require.NoError(mt, err)

		evt := mt.GetStartedEvent()
		require.NotNil(mt, evt)

		sort := evt.Command.Lookup("sort").Document()
		assert.EqualValues(mt, -1, sort.Lookup("added_at").Int32())
	})
}

func TestCreateIdentityMapsDuplicateEmail(t *testing.T) {
	runWithMockStore(t, "duplicate email", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "E11000 duplicate key error collection: users index: email_1",
		}))

		err := CreateIdentity(context.Background(), "uid-1", "a@b.co", "hash")
		assert.ErrorIs(mt, err, ErrEmailTaken)
	})
}

func TestEnsureUserIndexesCreatesUniqueEmailIndex(t *testing.T) {
	runWithMockStore(t, "user indexes", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		require.NoError(mt, EnsureUserIndexes(context.Background()))

		evt := mt.GetStartedEvent()
		require.NotNil(mt, evt)
		require.Equal(mt, "createIndexes", evt.CommandName)

		idx := evt.Command.Lookup("indexes").Array().Index(0).Value().Document()
		assert.True(mt, idx.Lookup("unique").Boolean())
		assert.EqualValues(mt, 1, idx.Lookup("key").Document().Lookup("email").Int32())
	})
}
