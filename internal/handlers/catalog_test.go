package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gul251/nutrimate-backend/internal/database"
	"github.com/gul251/nutrimate-backend/internal/models"
)

func withMockCatalogDB(t *testing.T) sqlmock.Sqlmock {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	orig := database.PostgresDB
	database.PostgresDB = db
	t.Cleanup(func() {
		database.PostgresDB = orig
		db.Close()
	})
	return mock
}

func TestCatalogRejectsUnknownAction(t *testing.T) {
	for _, action := range []string{"", "drop_tables", "fetch"} {
		req := httptest.NewRequest(http.MethodGet, "/api/catalog?action="+action, nil)
		w := httptest.NewRecorder()
		Catalog(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code, "action %q", action)
		body := decodeEnvelope(t, w)
		assert.Equal(t, "error", body["status"])
		assert.Equal(t, "Invalid action", body["message"])
	}
}

func TestCatalogSaveProfileRequiresName(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/catalog?action=save_profile",
		strings.NewReader(`{"age": 30}`))
	w := httptest.NewRecorder()
	Catalog(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	body := decodeEnvelope(t, w)
	assert.Equal(t, "error", body["status"])
}

func TestCatalogSaveProfileUpdatesByUserID(t *testing.T) {
	mock := withMockCatalogDB(t)
	mock.ExpectExec("UPDATE users SET").
		WithArgs("Ravi", 28, 175, 70.0, "Moderate", "veg", "male", 7).
		WillReturnResult(sqlmock.NewResult(0, 1))

	req := httptest.NewRequest(http.MethodPost, "/api/catalog?action=save_profile",
		strings.NewReader(`{"user_id":7,"name":"Ravi","age":28,"height":175,"weight":70,"activity":"Moderate","diet":"veg","gender":"male"}`))
	w := httptest.NewRecorder()
	Catalog(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	body := decodeEnvelope(t, w)
	assert.Equal(t, "success", body["status"])
	assert.EqualValues(t, 7, body["user_id"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCatalogAddMealRequiresName(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/catalog?action=add_meal",
		strings.NewReader(`{"cal": 500}`))
	w := httptest.NewRecorder()
	Catalog(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCatalogAddMealReturnsGeneratedID(t *testing.T) {
	mock := withMockCatalogDB(t)
	mock.ExpectQuery("INSERT INTO meals").
		WithArgs("Salad", 150, 5.0, 99.0, "").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(12))

	req := httptest.NewRequest(http.MethodPost, "/api/catalog?action=add_meal",
		strings.NewReader(`{"name":"Salad","cal":150,"protein":5,"price":99,"img":""}`))
	w := httptest.NewRecorder()
	Catalog(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	body := decodeEnvelope(t, w)
	assert.Equal(t, "success", body["status"])
	assert.EqualValues(t, 12, body["meal_id"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCatalogFetchMealsReturnsBareArrayNewestFirst(t *testing.T) {
	mock := withMockCatalogDB(t)
	mock.ExpectQuery("FROM meals ORDER BY id DESC").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "cal", "protein", "price", "img"}).
			AddRow(2, "Salad", 150, 5.0, 99.0, "").
			AddRow(1, "Oats", 300, 10.0, 49.0, ""))

	req := httptest.NewRequest(http.MethodGet, "/api/catalog?action=fetch_meals", nil)
	w := httptest.NewRecorder()
	Catalog(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var meals []models.CatalogMeal
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &meals))
	require.Len(t, meals, 2)
	assert.Equal(t, 2, meals[0].ID)
	assert.Equal(t, "Salad", meals[0].Name)
	assert.Equal(t, 1, meals[1].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCatalogDeleteMealAcceptsMealIDBody(t *testing.T) {
	mock := withMockCatalogDB(t)
	mock.ExpectExec("DELETE FROM meals").
		WithArgs(5).
		WillReturnResult(sqlmock.NewResult(0, 1))

	req := httptest.NewRequest(http.MethodPost, "/api/catalog?action=delete_meal",
		strings.NewReader(`{"meal_id": 5}`))
	w := httptest.NewRecorder()
	Catalog(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	body := decodeEnvelope(t, w)
	assert.Equal(t, "success", body["status"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCatalogDeleteMealRejectsBadID(t *testing.T) {
	for _, payload := range []string{`{}`, `{"meal_id": 0}`, `{"meal_id": -1}`, `not json`} {
		req := httptest.NewRequest(http.MethodPost, "/api/catalog?action=delete_meal", strings.NewReader(payload))
		w := httptest.NewRecorder()
		Catalog(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code, "payload %q", payload)
	}
}

func TestCatalogLoadProfileByUserID(t *testing.T) {
	mock := withMockCatalogDB(t)
	mock.ExpectQuery("FROM users WHERE id").
		WithArgs(7).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "age", "height", "weight", "activity", "diet", "gender"}).
			AddRow(7, "Ravi", 28, 175, 70.0, "Moderate", "veg", "male"))

	req := httptest.NewRequest(http.MethodGet, "/api/catalog?action=load_profile&user_id=7", nil)
	w := httptest.NewRecorder()
	Catalog(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var profile models.CatalogProfile
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &profile))
	assert.Equal(t, 7, profile.ID)
	assert.Equal(t, "Ravi", profile.Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCatalogLoadProfileRejectsBadID(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/catalog?action=load_profile&user_id=abc", nil)
	w := httptest.NewRecorder()
	Catalog(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
