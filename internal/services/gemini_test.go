package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gul251/nutrimate-backend/internal/models"
)

func newTestGemini(t *testing.T, handler http.HandlerFunc) (*GeminiService, *httptest.Server) {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)
	return &GeminiService{
		apiKey:  "test-key",
		baseURL: ts.URL,
		client:  ts.Client(),
	}, ts
}

func geminiReply(text string) string {
	return `{"candidates":[{"content":{"parts":[{"text":` + mustJSON(text) + `}]}}]}`
}

func mustJSON(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}

func TestMealPlanWithoutAPIKeyMakesNoRequest(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	}))
	defer ts.Close()

	for _, key := range []string{"", "  ", "YOUR_GEMINI_API_KEY_HERE"} {
		gs := &GeminiService{apiKey: key, baseURL: ts.URL, client: ts.Client()}
		_, err := gs.GenerateMealPlan(context.Background(), models.UserProfile{})
		assert.ErrorIs(t, err, ErrAPIKeyMissing, "key %q", key)
	}

	assert.Zero(t, atomic.LoadInt32(&calls), "unconfigured key must not reach the network")
}

func TestGenerateMealPlanReturnsText(t *testing.T) {
	var gotBody geminiRequest
	gs, _ := newTestGemini(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "test-key", r.URL.Query().Get("key"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Write([]byte(geminiReply("**Breakfast**: Oatmeal\n**Lunch**: Salad")))
	})

	profile := models.UserProfile{Weight: 82, Goal: "Lose Weight", Activity: "High"}
	plan, err := gs.GenerateMealPlan(context.Background(), profile)
	require.NoError(t, err)
	assert.Contains(t, plan, "Oatmeal")

	assert.Equal(t, 0.7, gotBody.GenerationConfig.Temperature)
	assert.Equal(t, 1024, gotBody.GenerationConfig.MaxOutputTokens)
	require.Len(t, gotBody.Contents, 1)
	prompt := gotBody.Contents[0].Parts[0].Text
	assert.Contains(t, prompt, "82 kg")
	assert.Contains(t, prompt, "Lose Weight")
	assert.Contains(t, prompt, "High")
}

func TestGenerateQuickSuggestionDefaultsMealType(t *testing.T) {
	var gotBody geminiRequest
	gs, _ := newTestGemini(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.Write([]byte(geminiReply("1. Eggs")))
	})

	_, err := gs.GenerateQuickSuggestion(context.Background(), "", models.UserProfile{})
	require.NoError(t, err)

	assert.Equal(t, 0.8, gotBody.GenerationConfig.Temperature)
	assert.Equal(t, 512, gotBody.GenerationConfig.MaxOutputTokens)
	assert.Contains(t, gotBody.Contents[0].Parts[0].Text, "breakfast")
}

func TestAPIKeyIsQueryEscaped(t *testing.T) {
	var gotKey, rawQuery string
	gs, _ := newTestGemini(t, func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.URL.Query().Get("key")
		rawQuery = r.URL.RawQuery
		w.Write([]byte(geminiReply("ok")))
	})
	gs.apiKey = "ab+cd/ef&gh"

	_, err := gs.GenerateQuickSuggestion(context.Background(), "lunch", models.UserProfile{})
	require.NoError(t, err)

	assert.Equal(t, "ab+cd/ef&gh", gotKey)
	assert.Contains(t, rawQuery, "ab%2Bcd%2Fef%26gh")
}

func TestEmptyCandidatesIsEmptyResponse(t *testing.T) {
	gs, _ := newTestGemini(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"candidates":[]}`))
	})

	_, err := gs.GenerateMealPlan(context.Background(), models.UserProfile{})
	assert.ErrorIs(t, err, ErrEmptyResponse)
}

func TestAPIErrorMessageIsSurfaced(t *testing.T) {
	gs, _ := newTestGemini(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"message":"API key not valid"}}`))
	})

	_, err := gs.GenerateMealPlan(context.Background(), models.UserProfile{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API key not valid")
	assert.False(t, errors.Is(err, ErrAPIKeyMissing))
}

func TestAnalyzeMealNutritionParsesJSONReply(t *testing.T) {
	gs, _ := newTestGemini(t, func(w http.ResponseWriter, r *http.Request) {
		var body geminiRequest
		json.NewDecoder(r.Body).Decode(&body)
		assert.Equal(t, 0.3, body.GenerationConfig.Temperature)
		assert.Equal(t, 256, body.GenerationConfig.MaxOutputTokens)
		w.Write([]byte(geminiReply("Here you go:\n{\"calories\": 420, \"protein\": 32, \"carbs\": 40, \"fats\": 12}")))
	})

	got, err := gs.AnalyzeMealNutrition(context.Background(), "chicken rice bowl")
	require.NoError(t, err)
	assert.Equal(t, models.Nutrition{Calories: 420, Protein: 32, Carbs: 40, Fats: 12}, got)
}

func TestAnalyzeMealNutritionFallsBackToZeroes(t *testing.T) {
	gs, _ := newTestGemini(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(geminiReply("I cannot estimate that meal, sorry!")))
	})

	got, err := gs.AnalyzeMealNutrition(context.Background(), "mystery dish")
	require.NoError(t, err)
	assert.Equal(t, models.Nutrition{}, got)
}

func TestParseNutritionLabelLines(t *testing.T) {
	text := "Estimated values:\nCalories: 350\nProtein: 25g\nCarbs - 30\nFat: 10.5"
	got, ok := ParseNutrition(text)
	require.True(t, ok)
	assert.Equal(t, 350.0, got.Calories)
	assert.Equal(t, 25.0, got.Protein)
	assert.Equal(t, 30.0, got.Carbs)
	assert.Equal(t, 10.5, got.Fats)
}

func TestParseNutritionGarbage(t *testing.T) {
	_, ok := ParseNutrition("no numbers here at all")
	assert.False(t, ok)
}

func TestBuildMealPlanPromptDefaults(t *testing.T) {
	prompt := BuildMealPlanPrompt(models.UserProfile{})
	assert.Contains(t, prompt, "70 kg")
	assert.Contains(t, prompt, models.DefaultGoal)
	assert.Contains(t, prompt, "Moderate")
	assert.NotContains(t, prompt, "Dietary Preferences")
}

func TestBuildMealPlanPromptFoodTypesBeatDiet(t *testing.T) {
	prompt := BuildMealPlanPrompt(models.UserProfile{
		FoodTypes: []string{"Indian", "Mediterranean"},
		Diet:      "keto",
	})
	assert.Contains(t, prompt, "Indian, Mediterranean")
	assert.NotContains(t, prompt, "keto")
}

func TestFormatMealPlan(t *testing.T) {
	html := FormatMealPlan("**Breakfast**\nOatmeal with berries")
	assert.Equal(t, "<strong>Breakfast</strong><br>Oatmeal with berries", html)
	assert.False(t, strings.Contains(html, "**"))
}
