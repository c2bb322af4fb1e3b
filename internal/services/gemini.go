package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/gul251/nutrimate-backend/internal/models"
)

// ErrAPIKeyMissing means the Gemini key is unconfigured (empty or left at
// the setup placeholder). This is a configuration error: no HTTP call is
// attempted.
var ErrAPIKeyMissing = errors.New("gemini api key not configured")

// ErrEmptyResponse means the vendor answered but produced no usable text.
var ErrEmptyResponse = errors.New("no response from AI")

const geminiBaseURL = "https://generativelanguage.googleapis.com/v1beta/models"

// GeminiService talks to the Google generative-language endpoint. No retry
// policy: a failed call is reported once and the caller re-triggers.
type GeminiService struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

func NewGeminiService(apiKey, model string) *GeminiService {
	return &GeminiService{
		apiKey:  apiKey,
		baseURL: fmt.Sprintf("%s/%s:generateContent", geminiBaseURL, model),
		client:  &http.Client{},
	}
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type generationConfig struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type geminiRequest struct {
	Contents         []geminiContent  `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// configured reports whether a usable key is present.
func (gs *GeminiService) configured() bool {
	key := strings.TrimSpace(gs.apiKey)
	return key != "" && key != "YOUR_GEMINI_API_KEY_HERE"
}

// prompt issues a single generation request and returns the raw text at
// candidates[0].content.parts[0].text.
func (gs *GeminiService) prompt(ctx context.Context, text string, temperature float64, maxTokens int) (string, error) {
	if !gs.configured() {
		return "", ErrAPIKeyMissing
	}

	body, err := json.Marshal(geminiRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: text}}}},
		GenerationConfig: generationConfig{
			Temperature:     temperature,
			MaxOutputTokens: maxTokens,
		},
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, gs.baseURL+"?key="+url.QueryEscape(gs.apiKey), bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := gs.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("gemini request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read gemini response: %w", err)
	}

	var parsed geminiResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", fmt.Errorf("failed to decode gemini response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		if parsed.Error != nil && parsed.Error.Message != "" {
			return "", fmt.Errorf("gemini api error: %s", parsed.Error.Message)
		}
		return "", fmt.Errorf("gemini api returned status %d", resp.StatusCode)
	}

	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return "", ErrEmptyResponse
	}

	text = parsed.Candidates[0].Content.Parts[0].Text
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

// GenerateMealPlan builds a prompt from the profile and returns the raw
// generated 1-day meal plan text.
func (gs *GeminiService) GenerateMealPlan(ctx context.Context, profile models.UserProfile) (string, error) {
	return gs.prompt(ctx, BuildMealPlanPrompt(profile), 0.7, 1024)
}

// GenerateQuickSuggestion returns short suggestions for one meal type.
func (gs *GeminiService) GenerateQuickSuggestion(ctx context.Context, mealType string, profile models.UserProfile) (string, error) {
	if mealType == "" {
		mealType = "breakfast"
	}
	return gs.prompt(ctx, BuildQuickSuggestionPrompt(mealType, profile), 0.8, 512)
}

// AnalyzeMealNutrition requests a structured estimate for a meal. A reply
// we cannot parse yields a zeroed record instead of an error so the UI is
// never blocked by a malformed AI reply; configuration and request errors
// still propagate.
func (gs *GeminiService) AnalyzeMealNutrition(ctx context.Context, mealName string) (models.Nutrition, error) {
	prompt := fmt.Sprintf(`Provide a nutritional estimate for: %q

Return ONLY in this exact JSON format:
{
  "calories": <number>,
  "protein": <grams>,
  "carbs": <grams>,
  "fats": <grams>
}`, mealName)

	text, err := gs.prompt(ctx, prompt, 0.3, 256)
	if err != nil {
		return models.Nutrition{}, err
	}

	nutrition, ok := ParseNutrition(text)
	if !ok {
		log.Printf("could not parse nutrition reply for %q, returning zeroes", mealName)
		return models.Nutrition{}, nil
	}
	return nutrition, nil
}

// BuildMealPlanPrompt renders the profile into a deterministic prompt.
func BuildMealPlanPrompt(profile models.UserProfile) string {
	weight := profile.Weight
	if weight == 0 {
		weight = 70
	}
	goal := profile.Goal
	if goal == "" {
		goal = models.DefaultGoal
	}
	activity := profile.Activity
	if activity == "" {
		activity = "Moderate"
	}

	var dietary string
	if len(profile.FoodTypes) > 0 {
		dietary = fmt.Sprintf("The user prefers: %s food.", strings.Join(profile.FoodTypes, ", "))
	} else if profile.Diet != "" {
		dietary = fmt.Sprintf("The user follows a %s diet.", profile.Diet)
	}

	var b strings.Builder
	b.WriteString("You are a professional nutritionist and meal planning expert. Generate a healthy, balanced 1-day meal plan for a user with the following profile:\n\n")
	fmt.Fprintf(&b, "- Current Weight: %g kg\n", weight)
	fmt.Fprintf(&b, "- Goal: %s\n", goal)
	fmt.Fprintf(&b, "- Activity Level: %s\n", activity)
	if dietary != "" {
		fmt.Fprintf(&b, "- Dietary Preferences: %s\n", dietary)
	}
	b.WriteString(`
Please provide:
1. **Breakfast** - A nutritious morning meal with approximate calories
2. **Lunch** - A balanced midday meal with approximate calories
3. **Dinner** - A healthy evening meal with approximate calories
4. **Snacks** (optional) - 1-2 healthy snack suggestions

Format your response clearly with meal names, brief descriptions, and estimated calories for each meal. Keep it simple and practical with easily available ingredients.`)
	return b.String()
}

// BuildQuickSuggestionPrompt renders the narrower per-meal-type prompt.
func BuildQuickSuggestionPrompt(mealType string, profile models.UserProfile) string {
	goal := profile.Goal
	if goal == "" {
		goal = models.DefaultGoal
	}
	dietary := "any"
	if len(profile.FoodTypes) > 0 {
		dietary = strings.Join(profile.FoodTypes, ", ")
	}

	return fmt.Sprintf(`Suggest 3 quick and healthy %s options for someone with goal: %s, dietary preference: %s.

Format as:
1. [Meal Name] - [Brief description] (~[calories] cal)
2. [Meal Name] - [Brief description] (~[calories] cal)
3. [Meal Name] - [Brief description] (~[calories] cal)

Keep it concise and practical.`, mealType, goal, dietary)
}

var (
	jsonObjectPattern = regexp.MustCompile(`(?s)\{.*\}`)
	nutritionLine     = regexp.MustCompile(`(?i)\b(calories|protein|carbs|fats?)\b\D{0,10}?([0-9]+(?:\.[0-9]+)?)`)
)

// ParseNutrition extracts a nutrition record from free-form AI text. It
// first looks for an embedded JSON object, then falls back to scanning
// line-oriented "Label: number" text. Returns ok=false when nothing
// parseable is found.
func ParseNutrition(text string) (models.Nutrition, bool) {
	if match := jsonObjectPattern.FindString(text); match != "" {
		var n models.Nutrition
		if err := json.Unmarshal([]byte(match), &n); err == nil {
			if n != (models.Nutrition{}) {
				return n, true
			}
		}
	}

	var n models.Nutrition
	found := false
	for _, line := range strings.Split(text, "\n") {
		m := nutritionLine.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		value, err := strconv.ParseFloat(m[2], 64)
		if err != nil {
			continue
		}
		switch strings.ToLower(m[1]) {
		case "calories":
			n.Calories = value
		case "protein":
			n.Protein = value
		case "carbs":
			n.Carbs = value
		case "fat", "fats":
			n.Fats = value
		}
		found = true
	}
	return n, found
}

var (
	boldPattern = regexp.MustCompile(`\*\*(.*?)\*\*`)
)

// FormatMealPlan converts the light markup Gemini emits into renderable
// HTML: **bold** markers and line breaks. Pure formatting, no validation
// of the content itself.
func FormatMealPlan(raw string) string {
	formatted := boldPattern.ReplaceAllString(raw, "<strong>$1</strong>")
	formatted = strings.ReplaceAll(formatted, "\n", "<br>")
	return formatted
}
