package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flavourfinder/flavourfinder-go/internal/model"
)

func staticToken(token string) TokenSource {
	return TokenFunc(func() (string, bool) { return token, token != "" })
}

func sampleRecipe(id string) model.Recipe {
	return model.Recipe{
		ID:          id,
		Title:       "Spicy Shakshuka",
		Tags:        []string{"eggs"},
		Ingredients: []string{"4 eggs"},
		Steps:       []model.RecipeStep{{StepNumber: 1, Instruction: "Cook."}},
		Macros:      model.Macros{Calories: 380},
	}
}

func newTestClient(t *testing.T, h http.HandlerFunc) (*Client, *int32) {
	t.Helper()
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		h(w, r)
	}))
	t.Cleanup(srv.Close)
	return NewClient(staticToken("tok-123"), WithBaseURL(srv.URL)), &calls
}

func writeJSONBody(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func TestGenerateRecipeWithoutSessionMakesNoRequest(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	}))
	defer srv.Close()

	client := NewClient(staticToken(""), WithBaseURL(srv.URL))
	_, err := client.GenerateRecipe(context.Background(), model.DefaultPreferences(), nil)

	assert.ErrorIs(t, err, ErrNotAuthenticated)
	assert.Equal(t, KindNotAuthenticated, KindOf(err))
	assert.Equal(t, int32(0), atomic.LoadInt32(&calls))
}

func TestGenerateRecipeSendsHeadersAndBody(t *testing.T) {
	prefs := model.DefaultPreferences().With(model.AxisSpice, model.LevelHigh)

	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/recipes/generate", r.URL.Path)
		assert.Equal(t, "Bearer tok-123", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req model.GenerateRecipeRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, prefs, req.Preferences)
		assert.Equal(t, []string{}, req.ExistingRecipes)

		writeJSONBody(w, http.StatusOK, sampleRecipe("r1"))
	})

	recipe, err := client.GenerateRecipe(context.Background(), prefs, nil)
	require.NoError(t, err)
	assert.Equal(t, "r1", recipe.ID)
}

func TestOnlyStatus200IsSuccess(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSONBody(w, http.StatusCreated, sampleRecipe("r1"))
	})

	_, err := client.GenerateRecipe(context.Background(), model.DefaultPreferences(), nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrServer)
	assert.Equal(t, http.StatusCreated, StatusCode(err))
}

func TestServerErrorCarriesDetail(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSONBody(w, http.StatusInternalServerError, map[string]string{"error": "generator unavailable"})
	})

	_, err := client.ModifyRecipe(context.Background(), sampleRecipe("r1"), "spicier")
	var apiErr *Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, KindServer, apiErr.Kind)
	assert.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)
	assert.Equal(t, "generator unavailable", apiErr.Detail)
	assert.Equal(t, "generator unavailable", Describe(err))
}

func TestServerErrorAcceptsDetailField(t *testing.T) {
	err := parseError(http.StatusUnprocessableEntity, []byte(`{"detail":"bad payload"}`))
	assert.Equal(t, "bad payload", Describe(err))

	err = parseError(http.StatusBadGateway, []byte("upstream down"))
	assert.Equal(t, "upstream down", Describe(err))
}

func TestTransportFailureIsServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	client := NewClient(staticToken("tok"), WithBaseURL(url))
	_, err := client.GetPreferences(context.Background())

	assert.ErrorIs(t, err, ErrServer)
	assert.Equal(t, 0, StatusCode(err))
	assert.NotNil(t, errors.Unwrap(err))
	assert.Equal(t, "could not reach the server", Describe(err))
}

func TestDecodingFailures(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{"id":`},
		{"empty body", ``},
		{"null body", `null`},
		{"wrong type", `{"id": 12, "title": "x"}`},
		{"missing id", `{"title": "x"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
				io.WriteString(w, tt.body)
			})
			_, err := client.GenerateRecipe(context.Background(), model.DefaultPreferences(), nil)
			assert.ErrorIs(t, err, ErrDecoding)
		})
	}
}

func TestInvalidBaseURL(t *testing.T) {
	for _, base := range []string{"not a url", "ftp://example.com", "://missing-scheme"} {
		client := NewClient(staticToken("tok"), WithBaseURL(base))
		_, err := client.GetPreferences(context.Background())
		assert.ErrorIs(t, err, ErrInvalidRequest, base)
	}
}

func TestSaveRecipeConflictIsAlreadySaved(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/recipes/save", r.URL.Path)
		writeJSONBody(w, http.StatusConflict, map[string]string{"error": "recipe already saved"})
	})

	err := client.SaveRecipe(context.Background(), sampleRecipe("r1"))
	assert.True(t, IsAlreadySaved(err))
	assert.False(t, IsAlreadySaved(ErrServer))
	assert.False(t, IsAlreadySaved(nil))
}

func TestUnsaveRecipeIsIdempotent(t *testing.T) {
	var saved atomic.Bool
	saved.Store(true)

	client, calls := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/recipes/save/r1", r.URL.Path)
		if saved.CompareAndSwap(true, false) {
			writeJSONBody(w, http.StatusOK, map[string]string{"status": "removed"})
			return
		}
		writeJSONBody(w, http.StatusNotFound, map[string]string{"error": "saved recipe not found"})
	})

	require.NoError(t, client.UnsaveRecipe(context.Background(), "r1"))
	require.NoError(t, client.UnsaveRecipe(context.Background(), "r1"))
	assert.Equal(t, int32(2), atomic.LoadInt32(calls))

	assert.ErrorIs(t, client.UnsaveRecipe(context.Background(), ""), ErrInvalidRequest)
}

func TestListSavedRecipesDropsMissingData(t *testing.T) {
	recipe := sampleRecipe("r1")
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSONBody(w, http.StatusOK, model.SavedRecipesResponse{Recipes: []model.SavedRecipeRecord{
			{ID: "s1", RecipeID: "r1", RecipeData: &recipe},
			{ID: "s2", RecipeID: "r2", RecipeData: nil},
		}})
	})

	records, err := client.ListSavedRecipes(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "r1", records[0].RecipeData.ID)
}

func TestListSavedRecipesToleratesOddTimestamps(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"recipes":[
			{"id":"s1","recipe_id":"r1","recipe_data":{"id":"r1","title":"Soup"},"created_at":"2026-01-02 03:04:05.123456"},
			{"id":"s2","recipe_id":"r2","recipe_data":{"id":"r2","title":"Stew"},"created_at":"yesterday"}
		]}`))
	})

	records, err := client.ListSavedRecipes(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, 2026, records[0].CreatedAt.Year())
	assert.True(t, records[1].CreatedAt.IsZero())
}

func TestListSavedRecipesRequiresRecipesField(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSONBody(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	_, err := client.ListSavedRecipes(context.Background())
	assert.ErrorIs(t, err, ErrDecoding)
}

func TestPreferencesOutOfRangeIsDecodingError(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSONBody(w, http.StatusOK, map[string]int{
			"effort_level": 2, "skill_level": 2, "calorie_consciousness": 2, "protein_preference": 2, "spice_level": 4,
		})
	})

	_, err := client.GetPreferences(context.Background())
	assert.ErrorIs(t, err, ErrDecoding)
	assert.ErrorIs(t, err, model.ErrLevelOutOfRange)
}

func TestUpdatePreferencesReturnsEcho(t *testing.T) {
	echo := model.DefaultPreferences().With(model.AxisEffort, model.LevelLow)
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		writeJSONBody(w, http.StatusOK, echo)
	})

	got, err := client.UpdatePreferences(context.Background(), model.DefaultPreferences())
	require.NoError(t, err)
	assert.Equal(t, echo, got)
}

func TestDescribe(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{ErrNotAuthenticated, "you are not signed in"},
		{invalidRequest(errors.New("x")), "the request could not be built"},
		{decodingError(errors.New("x")), "the server sent an unexpected response"},
		{&Error{Kind: KindServer, StatusCode: 503}, "the server returned status 503"},
		{context.Canceled, "the request was cancelled"},
		{transportError(context.DeadlineExceeded), "the request timed out"},
		{errors.New("plain"), "plain"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Describe(tt.err))
	}
}

func TestErrorIsMatchesKindOnly(t *testing.T) {
	err := &Error{Kind: KindServer, StatusCode: 500, Detail: "boom"}
	assert.ErrorIs(t, err, ErrServer)
	assert.NotErrorIs(t, err, ErrDecoding)
	assert.Equal(t, "server_error (status 500): boom", err.Error())
}

func TestOperationErrorUserMessage(t *testing.T) {
	err := error(&OperationError{Op: "generate recipe", Err: &Error{Kind: KindServer, StatusCode: 500, Detail: "model overloaded"}})

	var opErr *OperationError
	require.True(t, errors.As(err, &opErr))
	assert.Equal(t, "Failed to generate recipe: model overloaded", opErr.UserMessage())
	assert.ErrorIs(t, err, ErrServer)
}
