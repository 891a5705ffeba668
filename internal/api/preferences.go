package api

import (
	"context"

	"github.com/flavourfinder/flavourfinder-go/internal/model"
)

// GetPreferences fetches the remote copy of the user's preferences.
func (c *Client) GetPreferences(ctx context.Context) (model.UserPreferences, error) {
	var prefs model.UserPreferences
	if err := c.get(ctx, "/preferences", &prefs); err != nil {
		return model.UserPreferences{}, err
	}
	if err := prefs.Validate(); err != nil {
		return model.UserPreferences{}, decodingError(err)
	}
	return prefs, nil
}

// UpdatePreferences pushes prefs and returns the value the backend stored,
// which may be normalized.
func (c *Client) UpdatePreferences(ctx context.Context, prefs model.UserPreferences) (model.UserPreferences, error) {
	var stored model.UserPreferences
	if err := c.put(ctx, "/preferences", prefs, &stored); err != nil {
		return model.UserPreferences{}, err
	}
	if err := stored.Validate(); err != nil {
		return model.UserPreferences{}, decodingError(err)
	}
	return stored, nil
}
