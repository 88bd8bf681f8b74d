package backend

import (
	"context"
	"net/http"

	"github.com/gmsas95/arogya-cli/internal/survey"
)

// CreateSurvey posts a built form.
func (c *Client) CreateSurvey(ctx context.Context, payload survey.Payload) error {
	_, err := c.do(ctx, call{
		endpoint: "surveys",
		method:   http.MethodPost,
		path:     "/api/surveys/",
		body:     payload,
	})
	return err
}

var _ survey.Saver = (*Client)(nil)
