package backend

import (
	"context"
	"net/http"
	"net/url"

	"github.com/gmsas95/arogya-cli/internal/vaccine"
)

// Vaccines fetches the catalog.
func (c *Client) Vaccines(ctx context.Context) ([]vaccine.Definition, error) {
	body, err := c.do(ctx, call{endpoint: "vaccines", method: http.MethodGet, path: "/api/vaccines/", auth: true})
	if err != nil {
		return nil, err
	}
	return vaccine.ParseDefinitions(body)
}

// ListVaccinations fetches records matching q.
func (c *Client) ListVaccinations(ctx context.Context, q vaccine.Query) ([]vaccine.Record, error) {
	body, err := c.do(ctx, call{
		endpoint: "vaccinations.list",
		method:   http.MethodGet,
		path:     "/api/vaccinations/",
		auth:     true,
		query:    q,
	})
	if err != nil {
		return nil, err
	}
	return vaccine.ParseRecords(body)
}

func (c *Client) CreateVaccination(ctx context.Context, rec vaccine.Record) error {
	_, err := c.do(ctx, call{
		endpoint: "vaccinations.create",
		method:   http.MethodPost,
		path:     "/api/vaccinations/",
		auth:     true,
		body:     rec,
	})
	return err
}

func (c *Client) UpdateVaccination(ctx context.Context, id string, rec vaccine.Record) error {
	_, err := c.do(ctx, call{
		endpoint: "vaccinations.update",
		method:   http.MethodPut,
		path:     "/api/vaccinations/" + url.PathEscape(id) + "/",
		auth:     true,
		body:     rec,
	})
	return err
}

func (c *Client) DeleteVaccination(ctx context.Context, id string) error {
	_, err := c.do(ctx, call{
		endpoint: "vaccinations.delete",
		method:   http.MethodDelete,
		path:     "/api/vaccinations/" + url.PathEscape(id) + "/",
		auth:     true,
	})
	return err
}

// VaccinationNotifications fetches the server-aggregated upcoming list.
func (c *Client) VaccinationNotifications(ctx context.Context) ([]vaccine.UpcomingVaccine, error) {
	body, err := c.do(ctx, call{
		endpoint: "vaccinations.notifications",
		method:   http.MethodGet,
		path:     "/api/vaccinations/notifications/",
		auth:     true,
	})
	if err != nil {
		return nil, err
	}
	return vaccine.ParseUpcoming(body)
}

var _ vaccine.Accessor = (*Client)(nil)
