package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
)

// Doctor is a directory entry with display fallbacks applied.
type Doctor struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	SpecialtyName string          `json:"specialty_name"`
	Specialty     json.RawMessage `json:"specialty,omitempty"`
	Rating        string          `json:"rating"`
	Reviews       string          `json:"reviews"`
	Price         float64         `json:"price"`
	OPDTime       string          `json:"opd_time"`
	Bio           string          `json:"bio"`
	Experience    string          `json:"experience"`
	Education     string          `json:"education"`
	Location      string          `json:"location"`
}

type Specialty struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Doctors lists the directory. The backend answers either a bare array or {data: [...]}.
func (c *Client) Doctors(ctx context.Context) ([]Doctor, error) {
	body, err := c.do(ctx, call{endpoint: "doctors", method: http.MethodGet, path: "/api/doctors/"})
	if err != nil {
		return nil, err
	}
	items, err := listItems(body, "doctors")
	if err != nil {
		return nil, err
	}
	doctors := make([]Doctor, 0, len(items))
	for _, raw := range items {
		doctors = append(doctors, doctorFrom(raw))
	}
	return doctors, nil
}

// Specialties lists doctor specialties.
func (c *Client) Specialties(ctx context.Context) ([]Specialty, error) {
	body, err := c.do(ctx, call{endpoint: "specialties", method: http.MethodGet, path: "/api/specialties/"})
	if err != nil {
		return nil, err
	}
	items, err := listItems(body, "specialties")
	if err != nil {
		return nil, err
	}
	out := make([]Specialty, 0, len(items))
	for _, raw := range items {
		out = append(out, Specialty{
			ID:   firstID(raw, "id", "pk"),
			Name: firstString(raw, "Unnamed Specialty", "name", "specialty_name"),
		})
	}
	return out, nil
}

// listItems unwraps {data: [...]} or a bare array. Anything else is an empty list.
func listItems(body []byte, what string) ([]map[string]json.RawMessage, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return nil, nil
	}
	if body[0] == '{' {
		var wrapped struct {
			Data json.RawMessage `json:"data"`
		}
		if err := decode(body, what, &wrapped); err != nil {
			return nil, err
		}
		body = bytes.TrimSpace(wrapped.Data)
		if len(body) == 0 || body[0] != '[' {
			return nil, nil
		}
	}
	if body[0] != '[' {
		return nil, nil
	}
	var items []map[string]json.RawMessage
	if err := decode(body, what, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func doctorFrom(raw map[string]json.RawMessage) Doctor {
	d := Doctor{
		ID:            firstID(raw, "id", "pk"),
		Name:          firstString(raw, "Unknown Doctor", "name", "doctor_name"),
		SpecialtyName: firstString(raw, "", "specialty_name"),
		Rating:        firstScalar(raw, "4.5", "rating"),
		Reviews:       firstScalar(raw, "100+", "reviews"),
		Price:         500,
		OPDTime:       firstString(raw, "Mon-Fri 9AM-5PM", "opd_time"),
		Bio:           firstString(raw, "Experienced healthcare professional", "bio"),
		Experience:    firstScalar(raw, "5+ years", "experience"),
		Education:     firstString(raw, "MBBS", "education"),
		Location:      firstString(raw, "Kathmandu", "location"),
	}
	if spec, ok := raw["specialty"]; ok && !isNullJSON(spec) {
		d.Specialty = spec
		if d.SpecialtyName == "" {
			var nested struct {
				Name string `json:"name"`
			}
			if json.Unmarshal(spec, &nested) == nil {
				d.SpecialtyName = nested.Name
			}
		}
	}
	if d.SpecialtyName == "" {
		d.SpecialtyName = "General Practitioner"
	}
	if p, ok := raw["price"]; ok {
		var price float64
		if json.Unmarshal(p, &price) == nil && price != 0 {
			d.Price = price
		} else if s := scalar(p); s != "" {
			if v, err := strconv.ParseFloat(s, 64); err == nil && v != 0 {
				d.Price = v
			}
		}
	}
	return d
}

func isNullJSON(v json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(v), []byte("null"))
}

// scalar renders a JSON string or number as text. Falsy values come back empty.
func scalar(v json.RawMessage) string {
	var s string
	if json.Unmarshal(v, &s) == nil {
		return s
	}
	var n float64
	if json.Unmarshal(v, &n) == nil && n != 0 {
		return strconv.FormatFloat(n, 'f', -1, 64)
	}
	return ""
}

func firstString(raw map[string]json.RawMessage, fallback string, keys ...string) string {
	for _, k := range keys {
		if v, ok := raw[k]; ok {
			var s string
			if json.Unmarshal(v, &s) == nil && s != "" {
				return s
			}
		}
	}
	return fallback
}

func firstScalar(raw map[string]json.RawMessage, fallback string, keys ...string) string {
	for _, k := range keys {
		if v, ok := raw[k]; ok {
			if s := scalar(v); s != "" {
				return s
			}
		}
	}
	return fallback
}

func firstID(raw map[string]json.RawMessage, keys ...string) string {
	for _, k := range keys {
		if v, ok := raw[k]; ok {
			if s := scalar(v); s != "" {
				return s
			}
		}
	}
	return ""
}

func (d Doctor) String() string {
	return fmt.Sprintf("%s (%s)", d.Name, d.SpecialtyName)
}
