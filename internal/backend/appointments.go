package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gmsas95/arogya-cli/internal/dates"
	apperrors "github.com/gmsas95/arogya-cli/internal/errors"
)

// Slot is a bookable appointment time.
type Slot struct {
	Value string // HH:MM
	Label string // 9:00 AM
}

// Slots is the fixed booking grid: mornings 09:00-12:00 and afternoons 14:00-17:00 every half hour.
var Slots = buildSlots()

func buildSlots() []Slot {
	var out []Slot
	for _, span := range [][2]int{{9 * 60, 12 * 60}, {14 * 60, 17 * 60}} {
		for m := span[0]; m <= span[1]; m += 30 {
			h, mm := m/60, m%60
			h12, suffix := h, "AM"
			if h >= 12 {
				suffix = "PM"
			}
			if h > 12 {
				h12 = h - 12
			}
			out = append(out, Slot{
				Value: fmt.Sprintf("%02d:%02d", h, mm),
				Label: fmt.Sprintf("%d:%02d %s", h12, mm, suffix),
			})
		}
	}
	return out
}

// ValidSlot reports whether t is on the booking grid.
func ValidSlot(t string) bool {
	for _, s := range Slots {
		if s.Value == t {
			return true
		}
	}
	return false
}

// AppointmentRequest is the booking form.
type AppointmentRequest struct {
	Doctor          string `json:"doctor"`
	PatientName     string `json:"patient_name"`
	PatientPhone    string `json:"patient_phone"`
	PatientEmail    string `json:"patient_email"`
	PatientAge      string `json:"-"`
	AppointmentDate string `json:"appointment_date"`
	AppointmentTime string `json:"appointment_time"`
	Reason          string `json:"reason"`
}

type appointmentPayload struct {
	AppointmentRequest
	Doctor     any `json:"doctor"`
	PatientAge int `json:"patient_age"`
}

// Appointment is the backend's confirmation.
type Appointment struct {
	ID      string `json:"id"`
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Validate checks the form before any request is made.
func (r AppointmentRequest) Validate() error {
	if strings.TrimSpace(r.PatientName) == "" || strings.TrimSpace(r.PatientPhone) == "" ||
		strings.TrimSpace(r.PatientAge) == "" || strings.TrimSpace(r.AppointmentDate) == "" ||
		strings.TrimSpace(r.AppointmentTime) == "" {
		return apperrors.Input("Please fill in all required fields")
	}
	if strings.TrimSpace(r.Doctor) == "" {
		return apperrors.Input("Please choose a doctor")
	}
	if age, err := strconv.Atoi(strings.TrimSpace(r.PatientAge)); err != nil || age <= 0 {
		return apperrors.Input("Please enter a valid age")
	}
	if _, err := dates.Parse(r.AppointmentDate); err != nil {
		return apperrors.Input("Please enter a valid date (YYYY-MM-DD)")
	}
	if !ValidSlot(r.AppointmentTime) {
		return apperrors.Input("Please select a valid time slot")
	}
	return nil
}

// BookAppointment validates req and posts it.
func (c *Client) BookAppointment(ctx context.Context, req AppointmentRequest) (*Appointment, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	age, _ := strconv.Atoi(strings.TrimSpace(req.PatientAge))

	payload := appointmentPayload{AppointmentRequest: req, Doctor: req.Doctor, PatientAge: age}
	if id, err := strconv.Atoi(req.Doctor); err == nil {
		payload.Doctor = id
	}

	body, err := c.do(ctx, call{
		endpoint: "appointments",
		method:   http.MethodPost,
		path:     "/api/appointments/",
		body:     payload,
	})
	if err != nil {
		return nil, err
	}

	var raw map[string]json.RawMessage
	if err := decode(body, "appointment", &raw); err != nil {
		return nil, err
	}
	appt := &Appointment{
		ID:      firstID(raw, "id"),
		Message: firstString(raw, "", "message"),
	}
	if v, ok := raw["success"]; ok {
		json.Unmarshal(v, &appt.Success)
	}
	if appt.ID == "" && !appt.Success {
		msg := firstString(raw, "Failed to book appointment", "message", "error")
		return nil, apperrors.New(apperrors.ErrRejected.Code, msg)
	}
	return appt, nil
}

// AvailableSlots asks the backend which grid times are still open for a doctor on date.
func (c *Client) AvailableSlots(ctx context.Context, doctorID, date string) ([]string, error) {
	body, err := c.do(ctx, call{
		endpoint: "appointments.slots",
		method:   http.MethodGet,
		path:     "/api/appointments/available-slots/",
		query:    map[string]string{"doctor_id": doctorID, "date": date},
	})
	if err != nil {
		return nil, err
	}
	var resp struct {
		Slots []string `json:"slots"`
	}
	if err := decode(body, "available slots", &resp); err != nil {
		return nil, err
	}
	if resp.Slots == nil {
		return []string{}, nil
	}
	return resp.Slots, nil
}
