package cli

import (
	"context"
	"strings"

	"github.com/gmsas95/arogya-cli/internal/app"
	"github.com/gmsas95/arogya-cli/internal/backend"
	apperrors "github.com/gmsas95/arogya-cli/internal/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// soft logs err and reports whether the caller should show an empty list instead.
func (c *CLI) soft(a *app.App, op string, err error) bool {
	if err == nil || c.strict {
		return false
	}
	a.Logger.Error("Backend request failed",
		zap.String("op", op),
		zap.String("kind", string(apperrors.GetKind(err))),
		zap.Error(err))
	return true
}

func (c *CLI) doctorsCmd() *cobra.Command {
	var specialty string
	cmd := &cobra.Command{
		Use:   "doctors",
		Short: "List doctors",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.App(cmd.Context())
			if err != nil {
				return err
			}
			doctors, err := a.Backend.Doctors(cmd.Context())
			if c.soft(a, "doctors", err) {
				doctors, err = nil, nil
			}
			if err != nil {
				return err
			}

			shown := doctors[:0:0]
			for _, d := range doctors {
				if specialty == "" || strings.Contains(strings.ToLower(d.SpecialtyName), strings.ToLower(specialty)) {
					shown = append(shown, d)
				}
			}
			if len(shown) == 0 {
				c.println("No doctors found.")
				return nil
			}
			c.println(c.style.title("Doctors"))
			for _, d := range shown {
				c.printf("%-6s %s - %s\n", d.ID, d.Name, d.SpecialtyName)
				c.println(c.style.muted.Render("       ★ " + d.Rating + " (" + d.Reviews + " reviews)  " + d.OPDTime + "  " + d.Location))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&specialty, "specialty", "", "Filter by specialty name")
	return cmd
}

func (c *CLI) specialtiesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "specialties",
		Short: "List doctor specialties",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.App(cmd.Context())
			if err != nil {
				return err
			}
			specs, err := a.Backend.Specialties(cmd.Context())
			if c.soft(a, "specialties", err) {
				specs, err = nil, nil
			}
			if err != nil {
				return err
			}
			if len(specs) == 0 {
				c.println("No specialties found.")
				return nil
			}
			for _, s := range specs {
				c.printf("%-6s %s\n", s.ID, s.Name)
			}
			return nil
		},
	}
}

func (c *CLI) slotsCmd() *cobra.Command {
	var doctor, date string
	cmd := &cobra.Command{
		Use:   "slots",
		Short: "Show the booking grid, marking open times for a doctor and date",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			open := map[string]bool{}
			if doctor != "" && date != "" {
				a, err := c.App(cmd.Context())
				if err != nil {
					return err
				}
				available, err := c.availableSlots(cmd.Context(), a, doctor, date)
				if err != nil {
					return err
				}
				for _, s := range available {
					open[s] = true
				}
			}
			for _, s := range backend.Slots {
				mark := " "
				if open[s.Value] {
					mark = "✓"
				}
				c.printf("%s %s  %s\n", mark, s.Value, s.Label)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&doctor, "doctor", "", "Doctor id")
	cmd.Flags().StringVar(&date, "date", "", "Date (YYYY-MM-DD)")
	return cmd
}

func (c *CLI) availableSlots(ctx context.Context, a *app.App, doctor, date string) ([]string, error) {
	slots, err := a.Backend.AvailableSlots(ctx, doctor, date)
	if c.soft(a, "slots", err) {
		return nil, nil
	}
	return slots, err
}

func (c *CLI) bookCmd() *cobra.Command {
	var req backend.AppointmentRequest
	cmd := &cobra.Command{
		Use:   "book",
		Short: "Book an appointment",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := req.Validate(); err != nil {
				return err
			}
			a, err := c.App(cmd.Context())
			if err != nil {
				return err
			}
			appt, err := a.Backend.BookAppointment(cmd.Context(), req)
			if err != nil {
				return err
			}
			msg := appt.Message
			if msg == "" {
				msg = "Appointment booked successfully"
			}
			c.printf("✓ %s\n", msg)
			if appt.ID != "" {
				c.printf("  Reference: %s\n", appt.ID)
			}
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&req.Doctor, "doctor", "", "Doctor id")
	f.StringVar(&req.PatientName, "name", "", "Patient name")
	f.StringVar(&req.PatientPhone, "phone", "", "Patient phone")
	f.StringVar(&req.PatientEmail, "email", "", "Patient email")
	f.StringVar(&req.PatientAge, "age", "", "Patient age")
	f.StringVar(&req.AppointmentDate, "date", "", "Date (YYYY-MM-DD)")
	f.StringVar(&req.AppointmentTime, "time", "", "Slot (HH:MM), see: arogya slots")
	f.StringVar(&req.Reason, "reason", "", "Reason for visit")
	return cmd
}
