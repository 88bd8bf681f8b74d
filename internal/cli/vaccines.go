package cli

import (
	"context"
	"fmt"

	"github.com/gmsas95/arogya-cli/internal/app"
	"github.com/gmsas95/arogya-cli/internal/dates"
	"github.com/gmsas95/arogya-cli/internal/vaccine"
	"github.com/spf13/cobra"
)

func (c *CLI) vaccinesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "vaccines",
		Short: "List the vaccine catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.App(cmd.Context())
			if err != nil {
				return err
			}
			defs, err := c.catalog(cmd.Context(), a)
			if err != nil {
				return err
			}
			if len(defs) == 0 {
				c.println("No vaccines found.")
				return nil
			}
			c.println(c.style.title("Vaccines"))
			for _, d := range defs {
				c.printf("%-10s %s (%s) - %d dose(s), every %d days\n",
					d.ID, d.Name, d.Manufacturer, d.MaxDoses, d.DoseIntervalDays)
			}
			return nil
		},
	}
}

func (c *CLI) catalog(ctx context.Context, a *app.App) ([]vaccine.Definition, error) {
	if c.strict {
		return a.Vaccines.Catalog(ctx)
	}
	return a.Vaccines.FailSoft().Catalog(ctx), nil
}

func (c *CLI) records(ctx context.Context, a *app.App, q vaccine.Query) ([]vaccine.Record, error) {
	if c.strict {
		return a.Vaccines.Records(ctx, q)
	}
	return a.Vaccines.FailSoft().Records(ctx, q), nil
}

func (c *CLI) upcoming(ctx context.Context, a *app.App, server bool) ([]vaccine.UpcomingVaccine, error) {
	switch {
	case c.strict && server:
		return a.Vaccines.ServerUpcoming(ctx)
	case c.strict:
		return a.Vaccines.Upcoming(ctx)
	case server:
		return a.Vaccines.FailSoft().ServerUpcoming(ctx), nil
	default:
		return a.Vaccines.FailSoft().Upcoming(ctx), nil
	}
}

func (c *CLI) recordsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "records",
		Short: "Manage vaccination records",
	}
	cmd.AddCommand(c.recordsListCmd(), c.recordsAddCmd(), c.recordsEditCmd(), c.recordsDeleteCmd())
	return cmd
}

func (c *CLI) recordsListCmd() *cobra.Command {
	var tab, search, on string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List vaccination records",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			filter := vaccine.Filter{Tab: vaccine.ParseTab(tab), Search: search}
			if on != "" {
				d, err := dates.Parse(on)
				if err != nil {
					return fmt.Errorf("invalid --on date %q, want YYYY-MM-DD", on)
				}
				filter.On = &d
			}

			a, err := c.App(cmd.Context())
			if err != nil {
				return err
			}
			all, err := c.records(cmd.Context(), a, nil)
			if err != nil {
				return err
			}
			vaccinated, pending := vaccine.Counts(all)
			c.printf("Vaccinated: %d  Pending: %d\n", vaccinated, pending)

			shown := filter.Apply(all)
			if len(shown) == 0 {
				c.println("No vaccination records found.")
				return nil
			}
			for _, r := range shown {
				given := "date unknown"
				if r.DateGiven != nil {
					given = r.DateGiven.String()
				}
				c.printf("%-8s %s dose %d  %s  %s\n", r.ID, r.VaccineName, r.DoseNumber, given, c.style.verified(r.Verified))
				if r.PatientName != "" || r.AdministeredBy != nil {
					c.printf("         patient: %s  by: %s\n", orDash(&r.PatientName), orDash(r.AdministeredBy))
				}
				if r.Notes != nil && *r.Notes != "" {
					c.printf("         notes: %s\n", *r.Notes)
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&tab, "tab", "all", "all, vaccinated or pending")
	cmd.Flags().StringVar(&search, "search", "", "Match vaccine or patient name")
	cmd.Flags().StringVar(&on, "on", "", "Only doses given on this date (YYYY-MM-DD)")
	return cmd
}

func (c *CLI) recordsAddCmd() *cobra.Command {
	var in vaccine.LogInput
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Log a vaccine dose",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.App(cmd.Context())
			if err != nil {
				return err
			}
			rec, err := a.Vaccines.Log(cmd.Context(), in)
			if err != nil {
				return err
			}
			c.printf("✓ Logged %s dose %d\n", rec.VaccineName, rec.DoseNumber)
			def := vaccine.Definition{}
			for _, d := range a.Vaccines.FailSoft().Catalog(cmd.Context()) {
				if d.ID == rec.Vaccine {
					def = d
				}
			}
			if next := vaccine.NextDoseFor(rec, def); def.ID != "" && !next.Complete {
				if next.DueDate != nil {
					c.printf("  Next: dose %d due %s\n", next.DoseNumber, next.DueDate)
				} else {
					c.printf("  Next: dose %d, schedule anytime\n", next.DoseNumber)
				}
			}
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&in.Vaccine, "vaccine", "", "Vaccine id from the catalog")
	f.IntVar(&in.DoseNumber, "dose", 1, "Dose number")
	f.StringVar(&in.DateGiven, "date", "", "Date given (YYYY-MM-DD), empty when unknown")
	f.StringVar(&in.AdministeredBy, "by", "", "Administered by")
	f.StringVar(&in.Notes, "notes", "", "Notes")
	f.BoolVar(&in.Verified, "verified", false, "Dose was administered and confirmed")
	f.StringVar(&in.PatientName, "patient", "", "Patient name")
	return cmd
}

func (c *CLI) recordsEditCmd() *cobra.Command {
	var (
		date, by, notes string
		dose            int
		verified        bool
	)
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Edit a vaccination record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f := cmd.Flags()
			var in vaccine.EditInput
			if f.Changed("date") {
				in.DateGiven = &date
			}
			if f.Changed("dose") {
				in.DoseNumber = &dose
			}
			if f.Changed("by") {
				in.AdministeredBy = &by
			}
			if f.Changed("notes") {
				in.Notes = &notes
			}
			if f.Changed("verified") {
				in.Verified = &verified
			}

			a, err := c.App(cmd.Context())
			if err != nil {
				return err
			}
			rec, err := a.Vaccines.Edit(cmd.Context(), args[0], in)
			if err != nil {
				return err
			}
			c.printf("✓ Updated %s dose %d\n", rec.VaccineName, rec.DoseNumber)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&date, "date", "", "Date given (YYYY-MM-DD)")
	f.IntVar(&dose, "dose", 0, "Dose number")
	f.StringVar(&by, "by", "", "Administered by")
	f.StringVar(&notes, "notes", "", "Notes")
	f.BoolVar(&verified, "verified", false, "Dose was administered and confirmed")
	return cmd
}

func (c *CLI) recordsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a vaccination record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.App(cmd.Context())
			if err != nil {
				return err
			}
			if err := a.Vaccines.Remove(cmd.Context(), args[0]); err != nil {
				return err
			}
			c.printf("✓ Deleted record %s\n", args[0])
			return nil
		},
	}
}

func (c *CLI) dueCmd() *cobra.Command {
	var server, markdown, send bool
	cmd := &cobra.Command{
		Use:   "due",
		Short: "Show upcoming and overdue doses",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := c.App(ctx)
			if err != nil {
				return err
			}
			upcoming, err := c.upcoming(ctx, a, server)
			if err != nil {
				return err
			}
			notices := a.Vaccines.Classify(upcoming)

			if markdown {
				out, err := renderMarkdown(c.out, vaccine.Markdown(notices))
				if err != nil {
					return err
				}
				c.printf("%s", out)
			} else {
				c.printNotices(notices)
			}

			if send {
				sent, err := a.Digest.Send(ctx, true)
				if err != nil {
					return err
				}
				if sent {
					c.println("✓ Digest sent")
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&server, "server", false, "Use the backend's aggregated notifications")
	cmd.Flags().BoolVar(&markdown, "markdown", false, "Render as a markdown table")
	cmd.Flags().BoolVar(&send, "send", false, "Also deliver the digest to configured channels")
	return cmd
}

func (c *CLI) printNotices(notices []vaccine.Notice) {
	if len(notices) == 0 {
		c.println("✅ All Up to Date!")
		c.println(c.style.muted.Render("All your vaccines are current and up to date."))
		return
	}
	c.println(c.style.title("Vaccine Reminders"))
	c.printf("You have %d upcoming dose(s):\n\n", len(notices))
	for _, n := range notices {
		schedule := "anytime"
		if d := n.Upcoming.NextDueDate; d != nil {
			schedule = d.String()
		}
		c.printf("%s %s %s\n", n.Urgency.Icon(), c.style.badge(n.Severity), n.Upcoming.VaccineName)
		c.printf("   Dose %d - %s (%s)\n", n.Upcoming.NextDoseNumber, n.Status, schedule)
	}
}
