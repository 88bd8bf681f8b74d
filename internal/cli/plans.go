package cli

import (
	"fmt"
	"strconv"

	"github.com/gmsas95/arogya-cli/internal/reminder"
	"github.com/spf13/cobra"
)

func (c *CLI) plansCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "plans",
		Aliases: []string{"plan"},
		Short:   "Manage medicine reminder plans",
	}
	cmd.AddCommand(
		c.plansAddCmd(),
		c.plansListCmd(),
		c.plansEditCmd(),
		c.plansDeleteCmd(),
		c.plansToggleCmd(),
		c.plansProcessCmd(),
	)
	return cmd
}

func parsePlanID(s string) (uint, error) {
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid plan id %q", s)
	}
	return uint(id), nil
}

func planFlags(cmd *cobra.Command, in *reminder.PlanInput, food *string) {
	f := cmd.Flags()
	f.StringVar(&in.Name, "name", "", "Medicine name")
	f.StringVar(&in.Dosage, "dosage", "", "Dosage, e.g. 1 tablet")
	f.StringVar(&in.Duration, "duration", "", "Days remaining")
	f.StringVar(food, "food", string(reminder.Before), "before, after or during food")
	f.StringVar(&in.NotificationTime, "time", "", "Reminder time of day (HH:MM)")
}

func (c *CLI) plansAddCmd() *cobra.Command {
	var (
		in   reminder.PlanInput
		food string
	)
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a medicine plan with a daily reminder",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			in.FoodTiming = reminder.FoodTiming(food)
			a, err := c.App(cmd.Context())
			if err != nil {
				return err
			}
			p, err := a.Plans.Create(cmd.Context(), in)
			if err != nil {
				return err
			}
			c.printf("✓ Added plan %d: %s at %s for %d day(s)\n", p.ID, p.Name, p.NotificationTime, p.Duration)
			return nil
		},
	}
	planFlags(cmd, &in, &food)
	return cmd
}

func (c *CLI) plansListCmd() *cobra.Command {
	var search string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List medicine plans",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := c.App(ctx)
			if err != nil {
				return err
			}
			var plans []reminder.MedicinePlan
			if search != "" {
				plans, err = a.Plans.Search(ctx, search)
			} else {
				plans, err = a.Plans.List(ctx)
			}
			if err != nil {
				return err
			}
			if len(plans) == 0 {
				c.println("No medicine plans. Add one with: arogya plans add")
				return nil
			}

			c.println(c.style.title("Medicine Plans"))
			for i := range plans {
				c.printPlan(&plans[i])
			}
			if stats, err := a.Plans.Stats(ctx); err == nil {
				c.println()
				c.println(c.style.muted.Render(fmt.Sprintf("%d total, %d active, %d completed", stats.Total, stats.Active, stats.Completed)))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&search, "search", "", "Filter by medicine name")
	return cmd
}

func (c *CLI) printPlan(p *reminder.MedicinePlan) {
	bell := "🔔"
	if !p.NotificationsEnabled {
		bell = "🔕"
	}
	state := fmt.Sprintf("%d day(s) left", p.Duration)
	if p.Completed() {
		state = c.style.ok.Render("completed")
	}
	c.printf("%3d %s %s (%s) at %s, %s - %s\n",
		p.ID, bell, p.Name, p.Dosage, p.NotificationTime, p.FoodTiming.Label(), state)
}

func (c *CLI) plansEditCmd() *cobra.Command {
	var (
		in   reminder.PlanInput
		food string
	)
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Edit a medicine plan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parsePlanID(args[0])
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			a, err := c.App(ctx)
			if err != nil {
				return err
			}
			cur, err := a.Plans.Get(ctx, id)
			if err != nil {
				return err
			}

			f := cmd.Flags()
			next := reminder.PlanInput{
				Name:             cur.Name,
				Dosage:           cur.Dosage,
				Duration:         strconv.Itoa(cur.Duration),
				FoodTiming:       cur.FoodTiming,
				NotificationTime: cur.NotificationTime,
			}
			if f.Changed("name") {
				next.Name = in.Name
			}
			if f.Changed("dosage") {
				next.Dosage = in.Dosage
			}
			if f.Changed("duration") {
				next.Duration = in.Duration
			}
			if f.Changed("food") {
				next.FoodTiming = reminder.FoodTiming(food)
			}
			if f.Changed("time") {
				next.NotificationTime = in.NotificationTime
			}

			p, err := a.Plans.Update(ctx, id, next)
			if err != nil {
				return err
			}
			c.printf("✓ Updated plan %d\n", p.ID)
			c.printPlan(p)
			return nil
		},
	}
	planFlags(cmd, &in, &food)
	return cmd
}

func (c *CLI) plansDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a medicine plan and its reminder",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parsePlanID(args[0])
			if err != nil {
				return err
			}
			a, err := c.App(cmd.Context())
			if err != nil {
				return err
			}
			if err := a.Plans.Delete(cmd.Context(), id); err != nil {
				return err
			}
			c.printf("✓ Deleted plan %d\n", id)
			return nil
		},
	}
}

func (c *CLI) plansToggleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <id>",
		Short: "Turn a plan's reminder on or off",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parsePlanID(args[0])
			if err != nil {
				return err
			}
			a, err := c.App(cmd.Context())
			if err != nil {
				return err
			}
			p, err := a.Plans.ToggleNotifications(cmd.Context(), id)
			if err != nil {
				return err
			}
			state := "off"
			if p.NotificationsEnabled {
				state = "on"
			}
			c.printf("✓ Reminders for %s turned %s\n", p.Name, state)
			return nil
		},
	}
}

func (c *CLI) plansProcessCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "process",
		Short: "Apply elapsed days to every plan",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.App(cmd.Context())
			if err != nil {
				return err
			}
			n, err := a.Plans.ProcessDailyUpdates(cmd.Context())
			if err != nil {
				return err
			}
			c.printf("✓ Updated %d plan(s)\n", n)
			return nil
		},
	}
}
