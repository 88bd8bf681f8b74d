package vaccine

import (
	"fmt"
	"strings"

	"cloud.google.com/go/civil"
)

// Urgency buckets a due date relative to today.
type Urgency int

const (
	NotUrgent Urgency = iota
	Overdue
	DueToday
	DueSoon
	DueLater
)

func (u Urgency) String() string {
	switch u {
	case Overdue:
		return "overdue"
	case DueToday:
		return "due_today"
	case DueSoon:
		return "due_soon"
	case DueLater:
		return "due_later"
	default:
		return "not_urgent"
	}
}

// Icon is the glyph the reminder digest prefixes each entry with.
func (u Urgency) Icon() string {
	switch u {
	case Overdue:
		return "⚠️"
	case DueToday:
		return "🚨"
	case DueSoon:
		return "⏰"
	case DueLater:
		return "📅"
	default:
		return "✅"
	}
}

type Severity string

const (
	SeverityNone     Severity = "none"
	SeverityInfo     Severity = "info"
	SeverityElevated Severity = "elevated"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// DefaultDueSoonDays is the window in which a dose counts as due soon.
const DefaultDueSoonDays = 7

// Notice is an upcoming dose classified against a given day.
type Notice struct {
	Upcoming  UpcomingVaccine `json:"upcoming"`
	Urgency   Urgency         `json:"-"`
	Severity  Severity        `json:"severity"`
	DaysUntil *int            `json:"days_until"`
	Status    string          `json:"status"`
}

// Classifier assigns urgency. The zero value uses DefaultDueSoonDays.
type Classifier struct {
	DueSoonDays int
}

// Classify is a Classifier with the default window.
func Classify(today civil.Date, due *civil.Date) Notice {
	return Classifier{}.Classify(today, due)
}

func (c Classifier) Classify(today civil.Date, due *civil.Date) Notice {
	if due == nil {
		return Notice{Urgency: NotUrgent, Severity: SeverityNone, Status: "Not urgent — schedule anytime"}
	}
	soon := c.DueSoonDays
	if soon <= 0 {
		soon = DefaultDueSoonDays
	}

	days := due.DaysSince(today)
	n := Notice{DaysUntil: &days}
	switch {
	case days < 0:
		n.Urgency, n.Severity = Overdue, SeverityWarning
		n.Status = fmt.Sprintf("%s overdue", plural(-days))
	case days == 0:
		n.Urgency, n.Severity = DueToday, SeverityCritical
		n.Status = "Due today"
	case days <= soon:
		n.Urgency, n.Severity = DueSoon, SeverityElevated
		n.Status = fmt.Sprintf("Due in %s", plural(days))
	default:
		n.Urgency, n.Severity = DueLater, SeverityInfo
		n.Status = fmt.Sprintf("Due in %s", plural(days))
	}
	return n
}

func plural(days int) string {
	if days == 1 {
		return "1 day"
	}
	return fmt.Sprintf("%d days", days)
}

// Notices classifies every entry against today, keeping order.
func (c Classifier) Notices(today civil.Date, upcoming []UpcomingVaccine) []Notice {
	out := make([]Notice, 0, len(upcoming))
	for _, u := range upcoming {
		n := c.Classify(today, u.NextDueDate)
		n.Upcoming = u
		out = append(out, n)
	}
	return out
}

// Summary renders the reminder digest.
func Summary(notices []Notice) string {
	if len(notices) == 0 {
		return "✅ All Up to Date!\n\nGreat news! All your vaccines are current and up to date."
	}

	blocks := make([]string, 0, len(notices))
	for _, n := range notices {
		schedule := "Anytime you see fit!"
		if n.Upcoming.NextDueDate != nil {
			schedule = n.Upcoming.NextDueDate.String()
		}
		blocks = append(blocks, fmt.Sprintf("%s %s\n   Dose %d - %s\n   Schedule: %s",
			n.Urgency.Icon(), n.Upcoming.VaccineName, n.Upcoming.NextDoseNumber, n.Status, schedule))
	}

	var b strings.Builder
	b.WriteString("🔔 Vaccine Reminders\n\n")
	fmt.Fprintf(&b, "You have %d upcoming dose(s):\n\n", len(notices))
	b.WriteString(strings.Join(blocks, "\n\n"))
	b.WriteString("\n\nDon't forget to schedule your appointments!")
	return b.String()
}

// Markdown renders the digest as a markdown table for terminal rendering.
func Markdown(notices []Notice) string {
	if len(notices) == 0 {
		return "# ✅ All Up to Date!\n\nGreat news! All your vaccines are current and up to date.\n"
	}
	var b strings.Builder
	b.WriteString("# 🔔 Vaccine Reminders\n\n")
	fmt.Fprintf(&b, "You have **%d** upcoming dose(s).\n\n", len(notices))
	b.WriteString("| | Vaccine | Dose | Status | Schedule |\n|---|---|---|---|---|\n")
	for _, n := range notices {
		schedule := "Anytime"
		if n.Upcoming.NextDueDate != nil {
			schedule = n.Upcoming.NextDueDate.String()
		}
		fmt.Fprintf(&b, "| %s | %s | %d | %s | %s |\n",
			n.Urgency.Icon(), n.Upcoming.VaccineName, n.Upcoming.NextDoseNumber, n.Status, schedule)
	}
	b.WriteString("\nDon't forget to schedule your appointments!\n")
	return b.String()
}
