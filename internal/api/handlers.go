package api

import (
	"fmt"
	"strconv"
	"time"

	"github.com/gmsas95/arogya-cli/internal/reminder"
	"github.com/gmsas95/arogya-cli/internal/vaccine"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

func (s *Server) handleHealth(c *fiber.Ctx) error {
	resp := fiber.Map{
		"status":    "healthy",
		"version":   s.version,
		"timestamp": time.Now().Unix(),
	}
	if s.deps.Backend != nil {
		resp["backend"] = "ok"
		if err := s.deps.Backend.Health(c.UserContext()); err != nil {
			s.logger.Warn("Backend health check failed", zap.Error(err))
			resp["backend"] = "unreachable"
		}
	}
	return c.JSON(resp)
}

func (s *Server) handleMetricsJSON(c *fiber.Ctx) error {
	return c.JSON(s.deps.Metrics.Snapshot())
}

func (s *Server) handleUpcoming(c *fiber.Ctx) error {
	notices, err := s.deps.Notices.Notices(c.UserContext())
	if err != nil {
		s.logger.Error("Failed to load upcoming doses", zap.Error(err))
		return err
	}
	if notices == nil {
		notices = []vaccine.Notice{}
	}
	if c.Query("format") == "text" {
		return c.SendString(vaccine.Summary(notices))
	}
	return c.JSON(notices)
}

func planID(c *fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return 0, fiber.NewError(fiber.StatusBadRequest, "invalid plan id")
	}
	return uint(id), nil
}

func (s *Server) handleListPlans(c *fiber.Ctx) error {
	plans, err := s.deps.Plans.Search(c.UserContext(), c.Query("q"))
	if err != nil {
		s.logger.Error("Failed to list plans", zap.Error(err))
		return err
	}
	if plans == nil {
		plans = []reminder.MedicinePlan{}
	}
	return c.JSON(plans)
}

func (s *Server) handleGetPlan(c *fiber.Ctx) error {
	id, err := planID(c)
	if err != nil {
		return err
	}
	p, err := s.deps.Plans.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(p)
}

func (s *Server) handleCreatePlan(c *fiber.Ctx) error {
	var req planRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request")
	}

	in := reminder.PlanInput{
		Name:             req.Name,
		Dosage:           req.Dosage,
		FoodTiming:       reminder.FoodTiming(req.FoodTiming),
		NotificationTime: req.NotificationTime,
	}
	switch d := req.Duration.(type) {
	case string:
		in.Duration = d
	case float64:
		in.Duration = strconv.FormatFloat(d, 'f', -1, 64)
	case nil:
	default:
		in.Duration = fmt.Sprint(d)
	}

	p, err := s.deps.Plans.Create(c.UserContext(), in)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(p)
}

func (s *Server) handleDeletePlan(c *fiber.Ctx) error {
	id, err := planID(c)
	if err != nil {
		return err
	}
	if err := s.deps.Plans.Delete(c.UserContext(), id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *Server) handleTogglePlan(c *fiber.Ctx) error {
	id, err := planID(c)
	if err != nil {
		return err
	}
	p, err := s.deps.Plans.ToggleNotifications(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(p)
}

func (s *Server) handleProcessPlans(c *fiber.Ctx) error {
	n, err := s.deps.Plans.ProcessDailyUpdates(c.UserContext())
	if err != nil {
		s.logger.Error("Daily update failed", zap.Error(err))
		return err
	}
	return c.JSON(processResponse{Updated: n})
}

func (s *Server) handlePlanStats(c *fiber.Ctx) error {
	st, err := s.deps.Plans.Stats(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(st)
}

func (s *Server) handleListReminders(c *fiber.Ctx) error {
	jobs := s.deps.Jobs.Scheduled()
	out := make([]jobResponse, 0, len(jobs))
	for _, j := range jobs {
		r := jobResponse{Key: j.Key, Title: j.Title, Body: j.Body, Spec: j.Spec, System: j.System}
		if !j.NextRun.IsZero() {
			r.NextRun = j.NextRun.Format(time.RFC3339)
		}
		out = append(out, r)
	}
	return c.JSON(out)
}

func (s *Server) handleReminderHistory(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 50)
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	logs, err := s.deps.History.RecentReminders(limit)
	if err != nil {
		s.logger.Error("Failed to load reminder history", zap.Error(err))
		return err
	}
	return c.JSON(logs)
}
