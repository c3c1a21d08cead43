package api

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/saadjs/checkin-cli/internal/app"
	"github.com/saadjs/checkin-cli/internal/logger"
	"github.com/saadjs/checkin-cli/internal/model"
	"github.com/saadjs/checkin-cli/internal/score"
	"github.com/saadjs/checkin-cli/internal/service"
)

// Config wraps the knobs that impact runtime behavior.
type Config struct {
	Addr string
	// OnWrite runs after every successful mutation, typically a debounced
	// remote push.
	OnWrite func()
	// Now overrides the clock used when a request carries no now parameter.
	Now func() time.Time
}

// Server exposes the local database over a small JSON API.
type Server struct {
	app *fiber.App
	db  *sql.DB
	cfg Config
	log *logger.Logger
}

func NewServer(cfg Config, db *sql.DB, log *logger.Logger) *Server {
	if log == nil {
		log = logger.Nop()
	}
	fiberApp := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ReadTimeout:           15 * time.Second,
		WriteTimeout:          15 * time.Second,
		ErrorHandler:          errorHandler,
	})
	srv := &Server{app: fiberApp, db: db, cfg: cfg, log: log.With("component", "api")}
	fiberApp.Use(recover.New())
	fiberApp.Use(srv.requestLog)
	fiberApp.Use(cors.New())
	srv.registerRoutes()
	return srv
}

// App exposes the fiber app for in-process requests.
func (s *Server) App() *fiber.App {
	return s.app
}

// Run starts listening for HTTP traffic until the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		_ = s.app.Shutdown()
	}()

	s.log.Info("api listening", "addr", s.cfg.Addr)
	return s.app.Listen(s.cfg.Addr)
}

func (s *Server) registerRoutes() {
	s.app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api := s.app.Group("/api/v1")
	api.Get("/overview", s.handleOverview)
	api.Get("/history", s.handleHistory)
	api.Get("/trend", s.handleTrend)
	api.Get("/events", s.handleListEvents)
	api.Post("/events/:kind", s.handleCreateEvent)
	api.Delete("/events/:id", s.handleDeleteEvent)
	api.Get("/catalog/:kind", s.handleListCatalog)
	api.Post("/catalog/:kind", s.handleAddBehavior)
	api.Get("/goals", s.handleGetGoals)
	api.Put("/goals", s.handleSetGoals)
}

func (s *Server) requestLog(c *fiber.Ctx) error {
	started := time.Now()
	err := c.Next()
	status := c.Response().StatusCode()
	var fe *fiber.Error
	if errors.As(err, &fe) {
		status = fe.Code
	}
	s.log.Debug("request",
		"method", c.Method(),
		"path", c.Path(),
		"status", status,
		"latency_ms", time.Since(started).Milliseconds(),
	)
	return err
}

func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}
	return c.Status(code).JSON(fiber.Map{"error": err.Error()})
}

// httpError maps service and engine errors onto status codes. fallback is
// used for errors with no sentinel, usually validation failures on writes.
func httpError(err error, fallback int) error {
	switch {
	case errors.Is(err, service.ErrNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.Is(err, score.ErrInvalidArgument):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return fiber.NewError(fallback, err.Error())
}

func (s *Server) now(c *fiber.Ctx) (time.Time, error) {
	fallback := time.Now()
	if s.cfg.Now != nil {
		fallback = s.cfg.Now()
	}
	t, err := app.ParseInstant(c.Query("now"), fallback)
	if err != nil {
		return time.Time{}, fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return t, nil
}

func (s *Server) changed() {
	if s.cfg.OnWrite != nil {
		s.cfg.OnWrite()
	}
}

func parseKind(raw string) (model.Kind, error) {
	kind, err := model.ParseKind(raw)
	if err != nil {
		return "", fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return kind, nil
}

func (s *Server) snapshot() (*model.Snapshot, error) {
	snap, err := service.LoadSnapshot(s.db)
	if err != nil {
		return nil, fiber.NewError(fiber.StatusInternalServerError, fmt.Sprintf("load data: %v", err))
	}
	return snap, nil
}

func (s *Server) handleOverview(c *fiber.Ctx) error {
	now, err := s.now(c)
	if err != nil {
		return err
	}
	snap, err := s.snapshot()
	if err != nil {
		return err
	}
	if raw := c.Query("period"); raw != "" {
		period, err := score.ParsePeriod(raw)
		if err != nil {
			return httpError(err, fiber.StatusBadRequest)
		}
		return c.JSON(fiber.Map{"data": score.BuildPeriod(snap, now, period)})
	}
	return c.JSON(fiber.Map{"data": score.BuildOverview(snap, now)})
}

func (s *Server) handleHistory(c *fiber.Ctx) error {
	now, err := s.now(c)
	if err != nil {
		return err
	}
	period, err := score.ParsePeriod(c.Query("period", string(score.PeriodWeek)))
	if err != nil {
		return httpError(err, fiber.StatusBadRequest)
	}
	snap, err := s.snapshot()
	if err != nil {
		return err
	}
	rows, err := score.History(snap, now, period)
	if err != nil {
		return httpError(err, fiber.StatusInternalServerError)
	}
	return c.JSON(fiber.Map{
		"data": rows,
		"meta": fiber.Map{"count": len(rows), "period": period},
	})
}

func (s *Server) handleTrend(c *fiber.Ctx) error {
	now, err := s.now(c)
	if err != nil {
		return err
	}
	snap, err := s.snapshot()
	if err != nil {
		return err
	}
	series, err := score.Trend(snap, now, c.QueryInt("days", 7))
	if err != nil {
		return httpError(err, fiber.StatusInternalServerError)
	}
	return c.JSON(fiber.Map{"data": series})
}

func (s *Server) handleListEvents(c *fiber.Ctx) error {
	filter := service.EventFilter{
		FromDate: c.Query("from"),
		ToDate:   c.Query("to"),
		Limit:    c.QueryInt("limit", 50),
	}
	if raw := c.Query("kind"); raw != "" {
		kind, err := parseKind(raw)
		if err != nil {
			return err
		}
		filter.Kind = kind
	}
	items, err := service.ListEvents(s.db, filter)
	if err != nil {
		return httpError(err, fiber.StatusBadRequest)
	}
	return c.JSON(fiber.Map{
		"data": items,
		"meta": fiber.Map{"count": len(items)},
	})
}

type eventPayload struct {
	BehaviorID int64   `json:"behaviorId"`
	Amount     float64 `json:"amount"`
	Category   string  `json:"category"`
	Activity   string  `json:"activity"`
	Intensity  int     `json:"intensity"`
	Note       string  `json:"note"`
	Date       string  `json:"date"`
}

func (s *Server) handleCreateEvent(c *fiber.Ctx) error {
	kind, err := parseKind(c.Params("kind"))
	if err != nil {
		return err
	}
	now, err := s.now(c)
	if err != nil {
		return err
	}
	var payload eventPayload
	if err := c.BodyParser(&payload); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid payload")
	}

	var evt model.Event
	if kind == model.KindPleasure {
		evt, err = service.LogPleasure(s.db, service.PleasureInput{
			Category:  payload.Category,
			Activity:  payload.Activity,
			Intensity: payload.Intensity,
			Note:      payload.Note,
			Date:      payload.Date,
			Now:       now,
		})
	} else {
		if payload.BehaviorID <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "behaviorId is required")
		}
		evt, err = service.LogEvent(s.db, service.LogEventInput{
			Kind:       kind,
			BehaviorID: payload.BehaviorID,
			Amount:     payload.Amount,
			Date:       payload.Date,
			Now:        now,
		})
	}
	if err != nil {
		return httpError(err, fiber.StatusUnprocessableEntity)
	}
	s.changed()
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": evt})
}

func (s *Server) handleDeleteEvent(c *fiber.Ctx) error {
	now, err := s.now(c)
	if err != nil {
		return err
	}
	if err := service.DeleteEvent(s.db, c.Params("id"), now); err != nil {
		return httpError(err, fiber.StatusInternalServerError)
	}
	s.changed()
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *Server) handleListCatalog(c *fiber.Ctx) error {
	kind, err := parseKind(c.Params("kind"))
	if err != nil {
		return err
	}
	if !kind.HasCatalog() {
		return fiber.NewError(fiber.StatusNotFound, fmt.Sprintf("%s has no catalog", kind))
	}
	items, err := service.ListBehaviors(s.db, kind)
	if err != nil {
		return httpError(err, fiber.StatusInternalServerError)
	}
	return c.JSON(fiber.Map{
		"data": items,
		"meta": fiber.Map{"count": len(items), "categories": kind.Categories()},
	})
}

type behaviorPayload struct {
	Category    string  `json:"category"`
	Name        string  `json:"name"`
	Unit        string  `json:"unit"`
	PerUnitRate float64 `json:"perUnitRate"`
}

func (s *Server) handleAddBehavior(c *fiber.Ctx) error {
	kind, err := parseKind(c.Params("kind"))
	if err != nil {
		return err
	}
	now, err := s.now(c)
	if err != nil {
		return err
	}
	var payload behaviorPayload
	if err := c.BodyParser(&payload); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid payload")
	}
	if strings.TrimSpace(payload.Name) == "" {
		return fiber.NewError(fiber.StatusBadRequest, "name is required")
	}
	def, err := service.AddBehavior(s.db, service.BehaviorInput{
		Kind:        kind,
		Category:    payload.Category,
		Name:        payload.Name,
		Unit:        payload.Unit,
		PerUnitRate: payload.PerUnitRate,
		Now:         now,
	})
	if err != nil {
		return httpError(err, fiber.StatusUnprocessableEntity)
	}
	s.changed()
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": def})
}

func (s *Server) handleGetGoals(c *fiber.Ctx) error {
	g, err := service.GetGoalSettings(s.db)
	if err != nil {
		return httpError(err, fiber.StatusInternalServerError)
	}
	return c.JSON(fiber.Map{"data": g})
}

type goalsPayload struct {
	DailyBeautyGoal   *float64 `json:"dailyBeautyGoal"`
	DailyUglyGoal     *float64 `json:"dailyUglyGoal"`
	DailyWellnessGoal *float64 `json:"dailyWellnessGoal"`
}

func (s *Server) handleSetGoals(c *fiber.Ctx) error {
	now, err := s.now(c)
	if err != nil {
		return err
	}
	var payload goalsPayload
	if err := c.BodyParser(&payload); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid payload")
	}
	g, err := service.SetGoalSettings(s.db, service.GoalSettingsUpdate{
		DailyBeautyFloor:   payload.DailyBeautyGoal,
		DailyUglyCeiling:   payload.DailyUglyGoal,
		DailyWellnessFloor: payload.DailyWellnessGoal,
		Now:                now,
	})
	if err != nil {
		return httpError(err, fiber.StatusUnprocessableEntity)
	}
	s.changed()
	return c.JSON(fiber.Map{"data": g})
}
