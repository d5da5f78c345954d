// Package api serves the household ledger over HTTP with fiber.
package api

import (
	"bytes"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/rs/zerolog"

	"github.com/tally-dev/tally/internal/buildinfo"
	"github.com/tally-dev/tally/internal/config"
	"github.com/tally-dev/tally/internal/importer"
	"github.com/tally-dev/tally/internal/ledger"
)

// Handler holds the HTTP handlers for the API.
type Handler struct {
	svc *ledger.Service
	log zerolog.Logger
}

// NewHandler creates a Handler backed by svc.
func NewHandler(svc *ledger.Service, log zerolog.Logger) *Handler {
	return &Handler{svc: svc, log: log}
}

// NewApp creates a fiber app with every route registered.
func NewApp(h *Handler) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "tally",
		DisableStartupMessage: true,
		ErrorHandler:          h.handleError,
	})
	app.Use(recover.New())
	app.Use(h.logRequests)
	h.RegisterRoutes(app)
	return app
}

// RegisterRoutes sets up the HTTP routes.
func (h *Handler) RegisterRoutes(app *fiber.App) {
	api := app.Group("/api")
	api.Get("/health", h.handleHealth)
	api.Get("/transactions", h.handleTransactions)
	api.Patch("/transactions/:id/override", h.handleOverride)
	api.Post("/import", h.handleImport)
	api.Get("/transfers", h.handleTransfers)
	api.Post("/transfers/detect", h.handleDetect)
}

func (h *Handler) handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "ok",
		"version": buildinfo.Version,
	})
}

func (h *Handler) handleTransactions(c *fiber.Ctx) error {
	txns, err := h.svc.Snapshot()
	if err != nil {
		return err
	}
	return c.JSON(toTransactions(txns))
}

func (h *Handler) handleImport(c *fiber.Ctx) error {
	body := c.Body()
	if len(bytes.TrimSpace(body)) == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "empty import body")
	}

	report, err := h.svc.Import(ledger.ImportParams{
		Reader:   bytes.NewReader(body),
		SourceID: c.Query("source"),
		Format:   c.Query("format"),
		User:     c.Query("user"),
		Name:     c.Query("name"),
	})
	if err != nil {
		return err
	}

	return c.JSON(ImportResponse{
		Imported:   report.Imported,
		Skipped:    report.Skipped,
		Duplicates: report.Duplicates,
		AutoFilled: fromAutoFills(report.AutoFilled),
		Transfers:  fromPairs(report.Transfers),
		Commit:     report.Commit,
	})
}

func (h *Handler) handleDetect(c *fiber.Ctx) error {
	report, err := h.svc.Detect()
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"transfers": fromPairs(report.Transfers),
		"commit":    report.Commit,
	})
}

func (h *Handler) handleTransfers(c *fiber.Ctx) error {
	views, err := h.svc.Transfers()
	if err != nil {
		return err
	}
	return c.JSON(fromViews(views))
}

func (h *Handler) handleOverride(c *fiber.Ctx) error {
	var req OverrideRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid JSON body")
	}
	if req.Excluded == nil {
		return fiber.NewError(fiber.StatusBadRequest, `"excluded" is required`)
	}

	txn, err := h.svc.Override(c.Params("id"), *req.Excluded)
	if err != nil {
		return err
	}
	return c.JSON(toTransaction(txn))
}

// handleError writes every error as {"error": "..."} with a status derived
// from the error.
func (h *Handler) handleError(c *fiber.Ctx, err error) error {
	code := statusFor(err)
	if code == fiber.StatusInternalServerError {
		h.log.Error().Err(err).Str("path", c.Path()).Msg("request failed")
	}
	return c.Status(code).JSON(fiber.Map{"error": err.Error()})
}

func statusFor(err error) int {
	var fe *fiber.Error
	switch {
	case errors.As(err, &fe):
		return fe.Code
	case errors.Is(err, ledger.ErrNotFound), errors.Is(err, config.ErrUnknownSource):
		return fiber.StatusNotFound
	case errors.Is(err, ledger.ErrNoSource),
		errors.Is(err, importer.ErrUnknownFormat),
		errors.Is(err, importer.ErrParse):
		return fiber.StatusBadRequest
	}
	return fiber.StatusInternalServerError
}

func (h *Handler) logRequests(c *fiber.Ctx) error {
	start := time.Now()
	err := c.Next()
	h.log.Debug().
		Str("method", c.Method()).
		Str("path", c.Path()).
		Int("status", c.Response().StatusCode()).
		Dur("took", time.Since(start)).
		Msg("request")
	return err
}
