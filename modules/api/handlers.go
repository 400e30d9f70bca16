package api

import (
	"fmt"
	"strconv"

	"github.com/example/arithmetic-dispatcher/middleware/ratelimit"
	"github.com/example/arithmetic-dispatcher/modules/calculator"
	"github.com/gofiber/fiber/v2"
)

// setupRoutes configures all HTTP routes.
func (m *APIModule) setupRoutes(app *fiber.App) {
	app.Get("/health", m.healthHandler)

	api := app.Group("/api/v1")
	api.Get("/operations", m.listOperations)
	api.Get("/stats", m.getStats)

	compute := api.Group("/compute")
	compute.Post("/", m.computeJSON)
	compute.Get("/", m.computeQuery)
	compute.Post("/batch", m.computeBatch)
}

// healthHandler handles GET /health.
func (m *APIModule) healthHandler(c *fiber.Ctx) error {
	return c.JSON(HealthResponse{
		Status: "healthy",
		Details: map[string]any{
			"module": "api",
			"port":   m.port,
		},
	})
}

// listOperations handles GET /api/v1/operations.
func (m *APIModule) listOperations(c *fiber.Ctx) error {
	resp, err := m.calculator.Operations(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Error:   "operations_failed",
			Message: err.Error(),
		})
	}

	ops := make([]OperationResponse, 0, len(resp.Operations))
	for _, op := range resp.Operations {
		ops = append(ops, OperationResponse{
			Name:    op.Name,
			Symbol:  op.Symbol,
			Aliases: op.Aliases,
		})
	}
	return c.JSON(ListOperationsResponse{Operations: ops})
}

// computeJSON handles POST /api/v1/compute.
func (m *APIModule) computeJSON(c *fiber.Ctx) error {
	var req ComputeRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request body",
		})
	}
	return m.compute(c, req)
}

// computeQuery handles GET /api/v1/compute?a=&b=&operation=.
func (m *APIModule) computeQuery(c *fiber.Ctx) error {
	var operands [2]float64
	for i, name := range []string{"a", "b"} {
		raw := c.Query(name)
		if raw == "" {
			return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
				Error:   "invalid_request",
				Message: fmt.Sprintf("Query parameter '%s' is required", name),
			})
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
				Error:   "invalid_request",
				Message: fmt.Sprintf("Query parameter '%s' is not a number", name),
			})
		}
		operands[i] = v
	}
	return m.compute(c, ComputeRequest{A: operands[0], B: operands[1], Operation: c.Query("operation")})
}

// compute calls the calculator port. Arithmetic failures are answered with
// 200 and ok=false. Rate limit rejections map to 429, other port failures
// to 500.
func (m *APIModule) compute(c *fiber.Ctx, req ComputeRequest) error {
	resp, err := m.calculator.Compute(c.Context(), &calculator.CalculateRequest{
		Operation: req.Operation,
		A:         req.A,
		B:         req.B,
	})
	if err != nil {
		return portFailure(c, "compute_failed", err)
	}
	return c.JSON(toComputeResponse(resp))
}

// computeBatch handles POST /api/v1/compute/batch.
func (m *APIModule) computeBatch(c *fiber.Ctx) error {
	var req BatchComputeRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request body",
		})
	}

	if len(req.Items) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error:   "validation_error",
			Message: "At least one item is required",
		})
	}
	if m.maxBatchSize > 0 && len(req.Items) > m.maxBatchSize {
		return c.Status(fiber.StatusRequestEntityTooLarge).JSON(ErrorResponse{
			Error:   "batch_too_large",
			Message: fmt.Sprintf("Batch exceeds %d items", m.maxBatchSize),
		})
	}

	items := make([]calculator.CalculateRequest, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, calculator.CalculateRequest{
			Operation: item.Operation,
			A:         item.A,
			B:         item.B,
		})
	}

	resp, err := m.calculator.ComputeBatch(c.Context(), &calculator.BatchRequest{Items: items})
	if err != nil {
		return portFailure(c, "batch_failed", err)
	}

	results := make([]ComputeResponse, 0, len(resp.Results))
	for i := range resp.Results {
		results = append(results, toComputeResponse(&resp.Results[i]))
	}
	return c.JSON(BatchComputeResponse{
		BatchID:   resp.BatchID,
		Results:   results,
		Succeeded: resp.Succeeded,
		Failed:    resp.Failed,
	})
}

// getStats handles GET /api/v1/stats.
func (m *APIModule) getStats(c *fiber.Ctx) error {
	resp, err := m.stats.GetStats(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Error:   "stats_failed",
			Message: err.Error(),
		})
	}
	return c.JSON(StatsResponse{
		Total:       resp.Total,
		Succeeded:   resp.Succeeded,
		Failed:      resp.Failed,
		ByOperation: resp.ByOperation,
		ByErrorKind: resp.ByErrorKind,
		LastSeenAt:  resp.LastSeenAt,
	})
}

// portFailure answers a failed service call.
func portFailure(c *fiber.Ctx, code string, err error) error {
	if ratelimit.IsLimitExceeded(err) {
		return c.Status(fiber.StatusTooManyRequests).JSON(ErrorResponse{
			Error:   "rate_limited",
			Message: err.Error(),
		})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
		Error:   code,
		Message: err.Error(),
	})
}

// toComputeResponse converts a calculator response to its HTTP form.
func toComputeResponse(resp *calculator.CalculateResponse) ComputeResponse {
	return ComputeResponse{
		ID:        resp.ID,
		Operation: resp.Operation,
		OK:        resp.OK,
		Result:    resp.Result,
		Text:      resp.Text,
		Error:     resp.Error,
		ErrorKind: resp.ErrorKind,
	}
}
