package web

import (
	"github.com/gofiber/fiber/v3"
	"github.com/moogar0880/problems"

	"github.com/dukex/flowbridge/pkg/engine"
	"github.com/dukex/flowbridge/pkg/webhook"
)

func badRequest(c fiber.Ctx, detail string) error {
	problem := problems.NewStatusProblem(400).
		WithInstance(c.Path()).
		WithType("validation_error").
		WithDetail(detail)

	return c.Status(fiber.StatusBadRequest).JSON(problem)
}

func internalError(c fiber.Ctx, err error) error {
	problem := problems.NewStatusProblem(500).
		WithInstance(c.Path()).
		WithType("internal_error").
		WithError(err)

	return c.Status(fiber.StatusInternalServerError).JSON(problem)
}

// handleBridgeError maps bridge and engine failures onto problem responses.
func handleBridgeError(c fiber.Ctx, err error) error {
	switch {
	case webhook.IsNoTriggerFound(err):
		problem := problems.NewStatusProblem(422).
			WithInstance(c.Path()).
			WithType("no_trigger_found").
			WithDetail(err.Error())

		return c.Status(fiber.StatusUnprocessableEntity).JSON(problem)

	case webhook.IsWebhookNotFound(err):
		problem := problems.NewStatusProblem(404).
			WithInstance(c.Path()).
			WithType("webhook_not_found").
			WithDetail(err.Error())

		return c.Status(fiber.StatusNotFound).JSON(problem)

	case engine.IsNotFound(err):
		problem := problems.NewStatusProblem(404).
			WithInstance(c.Path()).
			WithType("workflow_not_found").
			WithDetail(err.Error())

		return c.Status(fiber.StatusNotFound).JSON(problem)

	default:
		if engineErr, ok := engine.AsEngineError(err); ok && engineErr.Status >= 400 && engineErr.Status < 500 {
			problem := problems.NewStatusProblem(engineErr.Status).
				WithInstance(c.Path()).
				WithType("engine_error").
				WithDetail(engineErr.Message)

			return c.Status(engineErr.Status).JSON(problem)
		}

		return internalError(c, err)
	}
}
