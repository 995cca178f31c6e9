package earnings

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"rankboard/internal/apperr"
)

func RegisterRoutes(r fiber.Router, service *Service) {

	r.Post("/earnings", func(c *fiber.Ctx) error {

		type Req struct {
			PlayerID string   `json:"player_id"`
			Amount   *float64 `json:"amount"`
		}

		var body Req
		if err := c.BodyParser(&body); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid body"})
		}
		if body.Amount == nil {
			return c.Status(400).JSON(fiber.Map{"error": "amount is required"})
		}

		score, err := service.Record(c.Context(), body.PlayerID, *body.Amount)

		if errors.Is(err, apperr.ErrPartialFailure) {
			// Score landed; only the pool side failed. Report, don't fail.
			return c.JSON(fiber.Map{
				"score":   score,
				"warning": "pool contribution failed; flagged for reconciliation",
			})
		}
		if err != nil {
			return c.Status(apperr.HTTPStatus(err)).JSON(fiber.Map{"error": err.Error()})
		}

		return c.JSON(fiber.Map{"score": score})
	})
}
