package ranking

import (
	"github.com/gofiber/fiber/v2"

	"rankboard/internal/apperr"
)

func RegisterRoutes(r fiber.Router, engine *Engine) {

	r.Get("/leaderboard", func(c *fiber.Ctx) error {
		view, err := engine.Combined(c.Context(), c.Query("q"))
		if err != nil {
			return c.Status(apperr.HTTPStatus(err)).JSON(fiber.Map{"error": err.Error()})
		}
		return c.JSON(view)
	})
}
