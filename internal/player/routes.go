package player

import (
	"github.com/gofiber/fiber/v2"

	"rankboard/internal/apperr"
	"rankboard/internal/event"
	"rankboard/internal/rankstore"
)

func RegisterRoutes(r fiber.Router, service *Service, ranks rankstore.Store, bus *event.Bus) {

	r.Post("/players", func(c *fiber.Ctx) error {
		type Req struct {
			Name        string `json:"name"`
			Country     string `json:"country"`
			CountryCode string `json:"country_code"`
		}

		var body Req
		if err := c.BodyParser(&body); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid body"})
		}

		id, err := service.Register(c.Context(), body.Name, body.Country, body.CountryCode)
		if err != nil {
			return c.Status(apperr.HTTPStatus(err)).JSON(fiber.Map{"error": err.Error()})
		}

		// Registration seeds a zero score so the player ranks immediately.
		if err := ranks.SetScore(c.Context(), id, 0); err != nil {
			serr := apperr.StoreUnavailable("player.register", "rank", err)
			return c.Status(apperr.HTTPStatus(serr)).JSON(fiber.Map{"error": serr.Error()})
		}

		bus.Publish(event.EventPlayerRegistered, event.PlayerRegistered{PlayerID: id})

		return c.Status(201).JSON(fiber.Map{"id": id})
	})
}
