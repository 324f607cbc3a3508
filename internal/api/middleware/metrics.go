package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

// RequestObserver receives one observation per HTTP request
type RequestObserver interface {
	ObserveRequest(method, route string, status int, elapsed time.Duration)
}

// Metrics records method, matched route and status of every request.
// Unmatched paths are grouped under "unmatched" to keep label cardinality bounded.
func Metrics(observer RequestObserver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		if err := c.Next(); err != nil {
			if handlerErr := c.App().ErrorHandler(c, err); handlerErr != nil {
				return handlerErr
			}
		}

		status := c.Response().StatusCode()
		route := c.Route().Path
		if status == fiber.StatusNotFound {
			route = "unmatched"
		}

		observer.ObserveRequest(c.Method(), route, status, time.Since(start))
		return nil
	}
}
