package router

import (
	"github.com/gofiber/fiber/v2"
)

// Router installs a group of routes on the app
type Router interface {
	InstallRouter(app *fiber.App)
}

func InstallRouter(app *fiber.App, deps Dependencies) {
	// System routes first so health checks never pass through API auth.
	setup(app, NewHttpRouter(deps), NewApiRouter(deps))
}

func setup(app *fiber.App, router ...Router) {
	for _, r := range router {
		r.InstallRouter(app)
	}
}
