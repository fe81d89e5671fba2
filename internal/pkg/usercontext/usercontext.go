package usercontext

import "github.com/gofiber/fiber/v2"

// UserContext represents the authenticated principal of a request
type UserContext struct {
	ProfileID  uint   `json:"profileId"`
	Name       string `json:"name"`
	Role       string `json:"role"`
	IsLoggedIn bool   `json:"isLoggedIn"`
	IsAdmin    bool   `json:"isAdmin"`
}

// GetUserContext retrieves the user context from fiber context
// Returns a default anonymous context if none is set
func GetUserContext(c *fiber.Ctx) UserContext {
	if ctx, ok := c.Locals(LocalsKey).(UserContext); ok {
		return ctx
	}
	return UserContext{IsLoggedIn: false, IsAdmin: false}
}

// SetUserContext stores the principal for the remainder of the request
func SetUserContext(c *fiber.Ctx, uc UserContext) {
	c.Locals(LocalsKey, uc)
	c.Locals(KeyProfileID, uc.ProfileID)
	c.Locals(KeyIsAdmin, uc.IsAdmin)
}

// IsLoggedIn checks if the current user is logged in
func IsLoggedIn(c *fiber.Ctx) bool {
	return GetUserContext(c).IsLoggedIn
}

// IsAdmin checks if the current user is an admin
func IsAdmin(c *fiber.Ctx) bool {
	return GetUserContext(c).IsAdmin
}

// GetProfileID returns the current profile's ID, or 0 if not logged in
func GetProfileID(c *fiber.Ctx) uint {
	return GetUserContext(c).ProfileID
}
