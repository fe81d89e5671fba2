package usercontext

// Shared Locals keys used across controllers and middlewares
const (
	LocalsKey     = "USER_CONTEXT"
	KeyProfileID  = "profile_id"
	KeyIsAdmin    = "isAdmin"
	KeyAuthMethod = "auth_method"
)
