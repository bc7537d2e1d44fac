package shared

// Client-facing messages. Every authorization failure other than a missing
// token shares one message so callers cannot tell the causes apart.
const (
	MsgNoToken            = "No token, authorization denied"
	MsgTokenNotValid      = "Token is not valid"
	MsgInvalidCredentials = "Invalid credentials"
	MsgStoreUnavailable   = "Service temporarily unavailable"
	MsgInternalError      = "Something went wrong!"
	MsgRouteNotFound      = "Route not found"
	MsgMethodNotAllowed   = "Method not allowed"
	MsgTaskNotFound       = "Task not found"
	MsgUserNotFound       = "User not found"
	MsgUserExists         = "User already exists with this email"
	MsgTitleRequired      = "Please provide a task title"
	MsgMissingFields      = "Please provide all required fields"
	MsgInvalidBody        = "Invalid request body"
)
