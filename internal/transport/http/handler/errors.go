package handler

const (
	errInternalServer     = "Internal server error"
	errUserNotFound       = "User not found"
	errEmailTaken         = "User already exists"
	errInvalidCredentials = "Invalid email or password"
	errCodeInvalid        = "Code is invalid or expired"
	errCodeExpired        = "Code expired. Request a new one"
	errTicketInvalid      = "Reset ticket is invalid or expired"
	errDeliveryFailed     = "Could not deliver the code"
)
