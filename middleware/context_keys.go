package middleware

// contextKey defines a type for context keys to avoid collisions.
type contextKey string

// Defines context keys used within the application middleware and handlers.
const (
	// UserIDKey is the context key for the authenticated user's ID (string).
	UserIDKey contextKey = "user_id"
	// TripIDKey holds the trip id of a trip-scoped route once membership
	// has been verified.
	TripIDKey contextKey = "trip_id"
)
