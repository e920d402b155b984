package contextkeys

// Кастомный тип ключа, чтобы избежать коллизий в context.
type contextKey string

// UserIDContextKey holds the authenticated user id set by the auth middleware.
const UserIDContextKey = contextKey("userID")

// StripeEventContextKey holds the verified Stripe event set by the webhook middleware.
const StripeEventContextKey = contextKey("stripe_event")
