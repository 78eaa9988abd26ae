package domain

import "time"

// User is a notification recipient keyed by its chat identity.
type User struct {
	ID        int64
	Username  string
	FirstName string
	LastName  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// DeliveryRecord marks that a listing was handed to a user's channel.
type DeliveryRecord struct {
	UserID      int64
	ListingHash string
	SentAt      time.Time
}

// RegistrationKind enumerates inbound channel events.
type RegistrationKind string

const (
	EventRegister RegistrationKind = "register"
	EventHelp     RegistrationKind = "help"
)

// RegistrationEvent is an inbound message from the notification channel.
type RegistrationEvent struct {
	Kind   RegistrationKind
	ChatID int64
	User   User
}
