package event

import "time"

const OwnerVerifiedDestination string = "owner_verified"
const OwnerVerifiedConsumerNotification string = "owner_verified_notification"

// HeaderCorrelationID carries the request correlation id across the broker.
const HeaderCorrelationID string = "cID"

type OwnerVerifiedMessage struct {
	Email      string    `json:"email"`
	FirstName  string    `json:"first_name"`
	LastName   string    `json:"last_name"`
	VerifiedAt time.Time `json:"verified_at"`
}
