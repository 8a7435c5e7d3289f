// Package access controls who receives private bot notifications. Users ask
// for access, the owner approves or rejects, and approved recipients make up
// the fan-out list for scheduled digests.
package access

import (
	"time"

	"github.com/google/uuid"
)

// RecipientStatus marks whether a recipient still receives notifications.
type RecipientStatus string

const (
	RecipientActive   RecipientStatus = "active"
	RecipientInactive RecipientStatus = "inactive"
)

// Recipient is an approved notification target.
type Recipient struct {
	UserID       int64
	Username     string
	ChatID       int64
	Status       RecipientStatus
	AuthorizedBy int64
	CreatedAt    time.Time
}

// RequestStatus is the lifecycle of an access request.
type RequestStatus string

const (
	RequestPending  RequestStatus = "pending"
	RequestApproved RequestStatus = "approved"
	RequestRejected RequestStatus = "rejected"
)

// Request is a user's ask for notification access.
type Request struct {
	ID          uuid.UUID
	UserID      int64
	Username    string
	ChatID      int64
	Status      RequestStatus
	RequestedAt time.Time
}
