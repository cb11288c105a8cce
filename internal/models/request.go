package models

import "time"

type Status string

const (
	StatusNew        Status = "new"
	StatusInProgress Status = "in_progress"
	StatusDone       Status = "done"
)

// ParseStatus returns the Status named by s and whether it is a known status.
func ParseStatus(s string) (Status, bool) {
	switch st := Status(s); st {
	case StatusNew, StatusInProgress, StatusDone:
		return st, true
	}
	return "", false
}

// Request is a service request submitted by a user with a photo attachment.
// Photo and DesignImage hold attachment store keys; the URL fields are filled
// in for responses only.
type Request struct {
	ID             string    `json:"id"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	CategoryID     string    `json:"categoryId,omitempty"`
	CategoryName   string    `json:"categoryName,omitempty"`
	Status         Status    `json:"status"`
	Photo          string    `json:"-"`
	PhotoURL       string    `json:"photoUrl"`
	DesignImage    string    `json:"-"`
	DesignImageURL string    `json:"designImageUrl,omitempty"`
	Comment        string    `json:"comment,omitempty"`
	OwnerID        string    `json:"ownerId"`
	CreatedAt      time.Time `json:"createdAt"`
	EditDate       time.Time `json:"editDate"`
}
