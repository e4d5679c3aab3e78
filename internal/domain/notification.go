package domain

// Notification is an admin-console inbox entry raised by booking and lead
// activity.
type Notification struct {
	ID         int32             `json:"id"`
	Title      string            `json:"title"`
	Message    string            `json:"message"`
	Attributes map[string]string `json:"attributes,omitempty"`
	IsRead     bool              `json:"is_read"`
	CreatedOn  string            `json:"created_on"`
}
