package domain

import "time"

// Customer is an end-user chatting with a tenant over WhatsApp.
type Customer struct {
	ID          string    `json:"id"`
	TenantID    string    `json:"tenant_id"`
	PhoneNumber string    `json:"phone_number"`
	DisplayName string    `json:"display_name,omitempty"`
	Labels      []string  `json:"labels,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// HasLabel reports whether the customer carries the named label.
func (c *Customer) HasLabel(name string) bool {
	for _, l := range c.Labels {
		if l == name {
			return true
		}
	}
	return false
}

// Label is a tenant-defined tag applied to customers for segmentation and routing.
type Label struct {
	ID       string `json:"id" db:"id"`
	TenantID string `json:"tenant_id" db:"tenant_id"`
	Name     string `json:"name" db:"name"`
	Color    string `json:"color,omitempty" db:"color"`
}

// QuickReply is a tenant-authored canned response surfaced to agents/tools.
type QuickReply struct {
	ID       string `json:"id" db:"id"`
	TenantID string `json:"tenant_id" db:"tenant_id"`
	Shortcut string `json:"shortcut" db:"shortcut"`
	Body     string `json:"body" db:"body"`
}
