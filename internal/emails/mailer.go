package emails

import "context"

// Address is a mailbox with an optional display name.
type Address struct {
	Name    string
	Address string
}

// Message is a rendered email ready for delivery.
type Message struct {
	From    Address
	To      []string
	Subject string
	HTML    string
}

// Receipt identifies an accepted message at the provider.
type Receipt struct {
	ID string `json:"id"`
}

// Mailer delivers rendered messages through a transactional email provider.
type Mailer interface {
	Name() string
	Send(ctx context.Context, msg Message) (Receipt, error)
}
