package ports

import "context"

// Email is an outgoing message with HTML and plain text parts / Message sortant avec parties HTML et texte
type Email struct {
	To      string
	Subject string
	HTML    string
	Text    string
}

// EmailSender sends emails / Envoie des emails
type EmailSender interface {
	Send(ctx context.Context, msg Email) error
}
