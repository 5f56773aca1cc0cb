package mail

// Message is one outbound email.
type Message struct {
	To      string
	Subject string
	HTML    string
}

// Sender delivers messages and returns a provider message id. Callers
// decide whether a delivery failure is fatal or per-recipient.
type Sender interface {
	Send(m Message) (string, error)
}
