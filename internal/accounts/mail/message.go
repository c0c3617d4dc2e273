// Package mail delivers verification codes through a task queue drained by
// background workers. Delivery is fire-and-forget: failures are logged and
// counted, never returned to the request that enqueued the message.
package mail

import (
	"fmt"
	"html"
)

// Message is a single outbound email.
type Message struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Text    string `json:"text"`
	HTML    string `json:"html,omitempty"`
}

const verificationSubject = "Verify your email"

// VerificationMessage renders the code delivery email for an address.
func VerificationMessage(to, code string) Message {
	return Message{
		To:      to,
		Subject: verificationSubject,
		Text:    fmt.Sprintf("Hello, please verify your email. Your code is %s", code),
		HTML:    fmt.Sprintf("<p>Your verification code is: <strong>%s</strong></p>", html.EscapeString(code)),
	}
}
