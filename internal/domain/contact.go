package domain

import "context"

const (
	MsgFieldsRequired = "All fields are required."
	MsgEmailSent      = "Email sent successfully!"
	MsgEmailFailed    = "Error sending email"
)

// Submission represents a contact form post. It lives for one request only.
type Submission struct {
	Name       string      `json:"name" validate:"required"`
	Email      string      `json:"email" validate:"required"`
	Message    string      `json:"message" validate:"required"`
	Attachment *Attachment `json:"attachment,omitempty" validate:"-"`
}

// Attachment is an uploaded file written to the upload directory
type Attachment struct {
	StoredPath        string `json:"storedPath"`
	Filename          string `json:"filename"` // base name inside the upload directory
	OriginalName      string `json:"originalName"`
	OriginalExtension string `json:"originalExtension"`
	SizeBytes         int64  `json:"sizeBytes"`
	ContentType       string `json:"contentType"` // sniffed, informational only
}

type Address struct {
	Name    string
	Address string
}

// OutboundMessage is the email derived from a Submission
type OutboundMessage struct {
	Sender      Address
	Recipient   Address
	Subject     string
	BodyHTML    string
	Attachments []*Attachment // zero or one
}

type Envelope struct {
	From string   `json:"from"`
	To   []string `json:"to"`
}

// DeliveryReceipt is what the SMTP server reported for an accepted message
type DeliveryReceipt struct {
	MessageID string   `json:"messageId"`
	Envelope  Envelope `json:"envelope"`
	Accepted  []string `json:"accepted"`
	Rejected  []string `json:"rejected"`
	Response  string   `json:"response"`
}

// ContactUsecase defines the interface for contact form operations
type ContactUsecase interface {
	// Submit validates, relays and cleans up a single submission
	Submit(ctx context.Context, sub *Submission) (*DeliveryReceipt, error)
}

// Mailer delivers one message per call, without retries
type Mailer interface {
	Send(ctx context.Context, msg *OutboundMessage) (*DeliveryReceipt, error)
}

// AttachmentStore owns uploaded files on disk
type AttachmentStore interface {
	Remove(att *Attachment) error
}
