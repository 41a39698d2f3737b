package usecase

import (
	"context"
	"go-contact-backend/internal/domain"
	"go-contact-backend/pkg/apperror"
	"go-contact-backend/pkg/email"
	"go-contact-backend/pkg/logger"

	"github.com/go-playground/validator/v10"
)

// ContactSettings is the fixed part of every outbound message
type ContactSettings struct {
	SenderName    string
	SenderAddress string
	Recipient     string
	Subject       string
	EscapeHTML    bool
}

type contactUsecase struct {
	mailer   domain.Mailer
	store    domain.AttachmentStore
	validate *validator.Validate
	settings ContactSettings
}

// NewContactUsecase creates a new contact usecase
func NewContactUsecase(mailer domain.Mailer, store domain.AttachmentStore, validate *validator.Validate, settings ContactSettings) domain.ContactUsecase {
	return &contactUsecase{
		mailer:   mailer,
		store:    store,
		validate: validate,
		settings: settings,
	}
}

// Submit validates the submission, sends one email and removes the stored
// attachment before returning, whatever the outcome.
func (uc *contactUsecase) Submit(ctx context.Context, sub *domain.Submission) (*domain.DeliveryReceipt, error) {
	if sub == nil {
		return nil, apperror.Validation(domain.MsgFieldsRequired)
	}
	defer uc.release(sub.Attachment)

	if err := uc.validate.Struct(sub); err != nil {
		return nil, apperror.Validation(domain.MsgFieldsRequired)
	}

	body, err := email.RenderContactBody(email.ContactEmailData{
		Name:    sub.Name,
		Email:   sub.Email,
		Message: sub.Message,
	}, uc.settings.EscapeHTML)
	if err != nil {
		return nil, apperror.Internal(err)
	}

	msg := &domain.OutboundMessage{
		Sender:    domain.Address{Name: uc.settings.SenderName, Address: uc.settings.SenderAddress},
		Recipient: domain.Address{Address: uc.settings.Recipient},
		Subject:   uc.settings.Subject,
		BodyHTML:  body,
	}
	if sub.Attachment != nil {
		msg.Attachments = []*domain.Attachment{sub.Attachment}
	}

	receipt, err := uc.mailer.Send(ctx, msg)
	if err != nil {
		logger.Log.Error("Error while sending email", "error", err, "recipient", uc.settings.Recipient)
		return nil, apperror.Transport(domain.MsgEmailFailed, err)
	}

	logger.Log.Info("Contact email sent", "message_id", receipt.MessageID, "attachments", len(msg.Attachments))
	return receipt, nil
}

func (uc *contactUsecase) release(att *domain.Attachment) {
	if att == nil {
		return
	}
	if err := uc.store.Remove(att); err != nil {
		logger.Log.Warn("Failed to remove uploaded file", "file", att.Filename, "error", err)
	}
}
