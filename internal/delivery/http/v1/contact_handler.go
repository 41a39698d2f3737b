package v1

import (
	"context"
	"errors"
	"go-contact-backend/internal/delivery/http/middleware"
	"go-contact-backend/internal/delivery/http/response"
	"go-contact-backend/internal/domain"
	"go-contact-backend/pkg/apperror"
	"go-contact-backend/pkg/logger"
	"go-contact-backend/pkg/upload"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
)

// imageField is the multipart field carrying the optional attachment
const imageField = "image"

type ContactHandler struct {
	contactUC domain.ContactUsecase
}

// ContactForm is the text part of a submission (multipart, urlencoded or JSON)
type ContactForm struct {
	Name    string `form:"name" json:"name"`
	Email   string `form:"email" json:"email"`
	Message string `form:"message" json:"message"`
}

// NewContactHandler registers the contact routes (public, no auth required)
func NewContactHandler(public *gin.RouterGroup, contactUC domain.ContactUsecase, uploads *upload.Store) {
	handler := &ContactHandler{
		contactUC: contactUC,
	}

	public.POST("/send", middleware.SingleUpload(uploads, imageField), handler.Send)
}

// Send godoc
// @Summary      Submit Contact Form
// @Description  Relay a contact form submission by email. An optional image (max 5 MiB) is attached and deleted afterwards.
// @Tags         contact
// @Accept       multipart/form-data
// @Produce      json
// @Param        name     formData  string  true   "Sender name"
// @Param        email    formData  string  true   "Sender email"
// @Param        message  formData  string  true   "Message"
// @Param        image    formData  file    false  "Optional attachment"
// @Success      200      {object}  response.Response{resp=domain.DeliveryReceipt}
// @Failure      400      {object}  response.Response
// @Failure      413      {object}  response.Response
// @Failure      500      {object}  response.Response
// @Router       /send [post]
func (h *ContactHandler) Send(c *gin.Context) {
	var form ContactForm
	// An empty JSON body is an empty form; the usecase reports the missing fields
	if err := c.ShouldBind(&form); err != nil && !errors.Is(err, io.EOF) {
		c.Error(apperror.BadRequest("Invalid request body"))
		return
	}

	sub := &domain.Submission{
		Name:    form.Name,
		Email:   form.Email,
		Message: form.Message,
	}
	if v, ok := c.Get(string(domain.KeyAttachment)); ok {
		sub.Attachment, _ = v.(*domain.Attachment)
	}

	attached := ""
	if sub.Attachment != nil {
		attached = sub.Attachment.Filename
	}
	logger.Log.Debug("Contact form received", "name", sub.Name, "email", sub.Email, "message_length", len(sub.Message), "attachment", attached)

	// Delivery is not abandoned when the caller disconnects; SMTP_TIMEOUT bounds it
	receipt, err := h.contactUC.Submit(context.WithoutCancel(c.Request.Context()), sub)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, domain.MsgEmailSent, receipt)
}
