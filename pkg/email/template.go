package email

import (
	"bytes"
	"fmt"
	"html/template"
)

// ContactEmailData holds the data for contact form emails
type ContactEmailData struct {
	Name    string
	Email   string
	Message string
}

// contactEmailTemplate is the HTML body for contact form emails
const contactEmailTemplate = `
      <b style='color:red;'>Contact Form Submission</b><br />
      <p><strong>Name:</strong> {{.Name}}</p>
      <p><strong>Email:</strong> {{.Email}}</p>
      <p><strong>Message:</strong><br /> {{.Message}}</p>
    `

var contactTmpl = template.Must(template.New("contact").Parse(contactEmailTemplate))

// RenderContactBody renders the notification body. With escape=false the
// fields are inserted verbatim, so submitted markup reaches the recipient as HTML.
func RenderContactBody(data ContactEmailData, escape bool) (string, error) {
	var view interface{} = data
	if !escape {
		view = struct {
			Name, Email, Message template.HTML
		}{
			Name:    template.HTML(data.Name),
			Email:   template.HTML(data.Email),
			Message: template.HTML(data.Message),
		}
	}

	var body bytes.Buffer
	if err := contactTmpl.Execute(&body, view); err != nil {
		return "", fmt.Errorf("failed to execute email template: %w", err)
	}
	return body.String(), nil
}
