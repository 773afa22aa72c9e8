// Package email provides email client functionality
package email

import (
	"fmt"

	"github.com/resendlabs/resend-go"

	"github.com/sturner103/letter-to-you/config"
	"github.com/sturner103/letter-to-you/email/templates"
	"github.com/sturner103/letter-to-you/models"
)

type Client struct {
	resend    *resend.Client
	fromEmail string
	fromName  string
}

func NewClient() (*Client, error) {
	if config.ResendAPIKey == "" {
		return nil, fmt.Errorf("RESEND_API_KEY environment variable is required")
	}

	return &Client{
		resend:    resend.NewClient(config.ResendAPIKey),
		fromEmail: config.EmailFrom,
		fromName:  config.EmailFromName,
	}, nil
}

// SendLetterEmail delivers a letter to its author.
func (c *Client) SendLetterEmail(toEmail, displayName string, letter *models.Letter) error {
	name := displayName
	if name == "" {
		name = "Friend"
	}

	props := templates.LetterEmailProps{
		Name:          name,
		LetterContent: letter.Content,
		WrittenOn:     letter.CreatedAt.Format("January 2, 2006"),
	}

	request := &resend.SendEmailRequest{
		From:    fmt.Sprintf("%s <%s>", c.fromName, c.fromEmail),
		To:      []string{toEmail},
		Subject: "A Letter From Your Past Self 💌",
		Html:    templates.GetLetterEmailHTML(props),
		Text:    templates.GetLetterEmailText(props),
	}

	if _, err := c.resend.Emails.Send(request); err != nil {
		return fmt.Errorf("failed to send letter email: %w", err)
	}
	return nil
}

// SendMagicLinkEmail delivers a single-use sign-in link.
func (c *Client) SendMagicLinkEmail(toEmail, signInURL string) error {
	request := &resend.SendEmailRequest{
		From:    fmt.Sprintf("%s <%s>", c.fromName, c.fromEmail),
		To:      []string{toEmail},
		Subject: "Your sign-in link",
		Html:    templates.GetMagicLinkEmailHTML(templates.MagicLinkEmailProps{SignInURL: signInURL}),
	}

	if _, err := c.resend.Emails.Send(request); err != nil {
		return fmt.Errorf("failed to send magic link email: %w", err)
	}
	return nil
}

// Sender is the part of the client the sweep needs; tests stub it.
type Sender interface {
	SendLetterEmail(toEmail, displayName string, letter *models.Letter) error
}

var _ Sender = (*Client)(nil)
