// Package templates renders the HTML and plain-text email bodies.
package templates

import (
	"fmt"
	"strings"
)

type LetterEmailProps struct {
	Name          string
	LetterContent string
	WrittenOn     string
}

// GetLetterEmailHTML renders the scheduled-delivery letter email.
func GetLetterEmailHTML(props LetterEmailProps) string {
	var paragraphs strings.Builder
	for _, p := range strings.Split(props.LetterContent, "\n\n") {
		paragraphs.WriteString(fmt.Sprintf(`<p style="margin-bottom: 16px; line-height: 1.6;">%s</p>`, p))
	}

	return strings.TrimSpace(fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
</head>
<body style="font-family: Georgia, serif; max-width: 600px; margin: 0 auto; padding: 40px 20px; background-color: #faf9f6; color: #2d2d2d;">
  <div style="background: white; padding: 40px; border-radius: 8px; box-shadow: 0 2px 8px rgba(0,0,0,0.08);">

    <div style="text-align: center; margin-bottom: 32px;">
      <h1 style="font-size: 24px; font-weight: normal; color: #5c4a3d; margin: 0;">
        A Letter From Your Past Self
      </h1>
      <p style="color: #8b7355; font-size: 14px; margin-top: 8px;">
        Written on %s
      </p>
    </div>

    <div style="border-top: 1px solid #e8e4df; border-bottom: 1px solid #e8e4df; padding: 32px 0; margin-bottom: 32px;">
      <p style="margin-bottom: 16px;">Dear %s,</p>
      %s
    </div>

    <div style="text-align: center; color: #8b7355; font-size: 14px;">
      <p style="margin: 0;">Delivered with care by</p>
      <p style="margin: 4px 0 0 0; font-weight: 500;">Letter to You</p>
    </div>

  </div>
</body>
</html>`, props.WrittenOn, props.Name, paragraphs.String()))
}

// GetLetterEmailText renders the plain-text alternative.
func GetLetterEmailText(props LetterEmailProps) string {
	return strings.TrimSpace(fmt.Sprintf(`
A LETTER FROM YOUR PAST SELF
Written on %s

---

Dear %s,

%s

---

Delivered with care by Letter to You`, props.WrittenOn, props.Name, props.LetterContent))
}

type MagicLinkEmailProps struct {
	SignInURL string
}

// GetMagicLinkEmailHTML renders the one-tap sign-in email.
func GetMagicLinkEmailHTML(props MagicLinkEmailProps) string {
	return strings.TrimSpace(fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
</head>
<body style="font-family: Georgia, serif; max-width: 600px; margin: 0 auto; padding: 40px 20px; background-color: #faf9f6; color: #2d2d2d;">
  <div style="background: white; padding: 40px; border-radius: 8px; box-shadow: 0 2px 8px rgba(0,0,0,0.08);">
    <h1 style="font-size: 24px; font-weight: normal; color: #5c4a3d; margin: 0 0 24px 0;">Sign in to Letter to You</h1>
    <p style="margin-bottom: 24px; line-height: 1.6;">Click the link below to sign in. It expires in 15 minutes and works once.</p>
    <p style="margin-bottom: 24px;"><a href="%s" style="color: #5c4a3d; font-weight: bold;">Sign in</a></p>
    <p style="color: #8b7355; font-size: 14px;">If you didn't request this, you can ignore this email.</p>
  </div>
</body>
</html>`, props.SignInURL))
}
