package templates

import (
	"strings"
	"testing"
)

func TestLetterEmailBodies(t *testing.T) {
	props := LetterEmailProps{
		Name:          "Jo",
		LetterContent: "First paragraph.\n\nSecond paragraph.",
		WrittenOn:     "January 2, 2025",
	}

	html := GetLetterEmailHTML(props)
	if !strings.Contains(html, "Dear Jo,") {
		t.Fatalf("greeting missing")
	}
	if !strings.Contains(html, "Written on January 2, 2025") {
		t.Fatalf("date line missing")
	}
	if strings.Count(html, "<p style=\"margin-bottom: 16px; line-height: 1.6;\">") != 2 {
		t.Fatalf("paragraphs not split on blank lines")
	}

	text := GetLetterEmailText(props)
	if !strings.Contains(text, "Dear Jo,") || !strings.Contains(text, "First paragraph.") {
		t.Fatalf("plain text body incomplete:\n%s", text)
	}
	if strings.Contains(text, "<p") {
		t.Fatalf("plain text contains markup")
	}
}
