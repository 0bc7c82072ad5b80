package mailer

import (
	"fmt"
	"html"
	"time"
)

const layout = `
	<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
		%s
		<p style="color: #888; font-size: 12px;">You are receiving this because of activity on your ReviewCredits account.</p>
	</div>
`

func render(body string) string {
	return fmt.Sprintf(layout, body)
}

// DeadlineChanged covers both directions: negative hours means the deadline moved earlier.
func DeadlineChanged(to, readerName, bookTitle string, newDeadline time.Time, hours int) Message {
	verb, amount := "extended", hours
	if hours < 0 {
		verb, amount = "shortened", -hours
	}
	return Message{
		To:      to,
		Subject: fmt.Sprintf("Your review deadline was %s", verb),
		HTML: render(fmt.Sprintf(`
		<h2>Hi %s,</h2>
		<p>The deadline for <strong>%s</strong> was %s by %d hour(s).</p>
		<p>New deadline: <strong>%s</strong></p>`,
			html.EscapeString(readerName), html.EscapeString(bookTitle), verb, amount,
			newDeadline.UTC().Format(time.RFC1123))),
	}
}

func ReaderReassigned(to, readerName, oldBookTitle, newBookTitle string) Message {
	return Message{
		To:      to,
		Subject: "You have been assigned a different book",
		HTML: render(fmt.Sprintf(`
		<h2>Hi %s,</h2>
		<p>Your assignment for <strong>%s</strong> was moved to <strong>%s</strong>.</p>
		<p>You will be notified when the new book becomes available.</p>`,
			html.EscapeString(readerName), html.EscapeString(oldBookTitle), html.EscapeString(newBookTitle))),
	}
}

func AssignmentCancelled(to, readerName, bookTitle, reason string) Message {
	return Message{
		To:      to,
		Subject: "Your review assignment was cancelled",
		HTML: render(fmt.Sprintf(`
		<h2>Hi %s,</h2>
		<p>Your assignment for <strong>%s</strong> was cancelled.</p>
		<p>Reason: %s</p>`,
			html.EscapeString(readerName), html.EscapeString(bookTitle), html.EscapeString(reason))),
	}
}

func RefundRequested(to, adminName, refundId, amount string, credits int) Message {
	return Message{
		To:      to,
		Subject: "New refund request awaiting review",
		HTML: render(fmt.Sprintf(`
		<h2>Hi %s,</h2>
		<p>A refund of <strong>%s</strong> for %d credits was requested.</p>
		<p>Request id: <code>%s</code></p>`,
			html.EscapeString(adminName), html.EscapeString(amount), credits, html.EscapeString(refundId))),
	}
}

func RefundCompleted(to, authorName, amount string) Message {
	return Message{
		To:      to,
		Subject: "Your refund has been processed",
		HTML: render(fmt.Sprintf(`
		<h2>Hi %s,</h2>
		<p>We refunded <strong>%s</strong> to your original payment method.</p>
		<p>It may take 5-10 business days to appear on your statement.</p>`,
			html.EscapeString(authorName), html.EscapeString(amount))),
	}
}

func RefundRejected(to, authorName, notes string) Message {
	body := fmt.Sprintf(`
		<h2>Hi %s,</h2>
		<p>Your refund request was not approved.</p>`, html.EscapeString(authorName))
	if notes != "" {
		body += fmt.Sprintf("\n\t\t<p>Notes from our team: %s</p>", html.EscapeString(notes))
	}
	return Message{To: to, Subject: "Update on your refund request", HTML: render(body)}
}
