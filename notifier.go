package identity

import (
	"context"
	"fmt"
)

// ActivationMailTemplate names the template the mail collaborator renders
const ActivationMailTemplate = "activation-mail"

// StdoutNotifier writes the activation mail to stdout. It stands in for a
// real mail transport during development and in tests.
type StdoutNotifier struct{}

var _ Notifier = StdoutNotifier{}

func (StdoutNotifier) Send(_ context.Context, msg ActivationMail) error {
	fmt.Println("====== SENDING EMAIL NOTIFICATION =======")
	fmt.Printf("to: %s <%s>\n", msg.RecipientName, msg.RecipientEmail)
	fmt.Printf("template: %s\n", msg.Template)
	fmt.Printf("activation code: %s\n", msg.Code)
	return nil
}
