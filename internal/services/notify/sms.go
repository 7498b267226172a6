package notify

import (
	"context"
	"os"

	"github.com/pkg/errors"
	"github.com/vonage/vonage-go-sdk"
	"go.uber.org/zap"
)

// SMSNotifier sends alerts as SMS through the Vonage API.
type SMSNotifier struct {
	sms    *vonage.SMSClient
	from   string
	to     string
	logger *zap.Logger
}

// SMSCreds holds Vonage API credentials and routing numbers.
type SMSCreds struct {
	Key    string
	Secret string
	From   string
	To     string
}

// SMSCredsFromEnv reads VONAGE_API_KEY, VONAGE_API_SECRET, VONAGE_SENDER and
// VONAGE_RECIPIENT. All four are required.
func SMSCredsFromEnv() (SMSCreds, error) {
	creds := SMSCreds{
		Key:    os.Getenv("VONAGE_API_KEY"),
		Secret: os.Getenv("VONAGE_API_SECRET"),
		From:   os.Getenv("VONAGE_SENDER"),
		To:     os.Getenv("VONAGE_RECIPIENT"),
	}
	if creds.Key == "" || creds.Secret == "" || creds.From == "" || creds.To == "" {
		return SMSCreds{}, errors.New("VONAGE_API_KEY, VONAGE_API_SECRET, VONAGE_SENDER and VONAGE_RECIPIENT environment variables must be set")
	}
	return creds, nil
}

// NewSMSNotifier builds an SMS notifier from credentials.
func NewSMSNotifier(creds SMSCreds, logger *zap.Logger) *SMSNotifier {
	auth := vonage.CreateAuthFromKeySecret(creds.Key, creds.Secret)
	return &SMSNotifier{
		sms:    vonage.NewSMSClient(auth),
		from:   creds.From,
		to:     creds.To,
		logger: logger,
	}
}

// Send submits the SMS. Delivered is true when the gateway accepted the
// message (status "0" on the first submission).
func (n *SMSNotifier) Send(_ context.Context, message string) (bool, error) {
	response, _, err := n.sms.Send(n.from, n.to, message, vonage.SMSOpts{})
	if err != nil {
		return false, errors.Wrap(err, "failed to send sms")
	}
	if len(response.Messages) == 0 {
		return false, nil
	}

	delivered := response.Messages[0].Status == "0"
	if !delivered {
		n.logger.Warn("sms gateway rejected message",
			zap.String("status", response.Messages[0].Status))
	}
	return delivered, nil
}
