package usecase

import (
	"context"

	"github.com/semmidev/archivist/internal/domain"
)

// NotifyResult is the outcome of one delivery attempt. A failed delivery is
// reported here and never returned as an error.
type NotifyResult struct {
	Channel string
	Err     error
}

type Notify struct {
	notifiers []domain.Notifier
	logger    domain.Logger
}

func NewNotify(notifiers []domain.Notifier, logger domain.Logger) *Notify {
	return &Notify{notifiers: notifiers, logger: logger}
}

// Execute attempts each notifier exactly once and logs the results.
func (uc *Notify) Execute(ctx context.Context, n domain.Notification) []NotifyResult {
	results := make([]NotifyResult, 0, len(uc.notifiers))

	for _, notifier := range uc.notifiers {
		res := NotifyResult{Channel: notifier.Name(), Err: notifier.Notify(ctx, n)}
		results = append(results, res)

		switch {
		case res.Err != nil:
			uc.logger.Errorf("Failed to send %s notification: %v", res.Channel, res.Err)
		case res.Channel == "email":
			uc.logger.Infof("Email sent to %s", n.Recipient)
		default:
			uc.logger.Infof("Notification sent via %s", res.Channel)
		}
	}

	return results
}
