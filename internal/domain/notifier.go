package domain

import "context"

type Notification struct {
	Subject   string
	Body      string
	Recipient string
}

type Notifier interface {
	Name() string
	Notify(ctx context.Context, n Notification) error
}
