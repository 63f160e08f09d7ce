package notifier

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/semmidev/archivist/internal/config"
	"github.com/semmidev/archivist/internal/domain"
	. "github.com/smartystreets/goconvey/convey"
)

func TestEmailNotifier(t *testing.T) {
	Convey("Given an EmailNotifier", t, func() {
		cfg := config.SMTPConfig{
			Host:     "smtp.example.com",
			Port:     587,
			Username: "backups@example.com",
			Password: "secret",
			Timeout:  5 * time.Second,
		}
		n := domain.Notification{
			Subject:   "Backup Notification",
			Body:      "Backup completed successfully. Compressed file: /dst/backup_20240101000000.zip",
			Recipient: "ops@example.com",
		}

		Convey("When no recipient is given", func() {
			notifier := NewEmail(config.SMTPConfig{})
			n.Recipient = ""

			Convey("It should do nothing", func() {
				So(notifier.Notify(context.Background(), n), ShouldBeNil)
			})
		})

		Convey("When the smtp host is missing", func() {
			notifier := NewEmail(config.SMTPConfig{Port: 587})
			err := notifier.Notify(context.Background(), n)

			Convey("It should report it", func() {
				So(errors.Is(err, ErrSMTPNotConfigured), ShouldBeTrue)
			})
		})

		Convey("When the recipient is malformed", func() {
			notifier := NewEmail(cfg)
			n.Recipient = "not an address"
			err := notifier.Notify(context.Background(), n)

			Convey("It should fail before dialing", func() {
				So(err, ShouldNotBeNil)
				So(err.Error(), ShouldContainSubstring, "invalid recipient address")
			})
		})

		Convey("When building the message", func() {
			notifier := NewEmail(cfg)
			msg, err := notifier.message(n)
			So(err, ShouldBeNil)

			var buf bytes.Buffer
			_, err = msg.WriteTo(&buf)
			So(err, ShouldBeNil)
			raw := buf.String()

			Convey("It should fall back to the username as sender", func() {
				So(raw, ShouldContainSubstring, "backups@example.com")
			})

			Convey("It should carry subject, recipient and plain text body", func() {
				So(raw, ShouldContainSubstring, "Subject: Backup Notification")
				So(raw, ShouldContainSubstring, "ops@example.com")
				So(raw, ShouldContainSubstring, "text/plain")
				So(raw, ShouldContainSubstring, "backup_20240101000000.zip")
			})
		})

		Convey("It should authenticate only when a username is configured", func() {
			So(len(NewEmail(cfg).clientOptions()), ShouldEqual, 6)

			cfg.Username = ""
			cfg.Timeout = 0
			So(len(NewEmail(cfg).clientOptions()), ShouldEqual, 2)
		})
	})
}
