package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestLoad(t *testing.T) {
	t.Setenv("ARCHIVIST_SMTP_HOST", "smtp.env.test")
	t.Setenv("ARCHIVIST_SMTP_PASSWORD", "from-env")

	Convey("Given the Load function", t, func() {
		tempDir, err := os.MkdirTemp("", "config_test")
		So(err, ShouldBeNil)
		defer os.RemoveAll(tempDir)

		Convey("When source and destination are given with interspersed flags", func() {
			cfg, err := Load([]string{"/src", "--email", "ops@example.com", "/dst"})

			Convey("It should fill the run arguments", func() {
				So(err, ShouldBeNil)
				So(cfg.Run.Source, ShouldEqual, "/src")
				So(cfg.Run.Destination, ShouldEqual, "/dst")
				So(cfg.Run.Email, ShouldEqual, "ops@example.com")
				So(cfg.RestoreMode(), ShouldBeFalse)
			})

			Convey("It should apply defaults and environment", func() {
				So(err, ShouldBeNil)
				So(cfg.Log.Level, ShouldEqual, "info")
				So(cfg.SMTP.Port, ShouldEqual, 587)
				So(cfg.SMTP.Timeout, ShouldEqual, 30*time.Second)
				So(cfg.SMTP.Host, ShouldEqual, "smtp.env.test")
				So(cfg.SMTP.Password, ShouldEqual, "from-env")
			})
		})

		Convey("When only a destination is given with --restore", func() {
			cfg, err := Load([]string{"/dst", "--restore", "/dst/backup_20240101000000.zip"})

			Convey("It should select restore mode", func() {
				So(err, ShouldBeNil)
				So(cfg.Run.Source, ShouldEqual, "")
				So(cfg.Run.Destination, ShouldEqual, "/dst")
				So(cfg.RestoreMode(), ShouldBeTrue)
			})
		})

		Convey("When only a destination is given without --restore", func() {
			_, err := Load([]string{"/dst"})

			Convey("It should require a source", func() {
				So(err, ShouldNotBeNil)
				So(err.Error(), ShouldContainSubstring, "source is required")
			})
		})

		Convey("When no positional arguments are given", func() {
			_, err := Load(nil)

			Convey("It should require a destination", func() {
				So(err, ShouldNotBeNil)
				So(err.Error(), ShouldContainSubstring, "destination is required")
			})
		})

		Convey("When too many positional arguments are given", func() {
			_, err := Load([]string{"a", "b", "c"})

			Convey("It should reject them", func() {
				So(err, ShouldNotBeNil)
				So(err.Error(), ShouldContainSubstring, "unexpected arguments: c")
			})
		})

		Convey("When an unknown flag is given", func() {
			_, err := Load([]string{"--bogus", "a", "b"})

			Convey("It should fail to parse", func() {
				So(err, ShouldNotBeNil)
				So(err.Error(), ShouldContainSubstring, "failed to parse arguments")
			})
		})

		Convey("When a config file is given", func() {
			configFile := filepath.Join(tempDir, "archivist.yaml")
			content := []byte(`
log:
  level: debug
smtp:
  port: 2525
  from: backups@example.com
  timeout: 5s
telegram:
  enabled: true
  bot_token: "123:abc"
  chat_id: "-100200"
archive:
  keep_empty_dirs: true
`)
			So(os.WriteFile(configFile, content, 0644), ShouldBeNil)

			cfg, err := Load([]string{"-c", configFile, "-v", "/src", "/dst"})

			Convey("It should merge file values under the environment", func() {
				So(err, ShouldBeNil)
				So(cfg.Log.Level, ShouldEqual, "debug")
				So(cfg.Log.Console, ShouldBeTrue)
				So(cfg.SMTP.Port, ShouldEqual, 2525)
				So(cfg.SMTP.From, ShouldEqual, "backups@example.com")
				So(cfg.SMTP.Timeout, ShouldEqual, 5*time.Second)
				So(cfg.SMTP.Host, ShouldEqual, "smtp.env.test")
				So(cfg.Telegram.Enabled, ShouldBeTrue)
				So(cfg.Telegram.ChatID, ShouldEqual, "-100200")
				So(cfg.Archive.KeepEmptyDirs, ShouldBeTrue)
			})
		})

		Convey("When the given config file does not exist", func() {
			_, err := Load([]string{"--config", filepath.Join(tempDir, "missing.yaml"), "/src", "/dst"})

			Convey("It should return an error", func() {
				So(err, ShouldNotBeNil)
				So(err.Error(), ShouldContainSubstring, "failed to read config")
			})
		})
	})
}

func TestValidate(t *testing.T) {
	Convey("Given a Config", t, func() {
		cfg := &Config{Run: RunConfig{Source: "/src", Destination: "/dst"}, SMTP: SMTPConfig{Port: 587}}

		Convey("It should accept a complete backup run", func() {
			So(cfg.Validate(), ShouldBeNil)
		})

		Convey("It should reject an out of range port", func() {
			cfg.SMTP.Port = 70000
			So(cfg.Validate(), ShouldNotBeNil)
		})

		Convey("It should reject an enabled telegram without credentials", func() {
			cfg.Telegram.Enabled = true
			err := cfg.Validate()
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "telegram.bot_token")
		})
	})
}
