package mail

import (
	"github.com/pkg/errors"

	"github.com/pure-golang/mailer/env"
)

const (
	DefaultCharset       = "utf-8"
	DefaultMaxLineLength = 78
	DefaultContentType   = "text/html"
	DefaultMimeType      = "plain/text"
)

// Options are transport hints stored on a Message for the delivery engine.
type Options struct {
	CharacterSet  string `envconfig:"MAIL_CHARSET" default:"utf-8"`
	MaxLineLength int    `envconfig:"MAIL_MAX_LINE_LENGTH" default:"78"`
	Priority      int    `envconfig:"MAIL_PRIORITY" default:"0"` // 1 (highest) .. 5 (lowest), 0 means not set
}

// DefaultOptions returns Options with the built-in defaults.
func DefaultOptions() Options {
	return Options{
		CharacterSet:  DefaultCharset,
		MaxLineLength: DefaultMaxLineLength,
	}
}

// LoadOptions reads Options from the environment (and .env if present).
func LoadOptions() (Options, error) {
	var opts Options
	if err := env.InitConfig(&opts); err != nil {
		return Options{}, errors.Wrap(err, "failed to load mail options")
	}
	return opts, nil
}
