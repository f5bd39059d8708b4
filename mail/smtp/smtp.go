// Package smtp delivers mail.Message values over SMTP with optional
// STARTTLS and PLAIN authentication.
package smtp

import (
	"time"

	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("github.com/pure-golang/mailer/mail/smtp")

// Config contains SMTP connection parameters.
type Config struct {
	Host      string        `envconfig:"SMTP_HOST" required:"true"`     // smtp.gmail.com
	Port      int           `envconfig:"SMTP_PORT" default:"587"`       // 587 for STARTTLS
	Username  string        `envconfig:"SMTP_USER"`                     // no AUTH when empty
	Password  string        `envconfig:"SMTP_PASSWORD"`                 // password or app password
	TLS       bool          `envconfig:"SMTP_TLS" default:"true"`       // STARTTLS when the server offers it
	Insecure  bool          `envconfig:"SMTP_INSECURE" default:"false"` // skip certificate verification
	Timeout   time.Duration `envconfig:"SMTP_TIMEOUT" default:"30s"`    // dial timeout
	HelloName string        `envconfig:"SMTP_HELO" default:"localhost"`

	// MessageIDDomain overrides the domain of generated Message-IDs.
	MessageIDDomain string `envconfig:"SMTP_MESSAGE_ID_DOMAIN"`
}
