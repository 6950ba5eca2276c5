package notifier

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"gopkg.in/gomail.v2"
)

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// SMTPNotifier delivers notifications over SMTP. Notify returns immediately;
// delivery happens in a goroutine and failures are only logged.
type SMTPNotifier struct {
	cfg SMTPConfig
	log *logrus.Logger
}

func NewSMTPNotifier(cfg SMTPConfig, log *logrus.Logger) *SMTPNotifier {
	return &SMTPNotifier{cfg: cfg, log: log}
}

func (n *SMTPNotifier) Notify(audience []string, subject, message, link string) {
	if len(audience) == 0 {
		return
	}
	go func() {
		m := gomail.NewMessage()
		m.SetHeader("From", n.cfg.From)
		m.SetHeader("To", audience...)
		m.SetHeader("Subject", subject)
		body := message
		if link != "" {
			body = fmt.Sprintf("%s<br><br><a href=%q>%s</a>", message, link, link)
		}
		m.SetBody("text/html", body)

		d := gomail.NewDialer(n.cfg.Host, n.cfg.Port, n.cfg.Username, n.cfg.Password)
		if err := d.DialAndSend(m); err != nil {
			n.log.WithFields(logrus.Fields{
				"subject": subject,
				"error":   err,
			}).Warn("notification delivery failed")
		}
	}()
}
