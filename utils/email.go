package utils

import (
	"errors"
	"net/smtp"
	"net/textproto"

	"token-backend/config"

	"github.com/jordan-wright/email"
)

var ErrEmailNotConfigured = errors.New("email is not configured")

// EmailConfigured reports whether alerts can be mailed.
func EmailConfigured(conf config.EmailConfig) bool {
	return conf.Host != "" && conf.From != "" && len(conf.To) > 0
}

// SendEmail 发送告警邮件，html 为 false 时按纯文本发送
func SendEmail(conf config.EmailConfig, subject string, data []byte, html bool) error {
	if !EmailConfigured(conf) {
		return ErrEmailNotConfigured
	}
	if subject == "" {
		subject = conf.Subject
	}
	e := &email.Email{
		To:      conf.To,
		Cc:      conf.Cc,
		From:    conf.From,
		Subject: subject,
		Headers: textproto.MIMEHeader{},
	}
	if html {
		e.HTML = data
	} else {
		e.Text = data
	}
	return e.Send(conf.Host+":"+conf.Port, smtp.PlainAuth("", conf.Username, conf.Pwd, conf.Host))
}
