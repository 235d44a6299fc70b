package mailer

import (
	"crypto/tls"
	"errors"

	mail "github.com/go-mail/mail/v2"

	"siwes-logbook/config"
)

// ErrNotConfigured SMTP 未配置
var ErrNotConfigured = errors.New("smtp not configured")

// Sender 发送邮件的最小接口，便于测试替换
type Sender interface {
	DialAndSend(m ...*mail.Message) error
}

// Mailer SMTP 邮件发送器
type Mailer struct {
	from   string
	sender Sender
}

// New 根据配置创建 Mailer；smtp_host 为空时返回的 Mailer 不会发送任何邮件
func New(cfg *config.MailConfig) *Mailer {
	if cfg.SMTPHost == "" || cfg.From == "" {
		return &Mailer{}
	}
	d := mail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.Username, cfg.Password)
	d.StartTLSPolicy = mail.OpportunisticStartTLS
	d.TLSConfig = &tls.Config{ServerName: cfg.SMTPHost}
	return &Mailer{from: cfg.From, sender: d}
}

// NewWithSender 使用自定义 Sender 创建 Mailer
func NewWithSender(from string, sender Sender) *Mailer {
	return &Mailer{from: from, sender: sender}
}

// Enabled 是否已配置 SMTP
func (m *Mailer) Enabled() bool {
	return m != nil && m.sender != nil
}

// Send 发送纯文本邮件
func (m *Mailer) Send(to []string, subject, body string) error {
	if !m.Enabled() {
		return ErrNotConfigured
	}
	if len(to) == 0 {
		return nil
	}

	msg := mail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to...)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)

	return m.sender.DialAndSend(msg)
}
