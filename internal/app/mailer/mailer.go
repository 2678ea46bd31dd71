package mailer

import (
	"fmt"

	"factoring-backend/internal/app/config"
	"factoring-backend/internal/app/ds"

	"github.com/sirupsen/logrus"
	gomail "gopkg.in/gomail.v2"
)

// Mailer рассылает уведомления о событиях подписания. Письма отправляются
// после фиксации транзакции и не влияют на результат операции.
type Mailer struct {
	dialer *gomail.Dialer
	from   string
}

func NewMailer(cfg config.SMTPConfig) *Mailer {
	return &Mailer{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password),
		from:   cfg.From,
	}
}

func (m *Mailer) send(to []string, subject, body string) error {
	if m.dialer.Host == "" || len(to) == 0 {
		// SMTP не настроен или некому отправлять
		return nil
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to...)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", body)

	return m.dialer.DialAndSend(msg)
}

// sendAsync отправляет письмо в фоне; ошибка доставки только логируется
func (m *Mailer) sendAsync(to []string, subject, body string) {
	go func() {
		if err := m.send(to, subject, body); err != nil {
			logrus.Errorf("failed to send mail %q: %v", subject, err)
		}
	}()
}

// companyEmails собирает непустые адреса компаний
func companyEmails(companies ...ds.Company) []string {
	var emails []string
	for _, company := range companies {
		if company.Email != "" {
			emails = append(emails, company.Email)
		}
	}
	return emails
}

// registryParties возвращает все стороны реестра, включая банк если он назначен
func registryParties(registry *ds.Registry) []ds.Company {
	parties := []ds.Company{registry.Contract.Seller, registry.Contract.Buyer}
	if registry.Bank != nil {
		parties = append(parties, *registry.Bank)
	}
	return parties
}

// NotifyRegistrySigned уведомляет контрагентов о новой подписи по реестру
func (m *Mailer) NotifyRegistrySigned(registry *ds.Registry, signer string) {
	if registry == nil {
		return
	}
	to := companyEmails(registryParties(registry)...)

	subject := fmt.Sprintf("Реестр %s подписан (%s)", registry.Number, signer)
	body := fmt.Sprintf(
		"<p>По реестру <b>%s</b> на сумму %.2f получена подпись со стороны: %s.</p>"+
			"<p>Текущий статус подписания: %s.</p>",
		registry.Number, registry.Amount, signer, registry.SignStatus)
	m.sendAsync(to, subject, body)
}

// NotifyRegistryFinished уведомляет стороны о завершении реестра
func (m *Mailer) NotifyRegistryFinished(registry *ds.Registry) {
	if registry == nil {
		return
	}
	to := companyEmails(registryParties(registry)...)

	subject := fmt.Sprintf("Реестр %s завершён", registry.Number)
	body := fmt.Sprintf(
		"<p>Реестр <b>%s</b> на сумму %.2f подписан всеми сторонами и завершён.</p>",
		registry.Number, registry.Amount)
	m.sendAsync(to, subject, body)
}

// NotifyRegistryDeclined уведомляет затронутые стороны об отклонении реестра
func (m *Mailer) NotifyRegistryDeclined(registry *ds.Registry, decliner string, audience []ds.Company) {
	if registry == nil {
		return
	}
	to := companyEmails(audience...)

	subject := fmt.Sprintf("Реестр %s отклонён", registry.Number)
	body := fmt.Sprintf(
		"<p>Реестр <b>%s</b> отклонён стороной: %s. Собранные подписи аннулированы.</p>",
		registry.Number, decliner)
	m.sendAsync(to, subject, body)
}

// NotifyDocumentSigned уведомляет отправителя о подписи неформализованного документа
func (m *Mailer) NotifyDocumentSigned(document *ds.UnformalizedDocument, signerCompany string) {
	if document == nil {
		return
	}
	to := companyEmails(document.Sender)

	subject := fmt.Sprintf("Документ \"%s\" подписан", document.Topic)
	body := fmt.Sprintf(
		"<p>Компания %s подписала документ <b>%s</b>.</p><p>Статус документа: %s.</p>",
		signerCompany, document.Topic, document.Status)
	m.sendAsync(to, subject, body)
}

// NotifyDocumentDeclined уведомляет отправителя об отклонении документа
func (m *Mailer) NotifyDocumentDeclined(document *ds.UnformalizedDocument, declinerCompany string) {
	if document == nil {
		return
	}
	to := companyEmails(document.Sender)

	subject := fmt.Sprintf("Документ \"%s\" отклонён", document.Topic)
	body := fmt.Sprintf(
		"<p>Компания %s отклонила документ <b>%s</b>.</p><p>Причина: %s.</p>",
		declinerCompany, document.Topic, document.DeclineReason)
	m.sendAsync(to, subject, body)
}
