package email

// Provider определяет интерфейс для отправки email
type Provider interface {
	// Send отправляет простое email сообщение
	Send(to, subject, htmlBody string) error

	// SendOTP отправляет код подтверждения регистрации
	SendOTP(to, name, code string) error
}
