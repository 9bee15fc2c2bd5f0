package rabbitmq_consumer

import "errors"

// permanentError помечает ошибку, которую бесполезно повторять
// (например, сообщение не проходит схему)
type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent оборачивает ошибку обработчика: сообщение уйдет сразу
// в финальную DLQ, минуя ретраи.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

func IsPermanent(err error) bool {
	var pe *permanentError
	return errors.As(err, &pe)
}
