package consultantservice

import "errors"

var (
	// ErrConsultantNotFound возвращается, когда консультант с таким slug или ID не существует
	ErrConsultantNotFound = errors.New("consultantservice client: consultant not found")

	// ErrInternal возвращается при внутренних ошибках клиента
	ErrInternal = errors.New("consultantservice client: internal error")

	// ErrInvalidResponse возвращается при некорректном ответе от сервиса
	ErrInvalidResponse = errors.New("consultantservice client: invalid response")
)
