package payment

import "errors"

var (
	ErrNotFound            = errors.New("payment not found")
	ErrInvalidPayment      = errors.New("invalid payment")
	ErrOverpaymentRejected = errors.New("posting exceeds outstanding balance")
)
