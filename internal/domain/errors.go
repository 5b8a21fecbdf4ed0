package domain

type ErrorCode string

const (
	ErrorCodeNotFound        ErrorCode = "NOT_FOUND"
	ErrorCodeValidation      ErrorCode = "VALIDATION_ERROR"
	ErrorCodeLeadExists      ErrorCode = "LEAD_EXISTS"
	ErrorCodeLeadConverted   ErrorCode = "LEAD_CONVERTED"
	ErrorCodeContractExists  ErrorCode = "CONTRACT_EXISTS"
	ErrorCodeContractNotSent ErrorCode = "CONTRACT_NOT_SENT"
	ErrorCodeContractSigned  ErrorCode = "CONTRACT_SIGNED"
)

type DomainError struct {
	Code       ErrorCode
	Message    string
	HTTPStatus int
}

func (e *DomainError) Error() string {
	return string(e.Code) + ": " + e.Message
}
