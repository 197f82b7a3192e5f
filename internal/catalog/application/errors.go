package application

// Error 应用层校验错误
type Error struct {
	Code    string
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// NewError 创建新的错误
func NewError(code, message string) *Error {
	return &Error{Code: code, Message: message}
}

var (
	ErrInvalidName  = NewError("invalid_name", "product name must be 1-255 characters")
	ErrInvalidPrice = NewError("invalid_price", "price must be positive with at most 2 decimal places")
	ErrInvalidStock = NewError("invalid_stock", "stock quantity must be non-negative")
)
