package dto

// BaseError универсальный корневой формат ошибки
// Code: машинно-ориентированный код (snake_case)
// Message: краткое человеко-читаемое описание
// Details: дополнительная строка (пояснение / fragment)
// Fields: для валидационных ошибок (имя поля + текст)
// Stock: для ошибок нехватки остатка
type BaseError struct {
	Code    string       `json:"code"`
	Message string       `json:"message"`
	Details string       `json:"details,omitempty"`
	Fields  []FieldError `json:"fields,omitempty"`
	Stock   *StockInfo   `json:"stock,omitempty"`
}

// FieldError отдельная ошибка по конкретному полю
// Field: путь к полю (например: "items[0].quantity" или "shipping_address.city")
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Tag     string `json:"tag,omitempty"`
}

// StockInfo сколько запросили и сколько реально есть на складе
type StockInfo struct {
	ProductID string `json:"product_id"`
	Requested int32  `json:"requested"`
	Available int32  `json:"available"`
}

const (
	CodeValidation         = "validation_error"
	CodeInsufficientStock  = "insufficient_stock"
	CodeNotFound           = "not_found"
	CodeProductUnavailable = "product_unavailable"
	CodeInvalidTransition  = "invalid_transition"
	CodeUnauthorized       = "unauthorized"
	CodeForbidden          = "forbidden"
	CodeTimeout            = "timeout"
	CodeInternal           = "internal_error"
)

// Семантические обёртки для swagger @Failure; по JSON совпадают с BaseError.

// ValidationErrorResponse 400
type ValidationErrorResponse BaseError

// InsufficientStockErrorResponse 409
// Пример: в заказе больше единиц, чем осталось на складе
type InsufficientStockErrorResponse BaseError

// ConflictErrorResponse 409
// Пример: недопустимый переход статуса заказа
type ConflictErrorResponse BaseError

// UnauthorizedErrorResponse 401
type UnauthorizedErrorResponse BaseError

// ForbiddenErrorResponse 403
type ForbiddenErrorResponse BaseError

// NotFoundErrorResponse 404
// Code: "not_found" или "product_unavailable"
type NotFoundErrorResponse BaseError

// TimeoutErrorResponse 504
type TimeoutErrorResponse BaseError

// InternalErrorResponse 500
type InternalErrorResponse BaseError

func NewValidationError(msg string, fields []FieldError) ValidationErrorResponse {
	return ValidationErrorResponse(BaseError{Code: CodeValidation, Message: msg, Fields: fields})
}
func NewInsufficientStockError(msg string, stock StockInfo) InsufficientStockErrorResponse {
	return InsufficientStockErrorResponse(BaseError{Code: CodeInsufficientStock, Message: msg, Stock: &stock})
}
func NewInvalidTransitionError(msg string) ConflictErrorResponse {
	return ConflictErrorResponse(BaseError{Code: CodeInvalidTransition, Message: msg})
}
func NewUnauthorizedError(msg string) UnauthorizedErrorResponse {
	return UnauthorizedErrorResponse(BaseError{Code: CodeUnauthorized, Message: msg})
}
func NewForbiddenError(msg string) ForbiddenErrorResponse {
	return ForbiddenErrorResponse(BaseError{Code: CodeForbidden, Message: msg})
}
func NewNotFoundError(msg string) NotFoundErrorResponse {
	return NotFoundErrorResponse(BaseError{Code: CodeNotFound, Message: msg})
}
func NewProductUnavailableError(msg, productID string) NotFoundErrorResponse {
	return NotFoundErrorResponse(BaseError{Code: CodeProductUnavailable, Message: msg, Details: productID})
}
func NewTimeoutError(msg string) TimeoutErrorResponse {
	return TimeoutErrorResponse(BaseError{Code: CodeTimeout, Message: msg})
}
func NewInternalError(details string) InternalErrorResponse {
	return InternalErrorResponse(BaseError{Code: CodeInternal, Message: "internal server error", Details: details})
}
