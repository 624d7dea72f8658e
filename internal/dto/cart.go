package dto

type AddCartItemRequest struct {
	ProductID string `json:"product_id" binding:"required"`
	Quantity  int32  `json:"quantity"`
}

// SetCartQuantityRequest quantity <= 0 удаляет позицию
type SetCartQuantityRequest struct {
	Quantity int32 `json:"quantity"`
}

type CartItemResponse struct {
	ProductID string `json:"product_id"`
	Quantity  int32  `json:"quantity"`
}

type CartLineResponse struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Image     string `json:"image,omitempty"`
	UnitPrice int64  `json:"unit_price"`
	Quantity  int32  `json:"quantity"`
	Stock     int32  `json:"stock"`
	IsActive  bool   `json:"is_active"`
	LineTotal int64  `json:"line_total"`
}

type CartResponse struct {
	Items         []CartLineResponse `json:"items"`
	TotalQuantity int64              `json:"total_quantity"`
	Subtotal      int64              `json:"subtotal"`
}

type CartIssueResponse struct {
	ProductID string `json:"product_id"`
	Kind      string `json:"kind"`
	Requested int32  `json:"requested"`
	Available int32  `json:"available"`
}

type CartValidationResponse struct {
	Valid  bool                `json:"valid"`
	Issues []CartIssueResponse `json:"issues"`
}

type MessageResponse struct {
	Message string `json:"message"`
}
