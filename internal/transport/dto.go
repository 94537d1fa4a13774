package transport

type AddItemRequest struct {
	ProductID uint   `json:"product_id" form:"product_id"`
	Size      string `json:"size"       form:"size"`
	Quantity  int    `json:"quantity"   form:"quantity"`
}

type UpdateItemRequest struct {
	Quantity int `json:"quantity" form:"quantity"`
}

type CheckoutRequest struct {
	Address       string `json:"address"`
	PaymentMethod string `json:"paymentMethod"`
	Phone         string `json:"phone"`
	Email         string `json:"email"`
	FullName      string `json:"fullName"`
	Comment       string `json:"comment"`
}

type ReviewRequest struct {
	Rating  int    `json:"rating"  form:"rating"`
	Comment string `json:"comment" form:"comment"`
}

type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type AddItemResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	CartCount int    `json:"cart_count"`
	Action    string `json:"action"`
}

type UpdateItemResponse struct {
	Success     bool   `json:"success"`
	Message     string `json:"message"`
	OldQuantity int    `json:"old_quantity"`
	NewQuantity int    `json:"new_quantity"`
	CartCount   int    `json:"cart_count"`
}

type CheckoutResponse struct {
	Success     bool   `json:"success"`
	OrderNumber string `json:"order_number"`
	OrderID     uint   `json:"order_id"`
	TotalAmount string `json:"total_amount"`
	ReceiptURL  string `json:"receipt_url"`
}
