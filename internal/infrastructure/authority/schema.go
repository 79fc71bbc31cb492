package authority

import "time"

// Wire shapes of the authority's JSON resources. Field presence is not
// guaranteed on reads; normalization fills documented defaults.

type wireUser struct {
	ID        int64   `json:"id"`
	Username  string  `json:"username"`
	Balance   float64 `json:"balance"`
	Referrals int     `json:"referrals"`
	IsAdmin   bool    `json:"is_admin"`
}

type wireProduct struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	Image       string  `json:"image"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	InStock     bool    `json:"in_stock"`
}

type wireOrderItem struct {
	ProductID int64   `json:"product_id"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Image     string  `json:"image"`
	Quantity  int     `json:"quantity"`
}

type wireOrder struct {
	ID        string          `json:"id"`
	Username  string          `json:"username"`
	Items     []wireOrderItem `json:"items"`
	Total     float64         `json:"total"`
	Status    string          `json:"status"`
	CreatedAt time.Time       `json:"created_at"`
}

// --- Request bodies ---

type upsertUserRequest struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	IsAdmin  bool   `json:"is_admin"`
}

type createProductRequest struct {
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	Image       string  `json:"image"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	InStock     bool    `json:"in_stock"`
}

type createOrderRequest struct {
	UserID int64           `json:"user_id"`
	Items  []wireOrderItem `json:"items"`
	Total  float64         `json:"total"`
}

type updateOrderStatusRequest struct {
	Status string `json:"status"`
}
