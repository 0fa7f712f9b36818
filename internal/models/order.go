package models

import "time"

type MenuItem struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Image       string  `json:"image"`
	Price       float64 `json:"price"`
}

type OrderItem struct {
	MenuID      string  `json:"menuId"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
}

type Order struct {
	ID          string      `json:"id"`
	DinerID     string      `json:"dinerId"`
	FranchiseID string      `json:"franchiseId"`
	StoreID     string      `json:"storeId"`
	Items       []OrderItem `json:"items"`
	Date        time.Time   `json:"date"`
}
