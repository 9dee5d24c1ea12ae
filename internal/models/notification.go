package models

import "time"

type NotificationType string

const (
	NotificationOrder  NotificationType = "order"
	NotificationPromo  NotificationType = "promo"
	NotificationSystem NotificationType = "system"
)

type Notification struct {
	ID        string           `json:"id"`
	Type      NotificationType `json:"type"`
	Title     string           `json:"title"`
	Message   string           `json:"message"`
	Timestamp time.Time        `json:"timestamp"`
	Read      bool             `json:"read"`
	OrderID   string           `json:"orderId,omitempty"`
}

type ToastType string

const (
	ToastSuccess ToastType = "success"
	ToastError   ToastType = "error"
	ToastInfo    ToastType = "info"
	ToastWarning ToastType = "warning"
)

type Toast struct {
	ID      string    `json:"id"`
	Type    ToastType `json:"type"`
	Message string    `json:"message"`
}
