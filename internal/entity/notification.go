package entity

import (
	"time"
)

// Notification 每个账户事件一次推送的处理结果
type Notification struct {
	Id        string    `gorm:"primaryKey;size:36"`
	EventType string    `gorm:"index"`
	Symbol    string    `gorm:"index"`
	Template  string
	Status    string    `gorm:"index"`
	Error     string
	EventTime time.Time
	CreatedAt time.Time `gorm:"index"`
}

const (
	NotificationStatusSent           = "sent"
	NotificationStatusRenderFailed   = "render_failed"
	NotificationStatusDeliveryFailed = "delivery_failed"
)
