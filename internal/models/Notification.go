package models

import (
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
)

const (
	ActionVisit   = "用户访问群码"
	ActionUpload  = "管理员更新群码"
	ActionDelete  = "管理员删除群码"
	ActionExpired = "群码过期自动清理"

	ActorVisitor = "访客"
	ActorAdmin   = "管理员"
	ActorSystem  = "系统"
)

// ActionRename labels a rename with both names.
func ActionRename(oldName, newName string) string {
	return fmt.Sprintf("管理员更名群码（%s → %s）", oldName, newName)
}

type NotificationEvent struct {
	ID        string    `json:"id"`
	Group     string    `json:"group"`
	Action    string    `json:"action"`
	Origin    string    `json:"origin"`
	Actor     string    `json:"actor"`
	Timestamp time.Time `json:"timestamp"`
}

func NewNotificationEvent(group, action, origin, actor string, at time.Time) NotificationEvent {
	return NotificationEvent{
		ID:        ulid.Make().String(),
		Group:     group,
		Action:    action,
		Origin:    origin,
		Actor:     actor,
		Timestamp: at,
	}
}

type ChannelConfig struct {
	ID             int64     `json:"id"`
	Name           string    `json:"name"`
	AppID          string    `json:"appid" validate:"required"`
	Secret         string    `json:"secret" validate:"required"`
	Recipient      string    `json:"touser" validate:"required"`
	TemplateID     string    `json:"template_id" validate:"required"`
	TemplateFields []string  `json:"template_fields"`
	RedirectURL    string    `json:"url" validate:"fullUrl"`
	UpdatedAt      time.Time `json:"updated_at"`
}
