package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User 用户模型
type User struct {
	ID        string    `json:"id" gorm:"primaryKey;size:36" bson:"_id"`
	Name      string    `json:"name" gorm:"size:50;not null" bson:"name"`
	Email     string    `json:"email" gorm:"uniqueIndex;size:100;not null" bson:"email"`
	Password  string    `json:"-" gorm:"size:255;not null" bson:"password"`
	Avatar    string    `json:"avatar" gorm:"size:500" bson:"avatar"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
}

// TableName 设置表名
func (User) TableName() string {
	return "users"
}

// BeforeCreate 写入前补全主键
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = NewID()
	}
	return nil
}

// Profile 返回对外暴露的用户资料
func (u *User) Profile() *Profile {
	return &Profile{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Avatar:    u.Avatar,
		CreatedAt: u.CreatedAt,
	}
}

// Profile 当前登录用户身份及资料，由认证中间件写入请求上下文
type Profile struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Avatar    string    `json:"avatar"`
	CreatedAt time.Time `json:"createdAt"`
}

// NewID 生成记录主键
func NewID() string {
	return uuid.NewString()
}

// IsValidID 校验主键格式
func IsValidID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
