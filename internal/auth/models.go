package auth

import "time"

type Session struct {
	SessionID string    `gorm:"primaryKey" json:"-"`
	UserID    string    `gorm:"not null;unique" json:"-"`
	ExpiresAt time.Time `gorm:"not null"`
}

type User struct {
	UserID         string    `gorm:"primaryKey" json:"user_id"`
	Username       string    `gorm:"uniqueIndex" json:"username"`
	Password       string    `json:"password" gorm:"-"`
	HashedPassword string    `json:"-"`
	DisplayName    string    `json:"display_name"`
	Role           string    `gorm:"default:'STUDENT'" json:"role"`
	School         string    `json:"school"`
	StudentClass   string    `json:"student_class"`
	CreatedAt      time.Time `json:"created_at"`
	Session        Session   `gorm:"foreignKey:UserID" json:"-"`
}

func (Session) TableName() string { return "app_auth.sessions" }
func (User) TableName() string    { return "app_auth.users" }
