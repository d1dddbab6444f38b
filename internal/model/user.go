// Package model defines database models
package model

import "time"

type User struct {
	ID           string    `gorm:"primaryKey;size:16" bson:"_id" json:"id"`
	Email        string    `gorm:"uniqueIndex;not null;size:255" bson:"email" json:"email"`
	PasswordHash string    `gorm:"not null" bson:"password_hash" json:"-"`
	FirstName    string    `gorm:"not null;size:50" bson:"first_name" json:"firstName"`
	LastName     string    `gorm:"size:50" bson:"last_name,omitempty" json:"lastName,omitempty"`
	Verified     bool      `gorm:"default:false" bson:"verified" json:"isVerified"`
	CreatedAt    time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt    time.Time `bson:"updated_at" json:"updatedAt"`

	Tokens []Token `gorm:"foreignKey:UserID" bson:"-" json:"-"`
	Notes  []Note  `gorm:"foreignKey:UserID" bson:"-" json:"-"`
}

// Profile is the public view of a user. It never carries the password hash.
type Profile struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName,omitempty"`
	Email     string `json:"email"`
	Verified  bool   `json:"isVerified"`
}

func (u *User) Profile() Profile {
	return Profile{
		ID:        u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
		Verified:  u.Verified,
	}
}
