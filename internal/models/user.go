// Package models contains data structures for the application's domain models.
package models

import (
	"time"

	"gorm.io/gorm"
)

// Role defines a user's permission level. Roles are ordered: each role
// includes the permissions of the ones before it.
type Role string

const (
	RoleUser      Role = "user"
	RoleAuthor    Role = "author"
	RoleModerator Role = "moderator"
	RoleAdmin     Role = "admin"
)

// roleRank orders roles for HasRole comparisons.
var roleRank = map[Role]int{
	RoleUser:      0,
	RoleAuthor:    1,
	RoleModerator: 2,
	RoleAdmin:     3,
}

// ValidRole reports whether the given role is one of the known roles.
func ValidRole(r Role) bool {
	_, ok := roleRank[r]
	return ok
}

// User represents a registered account: reader, author, moderator or admin.
type User struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	Username  string `gorm:"size:30;uniqueIndex;not null" json:"username"`
	Email     string `gorm:"uniqueIndex;not null" json:"email"`
	Password  string `gorm:"not null" json:"-"`
	FirstName string `gorm:"size:50" json:"first_name,omitempty"`
	LastName  string `gorm:"size:50" json:"last_name,omitempty"`
	Avatar    string `json:"avatar,omitempty"`
	Bio       string `gorm:"size:500" json:"bio,omitempty"`
	Location  string `gorm:"size:100" json:"location,omitempty"`

	Role            Role `gorm:"type:varchar(20);not null;default:'user';index" json:"role"`
	IsActive        bool `gorm:"not null;default:true;index" json:"is_active"`
	IsEmailVerified bool `gorm:"not null;default:false" json:"is_email_verified"`

	ArticlesCount int `gorm:"not null;default:0" json:"articles_count"`
	CommentsCount int `gorm:"not null;default:0" json:"comments_count"`
	LikesReceived int `gorm:"not null;default:0" json:"likes_received"`

	LastLogin     *time.Time `json:"last_login,omitempty"`
	LoginAttempts int        `gorm:"not null;default:0" json:"-"`
	LockUntil     *time.Time `json:"-"`

	RefreshTokens []RefreshToken `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// FullName returns "First Last" when both are set, otherwise the username.
func (u *User) FullName() string {
	if u.FirstName != "" && u.LastName != "" {
		return u.FirstName + " " + u.LastName
	}
	return u.Username
}

// IsLocked reports whether a login lock is set and still in the future.
func (u *User) IsLocked() bool {
	return u.LockUntil != nil && u.LockUntil.After(time.Now())
}

// HasRole reports whether the user's role is at least the required role.
func (u *User) HasRole(required Role) bool {
	return roleRank[u.Role] >= roleRank[required]
}

// CanPublish reports whether the user may create and publish articles.
func (u *User) CanPublish() bool {
	return u.HasRole(RoleAuthor)
}

// CanModerate reports whether the user may moderate comments and articles.
func (u *User) CanModerate() bool {
	return u.HasRole(RoleModerator)
}

// IsAdmin reports whether the user is an administrator.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// RefreshToken is one entry in a user's stored refresh-token list. The
// list is the revocation set: a refresh token absent from it is rejected
// even while cryptographically valid. Entries expire RefreshTokenTTL
// after creation and are purged when a new token is stored.
type RefreshToken struct {
	ID        uint      `gorm:"primaryKey" json:"-"`
	UserID    uint      `gorm:"not null;index" json:"-"`
	Token     string    `gorm:"type:text;not null;index" json:"-"`
	CreatedAt time.Time `json:"-"`
}

// RefreshTokenTTL is how long a stored refresh-token list entry stays valid.
const RefreshTokenTTL = 7 * 24 * time.Hour

// Expired reports whether this list entry is past its TTL.
func (t *RefreshToken) Expired(now time.Time) bool {
	return now.Sub(t.CreatedAt) > RefreshTokenTTL
}
