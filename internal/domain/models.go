// Package domain defines the persistence models for users, items, and swaps.
// These types are mapped with GORM and form the core data layer of the
// clothing-swap application.
package domain

import (
	"time"

	"gorm.io/gorm"
)

// Item lifecycle statuses. Only approved items are eligible for swap
// proposals or the featured flag. Swapped is terminal for the negotiation
// flow: an item reaches it exactly once, as a side effect of a swap being
// accepted.
const (
	ItemStatusPending  = "pending"
	ItemStatusApproved = "approved"
	ItemStatusRejected = "rejected"
	ItemStatusSwapped  = "swapped"
	ItemStatusSold     = "sold"
)

// Swap negotiation statuses. A swap is created pending and is decided exactly
// once by the provider; accepted and rejected are terminal. Completed and
// cancelled are reserved values: they are valid states for forward
// compatibility but no transition in the current protocol produces them.
const (
	SwapStatusPending   = "pending"
	SwapStatusAccepted  = "accepted"
	SwapStatusRejected  = "rejected"
	SwapStatusCompleted = "completed"
	SwapStatusCancelled = "cancelled"
)

// User account statuses and roles. Accounts start pending and must be
// approved by an admin before they can list items or log in (admins bypass
// the approval gate).
const (
	UserStatusPending  = "pending"
	UserStatusApproved = "approved"
	UserStatusRejected = "rejected"

	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User represents a registered member of the swap community.
//
// Fields:
//   - ID: stable UUID primary key (char(36)).
//   - Username / Email: unique login identifiers.
//   - PasswordHash: bcrypt hash, never serialized.
//   - Status: pending | approved | rejected (moderation gate).
//   - Role: user | admin.
//   - CreatedAt / UpdatedAt: timestamps managed by GORM.
type User struct {
	ID           string    `json:"id"            gorm:"type:char(36);primaryKey"`
	Username     string    `json:"username"      gorm:"type:varchar(50);not null;uniqueIndex"`
	Email        string    `json:"email"         gorm:"type:varchar(100);not null;uniqueIndex"`
	PasswordHash string    `json:"-"             gorm:"type:varchar(255);not null"`
	Gender       string    `json:"gender,omitempty"        gorm:"type:varchar(20)"`
	ProfileImage string    `json:"profile_image,omitempty" gorm:"type:varchar(255)"`
	City         string    `json:"city,omitempty"          gorm:"type:varchar(100)"`
	Address      string    `json:"address,omitempty"       gorm:"type:varchar(255)"`
	Bio          string    `json:"bio,omitempty"           gorm:"type:text"`
	Status       string    `json:"status"        gorm:"type:varchar(20);not null;default:'pending';check:status IN ('pending','approved','rejected')"`
	Role         string    `json:"role"          gorm:"type:varchar(20);not null;default:'user';check:role IN ('user','admin')"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TableName returns the database table name for User.
func (User) TableName() string { return "users" }

// IsAdmin reports whether the user has the elevated admin role.
func (u *User) IsAdmin() bool { return u.Role == RoleAdmin }

// IsApproved reports whether the account has passed the moderation gate.
func (u *User) IsApproved() bool { return u.Status == UserStatusApproved }

// Item represents a clothing listing owned by exactly one user.
//
// Fields:
//   - ID: UUID primary key (char(36)).
//   - OwnerID: foreign key to the listing user; indexed for "my items" views.
//   - Status: lifecycle state gating swap eligibility (see ItemStatus*).
//   - IsFeatured: admin-controlled homepage flag, only valid while approved.
//   - Images: ordered one-to-many image records, the first flagged primary.
type Item struct {
	ID          string         `json:"id"          gorm:"type:char(36);primaryKey"`
	Title       string         `json:"title"       gorm:"type:varchar(100);not null"`
	Description string         `json:"description" gorm:"type:text;not null"`
	Category    string         `json:"category"    gorm:"type:varchar(50);not null;index"`
	Size        string         `json:"size"        gorm:"type:varchar(20);not null"`
	Condition   string         `json:"condition"   gorm:"type:varchar(20);not null"`
	Tags        string         `json:"tags"        gorm:"type:varchar(255)"`
	Status      string         `json:"status"      gorm:"type:varchar(20);not null;default:'pending';index;check:status IN ('pending','approved','rejected','swapped','sold')"`
	IsFeatured  bool           `json:"is_featured" gorm:"not null;default:false"`
	OwnerID     string         `json:"owner_id"    gorm:"type:char(36);not null;index:idx_owner_items"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `json:"-"           gorm:"index"`

	// Images are cascade-deleted with their item.
	Images []ItemImage `json:"images" gorm:"foreignKey:ItemID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for Item.
func (Item) TableName() string { return "items" }

// ItemImage is a single picture attached to an item. Exactly one image per
// item carries IsPrimary (the first supplied at creation time).
type ItemImage struct {
	ID        string    `json:"id"         gorm:"type:char(36);primaryKey"`
	ItemID    string    `json:"item_id"    gorm:"type:char(36);not null;index"`
	FilePath  string    `json:"file_path"  gorm:"type:varchar(255);not null"`
	IsPrimary bool      `json:"is_primary" gorm:"not null;default:false"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName returns the database table name for ItemImage.
func (ItemImage) TableName() string { return "item_images" }

// Swap represents a proposal pairing a requester's item against a provider's
// item. The provider is always derived from the provider item's owner at
// proposal time, never taken from client input.
//
// At most one pending swap may exist for a given (requester, provider,
// requester item, provider item) tuple; this is enforced by a partial unique
// index created in repo.AutoMigrate in addition to the in-transaction check.
type Swap struct {
	ID              string    `json:"id"                gorm:"type:char(36);primaryKey"`
	RequesterID     string    `json:"requester_id"      gorm:"type:char(36);not null;index"`
	ProviderID      string    `json:"provider_id"       gorm:"type:char(36);not null;index"`
	RequesterItemID string    `json:"requester_item_id" gorm:"type:char(36);not null;index"`
	ProviderItemID  string    `json:"provider_item_id"  gorm:"type:char(36);not null;index"`
	Status          string    `json:"status"            gorm:"type:varchar(20);not null;default:'pending';index;check:status IN ('pending','accepted','rejected','completed','cancelled')"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`

	// Associations resolved for API responses; never written through.
	Requester     *User `json:"requester,omitempty"      gorm:"foreignKey:RequesterID;references:ID"`
	Provider      *User `json:"provider,omitempty"       gorm:"foreignKey:ProviderID;references:ID"`
	RequesterItem *Item `json:"requester_item,omitempty" gorm:"foreignKey:RequesterItemID;references:ID"`
	ProviderItem  *Item `json:"provider_item,omitempty"  gorm:"foreignKey:ProviderItemID;references:ID"`
}

// TableName returns the database table name for Swap.
func (Swap) TableName() string { return "swaps" }

// Decided reports whether the swap has left the pending state. A decided swap
// accepts no further responses.
func (s *Swap) Decided() bool { return s.Status != SwapStatusPending }

// ValidItemModeration reports whether status is one of the two values an
// admin may force-set on an item.
func ValidItemModeration(status string) bool {
	return status == ItemStatusApproved || status == ItemStatusRejected
}

// ValidUserModeration reports whether status is one of the two values an
// admin may force-set on a user account.
func ValidUserModeration(status string) bool {
	return status == UserStatusApproved || status == UserStatusRejected
}
