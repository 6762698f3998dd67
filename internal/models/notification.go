package models

// NotificationKind distinguishes notification rows. Only mutual-match
// notifications exist today.
type NotificationKind string

const (
	NotificationKindMatch NotificationKind = "match"
)

// Notification is persisted by the match-event consumer when a mutual match
// forms, one row per side of the pair.
type Notification struct {
	BaseModel
	Username string           `gorm:"type:varchar(30);not null;index" json:"username"` // recipient
	Actor    string           `gorm:"type:varchar(30);not null" json:"actor"`          // the other user of the pair
	Kind     NotificationKind `gorm:"type:varchar(20);not null;default:'match'" json:"kind"`
	Read     bool             `gorm:"not null;default:false" json:"read"`
}

// TableName specifies the table name for the Notification model.
func (Notification) TableName() string {
	return "notifications"
}
