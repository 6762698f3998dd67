package models

// DefaultImageURL is used when a user signs up without a photo, or when
// storing the uploaded photo fails.
const DefaultImageURL = "/static/images/default-profile.png"

// User represents a person in the system. The username is the identity key
// used by every domain operation; the numeric ID exists only for storage.
type User struct {
	BaseModel
	Username     string `gorm:"type:varchar(30);uniqueIndex;not null" json:"username"`
	Email        string `gorm:"type:varchar(50);uniqueIndex;not null" json:"email"`
	PasswordHash string `gorm:"type:varchar(255);not null" json:"-"` // never exposed
	FirstName    string `gorm:"type:varchar(50);not null" json:"firstName"`
	LastName     string `gorm:"type:varchar(30);not null" json:"lastName"`
	Hobbies      string `gorm:"type:text;not null;default:''" json:"hobbies"`
	Interests    string `gorm:"type:text;not null;default:''" json:"interests"`
	Zipcode      string `gorm:"type:varchar(5);not null" json:"zipcode"`
	FriendRadius int    `gorm:"not null" json:"friendRadius"`
	ImageURL     string `gorm:"type:varchar(255);not null;default:''" json:"imageUrl"`
}

// UserCard holds the public subset of a user shown on candidate and match
// pages.
type UserCard struct {
	Username  string `json:"username"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Hobbies   string `json:"hobbies"`
	Interests string `json:"interests"`
	Zipcode   string `json:"zipcode"`
	ImageURL  string `json:"imageUrl"`
}

// Card returns the public view of the user.
func (u *User) Card() UserCard {
	return UserCard{
		Username:  u.Username,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Hobbies:   u.Hobbies,
		Interests: u.Interests,
		Zipcode:   u.Zipcode,
		ImageURL:  u.ImageURL,
	}
}

// TableName specifies the table name for the User model.
func (User) TableName() string {
	return "users"
}
