package models

// Interest is a directional record: UserMatching expressed positive
// (Interest=true) or negative (Interest=false) interest in UserBeingMatched.
// The ordered pair carries a unique composite index, and insertion is an
// ON CONFLICT DO NOTHING upsert, so a recorded decision can never be flipped
// or duplicated. Resolvers still treat the snapshot with set semantics.
type Interest struct {
	BaseModel
	UserMatching     string `gorm:"type:varchar(30);not null;uniqueIndex:idx_interest_pair" json:"userMatching"`
	UserBeingMatched string `gorm:"type:varchar(30);not null;uniqueIndex:idx_interest_pair" json:"userBeingMatched"`
	Interest         bool   `gorm:"not null" json:"interest"`
}

// TableName specifies the table name for the Interest model.
func (Interest) TableName() string {
	return "interests"
}
