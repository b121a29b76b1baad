package specification

import (
	"gorm.io/gorm"
)

type ByChatSessionID struct {
	ChatSessionID string
}

func (s ByChatSessionID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("chat_session_id = ?", s.ChatSessionID)
}

// OwnedBy scopes chat sessions to the identity that created them.
type OwnedBy struct {
	Owner string
}

func (s OwnedBy) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("owner = ?", s.Owner)
}

// SessionOwnedBy scopes chat messages through their parent session's owner.
type SessionOwnedBy struct {
	Owner string
}

func (s SessionOwnedBy) Apply(db *gorm.DB) *gorm.DB {
	subQuery := db.Session(&gorm.Session{NewDB: true}).Table("chat_sessions").Select("id").Where("owner = ?", s.Owner)
	return db.Where("chat_session_id IN (?)", subQuery)
}
