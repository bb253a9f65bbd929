package models

import "time"

type ContactSubmission struct {
	ID      string    `json:"id" gorm:"primaryKey;type:text"`
	Name    string    `json:"name" gorm:"type:text;not null"`
	Email   string    `json:"email" gorm:"type:text;not null;index"`
	Subject string    `json:"subject" gorm:"type:text"`
	Message string    `json:"message" gorm:"type:text;not null"`
	Consent bool      `json:"consent" gorm:"not null"`
	IsRead  bool      `json:"isRead" gorm:"default:false"`
	CDate   time.Time `json:"cdate" gorm:"->;<-:create;type:timestamp with time zone;not null;default:clock_timestamp()"`
}
