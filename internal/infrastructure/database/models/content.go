package models

import (
	"time"

	"github.com/lib/pq"
)

type ContentItem struct {
	ID         string         `json:"id" gorm:"primaryKey;type:text"`
	Collection string         `json:"collection" gorm:"type:text;index:idx_content_collection_position,priority:1"`
	Fields     string         `json:"fields" gorm:"type:jsonb;default:'{}'"`
	Tags       pq.StringArray `json:"tags" gorm:"type:text[]"`
	Position   int            `json:"position" gorm:"index:idx_content_collection_position,priority:2"`
	IsActive   bool           `json:"isActive" gorm:"default:true"`
	CDate      time.Time      `json:"cdate" gorm:"->;<-:create;type:timestamp with time zone;not null;default:clock_timestamp()"`
	MDate      time.Time      `json:"mdate" gorm:"autoUpdateTime"`
}
