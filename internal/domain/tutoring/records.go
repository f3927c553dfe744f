package tutoring

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// TraceRecord is the persisted form of an InteractionTrace. Position keeps
// commit order for traces sharing a timestamp.
type TraceRecord struct {
	ID              uuid.UUID                             `gorm:"type:uuid;primaryKey" json:"id"`
	SessionID       uuid.UUID                             `gorm:"type:uuid;not null;index:idx_trace_session_pos,priority:1" json:"session_id"`
	Position        int                                   `gorm:"column:position;not null;index:idx_trace_session_pos,priority:2" json:"position"`
	StudentID       uuid.UUID                             `gorm:"type:uuid;not null;index" json:"student_id"`
	ActivityID      uuid.UUID                             `gorm:"type:uuid;not null;index" json:"activity_id"`
	Timestamp       time.Time                             `gorm:"column:occurred_at;not null;index" json:"timestamp"`
	ClientTimestamp time.Time                             `gorm:"column:client_occurred_at;not null" json:"client_timestamp"`
	Type            string                                `gorm:"column:type;not null;index" json:"type"`
	ContentKind     string                                `gorm:"column:content_kind;not null" json:"content_kind"`
	Text            string                                `gorm:"column:text" json:"text,omitempty"`
	Language        string                                `gorm:"column:language" json:"language,omitempty"`
	Source          string                                `gorm:"column:source" json:"source,omitempty"`
	Outcome         datatypes.JSON                        `gorm:"column:outcome;type:jsonb" json:"outcome,omitempty"`
	AIInvolvement   *float64                              `gorm:"column:ai_involvement" json:"ai_involvement,omitempty"`
	Context         datatypes.JSONType[map[string]string] `gorm:"column:context;type:jsonb" json:"context"`
	ParentID        *uuid.UUID                            `gorm:"type:uuid;column:parent_id" json:"parent_id,omitempty"`
	CreatedAt       time.Time                             `gorm:"not null;index" json:"created_at"`
}

func (TraceRecord) TableName() string { return "interaction_trace" }

// RiskRecord is the persisted form of a Risk. Only the resolution columns
// are ever updated.
type RiskRecord struct {
	ID              uuid.UUID                      `gorm:"type:uuid;primaryKey" json:"id"`
	SessionID       uuid.UUID                      `gorm:"type:uuid;not null;index" json:"session_id"`
	Type            string                         `gorm:"column:type;not null;index" json:"type"`
	Severity        string                         `gorm:"column:severity;not null;index" json:"severity"`
	Dimension       string                         `gorm:"column:dimension;not null;index" json:"dimension"`
	Evidence        datatypes.JSONSlice[string]    `gorm:"column:evidence;type:jsonb" json:"evidence"`
	TraceIDs        datatypes.JSONSlice[uuid.UUID] `gorm:"column:trace_ids;type:jsonb" json:"trace_ids"`
	RootCause       string                         `gorm:"column:root_cause" json:"root_cause"`
	Recommendations datatypes.JSONSlice[string]    `gorm:"column:recommendations;type:jsonb" json:"recommendations"`
	Ordinal         int                            `gorm:"column:ordinal;not null" json:"ordinal"`
	Resolved        bool                           `gorm:"column:resolved;not null;default:false;index" json:"resolved"`
	ResolutionNotes string                         `gorm:"column:resolution_notes" json:"resolution_notes,omitempty"`
	ResolvedAt      *time.Time                     `gorm:"column:resolved_at" json:"resolved_at,omitempty"`
	CreatedAt       time.Time                      `gorm:"not null;index" json:"created_at"`
	UpdatedAt       time.Time                      `gorm:"not null" json:"updated_at"`
}

func (RiskRecord) TableName() string { return "session_risk" }
