package model

import "time"

// 批量操作类型
const (
	BatchKindSemesterUpgrade = "semester_upgrade"
	BatchKindStudentDelete   = "student_delete"
	BatchKindStudentImport   = "student_import"
)

// BatchOperation 批量操作审计记录，对应表 batch_operations
type BatchOperation struct {
	BatchID    string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"batch_id"`
	Kind       string    `gorm:"type:varchar(32);not null"                      json:"kind"`
	OperatorID string    `gorm:"type:varchar(64);not null"                      json:"operator_id"`
	Total      int       `gorm:"not null;default:0"                             json:"total"`
	Succeeded  int       `gorm:"not null;default:0"                             json:"succeeded"`
	Failed     int       `gorm:"not null;default:0"                             json:"failed"`
	StartedAt  time.Time `gorm:"not null"                                       json:"started_at"`
	FinishedAt time.Time `gorm:"not null"                                       json:"finished_at"`
	CreatedAt  time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`

	// 关联
	Items []BatchOperationItem `gorm:"foreignKey:BatchID;references:BatchID" json:"items,omitempty"`
}

func (BatchOperation) TableName() string { return "batch_operations" }

// BatchOperationItem 批量操作单项结果，对应表 batch_operation_items
type BatchOperationItem struct {
	ItemID    string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"item_id"`
	BatchID   string    `gorm:"type:uuid;not null"                             json:"batch_id"`
	TargetID  string    `gorm:"type:varchar(64);not null"                      json:"target_id"`
	Success   bool      `gorm:"not null"                                       json:"success"`
	Detail    string    `gorm:"type:varchar(500)"                              json:"detail,omitempty"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`
}

func (BatchOperationItem) TableName() string { return "batch_operation_items" }
