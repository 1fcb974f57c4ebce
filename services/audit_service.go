package services

import (
	"encoding/json"
	"fmt"
	"log"

	"gnoa_membership_go/models"

	"gorm.io/gorm"
)

// AuditEntry describes one operation to record in the activity log
type AuditEntry struct {
	User         *models.User
	Action       models.AuditAction
	ResourceType string
	ResourceID   string
	ResourceName string
	Description  string
	OldValues    interface{}
	NewValues    interface{}
	IPAddress    string
	UserAgent    string
}

// RecordAudit writes an audit log entry asynchronously. Logging never blocks
// the request and a failed write never fails the operation it describes.
func RecordAudit(db *gorm.DB, entry AuditEntry) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("[AUDIT] Panic while recording audit log: %v", r)
			}
		}()
		if err := recordAuditSync(db, entry); err != nil {
			log.Printf("[AUDIT] Failed to record %s on %s/%s: %v",
				entry.Action, entry.ResourceType, entry.ResourceID, err)
		}
	}()
}

func recordAuditSync(db *gorm.DB, entry AuditEntry) error {
	auditLog := models.AuditLog{
		ResourceType: entry.ResourceType,
		ResourceID:   entry.ResourceID,
		ResourceName: entry.ResourceName,
		Action:       entry.Action,
		Description:  entry.Description,
		IPAddress:    entry.IPAddress,
		UserAgent:    entry.UserAgent,
	}

	if entry.User != nil {
		auditLog.UserID = &entry.User.ID
		auditLog.UserName = entry.User.Name
		auditLog.UserRole = entry.User.Role
	} else {
		auditLog.UserName = "system"
		auditLog.UserRole = "system"
	}

	if entry.OldValues != nil {
		data, err := json.Marshal(entry.OldValues)
		if err != nil {
			return fmt.Errorf("failed to marshal old values: %w", err)
		}
		auditLog.OldValues = string(data)
	}
	if entry.NewValues != nil {
		data, err := json.Marshal(entry.NewValues)
		if err != nil {
			return fmt.Errorf("failed to marshal new values: %w", err)
		}
		auditLog.NewValues = string(data)
	}

	return db.Create(&auditLog).Error
}

// AuditFilter narrows the activity log listing
type AuditFilter struct {
	UserID       string
	ResourceType string
	ResourceID   string
	Action       string
	Page         int
	PageSize     int
}

// ListAuditLogs returns one page of audit entries, newest first
func ListAuditLogs(db *gorm.DB, filter AuditFilter) ([]models.AuditLog, int64, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 || filter.PageSize > 100 {
		filter.PageSize = DefaultPageSize
	}

	query := db.Model(&models.AuditLog{})
	if filter.UserID != "" {
		query = query.Where("user_id = ?", filter.UserID)
	}
	if filter.ResourceType != "" {
		query = query.Where("resource_type = ?", filter.ResourceType)
	}
	if filter.ResourceID != "" {
		query = query.Where("resource_id = ?", filter.ResourceID)
	}
	if filter.Action != "" {
		query = query.Where("action = ?", filter.Action)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count audit logs: %w", err)
	}

	var logs []models.AuditLog
	err := query.
		Order("created_at DESC").
		Offset((filter.Page - 1) * filter.PageSize).
		Limit(filter.PageSize).
		Find(&logs).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list audit logs: %w", err)
	}
	return logs, total, nil
}
