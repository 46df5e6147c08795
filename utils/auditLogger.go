package utils

import (
	"encoding/json"
	"log"

	"certhub/database"
	"certhub/models"

	"gorm.io/datatypes"
)

// The audit logger is deliberately fire-and-forget: Audit() returns nothing
// a caller could fail on. Events flow through a buffered channel to a single
// writer goroutine; a full buffer drops the event, a write error is logged
// and swallowed. Audit completeness is best-effort only.

type auditEvent struct {
	Action     string
	EntityType string
	EntityID   uint
	Details    map[string]interface{}
}

var auditCh chan auditEvent

// StartAuditLogger starts the audit writer goroutine. Call once at startup,
// after the database is connected.
func StartAuditLogger() {
	auditCh = make(chan auditEvent, 256)
	go func() {
		for ev := range auditCh {
			writeAuditEvent(ev)
		}
	}()
	log.Println("[AUDIT] Audit logger started")
}

// Audit queues an audit event. Never blocks and never fails the caller.
func Audit(action, entityType string, entityID uint, details map[string]interface{}) {
	if auditCh == nil {
		return
	}
	select {
	case auditCh <- auditEvent{Action: action, EntityType: entityType, EntityID: entityID, Details: details}:
	default:
		log.Printf("[AUDIT] Buffer full, dropping event %s for %s/%d", action, entityType, entityID)
	}
}

func writeAuditEvent(ev auditEvent) {
	entry := models.AuditLog{
		Action:     ev.Action,
		EntityType: ev.EntityType,
		EntityID:   ev.EntityID,
	}
	if ev.Details != nil {
		payload, err := json.Marshal(ev.Details)
		if err != nil {
			log.Printf("[AUDIT] Failed to marshal details for %s: %v", ev.Action, err)
		} else {
			entry.Details = datatypes.JSON(payload)
		}
	}
	if err := database.Database.Db.Create(&entry).Error; err != nil {
		log.Printf("[AUDIT] Failed to persist event %s: %v", ev.Action, err)
	}
}
