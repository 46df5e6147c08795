package utils

import (
	"testing"
	"time"

	"certhub/database"
	"certhub/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestAuditLoggerPersistsEvents(t *testing.T) {
	db, err := gorm.Open(sqlite.Open("file:auditlog?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.AuditLog{}))
	database.Database = database.DbInstance{Db: db}

	StartAuditLogger()
	Audit(models.AuditCertificateVerified, "certificate", 42, map[string]interface{}{
		"code":   "ABC12345DE",
		"status": "VALID",
	})

	assert.Eventually(t, func() bool {
		var count int64
		db.Model(&models.AuditLog{}).Where("action = ?", models.AuditCertificateVerified).Count(&count)
		return count == 1
	}, 2*time.Second, 10*time.Millisecond)

	var entry models.AuditLog
	require.NoError(t, db.Where("action = ?", models.AuditCertificateVerified).First(&entry).Error)
	assert.Equal(t, "certificate", entry.EntityType)
	assert.Equal(t, uint(42), entry.EntityID)
	assert.Contains(t, string(entry.Details), "ABC12345DE")
}

func TestAuditBeforeStartIsNoop(t *testing.T) {
	auditCh = nil
	// Must not panic or block
	Audit(models.AuditCertificateVerified, "certificate", 1, nil)
}
