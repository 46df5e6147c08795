package controllers

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"certhub/config"
	"certhub/database"
	"certhub/models"
	certModels "certhub/models/certificate"
	"certhub/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// memStore is an in-memory ObjectStore for tests.
type memStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	failPut bool
}

func newMemStore() *memStore {
	return &memStore{objects: make(map[string][]byte)}
}

func (m *memStore) Put(_ context.Context, key string, data []byte, _ string) error {
	if m.failPut {
		return errors.New("storage unavailable")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = data
	return nil
}

func (m *memStore) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[key]
	if !ok {
		return nil, fmt.Errorf("object %s not found", key)
	}
	return data, nil
}

func (m *memStore) PublicURL(key string) string {
	return "https://files.test/certificates/" + key
}

func (m *memStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	return nil
}

// stubRenderer returns fixed bytes instead of driving the PDF engine.
type stubRenderer struct{}

func (stubRenderer) Render(asset []byte, fields utils.CertificateFields, _ utils.FieldLayout) ([]byte, error) {
	if len(asset) == 0 {
		return nil, errors.New("empty template asset")
	}
	return []byte("%PDF-1.4 " + fields.Name), nil
}

// recordingSender captures sends and can fail the first n attempts.
type recordingSender struct {
	mu        sync.Mutex
	sent      []string
	failFirst int
	attempts  int
}

func (s *recordingSender) Send(_, toEmail, _, _, _ string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attempts++
	if s.attempts <= s.failFirst {
		return errors.New("provider rejected")
	}
	s.sent = append(s.sent, toEmail)
	return nil
}

func setupGenerateTest(t *testing.T) (*gorm.DB, *memStore) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{}, &models.Location{}, &models.AuditLog{}, &models.Notification{},
		&certModels.Certificate{}, &certModels.CertificateTemplate{}, &certModels.EmailTemplate{},
		&certModels.BatchOperation{}, &certModels.Roster{}, &certModels.RosterMember{},
	))
	database.Database = database.DbInstance{Db: db}

	config.AppConfig = &config.Config{
		SendFromEmail:   "certificates@certhub.test",
		SendFromName:    "Certification Team",
		BatchChunkSize:  5,
		MaxEmailRetries: 2,
	}

	store := newMemStore()
	store.objects["tpl_default.pdf"] = []byte("template-bytes")
	utils.Store = store
	utils.Renderer = stubRenderer{}
	utils.Sender = &recordingSender{}

	return db, store
}

func seedDefaultTemplate(t *testing.T, db *gorm.DB) certModels.CertificateTemplate {
	t.Helper()
	tpl := certModels.CertificateTemplate{Name: "Default", StorageKey: "tpl_default.pdf", IsDefault: true}
	require.NoError(t, db.Create(&tpl).Error)
	return tpl
}

func TestGenerateCertificateEndToEnd(t *testing.T) {
	db, store := setupGenerateTest(t)
	seedDefaultTemplate(t, db)

	cert, err := GenerateCertificate(GenerationRequest{
		RecipientName: "Jane Doe",
		CourseName:    "CPR Level A",
		IssueDate:     "2025-01-15",
		ExpiryDate:    "2028-01-15",
	}, nil)
	require.NoError(t, err)

	assert.Equal(t, certModels.StatusActive, cert.Status)
	assert.Equal(t, certModels.GenerationCompleted, cert.GenerationStatus)
	assert.Regexp(t, `^[A-Z]{3}[0-9]{5}[A-Z]{2}$`, cert.VerificationCode)
	assert.NotEmpty(t, cert.CertificateURL)

	// Document stored under the key convention
	doc, err := store.Get(context.Background(), utils.DocumentKey(cert.ID))
	require.NoError(t, err)
	assert.Contains(t, string(doc), "Jane Doe")

	// Row persisted with the same state
	var stored certModels.Certificate
	require.NoError(t, db.First(&stored, cert.ID).Error)
	assert.Equal(t, certModels.GenerationCompleted, stored.GenerationStatus)
	assert.Equal(t, cert.CertificateURL, stored.CertificateURL)
	assert.Equal(t, "January 15, 2025", certModels.DisplayDate(stored.IssueDate))
}

func TestGenerateCertificateNoTemplate(t *testing.T) {
	setupGenerateTest(t)

	_, err := GenerateCertificate(GenerationRequest{
		RecipientName: "Jane Doe",
		CourseName:    "CPR Level A",
		IssueDate:     "2025-01-15",
		ExpiryDate:    "2028-01-15",
	}, nil)
	require.ErrorIs(t, err, utils.ErrNoTemplate)
}

func TestBulkGenerationItemsDistinctKeysForSameRecipient(t *testing.T) {
	setupGenerateTest(t)

	// No template seeded, so both items fail. Duplicate names must still
	// land in separate error-map slots.
	requests := []GenerationRequest{
		{RecipientName: "Jane Doe", CourseName: "CPR Level A", IssueDate: "2025-01-15", ExpiryDate: "2028-01-15"},
		{RecipientName: "Jane Doe", CourseName: "First Aid", IssueDate: "2025-01-15", ExpiryDate: "2028-01-15"},
	}
	items := bulkGenerationItems(requests, nil)

	require.Len(t, items, 2)
	assert.NotEqual(t, items[0].Key, items[1].Key)

	result := utils.RunBatch(items, utils.BatchOptions{ChunkSize: 5})
	assert.Equal(t, 2, result.Failed)
	assert.Len(t, result.Errors, 2)
}

func TestGenerateCertificateInvalidDate(t *testing.T) {
	db, _ := setupGenerateTest(t)
	seedDefaultTemplate(t, db)

	_, err := GenerateCertificate(GenerationRequest{
		RecipientName: "Jane Doe",
		CourseName:    "CPR Level A",
		IssueDate:     "next tuesday",
		ExpiryDate:    "2028-01-15",
	}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid date format")
}

func TestGenerateCertificateUploadFailureMarksFailed(t *testing.T) {
	db, store := setupGenerateTest(t)
	seedDefaultTemplate(t, db)

	// Template asset fetch must succeed, the document upload must not.
	// failPut flips after the resolver read the asset from the map.
	store.failPut = true

	_, err := GenerateCertificate(GenerationRequest{
		RecipientName: "Jane Doe",
		CourseName:    "CPR Level A",
		IssueDate:     "2025-01-15",
		ExpiryDate:    "2028-01-15",
	}, nil)
	require.Error(t, err)

	var stored certModels.Certificate
	require.NoError(t, db.Where("recipient_name = ?", "Jane Doe").First(&stored).Error)
	assert.Equal(t, certModels.GenerationFailed, stored.GenerationStatus)
	assert.Contains(t, stored.GenerationError, "upload document")
}

func TestGenerateCertificateTemplatePrecedence(t *testing.T) {
	db, store := setupGenerateTest(t)
	seedDefaultTemplate(t, db)

	loc := uint(3)
	primary := certModels.CertificateTemplate{Name: "Primary", StorageKey: "tpl_primary.pdf", LocationID: &loc, IsPrimary: true}
	require.NoError(t, db.Create(&primary).Error)
	store.objects["tpl_primary.pdf"] = []byte("primary-template")

	cert, err := GenerateCertificate(GenerationRequest{
		RecipientName: "Jane Doe",
		CourseName:    "CPR Level A",
		IssueDate:     "2025-01-15",
		ExpiryDate:    "2028-01-15",
		LocationID:    &loc,
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, certModels.GenerationCompleted, cert.GenerationStatus)
}

func TestGenerateCertificateWithEmail(t *testing.T) {
	db, _ := setupGenerateTest(t)
	seedDefaultTemplate(t, db)

	sender := &recordingSender{}
	utils.Sender = sender

	cert, err := GenerateCertificate(GenerationRequest{
		RecipientName:  "Jane Doe",
		RecipientEmail: "jane@example.com",
		CourseName:     "CPR Level A",
		IssueDate:      "2025-01-15",
		ExpiryDate:     "2028-01-15",
		SendEmail:      true,
	}, nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"jane@example.com"}, sender.sent)
	assert.Equal(t, certModels.EmailSent, cert.EmailStatus)
	assert.NotNil(t, cert.LastEmailedAt)
}

func TestGenerateCertificateEmailFailureStillGenerates(t *testing.T) {
	db, _ := setupGenerateTest(t)
	seedDefaultTemplate(t, db)

	utils.Sender = &recordingSender{failFirst: 100}

	cert, err := GenerateCertificate(GenerationRequest{
		RecipientName:  "Jane Doe",
		RecipientEmail: "jane@example.com",
		CourseName:     "CPR Level A",
		IssueDate:      "2025-01-15",
		ExpiryDate:     "2028-01-15",
		SendEmail:      true,
	}, nil)
	require.Error(t, err)
	require.NotNil(t, cert, "generation succeeded even though email failed")
	assert.Equal(t, certModels.GenerationCompleted, cert.GenerationStatus)
	assert.Empty(t, cert.EmailStatus)
}
