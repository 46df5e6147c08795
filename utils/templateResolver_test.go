package utils

import (
	"testing"

	certModels "certhub/models/certificate"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDb(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&certModels.CertificateTemplate{}))
	return db
}

func uintPtr(v uint) *uint { return &v }

func TestResolveExplicitTemplateWins(t *testing.T) {
	db := newTestDb(t)

	loc := uintPtr(7)
	explicit := certModels.CertificateTemplate{Name: "Explicit", StorageKey: "tpl_explicit.pdf"}
	primary := certModels.CertificateTemplate{Name: "Primary", StorageKey: "tpl_primary.pdf", LocationID: loc, IsPrimary: true}
	fallback := certModels.CertificateTemplate{Name: "Default", StorageKey: "tpl_default.pdf", IsDefault: true}
	require.NoError(t, db.Create(&explicit).Error)
	require.NoError(t, db.Create(&primary).Error)
	require.NoError(t, db.Create(&fallback).Error)

	tpl, err := ResolveCertificateTemplate(db, &explicit.ID, loc)
	require.NoError(t, err)
	require.Equal(t, "Explicit", tpl.Name)
}

func TestResolveLocationPrimaryBeatsDefault(t *testing.T) {
	db := newTestDb(t)

	loc := uintPtr(7)
	primary := certModels.CertificateTemplate{Name: "Primary", StorageKey: "tpl_primary.pdf", LocationID: loc, IsPrimary: true}
	fallback := certModels.CertificateTemplate{Name: "Default", StorageKey: "tpl_default.pdf", IsDefault: true}
	require.NoError(t, db.Create(&primary).Error)
	require.NoError(t, db.Create(&fallback).Error)

	tpl, err := ResolveCertificateTemplate(db, nil, loc)
	require.NoError(t, err)
	require.Equal(t, "Primary", tpl.Name)
}

func TestResolveGlobalDefaultFallback(t *testing.T) {
	db := newTestDb(t)

	fallback := certModels.CertificateTemplate{Name: "Default", StorageKey: "tpl_default.pdf", IsDefault: true}
	require.NoError(t, db.Create(&fallback).Error)

	tpl, err := ResolveCertificateTemplate(db, nil, nil)
	require.NoError(t, err)
	require.Equal(t, "Default", tpl.Name)
}

func TestResolveMissingTemplateFails(t *testing.T) {
	db := newTestDb(t)

	_, err := ResolveCertificateTemplate(db, nil, uintPtr(99))
	require.ErrorIs(t, err, ErrNoTemplate)
}

func TestResolveUnknownExplicitIdFallsThrough(t *testing.T) {
	db := newTestDb(t)

	fallback := certModels.CertificateTemplate{Name: "Default", StorageKey: "tpl_default.pdf", IsDefault: true}
	require.NoError(t, db.Create(&fallback).Error)

	tpl, err := ResolveCertificateTemplate(db, uintPtr(4242), nil)
	require.NoError(t, err)
	require.Equal(t, "Default", tpl.Name)
}
