package utils

import (
	"errors"

	certModels "certhub/models/certificate"

	"gorm.io/gorm"
)

// ErrNoTemplate is returned when no resolver in the chain finds a template.
var ErrNoTemplate = errors.New("no template found")

// templateResolver attempts one resolution strategy. Returning (nil, nil)
// means "not mine, try the next one"; an error aborts the chain.
type templateResolver func(db *gorm.DB, templateID, locationID *uint) (*certModels.CertificateTemplate, error)

// Resolution order is first-match-wins: an explicit template id beats the
// location's primary template, which beats the global default.
var templateResolvers = []templateResolver{
	resolveExplicitTemplate,
	resolveLocationPrimary,
	resolveGlobalDefault,
}

// ResolveCertificateTemplate walks the resolver chain and returns the first
// matching template, or ErrNoTemplate when the chain is exhausted.
func ResolveCertificateTemplate(db *gorm.DB, templateID, locationID *uint) (*certModels.CertificateTemplate, error) {
	for _, resolve := range templateResolvers {
		tpl, err := resolve(db, templateID, locationID)
		if err != nil {
			return nil, err
		}
		if tpl != nil {
			return tpl, nil
		}
	}
	return nil, ErrNoTemplate
}

func resolveExplicitTemplate(db *gorm.DB, templateID, _ *uint) (*certModels.CertificateTemplate, error) {
	if templateID == nil {
		return nil, nil
	}
	var tpl certModels.CertificateTemplate
	err := db.Where("id = ? AND is_deleted = false", *templateID).First(&tpl).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &tpl, nil
}

func resolveLocationPrimary(db *gorm.DB, _, locationID *uint) (*certModels.CertificateTemplate, error) {
	if locationID == nil {
		return nil, nil
	}
	var tpl certModels.CertificateTemplate
	err := db.Where("location_id = ? AND is_primary = true AND is_deleted = false", *locationID).First(&tpl).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &tpl, nil
}

func resolveGlobalDefault(db *gorm.DB, _, _ *uint) (*certModels.CertificateTemplate, error) {
	var tpl certModels.CertificateTemplate
	err := db.Where("is_default = true AND is_deleted = false").First(&tpl).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &tpl, nil
}
