package utils

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"certhub/config"
	"certhub/database"
	"certhub/models"
	certModels "certhub/models/certificate"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestSyncEnrollmentsPaged(t *testing.T) {
	db, err := gorm.Open(sqlite.Open("file:learnsync?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&certModels.Roster{}, &certModels.RosterMember{}, &models.AuditLog{}))
	database.Database = database.DbInstance{Db: db}

	config.AppConfig = &config.Config{LearnAPIKey: "key", LearnSubdomain: "acme"}

	member := certModels.RosterMember{RosterID: 1, Name: "Jane Doe", Email: "jane@example.com"}
	require.NoError(t, db.Create(&member).Error)
	other := certModels.RosterMember{RosterID: 1, Name: "Bob Roe", Email: "bob@example.com", ExternalID: "enr-2"}
	require.NoError(t, db.Create(&other).Error)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "key", r.Header.Get("X-Auth-API-Key"))
		assert.Equal(t, "acme", r.Header.Get("X-Auth-Subdomain"))

		var page EnrollmentPage
		switch r.URL.Query().Get("page") {
		case "1":
			page.Items = []Enrollment{{ID: "enr-1", UserEmail: "jane@example.com", PercentageDone: 100, Completed: true}}
			page.Meta.CurrentPage = 1
			page.Meta.TotalPages = 2
		case "2":
			page.Items = []Enrollment{
				{ID: "enr-2", UserEmail: "bob@example.com", PercentageDone: 40, Completed: false},
				{ID: "enr-3", UserEmail: "nobody@example.com", PercentageDone: 90, Completed: true},
			}
			page.Meta.CurrentPage = 2
			page.Meta.TotalPages = 2
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(page)
	}))
	defer server.Close()

	updated, err := SyncEnrollments(db, newLearnClientWithBase(server.URL))
	require.NoError(t, err)
	assert.Equal(t, 2, updated) // enr-3 has no matching roster member

	var jane certModels.RosterMember
	require.NoError(t, db.First(&jane, member.ID).Error)
	assert.True(t, jane.Completed)
	assert.Equal(t, 100.0, jane.Score)
	assert.Equal(t, "enr-1", jane.ExternalID)

	var bob certModels.RosterMember
	require.NoError(t, db.First(&bob, other.ID).Error)
	assert.False(t, bob.Completed)
	assert.Equal(t, 40.0, bob.Score)
}

func TestFetchEnrollmentsErrorStatus(t *testing.T) {
	config.AppConfig = &config.Config{LearnAPIKey: "key", LearnSubdomain: "acme"}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	_, err := newLearnClientWithBase(server.URL).FetchEnrollments(1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 401")
}
