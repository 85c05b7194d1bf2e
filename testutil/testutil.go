// Package testutil opens throwaway databases and seeds rows for tests.
package testutil

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"doc-governance/config"
	"doc-governance/models"
)

// NewDB returns a migrated in-memory SQLite database private to tb. A single
// connection keeps every statement, transactions included, on the same
// in-memory database.
func NewDB(tb testing.TB) *gorm.DB {
	tb.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		tb.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		tb.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	tb.Cleanup(func() { _ = sqlDB.Close() })

	if err := config.Migrate(db); err != nil {
		tb.Fatalf("migrate: %v", err)
	}
	return db
}

func SeedUser(tb testing.TB, db *gorm.DB, username string) *models.User {
	tb.Helper()
	u := &models.User{
		Username: username,
		Email:    username + "@example.com",
		Password: "pw",
		Role:     models.RoleMember,
	}
	if err := db.Create(u).Error; err != nil {
		tb.Fatalf("seed user: %v", err)
	}
	return u
}

func SeedProject(tb testing.TB, db *gorm.DB, ownerID uint) *models.Project {
	tb.Helper()
	p := &models.Project{Name: "project-" + uuid.NewString()[:8], OwnerID: ownerID}
	if err := db.Create(p).Error; err != nil {
		tb.Fatalf("seed project: %v", err)
	}
	return p
}

func SeedMember(tb testing.TB, db *gorm.DB, projectID, userID uint, role string, temporary bool) *models.ProjectMember {
	tb.Helper()
	m := &models.ProjectMember{
		ProjectID:   projectID,
		UserID:      userID,
		RoleCode:    role,
		IsTemporary: temporary,
		Active:      true,
	}
	if err := db.Create(m).Error; err != nil {
		tb.Fatalf("seed member: %v", err)
	}
	return m
}

// SeedDraft creates a document of docType with one DRAFT version authored by
// authorID.
func SeedDraft(tb testing.TB, db *gorm.DB, projectID, authorID uint, docType string) (*models.Document, *models.DocumentVersion) {
	tb.Helper()
	doc := &models.Document{
		ProjectID: projectID,
		DocType:   docType,
		Title:     docType + " document",
		CreatedBy: authorID,
	}
	if err := db.Create(doc).Error; err != nil {
		tb.Fatalf("seed document: %v", err)
	}
	v := &models.DocumentVersion{
		DocumentID:    doc.ID,
		VersionString: "v1.0",
		AuthorID:      authorID,
		State:         models.StateDraft,
	}
	if err := db.Create(v).Error; err != nil {
		tb.Fatalf("seed version: %v", err)
	}
	return doc, v
}
