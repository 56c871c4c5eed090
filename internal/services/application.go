package services

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"log"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/augustos0204/room-stream-api/internal/identity"
	"github.com/augustos0204/room-stream-api/internal/models"
)

var (
	ErrApplicationNotFound = errors.New("application not found")
	ErrApplicationOwner    = errors.New("you do not have access to this application")
	ErrStoreDisabled       = errors.New("application store is not configured")
)

// ApplicationService manages long-lived application credentials. Secrets are
// generated once, stored verbatim (validation is an exact-match lookup) and
// masked everywhere except create and regenerate responses.
type ApplicationService struct {
	db *gorm.DB
}

func NewApplicationService(db *gorm.DB) *ApplicationService {
	return &ApplicationService{db: db}
}

// Enabled reports whether a backing database was configured.
func (s *ApplicationService) Enabled() bool {
	return s.db != nil
}

func (s *ApplicationService) Create(userID, name, description string) (*models.Application, error) {
	if s.db == nil {
		return nil, ErrStoreDisabled
	}

	app := models.Application{
		ID:          uuid.NewString(),
		Name:        name,
		Description: description,
		Key:         generateAPIKey(),
		CreatedBy:   userID,
		IsActive:    true,
	}
	if err := s.db.Create(&app).Error; err != nil {
		return nil, err
	}
	log.Printf("application: created %s by user %s", app.ID, userID)
	return &app, nil
}

func (s *ApplicationService) List(userID string) ([]models.ApplicationListItem, error) {
	if s.db == nil {
		return nil, ErrStoreDisabled
	}

	var apps []models.Application
	if err := s.db.Where("created_by = ?", userID).
		Order("created_at DESC").
		Find(&apps).Error; err != nil {
		return nil, err
	}

	items := make([]models.ApplicationListItem, 0, len(apps))
	for _, app := range apps {
		items = append(items, models.ApplicationListItem{
			ID:          app.ID,
			Name:        app.Name,
			Description: app.Description,
			KeyPreview:  MaskAPIKey(app.Key),
			IsActive:    app.IsActive,
			CreatedAt:   app.CreatedAt,
		})
	}
	return items, nil
}

func (s *ApplicationService) Get(userID, id string) (*models.Application, error) {
	if s.db == nil {
		return nil, ErrStoreDisabled
	}

	var app models.Application
	if err := s.db.First(&app, "id = ?", id).Error; err != nil {
		return nil, ErrApplicationNotFound
	}
	if app.CreatedBy != userID {
		return nil, ErrApplicationOwner
	}
	return &app, nil
}

// UpdateApplicationParams carries the optional fields of an update; nil
// means "leave unchanged".
type UpdateApplicationParams struct {
	Name        *string
	Description *string
	IsActive    *bool
}

func (s *ApplicationService) Update(userID, id string, params UpdateApplicationParams) (*models.Application, error) {
	app, err := s.Get(userID, id)
	if err != nil {
		return nil, err
	}

	if params.Name != nil {
		app.Name = *params.Name
	}
	if params.Description != nil {
		app.Description = *params.Description
	}
	if params.IsActive != nil {
		app.IsActive = *params.IsActive
	}
	if err := s.db.Save(app).Error; err != nil {
		return nil, err
	}
	log.Printf("application: updated %s", id)
	return app, nil
}

func (s *ApplicationService) Delete(userID, id string) error {
	app, err := s.Get(userID, id)
	if err != nil {
		return err
	}
	if err := s.db.Delete(&models.Application{}, "id = ?", app.ID).Error; err != nil {
		return err
	}
	log.Printf("application: deleted %s", id)
	return nil
}

// RegenerateKey rotates the secret; the new value is returned in full once.
func (s *ApplicationService) RegenerateKey(userID, id string) (*models.Application, error) {
	app, err := s.Get(userID, id)
	if err != nil {
		return nil, err
	}

	app.Key = generateAPIKey()
	if err := s.db.Save(app).Error; err != nil {
		return nil, err
	}
	log.Printf("application: key regenerated for %s", id)
	return app, nil
}

// ValidateKey resolves a presented secret to its application identity.
// Returns nil for unknown, inactive or unavailable credentials.
func (s *ApplicationService) ValidateKey(key string) *identity.Application {
	if s.db == nil || key == "" {
		return nil
	}

	var app models.Application
	err := s.db.Where("key = ? AND is_active = ?", key, true).First(&app).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("application: key lookup failed: %v", err)
		}
		return nil
	}
	return &identity.Application{ID: app.ID, Name: app.Name, CreatedBy: app.CreatedBy}
}

// generateAPIKey builds a high-entropy secret: app_ + 64 hex chars.
func generateAPIKey() string {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand never fails on supported platforms
		panic(err)
	}
	return "app_" + hex.EncodeToString(buf)
}

// MaskAPIKey hides everything but the last 8 characters.
func MaskAPIKey(key string) string {
	if len(key) <= 12 {
		return key
	}
	return "••••••••" + key[len(key)-8:]
}
