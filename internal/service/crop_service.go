package service

import (
	"context"
	"fmt"

	"github.com/krishibondhu/krishi-ledger/internal/domain"
	"github.com/krishibondhu/krishi-ledger/internal/notify"
	"github.com/krishibondhu/krishi-ledger/internal/repository"
	apperrors "github.com/krishibondhu/krishi-ledger/pkg/errors"
	"github.com/krishibondhu/krishi-ledger/pkg/utils"
)

// Crop is one entry of the static seasonal calendar
type Crop struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	NameBn       string `json:"nameBn"`
	Season       string `json:"season"`
	PlantingTime string `json:"plantingTime"`
	HarvestTime  string `json:"harvestTime"`
}

// Seasonal calendar for the major Bangladeshi field crops
var cropCatalog = []Crop{
	{ID: "boro-rice", Name: "Boro Rice", NameBn: "বোরো ধান", Season: "Rabi", PlantingTime: "December - January", HarvestTime: "April - May"},
	{ID: "aman-rice", Name: "Aman Rice", NameBn: "আমন ধান", Season: "Kharif-2", PlantingTime: "June - July", HarvestTime: "November - December"},
	{ID: "jute", Name: "Jute", NameBn: "পাট", Season: "Kharif-1", PlantingTime: "March - April", HarvestTime: "July - August"},
	{ID: "wheat", Name: "Wheat", NameBn: "গম", Season: "Rabi", PlantingTime: "November - December", HarvestTime: "March - April"},
	{ID: "potato", Name: "Potato", NameBn: "আলু", Season: "Rabi", PlantingTime: "October - November", HarvestTime: "February - March"},
	{ID: "mustard", Name: "Mustard", NameBn: "সরিষা", Season: "Rabi", PlantingTime: "October - November", HarvestTime: "January - February"},
}

// CropService serves the seasonal calendar and creates fertilizer
// reminders through the shared reminder store.
type CropService struct {
	reminders repository.ReminderStore
	notifier  notify.Notifier
}

func NewCropService(reminders repository.ReminderStore, notifier notify.Notifier) *CropService {
	return &CropService{reminders: reminders, notifier: notifier}
}

// Crops returns the seasonal catalog
func (s *CropService) Crops() []Crop {
	return cropCatalog
}

// CropByID looks up a catalog entry
func (s *CropService) CropByID(id string) (*Crop, error) {
	for _, c := range cropCatalog {
		if c.ID == id {
			crop := c
			return &crop, nil
		}
	}
	return nil, apperrors.NewDomainError(apperrors.ErrCodeNotFound,
		fmt.Sprintf("Crop with ID %s not found", id), apperrors.ErrNotFound)
}

// RequestFertilizerReminder schedules a fertilizer application
// reminder for a crop, following the same permission-gated path as
// loan reminders.
func (s *CropService) RequestFertilizerReminder(ctx context.Context, cropID, date, fertilizerType string) (*domain.Reminder, error) {
	crop, err := s.CropByID(cropID)
	if err != nil {
		return nil, err
	}
	if date == "" || !utils.IsValidISODate(date) {
		return nil, apperrors.WrapValidation("reminder date must be a YYYY-MM-DD calendar day")
	}
	if fertilizerType == "" {
		return nil, apperrors.WrapValidation("fertilizer type is required")
	}

	granted, err := s.notifier.RequestPermission(ctx)
	if err != nil {
		return nil, err
	}
	if !granted {
		return nil, apperrors.WrapPermissionDenied("notification permission was not granted")
	}

	reminder := &domain.Reminder{
		ID:          utils.NewReminderID(),
		Title:       fmt.Sprintf("Fertilizer for %s", crop.Name),
		Body:        fmt.Sprintf("Type: %s", fertilizerType),
		Date:        date,
		Type:        domain.ReminderTypeFertilizer,
		RelatedID:   crop.ID,
		IsCompleted: false,
	}

	if err := s.reminders.Save(ctx, reminder); err != nil {
		return nil, err
	}

	_ = s.notifier.Notify(ctx, "Reminder Set", fmt.Sprintf("Fertilizer for %s on %s", crop.Name, date))

	return reminder, nil
}
