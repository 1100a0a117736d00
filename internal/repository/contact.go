// Package repository implements the data access layer for the application.
package repository

import (
	"context"
	"errors"
	"fmt"

	"driverquote/internal/cache"
	"driverquote/internal/middleware"
	"driverquote/internal/models"
	"driverquote/internal/observability"

	"gorm.io/gorm"
)

const contactsTable = "contacts"

// ContactRepository defines persistence operations for quote requests.
type ContactRepository interface {
	Create(ctx context.Context, contact *models.ContactRequest) error
	GetByID(ctx context.Context, id uint) (*models.ContactRequest, error)
	List(ctx context.Context, filter models.ContactFilter) ([]models.ContactRequest, error)
	UpdateStatus(ctx context.Context, id uint, status models.ContactStatus) (*models.ContactRequest, error)
	Delete(ctx context.Context, id uint) error
}

type contactRepository struct {
	db     *gorm.DB
	logger *observability.RepoLogger
}

// NewContactRepository returns a new ContactRepository implementation.
func NewContactRepository(db *gorm.DB) ContactRepository {
	return &contactRepository{
		db:     db,
		logger: observability.NewRepoLogger(contactsTable).WithLogger(middleware.Logger),
	}
}

func (r *contactRepository) span(ctx context.Context, method string) (context.Context, func(error)) {
	ctx, span := observability.StartRepositorySpan(ctx, method, contactsTable, r.db.Dialector.Name())
	done := observability.TrackQuery(method, contactsTable)
	return ctx, func(err error) {
		done()
		observability.EndSpan(span, err)
	}
}

// storageError wraps a driver failure so callers can match ErrStorageUnavailable.
func (r *contactRepository) storageError(ctx context.Context, op string, err error) error {
	r.logger.LogError(ctx, err, op)
	return models.NewInternalError(fmt.Errorf("%w: %w", models.ErrStorageUnavailable, err))
}

func (r *contactRepository) Create(ctx context.Context, contact *models.ContactRequest) (err error) {
	ctx, end := r.span(ctx, "Create")
	defer func() { end(err) }()

	if contact.Status == "" {
		contact.Status = models.ContactStatusPending
	}
	if err := r.db.WithContext(ctx).Create(contact).Error; err != nil {
		return r.storageError(ctx, "create", err)
	}
	r.logger.LogCreate(ctx, map[string]any{"id": contact.ID, "type_assurance": contact.TypeAssurance})
	return nil
}

func (r *contactRepository) GetByID(ctx context.Context, id uint) (_ *models.ContactRequest, err error) {
	ctx, end := r.span(ctx, "GetByID")
	defer func() { end(err) }()

	var contact models.ContactRequest
	err = cache.Aside(ctx, cache.ContactKey(id), &contact, cache.ContactTTL, func() error {
		if err := r.db.WithContext(ctx).First(&contact, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError(id)
			}
			return r.storageError(ctx, "read", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &contact, nil
}

func (r *contactRepository) List(ctx context.Context, filter models.ContactFilter) (_ []models.ContactRequest, err error) {
	ctx, end := r.span(ctx, "List")
	defer func() { end(err) }()

	q := r.db.WithContext(ctx)
	if filter.Status != "" {
		if !filter.Status.Valid() {
			return nil, models.NewInvalidStatusError(string(filter.Status))
		}
		q = q.Where("status = ?", filter.Status)
	}
	if filter.TypeAssurance != "" {
		if !filter.TypeAssurance.Valid() {
			return nil, models.NewValidationError(map[string]string{"typeAssurance": "Le type d'assurance est invalide"})
		}
		q = q.Where("type_assurance = ?", filter.TypeAssurance)
	}

	contacts := []models.ContactRequest{}
	if err := q.Order("id ASC").Find(&contacts).Error; err != nil {
		return nil, r.storageError(ctx, "list", err)
	}
	return contacts, nil
}

// UpdateStatus changes only the status column. A statement that touches no
// row means the contact does not exist (or was deleted concurrently).
func (r *contactRepository) UpdateStatus(ctx context.Context, id uint, status models.ContactStatus) (_ *models.ContactRequest, err error) {
	ctx, end := r.span(ctx, "UpdateStatus")
	defer func() { end(err) }()

	if !status.Valid() {
		return nil, models.NewInvalidStatusError(string(status))
	}

	res := r.db.WithContext(ctx).Model(&models.ContactRequest{}).Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		return nil, r.storageError(ctx, "update", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, models.NewNotFoundError(id)
	}
	cache.InvalidateContact(ctx, id)

	var contact models.ContactRequest
	if err := r.db.WithContext(ctx).First(&contact, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError(id)
		}
		return nil, r.storageError(ctx, "read", err)
	}

	r.logger.LogUpdate(ctx, map[string]any{"id": id, "status": status})
	return &contact, nil
}

func (r *contactRepository) Delete(ctx context.Context, id uint) (err error) {
	ctx, end := r.span(ctx, "Delete")
	defer func() { end(err) }()

	res := r.db.WithContext(ctx).Delete(&models.ContactRequest{}, id)
	if res.Error != nil {
		return r.storageError(ctx, "delete", res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError(id)
	}
	cache.InvalidateContact(ctx, id)

	r.logger.LogDelete(ctx, map[string]any{"id": id})
	return nil
}
