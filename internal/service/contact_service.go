// Package service holds the business operations behind the HTTP handlers.
package service

import (
	"context"
	"time"

	"driverquote/internal/featureflags"
	"driverquote/internal/middleware"
	"driverquote/internal/models"
	"driverquote/internal/notifications"
	"driverquote/internal/observability"
	"driverquote/internal/repository"
	"driverquote/internal/validation"
)

// EventPublisher receives contact lifecycle events. Implemented by notifications.Notifier.
type EventPublisher interface {
	ContactCreated(ctx context.Context, contact *models.ContactRequest) error
	ContactStatusChanged(ctx context.Context, contact *models.ContactRequest) error
	ContactDeleted(ctx context.Context, id uint) error
}

type ContactService struct {
	contactRepo repository.ContactRepository
	events      EventPublisher
	flags       *featureflags.Manager
	now         func() time.Time
}

func NewContactService(contactRepo repository.ContactRepository, events EventPublisher) *ContactService {
	return &ContactService{
		contactRepo: contactRepo,
		events:      events,
		now:         time.Now,
	}
}

// WithFlags gates event publishing behind featureflags.ContactEvents.
// Without flags every event is published.
func (s *ContactService) WithFlags(flags *featureflags.Manager) *ContactService {
	s.flags = flags
	return s
}

// Submit validates a raw lead form body and stores it as a pending request.
// On validation failure nothing is stored and the error carries one message per field.
func (s *ContactService) Submit(ctx context.Context, raw map[string]any) (_ *models.ContactRequest, err error) {
	ctx, span := observability.StartServiceSpan(ctx, "ContactService", "Submit")
	defer func() { observability.EndSpan(span, err) }()

	input, fieldErrs := validation.ValidateContact(raw)
	if fieldErrs != nil {
		for field := range fieldErrs {
			observability.ValidationFailures.WithLabelValues(field).Inc()
		}
		return nil, models.NewValidationError(fieldErrs)
	}

	contact := &models.ContactRequest{
		Nom:           input.Nom,
		Prenom:        input.Prenom,
		Email:         input.Email,
		Telephone:     input.Telephone,
		TypeAssurance: input.TypeAssurance,
		Status:        models.ContactStatusPending,
		CreatedAt:     s.now().UTC().Truncate(time.Second),
	}
	if err := s.contactRepo.Create(ctx, contact); err != nil {
		return nil, err
	}

	observability.ContactsSubmitted.WithLabelValues(string(contact.TypeAssurance)).Inc()
	s.publish(ctx, notifications.EventContactCreated, contact.ID, func() error { return s.events.ContactCreated(ctx, contact) })
	return contact, nil
}

func (s *ContactService) GetContact(ctx context.Context, id uint) (_ *models.ContactRequest, err error) {
	ctx, span := observability.StartServiceSpan(ctx, "ContactService", "GetContact")
	defer func() { observability.EndSpan(span, err) }()

	return s.contactRepo.GetByID(ctx, id)
}

// ListContacts checks the filter values before querying.
func (s *ContactService) ListContacts(ctx context.Context, filter models.ContactFilter) (_ []models.ContactRequest, err error) {
	ctx, span := observability.StartServiceSpan(ctx, "ContactService", "ListContacts")
	defer func() { observability.EndSpan(span, err) }()

	if filter.Status != "" {
		if _, err = validation.ValidateStatus(string(filter.Status)); err != nil {
			return nil, err
		}
	}
	if filter.TypeAssurance != "" {
		if _, err = validation.ValidateInsuranceType(string(filter.TypeAssurance)); err != nil {
			return nil, err
		}
	}
	return s.contactRepo.List(ctx, filter)
}

// UpdateStatus moves a contact to rawStatus. The status is checked before the store is touched.
func (s *ContactService) UpdateStatus(ctx context.Context, id uint, rawStatus string) (_ *models.ContactRequest, err error) {
	ctx, span := observability.StartServiceSpan(ctx, "ContactService", "UpdateStatus")
	defer func() { observability.EndSpan(span, err) }()

	status, err := validation.ValidateStatus(rawStatus)
	if err != nil {
		return nil, err
	}

	contact, err := s.contactRepo.UpdateStatus(ctx, id, status)
	if err != nil {
		return nil, err
	}

	observability.StatusTransitions.WithLabelValues(string(status)).Inc()
	s.publish(ctx, notifications.EventContactStatusChanged, id, func() error { return s.events.ContactStatusChanged(ctx, contact) })
	return contact, nil
}

func (s *ContactService) DeleteContact(ctx context.Context, id uint) (err error) {
	ctx, span := observability.StartServiceSpan(ctx, "ContactService", "DeleteContact")
	defer func() { observability.EndSpan(span, err) }()

	if err = s.contactRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.publish(ctx, notifications.EventContactDeleted, id, func() error { return s.events.ContactDeleted(ctx, id) })
	return nil
}

// publish is best-effort: a failed event never fails the request.
func (s *ContactService) publish(ctx context.Context, event string, id uint, fn func() error) {
	if s.events == nil {
		return
	}
	if s.flags != nil && !s.flags.Enabled(featureflags.ContactEvents, id) {
		return
	}
	if err := fn(); err != nil {
		middleware.Logger.WarnContext(ctx, "failed to publish contact event",
			"event", event, "error", err)
	}
}
