// Package models contains data structures for the application's domain models.
package models

import (
	"fmt"
	"time"
)

// InsuranceType is the line of business a lead asks a quote for.
type InsuranceType string

// Insurance types offered on the site.
const (
	InsuranceTypeVTC          InsuranceType = "vtc"
	InsuranceTypeTaxi         InsuranceType = "taxi"
	InsuranceTypeTransporteur InsuranceType = "transporteur"
)

// InsuranceTypes lists every accepted insurance type.
var InsuranceTypes = []InsuranceType{InsuranceTypeVTC, InsuranceTypeTaxi, InsuranceTypeTransporteur}

// Valid reports whether t is one of the offered insurance types.
func (t InsuranceType) Valid() bool {
	switch t {
	case InsuranceTypeVTC, InsuranceTypeTaxi, InsuranceTypeTransporteur:
		return true
	}
	return false
}

// ContactStatus tracks how far the broker got with a lead.
type ContactStatus string

// Contact statuses. New contacts always start as pending.
const (
	ContactStatusPending   ContactStatus = "pending"
	ContactStatusContacted ContactStatus = "contacted"
	ContactStatusConverted ContactStatus = "converted"
)

// ContactStatuses lists every accepted contact status.
var ContactStatuses = []ContactStatus{ContactStatusPending, ContactStatusContacted, ContactStatusConverted}

// Valid reports whether s is a known contact status.
func (s ContactStatus) Valid() bool {
	switch s {
	case ContactStatusPending, ContactStatusContacted, ContactStatusConverted:
		return true
	}
	return false
}

const (
	// CreatedAtLayout is the format used for createdAt in API responses.
	CreatedAtLayout = "2006-01-02 15:04:05"
	// ReferencePrefix prefixes the human-facing reference of a contact.
	ReferencePrefix = "CONT-"
)

// ContactRequest is a quote request submitted through the lead form.
type ContactRequest struct {
	ID            uint          `gorm:"primaryKey" json:"id"`
	Nom           string        `gorm:"size:255;not null" json:"nom"`
	Prenom        string        `gorm:"size:255;not null" json:"prenom"`
	Email         string        `gorm:"size:255;not null" json:"email"`
	Telephone     string        `gorm:"size:20;not null" json:"telephone"`
	TypeAssurance InsuranceType `gorm:"column:type_assurance;size:50;not null" json:"typeAssurance"`
	Status        ContactStatus `gorm:"size:50;not null;default:pending;index" json:"status"`
	CreatedAt     time.Time     `gorm:"not null;index" json:"createdAt"`
}

// TableName specifies the table name for ContactRequest.
func (ContactRequest) TableName() string {
	return "contacts"
}

// Reference returns the display reference of the contact, e.g. CONT-000042.
func (c *ContactRequest) Reference() string {
	return FormatReference(c.ID)
}

// Public returns the fields exposed by the read endpoints.
func (c *ContactRequest) Public() ContactView {
	return ContactView{
		ID:            c.ID,
		Nom:           c.Nom,
		Prenom:        c.Prenom,
		Email:         c.Email,
		Telephone:     c.Telephone,
		TypeAssurance: c.TypeAssurance,
		Status:        c.Status,
		CreatedAt:     FormatCreatedAt(c.CreatedAt),
	}
}

// FormatReference derives the reference token from a contact id.
func FormatReference(id uint) string {
	return fmt.Sprintf("%s%06d", ReferencePrefix, id)
}

// FormatCreatedAt renders a creation time in UTC using CreatedAtLayout.
func FormatCreatedAt(t time.Time) string {
	return t.UTC().Format(CreatedAtLayout)
}

// ContactView is the public JSON shape of a contact.
type ContactView struct {
	ID            uint          `json:"id"`
	Nom           string        `json:"nom"`
	Prenom        string        `json:"prenom"`
	Email         string        `json:"email"`
	Telephone     string        `json:"telephone"`
	TypeAssurance InsuranceType `json:"typeAssurance"`
	Status        ContactStatus `json:"status"`
	CreatedAt     string        `json:"createdAt"`
}

// ContactInput holds normalized lead form values that passed validation.
type ContactInput struct {
	Nom           string
	Prenom        string
	Email         string
	Telephone     string
	TypeAssurance InsuranceType
}

// ContactFilter narrows a contact listing. A zero value lists everything.
type ContactFilter struct {
	Status        ContactStatus
	TypeAssurance InsuranceType
}

// SubmissionReceipt is the data returned to the submitter after a successful create.
type SubmissionReceipt struct {
	ID        uint          `json:"id"`
	Reference string        `json:"reference"`
	Status    ContactStatus `json:"status"`
	CreatedAt string        `json:"createdAt"`
}

// Receipt builds the submission receipt for c.
func (c *ContactRequest) Receipt() SubmissionReceipt {
	return SubmissionReceipt{
		ID:        c.ID,
		Reference: c.Reference(),
		Status:    c.Status,
		CreatedAt: FormatCreatedAt(c.CreatedAt),
	}
}
