package server

import (
	"driverquote/internal/models"

	"github.com/gofiber/fiber/v2"
)

// CreateContact handles a lead form submission.
// @Summary Submit a quote request
// @Description Validates the lead form and stores it as a pending request
// @Tags contacts
// @Accept json
// @Produce json
// @Param request body object{nom=string,prenom=string,email=string,telephone=string,typeAssurance=string} true "Lead form"
// @Success 201 {object} models.SuccessResponse{data=models.SubmissionReceipt}
// @Failure 400 {object} models.ErrorResponse
// @Failure 429 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /contacts [post]
func (s *Server) CreateContact(c *fiber.Ctx) error {
	raw, err := decodeObject(c)
	if err != nil {
		return s.respondError(c, err)
	}

	contact, err := s.contactService.Submit(c.UserContext(), raw)
	if err != nil {
		return s.respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(models.SuccessResponse{
		Success: true,
		Message: models.MsgContactSubmitted,
		Data:    contact.Receipt(),
	})
}

// GetContacts lists quote requests, optionally filtered by status.
// @Summary List quote requests
// @Tags contacts
// @Produce json
// @Security BearerAuth
// @Param status query string false "pending, contacted or converted"
// @Param typeAssurance query string false "vtc, taxi or transporteur"
// @Success 200 {object} models.ListResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Router /contacts [get]
func (s *Server) GetContacts(c *fiber.Ctx) error {
	filter := models.ContactFilter{
		Status:        models.ContactStatus(c.Query("status")),
		TypeAssurance: models.InsuranceType(c.Query("typeAssurance")),
	}

	contacts, err := s.contactService.ListContacts(c.UserContext(), filter)
	if err != nil {
		return s.respondError(c, err)
	}

	views := make([]models.ContactView, 0, len(contacts))
	for i := range contacts {
		views = append(views, contacts[i].Public())
	}

	return c.JSON(models.ListResponse{
		Success: true,
		Data:    views,
		Total:   len(views),
	})
}

// GetContact returns a single quote request.
// @Summary Get a quote request
// @Tags contacts
// @Produce json
// @Security BearerAuth
// @Param id path int true "Contact ID"
// @Success 200 {object} models.SuccessResponse{data=models.ContactView}
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /contacts/{id} [get]
func (s *Server) GetContact(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	contact, err := s.contactService.GetContact(c.UserContext(), id)
	if err != nil {
		return s.respondError(c, err)
	}

	return c.JSON(models.SuccessResponse{
		Success: true,
		Data:    contact.Public(),
	})
}

// UpdateContactStatus moves a quote request through its lifecycle.
// @Summary Update the status of a quote request
// @Tags contacts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Contact ID"
// @Param request body object{status=string} true "New status"
// @Success 200 {object} models.SuccessResponse{data=models.ContactView}
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /contacts/{id} [put]
func (s *Server) UpdateContactStatus(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	raw, err := decodeObject(c)
	if err != nil {
		return s.respondError(c, err)
	}
	status, ok := raw["status"].(string)
	if !ok {
		return s.respondError(c, models.NewMalformedRequestError())
	}

	contact, err := s.contactService.UpdateStatus(c.UserContext(), id, status)
	if err != nil {
		return s.respondError(c, err)
	}

	return c.JSON(models.SuccessResponse{
		Success: true,
		Message: models.MsgContactUpdated,
		Data:    contact.Public(),
	})
}

// DeleteContact removes a quote request.
// @Summary Delete a quote request
// @Tags contacts
// @Produce json
// @Security BearerAuth
// @Param id path int true "Contact ID"
// @Success 200 {object} models.SuccessResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /contacts/{id} [delete]
func (s *Server) DeleteContact(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.contactService.DeleteContact(c.UserContext(), id); err != nil {
		return s.respondError(c, err)
	}

	return c.JSON(models.SuccessResponse{
		Success: true,
		Message: models.MsgContactDeleted,
	})
}
