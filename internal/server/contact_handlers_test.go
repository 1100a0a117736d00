package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"driverquote/internal/config"
	"driverquote/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockContactRepository is a mock of the ContactRepository interface
type MockContactRepository struct {
	mock.Mock
}

func (m *MockContactRepository) Create(ctx context.Context, contact *models.ContactRequest) error {
	args := m.Called(ctx, contact)
	return args.Error(0)
}

func (m *MockContactRepository) GetByID(ctx context.Context, id uint) (*models.ContactRequest, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ContactRequest), args.Error(1)
}

func (m *MockContactRepository) List(ctx context.Context, filter models.ContactFilter) ([]models.ContactRequest, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ContactRequest), args.Error(1)
}

func (m *MockContactRepository) UpdateStatus(ctx context.Context, id uint, status models.ContactStatus) (*models.ContactRequest, error) {
	args := m.Called(ctx, id, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ContactRequest), args.Error(1)
}

func (m *MockContactRepository) Delete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type envelope struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Error   string            `json:"error"`
	Code    string            `json:"code"`
	Errors  map[string]string `json:"errors"`
	Data    json.RawMessage   `json:"data"`
	Total   int               `json:"total"`
}

func testConfig() *config.Config {
	return &config.Config{
		Port:                     "8000",
		Env:                      "test",
		AllowedOrigins:           "http://localhost:3000",
		JWTSecret:                "test-secret-that-is-long-enough-for-hs256",
		ContactRateLimit:         5,
		ContactRateWindowSeconds: 600,
	}
}

func newTestApp(t *testing.T, cfg *config.Config) (*fiber.App, *MockContactRepository) {
	t.Helper()
	repo := new(MockContactRepository)
	s := newServer(cfg, nil, nil, repo)
	return s.NewApp(), repo
}

func doJSON(t *testing.T, app *fiber.App, method, path, body string, headers ...string) (int, envelope, string) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var env envelope
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &env), string(raw))
	}
	return resp.StatusCode, env, string(raw)
}

const validBody = `{"nom":"Dupont","prenom":"Jean","email":"jean.dupont@example.com","telephone":"0612345678","typeAssurance":"vtc"}`

func TestCreateContact_Success(t *testing.T) {
	app, repo := newTestApp(t, testConfig())

	repo.On("Create", mock.Anything, mock.AnythingOfType("*models.ContactRequest")).
		Run(func(args mock.Arguments) {
			args.Get(1).(*models.ContactRequest).ID = 1
		}).
		Return(nil).Once()

	status, env, _ := doJSON(t, app, http.MethodPost, "/api/contacts", validBody)
	assert.Equal(t, http.StatusCreated, status)
	assert.True(t, env.Success)
	assert.Equal(t, "Votre demande a été envoyée avec succès", env.Message)

	var receipt models.SubmissionReceipt
	require.NoError(t, json.Unmarshal(env.Data, &receipt))
	assert.Equal(t, uint(1), receipt.ID)
	assert.Equal(t, "CONT-000001", receipt.Reference)
	assert.Equal(t, models.ContactStatusPending, receipt.Status)
	_, err := time.Parse(models.CreatedAtLayout, receipt.CreatedAt)
	assert.NoError(t, err)

	repo.AssertExpectations(t)
}

func TestCreateContact_ValidationErrors(t *testing.T) {
	app, repo := newTestApp(t, testConfig())

	t.Run("several bad fields", func(t *testing.T) {
		body := `{"nom":"","prenom":"Jean","email":"not-an-email","telephone":"abc","typeAssurance":"moto"}`
		status, env, _ := doJSON(t, app, http.MethodPost, "/api/contacts", body)

		assert.Equal(t, http.StatusBadRequest, status)
		assert.False(t, env.Success)
		assert.Equal(t, "Erreurs de validation", env.Error)
		assert.Len(t, env.Errors, 4)
		for _, field := range []string{"nom", "email", "telephone", "typeAssurance"} {
			assert.Contains(t, env.Errors, field)
		}
		assert.NotContains(t, env.Errors, "prenom")
	})

	t.Run("empty object reports every field", func(t *testing.T) {
		status, env, _ := doJSON(t, app, http.MethodPost, "/api/contacts", `{}`)
		assert.Equal(t, http.StatusBadRequest, status)
		assert.Len(t, env.Errors, 5)
	})

	t.Run("non string values count as empty", func(t *testing.T) {
		body := `{"nom":42,"prenom":"Jean","email":"jean@example.com","telephone":"0612345678","typeAssurance":"taxi"}`
		status, env, _ := doJSON(t, app, http.MethodPost, "/api/contacts", body)
		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, []string{"nom"}, keys(env.Errors))
	})

	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreateContact_MalformedBody(t *testing.T) {
	app, repo := newTestApp(t, testConfig())

	for _, body := range []string{"not json", "null", "[]", `["nom"]`, "42", `"text"`, `{"nom":`} {
		t.Run(body, func(t *testing.T) {
			status, env, _ := doJSON(t, app, http.MethodPost, "/api/contacts", body)
			assert.Equal(t, http.StatusBadRequest, status)
			assert.False(t, env.Success)
			assert.Equal(t, "Données invalides", env.Error)
			assert.Empty(t, env.Errors)
		})
	}

	t.Run("empty body", func(t *testing.T) {
		status, env, _ := doJSON(t, app, http.MethodPost, "/api/contacts", "")
		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, "Données invalides", env.Error)
	})

	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreateContact_StoreFailureDoesNotLeak(t *testing.T) {
	app, repo := newTestApp(t, testConfig())

	cause := errors.New(`pq: relation "contacts" does not exist at 10.0.0.5:5432`)
	repo.On("Create", mock.Anything, mock.Anything).
		Return(models.NewInternalError(errors.Join(models.ErrStorageUnavailable, cause))).Once()

	status, env, raw := doJSON(t, app, http.MethodPost, "/api/contacts", validBody)
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.False(t, env.Success)
	assert.Equal(t, "Une erreur est survenue, veuillez réessayer plus tard", env.Error)
	assert.NotContains(t, raw, "relation")
	assert.NotContains(t, raw, "10.0.0.5")
}

func TestGetContact(t *testing.T) {
	app, repo := newTestApp(t, testConfig())
	created := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	repo.On("GetByID", mock.Anything, uint(1)).Return(&models.ContactRequest{
		ID: 1, Nom: "Dupont", Prenom: "Jean", Email: "jean@example.com", Telephone: "0612345678",
		TypeAssurance: models.InsuranceTypeVTC, Status: models.ContactStatusPending, CreatedAt: created,
	}, nil)
	repo.On("GetByID", mock.Anything, uint(999999)).Return(nil, models.NewNotFoundError(999999))

	t.Run("found", func(t *testing.T) {
		status, env, _ := doJSON(t, app, http.MethodGet, "/api/contacts/1", "")
		assert.Equal(t, http.StatusOK, status)
		assert.True(t, env.Success)

		var view models.ContactView
		require.NoError(t, json.Unmarshal(env.Data, &view))
		assert.Equal(t, "Dupont", view.Nom)
		assert.Equal(t, "2026-03-01 10:00:00", view.CreatedAt)
	})

	t.Run("not found", func(t *testing.T) {
		status, env, _ := doJSON(t, app, http.MethodGet, "/api/contacts/999999", "")
		assert.Equal(t, http.StatusNotFound, status)
		assert.False(t, env.Success)
		assert.Equal(t, "Contact non trouvé", env.Error)
	})

	for _, id := range []string{"abc", "0", "-3", "1.5"} {
		t.Run("invalid id "+id, func(t *testing.T) {
			status, env, _ := doJSON(t, app, http.MethodGet, "/api/contacts/"+id, "")
			assert.Equal(t, http.StatusBadRequest, status)
			assert.False(t, env.Success)
		})
	}
}

func TestGetContacts(t *testing.T) {
	app, repo := newTestApp(t, testConfig())
	created := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	repo.On("List", mock.Anything, models.ContactFilter{}).Return([]models.ContactRequest{
		{ID: 1, Nom: "A", Status: models.ContactStatusPending, CreatedAt: created},
		{ID: 2, Nom: "B", Status: models.ContactStatusContacted, CreatedAt: created},
	}, nil)
	repo.On("List", mock.Anything, models.ContactFilter{Status: models.ContactStatusConverted}).
		Return([]models.ContactRequest{}, nil)
	repo.On("List", mock.Anything, models.ContactFilter{TypeAssurance: models.InsuranceTypeTaxi}).
		Return([]models.ContactRequest{{ID: 4, TypeAssurance: models.InsuranceTypeTaxi, CreatedAt: created}}, nil)

	t.Run("all", func(t *testing.T) {
		status, env, _ := doJSON(t, app, http.MethodGet, "/api/contacts", "")
		assert.Equal(t, http.StatusOK, status)
		assert.Equal(t, 2, env.Total)

		var views []models.ContactView
		require.NoError(t, json.Unmarshal(env.Data, &views))
		require.Len(t, views, 2)
		assert.Equal(t, uint(1), views[0].ID)
		assert.Equal(t, uint(2), views[1].ID)
	})

	t.Run("empty is an array", func(t *testing.T) {
		status, env, _ := doJSON(t, app, http.MethodGet, "/api/contacts?status=converted", "")
		assert.Equal(t, http.StatusOK, status)
		assert.Equal(t, 0, env.Total)
		assert.JSONEq(t, `[]`, string(env.Data))
	})

	t.Run("by insurance type", func(t *testing.T) {
		status, env, _ := doJSON(t, app, http.MethodGet, "/api/contacts?typeAssurance=taxi", "")
		assert.Equal(t, http.StatusOK, status)
		assert.Equal(t, 1, env.Total)
	})

	t.Run("invalid status filter", func(t *testing.T) {
		status, env, _ := doJSON(t, app, http.MethodGet, "/api/contacts?status=archived", "")
		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, "Statut invalide", env.Error)
	})

	t.Run("invalid insurance type filter", func(t *testing.T) {
		status, env, _ := doJSON(t, app, http.MethodGet, "/api/contacts?typeAssurance=moto", "")
		assert.Equal(t, http.StatusBadRequest, status)
		assert.Contains(t, env.Errors, "typeAssurance")
	})

	repo.AssertNumberOfCalls(t, "List", 3)
}

func TestUpdateContactStatus(t *testing.T) {
	app, repo := newTestApp(t, testConfig())
	created := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	repo.On("UpdateStatus", mock.Anything, uint(1), models.ContactStatusContacted).Return(&models.ContactRequest{
		ID: 1, Nom: "Dupont", Status: models.ContactStatusContacted, CreatedAt: created,
	}, nil)
	repo.On("UpdateStatus", mock.Anything, uint(404), models.ContactStatusConverted).
		Return(nil, models.NewNotFoundError(404))

	t.Run("success", func(t *testing.T) {
		status, env, _ := doJSON(t, app, http.MethodPut, "/api/contacts/1", `{"status":"contacted"}`)
		assert.Equal(t, http.StatusOK, status)
		assert.Equal(t, "Demande mise à jour", env.Message)

		var view models.ContactView
		require.NoError(t, json.Unmarshal(env.Data, &view))
		assert.Equal(t, models.ContactStatusContacted, view.Status)
	})

	t.Run("invalid status", func(t *testing.T) {
		status, env, _ := doJSON(t, app, http.MethodPut, "/api/contacts/1", `{"status":"archived"}`)
		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, "Statut invalide", env.Error)
	})

	t.Run("missing status", func(t *testing.T) {
		status, env, _ := doJSON(t, app, http.MethodPut, "/api/contacts/1", `{"state":"contacted"}`)
		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, "Données invalides", env.Error)
	})

	t.Run("malformed body", func(t *testing.T) {
		status, env, _ := doJSON(t, app, http.MethodPut, "/api/contacts/1", `null`)
		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, "Données invalides", env.Error)
	})

	t.Run("unknown id", func(t *testing.T) {
		status, env, _ := doJSON(t, app, http.MethodPut, "/api/contacts/404", `{"status":"converted"}`)
		assert.Equal(t, http.StatusNotFound, status)
		assert.Equal(t, "Contact non trouvé", env.Error)
	})

	repo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, models.ContactStatus("archived"))
}

func TestDeleteContact_Twice(t *testing.T) {
	app, repo := newTestApp(t, testConfig())

	repo.On("Delete", mock.Anything, uint(3)).Return(nil).Once()
	repo.On("Delete", mock.Anything, uint(3)).Return(models.NewNotFoundError(3)).Once()

	status, env, _ := doJSON(t, app, http.MethodDelete, "/api/contacts/3", "")
	assert.Equal(t, http.StatusOK, status)
	assert.True(t, env.Success)
	assert.Equal(t, "Demande supprimée", env.Message)

	status, env, _ = doJSON(t, app, http.MethodDelete, "/api/contacts/3", "")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "Contact non trouvé", env.Error)

	repo.AssertExpectations(t)
}

func TestUnknownRouteUsesEnvelope(t *testing.T) {
	app, _ := newTestApp(t, testConfig())

	status, env, _ := doJSON(t, app, http.MethodGet, "/api/nothing-here", "")
	assert.Equal(t, http.StatusNotFound, status)
	assert.False(t, env.Success)
	assert.NotEmpty(t, env.Error)
}

func keys(m map[string]string) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
