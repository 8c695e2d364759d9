package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	appidentity "github.com/fmancini-create/HotelAccelerator-sub003/internal/application/identity"
	appinbox "github.com/fmancini-create/HotelAccelerator-sub003/internal/application/inbox"
	"github.com/fmancini-create/HotelAccelerator-sub003/internal/application/media"
	"github.com/fmancini-create/HotelAccelerator-sub003/internal/application/tenancy"
	"github.com/fmancini-create/HotelAccelerator-sub003/internal/domain/billing"
	"github.com/fmancini-create/HotelAccelerator-sub003/internal/domain/inbox"
	domainmedia "github.com/fmancini-create/HotelAccelerator-sub003/internal/domain/media"
	"github.com/fmancini-create/HotelAccelerator-sub003/internal/domain/property"
	"github.com/fmancini-create/HotelAccelerator-sub003/internal/domain/shared"
	"github.com/fmancini-create/HotelAccelerator-sub003/internal/interfaces/http/middleware"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// MockAuthUseCase is a mock implementation of AuthUseCase
type MockAuthUseCase struct {
	mock.Mock
}

func (m *MockAuthUseCase) Login(ctx context.Context, input appidentity.LoginInput) (*appidentity.LoginResult, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appidentity.LoginResult), args.Error(1)
}

func (m *MockAuthUseCase) Logout(ctx context.Context, input appidentity.LogoutInput) error {
	return m.Called(ctx, input).Error(0)
}

func (m *MockAuthUseCase) GetCurrentUser(ctx context.Context, userID uuid.UUID) (*appidentity.UserInfo, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appidentity.UserInfo), args.Error(1)
}

// MockPropertyAdmin implements both PropertyAdmin and DomainAdmin
type MockPropertyAdmin struct {
	mock.Mock
}

func (m *MockPropertyAdmin) property(args mock.Arguments) (*property.Property, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*property.Property), args.Error(1)
}

func (m *MockPropertyAdmin) CreateProperty(ctx context.Context, in tenancy.CreatePropertyInput) (*property.Property, error) {
	return m.property(m.Called(ctx, in))
}

func (m *MockPropertyAdmin) GetProperty(ctx context.Context, id uuid.UUID) (*property.Property, error) {
	return m.property(m.Called(ctx, id))
}

func (m *MockPropertyAdmin) ListProperties(ctx context.Context, filter shared.Filter) (shared.Page[property.Property], error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(shared.Page[property.Property]), args.Error(1)
}

func (m *MockPropertyAdmin) ChangePlan(ctx context.Context, id uuid.UUID, plan property.Plan) (*property.Property, error) {
	return m.property(m.Called(ctx, id, plan))
}

func (m *MockPropertyAdmin) SetFeatures(ctx context.Context, id uuid.UUID, f property.Features) (*property.Property, error) {
	return m.property(m.Called(ctx, id, f))
}

func (m *MockPropertyAdmin) Deactivate(ctx context.Context, id uuid.UUID) (*property.Property, error) {
	return m.property(m.Called(ctx, id))
}

func (m *MockPropertyAdmin) Reactivate(ctx context.Context, id uuid.UUID) (*property.Property, error) {
	return m.property(m.Called(ctx, id))
}

func (m *MockPropertyAdmin) RegisterCustomDomain(ctx context.Context, id uuid.UUID, domain string) (tenancy.DomainInstructions, error) {
	args := m.Called(ctx, id, domain)
	return args.Get(0).(tenancy.DomainInstructions), args.Error(1)
}

func (m *MockPropertyAdmin) RemoveCustomDomain(ctx context.Context, id uuid.UUID) (*property.Property, error) {
	return m.property(m.Called(ctx, id))
}

// MockVerifier is a mock implementation of DomainVerifier
type MockVerifier struct {
	mock.Mock
}

func (m *MockVerifier) Verify(ctx context.Context, propertyID uuid.UUID) (tenancy.VerificationResult, error) {
	args := m.Called(ctx, propertyID)
	return args.Get(0).(tenancy.VerificationResult), args.Error(1)
}

// MockQuotaReporter is a mock implementation of QuotaReporter
type MockQuotaReporter struct {
	mock.Mock
}

func (m *MockQuotaReporter) Check(ctx context.Context, propertyID uuid.UUID) (billing.Snapshot, error) {
	args := m.Called(ctx, propertyID)
	return args.Get(0).(billing.Snapshot), args.Error(1)
}

// MockInbox implements GuestInbox and StaffInbox
type MockInbox struct {
	mock.Mock
}

func (m *MockInbox) SubmitGuestMessage(ctx context.Context, p *property.Property, in appinbox.GuestMessageInput) (*inbox.Message, error) {
	args := m.Called(ctx, p, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inbox.Message), args.Error(1)
}

func (m *MockInbox) List(ctx context.Context, propertyID uuid.UUID, filter shared.Filter) (shared.Page[inbox.Message], error) {
	args := m.Called(ctx, propertyID, filter)
	return args.Get(0).(shared.Page[inbox.Message]), args.Error(1)
}

func (m *MockInbox) UpdateStatus(ctx context.Context, propertyID, messageID uuid.UUID, status inbox.Status) (*inbox.Message, error) {
	args := m.Called(ctx, propertyID, messageID, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inbox.Message), args.Error(1)
}

// MockUploads is a mock implementation of Uploads
type MockUploads struct {
	mock.Mock
}

func (m *MockUploads) RequestUpload(ctx context.Context, propertyID uuid.UUID, in media.RequestUploadInput) (*media.UploadTicket, error) {
	args := m.Called(ctx, propertyID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*media.UploadTicket), args.Error(1)
}

func (m *MockUploads) CompleteUpload(ctx context.Context, propertyID, objectID uuid.UUID) (*domainmedia.StorageObject, error) {
	args := m.Called(ctx, propertyID, objectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domainmedia.StorageObject), args.Error(1)
}

// MockMembers is a mock implementation of Members
type MockMembers struct {
	mock.Mock
}

func (m *MockMembers) AddMember(ctx context.Context, propertyID uuid.UUID, in appidentity.AddMemberInput) (*appidentity.MemberInfo, error) {
	args := m.Called(ctx, propertyID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appidentity.MemberInfo), args.Error(1)
}

func (m *MockMembers) ListMembers(ctx context.Context, propertyID uuid.UUID) ([]appidentity.MemberInfo, error) {
	args := m.Called(ctx, propertyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]appidentity.MemberInfo), args.Error(1)
}

func (m *MockMembers) RemoveMember(ctx context.Context, propertyID, userID uuid.UUID) error {
	return m.Called(ctx, propertyID, userID).Error(0)
}

// envelope is the decoded response body
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string         `json:"code"`
		Message string         `json:"message"`
		Details map[string]any `json:"details"`
		Fields  []struct {
			Field string `json:"field"`
		} `json:"fields"`
	} `json:"error"`
	Meta *struct {
		Total int64 `json:"total"`
	} `json:"meta"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return env
}

func decodeData(t *testing.T, w *httptest.ResponseRecorder, out any) {
	t.Helper()
	env := decode(t, w)
	require.True(t, env.Success, w.Body.String())
	require.NoError(t, json.Unmarshal(env.Data, out))
}

func doJSON(router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// withAuth injects an AuthContext the way PropertyAuth does
func withAuth(ac tenancy.AuthContext) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.AuthKey, ac)
		c.Next()
	}
}

// withResolution injects a tenant binding the way TenantResolution does
func withResolution(res tenancy.Resolution) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.ResolutionKey, res)
		c.Next()
	}
}

func newTestProperty(t *testing.T) *property.Property {
	t.Helper()
	p, err := property.NewProperty("Acme Hotel", "acme")
	require.NoError(t, err)
	return p
}

func newTestRouter(t *testing.T, mws ...gin.HandlerFunc) *gin.Engine {
	t.Helper()
	require.NoError(t, middleware.SetupValidator())
	r := gin.New()
	r.Use(middleware.RequestID())
	r.Use(mws...)
	return r
}
