package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"sps-logbook/internal/api/middleware"
	"sps-logbook/internal/dto"
	"sps-logbook/internal/model"
	"sps-logbook/internal/report"
	"sps-logbook/internal/service"
	"sps-logbook/internal/session"
	pkgerrors "sps-logbook/pkg/errors"
	"sps-logbook/pkg/response"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// ═══════════════════════════════════════════════════════════
// Mock Services
// ═══════════════════════════════════════════════════════════

// ── Mock AuthService ──

type mockAuthService struct {
	loginResult    *dto.TokenResponse
	loginErr       error
	registerResult *dto.UserResponse
	registerErr    error
	registeredBy   string
	resetErr       error
	refreshResult  *dto.TokenResponse
	refreshErr     error
	logoutErr      error
	logoutJTI      string
}

func (m *mockAuthService) Login(_ context.Context, _ *dto.LoginRequest) (*dto.TokenResponse, error) {
	return m.loginResult, m.loginErr
}
func (m *mockAuthService) Register(_ context.Context, _ *dto.RegisterRequest, registeredBy string) (*dto.UserResponse, error) {
	m.registeredBy = registeredBy
	return m.registerResult, m.registerErr
}
func (m *mockAuthService) ResetPassword(_ context.Context, _ *dto.ResetPasswordRequest) error {
	return m.resetErr
}
func (m *mockAuthService) RefreshToken(_ context.Context, _ string) (*dto.TokenResponse, error) {
	return m.refreshResult, m.refreshErr
}
func (m *mockAuthService) Logout(_ context.Context, _ *session.Session, jti string, _ time.Time, _ string) error {
	m.logoutJTI = jti
	return m.logoutErr
}
func (m *mockAuthService) EnsureAdmin(_ context.Context) error { return nil }

// ── Mock SessionService ──

type mockSessionService struct {
	result    *dto.SessionResponse
	err       error
	requested string
}

func (m *mockSessionService) Get(_ context.Context, _ *session.Session) (*dto.SessionResponse, error) {
	return m.result, m.err
}
func (m *mockSessionService) SwitchPage(_ context.Context, _ *session.Session, page string) (*dto.SessionResponse, error) {
	m.requested = page
	return m.result, m.err
}

// ── Mock EntryService ──

type mockEntryService struct {
	submitResult *dto.SubmitEntryResponse
	submitErr    error
	submitted    *dto.SubmitEntryRequest
	unlockResult *dto.UnlockEntryResponse
	unlockErr    error
	getResult    *dto.EntryResponse
	getErr       error
	deleteErr    error
	deletedKey   [2]string
	recent       []dto.EntryResponse
	pending      *dto.PendingResponse
	pendingErr   error
}

func (m *mockEntryService) Submit(_ context.Context, _ *session.Session, req *dto.SubmitEntryRequest) (*dto.SubmitEntryResponse, error) {
	m.submitted = req
	return m.submitResult, m.submitErr
}
func (m *mockEntryService) Unlock(_ context.Context, _ *session.Session, _ *dto.UnlockEntryRequest) (*dto.UnlockEntryResponse, error) {
	return m.unlockResult, m.unlockErr
}
func (m *mockEntryService) Get(_ context.Context, _ *session.Session, _, _ string) (*dto.EntryResponse, error) {
	return m.getResult, m.getErr
}
func (m *mockEntryService) Delete(_ context.Context, _ *session.Session, date, station string) error {
	m.deletedKey = [2]string{date, station}
	return m.deleteErr
}
func (m *mockEntryService) Recent(_ context.Context, _ *session.Session) ([]dto.EntryResponse, error) {
	return m.recent, nil
}
func (m *mockEntryService) Pending(_ context.Context, _, _ string) (*dto.PendingResponse, error) {
	return m.pending, m.pendingErr
}
func (m *mockEntryService) Catalog() *dto.CatalogResponse {
	return &dto.CatalogResponse{Zones: []dto.CatalogZone{{Zone: "WZ", Group: "standard", Stations: []string{"Ranip"}}}}
}

// ── Mock ReportService ──

type mockReportService struct {
	summary    *dto.SummaryResponse
	compare    *report.Comparison
	critical   []dto.EntryResponse
	file       *dto.ExportFile
	err        error
	lastQuery  *dto.ReportQuery
	lastExport *dto.ExportQuery
}

func (m *mockReportService) Summary(_ context.Context, _ *session.Session, q *dto.ReportQuery) (*dto.SummaryResponse, error) {
	m.lastQuery = q
	return m.summary, m.err
}
func (m *mockReportService) Compare(_ context.Context, _ *session.Session, _ *dto.CompareRequest) (*report.Comparison, error) {
	return m.compare, m.err
}
func (m *mockReportService) Critical(_ context.Context, _ *session.Session, _ *dto.ReportQuery) ([]dto.EntryResponse, error) {
	return m.critical, m.err
}
func (m *mockReportService) Export(_ context.Context, _ *session.Session, q *dto.ExportQuery) (*dto.ExportFile, error) {
	m.lastExport = q
	return m.file, m.err
}
func (m *mockReportService) ExportComparison(_ context.Context, _ *session.Session, _ *dto.CompareRequest) (*dto.ExportFile, error) {
	return m.file, m.err
}

// ── Mock UserService ──

type mockUserService struct {
	users  []dto.UserResponse
	file   *dto.ExportFile
	err    error
	format string
}

func (m *mockUserService) List(_ context.Context) ([]dto.UserResponse, error) {
	return m.users, m.err
}
func (m *mockUserService) Export(_ context.Context, format string) (*dto.ExportFile, error) {
	m.format = format
	return m.file, m.err
}

// ═══════════════════════════════════════════════════════════
// 辅助函数
// ═══════════════════════════════════════════════════════════

func setupGin() (*gin.Engine, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	_, r := gin.CreateTestContext(w)
	return r, w
}

// setAuth 模拟 JWT 中间件注入的会话
func setAuth(username string, class model.AccessClass) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.CtxSession, &session.Session{
			ID:          "test-sid",
			Username:    username,
			AccessClass: class,
			IsAdmin:     username == "admin",
		})
		c.Set(middleware.CtxTokenID, "test-jti")
		c.Set(middleware.CtxTokenExp, time.Now().Add(15*time.Minute))
		c.Next()
	}
}

func jsonBody(v interface{}) io.Reader {
	b, _ := json.Marshal(v)
	return bytes.NewReader(b)
}

func parseResponse(w *httptest.ResponseRecorder) response.Response {
	var resp response.Response
	json.Unmarshal(w.Body.Bytes(), &resp)
	return resp
}

func doJSON(r *gin.Engine, w *httptest.ResponseRecorder, method, path string, body interface{}) {
	var rd io.Reader
	if body != nil {
		rd = jsonBody(body)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
}

// ═══════════════════════════════════════════════════════════
// AuthHandler
// ═══════════════════════════════════════════════════════════

func TestAuthHandler_Login_Success(t *testing.T) {
	mock := &mockAuthService{loginResult: &dto.TokenResponse{AccessToken: "a", RefreshToken: "r", ExpiresIn: 900}}
	h := NewAuthHandler(mock)

	r, w := setupGin()
	r.POST("/auth/login", h.Login)
	doJSON(r, w, "POST", "/auth/login", dto.LoginRequest{Username: "ravi", Password: "pass"})

	if w.Code != http.StatusOK {
		t.Errorf("期望 200，实际 %d", w.Code)
	}
	if resp := parseResponse(w); resp.Code != 0 {
		t.Errorf("期望 code 0，实际 %d", resp.Code)
	}
}

func TestAuthHandler_Login_BadJSON(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{})

	r, w := setupGin()
	r.POST("/auth/login", h.Login)
	req := httptest.NewRequest("POST", "/auth/login", bytes.NewReader([]byte("invalid json")))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("期望 400，实际 %d", w.Code)
	}
}

func TestAuthHandler_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   int
	}{
		{"InvalidCredentials", service.ErrInvalidCredentials, 401, 11001},
		{"Duplicate", service.ErrDuplicateUsername, 409, 11002},
		{"Unauthorized", service.ErrUnauthorizedRegistration, 403, 11003},
		{"Username", service.ErrInvalidUsername, 400, 11004},
		{"ShortPassword", service.ErrPasswordTooShort, 400, 11005},
		{"Mismatch", service.ErrPasswordMismatch, 400, 11006},
		{"AccessClass", service.ErrInvalidAccessClass, 400, 11007},
		{"InternalError", errors.New("db down"), 500, 50000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewAuthHandler(&mockAuthService{registerErr: tt.err})

			r, w := setupGin()
			r.POST("/auth/register", h.Register)
			doJSON(r, w, "POST", "/auth/register", dto.RegisterRequest{
				Username: "ravi", Password: "pass", ConfirmPassword: "pass", AccessClass: "entry",
			})

			if w.Code != tt.wantStatus {
				t.Errorf("期望状态 %d，实际 %d", tt.wantStatus, w.Code)
			}
			if resp := parseResponse(w); resp.Code != tt.wantCode {
				t.Errorf("期望 code %d，实际 %d", tt.wantCode, resp.Code)
			}
		})
	}
}

func TestAuthHandler_Register_RecordsBearerUser(t *testing.T) {
	mock := &mockAuthService{registerResult: &dto.UserResponse{Username: "asha"}}
	h := NewAuthHandler(mock)

	r, w := setupGin()
	r.POST("/auth/register", setAuth("admin", model.AccessBoth), h.Register)
	doJSON(r, w, "POST", "/auth/register", dto.RegisterRequest{
		Username: "asha", Password: "pass", ConfirmPassword: "pass", AccessClass: "both", AuthCode: "x",
	})

	if w.Code != http.StatusCreated {
		t.Errorf("期望 201，实际 %d", w.Code)
	}
	if mock.registeredBy != "admin" {
		t.Errorf("期望 registered_by=admin，实际=%q", mock.registeredBy)
	}
}

func TestAuthHandler_ResetPassword_UnknownUser(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{resetErr: service.ErrUserNotFound})

	r, w := setupGin()
	r.POST("/auth/reset-password", h.ResetPassword)
	doJSON(r, w, "POST", "/auth/reset-password", dto.ResetPasswordRequest{
		Username: "ghost", NewPassword: "pass", ConfirmPassword: "pass",
	})

	if w.Code != http.StatusNotFound {
		t.Errorf("期望 404，实际 %d", w.Code)
	}
	if resp := parseResponse(w); resp.Code != 11008 {
		t.Errorf("期望 code 11008，实际 %d", resp.Code)
	}
}

func TestAuthHandler_RefreshToken_MissingToken(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{})

	r, w := setupGin()
	r.POST("/auth/refresh", h.RefreshToken)
	doJSON(r, w, "POST", "/auth/refresh", map[string]string{})

	if w.Code != http.StatusBadRequest {
		t.Errorf("期望 400，实际 %d", w.Code)
	}
}

func TestAuthHandler_RefreshToken_Invalid(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{refreshErr: service.ErrInvalidRefreshToken})

	r, w := setupGin()
	r.POST("/auth/refresh", h.RefreshToken)
	doJSON(r, w, "POST", "/auth/refresh", dto.RefreshTokenRequest{RefreshToken: "stale"})

	if w.Code != http.StatusUnauthorized {
		t.Errorf("期望 401，实际 %d", w.Code)
	}
}

func TestAuthHandler_Logout(t *testing.T) {
	mock := &mockAuthService{}
	h := NewAuthHandler(mock)

	r, w := setupGin()
	r.POST("/auth/logout", setAuth("ravi", model.AccessEntry), h.Logout)
	doJSON(r, w, "POST", "/auth/logout", nil)

	if w.Code != http.StatusOK {
		t.Errorf("期望 200，实际 %d", w.Code)
	}
	if mock.logoutJTI != "test-jti" {
		t.Errorf("应传入当前 Token 的 jti，实际=%q", mock.logoutJTI)
	}
}

func TestAuthHandler_Logout_Unauthenticated(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{})

	r, w := setupGin()
	r.POST("/auth/logout", h.Logout)
	doJSON(r, w, "POST", "/auth/logout", nil)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("期望 401，实际 %d", w.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// SessionHandler
// ═══════════════════════════════════════════════════════════

func TestSessionHandler_SwitchPage(t *testing.T) {
	mock := &mockSessionService{result: &dto.SessionResponse{ActivePage: "report"}}
	h := NewSessionHandler(mock)

	r, w := setupGin()
	r.PUT("/session/page", setAuth("meera", model.AccessBoth), h.SwitchPage)
	doJSON(r, w, "PUT", "/session/page", dto.SwitchPageRequest{Page: "report"})

	if w.Code != http.StatusOK {
		t.Errorf("期望 200，实际 %d", w.Code)
	}
	if mock.requested != "report" {
		t.Errorf("期望请求 report，实际=%q", mock.requested)
	}
}

func TestSessionHandler_SwitchPage_EmptyBodyToggles(t *testing.T) {
	mock := &mockSessionService{result: &dto.SessionResponse{ActivePage: "report"}}
	h := NewSessionHandler(mock)

	r, w := setupGin()
	r.PUT("/session/page", setAuth("meera", model.AccessBoth), h.SwitchPage)
	r.ServeHTTP(w, httptest.NewRequest("PUT", "/session/page", nil))

	if w.Code != http.StatusOK {
		t.Errorf("期望 200，实际 %d", w.Code)
	}
	if mock.requested != "" {
		t.Errorf("空请求体应切换页面，实际请求=%q", mock.requested)
	}
}

func TestSessionHandler_SwitchPage_Forbidden(t *testing.T) {
	h := NewSessionHandler(&mockSessionService{err: service.ErrPageForbidden})

	r, w := setupGin()
	r.PUT("/session/page", setAuth("ravi", model.AccessEntry), h.SwitchPage)
	doJSON(r, w, "PUT", "/session/page", dto.SwitchPageRequest{Page: "report"})

	if w.Code != http.StatusForbidden {
		t.Errorf("期望 403，实际 %d", w.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// EntryHandler
// ═══════════════════════════════════════════════════════════

func validEntry() dto.SubmitEntryRequest {
	return dto.SubmitEntryRequest{
		EntryDate: "2024-05-10", Zone: "WZ", Station: "Ranip",
		TotalPumps: 4, WorkingPumps: 2, StandbyPumps: 1, PumpingVolume: 12.5,
		UnlockCode: "secret",
	}
}

func TestEntryHandler_Submit_Created(t *testing.T) {
	mock := &mockEntryService{submitResult: &dto.SubmitEntryResponse{Outcome: service.OutcomeCreated}}
	h := NewEntryHandler(mock)

	r, w := setupGin()
	r.POST("/entries", setAuth("ravi", model.AccessEntry), h.Submit)
	doJSON(r, w, "POST", "/entries", validEntry())

	if w.Code != http.StatusCreated {
		t.Errorf("期望 201，实际 %d", w.Code)
	}
	if mock.submitted.PumpingVolume != 12.5 {
		t.Errorf("请求未正确绑定: %+v", mock.submitted)
	}
}

func TestEntryHandler_Submit_ReplacedIs200(t *testing.T) {
	mock := &mockEntryService{submitResult: &dto.SubmitEntryResponse{Outcome: service.OutcomeReplaced}}
	h := NewEntryHandler(mock)

	r, w := setupGin()
	r.POST("/entries", setAuth("ravi", model.AccessEntry), h.Submit)
	doJSON(r, w, "POST", "/entries", validEntry())

	if w.Code != http.StatusOK {
		t.Errorf("期望 200，实际 %d", w.Code)
	}
}

func TestEntryHandler_Submit_ConflictEchoesForm(t *testing.T) {
	key := model.RecordKey{Date: model.Date{Year: 2024, Month: 5, Day: 10}, Station: "Ranip"}
	mock := &mockEntryService{submitErr: &service.ConflictError{Key: key, State: session.KeyBlocked, Err: pkgerrors.ErrKeyConflict}}
	h := NewEntryHandler(mock)

	r, w := setupGin()
	r.POST("/entries", setAuth("ravi", model.AccessEntry), h.Submit)
	doJSON(r, w, "POST", "/entries", validEntry())

	if w.Code != http.StatusConflict {
		t.Fatalf("期望 409，实际 %d", w.Code)
	}

	var body struct {
		Code int                   `json:"code"`
		Data dto.EntryConflictData `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("解析响应失败: %v", err)
	}
	if body.Code != 12002 {
		t.Errorf("期望 code 12002，实际 %d", body.Code)
	}
	if body.Data.Key != "2024-05-10|Ranip" || body.Data.KeyState != "blocked" {
		t.Errorf("键状态不符: %+v", body.Data)
	}
	if body.Data.Submitted == nil || body.Data.Submitted.PumpingVolume != 12.5 {
		t.Errorf("应回显提交内容: %+v", body.Data.Submitted)
	}
	if body.Data.Submitted != nil && body.Data.Submitted.UnlockCode != "" {
		t.Error("回显内容不应包含授权码")
	}
}

func TestEntryHandler_ErrorMapping(t *testing.T) {
	key := model.RecordKey{Station: "Ranip"}
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   int
	}{
		{"Validation", service.ErrStationNotInZone, 400, 12001},
		{"Conflict", pkgerrors.ErrKeyConflict, 409, 12002},
		{"Denied", &service.ConflictError{Key: key, State: session.KeyBlocked, Err: service.ErrUnlockDenied}, 403, 12003},
		{"InternalError", errors.New("db down"), 500, 50000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewEntryHandler(&mockEntryService{submitErr: tt.err})

			r, w := setupGin()
			r.POST("/entries", setAuth("ravi", model.AccessEntry), h.Submit)
			doJSON(r, w, "POST", "/entries", validEntry())

			if w.Code != tt.wantStatus {
				t.Errorf("期望状态 %d，实际 %d", tt.wantStatus, w.Code)
			}
			if resp := parseResponse(w); resp.Code != tt.wantCode {
				t.Errorf("期望 code %d，实际 %d", tt.wantCode, resp.Code)
			}
		})
	}
}

func TestEntryHandler_Unlock_NotBlocked(t *testing.T) {
	h := NewEntryHandler(&mockEntryService{unlockErr: service.ErrNotBlocked})

	r, w := setupGin()
	r.POST("/entries/unlock", setAuth("ravi", model.AccessEntry), h.Unlock)
	doJSON(r, w, "POST", "/entries/unlock", dto.UnlockEntryRequest{
		EntryDate: "2024-05-10", Zone: "WZ", Station: "Ranip", UnlockCode: "x",
	})

	if w.Code != http.StatusConflict {
		t.Errorf("期望 409，实际 %d", w.Code)
	}
	if resp := parseResponse(w); resp.Code != 12004 {
		t.Errorf("期望 code 12004，实际 %d", resp.Code)
	}
}

func TestEntryHandler_Delete(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"Success", nil, 200},
		{"NotFound", service.ErrEntryNotFound, 404},
		{"NotOwner", service.ErrNotOwner, 403},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := &mockEntryService{deleteErr: tt.err}
			h := NewEntryHandler(mock)

			r, w := setupGin()
			r.DELETE("/entries/:date/:station", setAuth("ravi", model.AccessEntry), h.Delete)
			r.ServeHTTP(w, httptest.NewRequest("DELETE", "/entries/2024-05-10/Paldi%20Shantivan", nil))

			if w.Code != tt.wantStatus {
				t.Errorf("期望状态 %d，实际 %d", tt.wantStatus, w.Code)
			}
			if mock.deletedKey != [2]string{"2024-05-10", "Paldi Shantivan"} {
				t.Errorf("路径参数未正确解析: %v", mock.deletedKey)
			}
		})
	}
}

func TestEntryHandler_Pending_RequiresZone(t *testing.T) {
	h := NewEntryHandler(&mockEntryService{})

	r, w := setupGin()
	r.GET("/entries/pending", setAuth("ravi", model.AccessEntry), h.Pending)
	r.ServeHTTP(w, httptest.NewRequest("GET", "/entries/pending", nil))

	if w.Code != http.StatusBadRequest {
		t.Errorf("期望 400，实际 %d", w.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// ReportHandler / UserHandler
// ═══════════════════════════════════════════════════════════

func TestReportHandler_Summary_BindsQuery(t *testing.T) {
	mock := &mockReportService{summary: &dto.SummaryResponse{Scope: service.ScopeAll}}
	h := NewReportHandler(mock)

	r, w := setupGin()
	r.GET("/reports/summary", setAuth("meera", model.AccessReport), h.Summary)
	r.ServeHTTP(w, httptest.NewRequest("GET", "/reports/summary?range=custom&start=2024-05-01&end=2024-05-10&zone=WZ", nil))

	if w.Code != http.StatusOK {
		t.Errorf("期望 200，实际 %d", w.Code)
	}
	if mock.lastQuery.Range != "custom" || mock.lastQuery.Start != "2024-05-01" || mock.lastQuery.Zone != "WZ" {
		t.Errorf("查询参数未正确绑定: %+v", mock.lastQuery)
	}
}

func TestReportHandler_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   int
	}{
		{"Range", service.ErrInvalidRange, 400, 13001},
		{"Date", service.ErrInvalidReportDate, 400, 13002},
		{"Zone", service.ErrInvalidReportZone, 400, 13003},
		{"InternalError", errors.New("db down"), 500, 50000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewReportHandler(&mockReportService{err: tt.err})

			r, w := setupGin()
			r.GET("/reports/summary", setAuth("meera", model.AccessReport), h.Summary)
			r.ServeHTTP(w, httptest.NewRequest("GET", "/reports/summary", nil))

			if w.Code != tt.wantStatus {
				t.Errorf("期望状态 %d，实际 %d", tt.wantStatus, w.Code)
			}
			if resp := parseResponse(w); resp.Code != tt.wantCode {
				t.Errorf("期望 code %d，实际 %d", tt.wantCode, resp.Code)
			}
		})
	}
}

func TestReportHandler_Export(t *testing.T) {
	mock := &mockReportService{file: &dto.ExportFile{
		Buffer:      bytes.NewBufferString("Date,Zone\n"),
		Filename:    "sps_filtered_2024-05-10.csv",
		ContentType: "text/csv; charset=utf-8",
	}}
	h := NewReportHandler(mock)

	r, w := setupGin()
	r.GET("/reports/export", setAuth("meera", model.AccessReport), h.Export)
	r.ServeHTTP(w, httptest.NewRequest("GET", "/reports/export?format=csv&table=critical&range=today", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("期望 200，实际 %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "text/csv; charset=utf-8" {
		t.Errorf("Content-Type 不符: %s", ct)
	}
	if cd := w.Header().Get("Content-Disposition"); cd == "" {
		t.Error("缺少 Content-Disposition")
	}
	if mock.lastExport.Table != "critical" || mock.lastExport.Range != "today" {
		t.Errorf("导出参数未正确绑定: %+v", mock.lastExport)
	}
}

func TestReportHandler_Compare(t *testing.T) {
	mock := &mockReportService{compare: &report.Comparison{AsPercent: true}}
	h := NewReportHandler(mock)

	r, w := setupGin()
	r.POST("/reports/compare", setAuth("meera", model.AccessReport), h.Compare)
	doJSON(r, w, "POST", "/reports/compare", dto.CompareRequest{FirstDate: "2024-05-09", SecondDate: "2024-05-10"})

	if w.Code != http.StatusOK {
		t.Errorf("期望 200，实际 %d", w.Code)
	}
}

func TestUserHandler_ExportDefaultsToXLSX(t *testing.T) {
	mock := &mockUserService{file: &dto.ExportFile{
		Buffer:      bytes.NewBufferString("xlsx"),
		Filename:    "sps_users.xlsx",
		ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	}}
	h := NewUserHandler(mock)

	r, w := setupGin()
	r.GET("/users/export", h.ExportUsers)
	r.ServeHTTP(w, httptest.NewRequest("GET", "/users/export", nil))

	if w.Code != http.StatusOK {
		t.Errorf("期望 200，实际 %d", w.Code)
	}
	if mock.format != "xlsx" {
		t.Errorf("默认格式应为 xlsx，实际=%q", mock.format)
	}
}

func TestUserHandler_ExportBadFormat(t *testing.T) {
	h := NewUserHandler(&mockUserService{err: service.ErrExportFormat})

	r, w := setupGin()
	r.GET("/users/export", h.ExportUsers)
	r.ServeHTTP(w, httptest.NewRequest("GET", "/users/export?format=odt", nil))

	if w.Code != http.StatusBadRequest {
		t.Errorf("期望 400，实际 %d", w.Code)
	}
}
