package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"campus-desk/backend/internal/api/middleware"
	"campus-desk/backend/internal/api/validator"
	"campus-desk/backend/internal/dto"
	"campus-desk/backend/internal/service"
	"campus-desk/backend/pkg/jwt"
	"campus-desk/backend/pkg/response"
)

func init() {
	gin.SetMode(gin.TestMode)
	if err := validator.Register(); err != nil {
		panic(err)
	}
}

// ═══════════════════════════════════════════════════════════
// Mock Services
// ═══════════════════════════════════════════════════════════

// ── Mock AuthService ──

type mockAuthService struct {
	loginResult   *dto.AuthResponse
	loginErr      error
	loginIP       string
	refreshResult *dto.AuthResponse
	refreshErr    error
	logoutErr     error
	logoutToken   string
	meResult      *dto.UserResponse
	meErr         error
}

func (m *mockAuthService) Login(_ context.Context, _ *dto.LoginRequest, ip string) (*dto.AuthResponse, error) {
	m.loginIP = ip
	return m.loginResult, m.loginErr
}
func (m *mockAuthService) Register(_ context.Context, _ *dto.RegisterRequest, _ string) (*dto.AuthResponse, error) {
	return m.loginResult, m.loginErr
}
func (m *mockAuthService) Refresh(_ context.Context, _ *service.Principal, _ string, _ *jwt.Claims) (*dto.AuthResponse, error) {
	return m.refreshResult, m.refreshErr
}
func (m *mockAuthService) Logout(_ context.Context, token string, _ *jwt.Claims) error {
	m.logoutToken = token
	return m.logoutErr
}
func (m *mockAuthService) Me(_ context.Context, _ *service.Principal) (*dto.UserResponse, error) {
	return m.meResult, m.meErr
}
func (m *mockAuthService) LoadPrincipal(_ context.Context, _ *jwt.Claims) (*service.Principal, error) {
	return nil, nil
}

// ── Mock UserService ──

type mockUserService struct {
	listResult  []dto.UserResponse
	listTotal   int64
	listErr     error
	batchResult *dto.BatchCreateUserResponse
	batchErr    error
	batchItems  []dto.BatchCreateUserItem
	parseResult []dto.BatchCreateUserItem
	parseErr    error
}

func (m *mockUserService) List(_ context.Context, _ *dto.UserListRequest) ([]dto.UserResponse, int64, error) {
	return m.listResult, m.listTotal, m.listErr
}
func (m *mockUserService) BatchCreate(_ context.Context, items []dto.BatchCreateUserItem) (*dto.BatchCreateUserResponse, error) {
	m.batchItems = items
	return m.batchResult, m.batchErr
}
func (m *mockUserService) ParseImportFile(_ io.Reader) ([]dto.BatchCreateUserItem, error) {
	return m.parseResult, m.parseErr
}
func (m *mockUserService) CreateAdmin(_ context.Context, _ *dto.CreateAdminRequest) (*dto.UserResponse, error) {
	return nil, nil
}

// ── Mock RepairOrderService ──

type mockOrderService struct {
	result     *dto.RepairOrderResponse
	err        error
	list       []dto.RepairOrderResponse
	total      int64
	createdBy  *service.Principal
	gotID      uint64
	gotHandler uint64
	gotRating  int
	gotListReq *dto.OrderListRequest
}

func (m *mockOrderService) Create(_ context.Context, p *service.Principal, _ *dto.CreateRepairOrderRequest) (*dto.RepairOrderResponse, error) {
	m.createdBy = p
	return m.result, m.err
}
func (m *mockOrderService) UpdateStatus(_ context.Context, id uint64, _ *dto.UpdateOrderStatusRequest) (*dto.RepairOrderResponse, error) {
	m.gotID = id
	return m.result, m.err
}
func (m *mockOrderService) Assign(_ context.Context, id, handlerID uint64) (*dto.RepairOrderResponse, error) {
	m.gotID, m.gotHandler = id, handlerID
	return m.result, m.err
}
func (m *mockOrderService) Evaluate(_ context.Context, id uint64, rating int, _ string) (*dto.RepairOrderResponse, error) {
	m.gotID, m.gotRating = id, rating
	return m.result, m.err
}
func (m *mockOrderService) Report(_ context.Context, id uint64, _ string) (*dto.RepairOrderResponse, error) {
	m.gotID = id
	return m.result, m.err
}
func (m *mockOrderService) GetDetail(_ context.Context, _ *service.Principal, id uint64) (*dto.RepairOrderResponse, error) {
	m.gotID = id
	return m.result, m.err
}
func (m *mockOrderService) ListMine(_ context.Context, _ *service.Principal, _ *dto.PaginationRequest) ([]dto.RepairOrderResponse, int64, error) {
	return m.list, m.total, m.err
}
func (m *mockOrderService) ListByHandler(_ context.Context, handlerID uint64, _ *dto.PaginationRequest) ([]dto.RepairOrderResponse, int64, error) {
	m.gotHandler = handlerID
	return m.list, m.total, m.err
}
func (m *mockOrderService) ListAll(_ context.Context, req *dto.OrderListRequest) ([]dto.RepairOrderResponse, int64, error) {
	m.gotListReq = req
	return m.list, m.total, m.err
}

// ── Mock KnowledgeService ──

type mockKnowledgeService struct {
	service.KnowledgeService
	articleReq *dto.ArticleListRequest
	err        error
	deletedID  uint64
}

func (m *mockKnowledgeService) ListArticles(_ context.Context, req *dto.ArticleListRequest) ([]dto.ArticleResponse, int64, error) {
	m.articleReq = req
	return []dto.ArticleResponse{}, 0, m.err
}
func (m *mockKnowledgeService) DeleteCategory(_ context.Context, id uint64) error {
	m.deletedID = id
	return m.err
}

// ── Mock FileService ──

type mockFileService struct {
	service.FileService
	uploadURL string
	uploadErr error
}

func (m *mockFileService) Upload(_ context.Context, _ *multipart.FileHeader) (string, error) {
	return m.uploadURL, m.uploadErr
}

// ── Mock ExportService ──

type mockExportService struct {
	buf      *bytes.Buffer
	filename string
	err      error
}

func (m *mockExportService) ExportOrders(_ context.Context, _ *dto.OrderListRequest) (*bytes.Buffer, string, error) {
	return m.buf, m.filename, m.err
}

// ═══════════════════════════════════════════════════════════
// Test Helpers
// ═══════════════════════════════════════════════════════════

var testPrincipal = &service.Principal{UserID: 42, Username: "alice", Roles: []string{"USER"}}

func setupGin() (*gin.Engine, *gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, r := gin.CreateTestContext(w)
	return r, c, w
}

func setAuth(c *gin.Context) {
	c.Set(middleware.ContextKeyPrincipal, testPrincipal)
	c.Set(middleware.ContextKeyUserID, testPrincipal.UserID)
	c.Set(middleware.ContextKeyToken, "test-token")
	c.Set(middleware.ContextKeyClaims, &jwt.Claims{UserID: testPrincipal.UserID})
}

func jsonBody(v interface{}) io.Reader {
	b, _ := json.Marshal(v)
	return bytes.NewReader(b)
}

func jsonRequest(method, target string, body interface{}) *http.Request {
	req := httptest.NewRequest(method, target, jsonBody(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func parseResponse(w *httptest.ResponseRecorder) response.Response {
	var resp response.Response
	json.Unmarshal(w.Body.Bytes(), &resp)
	return resp
}

func multipartRequest(target, field, filename string, content []byte) *http.Request {
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	part, _ := mw.CreateFormFile(field, filename)
	part.Write(content)
	mw.Close()
	req := httptest.NewRequest(http.MethodPost, target, body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

// ═══════════════════════════════════════════════════════════
// AuthHandler Tests
// ═══════════════════════════════════════════════════════════

func TestAuthHandler_Login_Success(t *testing.T) {
	mock := &mockAuthService{loginResult: &dto.AuthResponse{Token: "t", TokenType: "Bearer", ExpiresIn: 86400}}
	h := NewAuthHandler(mock, &mockUserService{})

	_, c, w := setupGin()
	c.Request = jsonRequest(http.MethodPost, "/api/auth/login", dto.LoginRequest{Username: "alice", Password: "Secret123"})
	h.Login(c)

	if w.Code != http.StatusOK {
		t.Fatalf("期望 200, 实际=%d body=%s", w.Code, w.Body.String())
	}
	resp := parseResponse(w)
	if !resp.Success || resp.Code != 200 {
		t.Errorf("期望 success=true code=200, 实际=%+v", resp)
	}
	if mock.loginIP == "" {
		t.Error("期望传入客户端 IP")
	}
}

func TestAuthHandler_Login_BindError(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{}, &mockUserService{})

	_, c, w := setupGin()
	c.Request = jsonRequest(http.MethodPost, "/api/auth/login", map[string]string{"username": "alice"})
	h.Login(c)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("期望 400, 实际=%d", w.Code)
	}
	if resp := parseResponse(w); !strings.Contains(resp.Message, "password") {
		t.Errorf("期望提示缺少 password, 实际=%s", resp.Message)
	}
}

func TestAuthHandler_Login_InvalidCredentials(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{loginErr: service.ErrInvalidCredentials}, &mockUserService{})

	_, c, w := setupGin()
	c.Request = jsonRequest(http.MethodPost, "/api/auth/login", dto.LoginRequest{Username: "alice", Password: "wrong"})
	h.Login(c)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("期望 401, 实际=%d", w.Code)
	}
	if resp := parseResponse(w); resp.Success {
		t.Error("期望 success=false")
	}
}

func TestAuthHandler_Login_UnexpectedError(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{loginErr: errors.New("db down")}, &mockUserService{})

	_, c, w := setupGin()
	c.Request = jsonRequest(http.MethodPost, "/api/auth/login", dto.LoginRequest{Username: "alice", Password: "x"})
	h.Login(c)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("期望 500, 实际=%d", w.Code)
	}
	if resp := parseResponse(w); strings.Contains(resp.Message, "db down") {
		t.Error("内部错误细节不应返回给客户端")
	}
	if len(c.Errors) != 1 {
		t.Errorf("期望错误记录到上下文供访问日志输出, 实际=%d", len(c.Errors))
	}
}

func TestAuthHandler_Logout(t *testing.T) {
	mock := &mockAuthService{}
	h := NewAuthHandler(mock, &mockUserService{})

	_, c, w := setupGin()
	c.Request = httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil)
	setAuth(c)
	h.Logout(c)

	if w.Code != http.StatusOK {
		t.Fatalf("期望 200, 实际=%d", w.Code)
	}
	if mock.logoutToken != "test-token" {
		t.Errorf("期望吊销当前 token, 实际=%s", mock.logoutToken)
	}
}

func TestAuthHandler_Refresh_Unauthenticated(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{}, &mockUserService{})

	_, c, w := setupGin()
	c.Request = httptest.NewRequest(http.MethodPost, "/api/auth/refresh", nil)
	h.Refresh(c)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("期望 401, 实际=%d", w.Code)
	}
}

func TestAuthHandler_BatchCreate_InvalidItem(t *testing.T) {
	users := &mockUserService{}
	h := NewAuthHandler(&mockAuthService{}, users)

	_, c, w := setupGin()
	c.Request = jsonRequest(http.MethodPost, "/api/auth/batch-create", []dto.BatchCreateUserItem{
		{Username: "alice01", StudentID: "20240001"},
		{Username: "bob02", StudentID: "abc"},
	})
	h.BatchCreate(c)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("期望 400, 实际=%d body=%s", w.Code, w.Body.String())
	}
	if users.batchItems != nil {
		t.Error("校验失败时不应调用业务层")
	}
}

func TestAuthHandler_BatchCreate_Success(t *testing.T) {
	users := &mockUserService{batchResult: &dto.BatchCreateUserResponse{Total: 1, Created: 1}}
	h := NewAuthHandler(&mockAuthService{}, users)

	_, c, w := setupGin()
	c.Request = jsonRequest(http.MethodPost, "/api/auth/batch-create", []dto.BatchCreateUserItem{
		{Username: "alice01", StudentID: "20240001"},
	})
	h.BatchCreate(c)

	if w.Code != http.StatusOK {
		t.Fatalf("期望 200, 实际=%d body=%s", w.Code, w.Body.String())
	}
	if len(users.batchItems) != 1 {
		t.Errorf("期望传入 1 项, 实际=%d", len(users.batchItems))
	}
}

func TestAuthHandler_BatchImport_RowValidation(t *testing.T) {
	users := &mockUserService{parseResult: []dto.BatchCreateUserItem{
		{Username: "alice01", StudentID: "20240001"},
		{Username: "x", StudentID: "20240002"},
	}}
	h := NewAuthHandler(&mockAuthService{}, users)

	_, c, w := setupGin()
	c.Request = multipartRequest("/api/auth/batch-import", "file", "users.xlsx", []byte("ignored"))
	h.BatchImport(c)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("期望 400, 实际=%d", w.Code)
	}
	if resp := parseResponse(w); !strings.HasPrefix(resp.Message, "第 3 行") {
		t.Errorf("期望定位到第 3 行, 实际=%s", resp.Message)
	}
}

func TestAuthHandler_BatchImport_MissingFile(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{}, &mockUserService{})

	_, c, w := setupGin()
	c.Request = httptest.NewRequest(http.MethodPost, "/api/auth/batch-import", nil)
	h.BatchImport(c)

	if w.Code != http.StatusBadRequest {
		t.Errorf("期望 400, 实际=%d", w.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// RepairOrderHandler Tests
// ═══════════════════════════════════════════════════════════

func validOrderRequest() map[string]interface{} {
	return map[string]interface{}{
		"type":          1,
		"description":   "宿舍断网",
		"location":      "3 号楼 201",
		"contact_phone": "13800138000",
		// 以下字段由服务端决定
		"user_id": 999,
		"status":  3,
	}
}

func TestRepairOrderHandler_Create(t *testing.T) {
	mock := &mockOrderService{result: &dto.RepairOrderResponse{ID: 1, OrderNo: "202603090001"}}
	h := NewRepairOrderHandler(mock)

	_, c, w := setupGin()
	c.Request = jsonRequest(http.MethodPost, "/api/repair-orders", validOrderRequest())
	setAuth(c)
	h.Create(c)

	if w.Code != http.StatusOK {
		t.Fatalf("期望 200, 实际=%d body=%s", w.Code, w.Body.String())
	}
	if mock.createdBy != testPrincipal {
		t.Error("期望以当前登录用户作为报修人")
	}
}

func TestRepairOrderHandler_Create_InvalidPhone(t *testing.T) {
	h := NewRepairOrderHandler(&mockOrderService{})

	body := validOrderRequest()
	body["contact_phone"] = "12345"
	_, c, w := setupGin()
	c.Request = jsonRequest(http.MethodPost, "/api/repair-orders", body)
	setAuth(c)
	h.Create(c)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("期望 400, 实际=%d", w.Code)
	}
	if resp := parseResponse(w); resp.Message != "请输入正确的手机号" {
		t.Errorf("期望手机号提示, 实际=%s", resp.Message)
	}
}

func TestRepairOrderHandler_UpdateStatus_Errors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"非法流转", service.ErrInvalidTransition, http.StatusBadRequest},
		{"工单不存在", service.ErrOrderNotFound, http.StatusNotFound},
		{"并发冲突", service.ErrOrderConflict, http.StatusConflict},
		{"未知错误", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewRepairOrderHandler(&mockOrderService{err: tt.err})

			_, c, w := setupGin()
			c.Request = jsonRequest(http.MethodPut, "/api/repair-orders/7/status", map[string]interface{}{"status": 2})
			c.Params = gin.Params{{Key: "id", Value: "7"}}
			h.UpdateStatus(c)

			if w.Code != tt.want {
				t.Errorf("期望 %d, 实际=%d", tt.want, w.Code)
			}
			if resp := parseResponse(w); resp.Code != tt.want {
				t.Errorf("期望信封 code=%d, 实际=%d", tt.want, resp.Code)
			}
		})
	}
}

func TestRepairOrderHandler_BadIDParam(t *testing.T) {
	mock := &mockOrderService{}
	h := NewRepairOrderHandler(mock)

	for _, v := range []string{"abc", "0", "-1"} {
		_, c, w := setupGin()
		c.Request = httptest.NewRequest(http.MethodGet, "/api/repair-orders/"+v, nil)
		c.Params = gin.Params{{Key: "id", Value: v}}
		setAuth(c)
		h.GetDetail(c)

		if w.Code != http.StatusBadRequest {
			t.Errorf("id=%s: 期望 400, 实际=%d", v, w.Code)
		}
	}
	if mock.gotID != 0 {
		t.Error("非法 ID 不应调用业务层")
	}
}

func TestRepairOrderHandler_Assign(t *testing.T) {
	mock := &mockOrderService{result: &dto.RepairOrderResponse{ID: 7}}
	h := NewRepairOrderHandler(mock)

	_, c, w := setupGin()
	c.Request = httptest.NewRequest(http.MethodPut, "/api/repair-orders/7/assign/3", nil)
	c.Params = gin.Params{{Key: "id", Value: "7"}, {Key: "handlerId", Value: "3"}}
	h.Assign(c)

	if w.Code != http.StatusOK {
		t.Fatalf("期望 200, 实际=%d", w.Code)
	}
	if mock.gotID != 7 || mock.gotHandler != 3 {
		t.Errorf("期望 id=7 handler=3, 实际 id=%d handler=%d", mock.gotID, mock.gotHandler)
	}
}

func TestRepairOrderHandler_Evaluate_RatingOutOfRange(t *testing.T) {
	for _, rating := range []string{"0", "6"} {
		mock := &mockOrderService{}
		h := NewRepairOrderHandler(mock)

		_, c, w := setupGin()
		c.Request = httptest.NewRequest(http.MethodPut, "/api/repair-orders/7/evaluate?rating="+rating, nil)
		c.Params = gin.Params{{Key: "id", Value: "7"}}
		h.Evaluate(c)

		if w.Code != http.StatusBadRequest {
			t.Errorf("rating=%s: 期望 400, 实际=%d", rating, w.Code)
		}
		if mock.gotID != 0 {
			t.Errorf("rating=%s: 不应调用业务层", rating)
		}
	}
}

func TestRepairOrderHandler_ListAll_Page(t *testing.T) {
	mock := &mockOrderService{list: []dto.RepairOrderResponse{{ID: 1}, {ID: 2}}, total: 12}
	h := NewRepairOrderHandler(mock)

	_, c, w := setupGin()
	c.Request = httptest.NewRequest(http.MethodGet, "/api/repair-orders?page=2&page_size=2&status=1", nil)
	h.ListAll(c)

	if w.Code != http.StatusOK {
		t.Fatalf("期望 200, 实际=%d", w.Code)
	}
	if mock.gotListReq.Status == nil || *mock.gotListReq.Status != 1 {
		t.Error("期望透传状态筛选")
	}

	var body struct {
		Data response.PageData `json:"data"`
	}
	json.Unmarshal(w.Body.Bytes(), &body)
	if body.Data.Pagination.Total != 12 || body.Data.Pagination.TotalPages != 6 || body.Data.Pagination.Page != 2 {
		t.Errorf("分页元数据不正确: %+v", body.Data.Pagination)
	}
}

// ═══════════════════════════════════════════════════════════
// KnowledgeHandler Tests
// ═══════════════════════════════════════════════════════════

func TestKnowledgeHandler_ListArticles_DefaultsToPublished(t *testing.T) {
	mock := &mockKnowledgeService{}
	h := NewKnowledgeHandler(mock)

	_, c, w := setupGin()
	c.Request = httptest.NewRequest(http.MethodGet, "/api/knowledge/articles?keyword=wifi", nil)
	h.ListArticles(c)

	if w.Code != http.StatusOK {
		t.Fatalf("期望 200, 实际=%d", w.Code)
	}
	if mock.articleReq.Status == nil || *mock.articleReq.Status != 1 {
		t.Error("未指定状态时期望只查询已发布文章")
	}
	if mock.articleReq.Keyword != "wifi" {
		t.Errorf("期望 keyword=wifi, 实际=%s", mock.articleReq.Keyword)
	}
}

func TestKnowledgeHandler_ListArticles_ExplicitStatus(t *testing.T) {
	mock := &mockKnowledgeService{}
	h := NewKnowledgeHandler(mock)

	_, c, _ := setupGin()
	c.Request = httptest.NewRequest(http.MethodGet, "/api/knowledge/articles?status=0", nil)
	h.ListArticles(c)

	if mock.articleReq.Status == nil || *mock.articleReq.Status != 0 {
		t.Error("期望保留显式指定的状态")
	}
}

func TestKnowledgeHandler_DeleteCategory_HasChildren(t *testing.T) {
	mock := &mockKnowledgeService{err: service.ErrCategoryHasChildren}
	h := NewKnowledgeHandler(mock)

	_, c, w := setupGin()
	c.Request = httptest.NewRequest(http.MethodDelete, "/api/knowledge/categories/5", nil)
	c.Params = gin.Params{{Key: "id", Value: "5"}}
	h.DeleteCategory(c)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("期望 500, 实际=%d", w.Code)
	}
	if resp := parseResponse(w); resp.Message != service.ErrCategoryHasChildren.Message {
		t.Errorf("期望业务提示, 实际=%s", resp.Message)
	}
	if mock.deletedID != 5 {
		t.Errorf("期望删除 id=5, 实际=%d", mock.deletedID)
	}
}

// ═══════════════════════════════════════════════════════════
// FileHandler Tests
// ═══════════════════════════════════════════════════════════

func TestFileHandler_Upload(t *testing.T) {
	h := NewFileHandler(&mockFileService{uploadURL: "/uploads/2026/03/09/a.png"})

	_, c, w := setupGin()
	c.Request = multipartRequest("/api/files/upload", "file", "a.png", []byte("\x89PNG\r\n\x1a\n"))
	h.Upload(c)

	if w.Code != http.StatusOK {
		t.Fatalf("期望 200, 实际=%d body=%s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "/uploads/2026/03/09/a.png") {
		t.Errorf("期望返回文件 URL, 实际 body=%s", w.Body.String())
	}
}

func TestFileHandler_Upload_NoFile(t *testing.T) {
	h := NewFileHandler(&mockFileService{})

	_, c, w := setupGin()
	c.Request = httptest.NewRequest(http.MethodPost, "/api/files/upload", nil)
	h.Upload(c)

	if w.Code != http.StatusBadRequest {
		t.Errorf("期望 400, 实际=%d", w.Code)
	}
}

func TestFileHandler_Upload_TypeRejected(t *testing.T) {
	h := NewFileHandler(&mockFileService{uploadErr: service.ErrFileType})

	_, c, w := setupGin()
	c.Request = multipartRequest("/api/files/upload", "file", "a.exe", []byte("MZ"))
	h.Upload(c)

	if w.Code != http.StatusBadRequest {
		t.Errorf("期望 400, 实际=%d", w.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// ExportHandler Tests
// ═══════════════════════════════════════════════════════════

func TestExportHandler_ExportOrders(t *testing.T) {
	mock := &mockExportService{buf: bytes.NewBufferString("xlsx-bytes"), filename: "repair_orders_20260309103000.xlsx"}
	h := NewExportHandler(mock)

	_, c, w := setupGin()
	c.Request = httptest.NewRequest(http.MethodGet, "/api/repair-orders/export", nil)
	h.ExportOrders(c)

	if w.Code != http.StatusOK {
		t.Fatalf("期望 200, 实际=%d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != xlsxContentType {
		t.Errorf("Content-Type 不正确: %s", ct)
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, "repair_orders_20260309103000.xlsx") {
		t.Errorf("Content-Disposition 不正确: %s", cd)
	}
	if w.Body.String() != "xlsx-bytes" {
		t.Errorf("响应体不正确: %s", w.Body.String())
	}
}

func TestExportHandler_NoOrders(t *testing.T) {
	h := NewExportHandler(&mockExportService{err: service.ErrExportNoOrders})

	_, c, w := setupGin()
	c.Request = httptest.NewRequest(http.MethodGet, "/api/repair-orders/export", nil)
	h.ExportOrders(c)

	if w.Code != http.StatusNotFound {
		t.Errorf("期望 404, 实际=%d", w.Code)
	}
}
