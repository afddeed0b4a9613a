package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stackmill/accessd/internal/auth"
	"github.com/stackmill/accessd/internal/config"
	"github.com/stackmill/accessd/internal/models"
	"github.com/stackmill/accessd/internal/service"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func testSetup(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&models.Group{}, &models.Role{}, &models.GroupRole{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	svc := service.NewGroupService(db, nil)
	h := NewGroupHandler(svc, config.WebConfig{Page: 1, PageSize: 20})

	user := &models.User{ID: uuid.New(), Username: "alice"}
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(auth.UserContextKey, user)
		c.Next()
	})
	r.GET("/group", h.List)
	r.POST("/group", h.Create)
	r.PUT("/group/:id", h.Edit)
	r.PUT("/group/:id/disable", h.Disable)
	r.PUT("/group/:id/enable", h.Enable)
	r.DELETE("/group/:id", h.Delete)
	r.POST("/group_role", h.BindRole)

	return r, db
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) Response {
	t.Helper()
	var resp Response
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
	return resp
}

func TestGroupCreate(t *testing.T) {
	r, db := testSetup(t)

	w := doJSON(t, r, http.MethodPost, "/group", gin.H{"name": "Engineering", "code": "eng", "sort": 1})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	resp := decodeResponse(t, w)
	if resp.Code != 0 || resp.Msg != "success" {
		t.Errorf("envelope = %+v", resp)
	}

	var g models.Group
	if err := db.Where("code = ?", "eng").First(&g).Error; err != nil {
		t.Fatalf("row not created: %v", err)
	}
	if g.Creator != "alice" {
		t.Errorf("creator = %q, want alice", g.Creator)
	}
}

func TestGroupCreate_DuplicateCode(t *testing.T) {
	r, _ := testSetup(t)

	doJSON(t, r, http.MethodPost, "/group", gin.H{"name": "Engineering", "code": "eng"})
	w := doJSON(t, r, http.MethodPost, "/group", gin.H{"name": "Other", "code": "eng"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	resp := decodeResponse(t, w)
	if resp.Msg != "code repeat" {
		t.Errorf("msg = %q, want code repeat", resp.Msg)
	}
}

func TestGroupCreate_MissingRequiredFields(t *testing.T) {
	r, _ := testSetup(t)

	w := doJSON(t, r, http.MethodPost, "/group", gin.H{"intro": "no name or code"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestGroupEdit_NotFound(t *testing.T) {
	r, _ := testSetup(t)

	w := doJSON(t, r, http.MethodPut, "/group/9999", gin.H{"name": "ghost"})
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
	resp := decodeResponse(t, w)
	if resp.Msg != "not exists" {
		t.Errorf("msg = %q, want not exists", resp.Msg)
	}
}

func TestGroupEdit_InvalidID(t *testing.T) {
	r, _ := testSetup(t)

	w := doJSON(t, r, http.MethodPut, "/group/abc", gin.H{"name": "x"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestGroupDisableEnableDelete(t *testing.T) {
	r, db := testSetup(t)

	doJSON(t, r, http.MethodPost, "/group", gin.H{"name": "Engineering", "code": "eng"})
	var g models.Group
	if err := db.Where("code = ?", "eng").First(&g).Error; err != nil {
		t.Fatalf("fetch: %v", err)
	}
	id := g.ID

	path := func(suffix string) string {
		return "/group/" + strconv.Itoa(int(id)) + suffix
	}

	if w := doJSON(t, r, http.MethodPut, path("/disable"), nil); w.Code != http.StatusOK {
		t.Fatalf("disable status = %d", w.Code)
	}
	db.First(&g, id)
	if g.SubStatus != models.SubStatusDisabled {
		t.Errorf("after disable sub_status = %d", g.SubStatus)
	}

	if w := doJSON(t, r, http.MethodPut, path("/enable"), nil); w.Code != http.StatusOK {
		t.Fatalf("enable status = %d", w.Code)
	}
	db.First(&g, id)
	if g.SubStatus != models.SubStatusValid {
		t.Errorf("after enable sub_status = %d", g.SubStatus)
	}

	if w := doJSON(t, r, http.MethodDelete, path(""), nil); w.Code != http.StatusOK {
		t.Fatalf("delete status = %d", w.Code)
	}
	db.First(&g, id)
	if g.SubStatus != models.SubStatusDeleted {
		t.Errorf("after delete sub_status = %d", g.SubStatus)
	}
}

func TestGroupList_Envelope(t *testing.T) {
	r, _ := testSetup(t)

	doJSON(t, r, http.MethodPost, "/group", gin.H{"name": "A", "code": "a", "sort": 2})
	doJSON(t, r, http.MethodPost, "/group", gin.H{"name": "B", "code": "b", "sort": 1})

	w := doJSON(t, r, http.MethodGet, "/group?page=1&page_size=10", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	var resp struct {
		Code int    `json:"code"`
		Msg  string `json:"msg"`
		Data struct {
			Result   []models.Group `json:"result"`
			Total    int64          `json:"total"`
			Page     int            `json:"page"`
			PageSize int            `json:"page_size"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Data.Total != 2 || len(resp.Data.Result) != 2 {
		t.Fatalf("total=%d len=%d, want 2/2", resp.Data.Total, len(resp.Data.Result))
	}
	// sort ascending
	if resp.Data.Result[0].Code != "b" || resp.Data.Result[1].Code != "a" {
		t.Errorf("order = %q, %q", resp.Data.Result[0].Code, resp.Data.Result[1].Code)
	}
	if resp.Data.Page != 1 || resp.Data.PageSize != 10 {
		t.Errorf("page=%d page_size=%d", resp.Data.Page, resp.Data.PageSize)
	}
}

func TestGroupBindRole(t *testing.T) {
	r, db := testSetup(t)

	doJSON(t, r, http.MethodPost, "/group", gin.H{"name": "Engineering", "code": "eng"})
	var g models.Group
	db.Where("code = ?", "eng").First(&g)

	w := doJSON(t, r, http.MethodPost, "/group_role", gin.H{"group_id": g.ID, "role_id": 3})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var count int64
	db.Model(&models.GroupRole{}).Where("group_id = ?", g.ID).Count(&count)
	if count != 1 {
		t.Errorf("bindings = %d, want 1", count)
	}
}
