package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"profiles/config"
	"profiles/service"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

const aiProfileJSON = `{
	"display_name": "墨瞳",
	"name": "墨瞳·观星者",
	"bio": "自称见过千年星图的说书人",
	"location": "虚构的观星塔",
	"systems_instructions": "You narrate as an ancient stargazer."
}`

// newContentServer 模拟内容查询服务
func newContentServer(status int, body string) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		fmt.Fprint(w, body)
	}))
}

// newGeneratorServer 模拟 chat/completions 接口，把 content 原样塞进回复
func newGeneratorServer(content string) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]interface{}{"content": content}},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		writeJSON(w, resp)
	}))
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	_ = json.NewEncoder(w).Encode(v)
}

func newAIRouter(db *gorm.DB, contentURL, generatorURL string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	content := service.NewContentClient(&config.QueryConfig{
		URL:            contentURL,
		APIKey:         "query-key",
		TimeoutSeconds: 5,
	})
	generator := service.NewProfileGenerator(&config.OpenAIConfig{
		APIKey:         "sk-test",
		BaseURL:        generatorURL,
		Model:          "gpt-4o",
		TimeoutSeconds: 5,
	})
	r := gin.New()
	h := NewAIHandler(db, content, generator)
	r.POST("/api/ais", h.CreateOrUpdateAI)
	r.GET("/api/ais/content/:content_id", h.GetAIByContent)
	return r
}

var aiRowColumns = []string{
	"ai_id", "content_id", "display_name", "name", "bio", "location",
	"systems_instructions", "profile_pic_url", "created_at", "updated_at",
}

func postAI(r *gin.Engine, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest("POST", "/api/ais", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCreateOrUpdateAI_Create(t *testing.T) {
	db, mock, cleanup := setupMockDB(t)
	defer cleanup()

	contentSrv := newContentServer(http.StatusOK,
		`{"title":"星空下","author":"老周","topic":"天文","genre":"散文","custom_prompt":""}`)
	defer contentSrv.Close()
	genSrv := newGeneratorServer(aiProfileJSON)
	defer genSrv.Close()

	mock.ExpectQuery("SELECT \\* FROM `ais`").
		WillReturnRows(sqlmock.NewRows(aiRowColumns))
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `ais`").
		WillReturnResult(sqlmock.NewResult(7, 1))
	mock.ExpectCommit()

	r := newAIRouter(db, contentSrv.URL, genSrv.URL)
	w := postAI(r, `{"content_id": 42}`)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"action":"created"`)
	assert.Contains(t, w.Body.String(), `"ai_id":7`)
	assert.Contains(t, w.Body.String(), `"content_id":42`)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateOrUpdateAI_Update(t *testing.T) {
	db, mock, cleanup := setupMockDB(t)
	defer cleanup()

	contentSrv := newContentServer(http.StatusOK,
		`{"title":"星空下","author":"老周","topic":"天文","genre":"散文","custom_prompt":""}`)
	defer contentSrv.Close()
	genSrv := newGeneratorServer(aiProfileJSON)
	defer genSrv.Close()

	now := time.Date(2026, 2, 3, 4, 5, 6, 0, time.UTC)
	existing := sqlmock.NewRows(aiRowColumns).
		AddRow(7, 42, "旧名", "旧全名", "旧简介", "旧位置", "old", "", now, now)
	mock.ExpectQuery("SELECT \\* FROM `ais`").WillReturnRows(existing)
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `ais`(.+)ON DUPLICATE KEY UPDATE").
		WillReturnResult(sqlmock.NewResult(7, 2))
	mock.ExpectCommit()
	// 更新分支重读拿 ai_id
	mock.ExpectQuery("SELECT \\* FROM `ais`").
		WillReturnRows(sqlmock.NewRows(aiRowColumns).
			AddRow(7, 42, "墨瞳", "墨瞳·观星者", "新简介", "观星塔", "new", "", now, now))

	r := newAIRouter(db, contentSrv.URL, genSrv.URL)
	w := postAI(r, `{"content_id": 42}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"action":"updated"`)
	assert.Contains(t, w.Body.String(), `"ai_id":7`)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateOrUpdateAI_MissingContentID(t *testing.T) {
	db, mock, cleanup := setupMockDB(t)
	defer cleanup()

	r := newAIRouter(db, "http://127.0.0.1:0", "http://127.0.0.1:0")
	w := postAI(r, `{}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateOrUpdateAI_ContentNotFound(t *testing.T) {
	db, mock, cleanup := setupMockDB(t)
	defer cleanup()

	contentSrv := newContentServer(http.StatusNotFound, `{"code":404}`)
	defer contentSrv.Close()
	genSrv := newGeneratorServer(aiProfileJSON)
	defer genSrv.Close()

	mock.ExpectQuery("SELECT \\* FROM `ais`").
		WillReturnRows(sqlmock.NewRows(aiRowColumns))

	r := newAIRouter(db, contentSrv.URL, genSrv.URL)
	w := postAI(r, `{"content_id": 42}`)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "内容不存在")
	// 内容不存在时不落库
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateOrUpdateAI_GeneratorBadJSON(t *testing.T) {
	db, mock, cleanup := setupMockDB(t)
	defer cleanup()

	contentSrv := newContentServer(http.StatusOK,
		`{"title":"星空下","author":"老周","topic":"天文","genre":"散文","custom_prompt":""}`)
	defer contentSrv.Close()
	genSrv := newGeneratorServer("抱歉，我无法生成资料。")
	defer genSrv.Close()

	mock.ExpectQuery("SELECT \\* FROM `ais`").
		WillReturnRows(sqlmock.NewRows(aiRowColumns))

	r := newAIRouter(db, contentSrv.URL, genSrv.URL)
	w := postAI(r, `{"content_id": 42}`)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	// 生成失败时不落库
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetAIByContent_Found(t *testing.T) {
	db, mock, cleanup := setupMockDB(t)
	defer cleanup()

	created := time.Date(2026, 2, 3, 4, 5, 6, 0, time.UTC)
	mock.ExpectQuery("SELECT \\* FROM `ais`").
		WillReturnRows(sqlmock.NewRows(aiRowColumns).
			AddRow(7, 42, "墨瞳", "墨瞳·观星者", "简介", "观星塔", "instr", "https://img/ai.png", created, created))

	r := newAIRouter(db, "http://127.0.0.1:0", "http://127.0.0.1:0")
	req := httptest.NewRequest("GET", "/api/ais/content/42", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"ai_id":7`)
	assert.Contains(t, w.Body.String(), `"content_id":42`)
	assert.Contains(t, w.Body.String(), `"created_at":"2026-02-03T04:05:06Z"`)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetAIByContent_NotFound(t *testing.T) {
	db, mock, cleanup := setupMockDB(t)
	defer cleanup()

	mock.ExpectQuery("SELECT \\* FROM `ais`").
		WillReturnRows(sqlmock.NewRows(aiRowColumns))

	r := newAIRouter(db, "http://127.0.0.1:0", "http://127.0.0.1:0")
	req := httptest.NewRequest("GET", "/api/ais/content/42", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "AI资料不存在")
}
