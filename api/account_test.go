package api

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"moneybook/config"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setUserIDMiddleware(userID uint) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("userID", userID)
		c.Next()
	}
}

func accountRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "user_id", "name", "type", "balance", "institution", "currency", "is_active", "created_at", "updated_at", "deleted_at"})
}

func TestAccountHandler_Create(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	config.GlobalConfig = &config.Config{Server: config.ServerConfig{Mode: "debug"}}
	defer func() { config.GlobalConfig = nil }()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `accounts`").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	router := gin.New()
	router.Use(setUserIDMiddleware(1))
	router.POST("/accounts", NewAccountHandler().Create)

	body := `{"name":"招行储蓄卡","type":"checking","institution":"招商银行"}`
	req := httptest.NewRequest("POST", "/accounts", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "创建成功", resp["message"])
	data := resp["data"].(map[string]interface{})
	// 未指定币种时默认 CNY
	assert.Equal(t, "CNY", data["currency"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountHandler_Create_InvalidType(t *testing.T) {
	_, cleanup := setupMockDB(t)
	defer cleanup()

	config.GlobalConfig = &config.Config{Server: config.ServerConfig{Mode: "debug"}}
	defer func() { config.GlobalConfig = nil }()

	router := gin.New()
	router.Use(setUserIDMiddleware(1))
	router.POST("/accounts", NewAccountHandler().Create)

	body := `{"name":"钱包","type":"wallet"}`
	req := httptest.NewRequest("POST", "/accounts", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 400, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "无效的账户类型", resp["message"])
}

func TestAccountHandler_Get_NotOwned(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	// 他人的账户按不存在处理
	mock.ExpectQuery("SELECT .* FROM `accounts`").
		WillReturnRows(accountRows())

	router := gin.New()
	router.Use(setUserIDMiddleware(2))
	router.GET("/accounts/:id", NewAccountHandler().Get)

	req := httptest.NewRequest("GET", "/accounts/1", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 404, w.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountHandler_Delete_HasTransactions(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	mock.ExpectQuery("SELECT .* FROM `accounts`").
		WillReturnRows(accountRows().
			AddRow(1, 1, "招行储蓄卡", "checking", 100.00, "招商银行", "CNY", true, time.Now(), time.Now(), nil))

	// 账户下存在交易记录
	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `transactions`").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	router := gin.New()
	router.Use(setUserIDMiddleware(1))
	router.DELETE("/accounts/:id", NewAccountHandler().Delete)

	req := httptest.NewRequest("DELETE", "/accounts/1", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 400, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Contains(t, resp["message"], "存在交易记录")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountHandler_Recalculate(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	mock.ExpectQuery("SELECT .* FROM `accounts`").
		WillReturnRows(accountRows().
			AddRow(1, 1, "招行储蓄卡", "checking", 0.00, "招商银行", "CNY", true, time.Now(), time.Now(), nil))

	// 重算在一个事务内完成
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT COALESCE\\(SUM\\(amount\\), 0\\) FROM `transactions`").
		WillReturnRows(sqlmock.NewRows([]string{"total"}).AddRow(3500.00))
	mock.ExpectQuery("SELECT COALESCE\\(SUM\\(amount\\), 0\\) FROM `transactions`").
		WillReturnRows(sqlmock.NewRows([]string{"total"}).AddRow(201.49))
	mock.ExpectExec("UPDATE `accounts` SET").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	// 重算后重新读取账户
	mock.ExpectQuery("SELECT .* FROM `accounts`").
		WillReturnRows(accountRows().
			AddRow(1, 1, "招行储蓄卡", "checking", 3298.51, "招商银行", "CNY", true, time.Now(), time.Now(), nil))

	router := gin.New()
	router.Use(setUserIDMiddleware(1))
	router.POST("/accounts/:id/recalculate", NewAccountHandler().Recalculate)

	req := httptest.NewRequest("POST", "/accounts/1/recalculate", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.InDelta(t, 3298.51, data["balance"].(float64), 0.001)
	require.NoError(t, mock.ExpectationsWereMet())
}
