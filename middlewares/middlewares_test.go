package middlewares_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ucond/ucond_backend/config"
	"github.com/ucond/ucond_backend/middlewares"
	"github.com/ucond/ucond_backend/models"
	"github.com/ucond/ucond_backend/utils"
	"gorm.io/gorm"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestAuthMiddleware(t *testing.T) {
	router := gin.New()
	router.Use(middlewares.AuthMiddleware())
	router.GET("/whoami", func(c *gin.Context) {
		id, ok := utils.GetUserIdFromContext(c.Request.Context())
		c.JSON(http.StatusOK, gin.H{"id": id, "auth": ok})
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/whoami", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id":0,"auth":false}`, w.Body.String())

	token, err := utils.JwtGenerate(7, "V123")
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id":7,"auth":true}`, w.Body.String())

	for _, header := range []string{"Bearer nope", "Basic abc"} {
		req = httptest.NewRequest(http.MethodGet, "/whoami", nil)
		req.Header.Set("Authorization", header)
		w = httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code, header)
	}
}

func TestCorrelationMiddleware(t *testing.T) {
	router := gin.New()
	router.Use(middlewares.CorrelationMiddleware())
	router.GET("/", func(c *gin.Context) {
		id, _ := utils.GetCorrelationIdFromContext(c.Request.Context())
		c.String(http.StatusOK, id)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(middlewares.CorrelationHeader, "abc-123")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Body.String())
	assert.Equal(t, "abc-123", w.Header().Get(middlewares.CorrelationHeader))

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, w.Body.String())
}

func TestUserLoaders(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "loaders.db")), config.GormConfig())
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, models.Migrate(db))
	require.NoError(t, db.Create(&models.User{Cedula: "V1", Nombre: "A", Apellido: "B", Correo: "a@b.c", Password: "x"}).Error)
	require.NoError(t, db.Create(&models.User{Cedula: "V2", Nombre: "C", Apellido: "D", Correo: "c@d.e", Password: "x"}).Error)

	ctx := middlewares.WithLoaders(context.Background(), middlewares.NewLoaders(db))

	users, errs := middlewares.GetUsersByCedula(ctx, []string{"V2", "V9", "V1"})
	require.NoError(t, middlewares.FirstError(errs))
	require.Len(t, users, 3)
	assert.Equal(t, "V2", users[0].Cedula)
	assert.Nil(t, users[1])
	assert.Equal(t, "V1", users[2].Cedula)

	user, err := middlewares.GetUser(ctx, users[2].ID)
	require.NoError(t, err)
	assert.Equal(t, "V1", user.Cedula)

	missing, err := middlewares.GetUser(ctx, 999)
	require.NoError(t, err)
	assert.Nil(t, missing)
}
