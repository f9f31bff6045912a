package controllers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/bloodconnect/bloodconnect-server/chat"
	"github.com/bloodconnect/bloodconnect-server/config"
	"github.com/bloodconnect/bloodconnect-server/models"
	"github.com/bloodconnect/bloodconnect-server/routes"
	"github.com/bloodconnect/bloodconnect-server/utils"
)

// These are integration tests and require a running PostgreSQL instance.
// Set TEST_DATABASE_DSN in the environment before running them, e.g.
// "host=localhost user=postgres password=postgres dbname=bloodconnect_test port=5432 sslmode=disable".

func setupTestServer(t *testing.T) *gin.Engine {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_DSN")
	if dsn == "" {
		t.Skip("TEST_DATABASE_DSN not set; skipping integration test")
	}

	if os.Getenv("JWT_SECRET") == "" {
		os.Setenv("JWT_SECRET", "integration-test-secret")
	}
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("failed to connect test database: %v", err)
	}

	err = db.AutoMigrate(
		&models.User{},
		&models.Profile{},
		&models.Request{},
		&models.AcceptedDonor{},
		&models.ChatMessage{},
	)
	if err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	if err := db.Exec("TRUNCATE chat_messages, accepted_donors, requests, profiles, users RESTART IDENTITY CASCADE").Error; err != nil {
		t.Fatalf("failed to truncate tables: %v", err)
	}

	config.DB = db

	r := gin.New()
	routes.SetupRoutes(r, chat.NewHub())
	return r
}

// createUser makes an account plus an optional donor profile and
// returns the user with a valid bearer token.
func createUser(t *testing.T, username, bloodGroup string) (models.User, string) {
	t.Helper()

	hash, err := utils.HashPassword("password123")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}

	user := models.User{
		Username: username,
		Email:    username + "@example.com",
		Password: hash,
	}
	if err := config.DB.Create(&user).Error; err != nil {
		t.Fatalf("failed to create user %s: %v", username, err)
	}

	if bloodGroup != "" {
		profile := models.Profile{UserID: user.ID, BloodGroup: bloodGroup, Phone: "0000000000", Location: "Test City"}
		if err := config.DB.Create(&profile).Error; err != nil {
			t.Fatalf("failed to create profile for %s: %v", username, err)
		}
	}

	token, err := utils.GenerateToken(fmt.Sprint(user.ID))
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}
	return user, token
}

func doJSON(t *testing.T, r *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, into interface{}) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), into); err != nil {
		t.Fatalf("failed to decode response %q: %v", w.Body.String(), err)
	}
}

// createRequestFor submits a donation request and returns its short id.
func createRequestFor(t *testing.T, r *gin.Engine, token, bloodGroup, urgency string) string {
	t.Helper()

	w := doJSON(t, r, http.MethodPost, "/api/requests", token, gin.H{
		"patient_name": "Patient",
		"patient_age":  30,
		"blood_group":  bloodGroup,
		"urgency":      urgency,
		"location":     "City Hospital",
		"pincode":      "560001",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create request returned %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		ShortID string `json:"short_id"`
	}
	decodeBody(t, w, &resp)
	if resp.ShortID == "" {
		t.Fatalf("create request response has no short_id: %s", w.Body.String())
	}
	return resp.ShortID
}

// acceptRequest runs the accept flow and returns the room id on success.
func acceptRequest(t *testing.T, r *gin.Engine, token, shortID string) (string, *httptest.ResponseRecorder) {
	t.Helper()

	w := doJSON(t, r, http.MethodPost, "/api/requests/"+shortID+"/accept", token, nil)
	if w.Code != http.StatusCreated {
		return "", w
	}
	var resp struct {
		RoomID string `json:"room_id"`
	}
	decodeBody(t, w, &resp)
	return resp.RoomID, w
}
