package api

import (
	"context"
	"log"
	"log/slog"
	"os"
	"testing"
	"time"

	"cloud-drive/internal/auth"
	"cloud-drive/internal/config"
	"cloud-drive/internal/database"
	"cloud-drive/internal/drive/drivetest"
	"cloud-drive/internal/models"
	"cloud-drive/internal/storage"
	"cloud-drive/internal/websocket"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

const testSecret = "api_test_secret"

// testServer runs against Postgres and local disk storage; see
// api_integration_test.go.
var (
	testServer     *Server
	testStore      *database.Store
	testUser       *models.User
	testUserToken  string
	testUserClaims *auth.AppClaims
)

func TestMain(m *testing.M) {
	os.Exit(run(m))
}

func run(m *testing.M) int {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pgContainer, err := postgres.Run(ctx,
		"postgres:14-alpine",
		postgres.WithDatabase("test_api_db"),
		postgres.WithUsername("user"),
		postgres.WithPassword("password"),
		postgres.WithInitScripts("../../db/init.sql"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
		),
	)
	if err != nil {
		log.Fatalf("Could not start postgres: %s", err)
	}
	defer pgContainer.Terminate(context.Background())

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		log.Fatalf("Could not get connection string: %s", err)
	}

	testStore, err = database.Connect(ctx, connStr)
	if err != nil {
		log.Fatalf("Could not connect to database: %s", err)
	}
	defer testStore.Close()

	tempDir, err := os.MkdirTemp("", "api-storage-test")
	if err != nil {
		log.Fatalf("Could not create temp dir: %s", err)
	}
	defer os.RemoveAll(tempDir)

	cfg := testConfig()
	localStorage, err := storage.NewLocalStorage(tempDir, cfg.Storage.PublicURL, cfg.JWT.Secret)
	if err != nil {
		log.Fatalf("Could not create local storage: %s", err)
	}

	logger := slog.New(slog.DiscardHandler)
	wsHub := websocket.NewHub(logger)
	go wsHub.Run(ctx)

	testServer = NewServer(cfg, testStore, localStorage, testStore, wsHub, logger)

	hashedPassword, err := auth.HashPassword("password")
	if err != nil {
		log.Fatalf("Could not hash password: %s", err)
	}
	testUser, err = testStore.CreateUser(ctx, "api_test_user", hashedPassword, nil)
	if err != nil {
		log.Fatalf("Could not create test user: %s", err)
	}

	testUserToken, err = auth.GenerateJWT(testUser, cfg.JWT.Secret)
	if err != nil {
		log.Fatalf("Could not generate token: %s", err)
	}
	testUserClaims, err = auth.VerifyJWT(testUserToken, cfg.JWT.Secret)
	if err != nil {
		log.Fatalf("Could not verify token: %s", err)
	}

	return m.Run()
}

func testConfig() *config.Config {
	return &config.Config{
		JWT:     config.JWTConfig{Secret: testSecret},
		Storage: config.StorageConfig{PublicURL: "http://drive.test", SignedURLTTL: time.Hour},
		Export:  config.ExportConfig{Concurrency: 2, DefaultName: "TheCloud_Backup"},
		CORS:    config.CORSConfig{AllowedOrigins: []string{"http://localhost:3000"}},
	}
}

type staticUsers map[string]*models.User

func (u staticUsers) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return u[username], nil
}

// memEnv is a server over the in-memory store, for handler tests that do
// not need Postgres.
type memEnv struct {
	server *Server
	store  *drivetest.Store
	user   *models.User
	token  string
}

func newMemEnv(t *testing.T) *memEnv {
	t.Helper()
	hash, err := auth.HashPassword("secret-password")
	require.NoError(t, err)
	user := &models.User{ID: 42, Username: "mem_user", PasswordHash: hash}

	store := drivetest.NewStore()
	server := NewServer(testConfig(), store, store, staticUsers{user.Username: user}, nil, slog.New(slog.DiscardHandler))

	token, err := auth.GenerateJWT(user, testSecret)
	require.NoError(t, err)
	return &memEnv{server: server, store: store, user: user, token: token}
}
