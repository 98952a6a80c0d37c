package product

import (
	"context"
	"io"
	"os"
	"testing"

	"github.com/habitatline/habitat-backend/pkg/config"
	"github.com/habitatline/habitat-backend/pkg/db"
	"github.com/habitatline/habitat-backend/pkg/logger"
)

func openTestClient(t *testing.T) *db.Client {
	t.Helper()

	dsn := os.Getenv("HABITAT_TEST_DB_DSN")
	if dsn == "" {
		t.Skip("HABITAT_TEST_DB_DSN is not set")
	}

	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	client, err := db.New(context.Background(), config.DBConfig{DSN: dsn}, false, logg)
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })
	return client
}
