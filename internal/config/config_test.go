package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	os.Clearenv()
	os.Setenv("SQLITE_PATH", "/tmp/eventease-test.db")
	defer os.Clearenv()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() = %v, want nil", err)
	}

	tests := []struct {
		name     string
		actual   interface{}
		expected interface{}
	}{
		{"APIBaseURL", cfg.Client.APIBaseURL, defaultAPIBaseURL},
		{"Driver", cfg.Storage.Driver, DriverSQLite},
		{"TempLockoutThreshold", cfg.Login.TempLockoutThreshold, 3},
		{"PermLockoutThreshold", cfg.Login.PermLockoutThreshold, 6},
		{"LockoutDuration", cfg.Login.LockoutDuration, 5 * time.Minute},
		{"ReceiptMaxBytes", cfg.Receipts.MaxBytes, int64(20 * 1024 * 1024)},
		{"UploadEnabled", cfg.Receipts.UploadEnabled, true},
		{"PreviewURLTTL", cfg.Preview.URLTTL, 2 * time.Minute},
	}

	for _, tt := range tests {
		if tt.actual != tt.expected {
			t.Errorf("%s: got %v, want %v", tt.name, tt.actual, tt.expected)
		}
	}
}

func TestLoad_TrimsTrailingSlashFromBaseURL(t *testing.T) {
	os.Clearenv()
	os.Setenv("SQLITE_PATH", "/tmp/eventease-test.db")
	os.Setenv("EVENTEASE_API_BASE_URL", "http://localhost:5000/")
	defer os.Clearenv()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() = %v, want nil", err)
	}

	if cfg.Client.APIBaseURL != "http://localhost:5000" {
		t.Errorf("APIBaseURL: got %q, want %q", cfg.Client.APIBaseURL, "http://localhost:5000")
	}
}

func TestLoad_InvalidDurationFallsBack(t *testing.T) {
	os.Clearenv()
	os.Setenv("SQLITE_PATH", "/tmp/eventease-test.db")
	os.Setenv("LOGIN_LOCKOUT_DURATION", "not-a-duration")
	defer os.Clearenv()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() = %v, want nil", err)
	}

	if cfg.Login.LockoutDuration != 5*time.Minute {
		t.Errorf("LockoutDuration with invalid value: got %v, want %v", cfg.Login.LockoutDuration, 5*time.Minute)
	}
}

func TestLoad_RejectsThresholdOrdering(t *testing.T) {
	os.Clearenv()
	os.Setenv("SQLITE_PATH", "/tmp/eventease-test.db")
	os.Setenv("LOGIN_TEMP_LOCKOUT_THRESHOLD", "5")
	os.Setenv("LOGIN_PERM_LOCKOUT_THRESHOLD", "5")
	defer os.Clearenv()

	if _, err := Load(); err == nil {
		t.Fatal("Load() = nil, want error for perm threshold <= temp threshold")
	}
}

func TestLoad_PostgresRequiresPassword(t *testing.T) {
	os.Clearenv()
	os.Setenv("STORAGE_DRIVER", "postgres")
	defer os.Clearenv()

	if _, err := Load(); err == nil {
		t.Fatal("Load() = nil, want error for missing DB_PASSWORD")
	}

	os.Setenv("DB_PASSWORD", "secret")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() = %v, want nil", err)
	}
	if cfg.Storage.Driver != DriverPostgres {
		t.Errorf("Driver: got %q, want %q", cfg.Storage.Driver, DriverPostgres)
	}
}

func TestLoad_UnknownDriver(t *testing.T) {
	os.Clearenv()
	os.Setenv("STORAGE_DRIVER", "indexeddb")
	defer os.Clearenv()

	if _, err := Load(); err == nil {
		t.Fatal("Load() = nil, want error for unknown driver")
	}
}

func TestDatabaseConfig_DSN(t *testing.T) {
	c := DatabaseConfig{Host: "db", Port: 5433, User: "u", Password: "p", Name: "n", SSLMode: "disable"}
	want := "host=db port=5433 user=u password=p dbname=n sslmode=disable"
	if got := c.DSN(); got != want {
		t.Errorf("DSN() = %q, want %q", got, want)
	}
}
