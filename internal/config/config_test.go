package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const fullYAML = `
server:
  port: 9090
  cors_origins: ["https://ops.example.com"]

database:
  driver: postgres
  host: db.internal
  user: pm
  password: hunter2
  name: processmap

auth:
  jwt_secret: s3cret
  token_ttl: 12h

log:
  mode: prod

digest:
  schedule: "30 8 * * 1"
  slack_webhook_url: https://hooks.slack.com/services/T000/B000/XXX

users:
  - email: ana@example.com
    name: Ana
    role: admin
  - email: ben@example.com
    name: Ben
    role: MANAGER
  - email: cy@example.com
    name: Cy

sections:
  - name: Lead Generation
    order: 0
    color: "#3b82f6"
  - name: Sales
    order: 1
    description: Qualification through close
`

const minimalYAML = `
users:
  - email: solo@example.com
    role: ADMIN
`

func TestParse_FullConfig(t *testing.T) {
	t.Setenv(JWTSecretEnv, "")
	cfg, err := Parse([]byte(fullYAML))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d, want 9090", cfg.Server.Port)
	}
	if len(cfg.Server.CORSOrigins) != 1 || cfg.Server.CORSOrigins[0] != "https://ops.example.com" {
		t.Errorf("Server.CORSOrigins = %v", cfg.Server.CORSOrigins)
	}
	if cfg.Database.Driver != "postgres" {
		t.Errorf("Database.Driver = %q, want postgres", cfg.Database.Driver)
	}
	if cfg.Database.Port != 5432 {
		t.Errorf("Database.Port = %d, want 5432 (postgres default)", cfg.Database.Port)
	}
	if cfg.Database.SSLMode != "disable" {
		t.Errorf("Database.SSLMode = %q, want disable", cfg.Database.SSLMode)
	}
	if cfg.Auth.JWTSecret != "s3cret" {
		t.Errorf("Auth.JWTSecret = %q, want s3cret", cfg.Auth.JWTSecret)
	}
	if cfg.Auth.TokenTTL != 12*time.Hour {
		t.Errorf("Auth.TokenTTL = %v, want 12h", cfg.Auth.TokenTTL)
	}
	if cfg.Log.Mode != "prod" {
		t.Errorf("Log.Mode = %q, want prod", cfg.Log.Mode)
	}
	if cfg.Digest.Schedule != "30 8 * * 1" {
		t.Errorf("Digest.Schedule = %q", cfg.Digest.Schedule)
	}
	if len(cfg.Users) != 3 {
		t.Fatalf("len(Users) = %d, want 3", len(cfg.Users))
	}
	if cfg.Users[0].Role != "ADMIN" {
		t.Errorf("Users[0].Role = %q, want ADMIN (upper-cased)", cfg.Users[0].Role)
	}
	if cfg.Users[2].Role != "VIEWER" {
		t.Errorf("Users[2].Role = %q, want VIEWER (default)", cfg.Users[2].Role)
	}
	if len(cfg.Sections) != 2 {
		t.Fatalf("len(Sections) = %d, want 2", len(cfg.Sections))
	}
	if cfg.Sections[1].Description != "Qualification through close" {
		t.Errorf("Sections[1].Description = %q", cfg.Sections[1].Description)
	}
}

func TestParse_MinimalConfig_AppliesDefaults(t *testing.T) {
	t.Setenv(JWTSecretEnv, "")
	cfg, err := Parse([]byte(minimalYAML))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want 8080 (default)", cfg.Server.Port)
	}
	if cfg.Database.Driver != "sqlite" {
		t.Errorf("Database.Driver = %q, want sqlite (default)", cfg.Database.Driver)
	}
	if cfg.Database.Path != "processmap.db" {
		t.Errorf("Database.Path = %q, want processmap.db", cfg.Database.Path)
	}
	if cfg.Database.Host != "" {
		t.Errorf("Database.Host = %q, want empty for sqlite", cfg.Database.Host)
	}
	if cfg.Auth.TokenTTL != 24*time.Hour {
		t.Errorf("Auth.TokenTTL = %v, want 24h", cfg.Auth.TokenTTL)
	}
	if cfg.Log.Mode != "dev" {
		t.Errorf("Log.Mode = %q, want dev", cfg.Log.Mode)
	}
	if cfg.Digest.Schedule != "0 9 * * 1-5" {
		t.Errorf("Digest.Schedule = %q, want weekday 09:00", cfg.Digest.Schedule)
	}
}

func TestParse_MySQLDefaults(t *testing.T) {
	cfg, err := Parse([]byte("database:\n  driver: MySQL\n  name: pm\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Database.Driver != "mysql" {
		t.Errorf("Driver = %q, want lower-cased mysql", cfg.Database.Driver)
	}
	if cfg.Database.Port != 3306 {
		t.Errorf("Port = %d, want 3306", cfg.Database.Port)
	}
	if cfg.Database.Host != "127.0.0.1" {
		t.Errorf("Host = %q, want 127.0.0.1", cfg.Database.Host)
	}
}

func TestParse_JWTSecretFromEnv(t *testing.T) {
	t.Setenv(JWTSecretEnv, "from-env")
	cfg, err := Parse([]byte(minimalYAML))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Auth.JWTSecret != "from-env" {
		t.Errorf("JWTSecret = %q, want from-env", cfg.Auth.JWTSecret)
	}
}

func TestParse_ValidationErrors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{
			name: "unknown driver",
			yaml: "database:\n  driver: oracle\n",
			want: `database.driver "oracle" is not one of sqlite, mysql, postgres`,
		},
		{
			name: "postgres without name",
			yaml: "database:\n  driver: postgres\n",
			want: "database.name is required for postgres",
		},
		{
			name: "user missing email",
			yaml: "users:\n  - name: Nobody\n",
			want: "users[0].email is required",
		},
		{
			name: "bad role",
			yaml: "users:\n  - email: a@example.com\n    role: owner\n",
			want: `users[0].role "OWNER" is not one of ADMIN, MANAGER, VIEWER`,
		},
		{
			name: "duplicate email",
			yaml: "users:\n  - email: a@example.com\n  - email: A@example.com\n",
			want: `users[1].email "A@example.com" is duplicated`,
		},
		{
			name: "section missing name",
			yaml: "sections:\n  - order: 0\n",
			want: "sections[0].name is required",
		},
		{
			name: "duplicate section order",
			yaml: "sections:\n  - name: A\n    order: 1\n  - name: B\n    order: 1\n",
			want: "sections[1].order 1 is duplicated",
		},
		{
			name: "negative section order",
			yaml: "sections:\n  - name: A\n    order: -1\n",
			want: "sections[0].order must be non-negative",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), "config: validation failed") {
				t.Errorf("error = %q, want validation prefix", err.Error())
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %q, want to contain %q", err.Error(), tt.want)
			}
		})
	}
}

func TestParse_MultipleValidationErrors(t *testing.T) {
	_, err := Parse([]byte("database:\n  driver: oracle\nusers:\n  - name: x\n"))
	if err == nil {
		t.Fatal("expected error")
	}
	if strings.Count(err.Error(), ";") != 1 {
		t.Errorf("expected two errors joined by '; ', got: %s", err.Error())
	}
}

func TestParse_InvalidYAML(t *testing.T) {
	_, err := Parse([]byte("server: [unclosed"))
	if err == nil {
		t.Fatal("expected error for invalid YAML")
	}
	if !strings.Contains(err.Error(), "config: parse:") {
		t.Errorf("error = %q, want to contain %q", err.Error(), "config: parse:")
	}
}

func TestLoad_ValidFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "processmap.yaml")
	if err := os.WriteFile(path, []byte(minimalYAML), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Users[0].Email != "solo@example.com" {
		t.Errorf("Users[0].Email = %q", cfg.Users[0].Email)
	}
}

func TestLoad_FileNotFound(t *testing.T) {
	_, err := Load("/nonexistent/processmap.yaml")
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	if !strings.Contains(err.Error(), "config: read") {
		t.Errorf("error = %q, want to contain %q", err.Error(), "config: read")
	}
}

func TestFirstAdmin(t *testing.T) {
	cfg, err := Parse([]byte(fullYAML))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := cfg.FirstAdmin(); got != "ana@example.com" {
		t.Errorf("FirstAdmin() = %q, want ana@example.com", got)
	}
	if got := (&Config{}).FirstAdmin(); got != "" {
		t.Errorf("FirstAdmin() on empty config = %q, want empty", got)
	}
}
