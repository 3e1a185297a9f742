package app

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/yungbote/batchcatalog-backend/internal/platform/playback"
	"github.com/yungbote/batchcatalog-backend/internal/services"
)

func writeYAML(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write yaml: %v", err)
	}
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv(ConfigFileEnv, "")
	t.Setenv("DB_DRIVER", "")
	t.Setenv("PORT", "")
	t.Setenv("SESSION_IDLE_TTL_MINUTES", "")
	cfg, err := LoadConfig(nil)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Port != "8080" {
		t.Fatalf("Port: want=8080 got=%s", cfg.Port)
	}
	if cfg.DB.Driver != "postgres" {
		t.Fatalf("DB.Driver: want=postgres got=%s", cfg.DB.Driver)
	}
	if cfg.LivePrefix != playback.DefaultLivePrefix {
		t.Fatalf("LivePrefix: want=%s got=%s", playback.DefaultLivePrefix, cfg.LivePrefix)
	}
	if cfg.uploadMaxMemory() != 32<<20 {
		t.Fatalf("uploadMaxMemory: want=%d got=%d", 32<<20, cfg.uploadMaxMemory())
	}
	if cfg.sessionIdleTTL() != services.DefaultSessionIdleTTL {
		t.Fatalf("sessionIdleTTL: want=%v got=%v", services.DefaultSessionIdleTTL, cfg.sessionIdleTTL())
	}
}

func TestLoadConfigEnvOverridesYAML(t *testing.T) {
	path := writeYAML(t, `
port: "9090"
db:
  driver: sqlite
  sqlite_path: /tmp/from-yaml.db
redis_channel: yaml-channel
ingest_file_concurrency: 2
cors_origins: [https://a.example]
`)
	t.Setenv(ConfigFileEnv, path)
	t.Setenv("PORT", "")
	t.Setenv("DB_DRIVER", "")
	t.Setenv("SQLITE_PATH", "/tmp/from-env.db")
	t.Setenv("REDIS_CHANNEL", "")
	t.Setenv("INGEST_FILE_CONCURRENCY", "")
	t.Setenv("CORS_ORIGINS", "https://b.example, https://c.example")

	cfg, err := LoadConfig(nil)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Port != "9090" {
		t.Fatalf("Port: want=9090 got=%s", cfg.Port)
	}
	if cfg.DB.Driver != "sqlite" {
		t.Fatalf("DB.Driver: want=sqlite got=%s", cfg.DB.Driver)
	}
	if cfg.DB.SQLitePath != "/tmp/from-env.db" {
		t.Fatalf("SQLitePath: want=/tmp/from-env.db got=%s", cfg.DB.SQLitePath)
	}
	if cfg.RedisChannel != "yaml-channel" {
		t.Fatalf("RedisChannel: want=yaml-channel got=%s", cfg.RedisChannel)
	}
	if cfg.IngestConcurrency != 2 {
		t.Fatalf("IngestConcurrency: want=2 got=%d", cfg.IngestConcurrency)
	}
	want := []string{"https://b.example", "https://c.example"}
	if !reflect.DeepEqual(cfg.CORSOrigins, want) {
		t.Fatalf("CORSOrigins: want=%v got=%v", want, cfg.CORSOrigins)
	}
	if cfg.DB.Name != "batchcatalog" {
		t.Fatalf("DB.Name default kept: want=batchcatalog got=%s", cfg.DB.Name)
	}
}

func TestLoadConfigRejectsInvalid(t *testing.T) {
	t.Setenv(ConfigFileEnv, "")
	t.Setenv("DB_DRIVER", "mysql")
	if _, err := LoadConfig(nil); err == nil {
		t.Fatalf("LoadConfig(mysql): want error")
	}

	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("INGEST_FILE_CONCURRENCY", "0")
	if _, err := LoadConfig(nil); err == nil {
		t.Fatalf("LoadConfig(concurrency=0): want error")
	}

	t.Setenv("INGEST_FILE_CONCURRENCY", "")
	t.Setenv("SESSION_IDLE_TTL_MINUTES", "-5")
	if _, err := LoadConfig(nil); err == nil {
		t.Fatalf("LoadConfig(session ttl=-5): want error")
	}

	t.Setenv("SESSION_IDLE_TTL_MINUTES", "")
	t.Setenv(ConfigFileEnv, filepath.Join(t.TempDir(), "missing.yaml"))
	if _, err := LoadConfig(nil); err == nil {
		t.Fatalf("LoadConfig(missing file): want error")
	}
}
