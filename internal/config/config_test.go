package config

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name        string
		envVars     map[string]string
		expectError bool
		validate    func(*testing.T, *Config)
	}{
		{
			name:    "defaults",
			envVars: map[string]string{},
			validate: func(t *testing.T, cfg *Config) {
				if cfg.Port != "8981" {
					t.Errorf("Expected default Port to be '8981', got '%s'", cfg.Port)
				}
				if cfg.EdgeURL != "http://localhost:8084" {
					t.Errorf("Expected default EdgeURL, got '%s'", cfg.EdgeURL)
				}
				if cfg.EdgeTimeout != 30*time.Second {
					t.Errorf("Expected default EdgeTimeout 30s, got %s", cfg.EdgeTimeout)
				}
				if cfg.LocalReportsDir != "./reports" {
					t.Errorf("Expected default LocalReportsDir to be './reports', got '%s'", cfg.LocalReportsDir)
				}
				if cfg.MockupMode {
					t.Error("Expected default MockupMode to be false")
				}
				if cfg.DefaultLanguage != "en" {
					t.Errorf("Expected default language en, got %s", cfg.DefaultLanguage)
				}
				if cfg.DeploymentMode != "local" {
					t.Errorf("Expected local deployment mode, got %s", cfg.DeploymentMode)
				}
				if cfg.RecordInterval != time.Minute {
					t.Errorf("Expected RecordInterval 1m, got %s", cfg.RecordInterval)
				}
				if cfg.LogLevel != "info" || cfg.LogFormat != "json" {
					t.Errorf("Unexpected log defaults %s/%s", cfg.LogLevel, cfg.LogFormat)
				}
			},
		},
		{
			name: "custom configuration values",
			envVars: map[string]string{
				"PORT":              "9000",
				"EDGE_URL":          "http://edge.local",
				"EDGE_TIMEOUT":      "5s",
				"HISTORY_DB":        "/tmp/history.db",
				"MOCKUP_MODE":       "true",
				"TIMEZONE":          "Europe/Berlin",
				"DEPLOYMENT_MODE":   "gcs",
				"GCS_BUCKET":        "reports",
				"MQTT_TOPIC_PREFIX": "site1",
				"RECORD_INTERVAL":   "30s",
			},
			validate: func(t *testing.T, cfg *Config) {
				if cfg.Port != "9000" || cfg.EdgeURL != "http://edge.local" {
					t.Errorf("Unexpected server settings %s %s", cfg.Port, cfg.EdgeURL)
				}
				if cfg.EdgeTimeout != 5*time.Second || cfg.RecordInterval != 30*time.Second {
					t.Errorf("Unexpected durations %s %s", cfg.EdgeTimeout, cfg.RecordInterval)
				}
				if !cfg.MockupMode || cfg.HistoryDB != "/tmp/history.db" {
					t.Error("Expected mockup mode and history db")
				}
				if cfg.GCSBucket != "reports" || cfg.MQTTTopicPrefix != "site1" {
					t.Error("Unexpected storage or mqtt settings")
				}
				loc, err := cfg.Location()
				if err != nil || loc.String() != "Europe/Berlin" {
					t.Errorf("Unexpected location %v (%v)", loc, err)
				}
			},
		},
		{
			name:        "invalid timezone",
			envVars:     map[string]string{"TIMEZONE": "Mars/Olympus"},
			expectError: true,
		},
		{
			name:        "invalid deployment mode",
			envVars:     map[string]string{"DEPLOYMENT_MODE": "s3"},
			expectError: true,
		},
		{
			name:        "invalid duration",
			envVars:     map[string]string{"EDGE_TIMEOUT": "soon"},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.envVars {
				t.Setenv(k, v)
			}

			cfg, err := Load(context.Background())
			if tt.expectError {
				if err == nil {
					t.Error("Expected error but got none")
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if tt.validate != nil {
				tt.validate(t, cfg)
			}
		})
	}
}

func TestLoadEdgeConfig(t *testing.T) {
	cfg := &Config{}
	edge, err := cfg.LoadEdgeConfig()
	if err != nil {
		t.Fatal(err)
	}
	if edge.GridMeters[0] != "meter0" || edge.ProductionMeters[0] != "meter1" || edge.Storage[0] != "ess0" {
		t.Errorf("Expected default roles, got %+v", edge)
	}

	path := filepath.Join(t.TempDir(), "edge.yaml")
	content := `storage: [ess0, ess1]
grid_meters: [meter0]
production_meters: [meter1, meter2]
asymmetric_meters: [meter2]
chargers: [charger0]
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	cfg.EdgeConfigFile = path
	edge, err = cfg.LoadEdgeConfig()
	if err != nil {
		t.Fatalf("LoadEdgeConfig failed: %v", err)
	}
	if len(edge.Storage) != 2 || len(edge.ProductionMeters) != 2 || edge.Chargers[0] != "charger0" {
		t.Errorf("Unexpected roles %+v", edge)
	}
	if !edge.IsAsymmetric("meter2") {
		t.Error("meter2 should be asymmetric")
	}
}

func TestLoadEdgeConfigErrors(t *testing.T) {
	dir := t.TempDir()
	empty := filepath.Join(dir, "empty.yaml")
	os.WriteFile(empty, []byte("{}\n"), 0644)
	broken := filepath.Join(dir, "broken.yaml")
	os.WriteFile(broken, []byte("storage: [\n"), 0644)

	for _, path := range []string{empty, broken, filepath.Join(dir, "missing.yaml")} {
		if _, err := LoadEdgeConfigFile(path); err == nil {
			t.Errorf("Expected error for %s", path)
		}
	}
}

func TestGetVersion(t *testing.T) {
	t.Setenv("APP_VERSION", "1.2.3")
	if v := GetVersion(); v != "1.2.3" {
		t.Errorf("Expected 1.2.3, got %s", v)
	}

	t.Setenv("APP_VERSION", "")
	if v := GetVersion(); v == "" || strings.TrimSpace(v) != v {
		t.Errorf("Unexpected version %s", v)
	}
}

func TestReadVersionFile(t *testing.T) {
	dir := t.TempDir()
	if v := readVersionFile(dir); v != DefaultVersion {
		t.Errorf("Expected default version, got %s", v)
	}
	os.WriteFile(filepath.Join(dir, "VERSION"), []byte("2.4.0\n"), 0644)
	if v := readVersionFile(filepath.Join(dir, "missing"), dir); v != "2.4.0" {
		t.Errorf("Expected 2.4.0, got %s", v)
	}
}
