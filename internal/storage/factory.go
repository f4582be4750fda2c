package storage

import (
	"context"
	"fmt"
	"strings"

	"energychart/internal/config"
	"energychart/internal/logger"
)

// DeploymentMode selects where rendered energy reports are kept
type DeploymentMode string

const (
	DeploymentLocal DeploymentMode = "local"
	DeploymentGCS   DeploymentMode = "gcs"
)

// ParseDeploymentMode accepts the DEPLOYMENT_MODE values, ignoring case and
// surrounding blanks
func ParseDeploymentMode(s string) (DeploymentMode, error) {
	switch mode := DeploymentMode(strings.ToLower(strings.TrimSpace(s))); mode {
	case DeploymentLocal, DeploymentGCS:
		return mode, nil
	default:
		return "", fmt.Errorf("unsupported deployment mode %q", s)
	}
}

// ReportStorageOptions is the part of the service configuration the report
// store depends on
type ReportStorageOptions struct {
	Mode       DeploymentMode
	ReportsDir string
	Bucket     string
	ProjectID  string
}

// ReportStorageOptionsFromConfig extracts the report store settings of cfg
func ReportStorageOptionsFromConfig(cfg *config.Config) (ReportStorageOptions, error) {
	mode, err := ParseDeploymentMode(cfg.DeploymentMode)
	if err != nil {
		return ReportStorageOptions{}, err
	}
	return ReportStorageOptions{
		Mode:       mode,
		ReportsDir: cfg.LocalReportsDir,
		Bucket:     cfg.GCSBucket,
		ProjectID:  cfg.GCPProjectID,
	}, nil
}

// Validate checks that the selected backend has what it needs
func (o ReportStorageOptions) Validate() error {
	switch o.Mode {
	case DeploymentLocal:
		if strings.TrimSpace(o.ReportsDir) == "" {
			return fmt.Errorf("LOCAL_REPORTS_DIR is required in local deployment mode")
		}
	case DeploymentGCS:
		if strings.TrimSpace(o.Bucket) == "" {
			return fmt.Errorf("GCS_BUCKET is required in gcs deployment mode")
		}
	default:
		return fmt.Errorf("unsupported deployment mode %q", o.Mode)
	}
	return nil
}

// NewReportStorage opens the store that archives chart exports and reports
func NewReportStorage(ctx context.Context, cfg *config.Config) (StorageClient, error) {
	opts, err := ReportStorageOptionsFromConfig(cfg)
	if err != nil {
		return nil, err
	}
	return OpenReportStorage(ctx, opts)
}

// OpenReportStorage opens the backend selected by opts
func OpenReportStorage(ctx context.Context, opts ReportStorageOptions) (StorageClient, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	log := logger.Component("storage")

	if opts.Mode == DeploymentGCS {
		client, err := NewGCSClient(ctx, opts.Bucket, opts.ProjectID)
		if err != nil {
			return nil, fmt.Errorf("failed to open report bucket: %w", err)
		}
		log.Info("Storing reports in GCS", map[string]interface{}{
			"bucket":  opts.Bucket,
			"project": opts.ProjectID,
		})
		return client, nil
	}

	client, err := NewLocalStorageClient(opts.ReportsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to open reports directory: %w", err)
	}
	log.Info("Storing reports locally", map[string]interface{}{"dir": client.BaseDir()})
	return client, nil
}
