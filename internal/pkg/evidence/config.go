package evidence

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/medihub/medihub/internal/pkg/env"
)

// Config holds object storage settings for report evidence
type Config struct {
	AccessKeyID     string
	SecretAccessKey string
	Region          string
	BucketName      string
	EndpointURL     string // Optional for S3-compatible services
	Enabled         bool
}

// LoadConfig loads S3 configuration from environment variables
func LoadConfig() (*Config, error) {
	config := &Config{
		AccessKeyID:     env.GetEnv("S3_ACCESS_KEY_ID", ""),
		SecretAccessKey: env.GetEnv("S3_SECRET_ACCESS_KEY", ""),
		Region:          env.GetEnv("S3_REGION", "ap-northeast-2"),
		BucketName:      env.GetEnv("S3_BUCKET_NAME", ""),
		EndpointURL:     env.GetEnv("S3_ENDPOINT_URL", ""),
		Enabled:         env.GetEnvBool("S3_EVIDENCE_ENABLED", false),
	}

	// Validate required fields if evidence storage is enabled
	if config.Enabled {
		if config.AccessKeyID == "" {
			return nil, errors.New("S3_ACCESS_KEY_ID is required when evidence storage is enabled")
		}
		if config.SecretAccessKey == "" {
			return nil, errors.New("S3_SECRET_ACCESS_KEY is required when evidence storage is enabled")
		}
		if config.BucketName == "" {
			return nil, errors.New("S3_BUCKET_NAME is required when evidence storage is enabled")
		}
	}

	return config, nil
}

// IsEnabled returns true if evidence storage is enabled
func (c *Config) IsEnabled() bool {
	return c.Enabled
}

// ObjectKey generates the storage key for a report attachment
func ObjectKey(reportID uint, fileName string) string {
	// Format: evidence/{reportID}/{uuid}.ext
	ext := strings.ToLower(filepath.Ext(fileName))
	if len(ext) > 10 {
		ext = ""
	}
	return fmt.Sprintf("evidence/%d/%s%s", reportID, uuid.NewString(), ext)
}
