package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/seqshare/seqshare/internal/flagx"
	"github.com/seqshare/seqshare/internal/timex"
)

// JsonConfig defines a configuration structure tailored for JSON
// unmarshalling. It uses timex.Duration for interval fields, which allows
// parsing both string values such as "15m" and integer nanoseconds.
//
// This struct is an intermediate DTO used only for reading JSON
// configuration files. After unmarshalling, its fields are copied into the
// runtime Config struct which uses time.Duration.
type JsonConfig struct {
	DatabaseDSN string `json:"database_dsn"`

	S3Region       string `json:"s3_region"`
	S3AccessKey    string `json:"s3_access_key"`
	S3SecretKey    string `json:"s3_secret_key"`
	S3BaseEndpoint string `json:"s3_base_endpoint"`

	GSAccessKey string `json:"gs_access_key"`
	GSSecretKey string `json:"gs_secret_key"`

	R2AccountID string `json:"r2_account_id"`
	R2AccessKey string `json:"r2_access_key"`
	R2SecretKey string `json:"r2_secret_key"`

	PresignExpiry timex.Duration `json:"presign_expiry"`

	TemplateBucket   string `json:"template_bucket"`
	InstallAccountID string `json:"install_account_id"`

	HtsgetBaseURL     string `json:"htsget_base_url"`
	HtsgetRegionsFile string `json:"htsget_regions_file"`

	MaxObjectsPerAccessPointGroup int `json:"max_objects_per_access_point_group"`
	MaxGroupsPerStack             int `json:"max_groups_per_stack"`
}

// parseJson loads configuration values from a JSON file into the provided
// Config instance. The file path comes from the -c or -config command-line
// flags; if neither is set, no JSON file is loaded. Zero values in the file
// leave the corresponding Config fields untouched, so the file only needs
// the keys it wants to override.
func parseJson(config *Config) {

	jsonConfigFile := flagx.JsonConfigFlags()

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	setString := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}

	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3AccessKey, c.S3AccessKey)
	setString(&config.S3SecretKey, c.S3SecretKey)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	setString(&config.GSAccessKey, c.GSAccessKey)
	setString(&config.GSSecretKey, c.GSSecretKey)
	setString(&config.R2AccountID, c.R2AccountID)
	setString(&config.R2AccessKey, c.R2AccessKey)
	setString(&config.R2SecretKey, c.R2SecretKey)
	setString(&config.TemplateBucket, c.TemplateBucket)
	setString(&config.InstallAccountID, c.InstallAccountID)
	setString(&config.HtsgetBaseURL, c.HtsgetBaseURL)
	setString(&config.HtsgetRegionsFile, c.HtsgetRegionsFile)

	if c.PresignExpiry.Duration != 0 {
		config.PresignExpiry = time.Duration(c.PresignExpiry.Duration)
	}
	if c.MaxObjectsPerAccessPointGroup != 0 {
		config.MaxObjectsPerAccessPointGroup = c.MaxObjectsPerAccessPointGroup
	}
	if c.MaxGroupsPerStack != 0 {
		config.MaxGroupsPerStack = c.MaxGroupsPerStack
	}
}
