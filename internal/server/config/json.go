package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/vaultshare/vaultshare/internal/flagx"
	"github.com/vaultshare/vaultshare/internal/timex"
)

// JsonConfig defines a configuration structure tailored for JSON unmarshalling.
// It uses timex.Duration for interval fields, which allows parsing both
// string values such as "1s" and integer nanoseconds.
//
// This struct is an intermediate DTO used only for reading JSON
// configuration files. After unmarshalling, its fields are copied into the
// runtime Config struct which uses time.Duration.
type JsonConfig struct {
	EndpointAddr                     string         `json:"endpoint_addr"`
	DatabaseDSN                      string         `json:"database_dsn"`
	SecretKey                        string         `json:"secret_key"`
	AccessTokenValidityDuration      timex.Duration `json:"access_token_validity_duration"`
	RefreshTokenValidityDuration     timex.Duration `json:"refresh_token_validity_duration"`
	ConfirmationCodeValidityDuration timex.Duration `json:"confirmation_code_validity_duration"`
	UploadURLValidityDuration        timex.Duration `json:"upload_url_validity_duration"`
	DownloadURLValidityDuration      timex.Duration `json:"download_url_validity_duration"`
	S3RootUser                       string         `json:"s3_root_user"`
	S3RootPassword                   string         `json:"s3_root_password"`
	S3Bucket                         string         `json:"s3_bucket"`
	S3Region                         string         `json:"s3_region"`
	S3BaseEndpoint                   string         `json:"s3_base_endpoint"`
	AutoDeleteExpired                bool           `json:"auto_delete_expired"`
	AutoDeleteGracePeriod            timex.Duration `json:"auto_delete_grace_period"`
	AutoDeleteInterval               timex.Duration `json:"auto_delete_interval"`
}

// parseJson loads configuration values from a JSON file into the provided
// Config instance. The file path comes from the -c or -config command-line
// flags; if neither is set, no JSON file is loaded. An unreadable or
// malformed file panics, since starting with half-applied config is worse
// than not starting.
func parseJson(config *Config) {

	// try flags
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

	err = json.Unmarshal(file, c)
	if err != nil {
		panic(err)
	}

	config.EndpointAddr = c.EndpointAddr
	config.DatabaseDSN = c.DatabaseDSN
	config.SecretKey = c.SecretKey
	config.AccessTokenValidityDuration = time.Duration(c.AccessTokenValidityDuration.Duration)
	config.RefreshTokenValidityDuration = time.Duration(c.RefreshTokenValidityDuration.Duration)
	config.ConfirmationCodeValidityDuration = time.Duration(c.ConfirmationCodeValidityDuration.Duration)
	config.UploadURLValidityDuration = time.Duration(c.UploadURLValidityDuration.Duration)
	config.DownloadURLValidityDuration = time.Duration(c.DownloadURLValidityDuration.Duration)
	config.S3RootUser = c.S3RootUser
	config.S3RootPassword = c.S3RootPassword
	config.S3Bucket = c.S3Bucket
	config.S3Region = c.S3Region
	config.S3BaseEndpoint = c.S3BaseEndpoint
	config.AutoDeleteExpired = c.AutoDeleteExpired
	config.AutoDeleteGracePeriod = time.Duration(c.AutoDeleteGracePeriod.Duration)
	config.AutoDeleteInterval = time.Duration(c.AutoDeleteInterval.Duration)
}
