package config

// StorageConfig holds configuration for a single storage connection.
type StorageConfig struct {
	Type            string `yaml:"type"`             // "local" or "gcs".
	BucketName      string `yaml:"bucket_name"`      // Default bucket when a call passes none.
	CredentialsFile string `yaml:"credentials_file"` // Service account key for GCS.
	BaseDir         string `yaml:"base_dir"`         // Root directory for local storage.
	Prefix          string `yaml:"prefix"`           // Object prefix prepended by artifact mirrors.
}
