package config

// StorageConfig holds configuration for a single storage connection.
type StorageConfig struct {
	Type            string `yaml:"type"`             // "local" or "gcs".
	BucketName      string `yaml:"bucket_name"`      // Default bucket name for operations.
	CredentialsFile string `yaml:"credentials_file"` // Service account key for GCS; empty uses application default credentials.
	BaseDir         string `yaml:"base_dir"`         // Root directory for local file system operations.
	Endpoint        string `yaml:"endpoint"`         // Optional API endpoint override (GCS emulators).
}
