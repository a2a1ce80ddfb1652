package config

const (
	StorageDriverSQLite = "sqlite"
	StorageDriverMemory = "memory"

	UploadBackendLocal = "local"
	UploadBackendS3    = "s3"
	UploadBackendNone  = "none"

	CompressionZstd = "zstd"
	CompressionGzip = "gzip"
	CompressionNone = "none"

	LogFormatConsole = "console"
	LogFormatJSON    = "json"
)

const (
	EnvS3AccessKeyID     = "S3_ACCESS_KEY_ID"
	EnvS3SecretAccessKey = "S3_SECRET_ACCESS_KEY"
	EnvConfigPath        = "MDWIDGET_CONFIG"
)
