package models

// MConfig Structure
type MConfig struct {
	Name       string           `yaml:"name" toml:"name"`
	Host       string           `yaml:"host" toml:"host"`
	Port       int              `yaml:"port" toml:"port"`
	LogLevel   string           `yaml:"log_level" toml:"log_level"`
	GrpcHost   string           `yaml:"grpc_host" toml:"grpc_host"`
	GrpcPort   int              `yaml:"grpc_port" toml:"grpc_port"`
	Timezone   string           `yaml:"timezone" toml:"timezone"`
	DefaultVat *int             `yaml:"default_vat" toml:"default_vat"` // 24, 10 or 0
	Storage    MStorageConfig   `yaml:"storage" toml:"storage"`
	Network    MNetworkConfig   `yaml:"network" toml:"network"`
	Scheduler  MSchedulerConfig `yaml:"scheduler" toml:"scheduler"`
	Sources    []MSourceConfig  `yaml:"sources" toml:"sources"`
}

type MStorageConfig struct {
	DBType             string `yaml:"db_type" toml:"db_type"` // sqlite, postgres or none
	DBPath             string `yaml:"db_path" toml:"db_path"`
	DBConnectionString string `yaml:"db_connection_string" toml:"db_connection_string"`
	DataRetentionDays  *int   `yaml:"data_retention_days" toml:"data_retention_days"`
}

// RetentionDays returns the configured retention, 0 when unset.
func (s MStorageConfig) RetentionDays() int {
	if s.DataRetentionDays == nil {
		return 0
	}
	return *s.DataRetentionDays
}

type MNetworkConfig struct {
	Proxies        []string `yaml:"proxies" toml:"proxies"`
	RequestTimeout int      `yaml:"timeout" toml:"timeout"` // seconds
	MaxRetries     int      `yaml:"retries" toml:"retries"` // in-request retries; 0 leaves retrying to the refresh cadence
	UserAgent      string   `yaml:"user_agent" toml:"user_agent"`
}

type MSchedulerConfig struct {
	Workers int `yaml:"workers" toml:"workers"`
}

type MSourceConfig struct {
	ID              string `yaml:"id" toml:"id"`
	URL             string `yaml:"url" toml:"url"`
	APIKey          string `yaml:"api_key" toml:"api_key"` // Optional
	IntervalMinutes int    `yaml:"interval_minutes" toml:"interval_minutes"`
	Downsample      int    `yaml:"downsample" toml:"downsample"` // grid production only
}
