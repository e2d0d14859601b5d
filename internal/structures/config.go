package structures

import "time"

type Server struct {
	Host string `yaml:"host" validate:"required"`
	Port int    `yaml:"port" validate:"required|uint|min:1"`
}

type LoggerConfig struct {
	Level string `yaml:"level" validate:"required|in:trace,debug,info,warn,error,fatal,panic"`
	Mode  uint32 `yaml:"mode" validate:"required|uint"`
	Dir   string `yaml:"dir" validate:"required|unixPath"`
}

type StorageConfig struct {
	UploadDir    string  `yaml:"uploadDir" validate:"required|unixPath"`
	FilesDir     string  `yaml:"filesDir" validate:"required|unixPath"`
	MaxDimension int     `yaml:"maxDimension" validate:"min:0"`
	Lossy        bool    `yaml:"lossy"`
	Quality      float32 `yaml:"quality"`
	MaxUploadMB  int     `yaml:"maxUploadMB" validate:"required|min:1"`
}

type DatabaseConfig struct {
	Path         string `yaml:"path" validate:"required"`
	MaxOpenConns int    `yaml:"maxOpenConns" validate:"min:0"`
}

// RetentionConfig is shared by asset expiry and the visit rolling window.
type RetentionConfig struct {
	Days int `yaml:"days" validate:"required|min:1"`
}

type NotifyConfig struct {
	Workers int           `yaml:"workers" validate:"required|min:1"`
	Timeout time.Duration `yaml:"timeout" validate:"required|min:1"`
	BaseURL string        `yaml:"baseURL" validate:"required|fullUrl"`
}

type AdminConfig struct {
	Password string `yaml:"password" validate:"required"`
}

type CacheConfig struct {
	Enabled bool          `yaml:"enabled"`
	Size    int           `yaml:"size"`
	TTL     time.Duration `yaml:"ttl"`
}

type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

type Config struct {
	AppName   string
	Debug     bool
	Path      string
	WebServer Server          `yaml:"webServer"`
	Logger    LoggerConfig    `yaml:"logger"`
	Storage   StorageConfig   `yaml:"storage"`
	Database  DatabaseConfig  `yaml:"database"`
	Retention RetentionConfig `yaml:"retention"`
	Notify    NotifyConfig    `yaml:"notify"`
	Admin     AdminConfig     `yaml:"admin"`
	Cache     CacheConfig     `yaml:"cache"`
	Metrics   MetricsConfig   `yaml:"metrics"`
}

// RetentionWindow returns the asset retention as a duration.
func (c *Config) RetentionWindow() time.Duration {
	return time.Duration(c.Retention.Days) * 24 * time.Hour
}

// MaxUploadBytes caps admin request bodies.
func (c *Config) MaxUploadBytes() int64 {
	return int64(c.Storage.MaxUploadMB) << 20
}
