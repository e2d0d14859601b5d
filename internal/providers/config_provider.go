package providers

import (
	"fmt"
	"path/filepath"
	"strings"
	"wxhm/internal/structures"

	"github.com/spf13/viper"
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("webServer.host", "0.0.0.0")
	v.SetDefault("webServer.port", 8092)
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.mode", 0644)
	v.SetDefault("logger.dir", "logs")
	v.SetDefault("storage.uploadDir", "uploads")
	v.SetDefault("storage.filesDir", "uploads/files")
	v.SetDefault("storage.maxDimension", 1024)
	v.SetDefault("storage.quality", 90)
	v.SetDefault("storage.maxUploadMB", 10)
	v.SetDefault("database.path", "wxhm.db")
	v.SetDefault("database.maxOpenConns", 4)
	v.SetDefault("retention.days", 7)
	v.SetDefault("notify.workers", 2)
	v.SetDefault("notify.timeout", "10s")
	v.SetDefault("notify.baseURL", "https://api.weixin.qq.com")
	v.SetDefault("cache.size", 16)
	v.SetDefault("cache.ttl", "30s")
}

func NewConfigProvider(flags *structures.CliFlags) (*structures.Config, error) {
	var conf structures.Config

	v := viper.New()
	setDefaults(v)

	filename := filepath.Base(flags.ConfigPath)
	v.AddConfigPath(filepath.Dir(flags.ConfigPath))
	v.SetConfigName(strings.TrimSuffix(filename, filepath.Ext(filename)))
	v.SetConfigType("yaml")

	_ = v.BindEnv("logger.level", "WXHM_LOG_LEVEL")
	_ = v.BindEnv("admin.password", "WXHM_ADMIN_PASSWORD")
	_ = v.BindEnv("storage.uploadDir", "WXHM_UPLOAD_DIR")
	_ = v.BindEnv("database.path", "WXHM_DB_PATH")
	_ = v.BindEnv("retention.days", "WXHM_RETENTION_DAYS")

	err := v.ReadInConfig()
	if err != nil {
		return nil, err
	}

	err = v.Unmarshal(&conf)
	if err != nil {
		return nil, fmt.Errorf("unable to decode into config struct: %w", err)
	}

	cnfValidator := NewCnfValidator(&conf)
	err = cnfValidator.Validate()
	if err != nil {
		return nil, err
	}

	conf.AppName = "wxHm"
	conf.Path = flags.ConfigPath
	conf.Debug = flags.DebugMode

	return &conf, nil
}
