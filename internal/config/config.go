package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-yaml/yaml"
)

type Config struct {
	Site   Site   `yaml:"site"`
	Admin  Admin  `yaml:"admin"`
	Server Server `yaml:"server"`
}

type Site struct {
	URL               string `yaml:"url"`
	RevalidateURL     string `yaml:"revalidateUrl"`
	RevalidateSecret  string `yaml:"revalidateSecret"`
	Timezone          string `yaml:"timezone"`
	ContactRateLimit  int    `yaml:"contactRateLimit"`  // submissions per window per ip
	ContactRateWindow int    `yaml:"contactRateWindow"` // seconds
}

type Admin struct {
	Email           string `yaml:"email"`
	PasswordHash    string `yaml:"passwordHash"` // bcrypt
	SessionSecret   string `yaml:"sessionSecret"`
	SessionTTLHours int    `yaml:"sessionTTLHours"`
}

type Server struct {
	Listen        string `yaml:"listen"`
	PostgresDsn   string `yaml:"postgresDsn"`
	RedisAddr     string `yaml:"redisAddr"`
	RedisPassword string `yaml:"redisPassword"`
	RedisDB       int    `yaml:"redisDB"`
	MemcachedAddr string `yaml:"memcachedAddr"`
	EnableTrace   bool   `yaml:"enableTrace"`
	TraceEndpoint string `yaml:"traceEndpoint"`
}

func Load(path string) (Config, error) {

	file, err := os.Open(path)
	if err != nil {
		return Config{}, err
	}
	defer file.Close()

	var config Config
	err = yaml.NewDecoder(file).Decode(&config)
	if err != nil {
		return Config{}, err
	}

	if config.Admin.Email == "" || config.Admin.PasswordHash == "" {
		return Config{}, fmt.Errorf("admin email and passwordHash must be configured")
	}
	if config.Admin.SessionSecret == "" {
		return Config{}, fmt.Errorf("admin sessionSecret must be configured")
	}

	if config.Server.Listen == "" {
		config.Server.Listen = ":8000"
	}
	if config.Admin.SessionTTLHours <= 0 {
		config.Admin.SessionTTLHours = 24
	}
	if config.Site.ContactRateLimit <= 0 {
		config.Site.ContactRateLimit = 5
	}
	if config.Site.ContactRateWindow <= 0 {
		config.Site.ContactRateWindow = 60
	}
	if config.Site.Timezone == "" {
		config.Site.Timezone = "Local"
	}

	return config, nil
}

// Location resolves the configured timezone.
func (c Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.Site.Timezone)
}
