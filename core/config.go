package core

import (
	"log"
	"net/mail"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Debug    bool
	TestMode bool
	Env      string // DEV (default), TEST, QA, PROD
	Build    string
	AppName  string

	SecretKey        string
	DefaultFromEmail mail.Address

	// SeedURL points at the static seed document; either an http(s) URL
	// or a path on disk.
	SeedURL string

	// AnnouncementEmails receive a copy of every posted announcement.
	AnnouncementEmails []string

	Storage struct {
		Backend string // file | inmem | redis | postgres
		Key     string // namespaced document key, also the persisted filename
		Dir     string // file backend only
	}

	Redis struct {
		Addr     string
		Password string
		DB       int
	}

	Database struct {
		Host       string
		Port       string
		Name       string
		User       string
		Password   string
		DisableTLS bool
	}

	Server struct {
		Host               string
		DebugHost          string
		ShutdownTimeout    time.Duration
		JWTExpirationDelta time.Duration
	}

	RollbarToken string
	SendgridKey  string
}

func NewConfig() *Config {
	conf := viper.New()

	// defaults
	conf.SetTypeByDefaultValue(true)
	conf.SetDefault("debug", true)
	conf.SetDefault("build", "dev")
	conf.SetDefault("appName", "Shule")
	conf.SetDefault("secretKey", "w3lc0me-t0-shul3-k33p-1t-s3cr3t")
	conf.SetDefault("defaultFromEmail", "noreply@localhost")
	conf.SetDefault("seedURL", filepath.Join("assets", "dados.json"))
	conf.SetDefault("announcementEmails", []string{})
	conf.SetDefault("storageBackend", "file")
	conf.SetDefault("storageKey", "db_prototipo_escola_v1")
	conf.SetDefault("storageDir", "data")
	conf.SetDefault("redisAddr", "localhost:6379")
	conf.SetDefault("redisPassword", "")
	conf.SetDefault("redisDB", 0)
	conf.SetDefault("databaseHost", "localhost")
	conf.SetDefault("databasePort", "5432")
	conf.SetDefault("databaseName", "shule")
	conf.SetDefault("databaseUser", "postgres")
	conf.SetDefault("databasePassword", "")
	conf.SetDefault("databaseDisableTLS", true)
	conf.SetDefault("serverHost", ":8000")
	conf.SetDefault("serverDebugHost", ":8001")
	conf.SetDefault("serverShutdownTimeout", 5*time.Second)
	conf.SetDefault("jwtExpirationDelta", 7*24*time.Hour)
	conf.SetDefault("rollbarToken", "")
	conf.SetDefault("sendgridKey", "")

	env := os.Getenv("ENV")
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		conf.SetDefault("testMode", true)
	}
	conf.SetEnvPrefix(env)

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join("config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	conf.AutomaticEnv()

	c := &Config{
		Debug:              conf.GetBool("debug"),
		TestMode:           conf.GetBool("testMode"),
		Env:                env,
		Build:              conf.GetString("build"),
		AppName:            conf.GetString("appName"),
		SecretKey:          conf.GetString("secretKey"),
		DefaultFromEmail:   mail.Address{Address: conf.GetString("defaultFromEmail")},
		SeedURL:            conf.GetString("seedURL"),
		AnnouncementEmails: conf.GetStringSlice("announcementEmails"),
		RollbarToken:       conf.GetString("rollbarToken"),
		SendgridKey:        conf.GetString("sendgridKey"),
	}
	c.Storage.Backend = conf.GetString("storageBackend")
	c.Storage.Key = conf.GetString("storageKey")
	c.Storage.Dir = conf.GetString("storageDir")
	c.Redis.Addr = conf.GetString("redisAddr")
	c.Redis.Password = conf.GetString("redisPassword")
	c.Redis.DB = conf.GetInt("redisDB")
	c.Database.Host = conf.GetString("databaseHost")
	c.Database.Port = conf.GetString("databasePort")
	c.Database.Name = conf.GetString("databaseName")
	c.Database.User = conf.GetString("databaseUser")
	c.Database.Password = conf.GetString("databasePassword")
	c.Database.DisableTLS = conf.GetBool("databaseDisableTLS")
	c.Server.Host = conf.GetString("serverHost")
	c.Server.DebugHost = conf.GetString("serverDebugHost")
	c.Server.ShutdownTimeout = conf.GetDuration("serverShutdownTimeout")
	c.Server.JWTExpirationDelta = conf.GetDuration("jwtExpirationDelta")
	return c
}

// DatabaseAddress returns the host:port of the configured Postgres instance.
func (c *Config) DatabaseAddress() string {
	return c.Database.Host + ":" + c.Database.Port
}
