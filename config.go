package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
)

type Config struct {
	Port int `json:"port"`
	Env string `json:"env"`
	Pepper string `json:"pepper"`
	SessionKey string `json:"session_key"`
	CSRFKey string `json:"csrf_key"`
	Database PostgresConfig `json:"database"`
}

func (c Config) IsProd() bool {
	return c.Env == "prod"
}

type PostgresConfig struct {
	Host string `json:"host"`
	Port int `json:"port"`
	User string `json:"user"`
	Password string `json:"password"`
	Name string `json:"name"`
}

func (pc PostgresConfig) ConnectionInfo() string {
	if pc.Password == "" {
		return fmt.Sprintf("host=%s port=%d user=%s dbname=%s sslmode=disable", pc.Host, pc.Port, pc.User, pc.Name)
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable", pc.Host, pc.Port, pc.User, pc.Password, pc.Name)
}

func DefaultConfig() Config {
	return Config{
		Port:       1111,
		Env:        "dev",
		Pepper:     "secret-random-string",
		SessionKey: "secret-session-key",
		CSRFKey:    "32-byte-long-auth-key-padding!!!",
		Database:   DefaultPostgresConfig(),
	}
}

func DefaultPostgresConfig() PostgresConfig {
	return PostgresConfig{
		Host:     "localhost",
		Port:     5432,
		User:     "postgres",
		Password: "",
		Name:     "warbler",
	}
}

// LoadConfig loads configuration from a .config.json file if present,
// otherwise it falls back to the default dev setup. In production the file
// is required, running on dev defaults there would mean well-known secrets.
func LoadConfig(prodFlag bool) Config {
	f, err := os.Open(".config.json")
	if err != nil {
		if prodFlag {
			panic("a .config.json file is required in production")
		}
		return DefaultConfig()
	}
	defer f.Close()
	var c Config
	if err := json.NewDecoder(f).Decode(&c); err != nil {
		panic(err)
	}
	logrus.Info("successfully loaded .config.json")
	return c
}
