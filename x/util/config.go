package util

import (
	"os"

	"github.com/go-yaml/yaml"
)

// Config is the endpoint base configuration
type Config struct {
	Server Server `yaml:"server"`
	Actor  Actor  `yaml:"actor"`
}

type Server struct {
	Addr          string `yaml:"addr"`
	LogPath       string `yaml:"logPath"`
	PublicDir     string `yaml:"publicDir"`
	EnableTrace   bool   `yaml:"enableTrace"`
	TraceEndpoint string `yaml:"traceEndpoint"`
}

// Actor describes the one identity this endpoint serves.
type Actor struct {
	Name        string `yaml:"name"`
	DisplayName string `yaml:"displayName"`
	HomeURL     string `yaml:"homeUrl"`
	PrivateKey  string `yaml:"privatekey"`
	Secret      string `yaml:"secret"`
}

// Load loads config from given path
func (c *Config) Load(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	err = yaml.NewDecoder(f).Decode(&c)
	if err != nil {
		return err
	}

	// secrets prefer the environment, like the dotenv setup this replaces
	if v, ok := os.LookupEnv("PRIVATE_KEY"); ok {
		c.Actor.PrivateKey = v
	}
	if v, ok := os.LookupEnv("SECRET"); ok {
		c.Actor.Secret = v
	}

	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Server.PublicDir == "" {
		c.Server.PublicDir = "public"
	}

	return nil
}
