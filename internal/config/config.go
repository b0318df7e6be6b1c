package config

import (
	"os"
	"path/filepath"

	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Env variable names
const (
	APIAddrEnvVarName     = "WEAVER_API_ADDR"
	UsernameEnvVarName    = "WEAVER_USERNAME"
	PasswordEnvVarName    = "WEAVER_PASSWORD"
	SessionFileEnvVarName = "WEAVER_SESSION_FILE"
)

const (
	localConfigFile = ".weaver.yml"
	homeConfigFile  = "config.yml"

	defaultAPIAddr = "localhost:8080"
)

// Config is the CLI's view of where the control plane lives and which
// credential material to use before a session exists. Precedence, lowest
// first: defaults, ~/.weaver/config.yml, ./.weaver.yml, WEAVER_* env.
type Config struct {
	APIAddr     string `mapstructure:"api_addr"`
	Username    string `mapstructure:"username"`
	Password    string `mapstructure:"password"`
	SessionFile string `mapstructure:"session_file"`
}

func Load() (*Config, error) {
	merged := map[string]interface{}{
		"api_addr": defaultAPIAddr,
	}

	home, err := os.UserHomeDir()
	if err == nil {
		mergeFile(merged, filepath.Join(home, ".weaver", homeConfigFile))
	}

	mergeFile(merged, localConfigFile)

	mergeEnv(merged, APIAddrEnvVarName, "api_addr")
	mergeEnv(merged, UsernameEnvVarName, "username")
	mergeEnv(merged, PasswordEnvVarName, "password")
	mergeEnv(merged, SessionFileEnvVarName, "session_file")

	var config Config

	err = mapstructure.Decode(merged, &config)
	if err != nil {
		return nil, errors.Wrap(err, "decoding config")
	}

	return &config, nil
}

func mergeFile(merged map[string]interface{}, path string) {
	fileBytes, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Warnf("could not read config file %s: %s", path, err)
		}

		return
	}

	fileValues := map[string]interface{}{}

	err = yaml.Unmarshal(fileBytes, &fileValues)
	if err != nil {
		log.Warnf("ignoring invalid config file %s: %s", path, err)

		return
	}

	for key, value := range fileValues {
		merged[key] = value
	}
}

func mergeEnv(merged map[string]interface{}, envVarName, key string) {
	if value, exists := os.LookupEnv(envVarName); exists {
		merged[key] = value
	}
}
