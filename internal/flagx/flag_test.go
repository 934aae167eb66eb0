package flagx

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterArgs(t *testing.T) {
	loaders := []string{"-c", "--config", "-e", "--env-file"}

	tests := []struct {
		name    string
		args    []string
		allowed []string
		want    []string
	}{
		{"config and env file kept, cli flags dropped",
			[]string{"-a", "http://localhost:8080/api", "-c", "authflow.json", "-e", "dev.env", "-r", "5"},
			loaders,
			[]string{"-c", "authflow.json", "-e", "dev.env"}},
		{"equals form kept whole",
			[]string{"--env-file=prod.env", "-d", "store.db"},
			loaders,
			[]string{"--env-file=prod.env"}},
		{"equals value may start with a dash",
			[]string{"--config=-odd.json"},
			loaders,
			[]string{"--config=-odd.json"}},
		{"trailing flag without value",
			[]string{"-d", "x.db", "-e"},
			loaders,
			[]string{"-e"}},
		{"dash-prefixed next token is not a value",
			[]string{"-e", "-r", "3"},
			loaders,
			[]string{"-e"}},
		{"cli flags only",
			[]string{"-x", "1", "-a", "http://h/api", "-d", "a.db", "-r", "2"},
			[]string{"-a", "-d", "-r"},
			[]string{"-a", "http://h/api", "-d", "a.db", "-r", "2"}},
		{"repeats keep their order",
			[]string{"-r", "1", "-c", "a.json", "-r", "2"},
			[]string{"-r"},
			[]string{"-r", "1", "-r", "2"}},
		{"positional arguments ignored",
			[]string{"signup", "extra"},
			loaders,
			[]string{}},
		{"nil args",
			nil,
			loaders,
			[]string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FilterArgs(tt.args, tt.allowed))
		})
	}
}

func TestConfigFile(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"short -c with value", []string{"-c", "/path/short.json"}, "/path/short.json"},
		{"long -config with value", []string{"-config", "/path/long.json"}, "/path/long.json"},
		{"equals form", []string{"--config=/path/eq.json"}, "/path/eq.json"},
		{"unknown flags are ignored", []string{"-x", "1", "-y", "2"}, ""},
		{"multiple flags, last wins", []string{"-c", "/path/1.json", "-config", "/path/2.json"}, "/path/2.json"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ConfigFile(tt.args))
		})
	}
}

func TestEnvFile(t *testing.T) {
	assert.Equal(t, ".env.local", EnvFile([]string{"-a", "http://x", "-e", ".env.local"}))
	assert.Equal(t, "prod.env", EnvFile([]string{"--env-file=prod.env"}))
	assert.Empty(t, EnvFile([]string{"-c", "conf.json"}))
}
