package contract

import (
	"testing"
	"time"

	"github.com/huangsam/bizcache/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validInput() *ConfigRawInput {
	return &ConfigRawInput{
		Mode:         string(schema.OfflineMode),
		Workers:      4,
		StoreBackend: string(schema.SQLiteBackend),
		Output:       "text",
		Color:        "yes",
	}
}

func TestProcessAndValidate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*ConfigRawInput)
		expectError bool
	}{
		{
			name:        "valid offline config",
			mutate:      func(*ConfigRawInput) {},
			expectError: false,
		},
		{
			name: "valid remote config",
			mutate: func(in *ConfigRawInput) {
				in.Mode = "REMOTE"
				in.BaseURL = "https://erp.example.com"
			},
			expectError: false,
		},
		{
			name:        "invalid mode",
			mutate:      func(in *ConfigRawInput) { in.Mode = "dummy" },
			expectError: true,
		},
		{
			name:        "remote without base url",
			mutate:      func(in *ConfigRawInput) { in.Mode = "remote" },
			expectError: true,
		},
		{
			name: "remote with bad scheme",
			mutate: func(in *ConfigRawInput) {
				in.Mode = "remote"
				in.BaseURL = "ftp://erp.example.com"
			},
			expectError: true,
		},
		{
			name:        "zero workers is uncapped",
			mutate:      func(in *ConfigRawInput) { in.Workers = 0 },
			expectError: false,
		},
		{
			name:        "negative workers",
			mutate:      func(in *ConfigRawInput) { in.Workers = -1 },
			expectError: true,
		},
		{
			name:        "invalid output",
			mutate:      func(in *ConfigRawInput) { in.Output = "xml" },
			expectError: true,
		},
		{
			name:        "parquet without output file",
			mutate:      func(in *ConfigRawInput) { in.Output = "parquet" },
			expectError: true,
		},
		{
			name: "parquet with output file",
			mutate: func(in *ConfigRawInput) {
				in.Output = "parquet"
				in.OutputFile = "records.parquet"
			},
			expectError: false,
		},
		{
			name:        "invalid color",
			mutate:      func(in *ConfigRawInput) { in.Color = "maybe" },
			expectError: true,
		},
		{
			name:        "invalid timeout",
			mutate:      func(in *ConfigRawInput) { in.Timeout = "soon" },
			expectError: true,
		},
		{
			name:        "negative timeout",
			mutate:      func(in *ConfigRawInput) { in.Timeout = "-1s" },
			expectError: true,
		},
		{
			name:        "invalid store backend",
			mutate:      func(in *ConfigRawInput) { in.StoreBackend = "redis" },
			expectError: true,
		},
		{
			name:        "mysql without connection string",
			mutate:      func(in *ConfigRawInput) { in.StoreBackend = "mysql" },
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := validInput()
			tt.mutate(input)
			cfg := &Config{}
			err := ProcessAndValidate(cfg, input)
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestProcessAndValidate_Values(t *testing.T) {
	input := validInput()
	input.Mode = "remote"
	input.BaseURL = " https://erp.example.com/ "
	input.APIToken = "secret"
	input.Timeout = "3s"
	input.Color = "no"
	input.Width = 120

	cfg := &Config{}
	require.NoError(t, ProcessAndValidate(cfg, input))

	assert.Equal(t, schema.RemoteMode, cfg.Mode)
	assert.Equal(t, "https://erp.example.com/", cfg.BaseURL)
	assert.Equal(t, "secret", cfg.APIToken)
	assert.Equal(t, 3*time.Second, cfg.Timeout)
	assert.Equal(t, 4, cfg.Workers)
	assert.Equal(t, 120, cfg.Width)
	assert.False(t, cfg.UseColors)
	assert.Equal(t, schema.SQLiteBackend, cfg.StoreBackend)
	assert.Equal(t, schema.TextOut, cfg.Output)
}

func TestProcessAndValidate_DefaultTimeout(t *testing.T) {
	cfg := &Config{}
	require.NoError(t, ProcessAndValidate(cfg, validInput()))
	assert.Equal(t, DefaultTimeout, cfg.Timeout)
}

func TestValidateDatabaseConnectionString(t *testing.T) {
	tests := []struct {
		name    string
		backend schema.DatabaseBackend
		connStr string
		wantErr bool
	}{
		{"sqlite empty", schema.SQLiteBackend, "", false},
		{"none empty", schema.NoneBackend, "", false},
		{"mysql valid", schema.MySQLBackend, "root:pw@tcp(localhost:3306)/erp", false},
		{"mysql empty", schema.MySQLBackend, "", true},
		{"mysql missing tcp", schema.MySQLBackend, "root:pw@localhost/erp", true},
		{"mysql missing db", schema.MySQLBackend, "root:pw@tcp(localhost:3306)", true},
		{"postgres valid", schema.PostgreSQLBackend, "host=localhost port=5432 dbname=erp", false},
		{"postgres empty", schema.PostgreSQLBackend, "", true},
		{"postgres missing host", schema.PostgreSQLBackend, "dbname=erp", true},
		{"postgres missing dbname", schema.PostgreSQLBackend, "host=localhost", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDatabaseConnectionString(tt.backend, tt.connStr)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestResourceURL(t *testing.T) {
	assert.Equal(t, "https://erp.example.com/api/warehouses", ResourceURL("https://erp.example.com/", "warehouses"))
	assert.Equal(t, "http://localhost:8080/api/sale-orders/42", ResourceURL("http://localhost:8080", "sale-orders", "42"))
	assert.Equal(t, "http://h/api/contacts/a%2Fb", ResourceURL("http://h", "contacts", "a/b"))
}

func TestConfigClone(t *testing.T) {
	cfg := &Config{Mode: schema.OfflineMode, Workers: 2}
	clone := cfg.Clone()
	clone.Mode = schema.RemoteMode
	assert.Equal(t, schema.OfflineMode, cfg.Mode)
	assert.Equal(t, 2, clone.Workers)
}
