package config

// HTTPServer struct for HTTP Transport configuration
type HTTPServer struct {
	Port int `yaml:"port"`
}

// Transport is a configuration for the outer surface: HTTP for now
type Transport struct {
	HTTP HTTPServer `yaml:"http"`
}

// Database points to the sqlite file holding templates, sender configs
// and send logs. Debug turns on per-query logging.
type Database struct {
	Debug bool   `yaml:"debug"`
	DSN   string `yaml:"dsn"` // Data Source Name
}

// Dirs are the working directories for uploaded files.
type Dirs struct {
	Uploads     string `yaml:"uploads"`     // spreadsheet uploads
	Attachments string `yaml:"attachments"` // attachment pool
}

// ProviderOverride forces connection parameters for sender addresses
// whose domain suffix matches. First match wins.
type ProviderOverride struct {
	DomainSuffix string `yaml:"domainSuffix"`
	Host         string `yaml:"host"`
	Port         int    `yaml:"port"`
	UseSSL       bool   `yaml:"useSSL"`
	UseTLS       bool   `yaml:"useTLS"`
}

type Mailer struct {
	ConnectTimeoutSeconds int                `yaml:"connectTimeoutSeconds"`
	ProviderOverrides     []ProviderOverride `yaml:"providerOverrides"`
}

// Config contains application config
type Config struct {
	Transport Transport `yaml:"transport"`

	Database Database `yaml:"database"`

	Dirs Dirs `yaml:"dirs"`

	Mailer Mailer `yaml:"mailer"`
}
