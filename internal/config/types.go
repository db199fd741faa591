package config

// Config is the top-level configuration structure parsed from podium YAML.
type Config struct {
	Server        Server        `yaml:"server"`
	Database      Database      `yaml:"database"`
	Pipeline      Pipeline      `yaml:"pipeline"`
	Collaborators Collaborators `yaml:"collaborators"`
	Notify        Notify        `yaml:"notify"`
	Logging       Logging       `yaml:"logging"`
	DevMode       bool          `yaml:"dev_mode"`
}

// Server configures the HTTP listener.
type Server struct {
	Port int `yaml:"port"`
}

// Database configures the history store. DSNEnv, when set, names an
// environment variable that overrides DSN so credentials stay out of the
// config file.
type Database struct {
	DSN    string `yaml:"dsn"`
	DSNEnv string `yaml:"dsn_env"`
}

// Pipeline configures the scheduler: pool size, timeouts, retry bounds,
// personas, and remediation thresholds.
type Pipeline struct {
	Workers          int         `yaml:"workers"`
	StageTimeout     string      `yaml:"stage_timeout"`
	TransientRetries int         `yaml:"transient_retries"`
	Personas         []string    `yaml:"personas"`
	Remediation      Remediation `yaml:"remediation"`
}

// Remediation holds the score thresholds that gate follow-up stages.
// A dimension at or below its threshold triggers the matching stage.
type Remediation struct {
	SpeechThreshold    int `yaml:"speech_threshold"`
	StructureThreshold int `yaml:"structure_threshold"`
}

// Collaborators configures every external service the pipeline calls.
type Collaborators struct {
	Judge       JudgeService   `yaml:"judge"`
	Transcriber WhisperService `yaml:"transcriber"`
	Rasterizer  HTTPService    `yaml:"rasterizer"`
	Synthesizer HTTPService    `yaml:"synthesizer"`
	// RateLimit bounds outbound judgment calls per second across all
	// concurrent submissions. Zero disables the limiter.
	RateLimit float64 `yaml:"rate_limit"`
}

// JudgeService configures the structured-judgment model endpoint.
type JudgeService struct {
	Endpoint  string `yaml:"endpoint"`
	Model     string `yaml:"model"`
	APIKeyEnv string `yaml:"api_key_env"`
}

// WhisperService configures the speech-to-text endpoint.
type WhisperService struct {
	Endpoint  string `yaml:"endpoint"`
	Model     string `yaml:"model"`
	APIKeyEnv string `yaml:"api_key_env"`
}

// HTTPService is a plain endpoint-only collaborator.
type HTTPService struct {
	Endpoint string `yaml:"endpoint"`
}

// Notify configures the SMTP mailer.
type Notify struct {
	Host        string `yaml:"host"`
	Port        int    `yaml:"port"`
	Sender      string `yaml:"sender"`
	SenderName  string `yaml:"sender_name"`
	PasswordEnv string `yaml:"password_env"`
}

// Logging configures the slog handler.
type Logging struct {
	Level string `yaml:"level"`
}
