package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

type GradeType string

const (
	GradeProgramming GradeType = "programming"
	GradeObjective   GradeType = "objective"
	GradeLLM         GradeType = "llm"
	GradeMixed       GradeType = "mixed"
)

type Config struct {
	Assignment string
	GradeType  GradeType
	Deadline   string // assignment deadline, local time

	HTTPAddr string

	// Gitea connection for the metadata store and comments.
	GiteaURL       string
	GiteaToken     string
	MetadataRepo   string // owner/repo
	MetadataBranch string
	StudentPrefix  string // student repo name prefix, e.g. hw1-stu

	// LLM oracle.
	LLMAPIURL string
	LLMAPIKey string
	LLMModel  string

	// Merge policy for repeated records per component type:
	// "listing" (default) or "timestamp".
	MergePolicy string

	DBDriver string
	DBDSN    string

	// Local record store root when no Gitea repo is configured.
	RecordsDir string

	// Post a summary comment back to the student PR after grading.
	PostComments bool

	AdminUser     string
	AdminPassHash string // bcrypt
	AuthSecret    string

	CORSOrigins []string
}

// courseFile is the optional per-assignment YAML overlay. Values set
// there take precedence over environment defaults so one runner image
// can serve many assignments.
type courseFile struct {
	Assignment    string `yaml:"assignment"`
	GradeType     string `yaml:"grade_type"`
	Deadline      string `yaml:"deadline"`
	MetadataRepo  string `yaml:"metadata_repo"`
	StudentPrefix string `yaml:"student_prefix"`
	MergePolicy   string `yaml:"merge_policy"`
	LLMModel      string `yaml:"llm_model"`
}

func FromEnv() Config {
	return Config{
		Assignment: envOr("ASSIGNMENT", ""),
		GradeType:  GradeType(envOr("GRADE_TYPE", string(GradeProgramming))),
		Deadline:   os.Getenv("DEADLINE"),

		HTTPAddr: envOr("HTTP_ADDR", ":8080"),

		GiteaURL:       envOr("GITEA_URL", "http://localhost:3000"),
		GiteaToken:     os.Getenv("GITEA_TOKEN"),
		MetadataRepo:   os.Getenv("METADATA_REPO"),
		MetadataBranch: envOr("METADATA_BRANCH", "main"),
		StudentPrefix:  os.Getenv("STUDENT_PREFIX"),

		LLMAPIURL: envOr("LLM_API_URL", "https://api.deepseek.com/chat/completions"),
		LLMAPIKey: os.Getenv("LLM_API_KEY"),
		LLMModel:  envOr("LLM_MODEL", "deepseek-chat"),

		MergePolicy: envOr("MERGE_POLICY", "listing"),

		DBDriver: envOr("DB_DRIVER", "sqlite"),
		DBDSN:    envOr("DB_DSN", ""),

		RecordsDir: envOr("RECORDS_DIR", "./data"),

		PostComments: envBool("POST_COMMENTS", true),

		AdminUser:     envOr("ADMIN_USER", "admin"),
		AdminPassHash: os.Getenv("ADMIN_PASS_HASH"),
		AuthSecret:    os.Getenv("AUTH_SECRET"),

		CORSOrigins: csvOr("CORS_ORIGINS", "http://localhost:3000"),
	}
}

// Load builds config from environment, then overlays the course YAML
// file when path is non-empty.
func Load(path string) (Config, error) {
	cfg := FromEnv()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("config: read %s: %w", path, err)
	}
	var cf courseFile
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return cfg, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if cf.Assignment != "" {
		cfg.Assignment = cf.Assignment
	}
	if cf.GradeType != "" {
		cfg.GradeType = GradeType(cf.GradeType)
	}
	if cf.Deadline != "" {
		cfg.Deadline = cf.Deadline
	}
	if cf.MetadataRepo != "" {
		cfg.MetadataRepo = cf.MetadataRepo
	}
	if cf.StudentPrefix != "" {
		cfg.StudentPrefix = cf.StudentPrefix
	}
	if cf.MergePolicy != "" {
		cfg.MergePolicy = cf.MergePolicy
	}
	if cf.LLMModel != "" {
		cfg.LLMModel = cf.LLMModel
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch c.GradeType {
	case GradeProgramming, GradeObjective, GradeLLM, GradeMixed:
	default:
		return fmt.Errorf("config: unknown grade type %q", c.GradeType)
	}
	switch c.MergePolicy {
	case "listing", "listing-order", "timestamp":
	default:
		return fmt.Errorf("config: unknown merge policy %q", c.MergePolicy)
	}
	return nil
}

func envOr(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}

func envBool(k string, def bool) bool {
	switch os.Getenv(k) {
	case "1", "true", "TRUE", "yes", "YES":
		return true
	case "0", "false", "FALSE", "no", "NO":
		return false
	default:
		return def
	}
}

func csvOr(k, def string) []string {
	v := envOr(k, def)
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
