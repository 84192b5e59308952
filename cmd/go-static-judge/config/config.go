package config

import (
	"os"
	"runtime"
	"time"

	"github.com/koding/multiconfig"
)

// Config defines judge server configuration
type Config struct {
	// judge
	RulesFile   string `flagUsage:"specifies curriculum rule file (built-in curriculum by default)"`
	Parallelism int    `flagUsage:"control the # of concurrent judging (default equal to number of cpu)"`

	// submission store
	Store           string        `flagUsage:"specifies submission store (memory, badger, sqlite)" default:"memory"`
	StorePath       string        `flagUsage:"specifies badger directory or sqlite database file" default:"static-judge.db"`
	StoreSyncWrites bool          `flagUsage:"sync every badger write to disk"`
	Retention       time.Duration `flagUsage:"specifies how long submissions are kept (0 keeps forever)"`

	// report archive
	ArchiveEndpoint  string `flagUsage:"specifies minio / s3 endpoint to archive submissions (disabled when empty)"`
	ArchiveAccessKey string `flagUsage:"archive access key"`
	ArchiveSecretKey string `flagUsage:"archive secret key"`
	ArchiveBucket    string `flagUsage:"archive bucket" default:"submissions"`
	ArchivePrefix    string `flagUsage:"archive object prefix"`
	ArchiveSecure    bool   `flagUsage:"use https for archive endpoint"`

	// server config
	HTTPAddr      string `flagUsage:"specifies the http binding address" default:":3001"`
	EnableGRPC    bool   `flagUsage:"enable gRPC endpoint"`
	GRPCAddr      string `flagUsage:"specifies the grpc binding address" default:":3002"`
	MonitorAddr   string `flagUsage:"specifies the metrics binding address" default:":3003"`
	AuthToken     string `flagUsage:"bearer token auth for REST / gRPC"`
	EnableDebug   bool   `flagUsage:"enable debug endpoint"`
	EnableMetrics bool   `flagUsage:"enable promethus metrics endpoint"`

	// logger config
	Release bool `flagUsage:"release level of logs"`
	Silent  bool `flagUsage:"do not print logs"`

	// show version and exit
	Version bool `flagUsage:"show version and exit"`
}

// Load loads config from flag & environment variables
func (c *Config) Load() error {
	cl := multiconfig.MultiLoader(
		&multiconfig.TagLoader{},
		&multiconfig.EnvironmentLoader{
			Prefix:    "JS",
			CamelCase: true,
		},
		&multiconfig.FlagLoader{
			CamelCase: true,
			EnvPrefix: "JS",
		},
	)
	if os.Getpid() == 1 {
		c.Release = true
	}
	if err := cl.Load(c); err != nil {
		return err
	}
	if c.Parallelism <= 0 {
		c.Parallelism = runtime.NumCPU()
	}
	return nil
}
