package config

import (
	"encoding"
	"net/http"
	"strings"
	"time"

	"github.com/multiformats/go-multiaddr"
)

type HomeDir string

// Config is the daemon configuration.
type Config struct {
	DataDir   string
	API       APIConfig
	Node      NodeConfig
	Transport TransportConfig
	DB        DbConfig
	Errors    ErrorsConfig

	ConfigPath string `toml:"-"`
}

func (cfg Config) LocalStorage() *LocalStorage {
	return NewLocalStorage(cfg.DataDir)
}

// APIConfig contains configs for the daemon API endpoint
type APIConfig struct {
	ListenAddress string
	Timeout       Duration
}

func (api *APIConfig) APIEndpoint() (multiaddr.Multiaddr, error) {
	strma := strings.TrimSpace(api.ListenAddress)

	apima, err := multiaddr.NewMultiaddr(strma)
	if err != nil {
		return nil, err
	}
	return apima, nil
}

// NodeConfig locates the blockchain node. Either url may be empty, which
// disables that transport.
type NodeConfig struct {
	HTTPUrl string
	WSUrl   string
	Token   string
}

func (node *NodeConfig) AuthHeader() http.Header {
	if len(node.Token) != 0 {
		headers := http.Header{}
		headers.Add("Authorization", "Bearer "+node.Token)
		return headers
	}
	return nil
}

type TransportConfig struct {
	// Order is the preference order of transports for requests without a
	// requirement, by kind ("ws", "http").
	Order []string
	// Requirement is applied to contract calls that have a callback.
	Requirement string
	// 0 = no timeout
	RequestTimeout Duration
	// requests per second over http, 0 = no limit
	RateLimit float64
	RateBurst int

	DebugBroadcast bool
	DefaultBlock   string
}

type DbConfig struct {
	Type   string
	MySql  MySqlConfig
	Sqlite SqliteConfig
	// PurgeStale drops journaled requests of previous runs at startup.
	PurgeStale bool
}

type SqliteConfig struct {
	Path string
}

type MySqlConfig struct {
	Addr            string        `toml:"addr"`
	User            string        `toml:"user"`
	Pass            string        `toml:"pass"`
	Name            string        `toml:"name"`
	MaxOpenConn     int           `toml:"maxOpenConn"`
	MaxIdleConn     int           `toml:"maxIdleConn"`
	ConnMaxLifeTime time.Duration `toml:"connMaxLifeTime"`
}

// ErrorsConfig extends the built in error tables.
type ErrorsConfig struct {
	// raw result -> message, for functions that return a value
	Generic map[string]string
	// function name -> decimal result -> message
	Methods map[string]map[string]string `ignored:"true"`
}

var _ encoding.TextMarshaler = (*Duration)(nil)
var _ encoding.TextUnmarshaler = (*Duration)(nil)

// Duration is a wrapper type for time.Duration
// for decoding and encoding from/to TOML
type Duration time.Duration

// UnmarshalText implements interface for TOML decoding
func (dur *Duration) UnmarshalText(text []byte) error {
	d, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*dur = Duration(d)
	return err
}

func (dur Duration) MarshalText() ([]byte, error) {
	d := time.Duration(dur)
	return []byte(d.String()), nil
}
