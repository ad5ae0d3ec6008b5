package config

import "time"

const DefaultDataDir = "~/.venus-ethrpc"

func DefaultConfig() *Config {
	return &Config{
		DataDir: DefaultDataDir,
		API: APIConfig{
			ListenAddress: "/ip4/127.0.0.1/tcp/5679/http",
			Timeout:       Duration(30 * time.Second),
		},
		Node: NodeConfig{
			HTTPUrl: "http://127.0.0.1:8545",
			WSUrl:   "ws://127.0.0.1:8546",
			Token:   "",
		},
		Transport: TransportConfig{
			Order:          []string{"ws", "http"},
			Requirement:    "",
			RequestTimeout: Duration(time.Minute),
			RateLimit:      0,
			RateBurst:      1,
			DebugBroadcast: false,
			DefaultBlock:   "latest",
		},
		DB: DbConfig{
			Type: "sqlite",
			MySql: MySqlConfig{
				Addr:            "",
				User:            "",
				Pass:            "",
				Name:            "",
				MaxOpenConn:     10,
				MaxIdleConn:     10,
				ConnMaxLifeTime: 1,
			},
			Sqlite: SqliteConfig{
				Path: "ethrpc.db",
			},
			PurgeStale: true,
		},
		Errors: ErrorsConfig{
			Generic: map[string]string{
				"0x": "no response or bad input",
			},
			Methods: map[string]map[string]string{},
		},
	}
}
