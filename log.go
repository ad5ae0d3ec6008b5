package venus_ethrpc

import (
	"os"

	logging "github.com/ipfs/go-log/v2"
)

// SetupLogLevels sets the default levels unless GOLOG_LOG_LEVEL is set.
func SetupLogLevels() {
	if _, set := os.LookupEnv("GOLOG_LOG_LEVEL"); !set {
		_ = logging.SetLogLevel("*", "INFO")
		_ = logging.SetLogLevel("transport", "WARN")
		_ = logging.SetLogLevel("decode", "WARN")
	}
}
