package api

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/ipfs-force-community/venus-ethrpc/constants"
)

type Common interface {
	// Version provides information about API provider
	Version(context.Context) (Version, error)

	LogList(context.Context) ([]string, error)
	LogSetLevel(context.Context, string, string) error

	// trigger graceful shutdown
	Shutdown(context.Context) error

	// Session returns a random UUID of api provider session
	Session(context.Context) (uuid.UUID, error)
}

type Version struct {
	Version string

	// APIVersion is a binary encoded semver version of the remote implementing
	// this api
	APIVersion constants.Version
}

func (v Version) String() string {
	return fmt.Sprintf("%s+api%s", v.Version, v.APIVersion.String())
}
