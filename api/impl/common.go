package impl

import (
	"context"

	"github.com/google/uuid"
	logging "github.com/ipfs/go-log/v2"
	"go.uber.org/fx"

	"github.com/ipfs-force-community/venus-ethrpc/api"
	"github.com/ipfs-force-community/venus-ethrpc/constants"
	"github.com/ipfs-force-community/venus-ethrpc/dtypes"
)

var log = logging.Logger("impl")

type CommonAPI struct {
	fx.In

	ShutdownChan dtypes.ShutdownChan
	SessionID    dtypes.SessionID
}

var _ api.Common = &CommonAPI{}

func (a *CommonAPI) Version(context.Context) (api.Version, error) {
	return api.Version{
		Version:    constants.UserVersion(),
		APIVersion: constants.EthRPCAPIVersion0,
	}, nil
}

func (a *CommonAPI) LogList(context.Context) ([]string, error) {
	return logging.GetSubsystems(), nil
}

func (a *CommonAPI) LogSetLevel(ctx context.Context, subsystem, level string) error {
	return logging.SetLogLevel(subsystem, level)
}

func (a *CommonAPI) Shutdown(ctx context.Context) error {
	select {
	case a.ShutdownChan <- struct{}{}:
	default:
		log.Warn("shutdown already requested")
	}
	return nil
}

func (a *CommonAPI) Session(ctx context.Context) (uuid.UUID, error) {
	return uuid.UUID(a.SessionID), nil
}
