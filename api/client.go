package api

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/filecoin-project/go-jsonrpc"
	logging "github.com/ipfs/go-log/v2"
	"github.com/mitchellh/go-homedir"
	"github.com/multiformats/go-multiaddr"
	manet "github.com/multiformats/go-multiaddr/net"
	"github.com/urfave/cli/v2"
	"golang.org/x/xerrors"

	"github.com/ipfs-force-community/venus-ethrpc/config"
)

var log = logging.Logger("api")

const (
	Namespace = "EthRPC"

	metadataTraceContext = "traceContext"

	// flag passed on the command line with the listen address of the API
	// server
	apiFlag  = "api-url"
	repoFlag = "repo"
	envAPI   = "ETHRPC_API"
)

// DialArgs turns the daemon's API multiaddr into a websocket url for version.
func DialArgs(ma multiaddr.Multiaddr, version string) (string, error) {
	_, addr, err := manet.DialArgs(ma)
	if err != nil {
		return "", xerrors.Errorf("resolving %s: %w", ma, err)
	}
	return "ws://" + addr + "/rpc/" + version, nil
}

// GetAPIEndpoint finds the daemon API: the api-url flag, then ETHRPC_API,
// then the endpoint file a running daemon leaves in its repo.
func GetAPIEndpoint(ctx *cli.Context) (multiaddr.Multiaddr, error) {
	strma := ""
	if ctx.IsSet(apiFlag) {
		strma = ctx.String(apiFlag)
	} else if env, ok := os.LookupEnv(envAPI); ok {
		strma = env
	}
	if strma != "" {
		return multiaddr.NewMultiaddr(strings.TrimSpace(strma))
	}

	p, err := homedir.Expand(ctx.String(repoFlag))
	if err != nil {
		return nil, xerrors.Errorf("could not expand home dir (%s): %w", repoFlag, err)
	}

	ma, err := config.NewLocalStorage(p).APIEndpoint()
	if err != nil {
		return nil, xerrors.Errorf("could not get api endpoint: %w", err)
	}
	return ma, nil
}

func GetEthRPCAPI(ctx *cli.Context) (EthRPC, jsonrpc.ClientCloser, error) {
	if tn, ok := ctx.App.Metadata["testnode-ethrpc"]; ok {
		return tn.(EthRPC), func() {}, nil
	}

	ma, err := GetAPIEndpoint(ctx)
	if err != nil {
		return nil, nil, err
	}
	addr, err := DialArgs(ma, "v0")
	if err != nil {
		return nil, nil, xerrors.Errorf("could not get DialArgs: %w", err)
	}
	log.Debugf("dialing daemon at %s", addr)

	return NewEthRPCClient(ctx.Context, addr, nil)
}

// NewEthRPCClient creates a new jsonrpc client for the daemon API.
func NewEthRPCClient(ctx context.Context, addr string, requestHeader http.Header) (EthRPC, jsonrpc.ClientCloser, error) {
	var res EthRPCStruct
	closer, err := jsonrpc.NewMergeClient(ctx, addr, Namespace,
		[]interface{}{
			&res.CommonStruct.Internal,
			&res.Internal,
		},
		requestHeader,
	)

	return &res, closer, err
}

func DaemonContext(cctx *cli.Context) context.Context {
	if mtCtx, ok := cctx.App.Metadata[metadataTraceContext]; ok {
		return mtCtx.(context.Context)
	}

	return context.Background()
}

// ReqContext returns context for cli execution. Calling it for the first time
// installs SIGTERM handler that will close returned context.
// Not safe for concurrent execution.
func ReqContext(cctx *cli.Context) context.Context {
	tCtx := DaemonContext(cctx)

	ctx, done := context.WithCancel(tCtx)
	sigChan := make(chan os.Signal, 2)
	go func() {
		<-sigChan
		done()
	}()
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT, syscall.SIGHUP)

	return ctx
}
