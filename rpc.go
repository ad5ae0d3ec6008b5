package venus_ethrpc

import (
	"context"
	"net"
	"net/http"
	_ "net/http/pprof"

	"github.com/filecoin-project/go-jsonrpc"
	"github.com/gorilla/mux"
	"github.com/multiformats/go-multiaddr"
	manet "github.com/multiformats/go-multiaddr/net"
	"go.opencensus.io/tag"
	"golang.org/x/xerrors"

	"github.com/ipfs-force-community/venus-ethrpc/api"
)

// ServeRPC serves an HTTP handler over the supplied listen multiaddr.
//
// This function spawns a goroutine to run the server, and returns immediately.
// It returns the stop function to be called to terminate the endpoint.
//
// The supplied ID is used in tracing, by inserting a tag in the context.
func ServeRPC(h http.Handler, id string, addr multiaddr.Multiaddr) (StopFunc, error) {
	// Start listening to the addr; if invalid or occupied, we will fail early.
	lst, err := manet.Listen(addr)
	if err != nil {
		return nil, xerrors.Errorf("could not listen: %w", err)
	}

	// Instantiate the server and start listening.
	srv := &http.Server{
		Handler: h,
		BaseContext: func(listener net.Listener) context.Context {
			key, _ := tag.NewKey("api")
			ctx, _ := tag.New(context.Background(), tag.Upsert(key, id))
			return ctx
		},
	}

	go func() {
		err := srv.Serve(manet.NetListener(lst))
		if err != http.ErrServerClosed {
			log.Warnf("rpc server failed: %s", err)
		}
	}()

	return srv.Shutdown, nil
}

// EthRPCHandler routes /rpc/v0 to the daemon API and everything else to the
// default mux, which carries pprof.
func EthRPCHandler(a api.EthRPC) http.Handler {
	rpcServer := jsonrpc.NewServer()
	rpcServer.Register(api.Namespace, a)

	m := mux.NewRouter()
	m.Handle("/rpc/v0", rpcServer)
	m.PathPrefix("/").Handler(http.DefaultServeMux) // pprof

	return m
}
