package commands

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	abcitypes "github.com/tendermint/tendermint/abci/types"

	"github.com/tendermint/nftauction/abci/auction"
	"github.com/tendermint/nftauction/config"
	"github.com/tendermint/nftauction/internal/engine"
	"github.com/tendermint/nftauction/internal/store"
	"github.com/tendermint/nftauction/libs/log"
)

// loadApplication opens the store under the configured home and returns the
// application serving it. The returned closer writes out metrics and closes
// the database.
func loadApplication(conf *config.Config, logger log.Logger) (*auction.Application, func() error, error) {
	db, err := config.DefaultDBProvider(&config.DBContext{ID: "auction", Config: conf})
	if err != nil {
		return nil, nil, fmt.Errorf("open database: %w", err)
	}

	limits := store.PageLimits{Default: conf.Query.DefaultLimit, Max: conf.Query.MaxLimit}
	if err := limits.ValidateBasic(); err != nil {
		db.Close()
		return nil, nil, err
	}
	s := store.NewStore(db, limits)

	registry := prometheus.NewRegistry()
	metrics := engine.NopMetrics()
	if conf.Instrumentation.Prometheus {
		metrics = engine.PrometheusMetricsWithRegistry(registry, conf.Instrumentation.Namespace, "chain_id", conf.ChainID)
	}

	app, err := auction.NewApplication(s, logger, metrics)
	if err != nil {
		s.Close()
		return nil, nil, err
	}
	if app.Info(abcitypes.RequestInfo{}).LastBlockHeight == 0 {
		app.InitChain(abcitypes.RequestInitChain{ChainId: conf.ChainID})
	}

	closer := func() error {
		if path := conf.TextfilePath(); path != "" {
			if err := prometheus.WriteToTextfile(path, registry); err != nil {
				logger.Error("failed to write metrics", "path", path, "err", err)
			}
		}
		return s.Close()
	}
	return app, closer, nil
}
