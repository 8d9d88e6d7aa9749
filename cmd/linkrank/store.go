package main

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/mycok/linkrank/linkgraph/graph"
	"github.com/mycok/linkrank/linkgraph/store/cdb"
	"github.com/mycok/linkrank/linkgraph/store/memory"
	"github.com/mycok/linkrank/linkgraph/store/sqlite"
	"github.com/mycok/linkrank/sitelock"
)

const defaultLockTTL = 10 * time.Minute

// closeFunc releases the resources held by a store or locker.
type closeFunc func() error

func nopClose() error { return nil }

func getLinkGraph(linkGraphURI string, logger *logrus.Entry) (graph.Graph, closeFunc, error) {
	if linkGraphURI == "" {
		return nil, nil, fmt.Errorf("link graph URI must be specified with --link-graph-uri")
	}

	uri, err := url.Parse(linkGraphURI)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse link graph URI: %w", err)
	}

	switch uri.Scheme {
	case "in-memory":
		logger.Info("using in-memory link graph store")

		return memory.NewInMemoryGraph(), nopClose, nil
	case "sqlite":
		path := strings.TrimPrefix(linkGraphURI, "sqlite://")
		if path == "" {
			return nil, nil, fmt.Errorf("sqlite link graph URI must include a file path")
		}
		logger.WithField("path", path).Info("using sqlite link graph store")

		g, err := sqlite.NewGraph(path)
		if err != nil {
			return nil, nil, err
		}

		return g, g.Close, nil
	case "postgresql":
		logger.Info("using CDB link graph store")

		g, err := cdb.NewCockroachDBGraph(linkGraphURI)
		if err != nil {
			return nil, nil, err
		}

		if err := g.Migrate(); err != nil {
			_ = g.Close()

			return nil, nil, err
		}

		return g, g.Close, nil
	default:
		return nil, nil, fmt.Errorf("unsupported link graph URI scheme: %q", uri.Scheme)
	}
}

func getLocker(redisAddr string, ttl time.Duration, logger *logrus.Entry) (sitelock.Locker, closeFunc, error) {
	if redisAddr == "" {
		logger.Debug("using in-process site locks")

		return sitelock.NewLocal(), nopClose, nil
	}

	logger.WithField("addr", redisAddr).Info("using redis site locks")

	client := redis.NewClient(&redis.Options{Addr: redisAddr})
	locker, err := sitelock.NewRedis(sitelock.RedisConfig{
		Client: client,
		TTL:    ttl,
	})
	if err != nil {
		_ = client.Close()

		return nil, nil, err
	}

	return locker, client.Close, nil
}
