package main

import (
	"context"
	"flag"
	"os/signal"
	"strings"
	"syscall"

	"github.com/kranbrook/egtb/internal/egtbdb"
	"github.com/kranbrook/egtb/internal/egtbfile"
	"github.com/kranbrook/egtb/internal/logx"
)

const version = "0.2.0"

func main() {
	var (
		folders    = flag.String("folders", "./data/tables", "comma-separated list of folders to scan for table files")
		material   = flag.String("material", "", "material name to query, e.g. krk (empty = just preload and report counts)")
		memAll     = flag.Bool("mem-all", false, "materialize each table's payload fully on first use instead of block-by-block")
		loadNow    = flag.Bool("load-now", false, "read every table header during preload instead of on first query")
		scanCache  = flag.Bool("scan-cache", true, "keep a zstd-compressed folder-scan sidecar to speed up repeated preloads")
		probeCache = flag.String("probe-cache", "", "directory for a persistent badger-backed one-ply probe cache (empty = in-memory LRU)")
		cacheSize  = flag.Int("probe-cache-size", 4096, "entry count for the in-memory probe cache (ignored with -probe-cache)")
		verbose    = flag.Bool("verbose", false, "log at debug level")
	)
	flag.Parse()

	logger := logx.NewLogger(*verbose)
	logger.Info().Str("version", version).Msg("egtbquery")

	memMode := egtbfile.MemTiny
	if *memAll {
		memMode = egtbfile.MemAll
	}

	var cache egtbdb.ProbeCache
	if *probeCache != "" {
		c, err := egtbdb.NewBadgerProbeCache(*probeCache)
		if err != nil {
			logger.Fatal().Err(err).Str("dir", *probeCache).Msg("open probe cache")
		}
		cache = c
	} else {
		cache = egtbdb.NewMemoryProbeCache(*cacheSize)
	}

	db := egtbdb.New(egtbdb.Config{
		Folders:    splitNonEmpty(*folders),
		MemMode:    memMode,
		LoadNow:    *loadNow,
		Logger:     logger,
		ProbeCache: cache,
		ScanCache:  *scanCache,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := db.Preload(); err != nil {
		logger.Fatal().Err(err).Msg("preload table folders")
	}
	logger.Info().Int("files", db.FileCount()).Msg("preload complete")

	if *material != "" {
		f := db.Lookup(*material)
		if f == nil {
			logger.Warn().Str("material", *material).Msg("no table registered for material name")
		} else {
			logger.Info().Str("material", *material).Int64("rows", f.RowCount()).Msg("table loaded")
		}
	}

	<-ctx.Done()
	logger.Info().Msg("shutting down")
}

func splitNonEmpty(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
