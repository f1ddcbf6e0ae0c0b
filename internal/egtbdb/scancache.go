package egtbdb

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/klauspost/compress/zstd"
)

// scanCacheSuffix names the zstd-compressed sidecar Db.Preload writes
// next to a scanned folder, recording the file list and fingerprints
// from the last successful walk.
const scanCacheSuffix = ".egtbscan.zst"

type scanEntry struct {
	path    string
	size    int64
	modUnix int64
}

func scanCachePath(folder string) string {
	return filepath.Join(folder, scanCacheSuffix)
}

// freshScanEntries returns the set of recorded paths whose size and
// modification time still match disk. The directory walk itself always
// runs regardless (it is the only way to discover added or removed
// files); freshness only lets Preload skip eager header re-parsing of
// files that have not changed since the sidecar was written. A
// missing or corrupt sidecar simply yields an empty set.
func freshScanEntries(folder string) map[string]bool {
	entries, ok := readScanCache(folder)
	if !ok {
		return nil
	}
	fresh := make(map[string]bool, len(entries))
	for _, e := range entries {
		fi, err := os.Stat(e.path)
		if err != nil || fi.Size() != e.size || fi.ModTime().Unix() != e.modUnix {
			continue
		}
		fresh[e.path] = true
	}
	return fresh
}

func readScanCache(folder string) ([]scanEntry, bool) {
	f, err := os.Open(scanCachePath(folder))
	if err != nil {
		return nil, false
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return nil, false
	}
	defer dec.Close()

	var entries []scanEntry
	sc := bufio.NewScanner(dec)
	for sc.Scan() {
		fields := strings.SplitN(sc.Text(), "\t", 3)
		if len(fields) != 3 {
			return nil, false
		}
		size, err1 := strconv.ParseInt(fields[1], 10, 64)
		mod, err2 := strconv.ParseInt(fields[2], 10, 64)
		if err1 != nil || err2 != nil {
			return nil, false
		}
		entries = append(entries, scanEntry{path: fields[0], size: size, modUnix: mod})
	}
	if err := sc.Err(); err != nil {
		return nil, false
	}
	return entries, true
}

// saveScanCache overwrites folder's sidecar with the current
// fingerprint of every path in names.
func saveScanCache(folder string, names []string) error {
	f, err := os.Create(scanCachePath(folder))
	if err != nil {
		return err
	}
	defer f.Close()

	enc, err := zstd.NewWriter(f)
	if err != nil {
		return err
	}
	defer enc.Close()

	for _, name := range names {
		fi, err := os.Stat(name)
		if err != nil {
			continue
		}
		if _, err := fmt.Fprintf(enc, "%s\t%d\t%d\n", name, fi.Size(), fi.ModTime().Unix()); err != nil {
			return err
		}
	}
	return nil
}
