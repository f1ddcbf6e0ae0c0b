package egtbdb

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/kranbrook/egtb/internal/egtbfile"
	"github.com/kranbrook/egtb/internal/egtbkey"
)

// writeSideTable materializes one side's uncompressed table file in
// dir with every cell set to fill, returning its path.
func writeSideTable(t *testing.T, dir, name string, side int, fill byte) string {
	t.Helper()
	size, err := egtbkey.ComputeSize(name)
	if err != nil {
		t.Fatalf("ComputeSize(%s): %v", name, err)
	}

	props := uint32(egtbfile.PropHasWhiteTable)
	letter := "w"
	if side == 0 {
		props = egtbfile.PropHasBlackTable
		letter = "b"
	}
	h := &egtbfile.Header{Signature: egtbfile.Signature, Property: props}
	copy(h.Name[:], name)

	path := filepath.Join(dir, name+"."+letter+".mtb")
	body := append(h.Encode(), bytes.Repeat([]byte{fill}, int(size))...)
	if err := os.WriteFile(path, body, 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

// writeBothSides writes matching w and b files for a material name.
func writeBothSides(t *testing.T, dir, name string, fill byte) {
	t.Helper()
	writeSideTable(t, dir, name, 1, fill)
	writeSideTable(t, dir, name, 0, fill)
}
