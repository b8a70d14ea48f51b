package graph

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/sanonone/kektorgraph/pkg/storage/mmap"
)

// File extensions of a persisted graph. A graph saved under base consists of
// base+InfoExt plus one flat file per region.
const (
	InfoExt          = ".info"
	NodeRegionExt    = ".nodeBuf"
	EdgeRegionExt    = ".edgeBuf"
	ConnRegionExt    = ".connectionBuf"
	NodeLabelExt     = ".nodeLabelBuf"
	EdgeLabelExt     = ".edgeLabelBuf"
	infoSeparator    = "~"
	infoKeyName      = "name"
	infoKeyNodes     = "numberOfNodes"
	infoKeyEdges     = "numberOfEdges"
	infoKeyNodeLabel = "numberOfNodeLabelBytes"
	infoKeyEdgeLabel = "numberOfEdgeLabelBytes"
	infoKeyDirect    = "direct"
)

// RegionExts lists the region file extensions in save order.
var RegionExts = []string{NodeRegionExt, EdgeRegionExt, ConnRegionExt, NodeLabelExt, EdgeLabelExt}

// Info is the metadata stored in a graph's .info file.
type Info struct {
	Name                   string
	NumberOfNodes          int
	NumberOfEdges          int
	NumberOfNodeLabelBytes int
	NumberOfEdgeLabelBytes int
	Direct                 bool
}

// Info returns the metadata Save would write for g.
func (g *Graph) Info() Info {
	return Info{
		Name:                   g.name,
		NumberOfNodes:          g.numNodes,
		NumberOfEdges:          g.numEdges,
		NumberOfNodeLabelBytes: len(g.nodeLabels),
		NumberOfEdgeLabelBytes: len(g.edgeLabels),
		Direct:                 g.direct,
	}
}

// MarshalText encodes i in the .info file format.
func (i Info) MarshalText() ([]byte, error) {
	if strings.ContainsAny(i.Name, "\r\n") {
		return nil, fmt.Errorf("MarshalText: graph name %q contains a line break: %w", i.Name, ErrPrecondition)
	}
	return i.encode(), nil
}

// UnmarshalText parses the .info file format. Failures wrap ErrIO.
func (i *Info) UnmarshalText(text []byte) error {
	info, err := parseInfo("info", text)
	if err != nil {
		return err
	}
	*i = info
	return nil
}

func (i Info) encode() []byte {
	var b bytes.Buffer
	line := func(k, v string) { b.WriteString(k + infoSeparator + v + "\n") }
	line(infoKeyName, i.Name)
	line(infoKeyNodes, strconv.Itoa(i.NumberOfNodes))
	line(infoKeyEdges, strconv.Itoa(i.NumberOfEdges))
	line(infoKeyNodeLabel, strconv.Itoa(i.NumberOfNodeLabelBytes))
	line(infoKeyEdgeLabel, strconv.Itoa(i.NumberOfEdgeLabelBytes))
	line(infoKeyDirect, strconv.FormatBool(i.Direct))
	return b.Bytes()
}

// Save writes g under dir as base.info plus the five region files. Each file
// is written to a temporary name and renamed into place; the info file goes
// last so a readable info file implies complete regions.
func (g *Graph) Save(dir, base string) error {
	if strings.ContainsAny(g.name, "\r\n") {
		return fmt.Errorf("Save: graph name %q contains a line break: %w", g.name, ErrPrecondition)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("Save: failed to create %s: %v: %w", dir, err, ErrIO)
	}
	prefix := filepath.Join(dir, base)
	payloads := [][]byte{g.nodes, g.edges, g.conns, g.nodeLabels, g.edgeLabels}
	for i, ext := range RegionExts {
		if err := writeFileAtomic(prefix+ext, payloads[i]); err != nil {
			return fmt.Errorf("Save: %v: %w", err, ErrIO)
		}
	}
	if err := writeFileAtomic(prefix+InfoExt, g.Info().encode()); err != nil {
		return fmt.Errorf("Save: %v: %w", err, ErrIO)
	}
	return nil
}

func writeFileAtomic(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}

// ReadInfo parses the metadata file of the graph saved under dir as base.
func ReadInfo(dir, base string) (Info, error) {
	path := filepath.Join(dir, base+InfoExt)
	raw, err := os.ReadFile(path)
	if err != nil {
		return Info{}, fmt.Errorf("ReadInfo: %v: %w", err, ErrIO)
	}
	return parseInfo(path, raw)
}

func parseInfo(path string, raw []byte) (Info, error) {
	var info Info
	seen := make(map[string]bool)
	sc := bufio.NewScanner(bytes.NewReader(raw))
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimRight(sc.Text(), "\r")
		if line == "" {
			continue
		}
		key, val, ok := strings.Cut(line, infoSeparator)
		if !ok {
			return Info{}, fmt.Errorf("%s:%d: missing %q separator: %w", path, lineNo, infoSeparator, ErrIO)
		}
		var err error
		switch key {
		case infoKeyName:
			info.Name = val
		case infoKeyNodes:
			info.NumberOfNodes, err = parseCount(val)
		case infoKeyEdges:
			info.NumberOfEdges, err = parseCount(val)
		case infoKeyNodeLabel:
			info.NumberOfNodeLabelBytes, err = parseCount(val)
		case infoKeyEdgeLabel:
			info.NumberOfEdgeLabelBytes, err = parseCount(val)
		case infoKeyDirect:
			info.Direct, err = strconv.ParseBool(val)
		default:
			continue
		}
		if err != nil {
			return Info{}, fmt.Errorf("%s:%d: bad %s value %q: %w", path, lineNo, key, val, ErrIO)
		}
		seen[key] = true
	}
	if err := sc.Err(); err != nil {
		return Info{}, fmt.Errorf("%s: %v: %w", path, err, ErrIO)
	}
	for _, key := range []string{infoKeyName, infoKeyNodes, infoKeyEdges, infoKeyNodeLabel, infoKeyEdgeLabel, infoKeyDirect} {
		if !seen[key] {
			return Info{}, fmt.Errorf("%s: missing key %q: %w", path, key, ErrIO)
		}
	}
	if info.NumberOfNodeLabelBytes%LabelUnitSize != 0 || info.NumberOfEdgeLabelBytes%LabelUnitSize != 0 {
		return Info{}, fmt.Errorf("%s: label byte counts must be even: %w", path, ErrIO)
	}
	return info, nil
}

func parseCount(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, err
	}
	if n < 0 || n > MaxIndex {
		return 0, fmt.Errorf("count %d out of range", n)
	}
	return n, nil
}

// Load reads the graph saved under dir as base. It fails with ErrIO when the
// info file or any region file is missing, when a region's size disagrees
// with the metadata, or when the loaded layout is inconsistent.
func Load(dir, base string) (*Graph, error) {
	info, err := ReadInfo(dir, base)
	if err != nil {
		return nil, err
	}
	prefix := filepath.Join(dir, base)

	maps := make([]*mmap.Region, len(RegionExts))
	defer func() {
		for _, m := range maps {
			if m != nil {
				_ = m.Close()
			}
		}
	}()
	for i, ext := range RegionExts {
		m, err := mmap.Open(prefix + ext)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("Load: region file %s missing: %w", prefix+ext, ErrIO)
			}
			return nil, fmt.Errorf("Load: %v: %w", err, ErrIO)
		}
		maps[i] = m
	}
	raw := make([][]byte, len(maps))
	for i, m := range maps {
		raw[i] = m.Data
	}
	g, err := FromRegions(info, raw)
	if err != nil {
		return nil, fmt.Errorf("Load: %s: %w", prefix, err)
	}
	return g, nil
}

// Regions returns g's five regions in RegionExts order. The slices alias g's
// storage and must not be modified.
func (g *Graph) Regions() [][]byte {
	return [][]byte{g.nodes, g.edges, g.conns, g.nodeLabels, g.edgeLabels}
}

// FromRegions builds a graph from raw region bytes in RegionExts order, as
// produced by Regions. The bytes are copied. Sizes are validated against info
// and the layout is checked; failures wrap ErrIO.
func FromRegions(info Info, raw [][]byte) (*Graph, error) {
	if len(raw) != len(RegionExts) {
		return nil, fmt.Errorf("FromRegions: got %d regions, want %d: %w", len(raw), len(RegionExts), ErrIO)
	}
	want := []int{
		info.NumberOfNodes * NodeRecordSize,
		info.NumberOfEdges * EdgeRecordSize,
		-1, // connection region: 2*E entries plus any slack
		info.NumberOfNodeLabelBytes,
		info.NumberOfEdgeLabelBytes,
	}
	for i, b := range raw {
		if want[i] >= 0 && len(b) != want[i] {
			return nil, fmt.Errorf("FromRegions: region %s holds %d bytes, metadata implies %d: %w",
				RegionExts[i], len(b), want[i], ErrIO)
		}
	}
	connBytes := len(raw[2])
	if connBytes%ConnectionRecordSize != 0 || connBytes < 2*info.NumberOfEdges*ConnectionRecordSize {
		return nil, fmt.Errorf("FromRegions: region %s holds %d bytes, need a multiple of %d of at least %d: %w",
			ConnRegionExt, connBytes, ConnectionRecordSize, 2*info.NumberOfEdges*ConnectionRecordSize, ErrIO)
	}

	r := allocRegions(info.Direct, want[0], want[1], connBytes, want[3], want[4])
	copy(r.nodes, raw[0])
	copy(r.edges, raw[1])
	copy(r.conns, raw[2])
	copy(r.nodeLabels, raw[3])
	copy(r.edgeLabels, raw[4])

	g := newGraph(info.Name, info.Direct, r)
	if err := g.Check(); err != nil {
		return nil, fmt.Errorf("FromRegions: %w: %w", ErrIO, err)
	}
	return g, nil
}

// Remove deletes the info and region files of the graph saved under dir as
// base. Missing files are not an error.
func Remove(dir, base string) error {
	prefix := filepath.Join(dir, base)
	var errs []error
	for _, ext := range append([]string{InfoExt}, RegionExts...) {
		if err := os.Remove(prefix + ext); err != nil && !errors.Is(err, fs.ErrNotExist) {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("Remove: %w: %w", ErrIO, errors.Join(errs...))
	}
	return nil
}
