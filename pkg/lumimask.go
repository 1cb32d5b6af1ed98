package sfvalid

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strconv"
)

// RunLumiMask is a certified luminosity list: run -> inclusive block ranges.
type RunLumiMask struct {
	ranges map[uint32][][2]uint32
}

func NewRunLumiMask(ranges map[uint32][][2]uint32) *RunLumiMask {
	m := &RunLumiMask{ranges: make(map[uint32][][2]uint32, len(ranges))}
	for run, rs := range ranges {
		sorted := append([][2]uint32(nil), rs...)
		sort.Slice(sorted, func(i, j int) bool { return sorted[i][0] < sorted[j][0] })
		m.ranges[run] = sorted
	}
	return m
}

func (m *RunLumiMask) Accept(run uint32, lumi uint32) bool {
	for _, r := range m.ranges[run] {
		if lumi < r[0] {
			return false
		}
		if lumi <= r[1] {
			return true
		}
	}
	return false
}

// LoadLumiMaskFile reads a golden JSON file: {"run": [[first, last], ...]}.
func LoadLumiMaskFile(filename string) (*RunLumiMask, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, &ErrOpenFile{Filename: filename, Err: err}
	}
	var raw map[string][][2]uint32
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("error decoding lumi mask %q: %w", filename, err)
	}
	ranges := make(map[uint32][][2]uint32, len(raw))
	for key, rs := range raw {
		run, err := strconv.ParseUint(key, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("invalid run number %q in %q: %w", key, filename, err)
		}
		ranges[uint32(run)] = rs
	}
	return NewRunLumiMask(ranges), nil
}
