// Package snapshot reads and writes the durable world save file: a zstd
// stream holding one JSON header line followed by a msgpack body.
package snapshot

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/klauspost/compress/zstd"
	"github.com/vmihailenco/msgpack/v5"
)

const (
	Format  = "dogloot-snapshot"
	Version = 1
)

var (
	ErrUnsupportedVersion = errors.New("unsupported snapshot version")
	ErrCorrupt            = errors.New("corrupt snapshot")
)

type Header struct {
	Format  string    `json:"format" msgpack:"format"`
	Version int       `json:"version" msgpack:"version"`
	SavedAt time.Time `json:"saved_at" msgpack:"saved_at"`
	Maps    int       `json:"maps" msgpack:"maps"`
	Players int       `json:"players" msgpack:"players"`
}

type SnapshotV1 struct {
	Header       Header     `msgpack:"header"`
	NextPlayerID uint32     `msgpack:"next_player_id"`
	Maps         []MapV1    `msgpack:"maps"`
	Players      []PlayerV1 `msgpack:"players"`
}

type MapV1 struct {
	ID         string   `msgpack:"id"`
	NextItemID int      `msgpack:"next_item_id"`
	Items      []ItemV1 `msgpack:"items"`
}

type ItemV1 struct {
	ID     int     `msgpack:"id"`
	X      float64 `msgpack:"x"`
	Y      float64 `msgpack:"y"`
	Radius float64 `msgpack:"radius"`
	Type   int     `msgpack:"type"`
	Value  int64   `msgpack:"value"`
}

// RoadV1 identifies a road by its endpoints; ids are not stable across
// map data edits.
type RoadV1 struct {
	StartX int `msgpack:"sx"`
	StartY int `msgpack:"sy"`
	EndX   int `msgpack:"ex"`
	EndY   int `msgpack:"ey"`
}

type DogV1 struct {
	X     float64 `msgpack:"x"`
	Y     float64 `msgpack:"y"`
	VX    float64 `msgpack:"vx"`
	VY    float64 `msgpack:"vy"`
	Speed float64 `msgpack:"speed"`
	Dir   string  `msgpack:"dir"`
	Road  RoadV1  `msgpack:"road"`
}

type PlayerV1 struct {
	ID       uint32        `msgpack:"id"`
	Name     string        `msgpack:"name"`
	MapID    string        `msgpack:"map_id"`
	Token    string        `msgpack:"token"`
	Score    int64         `msgpack:"score"`
	IdleTime time.Duration `msgpack:"idle_ns"`
	Age      time.Duration `msgpack:"age_ns"`
	BagCap   int           `msgpack:"bag_cap"`
	Bag      []ItemV1      `msgpack:"bag"`
	Dog      DogV1         `msgpack:"dog"`
}

// Encode writes snap to w. The header's format and version are filled in.
func Encode(w io.Writer, snap *SnapshotV1) error {
	snap.Header.Format = Format
	snap.Header.Version = Version
	snap.Header.Maps = len(snap.Maps)
	snap.Header.Players = len(snap.Players)

	enc, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return err
	}
	bw := bufio.NewWriterSize(enc, 64*1024)

	hb, err := json.Marshal(snap.Header)
	if err != nil {
		enc.Close()
		return fmt.Errorf("marshal header: %w", err)
	}
	if _, err := bw.Write(append(hb, '\n')); err != nil {
		enc.Close()
		return err
	}
	if err := msgpack.NewEncoder(bw).Encode(snap); err != nil {
		enc.Close()
		return fmt.Errorf("msgpack encode: %w", err)
	}
	if err := bw.Flush(); err != nil {
		enc.Close()
		return err
	}
	return enc.Close()
}

// Decode reads a snapshot written by Encode. The header is checked before
// the body is decoded.
func Decode(r io.Reader) (*SnapshotV1, error) {
	dec, err := zstd.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	defer dec.Close()

	br := bufio.NewReaderSize(dec, 64*1024)
	line, err := br.ReadBytes('\n')
	if err != nil {
		return nil, fmt.Errorf("%w: read header: %v", ErrCorrupt, err)
	}
	var h Header
	if err := json.Unmarshal(line, &h); err != nil {
		return nil, fmt.Errorf("%w: parse header: %v", ErrCorrupt, err)
	}
	if h.Format != Format {
		return nil, fmt.Errorf("%w: format %q", ErrCorrupt, h.Format)
	}
	if h.Version != Version {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, h.Version)
	}

	var snap SnapshotV1
	if err := msgpack.NewDecoder(br).Decode(&snap); err != nil {
		return nil, fmt.Errorf("%w: msgpack decode: %v", ErrCorrupt, err)
	}
	if len(snap.Maps) != h.Maps || len(snap.Players) != h.Players {
		return nil, fmt.Errorf("%w: header counts do not match body", ErrCorrupt)
	}
	return &snap, nil
}

// Write saves snap to path atomically: the data goes to a temp file in the
// same directory which then replaces path.
func Write(path string, snap *SnapshotV1) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create snapshot dir: %w", err)
	}
	f, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp snapshot: %w", err)
	}
	tmp := f.Name()
	if err := Encode(f, snap); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("sync snapshot: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("close snapshot: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("rename snapshot: %w", err)
	}
	return nil
}

// Read loads the snapshot at path.
func Read(path string) (*SnapshotV1, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	snap, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("read snapshot %s: %w", path, err)
	}
	return snap, nil
}
