package world

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"

	"github.com/cespare/xxhash/v2"
)

// Definition file layout, relative to a world's base directory.
const (
	RegionDir      = "region"
	ConnectionDir  = "connection"
	EnemiesFile    = "enemies/main.json"
	WeaponsFile    = "weapons/main.json"
	HelpersFile    = "helpers.json"
	TechFile       = "tech.json"
	definitionsExt = ".json"
)

// LoadError is returned when a definition file is missing or malformed.
// No partially loaded World is ever returned alongside it.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// Load reads the world definition rooted at basePath.
func Load(name, basePath string) (*World, error) {
	info, err := os.Stat(basePath)
	if err != nil {
		return nil, &LoadError{Path: basePath, Err: err}
	}
	if !info.IsDir() {
		return nil, &LoadError{Path: basePath, Err: errors.New("not a directory")}
	}
	return LoadFS(name, os.DirFS(basePath))
}

// LoadFS reads a world definition from fsys using the standard layout. The
// loaded World's Fingerprint digests every file read.
func LoadFS(name string, fsys fs.FS) (*World, error) {
	sum := xxhash.New()

	var regions []Region
	err := walkDefinitions(fsys, RegionDir, func(p string) error {
		var rs []Region
		if err := readSection(fsys, sum, p, "rooms", &rs); err != nil {
			return err
		}
		regions = append(regions, rs...)
		return nil
	})
	if err != nil {
		return nil, err
	}

	var connections []Connection
	err = walkDefinitions(fsys, ConnectionDir, func(p string) error {
		var cs []Connection
		if err := readSection(fsys, sum, p, "connections", &cs); err != nil {
			return err
		}
		connections = append(connections, cs...)
		return nil
	})
	if err != nil {
		return nil, err
	}

	var tables Tables
	for _, f := range []struct {
		path string
		key  string
		dst  any
	}{
		{EnemiesFile, "enemies", &tables.Enemies},
		{WeaponsFile, "weapons", &tables.Weapons},
		{HelpersFile, "helpers", &tables.Helpers},
		{TechFile, "techs", &tables.Techs},
	} {
		if err := readSection(fsys, sum, f.path, f.key, f.dst); err != nil {
			return nil, err
		}
	}

	w, err := New(name, regions, connections, tables)
	if err != nil {
		return nil, &LoadError{Path: ".", Err: err}
	}
	w.fingerprint = sum.Sum64()
	return w, nil
}

func walkDefinitions(fsys fs.FS, root string, fn func(p string) error) error {
	err := fs.WalkDir(fsys, root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || path.Ext(p) != definitionsExt {
			return nil
		}
		return fn(p)
	})
	if err == nil {
		return nil
	}
	var loadErr *LoadError
	if errors.As(err, &loadErr) {
		return loadErr
	}
	return &LoadError{Path: root, Err: err}
}

// readSection decodes the array stored under key in a definition file and
// adds the file to sum.
func readSection(fsys fs.FS, sum *xxhash.Digest, p, key string, dst any) error {
	data, err := fs.ReadFile(fsys, p)
	if err != nil {
		return &LoadError{Path: p, Err: err}
	}
	_, _ = sum.WriteString(p)
	_, _ = sum.Write([]byte{0})
	_, _ = sum.Write(data)

	var file map[string]json.RawMessage
	if err := json.Unmarshal(data, &file); err != nil {
		return &LoadError{Path: p, Err: fmt.Errorf("invalid JSON: %w", err)}
	}

	raw, ok := file[key]
	if !ok || string(raw) == "null" {
		return &LoadError{Path: p, Err: fmt.Errorf("missing %q section", key)}
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return &LoadError{Path: p, Err: fmt.Errorf("decode %s: %w", key, err)}
	}
	return nil
}
