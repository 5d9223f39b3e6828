package database

import (
	"encoding/binary"
	"io"

	"github.com/hupe1980/langid/catalog"
	"github.com/hupe1980/langid/internal/fs"
	"github.com/hupe1980/langid/internal/mmap"
)

// WriteFile writes the database to path, atomically replacing any existing
// file. The container is chosen by Options.Compression.
func (db *Database) WriteFile(path string) error {
	data, err := db.Bytes()
	if err != nil {
		return err
	}
	raw := len(data)
	if data, err = Compress(data, db.opts.Compression); err != nil {
		return err
	}
	err = fs.WriteFileAtomic(db.opts.FileSystem, path, 0o644, func(w io.Writer) error {
		_, err := w.Write(data)
		return err
	})
	if err != nil {
		return err
	}
	db.logger.Info("database written",
		"path", path,
		"languages", db.NumLanguages(),
		"bytes", len(data),
		"raw_bytes", raw,
		"compression", db.opts.Compression.String(),
	)
	return nil
}

// Open loads the database file at path. With Options.Mmap the file is
// memory mapped where supported, and the mapping is released by Close.
func Open(path string, opts Options) (*Database, error) {
	opts = opts.withDefaults()

	if opts.Mmap && mmap.Supported {
		if _, isLocal := opts.FileSystem.(fs.LocalFS); isLocal {
			return openMapped(path, opts)
		}
	}

	data, err := opts.FileSystem.ReadFile(path)
	if err != nil {
		return nil, err
	}
	db, err := Parse(data, opts)
	if err != nil {
		return nil, err
	}
	db.logger.Info("database loaded", "path", path, "bytes", len(data), "mmap", false)
	return db, nil
}

func openMapped(path string, opts Options) (*Database, error) {
	m, err := mmap.Open(path)
	if err != nil {
		return nil, err
	}
	data := m.Bytes()
	if IsCompressed(data) {
		// decompressed data lives on the heap; the mapping is not needed
		defer m.Close()
		db, err := Parse(data, opts)
		if err != nil {
			return nil, err
		}
		db.logger.Info("database loaded", "path", path, "bytes", len(data), "mmap", false)
		return db, nil
	}

	_ = m.Advise(mmap.AccessSequential)
	db, err := Parse(data, opts)
	if err != nil {
		_ = m.Close()
		return nil, err
	}
	start := HeaderSize + db.NumLanguages()*catalog.RecordSize
	end := int(binary.BigEndian.Uint64(data[offTableOffset:]))
	if r, err := m.Region(start, end-start); err == nil {
		_ = r.Advise(mmap.AccessRandom)
	}
	db.closer = m
	db.logger.Info("database loaded", "path", path, "bytes", len(data), "mmap", true)
	return db, nil
}

// Exists reports whether path names a regular file.
func Exists(fsys fs.FileSystem, path string) bool {
	if fsys == nil {
		fsys = fs.Default
	}
	info, err := fsys.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
