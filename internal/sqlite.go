package internal

import (
	"context"
	"database/sql"
	"encoding/binary"
	"fmt"
	"math"
	"strconv"
	"time"

	_ "modernc.org/sqlite" // pure-Go driver registered as "sqlite"
)

const sqliteSchema = `
CREATE TABLE manifest (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
CREATE TABLE chunks (
	pos       INTEGER PRIMARY KEY,
	id        TEXT NOT NULL,
	source    TEXT NOT NULL,
	page      INTEGER NOT NULL,
	section   TEXT NOT NULL,
	seq       INTEGER NOT NULL,
	start     INTEGER NOT NULL,
	text      TEXT NOT NULL,
	embedding BLOB NOT NULL
);`

func writeSQLite(ctx context.Context, path string, snap *snapshot) error {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("open sqlite: %w", err)
	}
	defer db.Close()

	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	manifest := map[string]string{
		"version":    strconv.Itoa(snap.Version),
		"model":      snap.Model,
		"dimension":  strconv.Itoa(snap.Dimension),
		"revision":   snap.Revision,
		"created_at": snap.CreatedAt.Format(time.RFC3339Nano),
	}
	for k, v := range manifest {
		if _, err := tx.ExecContext(ctx, `INSERT INTO manifest(key, value) VALUES(?, ?)`, k, v); err != nil {
			return fmt.Errorf("write manifest: %w", err)
		}
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO chunks(pos, id, source, page, section, seq, start, text, embedding) VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, c := range snap.Chunks {
		if _, err := stmt.ExecContext(ctx, i, c.ID, c.Source, c.Page, c.Section, c.Seq, c.Start, c.Text, encodeVector(snap.Vectors[i])); err != nil {
			return fmt.Errorf("write chunk %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return db.Close()
}

func readSQLite(ctx context.Context, path string) (*snapshot, error) {
	db, err := sql.Open("sqlite", "file:"+path+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	defer db.Close()

	corrupt := func(err error) error {
		return fmt.Errorf("%w: read %s: %w", ErrCorruptData, path, err)
	}

	rows, err := db.QueryContext(ctx, `SELECT key, value FROM manifest`)
	if err != nil {
		return nil, corrupt(err)
	}
	manifest := make(map[string]string)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			rows.Close()
			return nil, corrupt(err)
		}
		manifest[k] = v
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, corrupt(err)
	}

	snap := &snapshot{Model: manifest["model"], Revision: manifest["revision"]}
	if snap.Version, err = strconv.Atoi(manifest["version"]); err != nil {
		return nil, corrupt(fmt.Errorf("version: %w", err))
	}
	if snap.Dimension, err = strconv.Atoi(manifest["dimension"]); err != nil {
		return nil, corrupt(fmt.Errorf("dimension: %w", err))
	}
	if created := manifest["created_at"]; created != "" {
		if snap.CreatedAt, err = time.Parse(time.RFC3339Nano, created); err != nil {
			return nil, corrupt(fmt.Errorf("created_at: %w", err))
		}
	}

	rows, err = db.QueryContext(ctx, `SELECT id, source, page, section, seq, start, text, embedding FROM chunks ORDER BY pos`)
	if err != nil {
		return nil, corrupt(err)
	}
	defer rows.Close()

	for rows.Next() {
		var c Chunk
		var blob []byte
		if err := rows.Scan(&c.ID, &c.Source, &c.Page, &c.Section, &c.Seq, &c.Start, &c.Text, &blob); err != nil {
			return nil, corrupt(err)
		}
		vec, err := decodeVector(blob)
		if err != nil {
			return nil, corrupt(err)
		}
		snap.Chunks = append(snap.Chunks, c)
		snap.Vectors = append(snap.Vectors, vec)
	}
	if err := rows.Err(); err != nil {
		return nil, corrupt(err)
	}

	return snap, nil
}

// encodeVector lays vec out as little-endian IEEE 754 float32s.
func encodeVector(vec []float32) []byte {
	b := make([]byte, len(vec)*4)
	for i, v := range vec {
		binary.LittleEndian.PutUint32(b[i*4:], math.Float32bits(v))
	}
	return b
}

func decodeVector(b []byte) ([]float32, error) {
	if len(b)%4 != 0 {
		return nil, fmt.Errorf("embedding blob length %d is not a multiple of 4", len(b))
	}
	vec := make([]float32, len(b)/4)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return vec, nil
}
