// Package ontosave serializes a built ontology to a versioned on-disk
// artifact. The layout is magic bytes, a little-endian compatibility
// level, then a zstd-compressed gob payload.
package ontosave

import (
	"encoding/binary"
	"encoding/gob"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/klauspost/compress/zstd"

	"github.com/royalcat/geontology/geomodel"
)

var magicBytes = []byte("GEONT")

const compatibilityLevel uint32 = 1

type Metadata struct {
	Version     uint32
	Languages   []string
	Source      string
	DateCreated time.Time
}

// Ontology is the complete build artifact.
type Ontology struct {
	Meta  Metadata
	Areas []geomodel.Area
	Stats geomodel.Stats
}

func Save(w io.Writer, ont Ontology) error {
	if _, err := w.Write(magicBytes); err != nil {
		return fmt.Errorf("error writing magic bytes: %s", err.Error())
	}
	if err := binary.Write(w, binary.LittleEndian, compatibilityLevel); err != nil {
		return fmt.Errorf("error writing compatibility level: %s", err.Error())
	}

	enc, err := zstd.NewWriter(w)
	if err != nil {
		return fmt.Errorf("error creating zstd writer: %s", err.Error())
	}

	if err := gob.NewEncoder(enc).Encode(ont); err != nil {
		enc.Close()
		return fmt.Errorf("error encoding ontology: %s", err.Error())
	}
	return enc.Close()
}

func Load(r io.Reader, log *slog.Logger) (Ontology, error) {
	if log == nil {
		log = slog.Default()
	}

	magic := make([]byte, len(magicBytes))
	if _, err := io.ReadFull(r, magic); err != nil {
		return Ontology{}, fmt.Errorf("error reading magic bytes: %s", err.Error())
	}
	if string(magic) != string(magicBytes) {
		return Ontology{}, fmt.Errorf("not an ontology file: bad magic %q", magic)
	}

	var level uint32
	if err := binary.Read(r, binary.LittleEndian, &level); err != nil {
		return Ontology{}, fmt.Errorf("error reading compatibility level: %s", err.Error())
	}
	if level != compatibilityLevel {
		return Ontology{}, fmt.Errorf("unsupported compatibility level: %d", level)
	}

	dec, err := zstd.NewReader(r)
	if err != nil {
		return Ontology{}, fmt.Errorf("error creating zstd reader: %s", err.Error())
	}
	defer dec.Close()

	var ont Ontology
	if err := gob.NewDecoder(dec).Decode(&ont); err != nil {
		return Ontology{}, fmt.Errorf("error decoding ontology: %s", err.Error())
	}

	log.Info("loaded ontology",
		"version", ont.Meta.Version,
		"source", ont.Meta.Source,
		"areas", len(ont.Areas),
		"date_created", ont.Meta.DateCreated.Format(time.RFC3339),
	)
	return ont, nil
}

func SaveToFile(path string, ont Ontology) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("can`t create file: %s", err.Error())
	}
	defer file.Close()

	return Save(file, ont)
}

func LoadFromFile(path string, log *slog.Logger) (Ontology, error) {
	file, err := os.Open(path)
	if err != nil {
		return Ontology{}, fmt.Errorf("can`t open file: %s", err.Error())
	}
	defer file.Close()

	return Load(file, log)
}
