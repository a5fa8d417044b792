// Package boltstore persiste modelos de pronóstico ajustados en un archivo bbolt,
// indexados por producto y fingerprint de la serie.
package boltstore

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.etcd.io/bbolt"

	appforecast "github.com/jhoicas/stockpilot-api/internal/application/forecast"
	"github.com/jhoicas/stockpilot-api/internal/domain/forecast"
)

var bucketModels = []byte("forecast_models")

// record sobre de cada artefacto.
type record struct {
	Model   *forecast.Model `json:"model"`
	SavedAt time.Time       `json:"saved_at"`
}

// ModelStore implementación de ArtifactStore sobre bbolt. Seguro para uso concurrente.
type ModelStore struct {
	db *bbolt.DB
}

var _ appforecast.ArtifactStore = (*ModelStore)(nil)

// Open abre (o crea) el archivo de artefactos.
func Open(path string) (*ModelStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("boltstore: crear directorio: %w", err)
	}
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{
		Timeout:      time.Second,
		FreelistType: bbolt.FreelistMapType,
	})
	if err != nil {
		return nil, fmt.Errorf("boltstore: abrir %s: %w", path, err)
	}
	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketModels)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("boltstore: crear bucket: %w", err)
	}
	return &ModelStore{db: db}, nil
}

// Close cierra el archivo.
func (s *ModelStore) Close() error {
	return s.db.Close()
}

// Get devuelve el modelo guardado bajo key, o (nil, nil) si no existe.
func (s *ModelStore) Get(ctx context.Context, key string) (*forecast.Model, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var raw []byte
	err := s.db.View(func(tx *bbolt.Tx) error {
		if v := tx.Bucket(bucketModels).Get([]byte(key)); v != nil {
			raw = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("boltstore: leer %s: %w", key, err)
	}
	if raw == nil {
		return nil, nil
	}
	var rec record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("boltstore: artefacto %s corrupto: %w", key, err)
	}
	return rec.Model, nil
}

// Put guarda (o reemplaza) el modelo bajo key.
func (s *ModelStore) Put(ctx context.Context, key string, m *forecast.Model) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	raw, err := json.Marshal(record{Model: m, SavedAt: time.Now().UTC()})
	if err != nil {
		return fmt.Errorf("boltstore: serializar %s: %w", key, err)
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketModels).Put([]byte(key), raw)
	})
}

// Count número de artefactos guardados.
func (s *ModelStore) Count() (int, error) {
	n := 0
	err := s.db.View(func(tx *bbolt.Tx) error {
		n = tx.Bucket(bucketModels).Stats().KeyN
		return nil
	})
	return n, err
}
