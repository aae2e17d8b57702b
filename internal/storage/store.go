// Package storage persists user preferences in a bbolt database.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	bolt "go.etcd.io/bbolt"
)

var preferencesBucket = []byte("preferences")

// ErrNotFound is returned when a preference has never been set.
var ErrNotFound = errors.New("preference not found")

type Store struct {
	db *bolt.DB
}

// NewStore opens (or creates) the database at dbPath. A second process
// holding the file makes this fail after timeout.
func NewStore(dbPath string, timeout time.Duration) (*Store, error) {
	if timeout <= 0 {
		timeout = time.Second
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}
	db, err := bolt.Open(dbPath, 0o600, &bolt.Options{Timeout: timeout})
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, createErr := tx.CreateBucketIfNotExists(preferencesBucket)
		return createErr
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating buckets: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Path() string {
	return s.db.Path()
}

func (s *Store) SetPreference(key, value string) error {
	if key == "" {
		return errors.New("preference key cannot be empty")
	}
	pref := Preference{Key: key, Value: value, UpdatedAt: time.Now()}
	data, err := json.Marshal(pref)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(preferencesBucket).Put([]byte(key), data)
	})
}

// GetPreference returns the stored value or ErrNotFound.
func (s *Store) GetPreference(key string) (string, error) {
	pref, err := s.getPreference(key)
	if err != nil {
		return "", err
	}
	return pref.Value, nil
}

func (s *Store) getPreference(key string) (*Preference, error) {
	var pref Preference
	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(preferencesBucket).Get([]byte(key))
		if data == nil {
			return fmt.Errorf("%w: %s", ErrNotFound, key)
		}
		return json.Unmarshal(data, &pref)
	})
	if err != nil {
		return nil, err
	}
	return &pref, nil
}

func (s *Store) DeletePreference(key string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(preferencesBucket).Delete([]byte(key))
	})
}

// Preferences returns every stored preference sorted by key.
func (s *Store) Preferences() ([]Preference, error) {
	var prefs []Preference
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(preferencesBucket).ForEach(func(_, v []byte) error {
			var p Preference
			if err := json.Unmarshal(v, &p); err != nil {
				return err
			}
			prefs = append(prefs, p)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(prefs, func(i, j int) bool { return prefs[i].Key < prefs[j].Key })
	return prefs, nil
}
