// Package store is the persistence gateway: named collections are loaded and
// saved wholesale as JSON documents under fixed keys. Two implementations
// exist, a JSON-file store for single-machine deployments and a Postgres
// store for everything else. Both must round-trip arbitrary nested structures
// (including embedded base64 image strings) losslessly.
package store

import "context"

// Collection keys.
const (
	KeyDoctors       = "doctors"
	KeyPatients      = "patients"
	KeyConsultations = "consultations"
	KeySettings      = "settings"
)

// Store loads and saves whole collections by key. Load reports found=false
// when nothing has been persisted under the key yet; Save replaces the stored
// document wholesale.
type Store interface {
	Load(ctx context.Context, key string, v interface{}) (found bool, err error)
	Save(ctx context.Context, key string, v interface{}) error
}
