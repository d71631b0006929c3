// Package tower holds the process-wide IvoryTower.
//
// There is exactly one tower per process. It is built eagerly while the
// package is initialised, before any caller can reach GetInstance. The
// accessor takes no lock:
//
//	t := tower.GetInstance()
//	log.Info("tower ready", "id", t.ID())
//
// The concrete type is unexported; the only way to obtain a tower is
// GetInstance.
package tower

import (
	"time"

	"github.com/google/uuid"
)

// IvoryTower is the process-wide singleton.
type IvoryTower interface {
	// ID identifies this process's tower.
	ID() uuid.UUID

	// BuiltAt is when the tower was built during package initialisation (UTC).
	BuiltAt() time.Time
}

type ivoryTower struct {
	id      uuid.UUID
	builtAt time.Time
}

// instance is evaluated once during package initialisation and never reassigned.
var instance = build()

func build() *ivoryTower {
	return &ivoryTower{
		id:      uuid.New(),
		builtAt: time.Now().UTC(),
	}
}

// GetInstance returns the process's IvoryTower.
// Every call returns the same instance.
func GetInstance() IvoryTower {
	return instance
}

func (t *ivoryTower) ID() uuid.UUID {
	return t.id
}

func (t *ivoryTower) BuiltAt() time.Time {
	return t.builtAt
}
