package badger

import (
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/indago/internal/common"
	"github.com/ternarybob/indago/internal/interfaces"
)

// Manager implements the StorageManager interface for Badger
type Manager struct {
	db        *BadgerDB
	discovery interfaces.DiscoveryStorage
	logger    arbor.ILogger
}

// NewManager opens the database and builds the stores on it
func NewManager(logger arbor.ILogger, config *common.BadgerConfig) (interfaces.StorageManager, error) {
	db, err := NewBadgerDB(logger, config)
	if err != nil {
		return nil, err
	}

	manager := &Manager{
		db:        db,
		discovery: NewDiscoveryStorage(db, logger),
		logger:    logger,
	}

	logger.Info().Str("path", config.Path).Msg("Badger storage manager initialized")

	return manager, nil
}

// DiscoveryStorage returns the discovery result store
func (m *Manager) DiscoveryStorage() interfaces.DiscoveryStorage {
	return m.discovery
}

// Close closes the underlying database connection
func (m *Manager) Close() error {
	m.logger.Debug().Msg("Closing Badger storage manager")
	return m.db.Close()
}
