package infrastructure

import (
	"guildgreeter/application"
	"guildgreeter/database"
	"guildgreeter/domain/interfaces"
	"guildgreeter/repository"
)

// UnitOfWorkFactoryWrapper gives every unit of work its own transactional publisher
type UnitOfWorkFactoryWrapper struct {
	repoFactory interface {
		CreateForGuildWithPublisher(guildID int64, transactionalPublisher interfaces.TransactionalEventPublisher) application.UnitOfWork
	}
	eventPublisher interfaces.EventPublisher
}

// NewUnitOfWorkFactoryWrapper creates a new wrapper that implements application.UnitOfWorkFactory
func NewUnitOfWorkFactoryWrapper(db *database.DB, eventPublisher interfaces.EventPublisher) *UnitOfWorkFactoryWrapper {
	return &UnitOfWorkFactoryWrapper{
		repoFactory:    repository.NewUnitOfWorkFactory(db),
		eventPublisher: eventPublisher,
	}
}

// CreateForGuild creates a new UnitOfWork with a transactional event publisher
func (w *UnitOfWorkFactoryWrapper) CreateForGuild(guildID int64) application.UnitOfWork {
	return w.repoFactory.CreateForGuildWithPublisher(guildID, NewNATSTransactionalPublisher(w.eventPublisher))
}
