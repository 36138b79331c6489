// Package app wires repositories and services into a container that the
// HTTP layer and background jobs pull their dependencies from.
package app

import (
	"gorm.io/gorm"

	"trustplane/app/service/certauthority"
	"trustplane/app/service/erroraggregator"
	"trustplane/app/service/registry"
	processor "trustplane/app/service/submission"
	"trustplane/domain/agent"
	"trustplane/domain/agenterror"
	"trustplane/domain/certificate"
	"trustplane/domain/directoryuser"
	"trustplane/domain/submission"
	gormrepo "trustplane/internal/repository/gorm"
)

type Container struct {
	DB *gorm.DB

	AgentRepository agent.Repository

	Registry            registry.Service
	Authority           certauthority.Service
	SubmissionProcessor processor.Service
	ErrorAggregator     erroraggregator.Service
}

func NewContainer(db *gorm.DB) *Container {
	agentRepo := gormrepo.NewAgentRepository(db)
	certRepo := gormrepo.NewCertificateRepository(db)
	submissionRepo := gormrepo.NewSubmissionRepository(db)
	errorRepo := gormrepo.NewAgentErrorRepository(db)
	userRepo := gormrepo.NewDirectoryUserRepository(db)

	registrySvc := registry.New(agentRepo)

	return &Container{
		DB:                  db,
		AgentRepository:     agentRepo,
		Registry:            registrySvc,
		Authority:           certauthority.New(certRepo, registrySvc),
		SubmissionProcessor: processor.New(submissionRepo, userRepo, registrySvc),
		ErrorAggregator:     erroraggregator.New(errorRepo, registrySvc),
	}
}

// Migrate creates or updates the schema for every persisted entity.
func (c *Container) Migrate() error {
	return c.DB.AutoMigrate(
		&agent.Agent{},
		&certificate.Certificate{},
		&submission.Submission{},
		&directoryuser.DirectoryUser{},
		&agenterror.AgentError{},
		&agenterror.Report{},
	)
}
