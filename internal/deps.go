package internal

import (
	"github.com/mohitgusain8671/VoiceNote/config"
	"github.com/mohitgusain8671/VoiceNote/internal/service"
	"github.com/mohitgusain8671/VoiceNote/internal/storage"
	"github.com/mohitgusain8671/VoiceNote/internal/store"
)

// Deps is everything the handlers need
type Deps struct {
	Config      *config.Config
	Store       store.Store
	Files       storage.Storage
	Accounts    *service.AccountService
	Notes       *service.NoteService
	Maintenance *service.Maintenance
}
