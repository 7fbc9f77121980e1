package core

import (
	"errors"
	"sync"
)

var ErrUnknownCommand = errors.New("unknown command ID")

// CommandHandler is a function that handles a command with raw frame data
// The handler is responsible for decoding its own arguments from the data pointer
type CommandHandler func(data *[]byte) error

// Command is one entry of the firmware command dictionary
type Command struct {
	ID      uint16
	Name    string
	Format  string // Argument format (e.g., "motor=%c power=%i")
	Handler CommandHandler
}

// CommandRegistry maps command IDs to their handlers
type CommandRegistry struct {
	mu       sync.RWMutex
	commands map[uint16]*Command
	nameToID map[string]uint16
}

// NewCommandRegistry creates an empty command registry
func NewCommandRegistry() *CommandRegistry {
	return &CommandRegistry{
		commands: make(map[uint16]*Command),
		nameToID: make(map[string]uint16),
	}
}

// Register adds a command under a fixed ID.
// Registering an ID twice replaces the earlier handler.
func (r *CommandRegistry) Register(id uint16, name string, format string, handler CommandHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if old, exists := r.commands[id]; exists {
		delete(r.nameToID, old.Name)
	}

	r.commands[id] = &Command{
		ID:      id,
		Name:    name,
		Format:  format,
		Handler: handler,
	}
	r.nameToID[name] = id
}

// GetCommand retrieves a command by ID
func (r *CommandRegistry) GetCommand(id uint16) (*Command, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cmd, ok := r.commands[id]
	return cmd, ok
}

// GetCommandByName retrieves a command by name
func (r *CommandRegistry) GetCommandByName(name string) (*Command, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.nameToID[name]
	if !ok {
		return nil, false
	}
	return r.commands[id], true
}

// Count returns the number of registered commands
func (r *CommandRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.commands)
}

// Dispatch calls the handler registered for cmdID
func (r *CommandRegistry) Dispatch(cmdID uint16, data *[]byte) error {
	cmd, ok := r.GetCommand(cmdID)
	if !ok || cmd.Handler == nil {
		DebugPrintln("[CMD] unknown command ID " + utoa(uint32(cmdID)))
		return ErrUnknownCommand
	}

	return cmd.Handler(data)
}

// Dictionary lists the registered commands in ID order, one per line
func (r *CommandRegistry) Dictionary() string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	maxID := uint32(0)
	for id := range r.commands {
		if uint32(id) > maxID {
			maxID = uint32(id)
		}
	}

	dict := ""
	for i := uint32(0); i <= maxID; i++ {
		cmd, ok := r.commands[uint16(i)]
		if !ok {
			continue
		}
		dict += utoa(uint32(cmd.ID)) + " " + cmd.Name
		if cmd.Format != "" {
			dict += " " + cmd.Format
		}
		dict += "\n"
	}
	return dict
}
