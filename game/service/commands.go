// game/service/commands.go
package service

import (
	"strings"

	"github.com/skyhavenmc/island-services/game/store"
)

// Placeholders usable in configured command lines.
const (
	placeholderPlayer = "[player]"
	placeholderOwner  = "[owner]"

	// sudoPrefix marks a command to be run as the player instead of the
	// console.
	sudoPrefix = "[SUDO]"
)

// CommandPayload is the payload of a command directive.
type CommandPayload struct {
	Command  string `json:"command"`
	AsPlayer bool   `json:"as_player"`
}

// renderCommands expands the configured command templates into command
// directives for one player. playerName fills [player], ownerName fills
// [owner]; a leading [SUDO] makes the command run as the player.
func renderCommands(templates []string, playerName, ownerName string) ([]store.Directive, error) {
	directives := make([]store.Directive, 0, len(templates))
	for _, tmpl := range templates {
		command := strings.TrimSpace(tmpl)
		if command == "" {
			continue
		}

		asPlayer := false
		if strings.HasPrefix(command, sudoPrefix) {
			asPlayer = true
			command = strings.TrimSpace(strings.TrimPrefix(command, sudoPrefix))
		}

		command = strings.ReplaceAll(command, placeholderPlayer, playerName)
		command = strings.ReplaceAll(command, placeholderOwner, ownerName)

		d, err := store.NewDirective(store.DirectiveCommand, CommandPayload{
			Command:  command,
			AsPlayer: asPlayer,
		})
		if err != nil {
			return nil, err
		}
		directives = append(directives, d)
	}
	return directives, nil
}
