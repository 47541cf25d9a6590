package tool

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/viant/gosh"
	"github.com/toolgate/toolgate/schema"
)

// TerminalCommand is the argument shape of the terminal tool.
type TerminalCommand struct {
	Commands []string          `json:"commands"`
	Env      map[string]string `json:"env,omitempty"`
}

// CommandOutput is the terminal tool result.
type CommandOutput struct {
	Output   string `json:"output"`
	ExitCode int    `json:"exitCode"`
}

// RegisterTerminal adds a shell execution tool backed by gosh. The tool is
// flagged dangerous, so calling it requires elevated consent.
func RegisterTerminal(registry *Registry, service *gosh.Service) error {
	metadata := schema.Tool{
		Name:        "terminal",
		Description: "Run terminal commands",
		Dangerous:   true,
	}
	return registry.Register(metadata, func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
		var input TerminalCommand
		data, err := json.Marshal(args)
		if err != nil {
			return nil, err
		}
		if err = json.Unmarshal(data, &input); err != nil {
			return nil, err
		}
		output, code, err := service.Run(ctx, strings.Join(input.Commands, " && "))
		if err != nil {
			return nil, err
		}
		return &CommandOutput{Output: output, ExitCode: code}, nil
	})
}
