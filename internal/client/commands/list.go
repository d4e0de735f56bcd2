package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lox/unobot/internal/server"
)

// ListSessionsCommand prints the sessions running on the server
type ListSessionsCommand struct {
	Timeout time.Duration `default:"5s" help:"How long to wait for the server"`
}

func (cmd *ListSessionsCommand) Run(ctx context.Context, flags *GlobalFlags) error {
	wsClient, _, _, err := SetupClient(ctx, flags)
	if err != nil {
		return err
	}
	defer func() { _ = wsClient.Disconnect() }()

	reply := wsClient.Expect(server.MessageTypeSessionList)
	if err := wsClient.ListSessions(); err != nil {
		return fmt.Errorf("failed to request session list: %w", err)
	}

	msg, err := reply.Wait(cmd.Timeout)
	if err != nil {
		return err
	}

	var data server.SessionListData
	if err := json.Unmarshal(msg.Data, &data); err != nil {
		return fmt.Errorf("error parsing session list: %w", err)
	}

	if len(data.Sessions) == 0 {
		fmt.Println("No games running")
		return nil
	}

	fmt.Println("Running games:")
	for _, s := range data.Sessions {
		fmt.Printf("  #%s: %s, hosted by %s, %d players\n", s.Channel, s.Stage, s.Host, s.Players)
	}
	return nil
}
