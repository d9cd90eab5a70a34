package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/nexhax/nexhax/internal/probe"
	"github.com/nexhax/nexhax/internal/report"
	"github.com/nexhax/nexhax/internal/version"
)

// NewMCPCmd creates the `nexhax mcp` subcommand, serving the update core as
// MCP tools over stdio.
func NewMCPCmd(buildVersion string) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve update tools over the Model Context Protocol (stdio)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, buildVersion, appOptions{})
			if err != nil {
				return err
			}
			defer a.Close()

			ctx, cancel := signalContext()
			defer cancel()

			s := newMCPServer(&mcpTools{app: a}, buildVersion)
			return server.NewStdioServer(s).Listen(ctx, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
}

type mcpTools struct {
	app *app
}

func newMCPServer(t *mcpTools, buildVersion string) *server.MCPServer {
	s := server.NewMCPServer("nexhax", buildVersion, server.WithToolCapabilities(false))

	s.AddTool(mcp.NewTool("check_update",
		mcp.WithDescription("Fetch the latest GitHub release and compare it with the running version"),
		mcp.WithString("current_version", mcp.Description("Version to compare against (default: the running version)")),
	), t.checkUpdate)

	s.AddTool(mcp.NewTool("compare_versions",
		mcp.WithDescription("Report whether latest is strictly newer than current"),
		mcp.WithString("latest", mcp.Required(), mcp.Description("Candidate version, e.g. v1.2.3")),
		mcp.WithString("current", mcp.Required(), mcp.Description("Installed version")),
		mcp.WithString("scheme", mcp.Description("loose (default) or semver")),
	), t.compareVersions)

	s.AddTool(mcp.NewTool("probe",
		mcp.WithDescription("Check whether the remote page answers within the probe timeout"),
		mcp.WithString("url", mcp.Description("URL to probe (default: configured remote_url)")),
	), t.probe)

	return s
}

func (t *mcpTools) checkUpdate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	current := req.GetString("current_version", t.app.current)
	out := t.app.flow.Check(ctx, current)
	return jsonResult(report.Convert(out))
}

func (t *mcpTools) compareVersions(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	latest, err := req.RequireString("latest")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	current, err := req.RequireString("current")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	scheme := version.ParseScheme(req.GetString("scheme", string(version.SchemeLoose)))

	return jsonResult(map[string]any{
		"latest":  version.Normalize(latest),
		"current": version.Normalize(current),
		"scheme":  scheme,
		"isNewer": version.NewComparator(scheme).IsNewer(latest, current),
	})
}

func (t *mcpTools) probe(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	p := t.app.prober
	if u := req.GetString("url", ""); u != "" {
		p = probe.New(probe.WithURL(u), probe.WithTimeout(t.app.prober.Timeout()))
	}
	return jsonResult(map[string]any{
		"url":       p.URL(),
		"reachable": p.Reachable(ctx),
	})
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode result: %w", err)
	}
	return mcp.NewToolResultText(string(b)), nil
}
