package mcpserver

import (
	"encoding/json"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

// successResult returns data as a JSON text block.
func successResult(data any) *mcpsdk.CallToolResult {
	b, err := json.Marshal(data)
	if err != nil {
		return failure(err)
	}
	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{&mcpsdk.TextContent{Text: string(b)}},
	}
}

func errorResult(msg string) *mcpsdk.CallToolResult {
	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{&mcpsdk.TextContent{Text: "error: " + msg}},
		IsError: true,
	}
}

// failure reports err to the caller as a tool error. Tool errors are
// results, not protocol errors.
func failure(err error) *mcpsdk.CallToolResult {
	return errorResult(err.Error())
}
