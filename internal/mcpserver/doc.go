// Package mcpserver exposes the startup sequencer as MCP tools so that
// assistants and other MCP clients can query services, start single
// targets and run the configured plan.
//
// Tools:
//
//	service_status   query one service once
//	ensure_running   start one service if needed and wait for it
//	wait_running     wait for one service without starting it
//	start_plan       run the configured startup plan in order
//	show_plan        print the resolved plan and timing
//
// Every tool returns its result as indented JSON text. Invalid arguments
// and failed targets are reported as tool errors, never as protocol errors.
//
// The server speaks stdio by default; ServeSSE serves the same tools over
// HTTP server-sent events.
package mcpserver
