// Package mcpserver exposes leak detection runs as Model Context Protocol
// tools over stdio, so an assistant can list the available tests and run
// them with a chosen strategy.
package mcpserver
