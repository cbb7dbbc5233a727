// Command setter runs the sales-funnel engine as an HTTP server, an MCP
// server or an interactive terminal chat.
package main

func main() {
	Execute()
}
