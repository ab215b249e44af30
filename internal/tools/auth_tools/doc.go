// Package auth_tools provides MCP (Model Context Protocol) tools for
// authenticating against the Analytics platform.
//
// The tools cover the full token lifecycle: validity checks, token
// refresh, and username/password login. They deliberately skip the
// authentication guard applied to every other tool package, since a
// client has to be able to call them before a token exists.
package auth_tools
