// Package reqloader spawns a target program and services the requests
// it sends back over a hidden message window.
//
// APIs are separated into subpackages, and documented accordingly.
// The loader command composes them through the loader package.
//
// For scripting convenience, "OrExit" functions are provided. Any errors
// encountered by these functions are treated as fatal. In such cases,
// an exit handler function is invoked.
package reqloader
