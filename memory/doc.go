// Package memory provides functionality for reading and writing the
// memory of another process.
//
// Every operation performed through Remote opens its own ProcessHandle
// and closes it before returning, including when the operation fails.
// Handles are never cached between operations, which means a target
// process that exits (or is replaced by a new process with the same
// identifier) between two calls is simply re-opened or reported as
// ErrAccessDenied.
//
// On Windows, handles are acquired with OpenProcess and memory is
// accessed with ReadProcessMemory and WriteProcessMemory. On Linux,
// a pidfd serves as the handle and memory is accessed with
// process_vm_readv and process_vm_writev.
package memory
