// SPDX-License-Identifier: MPL-2.0

// Package runtime executes expanded recipe commands.
//
// Two runtime implementations are available:
//   - native: runs the command through the host shell (sh/bash, cmd or PowerShell),
//     optionally attached to a pseudo-terminal
//   - virtual: runs the command in the embedded mvdan/sh interpreter
//
// Both implement Runtime. Output is relayed line by line to a LineHandler
// while the command runs, tagged with the stream it came from. No timeout is
// applied; cancelling the context terminates the whole process tree and
// yields ErrInterrupted instead of a Result.
package runtime
