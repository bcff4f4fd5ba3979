// Package remote runs delegable blocks on a remote worker over socket.io.
//
// Every invocation is emitted as an "invoke_step" event carrying a fresh
// request id. The worker answers with a "step_result" event echoing that id;
// answers for unknown ids are dropped.
package remote
