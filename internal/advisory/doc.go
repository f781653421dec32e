// Package advisory produces narrative advice for a comparison report by
// calling an external text-generation service in the background.
//
// A Session owns at most one running task. Session.Submit returns immediately
// with a TaskHandle; the provider call, its per-attempt timeout, and its
// bounded retries run on a separate goroutine. Each task ends in exactly one
// terminal state and delivers exactly one Result through its callback.
// Cancelling a task (directly or by closing the session) is final: a provider
// response that arrives afterwards is discarded.
//
// Callers must check that the current user is privileged before submitting.
// The runner does not check again.
package advisory
